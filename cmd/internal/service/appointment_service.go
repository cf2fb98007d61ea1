package service

import (
	"context"
	"errors"
	"time"

	"amigella/cmd/internal/domain/entity"
	"amigella/cmd/internal/scheduling"
	"amigella/cmd/internal/utils"
	"amigella/cmd/internal/utils/apierror"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/gommon/log"
)

type AppointmentRepository interface {
	FindByID(id int) (*entity.Appointment, error)
	FindByUserID(id int) ([]*entity.Appointment, error)
	FindInRange(userID int, rangeStart, rangeEnd int64) ([]*entity.Appointment, error)
	Save(appointment *entity.Appointment) error
	Delete(appointment *entity.Appointment) error
}

// SchedulingEngine is the reconciler as the services see it: every
// appointment mutation that needs conflict/load checking goes through it.
type SchedulingEngine interface {
	Intake(ctx context.Context, user *entity.User, audio []byte, audioURL string, force bool) (*scheduling.Outcome, error)
	CreateChecked(user *entity.User, appt *entity.Appointment, force bool) (*scheduling.Outcome, error)
}

type AppointmentRequest struct {
	Title           string `json:"title" validate:"required,max=128"`
	Description     string `json:"description" validate:"max=1024"`
	CategoryID      *int   `json:"category_id"`
	BeginsAt        string `json:"begins_at" validate:"required,iso8601"`
	EndsAt          string `json:"ends_at" validate:"omitempty,iso8601"`
	DurationMinutes int    `json:"duration_minutes" validate:"omitempty,min=5,max=1440"`
	Priority        string `json:"priority" validate:"omitempty,oneof=low medium high critical"`
	Force           bool   `json:"force"`
}

type UpdateAppointmentRequest struct {
	Title       *string `json:"title" validate:"omitempty,max=128"`
	Description *string `json:"description" validate:"omitempty,max=1024"`
	CategoryID  *int    `json:"category_id"`
	BeginsAt    *string `json:"begins_at" validate:"omitempty,iso8601"`
	EndsAt      *string `json:"ends_at" validate:"omitempty,iso8601"`
	Priority    *string `json:"priority" validate:"omitempty,oneof=low medium high critical"`
	Status      *string `json:"status" validate:"omitempty,oneof=scheduled cancelled completed"`
}

type AppointmentResponse struct {
	ID               int      `json:"id"`
	UserID           int      `json:"user_id"`
	CategoryID       *int     `json:"category_id,omitempty"`
	Title            string   `json:"title"`
	Description      *string  `json:"description,omitempty"`
	BeginsAt         string   `json:"begins_at"`
	EndsAt           string   `json:"ends_at"`
	DurationMinutes  int      `json:"duration_minutes"`
	Priority         string   `json:"priority"`
	Status           string   `json:"status"`
	IsVoiceInput     bool     `json:"is_voice_input"`
	VoiceConfidence  *float64 `json:"voice_confidence,omitempty"`
	VoiceLogID       *string  `json:"voice_log_id,omitempty"`
	OverloadEligible bool     `json:"overload_eligible"`
	CreatedAt        string   `json:"created_at"`
	UpdatedAt        string   `json:"updated_at"`
}

// OutcomeResponse is the envelope for checked creates. Conflict and
// overload come back as 200-level warnings, not errors.
type OutcomeResponse struct {
	Outcome     string                 `json:"outcome"`
	Appointment *AppointmentResponse   `json:"appointment,omitempty"`
	Conflicts   []*AppointmentResponse `json:"conflicts,omitempty"`
	Load        *scheduling.LoadReport `json:"load,omitempty"`
}

type FreeSlotsResponse struct {
	FreeSlots []*FreeSlotResponse `json:"free_slots"`
}

type FreeSlotResponse struct {
	BeginsAt string `json:"begins_at"`
	EndsAt   string `json:"ends_at"`
}

type DefaultAppointmentService struct {
	AppointmentRepo AppointmentRepository
	UserRepo        UserRepository
	Engine          SchedulingEngine
	Validate        *validator.Validate
}

func NewAppointmentService(apptRepo AppointmentRepository, userRepo UserRepository, engine SchedulingEngine, validate *validator.Validate) *DefaultAppointmentService {
	return &DefaultAppointmentService{AppointmentRepo: apptRepo, UserRepo: userRepo, Engine: engine, Validate: validate}
}

func (a *DefaultAppointmentService) GetAppointments(userID int, from, to string) ([]*AppointmentResponse, apierror.ErrorResponse) {
	var appts []*entity.Appointment
	var err error

	if from != "" && to != "" {
		var begin, end int64
		begin, err = utils.FromEpoch(from)
		if err != nil {
			return nil, apierror.NewInvalidParamTypeError("from", "RFC3339 timestamp")
		}
		end, err = utils.FromEpoch(to)
		if err != nil {
			return nil, apierror.NewInvalidParamTypeError("to", "RFC3339 timestamp")
		}
		appts, err = a.AppointmentRepo.FindInRange(userID, begin, end)
	} else {
		appts, err = a.AppointmentRepo.FindByUserID(userID)
	}

	if err != nil {
		log.Errorf("failed to find appointments for user %d: %v", userID, err)
		return nil, apierror.InternalServerError
	}
	return toAppointmentResponses(appts), nil
}

// GetToday lists appointments starting on the current calendar day in the
// user's timezone.
func (a *DefaultAppointmentService) GetToday(userID int) ([]*AppointmentResponse, apierror.ErrorResponse) {
	user, apierr := a.fetchUser(userID)
	if apierr != nil {
		return nil, apierr
	}

	loc := scheduling.UserLocation(user.Timezone)
	dayStart, dayEnd := scheduling.DayWindow(time.Now().In(loc))

	appts, err := a.AppointmentRepo.FindInRange(userID, dayStart, dayEnd)
	if err != nil {
		log.Errorf("failed to find today's appointments for user %d: %v", userID, err)
		return nil, apierror.InternalServerError
	}

	today := make([]*entity.Appointment, 0, len(appts))
	for _, appt := range appts {
		if appt.BeginsAt >= dayStart && appt.BeginsAt < dayEnd {
			today = append(today, appt)
		}
	}
	return toAppointmentResponses(today), nil
}

func (a *DefaultAppointmentService) CreateAppointment(req *AppointmentRequest, userID int) (*OutcomeResponse, apierror.ErrorResponse) {
	user, apierr := a.fetchUser(userID)
	if apierr != nil {
		return nil, apierr
	}

	utils.Sanitize(req)
	if valerr := a.Validate.Struct(req); valerr != nil {
		return nil, apierror.FromValidationError(valerr)
	}

	begin, err := utils.FromEpoch(req.BeginsAt)
	if err != nil {
		return nil, apierror.MalformedBodyError
	}

	var end int64
	if req.EndsAt != "" {
		end, err = utils.FromEpoch(req.EndsAt)
		if err != nil {
			return nil, apierror.MalformedBodyError
		}
	} else {
		minutes := req.DurationMinutes
		if minutes == 0 {
			minutes = scheduling.DefaultDurationMinutes
		}
		end = begin + int64(minutes)*time.Minute.Milliseconds()
	}

	if end <= begin {
		return nil, apierror.InvalidIntervalError
	}

	priority := entity.Priority(req.Priority)
	if !priority.Valid() {
		priority = entity.PriorityMedium
	}

	appt := &entity.Appointment{
		UserID:          userID,
		CategoryID:      req.CategoryID,
		Title:           req.Title,
		BeginsAt:        begin,
		EndsAt:          end,
		DurationMinutes: int((end - begin) / time.Minute.Milliseconds()),
		Priority:        priority,
		Status:          entity.StatusScheduled,
	}
	if req.Description != "" {
		appt.Description = &req.Description
	}

	outcome, err := a.Engine.CreateChecked(user, appt, req.Force)
	if err != nil {
		log.Errorf("failed to create appointment for user %d: %v", userID, err)
		return nil, apierror.InternalServerError
	}
	return toOutcomeResponse(outcome)
}

func (a *DefaultAppointmentService) UpdateAppointment(id, userID int, req *UpdateAppointmentRequest) (*AppointmentResponse, apierror.ErrorResponse) {
	if valerr := a.Validate.Struct(req); valerr != nil {
		return nil, apierror.FromValidationError(valerr)
	}

	appt, err := a.AppointmentRepo.FindByID(id)
	if err != nil {
		log.Errorf("failed to fetch appointment by id %d: %v", id, err)
		return nil, apierror.InternalServerError
	}
	if appt == nil || appt.UserID != userID {
		return nil, apierror.NotFoundError
	}

	if req.Status != nil && entity.Status(*req.Status) != appt.Status {
		// Status only moves forward from scheduled; no resurrection.
		if appt.Status != entity.StatusScheduled {
			return nil, apierror.InvalidStatusChangeError
		}
		if entity.Status(*req.Status) == entity.StatusScheduled {
			return nil, apierror.InvalidStatusChangeError
		}
		appt.Status = entity.Status(*req.Status)
	}

	if req.Title != nil {
		appt.Title = *req.Title
	}
	if req.Description != nil {
		appt.Description = req.Description
	}
	if req.CategoryID != nil {
		appt.CategoryID = req.CategoryID
	}
	if req.Priority != nil {
		appt.Priority = entity.Priority(*req.Priority)
	}

	if req.BeginsAt != nil {
		begin, err := utils.FromEpoch(*req.BeginsAt)
		if err != nil {
			return nil, apierror.MalformedBodyError
		}
		appt.BeginsAt = begin
	}
	if req.EndsAt != nil {
		end, err := utils.FromEpoch(*req.EndsAt)
		if err != nil {
			return nil, apierror.MalformedBodyError
		}
		appt.EndsAt = end
	}

	if appt.EndsAt <= appt.BeginsAt {
		return nil, apierror.InvalidIntervalError
	}
	appt.DurationMinutes = int((appt.EndsAt - appt.BeginsAt) / time.Minute.Milliseconds())
	appt.UpdatedAt = utils.NowUTC()

	if err := a.AppointmentRepo.Save(appt); err != nil {
		log.Errorf("failed to update appointment %d: %v", id, err)
		return nil, apierror.InternalServerError
	}
	return toAppointmentResponse(appt), nil
}

func (a *DefaultAppointmentService) DeleteAppointment(id, userID int) apierror.ErrorResponse {
	appt, err := a.AppointmentRepo.FindByID(id)
	if err != nil {
		log.Errorf("failed to fetch appointment by id %d: %v", id, err)
		return apierror.InternalServerError
	}

	if appt == nil || appt.UserID != userID {
		return apierror.NotFoundError
	}

	if err := a.AppointmentRepo.Delete(appt); err != nil {
		log.Errorf("failed to delete appointment by id %d: %v", id, err)
		return apierror.InternalServerError
	}
	return nil
}

// GetFreeSlots lists gaps of at least minDuration between scheduled
// appointments in [from, to], range edges included.
func (a *DefaultAppointmentService) GetFreeSlots(userID int, from, to string, minDurationMinutes int) (*FreeSlotsResponse, apierror.ErrorResponse) {
	begin, err := utils.FromEpoch(from)
	if err != nil {
		return nil, apierror.NewInvalidParamTypeError("from", "RFC3339 timestamp")
	}
	end, err := utils.FromEpoch(to)
	if err != nil {
		return nil, apierror.NewInvalidParamTypeError("to", "RFC3339 timestamp")
	}
	if end <= begin {
		return nil, apierror.InvalidIntervalError
	}
	if minDurationMinutes <= 0 {
		minDurationMinutes = scheduling.DefaultDurationMinutes
	}

	appts, err := a.AppointmentRepo.FindInRange(userID, begin, end)
	if err != nil {
		log.Errorf("failed to find appointments for free slots of user %d: %v", userID, err)
		return nil, apierror.InternalServerError
	}

	slots := scheduling.FreeSlots(appts, begin, end, time.Duration(minDurationMinutes)*time.Minute)
	resp := &FreeSlotsResponse{FreeSlots: make([]*FreeSlotResponse, len(slots))}
	for i, slot := range slots {
		resp.FreeSlots[i] = &FreeSlotResponse{
			BeginsAt: utils.FormatEpoch(slot.BeginsAt),
			EndsAt:   utils.FormatEpoch(slot.EndsAt),
		}
	}
	return resp, nil
}

func (a *DefaultAppointmentService) fetchUser(userID int) (*entity.User, apierror.ErrorResponse) {
	user, err := a.UserRepo.FindByID(userID)
	if err != nil {
		log.Errorf("failed to fetch user %d: %v", userID, err)
		return nil, apierror.InternalServerError
	}
	if user == nil {
		return nil, apierror.InvalidAuthTokenError
	}
	return user, nil
}

func toOutcomeResponse(outcome *scheduling.Outcome) (*OutcomeResponse, apierror.ErrorResponse) {
	switch outcome.Kind {
	case scheduling.OutcomeCreated:
		return &OutcomeResponse{
			Outcome:     string(outcome.Kind),
			Appointment: toAppointmentResponse(outcome.Appointment),
		}, nil
	case scheduling.OutcomeConflictWarning:
		return &OutcomeResponse{
			Outcome:   string(outcome.Kind),
			Conflicts: toAppointmentResponses(outcome.Conflicts),
		}, nil
	case scheduling.OutcomeOverloadWarning:
		return &OutcomeResponse{
			Outcome: string(outcome.Kind),
			Load:    outcome.Load,
		}, nil
	default:
		if errors.Is(outcome.Reason, scheduling.ErrInvalidInterval) {
			return nil, apierror.InvalidIntervalError
		}
		return nil, apierror.InternalServerError
	}
}

func toAppointmentResponses(appts []*entity.Appointment) []*AppointmentResponse {
	resp := make([]*AppointmentResponse, len(appts))
	for i, appt := range appts {
		resp[i] = toAppointmentResponse(appt)
	}
	return resp
}

func toAppointmentResponse(appt *entity.Appointment) *AppointmentResponse {
	return &AppointmentResponse{
		ID:               appt.ID,
		UserID:           appt.UserID,
		CategoryID:       appt.CategoryID,
		Title:            appt.Title,
		Description:      appt.Description,
		BeginsAt:         utils.FormatEpoch(appt.BeginsAt),
		EndsAt:           utils.FormatEpoch(appt.EndsAt),
		DurationMinutes:  appt.DurationMinutes,
		Priority:         string(appt.Priority),
		Status:           string(appt.Status),
		IsVoiceInput:     appt.IsVoiceInput,
		VoiceConfidence:  appt.VoiceConfidence,
		VoiceLogID:       appt.VoiceLogID,
		OverloadEligible: appt.OverloadEligible,
		CreatedAt:        utils.FormatEpoch(appt.CreatedAt),
		UpdatedAt:        utils.FormatEpoch(appt.UpdatedAt),
	}
}
