package service

import (
	"time"

	"amigella/cmd/internal/domain/entity"
	"amigella/cmd/internal/scheduling"
	"amigella/cmd/internal/utils"
	"amigella/cmd/internal/utils/apierror"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/gommon/log"
)

type SentinelCheckRequest struct {
	Date string `json:"date" validate:"required,datetime=2006-01-02"`
}

type SentinelCheckResponse struct {
	AppointmentCount int                    `json:"appointment_count"`
	IsSuperBiser     bool                   `json:"is_super_biser"`
	RemainingSlots   int                    `json:"remaining_slots"`
	Recommendation   *RecoveryBlockResponse `json:"recommendation,omitempty"`
}

type RecoveryBlockResponse struct {
	BeginsAt string `json:"begins_at"`
	EndsAt   string `json:"ends_at"`
}

// ForceAddRequest is the explicit override: the user has seen the overload
// warning and wants the appointment anyway.
type ForceAddRequest struct {
	Title           string `json:"title" validate:"required,max=128"`
	Description     string `json:"description" validate:"max=1024"`
	CategoryID      *int   `json:"category_id"`
	BeginsAt        string `json:"begins_at" validate:"required,iso8601"`
	EndsAt          string `json:"ends_at" validate:"omitempty,iso8601"`
	DurationMinutes int    `json:"duration_minutes" validate:"omitempty,min=5,max=1440"`
	Priority        string `json:"priority" validate:"omitempty,oneof=low medium high critical"`
}

type DefaultSentinelService struct {
	AppointmentRepo AppointmentRepository
	UserRepo        UserRepository
	Engine          SchedulingEngine
	Validate        *validator.Validate
}

func NewSentinelService(apptRepo AppointmentRepository, userRepo UserRepository, engine SchedulingEngine, validate *validator.Validate) *DefaultSentinelService {
	return &DefaultSentinelService{AppointmentRepo: apptRepo, UserRepo: userRepo, Engine: engine, Validate: validate}
}

// Check reports how loaded a calendar day is against the daily ceiling.
// Stateless by design: the count is computed from the store on every call.
func (s *DefaultSentinelService) Check(userID int, req *SentinelCheckRequest) (*SentinelCheckResponse, apierror.ErrorResponse) {
	if err := s.Validate.Struct(req); err != nil {
		return nil, apierror.FromValidationError(err)
	}

	user, apierr := s.fetchUser(userID)
	if apierr != nil {
		return nil, apierr
	}

	loc := scheduling.UserLocation(user.Timezone)
	day, err := time.ParseInLocation("2006-01-02", req.Date, loc)
	if err != nil {
		return nil, apierror.NewInvalidParamTypeError("date", "YYYY-MM-DD")
	}

	dayStart, dayEnd := scheduling.DayWindow(day)
	appts, err := s.AppointmentRepo.FindInRange(userID, dayStart, dayEnd)
	if err != nil {
		log.Errorf("failed to count appointments of user %d on %s: %v", userID, req.Date, err)
		return nil, apierror.InternalServerError
	}

	count := scheduling.CountOnDay(appts, dayStart, dayEnd)
	report := scheduling.EvaluateLoad(count, scheduling.DailyCeiling, day)

	resp := &SentinelCheckResponse{
		AppointmentCount: report.Count,
		IsSuperBiser:     report.Overloaded,
		RemainingSlots:   report.Remaining,
	}
	if report.Recommendation != nil {
		resp.Recommendation = &RecoveryBlockResponse{
			BeginsAt: utils.FormatEpoch(report.Recommendation.BeginsAt),
			EndsAt:   utils.FormatEpoch(report.Recommendation.EndsAt),
		}
	}
	return resp, nil
}

// ForceAdd creates an appointment past the ceiling. The result is tagged
// overload-eligible and an override decision is recorded; there is no other
// way to exceed the daily limit.
func (s *DefaultSentinelService) ForceAdd(userID int, req *ForceAddRequest) (*OutcomeResponse, apierror.ErrorResponse) {
	user, apierr := s.fetchUser(userID)
	if apierr != nil {
		return nil, apierr
	}

	utils.Sanitize(req)
	if err := s.Validate.Struct(req); err != nil {
		return nil, apierror.FromValidationError(err)
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

	outcome, err := s.Engine.CreateChecked(user, appt, true)
	if err != nil {
		log.Errorf("failed to force-add appointment for user %d: %v", userID, err)
		return nil, apierror.InternalServerError
	}
	return toOutcomeResponse(outcome)
}

func (s *DefaultSentinelService) fetchUser(userID int) (*entity.User, apierror.ErrorResponse) {
	user, err := s.UserRepo.FindByID(userID)
	if err != nil {
		log.Errorf("failed to fetch user %d: %v", userID, err)
		return nil, apierror.InternalServerError
	}
	if user == nil {
		return nil, apierror.InvalidAuthTokenError
	}
	return user, nil
}
