package service

import (
	"context"
	"errors"
	"os"
	"path/filepath"

	"amigella/cmd/internal/domain/entity"
	"amigella/cmd/internal/scheduling"
	"amigella/cmd/internal/utils"
	"amigella/cmd/internal/utils/apierror"
	"github.com/google/uuid"
	"github.com/labstack/gommon/log"
)

type VoiceLogRepository interface {
	FindByUserID(userID int, limit int) ([]*entity.VoiceLog, error)
}

const voiceLogPageSize = 50

type VoiceIntakeResponse struct {
	Outcome     string                 `json:"outcome"`
	Reason      string                 `json:"reason,omitempty"`
	Transcript  string                 `json:"transcript,omitempty"`
	VoiceLog    *VoiceLogResponse      `json:"voice_log,omitempty"`
	Extracted   *ExtractedResponse     `json:"extracted,omitempty"`
	Appointment *AppointmentResponse   `json:"appointment,omitempty"`
	Conflicts   []*AppointmentResponse `json:"conflicts,omitempty"`
	Load        *scheduling.LoadReport `json:"load,omitempty"`
}

type VoiceLogResponse struct {
	ID                string  `json:"id"`
	AudioFileURL      string  `json:"audio_file_url,omitempty"`
	Transcript        string  `json:"transcript"`
	ExtractedTitle    string  `json:"extracted_title"`
	StartExpression   string  `json:"start_expression"`
	DurationMinutes   int     `json:"duration_minutes"`
	ExtractedCategory string  `json:"extracted_category"`
	ExtractedPriority string  `json:"extracted_priority"`
	UrgencyScore      float64 `json:"urgency_score"`
	Confidence        float64 `json:"confidence"`
	Emotion           string  `json:"emotion"`
	CreatedAt         string  `json:"created_at"`
}

// ExtractedResponse echoes the normalized candidate so the client can offer
// manual fix-up when the engine declined to create anything.
type ExtractedResponse struct {
	Title           string  `json:"title"`
	StartExpression string  `json:"start_expression"`
	DurationMinutes int     `json:"duration_minutes"`
	Category        string  `json:"category"`
	Priority        string  `json:"priority"`
	Location        string  `json:"location,omitempty"`
	Person          string  `json:"person,omitempty"`
	Urgency         float64 `json:"urgency"`
	Confidence      float64 `json:"confidence"`
	Emotion         string  `json:"emotion"`
}

type DefaultVoiceService struct {
	UserRepo     UserRepository
	VoiceLogRepo VoiceLogRepository
	Engine       SchedulingEngine
	UploadDir    string
}

func NewVoiceService(userRepo UserRepository, vlogRepo VoiceLogRepository, engine SchedulingEngine) *DefaultVoiceService {
	dir := os.Getenv("UPLOAD_DIR")
	if dir == "" {
		dir = "./uploads"
	}
	return &DefaultVoiceService{UserRepo: userRepo, VoiceLogRepo: vlogRepo, Engine: engine, UploadDir: dir}
}

// Transcribe runs the full voice intake pipeline for one audio submission.
// Every attempt that produced a transcript is auditable afterwards through
// the voice log, whether or not an appointment came out of it.
func (v *DefaultVoiceService) Transcribe(ctx context.Context, userID int, audio []byte, filename string, force bool) (*VoiceIntakeResponse, apierror.ErrorResponse) {
	if len(audio) == 0 {
		return nil, apierror.NoAudioError
	}

	user, err := v.UserRepo.FindByID(userID)
	if err != nil {
		log.Errorf("failed to fetch user %d: %v", userID, err)
		return nil, apierror.InternalServerError
	}
	if user == nil {
		return nil, apierror.InvalidAuthTokenError
	}

	audioURL := v.storeAudio(audio, filename)

	outcome, err := v.Engine.Intake(ctx, user, audio, audioURL, force)
	if err != nil {
		log.Errorf("voice intake failed for user %d: %v", userID, err)
		return nil, apierror.InternalServerError
	}
	return v.toIntakeResponse(outcome)
}

func (v *DefaultVoiceService) GetVoiceLogs(userID int) ([]*VoiceLogResponse, apierror.ErrorResponse) {
	logs, err := v.VoiceLogRepo.FindByUserID(userID, voiceLogPageSize)
	if err != nil {
		log.Errorf("failed to fetch voice logs for user %d: %v", userID, err)
		return nil, apierror.InternalServerError
	}

	resp := make([]*VoiceLogResponse, len(logs))
	for i, vlog := range logs {
		resp[i] = toVoiceLogResponse(vlog)
	}
	return resp, nil
}

// storeAudio keeps the original audio for the audit trail. Failure to store
// it is not fatal; the transcript is the part that matters.
func (v *DefaultVoiceService) storeAudio(audio []byte, filename string) string {
	if err := os.MkdirAll(v.UploadDir, 0o755); err != nil {
		log.Warnf("failed to create upload dir %s: %v", v.UploadDir, err)
		return ""
	}

	name := uuid.NewString() + filepath.Ext(filename)
	if err := os.WriteFile(filepath.Join(v.UploadDir, name), audio, 0o644); err != nil {
		log.Warnf("failed to store audio file: %v", err)
		return ""
	}
	return "/uploads/" + name
}

func (v *DefaultVoiceService) toIntakeResponse(outcome *scheduling.Outcome) (*VoiceIntakeResponse, apierror.ErrorResponse) {
	if outcome.Kind == scheduling.OutcomeFailed {
		switch {
		case errors.Is(outcome.Reason, scheduling.ErrUpstreamTimeout),
			errors.Is(outcome.Reason, scheduling.ErrUpstreamUnavailable):
			return nil, apierror.UpstreamFailedError
		case errors.Is(outcome.Reason, scheduling.ErrTranscriptionFailed):
			return nil, apierror.NewSimple(400, "Failed to transcribe audio")
		case errors.Is(outcome.Reason, scheduling.ErrAmbiguousExpression):
			// The attempt is preserved; the client asks the user for a time.
			resp := baseIntakeResponse(outcome)
			resp.Reason = "ambiguous_time_expression"
			return resp, nil
		default:
			return nil, apierror.InternalServerError
		}
	}
	return baseIntakeResponse(outcome), nil
}

func baseIntakeResponse(outcome *scheduling.Outcome) *VoiceIntakeResponse {
	resp := &VoiceIntakeResponse{
		Outcome:    string(outcome.Kind),
		Transcript: outcome.Transcript,
		Load:       outcome.Load,
	}
	if outcome.VoiceLog != nil {
		resp.VoiceLog = toVoiceLogResponse(outcome.VoiceLog)
	}
	if outcome.Candidate != nil {
		resp.Extracted = toExtractedResponse(outcome.Candidate)
	}
	if outcome.Appointment != nil {
		resp.Appointment = toAppointmentResponse(outcome.Appointment)
	}
	if len(outcome.Conflicts) > 0 {
		resp.Conflicts = toAppointmentResponses(outcome.Conflicts)
	}
	return resp
}

func toVoiceLogResponse(vlog *entity.VoiceLog) *VoiceLogResponse {
	return &VoiceLogResponse{
		ID:                vlog.ID,
		AudioFileURL:      vlog.AudioFileURL,
		Transcript:        vlog.Transcript,
		ExtractedTitle:    vlog.ExtractedTitle,
		StartExpression:   vlog.StartExpression,
		DurationMinutes:   vlog.DurationMinutes,
		ExtractedCategory: vlog.ExtractedCategory,
		ExtractedPriority: string(vlog.ExtractedPriority),
		UrgencyScore:      vlog.UrgencyScore,
		Confidence:        vlog.Confidence,
		Emotion:           vlog.Emotion,
		CreatedAt:         utils.FormatEpoch(vlog.CreatedAt),
	}
}

func toExtractedResponse(cand *scheduling.Candidate) *ExtractedResponse {
	return &ExtractedResponse{
		Title:           cand.Title,
		StartExpression: cand.StartExpression,
		DurationMinutes: cand.DurationMinutes,
		Category:        cand.Category,
		Priority:        string(cand.Priority),
		Location:        cand.Location,
		Person:          cand.Person,
		Urgency:         cand.Urgency,
		Confidence:      cand.Confidence,
		Emotion:         cand.Emotion,
	}
}
