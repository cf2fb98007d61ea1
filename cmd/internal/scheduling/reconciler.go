package scheduling

import (
	"context"
	"errors"
	"fmt"
	"time"

	"amigella/cmd/internal/domain/entity"
	"github.com/google/uuid"
	"github.com/labstack/gommon/log"
)

// Infrastructure failures of the intake pipeline. Conflict and overload are
// not errors; they are Outcome kinds.
var (
	ErrTranscriptionFailed = errors.New("transcription returned no usable text")
	ErrUpstreamTimeout     = errors.New("speech service timed out")
	ErrUpstreamUnavailable = errors.New("speech service unavailable")
	ErrInvalidInterval     = errors.New("appointment end must be after its start")
)

// DefaultUpstreamTimeout bounds each call into the transcription/extraction
// capability.
const DefaultUpstreamTimeout = 12 * time.Second

// Capability is the external speech-to-structure service: audio in, text
// out; text in, best-effort JSON out. Both calls take seconds and must
// honor context cancellation.
type Capability interface {
	Transcribe(ctx context.Context, audio []byte) (string, error)
	Extract(ctx context.Context, transcript string) ([]byte, error)
}

// AppointmentStore is the slice of the appointment repository the engine
// needs. The store is the sole source of truth; the engine keeps no
// appointment state between calls.
type AppointmentStore interface {
	FindInRange(userID int, rangeStart, rangeEnd int64) ([]*entity.Appointment, error)
	Save(appt *entity.Appointment) error
}

type CategoryStore interface {
	FindByUserAndName(userID int, name string) (*entity.Category, error)
}

type VoiceLogStore interface {
	Save(vlog *entity.VoiceLog) error
}

type DecisionStore interface {
	Save(rec *entity.DecisionRecord) error
}

type OutcomeKind string

const (
	OutcomeCreated         OutcomeKind = "created"
	OutcomeConflictWarning OutcomeKind = "conflict_warning"
	OutcomeOverloadWarning OutcomeKind = "overload_warning"
	OutcomeFailed          OutcomeKind = "failed"
)

// Outcome is the discriminated result of an intake or checked create.
// Warnings are successful outcomes, not errors: the caller decides whether
// to adjust the time or force past the ceiling.
type Outcome struct {
	Kind        OutcomeKind
	Appointment *entity.Appointment
	VoiceLog    *entity.VoiceLog
	Conflicts   []*entity.Appointment
	Load        *LoadReport
	Candidate   *Candidate
	Transcript  string
	Reason      error // set when Kind is OutcomeFailed
}

// Reconciler turns voice submissions and manual drafts into validated,
// non-conflicting, load-guarded appointment mutations.
type Reconciler struct {
	appointments    AppointmentStore
	categories      CategoryStore
	voiceLogs       VoiceLogStore
	decisions       DecisionStore
	capability      Capability
	upstreamTimeout time.Duration
	now             func() time.Time
	locks           *ownerLocks
}

func NewReconciler(appts AppointmentStore, cats CategoryStore, vlogs VoiceLogStore, decs DecisionStore, capability Capability) *Reconciler {
	return &Reconciler{
		appointments:    appts,
		categories:      cats,
		voiceLogs:       vlogs,
		decisions:       decs,
		capability:      capability,
		upstreamTimeout: DefaultUpstreamTimeout,
		now:             time.Now,
		locks:           newOwnerLocks(),
	}
}

// WithClock overrides the reconciler's notion of now.
func (r *Reconciler) WithClock(now func() time.Time) *Reconciler {
	r.now = now
	return r
}

// Intake runs the full voice pipeline: transcribe, extract, normalize,
// resolve time, then conflict- and load-check under the owner's lock.
// The returned error is reserved for store failures; every business result,
// including failures of the pipeline itself, arrives as an Outcome.
func (r *Reconciler) Intake(ctx context.Context, user *entity.User, audio []byte, audioURL string, force bool) (*Outcome, error) {
	transcript, err := r.transcribe(ctx, audio)
	if err != nil {
		// Nothing usable came in, so nothing is persisted.
		return &Outcome{Kind: OutcomeFailed, Reason: err}, nil
	}

	payload, err := r.extract(ctx, transcript)
	if err != nil {
		return &Outcome{Kind: OutcomeFailed, Reason: err, Transcript: transcript}, nil
	}

	cand, normErr := Normalize(payload)
	if normErr != nil {
		log.Warnf("extraction for user %d was malformed, recording attempt with defaults", user.ID)
	}

	// From here on the attempt is auditable no matter how it ends.
	vlog := r.buildVoiceLog(user.ID, audioURL, transcript, cand)
	if err := r.voiceLogs.Save(vlog); err != nil {
		return nil, err
	}

	loc := UserLocation(user.Timezone)
	res, err := ResolveExpression(cand.StartExpression, r.now(), loc)
	if err != nil {
		r.appendDecision(user.ID, nil, &vlog.ID, entity.DecisionFailed, err.Error())
		return &Outcome{
			Kind:       OutcomeFailed,
			Reason:     err,
			VoiceLog:   vlog,
			Candidate:  cand,
			Transcript: transcript,
		}, nil
	}

	duration := time.Duration(cand.DurationMinutes) * time.Minute
	if !cand.DurationExplicit && res.DerivedDuration > 0 {
		duration = res.DerivedDuration
	}

	beginsAt := res.Start.UnixMilli()
	endsAt := beginsAt + duration.Milliseconds()

	description := fmt.Sprintf("Kreiran iz govornog unosa: %q", transcript)
	confidence := cand.Confidence
	appt := &entity.Appointment{
		UserID:          user.ID,
		Title:           cand.Title,
		Description:     &description,
		BeginsAt:        beginsAt,
		EndsAt:          endsAt,
		DurationMinutes: int(duration.Minutes()),
		Priority:        cand.Priority,
		Status:          entity.StatusScheduled,
		IsVoiceInput:    true,
		VoiceConfidence: &confidence,
		VoiceLogID:      &vlog.ID,
	}

	if cat, err := r.categories.FindByUserAndName(user.ID, cand.Category); err == nil && cat != nil {
		appt.CategoryID = &cat.ID
	}

	outcome, err := r.commitChecked(user, appt, force, &vlog.ID)
	if err != nil {
		return nil, err
	}
	outcome.VoiceLog = vlog
	outcome.Candidate = cand
	outcome.Transcript = transcript
	return outcome, nil
}

// CreateChecked runs the conflict and load checks for a manual draft under
// the owner's lock. With force set, both checks are bypassed, the
// appointment is tagged overload-eligible and an override decision is
// appended; this is the only way past the ceiling.
func (r *Reconciler) CreateChecked(user *entity.User, appt *entity.Appointment, force bool) (*Outcome, error) {
	if appt.EndsAt <= appt.BeginsAt {
		return &Outcome{Kind: OutcomeFailed, Reason: ErrInvalidInterval}, nil
	}
	return r.commitChecked(user, appt, force, nil)
}

// commitChecked holds the owner's lock across check-then-create so two
// concurrent overlapping submissions cannot both pass.
func (r *Reconciler) commitChecked(user *entity.User, appt *entity.Appointment, force bool, voiceLogID *string) (*Outcome, error) {
	release := r.locks.acquire(user.ID)
	defer release()

	loc := UserLocation(user.Timezone)
	buf := DefaultBuffer.Milliseconds()

	existing, err := r.appointments.FindInRange(user.ID, appt.BeginsAt-buf, appt.EndsAt+buf)
	if err != nil {
		return nil, err
	}

	if !force {
		conflicts := FindConflicts(existing, appt.BeginsAt, appt.EndsAt, DefaultBuffer)
		if len(conflicts) > 0 {
			r.appendDecision(user.ID, nil, voiceLogID, entity.DecisionDeclinedConflict,
				fmt.Sprintf("%d conflicting appointments", len(conflicts)))
			return &Outcome{Kind: OutcomeConflictWarning, Conflicts: conflicts}, nil
		}
	}

	start := time.UnixMilli(appt.BeginsAt).In(loc)
	dayStart, dayEnd := DayWindow(start)
	dayAppts, err := r.appointments.FindInRange(user.ID, dayStart, dayEnd)
	if err != nil {
		return nil, err
	}

	report := EvaluateLoad(CountOnDay(dayAppts, dayStart, dayEnd), DailyCeiling, start)
	if report.Overloaded && !force {
		r.appendDecision(user.ID, nil, voiceLogID, entity.DecisionDeclinedOverload,
			fmt.Sprintf("%d appointments on the day", report.Count))
		return &Outcome{Kind: OutcomeOverloadWarning, Load: report}, nil
	}

	now := r.now().UnixMilli()
	appt.Status = entity.StatusScheduled
	appt.OverloadEligible = force && report.Overloaded
	appt.CreatedAt = now
	appt.UpdatedAt = now
	if err := r.appointments.Save(appt); err != nil {
		return nil, err
	}

	kind := entity.DecisionCreated
	if appt.OverloadEligible {
		kind = entity.DecisionOverridden
	}
	r.appendDecision(user.ID, &appt.ID, voiceLogID, kind, "")

	return &Outcome{Kind: OutcomeCreated, Appointment: appt, Load: report}, nil
}

// appendDecision records an audit row. A failure here must not undo the
// outcome it describes, so it is logged and swallowed.
func (r *Reconciler) appendDecision(userID int, apptID *int, voiceLogID *string, kind entity.DecisionKind, detail string) {
	rec := &entity.DecisionRecord{
		ID:            uuid.NewString(),
		UserID:        userID,
		AppointmentID: apptID,
		VoiceLogID:    voiceLogID,
		Kind:          kind,
		Detail:        detail,
		CreatedAt:     r.now().UnixMilli(),
	}
	if err := r.decisions.Save(rec); err != nil {
		log.Errorf("failed to append %s decision for user %d: %v", kind, userID, err)
	}
}

func (r *Reconciler) transcribe(ctx context.Context, audio []byte) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, r.upstreamTimeout)
	defer cancel()

	text, err := r.capability.Transcribe(ctx, audio)
	if err != nil {
		return "", classifyUpstream(err)
	}
	if text == "" {
		return "", ErrTranscriptionFailed
	}
	return text, nil
}

func (r *Reconciler) extract(ctx context.Context, transcript string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, r.upstreamTimeout)
	defer cancel()

	payload, err := r.capability.Extract(ctx, transcript)
	if err != nil {
		return nil, classifyUpstream(err)
	}
	return payload, nil
}

func classifyUpstream(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return ErrUpstreamTimeout
	}
	return ErrUpstreamUnavailable
}

func (r *Reconciler) buildVoiceLog(userID int, audioURL, transcript string, cand *Candidate) *entity.VoiceLog {
	return &entity.VoiceLog{
		ID:                uuid.NewString(),
		UserID:            userID,
		AudioFileURL:      audioURL,
		Transcript:        transcript,
		ExtractedTitle:    cand.Title,
		StartExpression:   cand.StartExpression,
		DurationMinutes:   cand.DurationMinutes,
		ExtractedCategory: cand.Category,
		ExtractedPriority: cand.Priority,
		UrgencyScore:      cand.Urgency,
		Confidence:        cand.Confidence,
		Emotion:           cand.Emotion,
		CreatedAt:         r.now().UnixMilli(),
	}
}
