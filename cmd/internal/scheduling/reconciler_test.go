package scheduling

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"amigella/cmd/internal/domain/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeStore backs all four store interfaces in memory.
type fakeStore struct {
	mu        sync.Mutex
	nextID    int
	appts     []*entity.Appointment
	cats      []*entity.Category
	vlogs     []*entity.VoiceLog
	decisions []*entity.DecisionRecord
}

func (f *fakeStore) FindInRange(userID int, rangeStart, rangeEnd int64) ([]*entity.Appointment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var out []*entity.Appointment
	for _, a := range f.appts {
		if a.UserID == userID && a.BeginsAt < rangeEnd && a.EndsAt > rangeStart {
			out = append(out, a)
		}
	}
	return out, nil
}

func (f *fakeStore) Save(appt *entity.Appointment) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.nextID++
	appt.ID = f.nextID
	f.appts = append(f.appts, appt)
	return nil
}

func (f *fakeStore) FindByUserAndName(userID int, name string) (*entity.Category, error) {
	for _, c := range f.cats {
		if c.UserID == userID && c.Name == name {
			return c, nil
		}
	}
	return nil, nil
}

func (f *fakeStore) SaveVoiceLog(vlog *entity.VoiceLog) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.vlogs = append(f.vlogs, vlog)
	return nil
}

func (f *fakeStore) SaveDecision(rec *entity.DecisionRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.decisions = append(f.decisions, rec)
	return nil
}

type voiceLogStore struct{ *fakeStore }

func (v voiceLogStore) Save(vlog *entity.VoiceLog) error { return v.SaveVoiceLog(vlog) }

type decisionStore struct{ *fakeStore }

func (d decisionStore) Save(rec *entity.DecisionRecord) error { return d.SaveDecision(rec) }

type fakeCapability struct {
	transcript    string
	transcribeErr error
	payload       []byte
	extractErr    error
}

func (f *fakeCapability) Transcribe(ctx context.Context, audio []byte) (string, error) {
	return f.transcript, f.transcribeErr
}

func (f *fakeCapability) Extract(ctx context.Context, transcript string) ([]byte, error) {
	return f.payload, f.extractErr
}

var testNow = time.Date(2026, 2, 23, 9, 0, 0, 0, time.UTC)

func newTestReconciler(store *fakeStore, capability Capability) *Reconciler {
	r := NewReconciler(store, store, voiceLogStore{store}, decisionStore{store}, capability)
	return r.WithClock(func() time.Time { return testNow })
}

func testUser() *entity.User {
	return &entity.User{ID: 1, Username: "ana", Timezone: "UTC"}
}

func TestIntakeCreatesAppointment(t *testing.T) {
	store := &fakeStore{cats: []*entity.Category{{ID: 7, UserID: 1, Name: "rad"}}}
	capability := &fakeCapability{
		transcript: "sutra 14 do 15 sastanak sa timom",
		payload:    []byte(`{"title": "Sastanak sa timom", "start_time": "sutra 14 do 15", "category": "rad", "confidence": 0.9}`),
	}
	r := newTestReconciler(store, capability)

	outcome, err := r.Intake(context.Background(), testUser(), []byte("audio"), "/uploads/a.mp3", false)
	require.NoError(t, err)
	require.Equal(t, OutcomeCreated, outcome.Kind)

	appt := outcome.Appointment
	require.NotNil(t, appt)
	assert.Equal(t, time.Date(2026, 2, 24, 14, 0, 0, 0, time.UTC).UnixMilli(), appt.BeginsAt)
	assert.Equal(t, time.Date(2026, 2, 24, 15, 0, 0, 0, time.UTC).UnixMilli(), appt.EndsAt)
	assert.Equal(t, 60, appt.DurationMinutes)
	assert.True(t, appt.IsVoiceInput)
	assert.False(t, appt.OverloadEligible)
	require.NotNil(t, appt.CategoryID)
	assert.Equal(t, 7, *appt.CategoryID)

	// Linked audit trail: one voice log, one created decision.
	require.Len(t, store.vlogs, 1)
	require.NotNil(t, appt.VoiceLogID)
	assert.Equal(t, store.vlogs[0].ID, *appt.VoiceLogID)
	require.Len(t, store.decisions, 1)
	assert.Equal(t, entity.DecisionCreated, store.decisions[0].Kind)
	require.NotNil(t, store.decisions[0].VoiceLogID)
	assert.Equal(t, store.vlogs[0].ID, *store.decisions[0].VoiceLogID)
}

func TestIntakeExplicitDurationBeatsDerived(t *testing.T) {
	store := &fakeStore{}
	capability := &fakeCapability{
		transcript: "sutra 14 do 16 trening",
		payload:    []byte(`{"start_time": "sutra 14 do 16", "duration_minutes": 30}`),
	}
	r := newTestReconciler(store, capability)

	outcome, err := r.Intake(context.Background(), testUser(), []byte("audio"), "", false)
	require.NoError(t, err)
	require.Equal(t, OutcomeCreated, outcome.Kind)
	assert.Equal(t, 30, outcome.Appointment.DurationMinutes)
}

func TestIntakeDerivedDurationFromRange(t *testing.T) {
	store := &fakeStore{}
	capability := &fakeCapability{
		transcript: "sutra 14 do 16 trening",
		payload:    []byte(`{"start_time": "sutra 14 do 16"}`),
	}
	r := newTestReconciler(store, capability)

	outcome, err := r.Intake(context.Background(), testUser(), []byte("audio"), "", false)
	require.NoError(t, err)
	require.Equal(t, OutcomeCreated, outcome.Kind)
	assert.Equal(t, 120, outcome.Appointment.DurationMinutes)
}

func TestIntakeConflictCreatesNothing(t *testing.T) {
	day := time.Date(2026, 2, 24, 0, 0, 0, 0, time.UTC)
	store := &fakeStore{nextID: 1}
	store.appts = []*entity.Appointment{{
		ID:       1,
		UserID:   1,
		BeginsAt: day.Add(14 * time.Hour).UnixMilli(),
		EndsAt:   day.Add(15*time.Hour + 30*time.Minute).UnixMilli(),
		Status:   entity.StatusScheduled,
	}}

	capability := &fakeCapability{
		transcript: "sutra 15:15 kafa",
		payload:    []byte(`{"start_time": "sutra 15:15", "duration_minutes": 45}`),
	}
	r := newTestReconciler(store, capability)

	outcome, err := r.Intake(context.Background(), testUser(), []byte("audio"), "", false)
	require.NoError(t, err)
	require.Equal(t, OutcomeConflictWarning, outcome.Kind)
	assert.Len(t, outcome.Conflicts, 1)
	assert.Nil(t, outcome.Appointment)

	// Attempt is still audited.
	assert.Len(t, store.vlogs, 1)
	require.Len(t, store.decisions, 1)
	assert.Equal(t, entity.DecisionDeclinedConflict, store.decisions[0].Kind)
	assert.Len(t, store.appts, 1)
}

func seedDay(store *fakeStore, userID, count int) {
	day := time.Date(2026, 2, 24, 0, 0, 0, 0, time.UTC)
	for i := 0; i < count; i++ {
		store.nextID++
		store.appts = append(store.appts, &entity.Appointment{
			ID:       store.nextID,
			UserID:   userID,
			Title:    fmt.Sprintf("termin %d", i),
			BeginsAt: day.Add(time.Duration(i) * time.Hour).UnixMilli(),
			EndsAt:   day.Add(time.Duration(i)*time.Hour + 10*time.Minute).UnixMilli(),
			Status:   entity.StatusScheduled,
		})
	}
}

func TestIntakeOverloadWithoutForce(t *testing.T) {
	store := &fakeStore{}
	seedDay(store, 1, 10)

	capability := &fakeCapability{
		transcript: "sutra 14:00 jos jedan termin",
		payload:    []byte(`{"start_time": "sutra 14:00"}`),
	}
	r := newTestReconciler(store, capability)

	outcome, err := r.Intake(context.Background(), testUser(), []byte("audio"), "", false)
	require.NoError(t, err)
	require.Equal(t, OutcomeOverloadWarning, outcome.Kind)
	assert.Nil(t, outcome.Appointment)

	require.NotNil(t, outcome.Load)
	assert.Equal(t, 10, outcome.Load.Count)
	assert.True(t, outcome.Load.Overloaded)
	assert.NotNil(t, outcome.Load.Recommendation)

	assert.Len(t, store.vlogs, 1)
	require.Len(t, store.decisions, 1)
	assert.Equal(t, entity.DecisionDeclinedOverload, store.decisions[0].Kind)
	assert.Len(t, store.appts, 10)
}

func TestIntakeOverloadWithForce(t *testing.T) {
	store := &fakeStore{}
	seedDay(store, 1, 10)

	capability := &fakeCapability{
		transcript: "sutra 14:00 mora da stane",
		payload:    []byte(`{"start_time": "sutra 14:00"}`),
	}
	r := newTestReconciler(store, capability)

	outcome, err := r.Intake(context.Background(), testUser(), []byte("audio"), "", true)
	require.NoError(t, err)
	require.Equal(t, OutcomeCreated, outcome.Kind)
	assert.True(t, outcome.Appointment.OverloadEligible)

	require.Len(t, store.decisions, 1)
	assert.Equal(t, entity.DecisionOverridden, store.decisions[0].Kind)
	assert.Len(t, store.appts, 11)
}

func TestIntakeAmbiguousTimePreservesLog(t *testing.T) {
	store := &fakeStore{}
	capability := &fakeCapability{
		transcript: "treba da se vidim sa Markom",
		payload:    []byte(`{"title": "Vidjenje sa Markom"}`),
	}
	r := newTestReconciler(store, capability)

	outcome, err := r.Intake(context.Background(), testUser(), []byte("audio"), "", false)
	require.NoError(t, err)
	require.Equal(t, OutcomeFailed, outcome.Kind)
	assert.ErrorIs(t, outcome.Reason, ErrAmbiguousExpression)

	// The candidate comes back for manual completion and the attempt stays
	// on record; nothing was scheduled.
	require.NotNil(t, outcome.Candidate)
	assert.Equal(t, "Vidjenje sa Markom", outcome.Candidate.Title)
	assert.Len(t, store.vlogs, 1)
	assert.Empty(t, store.appts)

	require.Len(t, store.decisions, 1)
	assert.Equal(t, entity.DecisionFailed, store.decisions[0].Kind)
	require.NotNil(t, store.decisions[0].VoiceLogID)
	assert.Equal(t, store.vlogs[0].ID, *store.decisions[0].VoiceLogID)
	assert.Nil(t, store.decisions[0].AppointmentID)
}

func TestIntakeMalformedExtractionStillAudited(t *testing.T) {
	store := &fakeStore{}
	capability := &fakeCapability{
		transcript: "nesto nerazumljivo",
		payload:    []byte("the model refused to answer"),
	}
	r := newTestReconciler(store, capability)

	outcome, err := r.Intake(context.Background(), testUser(), []byte("audio"), "", false)
	require.NoError(t, err)
	require.Equal(t, OutcomeFailed, outcome.Kind)
	assert.ErrorIs(t, outcome.Reason, ErrAmbiguousExpression)

	require.Len(t, store.vlogs, 1)
	assert.Equal(t, DefaultTitle, store.vlogs[0].ExtractedTitle)
	assert.Equal(t, "nesto nerazumljivo", store.vlogs[0].Transcript)

	require.Len(t, store.decisions, 1)
	assert.Equal(t, entity.DecisionFailed, store.decisions[0].Kind)
}

func TestIntakeEmptyTranscriptPersistsNothing(t *testing.T) {
	store := &fakeStore{}
	capability := &fakeCapability{transcript: ""}
	r := newTestReconciler(store, capability)

	outcome, err := r.Intake(context.Background(), testUser(), []byte("audio"), "", false)
	require.NoError(t, err)
	require.Equal(t, OutcomeFailed, outcome.Kind)
	assert.ErrorIs(t, outcome.Reason, ErrTranscriptionFailed)

	assert.Empty(t, store.vlogs)
	assert.Empty(t, store.appts)
	assert.Empty(t, store.decisions)
}

func TestIntakeUpstreamTimeout(t *testing.T) {
	store := &fakeStore{}
	capability := &fakeCapability{transcribeErr: context.DeadlineExceeded}
	r := newTestReconciler(store, capability)

	outcome, err := r.Intake(context.Background(), testUser(), []byte("audio"), "", false)
	require.NoError(t, err)
	require.Equal(t, OutcomeFailed, outcome.Kind)
	assert.ErrorIs(t, outcome.Reason, ErrUpstreamTimeout)
	assert.Empty(t, store.vlogs)
}

func TestCreateCheckedRejectsInvalidInterval(t *testing.T) {
	store := &fakeStore{}
	r := newTestReconciler(store, &fakeCapability{})

	appt := &entity.Appointment{
		UserID:   1,
		Title:    "obrnuto",
		BeginsAt: millis(15, 0),
		EndsAt:   millis(14, 0),
	}

	outcome, err := r.CreateChecked(testUser(), appt, false)
	require.NoError(t, err)
	assert.Equal(t, OutcomeFailed, outcome.Kind)
	assert.ErrorIs(t, outcome.Reason, ErrInvalidInterval)
	assert.Empty(t, store.appts)
}

func TestCreateCheckedSerializesPerOwner(t *testing.T) {
	store := &fakeStore{}
	r := newTestReconciler(store, &fakeCapability{})
	user := testUser()

	begin := time.Date(2026, 2, 24, 14, 0, 0, 0, time.UTC).UnixMilli()
	end := time.Date(2026, 2, 24, 15, 0, 0, 0, time.UTC).UnixMilli()

	outcomes := make(chan OutcomeKind, 2)
	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			appt := &entity.Appointment{UserID: 1, Title: "isti termin", BeginsAt: begin, EndsAt: end}
			outcome, err := r.CreateChecked(user, appt, false)
			assert.NoError(t, err)
			outcomes <- outcome.Kind
		}()
	}
	wg.Wait()
	close(outcomes)

	// Exactly one submission wins; the loser sees the conflict.
	var created, conflicted int
	for kind := range outcomes {
		switch kind {
		case OutcomeCreated:
			created++
		case OutcomeConflictWarning:
			conflicted++
		}
	}
	assert.Equal(t, 1, created)
	assert.Equal(t, 1, conflicted)
	assert.Len(t, store.appts, 1)
}
