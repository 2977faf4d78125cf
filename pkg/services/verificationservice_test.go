package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"fonegitim-api-io/api/pkg/models"
	"fonegitim-api-io/api/pkg/util"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// memVerificationStore reimplements the conditional-update contract of the
// Mongo store over a mutex-guarded map, so the state machine can be exercised
// without a database. Every mutating method is atomic under the lock, same as
// a single findOneAndUpdate.
type memVerificationStore struct {
	mu      sync.Mutex
	records map[primitive.ObjectID]*models.StudentVerification
}

func newMemVerificationStore() *memVerificationStore {
	return &memVerificationStore{records: make(map[primitive.ObjectID]*models.StudentVerification)}
}

func cloneVerification(v *models.StudentVerification) *models.StudentVerification {
	out := *v
	out.Documents = append([]models.VerificationDocument(nil), v.Documents...)
	out.RiskFlags = append([]models.RiskFlag(nil), v.RiskFlags...)
	return &out
}

func (s *memVerificationStore) Insert(ctx context.Context, v *models.StudentVerification) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	// Mirrors the unique partial index on user_id where superseded=false.
	for _, existing := range s.records {
		if existing.UserID == v.UserID && !existing.Superseded {
			return errors.Wrap(ErrIllegalState, "an active verification already exists")
		}
	}
	s.records[v.ID] = cloneVerification(v)
	return nil
}

func (s *memVerificationStore) FindByID(ctx context.Context, id primitive.ObjectID) (*models.StudentVerification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if v, ok := s.records[id]; ok {
		return cloneVerification(v), nil
	}
	return nil, ErrNotFound
}

func (s *memVerificationStore) FindActiveByUser(ctx context.Context, userID primitive.ObjectID) (*models.StudentVerification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, v := range s.records {
		if v.UserID == userID && !v.Superseded {
			return cloneVerification(v), nil
		}
	}
	return nil, ErrNotFound
}

func (s *memVerificationStore) CountByUser(ctx context.Context, userID primitive.ObjectID) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var count int64
	for _, v := range s.records {
		if v.UserID == userID {
			count++
		}
	}
	return count, nil
}

func (s *memVerificationStore) ListByStatus(ctx context.Context, status models.VerificationStatus, limit, skip int64) ([]models.StudentVerification, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.StudentVerification
	for _, v := range s.records {
		if v.Status == status && !v.Superseded {
			out = append(out, *cloneVerification(v))
		}
	}
	return out, int64(len(out)), nil
}

func (s *memVerificationStore) AppendDocument(ctx context.Context, id, userID primitive.ObjectID, expectedVersion int64, doc models.VerificationDocument) (*models.StudentVerification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.records[id]
	if !ok || v.UserID != userID || v.Version != expectedVersion || v.Status != models.VerificationDraft {
		return nil, ErrNoMatch
	}
	v.Documents = append(v.Documents, doc)
	v.UpdatedAt = doc.UploadedAt
	v.Version++
	return cloneVerification(v), nil
}

func (s *memVerificationStore) MarkSubmitted(ctx context.Context, id, userID primitive.ObjectID, expectedVersion int64, risk RiskResult, at time.Time) (*models.StudentVerification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.records[id]
	if !ok || v.UserID != userID || v.Version != expectedVersion || v.Status != models.VerificationDraft {
		return nil, ErrNoMatch
	}
	v.Status = models.VerificationPendingReview
	v.RiskScore = risk.Score
	v.RiskFlags = append([]models.RiskFlag(nil), risk.Flags...)
	v.UpdatedAt = at
	v.Version++
	return cloneVerification(v), nil
}

func (s *memVerificationStore) MarkReviewed(ctx context.Context, id primitive.ObjectID, expectedVersion int64, status models.VerificationStatus, reviewer primitive.ObjectID, note string, at time.Time) (*models.StudentVerification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.records[id]
	if !ok || v.Version != expectedVersion || v.Status != models.VerificationPendingReview {
		return nil, ErrNoMatch
	}
	v.Status = status
	v.ReviewedBy = reviewer
	v.ReviewedAt = &at
	v.AdminNote = note
	v.UpdatedAt = at
	v.Version++
	return cloneVerification(v), nil
}

func (s *memVerificationStore) Supersede(ctx context.Context, oldID primitive.ObjectID, fresh *models.StudentVerification) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	old, ok := s.records[oldID]
	if !ok || old.Status != models.VerificationRejected || old.Superseded {
		return ErrNoMatch
	}
	old.Superseded = true
	old.UpdatedAt = fresh.CreatedAt
	old.Version++
	s.records[fresh.ID] = cloneVerification(fresh)
	return nil
}

// memSubmitLimiter admits the first allow attempts for each key and rejects
// the rest until resetAt.
type memSubmitLimiter struct {
	mu      sync.Mutex
	counts  map[string]int64
	allow   int64
	resetAt time.Time
}

func newMemSubmitLimiter(allow int64, resetAt time.Time) *memSubmitLimiter {
	return &memSubmitLimiter{counts: make(map[string]int64), allow: allow, resetAt: resetAt}
}

func (l *memSubmitLimiter) Check(ctx context.Context, key string) (LimitDecision, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.counts[key]++
	return LimitDecision{Allowed: l.counts[key] <= l.allow, ResetAt: l.resetAt}, nil
}

type memUserDirectory struct {
	users       map[primitive.ObjectID]*models.User
	deviceReuse int64
}

func (d *memUserDirectory) GetUserByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	if user, ok := d.users[id]; ok {
		return user, nil
	}
	return nil, ErrNotFound
}

func (d *memUserDirectory) CountDeviceReuse(ctx context.Context, fingerprint string, excludeUser primitive.ObjectID) (int64, error) {
	return d.deviceReuse, nil
}

type recordingNotifier struct {
	mu        sync.Mutex
	submitted []models.VerificationTier
	reviewed  []models.ReviewDecision
}

func (n *recordingNotifier) NotifySubmitted(user *models.User, tier models.VerificationTier) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.submitted = append(n.submitted, tier)
}

func (n *recordingNotifier) NotifyReviewed(user *models.User, decision models.ReviewDecision, note string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.reviewed = append(n.reviewed, decision)
}

type verificationHarness struct {
	service  VerificationService
	store    *memVerificationStore
	limiter  *memSubmitLimiter
	users    *memUserDirectory
	notifier *recordingNotifier
	userID   primitive.ObjectID
}

func newVerificationHarness(t *testing.T) *verificationHarness {
	t.Helper()

	userID := primitive.NewObjectID()
	users := &memUserDirectory{
		users: map[primitive.ObjectID]*models.User{
			userID: {
				Id:              userID,
				LoginName:       "ayse42",
				PrimaryEmail:    "ayse@example.com",
				DeclaredCountry: "TR",
				CreatedAt:       time.Now().AddDate(-1, 0, 0),
			},
		},
	}

	store := newMemVerificationStore()
	limiter := newMemSubmitLimiter(3, time.Now().Add(24*time.Hour))
	notifier := &recordingNotifier{}

	return &verificationHarness{
		service:  NewVerificationService(store, limiter, users, notifier),
		store:    store,
		limiter:  limiter,
		users:    users,
		notifier: notifier,
		userID:   userID,
	}
}

// draftWithDocuments walks a record through Start and AppendDocument, and
// returns it holding the given document types.
func (h *verificationHarness) draftWithDocuments(t *testing.T, tier models.VerificationTier, types ...models.DocumentType) *models.StudentVerification {
	t.Helper()
	ctx := context.Background()

	verification, err := h.service.StartVerification(ctx, h.userID, tier)
	require.NoError(t, err)

	for _, dt := range types {
		verification, err = h.service.AppendDocument(ctx, verification.ID, h.userID, verification.Version, dt, "verification/"+string(dt))
		require.NoError(t, err)
	}

	return verification
}

func TestStartVerificationCreatesDraft(t *testing.T) {
	h := newVerificationHarness(t)

	verification, err := h.service.StartVerification(context.Background(), h.userID, models.TierStandard)

	require.NoError(t, err)
	assert.Equal(t, models.VerificationDraft, verification.Status)
	assert.Equal(t, models.TierStandard, verification.Tier)
	assert.Equal(t, int64(0), verification.Version)
	assert.Empty(t, verification.Documents)
	assert.False(t, verification.Superseded)
}

func TestStartVerificationUnknownTier(t *testing.T) {
	h := newVerificationHarness(t)

	_, err := h.service.StartVerification(context.Background(), h.userID, models.VerificationTier("GOLD"))

	assert.Error(t, err)
}

// staleReadStore never observes inserts on its active-record read, putting
// every creator past the read-side check. Uniqueness must then fall to the
// store's insert guard alone.
type staleReadStore struct {
	*memVerificationStore
}

func (s *staleReadStore) FindActiveByUser(ctx context.Context, userID primitive.ObjectID) (*models.StudentVerification, error) {
	return nil, ErrNotFound
}

func TestStartVerificationRacingCreatorsYieldOneActiveRecord(t *testing.T) {
	h := newVerificationHarness(t)
	ctx := context.Background()

	store := newMemVerificationStore()
	service := NewVerificationService(&staleReadStore{memVerificationStore: store}, h.limiter, h.users, h.notifier)

	first, err := service.StartVerification(ctx, h.userID, models.TierBasic)
	require.NoError(t, err)

	_, err = service.StartVerification(ctx, h.userID, models.TierBasic)
	assert.ErrorIs(t, err, ErrIllegalState)

	active, err := store.FindActiveByUser(ctx, h.userID)
	require.NoError(t, err)
	assert.Equal(t, first.ID, active.ID)
}

func TestStartVerificationBlockedByLiveRecord(t *testing.T) {
	h := newVerificationHarness(t)
	ctx := context.Background()

	_, err := h.service.StartVerification(ctx, h.userID, models.TierBasic)
	require.NoError(t, err)

	_, err = h.service.StartVerification(ctx, h.userID, models.TierBasic)
	assert.ErrorIs(t, err, ErrIllegalState)
}

func TestStartVerificationSupersedesRejected(t *testing.T) {
	h := newVerificationHarness(t)
	ctx := context.Background()
	adminID := primitive.NewObjectID()

	first := h.draftWithDocuments(t, models.TierBasic, models.DocIDCard)
	first, err := h.service.Submit(ctx, first.ID, h.userID, SubmitContext{ExpectedVersion: first.Version})
	require.NoError(t, err)

	first, err = h.service.Review(ctx, first.ID, adminID, models.ReviewVerificationRequest{
		Decision:        models.DecisionReject,
		Note:            "belge okunamıyor",
		ExpectedVersion: first.Version,
	})
	require.NoError(t, err)
	require.Equal(t, models.VerificationRejected, first.Status)

	fresh, err := h.service.StartVerification(ctx, h.userID, models.TierStandard)
	require.NoError(t, err)
	assert.Equal(t, models.VerificationDraft, fresh.Status)
	assert.Equal(t, int64(0), fresh.Version)

	// The rejected record is retired but keeps its review outcome.
	old, err := h.service.GetByID(ctx, first.ID)
	require.NoError(t, err)
	assert.True(t, old.Superseded)
	assert.Equal(t, models.VerificationRejected, old.Status)
	assert.Equal(t, "belge okunamıyor", old.AdminNote)
	assert.Equal(t, adminID, old.ReviewedBy)

	// The fresh draft is now the user's active record.
	active, err := h.service.GetForUser(ctx, h.userID)
	require.NoError(t, err)
	assert.Equal(t, fresh.ID, active.ID)
}

func TestSubmitQuicklyAfterRejectionFlagsRapidResubmit(t *testing.T) {
	h := newVerificationHarness(t)
	ctx := context.Background()
	adminID := primitive.NewObjectID()

	first := h.draftWithDocuments(t, models.TierBasic, models.DocIDCard)
	first, err := h.service.Submit(ctx, first.ID, h.userID, SubmitContext{
		OriginCountry:   "TR",
		ExpectedVersion: first.Version,
	})
	require.NoError(t, err)

	_, err = h.service.Review(ctx, first.ID, adminID, models.ReviewVerificationRequest{
		Decision:        models.DecisionReject,
		Note:            "fotoğraf bulanık",
		ExpectedVersion: first.Version,
	})
	require.NoError(t, err)

	// Restart and resubmit within the hour; the replacement draft's age is
	// the distance from the previous attempt.
	fresh := h.draftWithDocuments(t, models.TierBasic, models.DocIDCard)
	resubmitted, err := h.service.Submit(ctx, fresh.ID, h.userID, SubmitContext{
		OriginCountry:   "TR",
		ExpectedVersion: fresh.Version,
	})
	require.NoError(t, err)

	assert.ElementsMatch(t,
		[]models.RiskFlag{models.FlagRapidResubmit, models.FlagThinFile},
		resubmitted.RiskFlags)
	assert.Equal(t, 25, resubmitted.RiskScore)
}

func TestAppendDocumentStaleVersion(t *testing.T) {
	h := newVerificationHarness(t)
	ctx := context.Background()

	verification := h.draftWithDocuments(t, models.TierStandard, models.DocIDCard)
	require.Equal(t, int64(1), verification.Version)

	_, err := h.service.AppendDocument(ctx, verification.ID, h.userID, 0, models.DocStudentCertificate, "verification/cert")
	assert.ErrorIs(t, err, ErrVersionConflict)

	current, err := h.service.GetByID(ctx, verification.ID)
	require.NoError(t, err)
	assert.Len(t, current.Documents, 1)
	assert.Equal(t, int64(1), current.Version)
}

func TestAppendDocumentForeignRecordIsForbidden(t *testing.T) {
	h := newVerificationHarness(t)
	ctx := context.Background()

	verification := h.draftWithDocuments(t, models.TierBasic)
	stranger := primitive.NewObjectID()

	_, err := h.service.AppendDocument(ctx, verification.ID, stranger, verification.Version, models.DocIDCard, "verification/id")
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = h.service.AppendDocument(ctx, primitive.NewObjectID(), h.userID, 0, models.DocIDCard, "verification/id")
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestSubmitMissingDocuments(t *testing.T) {
	h := newVerificationHarness(t)
	ctx := context.Background()

	verification := h.draftWithDocuments(t, models.TierStandard, models.DocIDCard)

	_, err := h.service.Submit(ctx, verification.ID, h.userID, SubmitContext{ExpectedVersion: verification.Version})

	var missing *MissingDocumentsError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, []models.DocumentType{models.DocStudentCertificate}, missing.Missing)

	current, err := h.service.GetByID(ctx, verification.ID)
	require.NoError(t, err)
	assert.Equal(t, models.VerificationDraft, current.Status)
}

func TestSubmitFreezesRiskAndNotifies(t *testing.T) {
	h := newVerificationHarness(t)
	ctx := context.Background()

	verification := h.draftWithDocuments(t, models.TierStandard, models.DocIDCard, models.DocStudentCertificate)

	submitted, err := h.service.Submit(ctx, verification.ID, h.userID, SubmitContext{
		OriginCountry:   "TR",
		ExpectedVersion: verification.Version,
	})

	require.NoError(t, err)
	assert.Equal(t, models.VerificationPendingReview, submitted.Status)
	assert.Equal(t, verification.Version+1, submitted.Version)

	// Old account, matching country, exactly the required document set: the
	// only advisory signal left is the thin file.
	assert.Equal(t, []models.RiskFlag{models.FlagThinFile}, submitted.RiskFlags)
	assert.Equal(t, 5, submitted.RiskScore)

	assert.Equal(t, []models.VerificationTier{models.TierStandard}, h.notifier.submitted)
}

func TestSubmitStaleVersionNeverMutates(t *testing.T) {
	h := newVerificationHarness(t)
	ctx := context.Background()

	verification := h.draftWithDocuments(t, models.TierBasic, models.DocIDCard)
	require.Equal(t, int64(1), verification.Version)

	_, err := h.service.Submit(ctx, verification.ID, h.userID, SubmitContext{ExpectedVersion: 0})
	assert.ErrorIs(t, err, ErrVersionConflict)

	current, err := h.service.GetByID(ctx, verification.ID)
	require.NoError(t, err)
	assert.Equal(t, models.VerificationDraft, current.Status)
	assert.Equal(t, int64(1), current.Version)
	assert.Empty(t, h.notifier.submitted)
}

func TestSubmitWrongStatus(t *testing.T) {
	h := newVerificationHarness(t)
	ctx := context.Background()

	verification := h.draftWithDocuments(t, models.TierBasic, models.DocIDCard)
	submitted, err := h.service.Submit(ctx, verification.ID, h.userID, SubmitContext{ExpectedVersion: verification.Version})
	require.NoError(t, err)

	_, err = h.service.Submit(ctx, verification.ID, h.userID, SubmitContext{ExpectedVersion: submitted.Version})
	assert.ErrorIs(t, err, ErrIllegalState)
}

func TestSubmitConcurrentOneWinner(t *testing.T) {
	h := newVerificationHarness(t)
	ctx := context.Background()

	verification := h.draftWithDocuments(t, models.TierBasic, models.DocIDCard)
	expected := verification.Version

	results := make(chan error, 2)
	for i := 0; i < 2; i++ {
		go func() {
			_, err := h.service.Submit(ctx, verification.ID, h.userID, SubmitContext{ExpectedVersion: expected})
			results <- err
		}()
	}

	var successes, conflicts int
	for i := 0; i < 2; i++ {
		err := <-results
		switch {
		case err == nil:
			successes++
		case assert.ErrorIs(t, err, ErrVersionConflict):
			conflicts++
		}
	}

	assert.Equal(t, 1, successes)
	assert.Equal(t, 1, conflicts)

	// The version advanced exactly once.
	current, err := h.service.GetByID(ctx, verification.ID)
	require.NoError(t, err)
	assert.Equal(t, expected+1, current.Version)
	assert.Equal(t, models.VerificationPendingReview, current.Status)
}

func TestSubmitRateLimited(t *testing.T) {
	h := newVerificationHarness(t)
	ctx := context.Background()

	resetAt := time.Now().Add(24 * time.Hour)
	h.limiter.allow = 0
	h.limiter.resetAt = resetAt

	verification := h.draftWithDocuments(t, models.TierBasic, models.DocIDCard)

	_, err := h.service.Submit(ctx, verification.ID, h.userID, SubmitContext{ExpectedVersion: verification.Version})

	var limited *RateLimitError
	require.ErrorAs(t, err, &limited)
	assert.Equal(t, resetAt, limited.ResetAt)
	assert.True(t, IsRetryable(err))

	current, getErr := h.service.GetByID(ctx, verification.ID)
	require.NoError(t, getErr)
	assert.Equal(t, models.VerificationDraft, current.Status)
}

func TestReviewApprove(t *testing.T) {
	h := newVerificationHarness(t)
	ctx := context.Background()
	adminID := primitive.NewObjectID()

	verification := h.draftWithDocuments(t, models.TierStandard, models.DocIDCard, models.DocStudentCertificate)
	submitted, err := h.service.Submit(ctx, verification.ID, h.userID, SubmitContext{ExpectedVersion: verification.Version})
	require.NoError(t, err)

	reviewed, err := h.service.Review(ctx, submitted.ID, adminID, models.ReviewVerificationRequest{
		Decision:        models.DecisionApprove,
		ExpectedVersion: submitted.Version,
	})

	require.NoError(t, err)
	assert.Equal(t, models.VerificationVerified, reviewed.Status)
	assert.Equal(t, submitted.Version+1, reviewed.Version)
	assert.Equal(t, adminID, reviewed.ReviewedBy)
	require.NotNil(t, reviewed.ReviewedAt)

	// The frozen risk assessment is untouched by review.
	assert.Equal(t, submitted.RiskScore, reviewed.RiskScore)
	assert.Equal(t, submitted.RiskFlags, reviewed.RiskFlags)

	assert.Equal(t, []models.ReviewDecision{models.DecisionApprove}, h.notifier.reviewed)
}

func TestReviewWrongStatusLeavesRecordUnchanged(t *testing.T) {
	h := newVerificationHarness(t)
	ctx := context.Background()
	adminID := primitive.NewObjectID()

	verification := h.draftWithDocuments(t, models.TierBasic, models.DocIDCard)

	_, err := h.service.Review(ctx, verification.ID, adminID, models.ReviewVerificationRequest{
		Decision:        models.DecisionApprove,
		ExpectedVersion: verification.Version,
	})
	assert.ErrorIs(t, err, ErrIllegalState)

	current, err := h.service.GetByID(ctx, verification.ID)
	require.NoError(t, err)
	assert.Equal(t, models.VerificationDraft, current.Status)
	assert.Equal(t, verification.Version, current.Version)
}

func TestReviewTwiceIsIllegal(t *testing.T) {
	h := newVerificationHarness(t)
	ctx := context.Background()
	adminID := primitive.NewObjectID()

	verification := h.draftWithDocuments(t, models.TierBasic, models.DocIDCard)
	submitted, err := h.service.Submit(ctx, verification.ID, h.userID, SubmitContext{ExpectedVersion: verification.Version})
	require.NoError(t, err)

	reviewed, err := h.service.Review(ctx, submitted.ID, adminID, models.ReviewVerificationRequest{
		Decision:        models.DecisionApprove,
		ExpectedVersion: submitted.Version,
	})
	require.NoError(t, err)

	_, err = h.service.Review(ctx, reviewed.ID, adminID, models.ReviewVerificationRequest{
		Decision:        models.DecisionApprove,
		ExpectedVersion: reviewed.Version,
	})
	assert.ErrorIs(t, err, ErrIllegalState)
}

func TestReviewStaleVersion(t *testing.T) {
	h := newVerificationHarness(t)
	ctx := context.Background()

	verification := h.draftWithDocuments(t, models.TierBasic, models.DocIDCard)
	submitted, err := h.service.Submit(ctx, verification.ID, h.userID, SubmitContext{ExpectedVersion: verification.Version})
	require.NoError(t, err)

	_, err = h.service.Review(ctx, submitted.ID, primitive.NewObjectID(), models.ReviewVerificationRequest{
		Decision:        models.DecisionApprove,
		ExpectedVersion: submitted.Version - 1,
	})
	assert.ErrorIs(t, err, ErrVersionConflict)
	assert.True(t, IsRetryable(err))
}

func TestReviewAbsentRecordIsNotFound(t *testing.T) {
	h := newVerificationHarness(t)

	_, err := h.service.Review(context.Background(), primitive.NewObjectID(), primitive.NewObjectID(), models.ReviewVerificationRequest{
		Decision: models.DecisionApprove,
	})

	assert.ErrorIs(t, err, ErrNotFound)
}

func TestGetForUserWithoutRecordIsForbidden(t *testing.T) {
	h := newVerificationHarness(t)

	_, err := h.service.GetForUser(context.Background(), h.userID)

	assert.ErrorIs(t, err, ErrForbidden)
}

func TestListPendingOnlyPending(t *testing.T) {
	h := newVerificationHarness(t)
	ctx := context.Background()

	verification := h.draftWithDocuments(t, models.TierBasic, models.DocIDCard)

	pending, count, err := h.service.ListPending(ctx, util.PaginationArgs{Limit: 10})
	require.NoError(t, err)
	assert.Zero(t, count)
	assert.Empty(t, pending)

	_, err = h.service.Submit(ctx, verification.ID, h.userID, SubmitContext{ExpectedVersion: verification.Version})
	require.NoError(t, err)

	pending, count, err = h.service.ListPending(ctx, util.PaginationArgs{Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
	require.Len(t, pending, 1)
	assert.Equal(t, verification.ID, pending[0].ID)
}
