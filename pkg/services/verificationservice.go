package services

import (
	"context"
	"fmt"
	"time"

	"fonegitim-api-io/api/pkg/models"
	"fonegitim-api-io/api/pkg/util"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// VerificationServiceImpl implements the VerificationService interface. All
// collaborators are injected so the state machine is testable in isolation
// and safe across multiple server instances.
type VerificationServiceImpl struct {
	store    VerificationStore
	limiter  SubmitLimiter
	users    UserDirectory
	notifier Notifier
}

// NewVerificationService creates a new instance of VerificationService
func NewVerificationService(store VerificationStore, limiter SubmitLimiter, users UserDirectory, notifier Notifier) VerificationService {
	return &VerificationServiceImpl{
		store:    store,
		limiter:  limiter,
		users:    users,
		notifier: notifier,
	}
}

// StartVerification creates a DRAFT record for the user. A rejected record is
// superseded atomically; any other live record blocks a new draft.
func (vs *VerificationServiceImpl) StartVerification(ctx context.Context, userID primitive.ObjectID, tier models.VerificationTier) (*models.StudentVerification, error) {
	if !models.KnownTier(tier) {
		return nil, errors.Errorf("unknown verification tier %q", tier)
	}

	now := time.Now()
	fresh := &models.StudentVerification{
		ID:        primitive.NewObjectID(),
		UserID:    userID,
		Tier:      tier,
		Status:    models.VerificationDraft,
		Documents: []models.VerificationDocument{},
		RiskFlags: []models.RiskFlag{},
		Version:   0,
		CreatedAt: now,
		UpdatedAt: now,
	}

	active, err := vs.store.FindActiveByUser(ctx, userID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			if err := vs.store.Insert(ctx, fresh); err != nil {
				return nil, err
			}
			return fresh, nil
		}
		return nil, err
	}

	if active.Status != models.VerificationRejected {
		return nil, errors.Wrapf(ErrIllegalState, "an active %s verification already exists", active.Status)
	}

	if err := vs.store.Supersede(ctx, active.ID, fresh); err != nil {
		if errors.Is(err, ErrNoMatch) {
			// Lost a race with another supersession or an admin override.
			return nil, ErrVersionConflict
		}
		return nil, err
	}

	return fresh, nil
}

// AppendDocument attaches an uploaded document to a DRAFT record through a
// conditional update keyed on owner and version.
func (vs *VerificationServiceImpl) AppendDocument(ctx context.Context, verificationID, userID primitive.ObjectID, expectedVersion int64, docType models.DocumentType, storagePath string) (*models.StudentVerification, error) {
	doc := models.VerificationDocument{
		DocType:     docType,
		StoragePath: storagePath,
		UploadedAt:  time.Now(),
	}

	updated, err := vs.store.AppendDocument(ctx, verificationID, userID, expectedVersion, doc)
	if err != nil {
		if errors.Is(err, ErrNoMatch) {
			return nil, vs.classifyStudentFailure(ctx, verificationID, userID, expectedVersion, models.VerificationDraft)
		}
		return nil, err
	}

	return updated, nil
}

// Submit moves a DRAFT record to PENDING_REVIEW. Requirement eligibility is
// the hard gate; the risk score computed here is advisory and frozen onto the
// record. The version check and status transition execute as one atomic
// conditional write, so two concurrent submits with the same expected version
// resolve to exactly one success and one conflict.
func (vs *VerificationServiceImpl) Submit(ctx context.Context, verificationID, userID primitive.ObjectID, submit SubmitContext) (*models.StudentVerification, error) {
	current, err := vs.store.FindByID(ctx, verificationID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrForbidden
		}
		return nil, err
	}
	if current.UserID != userID {
		return nil, ErrForbidden
	}
	if current.Version != submit.ExpectedVersion {
		return nil, ErrVersionConflict
	}
	if current.Status != models.VerificationDraft {
		return nil, ErrIllegalState
	}

	eligibility := models.SubmissionEligibility(current.Tier, current.Documents)
	if !eligibility.Eligible {
		return nil, &MissingDocumentsError{Missing: eligibility.Missing}
	}

	decision, err := vs.limiter.Check(ctx, fmt.Sprintf("verification:submit:%s", userID.Hex()))
	if err != nil {
		return nil, err
	}
	if !decision.Allowed {
		return nil, &RateLimitError{ResetAt: decision.ResetAt}
	}

	risk, err := vs.collectAndScore(ctx, userID, current, submit.OriginCountry)
	if err != nil {
		return nil, err
	}

	updated, err := vs.store.MarkSubmitted(ctx, verificationID, userID, submit.ExpectedVersion, risk, time.Now())
	if err != nil {
		if errors.Is(err, ErrNoMatch) {
			return nil, vs.classifyStudentFailure(ctx, verificationID, userID, submit.ExpectedVersion, models.VerificationDraft)
		}
		return nil, err
	}

	vs.notifySubmitted(ctx, userID, updated.Tier)

	return updated, nil
}

// Review applies an admin decision to a PENDING_REVIEW record. The frozen
// risk score is never recomputed here.
func (vs *VerificationServiceImpl) Review(ctx context.Context, verificationID, adminID primitive.ObjectID, req models.ReviewVerificationRequest) (*models.StudentVerification, error) {
	current, err := vs.store.FindByID(ctx, verificationID)
	if err != nil {
		// Admin context: no ownership ambiguity, absent records stay NOT_FOUND.
		return nil, err
	}
	if current.Status != models.VerificationPendingReview {
		return nil, ErrIllegalState
	}
	if current.Version != req.ExpectedVersion {
		return nil, ErrVersionConflict
	}

	status := models.VerificationVerified
	if req.Decision == models.DecisionReject {
		status = models.VerificationRejected
	}

	updated, err := vs.store.MarkReviewed(ctx, verificationID, req.ExpectedVersion, status, adminID, req.Note, time.Now())
	if err != nil {
		if errors.Is(err, ErrNoMatch) {
			return nil, vs.classifyReviewFailure(ctx, verificationID)
		}
		return nil, err
	}

	vs.notifyReviewed(ctx, updated.UserID, req.Decision, req.Note)

	return updated, nil
}

// GetForUser returns the caller's active verification record.
func (vs *VerificationServiceImpl) GetForUser(ctx context.Context, userID primitive.ObjectID) (*models.StudentVerification, error) {
	verification, err := vs.store.FindActiveByUser(ctx, userID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrForbidden
		}
		return nil, err
	}

	return verification, nil
}

// GetByID returns any record by id. Admin surface.
func (vs *VerificationServiceImpl) GetByID(ctx context.Context, verificationID primitive.ObjectID) (*models.StudentVerification, error) {
	return vs.store.FindByID(ctx, verificationID)
}

// ListPending returns the admin review queue, oldest first.
func (vs *VerificationServiceImpl) ListPending(ctx context.Context, pagination util.PaginationArgs) ([]models.StudentVerification, int64, error) {
	return vs.store.ListByStatus(ctx, models.VerificationPendingReview, int64(pagination.Limit), int64(pagination.Skip))
}

// collectAndScore gathers the behavioral signals and runs the pure scorer.
func (vs *VerificationServiceImpl) collectAndScore(ctx context.Context, userID primitive.ObjectID, current *models.StudentVerification, originCountry string) (RiskResult, error) {
	user, err := vs.users.GetUserByID(ctx, userID)
	if err != nil {
		return RiskResult{}, err
	}

	priorRecords, err := vs.store.CountByUser(ctx, userID)
	if err != nil {
		return RiskResult{}, err
	}

	var deviceReuse int64
	if user.DeviceFingerprint != "" {
		deviceReuse, err = vs.users.CountDeviceReuse(ctx, user.DeviceFingerprint, userID)
		if err != nil {
			return RiskResult{}, err
		}
	}

	signals := RiskSignals{
		AccountAgeDays:          int(time.Since(user.CreatedAt).Hours() / 24),
		PriorSubmissions:        int(priorRecords) - 1,
		DeviceReuseCount:        int(deviceReuse),
		DeclaredCountry:         user.DeclaredCountry,
		OriginCountry:           originCountry,
		MinutesSinceLastAttempt: -1,
		DocumentCount:           len(current.Documents),
		RequiredDocumentCount:   len(models.RequiredDocuments(current.Tier)),
	}

	// The replacement draft's age stands in for the time since the previous
	// attempt: supersession stamps CreatedAt when the student starts the
	// retry, so a quick draft-and-submit after a rejection reads as rapid.
	if priorRecords > 1 {
		signals.MinutesSinceLastAttempt = int(time.Since(current.CreatedAt).Minutes())
	}

	return ComputeRisk(signals), nil
}

// classifyStudentFailure explains a failed conditional update on a
// student-initiated call. Missing and foreign records collapse to FORBIDDEN;
// a stale version wins over a wrong status so a concurrent loser always sees
// a retryable conflict.
func (vs *VerificationServiceImpl) classifyStudentFailure(ctx context.Context, verificationID, userID primitive.ObjectID, expectedVersion int64, wantStatus models.VerificationStatus) error {
	current, err := vs.store.FindByID(ctx, verificationID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return ErrForbidden
		}
		return err
	}
	if current.UserID != userID {
		return ErrForbidden
	}
	if current.Version != expectedVersion {
		return ErrVersionConflict
	}
	if current.Status != wantStatus {
		return ErrIllegalState
	}

	return ErrVersionConflict
}

func (vs *VerificationServiceImpl) classifyReviewFailure(ctx context.Context, verificationID primitive.ObjectID) error {
	current, err := vs.store.FindByID(ctx, verificationID)
	if err != nil {
		return err
	}
	if current.Status != models.VerificationPendingReview {
		return ErrIllegalState
	}

	return ErrVersionConflict
}

// Notification side effects are best-effort: a lookup or delivery failure is
// logged and never propagated to the caller.
func (vs *VerificationServiceImpl) notifySubmitted(ctx context.Context, userID primitive.ObjectID, tier models.VerificationTier) {
	user, err := vs.users.GetUserByID(ctx, userID)
	if err != nil {
		util.LogError("verification submitted notification skipped", err)
		return
	}
	vs.notifier.NotifySubmitted(user, tier)
}

func (vs *VerificationServiceImpl) notifyReviewed(ctx context.Context, userID primitive.ObjectID, decision models.ReviewDecision, note string) {
	user, err := vs.users.GetUserByID(ctx, userID)
	if err != nil {
		util.LogError("verification outcome notification skipped", err)
		return
	}
	vs.notifier.NotifyReviewed(user, decision, note)
}
