package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequiredDocumentsPerTier(t *testing.T) {
	assert.Equal(t, []DocumentType{DocIDCard}, RequiredDocuments(TierBasic))
	assert.Equal(t, []DocumentType{DocIDCard, DocStudentCertificate}, RequiredDocuments(TierStandard))
	assert.Equal(t, []DocumentType{DocIDCard, DocStudentCertificate, DocTranscript}, RequiredDocuments(TierEnhanced))
}

func TestRequiredDocumentsReturnsCopy(t *testing.T) {
	reqs := RequiredDocuments(TierBasic)
	reqs[0] = DocTranscript

	assert.Equal(t, []DocumentType{DocIDCard}, RequiredDocuments(TierBasic))
}

func TestRequiredDocumentsUnknownTierPanics(t *testing.T) {
	assert.Panics(t, func() { RequiredDocuments(VerificationTier("PLATINUM")) })
	assert.Panics(t, func() { BadgeFor(VerificationTier("PLATINUM")) })
}

func TestKnownTier(t *testing.T) {
	assert.True(t, KnownTier(TierBasic))
	assert.True(t, KnownTier(TierStandard))
	assert.True(t, KnownTier(TierEnhanced))
	assert.False(t, KnownTier(VerificationTier("basic")))
	assert.False(t, KnownTier(VerificationTier("")))
}

func docsOf(types ...DocumentType) []VerificationDocument {
	docs := make([]VerificationDocument, 0, len(types))
	for _, dt := range types {
		docs = append(docs, VerificationDocument{
			DocType:     dt,
			StoragePath: "verification/" + string(dt),
			UploadedAt:  time.Now(),
		})
	}
	return docs
}

func TestSubmissionEligibilityStandardMissingCertificate(t *testing.T) {
	eligibility := SubmissionEligibility(TierStandard, docsOf(DocIDCard))

	assert.False(t, eligibility.Eligible)
	assert.Equal(t, []DocumentType{DocStudentCertificate}, eligibility.Missing)
}

func TestSubmissionEligibilityCompleteSet(t *testing.T) {
	eligibility := SubmissionEligibility(TierStandard, docsOf(DocIDCard, DocStudentCertificate))

	assert.True(t, eligibility.Eligible)
	assert.Empty(t, eligibility.Missing)
}

func TestSubmissionEligibilityExtraDocumentsDoNotHurt(t *testing.T) {
	eligibility := SubmissionEligibility(TierBasic, docsOf(DocEnrollmentLetter, DocIDCard, DocTranscript))

	assert.True(t, eligibility.Eligible)
	assert.Empty(t, eligibility.Missing)
}

func TestSubmissionEligibilityDuplicatesCountOnce(t *testing.T) {
	eligibility := SubmissionEligibility(TierStandard, docsOf(DocIDCard, DocIDCard, DocIDCard))

	assert.False(t, eligibility.Eligible)
	assert.Equal(t, []DocumentType{DocStudentCertificate}, eligibility.Missing)
}

// Eligible must hold exactly when the missing list is empty, for every tier
// and any subset of its required documents.
func TestSubmissionEligibilityEligibleIffNothingMissing(t *testing.T) {
	for _, tier := range []VerificationTier{TierBasic, TierStandard, TierEnhanced} {
		required := RequiredDocuments(tier)
		for cut := 0; cut <= len(required); cut++ {
			eligibility := SubmissionEligibility(tier, docsOf(required[:cut]...))

			assert.Equal(t, cut == len(required), eligibility.Eligible,
				"tier %s with %d of %d documents", tier, cut, len(required))
			assert.Equal(t, eligibility.Eligible, len(eligibility.Missing) == 0)
			assert.ElementsMatch(t, required[cut:], eligibility.Missing)
		}
	}
}

func TestBadgeForKnownTiers(t *testing.T) {
	for _, tier := range []VerificationTier{TierBasic, TierStandard, TierEnhanced} {
		badge := BadgeFor(tier)

		require.NotEmpty(t, badge.Label, "tier %s", tier)
		require.NotEmpty(t, badge.Icon, "tier %s", tier)
		require.NotEmpty(t, badge.Description, "tier %s", tier)
	}

	assert.Equal(t, "Onaylı Öğrenci", BadgeFor(TierStandard).Label)
}

func TestVerificationHelpers(t *testing.T) {
	verification := StudentVerification{
		Status:    VerificationDraft,
		Documents: docsOf(DocIDCard),
	}

	assert.True(t, verification.HasDocument(DocIDCard))
	assert.False(t, verification.HasDocument(DocTranscript))
	assert.False(t, verification.Terminal())

	verification.Status = VerificationPendingReview
	assert.False(t, verification.Terminal())

	verification.Status = VerificationVerified
	assert.True(t, verification.Terminal())

	verification.Status = VerificationRejected
	assert.True(t, verification.Terminal())
}
