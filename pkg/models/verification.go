package models

import (
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type VerificationTier string

const (
	TierBasic    VerificationTier = "BASIC"
	TierStandard VerificationTier = "STANDARD"
	TierEnhanced VerificationTier = "ENHANCED"
)

type VerificationStatus string

const (
	VerificationDraft         VerificationStatus = "DRAFT"
	VerificationPendingReview VerificationStatus = "PENDING_REVIEW"
	VerificationVerified      VerificationStatus = "VERIFIED"
	VerificationRejected      VerificationStatus = "REJECTED"
)

type DocumentType string

const (
	DocIDCard             DocumentType = "ID_CARD"
	DocStudentCertificate DocumentType = "STUDENT_CERTIFICATE"
	DocTranscript         DocumentType = "TRANSCRIPT"
	DocEnrollmentLetter   DocumentType = "ENROLLMENT_LETTER"
)

type RiskFlag string

const (
	FlagNewAccount      RiskFlag = "NEW_ACCOUNT"
	FlagRapidResubmit   RiskFlag = "RAPID_RESUBMIT"
	FlagDuplicateDevice RiskFlag = "DUPLICATE_DEVICE"
	FlagGeoMismatch     RiskFlag = "GEO_MISMATCH"
	FlagRepeatApplicant RiskFlag = "REPEAT_APPLICANT"
	FlagThinFile        RiskFlag = "THIN_FILE"
)

type ReviewDecision string

const (
	DecisionApprove ReviewDecision = "APPROVE"
	DecisionReject  ReviewDecision = "REJECT"
)

// VerificationDocument references an uploaded document by its opaque storage
// path. The record never carries binary content or a public URL.
type VerificationDocument struct {
	UploadedAt  time.Time    `bson:"uploaded_at" json:"uploadedAt"`
	DocType     DocumentType `bson:"doc_type" json:"docType" validate:"required,oneof=ID_CARD STUDENT_CERTIFICATE TRANSCRIPT ENROLLMENT_LETTER"`
	StoragePath string       `bson:"storage_path" json:"-"`
}

// StudentVerification is the single verification record a student holds at a
// time. Documents are append-only while in DRAFT and frozen after submission;
// risk fields are written exactly once, at submission. Version backs the
// optimistic concurrency guard on every state-changing write.
type StudentVerification struct {
	CreatedAt  time.Time              `bson:"created_at" json:"createdAt"`
	UpdatedAt  time.Time              `bson:"updated_at" json:"updatedAt"`
	ReviewedAt *time.Time             `bson:"reviewed_at,omitempty" json:"reviewedAt,omitempty"`
	Tier       VerificationTier       `bson:"tier" json:"tier"`
	Status     VerificationStatus     `bson:"status" json:"status"`
	AdminNote  string                 `bson:"admin_note,omitempty" json:"adminNote,omitempty"`
	Documents  []VerificationDocument `bson:"documents" json:"documents"`
	RiskFlags  []RiskFlag             `bson:"risk_flags" json:"riskFlags"`
	RiskScore  int                    `bson:"risk_score" json:"riskScore"`
	Version    int64                  `bson:"__v" json:"version"`
	ID         primitive.ObjectID     `bson:"_id" json:"_id"`
	UserID     primitive.ObjectID     `bson:"user_id" json:"userId"`
	ReviewedBy primitive.ObjectID     `bson:"reviewed_by,omitempty" json:"reviewedBy,omitempty"`
	Superseded bool                   `bson:"superseded" json:"superseded"`
}

// tierRequirements is the single place tier document requirements are defined.
// Both the UI hint endpoint and the server-side submit gate consult it.
var tierRequirements = map[VerificationTier][]DocumentType{
	TierBasic:    {DocIDCard},
	TierStandard: {DocIDCard, DocStudentCertificate},
	TierEnhanced: {DocIDCard, DocStudentCertificate, DocTranscript},
}

// RequiredDocuments returns the document types a tier demands. An unknown
// tier is a configuration error, not a runtime condition.
func RequiredDocuments(tier VerificationTier) []DocumentType {
	reqs, ok := tierRequirements[tier]
	if !ok {
		panic(fmt.Sprintf("unknown verification tier %q", tier))
	}

	out := make([]DocumentType, len(reqs))
	copy(out, reqs)
	return out
}

// KnownTier reports whether the tier is one of the configured levels.
func KnownTier(tier VerificationTier) bool {
	_, ok := tierRequirements[tier]
	return ok
}

type Eligibility struct {
	Missing  []DocumentType `json:"missing"`
	Eligible bool           `json:"eligible"`
}

// SubmissionEligibility reports whether the document set satisfies the tier's
// requirements and, when it does not, which types are missing. Pure and
// deterministic; the authoritative server-side gate before PENDING_REVIEW.
func SubmissionEligibility(tier VerificationTier, documents []VerificationDocument) Eligibility {
	present := make(map[DocumentType]bool, len(documents))
	for _, doc := range documents {
		present[doc.DocType] = true
	}

	var missing []DocumentType
	for _, required := range RequiredDocuments(tier) {
		if !present[required] {
			missing = append(missing, required)
		}
	}

	return Eligibility{Eligible: len(missing) == 0, Missing: missing}
}

// TierBadge is display metadata only; it has no behavioral effect.
type TierBadge struct {
	Label       string `json:"label"`
	Icon        string `json:"icon"`
	Description string `json:"description"`
}

var tierBadges = map[VerificationTier]TierBadge{
	TierBasic: {
		Label:       "Temel",
		Icon:        "badge-basic",
		Description: "Identity confirmed with a national ID card.",
	},
	TierStandard: {
		Label:       "Onaylı Öğrenci",
		Icon:        "badge-standard",
		Description: "Identity and current student enrollment confirmed.",
	},
	TierEnhanced: {
		Label:       "Tam Onaylı",
		Icon:        "badge-enhanced",
		Description: "Identity, enrollment and academic transcript confirmed.",
	},
}

func BadgeFor(tier VerificationTier) TierBadge {
	badge, ok := tierBadges[tier]
	if !ok {
		panic(fmt.Sprintf("unknown verification tier %q", tier))
	}
	return badge
}

// HasDocument reports whether a document of the given type was uploaded.
func (v *StudentVerification) HasDocument(docType DocumentType) bool {
	for _, doc := range v.Documents {
		if doc.DocType == docType {
			return true
		}
	}
	return false
}

// Terminal reports whether the record reached a final review outcome.
func (v *StudentVerification) Terminal() bool {
	return v.Status == VerificationVerified || v.Status == VerificationRejected
}

type StartVerificationRequest struct {
	Tier VerificationTier `json:"tier" validate:"required,oneof=BASIC STANDARD ENHANCED"`
}

type SubmitVerificationRequest struct {
	ExpectedVersion int64 `json:"expectedVersion"`
}

type ReviewVerificationRequest struct {
	Decision        ReviewDecision `json:"decision" validate:"required,oneof=APPROVE REJECT"`
	Note            string         `json:"note"`
	ExpectedVersion int64          `json:"expectedVersion"`
}

type AppendDocumentRequest struct {
	DocType         DocumentType `json:"docType" validate:"required,oneof=ID_CARD STUDENT_CERTIFICATE TRANSCRIPT ENROLLMENT_LETTER"`
	ExpectedVersion int64        `json:"expectedVersion"`
}
