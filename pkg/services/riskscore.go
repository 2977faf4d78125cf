package services

import (
	"strings"

	"fonegitim-api-io/api/pkg/models"
)

// RiskSignals are collected by the caller at submission time. The scorer
// never fetches anything itself, which keeps it pure and unit-testable.
type RiskSignals struct {
	DeclaredCountry string
	OriginCountry   string
	AccountAgeDays  int
	// Count of other accounts sharing this account's device fingerprint.
	DeviceReuseCount int
	// Completed submission attempts before this one.
	PriorSubmissions int
	// Minutes since the previous submission attempt; negative means none.
	MinutesSinceLastAttempt int
	DocumentCount           int
	RequiredDocumentCount   int
}

// RiskResult is frozen onto the verification record at submission and never
// recomputed during review.
type RiskResult struct {
	Flags []models.RiskFlag
	Score int
}

// Additive signal weights. Flags are advisory for reviewers; none of them
// blocks the PENDING_REVIEW transition.
const (
	weightBrandNewAccount = 25
	weightYoungAccount    = 10
	weightRapidResubmit   = 15
	weightDeviceReuse     = 15
	maxDeviceReuseWeight  = 45
	weightGeoMismatch     = 20
	weightRepeatApplicant = 20
	weightPriorSubmission = 5
	weightThinFile        = 5

	brandNewAccountDays = 7
	youngAccountDays    = 30
	rapidResubmitMins   = 60
	repeatApplicantAt   = 3
)

// ComputeRisk derives a score in [0,100] and a set of qualitative flags from
// the submission signals. Deterministic: identical signals always produce an
// identical result.
func ComputeRisk(signals RiskSignals) RiskResult {
	score := 0
	var flags []models.RiskFlag

	if signals.AccountAgeDays < brandNewAccountDays {
		score += weightBrandNewAccount
		flags = append(flags, models.FlagNewAccount)
	} else if signals.AccountAgeDays < youngAccountDays {
		score += weightYoungAccount
	}

	if signals.PriorSubmissions >= repeatApplicantAt {
		score += weightRepeatApplicant
		flags = append(flags, models.FlagRepeatApplicant)
	} else if signals.PriorSubmissions > 0 {
		score += weightPriorSubmission * signals.PriorSubmissions
	}

	if signals.MinutesSinceLastAttempt >= 0 && signals.MinutesSinceLastAttempt < rapidResubmitMins {
		score += weightRapidResubmit
		flags = append(flags, models.FlagRapidResubmit)
	}

	if signals.DeviceReuseCount > 0 {
		reuse := weightDeviceReuse * signals.DeviceReuseCount
		if reuse > maxDeviceReuseWeight {
			reuse = maxDeviceReuseWeight
		}
		score += reuse
		flags = append(flags, models.FlagDuplicateDevice)
	}

	if countryMismatch(signals.DeclaredCountry, signals.OriginCountry) {
		score += weightGeoMismatch
		flags = append(flags, models.FlagGeoMismatch)
	}

	if signals.RequiredDocumentCount > 0 && signals.DocumentCount <= signals.RequiredDocumentCount {
		score += weightThinFile
		flags = append(flags, models.FlagThinFile)
	}

	if score > 100 {
		score = 100
	}
	if score < 0 {
		score = 0
	}

	return RiskResult{Score: score, Flags: flags}
}

func countryMismatch(declared, origin string) bool {
	if declared == "" || origin == "" {
		return false
	}
	return !strings.EqualFold(strings.TrimSpace(declared), strings.TrimSpace(origin))
}
