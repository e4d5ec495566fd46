package verify

import (
	"math"

	"sitecheck/internal/domain"
)

// Score weights.
const (
	baseScore               = 50.0
	workCompletedBonus      = 20.0
	equipmentConfirmedBonus = 10.0
	crewDiscrepancyPenalty  = 15.0
	mobilizationFeesPenalty = 10.0
	photoConfidenceMidpoint = 50.0
	photoConfidenceWeight   = 0.3
	minScore                = 0.0
	maxScore                = 100.0
)

// Classification thresholds, applied to the rounded score.
const (
	VerifiedThreshold = 85
	FlaggedThreshold  = 70
)

// ScoreConfidence reduces the findings and photo signals to an integer in [0, 100].
func ScoreConfidence(findings *domain.Findings, photos *domain.PhotoAnalysis) int {
	score := baseScore

	if photos != nil {
		if photos.WorkCompleted {
			score += workCompletedBonus
		}
		if photos.EquipmentConfirmed {
			score += equipmentConfirmedBonus
		}
	}

	for _, kind := range findings.Kinds() {
		switch kind {
		case domain.FindingCrewDiscrepancy:
			score -= crewDiscrepancyPenalty
		case domain.FindingMobilizationFees:
			score -= mobilizationFeesPenalty
		case domain.FindingWorkScope, domain.FindingPhotoVerification:
		}
	}

	var photoConfidence float64
	if photos != nil {
		photoConfidence = photos.Confidence
	}
	score += (photoConfidence - photoConfidenceMidpoint) * photoConfidenceWeight

	score = math.Max(minScore, math.Min(maxScore, score))
	return int(math.Round(score))
}

// Classify maps a confidence score to its verdict.
func Classify(confidence int) domain.VerificationStatus {
	switch {
	case confidence >= VerifiedThreshold:
		return domain.VerificationVerified
	case confidence >= FlaggedThreshold:
		return domain.VerificationFlagged
	default:
		return domain.VerificationDisputed
	}
}

// Score builds the final verdict from an engine assessment.
func Score(a Assessment, photos *domain.PhotoAnalysis) *domain.VerificationResult {
	confidence := ScoreConfidence(&a.Findings, photos)
	return &domain.VerificationResult{
		Status:          Classify(confidence),
		Confidence:      confidence,
		Findings:        a.Findings,
		Flags:           a.Flags,
		Recommendations: a.Recommendations,
	}
}
