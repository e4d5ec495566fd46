package domain

// FindingKind names one of the fixed cross-validation checks.
type FindingKind string

const (
	FindingCrewDiscrepancy   FindingKind = "crewDiscrepancy"
	FindingMobilizationFees  FindingKind = "mobilizationFees"
	FindingWorkScope         FindingKind = "workScope"
	FindingPhotoVerification FindingKind = "photoVerification"
)

// Display labels used in the status field of a finding.
const (
	FindingStatusWarning      = "WARNING"
	FindingStatusReviewNeeded = "REVIEW NEEDED"
)

// CrewDiscrepancyFinding reports billed hours that disagree with the work order.
type CrewDiscrepancyFinding struct {
	Status              string   `json:"status"`
	InvoiceClaims       string   `json:"invoiceClaims"`
	WorkOrderShows      string   `json:"workOrderShows"`
	Question            string   `json:"question"`
	PotentialOvercharge *float64 `json:"potentialOvercharge,omitempty"`
}

// MobilizationFeesFinding reports mobilization billed more than once.
type MobilizationFeesFinding struct {
	Status              string   `json:"status"`
	Claimed             float64  `json:"claimed"`
	Question            string   `json:"question"`
	PotentialOvercharge *float64 `json:"potentialOvercharge,omitempty"`
}

// WorkScopeFinding relates billed hours to the described work.
type WorkScopeFinding struct {
	Status          string  `json:"status"`
	ClaimedHours    float64 `json:"claimedHours"`
	WorkDescription string  `json:"workDescription"`
}

// Findings holds at most one finding per kind. A nil field means the check
// did not trigger.
type Findings struct {
	CrewDiscrepancy   *CrewDiscrepancyFinding  `json:"crewDiscrepancy,omitempty"`
	MobilizationFees  *MobilizationFeesFinding `json:"mobilizationFees,omitempty"`
	WorkScope         *WorkScopeFinding        `json:"workScope,omitempty"`
	PhotoVerification *PhotoAnalysis           `json:"photoVerification,omitempty"`
}

// Has reports whether a finding of the given kind is present.
func (f *Findings) Has(kind FindingKind) bool {
	switch kind {
	case FindingCrewDiscrepancy:
		return f.CrewDiscrepancy != nil
	case FindingMobilizationFees:
		return f.MobilizationFees != nil
	case FindingWorkScope:
		return f.WorkScope != nil
	case FindingPhotoVerification:
		return f.PhotoVerification != nil
	default:
		return false
	}
}

// Kinds lists the present finding kinds in display order.
func (f *Findings) Kinds() []FindingKind {
	all := []FindingKind{
		FindingCrewDiscrepancy,
		FindingMobilizationFees,
		FindingWorkScope,
		FindingPhotoVerification,
	}
	out := make([]FindingKind, 0, len(all))
	for _, k := range all {
		if f.Has(k) {
			out = append(out, k)
		}
	}
	return out
}

// PotentialOvercharge sums the overcharge estimates across findings.
func (f *Findings) PotentialOvercharge() float64 {
	var total float64
	if f.CrewDiscrepancy != nil {
		total += Float(f.CrewDiscrepancy.PotentialOvercharge)
	}
	if f.MobilizationFees != nil {
		total += Float(f.MobilizationFees.PotentialOvercharge)
	}
	return total
}

// EvidenceSources records where the optional inputs of a run came from.
type EvidenceSources struct {
	WorkOrder Provenance `json:"workOrder"`
	Photos    Provenance `json:"photos"`
}

// VerificationResult is the verdict for one submission.
type VerificationResult struct {
	Status          VerificationStatus `json:"status"`
	Confidence      int                `json:"confidence"`
	Findings        Findings           `json:"findings"`
	Flags           []Flag             `json:"flags"`
	Recommendations []string           `json:"recommendations"`
	Evidence        EvidenceSources    `json:"evidence"`
}
