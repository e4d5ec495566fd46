package verify

import (
	"fmt"
	"strconv"
	"strings"

	"sitecheck/internal/domain"
)

// Recommendation texts appended by the rules, in rule order.
const (
	RecommendClarifyHourlyBilling  = "Request clarification on hourly billing structure"
	RecommendNegotiateMobilization = "Negotiate mobilization fees"
	RecommendPhotoCompletion       = "Work completion verified via photos"
)

const (
	crewHourQuestion     = "Is this per-person or total crew hours?"
	mobilizationQuestion = "Industry standard is 1 hour total for local jobs"
)

// Rules holds the heuristic constants used by the cross-validation checks.
type Rules struct {
	// CrewHourTolerance is how far billed hours may drift from the
	// per-crew average before the discrepancy is reported.
	CrewHourTolerance float64
	// MobilizationOverchargeRatio is the share of a repeated mobilization
	// charge treated as overcharge.
	MobilizationOverchargeRatio float64
}

// DefaultRules returns the standard heuristic constants.
func DefaultRules() Rules {
	return Rules{
		CrewHourTolerance:           1.0,
		MobilizationOverchargeRatio: 0.66,
	}
}

// Assessment is the output of one engine run.
type Assessment struct {
	Findings        domain.Findings
	Flags           []domain.Flag
	Recommendations []string
}

func (a *Assessment) flag(f domain.Flag) {
	for _, existing := range a.Flags {
		if existing == f {
			return
		}
	}
	a.Flags = append(a.Flags, f)
}

func (a *Assessment) recommend(r string) {
	a.Recommendations = append(a.Recommendations, r)
}

// Engine cross-checks invoice line items against work order and photo
// evidence. It holds no state between runs.
type Engine struct {
	rules Rules
}

// NewEngine creates an Engine with the given rule constants.
func NewEngine(rules Rules) *Engine {
	return &Engine{rules: rules}
}

// Rules returns the constants the engine was built with.
func (e *Engine) Rules() Rules {
	return e.rules
}

// Evaluate runs every rule in order. Missing data never fails a run; the
// affected rule simply does not trigger.
func (e *Engine) Evaluate(invoice *domain.InvoiceData, workOrder *domain.WorkOrderData, photos *domain.PhotoAnalysis) Assessment {
	a := Assessment{
		Flags:           []domain.Flag{},
		Recommendations: []string{},
	}
	if invoice == nil {
		invoice = &domain.InvoiceData{}
	}
	if workOrder == nil {
		workOrder = &domain.WorkOrderData{}
	}

	e.checkCrewHours(&a, invoice, workOrder)
	e.checkMobilization(&a, invoice)
	checkPhotos(&a, photos)

	return a
}

func (e *Engine) checkCrewHours(a *Assessment, invoice *domain.InvoiceData, workOrder *domain.WorkOrderData) {
	item, ok := findLineItem(invoice.LineItems, "hour")
	if !ok {
		return
	}
	crewCount := len(workOrder.Crew)
	if crewCount == 0 {
		return
	}

	claimed := domain.Float(item.Quantity)
	total := totalCrewHours(workOrder)
	avg := total / float64(crewCount)

	if claimed <= 0 || total <= 0 || abs(claimed-avg) <= e.rules.CrewHourTolerance {
		return
	}

	overcharge := (claimed*float64(crewCount) - claimed) * domain.Float(item.UnitPrice)
	a.Findings.CrewDiscrepancy = &domain.CrewDiscrepancyFinding{
		Status:              domain.FindingStatusWarning,
		InvoiceClaims:       formatNumber(claimed) + " hours",
		WorkOrderShows:      fmt.Sprintf("%d crew × %.1f hours = %s total", crewCount, avg, formatNumber(total)),
		Question:            crewHourQuestion,
		PotentialOvercharge: domain.FloatPtr(overcharge),
	}
	a.flag(domain.FlagCrewHourDiscrepancy)
	a.recommend(RecommendClarifyHourlyBilling)
}

func (e *Engine) checkMobilization(a *Assessment, invoice *domain.InvoiceData) {
	item, ok := findLineItem(invoice.LineItems, "mobilization")
	if !ok || domain.Float(item.Quantity) <= 1 {
		return
	}

	amount := domain.Float(item.Amount)
	a.Findings.MobilizationFees = &domain.MobilizationFeesFinding{
		Status:              domain.FindingStatusReviewNeeded,
		Claimed:             amount,
		Question:            mobilizationQuestion,
		PotentialOvercharge: domain.FloatPtr(amount * e.rules.MobilizationOverchargeRatio),
	}
	a.flag(domain.FlagHighMobilizationFees)
	a.recommend(RecommendNegotiateMobilization)
}

func checkPhotos(a *Assessment, photos *domain.PhotoAnalysis) {
	if photos == nil {
		photos = FallbackPhotos().Value
	}
	snapshot := *photos
	a.Findings.PhotoVerification = &snapshot
	if photos.WorkCompleted {
		a.recommend(RecommendPhotoCompletion)
	}
}

// findLineItem returns the first item whose description contains needle,
// ignoring case.
func findLineItem(items []domain.LineItem, needle string) (domain.LineItem, bool) {
	for _, item := range items {
		if strings.Contains(strings.ToLower(item.Description), needle) {
			return item, true
		}
	}
	return domain.LineItem{}, false
}

// totalCrewHours sums hoursPerCrew, or returns 0 when it is not aligned with crew.
func totalCrewHours(wo *domain.WorkOrderData) float64 {
	if len(wo.HoursPerCrew) != len(wo.Crew) {
		return 0
	}
	var total float64
	for _, h := range wo.HoursPerCrew {
		total += h
	}
	return total
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
