package csvexport

import (
	"bytes"
	"encoding/csv"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sitecheck/internal/domain"
)

func sampleInvoice() domain.FlaggedInvoice {
	total := 2150.5
	return domain.FlaggedInvoice{
		Invoice: domain.Invoice{
			ID:             uuid.New(),
			InvoiceNumber:  "INV-001",
			ContractorName: "Acme Builders",
			InvoiceDate:    "2024-03-01",
			DueDate:        "2024-03-31",
			TotalAmount:    &total,
			ClaimedHours:   40,
			Status:         domain.InvoiceStatusFlagged,
			AIConfidence:   77,
			CreatedAt:      time.Date(2024, 3, 2, 10, 30, 0, 0, time.UTC),
		},
		Flags: []domain.Flag{domain.FlagCrewHourDiscrepancy, domain.FlagHighMobilizationFees},
	}
}

func TestWriteHeader(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)
	require.NoError(t, w.WriteHeader())
	w.Flush()
	require.NoError(t, w.Error())

	r := csv.NewReader(&buf)
	row, err := r.Read()
	require.NoError(t, err)

	assert.Len(t, row, 10)
	assert.Equal(t, "Invoice Number", row[0])
	assert.Equal(t, "Flags", row[8])
	assert.Equal(t, "Created At", row[9])
}

func TestWriteInvoices(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)
	require.NoError(t, w.WriteInvoices([]domain.FlaggedInvoice{sampleInvoice()}))
	w.Flush()
	require.NoError(t, w.Error())

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 1)

	row := rows[0]
	assert.Equal(t, "INV-001", row[0])
	assert.Equal(t, "Acme Builders", row[1])
	assert.Equal(t, "2024-03-01", row[2])
	assert.Equal(t, "2024-03-31", row[3])
	assert.Equal(t, "2150.50", row[4])
	assert.Equal(t, "40", row[5])
	assert.Equal(t, "flagged", row[6])
	assert.Equal(t, "77", row[7])
	assert.Equal(t, "crew_hour_discrepancy; high_mobilization_fees", row[8])
	assert.Equal(t, "2024-03-02T10:30:00Z", row[9])
}

func TestRow_MissingTotalAndFlags(t *testing.T) {
	inv := sampleInvoice()
	inv.TotalAmount = nil
	inv.Flags = nil
	inv.ClaimedHours = 7.5

	row := Row(&inv)

	assert.Empty(t, row[4])
	assert.Equal(t, "7.5", row[5])
	assert.Empty(t, row[8])
}

func TestRow_QuotesCommas(t *testing.T) {
	inv := sampleInvoice()
	inv.ContractorName = `Smith, Jones & "Sons"`

	var buf bytes.Buffer
	w := NewWriter(&buf)
	require.NoError(t, w.WriteInvoices([]domain.FlaggedInvoice{inv}))
	w.Flush()

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	assert.Equal(t, `Smith, Jones & "Sons"`, rows[0][1])
}

func TestFormatMoney(t *testing.T) {
	assert.Equal(t, "0.00", FormatMoney(0))
	assert.Equal(t, "1234.57", FormatMoney(1234.567))
}

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"simple", "Q3 Site Invoices", "Q3_Site_Invoices"},
		{"special chars", "FY 2024-25 / Q3 (Oct–Dec)", "FY_2024-25_Q3_Oct_Dec"},
		{"hyphens and underscores preserved", "my-invoices_2025", "my-invoices_2025"},
		{"consecutive underscores collapsed", "test___invoices", "test_invoices"},
		{"leading/trailing cleaned", "  hello  ", "hello"},
		{
			"long name truncated",
			"abcdefghijklmnopqrstuvwxyz-abcdefghijklmnopqrstuvwxyz-abcdefghijklmnopqrstuvwxyz-abcdefghijklmnopqrstuvwxyz-extra",
			"abcdefghijklmnopqrstuvwxyz-abcdefghijklmnopqrstuvwxyz-abcdefghijklmnopqrstuvwxyz-abcdefghijklmnopqrs",
		},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, SanitizeFilename(tt.input))
		})
	}
}

func TestBuildFilename(t *testing.T) {
	today := time.Now().Format("2006-01-02")
	assert.Equal(t, "Q3_Site_Invoices_"+today+".csv", BuildFilename("Q3 Site Invoices", "csv"))
	assert.Equal(t, "invoices_"+today+".xlsx", BuildFilename("", "xlsx"))
}
