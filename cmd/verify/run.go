package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"sitecheck/internal/domain"
	"sitecheck/internal/extractor"
	_ "sitecheck/internal/extractor/claude"
	_ "sitecheck/internal/extractor/gemini"
	_ "sitecheck/internal/extractor/openai"
	"sitecheck/internal/verify"
)

var (
	runInvoice   string
	runWorkOrder string
	runPhotos    []string
	runOutput    string
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the verification pipeline on local files",
	Long: `Runs extraction, cross-validation and scoring on local files and prints
the extracted invoice together with the verdict as JSON.

Examples:
  sitecheck-verify run --invoice invoice.pdf
  sitecheck-verify run --invoice invoice.pdf --work-order wo.pdf --photo a.jpg --photo b.png
  sitecheck-verify run --invoice invoice.pdf --output verdict.json`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		sub, err := loadSubmission(runInvoice, runWorkOrder, runPhotos)
		if err != nil {
			return err
		}
		if cfg.Upload.MaxPhotos > 0 && len(sub.Photos) > cfg.Upload.MaxPhotos {
			return fmt.Errorf("run: %d photos, at most %d allowed: %w",
				len(sub.Photos), cfg.Upload.MaxPhotos, domain.ErrTooManyPhotos)
		}

		parser, err := extractor.NewParserChain(&cfg.Extractor)
		if err != nil {
			return fmt.Errorf("run: extractor: %w", err)
		}
		engine := verify.NewEngine(verify.Rules{
			CrewHourTolerance:           cfg.Verify.CrewHourTolerance,
			MobilizationOverchargeRatio: cfg.Verify.MobilizationOverchargeRatio,
		})
		verifier := verify.NewVerifier(extractor.NewService(parser, extractor.OptionsFromConfig(&cfg.Extractor)), engine)

		outcome, err := verifier.Verify(cmd.Context(), sub)
		if err != nil {
			return fmt.Errorf("run: %w", err)
		}
		zap.L().Info("verification complete",
			zap.String("status", string(outcome.Result.Status)),
			zap.Int("confidence", outcome.Result.Confidence),
		)

		if runOutput != "" {
			return writeReportFile(runOutput, outcome)
		}
		return writeReport(cmd.OutOrStdout(), outcome)
	},
}

func init() {
	runCmd.Flags().StringVar(&runInvoice, "invoice", "", "invoice file (pdf, jpg or png)")
	runCmd.Flags().StringVar(&runWorkOrder, "work-order", "", "work order file (pdf, jpg or png)")
	runCmd.Flags().StringArrayVar(&runPhotos, "photo", nil, "site photo (jpg or png); repeatable")
	runCmd.Flags().StringVar(&runOutput, "output", "", "write the report to this file instead of stdout")
	_ = runCmd.MarkFlagRequired("invoice")

	rootCmd.AddCommand(runCmd)
}

// report is the JSON printed by the run command.
type report struct {
	Invoice      *domain.InvoiceData        `json:"invoice"`
	Verification *domain.VerificationResult `json:"verification"`
}

func writeReport(w io.Writer, outcome *verify.Outcome) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(report{Invoice: outcome.Invoice, Verification: outcome.Result}); err != nil {
		return fmt.Errorf("run: encode report: %w", err)
	}
	return nil
}

// writeReportFile writes the report to path, reporting close errors.
func writeReportFile(path string, outcome *verify.Outcome) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("run: create output: %w", err)
	}
	if err := writeReport(f, outcome); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("run: close output: %w", err)
	}
	return nil
}

func loadSubmission(invoicePath, workOrderPath string, photoPaths []string) (verify.Submission, error) {
	var sub verify.Submission

	invoice, err := loadDocument(invoicePath, domain.DocumentKindInvoice)
	if err != nil {
		return sub, err
	}
	sub.Invoice = invoice

	if workOrderPath != "" {
		wo, err := loadDocument(workOrderPath, domain.DocumentKindWorkOrder)
		if err != nil {
			return sub, err
		}
		sub.WorkOrder = &wo
	}

	for _, p := range photoPaths {
		photo, err := loadDocument(p, domain.DocumentKindPhoto)
		if err != nil {
			return sub, err
		}
		sub.Photos = append(sub.Photos, photo)
	}
	return sub, nil
}

// loadDocument reads a local file and derives its content type from the extension.
func loadDocument(path string, kind domain.DocumentKind) (domain.Document, error) {
	if path == "" {
		return domain.Document{}, fmt.Errorf("loadDocument: %s: %w", kind, domain.ErrMissingRequiredInput)
	}
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
	ft, ok := domain.AllowedExtensions[ext]
	if !ok || !kind.AcceptsFileType(ft) {
		return domain.Document{}, fmt.Errorf("loadDocument: %s %q: %w", kind, path, domain.ErrUnsupportedFileType)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return domain.Document{}, fmt.Errorf("loadDocument: %s: %w", kind, err)
	}
	if len(data) == 0 {
		return domain.Document{}, fmt.Errorf("loadDocument: %s %q is empty: %w", kind, path, domain.ErrMissingRequiredInput)
	}
	return domain.Document{
		Name:        filepath.Base(path),
		ContentType: domain.AllowedFileTypes[ft],
		Data:        data,
	}, nil
}
