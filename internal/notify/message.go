// Package notify renders reviewer alerts for flagged and disputed invoices.
package notify

import (
	"fmt"
	"html"
	"strings"

	"sitecheck/internal/domain"
	"sitecheck/internal/port"
)

// Message is a rendered verdict alert.
type Message struct {
	Subject string
	HTML    string
	Text    string
}

// ShouldNotify reports whether a verdict warrants a reviewer alert.
func ShouldNotify(result *domain.VerificationResult) bool {
	if result == nil {
		return false
	}
	return result.Status == domain.VerificationFlagged || result.Status == domain.VerificationDisputed
}

// InvoiceLink returns the reviewer-facing URL for an invoice, or "" when no
// frontend is configured.
func InvoiceLink(frontendURL string, notice port.VerdictNotice) string {
	if frontendURL == "" || notice.Invoice == nil {
		return ""
	}
	return fmt.Sprintf("%s/invoices/%s", strings.TrimRight(frontendURL, "/"), notice.Invoice.ID)
}

// Render builds the alert for a verdict notice.
func Render(notice port.VerdictNotice, frontendURL string) Message {
	inv := notice.Invoice
	res := notice.Result

	number := inv.InvoiceNumber
	if number == "" {
		number = inv.ID.String()
	}
	contractor := inv.ContractorName
	if contractor == "" {
		contractor = "unknown contractor"
	}

	subject := fmt.Sprintf("[%s] Invoice %s from %s", strings.ToUpper(string(res.Status)), number, contractor)

	flags := make([]string, 0, len(res.Flags))
	for _, f := range res.Flags {
		flags = append(flags, string(f))
	}
	flagLine := "none"
	if len(flags) > 0 {
		flagLine = strings.Join(flags, ", ")
	}

	link := InvoiceLink(frontendURL, notice)

	var text strings.Builder
	fmt.Fprintf(&text, "Invoice %s from %s was marked %s (confidence %d).\n\n", number, contractor, res.Status, res.Confidence)
	fmt.Fprintf(&text, "Flags: %s\n", flagLine)
	if notice.PotentialOvercharge > 0 {
		fmt.Fprintf(&text, "Potential overcharge: $%.2f\n", notice.PotentialOvercharge)
	}
	if len(res.Recommendations) > 0 {
		text.WriteString("\nRecommendations:\n")
		for _, r := range res.Recommendations {
			fmt.Fprintf(&text, "- %s\n", r)
		}
	}
	if link != "" {
		fmt.Fprintf(&text, "\nReview: %s\n", link)
	}

	var body strings.Builder
	body.WriteString(`<!DOCTYPE html>
<html>
<head><meta charset="UTF-8"></head>
<body style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto; padding: 20px;">
`)
	fmt.Fprintf(&body, "  <h2 style=\"color: #333;\">Invoice %s needs review</h2>\n", html.EscapeString(number))
	fmt.Fprintf(&body, "  <p><strong>%s</strong> was marked <strong>%s</strong> with confidence %d.</p>\n",
		html.EscapeString(contractor), html.EscapeString(string(res.Status)), res.Confidence)
	fmt.Fprintf(&body, "  <p>Flags: %s</p>\n", html.EscapeString(flagLine))
	if notice.PotentialOvercharge > 0 {
		fmt.Fprintf(&body, "  <p>Potential overcharge: $%.2f</p>\n", notice.PotentialOvercharge)
	}
	if len(res.Recommendations) > 0 {
		body.WriteString("  <ul>\n")
		for _, r := range res.Recommendations {
			fmt.Fprintf(&body, "    <li>%s</li>\n", html.EscapeString(r))
		}
		body.WriteString("  </ul>\n")
	}
	if link != "" {
		fmt.Fprintf(&body, "  <p style=\"text-align: center; margin: 30px 0;\"><a href=\"%s\" style=\"background-color: #4F46E5; color: white; padding: 12px 24px; text-decoration: none; border-radius: 6px; display: inline-block;\">Review Invoice</a></p>\n",
			html.EscapeString(link))
	}
	body.WriteString("</body>\n</html>")

	return Message{Subject: subject, HTML: body.String(), Text: text.String()}
}
