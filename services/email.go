package services

import (
	"bytes"
	"fmt"
	htmltemplate "html/template"
	"os"
	"path/filepath"
	"strings"
	texttemplate "text/template"

	"calificaciones_app_go/config"
	"calificaciones_app_go/logging"

	"github.com/resend/resend-go/v2"
)

// Email represents an email message
type Email struct {
	To       []string
	Subject  string
	HTMLBody string
	TextBody string
}

// EmailTemplateDir holds optional overrides of the built-in templates
var EmailTemplateDir = "templates/emails"

// builtinTemplates are used when no override exists on disk
var builtinTemplates = map[string]string{
	"score_returned.html": `<html><body>
<p>{{.OfficialName}},</p>
<p>La calificación del periodo {{.Period}} fue devuelta por {{.ReviewerName}} con las siguientes observaciones:</p>
<blockquote>{{.Note}}</blockquote>
<p><a href="{{.Link}}">Ver calificación</a></p>
</body></html>`,
	"score_returned.txt": `{{.OfficialName}},

La calificación del periodo {{.Period}} fue devuelta por {{.ReviewerName}} con las siguientes observaciones:

{{.Note}}

Ver calificación: {{.Link}}
`,
	"score_approved.html": `<html><body>
<p>{{.OfficialName}},</p>
<p>La calificación del periodo {{.Period}} fue aprobada con un puntaje ponderado de {{printf "%.2f" .WeightedScore}}.</p>
<p><a href="{{.Link}}">Ver calificación</a></p>
</body></html>`,
	"score_approved.txt": `{{.OfficialName}},

La calificación del periodo {{.Period}} fue aprobada con un puntaje ponderado de {{printf "%.2f" .WeightedScore}}.

Ver calificación: {{.Link}}
`,
}

// loadTemplate renders templateName + ".html/.txt" from EmailTemplateDir,
// falling back to the built-in template of the same name.
func loadTemplate(templateName string, data interface{}) (html string, text string, err error) {
	read := func(ext string) (string, error) {
		path := filepath.Join(EmailTemplateDir, templateName+ext)
		content, err := os.ReadFile(path)
		if err == nil {
			return string(content), nil
		}
		if builtin, ok := builtinTemplates[templateName+ext]; ok {
			return builtin, nil
		}
		return "", fmt.Errorf("failed to read template %s: %v", path, err)
	}

	htmlSrc, err := read(".html")
	if err != nil {
		return "", "", err
	}
	htmlTmpl, err := htmltemplate.New(templateName + ".html").Parse(htmlSrc)
	if err != nil {
		return "", "", fmt.Errorf("failed to parse template %s.html: %v", templateName, err)
	}
	var htmlBuf bytes.Buffer
	if err := htmlTmpl.Execute(&htmlBuf, data); err != nil {
		return "", "", fmt.Errorf("failed to execute template %s.html: %v", templateName, err)
	}

	textSrc, err := read(".txt")
	if err != nil {
		return "", "", err
	}
	textTmpl, err := texttemplate.New(templateName + ".txt").Parse(textSrc)
	if err != nil {
		return "", "", fmt.Errorf("failed to parse template %s.txt: %v", templateName, err)
	}
	var textBuf bytes.Buffer
	if err := textTmpl.Execute(&textBuf, data); err != nil {
		return "", "", fmt.Errorf("failed to execute template %s.txt: %v", templateName, err)
	}

	return htmlBuf.String(), textBuf.String(), nil
}

func buildEmail(templateName string, data interface{}, toEmail, subject string) *Email {
	htmlBody, textBody, err := loadTemplate(templateName, data)
	if err != nil {
		logging.L().Errorw("failed to render email template", "template", templateName, "error", err)
	}
	return &Email{
		To:       []string{toEmail},
		Subject:  subject,
		HTMLBody: htmlBody,
		TextBody: textBody,
	}
}

// SendEmail sends an email using Resend API
func SendEmail(cfg *config.Config, email *Email) error {
	// In development mode, log the email instead of sending
	if cfg.EmailTestMode {
		logEmail(email)
		return nil
	}

	// Validate configuration
	if cfg.ResendAPIKey == "" {
		return fmt.Errorf("RESEND_API_KEY not configured")
	}

	client := resend.NewClient(cfg.ResendAPIKey)
	params := &resend.SendEmailRequest{
		From:    fmt.Sprintf("%s <%s>", cfg.EmailFromName, cfg.EmailFrom),
		To:      email.To,
		Subject: email.Subject,
	}

	// Set body (prefer HTML if available)
	if email.HTMLBody != "" {
		params.Html = email.HTMLBody
	}
	if email.TextBody != "" {
		params.Text = email.TextBody
	}

	// Validate we have at least one body
	if params.Html == "" && params.Text == "" {
		return fmt.Errorf("email must have either HTMLBody or TextBody")
	}

	sent, err := client.Emails.Send(params)
	if err != nil {
		return fmt.Errorf("failed to send email via Resend: %v", err)
	}

	logging.L().Infow("email sent via Resend", "id", sent.Id, "to", email.To)
	return nil
}

// logEmail logs email details in development mode
func logEmail(email *Email) {
	logging.L().Infow("email not sent (test mode)",
		"to", email.To,
		"subject", email.Subject,
		"text", truncate(email.TextBody, 500),
	)
}

// truncate truncates a string to a maximum length
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen]
}

// SendEmailAsync sends an email asynchronously using a goroutine.
// Handlers use it to avoid blocking HTTP responses.
func SendEmailAsync(cfg *config.Config, email *Email) {
	// Create a copy of the email to avoid race conditions
	emailCopy := &Email{
		To:       append([]string{}, email.To...),
		Subject:  email.Subject,
		HTMLBody: email.HTMLBody,
		TextBody: email.TextBody,
	}

	go func(cfg *config.Config, email *Email) {
		if err := SendEmail(cfg, email); err != nil {
			logging.L().Errorw("error sending async email", "error", err)
		}
	}(cfg, emailCopy)
}

// ScoreEmailData contains data for the workflow notification templates
type ScoreEmailData struct {
	OfficialName  string
	ReviewerName  string
	Period        int
	Note          string
	WeightedScore float64
	Link          string
}

// BuildScoreReturnedEmail notifies an official that the period score was returned
func BuildScoreReturnedEmail(officialEmail string, data ScoreEmailData) *Email {
	subject := fmt.Sprintf("Calificación %d devuelta", data.Period)
	return buildEmail("score_returned", data, officialEmail, subject)
}

// BuildScoreApprovedEmail notifies an official that the period score was approved
func BuildScoreApprovedEmail(officialEmail string, data ScoreEmailData) *Email {
	subject := fmt.Sprintf("Calificación %d aprobada", data.Period)
	return buildEmail("score_approved", data, officialEmail, subject)
}

// PeriodScoreLink builds the link to a period score for notifications
func PeriodScoreLink(appURL, periodScoreID string) string {
	return strings.TrimSuffix(appURL, "/") + "/api/period-scores/" + periodScoreID
}
