package usecase

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/smartplaces/community-api/internal/infra/integration/resend"
)

// ChangeEvent mirroreja l'event de canvi que envia la base de dades
// quan s'insereix una fila.
type ChangeEvent struct {
	Record map[string]interface{} `json:"record"`
	Table  string                 `json:"table"`
	Type   string                 `json:"type"`
}

type EmailResult struct {
	Sent    bool   `json:"sent"`
	Message string `json:"message"`
	ID      string `json:"id,omitempty"`

	skipped bool
}

// Status separa, per a les mètriques, el canal no configurat (skipped)
// de l'enviament que ha fallat de debò (failed).
func (r EmailResult) Status() string {
	switch {
	case r.Sent:
		return "sent"
	case r.skipped:
		return "skipped"
	default:
		return "failed"
	}
}

type SMSResult struct {
	Sent    bool   `json:"sent"`
	Message string `json:"message"`
	SID     string `json:"sid,omitempty"`

	skipped bool
}

func (r SMSResult) Status() string {
	switch {
	case r.Sent:
		return "sent"
	case r.skipped:
		return "skipped"
	default:
		return "failed"
	}
}

type NotifyOutput struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Email   EmailResult `json:"email"`
	SMS     SMSResult   `json:"sms"`
}

type EmailAPI interface {
	SendEmail(ctx context.Context, input resend.SendEmailInput) (string, error)
}

type SMSAPI interface {
	SendSMS(ctx context.Context, from, to, body string) (string, error)
}

type NotifyConfig struct {
	ResendAPIKey string
	FromEmail    string
	ToEmail      string

	TwilioAccountSID string
	TwilioAuthToken  string
	TwilioFromNumber string
	AdminPhoneNumber string
}

// recordFormatter dona a cada variant (lead / formulari de contacte)
// el seu assumpte, cos HTML i resum SMS.
type recordFormatter interface {
	Subject(record map[string]interface{}) string
	HTML(record map[string]interface{}) string
	ReplyTo(record map[string]interface{}) string
	SMS(record map[string]interface{}) string
}

// NotifyInsertUseCase despatxa un event d'inserció cap a email i SMS.
// Els dos canals són independents: que un falli o no estigui
// configurat no bloqueja l'altre ni la resposta.
type NotifyInsertUseCase struct {
	Table       string
	DoneMessage string
	Cfg         NotifyConfig
	Email       EmailAPI
	SMS         SMSAPI
	format      recordFormatter
}

func NewLeadNotifier(cfg NotifyConfig, email EmailAPI, sms SMSAPI) *NotifyInsertUseCase {
	return &NotifyInsertUseCase{
		Table:       "realbrave",
		DoneMessage: "RealBrave notifications sent",
		Cfg:         cfg,
		Email:       email,
		SMS:         sms,
		format:      leadFormatter{},
	}
}

func NewContactFormNotifier(cfg NotifyConfig, email EmailAPI, sms SMSAPI) *NotifyInsertUseCase {
	return &NotifyInsertUseCase{
		Table:       "Realbrave-contactforms",
		DoneMessage: "Contact form notifications sent",
		Cfg:         cfg,
		Email:       email,
		SMS:         sms,
		format:      contactFormatter{},
	}
}

// Matches diu si l'event és una inserció de la taula esperada.
func (uc *NotifyInsertUseCase) Matches(event ChangeEvent) bool {
	return event.Table == uc.Table && event.Type == "INSERT"
}

func (uc *NotifyInsertUseCase) NoOpMessage() string {
	return fmt.Sprintf("Not a %s insert event", uc.Table)
}

func (uc *NotifyInsertUseCase) Execute(ctx context.Context, record map[string]interface{}) *NotifyOutput {
	return &NotifyOutput{
		Success: true,
		Message: uc.DoneMessage,
		Email:   uc.sendEmail(ctx, record),
		SMS:     uc.sendSMS(ctx, record),
	}
}

func (uc *NotifyInsertUseCase) sendEmail(ctx context.Context, record map[string]interface{}) EmailResult {
	if uc.Cfg.ResendAPIKey == "" {
		return EmailResult{Sent: false, Message: "RESEND_API_KEY not set", skipped: true}
	}

	input := resend.SendEmailInput{
		From:    fmt.Sprintf("RealBrave Notifications <%s>", uc.Cfg.FromEmail),
		To:      []string{uc.Cfg.ToEmail},
		Subject: uc.format.Subject(record),
		HTML:    uc.format.HTML(record),
		ReplyTo: uc.format.ReplyTo(record),
	}

	id, err := uc.Email.SendEmail(ctx, input)
	if err != nil {
		return EmailResult{Sent: false, Message: err.Error()}
	}

	return EmailResult{Sent: true, Message: "Email sent successfully", ID: id}
}

func (uc *NotifyInsertUseCase) sendSMS(ctx context.Context, record map[string]interface{}) SMSResult {
	cfg := uc.Cfg
	if cfg.TwilioAccountSID == "" || cfg.TwilioAuthToken == "" ||
		cfg.TwilioFromNumber == "" || cfg.AdminPhoneNumber == "" {
		return SMSResult{Sent: false, Message: "Twilio credentials not set", skipped: true}
	}

	sid, err := uc.SMS.SendSMS(ctx, cfg.TwilioFromNumber, cfg.AdminPhoneNumber, uc.format.SMS(record))
	if err != nil {
		return SMSResult{Sent: false, Message: err.Error()}
	}

	return SMSResult{Sent: true, Message: "SMS sent successfully", SID: sid}
}

// ---- variant lead ----

type leadFormatter struct{}

func (leadFormatter) Subject(record map[string]interface{}) string {
	name := strOr(record, "name", "New Entry")
	return fmt.Sprintf("📋 New RealBrave Submission - %s", name)
}

func (leadFormatter) HTML(record map[string]interface{}) string {
	var rows strings.Builder
	for _, key := range sortedKeys(record) {
		if key == "id" || key == "created_at" {
			continue
		}
		rows.WriteString(fmt.Sprintf(
			"<tr><td><strong>%s</strong></td><td>%s</td></tr>",
			formatKey(key), strOr(record, key, "N/A"),
		))
	}

	return fmt.Sprintf(`<div>
<h2>New RealBrave Submission</h2>
<table>%s</table>
<p>This is an automated notification from RealBrave System</p>
<p>Timestamp: %s</p>
</div>`, rows.String(), time.Now().Format(time.RFC1123))
}

func (leadFormatter) ReplyTo(map[string]interface{}) string {
	return ""
}

func (leadFormatter) SMS(record map[string]interface{}) string {
	lines := []string{
		"📱 RealBrave New Submission:",
		"Name: " + strOr(record, "name", "Anonymous"),
	}
	if email := strOr(record, "email", ""); email != "" {
		lines = append(lines, "Email: "+email)
	}
	if phone := strOr(record, "phone", ""); phone != "" {
		lines = append(lines, "Phone: "+phone)
	}
	lines = append(lines, "Time: "+time.Now().Format("15:04:05"))
	return strings.Join(lines, "\n")
}

// ---- variant formulari de contacte ----

type contactFormatter struct{}

func (contactFormatter) Subject(record map[string]interface{}) string {
	if subject := strOr(record, "subject", ""); subject != "" {
		return "📬 Contact Form: " + subject
	}
	return "📬 New Contact Form Submission"
}

func (contactFormatter) HTML(record map[string]interface{}) string {
	return fmt.Sprintf(`<div>
<h2>New Contact Form Submission</h2>
<table>
<tr><td><strong>From</strong></td><td>%s</td></tr>
<tr><td><strong>Email</strong></td><td>%s</td></tr>
<tr><td><strong>Phone</strong></td><td>%s</td></tr>
<tr><td><strong>Subject</strong></td><td>%s</td></tr>
</table>
<h3>Message</h3>
<p>%s</p>
<p>This message was submitted through your RealBrave contact form</p>
<p>Received at: %s</p>
</div>`,
		strOr(record, "name", "Not provided"),
		strOr(record, "email", "Not provided"),
		strOr(record, "phone", "Not provided"),
		strOr(record, "subject", "Not provided"),
		strOr(record, "message", "No message provided"),
		time.Now().Format(time.RFC1123))
}

func (contactFormatter) ReplyTo(record map[string]interface{}) string {
	return strOr(record, "email", "")
}

func (contactFormatter) SMS(record map[string]interface{}) string {
	return fmt.Sprintf("📞 Contact Form:\nFrom: %s\nEmail: %s\nMessage: %s",
		strOr(record, "name", "Unknown"),
		strOr(record, "email", "N/A"),
		truncate(strOr(record, "message", "No message"), 100))
}

// ---- helpers ----

func strOr(record map[string]interface{}, key, fallback string) string {
	v, ok := record[key]
	if !ok || v == nil {
		return fallback
	}
	s := fmt.Sprintf("%v", v)
	if s == "" {
		return fallback
	}
	return s
}

func sortedKeys(record map[string]interface{}) []string {
	keys := make([]string, 0, len(record))
	for k := range record {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func formatKey(key string) string {
	words := strings.Split(key, "_")
	for i, w := range words {
		if w != "" {
			words[i] = strings.ToUpper(w[:1]) + w[1:]
		}
	}
	return strings.Join(words, " ")
}

// El cos lliure de l'SMS es retalla a 100 caràcters. Es compta en
// runes: el text porta accents i un tall per bytes podria partir un
// caràcter pel mig.
func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max]) + "..."
}
