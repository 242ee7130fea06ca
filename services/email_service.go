package services

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"time"

	"github.com/NomadCrew/crewtrip-backend/config"
	"github.com/NomadCrew/crewtrip-backend/logger"
	"github.com/NomadCrew/crewtrip-backend/types"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/resend/resend-go/v2"
)

// InvitationMailer delivers invitation emails.
type InvitationMailer interface {
	SendInvitationEmail(ctx context.Context, email types.InvitationEmail) error
}

// emailSender is the slice of the Resend client the service uses.
type emailSender interface {
	SendWithContext(ctx context.Context, params *resend.SendEmailRequest) (*resend.SendEmailResponse, error)
}

type EmailMetrics struct {
	sendLatency prometheus.Histogram
	errorCount  prometheus.Counter
	sentCount   prometheus.Counter
}

type EmailService struct {
	config  *config.EmailConfig
	sender  emailSender
	tmpl    *template.Template
	metrics *EmailMetrics
}

var _ InvitationMailer = (*EmailService)(nil)

func NewEmailService(cfg *config.EmailConfig) *EmailService {
	return NewEmailServiceWithRegistry(cfg, prometheus.DefaultRegisterer)
}

func NewEmailServiceWithRegistry(cfg *config.EmailConfig, reg prometheus.Registerer) *EmailService {
	logger.GetLogger().Infow("Initializing email service",
		"from", cfg.FromAddress, "enabled", cfg.Enabled)

	metrics := &EmailMetrics{
		sendLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "crewtrip_email_send_duration_seconds",
			Help:    "Time taken to send emails",
			Buckets: []float64{.1, .25, .5, 1, 2.5, 5, 10},
		}),
		errorCount: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "crewtrip_email_errors_total",
			Help: "Total number of email sending errors",
		}),
		sentCount: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "crewtrip_emails_sent_total",
			Help: "Total number of emails sent",
		}),
	}
	reg.MustRegister(metrics.sendLatency, metrics.errorCount, metrics.sentCount)

	return &EmailService{
		config:  cfg,
		sender:  resend.NewClient(cfg.ResendAPIKey).Emails,
		tmpl:    template.Must(template.New("invitation").Parse(invitationEmailTemplate)),
		metrics: metrics,
	}
}

// SendInvitationEmail renders and sends an invitation. When email is disabled
// it only logs.
func (s *EmailService) SendInvitationEmail(ctx context.Context, email types.InvitationEmail) error {
	log := logger.GetLogger()
	if !s.config.Enabled {
		log.Debugw("Email disabled, skipping invitation", "trip", email.TripName)
		return nil
	}

	startTime := time.Now()
	defer func() {
		s.metrics.sendLatency.Observe(time.Since(startTime).Seconds())
	}()

	if email.To == "" || email.TripName == "" || email.TripURL == "" {
		s.metrics.errorCount.Inc()
		return fmt.Errorf("invitation email is missing recipient, trip name or link")
	}

	var body bytes.Buffer
	if err := s.tmpl.Execute(&body, email); err != nil {
		s.metrics.errorCount.Inc()
		log.Errorw("Failed to execute email template", "error", err)
		return fmt.Errorf("failed to execute template: %w", err)
	}

	params := &resend.SendEmailRequest{
		From:    fmt.Sprintf("%s <%s>", s.config.FromName, s.config.FromAddress),
		To:      []string{email.To},
		Subject: fmt.Sprintf("%s invited you to %s", inviterOrDefault(email.InviterName), email.TripName),
		Html:    body.String(),
	}

	if _, err := s.sender.SendWithContext(ctx, params); err != nil {
		s.metrics.errorCount.Inc()
		log.Errorw("Failed to send email", "error", err, "subject", params.Subject)
		return fmt.Errorf("email send failed: %w", err)
	}

	s.metrics.sentCount.Inc()
	log.Infow("Invitation email sent", "subject", params.Subject)
	return nil
}

func inviterOrDefault(name string) string {
	if name == "" {
		return "Your crew"
	}
	return name
}

const invitationEmailTemplate = `<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>You're invited to {{.TripName}}</title>
    <style>
        body { font-family: sans-serif; background-color: #f7f7f7; color: #333333; margin: 0; padding: 20px; text-align: center; }
        .container { max-width: 600px; margin: 20px auto; background-color: #ffffff; padding: 30px; border-radius: 12px; }
        h1 { color: #1F7A8C; font-size: 26px; }
        p { font-size: 16px; line-height: 1.6; }
        .button { display: inline-block; padding: 12px 24px; font-weight: bold; text-decoration: none; background-color: #1F7A8C; color: #ffffff; border-radius: 8px; }
        .link { font-size: 14px; color: #777777; word-break: break-all; }
    </style>
</head>
<body>
    <div class="container">
        <h1>Pack your bags{{if .InviteeName}}, {{.InviteeName}}{{end}}!</h1>
        <p>{{if .InviterName}}{{.InviterName}}{{else}}Your crew{{end}} added you to "{{.TripName}}"{{if .Destination}} in {{.Destination}}{{end}}.</p>
        <p>Open the trip to RSVP and see what the group is planning:</p>
        <p><a href="{{.TripURL}}" class="button">View Trip</a></p>
        <p class="link">Or copy this link:<br/>{{.TripURL}}</p>
    </div>
</body>
</html>`
