package v1

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/smtp"
	"strings"
	"sync"
	"time"

	"status-monitor/config"
	"status-monitor/models"
)

// Email is one alert message.
type Email struct {
	Subject string
	Body    string
}

// Mailer delivers one email synchronously.
type Mailer interface {
	Send(ctx context.Context, email Email) error
}

// AlertDispatcher sends alerts in the background. Errors are only logged.
type AlertDispatcher struct {
	mailer  Mailer
	timeout time.Duration
	wg      sync.WaitGroup
}

func NewAlertDispatcher(mailer Mailer) *AlertDispatcher {
	return &AlertDispatcher{mailer: mailer, timeout: 15 * time.Second}
}

func (d *AlertDispatcher) IncidentOpened(comp models.ComponentConfig, result models.HealthCheckResult) {
	errText := "N/A"
	if result.Error != nil {
		errText = *result.Error
	}
	d.dispatch(Email{
		Subject: fmt.Sprintf("[Status] Incident: %s - %s", comp.Name, humanStatus(result.Status)),
		Body: fmt.Sprintf("Service: %s\nStatus: %s\nTime: %s\nLatency: %dms\nError: %s\n\n"+
			"Automated monitoring has detected an issue and created an incident.",
			comp.Name, humanStatus(result.Status), result.Timestamp.Format(time.RFC3339), result.LatencyMs, errText),
	})
}

func (d *AlertDispatcher) IncidentResolved(comp models.ComponentConfig, result models.HealthCheckResult) {
	d.dispatch(Email{
		Subject: fmt.Sprintf("[Status] Resolved: %s back to operational", comp.Name),
		Body: fmt.Sprintf("Service: %s\nStatus: Operational\nTime: %s\nLatency: %dms\n\n"+
			"The service has recovered and is operating normally.",
			comp.Name, result.Timestamp.Format(time.RFC3339), result.LatencyMs),
	})
}

func (d *AlertDispatcher) dispatch(email Email) {
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		defer func() {
			if r := recover(); r != nil {
				log.Printf("[ALERT] Panic sending %q: %v", email.Subject, r)
			}
		}()

		ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
		defer cancel()

		if err := d.mailer.Send(ctx, email); err != nil {
			log.Printf("[ALERT] Failed to send %q: %v", email.Subject, err)
			return
		}
		log.Printf("[ALERT] Sent %q", email.Subject)
	}()
}

// Wait blocks until in-flight alerts have finished. Used on shutdown.
func (d *AlertDispatcher) Wait() {
	d.wg.Wait()
}

// NewMailer picks the configured backend: Resend, then SMTP, then log only.
func NewMailer(cfg *config.Config) Mailer {
	switch {
	case cfg.ResendAPIKey != "":
		return &ResendMailer{
			APIKey:   cfg.ResendAPIKey,
			From:     cfg.EmailFrom,
			To:       cfg.AlertEmail,
			Endpoint: ResendEndpoint,
			Client:   &http.Client{Timeout: 10 * time.Second},
		}
	case cfg.SMTPHost != "":
		return &SMTPMailer{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			Username: cfg.SMTPUser,
			Password: cfg.SMTPPassword,
			From:     cfg.EmailFrom,
			To:       cfg.AlertEmail,
		}
	default:
		log.Println("[ALERT] No RESEND_API_KEY or SMTP_HOST configured, alerts will only be logged")
		return LogMailer{}
	}
}

const ResendEndpoint = "https://api.resend.com/emails"

// ResendMailer sends through the Resend HTTP API.
type ResendMailer struct {
	APIKey   string
	From     string
	To       string
	Endpoint string
	Client   *http.Client
}

func (m *ResendMailer) Send(ctx context.Context, email Email) error {
	payload, err := json.Marshal(map[string]any{
		"from":    m.From,
		"to":      []string{m.To},
		"subject": email.Subject,
		"text":    email.Body,
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.Endpoint, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+m.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := m.Client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("resend returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	return nil
}

// SMTPMailer sends plain-text email through an SMTP relay.
type SMTPMailer struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	To       string
}

func (m *SMTPMailer) Send(ctx context.Context, email Email) error {
	msg := fmt.Sprintf("From: %s\r\n", m.From)
	msg += fmt.Sprintf("To: %s\r\n", m.To)
	msg += fmt.Sprintf("Subject: %s\r\n", email.Subject)
	msg += "MIME-Version: 1.0\r\n"
	msg += "Content-Type: text/plain; charset=UTF-8\r\n"
	msg += "\r\n"
	msg += email.Body

	recipients := strings.Split(m.To, ",")
	for i, r := range recipients {
		recipients[i] = strings.TrimSpace(r)
	}

	var auth smtp.Auth
	if m.Username != "" && m.Password != "" {
		auth = smtp.PlainAuth("", m.Username, m.Password, m.Host)
	}

	addr := fmt.Sprintf("%s:%d", m.Host, m.Port)
	done := make(chan error, 1)
	go func() {
		done <- smtp.SendMail(addr, auth, envelopeAddress(m.From), recipients, []byte(msg))
	}()

	select {
	case err := <-done:
		if err != nil {
			return fmt.Errorf("failed to send email: %w", err)
		}
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// envelopeAddress strips a display name: "Name <a@b>" -> "a@b".
func envelopeAddress(from string) string {
	if i := strings.LastIndex(from, "<"); i >= 0 {
		if j := strings.LastIndex(from, ">"); j > i {
			return from[i+1 : j]
		}
	}
	return strings.TrimSpace(from)
}

// LogMailer only logs the alert.
type LogMailer struct{}

func (LogMailer) Send(_ context.Context, email Email) error {
	log.Printf("[ALERT] (log only) %s", email.Subject)
	return nil
}
