package email

import (
	"fmt"
	"net/smtp"
	"strings"
	"time"

	"github.com/Dan9191/fraud-service/internal/config"
	"github.com/Dan9191/fraud-service/internal/models"
	"github.com/jordan-wright/email"
	"github.com/sirupsen/logrus"
)

// Sender handles sending emails via SMTP
type Sender struct {
	cfg    *config.Config
	logger *logrus.Logger
	send   func(e *email.Email) error
}

// NewSender creates a new email sender
func NewSender(cfg *config.Config, logger *logrus.Logger) *Sender {
	s := &Sender{
		cfg:    cfg,
		logger: logger,
	}
	s.send = s.sendSMTP
	return s
}

// SendFraudAlert notifies the alert recipients about a transaction labelled as fraud
func (s *Sender) SendFraudAlert(rec *models.TransactionRecord) error {
	e := s.newEmail()
	e.Subject = fmt.Sprintf("Fraud alert: transaction %s", valueOr(rec.TransactionID, "unknown"))
	e.Text = []byte(fraudAlertBody(rec))

	if err := s.send(e); err != nil {
		s.logger.Errorf("Failed to send fraud alert for record %s: %v", rec.ID, err)
		return fmt.Errorf("failed to send fraud alert: %w", err)
	}

	s.logger.Infof("Fraud alert sent to %s: %s", strings.Join(e.To, ", "), e.Subject)
	return nil
}

// SendFraudDigest mails the per-city fraud statistics
func (s *Sender) SendFraudDigest(stats []models.CityFraudStats, at time.Time) error {
	e := s.newEmail()
	e.Subject = fmt.Sprintf("Fraud digest %s", at.Format("2006-01-02"))
	e.Text = []byte(fraudDigestBody(stats, at))

	if err := s.send(e); err != nil {
		s.logger.Errorf("Failed to send fraud digest: %v", err)
		return fmt.Errorf("failed to send fraud digest: %w", err)
	}

	s.logger.Infof("Fraud digest sent to %s", strings.Join(e.To, ", "))
	return nil
}

func (s *Sender) newEmail() *email.Email {
	e := email.NewEmail()
	e.From = s.cfg.SenderEmail
	e.To = append([]string(nil), s.cfg.AlertEmails...)
	return e
}

func (s *Sender) sendSMTP(e *email.Email) error {
	addr := fmt.Sprintf("%s:%s", s.cfg.SMTPHost, s.cfg.SMTPPort)
	var auth smtp.Auth
	if s.cfg.SMTPUsername != "" {
		auth = smtp.PlainAuth("", s.cfg.SMTPUsername, s.cfg.SMTPPassword, s.cfg.SMTPHost)
	}
	return e.Send(addr, auth)
}

func fraudAlertBody(rec *models.TransactionRecord) string {
	var b strings.Builder
	b.WriteString("A transaction was classified as fraudulent.\n\n")
	fmt.Fprintf(&b, "Transaction ID:    %s\n", valueOr(rec.TransactionID, "-"))
	fmt.Fprintf(&b, "Transaction date:  %s\n", valueOr(rec.TransactionDate, "-"))
	if rec.Amount != nil {
		fmt.Fprintf(&b, "Amount:            %.2f\n", *rec.Amount)
	}
	fmt.Fprintf(&b, "Merchant ID:       %s\n", valueOr(rec.MerchantID, "-"))
	fmt.Fprintf(&b, "Type:              %s\n", valueOr(rec.TransactionType, "-"))
	fmt.Fprintf(&b, "Location:          %s\n", valueOr(rec.Location, "-"))
	if rec.FraudProbability != nil {
		fmt.Fprintf(&b, "Fraud probability: %.4f\n", *rec.FraudProbability)
	}
	fmt.Fprintf(&b, "Scored at:         %s\n", rec.Timestamp.Format(time.RFC3339))
	b.WriteString("\nFraud Detection Service")
	return b.String()
}

func fraudDigestBody(stats []models.CityFraudStats, at time.Time) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Fraud statistics by city as of %s\n\n", at.Format("2006-01-02 15:04:05"))
	if len(stats) == 0 {
		b.WriteString("No transactions have been scored yet.\n")
	}
	for _, st := range stats {
		fmt.Fprintf(&b, "%-20s total=%d frauds=%d rate=%.4f avg_probability=%.4f\n",
			st.City, st.Total, st.Frauds, st.FraudRate, st.AvgFraudProbability)
	}
	b.WriteString("\nFraud Detection Service")
	return b.String()
}

func valueOr[T any](p *T, def string) string {
	if p == nil {
		return def
	}
	return fmt.Sprint(*p)
}
