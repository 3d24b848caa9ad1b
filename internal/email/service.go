package email

import (
	"fmt"

	"gopkg.in/gomail.v2"

	"github.com/medisuite/hms-api/config"
	"github.com/medisuite/hms-api/internal/model"
)

// Service sends transactional mail over SMTP.
type Service struct {
	dialer *gomail.Dialer
	from   string
}

func NewService(cfg config.EmailConfig) *Service {
	return &Service{
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		from:   cfg.From,
	}
}

func (s *Service) send(to, subject, body string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", body)

	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send email to %s: %w", to, err)
	}
	return nil
}

// SendAppointmentConfirmation mails the patient their booking details
// and check-in code when one has been issued.
func (s *Service) SendAppointmentConfirmation(patient *model.Patient, apt *model.Appointment) error {
	if patient.Email == "" {
		return nil
	}

	body := fmt.Sprintf(
		"<p>Dear %s,</p><p>Your appointment is confirmed for %s.</p>",
		patient.Name, apt.StartTime.Format("Monday, 2 January 2006 at 15:04"))
	if apt.CheckInCode != nil {
		body += fmt.Sprintf("<p>Your check-in code is <strong>%s</strong>. Present it or the attached QR code at reception.</p>", *apt.CheckInCode)
	}

	return s.send(patient.Email, "Appointment confirmation", body)
}

// SendLabResultNotification tells the patient their results are ready.
func (s *Service) SendLabResultNotification(patient *model.Patient, order *model.LabOrder) error {
	if patient.Email == "" {
		return nil
	}

	body := fmt.Sprintf(
		"<p>Dear %s,</p><p>Results for your lab test <strong>%s</strong> are ready. Please log in to view them or contact the clinic.</p>",
		patient.Name, order.TestName)

	return s.send(patient.Email, "Lab results available", body)
}
