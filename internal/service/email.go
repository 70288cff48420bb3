package service

import (
	"context"
	"fmt"

	"gopkg.in/gomail.v2"

	"rentwheels-backend/internal/config"
)

type emailService struct {
	host     string
	port     int
	username string
	password string
	from     string
}

func NewEmailService(cfg *config.SMTPConfig) EmailService {
	return &emailService{
		host:     cfg.Host,
		port:     cfg.Port,
		username: cfg.User,
		password: cfg.Password,
		from:     cfg.From,
	}
}

func (s *emailService) SendOverdueReminder(ctx context.Context, email, name, bookingID string, lateHours, lateFee float64) error {
	body := fmt.Sprintf(
		"Hello %s,\n\nYour rental (booking %s) is past its return deadline by %.1f hours.\nLate fees so far: %.2f and counting.\n\nPlease return the vehicle as soon as possible.\n\nBest regards,\nThe RentWheels Team",
		name, bookingID, lateHours, lateFee)
	return s.send(email, "Your rental is overdue", body)
}

func (s *emailService) SendReturnConfirmation(ctx context.Context, email, name, bookingID string, lateFee, remaining float64) error {
	body := fmt.Sprintf(
		"Hello %s,\n\nYour rental (booking %s) has been returned and settled.\nLate fee: %.2f\nRemaining balance: %.2f\n\nBest regards,\nThe RentWheels Team",
		name, bookingID, lateFee, remaining)
	return s.send(email, "Rental returned", body)
}

func (s *emailService) SendBargainNotification(ctx context.Context, email, name, subject, body string) error {
	text := fmt.Sprintf("Hello %s,\n\n%s\n\nBest regards,\nThe RentWheels Team", name, body)
	return s.send(email, subject, text)
}

func (s *emailService) send(to, subject, body string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", body)

	d := gomail.NewDialer(s.host, s.port, s.username, s.password)
	if err := d.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send email via gomail: %w", err)
	}
	return nil
}
