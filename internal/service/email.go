package service

import (
	"context"
	"fmt"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"

	"rentzy-backend/internal/domain"
)

type emailService struct {
	client    *sendgrid.Client
	fromEmail string
	fromName  string
}

func NewEmailService(apiKey, fromEmail, fromName string) EmailService {
	return &emailService{
		client:    sendgrid.NewSendClient(apiKey),
		fromEmail: fromEmail,
		fromName:  fromName,
	}
}

func (s *emailService) send(ctx context.Context, toEmail, subject, plain, html string) error {
	from := mail.NewEmail(s.fromName, s.fromEmail)
	to := mail.NewEmail("", toEmail)
	message := mail.NewSingleEmail(from, subject, to, plain, html)

	resp, err := s.client.SendWithContext(ctx, message)
	if err != nil {
		return fmt.Errorf("%w: sendgrid: %v", domain.ErrExternalService, err)
	}
	if resp.StatusCode >= 400 {
		return fmt.Errorf("%w: sendgrid returned %d: %s", domain.ErrExternalService, resp.StatusCode, resp.Body)
	}
	return nil
}

func (s *emailService) SendBookingAccepted(ctx context.Context, email, renterName, vehicleName string, depositAmount int64) error {
	subject := "Your booking was accepted"
	plain := fmt.Sprintf("Hi %s, your booking for %s was accepted. Pay the deposit of %d VND to secure it.",
		renterName, vehicleName, depositAmount)
	html := fmt.Sprintf("<p>Hi %s,</p><p>Your booking for <strong>%s</strong> was accepted. Pay the deposit of <strong>%d VND</strong> to secure it.</p>",
		renterName, vehicleName, depositAmount)
	return s.send(ctx, email, subject, plain, html)
}

func (s *emailService) SendPaymentConfirmed(ctx context.Context, email, renterName string, bookingID, amount int64) error {
	subject := "Payment received"
	plain := fmt.Sprintf("Hi %s, we received your payment of %d VND for booking %d.", renterName, amount, bookingID)
	html := fmt.Sprintf("<p>Hi %s,</p><p>We received your payment of <strong>%d VND</strong> for booking %d.</p>",
		renterName, amount, bookingID)
	return s.send(ctx, email, subject, plain, html)
}

func (s *emailService) SendCancellationRequested(ctx context.Context, email, renterName, vehicleName string) error {
	subject := "Cancellation requested"
	plain := fmt.Sprintf("Hi %s, your cancellation request for %s was sent to the owner for review.", renterName, vehicleName)
	html := fmt.Sprintf("<p>Hi %s,</p><p>Your cancellation request for <strong>%s</strong> was sent to the owner for review.</p>",
		renterName, vehicleName)
	return s.send(ctx, email, subject, plain, html)
}

func (s *emailService) SendCancellationDecision(ctx context.Context, email, vehicleName string, approved bool) error {
	if approved {
		return s.send(ctx, email, "Cancellation approved",
			fmt.Sprintf("Your booking for %s was canceled. Any refund is now awaiting disbursement.", vehicleName),
			fmt.Sprintf("<p>Your booking for <strong>%s</strong> was canceled. Any refund is now awaiting disbursement.</p>", vehicleName))
	}
	return s.send(ctx, email, "Cancellation rejected",
		fmt.Sprintf("The owner rejected your cancellation request for %s. The booking stays active.", vehicleName),
		fmt.Sprintf("<p>The owner rejected your cancellation request for <strong>%s</strong>. The booking stays active.</p>", vehicleName))
}

func (s *emailService) SendRefundProcessed(ctx context.Context, email, vehicleName string, amount int64, approved bool) error {
	if approved {
		return s.send(ctx, email, "Refund disbursed",
			fmt.Sprintf("Your refund of %d VND for the %s rental has been disbursed.", amount, vehicleName),
			fmt.Sprintf("<p>Your refund of <strong>%d VND</strong> for the %s rental has been disbursed.</p>", amount, vehicleName))
	}
	return s.send(ctx, email, "Refund rejected",
		fmt.Sprintf("Your refund request for the %s rental was rejected.", vehicleName),
		fmt.Sprintf("<p>Your refund request for the %s rental was rejected.</p>", vehicleName))
}
