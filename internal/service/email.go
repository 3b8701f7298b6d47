package service

import (
	"context"
	"fmt"
	"html"

	"github.com/sendgrid/rest"
	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"

	"medilink-client/internal/domain"
	"medilink-client/internal/utils"
)

type mailSender interface {
	SendWithContext(ctx context.Context, email *mail.SGMailV3) (*rest.Response, error)
}

type sendGridNotifier struct {
	client    mailSender
	fromEmail string
	fromName  string
}

// NewSendGridNotifier mails booking receipts through SendGrid
func NewSendGridNotifier(apiKey, fromEmail, fromName string) Notifier {
	return &sendGridNotifier{
		client:    sendgrid.NewSendClient(apiKey),
		fromEmail: fromEmail,
		fromName:  fromName,
	}
}

func (s *sendGridNotifier) SendBookingReceipt(ctx context.Context, to *domain.Identity, booking *domain.Booking, eq *domain.Equipment) error {
	if to == nil || to.Email == "" || booking == nil {
		return nil
	}

	message := receiptMessage(mail.NewEmail(s.fromName, s.fromEmail), to, booking, eq)
	response, err := s.client.SendWithContext(ctx, message)
	if err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	if response.StatusCode >= 400 {
		return fmt.Errorf("sendgrid error: status %d, body: %s", response.StatusCode, response.Body)
	}
	return nil
}

func receiptMessage(from *mail.Email, to *domain.Identity, booking *domain.Booking, eq *domain.Equipment) *mail.SGMailV3 {
	name := booking.EquipmentName
	if name == "" && eq != nil {
		name = eq.Name
	}
	subject := fmt.Sprintf("Booking confirmed: %s", name)

	plainText := fmt.Sprintf("Hello %s,\n\nYour booking of %s from %s to %s is confirmed.\nTotal: %s\nBooking reference: %s\n",
		to.DisplayName(), name, booking.StartDate, booking.EndDate, utils.FormatAmount(booking.TotalPrice), booking.ID)
	if booking.Payment != nil && booking.Payment.PaymentID != "" {
		plainText += fmt.Sprintf("Payment reference: %s\n", booking.Payment.PaymentID)
	}
	plainText += "\nThe MediLink Team"

	htmlContent := fmt.Sprintf(`
		<html>
		<body>
			<h2>Booking confirmed</h2>
			<p>Hello %s,</p>
			<p>Your booking of <strong>%s</strong> from %s to %s is confirmed.</p>
			<p>Total: %s<br>Booking reference: %s</p>
		</body>
		</html>
	`, html.EscapeString(to.DisplayName()), html.EscapeString(name), booking.StartDate, booking.EndDate,
		utils.FormatAmount(booking.TotalPrice), html.EscapeString(booking.ID))

	return mail.NewSingleEmail(from, subject, mail.NewEmail(to.DisplayName(), to.Email), plainText, htmlContent)
}

type noopNotifier struct{}

// NewNoopNotifier is used when no mail provider is configured
func NewNoopNotifier() Notifier {
	return noopNotifier{}
}

func (noopNotifier) SendBookingReceipt(context.Context, *domain.Identity, *domain.Booking, *domain.Equipment) error {
	return nil
}
