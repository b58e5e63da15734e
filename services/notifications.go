package services

import (
	"crypto/tls"
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/cobaltwebtech/irishette-sub001/models"

	"gopkg.in/gomail.v2"
)

// NotificationService sends the guest-facing and operator-facing emails that
// follow a payment outcome. Delivery is best effort everywhere: a bounced
// confirmation email never unwinds a paid reservation.
type NotificationService struct{}

func NewNotificationService() *NotificationService {
	return &NotificationService{}
}

// SendReservationConfirmation emails the guest their confirmation code and
// the full pricing breakdown.
func (ns *NotificationService) SendReservationConfirmation(res *models.Reservation, room *models.Room) error {
	subject := fmt.Sprintf("Your Irishette reservation is confirmed - %s", res.ConfirmationCode)

	body := fmt.Sprintf(`
    <h1>You're booked!</h1>
    <p>Confirmation code: <strong>%s</strong></p>
    <p>%s, %s to %s (%d guests)</p>
    <table>
      <tr><td>Room charge</td><td>$%.2f</td></tr>
      <tr><td>Service fee</td><td>$%.2f</td></tr>
      <tr><td>State tax</td><td>$%.2f</td></tr>
      <tr><td>Local tax</td><td>$%.2f</td></tr>
      <tr><td><strong>Total paid</strong></td><td><strong>$%.2f</strong></td></tr>
    </table>
    `,
		res.ConfirmationCode,
		room.Name,
		res.CheckIn.Format("Monday, Jan 2, 2006"),
		res.CheckOut.Format("Monday, Jan 2, 2006"),
		res.NumGuests,
		res.BaseAmount, res.ServiceFee, res.StateTax, res.LocalTax, res.TotalAmount,
	)

	if err := ns.send(res.GuestEmail, subject, body); err != nil {
		log.Printf("confirmation email for reservation %d failed: %v", res.ID, err)
		return err
	}
	return nil
}

// SendRefundRequired alerts the operator that a payment was collected for
// dates that are no longer free and the guest must be refunded.
func (ns *NotificationService) SendRefundRequired(res *models.Reservation, reason string) error {
	adminEmail := os.Getenv("ADMIN_EMAIL")
	if adminEmail == "" {
		log.Printf("ADMIN_EMAIL not set; refund required for reservation %d: %s", res.ID, reason)
		return nil
	}

	subject := fmt.Sprintf("REFUND REQUIRED - reservation %s", res.ConfirmationCode)
	body := fmt.Sprintf(`
    <h1>Refund required</h1>
    <p>Reservation %s (%s) was paid but failed its confirmation-time
    availability re-check.</p>
    <p>Amount collected: $%.2f</p>
    <p>Reason: %s</p>
    `, res.ConfirmationCode, res.GuestEmail, res.TotalAmount, reason)

	if err := ns.send(adminEmail, subject, body); err != nil {
		log.Printf("refund alert for reservation %d failed: %v", res.ID, err)
		return err
	}
	return nil
}

func (ns *NotificationService) send(toEmail, subject, htmlBody string) error {
	smtpHost := os.Getenv("SMTP_HOST")
	smtpPort, err := strconv.Atoi(os.Getenv("SMTP_PORT"))
	if err != nil {
		return fmt.Errorf("SMTP_PORT is not a number: %w", err)
	}
	smtpUser := os.Getenv("SMTP_USER")
	smtpPass := os.Getenv("SMTP_PASS")
	smtpFrom := os.Getenv("SMTP_FROM")

	m := gomail.NewMessage()
	m.SetHeader("From", smtpFrom)
	m.SetHeader("To", toEmail)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", htmlBody)

	d := gomail.NewDialer(smtpHost, smtpPort, smtpUser, smtpPass)
	d.TLSConfig = &tls.Config{InsecureSkipVerify: true}

	return d.DialAndSend(m)
}
