package services

import (
	"fmt"
	"math"
	"os"
	"time"

	"github.com/cobaltwebtech/irishette-sub001/models"

	stripe "github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/checkout/session"
)

// CheckoutCreator creates a hosted payment session for a priced reservation.
// The Stripe-backed PaymentService is the production implementation.
type CheckoutCreator interface {
	CreateCheckoutSession(res *models.Reservation, room *models.Room, quote *PriceQuote) (*stripe.CheckoutSession, error)
}

type PaymentService struct{}

func NewPaymentService() *PaymentService {
	stripe.Key = os.Getenv("STRIPE_SECRET_KEY")
	return &PaymentService{}
}

// CreateCheckoutSession opens a Stripe Checkout session for the reservation.
// The room charge, service fee and each tax jurisdiction go in as separate
// line items so the guest sees the same breakdown we store. The reservation
// id rides along as metadata; the webhook uses it to correlate the outcome.
func (p *PaymentService) CreateCheckoutSession(res *models.Reservation, room *models.Room, quote *PriceQuote) (*stripe.CheckoutSession, error) {
	appURL := os.Getenv("APP_URL")

	nightsLabel := fmt.Sprintf("%s - %d night stay (%s to %s)",
		room.Name, quote.Nights,
		res.CheckIn.Format("Jan 2, 2006"), res.CheckOut.Format("Jan 2, 2006"))

	lineItems := []*stripe.CheckoutSessionLineItemParams{
		checkoutLineItem(nightsLabel, quote.BaseAmount),
	}
	if quote.ServiceFee > 0 {
		lineItems = append(lineItems, checkoutLineItem("Service fee", quote.ServiceFee))
	}
	if quote.StateTax > 0 {
		lineItems = append(lineItems, checkoutLineItem("State hotel occupancy tax", quote.StateTax))
	}
	if quote.LocalTax > 0 {
		lineItems = append(lineItems, checkoutLineItem("Local hotel occupancy tax", quote.LocalTax))
	}

	params := &stripe.CheckoutSessionParams{
		Mode:          stripe.String(string(stripe.CheckoutSessionModePayment)),
		LineItems:     lineItems,
		CustomerEmail: stripe.String(res.GuestEmail),
		SuccessURL:    stripe.String(appURL + "/booking/confirmed?code=" + res.ConfirmationCode),
		CancelURL:     stripe.String(appURL + "/booking/cancelled"),
		ExpiresAt:     stripe.Int64(time.Now().Add(30 * time.Minute).Unix()),
	}
	params.AddMetadata("reservation_id", fmt.Sprintf("%d", res.ID))
	params.AddMetadata("confirmation_code", res.ConfirmationCode)

	return session.New(params)
}

func checkoutLineItem(name string, amount float64) *stripe.CheckoutSessionLineItemParams {
	return &stripe.CheckoutSessionLineItemParams{
		PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
			Currency:   stripe.String(string(stripe.CurrencyUSD)),
			UnitAmount: stripe.Int64(int64(math.Round(amount * 100))),
			ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
				Name: stripe.String(name),
			},
		},
		Quantity: stripe.Int64(1),
	}
}
