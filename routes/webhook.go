package routes

import (
	"encoding/json"
	"errors"
	"io"
	"log"
	"os"

	"github.com/cobaltwebtech/irishette-sub001/services"
	"github.com/cobaltwebtech/irishette-sub001/utils"

	"github.com/kataras/iris/v12"
	stripe "github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/webhook"
)

// StripeWebhook receives payment lifecycle events. The signature check is
// the only trust boundary here: the success redirect page proves nothing,
// payment state changes only through this handler.
func StripeWebhook(ctx iris.Context) {
	payload, err := io.ReadAll(ctx.Request().Body)
	if err != nil {
		utils.CreateError(iris.StatusBadRequest, "Bad Request", "unreadable payload", ctx)
		return
	}

	event, err := webhook.ConstructEventWithOptions(
		payload,
		ctx.GetHeader("Stripe-Signature"),
		os.Getenv("STRIPE_WEBHOOK_SECRET"),
		webhook.ConstructEventOptions{IgnoreAPIVersionMismatch: true},
	)
	if err != nil {
		utils.CreateError(iris.StatusBadRequest, "Bad Request", "invalid webhook signature", ctx)
		return
	}

	switch event.Type {
	case "checkout.session.completed":
		handleCheckoutCompleted(event, ctx)
	case "checkout.session.expired":
		handleCheckoutExpired(event, ctx)
	default:
		// Stripe sends more than we subscribe to; acknowledge and move on.
		log.Printf("ignoring stripe event %s", event.Type)
		ctx.JSON(iris.Map{"received": true})
	}
}

func handleCheckoutCompleted(event stripe.Event, ctx iris.Context) {
	var sess stripe.CheckoutSession
	if err := json.Unmarshal(event.Data.Raw, &sess); err != nil {
		utils.CreateError(iris.StatusBadRequest, "Bad Request", "malformed event payload", ctx)
		return
	}

	paymentIntentID := ""
	if sess.PaymentIntent != nil {
		paymentIntentID = sess.PaymentIntent.ID
	}

	reservation, err := newReservationService().Confirm(sess.ID, paymentIntentID)
	if err != nil {
		var conflict *services.ConfirmationConflictError
		if errors.As(err, &conflict) {
			// Money was collected for dates that are gone. The reservation is
			// already cancelled and the refund alert sent; acknowledge so
			// Stripe stops retrying.
			log.Printf("confirmation conflict for session %s, refund owed", sess.ID)
			ctx.JSON(iris.Map{"received": true, "conflict": true})
			return
		}
		if errors.Is(err, services.ErrReservationNotFound) {
			log.Printf("no reservation for completed session %s", sess.ID)
			ctx.JSON(iris.Map{"received": true})
			return
		}
		// Transient failure; a non-2xx makes Stripe redeliver.
		utils.CreateInternalServerError(ctx)
		return
	}

	log.Printf("reservation %s confirmed via session %s", reservation.ConfirmationCode, sess.ID)
	ctx.JSON(iris.Map{"received": true})
}

func handleCheckoutExpired(event stripe.Event, ctx iris.Context) {
	var sess stripe.CheckoutSession
	if err := json.Unmarshal(event.Data.Raw, &sess); err != nil {
		utils.CreateError(iris.StatusBadRequest, "Bad Request", "malformed event payload", ctx)
		return
	}

	if _, err := newReservationService().Fail(sess.ID); err != nil {
		if errors.Is(err, services.ErrReservationNotFound) {
			log.Printf("no reservation for expired session %s", sess.ID)
			ctx.JSON(iris.Map{"received": true})
			return
		}
		utils.CreateInternalServerError(ctx)
		return
	}

	ctx.JSON(iris.Map{"received": true})
}
