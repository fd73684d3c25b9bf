package handlers

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/geco-mentor/Msia-Hackathon-2025-11-Team-A-Room-Booking-and-Payment/internal/services"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/webhook"
)

// WebhookHandler receives Stripe webhook events. Every event is
// signature-verified before any state changes; an event that fails
// verification is rejected with no side effects.
type WebhookHandler struct {
	reconcile     *services.ReconcileService
	gateway       services.PaymentGateway
	webhookSecret string
	logger        *logrus.Logger
}

// NewWebhookHandler creates a new webhook handler
func NewWebhookHandler(reconcile *services.ReconcileService, gateway services.PaymentGateway, webhookSecret string, logger *logrus.Logger) *WebhookHandler {
	return &WebhookHandler{
		reconcile:     reconcile,
		gateway:       gateway,
		webhookSecret: webhookSecret,
		logger:        logger,
	}
}

// HandleStripeWebhook handles POST /api/v1/webhooks/stripe
func (h *WebhookHandler) HandleStripeWebhook(c *gin.Context) {
	payload, err := io.ReadAll(io.LimitReader(c.Request.Body, 1<<16))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_payload",
			Message: "Failed to read request body",
		})
		return
	}

	sigHeader := c.GetHeader("Stripe-Signature")
	if sigHeader == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "missing_signature",
			Message: "Stripe-Signature header is required",
		})
		return
	}

	event, err := webhook.ConstructEvent(payload, sigHeader, h.webhookSecret)
	if err != nil {
		h.logger.WithError(err).Warn("Webhook signature verification failed")
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_signature",
			Message: "Webhook signature verification failed",
		})
		return
	}

	h.logger.WithFields(logrus.Fields{
		"event_id":   event.ID,
		"event_type": event.Type,
	}).Info("Stripe webhook received")

	switch event.Type {
	case "checkout.session.completed":
		h.handleCheckoutCompleted(c, event)
	case "payment_intent.succeeded":
		h.handlePaymentSucceeded(c, event)
	case "payment_intent.payment_failed":
		h.handlePaymentFailed(c, event)
	case "customer.created":
		// Informational only
		h.logger.WithField("event_id", event.ID).Info("Stripe customer created")
		c.JSON(http.StatusOK, gin.H{"received": true})
	default:
		// Unknown events are acknowledged so Stripe stops retrying them
		h.logger.WithField("event_type", event.Type).Debug("Unhandled webhook event type")
		c.JSON(http.StatusOK, gin.H{"received": true})
	}
}

func (h *WebhookHandler) handleCheckoutCompleted(c *gin.Context, event stripe.Event) {
	var session stripe.CheckoutSession
	if err := json.Unmarshal(event.Data.Raw, &session); err != nil {
		h.logger.WithError(err).Error("Failed to parse checkout session event")
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_payload",
			Message: "Malformed checkout session payload",
		})
		return
	}

	paymentIntentID := ""
	if session.PaymentIntent != nil {
		paymentIntentID = session.PaymentIntent.ID
	}

	bookingID := session.Metadata["booking_id"]
	if bookingID == "" && paymentIntentID != "" {
		// Payment Link sessions carry metadata on the payment intent
		// instead of the session itself
		resolved, err := h.gateway.ResolveBookingID(c.Request.Context(), paymentIntentID)
		if err != nil {
			h.logger.WithError(err).WithField("payment_intent_id", paymentIntentID).
				Warn("Failed to resolve booking from payment intent")
		}
		bookingID = resolved
	}

	if bookingID == "" {
		h.logger.WithField("event_id", event.ID).Warn("Checkout session completed without booking reference")
		c.JSON(http.StatusOK, gin.H{"received": true})
		return
	}

	email := session.CustomerEmail
	if email == "" && session.CustomerDetails != nil {
		email = session.CustomerDetails.Email
	}

	if _, err := h.reconcile.ConfirmPaid(bookingID, paymentIntentID, email); err != nil {
		h.logger.WithError(err).WithField("booking_id", bookingID).
			Error("Failed to confirm booking from checkout session")
		// 200 regardless: a retry of the same event cannot succeed
		// either until the underlying state is repaired
	}

	c.JSON(http.StatusOK, gin.H{"received": true})
}

func (h *WebhookHandler) handlePaymentSucceeded(c *gin.Context, event stripe.Event) {
	var pi stripe.PaymentIntent
	if err := json.Unmarshal(event.Data.Raw, &pi); err != nil {
		h.logger.WithError(err).Error("Failed to parse payment intent event")
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_payload",
			Message: "Malformed payment intent payload",
		})
		return
	}

	bookingID := pi.Metadata["booking_id"]
	if bookingID == "" {
		h.logger.WithField("payment_intent_id", pi.ID).Warn("Payment intent succeeded without booking reference")
		c.JSON(http.StatusOK, gin.H{"received": true})
		return
	}

	if _, err := h.reconcile.ConfirmPaid(bookingID, pi.ID, pi.ReceiptEmail); err != nil {
		h.logger.WithError(err).WithField("booking_id", bookingID).
			Error("Failed to confirm booking from payment intent")
	}

	c.JSON(http.StatusOK, gin.H{"received": true})
}

func (h *WebhookHandler) handlePaymentFailed(c *gin.Context, event stripe.Event) {
	var pi stripe.PaymentIntent
	if err := json.Unmarshal(event.Data.Raw, &pi); err != nil {
		h.logger.WithError(err).Error("Failed to parse payment intent event")
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_payload",
			Message: "Malformed payment intent payload",
		})
		return
	}

	bookingID := pi.Metadata["booking_id"]
	if bookingID == "" {
		c.JSON(http.StatusOK, gin.H{"received": true})
		return
	}

	reason := "payment failed"
	if pi.LastPaymentError != nil && pi.LastPaymentError.Msg != "" {
		reason = pi.LastPaymentError.Msg
	}

	if err := h.reconcile.MarkPaymentFailed(bookingID, reason); err != nil {
		h.logger.WithError(err).WithField("booking_id", bookingID).
			Error("Failed to record payment failure")
	}

	c.JSON(http.StatusOK, gin.H{"received": true})
}

// WebhookTest handles GET /api/v1/webhooks/stripe/test, a deployment
// probe confirming the endpoint is reachable and configured.
func (h *WebhookHandler) WebhookTest(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":            "ok",
		"webhook_endpoint":  "/api/v1/webhooks/stripe",
		"secret_configured": h.webhookSecret != "",
	})
}
