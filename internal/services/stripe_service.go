package services

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/geco-mentor/Msia-Hackathon-2025-11-Team-A-Room-Booking-and-Payment/internal/config"
	"github.com/geco-mentor/Msia-Hackathon-2025-11-Team-A-Room-Booking-and-Payment/internal/models"
	"github.com/sirupsen/logrus"
	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/client"
)

// StripeService implements PaymentGateway on Stripe Payment Links.
//
// Every outbound call rides an HTTP client with the configured hard
// timeout, so a slow provider can delay a request by at most that long.
type StripeService struct {
	client      *client.API
	enabled     bool
	frontendURL string
	logger      *logrus.Logger
}

// NewStripeService creates a new Stripe gateway. With no secret key
// configured the service is disabled and booking creation degrades to
// "payment link unavailable".
func NewStripeService(cfg *config.StripeConfig, frontendURL string, logger *logrus.Logger) *StripeService {
	s := &StripeService{
		frontendURL: frontendURL,
		logger:      logger,
	}

	if cfg.SecretKey == "" {
		logger.Warn("Stripe secret key not configured - payment links disabled")
		return s
	}

	sc := &client.API{}
	sc.Init(cfg.SecretKey, stripe.NewBackends(&http.Client{
		Timeout: cfg.RequestTimeout,
	}))

	s.client = sc
	s.enabled = true
	return s
}

// Enabled reports whether the gateway is configured
func (s *StripeService) Enabled() bool {
	return s.enabled
}

// CreatePaymentLink mints a Price and a Payment Link for the booking.
// Booking, user and space identifiers travel as metadata on both the link
// and its payment-intent data so every notification about this payment
// carries them back.
func (s *StripeService) CreatePaymentLink(ctx context.Context, booking *models.Booking, space *models.Space) (*PaymentLink, error) {
	if !s.enabled {
		return nil, fmt.Errorf("stripe gateway not configured")
	}

	amountMinor := MinorUnits(booking.TotalAmount)

	priceParams := &stripe.PriceParams{
		Currency:   stripe.String(strings.ToLower(booking.Currency)),
		UnitAmount: stripe.Int64(amountMinor),
		ProductData: &stripe.PriceProductDataParams{
			Name: stripe.String(fmt.Sprintf("%s booking", space.Name)),
		},
	}
	priceParams.Context = ctx
	priceParams.AddMetadata("space_id", space.ID)
	priceParams.AddMetadata("booking_id", booking.ID)

	price, err := s.client.Prices.New(priceParams)
	if err != nil {
		return nil, fmt.Errorf("failed to create price: %w", err)
	}

	linkParams := &stripe.PaymentLinkParams{
		LineItems: []*stripe.PaymentLinkLineItemParams{
			{
				Price:    stripe.String(price.ID),
				Quantity: stripe.Int64(1),
			},
		},
		PaymentIntentData: &stripe.PaymentLinkPaymentIntentDataParams{
			// The webhook resolves bookings from payment-intent metadata
			// when the session itself carries none
			Metadata: map[string]string{
				"booking_id": booking.ID,
				"user_id":    booking.UserID,
				"space_id":   space.ID,
			},
		},
		AfterCompletion: &stripe.PaymentLinkAfterCompletionParams{
			Type: stripe.String("redirect"),
			Redirect: &stripe.PaymentLinkAfterCompletionRedirectParams{
				URL: stripe.String(fmt.Sprintf("%s/?payment_status=success&booking_id=%s", s.frontendURL, booking.ID)),
			},
		},
	}
	linkParams.Context = ctx
	linkParams.AddMetadata("booking_id", booking.ID)
	linkParams.AddMetadata("user_id", booking.UserID)

	link, err := s.client.PaymentLinks.New(linkParams)
	if err != nil {
		return nil, fmt.Errorf("failed to create payment link: %w", err)
	}

	s.logger.WithFields(logrus.Fields{
		"booking_id":      booking.ID,
		"payment_link_id": link.ID,
		"amount_minor":    amountMinor,
	}).Info("Payment link created")

	return &PaymentLink{
		ID:          link.ID,
		URL:         link.URL,
		PriceID:     price.ID,
		AmountMinor: amountMinor,
		Currency:    booking.Currency,
	}, nil
}

// FindSucceededPayment searches Stripe for a successful payment for the
// booking. It first lists checkout sessions attached to the payment link
// (most precise for Payment Links), then falls back to a metadata search
// over payment intents. Returns (nil, nil) when nothing succeeded yet;
// an unproven success is never fabricated into a terminal state.
func (s *StripeService) FindSucceededPayment(ctx context.Context, bookingID, paymentLinkID string) (*ProviderPayment, error) {
	if !s.enabled {
		return nil, fmt.Errorf("stripe gateway not configured")
	}

	if paymentLinkID != "" {
		if payment := s.findViaPaymentLink(ctx, bookingID, paymentLinkID); payment != nil {
			return payment, nil
		}
	}

	searchParams := &stripe.PaymentIntentSearchParams{
		SearchParams: stripe.SearchParams{
			Query:   fmt.Sprintf("metadata['booking_id']:'%s'", bookingID),
			Limit:   stripe.Int64(5),
			Context: ctx,
		},
	}

	iter := s.client.PaymentIntents.Search(searchParams)
	for iter.Next() {
		pi := iter.PaymentIntent()
		if pi.Status == stripe.PaymentIntentStatusSucceeded {
			return providerPaymentFromIntent(pi), nil
		}
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("stripe search failed: %w", err)
	}

	return nil, nil
}

// findViaPaymentLink looks for a paid checkout session on the payment
// link and verifies its payment intent. Lookup failures here only log:
// the metadata search still runs.
func (s *StripeService) findViaPaymentLink(ctx context.Context, bookingID, paymentLinkID string) *ProviderPayment {
	listParams := &stripe.CheckoutSessionListParams{
		PaymentLink: stripe.String(paymentLinkID),
	}
	listParams.Limit = stripe.Int64(5)
	listParams.Context = ctx

	iter := s.client.CheckoutSessions.List(listParams)
	for iter.Next() {
		session := iter.CheckoutSession()
		if session.PaymentStatus != stripe.CheckoutSessionPaymentStatusPaid || session.PaymentIntent == nil {
			continue
		}

		piParams := &stripe.PaymentIntentParams{}
		piParams.Context = ctx
		pi, err := s.client.PaymentIntents.Get(session.PaymentIntent.ID, piParams)
		if err != nil {
			s.logger.WithError(err).WithFields(logrus.Fields{
				"booking_id":        bookingID,
				"payment_intent_id": session.PaymentIntent.ID,
			}).Warn("Failed to retrieve payment intent for paid session")
			return nil
		}
		if pi.Status == stripe.PaymentIntentStatusSucceeded {
			return providerPaymentFromIntent(pi)
		}
	}
	if err := iter.Err(); err != nil {
		s.logger.WithError(err).WithFields(logrus.Fields{
			"booking_id":      bookingID,
			"payment_link_id": paymentLinkID,
		}).Warn("Stripe checkout session lookup failed")
	}

	return nil
}

// ResolveBookingID fetches the booking reference from a payment intent's
// metadata. Used when a checkout session event carries no metadata of its
// own.
func (s *StripeService) ResolveBookingID(ctx context.Context, paymentIntentID string) (string, error) {
	if !s.enabled {
		return "", fmt.Errorf("stripe gateway not configured")
	}

	piParams := &stripe.PaymentIntentParams{}
	piParams.Context = ctx
	pi, err := s.client.PaymentIntents.Get(paymentIntentID, piParams)
	if err != nil {
		return "", fmt.Errorf("failed to retrieve payment intent %s: %w", paymentIntentID, err)
	}

	return pi.Metadata["booking_id"], nil
}

// providerPaymentFromIntent extracts the transaction reference and a
// best-effort receipt email. Extraction strategies are tried in order:
// the intent's receipt email, then the latest charge's billing details.
func providerPaymentFromIntent(pi *stripe.PaymentIntent) *ProviderPayment {
	email := pi.ReceiptEmail
	if email == "" && pi.LatestCharge != nil && pi.LatestCharge.BillingDetails != nil {
		email = pi.LatestCharge.BillingDetails.Email
	}

	return &ProviderPayment{
		IntentID:     pi.ID,
		ReceiptEmail: email,
	}
}
