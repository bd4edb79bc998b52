package payment

import (
	"fmt"
	"strconv"

	stripe "github.com/stripe/stripe-go/v72"
	"github.com/stripe/stripe-go/v72/checkout/session"
	"github.com/stripe/stripe-go/v72/webhook"
)

type Config struct {
	SecretKey     string
	WebhookSecret string
	SuccessURL    string
	CancelURL     string
	Currency      string
}

// StripeClient creates hosted checkout sessions for coaching packages and
// verifies webhook deliveries.
type StripeClient struct {
	webhookSecret string
	successURL    string
	cancelURL     string
	currency      string
}

func NewStripeClient(config Config) *StripeClient {
	stripe.Key = config.SecretKey

	currency := config.Currency
	if currency == "" {
		currency = string(stripe.CurrencyEUR)
	}

	return &StripeClient{
		webhookSecret: config.WebhookSecret,
		successURL:    config.SuccessURL,
		cancelURL:     config.CancelURL,
		currency:      currency,
	}
}

// CreateCheckoutSession opens a one-off payment page for the package on a
// selection request. The request id rides along as the client reference so
// the webhook can map the payment back.
func (s *StripeClient) CreateCheckoutSession(
	requestID int64,
	clientID int64,
	packageName string,
	amount float64,
) (string, string, error) {
	params := &stripe.CheckoutSessionParams{
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency:   stripe.String(s.currency),
					UnitAmount: stripe.Int64(int64(amount * 100)),
					ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
						Name: stripe.String(packageName),
					},
				},
				Quantity: stripe.Int64(1),
			},
		},
		Mode:              stripe.String(string(stripe.CheckoutSessionModePayment)),
		SuccessURL:        stripe.String(s.successURL),
		CancelURL:         stripe.String(s.cancelURL),
		ClientReferenceID: stripe.String(strconv.FormatInt(requestID, 10)),
	}
	params.AddMetadata("client_id", strconv.FormatInt(clientID, 10))

	sess, err := session.New(params)
	if err != nil {
		return "", "", fmt.Errorf("create checkout session: %w", err)
	}

	return sess.ID, sess.URL, nil
}

// VerifyWebhook checks the signature and decodes the event payload.
func (s *StripeClient) VerifyWebhook(payload []byte, signature string) (stripe.Event, error) {
	if s.webhookSecret == "" {
		return stripe.Event{}, fmt.Errorf("webhook secret is not configured")
	}
	return webhook.ConstructEvent(payload, signature, s.webhookSecret)
}
