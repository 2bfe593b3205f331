// Package payout talks to the payment provider that records seller
// earnings on delivery confirmation and moves money back on refunds.
package payout

import (
	"fmt"
	"log"

	"github.com/stripe/stripe-go/v83"
	"github.com/stripe/stripe-go/v83/refund"
	"github.com/stripe/stripe-go/v83/transfer"
)

// Result is the provider's answer to a payout or refund request.
type Result struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// Processor is the collaborator interface consumed by the order and return
// services. Implementations must be safe to call once per transition; the
// callers guarantee at-most-once invocation per delivered edge.
type Processor interface {
	ProcessDeliveryForPayout(orderItemID, sellerID string, amount float64) (*Result, error)
	ProcessRefund(paymentIntentID string, amount float64) (*Result, error)
}

// StripeProcessor implements Processor with Stripe transfers (payouts) and
// refunds against the original payment intent.
type StripeProcessor struct {
	// Currency for transfer amounts, e.g. "usd".
	Currency string
	// AccountForSeller resolves a seller ID to their connected Stripe
	// account. Wired to the seller repository in main.
	AccountForSeller func(sellerID string) (string, error)
}

// NewStripeProcessor sets the global Stripe key and returns a processor.
func NewStripeProcessor(apiKey, currency string, accountForSeller func(string) (string, error)) *StripeProcessor {
	stripe.Key = apiKey
	return &StripeProcessor{
		Currency:         currency,
		AccountForSeller: accountForSeller,
	}
}

// ProcessDeliveryForPayout records the seller's earning for a delivered
// order item by transferring the item amount to their connected account.
func (p *StripeProcessor) ProcessDeliveryForPayout(orderItemID, sellerID string, amount float64) (*Result, error) {
	account, err := p.AccountForSeller(sellerID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve payout account for seller %s: %w", sellerID, err)
	}

	params := &stripe.TransferParams{
		Amount:        stripe.Int64(int64(amount * 100)),
		Currency:      stripe.String(p.Currency),
		Destination:   stripe.String(account),
		TransferGroup: stripe.String(orderItemID),
	}

	tr, err := transfer.New(params)
	if err != nil {
		return nil, fmt.Errorf("stripe transfer failed for order item %s: %w", orderItemID, err)
	}

	return &Result{Success: true, Message: fmt.Sprintf("payout recorded (transfer %s)", tr.ID)}, nil
}

// ProcessRefund refunds the buyer against the original payment intent.
func (p *StripeProcessor) ProcessRefund(paymentIntentID string, amount float64) (*Result, error) {
	params := &stripe.RefundParams{
		PaymentIntent: stripe.String(paymentIntentID),
		Amount:        stripe.Int64(int64(amount * 100)),
		Reason:        stripe.String("requested_by_customer"),
	}

	rf, err := refund.New(params)
	if err != nil {
		return nil, fmt.Errorf("stripe refund failed for payment intent %s: %w", paymentIntentID, err)
	}

	return &Result{Success: true, Message: rf.ID}, nil
}

// NoopProcessor is used when no Stripe key is configured (local runs and
// tests). It logs and reports success so the surrounding flow can proceed.
type NoopProcessor struct{}

// ProcessDeliveryForPayout logs the payout instead of recording it.
func (NoopProcessor) ProcessDeliveryForPayout(orderItemID, sellerID string, amount float64) (*Result, error) {
	log.Printf("payout (noop): order item %s, seller %s, amount %.2f", orderItemID, sellerID, amount)
	return &Result{Success: true, Message: "payout recorded locally"}, nil
}

// ProcessRefund logs the refund instead of issuing it.
func (NoopProcessor) ProcessRefund(paymentIntentID string, amount float64) (*Result, error) {
	log.Printf("refund (noop): payment intent %s, amount %.2f", paymentIntentID, amount)
	return &Result{Success: true, Message: "refund recorded locally"}, nil
}
