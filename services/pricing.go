package services

import (
	"context"
	"math"

	"github.com/neeharika666/myntra-hackerramp/models"
)

// PricingRules are the checkout pricing constants. Shipping is free at or
// above the threshold, tax is a flat GST-style percentage of the subtotal.
type PricingRules struct {
	FreeShippingThreshold float64
	ShippingFee           float64
	TaxRate               float64
}

// ComputePricing derives the full pricing block from a subtotal and a
// discount. It is the only place order totals are computed; the result is
// stored on the order and never recomputed.
func ComputePricing(rules PricingRules, subtotal, discount float64) models.Pricing {
	var shipping float64
	if subtotal < rules.FreeShippingThreshold {
		shipping = rules.ShippingFee
	}
	tax := math.Round(subtotal * rules.TaxRate)

	return models.Pricing{
		Subtotal: subtotal,
		Shipping: shipping,
		Discount: discount,
		Tax:      tax,
		Total:    subtotal + shipping + tax - discount,
	}
}

// DiscountPolicy computes the discount applied to a checkout. The store
// schema has always carried a discount field; this is the extension point
// that fills it. Discount must be read-only so a failed checkout has no
// coupon side effect; Redeem records the use and runs only after the
// order is persisted.
type DiscountPolicy interface {
	Discount(ctx context.Context, couponCode string, subtotal float64) (float64, error)
	Redeem(ctx context.Context, couponCode string) error
}

// NoDiscount is the default policy: every order gets a discount of zero,
// coupon code or not.
type NoDiscount struct{}

func (NoDiscount) Discount(context.Context, string, float64) (float64, error) {
	return 0, nil
}

func (NoDiscount) Redeem(context.Context, string) error {
	return nil
}
