package parser

import (
	"testing"

	"github.com/marketlens/go-scrape-products/models"
)

func TestParsePricing(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		amount   float64
		currency string
		ptype    models.PricingType
		interval models.BillingInterval
	}{
		{
			name:     "dollar one-time",
			text:     "Price: $29.99",
			amount:   29.99,
			currency: "USD",
			ptype:    models.PricingOneTime,
		},
		{
			name:     "euro monthly subscription",
			text:     "€49.99/month",
			amount:   49.99,
			currency: "EUR",
			ptype:    models.PricingSubscription,
			interval: models.IntervalMonthly,
		},
		{
			name:     "pound per month",
			text:     "Only £12 per month for full access",
			amount:   12,
			currency: "GBP",
			ptype:    models.PricingSubscription,
			interval: models.IntervalMonthly,
		},
		{
			name:     "yearly subscription",
			text:     "Pro plan: $199/year",
			amount:   199,
			currency: "USD",
			ptype:    models.PricingSubscription,
			interval: models.IntervalYearly,
		},
		{
			name:     "iso code",
			text:     "USD 89 one-off payment",
			amount:   89,
			currency: "USD",
			ptype:    models.PricingOneTime,
		},
		{
			name:     "yen no decimals",
			text:     "¥1200 for the bundle",
			amount:   1200,
			currency: "JPY",
			ptype:    models.PricingOneTime,
		},
		{
			name:     "us thousands separator",
			text:     "$1,299.95 lifetime license",
			amount:   1299.95,
			currency: "USD",
			ptype:    models.PricingOneTime,
		},
		{
			name:     "eu thousands separator",
			text:     "€1.299,95 lifetime license",
			amount:   1299.95,
			currency: "EUR",
			ptype:    models.PricingOneTime,
		},
		{
			name:     "separator with three digits is thousands",
			text:     "$1,299 lifetime license",
			amount:   1299,
			currency: "USD",
			ptype:    models.PricingOneTime,
		},
		{
			name:     "first price wins",
			text:     "Basic $9.99, Pro $29.99, Enterprise $99.99",
			amount:   9.99,
			currency: "USD",
			ptype:    models.PricingOneTime,
		},
		{
			name:   "free product",
			text:   "This template is completely Free to download",
			amount: 0,
			ptype:  models.PricingFree,
		},
		{
			name:     "zero amount reads as free",
			text:     "$0 today",
			amount:   0,
			currency: "USD",
			ptype:    models.PricingFree,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParsePricing(tt.text)
			if got.Amount == nil {
				t.Fatalf("ParsePricing(%q) amount = nil, want %v", tt.text, tt.amount)
			}
			if *got.Amount != tt.amount {
				t.Fatalf("amount = %v, want %v", *got.Amount, tt.amount)
			}
			if got.Currency != tt.currency {
				t.Fatalf("currency = %q, want %q", got.Currency, tt.currency)
			}
			if got.Type != tt.ptype {
				t.Fatalf("type = %q, want %q", got.Type, tt.ptype)
			}
			if got.Interval != tt.interval {
				t.Fatalf("interval = %q, want %q", got.Interval, tt.interval)
			}
		})
	}
}

func TestParsePricingNoSignal(t *testing.T) {
	for _, text := range []string{
		"",
		"A lovely handcrafted item with no price mentioned",
		"Call us for a quote",
	} {
		got := ParsePricing(text)
		if got.Amount != nil || got.Type != "" || got.Currency != "" {
			t.Fatalf("ParsePricing(%q) = %+v, want zero value", text, got)
		}
	}
}

func TestParsePricingPrefersAmountOverFreeWord(t *testing.T) {
	got := ParsePricing("Free trial, then $15/month")
	if got.Amount == nil || *got.Amount != 15 {
		t.Fatalf("amount = %v, want 15", got.Amount)
	}
	if got.Type != models.PricingSubscription || got.Interval != models.IntervalMonthly {
		t.Fatalf("type/interval = %q/%q, want subscription/monthly", got.Type, got.Interval)
	}
}
