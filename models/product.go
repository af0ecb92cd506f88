// Package models defines data structures for the scrape agent.
package models

// PricingType describes how a product is charged.
type PricingType string

const (
	PricingFree         PricingType = "free"
	PricingOneTime      PricingType = "one-time"
	PricingSubscription PricingType = "subscription"
)

// BillingInterval is the recurrence of a subscription price.
type BillingInterval string

const (
	IntervalMonthly BillingInterval = "monthly"
	IntervalYearly  BillingInterval = "yearly"
)

// Pricing holds the price information extracted from page content.
// Amount is nil when no price-like token was found.
type Pricing struct {
	Amount   *float64        `json:"amount,omitempty"`
	Currency string          `json:"currency,omitempty"`
	Type     PricingType     `json:"type,omitempty"`
	Interval BillingInterval `json:"interval,omitempty"`
}

// ProductExtract is the structured record produced from a fetched page.
type ProductExtract struct {
	Title       string   `json:"title"`
	Description string   `json:"description,omitempty"`
	Source      string   `json:"source"`
	Pricing     Pricing  `json:"pricing"`
	Features    []string `json:"features"`
	Images      []string `json:"images,omitempty"`
	Category    string   `json:"category,omitempty"`
	URL         string   `json:"url"`
}
