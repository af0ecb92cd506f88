// Package parser extracts structured fields from fetched page content
// using cheap text heuristics. All functions are pure and tolerate
// arbitrary input; absence of a signal is an empty value, not an error.
package parser

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/marketlens/go-scrape-products/models"
)

// currencySymbols maps price symbols to ISO currency codes. Extend here
// when a new marketplace locale shows up.
var currencySymbols = map[string]string{
	"$": "USD",
	"€": "EUR",
	"£": "GBP",
	"¥": "JPY",
}

var (
	// A symbol or ISO code directly followed by a number, thousands
	// separators and a decimal point allowed.
	priceRe = regexp.MustCompile(`(?i)([$€£¥]|\b(?:USD|EUR|GBP|JPY))\s*([0-9]+(?:[.,][0-9]+)*)`)
	freeRe  = regexp.MustCompile(`(?i)\bfree\b`)
)

var monthlyMarkers = []string{"/month", "per month", "/mo", "monthly", "a month"}
var yearlyMarkers = []string{"/year", "per year", "/yr", "yearly", "annually", "a year"}

// ParsePricing scans text for the first price-like token in document
// order. Pages with several prices are not disambiguated; the first
// occurrence wins. A detected amount with no interval marker is treated
// as a one-time purchase, the literal word "free" as a zero price.
func ParsePricing(text string) models.Pricing {
	if m := priceRe.FindStringSubmatch(text); m != nil {
		if amount, ok := parseAmount(m[2]); ok {
			pricing := models.Pricing{
				Amount:   &amount,
				Currency: currencyOf(m[1]),
			}
			switch {
			case amount == 0:
				pricing.Type = models.PricingFree
			default:
				if interval, ok := detectInterval(text); ok {
					pricing.Type = models.PricingSubscription
					pricing.Interval = interval
				} else {
					pricing.Type = models.PricingOneTime
				}
			}
			return pricing
		}
	}

	if freeRe.MatchString(text) {
		zero := 0.0
		return models.Pricing{Amount: &zero, Type: models.PricingFree}
	}

	return models.Pricing{}
}

func currencyOf(token string) string {
	if code, ok := currencySymbols[token]; ok {
		return code
	}
	return strings.ToUpper(token)
}

// parseAmount resolves locale-ambiguous separators: a separator followed
// by exactly two trailing digits is the decimal point, every other
// separator is a thousands separator.
func parseAmount(raw string) (float64, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, false
	}

	lastSep := strings.LastIndexAny(raw, ".,")
	var cleaned strings.Builder
	for i, r := range raw {
		switch r {
		case '.', ',':
			if i == lastSep && len(raw)-i-1 == 2 {
				cleaned.WriteByte('.')
			}
		default:
			cleaned.WriteRune(r)
		}
	}

	amount, err := strconv.ParseFloat(cleaned.String(), 64)
	if err != nil {
		return 0, false
	}
	return amount, true
}

func detectInterval(text string) (models.BillingInterval, bool) {
	lower := strings.ToLower(text)
	for _, marker := range monthlyMarkers {
		if strings.Contains(lower, marker) {
			return models.IntervalMonthly, true
		}
	}
	for _, marker := range yearlyMarkers {
		if strings.Contains(lower, marker) {
			return models.IntervalYearly, true
		}
	}
	return "", false
}
