// Package pricing computes the cart pricing breakdown: subtotal, tiered
// bulk discount, VAT and total. All arithmetic is decimal so currency
// values never drift; rounding to two places happens only when a value
// is formatted or converted to pence.
package pricing

import (
	"sort"

	"github.com/shopspring/decimal"

	"southcoast-promotion/internal/config"
	"southcoast-promotion/internal/models"
)

// Tier maps a minimum distinct-campaign count to a discount rate
type Tier struct {
	MinItems int
	Rate     decimal.Decimal
}

// Config carries the injected business constants for pricing
type Config struct {
	VATRate decimal.Decimal
	Tiers   []Tier // sorted ascending by MinItems
}

// Breakdown is the derived pricing summary for a cart. Never persisted;
// recomputed from the items on every use.
type Breakdown struct {
	Subtotal           decimal.Decimal `json:"subtotal"`
	TotalSlots         int             `json:"total_slots"`
	TotalAdverts       int             `json:"total_adverts"`
	DiscountPercentage decimal.Decimal `json:"discount_percentage"`
	DiscountAmount     decimal.Decimal `json:"discount_amount"`
	VAT                decimal.Decimal `json:"vat"`
	Total              decimal.Decimal `json:"total"`
}

// DefaultConfig returns the standard UK business constants: 20% VAT and
// bulk discounts at 2+, 4+ and 6+ campaigns.
func DefaultConfig() Config {
	return Config{
		VATRate: decimal.NewFromFloat(0.20),
		Tiers: []Tier{
			{MinItems: 2, Rate: decimal.NewFromFloat(0.05)},
			{MinItems: 4, Rate: decimal.NewFromFloat(0.10)},
			{MinItems: 6, Rate: decimal.NewFromFloat(0.15)},
		},
	}
}

// FromAppConfig builds a pricing Config from the loaded application
// configuration, falling back to defaults for unparseable values.
func FromAppConfig(cfg config.PricingConfig) Config {
	out := Config{}

	if vat, err := decimal.NewFromString(cfg.VATRate); err == nil {
		out.VATRate = vat
	} else {
		out.VATRate = decimal.NewFromFloat(0.20)
	}

	for minItems, rate := range cfg.Tiers {
		parsed, err := decimal.NewFromString(rate)
		if err != nil {
			continue
		}
		out.Tiers = append(out.Tiers, Tier{MinItems: minItems, Rate: parsed})
	}
	sort.Slice(out.Tiers, func(i, j int) bool {
		return out.Tiers[i].MinItems < out.Tiers[j].MinItems
	})

	if len(out.Tiers) == 0 {
		out.Tiers = DefaultConfig().Tiers
	}
	return out
}

// Calculate derives the pricing breakdown for a list of cart items. It
// is pure: no side effects, no mutation of the input, deterministic for
// a given config. An empty list yields an all-zero breakdown.
func Calculate(items []models.CartItem, cfg Config) Breakdown {
	breakdown := Breakdown{
		Subtotal:           decimal.Zero,
		DiscountPercentage: decimal.Zero,
		DiscountAmount:     decimal.Zero,
		VAT:                decimal.Zero,
		Total:              decimal.Zero,
	}

	if len(items) == 0 {
		return breakdown
	}

	for _, item := range items {
		// Pence to pounds, exact
		breakdown.Subtotal = breakdown.Subtotal.Add(decimal.New(int64(item.TotalPrice), -2))
		breakdown.TotalSlots += item.SlotsRequired
		breakdown.TotalAdverts += item.AdvertsPerSlot * item.SlotsRequired
	}

	breakdown.DiscountPercentage = cfg.RateFor(len(items))
	breakdown.DiscountAmount = breakdown.Subtotal.Mul(breakdown.DiscountPercentage)

	discounted := breakdown.Subtotal.Sub(breakdown.DiscountAmount)
	breakdown.VAT = discounted.Mul(cfg.VATRate)
	breakdown.Total = discounted.Add(breakdown.VAT)

	return breakdown
}

// RateFor returns the discount rate for a distinct-item count. It is a
// total function: counts below every tier yield zero.
func (c Config) RateFor(itemCount int) decimal.Decimal {
	rate := decimal.Zero
	for _, tier := range c.Tiers {
		if itemCount >= tier.MinItems {
			rate = tier.Rate
		}
	}
	return rate
}

// SubtotalPence returns the subtotal rounded to whole pence
func (b Breakdown) SubtotalPence() int {
	return toPence(b.Subtotal)
}

// DiscountPence returns the discount amount rounded to whole pence
func (b Breakdown) DiscountPence() int {
	return toPence(b.DiscountAmount)
}

// VATPence returns the VAT amount rounded to whole pence
func (b Breakdown) VATPence() int {
	return toPence(b.VAT)
}

// TotalPence returns the total rounded to whole pence, derived from the
// rounded components so subtotal - discount + vat holds in pence too.
func (b Breakdown) TotalPence() int {
	return b.SubtotalPence() - b.DiscountPence() + b.VATPence()
}

func toPence(d decimal.Decimal) int {
	return int(d.Round(2).Mul(decimal.New(100, 0)).IntPart())
}

// PoundsFromPence converts a pence amount to exact decimal pounds
func PoundsFromPence(pence int) decimal.Decimal {
	return decimal.New(int64(pence), -2)
}

// FormatGBP renders a decimal amount as a display string, e.g. "£285.00"
func FormatGBP(d decimal.Decimal) string {
	return "£" + d.StringFixed(2)
}
