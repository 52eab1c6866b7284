package schema

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Money is an amount in minor currency units (cents).
type Money int64

// String formats the amount with two decimals, e.g. 1299 -> "12.99".
func (m Money) String() string {
	sign := ""
	v := int64(m)
	if v < 0 {
		sign = "-"
		v = -v
	}
	return fmt.Sprintf("%s%d.%02d", sign, v/100, v%100)
}

// Times multiplies the amount by a quantity.
func (m Money) Times(qty int) Money {
	return m * Money(qty)
}

// ParseMoney parses "12.99", "12.9" or "12" into minor units.
func ParseMoney(s string) (Money, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("empty amount")
	}
	neg := strings.HasPrefix(s, "-")
	s = strings.TrimPrefix(s, "-")

	whole, frac, hasFrac := strings.Cut(s, ".")
	if hasFrac && (len(frac) == 0 || len(frac) > 2) {
		return 0, fmt.Errorf("invalid amount %q: expected at most two decimals", s)
	}
	units, err := strconv.ParseInt(whole, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid amount %q: %w", s, err)
	}
	var cents int64
	if hasFrac {
		if len(frac) == 1 {
			frac += "0"
		}
		cents, err = strconv.ParseInt(frac, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid amount %q: %w", s, err)
		}
	}
	total := units*100 + cents
	if neg {
		total = -total
	}
	return Money(total), nil
}

// LineIdentity is the merge key of a cart line: the same product in a different
// condition is a different line.
type LineIdentity struct {
	ProductID string    `json:"product_id" yaml:"product_id"`
	Condition Condition `json:"condition" yaml:"condition"`
}

// String renders the identity as "product/condition".
func (id LineIdentity) String() string {
	return id.ProductID + "/" + string(id.Condition)
}

// LineFields are display-only attributes carried by a cart line.
type LineFields struct {
	Name     string `json:"name,omitempty" yaml:"name,omitempty"`
	ImageURL string `json:"image_url,omitempty" yaml:"image_url,omitempty"`
}

// CartLine is one entry in a cart. Quantity is always strictly positive.
type CartLine struct {
	Identity  LineIdentity `json:"identity" yaml:"identity"`
	Quantity  int          `json:"quantity" yaml:"quantity"`
	UnitPrice Money        `json:"unit_price" yaml:"unit_price"`
	LineFields `yaml:",inline"`
}

// Subtotal returns UnitPrice * Quantity.
func (l CartLine) Subtotal() Money {
	return l.UnitPrice.Times(l.Quantity)
}

// CartSnapshot is an immutable copy of a cart, used as prior state for rollbacks
// and as the persisted form of a cart.
type CartSnapshot struct {
	UserID    string     `json:"user_id" yaml:"user_id"`
	Lines     []CartLine `json:"lines" yaml:"lines"`
	UpdatedAt time.Time  `json:"updated_at" yaml:"updated_at"`
}

// Total sums the subtotals of all lines.
func (s CartSnapshot) Total() Money {
	var total Money
	for _, l := range s.Lines {
		total += l.Subtotal()
	}
	return total
}
