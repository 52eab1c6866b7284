package schema

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ParseCondition maps user input onto a valid Condition, ignoring case.
func ParseCondition(s string) (Condition, error) {
	c := Condition(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := ValidConditions[c]; !ok {
		return "", fmt.Errorf("invalid condition '%s'. must be new or used", s)
	}
	return c, nil
}

// String returns the column as a string, tolerating driver-specific representations.
func (r Record) String(col string) string {
	switch v := r[col].(type) {
	case nil:
		return ""
	case string:
		return v
	case []byte:
		return string(v)
	default:
		return fmt.Sprint(v)
	}
}

// Int64 returns the column as an int64. Unparseable values yield 0.
func (r Record) Int64(col string) int64 {
	switch v := r[col].(type) {
	case int:
		return int64(v)
	case int32:
		return int64(v)
	case int64:
		return v
	case float64:
		return int64(v)
	case Money:
		return int64(v)
	case string:
		n, _ := strconv.ParseInt(v, 10, 64)
		return n
	case []byte:
		n, _ := strconv.ParseInt(string(v), 10, 64)
		return n
	default:
		return 0
	}
}

// Time returns a unix-seconds column as a UTC time. Zero stays the zero time.
func (r Record) Time(col string) time.Time {
	ts := r.Int64(col)
	if ts == 0 {
		return time.Time{}
	}
	return time.Unix(ts, 0).UTC()
}

// ToRecord converts a profile into a store row.
func (p ProfileRecord) ToRecord() Record {
	return Record{
		"id":         p.ID,
		"email":      p.Email,
		"name":       p.Name,
		"whatsapp":   p.WhatsApp,
		"created_at": unixOrZero(p.CreatedAt),
	}
}

// ProfileFromRecord converts a store row into a profile.
func ProfileFromRecord(r Record) ProfileRecord {
	return ProfileRecord{
		ID:        r.String("id"),
		Email:     r.String("email"),
		Name:      r.String("name"),
		WhatsApp:  r.String("whatsapp"),
		CreatedAt: r.Time("created_at"),
	}
}

// ToRecord converts a product into a store row.
func (p Product) ToRecord() Record {
	return Record{
		"id":          p.ID,
		"name":        p.Name,
		"category":    p.Category,
		"condition":   string(p.Condition),
		"price_cents": int64(p.Price),
		"stock":       int64(p.Stock),
		"image_url":   p.ImageURL,
	}
}

// ProductFromRecord converts a store row into a product.
func ProductFromRecord(r Record) Product {
	return Product{
		ID:        r.String("id"),
		Name:      r.String("name"),
		Category:  r.String("category"),
		Condition: Condition(r.String("condition")),
		Price:     Money(r.Int64("price_cents")),
		Stock:     int(r.Int64("stock")),
		ImageURL:  r.String("image_url"),
	}
}

// ToRecord converts a customer into a store row.
func (c Customer) ToRecord() Record {
	return Record{
		"id":       c.ID,
		"name":     c.Name,
		"email":    c.Email,
		"whatsapp": c.WhatsApp,
		"address":  c.Address,
	}
}

// CustomerFromRecord converts a store row into a customer.
func CustomerFromRecord(r Record) Customer {
	return Customer{
		ID:       r.String("id"),
		Name:     r.String("name"),
		Email:    r.String("email"),
		WhatsApp: r.String("whatsapp"),
		Address:  r.String("address"),
	}
}

// ToRecord converts a cart snapshot into a store row; lines are stored as JSON.
func (s CartSnapshot) ToRecord() (Record, error) {
	lines := s.Lines
	if lines == nil {
		lines = []CartLine{}
	}
	data, err := json.Marshal(lines)
	if err != nil {
		return nil, fmt.Errorf("failed to encode cart lines: %w", err)
	}
	return Record{
		"id":         s.UserID,
		"lines":      string(data),
		"updated_at": unixOrZero(s.UpdatedAt),
	}, nil
}

// CartFromRecord converts a store row into a cart snapshot.
func CartFromRecord(r Record) (CartSnapshot, error) {
	snap := CartSnapshot{
		UserID:    r.String("id"),
		UpdatedAt: r.Time("updated_at"),
	}
	if raw := r.String("lines"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &snap.Lines); err != nil {
			return CartSnapshot{}, fmt.Errorf("failed to decode cart lines for %s: %w", snap.UserID, err)
		}
	}
	return snap, nil
}

func unixOrZero(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.Unix()
}
