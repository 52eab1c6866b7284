// Package schema has the models, constants and record types shared by all parts of storesync.
package schema

import "time"

// Record is a single row as exchanged with the record store, keyed by column name.
type Record map[string]any

// Predicate is an equality filter; every column must match for a row to be selected.
type Predicate map[string]any

// ProfileRecord is the derived per-user record expected to exist for every authenticated user.
type ProfileRecord struct {
	ID        string    `json:"id" yaml:"id"`
	Email     string    `json:"email" yaml:"email"`
	Name      string    `json:"name" yaml:"name"`
	WhatsApp  string    `json:"whatsapp,omitempty" yaml:"whatsapp,omitempty"`
	CreatedAt time.Time `json:"created_at" yaml:"created_at"`
}

// UserMetadata is what the identity provider tells us about a signed-in user.
// Attributes carries free-form claims such as "full_name", "name" and "whatsapp".
type UserMetadata struct {
	Email      string            `json:"email" yaml:"email"`
	Attributes map[string]string `json:"attributes,omitempty" yaml:"attributes,omitempty"`
}

// Product is a catalog entry.
type Product struct {
	ID        string    `json:"id" yaml:"id"`
	Name      string    `json:"name" yaml:"name"`
	Category  string    `json:"category" yaml:"category"`
	Condition Condition `json:"condition" yaml:"condition"`
	Price     Money     `json:"price" yaml:"price"`
	Stock     int       `json:"stock" yaml:"stock"`
	ImageURL  string    `json:"image_url,omitempty" yaml:"image_url,omitempty"`
}

// Customer is the admin-editable customer record.
type Customer struct {
	ID       string `json:"id" yaml:"id"`
	Name     string `json:"name" yaml:"name"`
	Email    string `json:"email" yaml:"email"`
	WhatsApp string `json:"whatsapp,omitempty" yaml:"whatsapp,omitempty"`
	Address  string `json:"address,omitempty" yaml:"address,omitempty"`
}

// StoreStatus represents the status of the record store.
type StoreStatus struct {
	Backend    string           `json:"backend" yaml:"backend"`
	Connected  bool             `json:"connected" yaml:"connected"`
	TableSizes map[string]int64 `json:"table_sizes" yaml:"table_sizes"`
}

// MigrationResult describes what a migration run did.
type MigrationResult struct {
	Backend string `json:"backend" yaml:"backend"`
	From    uint   `json:"from" yaml:"from"`
	To      uint   `json:"to" yaml:"to"`
	Changed bool   `json:"changed" yaml:"changed"`
}

// ProfileView is the printable result of a sign-in or profile reconciliation.
type ProfileView struct {
	Outcome     ProfileOutcome `json:"outcome" yaml:"outcome"`
	DisplayName string         `json:"display_name" yaml:"display_name"`
	Profile     ProfileRecord  `json:"profile" yaml:"profile"`
	Error       string         `json:"error,omitempty" yaml:"error,omitempty"`
}
