package core

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/huangsam/storesync/internal/contract"
	"github.com/huangsam/storesync/schema"
)

// DefaultDisplayName is used when neither metadata nor email yield a name.
const DefaultDisplayName = "Customer"

// Metadata attributes consulted for the display name, in priority order.
var nameAttributes = []string{"full_name", "name"}

// EnsureResult is the outcome of one profile reconciliation.
// Err is set only when Outcome is schema.ProfileError.
type EnsureResult struct {
	Outcome schema.ProfileOutcome `json:"outcome" yaml:"outcome"`
	Profile schema.ProfileRecord  `json:"profile" yaml:"profile"`
	Err     error                 `json:"-" yaml:"-"`
}

// Message returns the error text, or "" when the reconciliation succeeded.
func (r EnsureResult) Message() string {
	if r.Err == nil {
		return ""
	}
	return r.Err.Error()
}

// ProfileReconciler creates the profile row for a signed-in user when the
// remote-side trigger did not.
type ProfileReconciler struct {
	store  contract.RecordStore
	logger *slog.Logger
	now    func() time.Time
}

// NewProfileReconciler creates a reconciler over store.
func NewProfileReconciler(store contract.RecordStore, logger *slog.Logger) *ProfileReconciler {
	if logger == nil {
		logger = contract.DiscardLogger()
	}
	return &ProfileReconciler{store: store, logger: logger, now: time.Now}
}

// EnsureProfile makes sure exactly one profile exists for userID.
//
// An existing profile is reported without any write. A missing one is inserted
// with a name derived from meta. A lookup failure other than "not found" is
// reported as an error without attempting the insert. An insert rejected
// because the row appeared concurrently counts as existing.
func (r *ProfileReconciler) EnsureProfile(ctx context.Context, userID string, meta schema.UserMetadata) EnsureResult {
	if userID == "" {
		return EnsureResult{Outcome: schema.ProfileError, Err: errors.New("user id is required")}
	}
	log := r.logger.With("user", userID)
	where := schema.Predicate{"id": userID}

	rec, err := r.store.Lookup(ctx, schema.ProfilesTable, where)
	if err == nil {
		return EnsureResult{Outcome: schema.ProfileExisting, Profile: schema.ProfileFromRecord(rec)}
	}
	if !contract.IsNotFound(err) {
		log.Warn("profile lookup failed", "err", err)
		return EnsureResult{Outcome: schema.ProfileError, Err: fmt.Errorf("failed to look up profile: %w", err)}
	}

	profile := schema.ProfileRecord{
		ID:        userID,
		Email:     meta.Email,
		Name:      FallbackName(meta),
		WhatsApp:  strings.TrimSpace(meta.Attributes["whatsapp"]),
		CreatedAt: r.now().UTC().Truncate(time.Second),
	}
	rec, err = r.store.Insert(ctx, schema.ProfilesTable, profile.ToRecord())
	if err == nil {
		log.Info("profile created", "name", profile.Name)
		return EnsureResult{Outcome: schema.ProfileCreated, Profile: schema.ProfileFromRecord(rec)}
	}

	if contract.IsConflict(err) {
		// Another session won the race; its row is the one that counts.
		rec, lerr := r.store.Lookup(ctx, schema.ProfilesTable, where)
		if lerr == nil {
			log.Debug("profile created concurrently")
			return EnsureResult{Outcome: schema.ProfileExisting, Profile: schema.ProfileFromRecord(rec)}
		}
		err = errors.Join(err, lerr)
	}
	log.Warn("profile insert failed", "err", err)
	return EnsureResult{Outcome: schema.ProfileError, Err: fmt.Errorf("failed to create profile: %w", err)}
}

// FallbackName derives a display name from metadata, then the email local part,
// then DefaultDisplayName.
func FallbackName(meta schema.UserMetadata) string {
	for _, attr := range nameAttributes {
		if v := strings.TrimSpace(meta.Attributes[attr]); v != "" {
			return v
		}
	}
	if local, _, _ := strings.Cut(strings.TrimSpace(meta.Email), "@"); local != "" {
		return local
	}
	return DefaultDisplayName
}

// DisplayName is the name to show after sign-in: the stored profile name when
// reconciliation produced one, otherwise a locally synthesized one.
func DisplayName(res EnsureResult, meta schema.UserMetadata) string {
	if res.Outcome != schema.ProfileError && res.Profile.Name != "" {
		return res.Profile.Name
	}
	return FallbackName(meta)
}
