// Package core has the client-side sync logic: carts, catalog, profiles and the session that wires them.
package core

import (
	"context"
	"log/slog"
	"sync"

	"github.com/huangsam/storesync/internal/contract"
	"github.com/huangsam/storesync/internal/optimistic"
	"github.com/huangsam/storesync/internal/synccache"
	"github.com/huangsam/storesync/schema"
)

// Compile-time check that the cache can serve as the queue's invalidator.
var _ optimistic.Invalidator = &synccache.Cache{}

// SignInResult is what a sign-in reports back to the caller.
type SignInResult struct {
	EnsureResult
	DisplayName string `json:"display_name" yaml:"display_name"`
}

// View flattens the result for printing.
func (r SignInResult) View() schema.ProfileView {
	return schema.ProfileView{
		Outcome:     r.Outcome,
		DisplayName: r.DisplayName,
		Profile:     r.Profile,
		Error:       r.Message(),
	}
}

// Session owns the one cache and the one queue shared by every component of a
// running client. It replaces process-wide singletons with explicit wiring.
type Session struct {
	store      contract.RecordStore
	cache      *synccache.Cache
	queue      *optimistic.Queue
	logger     *slog.Logger
	reconciler *ProfileReconciler
	catalog    *Catalog

	mu    sync.Mutex
	carts map[string]*CartSync
	user  string
}

// NewSession wires the components over store. A nil cache or queue gets a default one.
func NewSession(store contract.RecordStore, cache *synccache.Cache, queue *optimistic.Queue, logger *slog.Logger) *Session {
	if logger == nil {
		logger = contract.DiscardLogger()
	}
	if cache == nil {
		cache = synccache.New(synccache.WithLogger(logger))
	}
	if queue == nil {
		queue = optimistic.NewQueue(optimistic.WithLogger(logger))
	}
	return &Session{
		store:      store,
		cache:      cache,
		queue:      queue,
		logger:     logger,
		reconciler: NewProfileReconciler(store, logger),
		catalog:    NewCatalog(store, cache, queue, logger),
		carts:      make(map[string]*CartSync),
	}
}

// SignIn reconciles the user's profile once and picks the name to greet them with.
// A failed reconciliation does not fail the sign-in.
func (s *Session) SignIn(ctx context.Context, userID string, meta schema.UserMetadata) SignInResult {
	res := s.reconciler.EnsureProfile(ctx, userID, meta)
	if res.Outcome == schema.ProfileError {
		s.logger.Warn("profile reconciliation failed", "user", userID, "err", res.Err)
	} else {
		s.mu.Lock()
		s.user = userID
		s.mu.Unlock()
	}
	return SignInResult{EnsureResult: res, DisplayName: DisplayName(res, meta)}
}

// SignOut abandons every pending optimistic update and drops the user's cached cart.
func (s *Session) SignOut() {
	n := s.queue.RollbackAll()

	s.mu.Lock()
	user := s.user
	s.user = ""
	s.mu.Unlock()

	if user != "" {
		s.cache.InvalidateKey(synccache.NewKey(cartKind, user))
	}
	s.logger.Info("signed out", "user", user, "reverted", n)
}

// User returns the signed-in user id, or "".
func (s *Session) User() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.user
}

// Cart returns the cart sync of userID, creating it on first use.
func (s *Session) Cart(userID string) *CartSync {
	s.mu.Lock()
	defer s.mu.Unlock()
	cs, ok := s.carts[userID]
	if !ok {
		cs = NewCartSync(userID, s.store, s.cache, s.queue, s.logger)
		s.carts[userID] = cs
	}
	return cs
}

// Catalog returns the shared catalog.
func (s *Session) Catalog() *Catalog { return s.catalog }

// Reconciler returns the profile reconciler.
func (s *Session) Reconciler() *ProfileReconciler { return s.reconciler }

// Cache returns the shared cache.
func (s *Session) Cache() *synccache.Cache { return s.cache }

// Queue returns the shared optimistic queue.
func (s *Session) Queue() *optimistic.Queue { return s.queue }

// Store returns the record store.
func (s *Session) Store() contract.RecordStore { return s.store }

// Close closes the record store.
func (s *Session) Close() error {
	return s.store.Close()
}
