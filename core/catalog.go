package core

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/huangsam/storesync/internal/contract"
	"github.com/huangsam/storesync/internal/optimistic"
	"github.com/huangsam/storesync/internal/synccache"
	"github.com/huangsam/storesync/schema"
)

// Cache key kinds owned by the catalog.
const (
	productsKind  = "products"
	customersKind = "customers"
)

// CustomerPatch lists the customer fields an update may change. Nil means unchanged.
type CustomerPatch struct {
	Name     *string
	WhatsApp *string
	Address  *string
}

func (p CustomerPatch) apply(c schema.Customer) schema.Customer {
	if p.Name != nil {
		c.Name = *p.Name
	}
	if p.WhatsApp != nil {
		c.WhatsApp = *p.WhatsApp
	}
	if p.Address != nil {
		c.Address = *p.Address
	}
	return c
}

func (p CustomerPatch) record() schema.Record {
	rec := schema.Record{}
	if p.Name != nil {
		rec["name"] = *p.Name
	}
	if p.WhatsApp != nil {
		rec["whatsapp"] = *p.WhatsApp
	}
	if p.Address != nil {
		rec["address"] = *p.Address
	}
	return rec
}

// Catalog serves products and customer records through the cache and applies
// customer edits optimistically to its local view.
type Catalog struct {
	store  contract.RecordStore
	cache  *synccache.Cache
	queue  *optimistic.Queue
	logger *slog.Logger

	mu        sync.Mutex
	customers map[string]schema.Customer
}

// NewCatalog creates a catalog over the shared store, cache and queue.
func NewCatalog(store contract.RecordStore, cache *synccache.Cache, queue *optimistic.Queue, logger *slog.Logger) *Catalog {
	if logger == nil {
		logger = contract.DiscardLogger()
	}
	return &Catalog{
		store:     store,
		cache:     cache,
		queue:     queue,
		logger:    logger,
		customers: make(map[string]schema.Customer),
	}
}

// Products lists products, optionally restricted to one category.
func (c *Catalog) Products(ctx context.Context, category string) ([]schema.Product, error) {
	key := synccache.NewKey(productsKind)
	where := schema.Predicate{}
	if category != "" {
		key = synccache.NewKey(productsKind, category)
		where["category"] = category
	}
	return synccache.Fetch(ctx, c.cache, key, 0, func(ctx context.Context) ([]schema.Product, error) {
		recs, err := c.store.List(ctx, schema.ProductsTable, where)
		if err != nil {
			return nil, err
		}
		products := make([]schema.Product, len(recs))
		for i, rec := range recs {
			products[i] = schema.ProductFromRecord(rec)
		}
		return products, nil
	})
}

// Product returns one product by id.
func (c *Catalog) Product(ctx context.Context, id string) (schema.Product, error) {
	key := synccache.NewKey(productsKind, "id", id)
	return synccache.Fetch(ctx, c.cache, key, 0, func(ctx context.Context) (schema.Product, error) {
		rec, err := c.store.Lookup(ctx, schema.ProductsTable, schema.Predicate{"id": id})
		if err != nil {
			return schema.Product{}, err
		}
		return schema.ProductFromRecord(rec), nil
	})
}

// AddProduct creates a product and evicts every cached product listing.
func (c *Catalog) AddProduct(ctx context.Context, p schema.Product) error {
	if err := validateProduct(p); err != nil {
		return err
	}
	if _, err := c.store.Insert(ctx, schema.ProductsTable, p.ToRecord()); err != nil {
		return fmt.Errorf("failed to add product %s: %w", p.ID, err)
	}
	n := c.cache.InvalidateKind(productsKind)
	c.logger.Debug("product added", "id", p.ID, "evicted", n)
	return nil
}

func validateProduct(p schema.Product) error {
	if strings.TrimSpace(p.ID) == "" {
		return errors.New("product id is required")
	}
	if _, ok := schema.ValidConditions[p.Condition]; !ok {
		return fmt.Errorf("invalid condition %q. must be new or used", p.Condition)
	}
	if p.Price < 0 {
		return fmt.Errorf("price cannot be negative (received %s)", p.Price)
	}
	if p.Stock < 0 {
		return fmt.Errorf("stock cannot be negative (received %d)", p.Stock)
	}
	return nil
}

// Customer returns a customer record read through the cache and keeps it in the local view.
func (c *Catalog) Customer(ctx context.Context, id string) (schema.Customer, error) {
	cust, err := synccache.Fetch(ctx, c.cache, customerKey(id), 0, func(ctx context.Context) (schema.Customer, error) {
		rec, err := c.store.Lookup(ctx, schema.CustomersTable, schema.Predicate{"id": id})
		if err != nil {
			return schema.Customer{}, err
		}
		return schema.CustomerFromRecord(rec), nil
	})
	if err != nil {
		return schema.Customer{}, err
	}
	// The local view may hold an optimistic value that has not resolved yet.
	if !c.queue.IsPending(customerKey(id).String()) {
		c.setLocal(cust)
	}
	return cust, nil
}

// LocalCustomer returns the locally held customer, including unconfirmed edits.
func (c *Catalog) LocalCustomer(id string) (schema.Customer, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	cust, ok := c.customers[id]
	return cust, ok
}

// UpdateCustomer applies patch locally, writes it and keeps it, or restores the
// previous record if the write fails.
func (c *Catalog) UpdateCustomer(ctx context.Context, id string, patch CustomerPatch) (schema.Customer, error) {
	changes := patch.record()
	if len(changes) == 0 {
		return schema.Customer{}, errors.New("nothing to update")
	}

	prior, ok := c.LocalCustomer(id)
	if !ok {
		var err error
		if prior, err = c.Customer(ctx, id); err != nil {
			return schema.Customer{}, err
		}
	}
	next := patch.apply(prior)
	key := customerKey(id).String()

	err := optimistic.Run(ctx, c.queue, c.cache, optimistic.Mutation[schema.Customer]{
		ID:      key,
		Next:    next,
		Prior:   prior,
		Present: c.setLocal,
		Restore: c.setLocal,
		Remote: func(ctx context.Context) error {
			_, err := c.store.Update(ctx, schema.CustomersTable, id, changes)
			return err
		},
		InvalidateKeys: []string{key},
	})
	if err != nil {
		return prior, err
	}
	return next, nil
}

// SaveAddress is UpdateCustomer for the address alone.
func (c *Catalog) SaveAddress(ctx context.Context, id, address string) (schema.Customer, error) {
	return c.UpdateCustomer(ctx, id, CustomerPatch{Address: &address})
}

// CheckoutTotal prices lines against the store directly. Prices used for
// payment must never come from the cache.
func (c *Catalog) CheckoutTotal(ctx context.Context, lines []schema.CartLine) (schema.Money, error) {
	var total schema.Money
	for _, l := range lines {
		rec, err := c.store.Lookup(ctx, schema.ProductsTable, schema.Predicate{"id": l.Identity.ProductID})
		if err != nil {
			return 0, fmt.Errorf("failed to price %s: %w", l.Identity, err)
		}
		total += schema.ProductFromRecord(rec).Price.Times(l.Quantity)
	}
	return total, nil
}

func (c *Catalog) setLocal(cust schema.Customer) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.customers[cust.ID] = cust
}

func customerKey(id string) synccache.Key {
	return synccache.NewKey(customersKind, id)
}
