package application

import (
	"context"
	"fmt"
	"sync"
	"time"

	"shopify-agent-gateway/internal/domain"
)

type fakeMerchantRepo struct {
	mu        sync.Mutex
	merchants map[string]*domain.Merchant
}

func newFakeMerchantRepo(merchants ...*domain.Merchant) *fakeMerchantRepo {
	r := &fakeMerchantRepo{merchants: make(map[string]*domain.Merchant)}
	for _, m := range merchants {
		r.merchants[m.Shop] = m
	}
	return r
}

func (r *fakeMerchantRepo) GetByShop(_ context.Context, shop string) (*domain.Merchant, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.merchants[shop], nil
}

func (r *fakeMerchantRepo) Save(_ context.Context, m *domain.Merchant) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.merchants[m.Shop] = m
	return nil
}

func (r *fakeMerchantRepo) UpdateProfile(_ context.Context, shop string, p domain.Profile) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.merchants[shop]
	if !ok {
		return domain.ErrMerchantNotFound
	}
	m.Profile = p
	return nil
}

func (r *fakeMerchantRepo) Delete(_ context.Context, shop string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.merchants, shop)
	return nil
}

type fakeInteractionRepo struct {
	mu           sync.Mutex
	nextID       int
	interactions map[string]*domain.AgentInteraction
	missed       map[string]int64
}

func newFakeInteractionRepo() *fakeInteractionRepo {
	return &fakeInteractionRepo{
		interactions: make(map[string]*domain.AgentInteraction),
		missed:       make(map[string]int64),
	}
}

func (r *fakeInteractionRepo) Insert(_ context.Context, in *domain.AgentInteraction) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	id := fmt.Sprintf("interaction-%d", r.nextID)
	stored := *in
	stored.ID = id
	stored.CreatedAt = time.Now()
	r.interactions[id] = &stored
	return id, nil
}

func (r *fakeInteractionRepo) SetCheckout(_ context.Context, id, checkoutID, checkoutURL string, potentialValue float64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	in, ok := r.interactions[id]
	if !ok {
		return &domain.PersistenceError{Op: "set checkout", Err: fmt.Errorf("interaction %s not found", id)}
	}
	in.CheckoutID = checkoutID
	in.CheckoutURL = checkoutURL
	in.PotentialValue = potentialValue
	return nil
}

func (r *fakeInteractionRepo) MarkConverted(_ context.Context, id, orderID string, orderValue float64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	in, ok := r.interactions[id]
	if !ok {
		return &domain.PersistenceError{Op: "mark converted", Err: fmt.Errorf("interaction %s not found", id)}
	}
	in.OrderID = orderID
	in.OrderValue = orderValue
	in.Converted = true
	return nil
}

func (r *fakeInteractionRepo) IncrementMissed(_ context.Context, shop, searchTerm string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.missed[shop+"|"+searchTerm]++
	return nil
}

func (r *fakeInteractionRepo) ListByShop(_ context.Context, shop string, _ int) ([]domain.AgentInteraction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.AgentInteraction
	for _, in := range r.interactions {
		if in.Shop == shop {
			out = append(out, *in)
		}
	}
	return out, nil
}

func (r *fakeInteractionRepo) ListMissed(_ context.Context, shop string, _ int) ([]domain.MissedOpportunity, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.MissedOpportunity
	for key, count := range r.missed {
		if len(key) > len(shop) && key[:len(shop)+1] == shop+"|" {
			out = append(out, domain.MissedOpportunity{
				Shop:       shop,
				SearchTerm: key[len(shop)+1:],
				Count:      count,
			})
		}
	}
	return out, nil
}

func (r *fakeInteractionRepo) DeleteByShop(_ context.Context, shop string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, in := range r.interactions {
		if in.Shop == shop {
			delete(r.interactions, id)
		}
	}
	for key := range r.missed {
		if len(key) > len(shop) && key[:len(shop)+1] == shop+"|" {
			delete(r.missed, key)
		}
	}
	return nil
}

func (r *fakeInteractionRepo) missedCount(shop, term string) int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.missed[shop+"|"+term]
}

func (r *fakeInteractionRepo) byIntent(intent string) []*domain.AgentInteraction {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.AgentInteraction
	for _, in := range r.interactions {
		if in.Intent == intent {
			out = append(out, in)
		}
	}
	return out
}

type fakeCatalog struct {
	products        []domain.Product
	productByHandle map[string]*domain.Product
	checkout        *domain.CheckoutResult
	err             error

	lastQuery         string
	lastLimit         int
	lastLines         []domain.CheckoutLine
	lastInteractionID string
}

func (c *fakeCatalog) SearchProducts(_ context.Context, _ *domain.Merchant, query string, limit int) ([]domain.Product, error) {
	c.lastQuery = query
	c.lastLimit = limit
	if c.err != nil {
		return nil, c.err
	}
	return c.products, nil
}

func (c *fakeCatalog) GetProductByHandle(_ context.Context, _ *domain.Merchant, handle string) (*domain.Product, error) {
	if c.err != nil {
		return nil, c.err
	}
	return c.productByHandle[handle], nil
}

func (c *fakeCatalog) CreateCheckout(_ context.Context, _ *domain.Merchant, lines []domain.CheckoutLine, interactionID string) (*domain.CheckoutResult, error) {
	c.lastLines = lines
	c.lastInteractionID = interactionID
	if c.err != nil {
		return nil, c.err
	}
	result := *c.checkout
	result.InteractionID = interactionID
	return &result, nil
}

type fakeCache struct {
	mu     sync.Mutex
	values map[string][]byte
}

func newFakeCache() *fakeCache {
	return &fakeCache{values: make(map[string][]byte)}
}

func (c *fakeCache) Get(_ context.Context, key string) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.values[key], nil
}

func (c *fakeCache) Set(_ context.Context, key string, value []byte, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.values[key] = value
	return nil
}

func (c *fakeCache) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.values, key)
	return nil
}
