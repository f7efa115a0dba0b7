package webhook_handlers

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shopify-agent-gateway/internal/domain"
)

type stubMerchantRepo struct {
	merchants map[string]*domain.Merchant
}

func newStubMerchantRepo(shops ...string) *stubMerchantRepo {
	r := &stubMerchantRepo{merchants: make(map[string]*domain.Merchant)}
	for _, shop := range shops {
		r.merchants[shop] = &domain.Merchant{Shop: shop, Enabled: true}
	}
	return r
}

func (r *stubMerchantRepo) GetByShop(_ context.Context, shop string) (*domain.Merchant, error) {
	return r.merchants[shop], nil
}

func (r *stubMerchantRepo) Save(_ context.Context, m *domain.Merchant) error {
	r.merchants[m.Shop] = m
	return nil
}

func (r *stubMerchantRepo) UpdateProfile(_ context.Context, shop string, p domain.Profile) error {
	m, ok := r.merchants[shop]
	if !ok {
		return domain.ErrMerchantNotFound
	}
	m.Profile = p
	return nil
}

func (r *stubMerchantRepo) Delete(_ context.Context, shop string) error {
	delete(r.merchants, shop)
	return nil
}

func TestAppUninstalledHandlerCanHandle(t *testing.T) {
	h := NewAppUninstalledHandler(nil, nil, zerolog.Nop())
	assert.True(t, h.CanHandle("app/uninstalled"))
	assert.False(t, h.CanHandle("orders/create"))
}

func TestAppUninstalledHandlerRemovesTenantState(t *testing.T) {
	merchants := newStubMerchantRepo("shop.myshopify.com", "other.myshopify.com")
	interactions := newStubInteractionRepo("abc123")
	h := NewAppUninstalledHandler(merchants, interactions, zerolog.Nop())

	err := h.Handle(context.Background(), &domain.WebhookEvent{
		Topic:    "app/uninstalled",
		Shop:     "shop.myshopify.com",
		Payload:  []byte(`{}`),
		Verified: true,
	})
	require.NoError(t, err)

	assert.NotContains(t, merchants.merchants, "shop.myshopify.com")
	assert.Contains(t, merchants.merchants, "other.myshopify.com")
	assert.Equal(t, []string{"shop.myshopify.com"}, interactions.deletedShops)
	assert.Empty(t, interactions.interactions)
}

func TestAppUninstalledHandlerShopFromPayload(t *testing.T) {
	merchants := newStubMerchantRepo("shop.myshopify.com")
	interactions := newStubInteractionRepo()
	h := NewAppUninstalledHandler(merchants, interactions, zerolog.Nop())

	err := h.Handle(context.Background(), &domain.WebhookEvent{
		Topic:    "app/uninstalled",
		Payload:  []byte(`{"domain":"shop.example.com","myshopify_domain":"shop.myshopify.com"}`),
		Verified: true,
	})
	require.NoError(t, err)
	assert.NotContains(t, merchants.merchants, "shop.myshopify.com")
}

func TestAppUninstalledHandlerNoShop(t *testing.T) {
	merchants := newStubMerchantRepo("shop.myshopify.com")
	h := NewAppUninstalledHandler(merchants, newStubInteractionRepo(), zerolog.Nop())

	err := h.Handle(context.Background(), &domain.WebhookEvent{
		Topic:    "app/uninstalled",
		Payload:  []byte(`{}`),
		Verified: true,
	})
	require.NoError(t, err)
	assert.Contains(t, merchants.merchants, "shop.myshopify.com")
}
