package application

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shopify-agent-gateway/internal/domain"
)

func newTestDiscovery(merchants *fakeMerchantRepo, cache *fakeCache) *DiscoveryService {
	return NewDiscoveryService(merchants, NewRegistry(), cache, "https://gateway.example.com", zerolog.Nop())
}

func TestDiscoveryDocument(t *testing.T) {
	merchant := testMerchant("shop.myshopify.com")
	s := newTestDiscovery(newFakeMerchantRepo(merchant), newFakeCache())

	raw, err := s.Document(context.Background(), "shop.myshopify.com")
	require.NoError(t, err)

	var doc struct {
		Version      string   `json:"version"`
		Shop         string   `json:"shop"`
		Endpoint     string   `json:"endpoint"`
		Capabilities []string `json:"capabilities"`
		Tools        []struct {
			Name string `json:"name"`
		} `json:"tools"`
		Merchant struct {
			BrandVoice            string  `json:"brand_voice"`
			FreeShippingThreshold float64 `json:"free_shipping_threshold"`
		} `json:"merchant"`
	}
	require.NoError(t, json.Unmarshal(raw, &doc))

	assert.Equal(t, "1.0", doc.Version)
	assert.Equal(t, "shop.myshopify.com", doc.Shop)
	assert.Equal(t, "https://gateway.example.com/mcp/shop.myshopify.com", doc.Endpoint)
	assert.Equal(t, []string{"discovery", "checkout", "inquiry"}, doc.Capabilities)
	require.Len(t, doc.Tools, 4)
	assert.Equal(t, ToolSearchProducts, doc.Tools[0].Name)
	assert.Equal(t, "friendly and concise", doc.Merchant.BrandVoice)
	assert.Equal(t, 50.0, doc.Merchant.FreeShippingThreshold)
}

func TestDiscoveryDocumentDisabled(t *testing.T) {
	merchant := testMerchant("off.myshopify.com")
	merchant.Enabled = false
	s := newTestDiscovery(newFakeMerchantRepo(merchant), newFakeCache())

	raw, err := s.Document(context.Background(), "off.myshopify.com")
	require.NoError(t, err)
	assert.JSONEq(t, `{"status":"disabled"}`, string(raw))
}

func TestDiscoveryDocumentUnknownShop(t *testing.T) {
	s := newTestDiscovery(newFakeMerchantRepo(), newFakeCache())

	_, err := s.Document(context.Background(), "ghost.myshopify.com")
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrMerchantNotFound))
}

func TestDiscoveryDocumentServedFromCache(t *testing.T) {
	merchants := newFakeMerchantRepo(testMerchant("shop.myshopify.com"))
	cache := newFakeCache()
	s := newTestDiscovery(merchants, cache)

	first, err := s.Document(context.Background(), "shop.myshopify.com")
	require.NoError(t, err)

	// A profile change without invalidation is not visible until the TTL
	// lapses; the cached render is returned as-is.
	merchants.merchants["shop.myshopify.com"].Profile.BrandVoice = "changed"
	second, err := s.Document(context.Background(), "shop.myshopify.com")
	require.NoError(t, err)
	assert.Equal(t, first, second)

	s.Invalidate(context.Background(), "shop.myshopify.com")
	third, err := s.Document(context.Background(), "shop.myshopify.com")
	require.NoError(t, err)
	assert.Contains(t, string(third), "changed")
}
