package application

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"shopify-agent-gateway/internal/domain"
	"shopify-agent-gateway/internal/ports"
)

// DiscoveryTTL is how long a rendered discovery document stays fresh. It
// matches the Cache-Control window advertised to callers.
const DiscoveryTTL = 5 * time.Minute

// DiscoveryService renders the per-tenant capability document. The document
// is a pure function of the merchant profile; it is cached until the
// merchant edits settings or the TTL lapses.
type DiscoveryService struct {
	merchants ports.MerchantRepository
	registry  *Registry
	cache     ports.DocumentCache
	appURL    string
	logger    zerolog.Logger
}

// NewDiscoveryService creates a new discovery publisher.
func NewDiscoveryService(
	merchants ports.MerchantRepository,
	registry *Registry,
	cache ports.DocumentCache,
	appURL string,
	logger zerolog.Logger,
) *DiscoveryService {
	return &DiscoveryService{
		merchants: merchants,
		registry:  registry,
		cache:     cache,
		appURL:    appURL,
		logger:    logger,
	}
}

type discoveryTool struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Parameters  any    `json:"parameters"`
}

type discoveryDocument struct {
	Version      string          `json:"version"`
	Shop         string          `json:"shop"`
	Endpoint     string          `json:"endpoint"`
	Capabilities []string        `json:"capabilities"`
	Tools        []discoveryTool `json:"tools"`
	Merchant     struct {
		BrandVoice            string  `json:"brand_voice,omitempty"`
		FreeShippingThreshold float64 `json:"free_shipping_threshold,omitempty"`
	} `json:"merchant"`
}

// Document returns the rendered discovery JSON for a shop. Unknown shops
// yield ErrMerchantNotFound; disabled shops receive a minimal disabled
// document instead of the full profile.
func (s *DiscoveryService) Document(ctx context.Context, shop string) ([]byte, error) {
	if cached, err := s.cache.Get(ctx, shop); err != nil {
		// Cache trouble is not fatal; render fresh.
		s.logger.Warn().Err(err).Str("shop", shop).Msg("Discovery cache read failed")
	} else if cached != nil {
		return cached, nil
	}

	doc, err := s.render(ctx, shop)
	if err != nil {
		return nil, err
	}

	if err := s.cache.Set(ctx, shop, doc, DiscoveryTTL); err != nil {
		s.logger.Warn().Err(err).Str("shop", shop).Msg("Discovery cache write failed")
	}
	return doc, nil
}

// Invalidate drops the cached document for a shop. Called by the settings
// surface after a profile mutation.
func (s *DiscoveryService) Invalidate(ctx context.Context, shop string) {
	if err := s.cache.Delete(ctx, shop); err != nil {
		s.logger.Warn().Err(err).Str("shop", shop).Msg("Discovery cache invalidation failed")
	}
}

func (s *DiscoveryService) render(ctx context.Context, shop string) ([]byte, error) {
	merchant, err := s.merchants.GetByShop(ctx, shop)
	if err != nil {
		return nil, err
	}
	if merchant == nil {
		return nil, domain.ErrMerchantNotFound
	}

	if !merchant.Enabled {
		return json.Marshal(map[string]string{"status": "disabled"})
	}

	doc := discoveryDocument{
		Version:      "1.0",
		Shop:         merchant.Shop,
		Endpoint:     fmt.Sprintf("%s/mcp/%s", s.appURL, merchant.Shop),
		Capabilities: []string{"discovery", "checkout", "inquiry"},
	}
	for _, t := range s.registry.List() {
		doc.Tools = append(doc.Tools, discoveryTool{
			Name:        t.Name,
			Description: t.Description,
			Parameters:  t.InputSchema,
		})
	}
	doc.Merchant.BrandVoice = merchant.Profile.BrandVoice
	doc.Merchant.FreeShippingThreshold = merchant.Profile.FreeShippingThreshold

	return json.Marshal(doc)
}
