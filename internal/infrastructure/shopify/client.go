package shopify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"shopify-agent-gateway/internal/domain"
	"shopify-agent-gateway/internal/ports"
)

const defaultSearchLimit = 10

// Client implements ports.CatalogClient against the Shopify Admin GraphQL
// API. Each tenant's shop domain and access token come from its merchant
// record; the client itself holds no per-tenant state. No call is retried:
// checkout creation is not guaranteed idempotent upstream.
type Client struct {
	apiVersion string
	baseURL    string
	httpClient *http.Client
	errCounter prometheus.Counter
	logger     zerolog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL overrides the https://{shop} endpoint prefix. Used in tests.
func WithBaseURL(base string) Option {
	return func(c *Client) { c.baseURL = base }
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithErrorCounter counts upstream failures for monitoring.
func WithErrorCounter(counter prometheus.Counter) Option {
	return func(c *Client) { c.errCounter = counter }
}

// NewClient creates a new Admin GraphQL client.
func NewClient(apiVersion string, logger zerolog.Logger, opts ...Option) *Client {
	c := &Client{
		apiVersion: apiVersion,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		logger:     logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type graphqlRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables,omitempty"`
}

type graphqlError struct {
	Message string `json:"message"`
}

type graphqlResponse struct {
	Data   json.RawMessage `json:"data"`
	Errors []graphqlError  `json:"errors,omitempty"`
}

func (c *Client) endpoint(shop string) string {
	if c.baseURL != "" {
		return fmt.Sprintf("%s/admin/api/%s/graphql.json", c.baseURL, c.apiVersion)
	}
	return fmt.Sprintf("https://%s/admin/api/%s/graphql.json", shop, c.apiVersion)
}

// execute posts a GraphQL document and returns the raw data payload. A
// non-2xx status or a populated errors list yields an UpstreamError.
func (c *Client) execute(ctx context.Context, merchant *domain.Merchant, query string, variables map[string]any) (json.RawMessage, error) {
	body, err := json.Marshal(graphqlRequest{Query: query, Variables: variables})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint(merchant.Shop), bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Shopify-Access-Token", merchant.AccessToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.logger.Error().
			Str("shop", merchant.Shop).
			Int("status", resp.StatusCode).
			Msg("Shopify API returned non-success status")
		c.countError()
		return nil, &domain.UpstreamError{Status: resp.StatusCode}
	}

	var gqlResp graphqlResponse
	if err := json.Unmarshal(respBody, &gqlResp); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}

	if len(gqlResp.Errors) > 0 {
		messages := make([]string, len(gqlResp.Errors))
		for i, e := range gqlResp.Errors {
			messages[i] = e.Message
		}
		c.logger.Error().
			Str("shop", merchant.Shop).
			Strs("errors", messages).
			Msg("Shopify API returned GraphQL errors")
		c.countError()
		return nil, &domain.UpstreamError{Status: resp.StatusCode, Messages: messages}
	}

	return gqlResp.Data, nil
}

func (c *Client) countError() {
	if c.errCounter != nil {
		c.errCounter.Inc()
	}
}

// Wire shapes for decoding GraphQL payloads.

type moneyNode struct {
	Amount       string `json:"amount"`
	CurrencyCode string `json:"currencyCode"`
}

type variantNode struct {
	ID               string `json:"id"`
	Title            string `json:"title"`
	SKU              string `json:"sku"`
	Price            string `json:"price"`
	AvailableForSale bool   `json:"availableForSale"`
}

type productNode struct {
	ID            string `json:"id"`
	Title         string `json:"title"`
	Description   string `json:"description"`
	Handle        string `json:"handle"`
	FeaturedImage *struct {
		URL string `json:"url"`
	} `json:"featuredImage"`
	PriceRangeV2 struct {
		MinVariantPrice moneyNode `json:"minVariantPrice"`
		MaxVariantPrice moneyNode `json:"maxVariantPrice"`
	} `json:"priceRangeV2"`
	Variants struct {
		Edges []struct {
			Node variantNode `json:"node"`
		} `json:"edges"`
	} `json:"variants"`
}

func (n *productNode) toDomain() domain.Product {
	p := domain.Product{
		ID:          n.ID,
		Title:       n.Title,
		Description: n.Description,
		Handle:      n.Handle,
		PriceMin:    n.PriceRangeV2.MinVariantPrice.Amount,
		PriceMax:    n.PriceRangeV2.MaxVariantPrice.Amount,
		Currency:    n.PriceRangeV2.MinVariantPrice.CurrencyCode,
		Variants:    make([]domain.Variant, 0, len(n.Variants.Edges)),
	}
	if n.FeaturedImage != nil {
		p.ImageURL = n.FeaturedImage.URL
	}
	for _, edge := range n.Variants.Edges {
		p.Variants = append(p.Variants, domain.Variant{
			ID:        edge.Node.ID,
			Title:     edge.Node.Title,
			SKU:       edge.Node.SKU,
			Price:     edge.Node.Price,
			Available: edge.Node.AvailableForSale,
		})
	}
	return p
}

// SearchProducts returns up to limit products matching the query text.
func (c *Client) SearchProducts(ctx context.Context, merchant *domain.Merchant, query string, limit int) ([]domain.Product, error) {
	if limit <= 0 {
		limit = defaultSearchLimit
	}

	data, err := c.execute(ctx, merchant, ProductSearchQuery, map[string]any{
		"query": query,
		"first": limit,
	})
	if err != nil {
		return nil, err
	}

	var payload struct {
		Products struct {
			Edges []struct {
				Node productNode `json:"node"`
			} `json:"edges"`
		} `json:"products"`
	}
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, fmt.Errorf("failed to decode product search: %w", err)
	}

	products := make([]domain.Product, 0, len(payload.Products.Edges))
	for _, edge := range payload.Products.Edges {
		products = append(products, edge.Node.toDomain())
	}
	return products, nil
}

// GetProductByHandle resolves a single product. Returns (nil, nil) when the
// handle does not exist.
func (c *Client) GetProductByHandle(ctx context.Context, merchant *domain.Merchant, handle string) (*domain.Product, error) {
	data, err := c.execute(ctx, merchant, ProductByHandleQuery, map[string]any{
		"handle": handle,
	})
	if err != nil {
		return nil, err
	}

	var payload struct {
		ProductByHandle *productNode `json:"productByHandle"`
	}
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, fmt.Errorf("failed to decode product: %w", err)
	}
	if payload.ProductByHandle == nil {
		return nil, nil
	}

	product := payload.ProductByHandle.toDomain()
	return &product, nil
}

// CreateCheckout creates a draft order for the given lines. The attribution
// pair (_source, _interaction_id) is attached as custom attributes so the
// completed order's note attributes point back at the interaction.
func (c *Client) CreateCheckout(ctx context.Context, merchant *domain.Merchant, lines []domain.CheckoutLine, interactionID string) (*domain.CheckoutResult, error) {
	lineItems := make([]map[string]any, 0, len(lines))
	for _, line := range lines {
		qty := line.Quantity
		if qty <= 0 {
			qty = 1
		}
		lineItems = append(lineItems, map[string]any{
			"variantId": line.VariantID,
			"quantity":  qty,
		})
	}

	input := map[string]any{
		"lineItems": lineItems,
		"customAttributes": []map[string]any{
			{"key": "_source", "value": domain.AttributionSource},
			{"key": "_interaction_id", "value": interactionID},
		},
	}

	data, err := c.execute(ctx, merchant, DraftOrderCreateMutation, map[string]any{
		"input": input,
	})
	if err != nil {
		return nil, err
	}

	var payload struct {
		DraftOrderCreate struct {
			DraftOrder *struct {
				ID           string `json:"id"`
				InvoiceURL   string `json:"invoiceUrl"`
				TotalPrice   string `json:"totalPrice"`
				CurrencyCode string `json:"currencyCode"`
			} `json:"draftOrder"`
			UserErrors []struct {
				Message string `json:"message"`
			} `json:"userErrors"`
		} `json:"draftOrderCreate"`
	}
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, fmt.Errorf("failed to decode checkout: %w", err)
	}

	if len(payload.DraftOrderCreate.UserErrors) > 0 {
		messages := make([]string, len(payload.DraftOrderCreate.UserErrors))
		for i, e := range payload.DraftOrderCreate.UserErrors {
			messages[i] = e.Message
		}
		c.countError()
		return nil, &domain.UpstreamError{Status: http.StatusOK, Messages: messages}
	}
	if payload.DraftOrderCreate.DraftOrder == nil {
		return nil, &domain.UpstreamError{Status: http.StatusOK, Messages: []string{"checkout creation returned no draft order"}}
	}

	do := payload.DraftOrderCreate.DraftOrder
	return &domain.CheckoutResult{
		CheckoutID:    do.ID,
		CheckoutURL:   do.InvoiceURL,
		Total:         do.TotalPrice,
		Currency:      do.CurrencyCode,
		InteractionID: interactionID,
	}, nil
}

var _ ports.CatalogClient = (*Client)(nil)
