package shopify

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shopify-agent-gateway/internal/domain"
)

type capturedRequest struct {
	Token     string
	Query     string
	Variables map[string]any
}

// newTestClient points a client at a stub Admin API. respond writes the
// GraphQL response for each captured request.
func newTestClient(t *testing.T, respond func(w http.ResponseWriter, req capturedRequest)) (*Client, *[]capturedRequest) {
	t.Helper()
	var captured []capturedRequest

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/admin/api/2024-10/graphql.json", r.URL.Path)

		var body struct {
			Query     string         `json:"query"`
			Variables map[string]any `json:"variables"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		req := capturedRequest{
			Token:     r.Header.Get("X-Shopify-Access-Token"),
			Query:     body.Query,
			Variables: body.Variables,
		}
		captured = append(captured, req)
		respond(w, req)
	}))
	t.Cleanup(srv.Close)

	client := NewClient("2024-10", zerolog.Nop(), WithBaseURL(srv.URL))
	return client, &captured
}

func clientMerchant() *domain.Merchant {
	return &domain.Merchant{
		Shop:        "shop.myshopify.com",
		AccessToken: "shpat_test",
		Enabled:     true,
	}
}

func respondJSON(w http.ResponseWriter, body string) {
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write([]byte(body))
}

func TestSearchProducts(t *testing.T) {
	client, captured := newTestClient(t, func(w http.ResponseWriter, _ capturedRequest) {
		respondJSON(w, `{"data":{"products":{"edges":[{"node":{
			"id":"gid://shopify/Product/1",
			"title":"Wool Socks",
			"description":"Warm socks",
			"handle":"wool-socks",
			"featuredImage":{"url":"https://cdn.example.com/socks.jpg"},
			"priceRangeV2":{
				"minVariantPrice":{"amount":"12.00","currencyCode":"USD"},
				"maxVariantPrice":{"amount":"15.00","currencyCode":"USD"}
			},
			"variants":{"edges":[{"node":{
				"id":"gid://shopify/ProductVariant/11",
				"title":"M","sku":"WS-M","price":"12.00","availableForSale":true
			}}]}
		}}]}}}`)
	})

	products, err := client.SearchProducts(context.Background(), clientMerchant(), "socks", 5)
	require.NoError(t, err)
	require.Len(t, products, 1)

	p := products[0]
	assert.Equal(t, "gid://shopify/Product/1", p.ID)
	assert.Equal(t, "Wool Socks", p.Title)
	assert.Equal(t, "wool-socks", p.Handle)
	assert.Equal(t, "https://cdn.example.com/socks.jpg", p.ImageURL)
	assert.Equal(t, "12.00", p.PriceMin)
	assert.Equal(t, "15.00", p.PriceMax)
	assert.Equal(t, "USD", p.Currency)
	require.Len(t, p.Variants, 1)
	assert.Equal(t, "WS-M", p.Variants[0].SKU)
	assert.True(t, p.Variants[0].Available)

	require.Len(t, *captured, 1)
	req := (*captured)[0]
	assert.Equal(t, "shpat_test", req.Token)
	assert.Equal(t, "socks", req.Variables["query"])
	assert.Equal(t, float64(5), req.Variables["first"])
}

func TestSearchProductsDefaultLimit(t *testing.T) {
	client, captured := newTestClient(t, func(w http.ResponseWriter, _ capturedRequest) {
		respondJSON(w, `{"data":{"products":{"edges":[]}}}`)
	})

	products, err := client.SearchProducts(context.Background(), clientMerchant(), "anything", 0)
	require.NoError(t, err)
	assert.NotNil(t, products)
	assert.Empty(t, products)

	require.Len(t, *captured, 1)
	assert.Equal(t, float64(10), (*captured)[0].Variables["first"])
}

func TestSearchProductsNonSuccessStatus(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, _ capturedRequest) {
		w.WriteHeader(http.StatusBadGateway)
	})

	_, err := client.SearchProducts(context.Background(), clientMerchant(), "socks", 5)
	require.Error(t, err)

	var upstream *domain.UpstreamError
	require.True(t, errors.As(err, &upstream))
	assert.Equal(t, http.StatusBadGateway, upstream.Status)
}

func TestSearchProductsGraphQLErrors(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, _ capturedRequest) {
		respondJSON(w, `{"errors":[{"message":"Throttled"}]}`)
	})

	_, err := client.SearchProducts(context.Background(), clientMerchant(), "socks", 5)
	require.Error(t, err)

	var upstream *domain.UpstreamError
	require.True(t, errors.As(err, &upstream))
	assert.Equal(t, []string{"Throttled"}, upstream.Messages)
}

func TestGetProductByHandleMissing(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, _ capturedRequest) {
		respondJSON(w, `{"data":{"productByHandle":null}}`)
	})

	product, err := client.GetProductByHandle(context.Background(), clientMerchant(), "gone")
	require.NoError(t, err)
	assert.Nil(t, product)
}

func TestGetProductByHandle(t *testing.T) {
	client, captured := newTestClient(t, func(w http.ResponseWriter, _ capturedRequest) {
		respondJSON(w, `{"data":{"productByHandle":{
			"id":"gid://shopify/Product/1",
			"title":"Wool Socks",
			"handle":"wool-socks",
			"priceRangeV2":{
				"minVariantPrice":{"amount":"12.00","currencyCode":"USD"},
				"maxVariantPrice":{"amount":"12.00","currencyCode":"USD"}
			},
			"variants":{"edges":[]}
		}}}`)
	})

	product, err := client.GetProductByHandle(context.Background(), clientMerchant(), "wool-socks")
	require.NoError(t, err)
	require.NotNil(t, product)
	assert.Equal(t, "Wool Socks", product.Title)
	assert.NotNil(t, product.Variants)

	require.Len(t, *captured, 1)
	assert.Equal(t, "wool-socks", (*captured)[0].Variables["handle"])
}

func TestCreateCheckoutAttachesAttribution(t *testing.T) {
	client, captured := newTestClient(t, func(w http.ResponseWriter, _ capturedRequest) {
		respondJSON(w, `{"data":{"draftOrderCreate":{
			"draftOrder":{
				"id":"gid://shopify/DraftOrder/99",
				"invoiceUrl":"https://shop.myshopify.com/invoice/abc",
				"totalPrice":"36.00",
				"currencyCode":"USD"
			},
			"userErrors":[]
		}}}`)
	})

	lines := []domain.CheckoutLine{
		{VariantID: "gid://shopify/ProductVariant/11", Quantity: 2},
		{VariantID: "gid://shopify/ProductVariant/12"},
	}
	result, err := client.CreateCheckout(context.Background(), clientMerchant(), lines, "abc123")
	require.NoError(t, err)

	assert.Equal(t, "gid://shopify/DraftOrder/99", result.CheckoutID)
	assert.Equal(t, "https://shop.myshopify.com/invoice/abc", result.CheckoutURL)
	assert.Equal(t, "36.00", result.Total)
	assert.Equal(t, "USD", result.Currency)
	assert.Equal(t, "abc123", result.InteractionID)

	require.Len(t, *captured, 1)
	input, ok := (*captured)[0].Variables["input"].(map[string]any)
	require.True(t, ok)

	attrs, ok := input["customAttributes"].([]any)
	require.True(t, ok)
	require.Len(t, attrs, 2)
	assert.Equal(t, map[string]any{"key": "_source", "value": "agent-gateway"}, attrs[0])
	assert.Equal(t, map[string]any{"key": "_interaction_id", "value": "abc123"}, attrs[1])

	items, ok := input["lineItems"].([]any)
	require.True(t, ok)
	require.Len(t, items, 2)
	first := items[0].(map[string]any)
	assert.Equal(t, float64(2), first["quantity"])
	// Zero quantity normalizes to 1.
	second := items[1].(map[string]any)
	assert.Equal(t, float64(1), second["quantity"])
}

func TestCreateCheckoutUserErrors(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, _ capturedRequest) {
		respondJSON(w, `{"data":{"draftOrderCreate":{
			"draftOrder":null,
			"userErrors":[{"message":"Variant is invalid"},{"message":"Quantity must be positive"}]
		}}}`)
	})

	_, err := client.CreateCheckout(context.Background(), clientMerchant(),
		[]domain.CheckoutLine{{VariantID: "gid://shopify/ProductVariant/11", Quantity: 1}}, "abc123")
	require.Error(t, err)

	var upstream *domain.UpstreamError
	require.True(t, errors.As(err, &upstream))
	assert.Equal(t, []string{"Variant is invalid", "Quantity must be positive"}, upstream.Messages)
	assert.Contains(t, err.Error(), "Variant is invalid")
}
