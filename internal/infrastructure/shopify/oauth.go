package shopify

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	goshopify "github.com/bold-commerce/go-shopify/v4"
	"github.com/rs/zerolog"
)

// OAuth wraps the app-level Shopify credentials used for the install flow
// and webhook signature verification.
type OAuth struct {
	app    goshopify.App
	apiKey string
	logger zerolog.Logger
}

// NewOAuth creates the OAuth helper from the app API key and secret.
func NewOAuth(apiKey, apiSecret string, logger zerolog.Logger) *OAuth {
	return &OAuth{
		app: goshopify.App{
			ApiKey:    apiKey,
			ApiSecret: apiSecret,
		},
		apiKey: apiKey,
		logger: logger,
	}
}

// AuthorizeURL builds the merchant-facing authorization URL. Scopes are
// comma-separated per Shopify's expectations.
func (o *OAuth) AuthorizeURL(shop string, scopes []string, redirectURI, state string) string {
	return fmt.Sprintf(
		"https://%s/admin/oauth/authorize?client_id=%s&scope=%s&redirect_uri=%s&state=%s",
		shop,
		o.apiKey,
		url.QueryEscape(strings.Join(scopes, ",")),
		url.QueryEscape(redirectURI),
		url.QueryEscape(state),
	)
}

// ExchangeToken exchanges the authorization code for an access token.
func (o *OAuth) ExchangeToken(ctx context.Context, shop, code string) (string, error) {
	token, err := o.app.GetAccessToken(ctx, shop, code)
	if err != nil {
		return "", fmt.Errorf("failed to exchange token: %w", err)
	}
	return token, nil
}

// VerifyWebhook checks the HMAC signature of a webhook delivery. The payload
// is re-attached as the request body since the library consumes it.
func (o *OAuth) VerifyWebhook(r *http.Request, payload []byte) bool {
	r.Body = io.NopCloser(bytes.NewReader(payload))
	ok := o.app.VerifyWebhookRequest(r)
	r.Body = io.NopCloser(bytes.NewReader(payload))
	return ok
}
