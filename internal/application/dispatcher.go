package application

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"shopify-agent-gateway/internal/domain"
	"shopify-agent-gateway/internal/ports"
	"shopify-agent-gateway/internal/protocol"
)

const (
	protocolVersion = "2024-11-05"
	serverName      = "shopify-agent-gateway"
	serverVersion   = "0.1.0"
)

// Dispatcher routes JSON-RPC requests for a tenant: it authenticates the
// merchant, resolves the method, invokes tool handlers, and always returns a
// well-formed response envelope. Each request is independent; there is no
// session state across calls.
type Dispatcher struct {
	merchants ports.MerchantRepository
	catalog   ports.CatalogClient
	recorder  *InteractionRecorder
	registry  *Registry
	logger    zerolog.Logger
}

// NewDispatcher wires the dispatcher's collaborators. All handles are
// injected at construction; lifecycle is owned by the process bootstrap.
func NewDispatcher(
	merchants ports.MerchantRepository,
	catalog ports.CatalogClient,
	recorder *InteractionRecorder,
	registry *Registry,
	logger zerolog.Logger,
) *Dispatcher {
	return &Dispatcher{
		merchants: merchants,
		catalog:   catalog,
		recorder:  recorder,
		registry:  registry,
		logger:    logger,
	}
}

// Registry exposes the tool registry (shared with the discovery publisher).
func (d *Dispatcher) Registry() *Registry {
	return d.registry
}

// Handle authenticates the tenant identified by shop and dispatches one
// request. Authorization failures are JSON-RPC errors, not transport errors,
// so the caller always receives an envelope.
func (d *Dispatcher) Handle(ctx context.Context, shop string, req protocol.Request) protocol.Response {
	merchant, err := d.merchants.GetByShop(ctx, shop)
	if err != nil {
		d.logger.Error().Err(err).Str("shop", shop).Msg("Merchant lookup failed")
		return protocol.NewErrorResponse(req.ID, protocol.CodeInternalError, "failed to resolve merchant")
	}
	if merchant == nil {
		return protocol.NewErrorResponse(req.ID, protocol.CodeMerchantNotFound, "Merchant not found")
	}
	if !merchant.Enabled {
		return protocol.NewErrorResponse(req.ID, protocol.CodeAgentDisabled, "Agent access is disabled for this store")
	}

	switch req.Method {
	case "initialize":
		return protocol.NewResponse(req.ID, map[string]any{
			"protocolVersion": protocolVersion,
			"serverInfo": map[string]string{
				"name":    serverName,
				"version": serverVersion,
			},
			"capabilities": map[string]any{
				"tools":     map[string]any{},
				"resources": map[string]any{},
			},
		})

	case "tools/list":
		return protocol.NewResponse(req.ID, protocol.ListToolsResult{Tools: d.registry.List()})

	case "tools/call":
		var params protocol.CallParams
		if err := json.Unmarshal(req.Params, &params); err != nil || params.Name == "" {
			return protocol.NewErrorResponse(req.ID, protocol.CodeInvalidParams, "invalid params: tool name required")
		}
		result, err := d.callTool(ctx, merchant, params.Name, params.Arguments)
		if err != nil {
			d.logger.Error().Err(err).
				Str("shop", shop).
				Str("tool", params.Name).
				Msg("Tool call failed")
			return protocol.NewErrorResponse(req.ID, protocol.CodeInternalError, err.Error())
		}
		return protocol.NewResponse(req.ID, result)

	case "resources/list":
		return protocol.NewResponse(req.ID, protocol.ListResourcesResult{
			Resources: []protocol.ResourceDescriptor{{
				URI:         contextResourceURI(merchant.Shop),
				Name:        "Store Context",
				Description: "Store policies and brand voice for agent conversations",
				MimeType:    "text/plain",
			}},
		})

	case "resources/read":
		var params protocol.ReadResourceParams
		if err := json.Unmarshal(req.Params, &params); err != nil {
			return protocol.NewErrorResponse(req.ID, protocol.CodeInvalidParams, "invalid params")
		}
		if params.URI != contextResourceURI(merchant.Shop) {
			return protocol.NewErrorResponse(req.ID, protocol.CodeInvalidParams, "Resource not found")
		}
		return protocol.NewResponse(req.ID, protocol.ReadResourceResult{
			Contents: []protocol.ResourceContents{{
				URI:      params.URI,
				MimeType: "text/plain",
				Text:     renderStoreContext(merchant),
			}},
		})

	default:
		return protocol.NewErrorResponse(req.ID, protocol.CodeMethodNotFound, "Method not found")
	}
}

// callTool validates the tool name against the registry and invokes the
// matching handler. Unknown tool names and handler failures are folded into
// the internal-error envelope by the caller.
func (d *Dispatcher) callTool(ctx context.Context, merchant *domain.Merchant, name string, args json.RawMessage) (protocol.CallResult, error) {
	if !d.registry.Has(name) {
		return protocol.CallResult{}, fmt.Errorf("unknown tool: %s", name)
	}

	switch name {
	case ToolSearchProducts:
		return d.searchProducts(ctx, merchant, args)
	case ToolGetProduct:
		return d.getProduct(ctx, merchant, args)
	case ToolCreateCheckout:
		return d.createCheckout(ctx, merchant, args)
	case ToolGetStoreInfo:
		return d.getStoreInfo(ctx, merchant)
	default:
		return protocol.CallResult{}, fmt.Errorf("unknown tool: %s", name)
	}
}

func contextResourceURI(shop string) string {
	return "store://" + shop + "/context"
}

// renderStoreContext builds the system-prompt string from the merchant's
// profile for the resources/read surface.
func renderStoreContext(m *domain.Merchant) string {
	var b strings.Builder
	fmt.Fprintf(&b, "You are a shopping assistant for %s.\n", m.Shop)
	if m.Profile.BrandVoice != "" {
		fmt.Fprintf(&b, "Brand voice: %s\n", m.Profile.BrandVoice)
	}
	if m.Profile.ReturnPolicy != "" {
		fmt.Fprintf(&b, "Return policy: %s\n", m.Profile.ReturnPolicy)
	}
	if m.Profile.ShippingPolicy != "" {
		fmt.Fprintf(&b, "Shipping: %s\n", m.Profile.ShippingPolicy)
	}
	if m.Profile.FreeShippingThreshold > 0 {
		fmt.Fprintf(&b, "Orders over %.2f ship free.\n", m.Profile.FreeShippingThreshold)
	}
	return b.String()
}
