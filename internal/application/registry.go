package application

import "shopify-agent-gateway/internal/protocol"

// Tool names exposed through tools/list and tools/call.
const (
	ToolSearchProducts = "search_products"
	ToolGetProduct     = "get_product"
	ToolCreateCheckout = "create_checkout"
	ToolGetStoreInfo   = "get_store_info"
)

// Registry is the static, ordered list of tool descriptors. It is identical
// across tenants; there is no dynamic registration.
type Registry struct {
	tools []protocol.ToolDescriptor
}

// NewRegistry builds the registry with the four gateway tools.
func NewRegistry() *Registry {
	return &Registry{tools: []protocol.ToolDescriptor{
		{
			Name:        ToolSearchProducts,
			Description: "Search the store catalog by free-text query. Returns matching products with variants and prices.",
			InputSchema: protocol.JSONSchema{
				Type: "object",
				Properties: map[string]protocol.JSONSchema{
					"query": {Type: "string", Description: "Free-text search query"},
					"limit": {Type: "integer", Description: "Maximum number of results (default 10)"},
				},
				Required: []string{"query"},
			},
		},
		{
			Name:        ToolGetProduct,
			Description: "Fetch a single product by its handle, including variants and availability.",
			InputSchema: protocol.JSONSchema{
				Type: "object",
				Properties: map[string]protocol.JSONSchema{
					"handle": {Type: "string", Description: "Product handle"},
				},
				Required: []string{"handle"},
			},
		},
		{
			Name:        ToolCreateCheckout,
			Description: "Create a checkout for one or more variants. Returns a URL the customer can open to complete the purchase.",
			InputSchema: protocol.JSONSchema{
				Type: "object",
				Properties: map[string]protocol.JSONSchema{
					"variant_ids": {
						Type:        "array",
						Items:       &protocol.JSONSchema{Type: "string"},
						Description: "Variant ids to purchase",
					},
					"quantities": {
						Type:        "array",
						Items:       &protocol.JSONSchema{Type: "integer"},
						Description: "Quantities aligned positionally with variant_ids; missing entries default to 1",
					},
				},
				Required: []string{"variant_ids"},
			},
		},
		{
			Name:        ToolGetStoreInfo,
			Description: "Get store policies and brand information: return policy, shipping, free-shipping threshold.",
			InputSchema: protocol.JSONSchema{
				Type:       "object",
				Properties: map[string]protocol.JSONSchema{},
			},
		},
	}}
}

// List returns the ordered tool descriptors.
func (r *Registry) List() []protocol.ToolDescriptor {
	return r.tools
}

// Has reports whether a tool with the given name exists. Linear scan: the
// registry is fixed and small.
func (r *Registry) Has(name string) bool {
	for _, t := range r.tools {
		if t.Name == name {
			return true
		}
	}
	return false
}
