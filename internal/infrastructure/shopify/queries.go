package shopify

// ProductSearchQuery fetches products matching a free-text query, with
// variants, pricing, and the first image.
const ProductSearchQuery = `
query searchProducts($query: String!, $first: Int!) {
  products(first: $first, query: $query) {
    edges {
      node {
        id
        title
        description
        handle
        featuredImage {
          url
        }
        priceRangeV2 {
          minVariantPrice {
            amount
            currencyCode
          }
          maxVariantPrice {
            amount
            currencyCode
          }
        }
        variants(first: 50) {
          edges {
            node {
              id
              title
              sku
              price
              availableForSale
            }
          }
        }
      }
    }
  }
}
`

// ProductByHandleQuery resolves a single product by its handle.
const ProductByHandleQuery = `
query productByHandle($handle: String!) {
  productByHandle(handle: $handle) {
    id
    title
    description
    handle
    featuredImage {
      url
    }
    priceRangeV2 {
      minVariantPrice {
        amount
        currencyCode
      }
      maxVariantPrice {
        amount
        currencyCode
      }
    }
    variants(first: 50) {
      edges {
        node {
          id
          title
          sku
          price
          availableForSale
        }
      }
    }
  }
}
`

// DraftOrderCreateMutation creates a checkout for the given line items. The
// attribution pair rides along as custom attributes, which Shopify copies to
// the order's note attributes when the checkout completes.
const DraftOrderCreateMutation = `
mutation createCheckout($input: DraftOrderInput!) {
  draftOrderCreate(input: $input) {
    draftOrder {
      id
      invoiceUrl
      totalPrice
      currencyCode
    }
    userErrors {
      field
      message
    }
  }
}
`
