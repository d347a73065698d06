package commerce

// Credentials carries the per-customer auth material threaded through every
// store API call. The auth token identifies the customer; the publishable key
// identifies the sales channel.
type Credentials struct {
	AuthToken      string
	PublishableKey string
}

// CartTotals mirrors the cart totals block of the store API.
type CartTotals struct {
	Total         float64 `json:"total"`
	Subtotal      float64 `json:"subtotal"`
	TaxTotal      float64 `json:"tax_total"`
	DiscountTotal float64 `json:"discount_total,omitempty"`
	ShippingTotal float64 `json:"shipping_total,omitempty"`
	ItemTotal     float64 `json:"item_total"`
}

// CartItem is one line item of a cart.
type CartItem struct {
	ID           string  `json:"id"`
	ProductID    string  `json:"product_id"`
	VariantID    string  `json:"variant_id"`
	Title        string  `json:"title"`
	ProductTitle string  `json:"product_title"`
	VariantTitle string  `json:"variant_title,omitempty"`
	VariantSKU   string  `json:"variant_sku,omitempty"`
	Thumbnail    string  `json:"thumbnail,omitempty"`
	Quantity     int     `json:"quantity"`
	UnitPrice    float64 `json:"unit_price"`
	Subtotal     float64 `json:"subtotal,omitempty"`
	Total        float64 `json:"total,omitempty"`
}

// Cart is the cleaned cart shape used by tools and direct endpoints.
type Cart struct {
	CartID       string     `json:"cart_id"`
	Email        string     `json:"email,omitempty"`
	CurrencyCode string     `json:"currency_code,omitempty"`
	Totals       CartTotals `json:"totals"`
	Items        []CartItem `json:"items"`
	ItemsCount   int        `json:"items_count"`
}

// OrderItem is one product line of an order.
type OrderItem struct {
	ProductID   string  `json:"product_id"`
	VariantID   string  `json:"variant_id"`
	Title       string  `json:"title"`
	Description string  `json:"description,omitempty"`
	Variant     string  `json:"variant,omitempty"`
	Thumbnail   string  `json:"thumbnail,omitempty"`
	UnitPrice   float64 `json:"unit_price"`
	Quantity    int     `json:"quantity"`
	LineTotal   float64 `json:"line_total"`
}

// Order is the cleaned order shape. DisplayID is the customer-facing order
// number; OrderID is the internal identifier.
type Order struct {
	OrderID           string         `json:"order_id"`
	DisplayID         int            `json:"display_id"`
	Status            string         `json:"status"`
	PaymentStatus     string         `json:"payment_status"`
	FulfillmentStatus string         `json:"fulfillment_status"`
	CurrencyCode      string         `json:"currency_code"`
	OverallPrice      float64        `json:"overall_price"`
	Products          []OrderItem    `json:"products"`
	ShippingAddress   map[string]any `json:"shipping_address,omitempty"`
	BillingAddress    map[string]any `json:"billing_address,omitempty"`
	PlacedAt          string         `json:"placed_at,omitempty"`
}

// Customer is the authenticated customer's profile.
type Customer struct {
	ID          string           `json:"id"`
	Email       string           `json:"email,omitempty"`
	FirstName   string           `json:"first_name,omitempty"`
	LastName    string           `json:"last_name,omitempty"`
	Phone       string           `json:"phone,omitempty"`
	CompanyName string           `json:"company_name,omitempty"`
	HasAccount  bool             `json:"has_account"`
	Addresses   []map[string]any `json:"addresses"`
	CreatedAt   string           `json:"created_at,omitempty"`
	UpdatedAt   string           `json:"updated_at,omitempty"`
}

// VariantPrice carries the calculated price of a variant in region context.
type VariantPrice struct {
	Amount         *float64 `json:"amount"`
	AmountWithTax  *float64 `json:"amount_with_tax,omitempty"`
	CurrencyCode   string   `json:"currency_code,omitempty"`
	OriginalAmount *float64 `json:"original_amount,omitempty"`
}

// Variant is one purchasable variant of a product, with its option values
// flattened to title -> value (e.g. "Size" -> "M").
type Variant struct {
	ID      string            `json:"id"`
	Title   string            `json:"title"`
	SKU     string            `json:"sku,omitempty"`
	Options map[string]string `json:"options,omitempty"`
	Price   *VariantPrice     `json:"price,omitempty"`
}

// ProductOption describes a configurable axis (Size, Color) and its values.
type ProductOption struct {
	ID     string   `json:"id"`
	Title  string   `json:"title"`
	Values []string `json:"values"`
}

// ProductImage is one product image with its display rank.
type ProductImage struct {
	ID   string `json:"id"`
	URL  string `json:"url"`
	Rank int    `json:"rank"`
}

// Product is the cleaned product shape including all variants.
type Product struct {
	ID          string          `json:"id"`
	Title       string          `json:"title"`
	Description string          `json:"description,omitempty"`
	Handle      string          `json:"handle,omitempty"`
	Thumbnail   string          `json:"thumbnail,omitempty"`
	Options     []ProductOption `json:"options"`
	Variants    []Variant       `json:"variants"`
	Images      []ProductImage  `json:"images"`
}
