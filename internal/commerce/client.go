package commerce

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	errx "github.com/medusa-chatbot/server/internal/core/error"
	logx "github.com/medusa-chatbot/server/pkg/logger"
)

// Config holds the store backend connection settings.
type Config struct {
	BaseURL  string `envconfig:"MEDUSA_BASE_URL" default:"http://localhost:9000"`
	RegionID string `envconfig:"MEDUSA_REGION_ID"`
	Timeout  int    `split_words:"true" default:"10"`
}

// Client is a thin adapter over the Medusa store REST API. It owns no state
// beyond the connection settings; credentials are passed per call.
type Client struct {
	base     string
	regionID string
	http     *http.Client
}

// New creates a store API client from config.
func New(cfg Config) *Client {
	return &Client{
		base:     cfg.BaseURL,
		regionID: cfg.RegionID,
		http:     &http.Client{Timeout: time.Duration(cfg.Timeout) * time.Second},
	}
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body any, creds Credentials, out any) error {
	u := c.base + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var payload io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request body: %w", err)
		}
		payload = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, payload)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if creds.AuthToken != "" {
		req.Header.Set("Authorization", "Bearer "+creds.AuthToken)
	}
	if creds.PublishableKey != "" {
		req.Header.Set("x-publishable-api-key", creds.PublishableKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return errx.Upstream("commerce", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		logx.Warn().
			Str("method", method).
			Str("path", path).
			Int("status", resp.StatusCode).
			Msg("store API request failed")
		return errx.Upstream("commerce", fmt.Errorf("%s %s: status %d: %s", method, path, resp.StatusCode, snippet))
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return errx.Upstream("commerce", fmt.Errorf("decode response: %w", err))
	}
	return nil
}

// rawCart is the wire shape of a cart as the store API returns it.
type rawCart struct {
	ID            string  `json:"id"`
	Email         string  `json:"email"`
	CurrencyCode  string  `json:"currency_code"`
	Total         float64 `json:"total"`
	Subtotal      float64 `json:"subtotal"`
	TaxTotal      float64 `json:"tax_total"`
	DiscountTotal float64 `json:"discount_total"`
	ShippingTotal float64 `json:"shipping_total"`
	ItemTotal     float64 `json:"item_total"`
	Items         []struct {
		ID           string  `json:"id"`
		ProductID    string  `json:"product_id"`
		VariantID    string  `json:"variant_id"`
		Title        string  `json:"title"`
		ProductTitle string  `json:"product_title"`
		VariantTitle string  `json:"variant_title"`
		VariantSKU   string  `json:"variant_sku"`
		Thumbnail    string  `json:"thumbnail"`
		Quantity     int     `json:"quantity"`
		UnitPrice    float64 `json:"unit_price"`
		Subtotal     float64 `json:"subtotal"`
		Total        float64 `json:"total"`
	} `json:"items"`
}

func (r *rawCart) clean() *Cart {
	cart := &Cart{
		CartID:       r.ID,
		Email:        r.Email,
		CurrencyCode: r.CurrencyCode,
		Totals: CartTotals{
			Total:         r.Total,
			Subtotal:      r.Subtotal,
			TaxTotal:      r.TaxTotal,
			DiscountTotal: r.DiscountTotal,
			ShippingTotal: r.ShippingTotal,
			ItemTotal:     r.ItemTotal,
		},
		Items:      make([]CartItem, 0, len(r.Items)),
		ItemsCount: len(r.Items),
	}
	for _, it := range r.Items {
		cart.Items = append(cart.Items, CartItem{
			ID:           it.ID,
			ProductID:    it.ProductID,
			VariantID:    it.VariantID,
			Title:        it.Title,
			ProductTitle: it.ProductTitle,
			VariantTitle: it.VariantTitle,
			VariantSKU:   it.VariantSKU,
			Thumbnail:    it.Thumbnail,
			Quantity:     it.Quantity,
			UnitPrice:    it.UnitPrice,
			Subtotal:     it.Subtotal,
			Total:        it.Total,
		})
	}
	return cart
}

// GetCart retrieves a cart with all line items.
func (c *Client) GetCart(ctx context.Context, cartID string, creds Credentials) (*Cart, error) {
	q := url.Values{"fields": {"+items.*"}}
	var resp struct {
		Cart rawCart `json:"cart"`
	}
	if err := c.do(ctx, http.MethodGet, "/store/carts/"+cartID, q, nil, creds, &resp); err != nil {
		return nil, err
	}
	return resp.Cart.clean(), nil
}

// AddToCart adds a product variant to the cart and returns the updated cart.
func (c *Client) AddToCart(ctx context.Context, cartID, variantID string, quantity int, creds Credentials) (*Cart, error) {
	body := map[string]any{
		"variant_id": variantID,
		"quantity":   quantity,
	}
	var resp struct {
		Cart rawCart `json:"cart"`
	}
	if err := c.do(ctx, http.MethodPost, "/store/carts/"+cartID+"/line-items", nil, body, creds, &resp); err != nil {
		return nil, err
	}
	return resp.Cart.clean(), nil
}

// rawOrder is the wire shape of an order.
type rawOrder struct {
	ID                string         `json:"id"`
	DisplayID         int            `json:"display_id"`
	Status            string         `json:"status"`
	PaymentStatus     string         `json:"payment_status"`
	FulfillmentStatus string         `json:"fulfillment_status"`
	CurrencyCode      string         `json:"currency_code"`
	Total             float64        `json:"total"`
	ShippingAddress   map[string]any `json:"shipping_address"`
	BillingAddress    map[string]any `json:"billing_address"`
	CreatedAt         string         `json:"created_at"`
	Items             []struct {
		ProductID          string  `json:"product_id"`
		VariantID          string  `json:"variant_id"`
		Title              string  `json:"title"`
		ProductTitle       string  `json:"product_title"`
		ProductDescription string  `json:"product_description"`
		VariantTitle       string  `json:"variant_title"`
		Thumbnail          string  `json:"thumbnail"`
		UnitPrice          float64 `json:"unit_price"`
		Quantity           int     `json:"quantity"`
		Total              float64 `json:"total"`
	} `json:"items"`
}

func (r *rawOrder) clean() Order {
	order := Order{
		OrderID:           r.ID,
		DisplayID:         r.DisplayID,
		Status:            r.Status,
		PaymentStatus:     r.PaymentStatus,
		FulfillmentStatus: r.FulfillmentStatus,
		CurrencyCode:      r.CurrencyCode,
		OverallPrice:      r.Total,
		ShippingAddress:   r.ShippingAddress,
		BillingAddress:    r.BillingAddress,
		PlacedAt:          r.CreatedAt,
		Products:          make([]OrderItem, 0, len(r.Items)),
	}
	for _, it := range r.Items {
		title := it.ProductTitle
		if title == "" {
			title = it.Title
		}
		order.Products = append(order.Products, OrderItem{
			ProductID:   it.ProductID,
			VariantID:   it.VariantID,
			Title:       title,
			Description: it.ProductDescription,
			Variant:     it.VariantTitle,
			Thumbnail:   it.Thumbnail,
			UnitPrice:   it.UnitPrice,
			Quantity:    it.Quantity,
			LineTotal:   it.Total,
		})
	}
	return order
}

// ListOrders retrieves the authenticated customer's orders, newest first.
func (c *Client) ListOrders(ctx context.Context, creds Credentials, limit, offset int) ([]Order, error) {
	if limit <= 0 {
		limit = 10
	}
	q := url.Values{
		"limit":  {strconv.Itoa(limit)},
		"offset": {strconv.Itoa(offset)},
	}
	var resp struct {
		Orders []rawOrder `json:"orders"`
	}
	if err := c.do(ctx, http.MethodGet, "/store/orders", q, nil, creds, &resp); err != nil {
		return nil, err
	}
	orders := make([]Order, 0, len(resp.Orders))
	for i := range resp.Orders {
		orders = append(orders, resp.Orders[i].clean())
	}
	return orders, nil
}

// GetOrder retrieves a single order by its customer-facing display id. The
// store API has no by-display-id lookup, so the order list is scanned first.
func (c *Client) GetOrder(ctx context.Context, creds Credentials, displayID int) (*Order, error) {
	orders, err := c.ListOrders(ctx, creds, 100, 0)
	if err != nil {
		return nil, err
	}
	var orderID string
	for _, o := range orders {
		if o.DisplayID == displayID {
			orderID = o.OrderID
			break
		}
	}
	if orderID == "" {
		return nil, errx.Upstream("commerce", fmt.Errorf("order with display id %d not found", displayID))
	}

	var resp struct {
		Order rawOrder `json:"order"`
	}
	if err := c.do(ctx, http.MethodGet, "/store/orders/"+orderID, nil, nil, creds, &resp); err != nil {
		return nil, err
	}
	order := resp.Order.clean()
	return &order, nil
}

// GetCustomer retrieves the authenticated customer's profile.
func (c *Client) GetCustomer(ctx context.Context, creds Credentials) (*Customer, error) {
	var resp struct {
		Customer Customer `json:"customer"`
	}
	if err := c.do(ctx, http.MethodGet, "/store/customers/me", nil, nil, creds, &resp); err != nil {
		return nil, err
	}
	return &resp.Customer, nil
}

// rawProduct is the wire shape of a product with calculated variant prices.
type rawProduct struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Handle      string `json:"handle"`
	Thumbnail   string `json:"thumbnail"`
	Options     []struct {
		ID     string `json:"id"`
		Title  string `json:"title"`
		Values []struct {
			Value string `json:"value"`
		} `json:"values"`
	} `json:"options"`
	Variants []struct {
		ID      string `json:"id"`
		Title   string `json:"title"`
		SKU     string `json:"sku"`
		Options []struct {
			Value  string `json:"value"`
			Option struct {
				Title string `json:"title"`
			} `json:"option"`
		} `json:"options"`
		CalculatedPrice *struct {
			CalculatedAmount        *float64 `json:"calculated_amount"`
			CalculatedAmountWithTax *float64 `json:"calculated_amount_with_tax"`
			CurrencyCode            string   `json:"currency_code"`
			OriginalAmount          *float64 `json:"original_amount"`
		} `json:"calculated_price"`
	} `json:"variants"`
	Images []struct {
		ID   string `json:"id"`
		URL  string `json:"url"`
		Rank int    `json:"rank"`
	} `json:"images"`
}

// GetProduct retrieves a product with all variants and their calculated
// prices. Calculated prices require a region; the configured default region
// is used when the caller does not supply one.
func (c *Client) GetProduct(ctx context.Context, productID string, creds Credentials) (*Product, error) {
	q := url.Values{"fields": {"+variants.calculated_price"}}
	if c.regionID != "" {
		q.Set("region_id", c.regionID)
	}
	var resp struct {
		Product rawProduct `json:"product"`
	}
	// The product endpoint authenticates with the publishable key alone.
	if err := c.do(ctx, http.MethodGet, "/store/products/"+productID, q, nil, Credentials{PublishableKey: creds.PublishableKey}, &resp); err != nil {
		return nil, err
	}

	raw := resp.Product
	product := &Product{
		ID:          raw.ID,
		Title:       raw.Title,
		Description: raw.Description,
		Handle:      raw.Handle,
		Thumbnail:   raw.Thumbnail,
		Options:     make([]ProductOption, 0, len(raw.Options)),
		Variants:    make([]Variant, 0, len(raw.Variants)),
		Images:      make([]ProductImage, 0, len(raw.Images)),
	}
	for _, opt := range raw.Options {
		values := make([]string, 0, len(opt.Values))
		for _, v := range opt.Values {
			values = append(values, v.Value)
		}
		product.Options = append(product.Options, ProductOption{ID: opt.ID, Title: opt.Title, Values: values})
	}
	for _, v := range raw.Variants {
		variant := Variant{
			ID:      v.ID,
			Title:   v.Title,
			SKU:     v.SKU,
			Options: make(map[string]string, len(v.Options)),
		}
		for _, opt := range v.Options {
			if opt.Option.Title != "" && opt.Value != "" {
				variant.Options[opt.Option.Title] = opt.Value
			}
		}
		if v.CalculatedPrice != nil {
			variant.Price = &VariantPrice{
				Amount:         v.CalculatedPrice.CalculatedAmount,
				AmountWithTax:  v.CalculatedPrice.CalculatedAmountWithTax,
				CurrencyCode:   v.CalculatedPrice.CurrencyCode,
				OriginalAmount: v.CalculatedPrice.OriginalAmount,
			}
		}
		product.Variants = append(product.Variants, variant)
	}
	for _, img := range raw.Images {
		product.Images = append(product.Images, ProductImage{ID: img.ID, URL: img.URL, Rank: img.Rank})
	}
	return product, nil
}
