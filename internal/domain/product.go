package domain

// ProductSpec is a single display specification pair for a product.
type ProductSpec struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// Product represents a catalog entry. Catalog data is reference data and is
// never mutated at runtime.
type Product struct {
	ID          string        `json:"id"`
	Name        string        `json:"name"`
	Version     string        `json:"version"`
	Description string        `json:"description"`
	Features    []string      `json:"features"`
	Price       float64       `json:"price"`
	OldPrice    float64       `json:"old_price,omitempty"`
	Badge       string        `json:"badge,omitempty"`
	Icon        string        `json:"icon"`
	Command     string        `json:"command"`
	Specs       []ProductSpec `json:"specs,omitempty"`
	// MaxAmount is the maximum transferable amount for this tier.
	// Zero means no configured limit.
	MaxAmount float64 `json:"max_amount,omitempty"`
}

// CartItem is a product plus a quantity. Unique per product ID within a cart.
type CartItem struct {
	Product  Product `json:"product"`
	Quantity int     `json:"quantity"`
}

// Subtotal returns price times quantity for this line.
func (c CartItem) Subtotal() float64 {
	return c.Product.Price * float64(c.Quantity)
}

// PaymentMethod identifies the bridge network selected at checkout.
type PaymentMethod string

const (
	PaymentUSDT    PaymentMethod = "USDT"
	PaymentBTC     PaymentMethod = "BTC"
	PaymentETH     PaymentMethod = "ETH"
	PaymentQuantum PaymentMethod = "QUANTUM"
)

// PaymentMethods lists the selectable bridge networks in display order.
func PaymentMethods() []PaymentMethod {
	return []PaymentMethod{PaymentUSDT, PaymentBTC, PaymentETH, PaymentQuantum}
}

// Valid reports whether m is one of the known payment methods.
func (m PaymentMethod) Valid() bool {
	switch m {
	case PaymentUSDT, PaymentBTC, PaymentETH, PaymentQuantum:
		return true
	}
	return false
}
