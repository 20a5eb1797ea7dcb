package domain

// Transaction statuses produced by the checkout flow.
const (
	StatusCompleted = "COMPLETED"
	StatusFailed    = "FAILED"
)

// VaultEntry is a transaction result held in the user's license vault.
// Entries are ordered most-recent-first and removed when their key is burned.
type VaultEntry struct {
	TransactionID string `json:"transaction_id"`
	LicenseKey    string `json:"license_key"`
	Status        string `json:"status"`
	Timestamp     string `json:"timestamp"`
	Verification  string `json:"verification"`
}

// TransferType is the portal's transfer-type choice.
type TransferType string

const (
	TransferStandard TransferType = "STANDARD"
	TransferStealth  TransferType = "STEALTH"
	TransferBulk     TransferType = "BULK"
)

// TransferTypes lists selectable transfer types in display order.
func TransferTypes() []TransferType {
	return []TransferType{TransferStandard, TransferStealth, TransferBulk}
}

// Valid reports whether t is a known transfer type.
func (t TransferType) Valid() bool {
	switch t {
	case TransferStandard, TransferStealth, TransferBulk:
		return true
	}
	return false
}

// Asset is a flashable asset choice in the portal.
type Asset struct {
	Symbol string `json:"symbol"`
	Name   string `json:"name"`
	// Networks lists chains requiring disambiguation. Empty means the asset
	// needs no network selection and the portal skips that stage.
	Networks []string `json:"networks,omitempty"`
}

// assets is reference data for the portal's COIN_SELECT stage.
var assets = []Asset{
	{Symbol: "USDT", Name: "Tether USD", Networks: []string{"TRC20", "ERC20", "BEP20"}},
	{Symbol: "BTC", Name: "Bitcoin"},
	{Symbol: "ETH", Name: "Ethereum"},
}

// Assets returns the selectable assets in display order.
func Assets() []Asset {
	out := make([]Asset, len(assets))
	copy(out, assets)
	return out
}

// AssetBySymbol looks up an asset by its symbol.
func AssetBySymbol(symbol string) (Asset, bool) {
	for _, a := range assets {
		if a.Symbol == symbol {
			return a, true
		}
	}
	return Asset{}, false
}

// RequiresNetwork reports whether the asset needs chain disambiguation.
func (a Asset) RequiresNetwork() bool {
	return len(a.Networks) > 0
}

// HasNetwork reports whether name is one of the asset's networks.
func (a Asset) HasNetwork(name string) bool {
	for _, n := range a.Networks {
		if n == name {
			return true
		}
	}
	return false
}
