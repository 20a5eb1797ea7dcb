package domain

// catalog holds the five flash software tiers. Supplied at startup, read-only.
var catalog = []Product{
	{
		ID:          "1",
		Name:        "ELON FLASH BASIC",
		Version:     "4.1",
		Description: "Simple software for basic USDT transfers. Great for beginners who want to try our technology.",
		Features: []string{
			"Standard Transfer Speed",
			"Basic Security Protection",
			"Up to 1,000 USDT daily limit",
			"Easy to use interface",
		},
		Specs: []ProductSpec{
			{Label: "Reliability", Value: "94.2%"},
			{Label: "Transfer Lag", Value: "Low"},
			{Label: "Security", Value: "Standard"},
			{Label: "Support", Value: "Email"},
		},
		Price:     100,
		MaxAmount: 1000,
		Icon:      "bolt",
		Command:   "run --speed basic",
	},
	{
		ID:          "2",
		Name:        "ELON FLASH PRO",
		Version:     "4.5",
		Description: "Professional software with faster speeds and better security for regular users.",
		Features: []string{
			"Fast Transfer Speed",
			"Enhanced Privacy Layer",
			"Up to 5,000 USDT daily limit",
			"Works on all exchanges",
		},
		Specs: []ProductSpec{
			{Label: "Reliability", Value: "98.8%"},
			{Label: "Transfer Lag", Value: "Very Low"},
			{Label: "Security", Value: "High"},
			{Label: "Support", Value: "Priority"},
		},
		Price:     300,
		OldPrice:  350,
		MaxAmount: 5000,
		Icon:      "tachometer-alt",
		Command:   "run --speed fast",
	},
	{
		ID:          "3",
		Name:        "ELON FLASH ELITE",
		Version:     "4.8",
		Description: "Advanced software for high-volume transfers. Our most popular choice for value.",
		Features: []string{
			"Super Fast Transfers",
			"Advanced Encryption Tech",
			"Up to 20,000 USDT daily limit",
			"Auto-connect to best networks",
		},
		Specs: []ProductSpec{
			{Label: "Reliability", Value: "99.5%"},
			{Label: "Transfer Lag", Value: "Minimal"},
			{Label: "Security", Value: "Ultra"},
			{Label: "Support", Value: "24/7 Live"},
		},
		Price:     600,
		OldPrice:  750,
		MaxAmount: 20000,
		Badge:     "Best Value",
		Icon:      "layer-group",
		Command:   "run --speed elite",
	},
	{
		ID:          "4",
		Name:        "ELON FLASH QUANTUM",
		Version:     "4.9",
		Description: "State-of-the-art technology for instant transfers and maximum security.",
		Features: []string{
			"Instant Transfer Speed",
			"Private Verification System",
			"Unlimited Daily Transfers",
			"Automatic path selection",
		},
		Specs: []ProductSpec{
			{Label: "Reliability", Value: "99.9%"},
			{Label: "Transfer Lag", Value: "None"},
			{Label: "Security", Value: "Maximum"},
			{Label: "Support", Value: "VIP Personal"},
		},
		Price:     850,
		OldPrice:  950,
		MaxAmount: 100000,
		Icon:      "rocket",
		Command:   "run --speed instant",
	},
	{
		ID:          "5",
		Name:        "ELON FLASH OMEGA",
		Version:     "5.0",
		Description: "The ultimate software. Features the latest technology for absolute speed and safety.",
		Features: []string{
			"Reality-Bending Speed",
			"Strongest Security Available",
			"Works with all Blockchains",
			"Lifetime system updates",
		},
		Specs: []ProductSpec{
			{Label: "Reliability", Value: "100.0%"},
			{Label: "Transfer Lag", Value: "Instant"},
			{Label: "Security", Value: "Total"},
			{Label: "Support", Value: "Direct Admin"},
		},
		Price:     1000,
		OldPrice:  1200,
		MaxAmount: 1000000,
		Badge:     "Ultimate",
		Icon:      "infinity",
		Command:   "run --speed omega",
	},
}

// Catalog returns the product reference list. Callers must not mutate the
// returned slice; a copy of the slice header is returned, not of the products.
func Catalog() []Product {
	out := make([]Product, len(catalog))
	copy(out, catalog)
	return out
}

// ProductByID looks up a catalog product. The second return is false when the
// id is unknown.
func ProductByID(id string) (Product, bool) {
	for _, p := range catalog {
		if p.ID == id {
			return p, true
		}
	}
	return Product{}, false
}
