package models

// RawLot mirrors one entry of the auction export file. Every field is
// free-form text and any of them may be missing or malformed.
type RawLot struct {
	Title          string `json:"Title"`
	SoldPrice      string `json:"Sold Price"`
	EstimatedPrice string `json:"Estimated Price"`
	ItemURL        string `json:"Item URL"`
	ItemImage      string `json:"Item Image"`
}

// Lot is the normalized, immutable record derived from one RawLot.
// Nil price pointers mean the source value was absent or unparseable.
type Lot struct {
	ID           string   `json:"id"`
	Title        string   `json:"title"`
	SoldPrice    *float64 `json:"sold_price"`
	EstimateLow  *float64 `json:"estimate_low"`
	EstimateHigh *float64 `json:"estimate_high"`
	Category     string   `json:"category"`
	URL          string   `json:"url"`
	ImageURL     string   `json:"image_url"`
}

// EstimateMid returns the midpoint of the estimate range, or nil when
// the lot carries no parsed estimate.
func (l Lot) EstimateMid() *float64 {
	if l.EstimateLow == nil || l.EstimateHigh == nil {
		return nil
	}
	mid := (*l.EstimateLow + *l.EstimateHigh) / 2
	return &mid
}
