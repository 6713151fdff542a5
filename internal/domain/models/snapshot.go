package models

// Quote is the latest market quote for one symbol.
type Quote struct {
	Symbol           string  `json:"symbol"`
	Price            float64 `json:"price"`
	PercentChange24h float64 `json:"percent_change_24h"`
}

// SnapshotRow is one holding valued at its latest quote.
type SnapshotRow struct {
	Symbol           string
	Amount           float64
	Price            float64
	Value            float64
	PercentChange24h float64
	AllocationPct    float64
}

// Snapshot values the current holdings, rows sorted by value descending.
type Snapshot struct {
	Currency string
	Rows     []SnapshotRow
	Total    float64
}
