package coinmarketcap

// KnownIDs maps common symbols to CoinMarketCap ids.
var KnownIDs = map[string]int{
	"BTC": 1,
	"ETH": 1027,
	"SOL": 5426,
	"XRP": 52,
	"XLM": 512,
	"ADA": 2010,
}

// ResolveIDs merges overrides over KnownIDs for the given symbols.
func ResolveIDs(symbols []string, overrides map[string]int) map[string]int {
	out := make(map[string]int, len(symbols))
	for _, s := range symbols {
		if id, ok := overrides[s]; ok && id > 0 {
			out[s] = id
		} else if id, ok := KnownIDs[s]; ok {
			out[s] = id
		}
	}
	return out
}
