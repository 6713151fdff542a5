package coingecko

// KnownIDs maps common symbols to CoinGecko coin ids. Config entries take precedence.
var KnownIDs = map[string]string{
	"BTC": "bitcoin",
	"ETH": "ethereum",
	"SOL": "solana",
	"XRP": "ripple",
	"XLM": "stellar",
	"ADA": "cardano",
}

// ResolveIDs returns ids for symbols from overrides, then KnownIDs.
// Symbols found in neither are left out.
func ResolveIDs(symbols []string, overrides map[string]string) map[string]string {
	out := make(map[string]string, len(symbols))
	for _, s := range symbols {
		if id, ok := overrides[s]; ok && id != "" {
			out[s] = id
		} else if id, ok := KnownIDs[s]; ok {
			out[s] = id
		}
	}
	return out
}
