package coingecko

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolveIDs(t *testing.T) {
	got := ResolveIDs([]string{"BTC", "PEPE", "XLM"}, map[string]string{"XLM": "stellar-lumens", "PEPE": ""})
	assert.Equal(t, map[string]string{"BTC": "bitcoin", "XLM": "stellar-lumens"}, got)
}
