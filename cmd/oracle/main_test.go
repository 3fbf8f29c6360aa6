// cmd/oracle/main_test.go
package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFeed(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "prices.json")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o600))
	return path
}

func TestReadFeedWrappedObject(t *testing.T) {
	path := writeFeed(t, `{"prices": [
		{"asset": "soybean", "priceInCents": 102550},
		{"asset": "corn", "priceInCents": 48025}
	]}`)

	quotes, err := readFeed(path)
	require.NoError(t, err)
	require.Len(t, quotes, 2)
	assert.Equal(t, "soybean", quotes[0].Commodity)
	assert.Equal(t, int64(102550), quotes[0].PriceCents)
	assert.Equal(t, "corn", quotes[1].Commodity)
}

func TestReadFeedBareArray(t *testing.T) {
	path := writeFeed(t, `[{"asset": "wheat", "priceInCents": 61200}]`)

	quotes, err := readFeed(path)
	require.NoError(t, err)
	require.Len(t, quotes, 1)
	assert.Equal(t, "wheat", quotes[0].Commodity)
	assert.Equal(t, int64(61200), quotes[0].PriceCents)
}

func TestReadFeedInvalidJSON(t *testing.T) {
	path := writeFeed(t, `{"prices": `)

	_, err := readFeed(path)
	assert.Error(t, err)
}
