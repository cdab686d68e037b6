package venue

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yanun0323/decimal"

	"main/internal/schema"
)

func wireDecimal(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	var holder struct {
		Value decimal.Decimal `json:"value"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"value":"`+s+`"}`), &holder))
	return holder.Value
}

func TestWireToCents(t *testing.T) {
	cases := []struct {
		in   string
		want schema.Price
	}{
		{"101.00", 10100},
		{"101", 10100},
		{"101.5", 10150},
		{"0.01", 1},
		{"101.009", 10100}, // sub-cent precision truncates
		{"-3.25", -325},
	}
	for _, c := range cases {
		got, err := wireToCents(wireDecimal(t, c.in))
		require.NoErrorf(t, err, "parse %q", c.in)
		assert.Equalf(t, c.want, got, "parse %q", c.in)
	}
}

func TestCentsToWire(t *testing.T) {
	assert.Equal(t, "101.00", centsToWire(10100))
	assert.Equal(t, "101.05", centsToWire(10105))
	assert.Equal(t, "0.09", centsToWire(9))
	assert.Equal(t, "-3.25", centsToWire(-325))
}

func TestBookMessageToUpdate(t *testing.T) {
	var msg bookMessage
	require.NoError(t, json.Unmarshal([]byte(`{
		"type": "order_book",
		"symbol": "ETF",
		"sequence": 7,
		"askPrices": ["101.00", "101.01"],
		"askVolumes": [25, 10],
		"bidPrices": ["100.00"],
		"bidVolumes": [40]
	}`), &msg))

	update, err := msg.toUpdate(schema.InstrumentPrimary)
	require.NoError(t, err)
	assert.Equal(t, uint64(7), update.Seq)
	assert.Equal(t, schema.Price(10100), update.AskPrices[0])
	assert.Equal(t, schema.Price(10101), update.AskPrices[1])
	assert.Equal(t, schema.Volume(25), update.AskVolumes[0])
	assert.Equal(t, schema.Price(10000), update.BidPrices[0])
	// Missing depth levels stay zero.
	assert.Equal(t, schema.Price(0), update.BidPrices[1])
	assert.Equal(t, schema.Volume(0), update.BidVolumes[4])
}
