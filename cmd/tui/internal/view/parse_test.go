package view

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseWhole(t *testing.T) {
	tests := []struct {
		in      string
		want    int64
		wantErr string
	}{
		{in: "1500000", want: 1500000},
		{in: " 1 500 000 ", want: 1500000},
		{in: "1.500.000", want: 1500000},
		{in: "1 500", want: 1500},
		{in: "0", want: 0},
		{in: "", wantErr: "amount is required"},
		{in: "-5", wantErr: "non-negative whole number"},
		{in: "12a", wantErr: "non-negative whole number"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseWhole(tt.in)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)

				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseMoney(t *testing.T) {
	got, err := ParseMoney("12,50")
	require.NoError(t, err)
	assert.Equal(t, "12.5", got.String())

	_, err = ParseMoney("1.005")
	require.Error(t, err)

	_, err = ParseMoney("-1")
	require.Error(t, err)

	_, err = ParseMoney(" ")
	assert.EqualError(t, err, "amount is required")
}

func TestParseKg(t *testing.T) {
	got, err := ParseKg("1,25")
	require.NoError(t, err)
	assert.Equal(t, "1.25", got.String())

	got, err = ParseKg("")
	require.NoError(t, err)
	assert.True(t, got.IsZero())

	_, err = ParseKg("-0.5")
	assert.Error(t, err)
}

func TestStockFormValues_Quantities(t *testing.T) {
	q, kg := stockFormValues{Quantity: "", Kg: "2.5"}.quantities()
	assert.Equal(t, int64(0), q)
	assert.Equal(t, "2.5", kg.String())

	q, kg = stockFormValues{Quantity: "7"}.quantities()
	assert.Equal(t, int64(7), q)
	assert.True(t, kg.IsZero())
}
