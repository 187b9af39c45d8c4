package bankcsv

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAmount(t *testing.T) {
	tests := []struct {
		in   string
		want int64
	}{
		{in: "1500000", want: 1500000},
		{in: "1 500 000", want: 1500000},
		{in: "1 500 000,00", want: 1500000},
		{in: "1.500.000", want: 1500000},
		{in: "1,500,000", want: 1500000},
		{in: "1.234,56", want: 1235},
		{in: "1,234.56", want: 1235},
		{in: "-588,40", want: -588},
		{in: "12,5", want: 13},
		{in: "1,500", want: 1500},
		{in: "+250", want: 250},
		{in: "99.99 UZS", want: 100},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := parseAmount(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseAmount_Invalid(t *testing.T) {
	for _, in := range []string{"", "abc", "-"} {
		_, err := parseAmount(in)
		assert.Error(t, err, in)
	}
}

func TestDetectDelimiter(t *testing.T) {
	assert.Equal(t, ';', detectDelimiter([]byte("a;b;c\n1;2,5;3\n")))
	assert.Equal(t, ',', detectDelimiter([]byte("a,b,c\n1,2,3\n")))
	assert.Equal(t, '\t', detectDelimiter([]byte("a\tb\tc\n1\t2\t3\n")))
	assert.Equal(t, ';', detectDelimiter([]byte("single column\n")))
}
