package importer_test

import (
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/backoffice/internal/apperror"
	"github.com/MrJamesThe3rd/backoffice/internal/importer"
	"github.com/MrJamesThe3rd/backoffice/internal/transaction"
)

func TestService_Import(t *testing.T) {
	csv := `date;description;amount;currency
2026-04-10;Supplier invoice;-450;USD
2026-04-11;Cash sale;12 000;
`
	methodID := uuid.New()

	tests := []struct {
		name         string
		format       importer.Format
		defaults     importer.Defaults
		wantCurrency transaction.Currency
	}{
		{
			name:         "Explicit default currency",
			format:       importer.FormatCSV,
			defaults:     importer.Defaults{Currency: transaction.CurrencyAFN, MethodID: methodID},
			wantCurrency: transaction.CurrencyAFN,
		},
		{
			name:         "Empty format and currency",
			defaults:     importer.Defaults{MethodID: methodID},
			wantCurrency: transaction.CurrencyUZS,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			params, err := importer.NewService().Import(tt.format, strings.NewReader(csv), tt.defaults)
			require.NoError(t, err)
			require.Len(t, params, 2)

			assert.Equal(t, transaction.CurrencyUSD, params[0].Currency)
			assert.Equal(t, tt.wantCurrency, params[1].Currency)

			for _, p := range params {
				assert.Equal(t, methodID, p.MethodID)
			}
		})
	}
}

func TestService_ImportErrors(t *testing.T) {
	svc := importer.NewService()

	_, err := svc.Import("xlsx", strings.NewReader(""), importer.Defaults{})
	assert.Equal(t, apperror.KindValidation, apperror.KindOf(err))

	_, err = svc.Import(importer.FormatCSV, strings.NewReader("just;some;text\n"), importer.Defaults{})
	require.Error(t, err)
	assert.Equal(t, apperror.KindValidation, apperror.KindOf(err))
	assert.Contains(t, err.Error(), "invalid import file")
}
