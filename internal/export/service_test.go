package export

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"go.uber.org/mock/gomock"

	"github.com/MrJamesThe3rd/backoffice/internal/transaction"
)

func sampleTransactions() []*transaction.Transaction {
	return []*transaction.Transaction{
		{
			ID:          uuid.New(),
			Type:        transaction.TypeIncome,
			Currency:    transaction.CurrencyUZS,
			Amount:      1500000,
			Description: "Продажа муки",
			Date:        time.Date(2026, 1, 30, 0, 0, 0, 0, time.UTC),
			MethodName:  "Cash",
		},
		{
			ID:          uuid.New(),
			Type:        transaction.TypeExpense,
			Currency:    transaction.CurrencyUSD,
			Amount:      250,
			Description: "Fuel",
			Date:        time.Date(2026, 1, 29, 0, 0, 0, 0, time.UTC),
		},
	}
}

func TestService_WriteXLSX(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := transaction.NewMockRepository(ctrl)
	repo.EXPECT().ListTransactions(gomock.Any(), gomock.Any()).Return(sampleTransactions(), nil)
	repo.EXPECT().SumByCurrency(gomock.Any(), gomock.Any()).Return([]transaction.Sum{
		{Currency: transaction.CurrencyUZS, Type: transaction.TypeIncome, Total: 1500000},
		{Currency: transaction.CurrencyUSD, Type: transaction.TypeExpense, Total: 250},
	}, nil)

	svc := NewService(transaction.NewService(repo))

	var buf bytes.Buffer
	require.NoError(t, svc.WriteXLSX(context.Background(), &buf, transaction.ListFilter{}))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{transactionsSheet, summarySheet}, f.GetSheetList())

	rows, err := f.GetRows(transactionsSheet)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, transactionHeaders, rows[0])
	assert.Equal(t, []string{"30.01.2026", "income", "UZS", "1500000", "Cash", "Продажа муки"}, rows[1])
	assert.Equal(t, []string{"29.01.2026", "expense", "USD", "250", "", "Fuel"}, rows[2])

	summary, err := f.GetRows(summarySheet)
	require.NoError(t, err)
	require.Len(t, summary, 4)
	assert.Equal(t, []string{"UZS", "1500000", "0", "1500000"}, summary[1])
	assert.Equal(t, []string{"USD", "0", "250", "-250"}, summary[2])
	assert.Equal(t, []string{"AFN", "0", "0", "0"}, summary[3])
}

func TestService_WriteXLSX_Empty(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := transaction.NewMockRepository(ctrl)
	repo.EXPECT().ListTransactions(gomock.Any(), gomock.Any()).Return(nil, nil)
	repo.EXPECT().SumByCurrency(gomock.Any(), gomock.Any()).Return(nil, nil)

	var buf bytes.Buffer
	require.NoError(t, NewService(transaction.NewService(repo)).WriteXLSX(context.Background(), &buf, transaction.ListFilter{}))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(transactionsSheet)
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}

func TestSummary(t *testing.T) {
	stats := transaction.Aggregate([]transaction.Sum{
		{Currency: transaction.CurrencyUZS, Type: transaction.TypeIncome, Total: 1500000},
		{Currency: transaction.CurrencyUZS, Type: transaction.TypeExpense, Total: 200000},
	})

	want := "UZS: incomes 1.500.000, expenses 200.000, balance 1.300.000\n" +
		"USD: incomes 0, expenses 0, balance 0\n" +
		"AFN: incomes 0, expenses 0, balance 0\n"

	assert.Equal(t, want, Summary(stats))
}

func TestLines(t *testing.T) {
	want := "* 2026-01-30 | Продажа муки | +1.500.000 UZS | Cash\n" +
		"* 2026-01-29 | Fuel | -250 USD | -\n"

	assert.Equal(t, want, Lines(sampleTransactions()))
}

func TestService_Text(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := transaction.NewMockRepository(ctrl)
	repo.EXPECT().ListTransactions(gomock.Any(), gomock.Any()).Return(sampleTransactions()[:1], nil)
	repo.EXPECT().SumByCurrency(gomock.Any(), gomock.Any()).Return([]transaction.Sum{
		{Currency: transaction.CurrencyUZS, Type: transaction.TypeIncome, Total: 1500000},
	}, nil)

	got, err := NewService(transaction.NewService(repo)).Text(context.Background(), transaction.ListFilter{})
	require.NoError(t, err)

	want := "UZS: incomes 1.500.000, expenses 0, balance 1.500.000\n" +
		"USD: incomes 0, expenses 0, balance 0\n" +
		"AFN: incomes 0, expenses 0, balance 0\n" +
		"\n" +
		"* 2026-01-30 | Продажа муки | +1.500.000 UZS | Cash\n"

	assert.Equal(t, want, got)
}
