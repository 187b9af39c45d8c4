package transaction

// Sum is one grouped row of the stats query: the total amount for a
// (currency, type) pair.
type Sum struct {
	Currency Currency
	Type     Type
	Total    int64
}

// Totals holds the per-currency figures shown on the dashboard.
type Totals struct {
	Incomes  int64
	Expenses int64
	Balance  int64
}

// Stats maps every supported currency to its totals. Currencies without
// matching rows are present with zero totals.
type Stats map[Currency]Totals

// Aggregate partitions grouped sums by currency. Sums for unknown currencies
// or types are ignored.
func Aggregate(sums []Sum) Stats {
	stats := make(Stats, len(Currencies))
	for _, c := range Currencies {
		stats[c] = Totals{}
	}

	for _, s := range sums {
		t, ok := stats[s.Currency]
		if !ok {
			continue
		}

		switch s.Type {
		case TypeIncome:
			t.Incomes += s.Total
		case TypeExpense:
			t.Expenses += s.Total
		default:
			continue
		}

		t.Balance = t.Incomes - t.Expenses
		stats[s.Currency] = t
	}

	return stats
}
