package bankcsv

// amountMode determines how amounts are extracted from a row.
type amountMode int

const (
	// amountSingle means one signed column ("-1 500,00" is an expense).
	amountSingle amountMode = iota
	// amountSplit means separate income and expense columns.
	amountSplit
)

// Profile describes the column layout of a supported CSV export. Column
// names are compared case-insensitively after trimming.
type Profile struct {
	Name        string
	DateCol     string
	DescCol     string
	AmountMode  amountMode
	AmountCol   string // amountSingle
	IncomeCol   string // amountSplit
	ExpenseCol  string // amountSplit
	CurrencyCol string // optional
}

// requiredCols returns the column names that must be present for this profile to match.
func (p Profile) requiredCols() []string {
	cols := []string{p.DateCol, p.DescCol}

	switch p.AmountMode {
	case amountSingle:
		cols = append(cols, p.AmountCol)
	case amountSplit:
		cols = append(cols, p.IncomeCol, p.ExpenseCol)
	}

	return cols
}

// profiles is tried in order; more specific layouts come first.
var profiles = []Profile{
	{
		// Bank statement: debit leaves the account, credit arrives.
		Name:       "bank-ru",
		DateCol:    "дата",
		DescCol:    "назначение платежа",
		AmountMode: amountSplit,
		IncomeCol:  "кредит",
		ExpenseCol: "дебет",
	},
	{
		Name:       "journal-ru",
		DateCol:    "дата",
		DescCol:    "описание",
		AmountMode: amountSplit,
		IncomeCol:  "приход",
		ExpenseCol: "расход",
	},
	{
		Name:       "journal",
		DateCol:    "date",
		DescCol:    "description",
		AmountMode: amountSplit,
		IncomeCol:  "income",
		ExpenseCol: "expense",
	},
	{
		Name:        "statement",
		DateCol:     "date",
		DescCol:     "description",
		AmountMode:  amountSingle,
		AmountCol:   "amount",
		CurrencyCol: "currency",
	},
}
