package importer

import (
	"io"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/backoffice/internal/transaction"
)

type Format string

const (
	FormatCSV Format = "csv"
)

// Defaults fill in what a file does not carry itself.
type Defaults struct {
	Currency transaction.Currency
	MethodID uuid.UUID
}

// Importer parses a file into rows. Rows leave Currency empty when the file
// does not name one and never set MethodID.
type Importer interface {
	Parse(r io.Reader) ([]transaction.CreateParams, error)
}
