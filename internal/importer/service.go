package importer

import (
	"io"

	"github.com/MrJamesThe3rd/backoffice/internal/apperror"
	"github.com/MrJamesThe3rd/backoffice/internal/importer/bankcsv"
	"github.com/MrJamesThe3rd/backoffice/internal/transaction"
)

type Service struct {
	csvImporter Importer
}

func NewService() *Service {
	return &Service{
		csvImporter: bankcsv.NewParser(),
	}
}

// Import parses r with the importer registered for format and applies
// defaults to every row. An empty format means CSV.
func (s *Service) Import(format Format, r io.Reader, defaults Defaults) ([]transaction.CreateParams, error) {
	var importer Importer

	switch format {
	case FormatCSV, "":
		importer = s.csvImporter
	default:
		return nil, apperror.Validation("unknown import format: %s", format)
	}

	params, err := importer.Parse(r)
	if err != nil {
		return nil, apperror.Validation("invalid import file: %v", err)
	}

	if defaults.Currency == "" {
		defaults.Currency = transaction.DefaultCurrency
	}

	for i := range params {
		if params[i].Currency == "" {
			params[i].Currency = defaults.Currency
		}

		params[i].MethodID = defaults.MethodID
	}

	return params, nil
}
