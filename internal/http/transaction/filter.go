package transaction

import (
	"net/http"

	"github.com/MrJamesThe3rd/backoffice/internal/http/render"
	"github.com/MrJamesThe3rd/backoffice/internal/transaction"
)

// ParseFilter reads type, method, currency, date_from and date_to from the
// query string.
func ParseFilter(r *http.Request) (transaction.ListFilter, error) {
	var filter transaction.ListFilter

	q := r.URL.Query()

	if s := q.Get("type"); s != "" {
		t := transaction.Type(s)
		if !t.Valid() {
			return filter, transaction.ErrInvalidType
		}

		filter.Type = &t
	}

	if s := q.Get("currency"); s != "" {
		c, err := transaction.ParseCurrency(s)
		if err != nil {
			return filter, err
		}

		filter.Currency = &c
	}

	var err error

	if filter.MethodID, err = render.QueryUUID(r, "method"); err != nil {
		return filter, err
	}

	if filter.DateFrom, err = render.QueryDate(r, "date_from"); err != nil {
		return filter, err
	}

	if filter.DateTo, err = render.QueryDate(r, "date_to"); err != nil {
		return filter, err
	}

	return filter, nil
}
