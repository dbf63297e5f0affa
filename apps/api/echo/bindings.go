package echoapi

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/trezcool/shule/core"
)

var (
	orderingParam = "ordering"
	refreshParam  = "refresh"
)

// Ordering binds the comma-separated `ordering` query param; a leading "-" sorts descending.
// e.g. ?ordering=-created_at,last_name
type Ordering struct {
	Orderings []core.DBOrdering
}

func (ord *Ordering) Bind(ctx echo.Context) {
	val := strings.TrimSpace(ctx.QueryParam(orderingParam))
	if val == "" {
		return
	}

	for _, field := range strings.Split(val, ",") {
		field = strings.TrimSpace(field)
		descending := strings.HasPrefix(field, "-")
		if descending {
			field = field[1:] // drop "-"
		}
		if field == "" {
			continue
		}
		ord.Orderings = append(ord.Orderings, core.DBOrdering{Field: field, Ascending: !descending})
	}
}

// boolParam reads a boolean query param; missing or malformed values are false.
func boolParam(ctx echo.Context, name string) bool {
	b, _ := strconv.ParseBool(ctx.QueryParam(name))
	return b
}

// bindQuery binds the query string of a GET request into a filter struct (`query` tags).
// Malformed values are ignored: filters never fail a listing.
func bindQuery(ctx echo.Context, filter interface{}) {
	_ = ctx.Bind(filter)
}

// studentIDParam reads the :student_id path param. Student IDs may hold escaped
// slashes (CSC%2F2023%2F001), which the router leaves as is.
func studentIDParam(ctx echo.Context) string {
	raw := ctx.Param("student_id")
	if id, err := url.PathUnescape(raw); err == nil {
		return id
	}
	return raw
}
