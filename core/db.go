package core

import (
	"context"
	"time"
)

type DBOrdering struct {
	Field     string
	Ascending bool
}

func (ord DBOrdering) String() string {
	direction := "DESC"
	if ord.Ascending {
		direction = "ASC"
	}
	return ord.Field + " " + direction
}

// AllowedOrderings drops the orderings whose field is not part of `fields`.
func AllowedOrderings(orderings []DBOrdering, fields ...string) []DBOrdering {
	allowed := make(map[string]bool, len(fields))
	for _, f := range fields {
		allowed[f] = true
	}
	ords := make([]DBOrdering, 0, len(orderings))
	for _, ord := range orderings {
		if allowed[ord.Field] {
			ords = append(ords, ord)
		}
	}
	return ords
}

// QueryContext bounds a store call with the configured query timeout.
// A zero timeout leaves ctx untouched.
func QueryContext(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, timeout)
}
