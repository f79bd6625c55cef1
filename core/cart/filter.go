package cart

import "time"

// FilterByDateRange keeps the carts created within [start, end]. Either
// bound may be nil to leave that side open. The result is always a new
// slice. Carts whose creation date cannot be parsed only pass when both
// bounds are nil.
func FilterByDateRange(carts []Cart, start, end *time.Time) []Cart {
	out := make([]Cart, 0, len(carts))
	if start == nil && end == nil {
		return append(out, carts...)
	}

	for _, c := range carts {
		created, err := ParseCreatedAt(c.CreatedAt)
		if err != nil {
			continue
		}
		if start != nil && created.Before(*start) {
			continue
		}
		if end != nil && created.After(*end) {
			continue
		}
		out = append(out, c)
	}
	return out
}

// Paginate returns the page-th window of pageSize carts. Pages past the end,
// negative pages and non-positive sizes yield an empty slice.
func Paginate(carts []Cart, page, pageSize int) []Cart {
	if page < 0 || pageSize <= 0 {
		return []Cart{}
	}

	from := page * pageSize
	if from >= len(carts) || from/pageSize != page {
		return []Cart{}
	}

	to := from + pageSize
	if to > len(carts) || to < from {
		to = len(carts)
	}

	out := make([]Cart, to-from)
	copy(out, carts[from:to])
	return out
}

// ParseCreatedAt reads a cart's ISO-8601 creation timestamp.
func ParseCreatedAt(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err == nil {
		return t, nil
	}

	if d, derr := time.Parse("2006-01-02", s); derr == nil {
		return d, nil
	}
	return time.Time{}, err
}
