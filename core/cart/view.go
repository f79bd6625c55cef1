package cart

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type Status string

const (
	StatusNew    Status = "New"
	StatusRecent Status = "Recent"
	StatusOld    Status = "Old"
)

const (
	DefaultPageSize = 5
	dateLayout      = "Jan 02, 2006"
)

// PageSizes are the page sizes the dashboard table offers.
var PageSizes = []int{5, 10}

// Row is one line of the dashboard cart table.
type Row struct {
	ID        string `json:"id"`
	ItemCount int    `json:"itemCount"`
	Total     string `json:"total"`
	CreatedAt string `json:"createdAt"`
	Status    Status `json:"status"`
}

type Table struct {
	Rows     []Row `json:"rows"`
	Total    int   `json:"total"`
	Page     int   `json:"page"`
	PageSize int   `json:"pageSize"`
}

// Query selects the carts shown in a table.
type Query struct {
	Start    *time.Time
	End      *time.Time
	Page     int
	PageSize int
}

// BuildTable filters carts by q's date range, then renders the requested
// page. Total counts every cart that passed the filter.
func BuildTable(carts []Cart, q Query, now time.Time) Table {
	filtered := FilterByDateRange(carts, q.Start, q.End)
	page := Paginate(filtered, q.Page, q.PageSize)

	rows := make([]Row, len(page))
	for i, c := range page {
		rows[i] = NewRow(c, now)
	}

	return Table{
		Rows:     rows,
		Total:    len(filtered),
		Page:     q.Page,
		PageSize: q.PageSize,
	}
}

func NewRow(c Cart, now time.Time) Row {
	return Row{
		ID:        c.ID,
		ItemCount: len(c.Items),
		Total:     FormatCurrency(c.TotalAmount),
		CreatedAt: FormatDate(c.CreatedAt),
		Status:    StatusAt(c.CreatedAt, now),
	}
}

// StatusAt grades a cart by how many whole days old it is at now: New up to
// one day, Recent up to a week, Old beyond. Unreadable dates count as Old.
func StatusAt(createdAt string, now time.Time) Status {
	t, err := ParseCreatedAt(createdAt)
	if err != nil {
		return StatusOld
	}

	days := int(now.Sub(t).Hours() / 24)
	switch {
	case days <= 1:
		return StatusNew
	case days <= 7:
		return StatusRecent
	default:
		return StatusOld
	}
}

// FormatDate renders a creation timestamp as "Jan 02, 2006" in UTC, leaving
// unreadable input as it is.
func FormatDate(createdAt string) string {
	t, err := ParseCreatedAt(createdAt)
	if err != nil {
		return createdAt
	}
	return t.UTC().Format(dateLayout)
}

// FormatCurrency renders amount as US dollars rounded half away from zero to
// cents, with thousands separators: 1234.5 becomes "$1,234.50".
func FormatCurrency(amount float64) string {
	d := decimal.NewFromFloat(amount).Round(2)

	sign := ""
	if d.IsNegative() {
		sign = "-"
		d = d.Neg()
	}

	s := d.StringFixed(2)
	whole, frac, _ := strings.Cut(s, ".")

	var b strings.Builder
	for i, r := range whole {
		if i > 0 && (len(whole)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}

	return sign + "$" + b.String() + "." + frac
}
