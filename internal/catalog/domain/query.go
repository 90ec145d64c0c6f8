package domain

import (
	"cmp"
	"slices"
	"strconv"
	"strings"
)

type SortKey string

const (
	SortSubject  SortKey = "subject"
	SortLocation SortKey = "location"
	SortPrice    SortKey = "price"
	SortCapacity SortKey = "spaces"
)

// Query filters and orders a listing. Build it with NewQuery so unknown sort
// keys fall back to subject.
type Query struct {
	Search string
	Sort   SortKey
	Desc   bool
}

func NewQuery(search, sort, dir string) Query {
	q := Query{
		Search: strings.ToLower(strings.TrimSpace(search)),
		Sort:   SortSubject,
		Desc:   dir == "desc",
	}
	switch k := SortKey(sort); k {
	case SortSubject, SortLocation, SortPrice, SortCapacity:
		q.Sort = k
	}
	return q
}

// Number reports whether the search term also matches price or spaces exactly.
func (q Query) Number() (int64, bool) {
	if q.Search == "" {
		return 0, false
	}
	n, err := strconv.ParseInt(q.Search, 10, 64)
	return n, err == nil
}

func (q Query) Matches(e Entry) bool {
	if q.Search == "" {
		return true
	}
	if strings.Contains(strings.ToLower(e.Subject), q.Search) ||
		strings.Contains(strings.ToLower(e.Location), q.Search) {
		return true
	}
	if n, ok := q.Number(); ok {
		return e.Price == n || int64(e.Capacity) == n
	}
	return false
}

// SortEntries orders entries in place; ties keep their id order so listings are stable.
func (q Query) SortEntries(entries []Entry) {
	slices.SortStableFunc(entries, func(a, b Entry) int {
		var c int
		switch q.Sort {
		case SortLocation:
			c = cmp.Compare(a.Location, b.Location)
		case SortPrice:
			c = cmp.Compare(a.Price, b.Price)
		case SortCapacity:
			c = cmp.Compare(a.Capacity, b.Capacity)
		default:
			c = cmp.Compare(a.Subject, b.Subject)
		}
		if q.Desc {
			c = -c
		}
		if c == 0 {
			c = cmp.Compare(a.ID, b.ID)
		}
		return c
	})
}
