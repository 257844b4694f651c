// Package listview derives the visible page of a record list from a search
// query, a sort order and a page number. Everything here is a pure
// function of its inputs.
package listview

import (
	"sort"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

type Direction int

const (
	Asc Direction = iota
	Desc
)

func (d Direction) String() string {
	if d == Desc {
		return "desc"
	}
	return "asc"
}

// Arrow is the column-header marker for the direction.
func (d Direction) Arrow() string {
	if d == Desc {
		return "▼"
	}
	return "▲"
}

type Kind int

const (
	String Kind = iota
	Number
	Date
)

// Field is a sortable column. Text is used for String and Date kinds,
// Number for Number.
type Field[T any] struct {
	Name   string
	Kind   Kind
	Text   func(T) string
	Number func(T) float64
}

// Spec describes how one record type is searched, sorted and paged.
type Spec[T any] struct {
	ID       func(T) int
	Search   []func(T) string
	Initial  func(T) string
	Fields   []Field[T]
	PageSize int
}

func (s Spec[T]) field(name string) (Field[T], bool) {
	for _, f := range s.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field[T]{}, false
}

func (s Spec[T]) pageSize() int {
	if s.PageSize < 1 {
		return 1
	}
	return s.PageSize
}

type Sort struct {
	Field string
	Dir   Direction
}

// View is one derived page.
type View[T any] struct {
	Items []T
	Total int
	Page  int
	Pages int
	// First and Last are the 1-based positions of the visible slice within
	// the filtered set; both are 0 when nothing matched.
	First int
	Last  int
}

// Filter keeps the records whose searchable fields contain q
// (case-insensitive) or whose identifier equals q. Only the empty query
// keeps everything; whitespace is matched like any other character.
func Filter[T any](spec Spec[T], items []T, q string) []T {
	out := make([]T, 0, len(items))
	if q == "" {
		return append(out, items...)
	}
	lq := strings.ToLower(q)
	for _, it := range items {
		if matches(spec, it, q, lq) {
			out = append(out, it)
		}
	}
	return out
}

func matches[T any](spec Spec[T], it T, q, lq string) bool {
	if spec.ID != nil && strconv.Itoa(spec.ID(it)) == q {
		return true
	}
	for _, f := range spec.Search {
		if strings.Contains(strings.ToLower(f(it)), lq) {
			return true
		}
	}
	return false
}

// FilterInitial keeps the records whose Initial field starts with prefix.
func FilterInitial[T any](spec Spec[T], items []T, prefix string) []T {
	prefix = strings.ToLower(strings.TrimSpace(prefix))
	if prefix == "" || spec.Initial == nil {
		return items
	}
	out := make([]T, 0, len(items))
	for _, it := range items {
		if strings.HasPrefix(strings.ToLower(spec.Initial(it)), prefix) {
			out = append(out, it)
		}
	}
	return out
}

// SortItems returns a stably sorted copy. Unknown fields leave the order
// untouched.
func SortItems[T any](spec Spec[T], items []T, s Sort) []T {
	out := make([]T, len(items))
	copy(out, items)
	f, ok := spec.field(s.Field)
	if !ok || len(out) < 2 {
		return out
	}

	cmp := comparator(f)
	sort.SliceStable(out, func(i, j int) bool {
		c := cmp(out[i], out[j])
		if s.Dir == Desc {
			return c > 0
		}
		return c < 0
	})
	return out
}

func comparator[T any](f Field[T]) func(a, b T) int {
	switch f.Kind {
	case Number:
		num := f.Number
		if num == nil {
			num = func(T) float64 { return 0 }
		}
		return func(a, b T) int {
			x, y := num(a), num(b)
			switch {
			case x < y:
				return -1
			case x > y:
				return 1
			}
			return 0
		}
	case Date:
		text := textOf(f)
		return func(a, b T) int {
			return ParseDate(text(a)).Compare(ParseDate(text(b)))
		}
	default:
		text := textOf(f)
		col := collate.New(language.Spanish)
		return func(a, b T) int {
			return col.CompareString(text(a), text(b))
		}
	}
}

func textOf[T any](f Field[T]) func(T) string {
	if f.Text == nil {
		return func(T) string { return "" }
	}
	return f.Text
}

// PageCount is max(1, ceil(n/size)).
func PageCount(n, size int) int {
	if size < 1 {
		size = 1
	}
	if n <= 0 {
		return 1
	}
	return (n + size - 1) / size
}

// Paginate slices one page out of items, clamping page to [1, pages].
func Paginate[T any](items []T, page, size int) View[T] {
	if size < 1 {
		size = 1
	}
	pages := PageCount(len(items), size)
	page = clamp(page, 1, pages)

	v := View[T]{Total: len(items), Page: page, Pages: pages, Items: []T{}}
	if len(items) == 0 {
		return v
	}
	start := (page - 1) * size
	end := min(start+size, len(items))
	v.Items = items[start:end]
	v.First = start + 1
	v.Last = end
	return v
}

// Derive runs filter, sort and paginate in that order.
func Derive[T any](spec Spec[T], items []T, st State) View[T] {
	filtered := Filter(spec, items, st.Query)
	filtered = FilterInitial(spec, filtered, st.Initial)
	sorted := SortItems(spec, filtered, st.Sort)
	return Paginate(sorted, st.Page, spec.pageSize())
}

// ParseDate reads the date formats the records service emits. Values that do
// not parse become the zero time so they sort first.
func ParseDate(s string) time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}
	}
	t, err := dates.Parse(s)
	if err != nil {
		return time.Time{}
	}
	return t
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
