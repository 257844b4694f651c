package listview

import (
	"time"

	"github.com/jinzhu/now"
)

var dates = &now.Config{
	TimeLocation: time.UTC,
	TimeFormats:  append([]string{"2006-01-02", time.RFC3339Nano, "2006-01-02T15:04:05"}, now.TimeFormats...),
}

// State is the user-controlled part of a list: what they searched for, how
// they sorted and which page they are on.
type State struct {
	Query   string
	Initial string
	Sort    Sort
	Page    int
}

// Controller binds a Spec to a State. Mutators keep the page consistent with
// the query; View never mutates.
type Controller[T any] struct {
	spec  Spec[T]
	state State
}

// New starts on page 1 sorted ascending by defaultSort.
func New[T any](spec Spec[T], defaultSort string) *Controller[T] {
	return &Controller[T]{spec: spec, state: State{Page: 1, Sort: Sort{Field: defaultSort, Dir: Asc}}}
}

func (c *Controller[T]) Spec() Spec[T] { return c.spec }
func (c *Controller[T]) State() State  { return c.state }
func (c *Controller[T]) Query() string { return c.state.Query }
func (c *Controller[T]) Sort() Sort    { return c.state.Sort }

// SetQuery replaces the search text and always returns to page 1.
func (c *Controller[T]) SetQuery(q string) {
	c.state.Query = q
	c.state.Page = 1
}

// SetInitial replaces the initial-letter filter and returns to page 1.
func (c *Controller[T]) SetInitial(prefix string) {
	c.state.Initial = prefix
	c.state.Page = 1
}

func (c *Controller[T]) Initial() string { return c.state.Initial }

// Toggle flips the direction when field is already the sort key, otherwise
// sorts by field ascending.
func (c *Controller[T]) Toggle(field string) {
	if c.state.Sort.Field == field {
		if c.state.Sort.Dir == Asc {
			c.state.Sort.Dir = Desc
		} else {
			c.state.Sort.Dir = Asc
		}
		return
	}
	c.state.Sort = Sort{Field: field, Dir: Asc}
}

// CycleField moves the sort key to the next sortable field, ascending.
func (c *Controller[T]) CycleField() {
	fields := c.spec.Fields
	if len(fields) == 0 {
		return
	}
	next := 0
	for i, f := range fields {
		if f.Name == c.state.Sort.Field {
			next = (i + 1) % len(fields)
			break
		}
	}
	c.state.Sort = Sort{Field: fields[next].Name, Dir: Asc}
}

// SetPage moves to page p clamped against the current items.
func (c *Controller[T]) SetPage(items []T, p int) {
	pages := PageCount(c.filteredLen(items), c.spec.pageSize())
	c.state.Page = clamp(p, 1, pages)
}

func (c *Controller[T]) Next(items []T) { c.SetPage(items, c.page(items)+1) }
func (c *Controller[T]) Prev(items []T) { c.SetPage(items, c.page(items)-1) }

// View derives the visible page for items.
func (c *Controller[T]) View(items []T) View[T] {
	return Derive(c.spec, items, c.state)
}

func (c *Controller[T]) page(items []T) int {
	return clamp(c.state.Page, 1, PageCount(c.filteredLen(items), c.spec.pageSize()))
}

func (c *Controller[T]) filteredLen(items []T) int {
	return len(FilterInitial(c.spec, Filter(c.spec, items, c.state.Query), c.state.Initial))
}
