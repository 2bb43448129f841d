// Package datatable builds the view model of the shared list table:
// pagination, sortable and hideable columns, and the row detail drawer.
// It holds no network logic.
package datatable

import (
	"html/template"
	"sort"
	"strings"
)

// Column describes one table column.
type Column[T any] struct {
	Key      string
	Header   string
	Sortable bool
	Hideable bool
	// Hidden is the default visibility before the user toggles anything.
	Hidden bool
	Align  string
	Value  func(T) string
	// HTML renders trusted markup (badges, links) instead of Value.
	HTML func(T) template.HTML
	// SortValue overrides Value for client-side ordering.
	SortValue func(T) string
}

// Options configure a Table.
type Options[T any] struct {
	// PageCount switches the table to server-driven pagination; 0 means the
	// table pages the given rows itself.
	PageCount int
	Total     int
	BasePath  string
	RowID     func(T) string
	// Detail renders the drawer for the selected row.
	Detail    func(T) template.HTML
	Err       string
	EmptyText string
}

// Table combines rows, columns and state.
type Table[T any] struct {
	rows    []T
	columns []Column[T]
	state   State
	opts    Options[T]
}

// New constructs a table. The page index is clamped into range.
func New[T any](rows []T, columns []Column[T], state State, opts Options[T]) *Table[T] {
	if state.PageSize <= 0 {
		state.PageSize = 10
	}
	t := &Table[T]{rows: rows, columns: columns, state: state.clone(), opts: opts}
	if t.state.Sort != "" {
		if col, ok := t.column(t.state.Sort); !ok || !col.Sortable {
			t.state.Sort = ""
			t.state.Desc = false
		}
	}
	t.state.PageIndex = t.clamp(t.state.PageIndex)
	return t
}

// State returns the current state.
func (t *Table[T]) State() State { return t.state.clone() }

// ServerDriven reports whether the backend paginates.
func (t *Table[T]) ServerDriven() bool { return t.opts.PageCount > 0 }

// Total is the number of rows across all pages.
func (t *Table[T]) Total() int {
	if t.ServerDriven() {
		if t.opts.Total > 0 {
			return t.opts.Total
		}
		return len(t.rows)
	}
	return len(t.rows)
}

// PageCount is at least 1.
func (t *Table[T]) PageCount() int {
	if t.ServerDriven() {
		return t.opts.PageCount
	}
	return PageCountFor(len(t.rows), t.state.PageSize)
}

// CanPrevious reports whether a previous page exists.
func (t *Table[T]) CanPrevious() bool { return t.state.PageIndex > 0 }

// CanNext reports whether a next page exists.
func (t *Table[T]) CanNext() bool { return t.state.PageIndex < t.PageCount()-1 }

// Previous returns the state one page back, or the unchanged state on the
// first page.
func (t *Table[T]) Previous() State {
	if !t.CanPrevious() {
		return t.State()
	}
	return t.GotoPage(t.state.PageIndex - 1)
}

// Next returns the state one page forward, or the unchanged state on the
// last page.
func (t *Table[T]) Next() State {
	if !t.CanNext() {
		return t.State()
	}
	return t.GotoPage(t.state.PageIndex + 1)
}

// GotoPage returns the state for page index i, clamped into range.
func (t *Table[T]) GotoPage(i int) State {
	st := t.State()
	st.PageIndex = t.clamp(i)
	st.Selected = ""
	return st
}

// SortBy sorts by key, flipping direction when key is already the sort key.
// Unknown or unsortable keys leave the state unchanged.
func (t *Table[T]) SortBy(key string) State {
	st := t.State()
	col, ok := t.column(key)
	if !ok || !col.Sortable {
		return st
	}
	if st.Sort == key {
		st.Desc = !st.Desc
	} else {
		st.Sort = key
		st.Desc = false
	}
	st.PageIndex = 0
	st.Selected = ""
	return st
}

// ToggleColumn flips the visibility of a hideable column.
func (t *Table[T]) ToggleColumn(key string) State {
	st := t.State()
	col, ok := t.column(key)
	if !ok || !col.Hideable {
		return st
	}
	hidden := t.hidden(col)
	st.Hidden = t.effectiveHidden()
	st.Hidden[key] = !hidden
	if !st.Hidden[key] {
		delete(st.Hidden, key)
	}
	return st
}

// SelectRow opens the drawer for the row with id.
func (t *Table[T]) SelectRow(id string) State {
	st := t.State()
	st.Selected = id
	return st
}

// Detail renders the drawer content of the selected row.
func (t *Table[T]) Detail() (template.HTML, bool) {
	if t.opts.Detail == nil || t.opts.RowID == nil || t.state.Selected == "" {
		return "", false
	}
	for _, row := range t.rows {
		if t.opts.RowID(row) == t.state.Selected {
			return t.opts.Detail(row), true
		}
	}
	return "", false
}

// VisibleColumns returns the columns currently shown.
func (t *Table[T]) VisibleColumns() []Column[T] {
	out := make([]Column[T], 0, len(t.columns))
	for _, col := range t.columns {
		if !t.hidden(col) {
			out = append(out, col)
		}
	}
	return out
}

// PageRows returns the rows of the current page. Server-driven tables
// return the rows as given.
func (t *Table[T]) PageRows() []T {
	if t.ServerDriven() {
		return t.rows
	}
	rows := t.sorted()
	start := t.state.PageIndex * t.state.PageSize
	if start >= len(rows) {
		return []T{}
	}
	end := start + t.state.PageSize
	if end > len(rows) {
		end = len(rows)
	}
	return rows[start:end]
}

func (t *Table[T]) sorted() []T {
	rows := append([]T(nil), t.rows...)
	col, ok := t.column(t.state.Sort)
	if !ok || !col.Sortable {
		return rows
	}
	key := col.SortValue
	if key == nil {
		key = col.Value
	}
	if key == nil {
		return rows
	}
	sort.SliceStable(rows, func(i, j int) bool {
		a, b := strings.ToLower(key(rows[i])), strings.ToLower(key(rows[j]))
		if t.state.Desc {
			return a > b
		}
		return a < b
	})
	return rows
}

func (t *Table[T]) clamp(i int) int {
	if i < 0 {
		return 0
	}
	if last := t.PageCount() - 1; i > last {
		return last
	}
	return i
}

func (t *Table[T]) column(key string) (Column[T], bool) {
	for _, col := range t.columns {
		if col.Key == key {
			return col, true
		}
	}
	return Column[T]{}, false
}

func (t *Table[T]) hidden(col Column[T]) bool {
	if !col.Hideable {
		return false
	}
	if t.state.Hidden == nil {
		return col.Hidden
	}
	return t.state.Hidden[col.Key]
}

func (t *Table[T]) effectiveHidden() map[string]bool {
	out := map[string]bool{}
	for _, col := range t.columns {
		if t.hidden(col) {
			out[col.Key] = true
		}
	}
	return out
}
