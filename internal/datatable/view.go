package datatable

import "html/template"

// View is the template model of a table.
type View struct {
	Headers     []HeaderView
	Toggles     []ToggleView
	Rows        []RowView
	Page        int
	PageCount   int
	Total       int
	PageSize    int
	CanPrevious bool
	CanNext     bool
	PrevURL     string
	NextURL     string
	Pages       []PageLink
	Empty       bool
	EmptyText   string
	Error       string
	Detail      template.HTML
	HasDetail   bool
	CloseURL    string
	Search      string
	BasePath    string
	// Params are the current query values, for hidden inputs of the search form.
	Params map[string]string
}

// HeaderView is one column header.
type HeaderView struct {
	Key      string
	Label    string
	Align    string
	Sortable bool
	Sorted   bool
	Desc     bool
	SortURL  string
}

// ToggleView is one entry of the column visibility menu.
type ToggleView struct {
	Key       string
	Label     string
	Visible   bool
	ToggleURL string
}

// RowView is one rendered row.
type RowView struct {
	ID        string
	Cells     []Cell
	DetailURL string
	Selected  bool
}

// Cell is one rendered value. Raw cells carry trusted HTML.
type Cell struct {
	Text  string
	HTML  template.HTML
	Raw   bool
	Align string
}

// PageLink is one numbered pagination link.
type PageLink struct {
	Number  int
	URL     string
	Current bool
	Gap     bool
}

const pageWindow = 2

// View renders the table for templates.
func (t *Table[T]) View() View {
	base := t.opts.BasePath
	v := View{
		Page:        t.state.PageIndex + 1,
		PageCount:   t.PageCount(),
		Total:       t.Total(),
		PageSize:    t.state.PageSize,
		CanPrevious: t.CanPrevious(),
		CanNext:     t.CanNext(),
		EmptyText:   t.opts.EmptyText,
		Error:       t.opts.Err,
		Search:      t.state.Search,
		BasePath:    base,
		Params:      map[string]string{},
	}
	if v.EmptyText == "" {
		v.EmptyText = "No records found."
	}
	for key, vals := range t.state.Query() {
		if key != paramSearch && key != paramPage && len(vals) > 0 {
			v.Params[key] = vals[0]
		}
	}
	if v.CanPrevious {
		v.PrevURL = t.Previous().Href(base)
	}
	if v.CanNext {
		v.NextURL = t.Next().Href(base)
	}
	v.Pages = t.pageLinks(base)

	visible := t.VisibleColumns()
	for _, col := range visible {
		h := HeaderView{Key: col.Key, Label: col.Header, Align: col.Align, Sortable: col.Sortable}
		if col.Sortable {
			h.Sorted = t.state.Sort == col.Key
			h.Desc = h.Sorted && t.state.Desc
			h.SortURL = t.SortBy(col.Key).Href(base)
		}
		v.Headers = append(v.Headers, h)
	}
	for _, col := range t.columns {
		if !col.Hideable {
			continue
		}
		v.Toggles = append(v.Toggles, ToggleView{
			Key:       col.Key,
			Label:     col.Header,
			Visible:   !t.hidden(col),
			ToggleURL: t.ToggleColumn(col.Key).Href(base),
		})
	}

	if v.Error != "" {
		return v
	}
	for _, row := range t.PageRows() {
		rv := RowView{}
		if t.opts.RowID != nil {
			rv.ID = t.opts.RowID(row)
			rv.Selected = rv.ID != "" && rv.ID == t.state.Selected
			if t.opts.Detail != nil && rv.ID != "" {
				rv.DetailURL = t.SelectRow(rv.ID).Href(base)
			}
		}
		for _, col := range visible {
			cell := Cell{Align: col.Align}
			switch {
			case col.HTML != nil:
				cell.HTML = col.HTML(row)
				cell.Raw = true
			case col.Value != nil:
				cell.Text = col.Value(row)
			}
			rv.Cells = append(rv.Cells, cell)
		}
		v.Rows = append(v.Rows, rv)
	}
	v.Empty = len(v.Rows) == 0
	if detail, ok := t.Detail(); ok {
		v.Detail = detail
		v.HasDetail = true
		v.CloseURL = t.SelectRow("").Href(base)
	}
	return v
}

// pageLinks renders the first, the last and a window around the current page.
func (t *Table[T]) pageLinks(base string) []PageLink {
	count := t.PageCount()
	current := t.state.PageIndex
	var links []PageLink
	gap := false
	for i := 0; i < count; i++ {
		if i != 0 && i != count-1 && (i < current-pageWindow || i > current+pageWindow) {
			if !gap {
				links = append(links, PageLink{Gap: true})
				gap = true
			}
			continue
		}
		gap = false
		links = append(links, PageLink{Number: i + 1, URL: t.GotoPage(i).Href(base), Current: i == current})
	}
	return links
}
