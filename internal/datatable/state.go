package datatable

import (
	"net/url"
	"sort"
	"strconv"
	"strings"

	"github.com/medistock/medistock/internal/apiclient"
)

// Query parameter names used by table links.
const (
	paramPage   = "page"
	paramSize   = "size"
	paramSort   = "sort"
	paramOrder  = "order"
	paramHide   = "hide"
	paramRow    = "row"
	paramSearch = "q"
)

var reserved = map[string]bool{
	paramPage: true, paramSize: true, paramSort: true, paramOrder: true,
	paramHide: true, paramRow: true, paramSearch: true,
}

// State is the local UI state of a table. It round-trips through the query
// string so every interaction is a plain link.
type State struct {
	// PageIndex is 0-based; links carry it 1-based.
	PageIndex int
	PageSize  int
	Sort      string
	Desc      bool
	// Hidden is nil until the user toggles a column; column defaults apply.
	Hidden   map[string]bool
	Selected string
	Search   string
	// Filters are extra query keys the list page understands (status, type...).
	Filters url.Values
}

// ParseState reads table state from a query string, falling back to defaults.
func ParseState(values url.Values, defaults State) State {
	st := defaults
	if st.PageSize <= 0 {
		st.PageSize = 10
	}
	if page, err := strconv.Atoi(values.Get(paramPage)); err == nil && page > 0 {
		st.PageIndex = page - 1
	}
	if size, err := strconv.Atoi(values.Get(paramSize)); err == nil && size > 0 && size <= 100 {
		st.PageSize = size
	}
	if key := strings.TrimSpace(values.Get(paramSort)); key != "" {
		st.Sort = key
		st.Desc = strings.EqualFold(values.Get(paramOrder), "desc")
	}
	if values.Has(paramHide) {
		st.Hidden = map[string]bool{}
		for _, key := range strings.Split(values.Get(paramHide), ",") {
			if key = strings.TrimSpace(key); key != "" {
				st.Hidden[key] = true
			}
		}
	}
	st.Selected = values.Get(paramRow)
	st.Search = strings.TrimSpace(values.Get(paramSearch))
	for key, vals := range values {
		if reserved[key] || len(vals) == 0 || vals[0] == "" {
			continue
		}
		if st.Filters == nil {
			st.Filters = url.Values{}
		}
		st.Filters.Set(key, vals[0])
	}
	return st
}

// Query encodes the state back into query parameters.
func (s State) Query() url.Values {
	v := url.Values{}
	for key, vals := range s.Filters {
		if len(vals) > 0 && vals[0] != "" {
			v.Set(key, vals[0])
		}
	}
	if s.PageIndex > 0 {
		v.Set(paramPage, strconv.Itoa(s.PageIndex+1))
	}
	if s.PageSize > 0 {
		v.Set(paramSize, strconv.Itoa(s.PageSize))
	}
	if s.Sort != "" {
		v.Set(paramSort, s.Sort)
		if s.Desc {
			v.Set(paramOrder, "desc")
		} else {
			v.Set(paramOrder, "asc")
		}
	}
	if s.Hidden != nil {
		keys := make([]string, 0, len(s.Hidden))
		for key, hidden := range s.Hidden {
			if hidden {
				keys = append(keys, key)
			}
		}
		sort.Strings(keys)
		v.Set(paramHide, strings.Join(keys, ","))
	}
	if s.Selected != "" {
		v.Set(paramRow, s.Selected)
	}
	if s.Search != "" {
		v.Set(paramSearch, s.Search)
	}
	return v
}

// Href renders the state as a link relative to base.
func (s State) Href(base string) string {
	q := s.Query().Encode()
	if q == "" {
		return base
	}
	return base + "?" + q
}

// ListParams converts the state into backend list parameters.
func (s State) ListParams() apiclient.ListParams {
	params := apiclient.ListParams{
		Page:   s.PageIndex + 1,
		Limit:  s.PageSize,
		Search: s.Search,
		Sort:   s.Sort,
	}
	if s.Sort != "" {
		params.Order = "ASC"
		if s.Desc {
			params.Order = "DESC"
		}
	}
	if len(s.Filters) > 0 {
		params.Filters = make(map[string]string, len(s.Filters))
		for key := range s.Filters {
			params.Filters[key] = s.Filters.Get(key)
		}
	}
	return params
}

// Filter returns one filter value.
func (s State) Filter(key string) string {
	return s.Filters.Get(key)
}

func (s State) clone() State {
	out := s
	if s.Hidden != nil {
		out.Hidden = make(map[string]bool, len(s.Hidden))
		for k, v := range s.Hidden {
			out.Hidden[k] = v
		}
	}
	if s.Filters != nil {
		out.Filters = url.Values{}
		for k, v := range s.Filters {
			out.Filters[k] = append([]string(nil), v...)
		}
	}
	return out
}

// PageCountFor returns the number of pages needed for total rows, at least 1.
func PageCountFor(total, size int) int {
	if size <= 0 || total <= 0 {
		return 1
	}
	return (total + size - 1) / size
}
