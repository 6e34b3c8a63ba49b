package domain

import (
	"encoding/json"
	"net/url"
	"strconv"
)

// LazyState is the pagination/sort/filter state of a server-lazy table. The
// backend receives it as first/rowcount/sort/order query parameters plus a
// filter parameter holding a URL-encoded JSON object.
type LazyState struct {
	First     int
	Rows      int
	SortField string
	SortOrder string // "asc" or "desc"
	Filter    map[string]string
}

// WithFirst returns a copy positioned at the given offset. Page navigation
// keeps the filter untouched.
func (st LazyState) WithFirst(first int) LazyState {
	if first < 0 {
		first = 0
	}
	st.First = first
	return st
}

// WithFilter returns a copy with one filter field changed. Any filter change
// resets the offset to the first page; an empty value removes the field.
func (st LazyState) WithFilter(field, value string) LazyState {
	filter := make(map[string]string, len(st.Filter)+1)
	for k, v := range st.Filter {
		filter[k] = v
	}
	if value == "" {
		delete(filter, field)
	} else {
		filter[field] = value
	}
	st.Filter = filter
	st.First = 0
	return st
}

// WithSort returns a copy sorted by the given field. Sorting the same field
// again flips the order.
func (st LazyState) WithSort(field string) LazyState {
	if st.SortField == field && st.SortOrder == "asc" {
		st.SortOrder = "desc"
	} else {
		st.SortOrder = "asc"
	}
	st.SortField = field
	return st
}

// Values encodes the state for the CRUD list endpoints. Zero offset and page
// size are omitted so a filter-only state fetches the whole collection.
func (st LazyState) Values() url.Values {
	params := url.Values{}
	if st.First > 0 {
		params.Set("first", strconv.Itoa(st.First))
	}
	if st.Rows > 0 {
		params.Set("rowcount", strconv.Itoa(st.Rows))
	}
	if st.SortField != "" {
		params.Set("sort", st.SortField)
		order := st.SortOrder
		if order == "" {
			order = "asc"
		}
		params.Set("order", order)
	}
	if f := EncodeFilter(st.Filter); f != "" {
		params.Set("filter", f)
	}
	return params
}

// Encode renders the state as a query string for console page links.
func (st LazyState) Encode() string {
	return st.Values().Encode()
}

// EncodeFilter marshals a filter map to the JSON object the backend expects,
// or "" when there is nothing to filter on.
func EncodeFilter(filter map[string]string) string {
	if len(filter) == 0 {
		return ""
	}
	b, err := json.Marshal(filter)
	if err != nil {
		return ""
	}
	return string(b)
}

// ParseLazyState rebuilds table state from request query parameters. The
// filter comes either from a canonical filter JSON parameter (pager and sort
// links) or from bare form fields named in filterFields (the filter form
// submits those and no offset, so a filter change lands on page one).
func ParseLazyState(q url.Values, defaultRows int, filterFields ...string) LazyState {
	st := LazyState{Rows: defaultRows}
	if v, err := strconv.Atoi(q.Get("first")); err == nil && v > 0 {
		st.First = v
	}
	if v, err := strconv.Atoi(q.Get("rowcount")); err == nil && v > 0 {
		st.Rows = v
	}
	st.SortField = q.Get("sort")
	if order := q.Get("order"); order == "desc" {
		st.SortOrder = "desc"
	} else if st.SortField != "" {
		st.SortOrder = "asc"
	}

	if raw := q.Get("filter"); raw != "" {
		filter := map[string]string{}
		if err := json.Unmarshal([]byte(raw), &filter); err == nil && len(filter) > 0 {
			st.Filter = filter
		}
		return st
	}
	for _, field := range filterFields {
		if v := q.Get(field); v != "" {
			if st.Filter == nil {
				st.Filter = map[string]string{}
			}
			st.Filter[field] = v
		}
	}
	return st
}
