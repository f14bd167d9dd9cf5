package admin

import (
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"

	"github.com/curio-learn/profile-service/internal/repositories"
)

// Reserved changelist query parameters
const (
	SearchParam  = "q"
	OrderParam   = "o"
	PageParam    = "p"
	PerPageParam = "per_page"

	isNullSuffix = "__isnull"
)

// ChangeListParams is a parsed changelist request
type ChangeListParams struct {
	Query   repositories.ChangeListQuery
	Page    int
	PerPage int
}

// Row is one changelist line keyed by column name, plus "id".
type Row map[string]interface{}

// ChangeList is one rendered changelist page
type ChangeList struct {
	Results []Row                                  `json:"results"`
	Count   int64                                  `json:"count"`
	Page    int                                    `json:"page"`
	PerPage int                                    `json:"per_page"`
	Columns []string                               `json:"columns"`
	Filters map[string][]repositories.FilterChoice `json:"filters"`
}

// ParseChangeList reads search, filters, ordering and paging from values.
// Filters on fields outside ListFilter are rejected with ErrInvalidLookup.
// Ordering fields outside ListDisplay are ignored.
func (m *ModelAdmin) ParseChangeList(values url.Values) (*ChangeListParams, error) {
	params := &ChangeListParams{Page: 1, PerPage: m.ListPerPage}
	query := &params.Query

	if q := strings.TrimSpace(values.Get(SearchParam)); q != "" && len(m.SearchFields) > 0 {
		query.Search = q
		query.SearchFields = append([]string(nil), m.SearchFields...)
	}

	query.Ordering = m.ordering(values.Get(OrderParam))

	if raw := values.Get(PageParam); raw != "" {
		page, err := strconv.Atoi(raw)
		if err != nil || page < 1 {
			return nil, fmt.Errorf("%w: invalid page %q", repositories.ErrInvalidLookup, raw)
		}
		params.Page = page
	}
	if raw := values.Get(PerPageParam); raw != "" {
		perPage, err := strconv.Atoi(raw)
		if err != nil || perPage < 1 {
			return nil, fmt.Errorf("%w: invalid per_page %q", repositories.ErrInvalidLookup, raw)
		}
		params.PerPage = min(perPage, MaxListPerPage)
	}

	for _, key := range sortedKeys(values) {
		switch key {
		case SearchParam, OrderParam, PageParam, PerPageParam:
			continue
		}

		field, isNull := strings.CutSuffix(key, isNullSuffix)
		if !m.filters(field) {
			return nil, fmt.Errorf("%w: filtering by %q is not allowed", repositories.ErrInvalidLookup, key)
		}
		query.Filters = append(query.Filters, repositories.FieldFilter{
			Field:  field,
			Value:  values.Get(key),
			IsNull: isNull,
		})
	}

	query.Limit = params.PerPage
	query.Offset = (params.Page - 1) * params.PerPage
	return params, nil
}

// ordering parses a comma separated override such as "-age,user", keeping
// only displayed columns. It falls back to the declared ordering.
func (m *ModelAdmin) ordering(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if m.displays(strings.TrimPrefix(part, "-")) {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return append([]string(nil), m.Ordering...)
	}
	return out
}

// BuildRow renders the list_display columns of a representation. The user
// column shows the owner's username instead of the id.
func (m *ModelAdmin) BuildRow(rep map[string]interface{}, username string) Row {
	row := Row{"id": rep["id"]}
	for _, col := range m.ListDisplay {
		if col == "user" {
			row[col] = username
			continue
		}
		row[col] = rep[col]
	}
	return row
}

func sortedKeys(values url.Values) []string {
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
