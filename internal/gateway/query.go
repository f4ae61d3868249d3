package gateway

import "sort"

// ListQuery carries the list-view state threaded into a fetchRecords call.
// Filters with the sentinel value "all" must be stripped by the caller.
type ListQuery struct {
	SearchTerm    string
	SearchFields  []string
	Filters       map[string]string
	SortField     string
	SortDirection string
	Limit         int
	Offset        int
}

type condition struct {
	FieldName  string      `json:"fieldName,omitempty"`
	Operator   string      `json:"operator"`
	Values     []string    `json:"values,omitempty"`
	Conditions []condition `json:"conditions,omitempty"`
}

type orderBy struct {
	Field     string `json:"field"`
	Direction string `json:"direction"`
}

type pagingInfo struct {
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
}

type fetchParams struct {
	Where      []condition `json:"where,omitempty"`
	OrderBy    []orderBy   `json:"orderBy,omitempty"`
	PagingInfo pagingInfo  `json:"pagingInfo"`
}

// buildParams translates a ListQuery into the record service filter
// expression: one ExactMatch condition per active filter ANDed together, and
// one Contains condition per searchable field combined with OR for the
// search term.
func buildParams(q ListQuery, defaultLimit int) fetchParams {
	var where []condition

	for _, name := range sortedKeys(q.Filters) {
		value := q.Filters[name]
		if value == "" || value == "all" {
			continue
		}
		where = append(where, condition{
			FieldName: name,
			Operator:  "ExactMatch",
			Values:    []string{value},
		})
	}

	if q.SearchTerm != "" && len(q.SearchFields) > 0 {
		group := condition{Operator: "OR"}
		for _, field := range q.SearchFields {
			group.Conditions = append(group.Conditions, condition{
				FieldName: field,
				Operator:  "Contains",
				Values:    []string{q.SearchTerm},
			})
		}
		where = append(where, group)
	}

	params := fetchParams{Where: where}

	if q.SortField != "" {
		direction := q.SortDirection
		if direction != "desc" {
			direction = "asc"
		}
		params.OrderBy = []orderBy{{Field: q.SortField, Direction: direction}}
	}

	limit := q.Limit
	if limit <= 0 {
		limit = defaultLimit
	}
	params.PagingInfo = pagingInfo{Limit: limit, Offset: q.Offset}

	return params
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
