package controller

import (
	"sort"
	"strings"

	"github.com/edutrack-app/edutrack-bff/internal/models"
	"github.com/edutrack-app/edutrack-bff/internal/schema"
)

// ComputeVisible derives the visible list from the store contents: an item
// matches when any searchable field contains the term case-insensitively
// (empty term matches everything) and every active filter's field equals the
// filter value exactly. The sort is stable so equal keys keep their store
// order.
func ComputeVisible(sch schema.Schema, items []models.Record, searchTerm string, filters map[string]string, sortField, sortDirection string) []models.Record {
	term := strings.ToLower(strings.TrimSpace(searchTerm))
	searchFields := sch.SearchFields()

	visible := make([]models.Record, 0, len(items))
	for _, item := range items {
		if !matchesSearch(item, searchFields, term) {
			continue
		}
		if !matchesFilters(item, filters) {
			continue
		}
		visible = append(visible, item)
	}

	if sortField != "" {
		desc := sortDirection == "desc"
		sort.SliceStable(visible, func(i, j int) bool {
			if desc {
				return sch.Less(visible[j], visible[i], sortField)
			}
			return sch.Less(visible[i], visible[j], sortField)
		})
	}

	return visible
}

func matchesSearch(item models.Record, fields []string, term string) bool {
	if term == "" {
		return true
	}
	for _, field := range fields {
		if strings.Contains(strings.ToLower(item.String(field)), term) {
			return true
		}
	}
	return false
}

func matchesFilters(item models.Record, filters map[string]string) bool {
	for name, value := range filters {
		if value == "" || value == "all" {
			continue
		}
		if item.String(name) != value {
			return false
		}
	}
	return true
}
