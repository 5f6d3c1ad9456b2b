package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// Filter is a requested (facet name, value name) pair, e.g. {"Цвет", "Красный"}
type Filter struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// ParseFilter parses "Facet=Value"
func ParseFilter(s string) (Filter, error) {
	name, value, ok := strings.Cut(s, "=")
	name, value = strings.TrimSpace(name), strings.TrimSpace(value)
	if !ok || name == "" || value == "" {
		return Filter{}, fmt.Errorf("invalid filter %q, expected Name=Value", s)
	}
	return Filter{Name: name, Value: value}, nil
}

// FilterParams maps a catalog filter key to the selected value id
type FilterParams map[string]string

// FilterValueID is an opaque facet item id. The catalog sends numbers for most
// facets and strings for some, both are kept in their text form.
type FilterValueID string

func (id *FilterValueID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*id = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*id = FilterValueID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("filter value id: %w", err)
	}
	*id = FilterValueID(n.String())
	return nil
}

func (id FilterValueID) String() string {
	return string(id)
}

type FilterItem struct {
	Name string        `json:"name"`
	ID   FilterValueID `json:"id"`
}

// FilterFacet is a named filter dimension of a category
type FilterFacet struct {
	Name  string       `json:"name"`
	Key   string       `json:"key"`
	Items []FilterItem `json:"items"`
}

type FiltersResponse struct {
	Data struct {
		Filters []FilterFacet `json:"filters"`
	} `json:"data"`
}
