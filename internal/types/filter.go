package types

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// ModelFilter holds the search constraints a language model may emit alongside its prose.
// It is never persisted and only ever reaches the database as query parameters.
type ModelFilter struct {
	WineType       string `json:"wine_type,omitempty"`
	Food           string `json:"food,omitempty"`
	Grape          string `json:"grape,omitempty"`
	Region         string `json:"region,omitempty"`
	Country        string `json:"country,omitempty"`
	Year           Year   `json:"year,omitempty"`
	Classification string `json:"classification,omitempty"`
	Appellation    string `json:"appellation,omitempty"`
	Name           string `json:"name,omitempty"`
}

// UnmarshalJSON accepts the catalog's "appelation" spelling as an alias.
func (f *ModelFilter) UnmarshalJSON(data []byte) error {
	type plain ModelFilter
	aux := struct {
		*plain
		Appelation string `json:"appelation"`
	}{plain: (*plain)(f)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	if f.Appellation == "" {
		f.Appellation = aux.Appelation
	}
	return nil
}

// IsEmpty reports whether no dimension is constrained.
func (f ModelFilter) IsEmpty() bool {
	return f == ModelFilter{}
}

// Year is a vintage that may arrive as a JSON number or string. Zero means absent.
type Year int

func (y *Year) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*y = 0
		return nil
	}

	var num float64
	if err := json.Unmarshal(data, &num); err == nil {
		*y = Year(num)
		return nil
	}

	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return fmt.Errorf("invalid year format")
	}
	str = strings.TrimSpace(str)
	if str == "" {
		*y = 0
		return nil
	}
	n, err := strconv.Atoi(str)
	if err != nil {
		// Words like "recent" carry no usable constraint.
		*y = 0
		return nil
	}
	*y = Year(n)
	return nil
}

// Ptr returns nil for an absent year.
func (y Year) Ptr() *int {
	if y == 0 {
		return nil
	}
	v := int(y)
	return &v
}
