package models

import "encoding/json"

// ResultSet holds the fully materialized output of a query execution:
// an ordered column list from the query's projection and the scanned rows.
// A ResultSet may have zero rows; execution failure is a different outcome
// and never produces a ResultSet at all.
type ResultSet struct {
	Columns []string         `json:"columns"`
	Rows    []map[string]any `json:"rows"`
}

// Empty reports whether the result has no rows.
func (r *ResultSet) Empty() bool {
	return r == nil || len(r.Rows) == 0
}

// HasColumn reports whether the projection contains the named column.
func (r *ResultSet) HasColumn(name string) bool {
	if r == nil {
		return false
	}
	for _, c := range r.Columns {
		if c == name {
			return true
		}
	}
	return false
}

// RecordsJSON serializes the rows as a JSON array of flat records, the form
// handed to the answer synthesis prompt. An empty result serializes as "[]".
func (r *ResultSet) RecordsJSON() (string, error) {
	rows := r.Rows
	if rows == nil {
		rows = []map[string]any{}
	}
	data, err := json.Marshal(rows)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
