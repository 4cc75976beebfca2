// Package models defines the core data types shared across the agent.
package models

import (
	"fmt"
	"strings"
)

// Column describes a single typed column in the warehouse schema.
type Column struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

// Table describes a queryable table and its columns.
type Table struct {
	Name    string   `json:"name"`
	Columns []Column `json:"columns"`
}

// Schema is the fixed, process-wide description of the e-commerce tables.
// It is loaded once at startup and never mutated; the SQL generation prompt
// embeds it verbatim.
type Schema struct {
	Tables []Table `json:"tables"`
}

// DefaultSchema returns the three-table e-commerce schema.
func DefaultSchema() Schema {
	return Schema{
		Tables: []Table{
			{
				Name: "sales_metrics",
				Columns: []Column{
					{Name: "date", Type: "TEXT"},
					{Name: "item_id", Type: "INTEGER"},
					{Name: "total_sales", Type: "REAL"},
					{Name: "total_units_ordered", Type: "INTEGER"},
				},
			},
			{
				Name: "ad_metrics",
				Columns: []Column{
					{Name: "date", Type: "TEXT"},
					{Name: "item_id", Type: "INTEGER"},
					{Name: "ad_sales", Type: "REAL"},
					{Name: "impressions", Type: "INTEGER"},
					{Name: "ad_spend", Type: "REAL"},
					{Name: "clicks", Type: "INTEGER"},
					{Name: "units_sold", Type: "INTEGER"},
				},
			},
			{
				Name: "product_eligibility",
				Columns: []Column{
					{Name: "eligibility_datetime_utc", Type: "TEXT"},
					{Name: "item_id", Type: "INTEGER"},
					{Name: "eligibility", Type: "BOOLEAN"},
					{Name: "message", Type: "TEXT"},
				},
			},
		},
	}
}

// PromptDescription renders the schema as prompt text, one table per line.
func (s Schema) PromptDescription() string {
	var b strings.Builder
	for _, t := range s.Tables {
		cols := make([]string, len(t.Columns))
		for i, c := range t.Columns {
			cols[i] = fmt.Sprintf("%s %s", c.Name, c.Type)
		}
		fmt.Fprintf(&b, "- %s(%s)\n", t.Name, strings.Join(cols, ", "))
	}
	return b.String()
}

// TableNames returns the table names in schema order.
func (s Schema) TableNames() []string {
	names := make([]string, len(s.Tables))
	for i, t := range s.Tables {
		names[i] = t.Name
	}
	return names
}

// ColumnNames returns the deduplicated column names across all tables,
// in first-seen order.
func (s Schema) ColumnNames() []string {
	seen := make(map[string]bool)
	var names []string
	for _, t := range s.Tables {
		for _, c := range t.Columns {
			if !seen[c.Name] {
				seen[c.Name] = true
				names = append(names, c.Name)
			}
		}
	}
	return names
}
