package domain

import "fmt"

// NotAvailable is rendered for a record field the store did not return.
const NotAvailable = "N/A"

// Record is one row as returned by the store. Its shape belongs to the
// store; the probe only ever reads a handful of named fields.
type Record map[string]any

// Field returns the named field as display text, or NotAvailable when the
// field is absent or null.
func (r Record) Field(name string) string {
	if r == nil {
		return NotAvailable
	}
	v, ok := r[name]
	if !ok || v == nil {
		return NotAvailable
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}
