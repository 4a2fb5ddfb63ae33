package domain

import "fmt"

// Record is a WooCommerce REST object as returned by the source store. Fields are
// kept opaque so unknown keys pass through untouched.
type Record map[string]any

// ID returns the numeric "id" field. JSON numbers decode as float64, json.Number
// is accepted as well.
func (r Record) ID() (int64, bool) {
	switch v := r["id"].(type) {
	case float64:
		return int64(v), true
	case int:
		return int64(v), true
	case int64:
		return v, true
	case interface{ Int64() (int64, error) }:
		id, err := v.Int64()
		return id, err == nil
	default:
		return 0, false
	}
}

// Name is used for log lines and report entries only.
func (r Record) Name() string {
	if name, ok := r["name"].(string); ok && name != "" {
		return name
	}
	if id, ok := r.ID(); ok {
		return fmt.Sprintf("#%d", id)
	}
	return "<unnamed>"
}

func (r Record) Clone() Record {
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}
