package domain

// Fields the destination store assigns or rejects on create.
var (
	CategoryStripFields      = []string{"id", "meta_data"}
	AttributeStripFields     = []string{"id", "_links"}
	AttributeTermStripFields = []string{"id", "_links"}
)

// Reduced product payload keys. Everything else (prices history, stock, taxonomy
// links, sku, attributes) is dropped on purpose.
var productFields = []string{"name", "type", "regular_price", "description", "short_description"}

// Strip returns a copy of the record without the given keys.
func Strip(r Record, fields ...string) Record {
	out := r.Clone()
	for _, f := range fields {
		delete(out, f)
	}
	return out
}

// ReduceProduct builds the create payload for a product: the scalar fields present
// on the source plus images reduced to their src.
func ReduceProduct(r Record) Record {
	out := make(Record, len(productFields)+1)
	for _, f := range productFields {
		if v, ok := r[f]; ok {
			out[f] = v
		}
	}

	images := make([]map[string]any, 0)
	if list, ok := r["images"].([]any); ok {
		for _, img := range list {
			m, ok := img.(map[string]any)
			if !ok {
				continue
			}
			src, ok := m["src"].(string)
			if !ok || src == "" {
				continue
			}
			images = append(images, map[string]any{"src": src})
		}
	}
	out["images"] = images

	return out
}
