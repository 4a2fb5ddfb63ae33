package domain

import "fmt"

type Entity string

func (e Entity) String() string {
	return string(e)
}

const (
	EntityCategory         Entity = "categories"
	EntityAttribute        Entity = "attributes"
	EntityAttributeTerm    Entity = "attribute_terms"
	EntityProduct          Entity = "products"
	EntityProductVariation Entity = "product_variations"
)

var Entities = []Entity{
	EntityCategory,
	EntityAttribute,
	EntityAttributeTerm,
	EntityProduct,
	EntityProductVariation,
}

func (e Entity) GetEntityName() string {
	switch e {
	case EntityCategory:
		return "Categories"
	case EntityAttribute:
		return "Attributes"
	case EntityAttributeTerm:
		return "Attribute terms"
	case EntityProduct:
		return "Products"
	case EntityProductVariation:
		return "Product variations"
	default:
		return "Unknown"
	}
}

// Path returns the REST path of the entity collection relative to /wp-json/wc/v3.
// Scoped entities (terms, variations) take the parent id.
func (e Entity) Path(parentID ...int64) string {
	switch e {
	case EntityCategory:
		return "products/categories"
	case EntityAttribute:
		return "products/attributes"
	case EntityAttributeTerm:
		return fmt.Sprintf("products/attributes/%d/terms", firstID(parentID))
	case EntityProduct:
		return "products"
	case EntityProductVariation:
		return fmt.Sprintf("products/%d/variations", firstID(parentID))
	default:
		return ""
	}
}

func firstID(ids []int64) int64 {
	if len(ids) == 0 {
		return 0
	}
	return ids[0]
}
