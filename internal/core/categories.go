package core

import (
	"fmt"
	"strings"
)

// Category is an insurance product line.
type Category string

const (
	CategoryAuto             Category = "auto"
	CategoryHealth           Category = "health"
	CategoryTravel           Category = "travel"
	CategoryHome             Category = "home"
	CategoryGadget           Category = "gadget"
	CategoryPersonalAccident Category = "personal_accident"
	CategoryLife             Category = "life"
	CategoryCargo            Category = "cargo"
	CategoryOther            Category = "other"
)

var knownCategories = map[Category]bool{
	CategoryAuto:             true,
	CategoryHealth:           true,
	CategoryTravel:           true,
	CategoryHome:             true,
	CategoryGadget:           true,
	CategoryPersonalAccident: true,
	CategoryLife:             true,
	CategoryCargo:            true,
	CategoryOther:            true,
}

// ParseCategory normalizes raw caller input ("Auto", "personal accident")
// into a known Category.
func ParseCategory(raw string) (Category, error) {
	s := strings.ToLower(strings.TrimSpace(raw))
	s = strings.ReplaceAll(s, " ", "_")
	s = strings.ReplaceAll(s, "-", "_")
	c := Category(s)
	if !knownCategories[c] {
		return "", fmt.Errorf("%w: unknown category %q", ErrValidation, raw)
	}
	return c, nil
}

// ProductClass is an external insurer's own product taxonomy. Only
// categories that map onto one of these classes ever trigger an external
// provider call.
type ProductClass string

const (
	ClassMotor            ProductClass = "Motor"
	ClassTenantProtect    ProductClass = "TenantProtect"
	ClassHomeProtect      ProductClass = "HomeProtect"
	ClassBusinessProtect  ProductClass = "BusinessProtect"
	ClassPersonalAccident ProductClass = "Personal Accident"
	ClassMarineCargo      ProductClass = "Marine Cargo"
	ClassDevice           ProductClass = "Device"
	ClassTravel           ProductClass = "Travel"
)

var externalClasses = map[Category]ProductClass{
	CategoryAuto:             ClassMotor,
	CategoryHome:             ClassHomeProtect,
	CategoryGadget:           ClassDevice,
	CategoryTravel:           ClassTravel,
	CategoryPersonalAccident: ClassPersonalAccident,
	CategoryCargo:            ClassMarineCargo,
}

// ExternalClass reports the external product class for a category, if the
// category is externally quotable at all. Health and Life, for example, are
// internal-only lines.
func (c Category) ExternalClass() (ProductClass, bool) {
	class, ok := externalClasses[c]
	return class, ok
}
