package common

import "strings"

// Entity types form a fixed allow-list. Extracted types outside this set are
// dropped during validation and never interpolated into a traversal query.
const (
	TypePerson       = "PERSON"
	TypeCompany      = "COMPANY"
	TypeProduct      = "PRODUCT"
	TypeField        = "FIELD"
	TypeOrganization = "ORGANIZATION"
	TypeLocation     = "LOCATION"
	TypeConcept      = "CONCEPT"
	TypeEvent        = "EVENT"
)

var entityTypes = map[string]struct{}{
	TypePerson:       {},
	TypeCompany:      {},
	TypeProduct:      {},
	TypeField:        {},
	TypeOrganization: {},
	TypeLocation:     {},
	TypeConcept:      {},
	TypeEvent:        {},
}

// EntityTypes returns the fixed set of recognized entity types.
func EntityTypes() []string {
	return []string{
		TypePerson,
		TypeCompany,
		TypeProduct,
		TypeField,
		TypeOrganization,
		TypeLocation,
		TypeConcept,
		TypeEvent,
	}
}

// ValidEntityType reports whether t is one of the recognized entity types.
// Matching is case-insensitive; callers should store the canonical upper-case
// form returned by CanonicalEntityType.
func ValidEntityType(t string) bool {
	_, ok := entityTypes[strings.ToUpper(strings.TrimSpace(t))]
	return ok
}

// CanonicalEntityType maps t to its canonical upper-case form. Returns the
// empty string when t is not a recognized type.
func CanonicalEntityType(t string) string {
	up := strings.ToUpper(strings.TrimSpace(t))
	if _, ok := entityTypes[up]; !ok {
		return ""
	}
	return up
}

// NormalizeName normalizes an entity name for identity comparison: trimmed,
// inner whitespace collapsed, lower-cased. Display names keep their original
// casing; only identity keys use the normalized form.
func NormalizeName(name string) string {
	return strings.ToLower(strings.Join(strings.Fields(name), " "))
}
