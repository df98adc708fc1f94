// internal/roster/character.go
//
// Core roster types.
// Defines:
//   - Value: one attribute value (missing, category or quantity).
//   - Character: a playable roster entry with its canonical attribute set.

package roster

import (
	"encoding/json"
	"strconv"
	"strings"

	"golang.org/x/text/cases"
)

// PlaceholderImage is served for characters without an image.
const PlaceholderImage = "/icons/placeholder.png"

type valueKind uint8

const (
	valueMissing valueKind = iota
	valueCategory
	valueQuantity
)

// Value is a single attribute value. The zero Value is missing, which is
// distinct from Category("") and Quantity(0).
type Value struct {
	kind valueKind
	text string
	num  float64
}

// Missing returns the "unknown" value.
func Missing() Value { return Value{} }

// Category returns a categorical (string) value.
func Category(s string) Value { return Value{kind: valueCategory, text: s} }

// Quantity returns a numeric value.
func Quantity(n float64) Value { return Value{kind: valueQuantity, num: n} }

func (v Value) IsMissing() bool { return v.kind == valueMissing }

// Text returns the categorical text, if v is a category.
func (v Value) Text() (string, bool) { return v.text, v.kind == valueCategory }

// Number returns the numeric value, if v is a quantity.
func (v Value) Number() (float64, bool) { return v.num, v.kind == valueQuantity }

func (v Value) String() string {
	switch v.kind {
	case valueCategory:
		return v.text
	case valueQuantity:
		return strconv.FormatFloat(v.num, 'f', -1, 64)
	default:
		return "unknown"
	}
}

// MarshalJSON encodes missing as null, categories as strings and quantities as numbers.
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case valueCategory:
		return json.Marshal(v.text)
	case valueQuantity:
		return json.Marshal(v.num)
	default:
		return []byte("null"), nil
	}
}

// Character is one roster entry.
type Character struct {
	ID         string           `json:"id"`
	Name       string           `json:"name"`
	ImageURL   string           `json:"image,omitempty"`
	Attributes map[string]Value `json:"attributes"`
}

// Attr resolves an attribute; absent keys resolve to Missing.
func (c Character) Attr(key string) Value {
	if c.Attributes == nil {
		return Missing()
	}
	return c.Attributes[key]
}

// Image returns the image reference or the placeholder.
func (c Character) Image() string {
	if strings.TrimSpace(c.ImageURL) == "" {
		return PlaceholderImage
	}
	return c.ImageURL
}

// DisplayName falls back to the id when no name is set.
func (c Character) DisplayName() string {
	if c.Name != "" {
		return c.Name
	}
	return c.ID
}

// Fold case-folds s for case-insensitive comparisons. A new Caser is built per
// call because Casers are not safe for concurrent use.
func Fold(s string) string {
	return cases.Fold().String(s)
}

// IsUnknown reports whether s is a localized "unknown" sentinel (or blank).
func IsUnknown(s string) bool {
	s = strings.TrimSpace(s)
	if s == "" {
		return true
	}
	switch Fold(s) {
	case "unknown", "desconocido", "desconocida", "unbekannt", "inconnu",
		"desconhecido", "sconosciuto", "不明", "未知":
		return true
	}
	return false
}

// categoryOrMissing maps blank and sentinel text to Missing.
func categoryOrMissing(s string) Value {
	if IsUnknown(s) {
		return Missing()
	}
	return Category(strings.TrimSpace(s))
}
