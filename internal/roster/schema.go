package roster

import (
	"fmt"
	"strings"

	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"
)

// Kind tags an attribute as categorical or numeric; it governs comparison.
type Kind string

const (
	KindCategorical Kind = "categorical"
	KindNumeric     Kind = "numeric"
)

// Attribute describes one comparable attribute.
type Attribute struct {
	Key   string `json:"key"`
	Label string `json:"label"`
	Kind  Kind   `json:"kind"`
}

// Schema is the ordered attribute set shared by every character of a roster.
type Schema struct {
	Attributes []Attribute
}

// Lookup returns the attribute for key.
func (s Schema) Lookup(key string) (Attribute, bool) {
	for _, a := range s.Attributes {
		if a.Key == key {
			return a, true
		}
	}
	return Attribute{}, false
}

// Keys returns attribute keys in schema order.
func (s Schema) Keys() []string {
	out := make([]string, 0, len(s.Attributes))
	for _, a := range s.Attributes {
		out = append(out, a.Key)
	}
	return out
}

// document is the on-disk YAML shape shared by schema files and static rosters.
type document struct {
	Version    int               `yaml:"version"`
	Attributes []attributeDoc    `yaml:"attributes"`
	Characters []characterRecord `yaml:"characters"`
}

type attributeDoc struct {
	Key   string `yaml:"key"`
	Label Text   `yaml:"label"`
	Kind  string `yaml:"kind"`
}

// ParseSchema reads the attributes section of a roster document and resolves
// labels for the given locale.
func ParseSchema(data []byte, locale language.Tag) (Schema, error) {
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return Schema{}, fmt.Errorf("parsing schema: %w", err)
	}
	return doc.schema(locale)
}

func (d *document) schema(locale language.Tag) (Schema, error) {
	if d.Version != 1 {
		return Schema{}, fmt.Errorf("parsing schema: unsupported version: %d", d.Version)
	}
	if len(d.Attributes) == 0 {
		return Schema{}, fmt.Errorf("parsing schema: at least one attribute is required")
	}
	seen := make(map[string]struct{}, len(d.Attributes))
	out := Schema{Attributes: make([]Attribute, 0, len(d.Attributes))}
	for i, a := range d.Attributes {
		key := strings.TrimSpace(a.Key)
		if key == "" {
			return Schema{}, fmt.Errorf("parsing schema: attribute %d key is required", i)
		}
		if _, dup := seen[key]; dup {
			return Schema{}, fmt.Errorf("parsing schema: duplicate attribute: %s", key)
		}
		seen[key] = struct{}{}

		kind := Kind(strings.ToLower(strings.TrimSpace(a.Kind)))
		switch kind {
		case KindCategorical, KindNumeric:
		case "":
			kind = KindCategorical
		default:
			return Schema{}, fmt.Errorf("parsing schema: attribute %s has unknown kind %q", key, a.Kind)
		}

		label := a.Label.Resolve(locale)
		if label == "" {
			label = key
		}
		out.Attributes = append(out.Attributes, Attribute{Key: key, Label: label, Kind: kind})
	}
	return out, nil
}
