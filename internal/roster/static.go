package roster

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"
)

// StaticLoader reads a bundled roster document (schema plus characters) and
// resolves every localized value once, for a single locale.
type StaticLoader struct {
	Name   string
	Data   []byte
	Locale language.Tag
}

// NewStaticLoader loads from in-memory document bytes (usually embedded).
func NewStaticLoader(name string, data []byte, locale language.Tag) *StaticLoader {
	return &StaticLoader{Name: name, Data: data, Locale: locale}
}

// StaticFileLoader reads the document from path at load time.
func StaticFileLoader(path string, locale language.Tag) Loader {
	return LoaderFunc(func(ctx context.Context) (*Roster, error) {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, &LoadError{Source: path, Err: err}
		}
		return NewStaticLoader(path, data, locale).Load(ctx)
	})
}

type characterRecord struct {
	ID         string               `yaml:"id"`
	Name       Text                 `yaml:"name"`
	Image      string               `yaml:"image"`
	Attributes map[string]yaml.Node `yaml:"attributes"`
}

// Load parses the document. The static source never fails transiently; any
// error is a LoadError carrying the parse diagnostic.
func (l *StaticLoader) Load(_ context.Context) (*Roster, error) {
	var doc document
	if err := yaml.Unmarshal(l.Data, &doc); err != nil {
		return nil, &LoadError{Source: l.Name, Err: fmt.Errorf("%w: %v", ErrMalformedPayload, err)}
	}
	schema, err := doc.schema(l.Locale)
	if err != nil {
		return nil, &LoadError{Source: l.Name, Err: err}
	}

	raw := make([]Character, 0, len(doc.Characters))
	for _, rec := range doc.Characters {
		c := Character{
			ID:         rec.ID,
			Name:       rec.Name.Resolve(l.Locale),
			ImageURL:   rec.Image,
			Attributes: make(map[string]Value, len(rec.Attributes)),
		}
		for key, node := range rec.Attributes {
			kind := KindCategorical
			if a, ok := schema.Lookup(key); ok {
				kind = a.Kind
			}
			v, err := nodeValue(&node, kind, l.Locale)
			if err != nil {
				return nil, &LoadError{Source: l.Name, Err: fmt.Errorf("character %s attribute %s: %w", rec.ID, key, err)}
			}
			c.Attributes[key] = v
		}
		raw = append(raw, c)
	}
	return normalize(l.Name, schema, raw)
}

// nodeValue converts one YAML attribute node into a Value.
func nodeValue(node *yaml.Node, kind Kind, locale language.Tag) (Value, error) {
	switch node.Kind {
	case yaml.ScalarNode:
		switch node.Tag {
		case "!!null":
			return Missing(), nil
		case "!!int", "!!float":
			n, err := strconv.ParseFloat(node.Value, 64)
			if err != nil {
				return Missing(), err
			}
			return Quantity(n), nil
		}
		if kind == KindNumeric {
			return ParsePowerLevel(node.Value), nil
		}
		return categoryOrMissing(node.Value), nil
	case yaml.MappingNode:
		var t Text
		if err := node.Decode(&t); err != nil {
			return Missing(), err
		}
		return categoryOrMissing(t.Resolve(locale)), nil
	default:
		return Missing(), fmt.Errorf("line %d: unsupported value", node.Line)
	}
}
