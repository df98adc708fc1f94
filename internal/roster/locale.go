package roster

import (
	"fmt"
	"sort"
	"strings"

	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"
)

// DefaultLocale is used when no locale is configured and as the fallback for
// texts that lack the requested translation.
var DefaultLocale = language.English

// ParseLocale parses a BCP 47 tag such as "es" or "pt-BR".
func ParseLocale(s string) (language.Tag, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return DefaultLocale, nil
	}
	tag, err := language.Parse(s)
	if err != nil {
		return language.Und, fmt.Errorf("parsing locale %q: %w", s, err)
	}
	return tag, nil
}

// Text is a possibly localized string. In YAML it is either a plain scalar
// (same for every locale) or a mapping from language tag to text.
type Text struct {
	plain string
	byTag map[string]string
}

// UnmarshalYAML accepts a scalar or a tag → text mapping.
func (t *Text) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		t.plain = node.Value
		return nil
	case yaml.MappingNode:
		m := make(map[string]string)
		if err := node.Decode(&m); err != nil {
			return err
		}
		t.byTag = m
		return nil
	default:
		return fmt.Errorf("line %d: expected text or localized mapping", node.Line)
	}
}

// Localized reports whether t carries per-locale variants.
func (t Text) Localized() bool { return len(t.byTag) > 0 }

// Resolve picks the best translation for locale, falling back to English
// and then to the first tag in sorted order.
func (t Text) Resolve(locale language.Tag) string {
	if !t.Localized() {
		return t.plain
	}
	keys := make([]string, 0, len(t.byTag))
	for k := range t.byTag {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	tags := make([]language.Tag, 0, len(keys))
	valid := make([]string, 0, len(keys))
	for _, k := range keys {
		tag, err := language.Parse(k)
		if err != nil {
			continue
		}
		tags = append(tags, tag)
		valid = append(valid, k)
	}
	if len(tags) == 0 {
		return t.byTag[keys[0]]
	}

	m := language.NewMatcher(tags)
	if _, idx, conf := m.Match(locale); conf != language.No {
		return t.byTag[valid[idx]]
	}
	if _, idx, conf := m.Match(DefaultLocale); conf != language.No {
		return t.byTag[valid[idx]]
	}
	return t.byTag[valid[0]]
}
