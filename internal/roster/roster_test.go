package roster

import (
	"context"
	"errors"
	"testing"

	"golang.org/x/text/language"

	"github.com/robalobadob/capsle/assets"
)

func loadBundled(t *testing.T, locale language.Tag) *Roster {
	t.Helper()
	data, err := assets.RosterDocument()
	if err != nil {
		t.Fatalf("reading bundled roster: %v", err)
	}
	r, err := NewStaticLoader("roster.yaml", data, locale).Load(context.Background())
	if err != nil {
		t.Fatalf("loading bundled roster: %v", err)
	}
	return r
}

func TestNew(t *testing.T) {
	t.Run("empty roster", func(t *testing.T) {
		if _, err := New(Schema{}, nil); !errors.Is(err, ErrEmptyRoster) {
			t.Fatalf("expected ErrEmptyRoster, got %v", err)
		}
	})

	t.Run("empty id", func(t *testing.T) {
		if _, err := New(Schema{}, []Character{{ID: ""}}); err == nil {
			t.Fatalf("expected error")
		}
	})

	t.Run("duplicate id", func(t *testing.T) {
		if _, err := New(Schema{}, []Character{{ID: "a"}, {ID: "a"}}); err == nil {
			t.Fatalf("expected error")
		}
	})

	t.Run("order and version", func(t *testing.T) {
		a, err := New(Schema{}, []Character{{ID: "a"}, {ID: "b"}})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		b, _ := New(Schema{}, []Character{{ID: "b"}, {ID: "a"}})
		if a.At(0).ID != "a" || a.At(1).ID != "b" {
			t.Fatalf("order not preserved: %v", a.IDs())
		}
		if a.Version() == b.Version() {
			t.Fatalf("reordered rosters should fingerprint differently")
		}
		if _, ok := a.ByID("b"); !ok {
			t.Fatalf("ByID(b) not found")
		}
	})
}

func TestValue(t *testing.T) {
	if !Missing().IsMissing() {
		t.Fatal("Missing should be missing")
	}
	if Category("").IsMissing() || Quantity(0).IsMissing() {
		t.Fatal("empty category and zero quantity are not missing")
	}
	var c Character
	if !c.Attr("race").IsMissing() {
		t.Fatal("absent attribute should resolve to Missing")
	}
	if c.Image() != PlaceholderImage {
		t.Fatalf("Image() = %q, want placeholder", c.Image())
	}

	b, _ := Quantity(9000).MarshalJSON()
	if string(b) != "9000" {
		t.Fatalf("quantity json = %s", b)
	}
	b, _ = Missing().MarshalJSON()
	if string(b) != "null" {
		t.Fatalf("missing json = %s", b)
	}
}

func TestIsUnknown(t *testing.T) {
	for _, s := range []string{"", "  ", "Unknown", "DESCONOCIDO", "Desconocida", "未知"} {
		if !IsUnknown(s) {
			t.Errorf("IsUnknown(%q) = false", s)
		}
	}
	if IsUnknown("Goku") {
		t.Error("IsUnknown(Goku) = true")
	}
}
