package negotiation

import (
	_ "embed"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/yungbote/bidgate-backend/internal/domain/gate"
)

//go:embed default_items.yaml
var defaultTemplateYAML []byte

type templateFile struct {
	Items []Item `yaml:"items"`
}

// ParseTemplate decodes a YAML item template. Template items carry no id and
// start open; the caller assigns ids when seeding a snapshot.
func ParseTemplate(raw []byte) ([]Item, error) {
	var f templateFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("decode negotiation template: %w", err)
	}
	for i, it := range f.Items {
		it = trimItem(it)
		it.ID = ""
		it.Status = ItemOpen
		if err := validate("negotiation.template", it); err != nil {
			return nil, fmt.Errorf("template item %d: %w", i, err)
		}
		f.Items[i] = it
	}
	return f.Items, nil
}

func LoadTemplateFile(path string) ([]Item, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read negotiation template %s: %w", path, err)
	}
	return ParseTemplate(raw)
}

// DefaultItems returns the built-in eight item template.
func DefaultItems() []Item {
	items, err := ParseTemplate(defaultTemplateYAML)
	if err != nil {
		panic(fmt.Sprintf("embedded negotiation template is invalid: %v", err))
	}
	return items
}

// Seed adds every template item to s, taking ids from newID.
func Seed(s Snapshot, actor gate.Actor, items []Item, newID func() string, at time.Time) (Snapshot, error) {
	next := s
	for _, it := range items {
		it.ID = newID()
		var err error
		if next, err = AddItem(next, actor, it, at); err != nil {
			return s, err
		}
	}
	return next, nil
}
