package snapshot

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/specialistvlad/reqgraph/internal/access"
	"github.com/specialistvlad/reqgraph/internal/condition"
	"github.com/specialistvlad/reqgraph/internal/ctyconv"
	"github.com/specialistvlad/reqgraph/internal/inmemorysignal"
	"github.com/zclconf/go-cty/cty"
	"gopkg.in/yaml.v3"
)

// State is the decoded form of a state file.
type State struct {
	Items          map[string]int    `yaml:"items,omitempty"`
	Settings       map[string]any    `yaml:"settings,omitempty"`
	SequenceBreaks map[string]bool   `yaml:"sequence_breaks,omitempty"`
	Locations      map[string]string `yaml:"locations,omitempty"`
	Bosses         map[string]string `yaml:"bosses,omitempty"`
}

// Parse decodes a state document. Unknown top-level keys are rejected.
func Parse(data []byte) (*State, error) {
	st := &State{}
	if len(bytes.TrimSpace(data)) == 0 {
		return st, nil
	}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(st); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("snapshot: decode state: %w", err)
	}
	return st, nil
}

// Load reads and decodes a state file.
func Load(path string) (*State, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("snapshot: read %s: %w", path, err)
	}
	st, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("snapshot: %s: %w", path, err)
	}
	return st, nil
}

// Declare registers every signal of the state in store with its value.
// Signals already declared keep their current value.
func (st *State) Declare(store *inmemorysignal.Store) error {
	for _, name := range sortedKeys(st.Items) {
		count := st.Items[name]
		if count < 0 {
			return fmt.Errorf("item '%s': count must not be negative, got %d", name, count)
		}
		store.DeclareItem(name, count)
	}
	for _, name := range sortedKeys(st.Settings) {
		v, err := ctyconv.ToCtyValue(st.Settings[name])
		if err != nil {
			return fmt.Errorf("setting '%s': %w", name, err)
		}
		if v.IsNull() {
			return fmt.Errorf("setting '%s': value must not be null", name)
		}
		store.DeclareSetting(name, v)
	}
	for _, name := range sortedKeys(st.SequenceBreaks) {
		store.DeclareSequenceBreak(name, st.SequenceBreaks[name])
	}
	for _, name := range sortedKeys(st.Locations) {
		l, err := access.ParseLevel(st.Locations[name])
		if err != nil {
			return fmt.Errorf("location '%s': %w", name, err)
		}
		store.DeclareLocation(name, l)
	}
	for _, name := range sortedKeys(st.Bosses) {
		store.DeclareBossSlot(name, st.Bosses[name])
	}
	return nil
}

// DeclareDefaults declares every reference not yet known to store with a
// zero value: no items, unset toggles, unreachable locations and empty boss
// slots. A setting gets the zero value of its entry in settingTypes (false,
// 0 or ""), falling back to false.
func DeclareDefaults(store *inmemorysignal.Store, refs []condition.Reference, settingTypes map[string]cty.Type) {
	for _, r := range refs {
		switch r.Root {
		case condition.RootItem:
			store.DeclareItem(r.Name, 0)
		case condition.RootSetting:
			store.DeclareSetting(r.Name, zeroSetting(settingTypes[r.Name]))
		case condition.RootSequenceBreak:
			store.DeclareSequenceBreak(r.Name, false)
		case condition.RootLocation:
			store.DeclareLocation(r.Name, access.None)
		case condition.RootBoss:
			store.DeclareBossSlot(r.Name, "")
		}
	}
}

func zeroSetting(ty cty.Type) cty.Value {
	switch ty {
	case cty.Number:
		return cty.Zero
	case cty.String:
		return cty.StringVal("")
	default:
		return cty.False
	}
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
