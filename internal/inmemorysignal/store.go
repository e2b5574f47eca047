// Package inmemorysignal provides a simple in-memory implementation of every
// source contract in the signal package. Signals must be declared before they
// can be looked up; setters notify subscribers synchronously and only when
// the stored value actually changes.
package inmemorysignal

import (
	"fmt"
	"sort"

	"github.com/specialistvlad/reqgraph/internal/access"
	"github.com/specialistvlad/reqgraph/internal/signal"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"
)

// Store holds every declared signal. It is not safe for concurrent use.
type Store struct {
	items          map[string]*item
	settings       map[string]*setting
	sequenceBreaks map[string]*sequenceBreak
	locations      map[string]*location
	bossSlots      map[string]*bossSlot
}

// New creates an empty store.
func New() *Store {
	return &Store{
		items:          make(map[string]*item),
		settings:       make(map[string]*setting),
		sequenceBreaks: make(map[string]*sequenceBreak),
		locations:      make(map[string]*location),
		bossSlots:      make(map[string]*bossSlot),
	}
}

// Sources returns a bundle exposing the store as every kind of source.
func (s *Store) Sources() signal.Sources {
	return signal.Sources{
		Items:          s,
		Settings:       s,
		SequenceBreaks: s,
		Locations:      s,
		Bosses:         s,
	}
}

// --- Items ---

type item struct {
	signal.Broadcaster
	name  string
	count int
}

func (i *item) Name() string { return i.name }
func (i *item) Count() int   { return i.count }

// DeclareItem registers an item with an initial count. Declaring an existing
// item is a no-op.
func (s *Store) DeclareItem(name string, count int) {
	if _, ok := s.items[name]; ok {
		return
	}
	s.items[name] = &item{name: name, count: count}
}

// Item implements signal.ItemSource.
func (s *Store) Item(name string) signal.Item {
	if i, ok := s.items[name]; ok {
		return i
	}
	return nil
}

// SetCount updates an item's count.
func (s *Store) SetCount(name string, count int) error {
	i, ok := s.items[name]
	if !ok {
		return fmt.Errorf("item '%s' is not declared", name)
	}
	if count < 0 {
		return fmt.Errorf("item '%s': count must not be negative, got %d", name, count)
	}
	if i.count == count {
		return nil
	}
	i.count = count
	i.Notify()
	return nil
}

// --- Settings ---

type setting struct {
	signal.Broadcaster
	name  string
	value cty.Value
}

func (st *setting) Name() string     { return st.name }
func (st *setting) Value() cty.Value { return st.value }

// DeclareSetting registers a setting with an initial value.
func (s *Store) DeclareSetting(name string, value cty.Value) {
	if _, ok := s.settings[name]; ok {
		return
	}
	s.settings[name] = &setting{name: name, value: value}
}

// Setting implements signal.SettingSource.
func (s *Store) Setting(name string) signal.Setting {
	if st, ok := s.settings[name]; ok {
		return st
	}
	return nil
}

// SetSetting updates a setting's value. The value is converted to the type
// the setting was declared with; a value that does not convert is rejected
// before any subscriber runs.
func (s *Store) SetSetting(name string, value cty.Value) error {
	st, ok := s.settings[name]
	if !ok {
		return fmt.Errorf("setting '%s' is not declared", name)
	}
	if value.IsNull() {
		return fmt.Errorf("setting '%s': value must not be null", name)
	}
	if want := st.value.Type(); !value.Type().Equals(want) {
		converted, err := convert.Convert(value, want)
		if err != nil {
			return fmt.Errorf("setting '%s': cannot use %s value as %s: %w",
				name, value.Type().FriendlyName(), want.FriendlyName(), err)
		}
		value = converted
	}
	if st.value.RawEquals(value) {
		return nil
	}
	st.value = value
	st.Notify()
	return nil
}

// --- Sequence breaks ---

type sequenceBreak struct {
	signal.Broadcaster
	name    string
	enabled bool
}

func (sb *sequenceBreak) Name() string  { return sb.name }
func (sb *sequenceBreak) Enabled() bool { return sb.enabled }

// DeclareSequenceBreak registers a sequence-break toggle.
func (s *Store) DeclareSequenceBreak(name string, enabled bool) {
	if _, ok := s.sequenceBreaks[name]; ok {
		return
	}
	s.sequenceBreaks[name] = &sequenceBreak{name: name, enabled: enabled}
}

// SequenceBreak implements signal.SequenceBreakSource.
func (s *Store) SequenceBreak(name string) signal.SequenceBreak {
	if sb, ok := s.sequenceBreaks[name]; ok {
		return sb
	}
	return nil
}

// SetSequenceBreak enables or disables a toggle.
func (s *Store) SetSequenceBreak(name string, enabled bool) error {
	sb, ok := s.sequenceBreaks[name]
	if !ok {
		return fmt.Errorf("sequence break '%s' is not declared", name)
	}
	if sb.enabled == enabled {
		return nil
	}
	sb.enabled = enabled
	sb.Notify()
	return nil
}

// --- Locations ---

type location struct {
	signal.Broadcaster
	name  string
	level access.Level
}

func (l *location) Name() string                { return l.name }
func (l *location) Accessibility() access.Level { return l.level }

// DeclareLocation registers a reachability node.
func (s *Store) DeclareLocation(name string, level access.Level) {
	if _, ok := s.locations[name]; ok {
		return
	}
	s.locations[name] = &location{name: name, level: level}
}

// Location implements signal.LocationSource.
func (s *Store) Location(name string) signal.Location {
	if l, ok := s.locations[name]; ok {
		return l
	}
	return nil
}

// SetLocation updates a location's accessibility.
func (s *Store) SetLocation(name string, level access.Level) error {
	l, ok := s.locations[name]
	if !ok {
		return fmt.Errorf("location '%s' is not declared", name)
	}
	if !level.Valid() {
		return fmt.Errorf("location '%s': invalid level %s", name, level)
	}
	if l.level == level {
		return nil
	}
	l.level = level
	l.Notify()
	return nil
}

// --- Boss slots ---

type bossSlot struct {
	signal.Broadcaster
	name string
	boss string
}

func (b *bossSlot) Name() string { return b.name }
func (b *bossSlot) Boss() string { return b.boss }

// DeclareBossSlot registers a boss slot with its initial assignment.
func (s *Store) DeclareBossSlot(name, boss string) {
	if _, ok := s.bossSlots[name]; ok {
		return
	}
	s.bossSlots[name] = &bossSlot{name: name, boss: boss}
}

// BossSlot implements signal.BossSource.
func (s *Store) BossSlot(name string) signal.BossSlot {
	if b, ok := s.bossSlots[name]; ok {
		return b
	}
	return nil
}

// SetBoss assigns a boss to a slot.
func (s *Store) SetBoss(slot, boss string) error {
	b, ok := s.bossSlots[slot]
	if !ok {
		return fmt.Errorf("boss slot '%s' is not declared", slot)
	}
	if b.boss == boss {
		return nil
	}
	b.boss = boss
	b.Notify()
	return nil
}

// Names returns the declared names of every signal kind, sorted, keyed by
// kind ("item", "setting", "sequence_break", "location", "boss").
func (s *Store) Names() map[string][]string {
	return map[string][]string{
		"item":           sortedKeys(s.items),
		"setting":        sortedKeys(s.settings),
		"sequence_break": sortedKeys(s.sequenceBreaks),
		"location":       sortedKeys(s.locations),
		"boss":           sortedKeys(s.bossSlots),
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
