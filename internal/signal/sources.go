package signal

import (
	"github.com/specialistvlad/reqgraph/internal/access"
	"github.com/zclconf/go-cty/cty"
)

// Item is a counted inventory entry.
type Item interface {
	Notifier
	Name() string
	Count() int
}

// Setting is a named configuration value: a bool toggle or an enum string.
type Setting interface {
	Notifier
	Name() string
	Value() cty.Value
}

// SequenceBreak is a named trick the player has opted into.
type SequenceBreak interface {
	Notifier
	Name() string
	Enabled() bool
}

// Location exposes a precomputed accessibility for an overworld location.
type Location interface {
	Notifier
	Name() string
	Accessibility() access.Level
}

// BossSlot exposes the boss currently placed in a dungeon slot. An empty
// string means nothing is assigned yet.
type BossSlot interface {
	Notifier
	Name() string
	Boss() string
}

// ItemSource looks up items by name, returning nil for unknown names.
type ItemSource interface {
	Item(name string) Item
}

// SettingSource looks up settings by name, returning nil for unknown names.
type SettingSource interface {
	Setting(name string) Setting
}

// SequenceBreakSource looks up sequence-break toggles by name.
type SequenceBreakSource interface {
	SequenceBreak(name string) SequenceBreak
}

// LocationSource looks up reachability nodes by name.
type LocationSource interface {
	Location(name string) Location
}

// BossSource looks up boss slots by name.
type BossSource interface {
	BossSlot(name string) BossSlot
}

// Sources bundles every collaborator the requirement graph may consume. Any
// field may be nil when the catalog does not need that kind of signal.
type Sources struct {
	Items          ItemSource
	Settings       SettingSource
	SequenceBreaks SequenceBreakSource
	Locations      LocationSource
	Bosses         BossSource
}
