package hcl

import (
	"github.com/hashicorp/hcl/v2"
	"github.com/zclconf/go-cty/cty"
)

// fileRoot decodes every block a catalog file may hold. Unknown block types
// are rejected by the decoder.
type fileRoot struct {
	Items          []*ItemBlock          `hcl:"item,block"`
	Settings       []*SettingBlock       `hcl:"setting,block"`
	SequenceBreaks []*SequenceBreakBlock `hcl:"sequence_break,block"`
	Locations      []*LocationBlock      `hcl:"location,block"`
	Bosses         []*BossBlock          `hcl:"boss,block"`
	Statics        []*StaticBlock        `hcl:"static,block"`
	AllOf          []*CompositeBlock     `hcl:"all_of,block"`
	AnyOf          []*CompositeBlock     `hcl:"any_of,block"`
	Conditions     []*ConditionBlock     `hcl:"condition,block"`
	Graded         []*GradedBlock        `hcl:"graded,block"`
}

// ItemBlock represents an `item` block: met while the item count reaches min.
type ItemBlock struct {
	Key         string  `hcl:"key,label"`
	Item        string  `hcl:"item"`
	Min         *int    `hcl:"min,optional"`
	Level       *string `hcl:"level,optional"`
	Description string  `hcl:"description,optional"`
	MetAt       *string `hcl:"met_at,optional"`
}

// SettingBlock represents a `setting` block: met while the setting holds
// the `equals` value.
type SettingBlock struct {
	Key         string     `hcl:"key,label"`
	Setting     string     `hcl:"setting"`
	Equals      *cty.Value `hcl:"equals,optional"`
	Level       *string    `hcl:"level,optional"`
	Description string     `hcl:"description,optional"`
	MetAt       *string    `hcl:"met_at,optional"`
}

// SequenceBreakBlock represents a `sequence_break` block.
type SequenceBreakBlock struct {
	Key         string  `hcl:"key,label"`
	Toggle      string  `hcl:"toggle"`
	Level       *string `hcl:"level,optional"`
	Description string  `hcl:"description,optional"`
	MetAt       *string `hcl:"met_at,optional"`
}

// LocationBlock represents a `location` block.
type LocationBlock struct {
	Key         string  `hcl:"key,label"`
	Location    string  `hcl:"location"`
	Description string  `hcl:"description,optional"`
	MetAt       *string `hcl:"met_at,optional"`
}

// BossBlock represents a `boss` block. Defeat is an object expression
// mapping boss names to requirement references.
type BossBlock struct {
	Key         string         `hcl:"key,label"`
	Slot        string         `hcl:"slot"`
	Defeat      hcl.Expression `hcl:"defeat"`
	Description string         `hcl:"description,optional"`
	MetAt       *string        `hcl:"met_at,optional"`
}

// StaticBlock represents a `static` block.
type StaticBlock struct {
	Key         string  `hcl:"key,label"`
	Level       *string `hcl:"level,optional"`
	Description string  `hcl:"description,optional"`
	MetAt       *string `hcl:"met_at,optional"`
}

// CompositeBlock represents both `all_of` and `any_of` blocks.
type CompositeBlock struct {
	Key         string         `hcl:"key,label"`
	Requires    hcl.Expression `hcl:"requires"`
	Description string         `hcl:"description,optional"`
	MetAt       *string        `hcl:"met_at,optional"`
}

// ConditionBlock represents a `condition` block.
type ConditionBlock struct {
	Key         string         `hcl:"key,label"`
	When        hcl.Expression `hcl:"when"`
	Level       *string        `hcl:"level,optional"`
	Description string         `hcl:"description,optional"`
	MetAt       *string        `hcl:"met_at,optional"`
}

// GradedBlock represents a `graded` block with its ordered tiers.
type GradedBlock struct {
	Key         string       `hcl:"key,label"`
	Tiers       []*TierBlock `hcl:"tier,block"`
	Description string       `hcl:"description,optional"`
	MetAt       *string      `hcl:"met_at,optional"`
}

// TierBlock is one `tier "<level>"` block inside a graded block.
type TierBlock struct {
	Level string         `hcl:"level,label"`
	When  hcl.Expression `hcl:"when"`
}
