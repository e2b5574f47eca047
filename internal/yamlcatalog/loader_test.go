package yamlcatalog

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/specialistvlad/reqgraph/internal/access"
	"github.com/specialistvlad/reqgraph/internal/catalog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zclconf/go-cty/cty"
)

const logicYAML = `
requirements:
  - key: sword1
    kind: item
    item: sword
  - key: two_swords
    kind: item
    item: sword
    min: 2
    met_at: partial
  - key: swordless
    kind: setting
    setting: swordless
  - key: crystals_needed
    kind: setting
    setting: crystals
    equals: 7
  - key: bomb_jump
    kind: sequence_break
    toggle: bomb_jump
  - key: hera
    kind: location
    location: tower_of_hera
  - key: eastern_boss
    kind: boss
    slot: eastern_palace
    defeat:
      armos: sword1
  - key: never
    kind: static
    level: none
  - key: can_fight
    kind: any_of
    requires: [sword1, bomb_jump]
    description: Either works
  - key: many_crystals
    kind: condition
    when: item.crystal >= 7
    level: sequence-break
  - key: ganon
    kind: graded
    tiers:
      - level: normal
        when: item.silver_arrows > 0
      - level: partial
        when: "true"
`

func TestParse_AllKinds(t *testing.T) {
	t.Parallel()

	// --- Act ---
	cat, err := Parse([]byte(logicYAML), "logic.yaml")

	// --- Assert ---
	require.NoError(t, err)
	require.NoError(t, cat.Validate())
	assert.Equal(t, 11, cat.Len())

	two, _ := cat.Get("two_swords")
	assert.Equal(t, 2, two.Min)
	assert.Equal(t, access.Partial, two.MetAt)
	assert.Equal(t, "logic.yaml#1", two.Origin)

	swordless, _ := cat.Get("swordless")
	assert.True(t, swordless.SettingValue().RawEquals(cty.True))
	crystals, _ := cat.Get("crystals_needed")
	assert.True(t, crystals.SettingValue().RawEquals(cty.NumberIntVal(7)))

	bomb, _ := cat.Get("bomb_jump")
	assert.Equal(t, access.SequenceBreak, bomb.Level)

	boss, _ := cat.Get("eastern_boss")
	assert.Equal(t, map[string]string{"armos": "sword1"}, boss.Defeat)

	never, _ := cat.Get("never")
	assert.Equal(t, access.None, never.Level)

	fight, _ := cat.Get("can_fight")
	assert.Equal(t, catalog.KindAnyOf, fight.Kind)
	assert.Equal(t, []string{"sword1", "bomb_jump"}, fight.Requires)
	assert.Equal(t, "Either works", fight.Description)

	many, _ := cat.Get("many_crystals")
	assert.Equal(t, access.SequenceBreak, many.Level)
	assert.Equal(t, "item.crystal >= 7", many.When.Source())

	ganon, _ := cat.Get("ganon")
	require.Len(t, ganon.Tiers, 2)
	assert.Equal(t, access.Partial, ganon.Tiers[1].Level)
}

func TestParse_Errors(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name    string
		src     string
		wantErr string
	}{
		{name: "unknown field", src: "requirements:\n  - key: a\n    kind: static\n    colour: red\n", wantErr: "field colour not found"},
		{name: "unknown kind", src: "requirements:\n  - key: a\n    kind: xor\n", wantErr: `unknown requirement kind "xor"`},
		{name: "bad level", src: "requirements:\n  - key: a\n    kind: static\n    level: mostly\n", wantErr: "level: unknown accessibility level"},
		{name: "bad condition", src: "requirements:\n  - key: a\n    kind: condition\n    when: \"item.x >\"\n", wantErr: "failed to parse condition"},
		{name: "bad tier level", src: "requirements:\n  - key: a\n    kind: graded\n    tiers:\n      - level: loud\n        when: \"true\"\n", wantErr: "tier 0"},
		{name: "duplicate", src: "requirements:\n  - key: a\n    kind: static\n  - key: a\n    kind: static\n", wantErr: "duplicate requirement key"},
		{name: "not yaml", src: "requirements: [", wantErr: "yamlcatalog: decode"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Parse([]byte(tc.src), "test.yaml")
			assert.ErrorContains(t, err, tc.wantErr)
		})
	}
}

func TestParse_Empty(t *testing.T) {
	t.Parallel()
	cat, err := Parse([]byte("  \n"), "empty.yaml")
	require.NoError(t, err)
	assert.Equal(t, 0, cat.Len())
}

func TestLoad_Directory(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.yaml"), []byte("requirements:\n  - key: a\n    kind: static\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.yml"), []byte("requirements:\n  - key: b\n    kind: all_of\n    requires: [a]\n"), 0o644))

	cat, err := NewLoader().Load(context.Background(), dir)

	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, cat.Keys())
	assert.NoError(t, cat.Validate())
}
