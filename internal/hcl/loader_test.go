package hcl

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/specialistvlad/reqgraph/internal/access"
	"github.com/specialistvlad/reqgraph/internal/catalog"
	"github.com/specialistvlad/reqgraph/internal/condition"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zclconf/go-cty/cty"
)

const logicHCL = `
item "sword1" {
  item        = "sword"
  description = "Any sword"
}

item "two_swords" {
  item   = "sword"
  min    = 2
  met_at = "normal"
}

setting "open_mode" {
  setting = "mode"
  equals  = "open"
}

sequence_break "bomb_jump" {
  toggle = "bomb_jump"
}

location "hera" {
  location = "tower_of_hera"
}

static "always" {}

static "never" {
  level = "none"
}

any_of "can_cross" {
  requires = [req.hookshot, req.bomb_jump]
}

all_of "sword_and_hammer" {
  requires = [req.sword1, req.hammer]
}

boss "eastern_boss" {
  slot   = "eastern_palace"
  defeat = {
    armos   = req.sword1
    moldorm = req.sword_and_hammer
  }
}

condition "many_crystals" {
  when  = item.crystal >= 7 && setting.mode == "open"
  level = "partial"
}

graded "ganon" {
  tier "normal" {
    when = item.silver_arrows > 0
  }
  tier "sequence_break" {
    when = sequence_break.fake_flippers
  }
}
`

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
	require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	return p
}

func TestLoad_AllKinds(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	dir := t.TempDir()
	writeFile(t, dir, "logic.hcl", logicHCL)
	writeFile(t, dir, "nested/more.hcl", `item "hookshot" { item = "hookshot" }
item "hammer" { item = "hammer" }`)
	writeFile(t, dir, "ignored.txt", `not hcl at all {`)

	// --- Act ---
	cat, err := NewLoader().Load(context.Background(), dir)

	// --- Assert ---
	require.NoError(t, err)
	assert.Equal(t, 14, cat.Len())
	require.NoError(t, cat.Validate())

	sword, ok := cat.Get("sword1")
	require.True(t, ok)
	assert.Equal(t, catalog.KindItem, sword.Kind)
	assert.Equal(t, "sword", sword.Signal)
	assert.Equal(t, 1, sword.Min)
	assert.Equal(t, access.Normal, sword.Level)
	assert.Equal(t, "Any sword", sword.Description)
	assert.Equal(t, access.None, sword.MetAt)
	assert.Contains(t, sword.Origin, "logic.hcl")

	two, _ := cat.Get("two_swords")
	assert.Equal(t, 2, two.Min)
	assert.Equal(t, access.Normal, two.MetAt)

	open, _ := cat.Get("open_mode")
	assert.True(t, open.SettingValue().RawEquals(cty.StringVal("open")))

	bomb, _ := cat.Get("bomb_jump")
	assert.Equal(t, access.SequenceBreak, bomb.Level)

	hera, _ := cat.Get("hera")
	assert.Equal(t, catalog.KindLocation, hera.Kind)
	assert.Equal(t, "tower_of_hera", hera.Signal)

	always, _ := cat.Get("always")
	assert.Equal(t, access.Normal, always.Level)
	never, _ := cat.Get("never")
	assert.Equal(t, access.None, never.Level)

	cross, _ := cat.Get("can_cross")
	assert.Equal(t, catalog.KindAnyOf, cross.Kind)
	assert.Equal(t, []string{"hookshot", "bomb_jump"}, cross.Requires)

	boss, _ := cat.Get("eastern_boss")
	assert.Equal(t, "eastern_palace", boss.Signal)
	assert.Equal(t, map[string]string{"armos": "sword1", "moldorm": "sword_and_hammer"}, boss.Defeat)

	crystals, _ := cat.Get("many_crystals")
	assert.Equal(t, access.Partial, crystals.Level)
	require.NotNil(t, crystals.When)
	assert.Equal(t, `item.crystal >= 7 && setting.mode == "open"`, crystals.When.Source())
	assert.Equal(t, []condition.Reference{
		{Root: condition.RootItem, Name: "crystal"},
		{Root: condition.RootSetting, Name: "mode"},
	}, crystals.When.References())

	ganon, _ := cat.Get("ganon")
	require.Len(t, ganon.Tiers, 2)
	assert.Equal(t, access.Normal, ganon.Tiers[0].Level)
	assert.Equal(t, access.SequenceBreak, ganon.Tiers[1].Level)
	assert.Equal(t, "sequence_break.fake_flippers", ganon.Tiers[1].When.Source())
}

func TestLoad_Errors(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name    string
		src     string
		wantErr string
	}{
		{name: "syntax error", src: `item "a" {`, wantErr: "failed to parse HCL file"},
		{name: "unknown block", src: `xor "a" {}`, wantErr: "failed to decode HCL file"},
		{name: "missing attribute", src: `item "a" {}`, wantErr: "failed to decode HCL file"},
		{name: "bad level", src: `static "a" { level = "mostly" }`, wantErr: `unknown accessibility level "mostly"`},
		{name: "bad reference", src: `all_of "a" { requires = [sword] }`, wantErr: "req.<key>"},
		{name: "requires not a list", src: `all_of "a" { requires = req.b }`, wantErr: "failed to translate HCL file"},
		{name: "bad condition root", src: `condition "a" { when = weapon.sword > 0 }`, wantErr: "unknown signal root 'weapon'"},
		{name: "duplicate key", src: "item \"a\" { item = \"x\" }\nstatic \"a\" {}", wantErr: "duplicate requirement key"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewLoader().LoadBytes([]byte(tc.src), "test.hcl")
			assert.ErrorContains(t, err, tc.wantErr)
		})
	}
}

func TestLoad_MissingPath(t *testing.T) {
	t.Parallel()
	_, err := NewLoader().Load(context.Background(), filepath.Join(t.TempDir(), "missing"))
	assert.ErrorContains(t, err, "error accessing path")
}

func TestLoad_DuplicateAcrossFiles(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	writeFile(t, dir, "a.hcl", `static "x" {}`)
	writeFile(t, dir, "b.hcl", `static "x" {}`)

	_, err := NewLoader().Load(context.Background(), dir)
	assert.ErrorIs(t, err, catalog.ErrDuplicateKey)
}
