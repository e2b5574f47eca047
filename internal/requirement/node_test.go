package requirement

import (
	"testing"

	"github.com/specialistvlad/reqgraph/internal/access"
	"github.com/specialistvlad/reqgraph/internal/inmemorysignal"
	"github.com/specialistvlad/reqgraph/internal/signal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// itemLeaf builds the canonical "count >= min" threshold leaf used across tests.
func itemLeaf(t *testing.T, s *inmemorysignal.Store, key, name string, min int, opts ...Option) *Node {
	t.Helper()
	item := s.Item(name)
	require.NotNil(t, item, "item %s must be declared", name)
	n, err := NewThreshold(key, access.Normal, func() bool { return item.Count() >= min }, []signal.Notifier{item}, opts...)
	require.NoError(t, err)
	return n
}

func toggleLeaf(t *testing.T, s *inmemorysignal.Store, key, name string) *Node {
	t.Helper()
	sb := s.SequenceBreak(name)
	require.NotNil(t, sb)
	n, err := NewThreshold(key, access.SequenceBreak, sb.Enabled, []signal.Notifier{sb})
	require.NoError(t, err)
	return n
}

func static(t *testing.T, key string, l access.Level) *Node {
	t.Helper()
	n, err := NewStatic(key, l)
	require.NoError(t, err)
	return n
}

func TestThreshold_ItemCount(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	s := inmemorysignal.New()
	s.DeclareItem("sword", 0)
	sword := itemLeaf(t, s, "sword1", "sword", 1)

	require.Equal(t, access.None, sword.Accessibility())
	require.False(t, sword.Met())

	// --- Act ---
	require.NoError(t, s.SetCount("sword", 1))

	// --- Assert ---
	assert.Equal(t, access.Normal, sword.Accessibility())
	assert.True(t, sword.Met())
	assert.Equal(t, StrategyThreshold, sword.Strategy())
}

func TestThreshold_DedupSuppressesNotification(t *testing.T) {
	t.Parallel()
	s := inmemorysignal.New()
	s.DeclareItem("arrows", 0)
	arrows := itemLeaf(t, s, "has_arrows", "arrows", 1)

	notified := 0
	arrows.Subscribe(func() { notified++ })

	require.NoError(t, s.SetCount("arrows", 10))
	require.Equal(t, 1, notified)

	// Count changes, but the level stays Normal.
	require.NoError(t, s.SetCount("arrows", 30))
	require.NoError(t, s.SetCount("arrows", 1))
	assert.Equal(t, 1, notified, "unchanged level must not re-notify")

	require.NoError(t, s.SetCount("arrows", 0))
	assert.Equal(t, 2, notified)
	assert.Equal(t, access.None, arrows.Accessibility())
}

func TestAllOf_Conjunction(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	s := inmemorysignal.New()
	s.DeclareItem("sword", 0)
	s.DeclareItem("hammer", 1)
	sword := itemLeaf(t, s, "sword1", "sword", 1)
	hammer := itemLeaf(t, s, "hammer", "hammer", 1)

	both, err := NewAllOf("sword_and_hammer", []*Node{sword, hammer})
	require.NoError(t, err)
	require.Equal(t, access.None, both.Accessibility())

	// --- Act ---
	require.NoError(t, s.SetCount("sword", 1))

	// --- Assert ---
	assert.Equal(t, access.Normal, both.Accessibility())
	assert.Equal(t, []*Node{sword, hammer}, both.Children())
}

func TestAllOf_IsMinimumOverChildren(t *testing.T) {
	t.Parallel()
	for _, a := range access.Levels {
		for _, b := range access.Levels {
			n, err := NewAllOf("all", []*Node{static(t, "a", a), static(t, "b", b), static(t, "c", access.Normal)})
			require.NoError(t, err)
			assert.Equal(t, access.Min(a, b), n.Accessibility(), "all_of(%s,%s)", a, b)
		}
	}
}

func TestAnyOf_IsMaximumOverChildren(t *testing.T) {
	t.Parallel()
	for _, a := range access.Levels {
		for _, b := range access.Levels {
			n, err := NewAnyOf("any", []*Node{static(t, "a", a), static(t, "b", b), static(t, "c", access.None)})
			require.NoError(t, err)
			assert.Equal(t, access.Max(a, b), n.Accessibility(), "any_of(%s,%s)", a, b)
		}
	}
}

func TestAnyOf_SequenceBreakThenNormal(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	s := inmemorysignal.New()
	s.DeclareSequenceBreak("bomb_jump", false)
	s.DeclareItem("hookshot", 0)
	breakLeaf := toggleLeaf(t, s, "bomb_jump", "bomb_jump")
	advanced := itemLeaf(t, s, "hookshot", "hookshot", 1)

	either, err := NewAnyOf("cross_gap", []*Node{breakLeaf, advanced})
	require.NoError(t, err)
	require.Equal(t, access.None, either.Accessibility())

	// --- Act & Assert ---
	require.NoError(t, s.SetSequenceBreak("bomb_jump", true))
	assert.Equal(t, access.SequenceBreak, either.Accessibility())

	require.NoError(t, s.SetCount("hookshot", 1))
	assert.Equal(t, access.Normal, either.Accessibility(), "max wins")

	require.NoError(t, s.SetCount("hookshot", 0))
	assert.Equal(t, access.SequenceBreak, either.Accessibility())
}

func TestComposite_RecomputesOnChildPastShortCircuit(t *testing.T) {
	t.Parallel()

	// The first child is None, so evaluation short-circuits before the
	// second; the node must still react when the second child changes.
	s := inmemorysignal.New()
	s.DeclareItem("a", 0)
	s.DeclareItem("b", 0)
	a := itemLeaf(t, s, "a", "a", 1)
	b := itemLeaf(t, s, "b", "b", 1)
	all, err := NewAllOf("all", []*Node{a, b})
	require.NoError(t, err)
	assert.Equal(t, 1, b.Subscribers(), "composite subscribes to every child")

	require.NoError(t, s.SetCount("b", 1))
	assert.Equal(t, access.None, all.Accessibility())
	require.NoError(t, s.SetCount("a", 1))
	assert.Equal(t, access.Normal, all.Accessibility())
}

func TestPropagation_SharedLeafReachesAllParents(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	s := inmemorysignal.New()
	s.DeclareItem("lamp", 0)
	s.DeclareItem("fire_rod", 1)
	lamp := itemLeaf(t, s, "lamp", "lamp", 1)
	fireRod := itemLeaf(t, s, "fire_rod", "fire_rod", 1)

	dark, err := NewAllOf("dark_room", []*Node{lamp})
	require.NoError(t, err)
	torch, err := NewAnyOf("light_torch", []*Node{lamp, fireRod})
	require.NoError(t, err)
	both, err := NewAllOf("dark_and_torch", []*Node{dark, torch})
	require.NoError(t, err)

	// --- Act ---
	require.NoError(t, s.SetCount("lamp", 1))

	// --- Assert ---
	assert.Equal(t, access.Normal, dark.Accessibility())
	assert.Equal(t, access.Normal, torch.Accessibility())
	assert.Equal(t, access.Normal, both.Accessibility())
	assert.Equal(t, 2, lamp.Subscribers())
}

func TestPropagation_DiamondConverges(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	// leaf -> left, right -> top. top hears about the change twice.
	s := inmemorysignal.New()
	s.DeclareItem("gem", 0)
	leaf := itemLeaf(t, s, "gem", "gem", 1)
	left, err := NewAllOf("left", []*Node{leaf})
	require.NoError(t, err)
	right, err := NewAnyOf("right", []*Node{leaf})
	require.NoError(t, err)

	recomputes := 0
	changes := 0
	hooks := &Hooks{
		OnRecompute: func(*Node) { recomputes++ },
		OnChange:    func(*Node, access.Level, access.Level) { changes++ },
	}
	top, err := NewAllOf("top", []*Node{left, right}, WithHooks(hooks))
	require.NoError(t, err)

	topNotified := 0
	top.Subscribe(func() { topNotified++ })

	// --- Act ---
	require.NoError(t, s.SetCount("gem", 1))

	// --- Assert ---
	assert.Equal(t, access.Normal, top.Accessibility())
	assert.Equal(t, 2, recomputes, "top is recomputed once per incoming path")
	assert.Equal(t, 1, changes, "the intermediate recomputation leaves top at None")
	assert.Equal(t, 1, topNotified)
}

func TestTestingOverride(t *testing.T) {
	t.Parallel()
	s := inmemorysignal.New()
	s.DeclareItem("flippers", 0)
	flippers := itemLeaf(t, s, "flippers", "flippers", 1)
	parent, err := NewAllOf("swim", []*Node{flippers})
	require.NoError(t, err)

	notified := 0
	flippers.Subscribe(func() { notified++ })

	flippers.SetTesting(true)

	assert.True(t, flippers.Testing())
	assert.True(t, flippers.Met(), "override forces met")
	assert.Equal(t, access.None, flippers.Accessibility(), "override never touches the level")
	assert.Equal(t, access.None, parent.Accessibility(), "parents fold the real level")
	assert.False(t, parent.Met())
	assert.Equal(t, 0, notified)

	flippers.SetTesting(false)
	assert.False(t, flippers.Met())
}

func TestMetThreshold(t *testing.T) {
	t.Parallel()
	n, err := NewStatic("partial_only", access.Partial, WithMetThreshold(access.Normal))
	require.NoError(t, err)
	assert.False(t, n.Met())
	assert.Equal(t, access.Normal, n.MetThreshold())

	sb, err := NewStatic("glitch", access.SequenceBreak)
	require.NoError(t, err)
	assert.True(t, sb.Met(), "default threshold is anything above none")

	_, err = NewStatic("bad", access.Normal, WithMetThreshold(access.None))
	assert.ErrorContains(t, err, "met threshold must be above none")
}

func TestGraded(t *testing.T) {
	t.Parallel()
	s := inmemorysignal.New()
	s.DeclareItem("crystal", 0)
	crystal := s.Item("crystal")

	n, err := NewGraded("tower", func() access.Level {
		switch c := crystal.Count(); {
		case c >= 7:
			return access.Normal
		case c >= 5:
			return access.SequenceBreak
		default:
			return access.None
		}
	}, []signal.Notifier{crystal})
	require.NoError(t, err)

	var seen []access.Level
	n.Subscribe(func() { seen = append(seen, n.Accessibility()) })

	for _, c := range []int{3, 5, 6, 7, 9} {
		require.NoError(t, s.SetCount("crystal", c))
	}
	assert.Equal(t, []access.Level{access.SequenceBreak, access.Normal}, seen)
}

func TestGraded_InvalidLevelPanics(t *testing.T) {
	t.Parallel()
	assert.PanicsWithValue(t, "requirement broken: graded evaluation produced invalid level level(12)", func() {
		_, _ = NewGraded("broken", func() access.Level { return access.Level(12) }, nil)
	})
}

func TestSwitch_FollowsPlacement(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	s := inmemorysignal.New()
	s.DeclareBossSlot("eastern_palace", "")
	s.DeclareItem("bow", 0)
	slot := s.BossSlot("eastern_palace")
	armos := static(t, "defeat_armos", access.Normal)
	bow := itemLeaf(t, s, "defeat_moldorm", "bow", 1)

	boss, err := NewSwitch("eastern_boss", slot.Boss, slot, []Case{
		{Name: "armos", Node: armos},
		{Name: "moldorm", Node: bow},
	})
	require.NoError(t, err)
	assert.Equal(t, access.None, boss.Accessibility(), "unassigned slot is none")

	// --- Act & Assert ---
	require.NoError(t, s.SetBoss("eastern_palace", "armos"))
	assert.Equal(t, access.Normal, boss.Accessibility())

	require.NoError(t, s.SetBoss("eastern_palace", "moldorm"))
	assert.Equal(t, access.None, boss.Accessibility())

	require.NoError(t, s.SetCount("bow", 1))
	assert.Equal(t, access.Normal, boss.Accessibility(), "case nodes propagate into the switch")
	assert.Len(t, boss.Children(), 2)
}

func TestSwitch_UnmappedPanics(t *testing.T) {
	t.Parallel()
	s := inmemorysignal.New()
	s.DeclareBossSlot("tower", "")
	slot := s.BossSlot("tower")
	_, err := NewSwitch("tower_boss", slot.Boss, slot, []Case{{Name: "armos", Node: static(t, "a", access.Normal)}})
	require.NoError(t, err)

	assert.PanicsWithError(t, `requirement tower_boss: "ganon" not handled`, func() {
		_ = s.SetBoss("tower", "ganon")
	})
}

func TestConstructors_FailFast(t *testing.T) {
	t.Parallel()
	ok := static(t, "ok", access.Normal)

	testCases := []struct {
		name    string
		build   func() (*Node, error)
		wantErr string
	}{
		{
			name:    "nil condition",
			build:   func() (*Node, error) { return NewThreshold("x", access.Normal, nil, nil) },
			wantErr: "missing required collaborator",
		},
		{
			name: "nil source",
			build: func() (*Node, error) {
				return NewThreshold("x", access.Normal, func() bool { return true }, []signal.Notifier{nil})
			},
			wantErr: "source 0: missing required collaborator",
		},
		{
			name:    "threshold at none",
			build:   func() (*Node, error) { return NewThreshold("x", access.None, func() bool { return true }, nil) },
			wantErr: "threshold level must be above none",
		},
		{
			name:    "nil grade",
			build:   func() (*Node, error) { return NewGraded("x", nil, nil) },
			wantErr: "grade function",
		},
		{
			name:    "nil child",
			build:   func() (*Node, error) { return NewAllOf("x", []*Node{ok, nil}) },
			wantErr: "child 1: missing required collaborator",
		},
		{
			name:    "empty key",
			build:   func() (*Node, error) { return NewAnyOf("", []*Node{ok}) },
			wantErr: "key is required",
		},
		{
			name:    "invalid static level",
			build:   func() (*Node, error) { return NewStatic("x", access.Level(-1)) },
			wantErr: "invalid level",
		},
		{
			name:    "nil switch source",
			build:   func() (*Node, error) { return NewSwitch("x", func() string { return "" }, nil, nil) },
			wantErr: "selector",
		},
		{
			name: "duplicate case",
			build: func() (*Node, error) {
				var b signal.Broadcaster
				return NewSwitch("x", func() string { return "" }, &b, []Case{{Name: "a", Node: ok}, {Name: "a", Node: ok}})
			},
			wantErr: `duplicate case "a"`,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			n, err := tc.build()
			require.Error(t, err)
			assert.Nil(t, n)
			assert.ErrorContains(t, err, tc.wantErr)
		})
	}
}

func TestStatic_NeverNotifies(t *testing.T) {
	t.Parallel()
	built := 0
	n, err := NewStatic("always", access.Normal, WithHooks(&Hooks{OnBuild: func(*Node) { built++ }}), WithDescription("always available"))
	require.NoError(t, err)
	assert.Equal(t, 1, built)
	assert.Equal(t, "always available", n.Description())
	assert.Nil(t, n.Children())
	assert.Equal(t, "always(static)=normal", n.String())
}

func TestStrategy_String(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "all_of", StrategyAllOf.String())
	assert.Equal(t, "switch", StrategySwitch.String())
	assert.Equal(t, "strategy(99)", Strategy(99).String())
	assert.True(t, StrategyAnyOf.Composite())
	assert.False(t, StrategySwitch.Composite())
}
