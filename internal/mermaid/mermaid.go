// Package mermaid renders a built requirement graph as a Mermaid flowchart.
package mermaid

import (
	"fmt"
	"sort"
	"strings"

	"github.com/specialistvlad/reqgraph/internal/access"
	"github.com/specialistvlad/reqgraph/internal/requirement"
)

// Overlay selects optional annotations on top of the plain graph.
type Overlay struct {
	// Levels colours every node by its current accessibility level.
	Levels bool
	// Highlight marks the listed keys, typically the ones asked for.
	Highlight []string
}

// Render produces a top-down flowchart of nodes and every child edge between
// them. Edges point from a node to the requirements it depends on. Nodes are
// written in key order so the output is stable.
//
// Shapes follow the strategy:
//   - Static: ((circle))
//   - All of: [rectangle]
//   - Any of: {rhombus}
//   - Switch: {{hexagon}}
//   - Leaves: ([stadium])
func Render(nodes []*requirement.Node, overlay *Overlay) string {
	sorted := make([]*requirement.Node, len(nodes))
	copy(sorted, nodes)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Key() < sorted[j].Key() })

	var sb strings.Builder
	sb.WriteString("graph TD\n")

	for _, n := range sorted {
		id := sanitizeMermaidID(n.Key())
		opener, closer := shape(n.Strategy())
		label := n.Key()
		if overlay != nil && overlay.Levels {
			label = fmt.Sprintf("%s <br/> %s", n.Key(), n.Accessibility())
		}
		if n.Testing() {
			label += " <br/> testing"
		}
		sb.WriteString(fmt.Sprintf("    %s%s\"%s\"%s\n", id, opener, strings.ReplaceAll(label, "\"", "'"), closer))

		for _, c := range n.Children() {
			arrow := "-->"
			if n.Strategy() == requirement.StrategySwitch {
				arrow = "-.->"
			}
			sb.WriteString(fmt.Sprintf("    %s %s %s\n", id, arrow, sanitizeMermaidID(c.Key())))
		}
	}

	if overlay == nil {
		return sb.String()
	}

	if overlay.Levels {
		sb.WriteString("\n    %% Levels\n")
		for _, l := range access.Levels {
			sb.WriteString(fmt.Sprintf("    classDef %s %s;\n", l, levelStyle[l]))
		}
		for _, n := range sorted {
			sb.WriteString(fmt.Sprintf("    class %s %s;\n", sanitizeMermaidID(n.Key()), n.Accessibility()))
		}
	}

	if len(overlay.Highlight) > 0 {
		sb.WriteString("\n    %% Highlight\n")
		sb.WriteString("    classDef highlight stroke:#fbc02d,stroke-width:4px;\n")
		seen := make(map[string]bool)
		for _, key := range overlay.Highlight {
			id := sanitizeMermaidID(key)
			if id == "" || seen[id] {
				continue
			}
			seen[id] = true
			sb.WriteString(fmt.Sprintf("    class %s highlight;\n", id))
		}
	}

	return sb.String()
}

// Dark text keeps labels readable on every fill regardless of theme.
var levelStyle = map[access.Level]string{
	access.None:          "fill:#ffcdd2,stroke:#b71c1c,color:#000",
	access.Inspect:       "fill:#e1bee7,stroke:#4a148c,color:#000",
	access.SequenceBreak: "fill:#fff9c4,stroke:#f57f17,color:#000",
	access.Partial:       "fill:#bbdefb,stroke:#0d47a1,color:#000",
	access.Normal:        "fill:#c8e6c9,stroke:#1b5e20,color:#000",
}

func shape(s requirement.Strategy) (string, string) {
	switch s {
	case requirement.StrategyStatic:
		return "((", "))"
	case requirement.StrategyAllOf:
		return "[", "]"
	case requirement.StrategyAnyOf:
		return "{", "}"
	case requirement.StrategySwitch:
		return "{{", "}}"
	default:
		return "([", "])"
	}
}

func sanitizeMermaidID(id string) string {
	return strings.NewReplacer(".", "_", "-", "_", "/", "_", "\\", "_", " ", "_").Replace(id)
}
