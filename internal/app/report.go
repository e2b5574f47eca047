package app

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/specialistvlad/reqgraph/internal/mermaid"
	"github.com/specialistvlad/reqgraph/internal/requirement"
)

// Entry is one requirement in a JSON report.
type Entry struct {
	Key         string `json:"key"`
	Strategy    string `json:"strategy"`
	Level       string `json:"level"`
	Met         bool   `json:"met"`
	Testing     bool   `json:"testing,omitempty"`
	Description string `json:"description,omitempty"`
}

func newEntry(n *requirement.Node) Entry {
	return Entry{
		Key:         n.Key(),
		Strategy:    n.Strategy().String(),
		Level:       n.Accessibility().String(),
		Met:         n.Met(),
		Testing:     n.Testing(),
		Description: n.Description(),
	}
}

func (a *App) report(nodes []*requirement.Node) error {
	switch a.config.Format {
	case FormatJSON:
		return writeJSON(a.outW, nodes)
	case FormatMermaid:
		overlay := &mermaid.Overlay{Levels: true, Highlight: a.config.Keys}
		_, err := io.WriteString(a.outW, mermaid.Render(a.registry.Nodes(), overlay))
		return err
	default:
		return writeText(a.outW, nodes)
	}
}

func writeJSON(w io.Writer, nodes []*requirement.Node) error {
	entries := make([]Entry, len(nodes))
	for i, n := range nodes {
		entries[i] = newEntry(n)
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(entries)
}

func writeText(w io.Writer, nodes []*requirement.Node) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "KEY\tSTRATEGY\tLEVEL\tMET")
	for _, n := range nodes {
		met := fmt.Sprint(n.Met())
		if n.Testing() {
			met += " (testing)"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", n.Key(), n.Strategy(), n.Accessibility(), met)
	}
	return tw.Flush()
}
