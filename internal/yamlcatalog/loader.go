package yamlcatalog

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/specialistvlad/reqgraph/internal/access"
	"github.com/specialistvlad/reqgraph/internal/catalog"
	"github.com/specialistvlad/reqgraph/internal/condition"
	"github.com/specialistvlad/reqgraph/internal/ctxlog"
	"github.com/specialistvlad/reqgraph/internal/ctyconv"
	"github.com/specialistvlad/reqgraph/internal/fsutil"
	"gopkg.in/yaml.v3"
)

// Extensions lists the file extensions the loader picks up from directories.
var Extensions = []string{".yaml", ".yml"}

// Document is the top-level shape of a YAML catalog file.
type Document struct {
	Requirements []Requirement `yaml:"requirements"`
}

// Requirement is one entry of a YAML catalog. Which fields apply depends
// on Kind.
type Requirement struct {
	Key         string            `yaml:"key"`
	Kind        string            `yaml:"kind"`
	Description string            `yaml:"description,omitempty"`
	MetAt       string            `yaml:"met_at,omitempty"`
	Level       string            `yaml:"level,omitempty"`
	Item        string            `yaml:"item,omitempty"`
	Min         *int              `yaml:"min,omitempty"`
	Setting     string            `yaml:"setting,omitempty"`
	Equals      any               `yaml:"equals,omitempty"`
	Toggle      string            `yaml:"toggle,omitempty"`
	Location    string            `yaml:"location,omitempty"`
	Slot        string            `yaml:"slot,omitempty"`
	Defeat      map[string]string `yaml:"defeat,omitempty"`
	Requires    []string          `yaml:"requires,omitempty"`
	When        string            `yaml:"when,omitempty"`
	Tiers       []Tier            `yaml:"tiers,omitempty"`
}

// Tier is one branch of a graded requirement.
type Tier struct {
	Level string `yaml:"level"`
	When  string `yaml:"when"`
}

// Loader is the YAML implementation of catalog.Loader.
type Loader struct{}

// NewLoader creates a new YAML catalog loader.
func NewLoader() *Loader {
	return &Loader{}
}

var _ catalog.Loader = (*Loader)(nil)

// Load reads every YAML file under paths into a single catalog.
func (l *Loader) Load(ctx context.Context, paths ...string) (*catalog.Catalog, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("YAML catalog loader started.", "path_count", len(paths))

	files, err := fsutil.CollectFiles(paths, Extensions...)
	if err != nil {
		return nil, err
	}
	logger.Debug("Discovered YAML files.", "count", len(files))

	cat := catalog.New()
	for _, file := range files {
		data, err := os.ReadFile(file)
		if err != nil {
			return nil, fmt.Errorf("yamlcatalog: read %s: %w", file, err)
		}
		part, err := Parse(data, file)
		if err != nil {
			return nil, err
		}
		if err := cat.Merge(part); err != nil {
			return nil, err
		}
		logger.Debug("Loaded YAML catalog file.", "file", file, "requirements", part.Len())
	}

	logger.Debug("YAML loading complete.", "requirements", cat.Len())
	return cat, nil
}

// Parse decodes one YAML document. Unknown fields are rejected. filename
// labels errors and definition origins.
func Parse(data []byte, filename string) (*catalog.Catalog, error) {
	cat := catalog.New()
	if len(bytes.TrimSpace(data)) == 0 {
		return cat, nil
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	var doc Document
	if err := dec.Decode(&doc); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("yamlcatalog: decode %s: %w", filename, err)
	}

	for i, r := range doc.Requirements {
		d, err := r.translate(fmt.Sprintf("%s#%d", filename, i))
		if err != nil {
			return nil, fmt.Errorf("yamlcatalog: %s requirement[%d]: %w", filename, i, err)
		}
		if err := cat.Add(d); err != nil {
			return nil, err
		}
	}
	return cat, nil
}

func (r Requirement) translate(origin string) (catalog.Definition, error) {
	kind, err := catalog.ParseKind(r.Kind)
	if err != nil {
		return catalog.Definition{}, err
	}
	d := catalog.Definition{
		Key:         r.Key,
		Kind:        kind,
		Description: r.Description,
		Origin:      origin,
		Requires:    r.Requires,
		Defeat:      r.Defeat,
		Min:         1,
	}
	if r.Min != nil {
		d.Min = *r.Min
	}
	if d.MetAt, err = parseLevel(r.MetAt, access.None); err != nil {
		return d, fmt.Errorf("met_at: %w", err)
	}
	if d.Level, err = parseLevel(r.Level, catalog.DefaultLevel(kind)); err != nil {
		return d, fmt.Errorf("level: %w", err)
	}

	switch kind {
	case catalog.KindItem:
		d.Signal = r.Item
	case catalog.KindSetting:
		d.Signal = r.Setting
		if r.Equals != nil {
			if d.Equals, err = ctyconv.ToCtyValue(r.Equals); err != nil {
				return d, fmt.Errorf("equals: %w", err)
			}
		}
	case catalog.KindSequenceBreak:
		d.Signal = r.Toggle
	case catalog.KindLocation:
		d.Signal = r.Location
	case catalog.KindBoss:
		d.Signal = r.Slot
	case catalog.KindCondition:
		if r.When != "" {
			if d.When, err = condition.Parse(r.When, origin); err != nil {
				return d, err
			}
		}
	case catalog.KindGraded:
		for i, t := range r.Tiers {
			l, err := access.ParseLevel(t.Level)
			if err != nil {
				return d, fmt.Errorf("tier %d: %w", i, err)
			}
			tier := catalog.Tier{Level: l}
			if t.When != "" {
				if tier.When, err = condition.Parse(t.When, origin); err != nil {
					return d, fmt.Errorf("tier %d: %w", i, err)
				}
			}
			d.Tiers = append(d.Tiers, tier)
		}
	}
	return d, nil
}

func parseLevel(s string, def access.Level) (access.Level, error) {
	if s == "" {
		return def, nil
	}
	return access.ParseLevel(s)
}
