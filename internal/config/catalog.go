// Package config loads the dataset catalog and playback tuning.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/banshee-data/pointplay/internal/cloud"
	"github.com/banshee-data/pointplay/internal/fsutil"
	"github.com/banshee-data/pointplay/internal/units"
)

// ErrDatasetNotFound is returned by Catalog.Dataset for unknown names.
var ErrDatasetNotFound = errors.New("dataset not found")

const maxFileSize = 1 * 1024 * 1024 // 1MB

// Supported dataset file types.
const (
	FiletypeCSV = "csv"
)

// Catalog is the root of a catalog file.
type Catalog struct {
	Datasets []DatasetConfig `json:"datasets" yaml:"datasets"`
	Playback *PlaybackConfig `json:"playback,omitempty" yaml:"playback,omitempty"`

	// Dir is the directory of the catalog file. Relative dataset files
	// resolve against it.
	Dir string `json:"-" yaml:"-"`
}

// ScaleConfig is the per-axis scale entry of a dataset.
// Min and Max bound the output codomain.
type ScaleConfig struct {
	Min  *float64 `json:"min,omitempty" yaml:"min,omitempty"`
	Max  *float64 `json:"max,omitempty" yaml:"max,omitempty"`
	Type string   `json:"type,omitempty" yaml:"type,omitempty"` // "linear" or "log"
}

// DatasetConfig describes one dataset in the catalog.
type DatasetConfig struct {
	Name        string `json:"name" yaml:"name"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
	File        string `json:"file" yaml:"file"`
	Filetype    string `json:"filetype,omitempty" yaml:"filetype,omitempty"`

	// Mapping binds role keys (x y z s r g b t i, or long names) to column
	// indices. Empty means cloud.DefaultMapping.
	Mapping map[string]int `json:"mapping,omitempty" yaml:"mapping,omitempty"`

	// Labels are keyed by column index or role key.
	Labels map[string]string `json:"labels,omitempty" yaml:"labels,omitempty"`

	Units map[string]units.Format `json:"units,omitempty" yaml:"units,omitempty"`
	Scale map[string]ScaleConfig  `json:"scale,omitempty" yaml:"scale,omitempty"`

	// Range overrides the codomain of a role as [min, max]. For size it
	// is the output size interval.
	Range map[string][]float64 `json:"range,omitempty" yaml:"range,omitempty"`
}

// LoadCatalog loads a Catalog from a .json, .yaml or .yml file.
// The file must be under 1MB. The loaded catalog is validated.
func LoadCatalog(path string) (*Catalog, error) {
	return LoadCatalogFS(fsutil.OSFileSystem{}, path)
}

// LoadCatalogFS is LoadCatalog reading from fsys.
func LoadCatalogFS(fsys fsutil.FileSystem, path string) (*Catalog, error) {
	cleanPath := filepath.Clean(path)
	ext := strings.ToLower(filepath.Ext(cleanPath))
	if ext != ".json" && ext != ".yaml" && ext != ".yml" {
		return nil, fmt.Errorf("catalog file must have .json, .yaml or .yml extension, got %q", ext)
	}

	fileInfo, err := fsys.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat catalog file: %w", err)
	}
	if fileInfo.Size() > maxFileSize {
		return nil, fmt.Errorf("catalog file too large: %d bytes (max %d)", fileInfo.Size(), maxFileSize)
	}

	data, err := fsys.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog file: %w", err)
	}

	cat, err := ParseCatalog(data, ext)
	if err != nil {
		return nil, err
	}
	cat.Dir = filepath.Dir(cleanPath)
	return cat, nil
}

// ParseCatalog decodes and validates catalog data. ext selects the
// decoder: ".json" for JSON, anything else for YAML.
func ParseCatalog(data []byte, ext string) (*Catalog, error) {
	cat := &Catalog{}
	if ext == ".json" {
		if err := json.Unmarshal(data, cat); err != nil {
			return nil, fmt.Errorf("failed to parse catalog JSON: %w", err)
		}
	} else {
		if err := yaml.Unmarshal(data, cat); err != nil {
			return nil, fmt.Errorf("failed to parse catalog YAML: %w", err)
		}
	}

	if err := cat.Validate(); err != nil {
		return nil, fmt.Errorf("invalid catalog: %w", err)
	}
	return cat, nil
}

// Validate checks every dataset and the playback section.
func (c *Catalog) Validate() error {
	seen := make(map[string]bool, len(c.Datasets))
	for i := range c.Datasets {
		d := &c.Datasets[i]
		if seen[d.Name] {
			return fmt.Errorf("duplicate dataset name %q", d.Name)
		}
		seen[d.Name] = true
		if err := d.Validate(); err != nil {
			return fmt.Errorf("dataset %d (%q): %w", i, d.Name, err)
		}
	}
	return c.Playback.Validate()
}

// Dataset returns the named dataset.
func (c *Catalog) Dataset(name string) (*DatasetConfig, error) {
	for i := range c.Datasets {
		if c.Datasets[i].Name == name {
			return &c.Datasets[i], nil
		}
	}
	return nil, fmt.Errorf("%q: %w", name, ErrDatasetNotFound)
}

// Names lists dataset names in catalog order.
func (c *Catalog) Names() []string {
	names := make([]string, len(c.Datasets))
	for i, d := range c.Datasets {
		names[i] = d.Name
	}
	return names
}

// FilePath resolves d.File against the catalog directory.
func (c *Catalog) FilePath(d *DatasetConfig) string {
	if filepath.IsAbs(d.File) || c.Dir == "" {
		return d.File
	}
	return filepath.Join(c.Dir, d.File)
}

// Validate checks one dataset entry without reading its file.
func (d *DatasetConfig) Validate() error {
	if d.Name == "" {
		return fmt.Errorf("name is required")
	}
	if d.File == "" {
		return fmt.Errorf("file is required")
	}
	if ft := strings.ToLower(d.Filetype); ft != "" && ft != FiletypeCSV {
		return fmt.Errorf("unsupported filetype %q", d.Filetype)
	}

	m, err := d.BaseMapping()
	if err != nil {
		return err
	}
	for _, role := range cloud.AxisRoles {
		if !m.Has(role) {
			return fmt.Errorf("mapping: position axis %s: %w", role, cloud.ErrMissingRole)
		}
	}

	for key := range d.Labels {
		if _, err := strconv.Atoi(key); err == nil {
			continue
		}
		if _, err := cloud.ParseRole(key); err != nil {
			return fmt.Errorf("labels: %w", err)
		}
	}
	for key, f := range d.Units {
		if _, err := cloud.ParseRole(key); err != nil {
			return fmt.Errorf("units: %w", err)
		}
		if err := f.Validate(); err != nil {
			return fmt.Errorf("units %s: %w", key, err)
		}
	}
	if _, err := d.Scales(); err != nil {
		return err
	}
	return nil
}

// BaseMapping returns the dataset's configured mapping, or the default
// mapping when none is configured.
func (d *DatasetConfig) BaseMapping() (cloud.Mapping, error) {
	if len(d.Mapping) == 0 {
		return cloud.DefaultMapping(), nil
	}
	m, err := cloud.MappingFromIndices(d.Mapping)
	if err != nil {
		return cloud.Mapping{}, fmt.Errorf("mapping: %w", err)
	}
	return m, nil
}

// Scales converts the scale and range sections into per-role scale specs.
// Only x, y, z and size take scales.
func (d *DatasetConfig) Scales() (map[cloud.Role]cloud.ScaleSpec, error) {
	specs := make(map[cloud.Role]cloud.ScaleSpec)

	for key, sc := range d.Scale {
		role, err := scaledRole(key)
		if err != nil {
			return nil, fmt.Errorf("scale: %w", err)
		}
		kind, err := cloud.ParseScaleKind(sc.Type)
		if err != nil {
			return nil, fmt.Errorf("scale %s: %w", key, err)
		}
		codomain := cloud.DefaultCodomain
		if sc.Min != nil {
			codomain.Min = *sc.Min
		}
		if sc.Max != nil {
			codomain.Max = *sc.Max
		}
		specs[role] = cloud.ScaleSpec{Kind: kind, Codomain: codomain}
	}

	for key, bounds := range d.Range {
		role, err := scaledRole(key)
		if err != nil {
			return nil, fmt.Errorf("range: %w", err)
		}
		if len(bounds) != 2 {
			return nil, fmt.Errorf("range %s: want [min, max], got %d values", key, len(bounds))
		}
		spec, ok := specs[role]
		if !ok {
			spec.Kind = cloud.Linear
		}
		spec.Codomain = cloud.Range{Min: bounds[0], Max: bounds[1]}
		specs[role] = spec
	}

	for role, spec := range specs {
		if spec.Codomain.Degenerate() {
			return nil, fmt.Errorf("%s codomain %v: %w", role, spec.Codomain, cloud.ErrDegenerateRange)
		}
	}
	return specs, nil
}

func scaledRole(key string) (cloud.Role, error) {
	role, err := cloud.ParseRole(key)
	if err != nil {
		return 0, err
	}
	switch role {
	case cloud.RoleX, cloud.RoleY, cloud.RoleZ, cloud.RoleSize:
		return role, nil
	}
	return 0, fmt.Errorf("role %s does not take a scale", role)
}

// RoleLabels resolves the labels section against mapping m. Column-index
// keys label whichever role is bound to that column; role keys win over
// column keys.
func (d *DatasetConfig) RoleLabels(m cloud.Mapping) map[cloud.Role]string {
	labels := make(map[cloud.Role]string)
	for key, label := range d.Labels {
		col, err := strconv.Atoi(key)
		if err != nil {
			continue
		}
		for _, role := range cloud.Roles {
			if idx, ok := m.Column(role); ok && idx == col {
				labels[role] = label
			}
		}
	}
	for key, label := range d.Labels {
		if role, err := cloud.ParseRole(key); err == nil {
			labels[role] = label
		}
	}
	return labels
}

// Unit returns the display format for role; the zero Format when none is
// configured.
func (d *DatasetConfig) Unit(role cloud.Role) units.Format {
	for key, f := range d.Units {
		if r, err := cloud.ParseRole(key); err == nil && r == role {
			return f
		}
	}
	return units.Format{}
}

// LoadSpec builds the pipeline input for this dataset. override, when
// non-nil, replaces the configured mapping. tuning may be nil.
func (d *DatasetConfig) LoadSpec(override *cloud.Mapping, tuning *PlaybackConfig) (cloud.LoadSpec, error) {
	m, err := d.BaseMapping()
	if err != nil {
		return cloud.LoadSpec{}, err
	}
	if override != nil {
		m = *override
	}
	scales, err := d.Scales()
	if err != nil {
		return cloud.LoadSpec{}, err
	}
	return cloud.LoadSpec{
		Name:        d.Name,
		Mapping:     m,
		Scales:      scales,
		ColorPolicy: tuning.ColorPolicy(),
		DefaultSize: tuning.GetDefaultSize(),
		Labels:      d.RoleLabels(m),
	}, nil
}
