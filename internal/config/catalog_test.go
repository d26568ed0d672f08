package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/pointplay/internal/cloud"
	"github.com/banshee-data/pointplay/internal/fsutil"
	"github.com/banshee-data/pointplay/internal/units"
)

const catalogYAML = `
playback:
  interval: 40ms
  color_threshold: 3
datasets:
  - name: DNA Molecule
    description: Dataset of molecules
    file: datasets/3.csv
    filetype: csv
    mapping: {x: 0, y: 1, z: 2, s: 3, r: 4, g: 5, b: 6}
    labels: {0: X, 1: Y, 2: Z}
    units:
      x: {type: append, value: mm}
      z:
        type: substitute
        value: [[0.0, Low], [0.3, Medium], [0.7, High]]
    scale:
      x: {min: -0.5, max: 0.5, type: linear}
      y: {min: -0.5, max: 1.0, type: log}
    range:
      s: [1, 20]
  - name: Defaults
    file: /data/cloud.csv
`

const catalogJSON = `{
  "datasets": [
    {
      "name": "World GDP",
      "file": "4.csv",
      "mapping": {"x": 0, "y": 1, "z": 2, "t": 3, "i": 4},
      "labels": {"0": "GDP", "y": "Life Expectancy"},
      "scale": {"y": {"type": "log"}}
    }
  ]
}`

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadCatalog_YAML(t *testing.T) {
	path := writeFile(t, "datasets.yaml", catalogYAML)

	cat, err := LoadCatalog(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"DNA Molecule", "Defaults"}, cat.Names())
	assert.Equal(t, filepath.Dir(path), cat.Dir)
	assert.Equal(t, 40*time.Millisecond, cat.Playback.GetInterval())

	dna, err := cat.Dataset("DNA Molecule")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(cat.Dir, "datasets/3.csv"), cat.FilePath(dna))
	assert.Equal(t, "1.50mm", dna.Unit(cloud.RoleX).Format(1.5))
	assert.Equal(t, "Medium", dna.Unit(cloud.RoleZ).Format(0.5))
	assert.Equal(t, units.Format{}, dna.Unit(cloud.RoleY))

	spec, err := dna.LoadSpec(nil, cat.Playback)
	require.NoError(t, err)
	assert.Equal(t, "DNA Molecule", spec.Name)
	assert.False(t, spec.Mapping.Has(cloud.RoleTime))
	assert.Equal(t, 3.0, spec.ColorPolicy.Threshold)
	assert.Equal(t, cloud.DefaultPointSize, spec.DefaultSize)
	assert.Equal(t, cloud.ScaleSpec{Kind: cloud.Linear, Codomain: cloud.DefaultCodomain}, spec.Scales[cloud.RoleX])
	assert.Equal(t, cloud.ScaleSpec{Kind: cloud.Logarithmic, Codomain: cloud.Range{Min: -0.5, Max: 1}}, spec.Scales[cloud.RoleY])
	assert.Equal(t, cloud.ScaleSpec{Kind: cloud.Linear, Codomain: cloud.Range{Min: 1, Max: 20}}, spec.Scales[cloud.RoleSize])
	assert.Equal(t, "X", spec.Labels[cloud.RoleX])
	assert.Equal(t, "Z", spec.Labels[cloud.RoleZ])

	defaults, err := cat.Dataset("Defaults")
	require.NoError(t, err)
	assert.Equal(t, "/data/cloud.csv", cat.FilePath(defaults))
	spec, err = defaults.LoadSpec(nil, nil)
	require.NoError(t, err)
	assert.Equal(t, cloud.DefaultMapping(), spec.Mapping)
	assert.Empty(t, spec.Scales)
	assert.Equal(t, cloud.DefaultColorThreshold, spec.ColorPolicy.Threshold)
}

func TestLoadCatalog_JSON(t *testing.T) {
	cat, err := LoadCatalog(writeFile(t, "datasets.json", catalogJSON))
	require.NoError(t, err)
	assert.Nil(t, cat.Playback)

	gdp, err := cat.Dataset("World GDP")
	require.NoError(t, err)

	spec, err := gdp.LoadSpec(nil, cat.Playback)
	require.NoError(t, err)
	assert.Equal(t, "GDP", spec.Labels[cloud.RoleX])
	assert.Equal(t, "Life Expectancy", spec.Labels[cloud.RoleY])
	assert.Equal(t, cloud.Logarithmic, spec.Scales[cloud.RoleY].Kind)
	assert.Equal(t, cloud.DefaultCodomain, spec.Scales[cloud.RoleY].Codomain)

	col, ok := spec.Mapping.Column(cloud.RoleInfo)
	assert.True(t, ok)
	assert.Equal(t, 4, col)
}

func TestDatasetConfig_MappingOverride(t *testing.T) {
	cat, err := ParseCatalog([]byte(catalogJSON), ".json")
	require.NoError(t, err)
	gdp, err := cat.Dataset("World GDP")
	require.NoError(t, err)

	base, err := gdp.BaseMapping()
	require.NoError(t, err)
	override, err := cloud.ParseMappingFlag(base, "x=1,y=0,t=-")
	require.NoError(t, err)

	spec, err := gdp.LoadSpec(&override, nil)
	require.NoError(t, err)
	assert.False(t, spec.Mapping.Has(cloud.RoleTime))
	assert.Equal(t, "Life Expectancy", spec.Labels[cloud.RoleY], "role labels win over column labels")
	_, labelled := spec.Labels[cloud.RoleX]
	assert.False(t, labelled, "column 1 has no configured label")

	relabel := &DatasetConfig{Labels: map[string]string{"0": "GDP"}}
	assert.Equal(t, map[cloud.Role]string{cloud.RoleY: "GDP"}, relabel.RoleLabels(override))
}

func TestCatalog_DatasetNotFound(t *testing.T) {
	cat, err := ParseCatalog([]byte(catalogJSON), ".json")
	require.NoError(t, err)
	_, err = cat.Dataset("nope")
	assert.True(t, errors.Is(err, ErrDatasetNotFound))
}

func TestLoadCatalog_FileChecks(t *testing.T) {
	_, err := LoadCatalog(writeFile(t, "datasets.toml", "x = 1"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "extension")

	_, err = LoadCatalog(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "stat")

	big := writeFile(t, "big.json", strings.Repeat(" ", maxFileSize+1))
	_, err = LoadCatalog(big)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "too large")

	_, err = LoadCatalog(writeFile(t, "bad.json", "{"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse")
}

func TestCatalog_Validate(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want string
	}{
		{"missing name", "datasets: [{file: a.csv}]", "name is required"},
		{"missing file", "datasets: [{name: a}]", "file is required"},
		{"duplicate", "datasets: [{name: a, file: a.csv}, {name: a, file: b.csv}]", "duplicate"},
		{"laz", "datasets: [{name: a, file: a.laz, filetype: laz}]", "unsupported filetype"},
		{"bad role", "datasets: [{name: a, file: a.csv, mapping: {x: 0, y: 1, z: 2, q: 3}}]", "unknown role"},
		{"missing axis", "datasets: [{name: a, file: a.csv, mapping: {x: 0, y: 1}}]", "position axis z"},
		{"bad label key", "datasets: [{name: a, file: a.csv, labels: {w: W}}]", "labels"},
		{"bad unit", "datasets: [{name: a, file: a.csv, units: {x: {type: prepend}}}]", "unknown unit type"},
		{"bad scale type", "datasets: [{name: a, file: a.csv, scale: {x: {type: sqrt}}}]", "unknown scale type"},
		{"scale on colour", "datasets: [{name: a, file: a.csv, scale: {r: {type: log}}}]", "does not take a scale"},
		{"short range", "datasets: [{name: a, file: a.csv, range: {s: [1]}}]", "want [min, max]"},
		{"flat range", "datasets: [{name: a, file: a.csv, range: {s: [2, 2]}}]", "degenerate"},
		{"bad playback", "playback: {interval: soon}\ndatasets: []", "interval"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseCatalog([]byte(tt.yaml), ".yaml")
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestLoadCatalogFS(t *testing.T) {
	mfs := fsutil.NewMemoryFileSystem()
	mfs.WriteFile("/etc/pointplay/datasets.yml", []byte(catalogYAML))

	cat, err := LoadCatalogFS(mfs, "/etc/pointplay/datasets.yml")
	require.NoError(t, err)
	assert.Equal(t, "/etc/pointplay", cat.Dir)
	assert.Len(t, cat.Datasets, 2)

	_, err = LoadCatalogFS(mfs, "/etc/pointplay/other.yml")
	assert.Error(t, err)
}
