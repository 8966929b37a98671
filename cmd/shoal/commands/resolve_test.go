package commands

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/dyluth/shoal/pkg/policy"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestResolveCommand_Defaults(t *testing.T) {
	stdout, stderr, err := execute(t, "resolve")

	require.NoError(t, err)
	assert.Contains(t, stdout, "(mode: per-device)")
	assert.Contains(t, stderr, "-D shoal.pool.each.device=(true|false)")
	assert.Contains(t, stderr, "STRATEGY:=api")
	assert.NotContains(t, stdout, "Use -D")
}

func TestResolveCommand_JSONStaysClean(t *testing.T) {
	stdout, stderr, err := execute(t, "resolve", "-o", "json",
		"-D", "shoal.pool.computed.api=legacy=1,modern=26",
		"-D", "shoal.excluded.serials=S8,S9",
	)
	require.NoError(t, err)
	assert.Contains(t, stderr, "Devices with serials S8, S9 are excluded from the tests")

	var doc policy.Document
	require.NoError(t, json.Unmarshal([]byte(stdout), &doc))
	assert.Equal(t, policy.ModeComputed, doc.Mode)
	require.NotNil(t, doc.Computed)
	assert.Equal(t, "api", doc.Computed.Strategy)
	assert.Equal(t, []string{"S8", "S9"}, doc.ExcludedSerials)
	assert.NotEmpty(t, doc.ID)
}

func TestResolveCommand_YAMLSerialPools(t *testing.T) {
	stdout, _, err := execute(t, "resolve", "-o", "yaml",
		"-D", "shoal.pool.serial.hdpi=S1,S2",
		"-D", "shoal.pool.serial.ldpi=S3",
	)
	require.NoError(t, err)

	var doc policy.Document
	require.NoError(t, yaml.Unmarshal([]byte(stdout), &doc))
	assert.Equal(t, policy.ModeSerial, doc.Mode)
	assert.Equal(t, []policy.Pool{
		{Name: "hdpi", Serials: []string{"S1", "S2"}},
		{Name: "ldpi", Serials: []string{"S3"}},
	}, doc.SerialPools)
}

func TestResolveCommand_ConfigFileAndDefines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lab.yml")
	require.NoError(t, os.WriteFile(path, []byte(`
shoal:
  report:
    title: From file
  pool:
    each:
      device: false
`), 0644))

	stdout, _, err := execute(t, "resolve", "-o", "json", "--config", path, "-D", "shoal.report.title=From flag")
	require.NoError(t, err)

	var doc policy.Document
	require.NoError(t, json.Unmarshal([]byte(stdout), &doc))
	assert.Equal(t, "From flag", doc.Title)
	assert.Equal(t, policy.ModeNone, doc.Mode)
}

func TestResolveCommand_MissingExplicitConfig(t *testing.T) {
	_, stderr, err := execute(t, "resolve", "--config", filepath.Join(t.TempDir(), "absent.yml"))

	require.Error(t, err)
	assert.Contains(t, stderr, "failed to load configuration")
}

func TestResolveCommand_Errors(t *testing.T) {
	testCases := []struct {
		name    string
		args    []string
		title   string
		context []string
	}{
		{
			name:    "unrecognised strategy",
			args:    []string{"-D", "shoal.pool.computed.density=10"},
			title:   "unrecognised computed pool",
			context: []string{"key: shoal.pool.computed.density", "strategy: density", "shoal strategies"},
		},
		{
			name:    "multiple computed pools",
			args:    []string{"-D", "shoal.pool.computed.api=10", "-D", "shoal.pool.computed.sw=600"},
			title:   "multiple computed pools configured",
			context: []string{"keys: shoal.pool.computed.api, shoal.pool.computed.sw"},
		},
		{
			name:    "malformed bound",
			args:    []string{"-D", "shoal.pool.computed.api=low=ten"},
			title:   "malformed computed pool bound",
			context: []string{"entry: low=ten", "value: low=ten", "key: shoal.pool.computed.api"},
		},
		{
			name:    "conflicting modes",
			args:    []string{"-D", "shoal.pool.serial.hdpi=S1", "-D", "shoal.pool.computed.api=10"},
			title:   "conflicting pooling modes",
			context: []string{"serial pools: hdpi", "computed pool: shoal.pool.computed.api"},
		},
		{
			name:    "unnamed serial pool",
			args:    []string{"-D", "shoal.pool.serial.=S1"},
			title:   "serial-based pool without a name",
			context: []string{"key: shoal.pool.serial."},
		},
		{
			name:  "malformed define",
			args:  []string{"-D", "shoal.pool.tablet"},
			title: "failed to load configuration",
		},
		{
			name:  "invalid output format",
			args:  []string{"-o", "xml"},
			title: "invalid output format",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			stdout, stderr, err := execute(t, append([]string{"resolve"}, tc.args...)...)

			require.Error(t, err)
			assert.Equal(t, tc.title, err.Error())
			assert.Empty(t, stdout)
			assert.Contains(t, stderr, tc.title)
			for _, c := range tc.context {
				assert.Contains(t, stderr, c)
			}
		})
	}
}
