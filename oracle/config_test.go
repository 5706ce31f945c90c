package oracle

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	tt "github.com/gnolang/toracle/internal/types"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), ".toracle.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadConfig(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		content string
		modify  func(*tt.Config)
		wantErr bool
	}{
		{
			name:    "empty file keeps defaults",
			content: "",
			modify:  func(*tt.Config) {},
		},
		{
			name: "partial file keeps other defaults",
			content: `
include_assertions: false
string_max_len: 64
classifier:
  resource_exhaustion: error
`,
			modify: func(c *tt.Config) {
				c.IncludeAssertions = false
				c.StringMaxLen = 64
				c.Classifier.ResourceExhaustion = tt.BehaviorError
			},
		},
		{
			name:    "contracts replace the default list",
			content: "contracts: [equals-nil]\n",
			modify:  func(c *tt.Config) { c.Contracts = []string{"equals-nil"} },
		},
		{
			name:    "unknown field",
			content: "report_flakey: true\n",
			wantErr: true,
		},
		{
			name:    "unknown behavior",
			content: "classifier: {nil_input_dereference: maybe}\n",
			wantErr: true,
		},
		{
			name:    "invalid omit pattern",
			content: "omit_operations: ['(']\n",
			wantErr: true,
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			got, err := LoadConfig(writeConfig(t, tc.content))
			if tc.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			want := tt.DefaultConfig()
			tc.modify(&want)
			assert.Equal(t, want, got)
		})
	}
}

func TestLoadConfigDefaults(t *testing.T) {
	t.Parallel()

	cfg, err := LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, tt.DefaultConfig(), cfg)

	missing := filepath.Join(t.TempDir(), "missing.yaml")
	_, err = LoadConfig(missing)
	assert.ErrorIs(t, err, os.ErrNotExist)

	cfg, err = LoadConfigOrDefault(missing)
	require.NoError(t, err)
	assert.Equal(t, tt.DefaultConfig(), cfg)

	_, err = LoadConfigOrDefault(writeConfig(t, "string_max_len: -1\n"))
	assert.Error(t, err)
}

func TestWriteDefaultConfig(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), DefaultConfigFile)
	require.NoError(t, WriteDefaultConfig(path))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, tt.DefaultConfig(), cfg)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "nil_input_dereference: EXPECTED")
}
