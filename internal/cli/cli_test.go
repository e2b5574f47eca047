package cli

import (
	"bytes"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/specialistvlad/reqgraph/internal/app"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name       string
		args       []string
		want       *app.Config
		shouldExit bool
		wantErr    string
		wantOutput string
	}{
		{
			name: "full flag set",
			args: []string{
				"-c", "catalog", "--catalog", "extra.yaml", "-s", "state.yaml",
				"--testing", "bow", "--set", "item.sword=2", "--set", "setting.mode=open",
				"--strict", "--format", "JSON", "--log-format", "json", "--log-level", "DEBUG", "--listen-port", "9090",
				"ganon", "hera",
			},
			want: &app.Config{
				CatalogPaths: []string{"catalog", "extra.yaml"},
				StatePath:    "state.yaml",
				Keys:         []string{"ganon", "hera"},
				Testing:      []string{"bow"},
				Assignments:  []string{"item.sword=2", "setting.mode=open"},
				Strict:       true,
				Format:       "json",
				LogFormat:    "json",
				LogLevel:     "debug",
				ListenPort:   9090,
			},
		},
		{
			name: "defaults",
			args: []string{"-c", "catalog"},
			want: &app.Config{
				CatalogPaths: []string{"catalog"},
				Format:       "text",
				LogFormat:    "text",
				LogLevel:     "info",
			},
		},
		{name: "no catalog prints usage", args: nil, shouldExit: true, wantOutput: "Usage:"},
		{name: "help", args: []string{"--help"}, shouldExit: true, wantOutput: "reqgraph evaluates"},
		{name: "unknown flag", args: []string{"--workers", "3"}, wantErr: "unknown flag: --workers"},
		{name: "invalid format", args: []string{"-c", "x", "--format", "xml"}, wantErr: "invalid format"},
		{name: "invalid log level", args: []string{"-c", "x", "--log-level", "loud"}, wantErr: "invalid log-level"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// --- Arrange ---
			out := &bytes.Buffer{}

			// --- Act ---
			cfg, shouldExit, err := Parse(tc.args, out)

			// --- Assert ---
			if tc.wantErr != "" {
				require.Error(t, err)
				var exitErr *ExitError
				require.True(t, errors.As(err, &exitErr))
				assert.Equal(t, ExitUsage, exitErr.Code)
				assert.Contains(t, exitErr.Error(), tc.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.shouldExit, shouldExit)
			if tc.wantOutput != "" {
				assert.Contains(t, out.String(), tc.wantOutput)
			}
			if tc.want != nil {
				if diff := cmp.Diff(tc.want, cfg); diff != "" {
					t.Errorf("config mismatch (-want +got):\n%s", diff)
				}
			}
		})
	}
}
