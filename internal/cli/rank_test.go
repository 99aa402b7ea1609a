package cli

import (
	"io"
	"testing"

	"github.com/waxrank/waxrank/pkg/errors"
)

func TestValidateRankOpts(t *testing.T) {
	t.Setenv(envConfigPath, "/nonexistent/config.toml")

	tests := []struct {
		name     string
		opts     rankOpts
		wantCode errors.Code
	}{
		{
			name: "api without user",
			opts: rankOpts{sourceKind: sourceAPI, marketTTLSec: 1, releaseTTLSec: 1},

			wantCode: errors.ErrCodeInvalidInput,
		},
		{
			name: "api with user",
			opts: rankOpts{sourceKind: sourceAPI, user: "someone", marketTTLSec: 1, releaseTTLSec: 1},
		},
		{
			name:     "csv without input",
			opts:     rankOpts{sourceKind: sourceCSV, marketTTLSec: 1, releaseTTLSec: 1},
			wantCode: errors.ErrCodeInvalidInput,
		},
		{
			name: "csv with input",
			opts: rankOpts{sourceKind: sourceCSV, input: "rows.csv", marketTTLSec: 1, releaseTTLSec: 1},
		},
		{
			name:     "unknown source",
			opts:     rankOpts{sourceKind: "ftp", marketTTLSec: 1, releaseTTLSec: 1},
			wantCode: errors.ErrCodeInvalidInput,
		},
		{
			name:     "non-positive ttl",
			opts:     rankOpts{sourceKind: sourceAPI, user: "someone", marketTTLSec: 0, releaseTTLSec: 1},
			wantCode: errors.ErrCodeInvalidInput,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateRankOpts(&tt.opts)
			if tt.wantCode == "" {
				if err != nil {
					t.Errorf("validateRankOpts() = %v, want nil", err)
				}
				return
			}
			if !errors.Is(err, tt.wantCode) {
				t.Errorf("validateRankOpts() = %v, want %s", err, tt.wantCode)
			}
		})
	}
}

func TestRankCommandDefaults(t *testing.T) {
	c := New(io.Discard, LogInfo)
	cmd := c.rankCommand()

	for flag, want := range map[string]string{
		"source":          "api",
		"category":        "selling",
		"cache":           "discogs_cache.json",
		"marketplace-ttl": "86400",
		"release-ttl":     "1209600",
	} {
		f := cmd.Flags().Lookup(flag)
		if f == nil {
			t.Fatalf("flag --%s not registered", flag)
		}
		if f.DefValue != want {
			t.Errorf("--%s default = %q, want %q", flag, f.DefValue, want)
		}
	}
}

func TestRootCommandRegistersSubcommands(t *testing.T) {
	c := New(io.Discard, LogInfo)
	root := c.RootCommand()

	want := map[string]bool{"rank": false, "folders": false, "cache": false, "completion": false}
	for _, sub := range root.Commands() {
		if _, ok := want[sub.Name()]; ok {
			want[sub.Name()] = true
		}
	}
	for name, seen := range want {
		if !seen {
			t.Errorf("subcommand %q not registered", name)
		}
	}
}
