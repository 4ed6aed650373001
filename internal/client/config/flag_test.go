package config

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func TestParseFlags(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		expected Config
		wantErr  bool
	}{
		{
			name: "all flags",
			args: []string{"-a", "http://10.0.0.1:9000/api", "-d", "/tmp/s.db", "-t", "5", "-i", "10", "-r", "2.5", "-l", "debug"},
			expected: Config{
				ServerBaseURL:       "http://10.0.0.1:9000/api",
				TokenDBPath:         "/tmp/s.db",
				RequestTimeout:      5 * time.Second,
				OnlineCheckInterval: 10 * time.Second,
				RateLimit:           2.5,
				LogLevel:            "debug",
				LogFormat:           "text",
			},
		},
		{
			name: "foreign flags ignored",
			args: []string{"-c", "cfg.json", "-x", "-a", "http://h:1"},
			expected: Config{
				ServerBaseURL:       "http://h:1",
				TokenDBPath:         "skillswap.db",
				RequestTimeout:      15 * time.Second,
				OnlineCheckInterval: 3 * time.Second,
				LogLevel:            "warn",
				LogFormat:           "text",
			},
		},
		{name: "incorrect check interval", args: []string{"-i", "abc"}, wantErr: true},
		{name: "incorrect rate", args: []string{"-r", "fast"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			withArgs(t, tt.args...)

			var cfg Config
			cfg.LoadDefaults()
			err := parseFlags(&cfg)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			if diff := cmp.Diff(tt.expected, cfg); diff != "" {
				t.Fatalf("config mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestParseFlags_KeepsSubSecondValuesWhenAbsent(t *testing.T) {
	withArgs(t, "-a", "http://h:1")

	cfg := Config{RequestTimeout: 500 * time.Millisecond, OnlineCheckInterval: 250 * time.Millisecond}
	require.NoError(t, parseFlags(&cfg))
	require.Equal(t, 500*time.Millisecond, cfg.RequestTimeout)
	require.Equal(t, 250*time.Millisecond, cfg.OnlineCheckInterval)
}
