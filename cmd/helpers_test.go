//go:build !integration

package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sells-group/producer-intervals/internal/config"
)

const sampleFile = "../data/movielist.csv"

// testConfig returns the default configuration pointed at source.
func testConfig(source string) *config.Config {
	return &config.Config{
		Source: config.SourceConfig{
			Path:             source,
			FetchTimeoutSecs: 5,
			UserAgent:        "producer-intervals-test",
		},
		Store: config.StoreConfig{Driver: "memory", DSN: ":memory:"},
		Server: config.ServerConfig{
			Port:                3000,
			ReadTimeoutSecs:     5,
			WriteTimeoutSecs:    5,
			ShutdownTimeoutSecs: 5,
			CORSOrigins:         []string{"*"},
		},
		Monitoring: config.MonitoringConfig{MaxSkippedRatio: 0.5},
		Log:        config.LogConfig{Level: "info", Format: "json"},
	}
}

func writeSource(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "movielist.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func newTestEnv(t *testing.T, c *config.Config) *pipelineEnv {
	t.Helper()
	env, err := initPipeline(context.Background(), c)
	require.NoError(t, err)
	t.Cleanup(env.Close)
	return env
}
