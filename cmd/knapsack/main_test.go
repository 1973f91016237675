package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRun_SolvesGeneratedCatalogue(t *testing.T) {
	saved := filepath.Join(t.TempDir(), "catalogue.json")
	var out bytes.Buffer

	code := run([]string{
		"--population=10", "--generations=40", "--improve-after=0",
		"--items=12", "--capacity=40", "--catalog-seed=4", "--seed=3",
		"--runs=2", "--verify", "--save-catalog=" + saved, "--log-level=error",
	}, &out)
	require.Equal(t, 0, code)

	var sol struct {
		RunID string `json:"run_id"`
		Seed  uint64 `json:"seed"`
		Best  struct {
			Quality int `json:"quality"`
			Weight  int `json:"weight"`
		} `json:"best"`
		Runs    []json.RawMessage `json:"runs"`
		Optimum *int              `json:"optimum"`
	}
	require.NoError(t, json.Unmarshal(out.Bytes(), &sol), out.String())
	assert.True(t, strings.HasPrefix(sol.RunID, "run-"))
	assert.Equal(t, uint64(3), sol.Seed)
	assert.Len(t, sol.Runs, 2)
	assert.Positive(t, sol.Best.Quality)
	assert.LessOrEqual(t, sol.Best.Weight, 40)
	require.NotNil(t, sol.Optimum)
	assert.LessOrEqual(t, sol.Best.Quality, *sol.Optimum)

	_, err := os.Stat(saved)
	assert.NoError(t, err)
}

func TestRun_ReadsConfigFile(t *testing.T) {
	dir := t.TempDir()
	catalogue := filepath.Join(dir, "small.json")
	require.NoError(t, os.WriteFile(catalogue, []byte(`{
		"capacity": 10,
		"items": [{"value":10,"weight":5},{"value":8,"weight":4},{"value":6,"weight":3},{"value":4,"weight":2},{"value":2,"weight":1}]
	}`), 0o600))

	conf := filepath.Join(dir, "config.toml")
	require.NoError(t, os.WriteFile(conf, []byte(`
[solver]
population_size = 20
generations = 150
improve_after = 0
seed = 42

[problem]
catalog = "`+filepath.ToSlash(catalogue)+`"
capacity = 0

[log]
level = "error"
`), 0o600))

	var out bytes.Buffer
	require.Equal(t, 0, run([]string{"--config", conf}, &out))

	var sol struct {
		Best struct {
			Quality int `json:"quality"`
		} `json:"best"`
	}
	require.NoError(t, json.Unmarshal(out.Bytes(), &sol), out.String())
	assert.Equal(t, 20, sol.Best.Quality)
}

func TestRun_Failures(t *testing.T) {
	var out bytes.Buffer
	assert.Equal(t, 2, run([]string{"--runs=0"}, &out))
	assert.Equal(t, 2, run([]string{"--no-such-flag"}, &out))
	assert.Equal(t, 1, run([]string{"--log-level=error", "explode"}, &out))
	assert.Equal(t, 1, run([]string{"--log-level=error", "--watch"}, &out))
	assert.Empty(t, out.String())
}
