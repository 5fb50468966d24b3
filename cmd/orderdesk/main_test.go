package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runCLI(t *testing.T, args ...string) (int, string, string) {
	t.Helper()
	t.Setenv("ORDERDESK_LOG__LEVEL", "error")
	t.Setenv("ORDERDESK_STORAGE__DRIVER", "memory")

	var stdout, stderr bytes.Buffer
	code := run(context.Background(), args, &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func TestRun_Version(t *testing.T) {
	code, out, _ := runCLI(t, "version")
	require.Equal(t, exitOK, code)

	var v map[string]string
	require.NoError(t, json.Unmarshal([]byte(out), &v))
	assert.NotEmpty(t, v["version"])
}

func TestRun_UsageErrors(t *testing.T) {
	cases := [][]string{
		nil,
		{"customer"},
		{"nope", "list"},
		{"order", "get"},
		{"product", "add", "-price", "abc"},
		{"order", "create", "-item", "broken"},
	}
	for _, args := range cases {
		code, _, stderr := runCLI(t, args...)
		assert.Equal(t, exitUsage, code, "args %v", args)
		assert.NotEmpty(t, stderr, "args %v", args)
	}
}

func TestRun_BusinessErrorsAreJSON(t *testing.T) {
	code, out, _ := runCLI(t, "order", "create", "-customer", "1", "-item", "1:1")
	require.Equal(t, exitFailure, code)

	var e errorOut
	require.NoError(t, json.Unmarshal([]byte(out), &e))
	assert.Equal(t, "not_found", e.Kind)
	assert.Contains(t, e.Error, "customer")

	code, out, _ = runCLI(t, "customer", "add", "-email", "x@example.com")
	require.Equal(t, exitFailure, code)
	require.NoError(t, json.Unmarshal([]byte(out), &e))
	assert.Equal(t, "validation", e.Kind)
}

func TestRun_ListsOnEmptyStore(t *testing.T) {
	for _, args := range [][]string{
		{"customer", "list"},
		{"product", "list"},
		{"order", "list"},
		{"report", "popular"},
		{"report", "top", "-limit", "3"},
	} {
		code, out, _ := runCLI(t, args...)
		require.Equal(t, exitOK, code, "args %v", args)
		assert.Equal(t, "[]", strings.TrimSpace(out), "args %v", args)
	}
}

func TestRun_BestCustomerWithoutData(t *testing.T) {
	code, out, _ := runCLI(t, "report", "best")
	require.Equal(t, exitOK, code)

	var best customerSpendOut
	require.NoError(t, json.Unmarshal([]byte(out), &best))
	assert.Equal(t, "no data", best.Name)
	assert.Equal(t, "0.00", best.Total)
}

func TestRun_Demo(t *testing.T) {
	t.Setenv("ORDERDESK_SEED__RANDOM_SEED", "42")
	code, out, _ := runCLI(t, "demo")
	require.Equal(t, exitOK, code)

	var demo struct {
		Seed struct {
			Customers int `json:"customers"`
			Products  int `json:"products"`
		} `json:"seed"`
		Summary summaryOut `json:"summary"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &demo))
	assert.Equal(t, 5, demo.Seed.Customers)
	assert.Equal(t, 8, demo.Seed.Products)
	assert.Equal(t, 5, demo.Summary.Customers)
	assert.Len(t, demo.Summary.ByStatus, 3)
}

func TestRun_HealthAndEvents(t *testing.T) {
	code, out, _ := runCLI(t, "health")
	require.Equal(t, exitOK, code)
	assert.Contains(t, out, `"status": "healthy"`)

	code, out, _ = runCLI(t, "events", "publish")
	require.Equal(t, exitOK, code)
	assert.Contains(t, out, "no publisher configured")
}

func TestRun_ConfigFileAndMetricsTextfile(t *testing.T) {
	dir := t.TempDir()
	textfile := filepath.Join(dir, "orderdesk.prom")
	configPath := filepath.Join(dir, "orderdesk.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte("metrics:\n  textfile: "+textfile+"\n"), 0o600))

	code, _, _ := runCLI(t, "-config", configPath, "data", "seed", "-orders", "3", "-seed", "1")
	require.Equal(t, exitOK, code)

	data, err := os.ReadFile(textfile)
	require.NoError(t, err)
	assert.Contains(t, string(data), "orderdesk_orders_created_total")
}

func TestRun_BadConfig(t *testing.T) {
	code, _, stderr := runCLI(t, "-config", filepath.Join(t.TempDir(), "missing.yaml"), "health")
	assert.Equal(t, exitUsage, code)
	assert.Contains(t, stderr, "config")
}

func TestItemsFlag(t *testing.T) {
	var items itemsFlag
	require.NoError(t, items.Set("3:2"))
	require.NoError(t, items.Set(" 4 : 1 "))
	assert.Equal(t, "3:2,4:1", items.String())

	assert.Error(t, items.Set("3"))
	assert.Error(t, items.Set("x:1"))
	assert.Error(t, items.Set("3:y"))
}
