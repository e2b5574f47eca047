package main

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/specialistvlad/reqgraph/internal/cli"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRun_PanicRecovery(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	invalidHCL := `
		item "sword1" {
			item = "sword"
		// Missing closing brace here
	`
	filePath := filepath.Join(t.TempDir(), "main.hcl")
	require.NoError(t, os.WriteFile(filePath, []byte(invalidHCL), 0o600))
	out := &bytes.Buffer{}

	// --- Act ---
	runErr := run(context.Background(), out, io.Discard, []string{"-c", filePath})

	// --- Assert ---
	require.Error(t, runErr)
	var exitErr *cli.ExitError
	require.True(t, errors.As(runErr, &exitErr))
	assert.Equal(t, cli.ExitRuntime, exitErr.Code)
	assert.Contains(t, runErr.Error(), "application startup panicked")
	assert.Contains(t, runErr.Error(), "failed to parse")
}

func TestRun_ShouldExit(t *testing.T) {
	t.Parallel()
	out := &bytes.Buffer{}

	err := run(context.Background(), out, io.Discard, []string{"-h"})

	require.NoError(t, err)
	assert.Contains(t, out.String(), "Usage:")
}

func TestRun_ParseError(t *testing.T) {
	t.Parallel()

	err := run(context.Background(), io.Discard, io.Discard, []string{"--this-is-not-a-valid-flag"})

	var exitErr *cli.ExitError
	require.True(t, errors.As(err, &exitErr))
	assert.Equal(t, cli.ExitUsage, exitErr.Code)
	assert.Contains(t, err.Error(), "unknown flag: --this-is-not-a-valid-flag")
}

func TestRun_ExampleCatalog(t *testing.T) {
	t.Parallel()
	example := filepath.Join("..", "..", "examples", "lttp")
	out := &bytes.Buffer{}

	err := run(context.Background(), out, io.Discard, []string{
		"-c", filepath.Join(example, "catalog"),
		"-s", filepath.Join(example, "state.yaml"),
		"--set", "item.lamp=1",
		"light",
	})

	require.NoError(t, err)
	assert.Regexp(t, `light\s+any_of\s+normal\s+true`, out.String())
}

func TestRun_RuntimeError(t *testing.T) {
	t.Parallel()
	example := filepath.Join("..", "..", "examples", "lttp")

	err := run(context.Background(), io.Discard, io.Discard, []string{"-c", filepath.Join(example, "catalog"), "triforce"})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown requirement key: 'triforce'")
}

func TestRun_RuntimePanicRecovery(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	example := filepath.Join("..", "..", "examples", "lttp")
	args := []string{
		"-c", filepath.Join(example, "catalog"),
		"-s", filepath.Join(example, "state.yaml"),
		"--set", "boss.eastern_palace=lanmolas",
		"eastern_palace",
	}

	// --- Act ---
	runErr := run(context.Background(), io.Discard, io.Discard, args)

	// --- Assert ---
	var exitErr *cli.ExitError
	require.True(t, errors.As(runErr, &exitErr))
	assert.Equal(t, cli.ExitRuntime, exitErr.Code)
	assert.Contains(t, runErr.Error(), "application run panicked")
	assert.Contains(t, runErr.Error(), "not handled")
}
