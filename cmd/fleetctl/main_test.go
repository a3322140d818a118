package main

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fleetops/internal/middleware"
)

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestTenantCreateAndList(t *testing.T) {
	master := filepath.Join(t.TempDir(), "master.sqlite")

	out, err := runCLI(t, "tenant", "create",
		"--master", master, "--name", "acme", "--display-name", "Acme Logistics")
	require.NoError(t, err)
	assert.Contains(t, out, "created tenant acme")
	assert.Contains(t, out, "db=acme.sqlite")

	_, err = runCLI(t, "tenant", "create", "--master", master, "--name", "globex")
	require.NoError(t, err)

	out, err = runCLI(t, "tenant", "list", "--master", master)
	require.NoError(t, err)
	assert.Contains(t, out, "acme\tAcme Logistics")
	assert.Contains(t, out, "globex\tglobex")
}

func TestTenantCreateRejectsDuplicateName(t *testing.T) {
	master := filepath.Join(t.TempDir(), "master.sqlite")

	_, err := runCLI(t, "tenant", "create", "--master", master, "--name", "acme")
	require.NoError(t, err)

	_, err = runCLI(t, "tenant", "create", "--master", master, "--name", "acme")
	require.Error(t, err)
}

func TestTokenRoundTripsThroughAuth(t *testing.T) {
	out, err := runCLI(t, "token",
		"--tenant", "ten-1", "--sub", "jane",
		"--role", "dispatcher", "--role", "manager",
		"--secret", "cli-test-secret")
	require.NoError(t, err)

	principal, ok := middleware.ParseToken([]byte("cli-test-secret"), strings.TrimSpace(out))
	require.True(t, ok)
	assert.Equal(t, "jane", principal.Name)
	assert.Equal(t, "ten-1", principal.TenantID)
	assert.ElementsMatch(t, []string{"dispatcher", "manager"}, principal.Roles)
}

func TestTokenRequiresTenantAndSub(t *testing.T) {
	_, err := runCLI(t, "token", "--sub", "jane")
	require.Error(t, err)

	_, err = runCLI(t, "token", "--tenant", "ten-1")
	require.Error(t, err)
}

func TestEnvOverridesFillUnsetFlags(t *testing.T) {
	t.Setenv("FLEETCTL_SECRET", "env-secret")

	out, err := runCLI(t, "token", "--tenant", "ten-1", "--sub", "jane", "--role", "driver")
	require.NoError(t, err)

	_, ok := middleware.ParseToken([]byte("env-secret"), strings.TrimSpace(out))
	assert.True(t, ok)
}

func TestDBFileName(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "acme.sqlite", dbFileName("Acme"))
	assert.Equal(t, "acme-logistics-2.sqlite", dbFileName("Acme Logistics 2"))
}
