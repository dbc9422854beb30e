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
	"gopkg.in/yaml.v3"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	cmd := newRootCmd(&stdout, &stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), err
}

func TestSetGetUnset(t *testing.T) {
	dir := t.TempDir()
	base := []string{"--name", "demo", "--location", dir}

	_, err := run(t, append([]string{"set", "retries", "5"}, base...)...)
	require.NoError(t, err)
	_, err = run(t, append([]string{"set", "theme", "dark"}, base...)...)
	require.NoError(t, err)

	out, err := run(t, append([]string{"get", "retries"}, base...)...)
	require.NoError(t, err)
	assert.Equal(t, "5\n", out)

	out, err = run(t, append([]string{"get", "theme"}, base...)...)
	require.NoError(t, err)
	assert.Equal(t, "dark\n", out)

	out, err = run(t, append([]string{"keys"}, base...)...)
	require.NoError(t, err)
	assert.Equal(t, "retries\ntheme\n", out)

	_, err = run(t, append([]string{"unset", "theme"}, base...)...)
	require.NoError(t, err)
	_, err = run(t, append([]string{"get", "theme"}, base...)...)
	assert.Error(t, err)

	_, err = run(t, append([]string{"unset", "theme"}, base...)...)
	assert.Error(t, err)
}

func TestPathAndBackup(t *testing.T) {
	dir := t.TempDir()
	base := []string{"--name", "demo", "--location", dir, "--caller", "/tools/demo/main.go"}

	out, err := run(t, append([]string{"path"}, base...)...)
	require.NoError(t, err)
	path := strings.TrimSpace(out)
	assert.Equal(t, dir, filepath.Dir(path))
	assert.True(t, strings.HasPrefix(filepath.Base(path), "demo-"))
	assert.True(t, strings.HasSuffix(path, ".cfg"))

	_, err = run(t, append([]string{"set", "a", "1"}, base...)...)
	require.NoError(t, err)
	_, err = run(t, append([]string{"set", "a", "2"}, base...)...)
	require.NoError(t, err)

	backup, err := os.ReadFile(path + ".bak")
	require.NoError(t, err)
	assert.JSONEq(t, `{"a":1}`, string(backup))
}

func TestShowFormats(t *testing.T) {
	dir := t.TempDir()
	base := []string{"--name", "demo", "--location", dir}
	_, err := run(t, append([]string{"set", "flags", "[a, b]"}, base...)...)
	require.NoError(t, err)

	out, err := run(t, append([]string{"show"}, base...)...)
	require.NoError(t, err)
	var asJSON map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &asJSON))
	assert.Equal(t, []any{"a", "b"}, asJSON["flags"])

	out, err = run(t, append([]string{"show", "--format", "yaml"}, base...)...)
	require.NoError(t, err)
	var asYAML map[string]any
	require.NoError(t, yaml.Unmarshal([]byte(out), &asYAML))
	assert.Equal(t, []any{"a", "b"}, asYAML["flags"])

	out, err = run(t, append([]string{"show", "--format", "text"}, base...)...)
	require.NoError(t, err)
	assert.Equal(t, "Settings(flags: [a b])\n", out)

	_, err = run(t, append([]string{"show", "--format", "toml"}, base...)...)
	assert.Error(t, err)
}

func TestDefaultsStore(t *testing.T) {
	dir := t.TempDir()
	_, err := run(t, "set", "region", "eu", "--name", "global", "--location", dir)
	require.NoError(t, err)
	_, err = run(t, "set", "user", "me", "--name", "local", "--location", dir)
	require.NoError(t, err)

	out, err := run(t, "get", "region", "--name", "local", "--defaults", "global", "--location", dir)
	require.NoError(t, err)
	assert.Equal(t, "eu\n", out)

	out, err = run(t, "keys", "--own", "--name", "local", "--defaults", "global", "--location", dir)
	require.NoError(t, err)
	assert.Equal(t, "user\n", out)

	out, err = run(t, "keys", "--name", "local", "--defaults", "global", "--location", dir)
	require.NoError(t, err)
	assert.Equal(t, "region\nuser\n", out)
}

func TestEnvironmentBinding(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("SETTINGS_NAME", "fromenv")
	t.Setenv("SETTINGS_LOCATION", dir)

	_, err := run(t, "set", "k", "v")
	require.NoError(t, err)

	out, err := run(t, "path")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(filepath.Base(strings.TrimSpace(out)), "fromenv-"))

	out, err = run(t, "get", "k", "--name", "other")
	assert.Error(t, err, "flags win over the environment")
	assert.Empty(t, out)
}

func TestParseValue(t *testing.T) {
	assert.Equal(t, 5, parseValue("5"))
	assert.Equal(t, true, parseValue("true"))
	assert.Equal(t, "plain text", parseValue("plain text"))
	assert.Equal(t, "", parseValue(""))
	assert.Equal(t, map[string]any{"a": 1}, parseValue("{a: 1}"))
}

func TestLogFileReceivesJSONRecords(t *testing.T) {
	dir := t.TempDir()
	logPath := filepath.Join(t.TempDir(), "settings.log")

	_, err := run(t, "set", "k", "v", "--name", "demo", "--location", dir, "--log-file", logPath)
	require.NoError(t, err)

	raw, err := os.ReadFile(logPath)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(raw)), "\n")
	require.NotEmpty(t, lines)

	var saved bool
	for _, line := range lines {
		var record map[string]any
		require.NoError(t, json.Unmarshal([]byte(line), &record))
		assert.Equal(t, "demo", record["store"])
		if record["msg"] == "settings saved" {
			saved = true
		}
	}
	assert.True(t, saved, "save must be logged")
}

func TestBackupFlag(t *testing.T) {
	dir := t.TempDir()
	base := []string{"--name", "demo", "--location", dir, "--backup=false"}

	_, err := run(t, append([]string{"set", "a", "1"}, base...)...)
	require.NoError(t, err)
	_, err = run(t, append([]string{"set", "a", "2"}, base...)...)
	require.NoError(t, err)

	out, err := run(t, append([]string{"path"}, base...)...)
	require.NoError(t, err)
	_, err = os.Stat(strings.TrimSpace(out) + ".bak")
	assert.ErrorIs(t, err, os.ErrNotExist)
}
