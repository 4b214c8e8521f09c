package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/rpggio/efxcreator/internal/domain/project"
)

type cliTestEnv struct {
	baseDir    string
	configPath string
	exportDir  string
}

func setupCLITestEnv(t *testing.T) *cliTestEnv {
	t.Helper()
	for _, key := range []string{
		"EFX_CONFIG_PATH", "EFX_DATA_DIR", "EFX_CATALOG_PATH", "EFX_DB_PATH",
		"EFX_STORAGE_DIR", "EFX_STORAGE_LOCATION", "EFX_STORAGE_EXTERNAL",
		"EFX_AUDIO_SAMPLE_BYTES", "EFX_EXPORT_DIR", "EFX_LOG_LEVEL", "EFX_LOG_PATH",
	} {
		t.Setenv(key, "")
	}

	base := t.TempDir()
	env := &cliTestEnv{
		baseDir:    base,
		configPath: filepath.Join(base, "efxctl.yaml"),
		exportDir:  filepath.Join(base, "exports"),
	}
	content := fmt.Sprintf("data:\n  dir: %q\nexport:\n  dir: %q\nlog:\n  level: error\n  path: %q\n",
		filepath.Join(base, "data"), env.exportDir, filepath.Join(base, "logs", "efxctl.log"))
	require.NoError(t, os.WriteFile(env.configPath, []byte(content), 0o644))
	return env
}

func runCLI(t *testing.T, env *cliTestEnv, args ...string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(append([]string{"--config", env.configPath}, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func createProject(t *testing.T, env *cliTestEnv, name string) string {
	t.Helper()
	_, _, err := runCLI(t, env, "create", name)
	require.NoError(t, err)

	out, _, err := runCLI(t, env, "list", "--json")
	require.NoError(t, err)
	var summaries []project.Summary
	require.NoError(t, json.Unmarshal([]byte(out), &summaries))
	for _, s := range summaries {
		if s.Name == name {
			return s.ID
		}
	}
	t.Fatalf("project %q not listed", name)
	return ""
}

func showTimeline(t *testing.T, env *cliTestEnv, id string) timelineView {
	t.Helper()
	out, _, err := runCLI(t, env, "show", id, "--json")
	require.NoError(t, err)
	var view timelineView
	require.NoError(t, json.Unmarshal([]byte(out), &view))
	return view
}

func TestCLI_CreateListShow(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, env, "list")
	require.NoError(t, err)
	require.Contains(t, out, "No projects")

	id := createProject(t, env, "Opener")

	out, _, err = runCLI(t, env, "list")
	require.NoError(t, err)
	require.Contains(t, out, "Opener")
	require.Contains(t, out, id)

	view := showTimeline(t, env, id)
	require.Equal(t, "Opener", view.Name)
	require.Equal(t, 1, view.EntryCount)
	require.Equal(t, 1, view.Entries[0].Index)
	require.Equal(t, "off", view.Entries[0].Effect)
}

func TestCLI_EntryEditing(t *testing.T) {
	env := setupCLITestEnv(t)
	id := createProject(t, env, "Edits")

	_, _, err := runCLI(t, env, "entry", "add", id, "--at", "0:05.000", "--effect", "strobe", "--color", "ff0000")
	require.NoError(t, err)
	_, _, err = runCLI(t, env, "entry", "add", id, "--at", "1000")
	require.NoError(t, err)
	_, _, err = runCLI(t, env, "entry", "add", id, "--at", "3000", "--effect", "blink")
	require.NoError(t, err)

	view := showTimeline(t, env, id)
	require.Equal(t, 4, view.EntryCount)
	var got []int64
	for i, e := range view.Entries {
		require.Equal(t, i+1, e.Index)
		got = append(got, e.TimestampMs)
	}
	require.Equal(t, []int64{0, 1000, 3000, 5000}, got)
	require.True(t, strings.HasPrefix(view.Entries[3].Effect, "strobe #ff0000"))

	_, _, err = runCLI(t, env, "entry", "delete", id, "3")
	require.NoError(t, err)
	view = showTimeline(t, env, id)
	require.Equal(t, 3, view.EntryCount)

	_, _, err = runCLI(t, env, "entry", "update", id, "1", "--at", "9000", "--effect", "on")
	require.NoError(t, err)
	view = showTimeline(t, env, id)
	require.Equal(t, int64(9000), view.Entries[2].TimestampMs)
	require.Equal(t, 3, view.Entries[2].Index)

	_, _, err = runCLI(t, env, "entry", "delete", id, "7")
	require.Error(t, err)
	_, _, err = runCLI(t, env, "entry", "add", id)
	require.Error(t, err)
	_, _, err = runCLI(t, env, "entry", "add", id, "--at", "10", "--spf", "300")
	require.Error(t, err)
}

func TestCLI_RenameExportDelete(t *testing.T) {
	env := setupCLITestEnv(t)
	id := createProject(t, env, "Temp")

	_, _, err := runCLI(t, env, "rename", id, "Finale")
	require.NoError(t, err)

	out, _, err := runCLI(t, env, "export", id)
	require.NoError(t, err)
	require.Contains(t, out, "Finale.efx")
	data, err := os.ReadFile(filepath.Join(env.exportDir, "Finale.efx"))
	require.NoError(t, err)
	require.Equal(t, "EFX1", string(data[:4]))

	_, _, err = runCLI(t, env, "delete", id)
	require.NoError(t, err)
	_, _, err = runCLI(t, env, "show", id)
	require.ErrorIs(t, err, project.ErrProjectNotFound)
}

func TestCLI_Audio(t *testing.T) {
	env := setupCLITestEnv(t)
	id := createProject(t, env, "Audio")

	audioPath := filepath.Join(env.baseDir, "Night Drive.mp3")
	require.NoError(t, os.WriteFile(audioPath, []byte("not really an mp3"), 0o644))

	_, _, err := runCLI(t, env, "audio", id, audioPath, "--rename")
	require.NoError(t, err)
	view := showTimeline(t, env, id)
	require.Equal(t, "Night Drive", view.Name)
	require.NotZero(t, view.AudioFingerprint)
	require.NotNil(t, view.AudioRef)

	_, _, err = runCLI(t, env, "audio", id)
	require.NoError(t, err)
	view = showTimeline(t, env, id)
	require.Zero(t, view.AudioFingerprint)
	require.Nil(t, view.AudioRef)

	_, _, err = runCLI(t, env, "audio", id, filepath.Join(env.baseDir, "missing.mp3"))
	require.Error(t, err)
}

func TestCLI_StorageMoveAndCheck(t *testing.T) {
	env := setupCLITestEnv(t)
	first := createProject(t, env, "One")
	second := createProject(t, env, "Two")

	target := filepath.Join(env.baseDir, "moved")
	out, _, err := runCLI(t, env, "storage", "set", target)
	require.NoError(t, err)
	require.Contains(t, out, "Moved: 2")

	for _, id := range []string{first, second} {
		_, err := os.Stat(filepath.Join(target, id+".efx"))
		require.NoError(t, err)
	}

	out, _, err = runCLI(t, env, "storage")
	require.NoError(t, err)
	require.Contains(t, out, target)

	out, _, err = runCLI(t, env, "check")
	require.NoError(t, err)
	require.Contains(t, out, "consistent")

	out, _, err = runCLI(t, env, "storage", "set", target)
	require.NoError(t, err)
	require.Contains(t, out, "Moved: 0")

	require.NoError(t, os.WriteFile(filepath.Join(target, "stray.efx"), []byte("x"), 0o644))
	out, _, err = runCLI(t, env, "check")
	require.NoError(t, err)
	require.Contains(t, out, "no catalog record")
}

func TestCLI_History(t *testing.T) {
	env := setupCLITestEnv(t)
	id := createProject(t, env, "Logged")
	_, _, err := runCLI(t, env, "rename", id, "Logged again")
	require.NoError(t, err)

	out, _, err := runCLI(t, env, "history", id)
	require.NoError(t, err)
	require.Contains(t, out, "project_created")
	require.Contains(t, out, "project_renamed")

	out, _, err = runCLI(t, env, "history", "--type", "project_renamed", "--json")
	require.NoError(t, err)
	require.Contains(t, out, "Logged again")
	require.NotContains(t, out, "project_created")
}

func TestLogFileWriterTruncates(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "efxctl.log")
	writer, file, err := newSizedLogFileWriter(path, 64, 32)
	require.NoError(t, err)
	defer file.Close()

	for i := 0; i < 20; i++ {
		_, err := fmt.Fprintf(writer, "line %02d\n", i)
		require.NoError(t, err)
	}

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.LessOrEqual(t, len(data), 64)
	require.Contains(t, string(data), "line 19")
	require.NotContains(t, string(data), "line 00")
}
