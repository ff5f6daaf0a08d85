package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rezkam/todo/internal/domain"
)

// writeProfile points todoctl at a fresh sqlite database.
func writeProfile(t *testing.T, requireMessage bool) string {
	t.Helper()
	dir := t.TempDir()
	profile := filepath.Join(dir, "todoctl.toml")
	content := fmt.Sprintf(`
[store]
driver = "sqlite"

[store.sqlite]
path = %q

[todo]
require_completion_message = %t
`, filepath.Join(dir, "todo.db"), requireMessage)
	require.NoError(t, os.WriteFile(profile, []byte(content), 0o600))
	return profile
}

func execute(t *testing.T, profile string, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(append([]string{"--config", profile}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func mustExecute(t *testing.T, profile string, args ...string) string {
	t.Helper()
	out, err := execute(t, profile, args...)
	require.NoError(t, err, "todoctl %s", strings.Join(args, " "))
	return out
}

type listedTodo struct {
	ID                string  `json:"id"`
	Title             string  `json:"title"`
	Completed         bool    `json:"completed"`
	CompletionMessage *string `json:"completionMessage"`
}

func listJSON(t *testing.T, profile string, args ...string) []listedTodo {
	t.Helper()
	out := mustExecute(t, profile, append([]string{"list", "--json"}, args...)...)
	var todos []listedTodo
	require.NoError(t, json.Unmarshal([]byte(out), &todos), out)
	return todos
}

func TestTodoctl_Lifecycle(t *testing.T) {
	profile := writeProfile(t, false)

	id := strings.TrimSpace(mustExecute(t, profile, "add", "Buy milk", "-d", "2 litres"))
	require.NotEmpty(t, id)
	mustExecute(t, profile, "add", "Buy bread")

	todos := listJSON(t, profile)
	require.Len(t, todos, 2)
	assert.Equal(t, "Buy bread", todos[0].Title, "newest first")

	out := mustExecute(t, profile, "done", id, "-m", "got it")
	assert.Contains(t, out, "completed")
	assert.Contains(t, out, "got it")

	completed := listJSON(t, profile, "--status", "completed")
	require.Len(t, completed, 1)
	require.NotNil(t, completed[0].CompletionMessage)
	assert.Equal(t, "got it", *completed[0].CompletionMessage)

	out = mustExecute(t, profile, "undo", id)
	assert.NotContains(t, out, "got it")

	mustExecute(t, profile, "edit", id, "--title", "Buy oat milk")
	assert.Len(t, listJSON(t, profile, "-q", "OAT"), 1)

	assert.Contains(t, mustExecute(t, profile, "rm", id), "deleted "+id)
	assert.Len(t, listJSON(t, profile), 1)

	trash := listJSON(t, profile, "--status", "deleted")
	require.Len(t, trash, 1)
	assert.Equal(t, id, trash[0].ID)

	_, err := execute(t, profile, "show", id)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = execute(t, profile, "rm", id)
	assert.ErrorIs(t, err, domain.ErrNotFound, "deleting twice must fail")

	assert.Contains(t, mustExecute(t, profile, "restore", id), "restored "+id)
	out = mustExecute(t, profile, "show", id)
	assert.Contains(t, out, "Buy oat milk")
	assert.Contains(t, out, "pending")
}

func TestTodoctl_CompletionPolicy(t *testing.T) {
	profile := writeProfile(t, true)
	id := strings.TrimSpace(mustExecute(t, profile, "add", "Buy milk"))

	_, err := execute(t, profile, "done", id)
	assert.ErrorIs(t, err, domain.ErrCompletionMessageRequired)

	mustExecute(t, profile, "done", id, "-m", "bought")
}

func TestTodoctl_Table(t *testing.T) {
	profile := writeProfile(t, false)

	assert.Contains(t, mustExecute(t, profile, "list"), "No todos found.")

	mustExecute(t, profile, "add", "Buy milk")
	out := mustExecute(t, profile, "list")
	assert.Contains(t, out, "STATUS")
	assert.Contains(t, out, "Buy milk")
	assert.Contains(t, out, "pending")
}

func TestTodoctl_InputErrors(t *testing.T) {
	profile := writeProfile(t, false)

	_, err := execute(t, profile, "add", "   ")
	assert.ErrorIs(t, err, domain.ErrTitleRequired)

	_, err = execute(t, profile, "list", "--status", "archived")
	assert.ErrorIs(t, err, domain.ErrInvalidStatus)

	id := strings.TrimSpace(mustExecute(t, profile, "add", "Buy milk"))
	_, err = execute(t, profile, "edit", id)
	assert.ErrorContains(t, err, "nothing to change")

	_, err = execute(t, filepath.Join(t.TempDir(), "missing.toml"), "list")
	assert.Error(t, err)
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "abcd…", truncate("abcdefgh", 5))
}
