package cli

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// runCommand executes the root command with args and captures stdout.
func runCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestRootCommand_InvalidFormat(t *testing.T) {
	_, err := runCommand(t, "--format", "xml", "validate", "--model", "testdata/model.cue")
	assert.Error(t, err)
}

func TestValidateCommand_OK(t *testing.T) {
	out, err := runCommand(t, "validate", "--model", "testdata/model.cue")
	require.NoError(t, err)
	assert.Contains(t, out, "OK   friends-share-likes: Friend(X, Y) & Likes(X, Z) & !Likes(Y, Z)")
}

func TestValidateCommand_ReportsFailures(t *testing.T) {
	out, err := runCommand(t, "validate", "--model", "testdata/invalid.cue")
	require.Error(t, err)
	assert.Contains(t, out, "FAIL unbound-head")
	assert.Contains(t, out, "UNBOUND_VARIABLE")
}

func TestValidateCommand_MissingModelFlag(t *testing.T) {
	_, err := runCommand(t, "validate")
	assert.Error(t, err)
}

func TestGroundCommand_Text(t *testing.T) {
	out, err := runCommand(t,
		"ground",
		"--model", "testdata/model.cue",
		"--data", "testdata/facts.yaml",
		"--db", filepath.Join(t.TempDir(), "ground.db"),
	)
	require.NoError(t, err)

	assert.Contains(t, out, "5: Friend(alice, bob) & Likes(alice, tea) & !Likes(bob, tea)")
	assert.Contains(t, out, "5: Friend(bob, carol) & Likes(bob, coffee) & !Likes(carol, coffee)")
	assert.Contains(t, out, "2 ground rules")
}

func TestGroundCommand_JSON(t *testing.T) {
	out, err := runCommand(t,
		"--format", "json",
		"ground",
		"--model", "testdata/model.cue",
		"--data", "testdata/facts.yaml",
		"--db", filepath.Join(t.TempDir(), "ground.db"),
	)
	require.NoError(t, err)

	assert.Contains(t, out, `"pos"`)
	assert.Contains(t, out, `"Friend(alice, bob)"`)
	assert.Contains(t, out, `"multiplicity": 1`)
}

func TestLoadFacts(t *testing.T) {
	facts, err := LoadFacts("testdata/facts.yaml")
	require.NoError(t, err)
	require.Contains(t, facts.Partitions, "observations")
	assert.Len(t, facts.Partitions["observations"], 4)
	assert.Equal(t, "Friend", facts.Partitions["observations"][0].Pred)
}
