package cli

import (
	"os"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	color.NoColor = true
	os.Exit(m.Run())
}

func TestRootCommand(t *testing.T) {
	cmd := NewRootCommand()
	require.NotNil(t, cmd)
	assert.Equal(t, "planctl", cmd.Use)
	assert.Contains(t, cmd.Long, "weekly training plan")
}

func TestCommandPresence(t *testing.T) {
	cmd := NewRootCommand()
	commands := []string{"show", "log", "token", "publish", "history", "mcp"}

	for _, cmdName := range commands {
		t.Run(cmdName, func(t *testing.T) {
			subCmd, _, err := cmd.Find([]string{cmdName})
			require.NoError(t, err, "Command %s should exist", cmdName)
			require.NotNil(t, subCmd)
			assert.Equal(t, cmdName, subCmd.Name())
		})
	}
}

func TestGlobalFlags(t *testing.T) {
	cmd := NewRootCommand()

	configFlag := cmd.PersistentFlags().Lookup("config")
	require.NotNil(t, configFlag)
	assert.Equal(t, "c", configFlag.Shorthand)
	assert.Equal(t, "config.yaml", configFlag.DefValue)

	verboseFlag := cmd.PersistentFlags().Lookup("verbose")
	require.NotNil(t, verboseFlag)
	assert.Equal(t, "v", verboseFlag.Shorthand)
	assert.Equal(t, "false", verboseFlag.DefValue)

	require.NotNil(t, cmd.PersistentFlags().Lookup("no-color"))
}

func TestShowCommandFlags(t *testing.T) {
	cmd := NewRootCommand()
	showCmd, _, err := cmd.Find([]string{"show"})
	require.NoError(t, err)

	forceFlag := showCmd.Flags().Lookup("force")
	require.NotNil(t, forceFlag)
	assert.Equal(t, "f", forceFlag.Shorthand)
	assert.Equal(t, "false", forceFlag.DefValue)
	require.NotNil(t, showCmd.Flags().Lookup("raw"))
	require.NotNil(t, showCmd.Flags().Lookup("supplemental"))
}

func TestHistoryCommandFlags(t *testing.T) {
	cmd := NewRootCommand()
	historyCmd, _, err := cmd.Find([]string{"history"})
	require.NoError(t, err)

	limitFlag := historyCmd.Flags().Lookup("limit")
	require.NotNil(t, limitFlag)
	assert.Equal(t, "20", limitFlag.DefValue)
}

func TestLogCommandRequiresDate(t *testing.T) {
	cmd := NewRootCommand()
	cmd.SetArgs([]string{"log", "Bench=185x5"})
	cmd.SetOut(new(discard))
	cmd.SetErr(new(discard))

	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"date" not set`)
}

func TestPublishCommandRequiresTitleAndFile(t *testing.T) {
	cmd := NewRootCommand()
	cmd.SetArgs([]string{"publish"})
	cmd.SetOut(new(discard))
	cmd.SetErr(new(discard))

	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "title")
	assert.Contains(t, err.Error(), "file")
}

type discard struct{}

func (*discard) Write(p []byte) (int, error) { return len(p), nil }
