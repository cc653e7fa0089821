package cli

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func noConnect(context.Context, *RootOptions) (Service, func(), error) {
	panic("connect must not be called")
}

func TestRootCommand(t *testing.T) {
	cmd := NewRootCommand(noConnect)
	require.NotNil(t, cmd)
	assert.Equal(t, "gdprctl", cmd.Use)
	assert.Contains(t, cmd.Long, "audited")
}

func TestCommandPresence(t *testing.T) {
	cmd := NewRootCommand(noConnect)
	commands := []string{"export", "request-deletion", "process-deletion", "compliance", "requests"}

	for _, name := range commands {
		t.Run(name, func(t *testing.T) {
			sub, _, err := cmd.Find([]string{name})
			require.NoError(t, err, "command %s should exist", name)
			require.NotNil(t, sub)
			assert.Equal(t, name, sub.Name())
		})
	}
}

func TestGlobalFlags(t *testing.T) {
	cmd := NewRootCommand(noConnect)

	verbose := cmd.PersistentFlags().Lookup("verbose")
	require.NotNil(t, verbose)
	assert.Equal(t, "v", verbose.Shorthand)
	assert.Equal(t, "false", verbose.DefValue)

	output := cmd.PersistentFlags().Lookup("output")
	require.NotNil(t, output)
	assert.Equal(t, "text", output.DefValue)

	dsn := cmd.PersistentFlags().Lookup("dsn")
	require.NotNil(t, dsn)
	assert.Equal(t, "", dsn.DefValue)
}

func TestExportCommandFlags(t *testing.T) {
	cmd := NewRootCommand(noConnect)
	export, _, err := cmd.Find([]string{"export"})
	require.NoError(t, err)

	format := export.Flags().Lookup("format")
	require.NotNil(t, format)
	assert.Equal(t, "f", format.Shorthand)
	assert.Equal(t, "json", format.DefValue)
	require.NotNil(t, export.Flags().Lookup("include"))
}

func TestInvalidOutputRejected(t *testing.T) {
	cmd := NewRootCommand(noConnect)
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs([]string{"--output", "yaml", "requests", "u1"})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "invalid output")
}

func TestProcessDeletionRequiresCode(t *testing.T) {
	cmd := NewRootCommand(noConnect)
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs([]string{"process-deletion", "u1"})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "code")
}
