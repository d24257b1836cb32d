package cli

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestValidateDefaults(t *testing.T) {
	c := &Cmd{}
	require.NoError(t, c.Validate())
	require.Equal(t, "./test.c", c.input())
	require.Equal(t, "./test", c.output())
	require.Equal(t, "", c.Mode)
}

func TestValidatePositionalArgs(t *testing.T) {
	c := &Cmd{}
	c.SetArgs([]string{"in.c", "out", "object"})
	require.NoError(t, c.Validate())
	require.Equal(t, "in.c", c.input())
	require.Equal(t, "out", c.output())
	require.Equal(t, "object", c.Mode)
}

func TestValidateRejectsConflictingMode(t *testing.T) {
	c := &Cmd{Mode: "exec"}
	c.SetArgs([]string{"in.c", "out", "object"})
	require.Error(t, c.Validate())
}

func TestValidateRejectsUnknownMode(t *testing.T) {
	c := &Cmd{Mode: "bogus"}
	require.Error(t, c.Validate())
}

func TestValidateRejectsTooManyArgs(t *testing.T) {
	c := &Cmd{}
	c.SetArgs([]string{"in.c", "out", "exec", "extra"})
	require.Error(t, c.Validate())
}

func TestValidateSkipsArgChecksForHelpAndVersion(t *testing.T) {
	c := &Cmd{Help: true}
	c.SetArgs([]string{"in.c", "out", "bogus-mode", "extra", "way-too-many"})
	require.NoError(t, c.Validate())

	c = &Cmd{Version: true}
	require.NoError(t, c.Validate())
}

func TestOutputFallsBackToFlagThenDefault(t *testing.T) {
	c := &Cmd{Output: "flagged"}
	require.Equal(t, "flagged", c.output())

	c = &Cmd{}
	require.Equal(t, "./test", c.output())
}
