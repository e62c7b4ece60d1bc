package cliutil

import (
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
)

func TestMaskToken(t *testing.T) {
	t.Run("long token keeps edges", func(t *testing.T) {
		assert.Equal(t, "abcd...wxyz", MaskToken("abcdefghijklmnopqrstuvwxyz"))
	})

	t.Run("short token fully masked", func(t *testing.T) {
		assert.Equal(t, "****", MaskToken("secret"))
	})

	t.Run("empty token reads as unset", func(t *testing.T) {
		assert.Equal(t, "(not set)", MaskToken(""))
	})
}

func TestGetOutput(t *testing.T) {
	newCmd := func() *cobra.Command {
		cmd := &cobra.Command{Use: "test"}
		cmd.Flags().StringP("output", "o", "", "")
		return cmd
	}

	t.Run("default is pretty", func(t *testing.T) {
		t.Setenv("DDEP_OUTPUT", "")
		assert.Equal(t, "pretty", GetOutput(newCmd()))
	})

	t.Run("env overrides default", func(t *testing.T) {
		t.Setenv("DDEP_OUTPUT", "json")
		assert.Equal(t, "json", GetOutput(newCmd()))
	})

	t.Run("flag wins over env", func(t *testing.T) {
		t.Setenv("DDEP_OUTPUT", "json")
		cmd := newCmd()
		_ = cmd.Flags().Set("output", "pretty")
		assert.Equal(t, "pretty", GetOutput(cmd))
	})
}
