package cliutil

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// GetOutput returns the output format with priority: flag > env > default.
func GetOutput(cmd *cobra.Command) string {
	if flag := cmd.Flag("output"); flag != nil && flag.Changed {
		return flag.Value.String()
	}
	if env := os.Getenv("DDEP_OUTPUT"); env != "" {
		return env
	}
	return "pretty"
}

// OutputJSON marshals v to indented JSON and prints it to stdout.
func OutputJSON(v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(data))
	return nil
}

// MaskToken masks a token for display, keeping the first 4 and last 4
// characters.
func MaskToken(token string) string {
	if token == "" {
		return "(not set)"
	}
	if len(token) >= 12 {
		return token[:4] + "..." + token[len(token)-4:]
	}
	return "****"
}
