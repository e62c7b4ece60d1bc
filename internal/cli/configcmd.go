package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mailsitter/ddep/internal/cliutil"
	"github.com/mailsitter/ddep/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show the current configuration",
	RunE:  runConfigShow,
}

func init() {
	rootCmd.AddCommand(configCmd)
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	path, err := config.Path()
	if err != nil {
		return fmt.Errorf("failed to get config path: %w", err)
	}
	cfg, err := loadConfigOrError()
	if err != nil {
		return err
	}

	if cliutil.GetOutput(cmd) == "json" {
		accounts := map[string]any{}
		for name, acct := range cfg.Accounts {
			accounts[name] = map[string]any{
				"username":    acct.Username,
				"token":       cliutil.MaskToken(acct.Token),
				"accessToken": cliutil.MaskToken(acct.AccessToken),
			}
		}
		return cliutil.OutputJSON(map[string]any{
			"configFile": path,
			"address":    cfg.EmailAddress(),
			"imap":       cfg.IMAPAddr(),
			"username":   cfg.Username(),
			"accounts":   accounts,
		})
	}

	fmt.Printf("Config file: %s\n\n", path)
	fmt.Printf("address:   %s\n", orUnset(cfg.EmailAddress()))
	fmt.Printf("imap:      %s\n", orUnset(cfg.IMAPAddr()))
	fmt.Printf("username:  %s\n", orUnset(cfg.Username()))

	if len(cfg.Accounts) > 0 {
		fmt.Println("\nStored credentials:")
		for name, acct := range cfg.Accounts {
			fmt.Printf("  %s: token %s, access token %s\n",
				name, cliutil.MaskToken(acct.Token), cliutil.MaskToken(acct.AccessToken))
		}
	}
	return nil
}

func orUnset(v string) string {
	if v == "" {
		return "(not set)"
	}
	return v
}
