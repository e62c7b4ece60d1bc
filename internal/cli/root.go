package cli

import (
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/mailsitter/ddep/internal/config"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "ddep",
	Short: "Mint disposable duck.com aliases from the terminal",
	Long: `ddep automates DuckDuckGo Email Protection logins.

The provider authenticates by mailing a one-time passphrase. ddep
requests one, polls your mailbox over IMAP until it arrives, redeems
it for a long-lived credential and uses that to mint aliases.

Examples:
  ddep init                    # Configure mailbox and account
  ddep address                 # Mint a new alias (logs in if needed)
  ddep fetch --wait --text otp # Watch the mailbox from a script`,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "",
		"config file (default is $HOME/.config/ddep/config.yaml)")
	rootCmd.PersistentFlags().StringP("output", "o", "",
		"Output format: pretty, json")
}

func initConfig() {
	// Local .env files may carry DDEP_* overrides (mailbox password in
	// CI, custom config dir).
	_ = godotenv.Load()

	if cfgFile != "" {
		config.SetPath(cfgFile)
	}
}
