package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"

	"github.com/mailsitter/ddep/internal/cliutil"
	"github.com/mailsitter/ddep/internal/duck"
	"github.com/mailsitter/ddep/internal/flow"
	"github.com/mailsitter/ddep/internal/styles"
)

var addressCmd = &cobra.Command{
	Use:   "address",
	Short: "Mint a new disposable alias",
	Long: `Mint a new @` + duck.AliasDomain + ` alias under the configured account.

When no credential is stored, the full OTP login exchange runs first:
request an OTP, poll the mailbox until the mail arrives, redeem the
passphrase. Aliases are never retried on failure since the provider
rate limits minting per account.

Examples:
  ddep address
  ddep address -o json | jq -r .address`,
	RunE: runAddress,
}

var addressUsername string

func init() {
	rootCmd.AddCommand(addressCmd)

	addressCmd.Flags().StringVar(&addressUsername, "username", "",
		"Account username (default: configured)")
}

func runAddress(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfigOrError()
	if err != nil {
		return err
	}
	username, err := resolveUsername(cfg, addressUsername)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	exchange := duck.NewClient(username)
	if acct, ok := cfg.Account(username); ok {
		exchange.Resume(acct.Token, acct.AccessToken)
	}

	if exchange.AccessToken() == "" {
		if _, err := runLoginFlow(ctx, cfg, exchange, flow.DefaultDeadline, flow.DefaultInterval); err != nil {
			return err
		}
	}

	localPart, err := exchange.GenerateAlias(ctx)
	if err != nil {
		return err
	}
	alias := localPart + "@" + duck.AliasDomain

	if cliutil.GetOutput(cmd) == "json" {
		return cliutil.OutputJSON(map[string]any{
			"address":   alias,
			"localPart": localPart,
			"createdAt": time.Now().Format(time.RFC3339),
		})
	}

	printAlias(alias)
	return nil
}

func printAlias(alias string) {
	title := styles.SuccessTitleStyle.Render("Alias Ready!")
	box := styles.SuccessBoxStyle.Render(fmt.Sprintf("%s\n\n  %s",
		title, styles.AddressStyle.Render(alias)))

	fmt.Fprintln(os.Stdout)
	fmt.Fprintln(os.Stdout, box)
	fmt.Fprintln(os.Stdout)
}
