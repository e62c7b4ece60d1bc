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
	"github.com/mailsitter/ddep/internal/styles"
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Run the full OTP login and store the credential",
	Long: `Force a fresh login: request an OTP, wait for the mail, redeem it and
persist the resulting tokens. 'ddep address' does this automatically
when no credential is stored; use 'login' to refresh one.

Examples:
  ddep login
  ddep login --timeout 60s`,
	RunE: runLogin,
}

var (
	loginUsername string
	loginTimeout  string
	loginInterval string
)

func init() {
	rootCmd.AddCommand(loginCmd)

	loginCmd.Flags().StringVar(&loginUsername, "username", "",
		"Account username (default: configured)")
	loginCmd.Flags().StringVar(&loginTimeout, "timeout", "30s",
		"Maximum time to wait for the OTP mail")
	loginCmd.Flags().StringVar(&loginInterval, "interval", "500ms",
		"Pause between mailbox polls")
}

func runLogin(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfigOrError()
	if err != nil {
		return err
	}
	username, err := resolveUsername(cfg, loginUsername)
	if err != nil {
		return err
	}
	timeout, err := time.ParseDuration(loginTimeout)
	if err != nil {
		return fmt.Errorf("invalid timeout format: %w", err)
	}
	interval, err := time.ParseDuration(loginInterval)
	if err != nil {
		return fmt.Errorf("invalid interval format: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	exchange := duck.NewClient(username)
	acct, err := runLoginFlow(ctx, cfg, exchange, timeout, interval)
	if err != nil {
		return err
	}

	if cliutil.GetOutput(cmd) == "json" {
		return cliutil.OutputJSON(map[string]any{
			"username": acct.Username,
			"email":    exchange.RealEmail(),
			"state":    exchange.State().String(),
		})
	}

	fmt.Println(styles.Success("Logged in as " + acct.Username))
	fmt.Printf("%s%s\n", styles.LabelStyle.Render("Email"), exchange.RealEmail())
	fmt.Printf("%s%s\n", styles.LabelStyle.Render("Aliases"), fmt.Sprint(exchange.GeneratedAddresses()))
	fmt.Printf("%s%s\n", styles.LabelStyle.Render("Token"), cliutil.MaskToken(acct.AccessToken))
	return nil
}
