package cli

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"time"

	"github.com/mailsitter/ddep/internal/browser"
	"github.com/mailsitter/ddep/internal/config"
	"github.com/mailsitter/ddep/internal/credential"
	"github.com/mailsitter/ddep/internal/duck"
	"github.com/mailsitter/ddep/internal/flow"
	"github.com/mailsitter/ddep/internal/mail"
	"github.com/mailsitter/ddep/internal/styles"
)

// loadConfigOrError loads the config file with a consistent error message.
func loadConfigOrError() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return cfg, nil
}

// resolveUsername returns the provider username from the flag or the
// config, in that order.
func resolveUsername(cfg *config.Config, usernameFlag string) (string, error) {
	if usernameFlag != "" {
		return usernameFlag, nil
	}
	if u := cfg.Username(); u != "" {
		return u, nil
	}
	return "", fmt.Errorf("no account username. Run 'ddep init' or pass --username")
}

// mailboxClient builds the IMAP client from config. The password comes
// from DDEP_IMAP_PASSWORD, then the keyring, then the config file.
func mailboxClient(cfg *config.Config) (*mail.Client, error) {
	addr := cfg.IMAPAddr()
	address := cfg.EmailAddress()
	if addr == "" || address == "" {
		return nil, fmt.Errorf("mailbox not configured. Run 'ddep init'")
	}

	password := os.Getenv("DDEP_IMAP_PASSWORD")
	if password == "" {
		if stored, err := credential.Get(address); err == nil {
			password = stored
		}
	}
	if password == "" {
		password = cfg.Email.Password
	}
	if password == "" {
		return nil, fmt.Errorf("no mailbox password for %s. Run 'ddep init' or set DDEP_IMAP_PASSWORD", address)
	}

	return mail.NewClient(mail.Config{
		Addr:     addr,
		Username: address,
		Password: password,
	}), nil
}

// runLoginFlow drives the full OTP exchange for username and persists
// the resulting credential.
func runLoginFlow(ctx context.Context, cfg *config.Config, exchange *duck.Client, deadline, interval time.Duration) (config.Account, error) {
	mailbox, err := mailboxClient(cfg)
	if err != nil {
		return config.Account{}, err
	}

	fmt.Fprintln(os.Stderr, styles.Info("Requesting one-time passphrase..."))

	login := &flow.Login{
		Exchange:  exchange,
		Mailbox:   mailbox,
		Deadline:  deadline,
		Interval:  interval,
		Challenge: manualLoginChallenge,
		Logf: func(format string, args ...any) {
			fmt.Fprintln(os.Stderr, styles.MutedStyle.Render(fmt.Sprintf("• "+format, args...)))
		},
	}

	acct, err := login.Run(ctx)
	if err != nil {
		return config.Account{}, err
	}

	if err := config.SaveAccount(acct); err != nil {
		return config.Account{}, fmt.Errorf("failed to save credential: %w", err)
	}
	return acct, nil
}

// manualLoginChallenge walks the user through the one-time browser
// login the provider demands when it suspects automation.
func manualLoginChallenge(loginURL string) error {
	fmt.Fprintln(os.Stderr, styles.WarnStyle.Render("Provider flagged this OTP request as automated traffic."))
	fmt.Fprintf(os.Stderr, "Log in once manually at %s, then press Enter to continue.\n", loginURL)
	if err := browser.OpenURL(loginURL); err != nil {
		fmt.Fprintln(os.Stderr, styles.Info("Could not open a browser; open the link yourself."))
	}
	_, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil {
		return fmt.Errorf("waiting for confirmation: %w", err)
	}
	return nil
}
