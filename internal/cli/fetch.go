package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/mailsitter/ddep/internal/cliutil"
	"github.com/mailsitter/ddep/internal/mail"
	"github.com/mailsitter/ddep/internal/styles"
)

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Fetch mailbox messages matching a filter",
	Long: `Search the configured mailbox and print the matching messages.

With --wait, keep polling until something matches or the timeout
expires (exit code 1 on timeout). Designed so scripts can watch for
provider mail the same way 'ddep address' does internally.

Examples:
  ddep fetch --unseen
  ddep fetch --from support@duck.com --text "one-time passphrase"
  ddep fetch --wait --timeout 30s --interval 500ms --unseen`,
	RunE: runFetch,
}

var (
	fetchUnseen   bool
	fetchFrom     string
	fetchText     string
	fetchWait     bool
	fetchTimeout  string
	fetchInterval string
)

func init() {
	rootCmd.AddCommand(fetchCmd)

	fetchCmd.Flags().BoolVar(&fetchUnseen, "unseen", false,
		"Match only unread messages")
	fetchCmd.Flags().StringVar(&fetchFrom, "from", "",
		"Match sender address")
	fetchCmd.Flags().StringVar(&fetchText, "text", "",
		"Match message text")
	fetchCmd.Flags().BoolVar(&fetchWait, "wait", false,
		"Poll until a message matches")
	fetchCmd.Flags().StringVar(&fetchTimeout, "timeout", "30s",
		"Maximum time to wait (with --wait)")
	fetchCmd.Flags().StringVar(&fetchInterval, "interval", "500ms",
		"Pause between poll attempts (with --wait)")
}

func runFetch(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfigOrError()
	if err != nil {
		return err
	}
	mailbox, err := mailboxClient(cfg)
	if err != nil {
		return err
	}

	filter := mail.Filter{
		Unseen: fetchUnseen,
		From:   fetchFrom,
		Text:   fetchText,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	var messages []mail.Message
	if fetchWait {
		timeout, err := time.ParseDuration(fetchTimeout)
		if err != nil {
			return fmt.Errorf("invalid timeout format: %w", err)
		}
		interval, err := time.ParseDuration(fetchInterval)
		if err != nil {
			return fmt.Errorf("invalid interval format: %w", err)
		}

		fmt.Fprintf(os.Stderr, "Waiting for mail on %s (timeout: %s)...\n",
			cfg.EmailAddress(), timeout)

		poller := &mail.Poller{
			Searcher: mailbox,
			Logf: func(format string, args ...any) {
				fmt.Fprintln(os.Stderr, styles.MutedStyle.Render(fmt.Sprintf("• "+format, args...)))
			},
		}
		messages, err = poller.PollUntil(ctx, mail.Query{
			Filter:   filter,
			Deadline: timeout,
			Interval: interval,
		})
		if err != nil {
			return err
		}
	} else {
		messages, err = mailbox.FetchMatching(ctx, filter)
		if err != nil {
			return err
		}
		if len(messages) == 0 {
			fmt.Println(styles.Info("No matching messages."))
			return nil
		}
	}

	return outputMessages(cmd, messages)
}

func outputMessages(cmd *cobra.Command, messages []mail.Message) error {
	if cliutil.GetOutput(cmd) == "json" {
		out := make([]map[string]any, 0, len(messages))
		for _, m := range messages {
			out = append(out, map[string]any{
				"from":    m.From,
				"subject": m.Subject,
				"date":    m.Date.Format(time.RFC3339),
				"body":    m.Body,
			})
		}
		return cliutil.OutputJSON(out)
	}

	for i, m := range messages {
		if i > 0 {
			fmt.Println()
		}
		fmt.Println(styles.HeaderStyle.Render(m.Subject))
		fmt.Printf("%s%s\n", styles.LabelStyle.Render("From"), m.From)
		fmt.Printf("%s%s\n", styles.LabelStyle.Render("Received"), humanize.Time(m.Date))
		if m.Body != "" {
			fmt.Println()
			fmt.Println(m.Body)
		}
	}
	return nil
}
