package cli

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mailsitter/ddep/internal/config"
	"github.com/mailsitter/ddep/internal/credential"
	"github.com/mailsitter/ddep/internal/styles"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Configure the mailbox and provider account",
	Long: `Store the IMAP settings for the mailbox that receives OTP mail and
the Email Protection account username.

The mailbox password goes to the OS keyring. Pass --store-password to
write it into the config file instead (headless machines).

Examples:
  ddep init
  ddep init --address me@example.com --imap imap.example.com:993 --username myduck`,
	RunE: runInit,
}

var (
	initAddress       string
	initIMAP          string
	initUsername      string
	initPassword      string
	initStorePassword bool
)

func init() {
	rootCmd.AddCommand(initCmd)

	initCmd.Flags().StringVar(&initAddress, "address", "",
		"Mailbox login address")
	initCmd.Flags().StringVar(&initIMAP, "imap", "",
		"IMAP server as host:port")
	initCmd.Flags().StringVar(&initUsername, "username", "",
		"Email Protection account username")
	initCmd.Flags().StringVar(&initPassword, "password", "",
		"Mailbox password (prompted when omitted)")
	initCmd.Flags().BoolVar(&initStorePassword, "store-password", false,
		"Keep the password in the config file instead of the keyring")
}

func runInit(cmd *cobra.Command, args []string) error {
	existing, err := loadConfigOrError()
	if err != nil {
		return err
	}

	reader := bufio.NewReader(os.Stdin)

	address, err := promptValue(reader, "Mailbox address", initAddress, existing.Email.Address)
	if err != nil {
		return err
	}
	imapAddr, err := promptValue(reader, "IMAP server (host:port)", initIMAP, existing.Email.IMAP)
	if err != nil {
		return err
	}
	username, err := promptValue(reader, "Account username", initUsername, existing.Provider.Username)
	if err != nil {
		return err
	}

	password := initPassword
	if password == "" {
		fmt.Print("Mailbox password (leave empty to keep current): ")
		line, err := reader.ReadString('\n')
		if err != nil {
			return err
		}
		password = strings.TrimSpace(line)
	}

	cfg := &config.Config{
		Email:    config.Email{Address: address, IMAP: imapAddr},
		Provider: config.Provider{Username: username},
	}

	if password != "" {
		if initStorePassword {
			cfg.Email.Password = password
		} else if err := credential.Set(address, password); err != nil {
			fmt.Fprintln(os.Stderr, styles.WarnStyle.Render(
				"Keyring unavailable, storing the password in the config file."))
			cfg.Email.Password = password
		}
	}

	if err := config.Save(cfg); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}

	path, _ := config.Path()
	fmt.Println(styles.Success("Config saved to " + path))
	return nil
}

// promptValue resolves a setting from flag, then interactive prompt,
// falling back to the currently stored value on empty input.
func promptValue(reader *bufio.Reader, label, flagValue, current string) (string, error) {
	if flagValue != "" {
		return flagValue, nil
	}
	if current != "" {
		fmt.Printf("%s [%s]: ", label, current)
	} else {
		fmt.Printf("%s: ", label)
	}
	line, err := reader.ReadString('\n')
	if err != nil {
		return "", err
	}
	value := strings.TrimSpace(line)
	if value == "" {
		value = current
	}
	if value == "" {
		return "", fmt.Errorf("%s is required", strings.ToLower(label))
	}
	return value, nil
}
