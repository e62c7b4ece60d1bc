package config

import (
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config is the typed view of the on-disk document. The file may carry
// keys this tool does not know about; saves merge into the existing
// document so those survive.
type Config struct {
	Email    Email              `yaml:"email,omitempty"`
	Provider Provider           `yaml:"provider,omitempty"`
	Accounts map[string]Account `yaml:"accounts,omitempty"`
}

// Email holds the IMAP settings for the mailbox receiving OTP mail.
// Password is the headless-use fallback; the keyring is preferred.
type Email struct {
	Address  string `yaml:"address,omitempty"`
	IMAP     string `yaml:"imap,omitempty"` // host:port
	Password string `yaml:"password,omitempty"`
}

// Provider names the default alias-provider account.
type Provider struct {
	Username string `yaml:"username,omitempty"`
}

// Account is the persisted credential record for one provider account.
// AccessToken is only ever set after Token was obtained: the login
// exchange escalates monotonically and is replaced wholesale on
// re-login.
type Account struct {
	Username    string `yaml:"username"`
	Token       string `yaml:"token,omitempty"`
	AccessToken string `yaml:"access_token,omitempty"`
}

// overridePath is set by the --config flag.
var overridePath string

// SetPath overrides the config file location for this process.
func SetPath(path string) { overridePath = path }

// Dir returns the ddep config directory.
// Respects the DDEP_CONFIG_DIR environment variable if set.
func Dir() (string, error) {
	if dir := os.Getenv("DDEP_CONFIG_DIR"); dir != "" {
		return dir, nil
	}
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "ddep"), nil
}

// Path returns the config file path (~/.config/ddep/config.yaml unless
// overridden).
func Path() (string, error) {
	if overridePath != "" {
		return overridePath, nil
	}
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

// EnsureDir creates the directory holding the config file.
func EnsureDir() error {
	path, err := Path()
	if err != nil {
		return err
	}
	return os.MkdirAll(filepath.Dir(path), 0700)
}

// Load reads the config file. A missing file yields an empty Config.
func Load() (*Config, error) {
	path, err := Path()
	if err != nil {
		return nil, err
	}
	var cfg Config
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &cfg, nil
		}
		return nil, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Account returns the stored credential for username, if any.
func (c *Config) Account(username string) (Account, bool) {
	acct, ok := c.Accounts[username]
	return acct, ok
}

// getValue returns a value with priority: env (DDEP_<key>) > file.
func getValue(envKey, fileValue string) string {
	if env := os.Getenv("DDEP_" + envKey); env != "" {
		return env
	}
	return fileValue
}

// IMAPAddr returns the IMAP host:port, env-overridable.
func (c *Config) IMAPAddr() string { return getValue("IMAP_ADDR", c.Email.IMAP) }

// EmailAddress returns the mailbox login address, env-overridable.
func (c *Config) EmailAddress() string { return getValue("EMAIL_ADDRESS", c.Email.Address) }

// Username returns the provider account username, env-overridable.
func (c *Config) Username() string { return getValue("USERNAME", c.Provider.Username) }
