package duck

import (
	"net/url"
	"regexp"
	"strings"
)

// otpBlockPattern matches the blank-line-delimited passphrase block that
// follows the "one-time passphrase" marker in the provider's mail. The
// lazy group stops at the first blank line so footer text never bleeds
// into the passphrase.
var otpBlockPattern = regexp.MustCompile(`one-time passphrase.*\n\n([\w\s-]+?)\n\n`)

// ExtractOTP scans an email body for the one-time passphrase block.
// It returns the trimmed block content and whether one was found.
// Both CRLF and LF line endings are accepted.
func ExtractOTP(body string) (string, bool) {
	normalized := strings.ReplaceAll(body, "\r\n", "\n")
	m := otpBlockPattern.FindStringSubmatch(normalized)
	if m == nil {
		return "", false
	}
	return strings.TrimSpace(m[1]), true
}

// NormalizeOTP converts user- or mail-supplied OTP input into the
// hyphenated form the login endpoint expects. A login link
// ("https://.../login?otp=a-b-c-d&user=x") yields its otp query value;
// anything else is treated as a spoken passphrase and spaces become
// hyphens. The URL check runs first.
func NormalizeOTP(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if u, err := url.Parse(trimmed); err == nil && u.Scheme != "" && u.Host != "" {
		if otp := u.Query().Get("otp"); otp != "" {
			return otp
		}
	}
	return strings.ReplaceAll(trimmed, " ", "-")
}
