package duck

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const otpMail = "To continue, open this link in your browser:\r\n\r\n" +
	"https://duckduckgo.com/email/login?otp=unstamped-matching-onboard-proofs&user=0xhack1984\r\n\r\n" +
	"Or, enter this one-time passphrase in your open DuckDuckGo tab:\r\n\r\n" +
	"unstamped matching onboard proofs\r\n\r\n" +
	"If you didn’t expect this email, someone may have accidentally entered your Duck\r\n" +
	"Address when attempting to enable Email Protection in their browser. If needed,\r\n" +
	"you can reach us at support@duck.com.\r\n"

func TestExtractOTP(t *testing.T) {
	t.Run("provider mail yields the passphrase block", func(t *testing.T) {
		otp, ok := ExtractOTP(otpMail)
		require.True(t, ok)
		assert.Equal(t, "unstamped matching onboard proofs", otp)
	})

	t.Run("LF line endings are accepted", func(t *testing.T) {
		body := "enter this one-time passphrase now:\n\nalpha beta gamma delta\n\nfooter text\n"
		otp, ok := ExtractOTP(body)
		require.True(t, ok)
		assert.Equal(t, "alpha beta gamma delta", otp)
	})

	t.Run("internal whitespace is preserved, edges trimmed", func(t *testing.T) {
		body := "one-time passphrase:\r\n\r\n  spaced  out  words \r\n\r\nrest\r\n"
		otp, ok := ExtractOTP(body)
		require.True(t, ok)
		assert.Equal(t, "spaced  out  words", otp)
	})

	t.Run("missing marker yields nothing", func(t *testing.T) {
		_, ok := ExtractOTP("your parcel has shipped\r\n\r\ntracking ABC123\r\n\r\n")
		assert.False(t, ok)
	})

	t.Run("marker without a block yields nothing", func(t *testing.T) {
		_, ok := ExtractOTP("one-time passphrase mentioned inline with no block")
		assert.False(t, ok)
	})

	t.Run("empty body yields nothing", func(t *testing.T) {
		_, ok := ExtractOTP("")
		assert.False(t, ok)
	})
}

func TestNormalizeOTP(t *testing.T) {
	t.Run("login link yields the otp query value", func(t *testing.T) {
		otp := NormalizeOTP("https://x/y?otp=a-b-c-d&user=z")
		assert.Equal(t, "a-b-c-d", otp)
	})

	t.Run("passphrase spaces become hyphens", func(t *testing.T) {
		assert.Equal(t, "a-b-c-d", NormalizeOTP("a b c d"))
	})

	t.Run("url form wins over passphrase form", func(t *testing.T) {
		otp := NormalizeOTP("https://duckduckgo.com/email/login?otp=unstamped-matching-onboard-proofs&user=0xhack1984")
		assert.Equal(t, "unstamped-matching-onboard-proofs", otp)
	})

	t.Run("already hyphenated input is untouched", func(t *testing.T) {
		assert.Equal(t, "a-b-c-d", NormalizeOTP("a-b-c-d"))
	})

	t.Run("surrounding whitespace is trimmed", func(t *testing.T) {
		assert.Equal(t, "a-b-c-d", NormalizeOTP("  a b c d\n"))
	})
}
