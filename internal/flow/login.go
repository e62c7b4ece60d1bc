// Package flow ties the OTP mail loop to the credential exchange:
// request an OTP, poll the mailbox until it lands, extract the
// passphrase and redeem it for a long-lived credential.
package flow

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/mailsitter/ddep/internal/config"
	"github.com/mailsitter/ddep/internal/duck"
	"github.com/mailsitter/ddep/internal/mail"
)

// Polling defaults: the OTP mail normally arrives within a few
// seconds of the request.
const (
	DefaultDeadline = 30 * time.Second
	DefaultInterval = 500 * time.Millisecond
)

// DefaultFilter matches the provider's unread OTP mail.
var DefaultFilter = mail.Filter{
	Unseen: true,
	From:   "support@duck.com",
	Text:   "one-time passphrase",
}

// Exchange is the slice of the provider client the login flow drives.
type Exchange interface {
	RequestOTP(ctx context.Context) error
	FullLogin(ctx context.Context, rawOTP string) error
	Username() string
	SessionToken() string
	AccessToken() string
}

// ParseError reports a matched OTP mail whose body had no passphrase
// block. Only the newest match is trusted (the OTP request was just
// issued), so extraction is not retried against older messages.
type ParseError struct {
	Body string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("no one-time passphrase found in message body:\n%s", e.Body)
}

// Login runs the full exchange for one account. Zero-valued timing
// fields fall back to the defaults above.
type Login struct {
	Exchange Exchange
	Mailbox  mail.Searcher

	Filter   mail.Filter
	Deadline time.Duration
	Interval time.Duration

	// Challenge is invoked when the provider flags the OTP request as
	// automated. It should walk the user through a one-time manual
	// browser login and return once they confirm. A non-nil error
	// aborts the flow; otherwise polling proceeds regardless, since
	// the OTP mail is usually sent anyway.
	Challenge func(loginURL string) error

	// Logf receives progress notices. Nil means silent.
	Logf func(format string, args ...any)
}

// Run drives the exchange to completion and returns the credential to
// persist. The caller owns persistence.
func (l *Login) Run(ctx context.Context) (config.Account, error) {
	if err := l.Exchange.RequestOTP(ctx); err != nil {
		var challenge *duck.BotChallengeError
		if !errors.As(err, &challenge) {
			return config.Account{}, err
		}
		l.logf("provider flagged the otp request as automated (status %d)", challenge.Status)
		if l.Challenge != nil {
			if err := l.Challenge(duck.LoginURL); err != nil {
				return config.Account{}, err
			}
		}
	}

	poller := &mail.Poller{Searcher: l.Mailbox, Logf: l.Logf}
	messages, err := poller.PollUntil(ctx, mail.Query{
		Filter:   l.filter(),
		Deadline: l.deadline(),
		Interval: l.interval(),
	})
	if err != nil {
		return config.Account{}, fmt.Errorf("waiting for otp email: %w", err)
	}

	// Newest matching message; the OTP request was just issued.
	newest := messages[len(messages)-1]
	otp, ok := duck.ExtractOTP(newest.Body)
	if !ok {
		return config.Account{}, &ParseError{Body: newest.Body}
	}

	if err := l.Exchange.FullLogin(ctx, otp); err != nil {
		return config.Account{}, err
	}

	return config.Account{
		Username:    l.Exchange.Username(),
		Token:       l.Exchange.SessionToken(),
		AccessToken: l.Exchange.AccessToken(),
	}, nil
}

func (l *Login) filter() mail.Filter {
	if l.Filter == (mail.Filter{}) {
		return DefaultFilter
	}
	return l.Filter
}

func (l *Login) deadline() time.Duration {
	if l.Deadline <= 0 {
		return DefaultDeadline
	}
	return l.Deadline
}

func (l *Login) interval() time.Duration {
	if l.Interval <= 0 {
		return DefaultInterval
	}
	return l.Interval
}

func (l *Login) logf(format string, args ...any) {
	if l.Logf != nil {
		l.Logf(format, args...)
	}
}
