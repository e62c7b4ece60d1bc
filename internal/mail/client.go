package mail

import (
	"context"
	"fmt"
	"sort"

	"github.com/emersion/go-imap/v2"
	"github.com/emersion/go-imap/v2/imapclient"
)

// Config holds the IMAP settings for the mailbox that receives the
// provider's OTP mail.
type Config struct {
	Addr     string // host:port, implicit TLS
	Username string
	Password string
}

// Filter selects which mailbox messages a search matches. The zero
// value matches everything in INBOX. Callers choose the filter; the
// login flow and the fetch command use different ones.
type Filter struct {
	Unseen bool
	From   string
	Text   string
}

func (f Filter) criteria() *imap.SearchCriteria {
	c := &imap.SearchCriteria{}
	if f.Unseen {
		c.NotFlag = append(c.NotFlag, imap.FlagSeen)
	}
	if f.From != "" {
		c.Header = append(c.Header, imap.SearchCriteriaHeaderField{
			Key:   "From",
			Value: f.From,
		})
	}
	if f.Text != "" {
		c.Text = append(c.Text, f.Text)
	}
	return c
}

// Client talks to the IMAP server. Each call runs a full session:
// dial, login, select, work, logout. The logout runs on every exit
// path, including failures mid-fetch.
type Client struct {
	cfg Config
}

// NewClient creates an IMAP client for the given mailbox settings.
func NewClient(cfg Config) *Client {
	return &Client{cfg: cfg}
}

func (c *Client) connect() (*imapclient.Client, error) {
	client, err := imapclient.DialTLS(c.cfg.Addr, nil)
	if err != nil {
		return nil, fmt.Errorf("connecting to IMAP %s: %w", c.cfg.Addr, err)
	}
	if err := client.Login(c.cfg.Username, c.cfg.Password).Wait(); err != nil {
		_ = client.Logout().Wait()
		return nil, fmt.Errorf("authenticating %s: %w", c.cfg.Username, err)
	}
	return client, nil
}

// FetchMatching searches INBOX with the filter and returns the full
// parsed message for every match, ordered oldest first. No matches is
// not an error.
func (c *Client) FetchMatching(ctx context.Context, filter Filter) ([]Message, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	client, err := c.connect()
	if err != nil {
		return nil, err
	}
	defer func() { _ = client.Logout().Wait() }()

	if _, err := client.Select("INBOX", nil).Wait(); err != nil {
		return nil, fmt.Errorf("selecting INBOX: %w", err)
	}

	searchData, err := client.UIDSearch(filter.criteria(), nil).Wait()
	if err != nil {
		return nil, fmt.Errorf("searching messages: %w", err)
	}

	uids := searchData.AllUIDs()
	if len(uids) == 0 {
		return nil, nil
	}

	bodySection := &imap.FetchItemBodySection{Peek: true}
	fetchOpts := &imap.FetchOptions{
		Envelope:    true,
		UID:         true,
		BodySection: []*imap.FetchItemBodySection{bodySection},
	}

	fetchCmd := client.Fetch(imap.UIDSetNum(uids...), fetchOpts)
	defer fetchCmd.Close()

	var messages []Message
	for {
		msg := fetchCmd.Next()
		if msg == nil {
			break
		}
		buf, err := msg.Collect()
		if err != nil {
			continue
		}
		messages = append(messages, messageFromBuffer(buf, bodySection))
	}
	if err := fetchCmd.Close(); err != nil {
		return nil, fmt.Errorf("fetching messages: %w", err)
	}

	// Fetch responses can arrive out of order; arrival order is by UID.
	sort.Slice(messages, func(i, j int) bool {
		return messages[i].UID < messages[j].UID
	})
	return messages, nil
}

func messageFromBuffer(buf *imapclient.FetchMessageBuffer, section *imap.FetchItemBodySection) Message {
	m := Message{UID: uint32(buf.UID)}

	if buf.Envelope != nil {
		m.Subject = buf.Envelope.Subject
		m.Date = buf.Envelope.Date
		if len(buf.Envelope.From) > 0 {
			m.From = buf.Envelope.From[0].Addr()
		}
	}

	if raw := buf.FindBodySection(section); raw != nil {
		m.Body = plainTextBody(raw)
	}
	return m
}
