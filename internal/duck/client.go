package duck

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

const (
	defaultBaseURL = "https://quack.duckduckgo.com/api"

	otpPath       = "/auth/loginlink"
	loginPath     = "/auth/login"
	dashboardPath = "/email/dashboard"
	addressesPath = "/email/addresses"

	// The API only accepts requests that look like they came from the
	// provider's own web client.
	webOrigin = "https://duckduckgo.com"
	userAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36"
)

// AliasDomain is the suffix under which minted local parts receive mail.
const AliasDomain = "duck.com"

// LoginURL is the provider's web login page, used for the manual
// detour when an OTP request trips the bot challenge.
const LoginURL = "https://duckduckgo.com/email/login"

// State tracks how far the credential exchange has progressed.
type State int

const (
	StateUnauthenticated State = iota
	StateOTPRequested
	StateBotChallenge
	StateSessionEstablished
	StateFullyAuthenticated
)

func (s State) String() string {
	switch s {
	case StateUnauthenticated:
		return "unauthenticated"
	case StateOTPRequested:
		return "otp-requested"
	case StateBotChallenge:
		return "bot-challenge"
	case StateSessionEstablished:
		return "session-established"
	case StateFullyAuthenticated:
		return "fully-authenticated"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

type loginResponse struct {
	Status string `json:"status"`
	Token  string `json:"token"`
	User   string `json:"user"`
}

// Dashboard is the account detail document returned after redeeming an
// OTP. The access token inside it outlives the session token used to
// fetch it.
type Dashboard struct {
	Invites []string       `json:"invites"`
	Stats   DashboardStats `json:"stats"`
	User    DashboardUser  `json:"user"`
}

type DashboardStats struct {
	AddressesGenerated int `json:"addresses_generated"`
}

type DashboardUser struct {
	AccessToken string `json:"access_token"`
	Cohort      string `json:"cohort"`
	Email       string `json:"email"`
	Username    string `json:"username"`
}

type aliasResponse struct {
	Address string `json:"address"`
}

// Client drives the provider's token chain for one account:
// request OTP, redeem it for a session token, trade the session token
// for a long-lived access token, mint aliases with the access token.
// It is not safe for concurrent use; the protocol is strictly
// sequential anyway.
type Client struct {
	username    string
	token       string
	accessToken string
	realEmail   string
	generated   int
	state       State

	baseURL    string
	httpClient *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL overrides the API base URL. Used by tests.
func WithBaseURL(base string) Option {
	return func(c *Client) { c.baseURL = base }
}

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// NewClient creates an unauthenticated exchange client for username.
func NewClient(username string, opts ...Option) *Client {
	c := &Client{
		username:   username,
		state:      StateUnauthenticated,
		baseURL:    defaultBaseURL,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Resume restores tokens from a persisted credential record. The state
// reflects how far the recorded exchange had escalated: an access
// token implies the session exchange once succeeded.
func (c *Client) Resume(sessionToken, accessToken string) {
	c.token = sessionToken
	c.accessToken = accessToken
	switch {
	case accessToken != "":
		c.state = StateFullyAuthenticated
	case sessionToken != "":
		c.state = StateSessionEstablished
	}
}

// Username returns the account username the client exchanges for.
func (c *Client) Username() string { return c.username }

// State returns the current exchange state.
func (c *Client) State() State { return c.state }

// SessionToken returns the short-lived token from OTP redemption.
func (c *Client) SessionToken() string { return c.token }

// AccessToken returns the long-lived bearer token, if obtained.
func (c *Client) AccessToken() string { return c.accessToken }

// RealEmail returns the verified address from the dashboard, if known.
func (c *Client) RealEmail() string { return c.realEmail }

// GeneratedAddresses returns the provider-side alias counter, if known.
func (c *Client) GeneratedAddresses() int { return c.generated }

// RequestOTP asks the provider to mail a one-time passphrase to the
// account's verified address. A non-2xx response means the provider
// suspects automation and is returned as a *BotChallengeError.
func (c *Client) RequestOTP(ctx context.Context) error {
	query := url.Values{"user": {c.username}}
	resp, err := c.get(ctx, otpPath, query, c.webHeaders())
	if err != nil {
		return fmt.Errorf("requesting otp: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.state = StateBotChallenge
		return &BotChallengeError{Status: resp.StatusCode}
	}
	c.state = StateOTPRequested
	return nil
}

// RedeemOTP submits a one-time passphrase (raw passphrase or login
// link) and stores the resulting session token. A non-2xx response is
// a *RedemptionError; previously stored tokens are left untouched.
func (c *Client) RedeemOTP(ctx context.Context, rawOTP string) error {
	otp := NormalizeOTP(rawOTP)
	query := url.Values{"user": {c.username}, "otp": {otp}}
	resp, err := c.get(ctx, loginPath, query, c.webHeaders())
	if err != nil {
		return fmt.Errorf("redeeming otp: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &RedemptionError{Status: resp.StatusCode}
	}

	var lr loginResponse
	if err := json.NewDecoder(resp.Body).Decode(&lr); err != nil {
		return fmt.Errorf("decoding login response: %w", err)
	}
	c.token = lr.Token
	c.state = StateSessionEstablished
	return nil
}

// CompleteLogin fetches the dashboard with the session token and keeps
// the long-lived access token, verified address and alias counter from
// it. Any failure is fatal for the session; the caller must restart
// from RequestOTP.
func (c *Client) CompleteLogin(ctx context.Context) error {
	resp, err := c.get(ctx, dashboardPath, nil, c.bearerHeaders(c.token))
	if err != nil {
		return fmt.Errorf("fetching dashboard: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("dashboard fetch failed with status %d", resp.StatusCode)
	}

	var d Dashboard
	if err := json.NewDecoder(resp.Body).Decode(&d); err != nil {
		return fmt.Errorf("decoding dashboard response: %w", err)
	}
	c.accessToken = d.User.AccessToken
	c.realEmail = d.User.Email
	c.generated = d.Stats.AddressesGenerated
	c.state = StateFullyAuthenticated
	return nil
}

// FullLogin redeems an OTP and completes the login in one go.
func (c *Client) FullLogin(ctx context.Context, rawOTP string) error {
	if err := c.RedeemOTP(ctx, rawOTP); err != nil {
		return err
	}
	return c.CompleteLogin(ctx)
}

// GenerateAlias mints a new disposable address and returns its local
// part. A non-2xx response is a *IssuanceError and is never retried
// here: alias minting is rate limited per account.
func (c *Client) GenerateAlias(ctx context.Context) (string, error) {
	endpoint := c.baseURL + addressesPath
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, nil)
	if err != nil {
		return "", err
	}
	applyHeaders(req, c.bearerHeaders(c.accessToken))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("minting alias: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", &IssuanceError{Status: resp.StatusCode}
	}

	var ar aliasResponse
	if err := json.NewDecoder(resp.Body).Decode(&ar); err != nil {
		return "", fmt.Errorf("decoding alias response: %w", err)
	}
	return ar.Address, nil
}

func (c *Client) get(ctx context.Context, path string, query url.Values, headers http.Header) (*http.Response, error) {
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	applyHeaders(req, headers)
	return c.httpClient.Do(req)
}

// webHeaders mimics the provider's web client. The auth endpoints
// reject requests without them.
func (c *Client) webHeaders() http.Header {
	h := http.Header{}
	h.Set("User-Agent", userAgent)
	h.Set("Origin", webOrigin)
	h.Set("Referer", webOrigin)
	return h
}

// bearerHeaders carries a token for the authenticated endpoints, which
// want only the browser User-Agent alongside it.
func (c *Client) bearerHeaders(token string) http.Header {
	h := http.Header{}
	h.Set("User-Agent", userAgent)
	if token != "" {
		h.Set("Authorization", "Bearer "+token)
	}
	return h
}

func applyHeaders(req *http.Request, headers http.Header) {
	for k, vs := range headers {
		for _, v := range vs {
			req.Header.Set(k, v)
		}
	}
}
