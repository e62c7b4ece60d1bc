package duck

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newProviderServer fakes the provider API for the happy path and
// records the requests it saw.
func newProviderServer(t *testing.T) (*httptest.Server, *requestLog) {
	t.Helper()
	log := &requestLog{}

	mux := http.NewServeMux()
	mux.HandleFunc("/auth/loginlink", func(w http.ResponseWriter, r *http.Request) {
		log.record(r)
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("/auth/login", func(w http.ResponseWriter, r *http.Request) {
		log.record(r)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"authenticated","token":"session-token-1","user":"0xhack1984"}`))
	})
	mux.HandleFunc("/email/dashboard", func(w http.ResponseWriter, r *http.Request) {
		log.record(r)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"invites": [],
			"stats": {"addresses_generated": 42},
			"user": {"access_token": "access-token-1", "cohort": "alpha", "email": "real@example.com", "username": "0xhack1984"}
		}`))
	})
	mux.HandleFunc("/email/addresses", func(w http.ResponseWriter, r *http.Request) {
		log.record(r)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"address":"x9f2kq"}`))
	})

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server, log
}

type loggedRequest struct {
	method string
	path   string
	query  map[string]string
	header http.Header
}

type requestLog struct {
	requests []loggedRequest
}

func (l *requestLog) record(r *http.Request) {
	query := map[string]string{}
	for k := range r.URL.Query() {
		query[k] = r.URL.Query().Get(k)
	}
	l.requests = append(l.requests, loggedRequest{
		method: r.Method,
		path:   r.URL.Path,
		query:  query,
		header: r.Header.Clone(),
	})
}

func (l *requestLog) last() loggedRequest {
	return l.requests[len(l.requests)-1]
}

func TestClientFullExchange(t *testing.T) {
	server, log := newProviderServer(t)
	client := NewClient("0xhack1984", WithBaseURL(server.URL))
	ctx := context.Background()

	assert.Equal(t, StateUnauthenticated, client.State())

	t.Run("request otp", func(t *testing.T) {
		require.NoError(t, client.RequestOTP(ctx))
		assert.Equal(t, StateOTPRequested, client.State())

		req := log.last()
		assert.Equal(t, "/auth/loginlink", req.path)
		assert.Equal(t, "0xhack1984", req.query["user"])
		assert.Equal(t, userAgent, req.header.Get("User-Agent"))
		assert.Equal(t, webOrigin, req.header.Get("Origin"))
		assert.Equal(t, webOrigin, req.header.Get("Referer"))
	})

	t.Run("full login escalates to access token", func(t *testing.T) {
		require.NoError(t, client.FullLogin(ctx, "unstamped matching onboard proofs"))

		assert.Equal(t, StateFullyAuthenticated, client.State())
		assert.Equal(t, "session-token-1", client.SessionToken())
		assert.Equal(t, "access-token-1", client.AccessToken())
		assert.Equal(t, "real@example.com", client.RealEmail())
		assert.Equal(t, 42, client.GeneratedAddresses())

		// The login call normalized the spoken passphrase.
		login := log.requests[1]
		assert.Equal(t, "/auth/login", login.path)
		assert.Equal(t, "unstamped-matching-onboard-proofs", login.query["otp"])
		assert.Equal(t, "0xhack1984", login.query["user"])

		// The dashboard call carried the session token as bearer.
		dashboard := log.requests[2]
		assert.Equal(t, "/email/dashboard", dashboard.path)
		assert.Equal(t, "Bearer session-token-1", dashboard.header.Get("Authorization"))
		assert.Equal(t, userAgent, dashboard.header.Get("User-Agent"))
	})

	t.Run("alias minted with access token", func(t *testing.T) {
		alias, err := client.GenerateAlias(ctx)
		require.NoError(t, err)
		assert.Equal(t, "x9f2kq", alias)

		req := log.last()
		assert.Equal(t, http.MethodPost, req.method)
		assert.Equal(t, "/email/addresses", req.path)
		assert.Equal(t, "Bearer access-token-1", req.header.Get("Authorization"))
	})
}

func TestClientRequestOTPBotChallenge(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "automated traffic", http.StatusForbidden)
	}))
	defer server.Close()

	client := NewClient("0xhack1984", WithBaseURL(server.URL))
	err := client.RequestOTP(context.Background())

	var challenge *BotChallengeError
	require.ErrorAs(t, err, &challenge)
	assert.Equal(t, http.StatusForbidden, challenge.Status)
	assert.Equal(t, StateBotChallenge, client.State())
}

func TestClientRedeemOTPFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "expired", http.StatusForbidden)
	}))
	defer server.Close()

	t.Run("non-2xx is a redemption failure", func(t *testing.T) {
		client := NewClient("0xhack1984", WithBaseURL(server.URL))

		err := client.RedeemOTP(context.Background(), "a b c d")
		var redemption *RedemptionError
		require.ErrorAs(t, err, &redemption)
		assert.Equal(t, http.StatusForbidden, redemption.Status)
		assert.Empty(t, client.SessionToken())
	})

	t.Run("stored access token survives a failed redemption", func(t *testing.T) {
		client := NewClient("0xhack1984", WithBaseURL(server.URL))
		client.Resume("old-session", "old-access")

		err := client.RedeemOTP(context.Background(), "a b c d")
		require.Error(t, err)
		assert.Equal(t, "old-access", client.AccessToken())
		assert.Equal(t, "old-session", client.SessionToken())
	})
}

func TestClientCompleteLoginFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
	}))
	defer server.Close()

	client := NewClient("0xhack1984", WithBaseURL(server.URL))
	client.Resume("stale-session", "")

	err := client.CompleteLogin(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "401")
	assert.Empty(t, client.AccessToken())
}

func TestClientGenerateAliasFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	}))
	defer server.Close()

	client := NewClient("0xhack1984", WithBaseURL(server.URL))
	client.Resume("session", "access")

	_, err := client.GenerateAlias(context.Background())
	var issuance *IssuanceError
	require.ErrorAs(t, err, &issuance)
	assert.Equal(t, http.StatusTooManyRequests, issuance.Status)
}

func TestClientResume(t *testing.T) {
	t.Run("both tokens means fully authenticated", func(t *testing.T) {
		client := NewClient("u")
		client.Resume("session", "access")
		assert.Equal(t, StateFullyAuthenticated, client.State())
	})

	t.Run("session token only", func(t *testing.T) {
		client := NewClient("u")
		client.Resume("session", "")
		assert.Equal(t, StateSessionEstablished, client.State())
	})

	t.Run("no tokens stays unauthenticated", func(t *testing.T) {
		client := NewClient("u")
		client.Resume("", "")
		assert.Equal(t, StateUnauthenticated, client.State())
	})
}
