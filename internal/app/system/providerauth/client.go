package providerauth

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/praxishq/praxis/internal/app/system/identity"
)

// Client talks to the identity provider. When baseURL is empty the
// client runs in local mode: tokens are issued and revoked in-process
// and SignOut has no remote side effect.
type Client struct {
	secret  []byte
	issuer  string
	baseURL string
	http    *http.Client
	log     *zap.Logger

	mu     sync.Mutex
	nextID int
	subs   map[int]func(*identity.Session)
}

// NewClient builds a provider client. secret signs and verifies access
// tokens; baseURL, when set, is the remote provider endpoint used for
// revocation.
func NewClient(secret []byte, issuer, baseURL string, logger *zap.Logger) *Client {
	return &Client{
		secret:  secret,
		issuer:  issuer,
		baseURL: baseURL,
		http:    &http.Client{Timeout: 10 * time.Second},
		log:     logger,
		subs:    make(map[int]func(*identity.Session)),
	}
}

// OnSessionChange registers fn on the session-change stream and returns
// the matching unsubscribe. After unsubscribe returns, fn is never
// called again.
func (c *Client) OnSessionChange(fn func(*identity.Session)) func() {
	c.mu.Lock()
	id := c.nextID
	c.nextID++
	c.subs[id] = fn
	c.mu.Unlock()
	return func() {
		c.mu.Lock()
		delete(c.subs, id)
		c.mu.Unlock()
	}
}

// Announce pushes a session change (nil for sign-out) to every
// subscriber. Login, refresh, and logout flows call this after
// mutating the session.
func (c *Client) Announce(sess *identity.Session) {
	c.mu.Lock()
	fns := make([]func(*identity.Session), 0, len(c.subs))
	for _, fn := range c.subs {
		fns = append(fns, fn)
	}
	c.mu.Unlock()
	for _, fn := range fns {
		fn(sess)
	}
}

// SignOut revokes the session behind accessToken at the remote
// provider. In local mode revocation is a no-op: local tokens carry
// their own expiry and the reconciler clears its state regardless.
func (c *Client) SignOut(ctx context.Context, accessToken string) error {
	if c.baseURL == "" {
		return nil
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/logout", nil)
	if err != nil {
		return fmt.Errorf("provider sign-out: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("provider sign-out: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("provider sign-out: status %d", resp.StatusCode)
	}
	return nil
}

var _ identity.AuthProvider = (*Client)(nil)
