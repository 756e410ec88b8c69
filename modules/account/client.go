package account

import (
	"context"
	"sync"

	"github.com/containercalc/containercalc/pkg/auth"
	"github.com/containercalc/containercalc/pkg/authstate"
)

// Client is a token-holding facade over the Service that satisfies
// authstate.Client. It tracks the session token across sign-in, refresh,
// and sign-out, which lets an authstate.Manager drive the full account
// lifecycle without touching HTTP transport details.
type Client struct {
	svc *Service

	mu    sync.Mutex
	token string
}

var _ authstate.Client = (*Client)(nil)

// NewClient creates a client bound to the service. An initial token may be
// empty for anonymous clients.
func NewClient(svc *Service, token string) *Client {
	if svc == nil {
		panic("account: service is required")
	}
	return &Client{svc: svc, token: token}
}

// Token returns the session token currently held by the client.
func (c *Client) Token() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.token
}

func (c *Client) setToken(token string) {
	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
}

func (c *Client) Session(ctx context.Context) (*auth.User, error) {
	user, _, err := c.svc.CurrentUser(ctx, c.Token())
	if err != nil {
		return nil, err
	}
	return user, nil
}

func (c *Client) SignIn(ctx context.Context, email, password string) (*auth.User, error) {
	user, sess, err := c.svc.SignIn(ctx, email, password)
	if err != nil {
		return nil, err
	}
	c.setToken(sess.Token)
	return user, nil
}

func (c *Client) SignUp(ctx context.Context, email, password string, profile auth.Profile) (*auth.User, error) {
	user, sess, err := c.svc.SignUp(ctx, email, password, profile)
	if err != nil {
		return nil, err
	}
	c.setToken(sess.Token)
	return user, nil
}

func (c *Client) SignOut(ctx context.Context) error {
	err := c.svc.SignOut(ctx, c.Token())
	c.setToken("")
	return err
}

func (c *Client) ResetPassword(ctx context.Context, email string) error {
	return c.svc.RequestPasswordReset(ctx, email)
}

func (c *Client) RefreshSession(ctx context.Context) (*auth.User, error) {
	user, sess, err := c.svc.Refresh(ctx, c.Token())
	if err != nil {
		c.setToken("")
		return nil, err
	}
	c.setToken(sess.Token)
	return user, nil
}
