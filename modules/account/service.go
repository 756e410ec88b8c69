package account

import (
	"context"
	"errors"
	"fmt"
	"html"
	"io"
	"log/slog"
	"net/url"

	"github.com/containercalc/containercalc/pkg/auth"
	"github.com/containercalc/containercalc/pkg/email"
	"github.com/containercalc/containercalc/pkg/logger"
	"github.com/containercalc/containercalc/pkg/session"
)

// Config holds the account module settings.
type Config struct {
	// AppBaseURL is the externally reachable origin used to build
	// password-reset links, e.g. https://app.containercalc.example.
	AppBaseURL string `env:"APP_BASE_URL" envDefault:"http://localhost:8080"`
	// ResetPath is the frontend route that consumes reset tokens.
	ResetPath string `env:"PASSWORD_RESET_PATH" envDefault:"/reset-password"`
}

// Service orchestrates the account flows: it authenticates through the
// password service, issues and revokes sessions, publishes auth changes, and
// delivers password-reset email.
type Service struct {
	auth     *auth.Service
	sessions *session.Manager
	notifier *auth.Notifier
	mailer   email.EmailSender
	cfg      Config
	log      *slog.Logger
}

// ServiceOption configures the Service.
type ServiceOption func(*Service)

// WithLogger sets the service logger.
func WithLogger(log *slog.Logger) ServiceOption {
	return func(s *Service) {
		if log != nil {
			s.log = log
		}
	}
}

// WithNotifier wires an auth-change notifier; every sign-in, sign-out, and
// refresh is published on it.
func WithNotifier(n *auth.Notifier) ServiceOption {
	return func(s *Service) { s.notifier = n }
}

// WithMailer sets the sender used for password-reset email. Without one,
// reset requests still succeed but no mail goes out (useful in tests).
func WithMailer(m email.EmailSender) ServiceOption {
	return func(s *Service) { s.mailer = m }
}

// NewService creates the account service. It panics when the password
// service or session manager is missing.
func NewService(authSvc *auth.Service, sessions *session.Manager, cfg Config, opts ...ServiceOption) *Service {
	if authSvc == nil {
		panic("account: auth service is required")
	}
	if sessions == nil {
		panic("account: session manager is required")
	}
	s := &Service{
		auth:     authSvc,
		sessions: sessions,
		cfg:      cfg,
		log:      slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Sessions exposes the session manager for middleware wiring.
func (s *Service) Sessions() *session.Manager {
	return s.sessions
}

// SignUp registers a user and signs them straight in.
func (s *Service) SignUp(ctx context.Context, emailAddr, password string, profile auth.Profile) (*auth.User, *session.Session, error) {
	user, err := s.auth.Register(ctx, emailAddr, password, profile)
	if err != nil {
		return nil, nil, err
	}

	sess, err := s.sessions.Issue(ctx, user.ID, user.Email)
	if err != nil {
		return nil, nil, fmt.Errorf("issue session: %w", err)
	}

	s.publish(auth.Change{Event: auth.EventSignedIn, Session: sess, User: user})
	return user, sess, nil
}

// SignIn authenticates credentials and issues a session.
func (s *Service) SignIn(ctx context.Context, emailAddr, password string) (*auth.User, *session.Session, error) {
	user, err := s.auth.Authenticate(ctx, emailAddr, password)
	if err != nil {
		return nil, nil, err
	}

	sess, err := s.sessions.Issue(ctx, user.ID, user.Email)
	if err != nil {
		return nil, nil, fmt.Errorf("issue session: %w", err)
	}

	s.publish(auth.Change{Event: auth.EventSignedIn, Session: sess, User: user})
	return user, sess, nil
}

// SignOut revokes the session behind the token. Unknown tokens are a no-op
// so sign-out is idempotent.
func (s *Service) SignOut(ctx context.Context, token string) error {
	if err := s.sessions.Revoke(ctx, token); err != nil {
		return fmt.Errorf("revoke session: %w", err)
	}
	s.publish(auth.Change{Event: auth.EventSignedOut})
	return nil
}

// CurrentUser resolves the session token to its user. Missing, unknown, and
// expired tokens all map to auth.ErrUnauthorized.
func (s *Service) CurrentUser(ctx context.Context, token string) (*auth.User, *session.Session, error) {
	sess, err := s.resolve(ctx, token)
	if err != nil {
		return nil, nil, err
	}

	user, err := s.auth.GetUser(ctx, sess.UserID)
	if err != nil {
		if errors.Is(err, auth.ErrUserNotFound) {
			// The account is gone; the session is dead weight.
			_ = s.sessions.Revoke(ctx, token)
			return nil, nil, auth.ErrUnauthorized
		}
		return nil, nil, fmt.Errorf("load user: %w", err)
	}
	return user, sess, nil
}

// Refresh swaps the current session for a fresh one with a full TTL.
func (s *Service) Refresh(ctx context.Context, token string) (*auth.User, *session.Session, error) {
	user, sess, err := s.CurrentUser(ctx, token)
	if err != nil {
		return nil, nil, err
	}

	fresh, err := s.sessions.Issue(ctx, sess.UserID, sess.Email)
	if err != nil {
		return nil, nil, fmt.Errorf("issue session: %w", err)
	}
	if err := s.sessions.Revoke(ctx, token); err != nil {
		s.log.WarnContext(ctx, "failed to revoke replaced session",
			logger.UserID(sess.UserID.String()), logger.Error(err))
	}

	s.publish(auth.Change{Event: auth.EventTokenRefreshed, Session: fresh, User: user})
	return user, fresh, nil
}

// RequestPasswordReset generates a reset token and mails the reset link.
// Unknown emails succeed silently so the endpoint does not leak which
// addresses have accounts.
func (s *Service) RequestPasswordReset(ctx context.Context, emailAddr string) error {
	req, err := s.auth.ForgotPassword(ctx, emailAddr)
	if err != nil {
		if errors.Is(err, auth.ErrUserNotFound) {
			return nil
		}
		return err
	}

	if s.mailer == nil {
		s.log.InfoContext(ctx, "password reset requested, no mailer configured",
			slog.String("email", req.Email))
		return nil
	}

	link := s.resetLink(req.Token)
	err = s.mailer.SendEmail(ctx, email.SendEmailParams{
		SendTo:  req.Email,
		Subject: "Reset your password",
		BodyHTML: fmt.Sprintf(
			`<p>Someone requested a password reset for this address.</p>`+
				`<p><a href="%s">Choose a new password</a></p>`+
				`<p>The link expires at %s. If this wasn't you, ignore this email.</p>`,
			html.EscapeString(link), req.ExpiresAt.UTC().Format("15:04 MST, Jan 2"),
		),
		Tag: "password-reset",
	})
	if err != nil {
		return fmt.Errorf("send reset email: %w", err)
	}
	return nil
}

// ConfirmPasswordReset sets a new password from a reset token and revokes
// every existing session of the account.
func (s *Service) ConfirmPasswordReset(ctx context.Context, token, newPassword string) error {
	user, err := s.auth.ResetPassword(ctx, token, newPassword)
	if err != nil {
		return err
	}

	if err := s.sessions.RevokeUser(ctx, user.ID); err != nil {
		s.log.WarnContext(ctx, "failed to revoke sessions after password reset",
			logger.UserID(user.ID.String()), logger.Error(err))
	}
	s.publish(auth.Change{Event: auth.EventSignedOut, User: user})
	return nil
}

func (s *Service) resolve(ctx context.Context, token string) (*session.Session, error) {
	sess, err := s.sessions.Resolve(ctx, token)
	if err != nil {
		switch {
		case errors.Is(err, session.ErrNoToken),
			errors.Is(err, session.ErrSessionNotFound),
			errors.Is(err, session.ErrSessionExpired):
			return nil, auth.ErrUnauthorized
		}
		return nil, fmt.Errorf("resolve session: %w", err)
	}
	return sess, nil
}

func (s *Service) resetLink(token string) string {
	u, err := url.Parse(s.cfg.AppBaseURL)
	if err != nil || u.Host == "" {
		u = &url.URL{Scheme: "http", Host: "localhost:8080"}
	}
	u.Path = s.cfg.ResetPath
	u.RawQuery = url.Values{"token": {token}}.Encode()
	return u.String()
}

func (s *Service) publish(change auth.Change) {
	if s.notifier != nil {
		s.notifier.Publish(change)
	}
}
