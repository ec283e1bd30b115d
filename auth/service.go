package auth

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/jrsteele09/moto-session/backend"
	"github.com/jrsteele09/moto-session/internal/config"
	apperrors "github.com/jrsteele09/moto-session/internal/errors"
	"github.com/jrsteele09/moto-session/internal/metrics"
	"github.com/jrsteele09/moto-session/sessions"
	"github.com/jrsteele09/moto-session/token/refresh"
	"github.com/jrsteele09/moto-session/users"
	"github.com/rs/zerolog/log"
	"golang.org/x/oauth2"
)

// ProviderName identifies the JWT provider in configuration.
const ProviderName = config.ProviderJWT

// ServiceConfig is the configuration the session service reads.
type ServiceConfig interface {
	config.SessionConfig
	GetSessionCookieName() string
}

// Service owns the token records of signed-in browser sessions. Every
// session read runs the JWT callback chain, which may refresh the access
// token through the coordinator, and then projects the Session View.
type Service struct {
	authorizer  *Authorizer
	repo        sessions.Repo
	coordinator *refresh.Coordinator
	cfg         ServiceConfig
	apiHTTP     *http.Client
	nowTime     func() time.Time // nowTime function (injectable for testing)
}

var _ sessions.Provider = (*Service)(nil)
var _ refresh.Reauthenticator = (*Service)(nil)

// ServiceOption defines a function type to modify the Service instance.
type ServiceOption func(*Service)

// WithNowTime sets the now time function (primarily for testing)
func WithNowTime(nowFunc func() time.Time) ServiceOption {
	return func(s *Service) {
		s.nowTime = nowFunc
	}
}

// WithAPIHTTPClient sets the client whose transport carries APIClient requests.
func WithAPIHTTPClient(c *http.Client) ServiceOption {
	return func(s *Service) {
		s.apiHTTP = c
	}
}

func NewService(authorizer *Authorizer, repo sessions.Repo, coordinator *refresh.Coordinator, cfg ServiceConfig, options ...ServiceOption) *Service {
	s := &Service{
		authorizer:  authorizer,
		repo:        repo,
		coordinator: coordinator,
		cfg:         cfg,
		nowTime:     time.Now,
	}
	for _, opt := range options {
		opt(s)
	}
	if s.apiHTTP == nil {
		s.apiHTTP = http.DefaultClient
	}
	return s
}

// SignIn authorizes email/password against the backend and creates a new
// session. It returns the session id to place in the browser cookie.
func (s *Service) SignIn(ctx context.Context, email, password string) (string, *sessions.View, error) {
	user, err := s.authorizer.Authorize(ctx, Credentials{Email: email, Password: password})
	if err != nil {
		return "", nil, err
	}

	now := s.nowTime()
	record := &sessions.TokenRecord{ID: uuid.NewString(), CreatedAt: now}
	s.jwtCallback(ctx, record, user)
	record.UpdatedAt = now

	if err := s.repo.Upsert(ctx, record); err != nil {
		return "", nil, apperrors.Wrapf(err, "[Service.SignIn] store session")
	}
	log.Info().Str("session", record.ID).Str("user", record.UserID).Msg("signed in")
	return record.ID, s.sessionCallback(record), nil
}

// SignInWithTokens installs an already issued token pair on a session,
// re-deriving identity and roles from the new access token. It creates the
// session if it does not exist.
func (s *Service) SignInWithTokens(ctx context.Context, sessionID string, tok *oauth2.Token) error {
	if tok == nil || tok.AccessToken == "" {
		return apperrors.Wrapf(apperrors.ErrAuthenticationFailed, "[Service.SignInWithTokens] empty token")
	}

	now := s.nowTime()
	record, err := s.repo.Get(ctx, sessionID)
	switch {
	case apperrors.Is(err, apperrors.ErrSessionNotFound):
		record = &sessions.TokenRecord{ID: sessionID, CreatedAt: now}
	case err != nil:
		return apperrors.Wrapf(err, "[Service.SignInWithTokens] load session")
	}

	user, err := s.authorizer.Authorize(ctx, Credentials{
		Email:        record.Email,
		Token:        tok.AccessToken,
		RefreshToken: tok.RefreshToken,
	})
	if err != nil {
		return err
	}
	if user.RefreshToken == "" {
		user.RefreshToken = record.RefreshToken
	}

	s.jwtCallback(ctx, record, user)
	record.UpdatedAt = now
	if err := s.repo.Upsert(ctx, record); err != nil {
		return apperrors.Wrapf(err, "[Service.SignInWithTokens] store session")
	}
	return nil
}

// Session runs the callback chain on the stored record, persists any
// change and returns the Session View. Refresh failures never surface as
// errors; they show up as the view's error field and an empty token.
func (s *Service) Session(ctx context.Context, sessionID string) (*sessions.View, error) {
	if sessionID == "" {
		return nil, apperrors.ErrSessionNotFound
	}
	record, err := s.repo.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	// Refreshes persist inside their flight; only local state changes are
	// written back here.
	if s.jwtCallback(ctx, record, nil) {
		record.UpdatedAt = s.nowTime()
		if err := s.repo.Upsert(ctx, record); err != nil {
			log.Err(err).Str("session", sessionID).Msg("failed to persist session")
		}
	}
	return s.sessionCallback(record), nil
}

// SignOut forgets the session.
func (s *Service) SignOut(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return nil
	}
	return s.repo.Delete(ctx, sessionID)
}

// RefreshNow forces a refresh through the coordinator. nil means the
// session could not be refreshed.
func (s *Service) RefreshNow(ctx context.Context, sessionID string) *oauth2.Token {
	return s.coordinator.RefreshNow(ctx, s, sessionID)
}

// jwtCallback applies one step of the token lifecycle to record and
// reports whether it changed. user is non-nil only at sign-in.
func (s *Service) jwtCallback(ctx context.Context, record *sessions.TokenRecord, user *users.User) bool {
	now := s.nowTime()

	if user != nil {
		record.UserID = user.ID
		record.Name = user.Name
		record.Email = user.Email
		record.FirstName = user.FirstName
		record.Roles = user.Roles
		record.RefreshToken = ""
		record.SetTokens(user.Token, user.RefreshToken, now, s.cfg.GetAccessTokenLifetime(), s.cfg.GetRefreshTokenLifetime())
		return true
	}

	if record.Error == sessions.ErrorRefreshTokenExpired {
		return false
	}

	if !now.Before(record.RefreshTokenExpiry) {
		log.Info().Str("session", record.ID).Msg("refresh token expired")
		metrics.RefreshAttempts.WithLabelValues(refresh.CallerCallback, metrics.OutcomeExpired).Inc()
		record.SetFailure(sessions.ErrorRefreshTokenExpired)
		return true
	}

	if now.Before(record.TokenExpiry.Add(-s.cfg.GetRefreshBuffer())) {
		return false
	}

	if record.RefreshToken == "" {
		log.Warn().Str("session", record.ID).Msg("access token near expiry and no refresh token")
		metrics.RefreshAttempts.WithLabelValues(refresh.CallerCallback, metrics.OutcomeNoToken).Inc()
		record.SetFailure(sessions.ErrorRefreshTokenExpired)
		return true
	}

	// The flight persists its own outcome, success or failure, before it
	// settles. Whatever the store holds afterwards is the current state.
	_, _ = s.coordinator.Refresh(ctx, s, record.ID, record.RefreshToken)
	if stored, err := s.repo.Get(ctx, record.ID); err == nil {
		*record = *stored
	}
	return false
}

// StoredTokens returns the persisted pair of a session without running the
// callback chain.
func (s *Service) StoredTokens(ctx context.Context, sessionID string) (*oauth2.Token, error) {
	if sessionID == "" {
		return nil, apperrors.ErrSessionNotFound
	}
	record, err := s.repo.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	switch {
	case record.Error == sessions.ErrorRefreshTokenExpired || !s.nowTime().Before(record.RefreshTokenExpiry):
		return nil, apperrors.ErrRefreshTokenExpired
	case record.RefreshToken == "":
		return nil, apperrors.ErrNoRefreshToken
	}
	return &oauth2.Token{
		AccessToken:  record.Token,
		RefreshToken: record.RefreshToken,
		TokenType:    "Bearer",
		Expiry:       record.TokenExpiry,
	}, nil
}

// MarkRefreshFailed records a failed exchange on the stored record. A
// rejected refresh token ends the refresh lifecycle until the next sign-in;
// any other failure keeps the tokens for a retry.
func (s *Service) MarkRefreshFailed(ctx context.Context, sessionID string, cause error) error {
	record, err := s.repo.Get(ctx, sessionID)
	if err != nil {
		return err
	}

	kind := sessions.ErrorRefreshTokenError
	if backend.IsRejected(cause) {
		kind = sessions.ErrorRefreshTokenExpired
	}
	record.SetFailure(kind)
	record.UpdatedAt = s.nowTime()
	if err := s.repo.Upsert(ctx, record); err != nil {
		return apperrors.Wrapf(err, "[Service.MarkRefreshFailed] store session")
	}
	return nil
}

func (s *Service) sessionCallback(record *sessions.TokenRecord) *sessions.View {
	return sessions.Project(record, s.cfg.GetSessionMaxAge())
}
