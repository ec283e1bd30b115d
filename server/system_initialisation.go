package server

import (
	"context"
	"fmt"

	"github.com/jrsteele09/moto-session/auth"
	"github.com/jrsteele09/moto-session/backend"
	"github.com/jrsteele09/moto-session/betterauth"
	"github.com/jrsteele09/moto-session/internal/config"
	"github.com/jrsteele09/moto-session/sessions"
	"github.com/jrsteele09/moto-session/token"
	"github.com/jrsteele09/moto-session/token/refresh"
	"github.com/rs/zerolog/log"
)

// InitialiseServices builds the session store, the JWT session service and
// the BetterAuth client from configuration. The returned close function
// releases the store's connections.
func InitialiseServices(ctx context.Context, cfg config.Config) (Services, func(), error) {
	noop := func() {}

	repo, closeRepo, err := initialiseSessionRepo(ctx, cfg)
	if err != nil {
		return Services{}, noop, fmt.Errorf("[Server InitialiseServices] session store: %w", err)
	}

	decoder, err := initialiseDecoder(ctx, cfg)
	if err != nil {
		closeRepo()
		return Services{}, noop, fmt.Errorf("[Server InitialiseServices] token decoder: %w", err)
	}

	httpClient := backend.NewHTTPClient(cfg.GetHTTPTimeout())
	apiClient := backend.New(cfg.GetAPIBaseURL(), backend.WithHTTPClient(httpClient))
	coordinator := refresh.NewCoordinator(apiClient, refresh.WithAccessLifetime(cfg.GetAccessTokenLifetime()))
	jwtService := auth.NewService(
		auth.NewAuthorizer(apiClient, decoder),
		repo,
		coordinator,
		cfg,
		auth.WithAPIHTTPClient(httpClient),
	)

	baClient := betterauth.New(
		cfg.GetBetterAuthURL(),
		cfg.GetBetterAuthCookieName(),
		betterauth.WithHTTPClient(backend.NewHTTPClient(cfg.GetHTTPTimeout())),
	)

	return Services{JWT: jwtService, BetterAuth: baClient, API: apiClient}, closeRepo, nil
}

func initialiseSessionRepo(ctx context.Context, cfg config.Config) (sessions.Repo, func(), error) {
	switch cfg.GetSessionStore() {
	case config.StoreRedis:
		sealer, err := sessions.NewSealer(cfg.GetSessionSecret())
		if err != nil {
			return nil, nil, err
		}
		client, err := sessions.OpenRedis(ctx, cfg.GetRedisAddr())
		if err != nil {
			return nil, nil, err
		}
		log.Info().Str("addr", cfg.GetRedisAddr()).Msg("using redis session store")
		return sessions.NewRedisRepo(client, sealer, cfg.GetSessionIdleTTL()), func() { _ = client.Close() }, nil
	default:
		log.Info().Msg("using in-memory session store")
		return sessions.NewInMemoryRepo(cfg.GetSessionIdleTTL()), func() {}, nil
	}
}

func initialiseDecoder(ctx context.Context, cfg config.Config) (*token.Decoder, error) {
	if !cfg.GetTokenVerify() {
		return token.NewDecoder(), nil
	}
	verifier, err := token.NewOIDCVerifier(ctx, cfg.GetTokenIssuerURL())
	if err != nil {
		return nil, err
	}
	log.Info().Str("issuer", cfg.GetTokenIssuerURL()).Msg("verifying access token signatures")
	return token.NewDecoder(token.WithVerifier(verifier)), nil
}
