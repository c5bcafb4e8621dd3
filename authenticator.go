package auth

import (
	"context"
)

// Auther ties registration, credential checks and token issuance together
type Auther struct {
	provider     IdentityProvider
	registrar    *RegisterUserHandler
	tokenService TokenService
	logger       Logger
}

// NewAuthenticator returns a new Auther. Tokens are signed with the key
// from opts and live for opts.GetTokenTTL().
func NewAuthenticator(provider IdentityProvider, registrar *RegisterUserHandler, opts Config) *Auther {
	return &Auther{
		provider:  provider,
		registrar: registrar,
		tokenService: NewTokenService(
			[]byte(opts.GetSigningKey()),
			opts.GetTokenTTL(),
			opts.GetIssuer(),
			defLogger{},
		).WithSigningMethod(opts.GetSigningMethod()),
		logger: defLogger{},
	}
}

func (s *Auther) WithLogger(logger Logger) *Auther {
	if logger == nil {
		return s
	}
	s.logger = logger
	if ts, ok := s.tokenService.(*TokenServiceImpl); ok {
		ts.logger = logger
	}
	return s
}

// WithTokenService replaces the token service, mainly for tests
func (s *Auther) WithTokenService(ts TokenService) *Auther {
	if ts != nil {
		s.tokenService = ts
	}
	return s
}

// TokenService returns the TokenService instance used by this Authenticator
func (s *Auther) TokenService() TokenService {
	return s.tokenService
}

// Register creates a new account through the persistent repository
func (s *Auther) Register(ctx context.Context, msg RegisterUserMessage) (*User, error) {
	user, err := s.registrar.Handle(ctx, msg)
	if err != nil {
		s.logger.Info("Register rejected", "username", msg.Username, "error", err)
		return nil, err
	}
	return user, nil
}

// Login verifies the credentials and returns a signed token
func (s *Auther) Login(ctx context.Context, username, password string) (string, error) {
	identity, err := s.provider.VerifyIdentity(ctx, username, password)
	if err != nil {
		s.logger.Info("Login verify identity error", "username", username, "error", err)
		return "", err
	}

	if identity == nil {
		s.logger.Error("Login identity is nil")
		return "", ErrIdentityNotFound
	}

	token, err := s.tokenService.Generate(identity)
	if err != nil {
		s.logger.Error("Login failed to generate token", "error", err)
		return "", err
	}

	s.logger.Debug("Login succeeded", "user_id", identity.ID())

	return token, nil
}
