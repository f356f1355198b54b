package service

import (
	"github.com/Nishank-123/biller/internal/server"
	"github.com/clerk/clerk-sdk-go/v2"
)

// AuthService configures Clerk. Without a secret key authentication is off
// and the bill routes are open.
type AuthService struct {
	server  *server.Server
	enabled bool
}

func NewAuthService(s *server.Server) *AuthService {
	enabled := s.Config.Auth.Enabled()
	if enabled {
		clerk.SetKey(s.Config.Auth.SecretKey)
	} else {
		s.Logger.Warn().Msg("auth.secret_key not set, bill routes are unauthenticated")
	}

	return &AuthService{
		server:  s,
		enabled: enabled,
	}
}

func (a *AuthService) Enabled() bool {
	return a.enabled
}
