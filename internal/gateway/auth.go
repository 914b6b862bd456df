package gateway

import (
	"crypto/subtle"
	"os"

	"github.com/soyeahso/boardroom/internal/config"
)

// Auth modes for websocket sessions. The relay surface (POST /api/chat) is
// authorised by the upstream API key in each request instead.
const (
	AuthModeNone     = "none"
	AuthModeToken    = "token"
	AuthModePassword = "password"
)

// AuthResult is the outcome of an authentication attempt.
type AuthResult struct {
	OK     bool   `json:"ok"`
	Method string `json:"method,omitempty"`
	Reason string `json:"reason,omitempty"`
}

// ResolvedAuth holds the effective gateway credentials.
type ResolvedAuth struct {
	Mode     string
	Token    string
	Password string
}

// ResolveAuth resolves credentials from config, then BOARDROOM_GATEWAY_TOKEN and
// BOARDROOM_GATEWAY_PASSWORD. With no mode set, the mode follows whichever
// secret is present, or none.
func ResolveAuth(cfg config.GatewayAuth) ResolvedAuth {
	auth := ResolvedAuth{Mode: cfg.Mode, Token: cfg.Token, Password: cfg.Password}
	if auth.Token == "" {
		auth.Token = os.Getenv("BOARDROOM_GATEWAY_TOKEN")
	}
	if auth.Password == "" {
		auth.Password = os.Getenv("BOARDROOM_GATEWAY_PASSWORD")
	}

	if auth.Mode == "" {
		switch {
		case auth.Password != "":
			auth.Mode = AuthModePassword
		case auth.Token != "":
			auth.Mode = AuthModeToken
		default:
			auth.Mode = AuthModeNone
		}
	}
	return auth
}

// Authorize checks the client's connect credentials against the server's.
func Authorize(serverAuth ResolvedAuth, clientAuth *ConnectAuth) AuthResult {
	if serverAuth.Mode == AuthModeNone {
		return AuthResult{OK: true, Method: AuthModeNone}
	}
	if clientAuth == nil {
		return AuthResult{Reason: "no credentials provided"}
	}

	switch serverAuth.Mode {
	case AuthModeToken:
		return check(AuthModeToken, serverAuth.Token, clientAuth.Token)
	case AuthModePassword:
		return check(AuthModePassword, serverAuth.Password, clientAuth.Password)
	default:
		return AuthResult{Reason: "unknown auth mode: " + serverAuth.Mode}
	}
}

func check(method, want, got string) AuthResult {
	switch {
	case want == "":
		return AuthResult{Reason: "server " + method + " not configured"}
	case got == "":
		return AuthResult{Reason: method + " required"}
	case !safeEqual(got, want):
		return AuthResult{Reason: method + "_mismatch"}
	}
	return AuthResult{OK: true, Method: method}
}

// safeEqual compares in constant time, including when the lengths differ.
func safeEqual(a, b string) bool {
	lenMatch := subtle.ConstantTimeEq(int32(len(a)), int32(len(b)))
	cmp := subtle.ConstantTimeCompare([]byte(a), []byte(b))
	return subtle.ConstantTimeSelect(lenMatch, cmp, 0) == 1
}
