package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/idtoken"
)

// GoogleConfig configures Google sign-in. An empty ClientID disables it.
type GoogleConfig struct {
	ClientID     string `env:"GOOGLE_CLIENT_ID"`
	ClientSecret string `env:"GOOGLE_CLIENT_SECRET"`
	// "postmessage" is what Google's JS popup flow expects.
	RedirectURL string `env:"GOOGLE_REDIRECT_URL" envDefault:"postmessage"`
}

type validateFunc func(ctx context.Context, idToken, audience string) (*idtoken.Payload, error)

// GoogleVerifier verifies Google ID tokens against the configured client ID.
type GoogleVerifier struct {
	clientID   string
	conf       *oauth2.Config
	validate   validateFunc
	httpClient *http.Client
}

// NewGoogleVerifier creates a GoogleVerifier.
func NewGoogleVerifier(cfg GoogleConfig) *GoogleVerifier {
	return &GoogleVerifier{
		clientID: cfg.ClientID,
		conf: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Scopes:       []string{"openid", "email", "profile"},
			Endpoint:     google.Endpoint,
		},
		validate:   idtoken.Validate,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

// Verify validates the signature, audience and expiry of idToken and requires
// a verified email claim.
func (g *GoogleVerifier) Verify(ctx context.Context, idToken string) (*Identity, error) {
	if g.clientID == "" {
		return nil, errors.Join(ErrFederatedAuthFailed, ErrProviderNotConfigured)
	}
	if strings.TrimSpace(idToken) == "" {
		return nil, ErrFederatedAuthFailed
	}

	payload, err := g.validate(ctx, idToken, g.clientID)
	if err != nil {
		return nil, errors.Join(ErrFederatedAuthFailed, err)
	}

	email := claimString(payload.Claims, "email")
	if email == "" || !claimBool(payload.Claims, "email_verified") {
		return nil, errors.Join(ErrFederatedAuthFailed, ErrUnverifiedEmail)
	}

	return &Identity{
		Subject: payload.Subject,
		Email:   email,
		Name:    claimString(payload.Claims, "name"),
		Picture: claimString(payload.Claims, "picture"),
	}, nil
}

// VerifyCode runs the authorization code exchange and verifies the id_token
// from the token response.
func (g *GoogleVerifier) VerifyCode(ctx context.Context, code string) (*Identity, error) {
	if g.clientID == "" {
		return nil, errors.Join(ErrFederatedAuthFailed, ErrProviderNotConfigured)
	}
	if strings.TrimSpace(code) == "" {
		return nil, ErrFederatedAuthFailed
	}

	ctx = context.WithValue(ctx, oauth2.HTTPClient, g.httpClient)
	tok, err := g.conf.Exchange(ctx, code)
	if err != nil {
		return nil, errors.Join(ErrFederatedAuthFailed, fmt.Errorf("code exchange: %w", err))
	}

	idToken, _ := tok.Extra("id_token").(string)
	if idToken == "" {
		return nil, errors.Join(ErrFederatedAuthFailed, ErrMissingIDToken)
	}
	return g.Verify(ctx, idToken)
}

func claimString(claims map[string]any, key string) string {
	s, _ := claims[key].(string)
	return s
}

// claimBool accepts both JSON booleans and the "true" string some issuers send.
func claimBool(claims map[string]any, key string) bool {
	switch v := claims[key].(type) {
	case bool:
		return v
	case string:
		return v == "true"
	}
	return false
}

var _ IdentityVerifier = (*GoogleVerifier)(nil)
