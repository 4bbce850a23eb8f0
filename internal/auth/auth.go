package auth

import (
	"errors"
	"net/http"
	"strings"
)

var (
	ErrMissingBearer = errors.New("missing bearer token")
	ErrInvalidToken  = errors.New("invalid token")
)

// Merchant identifies an authenticated web-shop client of the PSP.
type Merchant struct {
	ID   string
	Name string
}

type Authenticator interface {
	Authenticate(r *http.Request) (Merchant, error)
}

// KeyAuthenticator resolves a bearer API key to a merchant. Keys are
// static configuration in the simulated deployment.
type KeyAuthenticator struct {
	byKey map[string]Merchant
}

func NewKeyAuthenticator(keys map[string]Merchant) *KeyAuthenticator {
	byKey := make(map[string]Merchant, len(keys))
	for key, m := range keys {
		byKey[key] = m
	}
	return &KeyAuthenticator{byKey: byKey}
}

func (a *KeyAuthenticator) Authenticate(r *http.Request) (Merchant, error) {
	bearer, err := extractBearer(r)
	if err != nil {
		return Merchant{}, err
	}
	merchant, ok := a.byKey[bearer]
	if !ok {
		return Merchant{}, ErrInvalidToken
	}
	return merchant, nil
}

func extractBearer(r *http.Request) (string, error) {
	auth := r.Header.Get("Authorization")
	if auth == "" {
		return "", ErrMissingBearer
	}
	if !strings.HasPrefix(auth, "Bearer ") {
		return "", ErrInvalidToken
	}
	token := strings.TrimSpace(strings.TrimPrefix(auth, "Bearer "))
	if token == "" {
		return "", ErrInvalidToken
	}
	return token, nil
}
