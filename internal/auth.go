package internal

import (
	"net/http"
	"strings"
)

// Auth holds the optional bearer token used for every backend call
type Auth struct {
	token string
}

// NewAuth creates an Auth; an empty token means unauthenticated
func NewAuth(token string) Auth {
	return Auth{token: strings.TrimSpace(token)}
}

// Authenticated reports whether a token is present
func (a Auth) Authenticated() bool {
	return a.token != ""
}

// Header builds the Authorization header, or fails with ErrUnauthenticated
func (a Auth) Header() (http.Header, error) {
	if !a.Authenticated() {
		return nil, ErrUnauthenticated
	}
	h := make(http.Header)
	h.Set("Authorization", "Bearer "+a.token)
	return h, nil
}
