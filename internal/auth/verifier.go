package auth

import (
	"context"
	"errors"

	fbauth "firebase.google.com/go/v4/auth"
)

// Identity is the authenticated caller.
type Identity struct {
	Owner string
	Name  string
}

// Verifier turns a bearer token into an Identity.
type Verifier interface {
	Verify(ctx context.Context, token string) (Identity, error)
}

// HMAC verifies tokens minted by Issue.
type HMAC struct {
	Key    string
	Issuer string
}

func (h HMAC) Verify(_ context.Context, token string) (Identity, error) {
	claims, err := Parse(token, h.Key, h.Issuer)
	if err != nil {
		return Identity{}, err
	}
	return Identity{Owner: claims.Owner, Name: claims.Name}, nil
}

// Firebase verifies Firebase ID tokens; the owner is the Firebase uid.
type Firebase struct {
	Client *fbauth.Client
}

func (f Firebase) Verify(ctx context.Context, token string) (Identity, error) {
	tok, err := f.Client.VerifyIDToken(ctx, token)
	if err != nil {
		return Identity{}, err
	}
	if tok.UID == "" {
		return Identity{}, errors.New("token has no uid")
	}
	name, _ := tok.Claims["name"].(string)
	return Identity{Owner: tok.UID, Name: name}, nil
}
