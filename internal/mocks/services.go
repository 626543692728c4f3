package mocks

import (
	"context"
	"errors"

	"firebase.google.com/go/v4/auth"
)

// MockIDTokenVerifier accepts the ID tokens registered in Tokens and rejects everything else.
type MockIDTokenVerifier struct {
	Tokens map[string]*auth.Token
	Calls  int
}

func NewMockIDTokenVerifier() *MockIDTokenVerifier {
	return &MockIDTokenVerifier{Tokens: make(map[string]*auth.Token)}
}

// Add registers an ID token for the given Firebase UID and claims.
func (m *MockIDTokenVerifier) Add(idToken, uid, email, name string) {
	m.Tokens[idToken] = &auth.Token{
		UID:    uid,
		Claims: map[string]interface{}{"email": email, "name": name},
	}
}

func (m *MockIDTokenVerifier) VerifyIDToken(ctx context.Context, idToken string) (*auth.Token, error) {
	m.Calls++
	if t, ok := m.Tokens[idToken]; ok {
		return t, nil
	}
	return nil, errors.New("ID token has invalid signature")
}
