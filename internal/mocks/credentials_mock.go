package mocks

import (
	"context"

	"github.com/LendroDuCode/full-project-web-oskar-sub012/internal/ports"
)

// MockCredentialProvider is a mock implementation of ports.CredentialProvider for testing
type MockCredentialProvider struct {
	TokenValue string
	TokenFunc  func(ctx context.Context) (string, error)

	TokenCalls int
}

func (m *MockCredentialProvider) Token(ctx context.Context) (string, error) {
	m.TokenCalls++
	if m.TokenFunc != nil {
		return m.TokenFunc(ctx)
	}
	if m.TokenValue == "" {
		return "", ports.ErrNoCredentials
	}
	return m.TokenValue, nil
}
