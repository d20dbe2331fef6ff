package handlers

import (
	"context"

	"github.com/macacolandia/dashboard-api/internal/models"
	"github.com/macacolandia/dashboard-api/internal/ratelimit"
	"github.com/macacolandia/dashboard-api/internal/services"
)

// MockAuthService implements AuthServiceInterface for testing
type MockAuthService struct {
	LoginFunc func(ctx context.Context, req services.LoginRequest) (*models.Account, error)
}

func (m *MockAuthService) Login(ctx context.Context, req services.LoginRequest) (*models.Account, error) {
	if m.LoginFunc != nil {
		return m.LoginFunc(ctx, req)
	}
	return nil, models.ErrUnauthorized
}

// MockRegistrationService implements RegistrationServiceInterface for testing
type MockRegistrationService struct {
	RegisterFunc func(ctx context.Context, req services.RegisterRequest) error
}

func (m *MockRegistrationService) Register(ctx context.Context, req services.RegisterRequest) error {
	if m.RegisterFunc != nil {
		return m.RegisterFunc(ctx, req)
	}
	return nil
}

// MockRateLimiter implements RateLimiter for testing
type MockRateLimiter struct {
	CheckFunc  func(ctx context.Context, clientAddr string, action ratelimit.Action) (ratelimit.Result, error)
	ClearCalls []string
}

func (m *MockRateLimiter) Check(ctx context.Context, clientAddr string, action ratelimit.Action) (ratelimit.Result, error) {
	if m.CheckFunc != nil {
		return m.CheckFunc(ctx, clientAddr, action)
	}
	return ratelimit.Result{Allowed: true, Remaining: 4}, nil
}

func (m *MockRateLimiter) Clear(ctx context.Context, clientAddr string, action ratelimit.Action) error {
	m.ClearCalls = append(m.ClearCalls, string(action)+":"+clientAddr)
	return nil
}

// MockSecurityRecorder implements SecurityRecorder for testing
type MockSecurityRecorder struct {
	Entries []*models.SecurityLogEntry
}

func (m *MockSecurityRecorder) Record(ctx context.Context, entry *models.SecurityLogEntry) {
	m.Entries = append(m.Entries, entry)
}
