package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/macacolandia/dashboard-api/internal/captcha"
	"github.com/macacolandia/dashboard-api/internal/models"
	pkgauth "github.com/macacolandia/dashboard-api/pkg/auth"
	pkglogger "github.com/macacolandia/dashboard-api/pkg/logger"
	"github.com/macacolandia/dashboard-api/pkg/validate"
)

// AdminNotifier tells the admins about registration lifecycle events.
// Delivery failures are logged but never fail the triggering request.
type AdminNotifier interface {
	NotifyNewRegistration(ctx context.Context, name, email string) error
	NotifyAccountApproved(ctx context.Context, name, email string) error
}

// RegistrationService handles self-registration requests and the admin
// approve/reject decisions over them.
type RegistrationService struct {
	registrations RegistrationRepository
	accounts      AccountRepository
	verifier      captcha.Verifier
	securityLog   *SecurityLogService
	notifier      AdminNotifier
	logger        *slog.Logger
}

func NewRegistrationService(
	registrations RegistrationRepository,
	accounts AccountRepository,
	verifier captcha.Verifier,
	securityLog *SecurityLogService,
	notifier AdminNotifier,
	logger *slog.Logger,
) *RegistrationService {
	return &RegistrationService{
		registrations: registrations,
		accounts:      accounts,
		verifier:      verifier,
		securityLog:   securityLog,
		notifier:      notifier,
		logger:        logger,
	}
}

// RegisterRequest carries a self-registration submission.
type RegisterRequest struct {
	Name         string
	Email        string
	Password     string
	CaptchaToken string
	IPAddress    string
	UserAgent    *string
}

// Register validates and stores a registration request as pending. The
// account itself is only created when an admin approves.
func (s *RegistrationService) Register(ctx context.Context, req RegisterRequest) error {
	email := validate.SanitizeEmail(req.Email)
	name := validate.SanitizeText(req.Name)

	if name == "" || email == "" || req.Password == "" {
		return &models.ValidationError{Message: "name, email and password are required"}
	}

	if validate.SuspiciousInput(req.Name) {
		s.recordEvent(ctx, models.EventRegisterSQLInjection, models.SeverityHigh, email, req,
			"injection pattern detected in registration input")
		return &models.ValidationError{Message: "invalid characters in input"}
	}

	if !validate.ValidName(name) {
		return &models.ValidationError{Message: "name must be 2-100 letters"}
	}
	if len(email) < validate.MinEmailLen || len(email) > validate.MaxEmailLen {
		return &models.ValidationError{Message: "invalid email address"}
	}
	if err := pkgauth.ValidatePassword(req.Password); err != nil {
		var vErr *pkgauth.PasswordValidationError
		if errors.As(err, &vErr) && len(vErr.Errors) > 0 {
			return &models.ValidationError{Message: "password " + vErr.Errors[0]}
		}
		return &models.ValidationError{Message: "password does not meet requirements"}
	}

	if req.CaptchaToken == "" {
		s.recordEvent(ctx, models.EventRegisterMissingCaptcha, models.SeverityMedium, email, req,
			"registration without captcha token")
		return &models.ValidationError{Message: "captcha verification is required"}
	}
	result, err := s.verifier.Verify(ctx, req.CaptchaToken, req.IPAddress)
	if err != nil {
		s.logger.Error("captcha verification error", slog.Any("error", err))
		return models.ErrInternalServer
	}
	if !result.Success {
		s.recordEvent(ctx, models.EventRegisterInvalidCaptcha, models.SeverityMedium, email, req,
			fmt.Sprintf("captcha rejected: %s", result.Error))
		return &models.ValidationError{Message: "captcha verification failed"}
	}

	// Duplicate checks: an existing account, or a registration still
	// waiting for a decision. Rejected registrations do not block a new
	// attempt.
	if _, err := s.accounts.GetByEmail(ctx, email); err == nil {
		s.recordEvent(ctx, models.EventRegisterDuplicate, models.SeverityLow, email, req,
			"registration for existing account email")
		return &models.ValidationError{Message: "email is already registered"}
	} else if !errors.Is(err, models.ErrNotFound) {
		s.logger.Error("account lookup failed", slog.Any("error", err))
		return models.ErrInternalServer
	}
	if _, err := s.registrations.GetPendingByEmail(ctx, email); err == nil {
		s.recordEvent(ctx, models.EventRegisterDuplicate, models.SeverityLow, email, req,
			"registration already pending for email")
		return &models.ValidationError{Message: "a registration for this email is already awaiting approval"}
	} else if !errors.Is(err, models.ErrNotFound) {
		s.logger.Error("pending registration lookup failed", slog.Any("error", err))
		return models.ErrInternalServer
	}

	hash, err := pkgauth.HashPassword(req.Password)
	if err != nil {
		s.logger.Error("password hashing failed", slog.Any("error", err))
		return models.ErrInternalServer
	}

	reg := &models.PendingRegistration{
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		UserAgent:    req.UserAgent,
		Status:       models.RegistrationPending,
	}
	if req.IPAddress != "" {
		reg.IPAddress = &req.IPAddress
	}
	created, err := s.registrations.Create(ctx, reg)
	if err != nil {
		if errors.Is(err, models.ErrConflict) {
			return &models.ValidationError{Message: "a registration for this email is already awaiting approval"}
		}
		s.logger.Error("failed to store registration", slog.Any("error", err))
		return models.ErrInternalServer
	}

	s.recordEvent(ctx, models.EventRegisterSuccess, models.SeverityLow, email, req,
		"registration stored, awaiting approval")

	if s.notifier != nil {
		if err := s.notifier.NotifyNewRegistration(ctx, created.Name, created.Email); err != nil {
			s.logger.Warn("admin notification failed",
				slog.String("email", pkglogger.SanitizedEmail(created.Email)),
				slog.Any("error", err),
			)
		}
	}

	return nil
}

// ListPending returns registrations awaiting a decision, oldest first.
func (s *RegistrationService) ListPending(ctx context.Context) ([]*models.PendingRegistration, error) {
	return s.registrations.ListPending(ctx)
}

// Approve turns a pending registration into an active account. The whole
// decision runs in one transaction; if the account email was taken in the
// meantime the registration is marked rejected and ErrConflict returned.
func (s *RegistrationService) Approve(ctx context.Context, id string) (*models.PendingRegistration, error) {
	reg, err := s.registrations.Approve(ctx, id)
	if err != nil {
		return nil, err
	}

	s.logger.Info("registration approved",
		slog.String("registration_id", reg.ID),
		slog.String("email", pkglogger.SanitizedEmail(reg.Email)),
	)

	if s.notifier != nil {
		if err := s.notifier.NotifyAccountApproved(ctx, reg.Name, reg.Email); err != nil {
			s.logger.Warn("approval notification failed", slog.Any("error", err))
		}
	}

	return reg, nil
}

// Reject marks a pending registration rejected. Rejected rows stay for
// audit but never block a later registration with the same email.
func (s *RegistrationService) Reject(ctx context.Context, id string) error {
	if err := s.registrations.Reject(ctx, id); err != nil {
		return err
	}
	s.logger.Info("registration rejected", slog.String("registration_id", id))
	return nil
}

func (s *RegistrationService) recordEvent(ctx context.Context, eventType, severity, email string, req RegisterRequest, details string) {
	s.securityLog.Record(ctx, &models.SecurityLogEntry{
		EventType: eventType,
		Severity:  severity,
		Email:     &email,
		IPAddress: req.IPAddress,
		UserAgent: req.UserAgent,
		Details:   details,
	})
}
