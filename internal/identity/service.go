package identity

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Service runs the OTP login flow against the external identity provider and
// keeps the provider-subject -> internal-user mapping.
type Service struct {
	repo     Repository
	verifier Verifier
}

// NewService creates a new identity service.
func NewService(repo Repository, verifier Verifier) *Service {
	return &Service{repo: repo, verifier: verifier}
}

// RequestCode asks the provider to deliver a login code, creating the local
// user record on first contact. Returns the provider's request id, which the
// client echoes back on Login.
func (s *Service) RequestCode(ctx context.Context, phoneNumber string) (string, error) {
	if phoneNumber == "" {
		return "", fmt.Errorf("phone number is required")
	}

	otp, err := s.verifier.LoginOrCreate(ctx, phoneNumber)
	if err != nil {
		return "", fmt.Errorf("request code: %w", err)
	}

	if otp.NewUser {
		user := User{
			ID:              uuid.NewString(),
			PhoneNumber:     phoneNumber,
			ProviderSubject: otp.Subject,
			CreatedAt:       time.Now().UTC(),
		}
		if err := s.repo.Create(ctx, user); err != nil {
			return "", fmt.Errorf("create user: %w", err)
		}
	}

	return otp.MethodID, nil
}

// Login verifies the code with the provider and resolves the internal user.
func (s *Service) Login(ctx context.Context, requestID, code string) (User, error) {
	subject, err := s.verifier.Authenticate(ctx, requestID, code)
	if err != nil {
		return User{}, err
	}

	user, err := s.repo.FindBySubject(ctx, subject)
	if err != nil {
		return User{}, fmt.Errorf("resolve subject: %w", err)
	}
	return user, nil
}

// Resolve returns the user for an internal id.
func (s *Service) Resolve(ctx context.Context, id string) (User, error) {
	return s.repo.FindByID(ctx, id)
}
