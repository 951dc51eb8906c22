package identity

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"
)

// ErrCodeRejected is returned when the provider refuses an OTP code.
var ErrCodeRejected = errors.New("verification code rejected")

// OTPRequest is the provider's handle for one outstanding code delivery.
type OTPRequest struct {
	MethodID string
	Subject  string
	NewUser  bool
}

// Verifier is the external OTP identity provider: it owns code delivery and
// verification, and assigns the stable subject id users are keyed by.
type Verifier interface {
	LoginOrCreate(ctx context.Context, phoneNumber string) (OTPRequest, error)
	Authenticate(ctx context.Context, methodID, code string) (string, error)
}

// StaticVerifier simulates the OTP provider for development and tests. Any
// request succeeds and the code "000000" authenticates it.
type StaticVerifier struct {
	mu       sync.Mutex
	subjects map[string]string // phone -> subject
	pending  map[string]string // method id -> subject
}

// NewStaticVerifier builds an empty fake provider.
func NewStaticVerifier() *StaticVerifier {
	return &StaticVerifier{
		subjects: make(map[string]string),
		pending:  make(map[string]string),
	}
}

// StaticCode is the only code the fake provider accepts.
const StaticCode = "000000"

func (v *StaticVerifier) LoginOrCreate(_ context.Context, phoneNumber string) (OTPRequest, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	subject, known := v.subjects[phoneNumber]
	if !known {
		subject = "subject-" + uuid.NewString()
		v.subjects[phoneNumber] = subject
	}
	methodID := "method-" + uuid.NewString()
	v.pending[methodID] = subject

	return OTPRequest{MethodID: methodID, Subject: subject, NewUser: !known}, nil
}

func (v *StaticVerifier) Authenticate(_ context.Context, methodID, code string) (string, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	subject, ok := v.pending[methodID]
	if !ok || code != StaticCode {
		return "", ErrCodeRejected
	}
	delete(v.pending, methodID)
	return subject, nil
}
