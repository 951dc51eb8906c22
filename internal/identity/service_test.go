package identity

import (
	"context"
	"errors"
	"testing"
)

func TestRequestCodeCreatesUserOnce(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository()
	service := NewService(repo, NewStaticVerifier())

	rid, err := service.RequestCode(ctx, "+33600000001")
	if err != nil {
		t.Fatalf("request code: %v", err)
	}
	if rid == "" {
		t.Fatal("empty request id")
	}

	user, err := service.Login(ctx, rid, StaticCode)
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	// A second code request for the same phone must not mint a new user.
	rid2, err := service.RequestCode(ctx, "+33600000001")
	if err != nil {
		t.Fatalf("second request: %v", err)
	}
	again, err := service.Login(ctx, rid2, StaticCode)
	if err != nil {
		t.Fatalf("second login: %v", err)
	}
	if again.ID != user.ID {
		t.Fatalf("user id changed across logins: %s vs %s", again.ID, user.ID)
	}
}

func TestLoginRejectsWrongCode(t *testing.T) {
	ctx := context.Background()
	service := NewService(NewMemoryRepository(), NewStaticVerifier())

	rid, err := service.RequestCode(ctx, "+33600000002")
	if err != nil {
		t.Fatalf("request code: %v", err)
	}
	if _, err := service.Login(ctx, rid, "999999"); !errors.Is(err, ErrCodeRejected) {
		t.Fatalf("expected ErrCodeRejected, got %v", err)
	}
}

func TestLoginRejectsUnknownRequest(t *testing.T) {
	service := NewService(NewMemoryRepository(), NewStaticVerifier())
	if _, err := service.Login(context.Background(), "method-unknown", StaticCode); !errors.Is(err, ErrCodeRejected) {
		t.Fatalf("expected ErrCodeRejected, got %v", err)
	}
}

func TestRequestCodeRequiresPhone(t *testing.T) {
	service := NewService(NewMemoryRepository(), NewStaticVerifier())
	if _, err := service.RequestCode(context.Background(), ""); err == nil {
		t.Fatal("expected error for empty phone number")
	}
}

func TestResolve(t *testing.T) {
	ctx := context.Background()
	service := NewService(NewMemoryRepository(), NewStaticVerifier())

	rid, _ := service.RequestCode(ctx, "+33600000003")
	user, err := service.Login(ctx, rid, StaticCode)
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	resolved, err := service.Resolve(ctx, user.ID)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if resolved.PhoneNumber != "+33600000003" {
		t.Fatalf("phone = %q", resolved.PhoneNumber)
	}

	if _, err := service.Resolve(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
