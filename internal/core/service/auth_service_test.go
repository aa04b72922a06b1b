package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/bcr-rental/car-rental-api/internal/core/domain"
	"github.com/bcr-rental/car-rental-api/internal/infrastructure/security"
)

type stubUserRepo struct {
	mu    sync.Mutex
	users map[string]*domain.User // keyed by email
}

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{users: make(map[string]*domain.User)}
}

func cloneUser(u *domain.User) *domain.User {
	if u == nil {
		return nil
	}
	clone := *u
	return &clone
}

func (r *stubUserRepo) Create(_ context.Context, user *domain.User) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.users[user.Email]; exists {
		return nil, domain.EmailAlreadyTaken(user.Email)
	}
	r.users[user.Email] = cloneUser(user)
	return cloneUser(user), nil
}

func (r *stubUserRepo) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u, ok := r.users[email]; ok {
		return cloneUser(u), nil
	}
	return nil, domain.RecordNotFound("user", email)
}

func (r *stubUserRepo) FindByID(_ context.Context, id string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.ID == id {
			return cloneUser(u), nil
		}
	}
	return nil, domain.RecordNotFound("user", id)
}

const testSecret = "secret"

func newTestAuthService(repo *stubUserRepo) (*AuthService, *security.JWTTokens) {
	tokens := security.NewJWTTokens(testSecret, time.Hour)
	svc := NewAuthService(repo, security.NewBcryptHasher(bcrypt.MinCost), tokens, zerolog.Nop())
	return svc, tokens
}

func TestAuthService_Register_Success(t *testing.T) {
	repo := newStubUserRepo()
	svc, _ := newTestAuthService(repo)

	user, err := svc.Register(context.Background(), "alice", "alice@example.com", "pass123")
	if err != nil {
		t.Fatalf("Register returned error: %v", err)
	}
	if user.ID == "" {
		t.Fatalf("expected generated id")
	}
	if user.PasswordHash == "pass123" {
		t.Fatalf("expected password to be hashed")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("pass123")); err != nil {
		t.Fatalf("stored hash does not match password: %v", err)
	}
	if user.Role != domain.RoleCustomer {
		t.Fatalf("unexpected role: %s", user.Role)
	}
}

func TestAuthService_Register_Duplicate(t *testing.T) {
	repo := newStubUserRepo()
	svc, _ := newTestAuthService(repo)

	if _, err := svc.Register(context.Background(), "A", "a@x.com", "pass"); err != nil {
		t.Fatalf("first register failed: %v", err)
	}
	_, err := svc.Register(context.Background(), "B", "a@x.com", "other")
	if !errors.Is(err, domain.ErrEmailAlreadyTaken) {
		t.Fatalf("expected EmailAlreadyTaken, got %v", err)
	}
	var de *domain.Error
	if !errors.As(err, &de) || de.Details["email"] != "a@x.com" {
		t.Fatalf("expected email in details, got %+v", de)
	}
}

func TestAuthService_Register_EmailIsCaseSensitive(t *testing.T) {
	repo := newStubUserRepo()
	svc, _ := newTestAuthService(repo)

	_, _ = svc.Register(context.Background(), "A", "a@x.com", "pass")
	if _, err := svc.Register(context.Background(), "A", "A@x.com", "pass"); err != nil {
		t.Fatalf("expected distinct email to register, got %v", err)
	}
}

func TestAuthService_Register_MissingPasswordIsUnclassified(t *testing.T) {
	svc, _ := newTestAuthService(newStubUserRepo())

	_, err := svc.Register(context.Background(), "A", "a@x.com", "")
	if err == nil {
		t.Fatal("expected error")
	}
	if _, ok := domain.KindOf(err); ok {
		t.Fatalf("expected unclassified fault, got %v", err)
	}
}

func TestAuthService_Login_Scenario(t *testing.T) {
	repo := newStubUserRepo()
	svc, tokens := newTestAuthService(repo)
	ctx := context.Background()

	user, err := svc.Register(ctx, "john", "john@example.com", "123456")
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}

	res, err := svc.Login(ctx, "john@example.com", "123456")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if res.Token == "" {
		t.Fatalf("expected token, got empty")
	}
	claims, err := tokens.Verify(res.Token)
	if err != nil {
		t.Fatalf("token invalid: %v", err)
	}
	if claims.Subject != user.ID {
		t.Fatalf("expected subject %s, got %s", user.ID, claims.Subject)
	}

	if _, err := svc.Login(ctx, "john@example.com", "000000"); !errors.Is(err, domain.ErrWrongPassword) {
		t.Fatalf("expected WrongPassword, got %v", err)
	}
	if _, err := svc.Login(ctx, "unknown@example.com", "123456"); !errors.Is(err, domain.ErrEmailNotRegistered) {
		t.Fatalf("expected EmailNotRegistered, got %v", err)
	}
}

func TestAuthService_Login_MalformedStoredHash(t *testing.T) {
	repo := newStubUserRepo()
	repo.users["bad@example.com"] = &domain.User{ID: "u1", Email: "bad@example.com", PasswordHash: "plain"}
	svc, _ := newTestAuthService(repo)

	_, err := svc.Login(context.Background(), "bad@example.com", "whatever")
	if err == nil {
		t.Fatal("expected error")
	}
	if _, ok := domain.KindOf(err); ok {
		t.Fatalf("expected unclassified fault, got %v", err)
	}
}

func TestAuthService_CurrentUser(t *testing.T) {
	repo := newStubUserRepo()
	svc, _ := newTestAuthService(repo)

	user, _ := svc.Register(context.Background(), "carol", "carol@example.com", "s3cret")

	got, err := svc.CurrentUser(context.Background(), user.ID)
	if err != nil {
		t.Fatalf("CurrentUser: %v", err)
	}
	if got.Email != "carol@example.com" {
		t.Fatalf("unexpected user: %+v", got)
	}

	if _, err := svc.CurrentUser(context.Background(), "missing"); !errors.Is(err, domain.ErrRecordNotFound) {
		t.Fatalf("expected RecordNotFound, got %v", err)
	}
}

func TestAuthService_EnsureAdmin_Idempotent(t *testing.T) {
	repo := newStubUserRepo()
	svc, _ := newTestAuthService(repo)
	ctx := context.Background()

	admin, err := svc.EnsureAdmin(ctx, "root", "admin@example.com", "adminpass")
	if err != nil {
		t.Fatalf("EnsureAdmin: %v", err)
	}
	if admin.Role != domain.RoleAdmin {
		t.Fatalf("expected ADMIN role, got %s", admin.Role)
	}

	again, err := svc.EnsureAdmin(ctx, "root", "admin@example.com", "changed")
	if err != nil {
		t.Fatalf("second EnsureAdmin: %v", err)
	}
	if again.ID != admin.ID {
		t.Fatalf("expected existing admin %s, got %s", admin.ID, again.ID)
	}
	if _, err := svc.Login(ctx, "admin@example.com", "adminpass"); err != nil {
		t.Fatalf("original password must still work: %v", err)
	}
}

func TestAuthService_EnsureAdmin_RejectsCustomerEmail(t *testing.T) {
	repo := newStubUserRepo()
	svc, _ := newTestAuthService(repo)
	ctx := context.Background()

	if _, err := svc.Register(ctx, "John", "john@example.com", "123456"); err != nil {
		t.Fatalf("register: %v", err)
	}

	user, err := svc.EnsureAdmin(ctx, "Root", "john@example.com", "adminpass")
	if err == nil {
		t.Fatalf("expected error for a customer email, got user %+v", user)
	}
	if _, ok := domain.KindOf(err); ok {
		t.Fatalf("expected unclassified startup error, got %v", err)
	}
	if stored := repo.users["john@example.com"]; stored.Role != domain.RoleCustomer {
		t.Fatalf("role must not change, got %s", stored.Role)
	}
}
