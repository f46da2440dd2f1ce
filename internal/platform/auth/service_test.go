package auth

import (
	"context"
	"testing"

	"github.com/golang-jwt/jwt/v5"
)

type fakeAccountStore struct {
	accounts map[string]*Account
}

func newFakeAccountStore() *fakeAccountStore {
	return &fakeAccountStore{accounts: map[string]*Account{}}
}

func (f *fakeAccountStore) GetByEmail(ctx context.Context, email string) (*Account, error) {
	a, ok := f.accounts[email]
	if !ok {
		return nil, nil
	}
	cp := *a
	return &cp, nil
}

func (f *fakeAccountStore) Create(ctx context.Context, a *Account) error {
	cp := *a
	f.accounts[a.Email] = &cp
	return nil
}

func (f *fakeAccountStore) Delete(ctx context.Context, email string) (int64, error) {
	if _, ok := f.accounts[email]; !ok {
		return 0, nil
	}
	delete(f.accounts, email)
	return 1, nil
}

func (f *fakeAccountStore) Count(ctx context.Context) (int64, error) {
	return int64(len(f.accounts)), nil
}

func (f *fakeAccountStore) UpdatePassword(ctx context.Context, email, hash string) (int64, error) {
	a, ok := f.accounts[email]
	if !ok {
		return 0, nil
	}
	a.PasswordHash = hash
	return 1, nil
}

var testSecret = []byte("test-secret")

func newTestAuth() (*Service, *fakeAccountStore) {
	store := newFakeAccountStore()
	return &Service{store: store, secret: testSecret}, store
}

func TestRegisterAndLogin(t *testing.T) {
	svc, _ := newTestAuth()
	ctx := context.Background()

	if err := svc.Register(ctx, "admin@example.com", "s3cret", RoleAdmin); err != nil {
		t.Fatalf("Register: %v", err)
	}
	if err := svc.Register(ctx, "admin@example.com", "other", RoleAdmin); err != ErrAlreadyExists {
		t.Errorf("duplicate register: err = %v, want ErrAlreadyExists", err)
	}

	tokenStr, err := svc.Login(ctx, "admin@example.com", "s3cret")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}

	token, err := jwt.Parse(tokenStr, func(t *jwt.Token) (any, error) { return testSecret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !token.Valid {
		t.Fatalf("token invalid: %v", err)
	}
	claims := token.Claims.(jwt.MapClaims)
	if claims["sub"] != "admin@example.com" || claims["role"] != RoleAdmin {
		t.Errorf("claims = %v", claims)
	}

	if _, err := svc.Login(ctx, "admin@example.com", "wrong"); err == nil {
		t.Error("wrong password should fail")
	}
	if _, err := svc.Login(ctx, "nobody@example.com", "s3cret"); err == nil {
		t.Error("unknown email should fail")
	}
}

func TestLoginRejectsDisabledAccount(t *testing.T) {
	svc, store := newTestAuth()
	ctx := context.Background()

	if err := svc.Register(ctx, "a@example.com", "pw", RoleAdmin); err != nil {
		t.Fatal(err)
	}
	store.accounts["a@example.com"].IsDisabled = true

	if _, err := svc.Login(ctx, "a@example.com", "pw"); err == nil {
		t.Error("disabled account should not log in")
	}
}

func TestChangePassword(t *testing.T) {
	svc, _ := newTestAuth()
	ctx := context.Background()

	if err := svc.ChangePassword(ctx, "nobody@example.com", "pw"); err != ErrNotFound {
		t.Errorf("err = %v, want ErrNotFound", err)
	}

	svc.Register(ctx, "a@example.com", "old", RoleAdmin)
	if err := svc.ChangePassword(ctx, "a@example.com", "new"); err != nil {
		t.Fatalf("ChangePassword: %v", err)
	}
	if _, err := svc.Login(ctx, "a@example.com", "old"); err == nil {
		t.Error("old password should stop working")
	}
	if _, err := svc.Login(ctx, "a@example.com", "new"); err != nil {
		t.Errorf("new password: %v", err)
	}
}

func TestEnsureBootstrapAdmin(t *testing.T) {
	svc, store := newTestAuth()
	ctx := context.Background()

	if err := svc.EnsureBootstrapAdmin(ctx, "boot@example.com", "pw"); err != nil {
		t.Fatalf("EnsureBootstrapAdmin: %v", err)
	}
	if _, ok := store.accounts["boot@example.com"]; !ok {
		t.Fatal("bootstrap admin not created")
	}

	// not recreated once any account exists
	if err := svc.EnsureBootstrapAdmin(ctx, "other@example.com", "pw"); err != nil {
		t.Fatal(err)
	}
	if _, ok := store.accounts["other@example.com"]; ok {
		t.Error("second bootstrap should be a no-op")
	}

	// blank config is a no-op, not an error
	empty, _ := newTestAuth()
	if err := empty.EnsureBootstrapAdmin(ctx, "", ""); err != nil {
		t.Errorf("blank config: %v", err)
	}
}
