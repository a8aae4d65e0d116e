package accounts

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"strings"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/eduadmin/school-backend/pkg/pwhash"
)

func TestMain(m *testing.M) {
	// low argon2 costs to keep the tests fast
	pwhash.InitArgonParams(8*1024, 1, 1)
	os.Exit(m.Run())
}

type memStore struct {
	accounts map[string]Account
}

func newMemStore() *memStore {
	return &memStore{accounts: map[string]Account{}}
}

func (s *memStore) FindByEmail(_ context.Context, email string) (Account, error) {
	for _, a := range s.accounts {
		if a.Email == email {
			return a, nil
		}
	}
	return Account{}, ErrAccountNotFound
}

func (s *memStore) FindByID(_ context.Context, id string) (Account, error) {
	a, ok := s.accounts[id]
	if !ok {
		return Account{}, ErrAccountNotFound
	}
	return a, nil
}

func (s *memStore) Create(_ context.Context, account Account) (string, error) {
	for _, a := range s.accounts {
		if a.Email == account.Email {
			return "", ErrEmailTaken
		}
	}
	account.ID = primitive.NewObjectID()
	s.accounts[account.ID.Hex()] = account
	return account.ID.Hex(), nil
}

func (s *memStore) Replace(_ context.Context, account Account) error {
	id := account.ID.Hex()
	if _, ok := s.accounts[id]; !ok {
		return ErrAccountNotFound
	}
	s.accounts[id] = account
	return nil
}

func (s *memStore) Delete(_ context.Context, id string) error {
	if _, ok := s.accounts[id]; !ok {
		return ErrAccountNotFound
	}
	delete(s.accounts, id)
	return nil
}

func (s *memStore) List(_ context.Context) ([]Account, error) {
	list := make([]Account, 0, len(s.accounts))
	for _, a := range s.accounts {
		list = append(list, a)
	}
	return list, nil
}

// only returns the single stored account, fails the test otherwise
func (s *memStore) only(t *testing.T) Account {
	t.Helper()
	if len(s.accounts) != 1 {
		t.Fatalf("expected exactly one account in store, got %d", len(s.accounts))
	}
	for _, a := range s.accounts {
		return a
	}
	return Account{}
}

type sentMail struct {
	to      string
	subject string
	body    string
}

type memNotifier struct {
	sent []sentMail
	err  error
}

func (n *memNotifier) SendEmail(_ context.Context, to string, subject string, body string) error {
	if n.err != nil {
		return n.err
	}
	n.sent = append(n.sent, sentMail{to: to, subject: subject, body: body})
	return nil
}

type memMedia struct {
	stored    []string
	deleted   []string
	uploadErr error
	deleteErr error
}

func (m *memMedia) Upload(_ context.Context, objectID string, content io.Reader, size int64, contentType string) (Photo, error) {
	if m.uploadErr != nil {
		return Photo{}, m.uploadErr
	}
	if _, err := io.Copy(io.Discard, content); err != nil {
		return Photo{}, err
	}
	m.stored = append(m.stored, objectID)
	return Photo{ExternalID: objectID, URL: "https://media.example.com/" + objectID}, nil
}

func (m *memMedia) Delete(_ context.Context, externalID string) error {
	if m.deleteErr != nil {
		return m.deleteErr
	}
	m.deleted = append(m.deleted, externalID)
	return nil
}

var testBaseTime = time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)

type testEnv struct {
	svc      *Service
	store    *memStore
	notifier *memNotifier
	media    *memMedia
	now      time.Time
}

func newTestEnv() *testEnv {
	env := &testEnv{
		store:    newMemStore(),
		notifier: &memNotifier{},
		media:    &memMedia{},
		now:      testBaseTime,
	}
	env.svc = NewService(ROLE_LIBRARIAN, env.store, env.notifier, env.media, func(accountID string, role string) (string, error) {
		return "token:" + accountID + ":" + role, nil
	})
	env.svc.now = func() time.Time { return env.now }
	return env
}

func (env *testEnv) advance(d time.Duration) {
	env.now = env.now.Add(d)
}

func testPhoto() *PhotoUpload {
	content := []byte{0xff, 0xd8, 0xff, 0xe0, 1, 2, 3}
	return &PhotoUpload{
		FileName:    "me.jpg",
		ContentType: "image/jpeg",
		Size:        int64(len(content)),
		Content:     bytes.NewReader(content),
	}
}

func validRegisterInput() RegisterInput {
	return RegisterInput{
		Name:     "Ada Lovelace",
		Email:    "ada@example.com",
		Password: "superSecret1!",
		Photo:    testPhoto(),
	}
}

func (env *testEnv) mustRegister(t *testing.T) Account {
	t.Helper()
	if err := env.svc.Register(context.Background(), validRegisterInput()); err != nil {
		t.Fatalf("register failed: %v", err)
	}
	return env.store.only(t)
}

func (env *testEnv) mustRegisterVerified(t *testing.T) Account {
	t.Helper()
	account := env.mustRegister(t)
	if _, err := env.svc.VerifyEmail(context.Background(), account.ID.Hex(), account.VerificationCode); err != nil {
		t.Fatalf("verify failed: %v", err)
	}
	return env.store.only(t)
}

func TestRegisterValidation(t *testing.T) {
	cases := []struct {
		name  string
		patch func(*RegisterInput)
	}{
		{"missing name", func(in *RegisterInput) { in.Name = "" }},
		{"missing email", func(in *RegisterInput) { in.Email = "" }},
		{"missing password", func(in *RegisterInput) { in.Password = "" }},
		{"missing photo", func(in *RegisterInput) { in.Photo = nil }},
		{"bad email format", func(in *RegisterInput) { in.Email = "not-an-email" }},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			env := newTestEnv()
			input := validRegisterInput()
			c.patch(&input)

			err := env.svc.Register(context.Background(), input)
			if !IsValidationError(err) {
				t.Errorf("expected validation error, got %v", err)
			}
			if len(env.store.accounts) != 0 {
				t.Errorf("no account should be created")
			}
		})
	}
}

func TestRegisterSuccess(t *testing.T) {
	env := newTestEnv()
	account := env.mustRegister(t)

	if account.IsVerified {
		t.Error("new account must not be verified")
	}
	if len(account.VerificationCode) != VERIFICATION_CODE_LENGTH {
		t.Errorf("unexpected verification code %q", account.VerificationCode)
	}
	wantExpiry := testBaseTime.Add(DEFAULT_VERIFICATION_CODE_TTL).Unix()
	if account.VerificationExpiresAt != wantExpiry {
		t.Errorf("verification expiry = %d, want %d", account.VerificationExpiresAt, wantExpiry)
	}
	if account.Role != ROLE_LIBRARIAN {
		t.Errorf("role = %q, want %q", account.Role, ROLE_LIBRARIAN)
	}
	if account.Photo == nil || account.Photo.ExternalID == "" {
		t.Fatal("photo not stored on account")
	}
	if !strings.HasPrefix(account.Photo.ExternalID, ROLE_LIBRARIAN+"/") {
		t.Errorf("photo object id %q not namespaced by role", account.Photo.ExternalID)
	}
	if len(env.media.stored) != 1 {
		t.Errorf("expected one media upload, got %d", len(env.media.stored))
	}

	if len(env.notifier.sent) != 1 {
		t.Fatalf("expected one email, got %d", len(env.notifier.sent))
	}
	mail := env.notifier.sent[0]
	if mail.to != "ada@example.com" {
		t.Errorf("email sent to %q", mail.to)
	}
	if !strings.Contains(mail.body, account.VerificationCode) {
		t.Error("verification email does not contain the code")
	}
}

func TestRegisterNormalizesEmail(t *testing.T) {
	env := newTestEnv()
	input := validRegisterInput()
	input.Email = "  Ada@Example.COM "

	if err := env.svc.Register(context.Background(), input); err != nil {
		t.Fatalf("register failed: %v", err)
	}
	if got := env.store.only(t).Email; got != "ada@example.com" {
		t.Errorf("stored email = %q", got)
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	env := newTestEnv()
	env.mustRegister(t)

	input := validRegisterInput()
	input.Photo = testPhoto()
	err := env.svc.Register(context.Background(), input)
	if !errors.Is(err, ErrEmailTaken) {
		t.Errorf("expected ErrEmailTaken, got %v", err)
	}
}

func TestRegisterKeepsAccountOnEmailFailure(t *testing.T) {
	env := newTestEnv()
	env.notifier.err = errors.New("smtp down")

	err := env.svc.Register(context.Background(), validRegisterInput())
	if err == nil {
		t.Fatal("expected error from failed email dispatch")
	}
	// the account stays so the user can request a new code via sign-in
	account := env.store.only(t)
	if account.IsVerified {
		t.Error("account must stay unverified")
	}
}

func TestVerifyEmail(t *testing.T) {
	t.Run("unknown account", func(t *testing.T) {
		env := newTestEnv()
		_, err := env.svc.VerifyEmail(context.Background(), primitive.NewObjectID().Hex(), "1234")
		if !errors.Is(err, ErrAccountNotFound) {
			t.Errorf("expected ErrAccountNotFound, got %v", err)
		}
	})

	t.Run("missing code", func(t *testing.T) {
		env := newTestEnv()
		account := env.mustRegister(t)
		_, err := env.svc.VerifyEmail(context.Background(), account.ID.Hex(), "")
		if !IsValidationError(err) {
			t.Errorf("expected validation error, got %v", err)
		}
	})

	t.Run("wrong code", func(t *testing.T) {
		env := newTestEnv()
		account := env.mustRegister(t)

		wrong := "0000"
		if wrong == account.VerificationCode {
			wrong = "0001"
		}
		_, err := env.svc.VerifyEmail(context.Background(), account.ID.Hex(), wrong)
		if !errors.Is(err, ErrInvalidCode) {
			t.Errorf("expected ErrInvalidCode, got %v", err)
		}
		if env.store.only(t).IsVerified {
			t.Error("account must not be verified after wrong code")
		}
	})

	t.Run("expired code", func(t *testing.T) {
		env := newTestEnv()
		account := env.mustRegister(t)

		env.advance(DEFAULT_VERIFICATION_CODE_TTL + time.Second)
		_, err := env.svc.VerifyEmail(context.Background(), account.ID.Hex(), account.VerificationCode)
		if !errors.Is(err, ErrCodeExpired) {
			t.Errorf("expected ErrCodeExpired, got %v", err)
		}
	})

	t.Run("success and one-way", func(t *testing.T) {
		env := newTestEnv()
		account := env.mustRegister(t)

		token, err := env.svc.VerifyEmail(context.Background(), account.ID.Hex(), account.VerificationCode)
		if err != nil {
			t.Fatalf("verify failed: %v", err)
		}
		if token == "" {
			t.Error("expected a session token")
		}

		verified := env.store.only(t)
		if !verified.IsVerified {
			t.Error("account not marked verified")
		}
		if verified.HasPendingVerification() {
			t.Error("verification code not cleared")
		}

		_, err = env.svc.VerifyEmail(context.Background(), account.ID.Hex(), account.VerificationCode)
		if !errors.Is(err, ErrAlreadyVerified) {
			t.Errorf("expected ErrAlreadyVerified, got %v", err)
		}
	})
}

func TestSignIn(t *testing.T) {
	t.Run("missing fields", func(t *testing.T) {
		env := newTestEnv()
		_, _, err := env.svc.SignIn(context.Background(), "", "")
		if !IsValidationError(err) {
			t.Errorf("expected validation error, got %v", err)
		}
	})

	t.Run("unknown email", func(t *testing.T) {
		env := newTestEnv()
		_, _, err := env.svc.SignIn(context.Background(), "nobody@example.com", "pw")
		if !errors.Is(err, ErrAccountNotFound) {
			t.Errorf("expected ErrAccountNotFound, got %v", err)
		}
	})

	t.Run("unverified account gets a fresh code", func(t *testing.T) {
		env := newTestEnv()
		account := env.mustRegister(t)
		oldCode := account.VerificationCode
		mailsBefore := len(env.notifier.sent)

		env.advance(time.Minute)
		// wrong password on purpose: the password must not be checked here
		_, _, err := env.svc.SignIn(context.Background(), account.Email, "definitely-wrong")
		if !errors.Is(err, ErrAccountNotVerified) {
			t.Fatalf("expected ErrAccountNotVerified, got %v", err)
		}

		renewed := env.store.only(t)
		if !renewed.HasPendingVerification() {
			t.Fatal("expected a pending verification code")
		}
		wantExpiry := env.now.Add(DEFAULT_VERIFICATION_CODE_TTL).Unix()
		if renewed.VerificationExpiresAt != wantExpiry {
			t.Errorf("code expiry = %d, want %d", renewed.VerificationExpiresAt, wantExpiry)
		}
		if len(env.notifier.sent) != mailsBefore+1 {
			t.Errorf("expected a new verification email")
		}
		// the old code must be gone even if the digits happen to repeat
		if renewed.VerificationCode == oldCode && renewed.VerificationExpiresAt == account.VerificationExpiresAt {
			t.Error("verification code was not renewed")
		}
	})

	t.Run("wrong password", func(t *testing.T) {
		env := newTestEnv()
		account := env.mustRegisterVerified(t)

		_, _, err := env.svc.SignIn(context.Background(), account.Email, "wrong")
		if !errors.Is(err, ErrInvalidCredentials) {
			t.Errorf("expected ErrInvalidCredentials, got %v", err)
		}
	})

	t.Run("success", func(t *testing.T) {
		env := newTestEnv()
		stored := env.mustRegisterVerified(t)

		account, token, err := env.svc.SignIn(context.Background(), "ada@example.com", "superSecret1!")
		if err != nil {
			t.Fatalf("sign-in failed: %v", err)
		}
		if token != "token:"+stored.ID.Hex()+":"+ROLE_LIBRARIAN {
			t.Errorf("unexpected token %q", token)
		}
		if account.Password != "" {
			t.Error("password hash leaked in sign-in response")
		}
	})
}

func TestPasswordReset(t *testing.T) {
	t.Run("unknown email", func(t *testing.T) {
		env := newTestEnv()
		err := env.svc.RequestPasswordReset(context.Background(), "nobody@example.com")
		if !errors.Is(err, ErrAccountNotFound) {
			t.Errorf("expected ErrAccountNotFound, got %v", err)
		}
	})

	t.Run("request stores token and sends mail", func(t *testing.T) {
		env := newTestEnv()
		account := env.mustRegisterVerified(t)
		mailsBefore := len(env.notifier.sent)

		if err := env.svc.RequestPasswordReset(context.Background(), account.Email); err != nil {
			t.Fatalf("request failed: %v", err)
		}

		updated := env.store.only(t)
		if !updated.HasPendingReset() {
			t.Fatal("expected a pending reset token")
		}
		if len(env.notifier.sent) != mailsBefore+1 {
			t.Fatal("expected a reset email")
		}
		if !strings.Contains(env.notifier.sent[len(env.notifier.sent)-1].body, updated.ResetToken) {
			t.Error("reset email does not contain the token")
		}
	})

	t.Run("second request invalidates the first token", func(t *testing.T) {
		env := newTestEnv()
		account := env.mustRegisterVerified(t)

		if err := env.svc.RequestPasswordReset(context.Background(), account.Email); err != nil {
			t.Fatalf("request failed: %v", err)
		}
		firstToken := env.store.only(t).ResetToken

		if err := env.svc.RequestPasswordReset(context.Background(), account.Email); err != nil {
			t.Fatalf("second request failed: %v", err)
		}
		if env.store.only(t).ResetToken == firstToken {
			t.Fatal("reset token was not rotated")
		}

		err := env.svc.CompletePasswordReset(context.Background(), account.ID.Hex(), firstToken, "newPassword1!")
		if !errors.Is(err, ErrInvalidOrExpiredToken) {
			t.Errorf("expected ErrInvalidOrExpiredToken for stale token, got %v", err)
		}
	})

	t.Run("expired token", func(t *testing.T) {
		env := newTestEnv()
		account := env.mustRegisterVerified(t)

		if err := env.svc.RequestPasswordReset(context.Background(), account.Email); err != nil {
			t.Fatalf("request failed: %v", err)
		}
		token := env.store.only(t).ResetToken

		env.advance(DEFAULT_RESET_TOKEN_TTL + time.Second)
		err := env.svc.CompletePasswordReset(context.Background(), account.ID.Hex(), token, "newPassword1!")
		if !errors.Is(err, ErrInvalidOrExpiredToken) {
			t.Errorf("expected ErrInvalidOrExpiredToken, got %v", err)
		}
	})

	t.Run("round trip", func(t *testing.T) {
		env := newTestEnv()
		account := env.mustRegisterVerified(t)

		if err := env.svc.RequestPasswordReset(context.Background(), account.Email); err != nil {
			t.Fatalf("request failed: %v", err)
		}
		token := env.store.only(t).ResetToken

		if err := env.svc.CompletePasswordReset(context.Background(), account.ID.Hex(), token, "newPassword1!"); err != nil {
			t.Fatalf("reset failed: %v", err)
		}

		updated := env.store.only(t)
		if updated.HasPendingReset() {
			t.Error("reset token not cleared")
		}

		if _, _, err := env.svc.SignIn(context.Background(), account.Email, "superSecret1!"); !errors.Is(err, ErrInvalidCredentials) {
			t.Errorf("old password still accepted: %v", err)
		}
		if _, _, err := env.svc.SignIn(context.Background(), account.Email, "newPassword1!"); err != nil {
			t.Errorf("new password rejected: %v", err)
		}
	})
}

func TestUpdateProfile(t *testing.T) {
	t.Run("name and email", func(t *testing.T) {
		env := newTestEnv()
		account := env.mustRegisterVerified(t)

		updated, err := env.svc.UpdateProfile(context.Background(), account.ID.Hex(), ProfilePatch{
			Name:  "Ada King",
			Email: "Ada.King@Example.com",
		})
		if err != nil {
			t.Fatalf("update failed: %v", err)
		}
		if updated.Name != "Ada King" {
			t.Errorf("name = %q", updated.Name)
		}
		if updated.Email != "ada.king@example.com" {
			t.Errorf("email = %q", updated.Email)
		}
	})

	t.Run("invalid email", func(t *testing.T) {
		env := newTestEnv()
		account := env.mustRegisterVerified(t)

		_, err := env.svc.UpdateProfile(context.Background(), account.ID.Hex(), ProfilePatch{Email: "broken"})
		if !IsValidationError(err) {
			t.Errorf("expected validation error, got %v", err)
		}
	})

	t.Run("new photo replaces the old one", func(t *testing.T) {
		env := newTestEnv()
		account := env.mustRegisterVerified(t)
		oldPhotoID := account.Photo.ExternalID

		updated, err := env.svc.UpdateProfile(context.Background(), account.ID.Hex(), ProfilePatch{Photo: testPhoto()})
		if err != nil {
			t.Fatalf("update failed: %v", err)
		}
		if updated.Photo.ExternalID == oldPhotoID {
			t.Error("photo object id did not change")
		}
		if len(env.media.deleted) != 1 || env.media.deleted[0] != oldPhotoID {
			t.Errorf("old photo not deleted, deleted = %v", env.media.deleted)
		}
	})

	t.Run("password change requires current password", func(t *testing.T) {
		env := newTestEnv()
		account := env.mustRegisterVerified(t)

		_, err := env.svc.UpdateProfile(context.Background(), account.ID.Hex(), ProfilePatch{
			CurrentPassword: "wrong",
			NewPassword:     "newPassword1!",
		})
		if !errors.Is(err, ErrInvalidCredentials) {
			t.Fatalf("expected ErrInvalidCredentials, got %v", err)
		}

		if _, err := env.svc.UpdateProfile(context.Background(), account.ID.Hex(), ProfilePatch{
			CurrentPassword: "superSecret1!",
			NewPassword:     "newPassword1!",
		}); err != nil {
			t.Fatalf("password change failed: %v", err)
		}

		if _, _, err := env.svc.SignIn(context.Background(), account.Email, "newPassword1!"); err != nil {
			t.Errorf("new password rejected: %v", err)
		}
	})
}

func TestDeleteAccount(t *testing.T) {
	t.Run("unknown account", func(t *testing.T) {
		env := newTestEnv()
		err := env.svc.DeleteAccount(context.Background(), primitive.NewObjectID().Hex())
		if !errors.Is(err, ErrAccountNotFound) {
			t.Errorf("expected ErrAccountNotFound, got %v", err)
		}
	})

	t.Run("removes record, photo and sends goodbye mail", func(t *testing.T) {
		env := newTestEnv()
		account := env.mustRegisterVerified(t)
		mailsBefore := len(env.notifier.sent)

		if err := env.svc.DeleteAccount(context.Background(), account.ID.Hex()); err != nil {
			t.Fatalf("delete failed: %v", err)
		}
		if len(env.store.accounts) != 0 {
			t.Error("account record not removed")
		}
		if len(env.media.deleted) != 1 || env.media.deleted[0] != account.Photo.ExternalID {
			t.Errorf("photo not released, deleted = %v", env.media.deleted)
		}
		if len(env.notifier.sent) != mailsBefore+1 {
			t.Error("expected a goodbye email")
		}
	})

	t.Run("media failure does not block deletion", func(t *testing.T) {
		env := newTestEnv()
		account := env.mustRegisterVerified(t)
		env.media.deleteErr = errors.New("media host down")

		if err := env.svc.DeleteAccount(context.Background(), account.ID.Hex()); err != nil {
			t.Fatalf("delete failed: %v", err)
		}
		if len(env.store.accounts) != 0 {
			t.Error("account record not removed")
		}
	})

	t.Run("email failure does not block deletion", func(t *testing.T) {
		env := newTestEnv()
		account := env.mustRegisterVerified(t)
		env.notifier.err = errors.New("smtp down")

		if err := env.svc.DeleteAccount(context.Background(), account.ID.Hex()); err != nil {
			t.Fatalf("delete failed: %v", err)
		}
		if len(env.store.accounts) != 0 {
			t.Error("account record not removed")
		}
	})
}

func TestListAccountsHidesPasswords(t *testing.T) {
	env := newTestEnv()
	env.mustRegisterVerified(t)

	list, err := env.svc.ListAccounts(context.Background())
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(list) != 1 {
		t.Fatalf("expected one account, got %d", len(list))
	}
	if list[0].Password != "" {
		t.Error("password hash leaked in listing")
	}
}

func TestFullLifecycle(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	if err := env.svc.Register(ctx, validRegisterInput()); err != nil {
		t.Fatalf("register failed: %v", err)
	}
	account := env.store.only(t)

	wrong := "9999"
	if wrong == account.VerificationCode {
		wrong = "9998"
	}
	if _, err := env.svc.VerifyEmail(ctx, account.ID.Hex(), wrong); !errors.Is(err, ErrInvalidCode) {
		t.Fatalf("expected ErrInvalidCode, got %v", err)
	}

	if _, err := env.svc.VerifyEmail(ctx, account.ID.Hex(), account.VerificationCode); err != nil {
		t.Fatalf("verify failed: %v", err)
	}

	if _, _, err := env.svc.SignIn(ctx, account.Email, "superSecret1!"); err != nil {
		t.Fatalf("sign-in failed: %v", err)
	}
	if _, _, err := env.svc.SignIn(ctx, account.Email, "wrong"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}

	if err := env.svc.DeleteAccount(ctx, account.ID.Hex()); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if _, _, err := env.svc.SignIn(ctx, account.Email, "superSecret1!"); !errors.Is(err, ErrAccountNotFound) {
		t.Fatalf("expected ErrAccountNotFound after deletion, got %v", err)
	}
}
