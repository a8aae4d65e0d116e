package accounts

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	emailtemplates "github.com/eduadmin/school-backend/pkg/email-templates"
	"github.com/eduadmin/school-backend/pkg/pwhash"
	"github.com/eduadmin/school-backend/pkg/utils"
	"github.com/google/uuid"
)

const (
	VERIFICATION_CODE_LENGTH = 4

	DEFAULT_VERIFICATION_CODE_TTL = 5 * time.Minute
	DEFAULT_RESET_TOKEN_TTL       = 5 * time.Minute
)

// Service implements the credential lifecycle for one account kind. The three
// account kinds (admin, librarian, staff) behave identically; only the store
// binding and the role tag differ.
type Service struct {
	role       string
	store      Store
	notifier   Notifier
	media      MediaStore
	issueToken TokenIssuer

	codeTTL  time.Duration
	resetTTL time.Duration
	now      func() time.Time
}

func NewService(
	role string,
	store Store,
	notifier Notifier,
	media MediaStore,
	issueToken TokenIssuer,
) *Service {
	return &Service{
		role:       role,
		store:      store,
		notifier:   notifier,
		media:      media,
		issueToken: issueToken,
		codeTTL:    DEFAULT_VERIFICATION_CODE_TTL,
		resetTTL:   DEFAULT_RESET_TOKEN_TTL,
		now:        time.Now,
	}
}

func (s *Service) Role() string {
	return s.role
}

// Register creates an unverified account, stores the profile photo on the media
// host and sends the verification code by email. The account stays persisted
// even if the email dispatch fails afterwards.
func (s *Service) Register(ctx context.Context, input RegisterInput) error {
	if input.Name == "" || input.Email == "" || input.Password == "" || input.Photo == nil {
		return newValidationError("all fields are required")
	}

	email := utils.SanitizeEmail(input.Email)
	if !utils.CheckEmailFormat(email) {
		return newValidationError("invalid email format")
	}

	_, err := s.store.FindByEmail(ctx, email)
	if err == nil {
		return ErrEmailTaken
	}
	if !errors.Is(err, ErrAccountNotFound) {
		return err
	}

	password, err := pwhash.HashPassword(input.Password)
	if err != nil {
		return err
	}

	photo, err := s.storePhoto(ctx, input.Photo)
	if err != nil {
		return err
	}

	code, err := utils.GenerateOTPCode(VERIFICATION_CODE_LENGTH)
	if err != nil {
		return err
	}

	now := s.now()
	account := Account{
		Name:                  input.Name,
		Email:                 email,
		Password:              password,
		Role:                  s.role,
		Photo:                 &photo,
		IsVerified:            false,
		VerificationCode:      code,
		VerificationExpiresAt: now.Add(s.codeTTL).Unix(),
		CreatedAt:             now.Unix(),
		UpdatedAt:             now.Unix(),
	}

	id, err := s.store.Create(ctx, account)
	if err != nil {
		return err
	}

	subject, body, err := emailtemplates.VerificationEmail(code, id)
	if err != nil {
		return err
	}
	return s.notifier.SendEmail(ctx, email, subject, body)
}

// VerifyEmail checks the submitted code against the pending one and marks the
// account verified. Verification is one-way; a second attempt fails with
// ErrAlreadyVerified. Returns a signed session token on success.
func (s *Service) VerifyEmail(ctx context.Context, accountID string, code string) (string, error) {
	if code == "" {
		return "", newValidationError("verification code is required")
	}

	account, err := s.store.FindByID(ctx, accountID)
	if err != nil {
		return "", err
	}

	if account.IsVerified {
		return "", ErrAlreadyVerified
	}
	if code != account.VerificationCode {
		return "", ErrInvalidCode
	}
	if s.now().Unix() > account.VerificationExpiresAt {
		return "", ErrCodeExpired
	}

	account.IsVerified = true
	account.VerificationCode = ""
	account.VerificationExpiresAt = 0
	account.UpdatedAt = s.now().Unix()

	if err := s.store.Replace(ctx, account); err != nil {
		return "", err
	}

	return s.issueToken(account.ID.Hex(), account.Role)
}

// SignIn authenticates a verified account. An unverified account gets a fresh
// verification code by email and fails with ErrAccountNotVerified; the
// password is not checked on that branch.
func (s *Service) SignIn(ctx context.Context, email string, password string) (Account, string, error) {
	if strings.TrimSpace(email) == "" || strings.TrimSpace(password) == "" {
		return Account{}, "", newValidationError("all fields are required")
	}

	account, err := s.store.FindByEmail(ctx, utils.SanitizeEmail(email))
	if err != nil {
		return Account{}, "", err
	}

	if !account.IsVerified {
		if err := s.renewVerificationCode(ctx, account); err != nil {
			return Account{}, "", err
		}
		return Account{}, "", ErrAccountNotVerified
	}

	match, err := pwhash.ComparePasswordWithHash(account.Password, password)
	if err != nil || !match {
		return Account{}, "", ErrInvalidCredentials
	}

	token, err := s.issueToken(account.ID.Hex(), account.Role)
	if err != nil {
		return Account{}, "", err
	}

	account.Password = ""
	return account, token, nil
}

// renewVerificationCode overwrites any pending code and emails the new one.
func (s *Service) renewVerificationCode(ctx context.Context, account Account) error {
	code, err := utils.GenerateOTPCode(VERIFICATION_CODE_LENGTH)
	if err != nil {
		return err
	}

	account.VerificationCode = code
	account.VerificationExpiresAt = s.now().Add(s.codeTTL).Unix()
	account.UpdatedAt = s.now().Unix()

	if err := s.store.Replace(ctx, account); err != nil {
		return err
	}

	subject, body, err := emailtemplates.VerificationEmail(code, account.ID.Hex())
	if err != nil {
		return err
	}
	return s.notifier.SendEmail(ctx, account.Email, subject, body)
}

// RequestPasswordReset stores a single-use reset token on the account and
// emails the reset link. A repeated request overwrites the previous token.
func (s *Service) RequestPasswordReset(ctx context.Context, email string) error {
	account, err := s.store.FindByEmail(ctx, utils.SanitizeEmail(email))
	if err != nil {
		return err
	}

	token := uuid.NewString()
	account.ResetToken = token
	account.ResetExpiresAt = s.now().Add(s.resetTTL).Unix()
	account.UpdatedAt = s.now().Unix()

	if err := s.store.Replace(ctx, account); err != nil {
		return err
	}

	subject, body, err := emailtemplates.PasswordResetEmail(token, account.ID.Hex())
	if err != nil {
		return err
	}
	return s.notifier.SendEmail(ctx, account.Email, subject, body)
}

// CompletePasswordReset replaces the password hash if the submitted token
// matches the pending one and has not expired. A wrong token and an expired
// token are not distinguished in the returned error.
func (s *Service) CompletePasswordReset(ctx context.Context, accountID string, token string, newPassword string) error {
	if newPassword == "" {
		return newValidationError("password is required")
	}
	if accountID == "" || token == "" {
		return newValidationError("invalid link")
	}

	account, err := s.store.FindByID(ctx, accountID)
	if err != nil {
		return err
	}

	if token != account.ResetToken || s.now().Unix() > account.ResetExpiresAt {
		return ErrInvalidOrExpiredToken
	}

	password, err := pwhash.HashPassword(newPassword)
	if err != nil {
		return err
	}

	account.Password = password
	account.ResetToken = ""
	account.ResetExpiresAt = 0
	account.UpdatedAt = s.now().Unix()
	return s.store.Replace(ctx, account)
}

// GetProfile returns the account without its password hash.
func (s *Service) GetProfile(ctx context.Context, accountID string) (Account, error) {
	account, err := s.store.FindByID(ctx, accountID)
	if err != nil {
		return Account{}, err
	}
	account.Password = ""
	return account, nil
}

// ListAccounts returns all accounts of this kind without password hashes.
func (s *Service) ListAccounts(ctx context.Context) ([]Account, error) {
	accounts, err := s.store.List(ctx)
	if err != nil {
		return nil, err
	}
	for i := range accounts {
		accounts[i].Password = ""
	}
	return accounts, nil
}

// UpdateProfile applies the non-empty fields of the patch. A password change
// requires the current password. A new photo replaces the old one on the
// media host.
func (s *Service) UpdateProfile(ctx context.Context, accountID string, patch ProfilePatch) (Account, error) {
	account, err := s.store.FindByID(ctx, accountID)
	if err != nil {
		return Account{}, err
	}

	if patch.Name != "" {
		account.Name = patch.Name
	}
	if patch.Email != "" {
		email := utils.SanitizeEmail(patch.Email)
		if !utils.CheckEmailFormat(email) {
			return Account{}, newValidationError("invalid email format")
		}
		account.Email = email
	}

	if patch.Photo != nil {
		if account.Photo != nil && account.Photo.ExternalID != "" {
			if err := s.media.Delete(ctx, account.Photo.ExternalID); err != nil {
				return Account{}, err
			}
		}
		photo, err := s.storePhoto(ctx, patch.Photo)
		if err != nil {
			return Account{}, err
		}
		account.Photo = &photo
	}

	if patch.CurrentPassword != "" && patch.NewPassword != "" {
		match, err := pwhash.ComparePasswordWithHash(account.Password, patch.CurrentPassword)
		if err != nil || !match {
			return Account{}, ErrInvalidCredentials
		}
		password, err := pwhash.HashPassword(patch.NewPassword)
		if err != nil {
			return Account{}, err
		}
		account.Password = password
	}

	account.UpdatedAt = s.now().Unix()
	if err := s.store.Replace(ctx, account); err != nil {
		return Account{}, err
	}

	account.Password = ""
	return account, nil
}

// DeleteAccount removes the account record and releases its photo from the
// media host. Photo removal and the goodbye email are best effort, a failure
// there must not block the deletion.
func (s *Service) DeleteAccount(ctx context.Context, accountID string) error {
	account, err := s.store.FindByID(ctx, accountID)
	if err != nil {
		return err
	}

	if account.Photo != nil && account.Photo.ExternalID != "" {
		if err := s.media.Delete(ctx, account.Photo.ExternalID); err != nil {
			slog.Warn("failed to delete profile photo from media host",
				slog.String("accountID", accountID),
				slog.String("externalID", account.Photo.ExternalID),
				slog.String("error", err.Error()))
		}
	}

	if err := s.store.Delete(ctx, account.ID.Hex()); err != nil {
		return err
	}

	subject, body, err := emailtemplates.AccountDeletedEmail(account.Name)
	if err == nil {
		err = s.notifier.SendEmail(ctx, account.Email, subject, body)
	}
	if err != nil {
		slog.Error("failed to send account deletion email",
			slog.String("accountID", accountID),
			slog.String("error", err.Error()))
	}
	return nil
}

func (s *Service) storePhoto(ctx context.Context, upload *PhotoUpload) (Photo, error) {
	ext := utils.GetFileExtensionFromContentType(upload.ContentType)
	objectID := s.role + "/" + uuid.NewString() + ext
	return s.media.Upload(ctx, objectID, upload.Content, upload.Size, upload.ContentType)
}
