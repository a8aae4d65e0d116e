package accounts

import (
	"context"
	"io"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// account kinds / role tags
const (
	ROLE_ADMIN     = "admin"
	ROLE_LIBRARIAN = "librarian"
	ROLE_STAFF     = "staff"
)

type Account struct {
	ID       primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name     string             `bson:"name" json:"name"`
	Email    string             `bson:"email" json:"email"`
	Password string             `bson:"password" json:"-"`
	Role     string             `bson:"role" json:"role"`
	Photo    *Photo             `bson:"photo,omitempty" json:"photo,omitempty"`

	IsVerified            bool   `bson:"isVerified" json:"isVerified"`
	VerificationCode      string `bson:"verificationCode,omitempty" json:"-"`
	VerificationExpiresAt int64  `bson:"verificationExpiresAt,omitempty" json:"-"`
	ResetToken            string `bson:"resetToken,omitempty" json:"-"`
	ResetExpiresAt        int64  `bson:"resetExpiresAt,omitempty" json:"-"`

	CreatedAt int64 `bson:"createdAt" json:"createdAt"`
	UpdatedAt int64 `bson:"updatedAt" json:"updatedAt"`
}

// HasPendingVerification is true while a verification code is stored on the account
func (a Account) HasPendingVerification() bool {
	return a.VerificationCode != "" && a.VerificationExpiresAt > 0
}

// HasPendingReset is true while a password reset token is stored on the account
func (a Account) HasPendingReset() bool {
	return a.ResetToken != "" && a.ResetExpiresAt > 0
}

// Photo references an image stored on the external media host.
type Photo struct {
	ExternalID string `bson:"externalId" json:"externalId"`
	URL        string `bson:"url" json:"url"`
}

// PhotoUpload is the content of a not yet stored profile image.
type PhotoUpload struct {
	FileName    string
	ContentType string
	Size        int64
	Content     io.Reader
}

// Store persists accounts of one kind. Email uniqueness is enforced by the store
// and surfaces as ErrEmailTaken on create.
type Store interface {
	FindByEmail(ctx context.Context, email string) (Account, error)
	FindByID(ctx context.Context, id string) (Account, error)
	Create(ctx context.Context, account Account) (string, error)
	Replace(ctx context.Context, account Account) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context) ([]Account, error)
}

// Notifier sends an email to a single recipient.
type Notifier interface {
	SendEmail(ctx context.Context, to string, subject string, htmlContent string) error
}

// MediaStore is the external image host.
type MediaStore interface {
	Upload(ctx context.Context, objectID string, content io.Reader, size int64, contentType string) (Photo, error)
	Delete(ctx context.Context, externalID string) error
}

// TokenIssuer creates a signed session token bound to the account id and role.
type TokenIssuer func(accountID string, role string) (string, error)

type RegisterInput struct {
	Name     string
	Email    string
	Password string
	Photo    *PhotoUpload
}

type ProfilePatch struct {
	Name  string
	Email string
	Photo *PhotoUpload

	// both must be set to change the password
	CurrentPassword string
	NewPassword     string
}
