package student

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	GENDER_MALE   = "Male"
	GENDER_FEMALE = "Female"
	GENDER_OTHER  = "Other"
)

const (
	STATUS_ACTIVE      = "Active"
	STATUS_INACTIVE    = "Inactive"
	STATUS_GRADUATED   = "Graduated"
	STATUS_TRANSFERRED = "Transferred"
)

type Address struct {
	Street     string `bson:"street" json:"street"`
	City       string `bson:"city" json:"city"`
	State      string `bson:"state" json:"state"`
	PostalCode string `bson:"postalCode" json:"postalCode"`
}

type ContactInfo struct {
	Phone   string  `bson:"phone" json:"phone"`
	Email   string  `bson:"email" json:"email"`
	Address Address `bson:"address" json:"address"`
}

type Guardian struct {
	Name         string `bson:"name" json:"name"`
	Relationship string `bson:"relationship" json:"relationship"`
	Phone        string `bson:"phone" json:"phone"`
	Email        string `bson:"email" json:"email"`
}

type Student struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name           string             `bson:"name" json:"name"`
	DateOfBirth    time.Time          `bson:"dateOfBirth" json:"dateOfBirth"`
	Gender         string             `bson:"gender" json:"gender"`
	Class          string             `bson:"class" json:"class"`
	ContactInfo    ContactInfo        `bson:"contactInfo" json:"contactInfo"`
	Guardian       Guardian           `bson:"guardian" json:"guardian"`
	EnrollmentDate time.Time          `bson:"enrollmentDate" json:"enrollmentDate"`
	Status         string             `bson:"status" json:"status"`
	CreatedAt      int64              `bson:"createdAt" json:"createdAt"`
	UpdatedAt      int64              `bson:"updatedAt" json:"updatedAt"`
}

// StudentPatch carries the updatable fields; zero values are left unchanged.
type StudentPatch struct {
	Name        string
	Class       string
	Status      string
	ContactInfo *ContactInfo
	Guardian    *Guardian
}

type FeeRecord struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	StudentID   primitive.ObjectID `bson:"student" json:"student"`
	FeeType     string             `bson:"feeType" json:"feeType"`
	Amount      float64            `bson:"amount" json:"amount"`
	PaymentDate time.Time          `bson:"paymentDate" json:"paymentDate"`
	Remarks     string             `bson:"remarks" json:"remarks"`
	CreatedAt   int64              `bson:"createdAt" json:"createdAt"`
	UpdatedAt   int64              `bson:"updatedAt" json:"updatedAt"`
}

type LibraryRecord struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	StudentID  primitive.ObjectID `bson:"student" json:"student"`
	BookTitle  string             `bson:"bookTitle" json:"bookTitle"`
	IssueDate  time.Time          `bson:"issueDate" json:"issueDate"`
	DueDate    time.Time          `bson:"dueDate" json:"dueDate"`
	ReturnDate *time.Time         `bson:"returnDate,omitempty" json:"returnDate,omitempty"`
	Fine       float64            `bson:"fine" json:"fine"`
	CreatedAt  int64              `bson:"createdAt" json:"createdAt"`
	UpdatedAt  int64              `bson:"updatedAt" json:"updatedAt"`
}
