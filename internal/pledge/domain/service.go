package domain

import (
	"context"
	"errors"
	"time"

	"github.com/sightcare/netra/pkg/db/pagination"
)

var (
	ErrInvalidName     = errors.New("invalid_name")
	ErrInvalidMobile   = errors.New("invalid_mobile")
	ErrConsentRequired = errors.New("consent_required")
	ErrNotFound        = errors.New("not_found")
	ErrAlreadyVerified = errors.New("already_verified")
	ErrInactive        = errors.New("pledge_inactive")
	ErrDuplicatePledge = errors.New("duplicate_pledge")
)

type CreatePledgeRequest struct {
	FullName      string     `json:"full_name"`
	Gender        *string    `json:"gender"`
	DateOfBirth   *time.Time `json:"date_of_birth"`
	Age           *int       `json:"age"`
	BloodGroup    string     `json:"blood_group"`
	Mobile        string     `json:"mobile"`
	Email         *string    `json:"email"`
	MaritalStatus string     `json:"marital_status"`
	Occupation    string     `json:"occupation"`
	IDProofType   string     `json:"id_proof_type"`
	IDProofNumber string     `json:"id_proof_number"`

	AddressLine1 string  `json:"address_line1"`
	AddressLine2 string  `json:"address_line2"`
	City         string  `json:"city"`
	District     *string `json:"district"`
	State        string  `json:"state"`
	Pincode      string  `json:"pincode"`
	Country      string  `json:"country"`

	PledgePlace        string     `json:"pledge_place"`
	PledgeDate         *time.Time `json:"pledge_date"`
	OrgansConsented    string     `json:"organs_consented"`
	LanguagePreference *string    `json:"language_preference"`
	PreferredEyeBank   string     `json:"preferred_eye_bank"`
	Notes              string     `json:"notes"`
	ConsentGiven       bool       `json:"consent_given"`

	Witness1Name     string `json:"witness1_name"`
	Witness1Relation string `json:"witness1_relation"`
	Witness1Mobile   string `json:"witness1_mobile"`
	Witness2Name     string `json:"witness2_name"`
	Witness2Relation string `json:"witness2_relation"`
	Witness2Mobile   string `json:"witness2_mobile"`

	Source string `json:"source"`
}

type UpdatePledgeRequest struct {
	ID string

	FullName           *string    `json:"full_name"`
	Gender             *string    `json:"gender"`
	Age                *int       `json:"age"`
	BloodGroup         *string    `json:"blood_group"`
	Mobile             *string    `json:"mobile"`
	Email              *string    `json:"email"`
	AddressLine1       *string    `json:"address_line1"`
	AddressLine2       *string    `json:"address_line2"`
	City               *string    `json:"city"`
	District           *string    `json:"district"`
	State              *string    `json:"state"`
	Pincode            *string    `json:"pincode"`
	PledgeDate         *time.Time `json:"pledge_date"`
	OrgansConsented    *string    `json:"organs_consented"`
	LanguagePreference *string    `json:"language_preference"`
	PreferredEyeBank   *string    `json:"preferred_eye_bank"`
	Notes              *string    `json:"notes"`
}

type ListPledgeRequest struct {
	PageToken   string
	PageSize    int32
	State       string
	City        string
	Source      string
	Verified    *bool
	Active      *bool
	Search      string
	CreatedFrom *time.Time
	CreatedTo   *time.Time
}

type ListPledgeResponse struct {
	pagination.PageInfo
	Pledges []Pledge `json:"pledges"`
}

// ExportRecord is the flat row shape handed to export consumers.
type ExportRecord struct {
	ReferenceNumber string `json:"reference_number"`
	FullName        string `json:"full_name"`
	Gender          string `json:"gender"`
	Age             string `json:"age"`
	Mobile          string `json:"mobile"`
	Email           string `json:"email"`
	City            string `json:"city"`
	District        string `json:"district"`
	State           string `json:"state"`
	Pincode         string `json:"pincode"`
	OrgansConsented string `json:"organs_consented"`
	Source          string `json:"source"`
	IsVerified      bool   `json:"is_verified"`
	CreatedAt       string `json:"created_at"`
}

type Service interface {
	Create(ctx context.Context, req CreatePledgeRequest) (Pledge, error)
	GetByID(ctx context.Context, id string) (Pledge, error)
	GetByReference(ctx context.Context, reference string) (Pledge, error)
	List(ctx context.Context, req ListPledgeRequest) (ListPledgeResponse, error)
	Update(ctx context.Context, req UpdatePledgeRequest) (Pledge, error)
	Verify(ctx context.Context, id string, verifiedBy string) (Pledge, error)
	Deactivate(ctx context.Context, id string) error
	Export(ctx context.Context, filter ListFilter) ([]ExportRecord, error)
}
