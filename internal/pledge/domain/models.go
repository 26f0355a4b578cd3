package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// Pledge is one eye-donation pledge record. Nullable columns that the
// dashboard aggregates over (age, gender, district, language) are pointers so
// missing values stay out of the breakdowns instead of collapsing into zero
// values.
type Pledge struct {
	ID              snowflake.ID `gorm:"primaryKey" json:"id"`
	ReferenceNumber string       `gorm:"not null;uniqueIndex" json:"reference_number"`

	FullName      string     `gorm:"not null" json:"full_name"`
	Gender        *string    `json:"gender,omitempty"`
	DateOfBirth   *time.Time `json:"date_of_birth,omitempty"`
	Age           *int       `json:"age,omitempty"`
	BloodGroup    string     `json:"blood_group,omitempty"`
	Mobile        string     `gorm:"not null;index" json:"mobile"`
	Email         *string    `gorm:"index" json:"email,omitempty"`
	MaritalStatus string     `json:"marital_status,omitempty"`
	Occupation    string     `json:"occupation,omitempty"`
	IDProofType   string     `json:"id_proof_type,omitempty"`
	IDProofNumber string     `json:"id_proof_number,omitempty"`

	AddressLine1 string  `json:"address_line1,omitempty"`
	AddressLine2 string  `json:"address_line2,omitempty"`
	City         string  `gorm:"index" json:"city,omitempty"`
	District     *string `json:"district,omitempty"`
	State        string  `gorm:"index" json:"state,omitempty"`
	Pincode      string  `json:"pincode,omitempty"`
	Country      string  `gorm:"not null;default:India" json:"country"`

	PledgePlace        string     `json:"pledge_place,omitempty"`
	PledgeDate         *time.Time `json:"pledge_date,omitempty"`
	OrgansConsented    string     `gorm:"not null;default:Eyes" json:"organs_consented"`
	LanguagePreference *string    `json:"language_preference,omitempty"`
	PreferredEyeBank   string     `json:"preferred_eye_bank,omitempty"`
	Notes              string     `json:"notes,omitempty"`
	ConsentGiven       bool       `gorm:"not null;default:false" json:"consent_given"`

	Witness1Name     string `json:"witness1_name,omitempty"`
	Witness1Relation string `json:"witness1_relation,omitempty"`
	Witness1Mobile   string `json:"witness1_mobile,omitempty"`
	Witness2Name     string `json:"witness2_name,omitempty"`
	Witness2Relation string `json:"witness2_relation,omitempty"`
	Witness2Mobile   string `json:"witness2_mobile,omitempty"`

	IsVerified bool       `gorm:"not null;default:false;index" json:"is_verified"`
	VerifiedAt *time.Time `json:"verified_at,omitempty"`
	VerifiedBy *string    `json:"verified_by,omitempty"`

	Source   string `gorm:"not null;default:web;index" json:"source"`
	IsActive bool   `gorm:"not null;default:true;index" json:"is_active"`

	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP;index" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (Pledge) TableName() string {
	return "pledges"
}
