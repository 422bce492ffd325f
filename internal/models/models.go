package models

import "time"

// Status values shared by donors and blood requests.
const (
	StatusPending  = "pending"
	StatusApproved = "approved"
	StatusRejected = "rejected"
)

const (
	UrgencyNormal = "normal"

	DonationCompleted = "completed"

	RoleAdmin = "admin"
)

// CanonicalBloodGroups are the eight ISO blood-group codes the stock ledger
// tracks. Lazy seeding and baseline seeding both iterate this list.
var CanonicalBloodGroups = []string{"A+", "A-", "B+", "B-", "O+", "O-", "AB+", "AB-"}

// Donor is a registered individual who applied to give blood. Accounts start
// in pending status and cannot log in until an admin approves them.
type Donor struct {
	ID               uint       `gorm:"primaryKey" json:"id"`
	FullName         string     `gorm:"size:100;not null" json:"full_name"`
	Age              int        `gorm:"not null" json:"age"`
	Gender           string     `gorm:"size:10;not null" json:"gender"`
	BloodGroup       string     `gorm:"size:5;not null;index" json:"blood_group"`
	Contact          string     `gorm:"size:20;not null" json:"contact"`
	Email            string     `gorm:"size:100;uniqueIndex;not null" json:"email"`
	City             string     `gorm:"size:50;not null" json:"city"`
	PasswordHash     string     `gorm:"size:255;not null" json:"-"`
	Status           string     `gorm:"size:20;default:pending" json:"status"`
	IsEligible       bool       `gorm:"default:true" json:"is_eligible"`
	LastDonationDate *time.Time `json:"last_donation_date,omitempty"`
	TotalDonations   int        `gorm:"default:0" json:"total_donations"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`

	Donations []Donation `gorm:"foreignKey:DonorID;constraint:OnDelete:CASCADE" json:"-"`
}

func (Donor) TableName() string { return "donors" }

// BloodRequest is a submission on behalf of a patient or hospital needing
// blood units. Approval debits matching stock when enough units are on hand.
type BloodRequest struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Name         string    `gorm:"size:100;not null" json:"name"`
	Contact      string    `gorm:"size:20;not null" json:"contact"`
	BloodGroup   string    `gorm:"size:5;not null;index" json:"blood_group"`
	Units        int       `gorm:"not null" json:"units"`
	HospitalName string    `gorm:"size:100;not null" json:"hospital_name"`
	City         string    `gorm:"size:50;not null" json:"city"`
	Message      string    `gorm:"type:text" json:"message"`
	Status       string    `gorm:"size:20;default:pending" json:"status"`
	Urgency      string    `gorm:"size:20;default:normal" json:"urgency"`
	DonorID      *uint     `json:"donor_id,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (BloodRequest) TableName() string { return "blood_requests" }

// Donation is one completed blood-giving event tied to a donor.
type Donation struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	DonorID      uint      `gorm:"not null;index" json:"donor_id"`
	Location     string    `gorm:"size:100;not null" json:"location"`
	Units        int       `gorm:"default:1" json:"units"`
	Status       string    `gorm:"size:20;default:completed" json:"status"`
	DonationDate time.Time `gorm:"not null" json:"donation_date"`
	Notes        string    `gorm:"type:text" json:"notes"`
	CreatedAt    time.Time `json:"created_at"`
}

func (Donation) TableName() string { return "donations" }

type Admin struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Username     string    `gorm:"size:50;uniqueIndex;not null" json:"username"`
	Email        string    `gorm:"size:100;uniqueIndex;not null" json:"email"`
	PasswordHash string    `gorm:"size:255;not null" json:"-"`
	FullName     string    `gorm:"size:100;not null" json:"full_name"`
	Role         string    `gorm:"size:20;default:admin" json:"role"`
	CreatedAt    time.Time `json:"created_at"`
}

func (Admin) TableName() string { return "admins" }

// BloodStock holds the per-group inventory counters. Rows are keyed by the
// blood-group code string, not a foreign key; one row per group.
type BloodStock struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	BloodGroup     string    `gorm:"size:5;uniqueIndex;not null" json:"blood_group"`
	UnitsAvailable int       `gorm:"default:0" json:"units_available"`
	UnitsReserved  int       `gorm:"default:0" json:"units_reserved"`
	LastUpdated    time.Time `json:"last_updated"`
}

func (BloodStock) TableName() string { return "blood_stock" }
