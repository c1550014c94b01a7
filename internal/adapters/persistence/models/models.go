package models

import (
	"time"

	"gorm.io/gorm"
)

// ============================================================
// Auth & User Tables
// ============================================================

// Account types
const (
	AccountTrial        = "TRIAL"
	AccountTrialExpired = "TRIAL_EXPIRED"
	AccountPending      = "PENDING"
	AccountMember       = "MEMBER"
	AccountAdmin        = "ADMIN"
)

// Membership types
const (
	MembershipMonthly       = "MONTHLY"
	MembershipYearly        = "YEARLY"
	MembershipYearlyUpfront = "YEARLY_UPFRONT"
	MembershipPunchCard     = "PUNCH_CARD"
	MembershipPerSession    = "PER_SESSION"
)

// Payment statuses
const (
	PaymentStatusPending = "PENDING"
	PaymentStatusPaid    = "PAID"
	PaymentStatusUnpaid  = "UNPAID"
)

// User represents users table
type User struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	Email       string         `gorm:"uniqueIndex;size:100;not null" json:"email"`
	Password    string         `gorm:"size:255;not null" json:"-"`
	AccountType string         `gorm:"size:20;not null;default:'TRIAL'" json:"account_type"`
	IsActive    bool           `gorm:"default:true" json:"is_active"`
	CreatedAt   time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`

	Member *Member `gorm:"foreignKey:UserID" json:"member,omitempty"`
}

func (User) TableName() string {
	return "users"
}

// UserResponse DTO
type UserResponse struct {
	ID          uint            `json:"id"`
	Email       string          `json:"email"`
	AccountType string          `json:"account_type"`
	IsActive    bool            `json:"is_active"`
	Member      *MemberResponse `json:"member,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
}

func (u *User) ToResponse() *UserResponse {
	resp := &UserResponse{
		ID:          u.ID,
		Email:       u.Email,
		AccountType: u.AccountType,
		IsActive:    u.IsActive,
		CreatedAt:   u.CreatedAt,
	}
	if u.Member != nil {
		resp.Member = u.Member.ToResponse()
	}
	return resp
}

// RefreshToken represents refresh_tokens table
type RefreshToken struct {
	ID        uint       `gorm:"primaryKey" json:"id"`
	UserID    uint       `gorm:"index;not null" json:"user_id"`
	TokenHash string     `gorm:"size:255;not null;index" json:"-"`
	ExpiresAt time.Time  `gorm:"not null" json:"expires_at"`
	CreatedAt time.Time  `gorm:"autoCreateTime" json:"created_at"`
	RevokedAt *time.Time `gorm:"index" json:"revoked_at"`
	User      User       `gorm:"foreignKey:UserID" json:"-"`
}

func (RefreshToken) TableName() string {
	return "refresh_tokens"
}

func (rt *RefreshToken) IsRevoked() bool {
	return rt.RevokedAt != nil
}

func (rt *RefreshToken) IsExpired() bool {
	return time.Now().After(rt.ExpiresAt)
}

// ============================================================
// Member Tables
// ============================================================

// Member represents members table. Carries the membership state
// machine: trial window, membership type, punch card, session credit
// and payment bookkeeping.
type Member struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	UserID      uint       `gorm:"uniqueIndex;not null" json:"user_id"`
	FirstName   string     `gorm:"size:100;not null" json:"first_name"`
	LastName    string     `gorm:"size:100;not null" json:"last_name"`
	Phone       *string    `gorm:"size:30" json:"phone"`
	DateOfBirth *time.Time `json:"date_of_birth"`

	// Address (membership application)
	Street      *string `gorm:"size:100" json:"street"`
	HouseNumber *string `gorm:"size:10" json:"house_number"`
	PostalCode  *string `gorm:"size:10" json:"postal_code"`
	City        *string `gorm:"size:100" json:"city"`

	// Emergency contact
	EmergencyName     *string `gorm:"size:100" json:"emergency_name"`
	EmergencyPhone    *string `gorm:"size:30" json:"emergency_phone"`
	EmergencyRelation *string `gorm:"size:50" json:"emergency_relation"`

	// Playing background
	HasPlayedBefore *bool   `json:"has_played_before"`
	ExperienceLevel *string `gorm:"size:50" json:"experience_level"`
	OtherSports     *string `gorm:"size:200" json:"other_sports"`

	// Membership
	MembershipType       *string    `gorm:"size:20;index" json:"membership_type"`
	PunchCardCount       int        `gorm:"default:0" json:"punch_card_count"`
	Credit               float64    `gorm:"type:decimal(10,2);default:0" json:"credit"`
	PaymentStatus        string     `gorm:"size:20;default:'PENDING'" json:"payment_status"`
	LastPaidMonth        *string    `gorm:"size:7" json:"last_paid_month"`
	LastPaymentDate      *time.Time `json:"last_payment_date"`
	NextPaymentDue       *time.Time `json:"next_payment_due"`
	MembershipStartDate  *time.Time `json:"membership_start_date"`
	MembershipExpiryDate *time.Time `json:"membership_expiry_date"`
	ConversionDate       *time.Time `json:"conversion_date"`

	// Trial
	TrialStartDate   *time.Time `json:"trial_start_date"`
	TrialEndDate     *time.Time `json:"trial_end_date"`
	TrialLessonsUsed int        `gorm:"default:0" json:"trial_lessons_used"`
	IsTrialExpired   bool       `gorm:"default:false" json:"is_trial_expired"`
	StopReason       *string    `gorm:"size:100" json:"stop_reason"`
	StopFeedback     *string    `gorm:"type:text" json:"stop_feedback"`

	CreatedAt time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	User          *User                  `gorm:"foreignKey:UserID" json:"user,omitempty"`
	TrialLessons  []TrialLesson          `gorm:"foreignKey:MemberID" json:"trial_lessons,omitempty"`
	Payments      []Payment              `gorm:"foreignKey:MemberID" json:"payments,omitempty"`
	Registrations []TrainingRegistration `gorm:"foreignKey:MemberID" json:"registrations,omitempty"`
}

func (Member) TableName() string {
	return "members"
}

// FullName returns the member's display name
func (m *Member) FullName() string {
	return m.FirstName + " " + m.LastName
}

// MemberResponse DTO
type MemberResponse struct {
	ID                   uint       `json:"id"`
	UserID               uint       `json:"user_id"`
	Email                string     `json:"email,omitempty"`
	AccountType          string     `json:"account_type,omitempty"`
	FirstName            string     `json:"first_name"`
	LastName             string     `json:"last_name"`
	Phone                *string    `json:"phone"`
	Street               *string    `json:"street"`
	HouseNumber          *string    `json:"house_number"`
	PostalCode           *string    `json:"postal_code"`
	City                 *string    `json:"city"`
	MembershipType       *string    `json:"membership_type"`
	PunchCardCount       int        `json:"punch_card_count"`
	Credit               float64    `json:"credit"`
	PaymentStatus        string     `json:"payment_status"`
	LastPaidMonth        *string    `json:"last_paid_month"`
	MembershipStartDate  *time.Time `json:"membership_start_date"`
	MembershipExpiryDate *time.Time `json:"membership_expiry_date"`
	TrialStartDate       *time.Time `json:"trial_start_date"`
	TrialEndDate         *time.Time `json:"trial_end_date"`
	CreatedAt            time.Time  `json:"created_at"`
}

func (m *Member) ToResponse() *MemberResponse {
	resp := &MemberResponse{
		ID:                   m.ID,
		UserID:               m.UserID,
		FirstName:            m.FirstName,
		LastName:             m.LastName,
		Phone:                m.Phone,
		Street:               m.Street,
		HouseNumber:          m.HouseNumber,
		PostalCode:           m.PostalCode,
		City:                 m.City,
		MembershipType:       m.MembershipType,
		PunchCardCount:       m.PunchCardCount,
		Credit:               m.Credit,
		PaymentStatus:        m.PaymentStatus,
		LastPaidMonth:        m.LastPaidMonth,
		MembershipStartDate:  m.MembershipStartDate,
		MembershipExpiryDate: m.MembershipExpiryDate,
		TrialStartDate:       m.TrialStartDate,
		TrialEndDate:         m.TrialEndDate,
		CreatedAt:            m.CreatedAt,
	}

	if m.User != nil {
		resp.Email = m.User.Email
		resp.AccountType = m.User.AccountType
	}

	return resp
}

// ============================================================
// Lesson & Training Tables
// ============================================================

// Lesson statuses
const (
	LessonStatusScheduled = "SCHEDULED"
	LessonStatusCompleted = "COMPLETED"
	LessonStatusCancelled = "CANCELLED"
)

// TrialLesson represents trial_lessons table. Used for trial lesson
// bookings and for punch card training bookings, which share the same
// lesson lifecycle.
type TrialLesson struct {
	ID            uint       `gorm:"primaryKey" json:"id"`
	MemberID      uint       `gorm:"index;not null" json:"member_id"`
	ScheduledDate time.Time  `gorm:"type:date;not null;index:idx_lesson_session" json:"scheduled_date"`
	ScheduledTime string     `gorm:"size:5;not null" json:"scheduled_time"`
	Location      string     `gorm:"size:200;not null;index:idx_lesson_session" json:"location"`
	Status        string     `gorm:"size:20;not null;default:'SCHEDULED';index" json:"status"`
	CheckInTime   *time.Time `json:"check_in_time"`
	CompletedAt   *time.Time `json:"completed_at"`
	Notes         *string    `gorm:"type:text" json:"notes"`
	CreatedAt     time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time  `gorm:"autoUpdateTime" json:"updated_at"`

	Member *Member `gorm:"foreignKey:MemberID" json:"member,omitempty"`
}

func (TrialLesson) TableName() string {
	return "trial_lessons"
}

// LessonResponse DTO
type LessonResponse struct {
	ID       uint   `json:"id"`
	MemberID uint   `json:"member_id"`
	Date     string `json:"date"`
	Time     string `json:"time"`
	Location string `json:"location"`
	Status   string `json:"status"`
}

func (l *TrialLesson) ToResponse() *LessonResponse {
	return &LessonResponse{
		ID:       l.ID,
		MemberID: l.MemberID,
		Date:     l.ScheduledDate.Format("2006-01-02"),
		Time:     l.ScheduledTime,
		Location: l.Location,
		Status:   l.Status,
	}
}

// TrainingRegistration represents training_registrations table.
// One row per member per session; uniqueness enforced on
// (member_id, training_date, location).
type TrainingRegistration struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	MemberID     uint      `gorm:"not null;uniqueIndex:idx_member_session" json:"member_id"`
	TrainingDate time.Time `gorm:"type:date;not null;uniqueIndex:idx_member_session;index:idx_reg_session" json:"training_date"`
	TrainingTime string    `gorm:"size:5;not null" json:"training_time"`
	Location     string    `gorm:"size:200;not null;uniqueIndex:idx_member_session;index:idx_reg_session" json:"location"`
	CreatedAt    time.Time `gorm:"autoCreateTime" json:"created_at"`

	Member *Member `gorm:"foreignKey:MemberID" json:"member,omitempty"`
}

func (TrainingRegistration) TableName() string {
	return "training_registrations"
}

// RegistrationResponse DTO
type RegistrationResponse struct {
	ID       uint   `json:"id"`
	Date     string `json:"date"`
	Time     string `json:"time"`
	Location string `json:"location"`
}

func (r *TrainingRegistration) ToResponse() *RegistrationResponse {
	return &RegistrationResponse{
		ID:       r.ID,
		Date:     r.TrainingDate.Format("2006-01-02"),
		Time:     r.TrainingTime,
		Location: r.Location,
	}
}

// ============================================================
// Payment Tables
// ============================================================

// Payment types
const (
	PaymentTypeYearly     = "MEMBERSHIP_YEARLY"
	PaymentTypeMonthly    = "MEMBERSHIP_MONTHLY"
	PaymentTypePunchCard  = "PUNCH_CARD"
	PaymentTypePerSession = "PER_SESSION"
)

// Payment represents payments table
type Payment struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	MemberID    uint       `gorm:"not null;index" json:"member_id"`
	Amount      float64    `gorm:"type:decimal(10,2);not null" json:"amount"`
	PaymentType string     `gorm:"size:30;not null" json:"payment_type"`
	Description string     `gorm:"size:255" json:"description"`
	Status      string     `gorm:"size:20;not null;default:'PENDING'" json:"status"`
	PaymentURL  string     `gorm:"size:255" json:"payment_url"`
	ExpiresAt   *time.Time `json:"expires_at"`
	CreatedAt   time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time  `gorm:"autoUpdateTime" json:"updated_at"`

	Member *Member `gorm:"foreignKey:MemberID" json:"member,omitempty"`
}

func (Payment) TableName() string {
	return "payments"
}

// PaymentResponse DTO
type PaymentResponse struct {
	ID         uint       `json:"id"`
	MemberID   uint       `json:"member_id"`
	Amount     float64    `json:"amount"`
	Status     string     `json:"status"`
	PaymentURL string     `json:"payment_url,omitempty"`
	ExpiresAt  *time.Time `json:"expires_at,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
}

func (p *Payment) ToResponse() *PaymentResponse {
	return &PaymentResponse{
		ID:         p.ID,
		MemberID:   p.MemberID,
		Amount:     p.Amount,
		Status:     p.Status,
		PaymentURL: p.PaymentURL,
		ExpiresAt:  p.ExpiresAt,
		CreatedAt:  p.CreatedAt,
	}
}

// ============================================================
// Photo Tables
// ============================================================

// Photo represents photos table (homepage gallery)
type Photo struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Title     string    `gorm:"size:200;not null" json:"title"`
	Alt       string    `gorm:"size:200;not null" json:"alt"`
	ImageURL  string    `gorm:"size:500;not null" json:"image_url"`
	SortOrder int       `gorm:"not null;default:0;index" json:"order"`
	IsActive  bool      `gorm:"default:true" json:"is_active"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Photo) TableName() string {
	return "photos"
}

// ============================================================
// Auto Migration
// ============================================================

// AutoMigrate runs auto migration for all tables
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&User{},
		&RefreshToken{},
		&Member{},
		&TrialLesson{},
		&TrainingRegistration{},
		&Payment{},
		&Photo{},
	)
}
