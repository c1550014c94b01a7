package domain

import "errors"

// Authentication errors
var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrEmailExists        = errors.New("email already registered")
	ErrUserNotFound       = errors.New("user not found")
	ErrUserInactive       = errors.New("user account is inactive")
	ErrTokenInvalid       = errors.New("invalid token")
	ErrTokenExpired       = errors.New("token expired")
	ErrTokenRevoked       = errors.New("token revoked")
	ErrWeakPassword       = errors.New("password must be at least 8 characters")
)

// Trial errors
var (
	ErrTrialCooldown      = errors.New("previous trial expired less than a year ago")
	ErrTrialNotActive     = errors.New("trial account not active")
	ErrTrialNotFound      = errors.New("lesson not found")
	ErrDatesAlreadyBooked = errors.New("trial dates already booked")
	ErrDateInPast         = errors.New("date is in the past")
	ErrDateOutsideWindow  = errors.New("dates must be within two weeks from today")
	ErrDuplicateDates     = errors.New("duplicate dates not allowed")
	ErrRescheduleTooLate  = errors.New("cannot reschedule within 24 hours of lesson")
)

// TrialCooldownError reports how long until trial re-signup is allowed
type TrialCooldownError struct {
	DaysSinceExpiry int
}

func (e *TrialCooldownError) Error() string {
	return ErrTrialCooldown.Error()
}

func (e *TrialCooldownError) Unwrap() error {
	return ErrTrialCooldown
}

// DaysRemaining returns the days left of the re-signup block
func (e *TrialCooldownError) DaysRemaining() int {
	return 365 - e.DaysSinceExpiry
}

// Booking errors
var (
	ErrAlreadyRegistered  = errors.New("already registered for this training")
	ErrTrainingFull       = errors.New("training session is full")
	ErrRegistrationGone   = errors.New("registration not found")
	ErrCancelTooLate      = errors.New("cancellations are only allowed at least 4 hours before the training")
	ErrNoPunchesLeft      = errors.New("no remaining sessions on punch card")
	ErrPunchCardOnly      = errors.New("this feature is only available for punch card members")
	ErrPunchCardExcluded  = errors.New("punch card members should use the booking system")
	ErrNotScheduled       = errors.New("only scheduled trainings can be cancelled")
	ErrNotOwner           = errors.New("resource does not belong to this member")
)

// Membership errors
var (
	ErrMemberNotFound    = errors.New("member not found")
	ErrInvalidMembership = errors.New("unknown membership type")
	ErrNotMonthlyMember  = errors.New("monthly member not found")
	ErrNotPerSession     = errors.New("this feature is only for per-session members")
)

// Admin errors
var (
	ErrCannotDowngradeSelf = errors.New("cannot downgrade own admin role")
)

// Photo errors
var (
	ErrPhotoNotFound    = errors.New("photo not found")
	ErrUnsupportedImage = errors.New("unsupported image format")
	ErrImageTooLarge    = errors.New("image exceeds maximum size")
)
