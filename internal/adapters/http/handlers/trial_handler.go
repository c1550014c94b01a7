package handlers

import (
	"errors"
	"fmt"
	"strings"

	"github.com/Goldwhyit/almere-pickleball/internal/config"
	"github.com/Goldwhyit/almere-pickleball/internal/core/domain"
	"github.com/Goldwhyit/almere-pickleball/internal/core/services"
	"github.com/Goldwhyit/almere-pickleball/internal/pkg/pagination"
	"github.com/Goldwhyit/almere-pickleball/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// TrialHandler handles trial lesson endpoints
type TrialHandler struct {
	trialService *services.TrialService
	authHandler  *AuthHandler
	cfg          *config.Config
}

// NewTrialHandler creates a new trial handler
func NewTrialHandler(trialService *services.TrialService, authHandler *AuthHandler, cfg *config.Config) *TrialHandler {
	return &TrialHandler{
		trialService: trialService,
		authHandler:  authHandler,
		cfg:          cfg,
	}
}

// CompleteLessonRequest marks a lesson attended, with optional notes
type CompleteLessonRequest struct {
	Notes string `json:"notes" validate:"omitempty,max=500"`
}

// Signup handles trial signup
// @Summary Sign up for a trial
// @Description Create a trial account with a 30-day trial period
// @Tags Trial
// @Accept json
// @Produce json
// @Param body body services.SignupInput true "Signup data"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /trial-lessons/signup [post]
func (h *TrialHandler) Signup(c *fiber.Ctx) error {
	var req services.SignupInput
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if err := validateStruct(&req); err != nil {
		return response.BadRequest(c, err.Error())
	}
	req.Email = strings.TrimSpace(strings.ToLower(req.Email))
	req.FirstName = strings.TrimSpace(req.FirstName)
	req.LastName = strings.TrimSpace(req.LastName)

	result, err := h.trialService.Signup(c.Context(), &req)
	if err != nil {
		var cooldown *domain.TrialCooldownError
		switch {
		case errors.As(err, &cooldown):
			return response.Conflict(c, fmt.Sprintf(
				"Je proefperiode is verlopen. Je kunt je over %d dagen opnieuw aanmelden", cooldown.DaysRemaining()))
		case errors.Is(err, domain.ErrEmailExists):
			return response.Conflict(c, "Dit e-mailadres is al geregistreerd")
		case errors.Is(err, domain.ErrWeakPassword):
			return response.BadRequest(c, "Password must be at least 8 characters")
		default:
			return response.InternalServerError(c, "Failed to sign up")
		}
	}

	h.authHandler.setAuthCookies(c, result.AccessToken, result.RefreshToken)

	return response.Created(c, "Trial account created", fiber.Map{
		"access_token": result.AccessToken,
		"user":         result.User,
	})
}

// MyStatus returns the current trial status
// @Summary Get trial status
// @Description Get the current user's trial progress
// @Tags Trial
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Failure 401 {object} response.Response
// @Router /trial-lessons/status [get]
func (h *TrialHandler) MyStatus(c *fiber.Ctx) error {
	userID, ok := c.Locals("userID").(uint)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	status, err := h.trialService.MyStatus(c.Context(), userID)
	if err != nil {
		if errors.Is(err, domain.ErrMemberNotFound) {
			return response.NotFound(c, "Member not found")
		}
		return response.InternalServerError(c, "Failed to get trial status")
	}

	return response.Success(c, "Trial status retrieved", status)
}

// MyLessons returns the current user's trial lessons
// @Summary Get my trial lessons
// @Description List the current user's trial lessons
// @Tags Trial
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Router /trial-lessons/my-lessons [get]
func (h *TrialHandler) MyLessons(c *fiber.Ctx) error {
	userID, ok := c.Locals("userID").(uint)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	lessons, err := h.trialService.MyLessons(c.Context(), userID)
	if err != nil {
		return response.InternalServerError(c, "Failed to get lessons")
	}

	return response.Success(c, "Lessons retrieved", fiber.Map{
		"lessons": lessons,
	})
}

// BookDates books the three trial lesson dates
// @Summary Book trial lesson dates
// @Description Book three trial lessons within the next 14 days
// @Tags Trial
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body services.BookDatesInput true "Three lesson dates"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /trial-lessons/book-dates [post]
func (h *TrialHandler) BookDates(c *fiber.Ctx) error {
	userID, ok := c.Locals("userID").(uint)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	var req services.BookDatesInput
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if err := validateStruct(&req); err != nil {
		return response.BadRequest(c, err.Error())
	}

	lessons, err := h.trialService.BookDates(c.Context(), userID, &req)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrTrialNotActive):
			return response.Forbidden(c, "Je proefperiode is niet actief")
		case errors.Is(err, domain.ErrDatesAlreadyBooked):
			return response.Conflict(c, "Je hebt al proeflessen geboekt")
		case errors.Is(err, domain.ErrDateInPast):
			return response.BadRequest(c, "Lesson dates cannot be in the past")
		case errors.Is(err, domain.ErrDateOutsideWindow):
			return response.BadRequest(c, "Lesson dates must be within the next 14 days")
		case errors.Is(err, domain.ErrDuplicateDates):
			return response.BadRequest(c, "Lesson dates must be distinct")
		default:
			return response.InternalServerError(c, "Failed to book lessons")
		}
	}

	return response.Created(c, "Proeflessen geboekt", fiber.Map{
		"lessons": lessons,
	})
}

// Reschedule moves a trial lesson to a new date
// @Summary Reschedule a trial lesson
// @Description Move a trial lesson, allowed until 24 hours before start
// @Tags Trial
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Lesson ID"
// @Param body body services.RescheduleInput true "New date and time"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /trial-lessons/{id}/reschedule [put]
func (h *TrialHandler) Reschedule(c *fiber.Ctx) error {
	userID, ok := c.Locals("userID").(uint)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	lessonID, err := c.ParamsInt("id")
	if err != nil || lessonID <= 0 {
		return response.BadRequest(c, "Invalid lesson ID")
	}

	var req services.RescheduleInput
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if err := validateStruct(&req); err != nil {
		return response.BadRequest(c, err.Error())
	}

	lesson, err := h.trialService.Reschedule(c.Context(), userID, uint(lessonID), &req)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrTrialNotFound):
			return response.NotFound(c, "Lesson not found")
		case errors.Is(err, domain.ErrNotOwner):
			return response.Forbidden(c, "You can only reschedule your own lessons")
		case errors.Is(err, domain.ErrNotScheduled):
			return response.BadRequest(c, "Only scheduled lessons can be rescheduled")
		case errors.Is(err, domain.ErrRescheduleTooLate):
			return response.BadRequest(c, "Verzetten kan alleen tot 24 uur voor aanvang")
		case errors.Is(err, domain.ErrDateInPast):
			return response.BadRequest(c, "New date cannot be in the past")
		default:
			return response.InternalServerError(c, "Failed to reschedule lesson")
		}
	}

	return response.Success(c, "Les verzet", lesson)
}

// Convert converts the trial account to a full membership
// @Summary Convert to member
// @Description Convert a trial account into a full membership
// @Tags Trial
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Failure 403 {object} response.Response
// @Router /trial-lessons/convert [post]
func (h *TrialHandler) Convert(c *fiber.Ctx) error {
	userID, ok := c.Locals("userID").(uint)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	member, err := h.trialService.ConvertToMember(c.Context(), userID)
	if err != nil {
		if errors.Is(err, domain.ErrTrialNotActive) {
			return response.Forbidden(c, "Alleen proefleden kunnen lid worden")
		}
		return response.InternalServerError(c, "Failed to convert membership")
	}

	return response.Success(c, "Welkom als lid!", member)
}

// Decline records that a trial member stops
// @Summary Decline membership
// @Description Record that a trial member does not want to continue
// @Tags Trial
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body services.DeclineInput true "Reason for stopping"
// @Success 200 {object} response.Response
// @Router /trial-lessons/decline [post]
func (h *TrialHandler) Decline(c *fiber.Ctx) error {
	userID, ok := c.Locals("userID").(uint)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	var req services.DeclineInput
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if err := validateStruct(&req); err != nil {
		return response.BadRequest(c, err.Error())
	}

	if err := h.trialService.Decline(c.Context(), userID, &req); err != nil {
		return response.InternalServerError(c, "Failed to record decline")
	}

	return response.Success(c, "Bedankt voor je feedback", nil)
}

// ============================================================
// Admin endpoints
// ============================================================

// ListTrialMembers lists trial members for the back office
// @Summary List trial members
// @Description List trial members, optionally filtered by status
// @Tags Trial Admin
// @Produce json
// @Security BearerAuth
// @Param status query string false "Account status filter (TRIAL or TRIAL_EXPIRED)"
// @Success 200 {object} response.Response
// @Router /admin/trial-members [get]
func (h *TrialHandler) ListTrialMembers(c *fiber.Ctx) error {
	limit, offset := pagination.GetLimitOffset(c)
	status := c.Query("status")

	members, total, err := h.trialService.ListTrialMembers(c.Context(), status, offset, limit)
	if err != nil {
		return response.InternalServerError(c, "Failed to list trial members")
	}

	return response.Success(c, "Trial members retrieved", fiber.Map{
		"members": members,
		"total":   total,
	})
}

// TrialMemberDetails returns one trial member with lessons
// @Summary Get trial member details
// @Description Get a trial member and their lessons
// @Tags Trial Admin
// @Produce json
// @Security BearerAuth
// @Param id path int true "Member ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /admin/trial-members/{id} [get]
func (h *TrialHandler) TrialMemberDetails(c *fiber.Ctx) error {
	memberID, err := c.ParamsInt("id")
	if err != nil || memberID <= 0 {
		return response.BadRequest(c, "Invalid member ID")
	}

	member, lessons, err := h.trialService.TrialMemberDetails(c.Context(), uint(memberID))
	if err != nil {
		if errors.Is(err, domain.ErrMemberNotFound) {
			return response.NotFound(c, "Member not found")
		}
		return response.InternalServerError(c, "Failed to get member details")
	}

	return response.Success(c, "Member details retrieved", fiber.Map{
		"member":  member,
		"lessons": lessons,
	})
}

// CompleteLesson marks a trial lesson attended
// @Summary Mark lesson completed
// @Description Mark a trial lesson as attended
// @Tags Trial Admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Lesson ID"
// @Param body body CompleteLessonRequest false "Optional notes"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /admin/trial-lessons/{id}/complete [put]
func (h *TrialHandler) CompleteLesson(c *fiber.Ctx) error {
	lessonID, err := c.ParamsInt("id")
	if err != nil || lessonID <= 0 {
		return response.BadRequest(c, "Invalid lesson ID")
	}

	var req CompleteLessonRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return response.BadRequest(c, "Invalid request body")
		}
	}

	lesson, err := h.trialService.MarkLessonCompleted(c.Context(), uint(lessonID), req.Notes)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrTrialNotFound):
			return response.NotFound(c, "Lesson not found")
		case errors.Is(err, domain.ErrNotScheduled):
			return response.BadRequest(c, "Only scheduled lessons can be completed")
		default:
			return response.InternalServerError(c, "Failed to complete lesson")
		}
	}

	return response.Success(c, "Lesson marked completed", lesson)
}

// TrialStats returns trial funnel statistics
// @Summary Trial statistics
// @Description Get trial signup and conversion statistics
// @Tags Trial Admin
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Router /admin/trial-stats [get]
func (h *TrialHandler) TrialStats(c *fiber.Ctx) error {
	stats, err := h.trialService.Stats(c.Context())
	if err != nil {
		return response.InternalServerError(c, "Failed to get trial statistics")
	}

	return response.Success(c, "Trial statistics retrieved", stats)
}
