package handlers

import (
	"errors"
	"strings"

	"github.com/Goldwhyit/almere-pickleball/internal/core/domain"
	"github.com/Goldwhyit/almere-pickleball/internal/core/services"
	"github.com/Goldwhyit/almere-pickleball/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// MembershipHandler handles membership endpoints
type MembershipHandler struct {
	membershipService *services.MembershipService
	authHandler       *AuthHandler
}

// NewMembershipHandler creates a new membership handler
func NewMembershipHandler(membershipService *services.MembershipService, authHandler *AuthHandler) *MembershipHandler {
	return &MembershipHandler{
		membershipService: membershipService,
		authHandler:       authHandler,
	}
}

// Types returns the published membership options
// @Summary Membership types
// @Description List all membership options with pricing
// @Tags Membership
// @Produce json
// @Success 200 {object} response.Response
// @Router /memberships/types [get]
func (h *MembershipHandler) Types(c *fiber.Ctx) error {
	return response.Success(c, "Membership types retrieved", fiber.Map{
		"types": h.membershipService.MembershipTypes(),
	})
}

// Apply handles the public membership application form
// @Summary Apply for membership
// @Description Create a member account with the chosen membership type
// @Tags Membership
// @Accept json
// @Produce json
// @Param body body services.ApplyInput true "Application form"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /memberships/apply [post]
func (h *MembershipHandler) Apply(c *fiber.Ctx) error {
	var req services.ApplyInput
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if err := validateStruct(&req); err != nil {
		return response.BadRequest(c, err.Error())
	}
	req.Email = strings.TrimSpace(strings.ToLower(req.Email))
	req.FirstName = strings.TrimSpace(req.FirstName)
	req.LastName = strings.TrimSpace(req.LastName)

	result, err := h.membershipService.Apply(c.Context(), &req)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrEmailExists):
			return response.Conflict(c, "Dit e-mailadres is al geregistreerd")
		case errors.Is(err, domain.ErrWeakPassword):
			return response.BadRequest(c, "Password must be at least 8 characters")
		default:
			return response.InternalServerError(c, "Failed to create membership")
		}
	}

	h.authHandler.setAuthCookies(c, result.AccessToken, result.RefreshToken)

	return response.Created(c, "Welkom bij Almere Pickleball!", result)
}

// PaymentStatus returns the member's payment state
// @Summary Payment status
// @Description Get the current member's payment status and recent payments
// @Tags Membership
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Router /memberships/payment-status [get]
func (h *MembershipHandler) PaymentStatus(c *fiber.Ctx) error {
	userID, ok := c.Locals("userID").(uint)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	status, err := h.membershipService.PaymentStatus(c.Context(), userID)
	if err != nil {
		if errors.Is(err, domain.ErrMemberNotFound) {
			return response.NotFound(c, "Member not found")
		}
		return response.InternalServerError(c, "Failed to get payment status")
	}

	return response.Success(c, "Payment status retrieved", status)
}

// CreateSessionPayment creates a payment for a single session
// @Summary Create session payment
// @Description Create a payment record for a pay-per-session member
// @Tags Membership
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body services.SessionPaymentInput true "Payment details"
// @Success 201 {object} response.Response
// @Failure 403 {object} response.Response
// @Router /memberships/session-payment [post]
func (h *MembershipHandler) CreateSessionPayment(c *fiber.Ctx) error {
	userID, ok := c.Locals("userID").(uint)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	var req services.SessionPaymentInput
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if err := validateStruct(&req); err != nil {
		return response.BadRequest(c, err.Error())
	}

	payment, err := h.membershipService.CreateSessionPayment(c.Context(), userID, &req)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrMemberNotFound):
			return response.NotFound(c, "Member not found")
		case errors.Is(err, domain.ErrNotPerSession):
			return response.Forbidden(c, "Alleen voor leden die per sessie betalen")
		default:
			return response.InternalServerError(c, "Failed to create payment")
		}
	}

	return response.Created(c, "Payment created", payment)
}

// CheckMonthlyPayment reports whether the month still needs paying
// @Summary Check monthly payment
// @Description Check whether the current month still needs to be paid
// @Tags Membership
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Router /memberships/monthly-payment/check [get]
func (h *MembershipHandler) CheckMonthlyPayment(c *fiber.Ctx) error {
	userID, ok := c.Locals("userID").(uint)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	check, err := h.membershipService.CheckMonthlyPayment(c.Context(), userID)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrMemberNotFound):
			return response.NotFound(c, "Member not found")
		case errors.Is(err, domain.ErrNotMonthlyMember):
			return response.Forbidden(c, "Alleen voor maandleden")
		default:
			return response.InternalServerError(c, "Failed to check payment")
		}
	}

	return response.Success(c, "Payment check completed", check)
}

// ConfirmMonthlyPayment records the monthly payment as paid
// @Summary Confirm monthly payment
// @Description Mark the current month as paid for a monthly member
// @Tags Membership
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Router /memberships/monthly-payment/confirm [post]
func (h *MembershipHandler) ConfirmMonthlyPayment(c *fiber.Ctx) error {
	userID, ok := c.Locals("userID").(uint)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	member, err := h.membershipService.ConfirmMonthlyPayment(c.Context(), userID)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrMemberNotFound):
			return response.NotFound(c, "Member not found")
		case errors.Is(err, domain.ErrNotMonthlyMember):
			return response.Forbidden(c, "Alleen voor maandleden")
		default:
			return response.InternalServerError(c, "Failed to confirm payment")
		}
	}

	return response.Success(c, "Betaling bevestigd", member)
}
