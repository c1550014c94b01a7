package handlers

import (
	"errors"

	"github.com/Goldwhyit/almere-pickleball/internal/core/domain"
	"github.com/Goldwhyit/almere-pickleball/internal/core/services"
	"github.com/Goldwhyit/almere-pickleball/internal/pkg/pagination"
	"github.com/Goldwhyit/almere-pickleball/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// AdminHandler handles back office endpoints
type AdminHandler struct {
	adminService *services.AdminService
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(adminService *services.AdminService) *AdminHandler {
	return &AdminHandler{
		adminService: adminService,
	}
}

// SetStatusRequest approves or resets a membership application
type SetStatusRequest struct {
	Approved bool `json:"approved"`
}

// ListMembers lists members for the back office
// @Summary List members
// @Description List all members with membership and payment status
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Router /admin/members [get]
func (h *AdminHandler) ListMembers(c *fiber.Ctx) error {
	limit, offset := pagination.GetLimitOffset(c)

	members, total, err := h.adminService.ListMembers(c.Context(), offset, limit)
	if err != nil {
		return response.InternalServerError(c, "Failed to list members")
	}

	return response.Success(c, "Members retrieved", fiber.Map{
		"members": members,
		"total":   total,
	})
}

// UpdateMember applies a partial update to a member
// @Summary Update member
// @Description Update member details from the back office
// @Tags Admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Member ID"
// @Param body body services.UpdateMemberInput true "Fields to update"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /admin/members/{id} [put]
func (h *AdminHandler) UpdateMember(c *fiber.Ctx) error {
	memberID, err := c.ParamsInt("id")
	if err != nil || memberID <= 0 {
		return response.BadRequest(c, "Invalid member ID")
	}

	var req services.UpdateMemberInput
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if err := validateStruct(&req); err != nil {
		return response.BadRequest(c, err.Error())
	}

	member, err := h.adminService.UpdateMember(c.Context(), uint(memberID), &req)
	if err != nil {
		if errors.Is(err, domain.ErrMemberNotFound) {
			return response.NotFound(c, "Member not found")
		}
		return response.InternalServerError(c, "Failed to update member")
	}

	return response.Success(c, "Member updated", member)
}

// SetMembershipStatus approves or resets a membership application
// @Summary Set membership status
// @Description Approve a membership or reset it to pending
// @Tags Admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Member ID"
// @Param body body SetStatusRequest true "Approval flag"
// @Success 200 {object} response.Response
// @Failure 403 {object} response.Response
// @Router /admin/members/{id}/status [put]
func (h *AdminHandler) SetMembershipStatus(c *fiber.Ctx) error {
	actingUserID, _ := c.Locals("userID").(uint)

	memberID, err := c.ParamsInt("id")
	if err != nil || memberID <= 0 {
		return response.BadRequest(c, "Invalid member ID")
	}

	var req SetStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	member, err := h.adminService.SetMembershipStatus(c.Context(), uint(memberID), actingUserID, req.Approved)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrMemberNotFound):
			return response.NotFound(c, "Member not found")
		case errors.Is(err, domain.ErrCannotDowngradeSelf):
			return response.Forbidden(c, "You cannot downgrade your own account")
		default:
			return response.InternalServerError(c, "Failed to update membership status")
		}
	}

	return response.Success(c, "Membership status updated", member)
}

// ToggleAdmin flips a member's admin role
// @Summary Toggle admin role
// @Description Give or remove the admin role for a member
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Param id path int true "Member ID"
// @Success 200 {object} response.Response
// @Failure 403 {object} response.Response
// @Router /admin/members/{id}/toggle-admin [put]
func (h *AdminHandler) ToggleAdmin(c *fiber.Ctx) error {
	actingUserID, _ := c.Locals("userID").(uint)

	memberID, err := c.ParamsInt("id")
	if err != nil || memberID <= 0 {
		return response.BadRequest(c, "Invalid member ID")
	}

	member, err := h.adminService.ToggleAdmin(c.Context(), uint(memberID), actingUserID)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrMemberNotFound):
			return response.NotFound(c, "Member not found")
		case errors.Is(err, domain.ErrCannotDowngradeSelf):
			return response.Forbidden(c, "You cannot remove your own admin role")
		default:
			return response.InternalServerError(c, "Failed to toggle admin role")
		}
	}

	return response.Success(c, "Admin role updated", member)
}

// MarkPaid marks a member's subscription paid
// @Summary Mark member paid
// @Description Mark a member's subscription as paid
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Param id path int true "Member ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /admin/members/{id}/mark-paid [put]
func (h *AdminHandler) MarkPaid(c *fiber.Ctx) error {
	memberID, err := c.ParamsInt("id")
	if err != nil || memberID <= 0 {
		return response.BadRequest(c, "Invalid member ID")
	}

	member, err := h.adminService.MarkPaid(c.Context(), uint(memberID))
	if err != nil {
		if errors.Is(err, domain.ErrMemberNotFound) {
			return response.NotFound(c, "Member not found")
		}
		return response.InternalServerError(c, "Failed to mark member paid")
	}

	return response.Success(c, "Betaling geregistreerd", member)
}

// DeleteMember removes a member and their account
// @Summary Delete member
// @Description Delete a member and their login account
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Param id path int true "Member ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /admin/members/{id} [delete]
func (h *AdminHandler) DeleteMember(c *fiber.Ctx) error {
	memberID, err := c.ParamsInt("id")
	if err != nil || memberID <= 0 {
		return response.BadRequest(c, "Invalid member ID")
	}

	if err := h.adminService.DeleteMember(c.Context(), uint(memberID)); err != nil {
		if errors.Is(err, domain.ErrMemberNotFound) {
			return response.NotFound(c, "Member not found")
		}
		return response.InternalServerError(c, "Failed to delete member")
	}

	return response.Success(c, "Member deleted", nil)
}

// Overview returns the admin dashboard
// @Summary Dashboard overview
// @Description Get the admin dashboard with counts and upcoming play days
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Router /admin/dashboard [get]
func (h *AdminHandler) Overview(c *fiber.Ctx) error {
	adminUserID, _ := c.Locals("userID").(uint)

	overview, err := h.adminService.Overview(c.Context(), adminUserID)
	if err != nil {
		return response.InternalServerError(c, "Failed to load dashboard")
	}

	return response.Success(c, "Dashboard retrieved", overview)
}

// TrainingPlanning returns the per-session booking overview
// @Summary Training planning
// @Description Get all bookings grouped per training session
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Router /admin/trainings [get]
func (h *AdminHandler) TrainingPlanning(c *fiber.Ctx) error {
	sessions, total, err := h.adminService.TrainingPlanning(c.Context())
	if err != nil {
		return response.InternalServerError(c, "Failed to load training planning")
	}

	return response.Success(c, "Training planning retrieved", fiber.Map{
		"sessions": sessions,
		"total":    total,
	})
}

// Payments returns the contribution overview
// @Summary Payments overview
// @Description Get paid and unpaid members grouped per membership type
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Router /admin/payments [get]
func (h *AdminHandler) Payments(c *fiber.Ctx) error {
	overview, err := h.adminService.Payments(c.Context())
	if err != nil {
		return response.InternalServerError(c, "Failed to load payments overview")
	}

	return response.Success(c, "Payments overview retrieved", overview)
}

// PaymentHistory lists raw payment rows
// @Summary Payment history
// @Description List payment records, optionally filtered by status
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Param status query string false "Payment status filter"
// @Success 200 {object} response.Response
// @Router /admin/payments/history [get]
func (h *AdminHandler) PaymentHistory(c *fiber.Ctx) error {
	limit, offset := pagination.GetLimitOffset(c)
	status := c.Query("status")

	payments, total, err := h.adminService.PaymentHistory(c.Context(), status, offset, limit)
	if err != nil {
		return response.InternalServerError(c, "Failed to load payment history")
	}

	return response.Success(c, "Payment history retrieved", fiber.Map{
		"payments": payments,
		"total":    total,
	})
}

// Stats returns membership KPIs
// @Summary Dashboard statistics
// @Description Get membership and payment statistics
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Router /admin/stats [get]
func (h *AdminHandler) Stats(c *fiber.Ctx) error {
	stats, err := h.adminService.Stats(c.Context())
	if err != nil {
		return response.InternalServerError(c, "Failed to load statistics")
	}

	return response.Success(c, "Statistics retrieved", stats)
}
