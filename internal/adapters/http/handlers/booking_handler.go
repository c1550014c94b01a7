package handlers

import (
	"errors"

	"github.com/Goldwhyit/almere-pickleball/internal/core/domain"
	"github.com/Goldwhyit/almere-pickleball/internal/core/services"
	"github.com/Goldwhyit/almere-pickleball/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// BookingHandler handles training session booking endpoints
type BookingHandler struct {
	bookingService *services.BookingService
}

// NewBookingHandler creates a new booking handler
func NewBookingHandler(bookingService *services.BookingService) *BookingHandler {
	return &BookingHandler{
		bookingService: bookingService,
	}
}

// AvailableSlots returns upcoming bookable training sessions
// @Summary Available training slots
// @Description List open training sessions for the next 8 weeks
// @Tags Booking
// @Produce json
// @Success 200 {object} response.Response
// @Router /trainings/available [get]
func (h *BookingHandler) AvailableSlots(c *fiber.Ctx) error {
	slots, err := h.bookingService.AvailableSlots(c.Context())
	if err != nil {
		return response.InternalServerError(c, "Failed to load available slots")
	}

	return response.Success(c, "Available slots retrieved", fiber.Map{
		"slots": slots,
	})
}

// Register signs the current member up for a training session
// @Summary Register for training
// @Description Register the current member for a training session
// @Tags Booking
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body services.BookTrainingInput true "Session to register for"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /trainings/register [post]
func (h *BookingHandler) Register(c *fiber.Ctx) error {
	userID, ok := c.Locals("userID").(uint)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	var req services.BookTrainingInput
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if err := validateStruct(&req); err != nil {
		return response.BadRequest(c, err.Error())
	}

	result, err := h.bookingService.RegisterForTraining(c.Context(), userID, &req)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrMemberNotFound):
			return response.NotFound(c, "Member not found")
		case errors.Is(err, domain.ErrPunchCardExcluded):
			return response.Forbidden(c, "Boek je training met je strippenkaart")
		case errors.Is(err, domain.ErrAlreadyRegistered):
			return response.Conflict(c, "Je bent al ingeschreven voor deze training")
		case errors.Is(err, domain.ErrTrainingFull):
			return response.Conflict(c, "Deze training is vol")
		case errors.Is(err, domain.ErrDateInPast):
			return response.BadRequest(c, "Training date cannot be in the past")
		default:
			return response.InternalServerError(c, "Failed to register for training")
		}
	}

	data := fiber.Map{
		"registration": result.Registration,
	}
	if result.Credit != nil {
		data["credit"] = *result.Credit
	}

	return response.Created(c, "Ingeschreven voor training", data)
}

// CancelRegistration removes a training registration
// @Summary Cancel training registration
// @Description Cancel a registration, allowed until 4 hours before start
// @Tags Booking
// @Produce json
// @Security BearerAuth
// @Param id path int true "Registration ID"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /trainings/register/{id} [delete]
func (h *BookingHandler) CancelRegistration(c *fiber.Ctx) error {
	userID, ok := c.Locals("userID").(uint)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	registrationID, err := c.ParamsInt("id")
	if err != nil || registrationID <= 0 {
		return response.BadRequest(c, "Invalid registration ID")
	}

	result, err := h.bookingService.CancelRegistration(c.Context(), userID, uint(registrationID))
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrRegistrationGone):
			return response.NotFound(c, "Registration not found")
		case errors.Is(err, domain.ErrNotOwner):
			return response.Forbidden(c, "You can only cancel your own registrations")
		case errors.Is(err, domain.ErrCancelTooLate):
			return response.BadRequest(c, "Uitschrijven kan alleen tot 4 uur voor aanvang")
		default:
			return response.InternalServerError(c, "Failed to cancel registration")
		}
	}

	data := fiber.Map{}
	if result != nil && result.Credit != nil {
		data["credit"] = *result.Credit
	}

	return response.Success(c, "Succesvol uitgeschreven", data)
}

// MyRegistrations lists the current member's upcoming registrations
// @Summary My training registrations
// @Description List the current member's upcoming training registrations
// @Tags Booking
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Router /trainings/my-registrations [get]
func (h *BookingHandler) MyRegistrations(c *fiber.Ctx) error {
	userID, ok := c.Locals("userID").(uint)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	registrations, err := h.bookingService.MyRegistrations(c.Context(), userID)
	if err != nil {
		return response.InternalServerError(c, "Failed to load registrations")
	}

	return response.Success(c, "Registrations retrieved", fiber.Map{
		"registrations": registrations,
	})
}

// BookPunchSession books a session on the punch card
// @Summary Book with punch card
// @Description Book a training session using one punch
// @Tags Booking
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body services.BookTrainingInput true "Session to book"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /trainings/punch [post]
func (h *BookingHandler) BookPunchSession(c *fiber.Ctx) error {
	userID, ok := c.Locals("userID").(uint)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	var req services.BookTrainingInput
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if err := validateStruct(&req); err != nil {
		return response.BadRequest(c, err.Error())
	}

	result, err := h.bookingService.BookPunchSession(c.Context(), userID, &req)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrMemberNotFound):
			return response.NotFound(c, "Member not found")
		case errors.Is(err, domain.ErrPunchCardOnly):
			return response.Forbidden(c, "Alleen leden met een strippenkaart kunnen hier boeken")
		case errors.Is(err, domain.ErrNoPunchesLeft):
			return response.BadRequest(c, "Je strippenkaart is leeg")
		case errors.Is(err, domain.ErrTrainingFull):
			return response.Conflict(c, "Deze training is vol")
		case errors.Is(err, domain.ErrDateInPast):
			return response.BadRequest(c, "Training date cannot be in the past")
		default:
			return response.InternalServerError(c, "Failed to book session")
		}
	}

	return response.Created(c, "Training geboekt", fiber.Map{
		"lesson":           result.Lesson,
		"punch_card_count": result.PunchCardCount,
	})
}

// CancelPunchSession cancels a punch card booking and restores the punch
// @Summary Cancel punch card booking
// @Description Cancel a punch card booking, allowed until 4 hours before start
// @Tags Booking
// @Produce json
// @Security BearerAuth
// @Param id path int true "Booking ID"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /trainings/punch/{id} [delete]
func (h *BookingHandler) CancelPunchSession(c *fiber.Ctx) error {
	userID, ok := c.Locals("userID").(uint)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	lessonID, err := c.ParamsInt("id")
	if err != nil || lessonID <= 0 {
		return response.BadRequest(c, "Invalid booking ID")
	}

	result, err := h.bookingService.CancelPunchSession(c.Context(), userID, uint(lessonID))
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrTrialNotFound):
			return response.NotFound(c, "Booking not found")
		case errors.Is(err, domain.ErrNotOwner):
			return response.Forbidden(c, "You can only cancel your own bookings")
		case errors.Is(err, domain.ErrNotScheduled):
			return response.BadRequest(c, "Only scheduled bookings can be cancelled")
		case errors.Is(err, domain.ErrCancelTooLate):
			return response.BadRequest(c, "Uitschrijven kan alleen tot 4 uur voor aanvang")
		default:
			return response.InternalServerError(c, "Failed to cancel booking")
		}
	}

	return response.Success(c, "Succesvol uitgeschreven", fiber.Map{
		"punch_card_count": result.PunchCardCount,
	})
}

// MyBookings lists the current member's punch card bookings
// @Summary My punch card bookings
// @Description List the current member's scheduled punch card bookings
// @Tags Booking
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Router /trainings/my-bookings [get]
func (h *BookingHandler) MyBookings(c *fiber.Ctx) error {
	userID, ok := c.Locals("userID").(uint)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	bookings, err := h.bookingService.MyBookings(c.Context(), userID)
	if err != nil {
		return response.InternalServerError(c, "Failed to load bookings")
	}

	return response.Success(c, "Bookings retrieved", fiber.Map{
		"bookings": bookings,
	})
}
