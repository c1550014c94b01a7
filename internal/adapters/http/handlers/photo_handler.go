package handlers

import (
	"errors"

	"github.com/Goldwhyit/almere-pickleball/internal/core/domain"
	"github.com/Goldwhyit/almere-pickleball/internal/core/services"
	"github.com/Goldwhyit/almere-pickleball/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// PhotoHandler handles photo gallery endpoints
type PhotoHandler struct {
	photoService *services.PhotoService
}

// NewPhotoHandler creates a new photo handler
func NewPhotoHandler(photoService *services.PhotoService) *PhotoHandler {
	return &PhotoHandler{
		photoService: photoService,
	}
}

// ListActive returns the public gallery
// @Summary Public photo gallery
// @Description List visible gallery photos in display order
// @Tags Photos
// @Produce json
// @Success 200 {object} response.Response
// @Router /photos [get]
func (h *PhotoHandler) ListActive(c *fiber.Ctx) error {
	photos, err := h.photoService.ListActive(c.Context())
	if err != nil {
		return response.InternalServerError(c, "Failed to load photos")
	}

	return response.Success(c, "Photos retrieved", fiber.Map{
		"photos": photos,
	})
}

// ListAll returns all gallery entries for the back office
// @Summary All gallery photos
// @Description List every gallery photo, visible or not
// @Tags Photos Admin
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Router /admin/photos [get]
func (h *PhotoHandler) ListAll(c *fiber.Ctx) error {
	photos, err := h.photoService.ListAll(c.Context())
	if err != nil {
		return response.InternalServerError(c, "Failed to load photos")
	}

	return response.Success(c, "Photos retrieved", fiber.Map{
		"photos": photos,
	})
}

// Create adds a gallery entry
// @Summary Create gallery photo
// @Description Add a photo at the end of the gallery
// @Tags Photos Admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body services.CreatePhotoInput true "Photo data"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Router /admin/photos [post]
func (h *PhotoHandler) Create(c *fiber.Ctx) error {
	var req services.CreatePhotoInput
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if err := validateStruct(&req); err != nil {
		return response.BadRequest(c, err.Error())
	}

	photo, err := h.photoService.Create(c.Context(), &req)
	if err != nil {
		return response.InternalServerError(c, "Failed to create photo")
	}

	return response.Created(c, "Photo created", photo)
}

// Update modifies a gallery entry
// @Summary Update gallery photo
// @Description Update a gallery photo's details
// @Tags Photos Admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Photo ID"
// @Param body body services.UpdatePhotoInput true "Fields to update"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /admin/photos/{id} [put]
func (h *PhotoHandler) Update(c *fiber.Ctx) error {
	photoID, err := c.ParamsInt("id")
	if err != nil || photoID <= 0 {
		return response.BadRequest(c, "Invalid photo ID")
	}

	var req services.UpdatePhotoInput
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if err := validateStruct(&req); err != nil {
		return response.BadRequest(c, err.Error())
	}

	photo, err := h.photoService.Update(c.Context(), uint(photoID), &req)
	if err != nil {
		if errors.Is(err, domain.ErrPhotoNotFound) {
			return response.NotFound(c, "Photo not found")
		}
		return response.InternalServerError(c, "Failed to update photo")
	}

	return response.Success(c, "Photo updated", photo)
}

// ToggleActive shows or hides a gallery entry
// @Summary Toggle photo visibility
// @Description Show or hide a gallery photo
// @Tags Photos Admin
// @Produce json
// @Security BearerAuth
// @Param id path int true "Photo ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /admin/photos/{id}/toggle [put]
func (h *PhotoHandler) ToggleActive(c *fiber.Ctx) error {
	photoID, err := c.ParamsInt("id")
	if err != nil || photoID <= 0 {
		return response.BadRequest(c, "Invalid photo ID")
	}

	photo, err := h.photoService.ToggleActive(c.Context(), uint(photoID))
	if err != nil {
		if errors.Is(err, domain.ErrPhotoNotFound) {
			return response.NotFound(c, "Photo not found")
		}
		return response.InternalServerError(c, "Failed to toggle photo")
	}

	return response.Success(c, "Photo visibility updated", photo)
}

// Delete removes a gallery entry
// @Summary Delete gallery photo
// @Description Delete a gallery photo
// @Tags Photos Admin
// @Produce json
// @Security BearerAuth
// @Param id path int true "Photo ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /admin/photos/{id} [delete]
func (h *PhotoHandler) Delete(c *fiber.Ctx) error {
	photoID, err := c.ParamsInt("id")
	if err != nil || photoID <= 0 {
		return response.BadRequest(c, "Invalid photo ID")
	}

	if err := h.photoService.Delete(c.Context(), uint(photoID)); err != nil {
		if errors.Is(err, domain.ErrPhotoNotFound) {
			return response.NotFound(c, "Photo not found")
		}
		return response.InternalServerError(c, "Failed to delete photo")
	}

	return response.Success(c, "Photo deleted", nil)
}

// Reorder rewrites the gallery display order
// @Summary Reorder gallery
// @Description Set the display order of the gallery photos
// @Tags Photos Admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body services.ReorderInput true "Photo IDs in display order"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Router /admin/photos/reorder [put]
func (h *PhotoHandler) Reorder(c *fiber.Ctx) error {
	var req services.ReorderInput
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if err := validateStruct(&req); err != nil {
		return response.BadRequest(c, err.Error())
	}

	if err := h.photoService.Reorder(c.Context(), &req); err != nil {
		return response.InternalServerError(c, "Failed to reorder photos")
	}

	return response.Success(c, "Gallery reordered", nil)
}

// Upload stores an image file and returns its public URL
// @Summary Upload photo file
// @Description Upload an image file for the gallery
// @Tags Photos Admin
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param file formData file true "Image file (jpg, png or webp, max 5 MB)"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Router /admin/photos/upload [post]
func (h *PhotoHandler) Upload(c *fiber.Ctx) error {
	file, err := c.FormFile("file")
	if err != nil {
		return response.BadRequest(c, "No file uploaded")
	}

	url, err := h.photoService.Upload(file)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrImageTooLarge):
			return response.BadRequest(c, "Image must be 5 MB or smaller")
		case errors.Is(err, domain.ErrUnsupportedImage):
			return response.BadRequest(c, "Only jpg, png and webp images are supported")
		default:
			return response.InternalServerError(c, "Failed to upload image")
		}
	}

	return response.Created(c, "Image uploaded", fiber.Map{
		"url": url,
	})
}
