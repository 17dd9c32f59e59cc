package handlers

import (
	"errors"

	"github.com/ahmetcoskunkizilkaya/urbanai-backend/internal/auth"
	"github.com/ahmetcoskunkizilkaya/urbanai-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/urbanai-backend/internal/engine"
	"github.com/ahmetcoskunkizilkaya/urbanai-backend/internal/services"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type ReportHandler struct {
	reportService *services.ReportService
	coordinator   *engine.Coordinator
}

func NewReportHandler(reportService *services.ReportService, coordinator *engine.Coordinator) *ReportHandler {
	return &ReportHandler{reportService: reportService, coordinator: coordinator}
}

func (h *ReportHandler) Create(c *fiber.Ctx) error {
	userID, err := auth.GetUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
			Error: true, Message: "Unauthorized",
		})
	}

	var req services.CreateReportRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid request body",
		})
	}

	report, err := h.reportService.Create(c.Context(), userID, &req)
	if err != nil {
		switch {
		case isValidationError(err):
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
				Error: true, Message: err.Error(),
			})
		case errors.Is(err, services.ErrOutsideRegion):
			return c.Status(fiber.StatusUnprocessableEntity).JSON(dto.ErrorResponse{
				Error: true, Message: err.Error(),
			})
		case errors.Is(err, services.ErrClassifierUnavailable),
			errors.Is(err, services.ErrGeocoderUnavailable),
			errors.Is(err, services.ErrClassificationFailed),
			errors.Is(err, services.ErrGeocodingFailed):
			return c.Status(fiber.StatusServiceUnavailable).JSON(dto.ErrorResponse{
				Error: true, Message: "Report processing is temporarily unavailable",
			})
		case errors.Is(err, services.ErrProfileNotFound):
			return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{
				Error: true, Message: "Create a profile before submitting reports",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to create report",
		})
	}

	return c.Status(fiber.StatusCreated).JSON(dto.ToReportResponse(report))
}

func (h *ReportHandler) Get(c *fiber.Ctx) error {
	reportID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid report ID",
		})
	}

	report, err := h.reportService.Get(c.Context(), reportID)
	if err != nil {
		if errors.Is(err, services.ErrReportNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
				Error: true, Message: "Report not found",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to fetch report",
		})
	}

	// Attach the report's group from the latest snapshot, when available.
	resp := dto.ReportDetailResponse{Report: dto.ToReportResponse(report)}
	if snap := h.coordinator.Latest(); snap != nil {
		key := engine.GroupKey(report.Address, report.Category)
		for i := range snap.Groups {
			if snap.Groups[i].Key == key {
				group := dto.ToGroupResponse(&snap.Groups[i])
				resp.Group = &group
				break
			}
		}
	}
	return c.JSON(resp)
}

func (h *ReportHandler) ToggleUpvote(c *fiber.Ctx) error {
	userID, err := auth.GetUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
			Error: true, Message: "Unauthorized",
		})
	}

	reportID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid report ID",
		})
	}

	report, upvoted, err := h.reportService.ToggleUpvote(c.Context(), reportID, userID)
	if err != nil {
		if errors.Is(err, services.ErrReportNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
				Error: true, Message: "Report not found",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to toggle upvote",
		})
	}

	return c.JSON(dto.UpvoteResponse{
		Report:  dto.ToReportResponse(report),
		Upvoted: upvoted,
	})
}

func (h *ReportHandler) Delete(c *fiber.Ctx) error {
	userID, err := auth.GetUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
			Error: true, Message: "Unauthorized",
		})
	}

	reportID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid report ID",
		})
	}

	if err := h.reportService.Delete(c.Context(), reportID, userID, isAdminRequest(c)); err != nil {
		switch {
		case errors.Is(err, services.ErrReportNotFound):
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
				Error: true, Message: "Report not found",
			})
		case errors.Is(err, services.ErrNotOwner):
			return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{
				Error: true, Message: err.Error(),
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to delete report",
		})
	}

	return c.JSON(dto.MessageResponse{Message: "Report deleted"})
}

// CycleStatus advances a single report's status; admin only.
func (h *ReportHandler) CycleStatus(c *fiber.Ctx) error {
	reportID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid report ID",
		})
	}

	report, err := h.reportService.CycleStatus(c.Context(), reportID)
	if err != nil {
		if errors.Is(err, services.ErrReportNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
				Error: true, Message: "Report not found",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to update status",
		})
	}

	return c.JSON(dto.ToReportResponse(report))
}

// CycleGroupStatus advances every report sharing the anchor's group key;
// admin only.
func (h *ReportHandler) CycleGroupStatus(c *fiber.Ctx) error {
	reportID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid report ID",
		})
	}

	updated, status, err := h.reportService.CycleGroupStatus(c.Context(), reportID)
	if err != nil {
		if errors.Is(err, services.ErrReportNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
				Error: true, Message: "Report not found",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to update group status",
		})
	}

	return c.JSON(dto.GroupStatusResponse{Updated: updated, Status: status})
}

// DeleteGroup removes every report sharing the anchor's group key; admin only.
func (h *ReportHandler) DeleteGroup(c *fiber.Ctx) error {
	reportID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid report ID",
		})
	}

	deleted, err := h.reportService.DeleteGroup(c.Context(), reportID)
	if err != nil {
		if errors.Is(err, services.ErrReportNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
				Error: true, Message: "Report not found",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to delete group",
		})
	}

	return c.JSON(dto.GroupDeleteResponse{Deleted: deleted})
}

// isAdminRequest is set by the admin middleware on routes where it ran.
func isAdminRequest(c *fiber.Ctx) bool {
	isAdmin, _ := c.Locals("is_admin").(bool)
	return isAdmin
}

func isValidationError(err error) bool {
	return errors.Is(err, services.ErrTitleRequired) ||
		errors.Is(err, services.ErrTitleTooLong) ||
		errors.Is(err, services.ErrAddressRequired) ||
		errors.Is(err, services.ErrAddressTooLong) ||
		errors.Is(err, services.ErrDescriptionTooLong) ||
		errors.Is(err, services.ErrTooManyImages)
}
