package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"

	"checklistapi/internal/model"
	"checklistapi/internal/report"
	"checklistapi/internal/service"
	"checklistapi/internal/validation"
)

// HealthCheck reports database and bucket state. It always answers 200 so the body can be shown.
//
// @Summary Backend diagnostic
// @Tags health
// @Produce json
// @Success 200 {object} service.Health
// @Router /health [get]
func HealthCheck(svc service.ChecklistService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), 5*time.Second)
		defer cancel()
		return c.Status(fiber.StatusOK).JSON(svc.Health(ctx))
	}
}

// LivenessProbe is the plain process liveness check.
func LivenessProbe() fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	}
}

// ListRecords
//
// @Summary List checklists, newest first
// @Tags records
// @Produce json
// @Param q query string false "search title, driver, inspector or plate"
// @Success 200 {array} model.Checklist
// @Failure 500 {object} errorPayload
// @Router /records [get]
func ListRecords(svc service.ChecklistService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		res, err := svc.List(c.UserContext(), c.Query("q"))
		if err != nil {
			return serviceError(c, err)
		}
		return c.JSON(res)
	}
}

// SaveRecord validates the body against the checklist schema, then upserts it.
//
// @Summary Create or replace a checklist
// @Tags records
// @Accept json
// @Produce json
// @Param record body model.Checklist true "checklist; inline photos as data URLs"
// @Success 200 {object} model.Checklist
// @Failure 400 {object} errorPayload
// @Failure 500 {object} errorPayload
// @Router /records [post]
func SaveRecord(svc service.ChecklistService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		body := c.Body()
		if err := validation.Checklist(body); err != nil {
			if errors.Is(err, validation.ErrInvalidPayload) {
				return writeError(c, fiber.StatusBadRequest, "INVALID_PAYLOAD", err.Error())
			}
			return serviceError(c, err)
		}
		var rec model.Checklist
		if err := json.Unmarshal(body, &rec); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_PAYLOAD", fmt.Sprintf("%s: %v", validation.ErrInvalidPayload, err))
		}

		saved, err := svc.Save(c.UserContext(), &rec)
		if err != nil {
			return serviceError(c, err)
		}
		return c.Status(fiber.StatusOK).JSON(saved)
	}
}

// GetRecord
//
// @Summary Fetch one checklist
// @Tags records
// @Produce json
// @Param id path string true "checklist id"
// @Success 200 {object} model.Checklist
// @Failure 400 {object} errorPayload
// @Failure 404 {object} errorPayload
// @Router /records/{id} [get]
func GetRecord(svc service.ChecklistService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		rec, err := svc.Get(c.UserContext(), c.Params("id"))
		if err != nil {
			return serviceError(c, err)
		}
		return c.JSON(rec)
	}
}

// DeleteRecord removes the checklist and its photos. Unknown ids succeed.
//
// @Summary Delete a checklist
// @Tags records
// @Produce json
// @Param id path string true "checklist id"
// @Success 200 {object} map[string]bool
// @Failure 400 {object} errorPayload
// @Failure 500 {object} errorPayload
// @Router /records/{id} [delete]
func DeleteRecord(svc service.ChecklistService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := svc.Delete(c.UserContext(), c.Params("id")); err != nil {
			return serviceError(c, err)
		}
		return c.JSON(fiber.Map{"ok": true})
	}
}

// ExportReport renders the checklist as a PDF download.
//
// @Summary Export a checklist as PDF
// @Tags records
// @Produce application/pdf
// @Param id path string true "checklist id"
// @Param mode query string false "text (default) or images"
// @Success 200 {file} file
// @Failure 400 {object} errorPayload
// @Failure 404 {object} errorPayload
// @Router /records/{id}/report [get]
func ExportReport(svc service.ChecklistService, reports *report.Generator) fiber.Handler {
	return func(c *fiber.Ctx) error {
		mode, err := report.ParseMode(c.Query("mode"))
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_MODE", "mode must be text or images")
		}
		rec, err := svc.Get(c.UserContext(), c.Params("id"))
		if err != nil {
			return serviceError(c, err)
		}

		var buf bytes.Buffer
		sum, err := reports.Render(c.UserContext(), rec, mode, &buf)
		if err != nil {
			return serviceError(c, fmt.Errorf("render report: %w", err))
		}

		c.Set(fiber.HeaderContentType, "application/pdf")
		c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="%s"`, report.Filename(rec, mode)))
		c.Set("X-Report-Pages", fmt.Sprint(sum.Pages))
		c.Set("X-Report-Skipped-Images", fmt.Sprint(sum.FailedImages+sum.SkippedImages))
		return c.Send(buf.Bytes())
	}
}
