package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"

	"checklistapi/internal/http/middleware"
	"checklistapi/internal/report"
	"checklistapi/internal/service"
)

// RegisterRoutes attaches the checklist API to app. A nil gatherer leaves /metrics unmounted.
func RegisterRoutes(app *fiber.App, svc service.ChecklistService, reports *report.Generator, gatherer prometheus.Gatherer) {
	if reports == nil {
		reports = report.NewGenerator(nil)
	}
	app.Get("/health", HealthCheck(svc))
	app.Get("/healthz", LivenessProbe())
	if gatherer != nil {
		app.Get("/metrics", middleware.MetricsHandler(gatherer))
	}

	records := app.Group("/records")
	records.Get("/", ListRecords(svc))
	records.Post("/", SaveRecord(svc))
	records.Get("/:id", GetRecord(svc))
	records.Delete("/:id", DeleteRecord(svc))
	records.Get("/:id/report", ExportReport(svc, reports))
}
