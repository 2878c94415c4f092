package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"checklistapi/internal/model"
	"checklistapi/internal/report"
	"checklistapi/internal/service"
	serviceMocks "checklistapi/internal/service/mocks"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const validBody = `{
  "id": null,
  "title": "Checklist Basel",
  "createdAt": "15-10-2026 08:30:05",
  "initialData": {"plate": "ABC-1234", "driver": "João", "inspector": "Maria", "odometer": "120000"},
  "verifications": [{"title": "Pneus", "status": "conforme", "notes": null}],
  "inspections": [{"title": "Foto Seção Frontal", "status": "na", "notes": null, "media": []}]
}`

func sampleRecord(id string) *model.Checklist {
	return &model.Checklist{
		ID:          id,
		Title:       "Checklist Basel",
		CreatedAt:   "15-10-2026 08:30:05",
		InitialData: model.InitialData{Plate: "ABC-1234", Driver: "João", Inspector: "Maria"},
		Verifications: []model.VerificationItem{
			{Title: "Pneus", Status: model.StatusConforme},
		},
		Inspections: []model.InspectionItem{
			{Title: "Foto Seção Frontal", Status: model.StatusNotApplicable, Media: []model.MediaAsset{}},
		},
	}
}

func decodeError(t *testing.T, resp *http.Response) errorPayload {
	t.Helper()
	var res errorPayload
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&res))
	return res
}

func TestHealthCheck(t *testing.T) {
	mockSvc := new(serviceMocks.MockChecklistService)
	app := fiber.New()
	app.Get("/health", HealthCheck(mockSvc))

	t.Run("healthy", func(t *testing.T) {
		mockSvc.On("Health", mock.Anything).Return(service.Health{OK: true, TableExists: true, TableName: "checklists"}).Once()

		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var body service.Health
		json.NewDecoder(resp.Body).Decode(&body)
		assert.True(t, body.OK)
		assert.Equal(t, "checklists", body.TableName)
	})

	t.Run("unhealthy still answers 200", func(t *testing.T) {
		mockSvc.On("Health", mock.Anything).Return(service.Health{TableName: "checklists", Message: "Tabela checklists não encontrada."}).Once()

		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var body map[string]any
		json.NewDecoder(resp.Body).Decode(&body)
		assert.Equal(t, false, body["ok"])
		assert.Equal(t, false, body["tableExists"])
	})
	mockSvc.AssertExpectations(t)
}

func TestLivenessProbe(t *testing.T) {
	app := fiber.New()
	app.Get("/healthz", LivenessProbe())

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	resp, _ := app.Test(req)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestListRecords(t *testing.T) {
	mockSvc := new(serviceMocks.MockChecklistService)
	app := fiber.New()
	app.Get("/records", ListRecords(mockSvc))

	t.Run("success", func(t *testing.T) {
		mockSvc.On("List", mock.Anything, "abc").Return([]model.Checklist{*sampleRecord("b"), *sampleRecord("a")}, nil).Once()

		req := httptest.NewRequest(http.MethodGet, "/records?q=abc", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var result []model.Checklist
		json.NewDecoder(resp.Body).Decode(&result)
		require.Len(t, result, 2)
		assert.Equal(t, "b", result[0].ID)
		mockSvc.AssertExpectations(t)
	})

	t.Run("empty", func(t *testing.T) {
		mockSvc.On("List", mock.Anything, "").Return([]model.Checklist{}, nil).Once()

		resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/records", nil))
		body, _ := io.ReadAll(resp.Body)
		assert.Equal(t, "[]", string(body))
	})

	t.Run("service error", func(t *testing.T) {
		mockSvc.On("List", mock.Anything, "").Return(nil, fmt.Errorf("%w: connection refused", service.ErrUnavailable)).Once()

		req := httptest.NewRequest(http.MethodGet, "/records", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
		res := decodeError(t, resp)
		assert.Equal(t, "INTERNAL_ERROR", res.Error.Code)
		assert.NotContains(t, res.Error.Message, "connection refused")
		mockSvc.AssertExpectations(t)
	})
}

func TestSaveRecord(t *testing.T) {
	mockSvc := new(serviceMocks.MockChecklistService)
	app := fiber.New()
	app.Post("/records", SaveRecord(mockSvc))

	post := func(body string) *http.Response {
		req := httptest.NewRequest(http.MethodPost, "/records", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		resp, _ := app.Test(req)
		return resp
	}

	t.Run("success", func(t *testing.T) {
		mockSvc.On("Save", mock.Anything, mock.MatchedBy(func(c *model.Checklist) bool {
			return c.ID == "" && c.InitialData.Plate == "ABC-1234" && c.Verifications[0].Status == model.StatusConforme
		})).Return(sampleRecord("new-id"), nil).Once()

		resp := post(validBody)

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		var result model.Checklist
		json.NewDecoder(resp.Body).Decode(&result)
		assert.Equal(t, "new-id", result.ID)
		mockSvc.AssertExpectations(t)
	})

	t.Run("schema violation", func(t *testing.T) {
		resp := post(`{"title": "x"}`)

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		res := decodeError(t, resp)
		assert.Equal(t, "INVALID_PAYLOAD", res.Error.Code)
		assert.Contains(t, res.Error.Message, "invalid checklist payload")
	})

	t.Run("malformed json", func(t *testing.T) {
		resp := post(`{"title":`)

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "INVALID_PAYLOAD", decodeError(t, resp).Error.Code)
	})

	t.Run("schema rejects unsafe id and non image content", func(t *testing.T) {
		slashed := strings.Replace(validBody, `"id": null`, `"id": "a/b"`, 1)
		resp := post(slashed)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Contains(t, decodeError(t, resp).Error.Message, "/id")

		html := strings.Replace(validBody, `"media": []`, `"media": [{"content": "data:text/html;base64,PHNjcmlwdD4="}]`, 1)
		resp = post(html)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Contains(t, decodeError(t, resp).Error.Message, "/inspections/0/media/0/content")
	})

	t.Run("rejected by service", func(t *testing.T) {
		mockSvc.On("Save", mock.Anything, mock.Anything).Return(nil, fmt.Errorf("%w: missing initialData.plate", service.ErrInvalidRecord)).Once()

		resp := post(validBody)

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "INVALID_PAYLOAD", decodeError(t, resp).Error.Code)
		mockSvc.AssertExpectations(t)
	})

	t.Run("service error", func(t *testing.T) {
		mockSvc.On("Save", mock.Anything, mock.Anything).Return(nil, errors.New("upsert failed")).Once()

		resp := post(validBody)

		assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
		mockSvc.AssertExpectations(t)
	})
}

func TestGetRecord(t *testing.T) {
	mockSvc := new(serviceMocks.MockChecklistService)
	app := fiber.New()
	app.Get("/records/:id", GetRecord(mockSvc))

	t.Run("success", func(t *testing.T) {
		mockSvc.On("Get", mock.Anything, "rec-1").Return(sampleRecord("rec-1"), nil).Once()

		req := httptest.NewRequest(http.MethodGet, "/records/rec-1", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var result model.Checklist
		json.NewDecoder(resp.Body).Decode(&result)
		assert.Equal(t, "rec-1", result.ID)
		mockSvc.AssertExpectations(t)
	})

	t.Run("not found", func(t *testing.T) {
		mockSvc.On("Get", mock.Anything, "missing").Return(nil, service.ErrNotFound).Once()

		req := httptest.NewRequest(http.MethodGet, "/records/missing", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		assert.Equal(t, "NOT_FOUND", decodeError(t, resp).Error.Code)
		mockSvc.AssertExpectations(t)
	})

	t.Run("invalid id", func(t *testing.T) {
		mockSvc.On("Get", mock.Anything, "a.b").Return(nil, service.ErrInvalidID).Once()

		req := httptest.NewRequest(http.MethodGet, "/records/a.b", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "INVALID_ID", decodeError(t, resp).Error.Code)
		mockSvc.AssertExpectations(t)
	})

	t.Run("service error", func(t *testing.T) {
		mockSvc.On("Get", mock.Anything, "rec-2").Return(nil, service.ErrUnavailable).Once()

		req := httptest.NewRequest(http.MethodGet, "/records/rec-2", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
		mockSvc.AssertExpectations(t)
	})
}

func TestDeleteRecord(t *testing.T) {
	mockSvc := new(serviceMocks.MockChecklistService)
	app := fiber.New()
	app.Delete("/records/:id", DeleteRecord(mockSvc))

	t.Run("success", func(t *testing.T) {
		mockSvc.On("Delete", mock.Anything, "rec-1").Return(nil).Once()

		req := httptest.NewRequest(http.MethodDelete, "/records/rec-1", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		var body map[string]bool
		json.NewDecoder(resp.Body).Decode(&body)
		assert.True(t, body["ok"])
		mockSvc.AssertExpectations(t)
	})

	t.Run("service error", func(t *testing.T) {
		mockSvc.On("Delete", mock.Anything, "rec-1").Return(service.ErrUnavailable).Once()

		req := httptest.NewRequest(http.MethodDelete, "/records/rec-1", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
		assert.Equal(t, "INTERNAL_ERROR", decodeError(t, resp).Error.Code)
		mockSvc.AssertExpectations(t)
	})
}

func TestExportReport(t *testing.T) {
	mockSvc := new(serviceMocks.MockChecklistService)
	app := fiber.New()
	app.Get("/records/:id/report", ExportReport(mockSvc, report.NewGenerator(nil)))

	for _, tc := range []struct {
		query    string
		filename string
	}{
		{"", "checklist-rec-1.pdf"},
		{"?mode=images", "checklist-rec-1-imagens.pdf"},
	} {
		t.Run("mode "+tc.query, func(t *testing.T) {
			mockSvc.On("Get", mock.Anything, "rec-1").Return(sampleRecord("rec-1"), nil).Once()

			req := httptest.NewRequest(http.MethodGet, "/records/rec-1/report"+tc.query, nil)
			resp, err := app.Test(req, -1)
			require.NoError(t, err)

			assert.Equal(t, http.StatusOK, resp.StatusCode)
			assert.Equal(t, "application/pdf", resp.Header.Get("Content-Type"))
			assert.Contains(t, resp.Header.Get("Content-Disposition"), tc.filename)
			assert.Equal(t, "1", resp.Header.Get("X-Report-Pages"))
			body, _ := io.ReadAll(resp.Body)
			assert.True(t, bytes.HasPrefix(body, []byte("%PDF-")))
		})
	}

	t.Run("bad mode", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/records/rec-1/report?mode=html", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "INVALID_MODE", decodeError(t, resp).Error.Code)
	})

	t.Run("not found", func(t *testing.T) {
		mockSvc.On("Get", mock.Anything, "missing").Return(nil, service.ErrNotFound).Once()

		req := httptest.NewRequest(http.MethodGet, "/records/missing/report", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})
	mockSvc.AssertExpectations(t)
}

func TestRouting(t *testing.T) {
	app := fiber.New(fiber.Config{
		ErrorHandler: ErrorHandler(),
	})

	mockSvc := new(serviceMocks.MockChecklistService)
	RegisterRoutes(app, mockSvc, nil, prometheus.NewRegistry())

	t.Run("not found route", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/non-existent", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		assert.Equal(t, "NOT_FOUND", decodeError(t, resp).Error.Code)
	})

	t.Run("method not allowed", func(t *testing.T) {
		// Health endpoint only allows GET
		req := httptest.NewRequest(http.MethodPost, "/health", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
		assert.Equal(t, "METHOD_NOT_ALLOWED", decodeError(t, resp).Error.Code)
	})

	t.Run("records routes are mounted", func(t *testing.T) {
		mockSvc.On("List", mock.Anything, "").Return([]model.Checklist{}, nil).Once()
		mockSvc.On("Get", mock.Anything, "rec-1").Return(sampleRecord("rec-1"), nil).Once()

		resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/records", nil))
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		resp, _ = app.Test(httptest.NewRequest(http.MethodGet, "/records/rec-1", nil))
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		mockSvc.AssertExpectations(t)
	})

	t.Run("metrics", func(t *testing.T) {
		resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/metrics", nil))
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})
}
