package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"form-builder-api/internal/domain"
	"form-builder-api/internal/middleware"
	"form-builder-api/internal/repository"
	"form-builder-api/internal/service"
)

// setupIntegrationTestDB creates an in-memory SQLite database for integration testing
func setupIntegrationTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		DisableForeignKeyConstraintWhenMigrating: true,
	})
	require.NoError(t, err, "Failed to connect to test database")

	// Register callback to generate UUIDs for SQLite (since it doesn't support gen_random_uuid())
	db.Callback().Create().Before("gorm:create").Register("generate_uuid", func(db *gorm.DB) {
		if db.Statement.Schema == nil {
			return
		}
		for _, field := range db.Statement.Schema.PrimaryFields {
			if field.DataType != "uuid" {
				continue
			}
			// Nested association creates insert a slice of models at once
			switch db.Statement.ReflectValue.Kind() {
			case reflect.Slice, reflect.Array:
				for i := 0; i < db.Statement.ReflectValue.Len(); i++ {
					rv := db.Statement.ReflectValue.Index(i)
					if field.ReflectValueOf(db.Statement.Context, rv).IsZero() {
						field.Set(db.Statement.Context, rv, uuid.New())
					}
				}
			default:
				if field.ReflectValueOf(db.Statement.Context, db.Statement.ReflectValue).IsZero() {
					field.Set(db.Statement.Context, db.Statement.ReflectValue, uuid.New())
				}
			}
		}
	})

	// Create tables manually for SQLite compatibility
	// SQLite doesn't support UUID type or gen_random_uuid()
	err = db.Exec(`
		CREATE TABLE users (
			id TEXT PRIMARY KEY,
			created_at DATETIME NOT NULL,
			updated_at DATETIME NOT NULL,
			deleted_at DATETIME,
			name TEXT NOT NULL,
			email TEXT NOT NULL UNIQUE,
			password_hash TEXT NOT NULL,
			role TEXT NOT NULL DEFAULT 'USER'
		)
	`).Error
	require.NoError(t, err, "Failed to create users table")

	err = db.Exec(`
		CREATE TABLE forms (
			id TEXT PRIMARY KEY,
			created_at DATETIME NOT NULL,
			updated_at DATETIME NOT NULL,
			deleted_at DATETIME,
			owner_id TEXT NOT NULL,
			title TEXT NOT NULL,
			description TEXT,
			submit_button_text TEXT NOT NULL DEFAULT 'Submit',
			success_message TEXT NOT NULL DEFAULT 'Thank you for your submission!',
			theme TEXT,
			is_published INTEGER DEFAULT 0,
			is_active INTEGER DEFAULT 1
		)
	`).Error
	require.NoError(t, err, "Failed to create forms table")

	err = db.Exec(`
		CREATE TABLE form_fields (
			id TEXT PRIMARY KEY,
			created_at DATETIME NOT NULL,
			updated_at DATETIME NOT NULL,
			deleted_at DATETIME,
			form_id TEXT NOT NULL,
			type TEXT NOT NULL,
			label TEXT NOT NULL,
			placeholder TEXT,
			required INTEGER DEFAULT 0,
			options TEXT,
			display_order INTEGER NOT NULL DEFAULT 0,
			section TEXT
		)
	`).Error
	require.NoError(t, err, "Failed to create form_fields table")

	err = db.Exec(`
		CREATE TABLE form_responses (
			id TEXT PRIMARY KEY,
			form_id TEXT NOT NULL,
			data TEXT NOT NULL,
			user_agent TEXT,
			ip_address TEXT,
			user_id TEXT,
			submitted_at DATETIME NOT NULL
		)
	`).Error
	require.NoError(t, err, "Failed to create form_responses table")

	return db
}

// setupIntegrationRouter creates a router with real services and repositories
func setupIntegrationRouter(db *gorm.DB) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()

	// Test middleware sets the identity from headers instead of a real JWT
	router.Use(func(c *gin.Context) {
		if userIDStr := c.GetHeader("X-User-ID"); userIDStr != "" {
			if userID, err := uuid.Parse(userIDStr); err == nil {
				c.Set(middleware.ContextUserID, userID)
			}
		}
		if role := c.GetHeader("X-User-Role"); role != "" {
			c.Set(middleware.ContextUserRole, domain.UserRole(role))
		}
		c.Next()
	})

	logger := zap.NewNop()

	formRepo := repository.NewFormRepository(db)
	responseRepo := repository.NewResponseRepository(db)

	formService := service.NewFormService(formRepo, responseRepo, nil, nil, logger)
	submissionService := service.NewSubmissionService(formRepo, responseRepo, nil, logger)
	analyticsService := service.NewAnalyticsService(formRepo, responseRepo, logger)

	formHandler := NewFormHandler(formService)
	responseHandler := NewResponseHandler(analyticsService)
	publicHandler := NewPublicHandler(formService, submissionService)

	api := router.Group("/api")
	{
		forms := api.Group("/forms")
		{
			forms.POST("", formHandler.CreateForm)
			forms.GET("", formHandler.ListForms)
			forms.GET("/:formId", formHandler.GetForm)
			forms.PUT("/:formId", formHandler.UpdateForm)
			forms.DELETE("/:formId", formHandler.DeleteForm)
			forms.POST("/:formId/duplicate", formHandler.DuplicateForm)
			forms.GET("/:formId/responses", responseHandler.GetResponses)
			forms.GET("/:formId/statistics", responseHandler.GetStatistics)
			forms.POST("/:formId/export", responseHandler.ExportResponses)
		}

		public := api.Group("/public/forms")
		{
			public.GET("/:formId", publicHandler.GetPublicForm)
			public.POST("/:formId/responses", publicHandler.SubmitResponse)
		}
	}

	return router
}

func doRequest(router *gin.Engine, method, path string, body interface{}, userID uuid.UUID) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if userID != uuid.Nil {
		req.Header.Set("X-User-ID", userID.String())
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decodeData(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var envelope struct {
		Data map[string]interface{} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope), "body: %s", w.Body.String())
	return envelope.Data
}

func createFormPayload() map[string]interface{} {
	return map[string]interface{}{
		"title":       "Customer Survey",
		"description": "Quarterly feedback",
		"theme": map[string]interface{}{
			"backgroundColor": "#ffffff",
			"inputColor":      "#eeeeee",
			"labelColor":      "#222222",
			"fontSize":        "14px",
			"alignment":       "left",
		},
		"fields": []map[string]interface{}{
			{"type": "TEXT", "label": "Name", "required": true},
			{"type": "EMAIL", "label": "Email", "required": true},
			{"type": "SELECT", "label": "Rating", "options": []string{"good", "bad"}},
		},
	}
}

func TestIntegration_FormLifecycle(t *testing.T) {
	db := setupIntegrationTestDB(t)
	router := setupIntegrationRouter(db)
	ownerID := uuid.New()

	// Create
	w := doRequest(router, http.MethodPost, "/api/forms", createFormPayload(), ownerID)
	require.Equal(t, http.StatusCreated, w.Code, "body: %s", w.Body.String())
	form := decodeData(t, w)
	formID := form["id"].(string)
	assert.Equal(t, false, form["isPublished"])
	assert.Len(t, form["fields"], 3)

	fields := form["fields"].([]interface{})
	first := fields[0].(map[string]interface{})
	assert.Equal(t, float64(0), first["order"])

	// Public fetch before publish is a 404
	w = doRequest(router, http.MethodGet, "/api/public/forms/"+formID, nil, uuid.Nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	// Publish
	w = doRequest(router, http.MethodPut, "/api/forms/"+formID, map[string]interface{}{"isPublished": true}, ownerID)
	require.Equal(t, http.StatusOK, w.Code, "body: %s", w.Body.String())

	// Public fetch now succeeds
	w = doRequest(router, http.MethodGet, "/api/public/forms/"+formID, nil, uuid.Nil)
	require.Equal(t, http.StatusOK, w.Code)
	public := decodeData(t, w)
	assert.Equal(t, "Customer Survey", public["title"])

	// Another user cannot see the form through the management API
	w = doRequest(router, http.MethodGet, "/api/forms/"+formID, nil, uuid.New())
	assert.Equal(t, http.StatusNotFound, w.Code)

	// Delete hides it everywhere
	w = doRequest(router, http.MethodDelete, "/api/forms/"+formID, nil, ownerID)
	require.Equal(t, http.StatusOK, w.Code)
	w = doRequest(router, http.MethodGet, "/api/forms/"+formID, nil, ownerID)
	assert.Equal(t, http.StatusNotFound, w.Code)
	w = doRequest(router, http.MethodGet, "/api/public/forms/"+formID, nil, uuid.Nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestIntegration_FieldReplacement(t *testing.T) {
	db := setupIntegrationTestDB(t)
	router := setupIntegrationRouter(db)
	ownerID := uuid.New()

	w := doRequest(router, http.MethodPost, "/api/forms", createFormPayload(), ownerID)
	require.Equal(t, http.StatusCreated, w.Code)
	formID := decodeData(t, w)["id"].(string)

	// Replace the three fields with one
	w = doRequest(router, http.MethodPut, "/api/forms/"+formID, map[string]interface{}{
		"fields": []map[string]interface{}{
			{"type": "TEXTAREA", "label": "Feedback", "required": true},
		},
	}, ownerID)
	require.Equal(t, http.StatusOK, w.Code, "body: %s", w.Body.String())
	form := decodeData(t, w)
	require.Len(t, form["fields"], 1)

	// The old fields are gone from storage, not just the response
	var count int64
	require.NoError(t, db.Table("form_fields").Where("form_id = ?", formID).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestIntegration_SubmitAndStatistics(t *testing.T) {
	db := setupIntegrationTestDB(t)
	router := setupIntegrationRouter(db)
	ownerID := uuid.New()

	w := doRequest(router, http.MethodPost, "/api/forms", createFormPayload(), ownerID)
	require.Equal(t, http.StatusCreated, w.Code)
	form := decodeData(t, w)
	formID := form["id"].(string)
	fields := form["fields"].([]interface{})
	nameID := fields[0].(map[string]interface{})["id"].(string)
	emailID := fields[1].(map[string]interface{})["id"].(string)
	ratingID := fields[2].(map[string]interface{})["id"].(string)

	// Unpublished forms reject submissions
	w = doRequest(router, http.MethodPost, "/api/public/forms/"+formID+"/responses", map[string]interface{}{
		"data": map[string]interface{}{nameID: "Eve", emailID: "eve@example.com"},
	}, uuid.Nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doRequest(router, http.MethodPut, "/api/forms/"+formID, map[string]interface{}{"isPublished": true}, ownerID)
	require.Equal(t, http.StatusOK, w.Code)

	// Valid submission
	w = doRequest(router, http.MethodPost, "/api/public/forms/"+formID+"/responses", map[string]interface{}{
		"data": map[string]interface{}{nameID: "Eve", emailID: "eve@example.com", ratingID: "good"},
	}, uuid.Nil)
	require.Equal(t, http.StatusCreated, w.Code, "body: %s", w.Body.String())

	// Missing required field
	w = doRequest(router, http.MethodPost, "/api/public/forms/"+formID+"/responses", map[string]interface{}{
		"data": map[string]interface{}{emailID: "eve@example.com"},
	}, uuid.Nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// Invalid select option
	w = doRequest(router, http.MethodPost, "/api/public/forms/"+formID+"/responses", map[string]interface{}{
		"data": map[string]interface{}{nameID: "Eve", emailID: "eve@example.com", ratingID: "mediocre"},
	}, uuid.Nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// Second valid submission without the optional rating
	w = doRequest(router, http.MethodPost, "/api/public/forms/"+formID+"/responses", map[string]interface{}{
		"data": map[string]interface{}{nameID: "Frank", emailID: "frank@example.com"},
	}, uuid.Nil)
	require.Equal(t, http.StatusCreated, w.Code)

	// Owner browses responses
	w = doRequest(router, http.MethodGet, "/api/forms/"+formID+"/responses", nil, ownerID)
	require.Equal(t, http.StatusOK, w.Code)
	page := decodeData(t, w)
	assert.Len(t, page["responses"], 2)

	// A stranger gets not found, not an empty page
	w = doRequest(router, http.MethodGet, "/api/forms/"+formID+"/responses", nil, uuid.New())
	assert.Equal(t, http.StatusNotFound, w.Code)

	// Statistics tally per-field answer counts
	w = doRequest(router, http.MethodGet, "/api/forms/"+formID+"/statistics", nil, ownerID)
	require.Equal(t, http.StatusOK, w.Code)
	stats := decodeData(t, w)
	assert.Equal(t, float64(2), stats["totalResponses"])

	topFields := stats["topFields"].([]interface{})
	require.Len(t, topFields, 3)
	top := topFields[0].(map[string]interface{})
	assert.Equal(t, float64(2), top["responseCount"])
	last := topFields[2].(map[string]interface{})
	assert.Equal(t, "Rating", last["fieldLabel"])
	assert.Equal(t, float64(1), last["responseCount"])
}

func TestIntegration_Export(t *testing.T) {
	db := setupIntegrationTestDB(t)
	router := setupIntegrationRouter(db)
	ownerID := uuid.New()

	w := doRequest(router, http.MethodPost, "/api/forms", createFormPayload(), ownerID)
	require.Equal(t, http.StatusCreated, w.Code)
	form := decodeData(t, w)
	formID := form["id"].(string)
	fields := form["fields"].([]interface{})
	nameID := fields[0].(map[string]interface{})["id"].(string)
	emailID := fields[1].(map[string]interface{})["id"].(string)

	w = doRequest(router, http.MethodPut, "/api/forms/"+formID, map[string]interface{}{"isPublished": true}, ownerID)
	require.Equal(t, http.StatusOK, w.Code)

	w = doRequest(router, http.MethodPost, "/api/public/forms/"+formID+"/responses", map[string]interface{}{
		"data": map[string]interface{}{nameID: "Grace", emailID: "grace@example.com"},
	}, uuid.Nil)
	require.Equal(t, http.StatusCreated, w.Code)

	w = doRequest(router, http.MethodPost, "/api/forms/"+formID+"/export", map[string]interface{}{"format": "csv"}, ownerID)
	require.Equal(t, http.StatusOK, w.Code, "body: %s", w.Body.String())
	assert.Contains(t, w.Header().Get("Content-Type"), "text/csv")
	assert.Contains(t, w.Header().Get("Content-Disposition"), "form-responses-"+formID)
	assert.Contains(t, w.Body.String(), "Grace")

	w = doRequest(router, http.MethodPost, "/api/forms/"+formID+"/export", map[string]interface{}{"format": "json"}, ownerID)
	require.Equal(t, http.StatusOK, w.Code)
	var rows []map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &rows))
	require.Len(t, rows, 1)

	w = doRequest(router, http.MethodPost, "/api/forms/"+formID+"/export", map[string]interface{}{"format": "xml"}, ownerID)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestIntegration_DuplicateAndList(t *testing.T) {
	db := setupIntegrationTestDB(t)
	router := setupIntegrationRouter(db)
	ownerID := uuid.New()

	w := doRequest(router, http.MethodPost, "/api/forms", createFormPayload(), ownerID)
	require.Equal(t, http.StatusCreated, w.Code)
	formID := decodeData(t, w)["id"].(string)

	w = doRequest(router, http.MethodPut, "/api/forms/"+formID, map[string]interface{}{"isPublished": true}, ownerID)
	require.Equal(t, http.StatusOK, w.Code)

	w = doRequest(router, http.MethodPost, "/api/forms/"+formID+"/duplicate", nil, ownerID)
	require.Equal(t, http.StatusCreated, w.Code, "body: %s", w.Body.String())
	dup := decodeData(t, w)
	assert.Equal(t, "Customer Survey (Copy)", dup["title"])
	assert.Equal(t, false, dup["isPublished"])
	assert.NotEqual(t, formID, dup["id"])
	assert.Len(t, dup["fields"], 3)

	// List shows both; search narrows to the copy
	w = doRequest(router, http.MethodGet, "/api/forms", nil, ownerID)
	require.Equal(t, http.StatusOK, w.Code)
	listing := decodeData(t, w)
	assert.Len(t, listing["forms"], 2)

	w = doRequest(router, http.MethodGet, "/api/forms?search=copy", nil, ownerID)
	require.Equal(t, http.StatusOK, w.Code)
	listing = decodeData(t, w)
	assert.Len(t, listing["forms"], 1)

	w = doRequest(router, http.MethodGet, "/api/forms?status=draft", nil, ownerID)
	require.Equal(t, http.StatusOK, w.Code)
	listing = decodeData(t, w)
	assert.Len(t, listing["forms"], 1)

	// Another user sees nothing
	w = doRequest(router, http.MethodGet, "/api/forms", nil, uuid.New())
	require.Equal(t, http.StatusOK, w.Code)
	listing = decodeData(t, w)
	assert.Len(t, listing["forms"], 0)
}
