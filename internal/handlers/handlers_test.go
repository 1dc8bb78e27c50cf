package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/yukikurage/site-services-api/internal/constants"
	"github.com/yukikurage/site-services-api/internal/database"
	"github.com/yukikurage/site-services-api/internal/dto"
	apierrors "github.com/yukikurage/site-services-api/internal/errors"
	"github.com/yukikurage/site-services-api/internal/models"
	"github.com/yukikurage/site-services-api/internal/repository"
	"github.com/yukikurage/site-services-api/internal/services"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newMockDB(t *testing.T, monitorPings bool) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()

	sqlDB, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(monitorPings))
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	db, err := gorm.Open(mysql.New(mysql.Config{
		Conn:                      sqlDB,
		SkipInitializeWithVersion: true,
	}), &gorm.Config{
		DisableAutomaticPing: true,
		Logger:               logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	return db, mock
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body), w.Body.String())
	return body
}

func TestRespondError(t *testing.T) {
	for _, m := range errorMappings {
		t.Run(m.code+"/"+m.target.Error(), func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

			respondError(c, fmt.Errorf("wrapped: %w", m.target))

			assert.Equal(t, m.status, w.Code)
			assert.Equal(t, m.code, decodeBody(t, w)["error"])
		})
	}
}

func TestRespondError_InvalidValue(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPatch, "/", nil)

	respondError(c, &dto.InvalidValueError{Code: apierrors.ErrCodeInvalidAssignee, Field: "assignedTo"})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, apierrors.ErrCodeInvalidAssignee, body["error"])
	assert.Equal(t, "invalid value for assignedTo", body["message"])
}

func TestRespondError_Unknown(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

	respondError(c, errors.New("disk on fire"))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, apierrors.ErrCodeServerError, body["error"])
	assert.NotContains(t, body["message"], "disk on fire")
}

func newUserRouter(db *gorm.DB, actor *models.User) *gin.Engine {
	userRepo := repository.NewUserRepository(db)
	auditRepo := repository.NewAuditRepository(db)
	handler := NewUserHandler(services.NewUserService(database.NewTransactionManager(db), userRepo, auditRepo, nil))

	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set(constants.ContextKeyUser, actor)
		c.Next()
	})
	r.GET("/api/users", handler.ListUsers)
	r.PATCH("/api/users/:id", handler.UpdateUser)
	return r
}

func TestListUsers_DatabaseFailure(t *testing.T) {
	db, mock := newMockDB(t, false)
	mock.ExpectQuery("SELECT \\* FROM `users`").WillReturnError(errors.New("connection reset"))

	w := httptest.NewRecorder()
	newUserRouter(db, &models.User{ID: 1, Role: models.RoleAdmin, Active: true}).
		ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/users", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, apierrors.ErrCodeServerError, decodeBody(t, w)["error"])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListUsers_HidesPasswordHash(t *testing.T) {
	db, mock := newMockDB(t, false)
	now := time.Now()
	rows := sqlmock.NewRows([]string{"id", "full_name", "email", "password_hash", "role", "active", "created_at", "updated_at"}).
		AddRow(2, "Sam Staff", "sam@example.com", "$2a$10$hash", "STAFF", true, now, now)
	mock.ExpectQuery("SELECT \\* FROM `users`").WillReturnRows(rows)

	w := httptest.NewRecorder()
	newUserRouter(db, &models.User{ID: 1, Role: models.RoleAdmin, Active: true}).
		ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/users", nil))

	require.Equal(t, http.StatusOK, w.Code)
	users := decodeBody(t, w)["users"].([]any)
	require.Len(t, users, 1)
	user := users[0].(map[string]any)
	assert.Equal(t, "sam@example.com", user["email"])
	assert.Equal(t, "STAFF", user["role"])
	assert.NotContains(t, w.Body.String(), "hash")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateUser_RejectsBeforeQuerying(t *testing.T) {
	db, mock := newMockDB(t, false)
	router := newUserRouter(db, &models.User{ID: 1, Role: models.RoleAdmin, Active: true})

	cases := []struct {
		name string
		path string
		code string
	}{
		{"bad id", "/api/users/abc", apierrors.ErrCodeInvalidID},
		{"zero id", "/api/users/0", apierrors.ErrCodeInvalidID},
		{"self", "/api/users/1", apierrors.ErrCodeCannotEditSelf},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPatch, tc.path, nil)
			router.ServeHTTP(w, req)

			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Equal(t, tc.code, decodeBody(t, w)["error"])
		})
	}
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHealth(t *testing.T) {
	t.Run("database up", func(t *testing.T) {
		db, mock := newMockDB(t, true)
		mock.ExpectPing()

		r := gin.New()
		r.GET("/health", NewHealthHandler(db).Health)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

		assert.Equal(t, http.StatusOK, w.Code)
		body := decodeBody(t, w)
		assert.Equal(t, true, body["ok"])
		assert.Equal(t, "ok", body["database"])
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("database down", func(t *testing.T) {
		db, mock := newMockDB(t, true)
		mock.ExpectPing().WillReturnError(errors.New("no route to host"))

		r := gin.New()
		r.GET("/health", NewHealthHandler(db).Health)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
		body := decodeBody(t, w)
		assert.Equal(t, false, body["ok"])
		assert.Equal(t, "unavailable", body["database"])
	})
}
