package router

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	identityapp "github.com/procura/backend/internal/application/identity"
	procurementapp "github.com/procura/backend/internal/application/procurement"
	"github.com/procura/backend/internal/domain/identity"
	"github.com/procura/backend/internal/infrastructure/auth"
	"github.com/procura/backend/internal/infrastructure/config"
	"github.com/procura/backend/internal/infrastructure/event"
	"github.com/procura/backend/internal/infrastructure/persistence"
	"github.com/procura/backend/internal/infrastructure/persistence/models"
	"github.com/procura/backend/internal/infrastructure/storage"
	"github.com/procura/backend/internal/interfaces/http/handler"
	"github.com/procura/backend/internal/interfaces/http/middleware"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

const testPassword = "correct-horse-1"

type apiEnv struct {
	engine   *gin.Engine
	userRepo *persistence.GormUserRepository
}

func newAPIEnv(t *testing.T) *apiEnv {
	t.Helper()
	require.NoError(t, middleware.SetupValidator())

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, db.AutoMigrate(
		&models.UserModel{},
		&models.VendorModel{},
		&models.PurchaseRequestModel{},
	))

	log := zap.NewNop()
	jwtService := auth.NewJWTService(config.JWTConfig{
		Secret:                 "api-test-access-secret-0123456789",
		RefreshSecret:          "api-test-refresh-secret-0123456789",
		AccessTokenExpiration:  15 * time.Minute,
		RefreshTokenExpiration: time.Hour,
		Issuer:                 "procura-test",
	})
	blacklist := auth.NewInMemoryTokenBlacklist()

	bus := event.NewInMemoryEventBus(log)
	bus.Subscribe(procurementapp.NewNotificationHandler(log))
	require.NoError(t, bus.Start(context.Background()))
	t.Cleanup(func() { _ = bus.Stop(context.Background()) })

	userRepo := persistence.NewGormUserRepository(db)
	requestRepo := persistence.NewGormRequestRepository(db)
	vendorRepo := persistence.NewGormVendorRepository(db)
	guard := identityapp.NewGuard(log)

	requests := procurementapp.NewRequestService(requestRepo, vendorRepo, userRepo, bus, guard, log)
	queries := procurementapp.NewRequestQueryService(requestRepo, userRepo, decimal.Zero, log)
	attachments := procurementapp.NewAttachmentService(storage.NewStubObjectStorage(), "attachments", 15*time.Minute, log)

	engine := gin.New()
	jwtCfg := middleware.DefaultJWTConfig(jwtService)
	jwtCfg.TokenBlacklist = blacklist
	r := NewRouter(engine, WithMiddleware(middleware.JWTAuthMiddlewareWithConfig(jwtCfg)))
	RegisterAPI(r, Handlers{
		Requests: handler.NewRequestHandler(requests, queries, attachments),
		Vendors:  handler.NewVendorHandler(procurementapp.NewVendorService(vendorRepo, guard, log)),
		Auth:     handler.NewAuthHandler(identityapp.NewAuthService(userRepo, jwtService, blacklist, log)),
		Users:    handler.NewUserHandler(identityapp.NewUserService(userRepo, bus, guard, log)),
		Health:   handler.NewHealthHandler(persistence.NewDatabaseFromGorm(db), "test", log),
	}, nil)
	r.Setup()

	return &apiEnv{engine: engine, userRepo: userRepo}
}

func (e *apiEnv) seedUser(t *testing.T, email string, role identity.Role) {
	t.Helper()
	user, err := identity.NewUser("User "+string(role), email, testPassword, role, "Engineering")
	require.NoError(t, err)
	require.NoError(t, e.userRepo.Create(context.Background(), user))
}

func (e *apiEnv) do(t *testing.T, method, path, token string, body any) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.engine.ServeHTTP(rec, req)

	var decoded map[string]any
	if rec.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &decoded))
	}
	return rec, decoded
}

func (e *apiEnv) login(t *testing.T, email string) string {
	t.Helper()
	rec, body := e.do(t, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"email":    email,
		"password": testPassword,
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	return body["data"].(map[string]any)["accessToken"].(string)
}

func errorCode(body map[string]any) string {
	info, _ := body["error"].(map[string]any)
	code, _ := info["code"].(string)
	return code
}

func newRequestPayload(title string) map[string]any {
	return map[string]any{
		"title":       title,
		"description": "Seats for the platform team",
		"cost":        "1200.00",
		"department":  "Engineering",
		"isNewVendor": true,
		"proposedVendor": map[string]string{
			"name":    "Linear",
			"website": "https://linear.app",
		},
	}
}

func TestAPI_ClarificationFlow(t *testing.T) {
	env := newAPIEnv(t)
	env.seedUser(t, "emp@example.com", identity.RoleEmployee)
	env.seedUser(t, "approver@example.com", identity.RoleApprover)
	employee := env.login(t, "emp@example.com")
	approver := env.login(t, "approver@example.com")

	rec, body := env.do(t, http.MethodPost, "/api/v1/requests", employee, newRequestPayload("Linear seats"))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := body["data"].(map[string]any)
	id := created["id"].(string)
	assert.Equal(t, "Pending", created["status"])
	assert.Equal(t, "emp@example.com", created["requester"].(map[string]any)["email"])

	rec, body = env.do(t, http.MethodPut, "/api/v1/requests/"+id+"/clarify", approver, map[string]string{
		"notes": "Which team owns the budget?",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "Clarification Needed", body["data"].(map[string]any)["status"])

	rec, body = env.do(t, http.MethodPut, "/api/v1/requests/"+id+"/reply", employee, map[string]string{
		"reply": "Platform engineering",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	replied := body["data"].(map[string]any)
	assert.Equal(t, "In Review", replied["status"])
	assert.Equal(t, "Platform engineering", replied["requesterReply"])

	rec, body = env.do(t, http.MethodPut, "/api/v1/requests/"+id+"/status", approver, map[string]string{
		"status": "Approved",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	approved := body["data"].(map[string]any)
	assert.Equal(t, "Approved", approved["status"])
	assert.NotNil(t, approved["approvalDate"])

	rec, body = env.do(t, http.MethodPut, "/api/v1/requests/"+id+"/status", approver, map[string]string{
		"status": "Rejected",
	})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, "ERR_INVALID_TRANSITION", errorCode(body))

	rec, body = env.do(t, http.MethodGet, "/api/v1/requests/stats", approver, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	stats := body["data"].(map[string]any)
	assert.EqualValues(t, 1, stats["total"])
}

func TestAPI_AccessControl(t *testing.T) {
	env := newAPIEnv(t)
	env.seedUser(t, "owner@example.com", identity.RoleEmployee)
	env.seedUser(t, "other@example.com", identity.RoleEmployee)
	owner := env.login(t, "owner@example.com")
	other := env.login(t, "other@example.com")

	rec, body := env.do(t, http.MethodPost, "/api/v1/requests", owner, newRequestPayload("Notion"))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	id := body["data"].(map[string]any)["id"].(string)

	t.Run("unauthenticated", func(t *testing.T) {
		rec, body := env.do(t, http.MethodGet, "/api/v1/requests", "", nil)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, "ERR_UNAUTHENTICATED", errorCode(body))
	})

	t.Run("employee reads another's request", func(t *testing.T) {
		rec, body := env.do(t, http.MethodGet, "/api/v1/requests/"+id, other, nil)
		assert.Equal(t, http.StatusForbidden, rec.Code)
		assert.Equal(t, "ERR_UNAUTHORIZED", errorCode(body))
	})

	t.Run("employee decides", func(t *testing.T) {
		rec, body := env.do(t, http.MethodPut, "/api/v1/requests/"+id+"/status", owner, map[string]string{
			"status": "Approved",
		})
		assert.Equal(t, http.StatusForbidden, rec.Code)
		assert.Equal(t, "ERR_FORBIDDEN", errorCode(body))
	})

	t.Run("malformed id", func(t *testing.T) {
		rec, body := env.do(t, http.MethodGet, "/api/v1/requests/not-a-uuid", owner, nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Equal(t, "ERR_NOT_FOUND", errorCode(body))
	})

	t.Run("unknown id", func(t *testing.T) {
		rec, body := env.do(t, http.MethodGet, "/api/v1/requests/"+uuid.NewString(), owner, nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Equal(t, "ERR_NOT_FOUND", errorCode(body))
	})

	t.Run("employee list is scoped to own requests", func(t *testing.T) {
		rec, body := env.do(t, http.MethodGet, "/api/v1/requests", other, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Empty(t, body["data"].(map[string]any)["items"])
	})

	t.Run("user admin requires admin role", func(t *testing.T) {
		rec, body := env.do(t, http.MethodGet, "/api/v1/users", owner, nil)
		assert.Equal(t, http.StatusForbidden, rec.Code)
		assert.Equal(t, "ERR_FORBIDDEN", errorCode(body))
	})
}

func TestAPI_ListFilters(t *testing.T) {
	env := newAPIEnv(t)
	env.seedUser(t, "emp@example.com", identity.RoleEmployee)
	env.seedUser(t, "approver@example.com", identity.RoleApprover)
	employee := env.login(t, "emp@example.com")
	approver := env.login(t, "approver@example.com")

	for _, title := range []string{"Linear seats", "Figma seats"} {
		rec, _ := env.do(t, http.MethodPost, "/api/v1/requests", employee, newRequestPayload(title))
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	}

	tests := []struct {
		name  string
		query string
		want  int
	}{
		{"no filters", "", 2},
		{"known department", "?department=Engineering", 2},
		{"All sentinels", "?department=All&status=All", 2},
		{"unknown department", "?department=Catering", 0},
		{"unknown status", "?status=Archived", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, body := env.do(t, http.MethodGet, "/api/v1/requests"+tt.query, approver, nil)
			require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
			items, _ := body["data"].(map[string]any)["items"].([]any)
			assert.Len(t, items, tt.want)
		})
	}
}

func TestAPI_LogoutRevokesToken(t *testing.T) {
	env := newAPIEnv(t)
	env.seedUser(t, "admin@example.com", identity.RoleAdmin)
	token := env.login(t, "admin@example.com")

	rec, body := env.do(t, http.MethodGet, "/api/v1/auth/me", token, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "admin", body["data"].(map[string]any)["role"])

	rec, _ = env.do(t, http.MethodPost, "/api/v1/auth/logout", token, nil)
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec, body = env.do(t, http.MethodGet, "/api/v1/auth/me", token, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "ERR_UNAUTHENTICATED", errorCode(body))
}

func TestAPI_LoginRejectsBadPassword(t *testing.T) {
	env := newAPIEnv(t)
	env.seedUser(t, "emp@example.com", identity.RoleEmployee)

	rec, body := env.do(t, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"email":    "emp@example.com",
		"password": "wrong-password",
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "ERR_INVALID_CREDENTIALS", errorCode(body))
}

func TestAPI_Health(t *testing.T) {
	env := newAPIEnv(t)

	rec, body := env.do(t, http.MethodGet, "/api/v1/health", "", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	data := body["data"].(map[string]any)
	assert.Equal(t, "ok", data["status"])
	assert.Equal(t, "ok", data["database"])
	assert.Equal(t, "test", data["version"])
}
