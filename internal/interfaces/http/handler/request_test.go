package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	procurementapp "github.com/procura/backend/internal/application/procurement"
	"github.com/procura/backend/internal/domain/identity"
	"github.com/procura/backend/internal/domain/shared"
	"github.com/procura/backend/internal/interfaces/http/dto"
	"github.com/procura/backend/internal/interfaces/http/middleware"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
	if err := middleware.SetupValidator(); err != nil {
		panic(err)
	}
}

func testPrincipal(role identity.Role) *identity.Principal {
	return &identity.Principal{ID: uuid.New(), Role: role, Name: "Sam Ortiz", Email: "sam@example.com"}
}

// newTestEngine mounts the request id middleware and injects p as the verified caller
func newTestEngine(p *identity.Principal) *gin.Engine {
	engine := gin.New()
	engine.Use(middleware.RequestID())
	engine.Use(func(c *gin.Context) {
		if p != nil {
			c.Set(middleware.JWTPrincipalKey, p)
		}
		c.Next()
	})
	return engine
}

func serve(engine *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set(middleware.RequestIDHeader, "req-test")
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)
	return rec
}

func decodeResponse(t *testing.T, rec *httptest.ResponseRecorder) (dto.Response, map[string]any) {
	t.Helper()
	var raw struct {
		dto.Response
		Data map[string]any `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &raw))
	return raw.Response, raw.Data
}

type requestFixture struct {
	commands    *MockRequestCommands
	queries     *MockRequestQueries
	attachments *MockUploadURLIssuer
	engine      *gin.Engine
}

func newRequestFixture(p *identity.Principal) *requestFixture {
	f := &requestFixture{
		commands:    new(MockRequestCommands),
		queries:     new(MockRequestQueries),
		attachments: new(MockUploadURLIssuer),
		engine:      newTestEngine(p),
	}
	h := NewRequestHandler(f.commands, f.queries, f.attachments)
	g := f.engine.Group("/api/v1/requests")
	g.POST("", h.Create)
	g.GET("", h.List)
	g.GET("/stats", h.Stats)
	g.POST("/attachments/upload-url", h.CreateUploadURL)
	g.GET("/:id", h.Get)
	g.PUT("/:id", h.Edit)
	g.PUT("/:id/status", h.Decide)
	g.PUT("/:id/clarify", h.RequestClarification)
	g.PUT("/:id/reply", h.Reply)
	g.PUT("/:id/withdraw", h.Withdraw)
	g.DELETE("/:id", h.Delete)
	return f
}

func sampleRequest(status string) *procurementapp.RequestResponse {
	return &procurementapp.RequestResponse{ID: uuid.New(), Title: "Figma seats", Status: status}
}

func TestRequestHandler_Create(t *testing.T) {
	p := testPrincipal(identity.RoleEmployee)
	f := newRequestFixture(p)

	created := sampleRequest("Pending")
	f.commands.On("Create", mock.Anything, p, mock.MatchedBy(func(in procurementapp.RequestInput) bool {
		return in.Title == "Figma seats" && in.Cost != nil && in.Cost.Equal(decimal.NewFromInt(1200)) && in.Department == "Design"
	})).Return(created, nil)

	rec := serve(f.engine, http.MethodPost, "/api/v1/requests",
		`{"title":"Figma seats","description":"Design team licenses","cost":"1200","department":"Design"}`)

	assert.Equal(t, http.StatusCreated, rec.Code)
	resp, data := decodeResponse(t, rec)
	assert.True(t, resp.Success)
	assert.Equal(t, created.ID.String(), data["id"])
	assert.Equal(t, "Pending", data["status"])
	f.commands.AssertExpectations(t)
}

func TestRequestHandler_Create_MalformedBody(t *testing.T) {
	f := newRequestFixture(testPrincipal(identity.RoleEmployee))

	rec := serve(f.engine, http.MethodPost, "/api/v1/requests", `{"title":`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	resp, _ := decodeResponse(t, rec)
	assert.Equal(t, dto.ErrCodeInvalidJSON, resp.Error.Code)
	f.commands.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything)
}

func TestRequestHandler_ErrorMapping(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		status  int
		code    string
		message string
	}{
		{"unauthenticated", shared.ErrUnauthenticated, http.StatusUnauthorized, "ERR_UNAUTHENTICATED", "Authentication required"},
		{"forbidden", shared.ErrForbidden, http.StatusForbidden, "ERR_FORBIDDEN", "Access to this resource is forbidden"},
		{"not found", shared.NewNotFoundError("Request"), http.StatusNotFound, "ERR_NOT_FOUND", "Request not found"},
		{"not owner", shared.ErrUnauthorized, http.StatusForbidden, "ERR_UNAUTHORIZED", "Not authorized to perform this action"},
		{"invalid transition", shared.NewInvalidTransitionError("approve", "Approved"), http.StatusUnprocessableEntity, "ERR_INVALID_TRANSITION", "Cannot approve a request with status 'Approved'"},
		{"bad request", shared.NewBadRequestError("Invalid decision status"), http.StatusBadRequest, "ERR_BAD_REQUEST", "Invalid decision status"},
		{"conflict", shared.ErrConcurrencyConflict, http.StatusConflict, "ERR_CONCURRENCY_CONFLICT", "Resource was modified by another process"},
		{"store error stays opaque", shared.NewStoreError(errors.New("pq: connection refused")), http.StatusInternalServerError, "ERR_STORE_ERROR", "An unexpected storage error occurred"},
		{"plain error", errors.New("boom"), http.StatusInternalServerError, "ERR_INTERNAL", "An unexpected error occurred"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := testPrincipal(identity.RoleApprover)
			f := newRequestFixture(p)
			id := uuid.New()
			f.commands.On("Decide", mock.Anything, p, id, procurementapp.DecisionInput{Status: "Approved"}).Return(nil, tt.err)

			rec := serve(f.engine, http.MethodPut, "/api/v1/requests/"+id.String()+"/status", `{"status":"Approved"}`)

			assert.Equal(t, tt.status, rec.Code)
			resp, _ := decodeResponse(t, rec)
			assert.False(t, resp.Success)
			assert.Equal(t, tt.code, resp.Error.Code)
			assert.Equal(t, tt.message, resp.Error.Message)
			assert.Equal(t, "req-test", resp.Error.RequestID)
			assert.NotContains(t, rec.Body.String(), "pq:")
		})
	}
}

func TestRequestHandler_MalformedIDReachesServiceAsNil(t *testing.T) {
	p := testPrincipal(identity.RoleAdmin)
	f := newRequestFixture(p)
	f.queries.On("Get", mock.Anything, p, uuid.Nil).Return(nil, shared.NewNotFoundError("Request"))

	rec := serve(f.engine, http.MethodGet, "/api/v1/requests/not-a-uuid", "")

	assert.Equal(t, http.StatusNotFound, rec.Code)
	resp, _ := decodeResponse(t, rec)
	assert.Equal(t, dto.ErrCodeNotFound, resp.Error.Code)
	f.queries.AssertExpectations(t)
}

func TestRequestHandler_List(t *testing.T) {
	p := testPrincipal(identity.RoleApprover)

	t.Run("binds filters", func(t *testing.T) {
		f := newRequestFixture(p)
		want := procurementapp.ListRequestsQuery{
			Department: "Design",
			Status:     "In Review",
			MinCost:    "100",
			MaxCost:    "5000",
			Page:       2,
			PageSize:   10,
		}
		f.queries.On("List", mock.Anything, p, want).Return(&procurementapp.RequestListResponse{
			Items: []procurementapp.RequestResponse{*sampleRequest("In Review")},
			Total: 11, Page: 2, PageSize: 10, TotalPages: 2,
		}, nil)

		rec := serve(f.engine, http.MethodGet,
			"/api/v1/requests?department=Design&status=In%20Review&minCost=100&maxCost=5000&page=2&page_size=10", "")

		assert.Equal(t, http.StatusOK, rec.Code)
		_, data := decodeResponse(t, rec)
		assert.EqualValues(t, 11, data["total"])
		f.queries.AssertExpectations(t)
	})

	t.Run("unknown department reaches the query service", func(t *testing.T) {
		f := newRequestFixture(p)
		f.queries.On("List", mock.Anything, p, procurementapp.ListRequestsQuery{Department: "Catering", Status: "Archived"}).
			Return(&procurementapp.RequestListResponse{Items: []procurementapp.RequestResponse{}}, nil)

		rec := serve(f.engine, http.MethodGet, "/api/v1/requests?department=Catering&status=Archived", "")

		assert.Equal(t, http.StatusOK, rec.Code)
		_, data := decodeResponse(t, rec)
		assert.Empty(t, data["items"])
		f.queries.AssertExpectations(t)
	})

	t.Run("invalid page is rejected", func(t *testing.T) {
		f := newRequestFixture(p)

		rec := serve(f.engine, http.MethodGet, "/api/v1/requests?page=-2", "")

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		resp, _ := decodeResponse(t, rec)
		assert.Equal(t, dto.ErrCodeValidation, resp.Error.Code)
		require.Len(t, resp.Error.Details, 1)
		assert.Equal(t, "page", resp.Error.Details[0].Field)
		f.queries.AssertNotCalled(t, "List", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("All sentinel passes binding", func(t *testing.T) {
		f := newRequestFixture(p)
		f.queries.On("List", mock.Anything, p, procurementapp.ListRequestsQuery{Department: "All", Status: "All"}).
			Return(&procurementapp.RequestListResponse{}, nil)

		rec := serve(f.engine, http.MethodGet, "/api/v1/requests?department=All&status=All", "")

		assert.Equal(t, http.StatusOK, rec.Code)
	})
}

func TestRequestHandler_Stats(t *testing.T) {
	p := testPrincipal(identity.RoleEmployee)
	f := newRequestFixture(p)
	f.queries.On("Stats", mock.Anything, p, procurementapp.ListRequestsQuery{Department: "IT"}).
		Return(&procurementapp.RequestStatsResponse{
			Total:         3,
			ByStatus:      map[string]int64{"Pending": 2, "Approved": 1},
			ApprovedSpend: decimal.RequireFromString("499.99"),
		}, nil)

	rec := serve(f.engine, http.MethodGet, "/api/v1/requests/stats?department=IT", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	_, data := decodeResponse(t, rec)
	assert.Equal(t, "499.99", data["approvedSpend"])
}

func TestRequestHandler_WorkflowRoutes(t *testing.T) {
	p := testPrincipal(identity.RoleEmployee)
	id := uuid.New()
	path := "/api/v1/requests/" + id.String()

	t.Run("edit", func(t *testing.T) {
		f := newRequestFixture(p)
		f.commands.On("Edit", mock.Anything, p, id, mock.AnythingOfType("procurement.RequestInput")).Return(sampleRequest("Pending"), nil)
		rec := serve(f.engine, http.MethodPut, path, `{"title":"Figma seats","cost":"1300","department":"Design"}`)
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("clarify", func(t *testing.T) {
		f := newRequestFixture(p)
		f.commands.On("RequestClarification", mock.Anything, p, id, procurementapp.ClarificationInput{Notes: "Need budget code"}).
			Return(sampleRequest("Clarification Needed"), nil)
		rec := serve(f.engine, http.MethodPut, path+"/clarify", `{"notes":"Need budget code"}`)
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("reply", func(t *testing.T) {
		f := newRequestFixture(p)
		f.commands.On("Reply", mock.Anything, p, id, procurementapp.ReplyInput{Reply: "Code: DX-44"}).
			Return(sampleRequest("In Review"), nil)
		rec := serve(f.engine, http.MethodPut, path+"/reply", `{"reply":"Code: DX-44"}`)
		assert.Equal(t, http.StatusOK, rec.Code)
		_, data := decodeResponse(t, rec)
		assert.Equal(t, "In Review", data["status"])
	})

	t.Run("withdraw", func(t *testing.T) {
		f := newRequestFixture(p)
		f.commands.On("Withdraw", mock.Anything, p, id).Return(sampleRequest("Withdrawn"), nil)
		rec := serve(f.engine, http.MethodPut, path+"/withdraw", "")
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("delete", func(t *testing.T) {
		f := newRequestFixture(p)
		f.commands.On("Delete", mock.Anything, p, id).Return(nil)
		rec := serve(f.engine, http.MethodDelete, path, "")
		assert.Equal(t, http.StatusNoContent, rec.Code)
	})
}

func TestRequestHandler_CreateUploadURL(t *testing.T) {
	p := testPrincipal(identity.RoleEmployee)

	t.Run("issues url", func(t *testing.T) {
		f := newRequestFixture(p)
		in := procurementapp.UploadURLInput{FileName: "quote.pdf", ContentType: "application/pdf"}
		f.attachments.On("CreateUploadURL", mock.Anything, p, in).Return(&procurementapp.UploadURLResponse{
			URL: "https://s3.example.com/put", Key: "attachments/abc/quote.pdf", Method: http.MethodPut,
		}, nil)

		rec := serve(f.engine, http.MethodPost, "/api/v1/requests/attachments/upload-url", `{"fileName":"quote.pdf","contentType":"application/pdf"}`)

		assert.Equal(t, http.StatusCreated, rec.Code)
		_, data := decodeResponse(t, rec)
		assert.Equal(t, "attachments/abc/quote.pdf", data["key"])
	})

	t.Run("missing fields", func(t *testing.T) {
		f := newRequestFixture(p)
		rec := serve(f.engine, http.MethodPost, "/api/v1/requests/attachments/upload-url", `{"fileName":""}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		resp, _ := decodeResponse(t, rec)
		assert.Len(t, resp.Error.Details, 2)
	})
}
