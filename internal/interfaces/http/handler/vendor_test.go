package handler

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	procurementapp "github.com/procura/backend/internal/application/procurement"
	"github.com/procura/backend/internal/domain/identity"
	"github.com/procura/backend/internal/domain/shared"
	"github.com/procura/backend/internal/interfaces/http/dto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func newVendorEngine(p *identity.Principal, vendors *MockVendorManager) *gin.Engine {
	engine := newTestEngine(p)
	h := NewVendorHandler(vendors)
	g := engine.Group("/api/v1/vendors")
	g.GET("", h.List)
	g.GET("/:id", h.Get)
	g.POST("", h.Create)
	g.PUT("/:id", h.Update)
	g.DELETE("/:id", h.Deactivate)
	return engine
}

func TestVendorHandler_Create(t *testing.T) {
	p := testPrincipal(identity.RoleAdmin)

	t.Run("created", func(t *testing.T) {
		vendors := new(MockVendorManager)
		in := procurementapp.VendorInput{Name: "Figma", Website: "https://figma.com", Category: "Design tools"}
		vendors.On("Create", mock.Anything, p, in).Return(&procurementapp.VendorResponse{ID: uuid.New(), Name: "Figma", Active: true}, nil)

		rec := serve(newVendorEngine(p, vendors), http.MethodPost, "/api/v1/vendors",
			`{"name":"Figma","website":"https://figma.com","category":"Design tools"}`)

		assert.Equal(t, http.StatusCreated, rec.Code)
		vendors.AssertExpectations(t)
	})

	t.Run("invalid website", func(t *testing.T) {
		vendors := new(MockVendorManager)
		rec := serve(newVendorEngine(p, vendors), http.MethodPost, "/api/v1/vendors", `{"name":"Figma","website":"figma"}`)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		resp, _ := decodeResponse(t, rec)
		assert.Equal(t, "website", resp.Error.Details[0].Field)
	})

	t.Run("duplicate name", func(t *testing.T) {
		vendors := new(MockVendorManager)
		vendors.On("Create", mock.Anything, p, mock.Anything).
			Return(nil, shared.NewDomainError(shared.CodeAlreadyExists, "Vendor 'Figma' already exists"))

		rec := serve(newVendorEngine(p, vendors), http.MethodPost, "/api/v1/vendors", `{"name":"Figma"}`)

		assert.Equal(t, http.StatusConflict, rec.Code)
		resp, _ := decodeResponse(t, rec)
		assert.Equal(t, dto.ErrCodeAlreadyExists, resp.Error.Code)
	})
}

func TestVendorHandler_ReadAndDeactivate(t *testing.T) {
	p := testPrincipal(identity.RoleEmployee)
	id := uuid.New()
	vendors := new(MockVendorManager)
	vendors.On("List", mock.Anything, p, procurementapp.ListVendorsQuery{Keyword: "fig", ActiveOnly: true}).
		Return(&procurementapp.VendorListResponse{Total: 1, Items: []procurementapp.VendorResponse{{ID: id, Name: "Figma"}}}, nil)
	vendors.On("Get", mock.Anything, p, id).Return(&procurementapp.VendorResponse{ID: id, Name: "Figma"}, nil)
	vendors.On("Deactivate", mock.Anything, p, id).Return(nil, shared.ErrForbidden)
	engine := newVendorEngine(p, vendors)

	assert.Equal(t, http.StatusOK, serve(engine, http.MethodGet, "/api/v1/vendors?keyword=fig&active=true", "").Code)
	assert.Equal(t, http.StatusOK, serve(engine, http.MethodGet, "/api/v1/vendors/"+id.String(), "").Code)
	assert.Equal(t, http.StatusForbidden, serve(engine, http.MethodDelete, "/api/v1/vendors/"+id.String(), "").Code)
	vendors.AssertExpectations(t)
}
