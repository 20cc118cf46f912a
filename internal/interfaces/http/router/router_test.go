package router

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestRouterSetup(t *testing.T) {
	engine := gin.New()
	r := NewRouter(engine, WithAPIVersion("v2"))

	r.Register(NewDomainGroup("/things").
		GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") }))
	r.Setup()

	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v2/things/ping", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "pong", rec.Body.String())
}

func TestRouterMiddlewareOrder(t *testing.T) {
	var order []string
	mark := func(name string) gin.HandlerFunc {
		return func(c *gin.Context) {
			order = append(order, name)
			c.Next()
		}
	}

	engine := gin.New()
	r := NewRouter(engine, WithMiddleware(mark("api")))
	group := NewDomainGroup("/requests").Use(mark("group"))
	group.Group("/:id").Use(mark("subgroup")).PUT("/status", mark("route"), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	r.Register(group)
	r.Setup()

	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, httptest.NewRequest(http.MethodPut, "/api/v1/requests/42/status", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"api", "group", "subgroup", "route"}, order)
}

func TestDomainGroupMethods(t *testing.T) {
	engine := gin.New()
	r := NewRouter(engine)
	ok := func(c *gin.Context) { c.Status(http.StatusOK) }
	r.Register(NewDomainGroup("/vendors").
		GET("", ok).
		POST("", ok).
		PUT("/:id", ok).
		DELETE("/:id", ok))
	r.Setup()

	routes := map[string]bool{}
	for _, info := range engine.Routes() {
		routes[info.Method+" "+info.Path] = true
	}
	assert.True(t, routes["GET /api/v1/vendors"])
	assert.True(t, routes["POST /api/v1/vendors"])
	assert.True(t, routes["PUT /api/v1/vendors/:id"])
	assert.True(t, routes["DELETE /api/v1/vendors/:id"])
}
