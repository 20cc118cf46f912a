package router

import (
	"github.com/gin-gonic/gin"
	"github.com/procura/backend/internal/domain/identity"
	"github.com/procura/backend/internal/interfaces/http/handler"
	"github.com/procura/backend/internal/interfaces/http/middleware"
)

// Handlers are the endpoint implementations mounted under /api/v1
type Handlers struct {
	Requests *handler.RequestHandler
	Vendors  *handler.VendorHandler
	Auth     *handler.AuthHandler
	Users    *handler.UserHandler
	Health   *handler.HealthHandler
}

// RegisterAPI adds every domain group to r. authLimit, when not nil, guards
// the credential endpoints (login and refresh) on top of the global limiter.
//
// Role checks for requests stay inside the workflow engine so its check
// order holds; vendor writes and user management are also gated here.
func RegisterAPI(r *Router, h Handlers, authLimit gin.HandlerFunc) {
	adminOnly := middleware.RequireRoles(identity.AdminRoles)

	r.Register(NewDomainGroup("/health").
		GET("", h.Health.Health))

	limited := func(next gin.HandlerFunc) []gin.HandlerFunc {
		if authLimit == nil {
			return []gin.HandlerFunc{next}
		}
		return []gin.HandlerFunc{authLimit, next}
	}
	r.Register(NewDomainGroup("/auth").
		POST("/login", limited(h.Auth.Login)...).
		POST("/refresh", limited(h.Auth.Refresh)...).
		POST("/logout", h.Auth.Logout).
		GET("/me", h.Auth.Me))

	r.Register(NewDomainGroup("/requests").
		POST("", h.Requests.Create).
		GET("", h.Requests.List).
		GET("/stats", h.Requests.Stats).
		POST("/attachments/upload-url", h.Requests.CreateUploadURL).
		GET("/:id", h.Requests.Get).
		PUT("/:id", h.Requests.Edit).
		PUT("/:id/status", h.Requests.Decide).
		PUT("/:id/clarify", h.Requests.RequestClarification).
		PUT("/:id/reply", h.Requests.Reply).
		PUT("/:id/withdraw", h.Requests.Withdraw).
		DELETE("/:id", h.Requests.Delete))

	r.Register(NewDomainGroup("/vendors").
		GET("", h.Vendors.List).
		GET("/:id", h.Vendors.Get).
		POST("", adminOnly, h.Vendors.Create).
		PUT("/:id", adminOnly, h.Vendors.Update).
		DELETE("/:id", adminOnly, h.Vendors.Deactivate))

	r.Register(NewDomainGroup("/users").
		Use(adminOnly).
		GET("", h.Users.List).
		POST("", h.Users.Create).
		PUT("/:id/role", h.Users.ChangeRole))
}
