package main

import (
	"attendance-platform/internal/httpapi"
	"attendance-platform/internal/rbac"

	"github.com/gin-gonic/gin"
)

// registerRoutes wires HTTP routes to handlers.
// Keep this file free of business logic. Handlers should delegate to internal modules.
func registerRoutes(r *gin.Engine, authMW gin.HandlerFunc, h httpapi.Handlers) {
	// public
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// AUTH routes (token issuance).
	// NOTE: This is a placeholder login route; real credential validation is not implemented.
	r.POST("/v1/auth/login", h.Login)

	// protected API group
	v1 := r.Group("/v1")
	v1.Use(authMW)
	v1.Use(rbac.RequireOrganization())
	{
		v1.GET("/me", h.Me)

		// ATTENDANCE routes.
		// Kiosks register via face capture; admins can also register manually
		// when the capture path is unavailable.
		attendanceGroup := v1.Group("/attendance")
		{
			attendanceGroup.POST("/register",
				rbac.RequireAnyRole(rbac.RoleKiosk, rbac.RoleAdmin),
				h.RegisterAccess)
			attendanceGroup.POST("/register/manual",
				rbac.RequireAnyRole(rbac.RoleAdmin),
				h.RegisterManual)
		}

		// ADMIN routes: timestamp corrections and their audit trail.
		accessLogs := v1.Group("/admin/access-logs")
		accessLogs.Use(rbac.RequireAnyRole(rbac.RoleAdmin))
		{
			accessLogs.PATCH("/:id/time", h.EditEntryTime)
			accessLogs.GET("/:id/edits", h.EditHistory)
		}

		// REPORT routes
		reports := v1.Group("/reports")
		reports.Use(rbac.RequireAnyRole(rbac.RoleAdmin))
		{
			reports.GET("/worked-hours", h.WorkedHoursReport)
		}

		// DIRECTORY routes
		employees := v1.Group("/employees")
		employees.Use(rbac.RequireAnyRole(rbac.RoleAdmin))
		{
			employees.GET("", h.ListEmployees)
		}
	}
}
