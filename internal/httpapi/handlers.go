package httpapi

import (
	"encoding/base64"
	"errors"
	"net/http"
	"time"

	"attendance-platform/internal/attendance"
	"attendance-platform/internal/audit"
	"attendance-platform/internal/auth"
	"attendance-platform/internal/directory"
	"attendance-platform/internal/faceid"
	"attendance-platform/internal/orgtime"
	"attendance-platform/internal/reporting"
	"attendance-platform/pkg/logger"
	"attendance-platform/pkg/utils"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

// Handlers groups HTTP handlers for dependency injection.
// Keep these thin: parse/validate input, call internal services, return JSON.
type Handlers struct {
	Auth       *auth.Manager
	Face       faceid.Provider
	Directory  *directory.Service
	Attendance *attendance.Service
	Audit      *audit.Service
	Reporting  *reporting.Service
	Zone       orgtime.Zone

	// Redis guards concurrent registrations per employee ahead of the DB
	// row lock: the second kiosk request fails fast instead of queueing.
	// Optional; nil skips the guard (tests, local).
	Redis *redis.Client
}

const registerGuardTTL = 10 * time.Second

// --- Auth ---

type loginRequest struct {
	UserID         string `json:"user_id"`
	OrganizationID string `json:"organization_id"`
	Role           string `json:"role"`
}

// Login issues a JWT token pair.
//
// NOTE: This is a skeleton-only endpoint. Real systems must validate credentials.
func (h Handlers) Login(c *gin.Context) {
	if h.Auth == nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "auth not configured"})
		return
	}
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	if req.UserID == "" || req.OrganizationID == "" || req.Role == "" {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "user_id, organization_id, role required"})
		return
	}
	pair, err := h.Auth.IssuePair(time.Now(), req.UserID, req.OrganizationID, req.Role)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "token issuance failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"access_token": pair.AccessToken, "refresh_token": pair.RefreshToken})
}

// --- Attendance ---

type registerRequest struct {
	// Image is the base64-encoded capture from the liveness widget.
	Image string `json:"image"`

	Action attendance.ActionKind `json:"action"`
}

type registerResponse struct {
	Entry              attendance.Entry   `json:"entry"`
	Employee           directory.Employee `json:"employee"`
	AutoCloseGenerated bool               `json:"auto_close_generated"`
}

// RegisterAccess runs the full check-in/out workflow: identify the face,
// resolve the employee, then drive the attendance state machine.
func (h Handlers) RegisterAccess(c *gin.Context) {
	if h.Face == nil || h.Directory == nil || h.Attendance == nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "attendance not configured"})
		return
	}
	orgID, err := auth.OrganizationID(c.Request.Context())
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "organization_id required"})
		return
	}

	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	if !req.Action.Valid() {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "action must be check_in or check_out"})
		return
	}
	image, err := base64.StdEncoding.DecodeString(req.Image)
	if err != nil || len(image) == 0 {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "image must be non-empty base64"})
		return
	}

	id, err := h.Face.Identify(c.Request.Context(), image)
	if err != nil {
		if errors.Is(err, faceid.ErrNoMatch) {
			c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "employee not found"})
			return
		}
		logger.FromGin(c).Error("face identification failed", "err", err)
		c.AbortWithStatusJSON(http.StatusBadGateway, gin.H{"error": "identification unavailable, try again"})
		return
	}

	employee, err := h.Directory.ResolveFaceToken(c.Request.Context(), orgID, id.FaceToken)
	if err != nil {
		switch {
		case errors.Is(err, directory.ErrNotFound):
			c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "employee not found"})
		case errors.Is(err, directory.ErrInactive):
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "employee is inactive"})
		default:
			logger.FromGin(c).Error("employee lookup failed", "err", err)
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "server error"})
		}
		return
	}

	h.registerFor(c, orgID, employee, req.Action)
}

type registerManualRequest struct {
	EmployeeID string                `json:"employee_id"`
	Action     attendance.ActionKind `json:"action"`
}

// RegisterManual lets an administrator register an action without a face
// capture (kiosk outage fallback). Same state machine, same guarantees.
func (h Handlers) RegisterManual(c *gin.Context) {
	if h.Directory == nil || h.Attendance == nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "attendance not configured"})
		return
	}
	orgID, err := auth.OrganizationID(c.Request.Context())
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "organization_id required"})
		return
	}

	var req registerManualRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	if req.EmployeeID == "" || !req.Action.Valid() {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "employee_id and valid action required"})
		return
	}

	employee, err := h.Directory.Get(c.Request.Context(), orgID, req.EmployeeID)
	if err != nil {
		if errors.Is(err, directory.ErrNotFound) {
			c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "employee not found"})
			return
		}
		logger.FromGin(c).Error("employee lookup failed", "err", err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "server error"})
		return
	}

	h.registerFor(c, orgID, employee, req.Action)
}

func (h Handlers) registerFor(c *gin.Context, orgID string, employee directory.Employee, kind attendance.ActionKind) {
	if h.Redis != nil {
		key := "attendance:register:" + orgID + ":" + employee.ID
		ok, err := utils.AcquireRegistrationGuard(c.Request.Context(), h.Redis, key, registerGuardTTL)
		if err != nil {
			logger.FromGin(c).Error("registration guard failed", "err", err)
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "server error"})
			return
		}
		if !ok {
			c.AbortWithStatusJSON(http.StatusConflict, gin.H{"error": "registration already in progress"})
			return
		}
		defer func() {
			_ = utils.ReleaseRegistrationGuard(c.Request.Context(), h.Redis, key)
		}()
	}

	res, err := h.Attendance.RegisterAccess(c.Request.Context(), orgID, employee.ID, kind)
	if err != nil {
		var dup *attendance.DuplicateActionError
		switch {
		case errors.As(err, &dup):
			c.AbortWithStatusJSON(http.StatusConflict, gin.H{
				"error":       "duplicate action",
				"action":      dup.Kind,
				"last_action": dup.LastLocal,
			})
		case errors.Is(err, attendance.ErrNotFound):
			c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "employee not found"})
		case errors.Is(err, attendance.ErrInvalidArgument):
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		default:
			logger.FromGin(c).Error("registration failed", "err", err)
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "server error, try again or contact an administrator"})
		}
		return
	}

	c.JSON(http.StatusOK, registerResponse{
		Entry:              res.Entry,
		Employee:           employee,
		AutoCloseGenerated: res.AutoCloseGenerated,
	})
}

// --- Admin: timestamp edits ---

type editTimeRequest struct {
	NewTime string `json:"new_time"` // HH:MM, organization-local
	Reason  string `json:"reason"`
}

func (h Handlers) EditEntryTime(c *gin.Context) {
	if h.Audit == nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "audit not configured"})
		return
	}
	orgID, err := auth.OrganizationID(c.Request.Context())
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "organization_id required"})
		return
	}
	adminID, err := auth.UserID(c.Request.Context())
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "user_id required"})
		return
	}
	accessLogID := c.Param("id")

	var req editTimeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}

	res, err := h.Audit.EditEntryTime(c.Request.Context(), orgID, accessLogID, req.NewTime, req.Reason, adminID)
	if err != nil {
		var ve *audit.ValidationError
		switch {
		case errors.As(err, &ve):
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": ve.Detail, "field": ve.Field})
		case errors.Is(err, audit.ErrNotFound):
			c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "access log not found"})
		default:
			logger.FromGin(c).Error("edit failed", "err", err)
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "server error"})
		}
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h Handlers) EditHistory(c *gin.Context) {
	if h.Audit == nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "audit not configured"})
		return
	}
	orgID, err := auth.OrganizationID(c.Request.Context())
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "organization_id required"})
		return
	}

	edits, err := h.Audit.History(c.Request.Context(), orgID, c.Param("id"))
	if err != nil {
		if errors.Is(err, audit.ErrNotFound) {
			c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "access log not found"})
			return
		}
		logger.FromGin(c).Error("history read failed", "err", err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "server error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"edits": edits})
}

// --- Reports ---

func (h Handlers) WorkedHoursReport(c *gin.Context) {
	if h.Reporting == nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "reporting not configured"})
		return
	}
	orgID, err := auth.OrganizationID(c.Request.Context())
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "organization_id required"})
		return
	}

	employeeID := c.Query("employee_id")
	from, errFrom := time.ParseInLocation("2006-01-02", c.Query("from"), h.Zone.Location())
	to, errTo := time.ParseInLocation("2006-01-02", c.Query("to"), h.Zone.Location())
	if employeeID == "" || errFrom != nil || errTo != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "employee_id, from, to (YYYY-MM-DD) required"})
		return
	}

	req := reporting.WorkedHoursRequest{
		OrganizationID: orgID,
		EmployeeID:     employeeID,
		Range: reporting.TimeRange{
			From: from.UTC(),
			// to is an inclusive date; the range end is the next local midnight.
			To: to.AddDate(0, 0, 1).UTC(),
		},
	}
	res, err := h.Reporting.WorkedHours(c.Request.Context(), req)
	if err != nil {
		if errors.Is(err, reporting.ErrInvalidRequest) {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid report range"})
			return
		}
		logger.FromGin(c).Error("report failed", "err", err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "server error"})
		return
	}
	c.JSON(http.StatusOK, res)
}

// --- Directory ---

func (h Handlers) ListEmployees(c *gin.Context) {
	if h.Directory == nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "directory not configured"})
		return
	}
	orgID, err := auth.OrganizationID(c.Request.Context())
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "organization_id required"})
		return
	}
	employees, err := h.Directory.List(c.Request.Context(), orgID)
	if err != nil {
		logger.FromGin(c).Error("employee list failed", "err", err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "server error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"employees": employees})
}

// Me echoes the authenticated identity; useful for client bootstrap.
func (h Handlers) Me(c *gin.Context) {
	uid, _ := auth.UserID(c.Request.Context())
	orgID, _ := auth.OrganizationID(c.Request.Context())
	role, _ := auth.Role(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{"user_id": uid, "organization_id": orgID, "role": role})
}
