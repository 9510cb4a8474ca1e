package services

import (
	"encoding/json"
	"time"

	"calificaciones_app_go/logging"
	"calificaciones_app_go/models"

	"gorm.io/gorm"
)

// AuditContext contains contextual information for audit logging
type AuditContext struct {
	UserID    string
	UserName  string
	UserRole  string
	IPAddress string
	UserAgent string
}

// AuditContextFor builds an audit context for a user outside of an HTTP request
func AuditContextFor(user *models.User) AuditContext {
	if user == nil {
		return AuditContext{UserName: "system", UserRole: "system"}
	}
	return AuditContext{
		UserID:   user.ID,
		UserName: user.Name,
		UserRole: user.Capabilities,
	}
}

// AuditEvent describes one audited operation
type AuditEvent struct {
	Action       models.AuditAction
	ResourceType string
	ResourceID   string
	ResourceName string
	Description  string
	OldValues    interface{}
	NewValues    interface{}
}

func (e AuditEvent) toLog(ctx AuditContext) models.AuditLog {
	var oldJSON, newJSON string
	if e.OldValues != nil {
		if bytes, err := json.Marshal(e.OldValues); err == nil {
			oldJSON = string(bytes)
		}
	}
	if e.NewValues != nil {
		if bytes, err := json.Marshal(e.NewValues); err == nil {
			newJSON = string(bytes)
		}
	}

	userName := ctx.UserName
	if userName == "" {
		userName = "system"
	}
	userRole := ctx.UserRole
	if userRole == "" {
		userRole = "system"
	}

	return models.AuditLog{
		UserID:       ptrIfNotEmpty(ctx.UserID),
		UserName:     userName,
		UserRole:     userRole,
		ResourceType: e.ResourceType,
		ResourceID:   e.ResourceID,
		ResourceName: e.ResourceName,
		Action:       e.Action,
		Description:  e.Description,
		OldValues:    oldJSON,
		NewValues:    newJSON,
		IPAddress:    ctx.IPAddress,
		UserAgent:    ctx.UserAgent,
	}
}

// RecordAuditEvent writes an audit log entry with db, so that inside a
// transaction the entry commits or rolls back with the change it describes.
func RecordAuditEvent(db *gorm.DB, ctx AuditContext, event AuditEvent) error {
	auditLog := event.toLog(ctx)
	return db.Create(&auditLog).Error
}

// LogAuditEvent creates a new audit log entry asynchronously
func LogAuditEvent(db *gorm.DB, ctx AuditContext, event AuditEvent) {
	// Run in goroutine to avoid blocking the request
	go func() {
		if err := RecordAuditEvent(db, ctx, event); err != nil {
			logging.L().Errorw("failed to create audit log", "resource_type", event.ResourceType, "error", err)
		}
	}()
}

// ptrIfNotEmpty returns a pointer to the string if not empty, nil otherwise
func ptrIfNotEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// GetResourceAuditHistory retrieves the audit history for a specific resource
func GetResourceAuditHistory(db *gorm.DB, resourceType, resourceID string) ([]models.AuditLog, error) {
	var logs []models.AuditLog
	err := db.Where("resource_type = ? AND resource_id = ?", resourceType, resourceID).
		Order("created_at DESC").
		Find(&logs).Error
	return logs, err
}

// AuditLogFilters contains filter options for audit log queries
type AuditLogFilters struct {
	UserID       string
	ResourceType string
	Action       string
	DateFrom     time.Time
	DateTo       time.Time
	SearchQuery  string
}

// GetAuditLogs retrieves paginated audit logs
func GetAuditLogs(db *gorm.DB, filters AuditLogFilters, page, pageSize int) ([]models.AuditLog, int64, error) {
	query := db.Model(&models.AuditLog{})

	// Apply filters
	if filters.UserID != "" {
		query = query.Where("user_id = ?", filters.UserID)
	}
	if filters.ResourceType != "" {
		query = query.Where("resource_type = ?", filters.ResourceType)
	}
	if filters.Action != "" {
		query = query.Where("action = ?", filters.Action)
	}
	if !filters.DateFrom.IsZero() {
		query = query.Where("created_at >= ?", filters.DateFrom)
	}
	if !filters.DateTo.IsZero() {
		query = query.Where("created_at <= ?", filters.DateTo)
	}
	if filters.SearchQuery != "" {
		searchPattern := "%" + filters.SearchQuery + "%"
		query = query.Where(
			"resource_name LIKE ? OR description LIKE ? OR user_name LIKE ?",
			searchPattern, searchPattern, searchPattern,
		)
	}

	// Count total
	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 50
	}

	// Get paginated results
	var logs []models.AuditLog
	offset := (page - 1) * pageSize
	err := query.Order("created_at DESC").
		Offset(offset).
		Limit(pageSize).
		Find(&logs).Error

	return logs, total, err
}

// LogSecurityEvent logs security-related events to the database and the application log
func LogSecurityEvent(db *gorm.DB, eventType, userID, details string) {
	logging.L().Warnw("security event", "event", eventType, "user_id", userID, "details", details)

	// Persist to database asynchronously
	go func() {
		auditLog := models.AuditLog{
			UserID:       ptrIfNotEmpty(userID),
			UserName:     "system",
			UserRole:     "system",
			Action:       models.AuditAction("SECURITY"),
			ResourceType: "SECURITY_EVENT",
			ResourceID:   eventType,
			Description:  details,
			NewValues:    eventType,
		}

		if err := db.Create(&auditLog).Error; err != nil {
			logging.L().Errorw("failed to create security audit log", "error", err)
		}
	}()
}
