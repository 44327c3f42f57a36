package utils

import (
	"log"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gocql/gocql"

	"relivre_back_end/internal/database"
	"relivre_back_end/internal/models"
)

// Actions d'audit prédéfinies
const (
	ActionBookCreate  = "book.create"
	ActionOrderCreate = "order.create"
	ActionOrderPay    = "order.pay"
	ActionCouponApply = "coupon.apply"
	ActionUserSignup  = "user.signup"
	ActionUserSignin  = "user.signin"
)

// LogAction enregistre une action dans les logs d'audit
func LogAction(c *gin.Context, action, resource, resourceID string) {
	go func() {
		if err := logActionAsync(c, action, resource, resourceID, true, ""); err != nil {
			log.Printf("❌ Erreur enregistrement log audit: %v", err)
		}
	}()
}

// LogFailedAction enregistre une action échouée dans les logs d'audit
func LogFailedAction(c *gin.Context, action, resource, resourceID, errorMsg string) {
	go func() {
		if err := logActionAsync(c, action, resource, resourceID, false, errorMsg); err != nil {
			log.Printf("❌ Erreur enregistrement log audit: %v", err)
		}
	}()
}

func logActionAsync(c *gin.Context, action, resource, resourceID string, success bool, errorMsg string) error {
	ordersSession, err := database.GetOrdersSession()
	if err != nil {
		return err
	}

	userID, _ := c.Get("user_id")

	auditLog := models.AuditLog{
		ID:         gocql.TimeUUID(),
		UserID:     getStringValue(userID),
		Action:     action,
		Resource:   resource,
		ResourceID: resourceID,
		Success:    success,
		ErrorMsg:   errorMsg,
		IPAddress:  c.ClientIP(),
		Timestamp:  time.Now(),
	}

	query := `
		INSERT INTO audit_logs (
			id, user_id, action, resource, resource_id,
			success, error_msg, ip_address, timestamp
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	return ordersSession.Query(query,
		auditLog.ID, auditLog.UserID, auditLog.Action,
		auditLog.Resource, auditLog.ResourceID,
		auditLog.Success, auditLog.ErrorMsg,
		auditLog.IPAddress, auditLog.Timestamp,
	).Exec()
}

// getStringValue convertit une interface{} en string
func getStringValue(value interface{}) string {
	if value == nil {
		return ""
	}
	if str, ok := value.(string); ok {
		return str
	}
	return ""
}
