package models

import (
	"time"

	"github.com/gocql/gocql"
)

// AuditLog trace les actions sensibles (checkout, paiement, coupons)
type AuditLog struct {
	ID         gocql.UUID `json:"id"`
	UserID     string     `json:"user_id"`
	Action     string     `json:"action"`
	Resource   string     `json:"resource"`
	ResourceID string     `json:"resource_id,omitempty"`
	Success    bool       `json:"success"`
	ErrorMsg   string     `json:"error_msg,omitempty"`
	IPAddress  string     `json:"ip_address"`
	Timestamp  time.Time  `json:"timestamp"`
}
