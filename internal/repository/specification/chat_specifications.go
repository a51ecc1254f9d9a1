package specification

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// BySessionID filters messages by their owning session
type BySessionID struct {
	SessionID uuid.UUID
}

func (s BySessionID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("session_id = ?", s.SessionID)
}

// OwnedByUser filters by the owning user identifier
type OwnedByUser struct {
	UserID string
}

func (s OwnedByUser) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("user_id = ?", s.UserID)
}

// ScopedToTenant filters by tenant code when one is present
type ScopedToTenant struct {
	TenantCode string
}

func (s ScopedToTenant) Apply(db *gorm.DB) *gorm.DB {
	if s.TenantCode == "" {
		return db
	}
	return db.Where("tenant_code = ?", s.TenantCode)
}

// ScopedToOrg filters by organization code when one is present
type ScopedToOrg struct {
	OrgCode string
}

func (s ScopedToOrg) Apply(db *gorm.DB) *gorm.DB {
	if s.OrgCode == "" {
		return db
	}
	return db.Where("org_code = ?", s.OrgCode)
}
