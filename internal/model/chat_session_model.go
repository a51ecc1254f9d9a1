package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ChatSession struct {
	Id         uuid.UUID      `gorm:"type:uuid;primaryKey"`
	UserId     string         `gorm:"type:varchar(200);not null;index"`
	Title      *string        `gorm:"type:varchar(500)"`
	TenantCode *string        `gorm:"type:varchar(200);index:idx_tenant_org"`
	OrgCode    *string        `gorm:"type:varchar(200);index:idx_tenant_org"`
	CreatedAt  time.Time      `gorm:"autoCreateTime;index"`
	UpdatedAt  time.Time      `gorm:"autoUpdateTime"`
	DeletedAt  gorm.DeletedAt `gorm:"index"`
}

func (ChatSession) TableName() string {
	return "chat_sessions"
}
