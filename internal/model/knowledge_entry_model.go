package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
	"gorm.io/gorm"
)

// KnowledgeEntry is one row of the hybrid knowledge index. The QA partition
// fills Question/Answer, the DOCUMENT partition fills Content (+FileName).
type KnowledgeEntry struct {
	Id         uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Kind       string          `gorm:"type:varchar(20);not null;index"` // "QA" | "DOCUMENT"
	TenantCode *string         `gorm:"type:varchar(200);index:idx_ke_tenant_org"`
	OrgCode    *string         `gorm:"type:varchar(200);index:idx_ke_tenant_org"`
	Question   *string         `gorm:"type:text"`
	Answer     *string         `gorm:"type:text"`
	Content    *string         `gorm:"type:text"`
	Source     string          `gorm:"type:text;not null"`
	FileName   *string         `gorm:"type:varchar(500)"`
	Embedding  pgvector.Vector `gorm:"type:vector(768)"`
	CreatedAt  time.Time       `gorm:"autoCreateTime"`
	DeletedAt  gorm.DeletedAt  `gorm:"index"`
}

func (KnowledgeEntry) TableName() string {
	return "knowledge_entries"
}
