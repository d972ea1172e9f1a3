package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AuditModel 通用审计字段（所有业务模型嵌入）：创建/更新/软删除记录与版本号。
// 大纲保存为整体替换、后写覆盖，Version 只用于审计，不做乐观锁校验。
type AuditModel struct {
	CreatedAt time.Time      `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	CreatedBy *string        `gorm:"type:uuid"                          json:"created_by,omitempty"`
	UpdatedAt time.Time      `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
	UpdatedBy *string        `gorm:"type:uuid"                          json:"updated_by,omitempty"`
	DeletedAt gorm.DeletedAt `gorm:"index"                              json:"deleted_at,omitempty"`
	DeletedBy *string        `gorm:"type:uuid"                          json:"deleted_by,omitempty"`
	Version   int            `gorm:"not null;default:1"                 json:"version"`
}

// Actor 将操作人 ID 转换为审计列的值。
// 审计列为 uuid 类型，空串或非 UUID（如远程门户的学号类 ID）记为 NULL。
func Actor(userID string) *string {
	id, err := uuid.Parse(userID)
	if err != nil {
		return nil
	}
	s := id.String()
	return &s
}
