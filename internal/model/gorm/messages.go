package gorm

import (
	"time"
)

// Message 消息表
type Message struct {
	ID         uint64     `gorm:"primaryKey;column:id;type:bigint"`
	MsgID      string     `gorm:"column:msg_id;type:varchar(64);uniqueIndex;not null"` // 消息ID
	ConvID     string     `gorm:"column:conv_id;type:varchar(64);not null;index"`      // 会话ID
	Role       string     `gorm:"column:role;type:varchar(20);not null"`               // 角色
	Content    string     `gorm:"column:content;type:text"`                            // 文本内容
	LatencyMs  int        `gorm:"column:latency_ms;type:int"`                          // 延迟毫秒数
	Metadata   JSON       `gorm:"column:metadata;type:json"`                           // 策略、重试次数、引用条数等
	CreateTime *time.Time `gorm:"column:create_time"`                                  // 创建时间
}

// TableName 设置表名
func (Message) TableName() string {
	return "messages"
}
