package model

import "time"

// 保存形式のバージョン
const CartSnapshotVersion = 1

// 保存されるカートの中身。合計値は保存しない（復元時に再計算）。
type CartSnapshot struct {
	Version int        `json:"version"`
	Items   []LineItem `json:"items"`
}

// cart_sessions テーブル（postgres保存用）
// 1セッションにつき1行
type CartSession struct {
	SessionID string    `gorm:"primaryKey;type:varchar(64)" json:"session_id"`
	Payload   string    `gorm:"type:text;not null" json:"payload"`
	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`
}
