package model

import "time"

// チェックアウト確定後に外部へ通知する内容
type OrderCreatedEvent struct {
	OrderID   int64     `json:"order_id"`
	UserID    int64     `json:"user_id"`
	Total     string    `json:"total"`
	ItemCount int       `json:"item_count"`
	CreatedAt time.Time `json:"created_at"`
}
