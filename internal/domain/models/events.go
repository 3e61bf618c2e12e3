package models

import "time"

// ---------------------------- KAFKA MODELS ----------------------------

// Топики исходящих событий конвейера
const (
	TopicLineItemQueued    = "lineitem.queued"
	TopicLineItemUnmatched = "lineitem.unmatched"
)

// LineItemEvent событие об исходе обработки одной позиции заказа
type LineItemEvent struct {
	OrderID    int64     `json:"order_id"`
	OrderName  string    `json:"order_name,omitempty"`
	ProductID  int64     `json:"product_id"`
	VariantID  *int64    `json:"variant_id,omitempty"`
	FileName   string    `json:"file_name,omitempty"`
	FileID     int64     `json:"file_id,omitempty"`
	Quantity   int       `json:"quantity"`
	Reason     string    `json:"reason,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}
