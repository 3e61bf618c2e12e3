package models

import "time"

// Причины создания записей о неразобранных позициях.
// Строки входят во внешний контракт (видны оператору), не менять.
const (
	ReasonNoMapping      = "No mapping found"
	ReasonQueueingFailed = "Queueing failed"
)

// UnmatchedLineItem запись о позиции заказа, которую не удалось полностью
// поставить в очередь. Создается только конвейером, изменяется только
// действиями оператора (ручная постановка или отклонение), автоматически
// не удаляется.
type UnmatchedLineItem struct {
	ID        string     `json:"id"`
	OrderID   int64      `json:"order_id"`
	OrderName string     `json:"order_name,omitempty"`
	ProductID int64      `json:"product_id"`
	VariantID *int64     `json:"variant_id,omitempty"`
	SKU       string     `json:"sku,omitempty"`
	Quantity  int        `json:"quantity"`
	Reason    string     `json:"reason"`
	QueuedAt  *time.Time `json:"queued_at,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}
