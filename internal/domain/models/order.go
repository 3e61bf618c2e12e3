package models

// Order входящий заказ от платформы e-commerce (вебхук).
// Слой приема вебхуков разбирает подпись и доставку; сюда приходит уже
// распакованный JSON.
type Order struct {
	OrderID   int64      `json:"order_id"`
	OrderName string     `json:"order_name,omitempty"`
	LineItems []LineItem `json:"line_items"`
}

// LineItem одна позиция заказа
type LineItem struct {
	ProductID int64  `json:"product_id"`
	VariantID *int64 `json:"variant_id,omitempty"`
	SKU       string `json:"sku,omitempty"`
	Quantity  int    `json:"quantity"`
}
