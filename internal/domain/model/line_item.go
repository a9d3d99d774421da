package model

// カートの明細（商品IDで一意）
// Quantityは存在する間は常に1以上。
type LineItem struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Image    string  `json:"image"`
	Price    float64 `json:"price"`
	Weight   float64 `json:"weight"`
	Quantity int     `json:"quantity"`
}
