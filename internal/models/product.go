package models

// Product é a projeção pública de um produto do catálogo retornada pela
// busca. É um snapshot imutável por consulta; o catálogo em si pertence ao
// serviço de catálogo, não ao núcleo de busca.
type Product struct {
	ID             int64    `json:"id"`
	Name           string   `json:"name"`
	Description    string   `json:"description"`
	Price          float64  `json:"price"`
	Category       string   `json:"category"`
	ImageURL       string   `json:"image_url"`
	StockQty       int      `json:"stock_qty"`
	WeightGrams    int      `json:"weight_grams"`
	OrganizationID int64    `json:"organization_id"`
	Rank           *float64 `json:"rank,omitempty"` // preenchido apenas pela busca full-text
}
