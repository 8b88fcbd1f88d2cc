package converter

import "time"

// ProductRedisModel — товар в кэше. Цена хранится в копейках, чтобы не терять точность в JSON.
type ProductRedisModel struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	CategoryID  int64     `json:"category_id"`
	Description string    `json:"description"`
	PriceCents  int64     `json:"price_cents"`
	Stock       int       `json:"stock"`
	IsActive    bool      `json:"is_active"`
	ImageKey    *string   `json:"image_key,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// CartRedisModel — корзина сессии: ID товара в строковом виде -> количество.
type CartRedisModel struct {
	Items map[string]int `json:"items"`
}
