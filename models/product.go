package models

import "time"

// Product is a catalog entry sold through the bot. Deletion is soft:
// rows flip to Active=false so historical transactions keep resolving.
type Product struct {
	ID          string    `bson:"id" json:"id"`
	Name        string    `bson:"name" json:"name"`
	Price       float64   `bson:"price" json:"price"`
	Description string    `bson:"description" json:"description"`
	Category    string    `bson:"category" json:"category"`
	Stock       int       `bson:"stock" json:"stock"`
	Active      bool      `bson:"active" json:"active"`
	CreatedAt   time.Time `bson:"created_at" json:"created_at"`
}

// ProductCreateRequest is the payload for catalog creation.
type ProductCreateRequest struct {
	Name        string  `json:"name" binding:"required" validate:"required"`
	Price       float64 `json:"price" binding:"min=0" validate:"gte=0"`
	Description string  `json:"description"`
	Category    string  `json:"category"`
	Stock       int     `json:"stock" binding:"min=0" validate:"gte=0"`
}
