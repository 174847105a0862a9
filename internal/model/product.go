package model

import (
	"time"

	"github.com/google/uuid"
)

// Product represents a catalogue item with its current stock level.
type Product struct {
	ID          uuid.UUID `json:"id" db:"id"`
	Name        string    `json:"name" db:"name"`
	Description string    `json:"description" db:"description"`
	Price       float64   `json:"price" db:"price"`
	ImageURL    string    `json:"imageUrl" db:"image_url"`
	ImageKey    string    `json:"-" db:"image_key"`
	Category    string    `json:"category" db:"category"`
	Stock       int       `json:"stock" db:"stock"`
	IsFeatured  bool      `json:"isFeatured" db:"is_featured"`
	CreatedAt   time.Time `json:"createdAt" db:"created_at"`
}

// ProductRequest represents the admin payload for creating a product.
type ProductRequest struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	Image       string  `json:"image"` // base64-encoded image data
	Category    string  `json:"category"`
	Stock       int     `json:"stock"`
}
