package models

import "time"

// DefaultStock is applied when a product is created without a stock value.
const DefaultStock = 10

// Product is a pharmacy-listed item. Stock never goes negative.
type Product struct {
	ID        string    `gorm:"primaryKey;size:24"      bson:"_id"       json:"_id"`
	Name      string    `gorm:"size:255;not null"       bson:"name"      json:"name"`
	Price     float64   `gorm:"not null"                bson:"price"     json:"price"`
	Image     string    `gorm:"size:2048;not null"      bson:"image"     json:"image"`
	Stock     int       `gorm:"not null"                bson:"stock"     json:"stock"`
	Pharmacy  string    `gorm:"size:255;not null;index" bson:"pharmacy"  json:"pharmacy"`
	CreatedAt time.Time `                               bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `                               bson:"updatedAt" json:"updatedAt"`
}
