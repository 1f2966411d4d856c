package models

import "time"

type PurchaseStatus string

const (
	StatusPending   PurchaseStatus = "pending"
	StatusCompleted PurchaseStatus = "completed"
	StatusShipped   PurchaseStatus = "shipped"
	StatusDelivered PurchaseStatus = "delivered"
)

// PurchaseStatuses is the lifecycle in order.
var PurchaseStatuses = []PurchaseStatus{StatusPending, StatusCompleted, StatusShipped, StatusDelivered}

// transitions lists the forward step allowed from each status.
var transitions = map[PurchaseStatus]PurchaseStatus{
	StatusPending:   StatusCompleted,
	StatusCompleted: StatusShipped,
	StatusShipped:   StatusDelivered,
}

func (s PurchaseStatus) Valid() bool {
	for _, v := range PurchaseStatuses {
		if v == s {
			return true
		}
	}
	return false
}

// CanTransition reports whether a purchase in s may move to next under the
// linear lifecycle. Staying in the same status is always allowed.
func (s PurchaseStatus) CanTransition(next PurchaseStatus) bool {
	if !s.Valid() || !next.Valid() {
		return false
	}
	return s == next || transitions[s] == next
}

// Address is the shipping address embedded in a purchase.
type Address struct {
	Street     string `gorm:"size:255" bson:"street"     json:"street"`
	City       string `gorm:"size:120" bson:"city"       json:"city"`
	State      string `gorm:"size:120" bson:"state"      json:"state"`
	PostalCode string `gorm:"size:20"  bson:"postalCode" json:"postalCode"`
	Country    string `gorm:"size:120" bson:"country"    json:"country"`
}

// PurchaseItem is a snapshot of a product taken at checkout.
type PurchaseItem struct {
	ID       string  `bson:"_id"      json:"_id"`
	Name     string  `bson:"name"     json:"name"`
	Price    float64 `bson:"price"    json:"price"`
	Quantity int     `bson:"quantity" json:"quantity"`
	Image    string  `bson:"image"    json:"image"`
}

type Purchase struct {
	ID              string         `gorm:"primaryKey;size:24"                bson:"_id"             json:"_id"`
	CustomerEmail   string         `gorm:"size:255;not null"                 bson:"customerEmail"   json:"customerEmail"`
	CustomerName    string         `gorm:"size:255;not null"                 bson:"customerName"    json:"customerName"`
	CustomerPhone   string         `gorm:"size:50"                           bson:"customerPhone"   json:"customerPhone"`
	Pharmacy        string         `gorm:"size:255;not null;index"           bson:"pharmacy"        json:"pharmacy"`
	Products        []PurchaseItem `gorm:"serializer:json;type:text"         bson:"products"        json:"products"`
	TotalAmount     float64        `gorm:"not null"                          bson:"totalAmount"     json:"totalAmount"`
	ShippingAddress Address        `gorm:"embedded;embeddedPrefix:shipping_" bson:"shippingAddress" json:"shippingAddress"`
	Status          PurchaseStatus `gorm:"size:20;not null;index"            bson:"status"          json:"status"`
	CreatedAt       time.Time      `gorm:"index"                             bson:"createdAt"       json:"createdAt"`
	UpdatedAt       time.Time      `                                         bson:"updatedAt"       json:"updatedAt"`
}
