package models

import "time"

type PrescriptionStatus string

const (
	PrescriptionPending    PrescriptionStatus = "Pending"
	PrescriptionProcessing PrescriptionStatus = "Processing"
	PrescriptionCompleted  PrescriptionStatus = "Completed"
	PrescriptionRejected   PrescriptionStatus = "Rejected"
)

// Prescription is an uploaded document plus customer metadata. File holds
// the storage key; FileURL is derived on read and never persisted.
type Prescription struct {
	ID            string             `gorm:"primaryKey;size:24"      bson:"_id"           json:"_id"`
	Pharmacy      string             `gorm:"size:255;not null;index" bson:"pharmacy"      json:"pharmacy"`
	CustomerEmail string             `gorm:"size:255;not null"       bson:"customerEmail" json:"customerEmail"`
	CustomerName  string             `gorm:"size:255;not null"       bson:"customerName"  json:"customerName"`
	File          string             `gorm:"size:1024;not null"      bson:"file"          json:"file"`
	Status        PrescriptionStatus `gorm:"size:20;not null"        bson:"status"        json:"status"`
	FileURL       string             `gorm:"-"                       bson:"-"             json:"fileUrl,omitempty"`
	CreatedAt     time.Time          `gorm:"index"                   bson:"createdAt"     json:"createdAt"`
	UpdatedAt     time.Time          `                               bson:"updatedAt"     json:"updatedAt"`
}
