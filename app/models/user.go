package models

import "time"

const (
	RoleCustomer = "customer"
	RolePharmacy = "pharmacy"
	RoleAdmin    = "admin"
)

// Roles lists every accepted role.
var Roles = []string{RoleCustomer, RolePharmacy, RoleAdmin}

func ValidRole(role string) bool {
	for _, r := range Roles {
		if r == role {
			return true
		}
	}
	return false
}

// User is an account. Email is stored trimmed and lowercased.
type User struct {
	ID        string    `gorm:"primaryKey;size:24"            bson:"_id"       json:"_id"`
	Name      string    `gorm:"size:255;not null"             bson:"name"      json:"name"`
	Email     string    `gorm:"size:255;not null;uniqueIndex" bson:"email"     json:"email"`
	Password  string    `gorm:"size:255;not null"             bson:"password"  json:"-"` // hashed, never serialised
	Role      string    `gorm:"size:20;not null;index"        bson:"role"      json:"role"`
	Address   string    `gorm:"size:500"                      bson:"address"   json:"address"`
	Phone     string    `gorm:"size:50"                       bson:"phone"     json:"phone"`
	CreatedAt time.Time `                                     bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `                                     bson:"updatedAt" json:"updatedAt"`
}

// PharmacySummary is the public projection of a pharmacy account.
type PharmacySummary struct {
	ID      string `json:"_id"`
	Name    string `json:"name"`
	Email   string `json:"email"`
	Address string `json:"address"`
	Phone   string `json:"phone"`
}

func (u User) Summary() PharmacySummary {
	return PharmacySummary{ID: u.ID, Name: u.Name, Email: u.Email, Address: u.Address, Phone: u.Phone}
}
