package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// NewID returns a new 24-hex-character identifier. Every backend uses the
// same format so ids stay portable between stores.
func NewID() string {
	return primitive.NewObjectID().Hex()
}

// ValidID reports whether id is a well-formed identifier.
func ValidID(id string) bool {
	_, err := primitive.ObjectIDFromHex(id)
	return err == nil
}
