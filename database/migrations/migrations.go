// Package migrations holds the schema for every backend: versioned gorm
// migrations for the SQL drivers (registered from init) and the index set
// for MongoDB.
package migrations
