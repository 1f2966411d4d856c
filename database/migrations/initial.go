package migrations

import (
	"gorm.io/gorm"

	"github.com/shashiranjanraj/medcart/app/models"
	"github.com/shashiranjanraj/medcart/pkg/migration"
)

func init() {
	migration.Register("20260101000000_create_users_table", &createTable{model: &models.User{}, table: "users"})
	migration.Register("20260101000001_create_products_table", &createTable{model: &models.Product{}, table: "products"})
	migration.Register("20260101000002_create_purchases_table", &createTable{model: &models.Purchase{}, table: "purchases"})
	migration.Register("20260101000003_create_prescriptions_table", &createTable{model: &models.Prescription{}, table: "prescriptions"})
}

// createTable migrates one model's table.
type createTable struct {
	model interface{}
	table string
}

func (m *createTable) Up(db *gorm.DB) error {
	return db.AutoMigrate(m.model)
}

func (m *createTable) Down(db *gorm.DB) error {
	return db.Migrator().DropTable(m.table)
}
