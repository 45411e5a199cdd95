package migrations

import (
	"github.com/NeuralTrust/DisasterGate/pkg/infra/database"
	"gorm.io/gorm"
)

func init() {
	database.RegisterMigration(database.Migration{
		ID:   "20231015_add_metrics_run_id",
		Name: "Record the model run that produced each metrics row",

		Up: func(db *gorm.DB) error {
			if err := db.Exec(`ALTER TABLE metrics ADD COLUMN IF NOT EXISTS run_id TEXT;`).Error; err != nil {
				return err
			}
			return db.Exec(`CREATE INDEX IF NOT EXISTS idx_metrics_timestamp ON metrics (timestamp);`).Error
		},

		Down: func(db *gorm.DB) error {
			if err := db.Exec(`DROP INDEX IF EXISTS idx_metrics_timestamp;`).Error; err != nil {
				return err
			}
			return db.Exec(`ALTER TABLE metrics DROP COLUMN IF EXISTS run_id;`).Error
		},
	})
}
