package migrations

import (
	"github.com/NeuralTrust/DisasterGate/pkg/infra/database"
	"gorm.io/gorm"
)

func init() {
	database.RegisterMigration(database.Migration{
		ID:   "20230801_create_metrics_table",
		Name: "Create metrics table for monitoring snapshots",

		Up: func(db *gorm.DB) error {
			return db.Exec(`
				CREATE TABLE IF NOT EXISTS metrics (
					timestamp                      TIMESTAMP,
					current_missing_count          INTEGER,
					reference_missing_count        INTEGER,
					current_text_length_mean       FLOAT,
					reference_text_length_mean     FLOAT,
					current_oov_mean               FLOAT,
					reference_oov_mean             FLOAT,
					current_non_letter_char_mean   FLOAT,
					reference_non_letter_char_mean FLOAT,
					non_letter_char_drift_score    FLOAT,
					oov_drift_score                FLOAT,
					text_length_drift_score        FLOAT,
					current_accuracy_score         FLOAT,
					reference_accuracy_score       FLOAT,
					current_precision_score        FLOAT,
					reference_precision_score      FLOAT,
					current_recall_score           FLOAT,
					reference_recall_score         FLOAT,
					current_f1_score               FLOAT,
					reference_f1_score             FLOAT
				);
			`).Error
		},

		Down: func(db *gorm.DB) error {
			return db.Exec(`DROP TABLE IF EXISTS metrics;`).Error
		},
	})
}
