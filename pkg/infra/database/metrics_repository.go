package database

import (
	"context"
	"fmt"
	"time"
)

// MetricsRow is one monitoring snapshot, one per processed chunk.
type MetricsRow struct {
	Timestamp                  time.Time `gorm:"column:timestamp"`
	RunID                      string    `gorm:"column:run_id"`
	CurrentMissingCount        int       `gorm:"column:current_missing_count"`
	ReferenceMissingCount      int       `gorm:"column:reference_missing_count"`
	CurrentTextLengthMean      float64   `gorm:"column:current_text_length_mean"`
	ReferenceTextLengthMean    float64   `gorm:"column:reference_text_length_mean"`
	CurrentOOVMean             float64   `gorm:"column:current_oov_mean"`
	ReferenceOOVMean           float64   `gorm:"column:reference_oov_mean"`
	CurrentNonLetterCharMean   float64   `gorm:"column:current_non_letter_char_mean"`
	ReferenceNonLetterCharMean float64   `gorm:"column:reference_non_letter_char_mean"`
	NonLetterCharDriftScore    float64   `gorm:"column:non_letter_char_drift_score"`
	OOVDriftScore              float64   `gorm:"column:oov_drift_score"`
	TextLengthDriftScore       float64   `gorm:"column:text_length_drift_score"`
	CurrentAccuracyScore       float64   `gorm:"column:current_accuracy_score"`
	ReferenceAccuracyScore     float64   `gorm:"column:reference_accuracy_score"`
	CurrentPrecisionScore      float64   `gorm:"column:current_precision_score"`
	ReferencePrecisionScore    float64   `gorm:"column:reference_precision_score"`
	CurrentRecallScore         float64   `gorm:"column:current_recall_score"`
	ReferenceRecallScore       float64   `gorm:"column:reference_recall_score"`
	CurrentF1Score             float64   `gorm:"column:current_f1_score"`
	ReferenceF1Score           float64   `gorm:"column:reference_f1_score"`
}

func (MetricsRow) TableName() string {
	return "metrics"
}

type MetricsRepository interface {
	Insert(ctx context.Context, row *MetricsRow) error
}

type metricsRepository struct {
	db *DB
}

func NewMetricsRepository(db *DB) MetricsRepository {
	return &metricsRepository{db: db}
}

func (r *metricsRepository) Insert(ctx context.Context, row *MetricsRow) error {
	if err := r.db.WithContext(ctx).Create(row).Error; err != nil {
		return fmt.Errorf("insert metrics row: %w", err)
	}
	return nil
}
