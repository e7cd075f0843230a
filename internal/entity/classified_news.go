package entity

import (
	"time"

	"github.com/lib/pq"
	"gorm.io/datatypes"
)

// ClassifiedNews represents one news article with its sentiment
// classification. Articles are deduplicated by URL and shared between
// prediction summaries through the prediction_news join table.
type ClassifiedNews struct {
	ID              uint           `gorm:"primaryKey" json:"id"`
	Title           string         `gorm:"size:500;not null" json:"title"`
	URL             string         `gorm:"uniqueIndex;size:1000;not null" json:"url"`
	DateTime        time.Time      `gorm:"index;not null" json:"date_time"`
	Classification  string         `gorm:"size:20;not null" json:"classification"`
	ConfidenceScore float64        `gorm:"not null" json:"confidence_score"`
	Probabilities   datatypes.JSON `json:"probabilities"`
	KeyTopics       pq.StringArray `gorm:"type:text[]" json:"key_topics"`
	CreatedAt       time.Time      `gorm:"autoCreateTime" json:"created_at"`
}

// TableName specifies the table name for the ClassifiedNews model.
func (ClassifiedNews) TableName() string {
	return "classified_news"
}
