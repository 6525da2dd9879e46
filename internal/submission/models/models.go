package models

import (
	"time"

	"github.com/google/uuid"
)

// ObservationSchemaVersion tags persisted structured data so future extractor
// output changes stay additive.
const ObservationSchemaVersion = 1

// Status tracks a submission through intake. It only ever moves forward:
// processing -> processed or error, never backward.
type Status string

const (
	StatusProcessing Status = "processing"
	StatusProcessed  Status = "processed"
	StatusError      Status = "error"
)

// StructuredObservation is the normalized health/behaviour/environment record
// derived from one audio recording. Every field except Date is optional;
// absent fields are omitted from the rendered report rather than shown empty.
type StructuredObservation struct {
	SchemaVersion int    `json:"schema_version"`
	Date          string `json:"date_or_day"`

	AnimalObservedOnTime       *bool `json:"animal_observed_on_time,omitempty"`
	CleanDrinkingWaterProvided *bool `json:"clean_drinking_water_provided,omitempty"`
	EnclosureCleanedProperly   *bool `json:"enclosure_cleaned_properly,omitempty"`
	NormalBehaviourStatus      *bool `json:"normal_behaviour_status,omitempty"`
	FeedSupplementsAvailable   *bool `json:"feed_and_supplements_available,omitempty"`
	FeedGivenAsPrescribed      *bool `json:"feed_given_as_prescribed,omitempty"`

	NormalBehaviourDetails *string `json:"normal_behaviour_details,omitempty"`
	OtherRequirements      *string `json:"other_animal_requirements,omitempty"`
	InchargeSignature      *string `json:"incharge_signature,omitempty"`

	DailyHealthMonitoring   *string `json:"daily_animal_health_monitoring,omitempty"`
	CarnivoreFeedingChart   *string `json:"carnivorous_animal_feeding_chart,omitempty"`
	MedicineStockRegister   *string `json:"medicine_stock_register,omitempty"`
	DailyWildlifeMonitoring *string `json:"daily_wildlife_monitoring,omitempty"`
}

// Submission is one keeper-authored observation record for a specific date.
type Submission struct {
	ID              uuid.UUID              `json:"id"`
	AuthorID        uuid.UUID              `json:"authorId"`
	ObservationDate string                 `json:"date"`
	AudioRef        string                 `json:"audioRef"`
	Transcript      string                 `json:"transcript,omitempty"`
	Structured      *StructuredObservation `json:"structuredData"`
	ReportRef       string                 `json:"reportRef,omitempty"`
	Status          Status                 `json:"status"`
	CreatedAt       time.Time              `json:"createdAt"`
	UpdatedAt       time.Time              `json:"updatedAt"`
}

// Comment is an append-only reviewer note attached to a submission.
// Comments are never edited or deleted.
type Comment struct {
	ID           uuid.UUID `json:"id"`
	SubmissionID uuid.UUID `json:"submissionId"`
	AuthorID     uuid.UUID `json:"authorId"`
	AuthorName   string    `json:"authorName,omitempty"`
	Content      string    `json:"content"`
	CreatedAt    time.Time `json:"createdAt"`
}

// SubmissionDetail is a submission joined with its author display data and
// comments ordered newest-first.
type SubmissionDetail struct {
	Submission
	AuthorName  string    `json:"authorName"`
	AuthorLogin string    `json:"authorLogin"`
	Comments    []Comment `json:"comments"`
}

// BoolPtr and StringPtr keep observation literals terse in builders and tests.
func BoolPtr(v bool) *bool { return &v }

func StringPtr(v string) *string { return &v }
