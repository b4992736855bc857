package domain

import (
	"time"
)

type ReasonCategory string

const (
	ReasonCategoryOther                 ReasonCategory = "other"
	ReasonCategoryDiscrimination        ReasonCategory = "discrimination_etc"
	ReasonCategoryPornography           ReasonCategory = "pornographic_content_links"
	ReasonCategoryGlorification         ReasonCategory = "glorific_trivia_of_cruel_inhuman_acts"
	ReasonCategoryDoxing                ReasonCategory = "doxing"
	ReasonCategoryIntentionalIntimidate ReasonCategory = "intentional_intimidation_stalking_persecution"
	ReasonCategoryAdvertising           ReasonCategory = "advert_products_services_commercial"
	ReasonCategoryCriminal              ReasonCategory = "criminal_behavior_violation_german_law"
)

type Report struct {
	ReporterID        string         `json:"-" db:"reporter_id"`
	ResourceKind      EntityKind     `json:"resourceKind" db:"resource_kind"`
	ResourceID        string         `json:"resourceId" db:"resource_id"`
	ReasonCategory    ReasonCategory `json:"reasonCategory" db:"reason_category"`
	ReasonDescription string         `json:"reasonDescription" db:"reason_description"`
	CreatedAt         time.Time      `json:"createdAt" db:"created_at"`
}

type ReportInput struct {
	ResourceID        string         `json:"resourceId" validate:"required"`
	ReasonCategory    ReasonCategory `json:"reasonCategory" validate:"required,oneof=other discrimination_etc pornographic_content_links glorific_trivia_of_cruel_inhuman_acts doxing intentional_intimidation_stalking_persecution advert_products_services_commercial criminal_behavior_violation_german_law"`
	ReasonDescription string         `json:"reasonDescription" validate:"max=200"`
}

// ModerationTarget is the resource a moderator disables or releases.
type ModerationTarget struct {
	Kind EntityKind
	ID   string
}
