package explosive

import (
	"time"

	"github.com/google/uuid"
)

// Type identifies the explosive product family a batch belongs to.
type Type string

const (
	TypeANFO     Type = "ANFO"
	TypeEmulsion Type = "EMULSION"
)

// QualityStatus is the QA verdict recorded against a batch's technical properties.
type QualityStatus string

const (
	QualityApproved QualityStatus = "APPROVED"
	QualityPending  QualityStatus = "PENDING"
	QualityRejected QualityStatus = "REJECTED"
)

// ANFOProperties holds the chemical/physical parameters of an ANFO batch.
// Optional measurements are pointers so "not measured" stays distinguishable
// from a zero reading.
type ANFOProperties struct {
	ID                 uuid.UUID     `json:"id"`
	BatchID            uuid.UUID     `json:"batch_id"`
	Density            float64       `json:"density"`              // g/cm³
	FuelOilContent     float64       `json:"fuel_oil_content"`     // %
	StorageTemperature float64       `json:"storage_temperature"`  // °C
	StorageHumidity    float64       `json:"storage_humidity"`     // %
	MoistureContent    *float64      `json:"moisture_content,omitempty"` // %
	PrillSize          *float64      `json:"prill_size,omitempty"`       // mm
	DetonationVelocity *float64      `json:"detonation_velocity,omitempty"` // m/s
	QualityStatus      QualityStatus `json:"quality_status"`
	CreatedAt          time.Time     `json:"created_at"`
	UpdatedAt          time.Time     `json:"updated_at"`
}

// EmulsionProperties holds the chemical/physical parameters of an emulsion batch.
type EmulsionProperties struct {
	ID                     uuid.UUID     `json:"id"`
	BatchID                uuid.UUID     `json:"batch_id"`
	DensityUnsensitized    float64       `json:"density_unsensitized"` // g/cm³
	DensitySensitized      float64       `json:"density_sensitized"`   // g/cm³
	Viscosity              float64       `json:"viscosity"`            // cP
	WaterContent           float64       `json:"water_content"`        // %
	PH                     float64       `json:"ph"`
	StorageTemperature     float64       `json:"storage_temperature"` // °C
	DetonationVelocity     *float64      `json:"detonation_velocity,omitempty"`     // m/s
	BubbleSize             *float64      `json:"bubble_size,omitempty"`             // µm
	ApplicationTemperature *float64      `json:"application_temperature,omitempty"` // °C
	PhaseSeparation        bool          `json:"phase_separation"`
	Crystallization        bool          `json:"crystallization"`
	ColorConsistency       bool          `json:"color_consistency"`
	QualityStatus          QualityStatus `json:"quality_status"`
	CreatedAt              time.Time     `json:"created_at"`
	UpdatedAt              time.Time     `json:"updated_at"`
}

// ValidationResult is the outcome of a technical-property check. Errors block
// approval; warnings are informational and never block on their own.
type ValidationResult struct {
	IsValid  bool     `json:"is_valid"`
	Errors   []string `json:"errors"`
	Warnings []string `json:"warnings"`
}

func (r *ValidationResult) addError(msg string) {
	r.Errors = append(r.Errors, msg)
	r.IsValid = false
}

func (r *ValidationResult) addWarning(msg string) {
	r.Warnings = append(r.Warnings, msg)
}

func newResult() ValidationResult {
	return ValidationResult{IsValid: true}
}
