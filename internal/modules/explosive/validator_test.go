package explosive

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func f(v float64) *float64 { return &v }

func goodANFO() ANFOProperties {
	return ANFOProperties{
		Density:            0.85,
		FuelOilContent:     5.8,
		StorageTemperature: 20,
		StorageHumidity:    35,
	}
}

func goodEmulsion() EmulsionProperties {
	return EmulsionProperties{
		DensityUnsensitized: 1.35,
		DensitySensitized:   1.20,
		Viscosity:           100000,
		WaterContent:        14,
		PH:                  5.5,
		StorageTemperature:  25,
		ColorConsistency:    true,
	}
}

func TestValidateANFOPropertiesAccepted(t *testing.T) {
	result := ValidateANFOProperties(goodANFO())
	assert.True(t, result.IsValid)
	assert.Empty(t, result.Errors)
	assert.Empty(t, result.Warnings)
}

func TestValidateANFODensityBoundsInclusive(t *testing.T) {
	for _, density := range []float64{0.8, 0.9} {
		p := goodANFO()
		p.Density = density
		result := ValidateANFOProperties(p)
		assert.True(t, result.IsValid, "density %.2f should be acceptable", density)
	}

	for _, density := range []float64{0.799, 0.901} {
		p := goodANFO()
		p.Density = density
		result := ValidateANFOProperties(p)
		assert.False(t, result.IsValid, "density %.3f should be rejected", density)
	}
}

func TestValidateANFOFuelOilOptimalBand(t *testing.T) {
	p := goodANFO()
	p.FuelOilContent = 5.6 // acceptable but below optimal
	result := ValidateANFOProperties(p)

	assert.True(t, result.IsValid)
	require.Len(t, result.Warnings, 1)
	assert.Contains(t, result.Warnings[0], "optimal range")
}

func TestValidateANFOMoistureContent(t *testing.T) {
	p := goodANFO()
	p.MoistureContent = f(0.15)
	result := ValidateANFOProperties(p)
	assert.True(t, result.IsValid)
	assert.Len(t, result.Warnings, 1)

	p.MoistureContent = f(0.25)
	result = ValidateANFOProperties(p)
	assert.False(t, result.IsValid)
}

func TestValidateANFOOptionalFieldsSkippedWhenNil(t *testing.T) {
	p := goodANFO()
	p.MoistureContent = nil
	p.PrillSize = nil
	p.DetonationVelocity = nil

	result := ValidateANFOProperties(p)
	assert.True(t, result.IsValid)
}

func TestValidateANFOCollectsAllErrors(t *testing.T) {
	p := ANFOProperties{
		Density:            0.5,
		FuelOilContent:     7.0,
		StorageTemperature: 40,
		StorageHumidity:    60,
		DetonationVelocity: f(2500),
	}
	result := ValidateANFOProperties(p)

	assert.False(t, result.IsValid)
	assert.Len(t, result.Errors, 5)
}

func TestValidateEmulsionPropertiesAccepted(t *testing.T) {
	result := ValidateEmulsionProperties(goodEmulsion())
	assert.True(t, result.IsValid)
	assert.Empty(t, result.Errors)
	assert.Empty(t, result.Warnings)
}

func TestValidateEmulsionHighViscosityWarnsInsideAcceptableBand(t *testing.T) {
	p := goodEmulsion()
	p.Viscosity = 160000 // valid but above the pumping comfort threshold

	result := ValidateEmulsionProperties(p)
	assert.True(t, result.IsValid)
	assert.Empty(t, result.Errors)
	require.Len(t, result.Warnings, 1)
	assert.Contains(t, result.Warnings[0], "viscosity")
}

func TestValidateEmulsionViscosityOutOfRangeErrorsAndWarns(t *testing.T) {
	p := goodEmulsion()
	p.Viscosity = 250000

	result := ValidateEmulsionProperties(p)
	assert.False(t, result.IsValid)
	assert.Len(t, result.Errors, 1)
	// The pumping warning fires regardless of the range error.
	assert.Len(t, result.Warnings, 1)
}

func TestValidateEmulsionStabilityFlags(t *testing.T) {
	p := goodEmulsion()
	p.PhaseSeparation = true
	p.Crystallization = true
	p.ColorConsistency = false

	result := ValidateEmulsionProperties(p)
	assert.False(t, result.IsValid)
	assert.Len(t, result.Errors, 2)
	assert.Len(t, result.Warnings, 1)
}

func TestValidateEmulsionNegativeStorageTemperatureAllowed(t *testing.T) {
	p := goodEmulsion()
	p.StorageTemperature = -10

	result := ValidateEmulsionProperties(p)
	assert.True(t, result.IsValid)
}

func TestValidateBatchID(t *testing.T) {
	tests := []struct {
		name    string
		batchID string
		expType Type
		wantErr bool
	}{
		{"valid anfo", "ANFO-2024-001", TypeANFO, false},
		{"valid emulsion", "EMU-2025-042", TypeEmulsion, false},
		{"wrong prefix for type", "ANFO-2024-001", TypeEmulsion, true},
		{"lowercase prefix", "anfo-2024-001", TypeANFO, true},
		{"missing segment", "ANFO-2024", TypeANFO, true},
		{"year too early", "ANFO-1999-001", TypeANFO, true},
		{"year too late", "ANFO-2101-001", TypeANFO, true},
		{"year not numeric", "ANFO-20XX-001", TypeANFO, true},
		{"sequence too short", "ANFO-2024-01", TypeANFO, true},
		{"sequence too long", "ANFO-2024-0001", TypeANFO, true},
		{"sequence not numeric", "ANFO-2024-A01", TypeANFO, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateBatchID(tt.batchID, tt.expType)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
