package explosive

import (
	"fmt"
	"strconv"
	"strings"
)

// Industry acceptance bands for ANFO technical properties. All bounds inclusive.
const (
	anfoDensityMin = 0.8
	anfoDensityMax = 0.9

	anfoFuelOilMin        = 5.5
	anfoFuelOilMax        = 6.0
	anfoFuelOilOptimalMin = 5.7
	anfoFuelOilOptimalMax = 5.9

	anfoTempMin        = 5.0
	anfoTempMax        = 35.0
	anfoTempOptimalMin = 15.0
	anfoTempOptimalMax = 25.0

	anfoHumidityMax        = 50.0
	anfoHumidityOptimalMax = 40.0

	anfoMoistureMax     = 0.2
	anfoMoistureWarnMax = 0.1

	anfoPrillSizeMin = 1.0
	anfoPrillSizeMax = 3.0

	anfoVODMin = 3000.0
	anfoVODMax = 3500.0
)

// Industry acceptance bands for emulsion technical properties.
const (
	emulsionDensityUnsensitizedMin = 1.30
	emulsionDensityUnsensitizedMax = 1.45

	emulsionDensitySensitizedMin = 1.10
	emulsionDensitySensitizedMax = 1.30

	emulsionViscosityMin     = 50000.0
	emulsionViscosityMax     = 200000.0
	emulsionViscosityWarnMax = 150000.0

	emulsionWaterContentMin = 12.0
	emulsionWaterContentMax = 16.0

	emulsionPHMin = 4.5
	emulsionPHMax = 6.5

	emulsionTempMin = -20.0
	emulsionTempMax = 50.0

	emulsionVODMin = 4500.0
	emulsionVODMax = 6000.0

	emulsionBubbleSizeMax = 100.0

	emulsionApplicationTempMax = 60.0
)

// ValidateANFOProperties range-checks an ANFO batch's technical properties.
// Pure function: no persistence, no side effects.
func ValidateANFOProperties(p ANFOProperties) ValidationResult {
	result := newResult()

	if p.Density < anfoDensityMin || p.Density > anfoDensityMax {
		result.addError(fmt.Sprintf("density %.3f g/cm³ is outside the acceptable range %.1f-%.1f", p.Density, anfoDensityMin, anfoDensityMax))
	}

	if p.FuelOilContent < anfoFuelOilMin || p.FuelOilContent > anfoFuelOilMax {
		result.addError(fmt.Sprintf("fuel oil content %.2f%% is outside the acceptable range %.1f-%.1f", p.FuelOilContent, anfoFuelOilMin, anfoFuelOilMax))
	} else if p.FuelOilContent < anfoFuelOilOptimalMin || p.FuelOilContent > anfoFuelOilOptimalMax {
		result.addWarning(fmt.Sprintf("fuel oil content %.2f%% is outside the optimal range %.1f-%.1f", p.FuelOilContent, anfoFuelOilOptimalMin, anfoFuelOilOptimalMax))
	}

	if p.StorageTemperature < anfoTempMin || p.StorageTemperature > anfoTempMax {
		result.addError(fmt.Sprintf("storage temperature %.1f°C is outside the acceptable range %.0f-%.0f", p.StorageTemperature, anfoTempMin, anfoTempMax))
	} else if p.StorageTemperature < anfoTempOptimalMin || p.StorageTemperature > anfoTempOptimalMax {
		result.addWarning(fmt.Sprintf("storage temperature %.1f°C is outside the optimal range %.0f-%.0f", p.StorageTemperature, anfoTempOptimalMin, anfoTempOptimalMax))
	}

	if p.StorageHumidity > anfoHumidityMax {
		result.addError(fmt.Sprintf("storage humidity %.1f%% exceeds the acceptable maximum of %.0f%%", p.StorageHumidity, anfoHumidityMax))
	} else if p.StorageHumidity > anfoHumidityOptimalMax {
		result.addWarning(fmt.Sprintf("storage humidity %.1f%% exceeds the optimal maximum of %.0f%%", p.StorageHumidity, anfoHumidityOptimalMax))
	}

	if p.MoistureContent != nil {
		if *p.MoistureContent > anfoMoistureMax {
			result.addError(fmt.Sprintf("moisture content %.2f%% exceeds the acceptable maximum of %.1f%%", *p.MoistureContent, anfoMoistureMax))
		} else if *p.MoistureContent > anfoMoistureWarnMax {
			result.addWarning(fmt.Sprintf("moisture content %.2f%% exceeds the optimal maximum of %.1f%%", *p.MoistureContent, anfoMoistureWarnMax))
		}
	}

	if p.PrillSize != nil && (*p.PrillSize < anfoPrillSizeMin || *p.PrillSize > anfoPrillSizeMax) {
		result.addError(fmt.Sprintf("prill size %.2f mm is outside the acceptable range %.0f-%.0f", *p.PrillSize, anfoPrillSizeMin, anfoPrillSizeMax))
	}

	if p.DetonationVelocity != nil && (*p.DetonationVelocity < anfoVODMin || *p.DetonationVelocity > anfoVODMax) {
		result.addError(fmt.Sprintf("detonation velocity %.0f m/s is outside the acceptable range %.0f-%.0f", *p.DetonationVelocity, anfoVODMin, anfoVODMax))
	}

	return result
}

// ValidateEmulsionProperties range-checks an emulsion batch's technical properties.
func ValidateEmulsionProperties(p EmulsionProperties) ValidationResult {
	result := newResult()

	if p.DensityUnsensitized < emulsionDensityUnsensitizedMin || p.DensityUnsensitized > emulsionDensityUnsensitizedMax {
		result.addError(fmt.Sprintf("unsensitized density %.3f g/cm³ is outside the acceptable range %.2f-%.2f", p.DensityUnsensitized, emulsionDensityUnsensitizedMin, emulsionDensityUnsensitizedMax))
	}

	if p.DensitySensitized < emulsionDensitySensitizedMin || p.DensitySensitized > emulsionDensitySensitizedMax {
		result.addError(fmt.Sprintf("sensitized density %.3f g/cm³ is outside the acceptable range %.2f-%.2f", p.DensitySensitized, emulsionDensitySensitizedMin, emulsionDensitySensitizedMax))
	}

	if p.Viscosity < emulsionViscosityMin || p.Viscosity > emulsionViscosityMax {
		result.addError(fmt.Sprintf("viscosity %.0f cP is outside the acceptable range %.0f-%.0f", p.Viscosity, emulsionViscosityMin, emulsionViscosityMax))
	}
	// High viscosity complicates pumping even inside the acceptable band.
	if p.Viscosity > emulsionViscosityWarnMax {
		result.addWarning(fmt.Sprintf("viscosity %.0f cP is high; pumping and loading may be impaired above %.0f", p.Viscosity, emulsionViscosityWarnMax))
	}

	if p.WaterContent < emulsionWaterContentMin || p.WaterContent > emulsionWaterContentMax {
		result.addError(fmt.Sprintf("water content %.1f%% is outside the acceptable range %.0f-%.0f", p.WaterContent, emulsionWaterContentMin, emulsionWaterContentMax))
	}

	if p.PH < emulsionPHMin || p.PH > emulsionPHMax {
		result.addError(fmt.Sprintf("pH %.2f is outside the acceptable range %.1f-%.1f", p.PH, emulsionPHMin, emulsionPHMax))
	}

	if p.StorageTemperature < emulsionTempMin || p.StorageTemperature > emulsionTempMax {
		result.addError(fmt.Sprintf("storage temperature %.1f°C is outside the acceptable range %.0f-%.0f", p.StorageTemperature, emulsionTempMin, emulsionTempMax))
	}

	if p.DetonationVelocity != nil && (*p.DetonationVelocity < emulsionVODMin || *p.DetonationVelocity > emulsionVODMax) {
		result.addError(fmt.Sprintf("detonation velocity %.0f m/s is outside the acceptable range %.0f-%.0f", *p.DetonationVelocity, emulsionVODMin, emulsionVODMax))
	}

	if p.BubbleSize != nil && *p.BubbleSize > emulsionBubbleSizeMax {
		result.addWarning(fmt.Sprintf("bubble size %.0f µm exceeds %.0f µm; sensitization may be uneven", *p.BubbleSize, emulsionBubbleSizeMax))
	}

	if p.ApplicationTemperature != nil && *p.ApplicationTemperature > emulsionApplicationTempMax {
		result.addError(fmt.Sprintf("application temperature %.1f°C exceeds the acceptable maximum of %.0f°C", *p.ApplicationTemperature, emulsionApplicationTempMax))
	}

	// Stability flags are hard failures: a separated or crystallized emulsion
	// cannot be sensitized reliably.
	if p.PhaseSeparation {
		result.addError("phase separation detected; batch is unstable")
	}
	if p.Crystallization {
		result.addError("crystallization detected; batch is unstable")
	}
	if !p.ColorConsistency {
		result.addWarning("color is inconsistent; verify oxidizer blend uniformity")
	}

	return result
}

// batchIDPrefixes maps explosive type to the required batch id prefix.
var batchIDPrefixes = map[Type]string{
	TypeANFO:     "ANFO",
	TypeEmulsion: "EMU",
}

// ValidateBatchID enforces the {PREFIX}-{YYYY}-{NNN} batch id format, where the
// prefix matches the explosive type, the year is 2000-2100 and the sequence is
// exactly three digits.
func ValidateBatchID(batchID string, explosiveType Type) error {
	prefix, ok := batchIDPrefixes[explosiveType]
	if !ok {
		return fmt.Errorf("unknown explosive type %q", explosiveType)
	}

	parts := strings.Split(batchID, "-")
	if len(parts) != 3 {
		return fmt.Errorf("batch id %q must have the form %s-YYYY-NNN", batchID, prefix)
	}
	if parts[0] != prefix {
		return fmt.Errorf("batch id %q must start with %q for %s batches", batchID, prefix, explosiveType)
	}

	if len(parts[1]) != 4 {
		return fmt.Errorf("batch id %q year must be four digits", batchID)
	}
	year, err := strconv.Atoi(parts[1])
	if err != nil || year < 2000 || year > 2100 {
		return fmt.Errorf("batch id %q year must be between 2000 and 2100", batchID)
	}

	if len(parts[2]) != 3 {
		return fmt.Errorf("batch id %q sequence must be exactly three digits", batchID)
	}
	if _, err := strconv.Atoi(parts[2]); err != nil {
		return fmt.Errorf("batch id %q sequence must be numeric", batchID)
	}

	return nil
}
