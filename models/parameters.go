package models

import (
	"bytes"
	_ "embed"
	"math"

	"github.com/njchilds90/gobamm"
	"github.com/njchilds90/gobamm/parameters"
)

// Parameter names used by the models. The default table defines all of them.
const (
	NegativeElectrodeWidth = "Negative electrode width"
	SeparatorWidth         = "Separator width"
	PositiveElectrodeWidth = "Positive electrode width"

	ElectrodePorosity           = "Electrode porosity"
	BruggemanCoefficient        = "Bruggeman coefficient"
	DiffusionTimescaleRatio     = "Diffusion timescale ratio"
	IonsInSalt                  = "Number of ions in electrolyte salt"
	CationTransference          = "Cation transference number"
	InitialElectrolyteConc      = "Initial electrolyte concentration"
	ElectrolyteDiffusivity      = "Electrolyte diffusivity"
	DiffusionalCRate            = "Diffusional C-rate"
	InitialConcentration        = "Initial concentration"
	NegativeReactionCoefficient = "Negative electrode reaction coefficient"
	PositiveReactionCoefficient = "Positive electrode reaction coefficient"
	NegativeSurfaceVolumeChange = "Negative electrode surface volume change"
	PositiveSurfaceVolumeChange = "Positive electrode surface volume change"
	NegativeExchangeCurrent     = "Negative electrode reference exchange-current density"
	PositiveExchangeCurrent     = "Positive electrode reference exchange-current density"
	ElectrolyteMolarVolume      = "Electrolyte partial molar volume"
	WaterMolarVolume            = "Water partial molar volume"
	NegativeOCV                 = "Negative electrode OCV"
	PositiveOCV                 = "Positive electrode OCV"
	NegativeInitialPorosity     = "Negative electrode initial porosity"
	SeparatorInitialPorosity    = "Separator initial porosity"
	PositiveInitialPorosity     = "Positive electrode initial porosity"
)

//go:embed data/lead_acid.csv
var leadAcidCSV []byte

// Functions are the callables the default table refers to.
func Functions() parameters.FunctionRegistry {
	return parameters.FunctionRegistry{
		// Normalised so that D(1) = 1.
		"electrolyte_diffusivity_Gu1997": func(c ...float64) float64 {
			return (1.75 + 0.26*c[0]) / (1.75 + 0.26)
		},
		"lead_electrode_ocv_Bode1977": func(c ...float64) float64 {
			return -0.294 - 0.074*math.Log10(c[0])
		},
		"lead_dioxide_electrode_ocv_Bode1977": func(c ...float64) float64 {
			return 1.628 + 0.074*math.Log10(c[0])
		},
	}
}

// DefaultParameters returns a fresh copy of the default table with
// Functions registered.
func DefaultParameters(opts ...parameters.Option) (*parameters.Values, error) {
	entries, err := parameters.ReadCSV(bytes.NewReader(leadAcidCSV))
	if err != nil {
		return nil, err
	}
	opts = append([]parameters.Option{parameters.WithFunctions(Functions())}, opts...)
	return parameters.New(entries, opts...), nil
}

// perElectrode concatenates a parameter on each electrode with zero on the
// separator.
func perElectrode(b *gobamm.Builder, negative, positive string) gobamm.Symbol {
	return b.Concat(
		b.Parameter(negative, gobamm.NegativeElectrode),
		b.Scalar(0, gobamm.Separator),
		b.Parameter(positive, gobamm.PositiveElectrode),
	)
}

// perDomain concatenates one parameter per cell domain.
func perDomain(b *gobamm.Builder, negative, separator, positive string) gobamm.Symbol {
	return b.Concat(
		b.Parameter(negative, gobamm.NegativeElectrode),
		b.Parameter(separator, gobamm.Separator),
		b.Parameter(positive, gobamm.PositiveElectrode),
	)
}
