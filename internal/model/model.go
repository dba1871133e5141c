// Package model defines the value records exchanged between the sizing
// engine, its post-processing modules, and the outer surfaces. All records
// are immutable inputs or freshly built outputs; nothing in this package
// holds state between calls.
package model

// ProcessConditions describes one operating point. All pressures are
// absolute and all fields are expressed in the unit system chosen for the
// case (see units.System).
type ProcessConditions struct {
	InletPressure  float64 `json:"inlet_pressure" yaml:"inlet_pressure"`
	OutletPressure float64 `json:"outlet_pressure" yaml:"outlet_pressure"`
	Temperature    float64 `json:"temperature" yaml:"temperature"` // absolute (K or °R)
	FlowRate       float64 `json:"flow_rate" yaml:"flow_rate"`
}

// Drop returns the operating pressure differential P1 - P2.
func (p ProcessConditions) Drop() float64 {
	return p.InletPressure - p.OutletPressure
}

// LiquidProperties holds the fluid data needed for liquid sizing.
type LiquidProperties struct {
	Density          float64 `json:"density" yaml:"density"`
	VaporPressure    float64 `json:"vapor_pressure" yaml:"vapor_pressure"`
	CriticalPressure float64 `json:"critical_pressure" yaml:"critical_pressure"`
	Viscosity        float64 `json:"viscosity" yaml:"viscosity"` // kinematic, cSt
}

// GasProperties holds the fluid data needed for gas/vapor sizing.
type GasProperties struct {
	MolecularWeight   float64 `json:"molecular_weight" yaml:"molecular_weight"`
	SpecificHeatRatio float64 `json:"specific_heat_ratio" yaml:"specific_heat_ratio"`
	Compressibility   float64 `json:"compressibility" yaml:"compressibility"`
}

// ValveStyle selects the style-specific correction curves (Fr turbulent
// threshold, cavitation scaling exponents). Styles are a closed set; each
// style owns its own curve data rather than branching inside the formulas.
type ValveStyle int

const (
	Globe ValveStyle = iota
	Ball
	Butterfly
)

var styleNames = map[ValveStyle]string{
	Globe:     "globe",
	Ball:      "ball",
	Butterfly: "butterfly",
}

// String returns the style name used in configs, databases and reports.
func (s ValveStyle) String() string {
	if n, ok := styleNames[s]; ok {
		return n
	}
	return "unknown"
}

// ParseStyle converts a style name into a ValveStyle. Unknown names map to
// Globe, matching the most conservative correction curves.
func ParseStyle(name string) (ValveStyle, bool) {
	for s, n := range styleNames {
		if n == name {
			return s, true
		}
	}
	return Globe, false
}

// ValveGeometry describes the valve and the adjacent piping. Diameters are
// internal diameters in the length unit of the case's unit system.
type ValveGeometry struct {
	Style         ValveStyle `json:"style" yaml:"style"`
	ValveDiameter float64    `json:"valve_diameter" yaml:"valve_diameter"`
	PipeDiameter  float64    `json:"pipe_diameter" yaml:"pipe_diameter"`
	FL            float64    `json:"fl" yaml:"fl"` // liquid pressure-recovery factor
	XT            float64    `json:"xt" yaml:"xt"` // pressure-drop ratio factor
	Fd            float64    `json:"fd" yaml:"fd"` // valve style modifier
	RatedCv       float64    `json:"rated_cv,omitempty" yaml:"rated_cv,omitempty"`
}

// Warning annotates a valid result with an engineering-judgment flag.
// Warnings never abort a calculation; the numbers remain well-defined.
type Warning struct {
	Tag     string `json:"tag"`
	Message string `json:"message"`
}

// Warnings is an append-friendly warning list.
type Warnings []Warning

// Add appends a tagged warning.
func (w *Warnings) Add(tag, message string) {
	*w = append(*w, Warning{Tag: tag, Message: message})
}

// Tags returns just the tags, for compact logging.
func (w Warnings) Tags() []string {
	tags := make([]string, 0, len(w))
	for _, warning := range w {
		tags = append(tags, warning.Tag)
	}
	return tags
}
