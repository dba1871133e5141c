// Package valvedb persists the valve catalog and the fluid property
// library. Two backends implement Store: an embedded SQLite file for
// single-user work and PostgreSQL for shared catalogs.
package valvedb

import (
	"context"
	"time"

	"github.com/procflow/sizer-cli/internal/model"
)

// Valve is one catalog trim: a manufacturer model at a body size with its
// sizing coefficients.
type Valve struct {
	ID           string           `json:"id"`
	Manufacturer string           `json:"manufacturer"`
	Series       string           `json:"series"`
	Style        model.ValveStyle `json:"style"`
	NominalSize  string           `json:"nominal_size"` // NPS label, e.g. `2"`
	RatedCv      float64          `json:"rated_cv"`
	FL           float64          `json:"fl"`
	XT           float64          `json:"xt"`
	Fd           float64          `json:"fd"`
	Rangeability float64          `json:"rangeability"` // inherent, e.g. 50 for 50:1
	CreatedAt    time.Time        `json:"created_at"`
}

// LiquidFluid is a library liquid with properties at its typical service
// temperature.
type LiquidFluid struct {
	Name             string  `json:"name"`
	Category         string  `json:"category"`
	Density          float64 `json:"density"`           // kg/m³
	VaporPressure    float64 `json:"vapor_pressure"`    // bar abs
	CriticalPressure float64 `json:"critical_pressure"` // bar abs
	Viscosity        float64 `json:"viscosity"`         // cSt
	TypicalTempC     float64 `json:"typical_temp_c"`
}

// GasFluid is a library gas.
type GasFluid struct {
	Name            string  `json:"name"`
	Category        string  `json:"category"`
	MolecularWeight float64 `json:"molecular_weight"`
	SpecificHeat    float64 `json:"specific_heat_ratio"`
	Compressibility float64 `json:"compressibility"`
	TypicalTempC    float64 `json:"typical_temp_c"`
}

// ValveFilter narrows a catalog listing.
type ValveFilter struct {
	Style       string  `json:"style,omitempty"`
	NominalSize string  `json:"nominal_size,omitempty"`
	MinCv       float64 `json:"min_cv,omitempty"`
	Limit       int     `json:"limit,omitempty"`
}

// Store is the persistence interface for the catalog.
type Store interface {
	// Valves
	PutValve(ctx context.Context, v Valve) (*Valve, error)
	GetValve(ctx context.Context, id string) (*Valve, error)
	ListValves(ctx context.Context, filter ValveFilter) ([]Valve, error)
	DeleteValve(ctx context.Context, id string) error

	// Fluid library
	PutLiquid(ctx context.Context, f LiquidFluid) error
	GetLiquid(ctx context.Context, name string) (*LiquidFluid, error)
	ListLiquids(ctx context.Context) ([]LiquidFluid, error)
	PutGas(ctx context.Context, f GasFluid) error
	GetGas(ctx context.Context, name string) (*GasFluid, error)
	ListGases(ctx context.Context) ([]GasFluid, error)

	// Lifecycle
	Migrate(ctx context.Context) error
	Seed(ctx context.Context) error
	Close() error
}

// Geometry converts a catalog valve plus pipe data into sizing geometry.
func (v Valve) Geometry(valveDiameter, pipeDiameter float64) model.ValveGeometry {
	return model.ValveGeometry{
		Style:         v.Style,
		ValveDiameter: valveDiameter,
		PipeDiameter:  pipeDiameter,
		FL:            v.FL,
		XT:            v.XT,
		Fd:            v.Fd,
		RatedCv:       v.RatedCv,
	}
}

// seedValves is the starter catalog: typical coefficients per style and
// body size.
var seedValves = []Valve{
	{Manufacturer: "Procflow", Series: "G100", Style: model.Globe, NominalSize: `1"`, RatedCv: 12, FL: 0.90, XT: 0.75, Fd: 1.0, Rangeability: 50},
	{Manufacturer: "Procflow", Series: "G100", Style: model.Globe, NominalSize: `2"`, RatedCv: 46, FL: 0.90, XT: 0.75, Fd: 1.0, Rangeability: 50},
	{Manufacturer: "Procflow", Series: "G100", Style: model.Globe, NominalSize: `3"`, RatedCv: 110, FL: 0.90, XT: 0.75, Fd: 1.0, Rangeability: 50},
	{Manufacturer: "Procflow", Series: "G100", Style: model.Globe, NominalSize: `4"`, RatedCv: 195, FL: 0.90, XT: 0.75, Fd: 1.0, Rangeability: 50},
	{Manufacturer: "Procflow", Series: "G100", Style: model.Globe, NominalSize: `6"`, RatedCv: 450, FL: 0.90, XT: 0.75, Fd: 1.0, Rangeability: 50},
	{Manufacturer: "Procflow", Series: "B300", Style: model.Ball, NominalSize: `2"`, RatedCv: 105, FL: 0.60, XT: 0.15, Fd: 1.0, Rangeability: 150},
	{Manufacturer: "Procflow", Series: "B300", Style: model.Ball, NominalSize: `4"`, RatedCv: 420, FL: 0.60, XT: 0.15, Fd: 1.0, Rangeability: 150},
	{Manufacturer: "Procflow", Series: "B300", Style: model.Ball, NominalSize: `6"`, RatedCv: 950, FL: 0.60, XT: 0.15, Fd: 1.0, Rangeability: 150},
	{Manufacturer: "Procflow", Series: "F700", Style: model.Butterfly, NominalSize: `4"`, RatedCv: 520, FL: 0.50, XT: 0.30, Fd: 0.8, Rangeability: 20},
	{Manufacturer: "Procflow", Series: "F700", Style: model.Butterfly, NominalSize: `6"`, RatedCv: 1200, FL: 0.50, XT: 0.30, Fd: 0.8, Rangeability: 20},
	{Manufacturer: "Procflow", Series: "F700", Style: model.Butterfly, NominalSize: `8"`, RatedCv: 2100, FL: 0.50, XT: 0.30, Fd: 0.8, Rangeability: 20},
}

var seedLiquids = []LiquidFluid{
	{Name: "water", Category: "aqueous", Density: 998.0, VaporPressure: 0.032, CriticalPressure: 221.2, Viscosity: 1.0, TypicalTempC: 25},
	{Name: "light-oil", Category: "hydrocarbon", Density: 850.0, VaporPressure: 0.1, CriticalPressure: 25.0, Viscosity: 5.0, TypicalTempC: 40},
	{Name: "glycol-50", Category: "aqueous", Density: 1070.0, VaporPressure: 0.02, CriticalPressure: 77.0, Viscosity: 4.8, TypicalTempC: 25},
	{Name: "condensate", Category: "hydrocarbon", Density: 700.0, VaporPressure: 0.9, CriticalPressure: 34.0, Viscosity: 0.6, TypicalTempC: 40},
}

var seedGases = []GasFluid{
	{Name: "air", Category: "inert", MolecularWeight: 28.97, SpecificHeat: 1.40, Compressibility: 1.00, TypicalTempC: 25},
	{Name: "natural-gas", Category: "fuel-gas", MolecularWeight: 17.5, SpecificHeat: 1.27, Compressibility: 0.95, TypicalTempC: 25},
	{Name: "nitrogen", Category: "inert", MolecularWeight: 28.01, SpecificHeat: 1.40, Compressibility: 1.00, TypicalTempC: 25},
	{Name: "steam", Category: "vapor", MolecularWeight: 18.02, SpecificHeat: 1.33, Compressibility: 0.96, TypicalTempC: 180},
	{Name: "co2", Category: "acid-gas", MolecularWeight: 44.01, SpecificHeat: 1.29, Compressibility: 0.99, TypicalTempC: 25},
}
