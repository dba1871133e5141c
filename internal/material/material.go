// Package material holds the valve body material catalog: ASME B16.34
// pressure-temperature ratings with linear interpolation, operating-point
// compliance checks, and a service-based recommendation screen including
// NACE MR0175 sour-service suitability.
package material

import (
	"sort"

	"github.com/rotisserie/eris"

	"github.com/procflow/sizer-cli/internal/model"
)

// SourRating grades a material for H2S service.
type SourRating int

const (
	SourNotSuitable SourRating = iota
	SourLimited
	SourSuitable
	SourExcellent
)

var sourNames = [...]string{"not-suitable", "limited", "suitable", "excellent"}

func (r SourRating) String() string {
	if int(r) < len(sourNames) {
		return sourNames[r]
	}
	return "unknown"
}

// ptPoint is one rung of a pressure-temperature rating table.
type ptPoint struct {
	TempC float64
	Bar   float64
}

// Grade is one body material with its rating tables.
type Grade struct {
	Code       string
	Name       string
	Category   string
	MinTempC   float64
	MaxTempC   float64
	Sour       SourRating
	CostFactor float64
	// Ratings keys are ASME pressure classes (150, 300, ...). Each table
	// is ordered by ascending temperature.
	Ratings map[int][]ptPoint
}

// ASME B16.34 Table 2 excerpts for the cast grades the valve catalog
// actually stocks.
var grades = map[string]*Grade{
	"A216-WCB": {
		Code: "A216-WCB", Name: "Carbon Steel (WCB)", Category: "carbon-steel",
		MinTempC: -29, MaxTempC: 425, Sour: SourLimited, CostFactor: 1.0,
		Ratings: map[int][]ptPoint{
			150:  pt([]float64{19.0, 17.1, 15.3, 12.4, 9.6, 7.1}),
			300:  pt([]float64{51.7, 46.2, 41.4, 33.4, 25.9, 19.3}),
			600:  pt([]float64{103.4, 92.4, 82.7, 66.9, 51.7, 38.6}),
			900:  pt([]float64{155.1, 138.6, 124.1, 100.3, 77.6, 58.0}),
			1500: pt([]float64{258.6, 231.0, 206.8, 167.2, 129.3, 96.5}),
		},
	},
	"A351-CF8M": {
		Code: "A351-CF8M", Name: "Stainless Steel 316 (CF8M)", Category: "stainless-steel",
		MinTempC: -196, MaxTempC: 815, Sour: SourSuitable, CostFactor: 3.5,
		Ratings: map[int][]ptPoint{
			150:  pt([]float64{19.0, 18.6, 18.2, 17.2, 15.5, 13.1, 10.3}),
			300:  pt([]float64{51.7, 50.3, 49.3, 46.2, 41.4, 35.2, 27.6}),
			600:  pt([]float64{103.4, 100.7, 98.6, 92.4, 82.7, 70.3, 55.2}),
			900:  pt([]float64{155.1, 151.0, 147.9, 138.6, 124.1, 105.5, 82.7}),
			1500: pt([]float64{258.6, 251.7, 246.5, 231.0, 206.8, 175.8, 138.0}),
		},
	},
	"A351-CF3M": {
		Code: "A351-CF3M", Name: "Stainless Steel 316L (CF3M)", Category: "stainless-steel",
		MinTempC: -196, MaxTempC: 815, Sour: SourSuitable, CostFactor: 4.0,
		Ratings: map[int][]ptPoint{
			150:  pt([]float64{19.0, 18.3, 17.9, 16.9, 15.2, 12.8, 10.0}),
			300:  pt([]float64{51.7, 49.6, 48.6, 45.9, 41.0, 34.5, 27.2}),
			600:  pt([]float64{103.4, 99.3, 97.2, 91.7, 82.1, 69.0, 54.5}),
			900:  pt([]float64{155.1, 148.9, 145.8, 137.6, 123.1, 103.4, 81.7}),
			1500: pt([]float64{258.6, 248.2, 243.0, 229.3, 205.2, 172.4, 136.2}),
		},
	},
	"A890-4A": {
		Code: "A890-4A", Name: "Duplex Stainless (2205)", Category: "duplex-stainless",
		MinTempC: -50, MaxTempC: 315, Sour: SourExcellent, CostFactor: 5.0,
		Ratings: map[int][]ptPoint{
			150: pt([]float64{19.0, 18.6, 18.2, 17.2, 15.5}),
			300: pt([]float64{51.7, 50.3, 49.3, 46.2, 41.4}),
			600: pt([]float64{103.4, 100.7, 98.6, 92.4, 82.7}),
		},
	},
}

// ratingTemps are the B16.34 table temperature rungs in °C.
var ratingTemps = []float64{38, 93, 149, 204, 260, 316, 371}

func pt(pressures []float64) []ptPoint {
	points := make([]ptPoint, len(pressures))
	for i, p := range pressures {
		points[i] = ptPoint{TempC: ratingTemps[i], Bar: p}
	}
	return points
}

// Lookup returns a catalog grade by code.
func Lookup(code string) (*Grade, error) {
	g, ok := grades[code]
	if !ok {
		return nil, eris.Errorf("material: unknown grade %q", code)
	}
	return g, nil
}

// Codes lists the catalog grade codes in cost order.
func Codes() []string {
	codes := make([]string, 0, len(grades))
	for code := range grades {
		codes = append(codes, code)
	}
	sort.Slice(codes, func(i, j int) bool {
		return grades[codes[i]].CostFactor < grades[codes[j]].CostFactor
	})
	return codes
}

// AllowablePressure interpolates the working pressure limit in bar for a
// grade, class, and temperature. Below the first rung the first rating
// applies; above the last rung the last rating applies up to the grade's
// temperature ceiling.
func (g *Grade) AllowablePressure(class int, tempC float64) (float64, error) {
	table, ok := g.Ratings[class]
	if !ok {
		return 0, eris.Errorf("material: class %d not rated for %s", class, g.Code)
	}
	if tempC > g.MaxTempC {
		return 0, eris.Errorf("material: %.0f C exceeds %s ceiling of %.0f C", tempC, g.Code, g.MaxTempC)
	}
	if tempC < g.MinTempC {
		return 0, eris.Errorf("material: %.0f C below %s floor of %.0f C", tempC, g.Code, g.MinTempC)
	}

	if tempC <= table[0].TempC {
		return table[0].Bar, nil
	}
	last := table[len(table)-1]
	if tempC >= last.TempC {
		return last.Bar, nil
	}
	for i := 0; i < len(table)-1; i++ {
		lo, hi := table[i], table[i+1]
		if tempC >= lo.TempC && tempC <= hi.TempC {
			frac := (tempC - lo.TempC) / (hi.TempC - lo.TempC)
			return lo.Bar + frac*(hi.Bar-lo.Bar), nil
		}
	}
	return last.Bar, nil
}

// Compliance is the result of checking an operating point against a rating.
type Compliance struct {
	Compliant         bool           `json:"compliant"`
	OperatingPressure float64        `json:"operating_pressure"`
	AllowablePressure float64        `json:"allowable_pressure"`
	SafetyMargin      float64        `json:"safety_margin"` // fraction of allowable
	DeratingFactor    float64        `json:"derating_factor"`
	Warnings          model.Warnings `json:"warnings,omitempty"`
}

// CheckRating verifies an operating pressure and temperature against a
// grade's class rating.
func (g *Grade) CheckRating(class int, pressureBar, tempC float64) (*Compliance, error) {
	allowable, err := g.AllowablePressure(class, tempC)
	if err != nil {
		return nil, err
	}
	nominal := g.Ratings[class][0].Bar

	c := &Compliance{
		Compliant:         pressureBar <= allowable,
		OperatingPressure: pressureBar,
		AllowablePressure: allowable,
		DeratingFactor:    allowable / nominal,
	}
	if allowable > 0 {
		c.SafetyMargin = (allowable - pressureBar) / allowable
	}
	if !c.Compliant {
		c.Warnings.Add("rating-exceeded", "operating pressure exceeds the B16.34 class rating; select a higher class")
	} else if c.SafetyMargin < 0.1 {
		c.Warnings.Add("rating-margin", "under 10% margin to the class rating; consider the next class up")
	}
	if tempC > g.MaxTempC*0.8 {
		c.Warnings.Add("temperature-margin", "operating near the grade's temperature ceiling")
	}
	return c, nil
}

// Candidate is one ranked recommendation.
type Candidate struct {
	Grade      *Grade  `json:"grade"`
	Score      float64 `json:"score"`
	TempMargin float64 `json:"temp_margin"` // °C to the nearer limit
}

// Recommend screens the catalog for a temperature and optional sour
// requirement and ranks the survivors, cheapest-suitable first on ties.
func Recommend(tempC float64, sour bool) []Candidate {
	var out []Candidate
	for _, code := range Codes() {
		g := grades[code]
		if tempC < g.MinTempC || tempC > g.MaxTempC {
			continue
		}
		if sour && g.Sour < SourSuitable {
			continue
		}
		margin := tempC - g.MinTempC
		if upper := g.MaxTempC - tempC; upper < margin {
			margin = upper
		}
		score := 50.0
		span := g.MaxTempC - g.MinTempC
		if span > 0 {
			score += 20 * margin / span
		}
		score += 5 * float64(g.Sour)
		score -= 2 * (g.CostFactor - 1)
		out = append(out, Candidate{Grade: g, Score: score, TempMargin: margin})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	return out
}
