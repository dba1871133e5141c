// Package report renders sizing results as deliverables: an XLSX valve
// datasheet and a plain-text summary for the terminal. Each datasheet gets
// a unique case ID so revisions can be traced.
package report

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/procflow/sizer-cli/internal/cavitation"
	"github.com/procflow/sizer-cli/internal/model"
	"github.com/procflow/sizer-cli/internal/noise"
	"github.com/procflow/sizer-cli/internal/sizing"
	"github.com/procflow/sizer-cli/internal/units"
)

// Datasheet collects everything one valve case produced. Nil sections are
// omitted from the output.
type Datasheet struct {
	CaseID     string
	Project    string
	TagNumber  string
	System     units.System
	Proc       model.ProcessConditions
	Valve      model.ValveGeometry
	Liquid     *sizing.LiquidResult
	Gas        *sizing.GasResult
	Cavitation *cavitation.Assessment
	Noise      *noise.Result
	Generated  time.Time
}

// NewDatasheet stamps a case with an ID and timestamp.
func NewDatasheet(project, tag string, sys units.System) *Datasheet {
	return &Datasheet{
		CaseID:    uuid.New().String(),
		Project:   project,
		TagNumber: tag,
		System:    sys,
		Generated: time.Now().UTC(),
	}
}

// unit labels per system, keyed by quantity.
func (d *Datasheet) unit(quantity string) string {
	metric := d.System == units.Metric
	switch quantity {
	case "pressure":
		if metric {
			return "bar a"
		}
		return "psi a"
	case "flow":
		if metric {
			return "m3/h"
		}
		return "gpm"
	case "temperature":
		if metric {
			return "K"
		}
		return "R"
	}
	return ""
}

// WriteXLSX renders the datasheet workbook to path.
func (d *Datasheet) WriteXLSX(path string) error {
	f := xlsx.NewFile()
	sheet, err := f.AddSheet("Datasheet")
	if err != nil {
		return eris.Wrap(err, "report: add sheet")
	}

	addTitle(sheet, "CONTROL VALVE DATASHEET")
	addPair(sheet, "Case ID", d.CaseID)
	addPair(sheet, "Project", d.Project)
	addPair(sheet, "Tag Number", d.TagNumber)
	addPair(sheet, "Generated", d.Generated.Format(time.RFC3339))
	addBlank(sheet)

	addTitle(sheet, "1. PROCESS CONDITIONS")
	addNum(sheet, "Inlet Pressure ("+d.unit("pressure")+")", d.Proc.InletPressure)
	addNum(sheet, "Outlet Pressure ("+d.unit("pressure")+")", d.Proc.OutletPressure)
	addNum(sheet, "Pressure Drop ("+d.unit("pressure")+")", d.Proc.Drop())
	addNum(sheet, "Temperature ("+d.unit("temperature")+")", d.Proc.Temperature)
	addNum(sheet, "Flow Rate ("+d.unit("flow")+")", d.Proc.FlowRate)
	addBlank(sheet)

	addTitle(sheet, "2. VALVE SELECTION")
	addPair(sheet, "Style", d.Valve.Style.String())
	addNum(sheet, "Valve Diameter (mm)", d.Valve.ValveDiameter)
	addNum(sheet, "Pipe Diameter (mm)", d.Valve.PipeDiameter)
	addNum(sheet, "FL", d.Valve.FL)
	addNum(sheet, "xT", d.Valve.XT)
	addNum(sheet, "Fd", d.Valve.Fd)
	if d.Valve.RatedCv > 0 {
		addNum(sheet, "Rated Cv", d.Valve.RatedCv)
	}
	addBlank(sheet)

	if d.Liquid != nil {
		addTitle(sheet, "3. LIQUID SIZING (ISA 75.01)")
		addNum(sheet, "Required Cv", d.Liquid.CvRequired)
		addNum(sheet, "Basic Cv", d.Liquid.CvBasic)
		addNum(sheet, "Piping Factor Fp", d.Liquid.Fp)
		addNum(sheet, "Reynolds Factor Fr", d.Liquid.Reynolds.Fr)
		addPair(sheet, "Flow Regime", string(d.Liquid.Regime))
		addNum(sheet, "Allowable Drop", d.Liquid.AllowableDrop)
		if d.Liquid.OpeningPercent > 0 {
			addNum(sheet, "Opening (%)", d.Liquid.OpeningPercent)
		}
		addWarnings(sheet, d.Liquid.Warnings)
		addBlank(sheet)
	}

	if d.Gas != nil {
		addTitle(sheet, "3. GAS SIZING (ISA 75.01)")
		addNum(sheet, "Required Cv", d.Gas.CvRequired)
		addNum(sheet, "Pressure Drop Ratio x", d.Gas.X)
		addNum(sheet, "Effective xT", d.Gas.XTEff)
		addNum(sheet, "Expansion Factor Y", d.Gas.Y)
		addNum(sheet, "Piping Factor Fp", d.Gas.Fp)
		addPair(sheet, "Flow Regime", string(d.Gas.Regime))
		if d.Gas.MachNumber > 0 {
			addNum(sheet, "Outlet Mach", d.Gas.MachNumber)
		}
		addWarnings(sheet, d.Gas.Warnings)
		addBlank(sheet)
	}

	if d.Cavitation != nil {
		addTitle(sheet, "4. CAVITATION (ISA RP75.23)")
		addNum(sheet, "Service Sigma", d.Cavitation.SigmaService)
		addPair(sheet, "Severity", d.Cavitation.LevelName)
		addNum(sheet, "Margin", d.Cavitation.Margin)
		addPair(sheet, "Mitigation", d.Cavitation.Mitigation)
		addWarnings(sheet, d.Cavitation.Warnings)
		addBlank(sheet)
	}

	if d.Noise != nil {
		addTitle(sheet, "5. NOISE (IEC 60534-8-3)")
		addNum(sheet, "Sound Power Lw (dB)", d.Noise.SoundPower)
		addNum(sheet, "Transmission Loss (dB)", d.Noise.TransmissionLoss)
		addNum(sheet, "SPL at 1 m (dBA)", d.Noise.SPL1m)
		addNum(sheet, fmt.Sprintf("SPL at %.0f m (dBA)", d.Noise.Distance), d.Noise.SPLAtDistance)
		addPair(sheet, "Assessment", d.Noise.Assessment)
		addWarnings(sheet, d.Noise.Warnings)
	}

	return eris.Wrapf(f.Save(path), "report: save %s", path)
}

// WriteText renders a terminal summary. Numbers use English group
// separators so large Cv and flow values stay readable.
func (d *Datasheet) WriteText(w io.Writer) error {
	p := message.NewPrinter(language.English)

	var b strings.Builder
	line := func(format string, args ...any) {
		b.WriteString(p.Sprintf(format, args...))
		b.WriteByte('\n')
	}

	line("Control Valve Datasheet  %s", d.CaseID)
	if d.Project != "" {
		line("Project: %s   Tag: %s", d.Project, d.TagNumber)
	}
	line("")
	line("Process:  P1 %.2f  P2 %.2f  dP %.2f %s   Q %.1f %s",
		d.Proc.InletPressure, d.Proc.OutletPressure, d.Proc.Drop(), d.unit("pressure"),
		d.Proc.FlowRate, d.unit("flow"))
	line("Valve:    %s  FL %.2f  xT %.2f  Fd %.2f", d.Valve.Style, d.Valve.FL, d.Valve.XT, d.Valve.Fd)

	if d.Liquid != nil {
		line("")
		line("Liquid sizing:  Cv %.1f  (basic %.1f, Fp %.3f, Fr %.3f)  regime %s",
			d.Liquid.CvRequired, d.Liquid.CvBasic, d.Liquid.Fp, d.Liquid.Reynolds.Fr, d.Liquid.Regime)
		if d.Liquid.OpeningPercent > 0 {
			line("Opening:        %.0f%% of rated Cv", d.Liquid.OpeningPercent)
		}
		writeWarnings(&b, p, d.Liquid.Warnings)
	}
	if d.Gas != nil {
		line("")
		line("Gas sizing:     Cv %.1f  (x %.3f, xT_eff %.3f, Y %.3f)  regime %s",
			d.Gas.CvRequired, d.Gas.X, d.Gas.XTEff, d.Gas.Y, d.Gas.Regime)
		writeWarnings(&b, p, d.Gas.Warnings)
	}
	if d.Cavitation != nil {
		line("")
		line("Cavitation:     sigma %.2f  severity %s  margin %.2f  mitigation %s",
			d.Cavitation.SigmaService, d.Cavitation.LevelName, d.Cavitation.Margin, d.Cavitation.Mitigation)
		writeWarnings(&b, p, d.Cavitation.Warnings)
	}
	if d.Noise != nil {
		line("")
		line("Noise:          Lw %.1f dB  TL %.1f dB  SPL@%.0fm %.1f dBA  [%s]",
			d.Noise.SoundPower, d.Noise.TransmissionLoss, d.Noise.Distance, d.Noise.SPLAtDistance, d.Noise.Assessment)
		writeWarnings(&b, p, d.Noise.Warnings)
	}

	_, err := io.WriteString(w, b.String())
	return eris.Wrap(err, "report: write text")
}

func writeWarnings(b *strings.Builder, p *message.Printer, warnings model.Warnings) {
	for _, w := range warnings {
		b.WriteString(p.Sprintf("  ! %s: %s\n", w.Tag, w.Message))
	}
}

// sheet helpers

func addTitle(sheet *xlsx.Sheet, title string) {
	row := sheet.AddRow()
	cell := row.AddCell()
	cell.SetString(title)
}

func addPair(sheet *xlsx.Sheet, label, value string) {
	row := sheet.AddRow()
	row.AddCell().SetString(label)
	row.AddCell().SetString(value)
}

func addNum(sheet *xlsx.Sheet, label string, value float64) {
	row := sheet.AddRow()
	row.AddCell().SetString(label)
	row.AddCell().SetFloatWithFormat(value, "0.000")
}

func addBlank(sheet *xlsx.Sheet) {
	sheet.AddRow()
}

func addWarnings(sheet *xlsx.Sheet, warnings model.Warnings) {
	for _, w := range warnings {
		row := sheet.AddRow()
		row.AddCell().SetString("Warning: " + w.Tag)
		row.AddCell().SetString(w.Message)
	}
}
