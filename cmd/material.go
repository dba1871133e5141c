package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/procflow/sizer-cli/internal/material"
	"github.com/procflow/sizer-cli/internal/validate"
)

var (
	matGrade    string
	matClass    int
	matPressure float64
	matTempC    float64
	matSour     bool
	matH2S      float64
	matJSON     bool
)

var materialCmd = &cobra.Command{
	Use:   "material",
	Short: "Valve body material checks per ASME B16.34",
}

var materialCheckCmd = &cobra.Command{
	Use:   "check",
	Short: "Check an operating point against a grade's class rating",
	RunE: func(cmd *cobra.Command, args []string) error {
		g, err := material.Lookup(matGrade)
		if err != nil {
			return err
		}
		res, err := g.CheckRating(matClass, matPressure, matTempC)
		if err != nil {
			return err
		}

		if matJSON {
			return printJSON(res)
		}

		status := "COMPLIANT"
		if !res.Compliant {
			status = "NON-COMPLIANT"
		}
		fmt.Fprintf(os.Stdout, "%s  class %d at %.0f C\n", g.Name, matClass, matTempC)
		fmt.Fprintf(os.Stdout, "%s: operating %.1f bar, allowable %.1f bar (margin %.0f%%, derating %.2f)\n",
			status, res.OperatingPressure, res.AllowablePressure, res.SafetyMargin*100, res.DeratingFactor)
		for _, w := range res.Warnings {
			fmt.Fprintf(os.Stdout, "  ! %s: %s\n", w.Tag, w.Message)
		}
		return nil
	},
}

var materialRecommendCmd = &cobra.Command{
	Use:   "recommend",
	Short: "Rank catalog grades for a service temperature",
	RunE: func(cmd *cobra.Command, args []string) error {
		if matH2S > 0 {
			for _, f := range validate.SourService(matH2S) {
				fmt.Fprintf(os.Stdout, "  ! %s: %s\n", f.Field, f.Message)
			}
		}

		candidates := material.Recommend(matTempC, matSour)
		if matJSON {
			return printJSON(candidates)
		}

		if len(candidates) == 0 {
			fmt.Fprintln(os.Stdout, "no catalog grade covers these conditions")
			return nil
		}
		fmt.Fprintf(os.Stdout, "%-12s %-28s %7s %8s %6s\n", "GRADE", "NAME", "SCORE", "MARGIN C", "COST")
		for _, c := range candidates {
			fmt.Fprintf(os.Stdout, "%-12s %-28s %7.1f %8.0f %6.1f\n",
				c.Grade.Code, c.Grade.Name, c.Score, c.TempMargin, c.Grade.CostFactor)
		}
		return nil
	},
}

func init() {
	materialCheckCmd.Flags().StringVar(&matGrade, "grade", "A216-WCB", "material grade code")
	materialCheckCmd.Flags().IntVar(&matClass, "class", 300, "ASME pressure class")
	materialCheckCmd.Flags().Float64Var(&matPressure, "pressure", 0, "operating pressure, bar")
	materialCheckCmd.Flags().Float64Var(&matTempC, "temp-c", 38, "operating temperature, C")
	materialCheckCmd.Flags().BoolVar(&matJSON, "json", false, "emit JSON")

	materialRecommendCmd.Flags().Float64Var(&matTempC, "temp-c", 38, "service temperature, C")
	materialRecommendCmd.Flags().BoolVar(&matSour, "sour", false, "require sour-service suitability")
	materialRecommendCmd.Flags().Float64Var(&matH2S, "h2s", 0, "H2S partial pressure, bar")
	materialRecommendCmd.Flags().BoolVar(&matJSON, "json", false, "emit JSON")

	materialCmd.AddCommand(materialCheckCmd, materialRecommendCmd)
	rootCmd.AddCommand(materialCmd)
}
