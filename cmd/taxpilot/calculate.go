package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/castlemilk/taxpilot/backend/internal/scenario"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// scenarioFile is the on-disk scenario input. JSON files parse too.
type scenarioFile struct {
	Regime      string         `yaml:"regime"`
	Income      map[string]any `yaml:"income"`
	Deductions  map[string]any `yaml:"deductions"`
	Assumptions map[string]any `yaml:"assumptions"`
	LifeEvents  map[string]any `yaml:"lifeEvents"`
}

func readScenarioFile(path string) (*scenarioFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scenario: %w", err)
	}
	var f scenarioFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse scenario %s: %w", path, err)
	}
	return &f, nil
}

func (f *scenarioFile) input() scenario.Input {
	return scenario.Input{
		Income:      f.Income,
		Deductions:  f.Deductions,
		Assumptions: f.Assumptions,
		LifeEvents:  f.LifeEvents,
	}
}

func calculateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "calculate [scenario-file]",
		Short: "Calculate a tax scenario",
		Long:  "Runs the regime strategy over the income and deductions in a YAML or JSON scenario file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			f, err := readScenarioFile(args[0])
			if err != nil {
				return err
			}

			regime, _ := cmd.Flags().GetString("regime")
			if regime == "" {
				regime = f.Regime
			}
			if regime == "" {
				regime = scenario.DefaultKey
			}

			result := cfg.BuildRegistry().Calculate(regime, f.input())

			out := cmd.OutOrStdout()
			if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(result)
			}

			fmt.Fprintln(out, titleStyle.Render("Scenario: "+regime))
			fmt.Fprintln(out, renderResult(result))
			return nil
		},
	}
	cmd.Flags().StringP("regime", "r", "", "regime key (overrides the file's regime)")
	cmd.Flags().Bool("json", false, "print the result as JSON")
	return cmd
}

func renderResult(r scenario.Result) string {
	rows := [][]string{
		{"Income", r.Breakdown.Income.StringFixed(2)},
		{"Deductions", r.Breakdown.Deductions.StringFixed(2)},
		{"Taxable income", r.TaxableIncome.StringFixed(2)},
		{"Estimated tax", r.EstimatedTax.StringFixed(2)},
		{"Net income", r.NetIncome.StringFixed(2)},
		{"Effective rate", r.Breakdown.EffectiveRate.Shift(2).StringFixed(2) + "%"},
	}
	return renderTable([]string{"Item", "Amount"}, rows)
}
