package main

import (
	"fmt"
	"sort"
	"time"

	"github.com/castlemilk/taxpilot/backend/internal/recurrence"
	"github.com/spf13/cobra"
)

const dateLayout = "2006-01-02"

type expandedEvent struct {
	code        string
	description string
	occurrence  recurrence.Occurrence
}

func calendarCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "calendar",
		Short: "Work with deadline calendars",
	}
	cmd.AddCommand(expandCmd())
	return cmd
}

func expandCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "expand",
		Short: "List deadline occurrences for a regime",
		Long:  "Expands every active template of a regime over a date window, the same way a calendar sync does",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			regime, _ := cmd.Flags().GetString("regime")
			fromFlag, _ := cmd.Flags().GetString("from")
			months, _ := cmd.Flags().GetInt("months")
			if months <= 0 {
				return fmt.Errorf("--months must be positive")
			}

			from := time.Now().UTC().Truncate(24 * time.Hour)
			if fromFlag != "" {
				from, err = time.Parse(dateLayout, fromFlag)
				if err != nil {
					return fmt.Errorf("invalid --from %q: %w", fromFlag, err)
				}
			}
			to := from.AddDate(0, months, 0)

			templates, err := cfg.EventTemplates()
			if err != nil {
				return err
			}

			var events []expandedEvent
			for _, t := range templates {
				if !t.Active || (regime != "" && t.RegimeID != regime) {
					continue
				}
				occurrences, warning := recurrence.Expand(t.RuleJSON, from, to)
				if warning != nil {
					fmt.Fprintln(cmd.ErrOrStderr(), warnStyle.Render(fmt.Sprintf("skipping %s: %v", t.Code, warning)))
					continue
				}
				for _, occ := range occurrences {
					events = append(events, expandedEvent{code: t.Code, description: t.Description, occurrence: occ})
				}
			}

			sort.SliceStable(events, func(i, j int) bool {
				return events[i].occurrence.StartAt.Before(events[j].occurrence.StartAt)
			})

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, titleStyle.Render(fmt.Sprintf("%d deadlines from %s to %s", len(events), from.Format(dateLayout), to.Format(dateLayout))))
			if len(events) == 0 {
				return nil
			}

			rows := make([][]string, 0, len(events))
			for _, e := range events {
				rows = append(rows, []string{
					e.occurrence.StartAt.Format(dateLayout),
					e.occurrence.EndAt.Format(dateLayout),
					e.code,
					e.description,
				})
			}
			fmt.Fprintln(out, renderTable([]string{"Start", "End", "Code", "Description"}, rows))
			return nil
		},
	}
	cmd.Flags().String("regime", "", "only expand templates of this regime")
	cmd.Flags().String("from", "", "window start as YYYY-MM-DD (defaults to today)")
	cmd.Flags().Int("months", 12, "window length in months")
	return cmd
}

func configCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect the catalog configuration",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "validate",
		Short: "Check regimes and template rules",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			templates, err := cfg.EventTemplates()
			if err != nil {
				return err
			}

			rows := make([][]string, 0, len(cfg.Regimes))
			for _, r := range cfg.Regimes {
				count := 0
				for _, t := range templates {
					if t.RegimeID == r.Key {
						count++
					}
				}
				rows = append(rows, []string{r.Key, r.Name, fmt.Sprintf("%d", len(r.Brackets)), fmt.Sprintf("%d", count)})
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, titleStyle.Render(fmt.Sprintf("OK: %d regimes, %d templates", len(cfg.Regimes), len(templates))))
			fmt.Fprintln(out, renderTable([]string{"Regime", "Name", "Brackets", "Templates"}, rows))
			return nil
		},
	})
	return cmd
}
