package main

import (
	"fmt"
	"strings"

	"school-job-scout/internal/config"
	"school-job-scout/internal/report"

	"github.com/spf13/cobra"
)

func newDistrictsCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "districts [filter]",
		Short: "Validate and list the configured districts",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			districts, err := ctx.districts()
			if err != nil {
				return err
			}
			if len(args) == 1 {
				districts = config.MatchDistricts(districts, args[0])
			}
			fmt.Fprintln(cmd.OutOrStdout(), districtTable(districts))
			fmt.Fprintf(cmd.OutOrStdout(), "%d district(s)\n", len(districts))
			return nil
		},
	}
}

func districtTable(districts []config.District) string {
	rows := make([][]string, 0, len(districts))
	for _, d := range districts {
		var portals []string
		for _, p := range d.Targets() {
			portals = append(portals, fmt.Sprintf("%s %s", p.Type, p.URL))
		}
		rows = append(rows, []string{d.Name, string(d.Type), strings.Join(portals, "\n"), d.Filter()})
	}
	return report.Table([]string{"District", "Type", "Portals", "Filter"}, rows)
}
