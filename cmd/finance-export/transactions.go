package main

import (
	"github.com/melking/melking-bfa-go/internal/domain"
	"github.com/melking/melking-bfa-go/internal/finance"
	"github.com/melking/melking-bfa-go/internal/service"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// filterFlags are named after the filter parameters they feed.
var filterFlags = []struct{ name, usage string }{
	{"view", "ledger view (building, unit, charge)"},
	{"category", "category key or expense type, \"all\" for everything"},
	{"search", "free-text search over title and amount"},
	{"from", "first civil day, Gregorian or Jalali (1403/01/01)"},
	{"to", "last civil day, Gregorian or Jalali"},
	{"min", "minimum amount"},
	{"max", "maximum amount"},
}

func transactionsCmd(c *cli) *cobra.Command {
	var buildingID, buildingTitle string

	cmd := &cobra.Command{
		Use:     "transactions",
		Aliases: []string{"ledger"},
		Short:   "Export the filtered ledger of a building",
		Long: `Export the ledger rows the transactions screen would show for the given
filters, with each shared bill's per-unit allocation expanded into its own columns.`,
		Example: `  finance-export transactions --building 7 --view charge --from 1403/01/01 -o reports/`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := c.open(cmd.Context())
			if err != nil {
				return err
			}
			defer s.close()

			flags := cmd.Flags()
			spec, err := finance.ParseFilter(func(name string) string {
				v, _ := flags.GetString(name)
				return v
			}, s.cfg.Location())
			if err != nil {
				return err
			}

			var building *domain.Building
			if buildingTitle != "" {
				building = &domain.Building{ID: domain.FlexString(buildingID), Title: buildingTitle}
			}
			f, err := s.app.Finance.ExportTransactions(s.ctx, service.LedgerQuery{BuildingID: buildingID, Filter: spec}, building)
			if err != nil {
				return err
			}
			s.logger.Info("ledger exported", zap.String("building_id", buildingID), zap.Int("rows", f.Rows))
			return c.save(cmd, f)
		},
	}

	cmd.Flags().StringVarP(&buildingID, "building", "b", "", "building id")
	cmd.Flags().StringVar(&buildingTitle, "building-title", "", "building title used in the file name")
	for _, f := range filterFlags {
		cmd.Flags().String(f.name, "", f.usage)
	}
	_ = cmd.MarkFlagRequired("building")
	return cmd
}
