package main

import (
	"github.com/melking/melking-bfa-go/internal/domain"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func debtCreditCmd(c *cli) *cobra.Command {
	var buildingID, buildingTitle string

	cmd := &cobra.Command{
		Use:     "debt-credit",
		Aliases: []string{"units"},
		Short:   "Export the unit debt/credit list of a building",
		Long: `Export every unit's debt, credit and balance. Residents who may not see the
building-wide list get a workbook with their own unit only.`,
		Example: `  finance-export debt-credit --building 7 -o reports/`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := c.open(cmd.Context())
			if err != nil {
				return err
			}
			defer s.close()

			caller, _ := domain.CallerFromContext(s.ctx)
			var building *domain.Building
			if buildingTitle != "" {
				building = &domain.Building{ID: domain.FlexString(buildingID), Title: buildingTitle}
			}
			f, err := s.app.DebtCredit.ExportUnits(s.ctx, caller, buildingID, building)
			if err != nil {
				return err
			}
			s.logger.Info("debt/credit exported", zap.String("building_id", buildingID), zap.Int("rows", f.Rows))
			return c.save(cmd, f)
		},
	}

	cmd.Flags().StringVarP(&buildingID, "building", "b", "", "building id")
	cmd.Flags().StringVar(&buildingTitle, "building-title", "", "building title used in the file name")
	_ = cmd.MarkFlagRequired("building")
	return cmd
}
