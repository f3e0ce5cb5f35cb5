package cmd

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	apperrors "nextlevel.com/nextlevel/internal/errors"
	"nextlevel.com/nextlevel/internal/services"
)

var sweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Reactivate recurrent tasks whose cooldown has elapsed",
	Long:  "Runs the recurrence sweep once and exits. Suitable for an external cron; a run that overlaps another sweep is skipped.",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := bootstrap()
		if err != nil {
			return err
		}
		defer a.close()

		svc := services.NewRecurrenceService(a.store, a.locker, a.logger, time.Now, a.cfg.Location())
		result, err := svc.Sweep(cmd.Context())
		if errors.Is(err, apperrors.ErrConflict) {
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "skipped: %v\n", err)
			return err
		}
		if err != nil {
			return err
		}

		_, err = fmt.Fprintf(cmd.OutOrStdout(), "reactivated %d of %d recurrent tasks\n", result.Updated, result.Candidates)
		return err
	},
}

func init() {
	rootCmd.AddCommand(sweepCmd)
}
