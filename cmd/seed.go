package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"nextlevel.com/nextlevel/internal/seed"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Insert the default mission catalog",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := bootstrap()
		if err != nil {
			return err
		}
		defer a.close()

		inserted, err := seed.Run(cmd.Context(), a.store, a.logger)
		if err != nil {
			return err
		}

		_, err = fmt.Fprintf(cmd.OutOrStdout(), "inserted %d default missions\n", inserted)
		return err
	},
}

func init() {
	rootCmd.AddCommand(seedCmd)
}
