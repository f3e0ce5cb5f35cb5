package cmd

import (
	"fmt"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"nextlevel.com/nextlevel/internal/leveling"
)

var levelTableSize int

var levelCmd = &cobra.Command{
	Use:   "level [xp]",
	Short: "Show where an XP total lands on the level curve",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()

		if len(args) == 1 {
			xp, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil || xp < 0 {
				return fmt.Errorf("xp must be a non-negative integer, got %q", args[0])
			}
			p := leveling.LevelFromXP(xp)
			_, err = fmt.Fprintf(out, "level %d: %d/%d xp into level (%d%%)\n",
				p.Level, p.XPIntoLevel, p.XPToNextLevel, p.ProgressPercent)
			return err
		}

		w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "LEVEL\tCOST\tCUMULATIVE")
		var cumulative int64
		for l := 1; l <= levelTableSize; l++ {
			cost := leveling.XPRequiredForLevel(l)
			cumulative += cost
			fmt.Fprintf(w, "%d\t%d\t%d\n", l, cost, cumulative)
		}
		return w.Flush()
	},
}

func init() {
	levelCmd.Flags().IntVar(&levelTableSize, "table", 10, "levels to print when no xp is given")
	rootCmd.AddCommand(levelCmd)
}
