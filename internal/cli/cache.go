package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Inspect or clear the documentation cache",
}

var cacheStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show documentation cache counters",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := openCache(GetConfig())
		if err != nil {
			return err
		}
		defer st.Close()

		s, err := st.Stats()
		if err != nil {
			return err
		}
		w := cmd.OutOrStdout()
		fmt.Fprintf(w, "Cache:    %s\n", s.Path)
		fmt.Fprintf(w, "Entries:  %d\n", s.Entries)
		fmt.Fprintf(w, "Size:     %.1f KB\n", float64(s.SizeBytes)/1024)
		fmt.Fprintf(w, "Schema:   v%d (stamp %s)\n", s.SchemaVersion, s.Stamp)
		if s.Reset != "" {
			fmt.Fprintf(w, "Reset:    %s\n", s.Reset)
		}
		return nil
	},
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove every cached documentation entry",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := openCache(GetConfig())
		if err != nil {
			return err
		}
		defer st.Close()

		n := st.Len()
		if err := st.Clear(); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Cleared %d entries from %s\n", n, st.Path())
		return nil
	},
}

func init() {
	cacheCmd.AddCommand(cacheStatsCmd, cacheClearCmd)
	rootCmd.AddCommand(cacheCmd)
}
