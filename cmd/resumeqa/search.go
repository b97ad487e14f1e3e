package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func newSearchCmd(flags *rootFlags) *cobra.Command {
	var topK int
	cmd := &cobra.Command{
		Use:   "search [query]",
		Short: "Print the chunks retrieved for a query without calling the LLM",
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(flags)
			if err != nil {
				return err
			}
			svc, _, err := buildService(cfg, nil, false)
			if err != nil {
				return err
			}
			results, err := svc.SearchScored(strings.Join(args, " "), topK)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for i, r := range results {
				fmt.Fprintf(out, "%d. chunk #%d  score=%.3f\n%s\n\n", i+1, r.Chunk.Index, r.Score, r.Chunk.Text)
			}
			return nil
		},
	}
	cmd.Flags().IntVarP(&topK, "top-k", "k", 0, "Number of chunks to return (0 uses the configured default)")
	return cmd
}
