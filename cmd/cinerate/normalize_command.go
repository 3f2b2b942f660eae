package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"cinerate/internal/titles"
)

type normalizeOutput struct {
	Title      string   `json:"title"`
	Primary    string   `json:"primary"`
	CacheKey   string   `json:"cacheKey"`
	Candidates []string `json:"candidates"`
}

func newNormalizeCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "normalize <title>",
		Short: "Show the search candidates and cache key for a title",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			raw := strings.Join(args, " ")
			primary := titles.Primary(raw)
			output := normalizeOutput{
				Title:      raw,
				Primary:    primary,
				Candidates: titles.Candidates(raw),
			}
			if output.Candidates == nil {
				output.Candidates = []string{}
			}
			if primary != "" {
				output.CacheKey = cfg.Cache.KeyPrefix + primary
			}

			if ctx.JSONMode() {
				return writeJSON(cmd, output)
			}

			out := cmd.OutOrStdout()
			if primary == "" {
				fmt.Fprintln(out, "Title is empty after normalization; nothing would be looked up")
				return nil
			}
			fmt.Fprintf(out, "Primary:   %s\n", primary)
			fmt.Fprintf(out, "Cache key: %s\n", output.CacheKey)
			fmt.Fprintln(out, "Candidates:")
			for i, candidate := range output.Candidates {
				fmt.Fprintf(out, "  %d. %s\n", i+1, candidate)
			}
			return nil
		},
	}
}
