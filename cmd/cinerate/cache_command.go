package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"cinerate/internal/api"
	"cinerate/internal/app"
	"cinerate/internal/ratingcache"
)

func newCacheCommand(ctx *commandContext) *cobra.Command {
	cacheCmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect and manage the rating cache",
		Long: `Inspect and manage the rating cache.

Resolved ratings (and confirmed misses) are kept for three days under keys
of the form imdb_rating_<normalized title>.

Commands:
  list     - List cached entries, newest first
  evict    - Remove entries older than three days
  remove   - Remove one entry by key (see 'list' for keys)
  clear    - Remove all cached entries`,
	}

	cacheCmd.AddCommand(newCacheListCommand(ctx))
	cacheCmd.AddCommand(newCacheEvictCommand(ctx))
	cacheCmd.AddCommand(newCacheRemoveCommand(ctx))
	cacheCmd.AddCommand(newCacheClearCommand(ctx))

	return cacheCmd
}

func newCacheListCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List cached ratings",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStack(func(stack *app.Stack) error {
				entries, err := stack.Cache.Entries(cmd.Context())
				if err != nil {
					return err
				}
				if ctx.JSONMode() {
					return writeJSON(cmd, api.FromCacheEntries(entries))
				}

				out := cmd.OutOrStdout()
				if len(entries) == 0 {
					fmt.Fprintln(out, "Rating cache: empty")
					return nil
				}
				fmt.Fprintf(out, "Rating cache: %s (%s)\n\n", pluralize(len(entries), "entry", "entries"), stack.Config.Cache.Backend)
				columns := []tableColumn{
					{Header: "Key"},
					{Header: "IMDb ID"},
					{Header: "Rating", Align: alignRight, Format: scoreFormatter(shouldColorize(out))},
					{Header: "Votes", Align: alignRight},
					{Header: "Age", Align: alignRight},
					{Header: "State"},
				}
				fmt.Fprintln(out, renderTable(columns, cacheRows(entries)))
				return nil
			})
		},
	}
}

func cacheRows(entries []ratingcache.Entry) [][]string {
	rows := make([][]string, 0, len(entries))
	for _, entry := range entries {
		state := "fresh"
		if entry.Expired {
			state = "expired"
		}
		id, rating, votes := "no data", "", ""
		if entry.Result != nil {
			id = entry.Result.IMDbID
			rating = orDash(entry.Result.IMDbRating)
			votes = orDash(entry.Result.IMDbVotes)
		}
		rows = append(rows, []string{entry.Key, id, rating, votes, formatAge(entry.Age), state})
	}
	return rows
}

func formatAge(age time.Duration) string {
	switch {
	case age < time.Minute:
		return "just now"
	case age < time.Hour:
		return fmt.Sprintf("%dm", int(age.Minutes()))
	case age < 48*time.Hour:
		return fmt.Sprintf("%dh", int(age.Hours()))
	default:
		return fmt.Sprintf("%dd", int(age.Hours()/24))
	}
}

func newCacheEvictCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "evict",
		Short: "Remove entries older than three days",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStack(func(stack *app.Stack) error {
				removed, err := stack.Cache.EvictExpired(cmd.Context())
				if err != nil {
					return err
				}
				if ctx.JSONMode() {
					return writeJSON(cmd, map[string]int{"removed": removed})
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Evicted %s\n", pluralize(removed, "expired entry", "expired entries"))
				return nil
			})
		},
	}
}

func newCacheRemoveCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "remove <key>",
		Short: "Remove a single cache entry",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStack(func(stack *app.Stack) error {
				if err := stack.Cache.Remove(cmd.Context(), args[0]); err != nil {
					return err
				}
				if ctx.JSONMode() {
					return writeJSON(cmd, map[string]string{"removed": args[0]})
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Removed %s\n", args[0])
				return nil
			})
		},
	}
}

func newCacheClearCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove all cached ratings",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStack(func(stack *app.Stack) error {
				removed, err := stack.Cache.Clear(cmd.Context())
				if err != nil {
					return err
				}
				if ctx.JSONMode() {
					return writeJSON(cmd, map[string]int{"removed": removed})
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Cleared %s\n", pluralize(removed, "entry", "entries"))
				return nil
			})
		},
	}
}
