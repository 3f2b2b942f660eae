package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"cinerate/internal/app"
	"cinerate/internal/listing"
	"cinerate/internal/ratings"
)

const defaultScanWorkers = 4

func newScanCommand(ctx *commandContext) *cobra.Command {
	var workers int

	cmd := &cobra.Command{
		Use:   "scan <file|url>",
		Short: "Resolve every title on a cinema listing page",
		Long: `Extract movie titles from a saved listing page or a live URL and resolve
each one. Titles are resolved concurrently; the table keeps page order.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			found, err := loadListing(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return ctx.withStack(func(stack *app.Stack) error {
				outputs := resolveAll(cmd.Context(), stack.Gateway, found, workers)
				if ctx.JSONMode() {
					return writeJSON(cmd, outputs)
				}
				out := cmd.OutOrStdout()
				if len(outputs) == 0 {
					fmt.Fprintln(out, "No titles found on page")
					return nil
				}
				fmt.Fprintln(out, renderTable(resultColumns(shouldColorize(out)), lookupRows(outputs)))
				fmt.Fprintf(out, "%s, %d with ratings\n", pluralize(len(outputs), "title", "titles"), countRated(outputs))
				return nil
			})
		},
	}

	cmd.Flags().IntVarP(&workers, "workers", "w", defaultScanWorkers, "Concurrent title resolutions")
	return cmd
}

func loadListing(ctx context.Context, source string) ([]string, error) {
	source = strings.TrimSpace(source)
	if strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://") {
		return listing.Fetch(ctx, http.DefaultClient, source)
	}
	file, err := os.Open(source)
	if err != nil {
		return nil, fmt.Errorf("open listing: %w", err)
	}
	defer file.Close()
	return listing.ExtractTitles(file)
}

type ratingsGetter interface {
	GetRatings(ctx context.Context, raw string) *ratings.Result
}

// resolveAll resolves titles with at most workers concurrent calls and
// returns results in input order.
func resolveAll(ctx context.Context, gw ratingsGetter, titles []string, workers int) []lookupOutput {
	if workers <= 0 {
		workers = 1
	}
	outputs := make([]lookupOutput, len(titles))
	jobs := make(chan int)

	var wg sync.WaitGroup
	for range min(workers, max(len(titles), 1)) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range jobs {
				outputs[idx] = lookupOutput{Title: titles[idx], Result: gw.GetRatings(ctx, titles[idx])}
			}
		}()
	}

	for idx := range titles {
		if ctx.Err() != nil {
			outputs[idx] = lookupOutput{Title: titles[idx]}
			continue
		}
		jobs <- idx
	}
	close(jobs)
	wg.Wait()
	return outputs
}

func countRated(outputs []lookupOutput) int {
	n := 0
	for _, o := range outputs {
		if o.Result.HasRating() {
			n++
		}
	}
	return n
}
