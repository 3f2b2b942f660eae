package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"cinerate/internal/app"
	"cinerate/internal/ratings"
)

type lookupOutput struct {
	Title  string          `json:"title"`
	Result *ratings.Result `json:"result"`
}

func newLookupCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "lookup <title>...",
		Short: "Resolve ratings for one or more titles",
		Long: `Resolve ratings for one or more titles through the cache and the
lookup services, exactly as the API would. Each argument is one title.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStack(func(stack *app.Stack) error {
				outputs := make([]lookupOutput, 0, len(args))
				for _, title := range args {
					result := stack.Gateway.GetRatings(cmd.Context(), title)
					outputs = append(outputs, lookupOutput{Title: title, Result: result})
				}
				if ctx.JSONMode() {
					return writeJSON(cmd, outputs)
				}
				out := cmd.OutOrStdout()
				fmt.Fprintln(out, renderTable(resultColumns(shouldColorize(out)), lookupRows(outputs)))
				return nil
			})
		},
	}
}

func resultColumns(colorize bool) []tableColumn {
	return []tableColumn{
		{Header: "Title"},
		{Header: "IMDb ID"},
		{Header: "Rating", Align: alignRight, Format: scoreFormatter(colorize)},
		{Header: "Votes", Align: alignRight},
		{Header: "URL"},
	}
}

func lookupRows(outputs []lookupOutput) [][]string {
	rows := make([][]string, 0, len(outputs))
	for _, o := range outputs {
		rows = append(rows, resultRow(o.Title, o.Result))
	}
	return rows
}

func resultRow(title string, result *ratings.Result) []string {
	title = strings.TrimSpace(title)
	if result == nil {
		return []string{title, "no data", "", "", ""}
	}
	return []string{title, result.IMDbID, orDash(result.IMDbRating), orDash(result.IMDbVotes), result.IMDbURL}
}
