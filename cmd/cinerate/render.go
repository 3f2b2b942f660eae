package main

import (
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/mattn/go-isatty"
)

// Badge colors match the overlay: gold for 7+, orange for 5+, red below.
const (
	ansiReset  = "\x1b[0m"
	ansiGold   = "\x1b[38;2;245;197;24m"
	ansiOrange = "\x1b[38;2;255;180;0m"
	ansiRed    = "\x1b[38;2;255;97;97m"
	ansiDim    = "\x1b[2m"
)

type scoreTier int

const (
	tierUnknown scoreTier = iota
	tierPoor
	tierAverage
	tierGood
)

func classifyScore(rating string) scoreTier {
	score, err := strconv.ParseFloat(strings.TrimSpace(rating), 64)
	if err != nil {
		return tierUnknown
	}
	switch {
	case score >= 7:
		return tierGood
	case score >= 5:
		return tierAverage
	default:
		return tierPoor
	}
}

func tierColor(tier scoreTier) string {
	switch tier {
	case tierGood:
		return ansiGold
	case tierAverage:
		return ansiOrange
	case tierPoor:
		return ansiRed
	default:
		return ansiDim
	}
}

// scoreFormatter returns a cell formatter that tints ratings when colorize
// is set.
func scoreFormatter(colorize bool) func(string) string {
	if !colorize {
		return nil
	}
	return func(cell string) string {
		trimmed := strings.TrimSpace(cell)
		if trimmed == "" {
			return cell
		}
		return tierColor(classifyScore(trimmed)) + cell + ansiReset
	}
}

func shouldColorize(writer io.Writer) bool {
	file, ok := writer.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
