package main

import (
	"fmt"
	"io"

	"github.com/fatih/color"

	"github.com/smirk-dev/game2048/game/highscore"
	"github.com/smirk-dev/game2048/validate"
)

var (
	colorTitle = color.New(color.FgYellow, color.Bold)
	colorBest  = color.New(color.FgGreen, color.Bold)
	colorOK    = color.New(color.FgGreen)
	colorBad   = color.New(color.FgRed)
	colorDim   = color.New(color.Faint)
)

func printScores(w io.Writer, records []highscore.Record) {
	colorTitle.Fprintln(w, "High Scores")
	if len(records) == 0 {
		colorDim.Fprintln(w, "  no high scores yet")
		return
	}

	fmt.Fprintf(w, "  %-4s %8s %8s  %s\n", "#", "Score", "Moves", "Recorded")
	for i, r := range records {
		moves := "-"
		if !r.Unbounded() {
			moves = fmt.Sprint(r.Moves)
		}
		when := ""
		if !r.RecordedAt.IsZero() {
			when = r.RecordedAt.Local().Format("2006-01-02 15:04")
		}

		line := fmt.Sprintf("  %-4d %8d %8s  %s", i+1, r.Score, moves, when)
		if i == 0 {
			colorBest.Fprintln(w, line)
		} else {
			fmt.Fprintln(w, line)
		}
	}
}

// printValidation reports each result and returns whether all were valid
func printValidation(w io.Writer, results []validate.Result) bool {
	allValid := true
	for _, r := range results {
		if r.Valid() {
			colorOK.Fprintf(w, "VALID   %s\n", r.File)
		} else {
			allValid = false
			colorBad.Fprintf(w, "INVALID %s\n", r.File)
		}
		for _, e := range r.Errors {
			colorBad.Fprintf(w, "  - %s\n", e)
		}
		for _, n := range r.Notes {
			colorDim.Fprintf(w, "  %s\n", n)
		}
	}

	if allValid {
		colorOK.Fprintln(w, "All files are valid")
	} else {
		colorBad.Fprintln(w, "Some files have errors")
	}
	return allValid
}
