package engine

import (
	"fmt"
	"strings"
)

// MaxTile returns the largest value on the board
func MaxTile(b Board) int {
	highest := 0
	for _, row := range b {
		for _, v := range row {
			if v > highest {
				highest = v
			}
		}
	}
	return highest
}

// CountTiles counts the occupied cells
func CountTiles(b Board) int {
	return Size*Size - len(EmptyCells(b))
}

// FormatBoard renders the board as fixed-width text rows, "." for empty cells
func FormatBoard(b Board) string {
	width := len(fmt.Sprint(MaxTile(b)))
	if width < 4 {
		width = 4
	}

	var sb strings.Builder
	for r, row := range b {
		for c, v := range row {
			if c > 0 {
				sb.WriteByte(' ')
			}
			cell := "."
			if v != 0 {
				cell = fmt.Sprint(v)
			}
			sb.WriteString(fmt.Sprintf("%*s", width, cell))
		}
		if r < Size-1 {
			sb.WriteByte('\n')
		}
	}
	return sb.String()
}
