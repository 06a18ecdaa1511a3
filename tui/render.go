package tui

import (
	"fmt"

	"github.com/gdamore/tcell/v2"

	"github.com/smirk-dev/game2048/game/engine"
	"github.com/smirk-dev/game2048/game/highscore"
)

const (
	cellWidth  = 8
	cellHeight = 3
	boardWidth = engine.Size*cellWidth + 1
)

var (
	styleDefault = tcell.StyleDefault
	styleTitle   = tcell.StyleDefault.Foreground(tcell.ColorYellow).Bold(true)
	styleDim     = tcell.StyleDefault.Foreground(tcell.ColorGray)
	styleSelect  = tcell.StyleDefault.Reverse(true)
	styleOverlay = tcell.StyleDefault.Background(tcell.ColorNavy).Foreground(tcell.ColorWhite).Bold(true)
)

var tileColors = map[int]tcell.Color{
	2:    tcell.ColorWhiteSmoke,
	4:    tcell.ColorWheat,
	8:    tcell.ColorSandyBrown,
	16:   tcell.ColorDarkOrange,
	32:   tcell.ColorTomato,
	64:   tcell.ColorOrangeRed,
	128:  tcell.ColorKhaki,
	256:  tcell.ColorGold,
	512:  tcell.ColorYellow,
	1024: tcell.ColorGoldenrod,
	2048: tcell.ColorLime,
}

func tileStyle(v int) tcell.Style {
	if v == 0 {
		return tcell.StyleDefault.Background(tcell.ColorDimGray)
	}
	bg, ok := tileColors[v]
	if !ok {
		bg = tcell.ColorPurple
	}
	return tcell.StyleDefault.Background(bg).Foreground(tcell.ColorBlack).Bold(true)
}

// Draw renders the controller's current screen
func Draw(s tcell.Screen, c *Controller) {
	s.Clear()
	w, h := s.Size()

	switch c.Mode() {
	case ModeMenu:
		drawMenu(s, c, w, h)
	case ModePlaying:
		drawGame(s, c, w, h)
	case ModeOverlay:
		drawGame(s, c, w, h)
		drawBox(s, w, h, overlayLines(c))
	case ModeScores:
		drawScores(s, c, w, h)
	}

	s.Show()
}

func drawText(s tcell.Screen, x, y int, style tcell.Style, text string) {
	for _, r := range text {
		s.SetContent(x, y, r, nil, style)
		x++
	}
}

func drawCentered(s tcell.Screen, w, y int, style tcell.Style, text string) {
	drawText(s, (w-len([]rune(text)))/2, y, style, text)
}

func drawMenu(s tcell.Screen, c *Controller, w, h int) {
	top := h/2 - 4
	drawCentered(s, w, top, styleTitle, "2 0 4 8")
	drawCentered(s, w, top+1, styleDim, "Join the tiles, get to 2048!")

	for i, label := range menuLabels {
		style := styleDefault
		if MenuItem(i) == c.MenuSelection() {
			style = styleSelect
			label = "> " + label + " <"
		}
		drawCentered(s, w, top+3+i, style, label)
	}

	drawCentered(s, w, top+4+len(menuLabels), styleDim, "up/down to choose, enter to select")
	if c.Status() != "" {
		drawCentered(s, w, h-2, styleDefault, c.Status())
	}
}

func drawGame(s tcell.Screen, c *Controller, w, h int) {
	state := c.State()
	left := (w - boardWidth) / 2
	top := (h - engine.Size*cellHeight) / 2

	header := fmt.Sprintf("Score: %d   Moves: %d   Max: %d", state.Score, state.MoveCount, engine.MaxTile(state.Board))
	drawText(s, left, top-2, styleTitle, header)

	for r, row := range state.Board {
		for col, v := range row {
			drawTile(s, left+col*cellWidth, top+r*cellHeight, v)
		}
	}

	bottom := top + engine.Size*cellHeight + 1
	if c.Status() != "" {
		drawText(s, left, bottom, styleDefault, c.Status())
	}
	drawText(s, left, bottom+1, styleDim, "arrows/wasd/hjkl move   r restart   esc menu   q quit")
}

func drawTile(s tcell.Screen, x, y, v int) {
	style := tileStyle(v)
	label := ""
	if v != 0 {
		label = fmt.Sprint(v)
	}

	inner := cellWidth - 1
	for dy := 0; dy < cellHeight; dy++ {
		for dx := 0; dx < inner; dx++ {
			s.SetContent(x+dx, y+dy, ' ', nil, style)
		}
	}
	drawText(s, x+(inner-len(label))/2, y+cellHeight/2, style, label)
}

func drawBox(s tcell.Screen, w, h int, lines []string) {
	width := 0
	for _, l := range lines {
		if n := len([]rune(l)); n > width {
			width = n
		}
	}
	width += 4

	x := (w - width) / 2
	y := (h-len(lines))/2 - 1
	for dy := -1; dy <= len(lines); dy++ {
		for dx := 0; dx < width; dx++ {
			s.SetContent(x+dx, y+dy, ' ', nil, styleOverlay)
		}
	}
	for i, l := range lines {
		drawText(s, x+(width-len([]rune(l)))/2, y+i, styleOverlay, l)
	}
}

// overlayLines is the text of the end-of-game box
func overlayLines(c *Controller) []string {
	state := c.State()

	title := "You Win!"
	if state.Over {
		title = "Game Over!"
	}
	lines := []string{title, fmt.Sprintf("Score %d in %d moves", state.Score, state.MoveCount)}

	if last := c.LastMove(); last != nil && last.HighScore != nil {
		hs := last.HighScore
		switch {
		case hs.Error != "":
			lines = append(lines, "High score not saved")
		case hs.NewBest:
			lines = append(lines, "New best score!")
		case hs.Rank > 0:
			lines = append(lines, fmt.Sprintf("High score #%d", hs.Rank))
		}
	}

	lines = append(lines, "")
	if c.CanContinue() {
		lines = append(lines, "R restart   C continue   Q quit")
	} else {
		lines = append(lines, "R restart   Q quit")
	}
	return lines
}

// scoreLines renders the ranked table
func scoreLines(records []highscore.Record) []string {
	if len(records) == 0 {
		return []string{"No high scores yet"}
	}

	lines := []string{fmt.Sprintf("%-4s %8s %8s", "#", "Score", "Moves")}
	for i, r := range records {
		moves := "-"
		if !r.Unbounded() {
			moves = fmt.Sprint(r.Moves)
		}
		lines = append(lines, fmt.Sprintf("%-4d %8d %8s", i+1, r.Score, moves))
	}
	return lines
}

func drawScores(s tcell.Screen, c *Controller, w, h int) {
	lines := scoreLines(c.Scores())
	top := (h - len(lines)) / 2

	drawCentered(s, w, top-2, styleTitle, "High Scores")
	for i, l := range lines {
		drawCentered(s, w, top+i, styleDefault, l)
	}
	drawCentered(s, w, top+len(lines)+1, styleDim, "any key to return, q to quit")
	if c.Status() != "" {
		drawCentered(s, w, h-2, styleDefault, c.Status())
	}
}
