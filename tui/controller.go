package tui

import (
	"context"
	"fmt"

	"github.com/gdamore/tcell/v2"
	"github.com/rs/zerolog/log"

	"github.com/smirk-dev/game2048/game/engine"
	"github.com/smirk-dev/game2048/game/highscore"
	"github.com/smirk-dev/game2048/game/service"
)

// Mode is the screen the shell is showing
type Mode int

const (
	ModeMenu Mode = iota
	ModePlaying
	ModeOverlay
	ModeScores
)

func (m Mode) String() string {
	switch m {
	case ModeMenu:
		return "menu"
	case ModePlaying:
		return "playing"
	case ModeOverlay:
		return "overlay"
	case ModeScores:
		return "scores"
	default:
		return "unknown"
	}
}

// MenuItem is one entry of the main menu
type MenuItem int

const (
	MenuNewGame MenuItem = iota
	MenuHighScores
	MenuQuit
)

var menuLabels = []string{"New Game", "High Scores", "Quit"}

// Key is the part of a key press the controller cares about
type Key struct {
	Code tcell.Key
	Rune rune
}

// KeyFromEvent converts a tcell key event
func KeyFromEvent(ev *tcell.EventKey) Key {
	if ev.Key() != tcell.KeyRune {
		return Key{Code: ev.Key()}
	}
	return Key{Code: tcell.KeyRune, Rune: ev.Rune()}
}

// RuneKey is shorthand for a printable key
func RuneKey(r rune) Key {
	return Key{Code: tcell.KeyRune, Rune: r}
}

var directionRunes = map[rune]engine.Direction{
	'w': engine.Up, 'W': engine.Up, 'k': engine.Up, 'K': engine.Up,
	's': engine.Down, 'S': engine.Down, 'j': engine.Down, 'J': engine.Down,
	'a': engine.Left, 'A': engine.Left, 'h': engine.Left, 'H': engine.Left,
	'd': engine.Right, 'D': engine.Right, 'l': engine.Right, 'L': engine.Right,
}

var directionKeys = map[tcell.Key]engine.Direction{
	tcell.KeyUp:    engine.Up,
	tcell.KeyDown:  engine.Down,
	tcell.KeyLeft:  engine.Left,
	tcell.KeyRight: engine.Right,
}

// DirectionFor maps arrows, WASD and hjkl onto a move
func DirectionFor(k Key) (engine.Direction, bool) {
	if k.Code == tcell.KeyRune {
		d, ok := directionRunes[k.Rune]
		return d, ok
	}
	d, ok := directionKeys[k.Code]
	return d, ok
}

// Controller is the terminal shell's state machine. It owns no terminal and
// is driven entirely through HandleKey.
type Controller struct {
	ctx      context.Context
	svc      service.GameService
	configID string

	mode Mode
	menu MenuItem
	quit bool

	sessionID   string
	winEndsGame bool
	state       engine.GameState
	last        *service.MoveResult
	scores      []highscore.Record
	status      string
}

// NewController creates a controller sitting on the main menu. New games use
// configID, or the service default when it is empty.
func NewController(ctx context.Context, svc service.GameService, configID string) *Controller {
	return &Controller{
		ctx:      ctx,
		svc:      svc,
		configID: configID,
		mode:     ModeMenu,
	}
}

func (c *Controller) Mode() Mode {
	return c.mode
}

func (c *Controller) MenuSelection() MenuItem {
	return c.menu
}

func (c *Controller) Quit() bool {
	return c.quit
}

func (c *Controller) State() engine.GameState {
	return c.state
}

// LastMove is the most recent move result, nil right after a new game or restart
func (c *Controller) LastMove() *service.MoveResult {
	return c.last
}

func (c *Controller) Scores() []highscore.Record {
	return c.scores
}

func (c *Controller) Status() string {
	return c.status
}

func (c *Controller) SessionID() string {
	return c.sessionID
}

// CanContinue reports whether the overlay offers to keep playing after a win
func (c *Controller) CanContinue() bool {
	return c.mode == ModeOverlay && c.state.Won && !c.state.Over && !c.winEndsGame
}

// HandleKey applies one key press. It returns false once the shell should exit.
func (c *Controller) HandleKey(k Key) bool {
	if k.Code == tcell.KeyCtrlC {
		c.quit = true
		return false
	}

	switch c.mode {
	case ModeMenu:
		c.handleMenu(k)
	case ModePlaying:
		c.handlePlaying(k)
	case ModeOverlay:
		c.handleOverlay(k)
	case ModeScores:
		c.handleScores(k)
	}
	return !c.quit
}

func (c *Controller) handleMenu(k Key) {
	switch {
	case k.Code == tcell.KeyUp || k.Rune == 'k' || k.Rune == 'w':
		c.menu = (c.menu + MenuItem(len(menuLabels)) - 1) % MenuItem(len(menuLabels))
	case k.Code == tcell.KeyDown || k.Code == tcell.KeyTab || k.Rune == 'j' || k.Rune == 's':
		c.menu = (c.menu + 1) % MenuItem(len(menuLabels))
	case k.Code == tcell.KeyEnter || k.Rune == ' ':
		c.activate(c.menu)
	case k.Rune == 'n' || k.Rune == 'N':
		c.activate(MenuNewGame)
	case k.Rune == 'h' || k.Rune == 'H':
		c.activate(MenuHighScores)
	case k.Code == tcell.KeyEscape || k.Rune == 'q' || k.Rune == 'Q':
		c.activate(MenuQuit)
	}
}

func (c *Controller) activate(item MenuItem) {
	c.menu = item
	switch item {
	case MenuNewGame:
		c.newGame()
	case MenuHighScores:
		c.showScores()
	case MenuQuit:
		c.quit = true
	}
}

func (c *Controller) newGame() {
	info, err := c.svc.CreateSession(c.ctx, c.configID)
	if err != nil {
		c.status = fmt.Sprintf("Could not start a game: %v", err)
		log.Error().Err(err).Str("config", c.configID).Msg("create session")
		return
	}

	c.sessionID = info.ID
	c.winEndsGame = info.GameConfig != nil && info.GameConfig.WinEndsGame
	if info.GameState != nil {
		c.state = *info.GameState
	}
	c.last = nil
	c.status = c.state.Message
	c.mode = ModePlaying
}

func (c *Controller) showScores() {
	scores, err := c.svc.HighScores(c.ctx, 0)
	if err != nil {
		c.status = fmt.Sprintf("Could not read high scores: %v", err)
		log.Warn().Err(err).Msg("read high scores")
		scores = nil
	}
	c.scores = scores
	c.mode = ModeScores
}

func (c *Controller) handlePlaying(k Key) {
	if dir, ok := DirectionFor(k); ok {
		c.move(dir)
		return
	}

	switch {
	case k.Rune == 'r' || k.Rune == 'R':
		c.restart()
	case k.Rune == 'q' || k.Rune == 'Q':
		c.endSession()
		c.quit = true
	case k.Code == tcell.KeyEscape:
		c.endSession()
		c.mode = ModeMenu
	}
}

func (c *Controller) move(dir engine.Direction) {
	result, err := c.svc.Move(c.ctx, c.sessionID, dir.String())
	if err != nil {
		c.status = err.Error()
		log.Error().Err(err).Str("session", c.sessionID).Msg("move")
		return
	}

	c.last = result
	if result.GameState != nil {
		c.state = *result.GameState
	}
	c.status = result.Message
	if hs := result.HighScore; hs != nil && hs.Error != "" {
		c.status = "High score not saved: " + hs.Error
	}

	if result.Transition.BecameWon || result.Transition.BecameOver {
		c.mode = ModeOverlay
	}
}

func (c *Controller) restart() {
	state, err := c.svc.Restart(c.ctx, c.sessionID)
	if err != nil {
		c.status = err.Error()
		log.Error().Err(err).Str("session", c.sessionID).Msg("restart")
		return
	}
	c.state = *state
	c.last = nil
	c.status = state.Message
	c.mode = ModePlaying
}

func (c *Controller) handleOverlay(k Key) {
	switch {
	case k.Rune == 'r' || k.Rune == 'R':
		c.restart()
	case k.Rune == 'c' || k.Rune == 'C':
		if c.CanContinue() {
			c.mode = ModePlaying
			c.status = ""
		}
	case k.Rune == 'q' || k.Rune == 'Q':
		c.endSession()
		c.quit = true
	case k.Code == tcell.KeyEscape:
		c.endSession()
		c.mode = ModeMenu
	}
}

func (c *Controller) handleScores(k Key) {
	switch {
	case k.Rune == 'q' || k.Rune == 'Q':
		c.quit = true
	default:
		c.mode = ModeMenu
	}
}

// endSession drops the terminal's session from the service; the shell keeps
// one game at a time.
func (c *Controller) endSession() {
	if c.sessionID == "" {
		return
	}
	if err := c.svc.DeleteSession(c.ctx, c.sessionID); err != nil {
		log.Debug().Err(err).Str("session", c.sessionID).Msg("delete session")
	}
	c.sessionID = ""
}
