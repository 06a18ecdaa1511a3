package tui

import (
	"context"
	"fmt"

	"github.com/gdamore/tcell/v2"
	"github.com/rs/zerolog/log"

	"github.com/smirk-dev/game2048/game/service"
)

// Run takes over the terminal until the player quits or ctx is cancelled
func Run(ctx context.Context, svc service.GameService, configID string) error {
	screen, err := tcell.NewScreen()
	if err != nil {
		return fmt.Errorf("open terminal: %w", err)
	}
	if err := screen.Init(); err != nil {
		return fmt.Errorf("init terminal: %w", err)
	}
	defer screen.Fini()

	return Loop(ctx, screen, NewController(ctx, svc, configID))
}

// Loop drives c from screen events. The screen must already be initialised.
func Loop(ctx context.Context, screen tcell.Screen, c *Controller) error {
	events := make(chan tcell.Event, 16)
	done := make(chan struct{})
	defer close(done)
	go func() {
		for {
			ev := screen.PollEvent()
			if ev == nil {
				close(events)
				return
			}
			select {
			case events <- ev:
			case <-done:
				return
			}
		}
	}()

	Draw(screen, c)
	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-events:
			if !ok {
				return nil
			}
			switch ev := ev.(type) {
			case *tcell.EventKey:
				if !c.HandleKey(KeyFromEvent(ev)) {
					log.Info().Int("score", c.State().Score).Int("moves", c.State().MoveCount).Msg("player quit")
					return nil
				}
			case *tcell.EventResize:
				screen.Sync()
			}
			Draw(screen, c)
		}
	}
}
