// Command game2048 plays 2048 in the terminal and serves it to other clients.
//
// Commands:
//  1. "play" (default) – the terminal game
//  2. "serve" – REST API, WebSocket updates and an /mcp HTTP endpoint, optionally through ngrok
//  3. "mcp" – an MCP stdio server, backed by a running API or an internal one
//  4. "scores" – prints the ranked high-score list
//  5. "validate" – checks rule presets and the high-score file
//
// Global flags choose where sessions, presets and high scores live. Most
// have an environment variable, and a .env file in the working directory is
// loaded first.
package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"path/filepath"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"

	"github.com/smirk-dev/game2048/game/config"
	"github.com/smirk-dev/game2048/game/engine"
	"github.com/smirk-dev/game2048/game/highscore"
	"github.com/smirk-dev/game2048/game/service"
	"github.com/smirk-dev/game2048/game/session"
	"github.com/smirk-dev/game2048/tui"
	"github.com/smirk-dev/game2048/validate"
)

// Version information
const (
	Version = "1.0.0"
	AppName = "game2048"
)

const logFileName = "game2048.log"

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "Warning: error loading .env file: %v\n", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newApp().Run(ctx, os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", AppName, err)
		stop()
		os.Exit(1)
	}
}

func newApp() *cli.Command {
	return &cli.Command{
		Name:    AppName,
		Usage:   "slide tiles, merge equal ones, reach 2048",
		Version: Version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "data-dir",
				Value:   "data",
				Usage:   "directory for sessions, high scores and logs",
				Sources: cli.EnvVars("GAME2048_DATA_DIR"),
			},
			&cli.StringFlag{
				Name:    "config-dir",
				Value:   "configs",
				Usage:   "directory containing rule presets",
				Sources: cli.EnvVars("CONFIG_DIR"),
			},
			&cli.StringFlag{
				Name:    "scores-backend",
				Value:   highscore.BackendFile,
				Usage:   "high-score storage: file or sqlite",
				Sources: cli.EnvVars("GAME2048_SCORES_BACKEND"),
			},
			&cli.IntFlag{
				Name:  "scores-capacity",
				Value: highscore.DefaultCapacity,
				Usage: "number of high scores kept",
			},
			&cli.Uint64Flag{
				Name:  "seed",
				Usage: "seed for tile spawns, 0 picks one at random",
			},
			&cli.StringFlag{
				Name:    "log-level",
				Value:   "info",
				Usage:   "trace, debug, info, warn or error",
				Sources: cli.EnvVars("LOG_LEVEL"),
			},
			&cli.BoolFlag{
				Name:  "debug",
				Usage: "shorthand for --log-level debug",
			},
		},
		Before: setupLogging,
		Action: runPlay,
		Commands: []*cli.Command{
			playCommand(),
			serveCommand(),
			mcpCommand(),
			scoresCommand(),
			validateCommand(),
		},
	}
}

// setupLogging points the global logger at stderr with the requested level.
// Commands that own the terminal redirect it afterwards.
func setupLogging(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	level, err := zerolog.ParseLevel(cmd.String("log-level"))
	if err != nil {
		return ctx, fmt.Errorf("invalid log level: %w", err)
	}
	if level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	if cmd.Bool("debug") {
		level = zerolog.DebugLevel
	}
	zerolog.SetGlobalLevel(level)

	log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}).
		With().Timestamp().Logger()
	return ctx, nil
}

// options are the global flags every command reads
type options struct {
	dataDir        string
	configDir      string
	scoresBackend  string
	scoresCapacity int
	seed           uint64
}

func optionsFrom(cmd *cli.Command) options {
	return options{
		dataDir:        cmd.String("data-dir"),
		configDir:      cmd.String("config-dir"),
		scoresBackend:  cmd.String("scores-backend"),
		scoresCapacity: cmd.Int("scores-capacity"),
		seed:           cmd.Uint64("seed"),
	}
}

func (o options) sessionsDir() string {
	return filepath.Join(o.dataDir, "sessions")
}

func (o options) scoresPath() string {
	if o.scoresBackend == highscore.BackendSQLite {
		return filepath.Join(o.dataDir, "highscores.db")
	}
	return filepath.Join(o.dataDir, highscore.DefaultFileName)
}

func (o options) openScores() (highscore.Store, error) {
	if err := os.MkdirAll(o.dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}
	store, err := highscore.Open(o.scoresBackend, o.scoresPath(), o.scoresCapacity)
	if err != nil {
		return nil, fmt.Errorf("failed to open high scores: %w", err)
	}
	return store, nil
}

// services is everything a command needs to run games
type services struct {
	game        service.GameService
	sessions    *session.Manager
	persistence *session.FilePersistence
	scores      highscore.Store
}

func (s *services) Close() error {
	return s.scores.Close()
}

// initializeServices wires config, session and high-score storage into a
// game service. Sessions are written under the data directory when persist
// is set; otherwise they live only in memory.
func initializeServices(opts options, persist bool) (*services, error) {
	configManager, err := config.NewManager(opts.configDir)
	if err != nil {
		return nil, fmt.Errorf("failed to create config manager: %w", err)
	}

	s := &services{}
	if persist {
		s.persistence, err = session.NewFilePersistence(opts.sessionsDir(), configManager)
		if err != nil {
			return nil, fmt.Errorf("failed to create session persistence: %w", err)
		}
		s.sessions = session.NewManagerWithPersistence(s.persistence)
	} else {
		s.sessions = session.NewManager()
	}

	// restored sessions draw from the same factory as new ones
	if opts.seed != 0 {
		s.sessions.SetSourceFactory(seededSources(opts.seed))
	}
	if persist {
		if err := s.sessions.LoadPersistedSessions(); err != nil {
			log.Warn().Err(err).Msg("failed to load persisted sessions")
		}
	}

	s.scores, err = opts.openScores()
	if err != nil {
		return nil, err
	}

	s.game = service.NewGameService(s.sessions, configManager, s.scores)
	return s, nil
}

// seededSources gives each new session its own seed, counting up from seed
func seededSources(seed uint64) session.SourceFactory {
	var n atomic.Uint64
	return func() engine.Source {
		return engine.NewSource(seed + n.Add(1) - 1)
	}
}

func playCommand() *cli.Command {
	return &cli.Command{
		Name:   "play",
		Usage:  "play in the terminal (default)",
		Flags:  []cli.Flag{configFlag()},
		Action: runPlay,
	}
}

func configFlag() cli.Flag {
	return &cli.StringFlag{
		Name:  "config",
		Usage: "rule preset to play, e.g. classic or strict",
	}
}

func runPlay(ctx context.Context, cmd *cli.Command) error {
	opts := optionsFrom(cmd)

	if err := os.MkdirAll(opts.dataDir, 0o755); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}
	logFile, err := os.OpenFile(filepath.Join(opts.dataDir, logFileName), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	defer logFile.Close()
	log.Logger = zerolog.New(logFile).With().Timestamp().Logger()

	svcs, err := initializeServices(opts, false)
	if err != nil {
		return err
	}
	defer svcs.Close()

	log.Info().Str("config", cmd.String("config")).Uint64("seed", opts.seed).Msg("starting terminal game")
	return tui.Run(ctx, svcs.game, cmd.String("config"))
}

func scoresCommand() *cli.Command {
	return &cli.Command{
		Name:  "scores",
		Usage: "print the high-score list",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "limit", Usage: "show at most this many, 0 for all"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			store, err := optionsFrom(cmd).openScores()
			if err != nil {
				return err
			}
			defer store.Close()

			records, err := store.Top(ctx, cmd.Int("limit"))
			if err != nil {
				return fmt.Errorf("failed to read high scores: %w", err)
			}
			printScores(cmd.Root().Writer, records)
			return nil
		},
	}
}

func validateCommand() *cli.Command {
	return &cli.Command{
		Name:  "validate",
		Usage: "check rule presets and the high-score file",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			opts := optionsFrom(cmd)

			results, err := validate.Dir(opts.configDir)
			if err != nil {
				return err
			}
			if opts.scoresBackend == highscore.BackendFile {
				results = append(results, validate.HighScores(opts.scoresPath(), opts.scoresCapacity))
			}

			if !printValidation(cmd.Root().Writer, results) {
				return errors.New("some files have errors")
			}
			return nil
		},
	}
}

