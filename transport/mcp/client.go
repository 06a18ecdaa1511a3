package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/rs/zerolog/log"

	"github.com/smirk-dev/game2048/game/engine"
	"github.com/smirk-dev/game2048/game/highscore"
	"github.com/smirk-dev/game2048/game/service"
)

const (
	ServerName    = "2048"
	ServerVersion = "1.0.0"
)

// Client is a thin MCP server whose tools proxy to the REST API
type Client struct {
	baseURL    string
	httpClient *http.Client
	mcpServer  *server.MCPServer
}

// NewClient creates a new MCP client that calls the REST API at baseURL
func NewClient(baseURL string) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}

	c.initMCPServer()
	return c
}

func (c *Client) initMCPServer() {
	c.mcpServer = server.NewMCPServer(
		ServerName,
		ServerVersion,
		server.WithToolCapabilities(true),
		server.WithInstructions(`2048 - MCP Interface

Slide numbered tiles on a 4x4 board. Equal tiles merge and add their value to the score.
Reach the 2048 tile to win; the game ends when no move changes the board.

AVAILABLE TOOLS:
- create_session: Start a new game (optional config_id, e.g. classic or strict)
- list_sessions: List active games
- game_state: Show a game's board, score and moves
- move: Slide the board up/down/left/right
- restart_game: Throw the board away and start over
- high_scores: Ranked best games
- list_configs: Available rule presets
- game_instructions: Full rules and strategy notes`),
	)

	c.registerTools()
}

func sessionProperty() map[string]any {
	return map[string]any{
		"type":        "string",
		"description": "Session ID",
	}
}

func (c *Client) registerTools() {
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "create_session",
		Description: "Create a new 2048 game, optionally under a named rule preset",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]any{
				"config_id": map[string]any{
					"type":        "string",
					"description": "Rule preset to play under (optional, see list_configs)",
				},
			},
		},
	}, c.handleCreateSession)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_sessions",
		Description: "List all active game sessions, most recently played first",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]any{},
		},
	}, c.handleListSessions)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "game_state",
		Description: "Get the board, score, move count and status of a game",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]any{
				"session_id": sessionProperty(),
			},
			Required: []string{"session_id"},
		},
	}, c.handleGameState)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "move",
		Description: "Slide every tile in one direction",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]any{
				"session_id": sessionProperty(),
				"direction": map[string]any{
					"type":        "string",
					"enum":        []string{"up", "down", "left", "right"},
					"description": "Direction to slide",
				},
			},
			Required: []string{"session_id", "direction"},
		},
	}, c.handleMove)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "restart_game",
		Description: "Discard the current board and start a fresh game in the same session",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]any{
				"session_id": sessionProperty(),
			},
			Required: []string{"session_id"},
		},
	}, c.handleRestart)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "high_scores",
		Description: "List the best recorded games, ranked by score then fewest moves",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]any{
				"limit": map[string]any{
					"type":        "integer",
					"description": "Maximum number of records (optional)",
				},
			},
		},
	}, c.handleHighScores)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_configs",
		Description: "List the available rule presets",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]any{},
		},
	}, c.handleListConfigs)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "game_instructions",
		Description: "Get the complete rules and some strategy notes",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]any{},
		},
	}, c.handleGameInstructions)
}

// GetMCPServer returns the underlying MCP server for serving
func (c *Client) GetMCPServer() *server.MCPServer {
	return c.mcpServer
}

// HTTPHandler answers single JSON-RPC messages posted to it
func (c *Client) HTTPHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		body, err := io.ReadAll(r.Body)
		if err != nil {
			http.Error(w, "Failed to read request", http.StatusBadRequest)
			return
		}
		defer r.Body.Close()

		response := c.mcpServer.HandleMessage(r.Context(), body)
		if response == nil {
			// notifications carry no reply
			w.WriteHeader(http.StatusAccepted)
			return
		}

		data, err := json.Marshal(response)
		if err != nil {
			http.Error(w, "Failed to marshal response", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write(data)
	})
}

// ServeStdio blocks serving MCP over stdin/stdout
func (c *Client) ServeStdio() error {
	return server.ServeStdio(c.mcpServer)
}

func (c *Client) apiCall(ctx context.Context, method, path string, body any, result any) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	log.Debug().Str("method", method).Str("path", path).Int("status", resp.StatusCode).Msg("api call")

	if resp.StatusCode >= 400 {
		var errResp struct {
			Error string `json:"error"`
		}
		if json.NewDecoder(resp.Body).Decode(&errResp) == nil && errResp.Error != "" {
			return fmt.Errorf("%s", errResp.Error)
		}
		return fmt.Errorf("API error: %d", resp.StatusCode)
	}

	if result != nil {
		return json.NewDecoder(resp.Body).Decode(result)
	}
	return nil
}

func arguments(request mcp.CallToolRequest) map[string]any {
	if args, ok := request.Params.Arguments.(map[string]any); ok {
		return args
	}
	return map[string]any{}
}

func stringArg(args map[string]any, key string) string {
	s, _ := args[key].(string)
	return strings.TrimSpace(s)
}

func sessionPath(sessionID, suffix string) string {
	return "/api/sessions/" + url.PathEscape(sessionID) + suffix
}

// Tool handlers

func (c *Client) handleCreateSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	body := map[string]string{}
	if configID := stringArg(arguments(request), "config_id"); configID != "" {
		body["config_id"] = configID
	}

	var session service.SessionInfo
	if err := c.apiCall(ctx, http.MethodPost, "/api/sessions", body, &session); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf("Created session: %s\nConfig: %s\n\n%s",
		session.ID, session.ConfigName, formatGameState(session.GameState))), nil
}

func (c *Client) handleListSessions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var response struct {
		Count    int                   `json:"count"`
		Sessions []service.SessionInfo `json:"sessions"`
	}
	if err := c.apiCall(ctx, http.MethodGet, "/api/sessions", nil, &response); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Active Sessions (%d):\n\n", response.Count)
	for _, s := range response.Sessions {
		fmt.Fprintf(&sb, "- %s (Config: %s, Score: %d, Moves: %d%s)\n",
			s.ID, s.ConfigName, s.Stats.Score, s.Stats.Moves, statusSuffix(s.Stats.Won, s.Stats.Over))
	}
	return mcp.NewToolResultText(sb.String()), nil
}

func (c *Client) handleGameState(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID := stringArg(arguments(request), "session_id")
	if sessionID == "" {
		return mcp.NewToolResultError("session_id is required"), nil
	}

	var state engine.GameState
	if err := c.apiCall(ctx, http.MethodGet, sessionPath(sessionID, "/state"), nil, &state); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(formatGameState(&state)), nil
}

func (c *Client) handleMove(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	sessionID := stringArg(args, "session_id")
	if sessionID == "" {
		return mcp.NewToolResultError("session_id is required"), nil
	}

	body := map[string]string{"direction": stringArg(args, "direction")}

	var result service.MoveResult
	if err := c.apiCall(ctx, http.MethodPost, sessionPath(sessionID, "/move"), body, &result); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(formatMoveResult(&result)), nil
}

func (c *Client) handleRestart(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID := stringArg(arguments(request), "session_id")
	if sessionID == "" {
		return mcp.NewToolResultError("session_id is required"), nil
	}

	var response struct {
		State *engine.GameState `json:"state"`
	}
	if err := c.apiCall(ctx, http.MethodPost, sessionPath(sessionID, "/restart"), nil, &response); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText("Game restarted\n\n" + formatGameState(response.State)), nil
}

func (c *Client) handleHighScores(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path := "/api/highscores"
	switch n := arguments(request)["limit"].(type) {
	case float64:
		if n > 0 {
			path += "?limit=" + strconv.Itoa(int(n))
		}
	case string:
		if _, err := strconv.Atoi(n); err == nil {
			path += "?limit=" + n
		}
	}

	var response struct {
		HighScores []highscore.Record `json:"high_scores"`
	}
	if err := c.apiCall(ctx, http.MethodGet, path, nil, &response); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(formatHighScores(response.HighScores)), nil
}

func (c *Client) handleListConfigs(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var configs []service.ConfigInfo
	if err := c.apiCall(ctx, http.MethodGet, "/api/configs", nil, &configs); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var sb strings.Builder
	sb.WriteString("Available Configurations:\n\n")
	for _, cfg := range configs {
		rule := "win then keep playing"
		if cfg.WinEndsGame {
			rule = "game ends at 2048"
		}
		fmt.Fprintf(&sb, "- %s: %s (%s)\n", cfg.ConfigID, cfg.Description, rule)
	}
	return mcp.NewToolResultText(sb.String()), nil
}

func (c *Client) handleGameInstructions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(instructions), nil
}

const instructions = `2048 - Complete Instructions

GAME OBJECTIVE:
Merge tiles until one of them reads 2048. Under the classic preset you may keep
playing for a higher score; under the strict preset the game ends on the win.

THE BOARD:
A 4x4 grid. Empty cells are shown as "."; every other cell holds a power of two.
A new game starts with two tiles.

MOVEMENT COMMANDS:
- up, down, left, right: every tile slides as far as it can in that direction.
- Two equal tiles that meet merge into one tile of double the value.
- A tile produced by a merge does not merge again in the same move.
- When three equal tiles line up, the pair nearest the wall merges first.

SCORING:
Each merge adds the value of the new tile to your score. [2,2,2,2] slid left
becomes [4,4,.,.] and scores 8.

AFTER EACH MOVE:
If anything moved, one new tile appears in a random empty cell: a 2 nine times
out of ten, otherwise a 4. A move that changes nothing is ignored: no tile
spawns and the move counter does not advance.

GAME OVER:
The game ends when the board is full and no two neighbouring tiles are equal.
Finished games are offered to the high-score table, ranked by score and then by
fewest moves.

STRATEGY NOTES:
- Keep your largest tile in a corner and build a descending chain from it.
- Favour two or three directions; the fourth can pull the big tile out of its corner.
- Check possible_moves in each move result before committing.

Good luck reaching 2048!`

// Formatting helpers

func statusSuffix(won, over bool) string {
	switch {
	case over:
		return ", over"
	case won:
		return ", won"
	default:
		return ""
	}
}

func formatGameState(state *engine.GameState) string {
	if state == nil {
		return "No game state available"
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Score: %d | Moves: %d | Max tile: %d\n\n",
		state.Score, state.MoveCount, engine.MaxTile(state.Board))
	sb.WriteString(engine.FormatBoard(state.Board))
	sb.WriteString("\n")

	switch {
	case state.Over:
		sb.WriteString("\nGAME OVER")
	case state.Won:
		sb.WriteString("\nYOU WIN!")
	}

	if state.Message != "" {
		fmt.Fprintf(&sb, "\nMessage: %s", state.Message)
	}
	return sb.String()
}

func formatMoveResult(result *service.MoveResult) string {
	var sb strings.Builder
	switch {
	case result.Ignored:
		sb.WriteString("- Move ignored: the game is finished\n")
	case result.Success:
		fmt.Fprintf(&sb, "✓ Moved %s (+%d)\n", result.Transition.Direction, result.Transition.ScoreDelta)
	default:
		sb.WriteString("✗ Nothing moved\n")
	}

	sb.WriteString(formatGameState(result.GameState))
	sb.WriteString("\n")

	if len(result.PossibleMoves) > 0 {
		moves := make([]string, len(result.PossibleMoves))
		for i, d := range result.PossibleMoves {
			moves[i] = d.String()
		}
		fmt.Fprintf(&sb, "\nPossible moves: %s", strings.Join(moves, ", "))
	}

	if hs := result.HighScore; hs != nil {
		switch {
		case hs.Error != "":
			fmt.Fprintf(&sb, "\nHigh score not saved: %s", hs.Error)
		case hs.NewBest:
			sb.WriteString("\nNew best score!")
		case hs.Rank > 0:
			fmt.Fprintf(&sb, "\nEntered the high-score table at #%d", hs.Rank)
		}
	}
	return sb.String()
}

func formatHighScores(records []highscore.Record) string {
	if len(records) == 0 {
		return "No high scores yet"
	}

	var sb strings.Builder
	sb.WriteString("High Scores:\n\n")
	for i, r := range records {
		fmt.Fprintf(&sb, "%d. %d points in %d moves\n", i+1, r.Score, r.Moves)
	}
	return sb.String()
}
