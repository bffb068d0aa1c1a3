package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/wricardo/wumpus/game/config"
	"github.com/wricardo/wumpus/game/engine"
	"github.com/wricardo/wumpus/game/wumpus"
)

// Client is a thin MCP client that proxies to the REST API
type Client struct {
	baseURL    string
	httpClient *http.Client
	mcpServer  *server.MCPServer
}

// NewClient creates a new MCP client that calls the REST API
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

// initMCPServer initializes the MCP server with all tools
func (c *Client) initMCPServer() {
	c.mcpServer = server.NewMCPServer(
		"Hunt the Wumpus",
		"1.0.0",
		server.WithToolCapabilities(true),
		server.WithInstructions(`Hunt the Wumpus - MCP Interface

This is a thin client that proxies all requests to the REST API server.

GAME OBJECTIVE:
Shoot the wumpus with one of your crooked arrows. The cave has 20 rooms, each
joined to 3 others. Every response lists the rooms you can move to and warns
you when the wumpus, a pit or bats are one room away.

AVAILABLE TOOLS:
- create_session: Start a new game
- list_sessions / get_session / end_session: Manage games
- move: Walk into an adjacent room - requires intent explanation
- shoot: Fire an arrow through 1-5 rooms - requires intent explanation
- restart: Start over with new random positions for you and the hazards
- game_instructions: The original rules
- last_response: Repeat the last response
- save_game / restore_game: Snapshot and restore a game
- list_configs: List available configurations

NOTE: The 'intent' parameter on move/shoot serves as rubber duck debugging - explain your reasoning!`),
	)

	c.registerTools()
}

func sessionProperty() map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"description": "Session ID",
	}
}

// registerTools registers all MCP tools
func (c *Client) registerTools() {
	// Session management
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "create_session",
		Description: "Start a new game with optional config selection",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"config_name": map[string]interface{}{
					"type":        "string",
					"description": "Name of the config to use (optional)",
				},
			},
		},
	}, c.handleCreateSession)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_sessions",
		Description: "List all active games",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleListSessions)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "get_session",
		Description: "Get details of a specific game",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{"session_id": sessionProperty()},
			Required:   []string{"session_id"},
		},
	}, c.handleGetSession)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "end_session",
		Description: "End a game and free it",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{"session_id": sessionProperty()},
			Required:   []string{"session_id"},
		},
	}, c.handleEndSession)

	// Game operations
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "move",
		Description: "Move to an adjacent room",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionProperty(),
				"room": map[string]interface{}{
					"type":        "integer",
					"minimum":     1,
					"maximum":     wumpus.RoomCount,
					"description": "Room to move to; must be joined to the current room by a tunnel",
				},
				"intent": map[string]interface{}{
					"type":        "string",
					"description": "Brief explanation of the intent behind this move (serves as a rubber duck to help explain your reasoning)",
				},
			},
			Required: []string{"session_id", "room"},
		},
	}, c.handleMove)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "shoot",
		Description: "Shoot a crooked arrow through a path of rooms",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionProperty(),
				"rooms": map[string]interface{}{
					"type": "array",
					"items": map[string]interface{}{
						"type":    "integer",
						"minimum": 1,
						"maximum": wumpus.RoomCount,
					},
					"minItems":    1,
					"maxItems":    wumpus.MaxArrowPath,
					"description": "Rooms the arrow flies through, in order",
				},
				"intent": map[string]interface{}{
					"type":        "string",
					"description": "Brief explanation of why you expect the wumpus on this path",
				},
			},
			Required: []string{"session_id", "rooms"},
		},
	}, c.handleShoot)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "restart",
		Description: "Start over: you, the wumpus, the pits and the bats move to new random rooms and the quiver is refilled",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{"session_id": sessionProperty()},
			Required:   []string{"session_id"},
		},
	}, c.handleRestart)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "game_instructions",
		Description: "Get the game instructions and rules",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{"session_id": sessionProperty()},
			Required:   []string{"session_id"},
		},
	}, c.handleGameInstructions)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "last_response",
		Description: "Repeat the last response of a game",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{"session_id": sessionProperty()},
			Required:   []string{"session_id"},
		},
	}, c.handleLastResponse)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "save_game",
		Description: "Snapshot a game. Pass the returned state to restore_game later.",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{"session_id": sessionProperty()},
			Required:   []string{"session_id"},
		},
	}, c.handleSaveGame)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "restore_game",
		Description: "Restore a game from a save_game snapshot",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionProperty(),
				"state": map[string]interface{}{
					"type":        "string",
					"description": "Snapshot JSON returned by save_game",
				},
			},
			Required: []string{"session_id", "state"},
		},
	}, c.handleRestoreGame)

	// Configuration
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_configs",
		Description: "List available game configurations",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleListConfigs)
}

// GetMCPServer returns the underlying MCP server for serving
func (c *Client) GetMCPServer() *server.MCPServer {
	return c.mcpServer
}

// Run serves MCP over stdin and stdout until the input closes
func (c *Client) Run() error {
	return server.ServeStdio(c.mcpServer)
}

// Helper methods for API calls

func (c *Client) apiCall(ctx context.Context, method, path string, body interface{}, result interface{}) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reqBody = bytes.NewBuffer(data)
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

	if resp.StatusCode >= 400 {
		var errResp map[string]string
		json.NewDecoder(resp.Body).Decode(&errResp)
		if msg, ok := errResp["error"]; ok {
			return fmt.Errorf("%s", msg)
		}
		return fmt.Errorf("API error: %d", resp.StatusCode)
	}

	if result != nil {
		return json.NewDecoder(resp.Body).Decode(result)
	}

	return nil
}

// play posts an action or event and formats the game's answer
func (c *Client) play(ctx context.Context, sessionID, endpoint string, payload interface{}) (*mcp.CallToolResult, error) {
	var resp wumpus.Response
	err := c.apiCall(ctx, "POST", fmt.Sprintf("/api/sessions/%s/%s", sessionID, endpoint), payload, &resp)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(formatResponse(&resp)), nil
}

func arguments(request mcp.CallToolRequest) map[string]interface{} {
	args, _ := request.Params.Arguments.(map[string]interface{})
	if args == nil {
		return map[string]interface{}{}
	}
	return args
}

// Tool handlers

type sessionInfo struct {
	SessionID      string    `json:"session_id"`
	CreatedAt      time.Time `json:"created_at"`
	LastAccessedAt time.Time `json:"last_accessed"`
	PlayURL        string    `json:"play_url"`
}

func (c *Client) handleCreateSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	configName, _ := arguments(request)["config_name"].(string)

	body := map[string]string{}
	if configName != "" {
		body["config_id"] = configName
	}

	var created struct {
		Session sessionInfo   `json:"session"`
		Config  wumpus.Config `json:"config"`
	}
	if err := c.apiCall(ctx, "POST", "/api/sessions", body, &created); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := fmt.Sprintf("Created session: %s\nConfig: %s (%d arrows)\nUse game_instructions or move to begin.\n",
		created.Session.SessionID, created.Config.Name, created.Config.Arrows)
	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleListSessions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var response struct {
		Count    int           `json:"count"`
		Sessions []sessionInfo `json:"sessions"`
	}

	if err := c.apiCall(ctx, "GET", "/api/sessions", nil, &response); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := fmt.Sprintf("Active Sessions (%d):\n\n", response.Count)
	for _, s := range response.Sessions {
		result += fmt.Sprintf("- %s (Created: %s, Last used: %s)\n",
			s.SessionID, s.CreatedAt.Format("15:04:05"), s.LastAccessedAt.Format("15:04:05"))
	}

	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleGetSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, _ := arguments(request)["session_id"].(string)

	var response struct {
		Session          sessionInfo `json:"session"`
		ShutdownRequired bool        `json:"shutdown_required"`
	}
	if err := c.apiCall(ctx, "GET", fmt.Sprintf("/api/sessions/%s", sessionID), nil, &response); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := fmt.Sprintf("Session: %s\nCreated: %s\nLast used: %s\nPlay: %s\n",
		response.Session.SessionID,
		response.Session.CreatedAt.Format(time.RFC3339),
		response.Session.LastAccessedAt.Format(time.RFC3339),
		response.Session.PlayURL)
	if response.ShutdownRequired {
		result += "The player quit; use end_session to free it.\n"
	}
	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleEndSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, _ := arguments(request)["session_id"].(string)

	if err := c.apiCall(ctx, "DELETE", fmt.Sprintf("/api/sessions/%s", sessionID), nil, nil); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Ended session %s", sessionID)), nil
}

func (c *Client) handleMove(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	sessionID, _ := args["session_id"].(string)
	room, ok := args["room"].(float64)
	if !ok {
		return mcp.NewToolResultError("room must be a number"), nil
	}

	return c.play(ctx, sessionID, "execute", wumpus.Move(int(room)))
}

func (c *Client) handleShoot(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	sessionID, _ := args["session_id"].(string)
	roomsRaw, _ := args["rooms"].([]interface{})

	rooms := make([]int, 0, len(roomsRaw))
	for _, r := range roomsRaw {
		room, ok := r.(float64)
		if !ok {
			return mcp.NewToolResultError("rooms must be numbers"), nil
		}
		rooms = append(rooms, int(room))
	}

	return c.play(ctx, sessionID, "execute", wumpus.Shoot(rooms...))
}

func (c *Client) handleRestart(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, _ := arguments(request)["session_id"].(string)
	return c.play(ctx, sessionID, "execute", wumpus.Action{Kind: wumpus.ActionReStart})
}

func (c *Client) handleGameInstructions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, _ := arguments(request)["session_id"].(string)
	return c.play(ctx, sessionID, "execute", wumpus.Action{Kind: wumpus.ActionInstructions})
}

func (c *Client) handleLastResponse(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, _ := arguments(request)["session_id"].(string)

	var resp wumpus.Response
	if err := c.apiCall(ctx, "GET", fmt.Sprintf("/api/sessions/%s/response", sessionID), nil, &resp); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(formatResponse(&resp)), nil
}

func (c *Client) handleSaveGame(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, _ := arguments(request)["session_id"].(string)

	var resp wumpus.Response
	path := fmt.Sprintf("/api/sessions/%s/events", sessionID)
	if err := c.apiCall(ctx, "POST", path, engine.NewEvent(engine.EventSaveInstanceState), &resp); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if len(resp.SavedState) == 0 {
		return mcp.NewToolResultError("game returned no saved state"), nil
	}
	return mcp.NewToolResultText(string(resp.SavedState)), nil
}

func (c *Client) handleRestoreGame(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	sessionID, _ := args["session_id"].(string)
	state, _ := args["state"].(string)

	if !json.Valid([]byte(state)) {
		return mcp.NewToolResultError("state must be the JSON returned by save_game"), nil
	}

	event := engine.Event{
		Kind:  engine.EventRestoreInstanceState,
		Name:  string(engine.EventRestoreInstanceState),
		State: json.RawMessage(state),
	}
	return c.play(ctx, sessionID, "events", event)
}

func (c *Client) handleListConfigs(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var configs []config.ConfigInfo
	if err := c.apiCall(ctx, "GET", "/api/configs", nil, &configs); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := fmt.Sprintf("Available Configurations (%d):\n\n", len(configs))
	for _, cfg := range configs {
		result += fmt.Sprintf("- %s: %d arrows", cfg.ConfigID, cfg.Arrows)
		if cfg.Description != "" {
			result += " - " + cfg.Description
		}
		result += "\n"
	}
	return mcp.NewToolResultText(result), nil
}

// Formatting helpers

// formatResponse renders a game response as plain text lines
func formatResponse(resp *wumpus.Response) string {
	var b strings.Builder
	for _, msg := range resp.Messages() {
		b.WriteString(stripMarkup(msg))
		b.WriteString("\n")
	}

	if resp.Shutdown {
		b.WriteString("\nThe player quit. Use end_session to free the game.\n")
		return b.String()
	}

	switch resp.Outcome {
	case wumpus.Won:
		b.WriteString("\nVICTORY! Use restart to play again.\n")
	case wumpus.Lost:
		b.WriteString("\nGAME OVER. Use restart to play again.\n")
	default:
		fmt.Fprintf(&b, "\nTunnels lead to: %d %d %d\n", resp.Tunnels[0], resp.Tunnels[1], resp.Tunnels[2])
		fmt.Fprintf(&b, "Arrows left: %d\n", resp.Arrows)
	}
	return b.String()
}

// stripMarkup drops the line-break tags the browser page relies on
func stripMarkup(s string) string {
	return strings.ReplaceAll(s, "<br/>", "\n")
}
