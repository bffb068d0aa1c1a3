// Command wumpus hosts Hunt the Wumpus games.
//
// It supports three commands:
//  1. "serve" (default) – runs the HTTP server exposing the REST API, browser play, WebSocket, and an /mcp HTTP endpoint
//  2. "mcp" – runs an MCP stdio server, reusing a running HTTP server or starting an internal one
//  3. "validate" – checks configuration files
//
// The C library lives in cmd/libwumpus; this command drives the same
// boundary from Go.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"github.com/wricardo/wumpus/api"
	"github.com/wricardo/wumpus/game/boundary"
	"github.com/wricardo/wumpus/game/config"
	"github.com/wricardo/wumpus/game/engine"
	"github.com/wricardo/wumpus/game/wumpus"
	"github.com/wricardo/wumpus/transport/mcp"
	"github.com/wricardo/wumpus/transport/websocket"
)

// Version information
const (
	Version = "1.0.0"
	AppName = "Hunt the Wumpus Server"
)

const (
	sweepInterval = time.Hour
	sweepMaxAge   = 24 * time.Hour
)

func main() {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "Warning: Error loading .env file: %v\n", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newApp().Run(ctx, os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// newApp builds the command tree
func newApp() *cli.Command {
	return &cli.Command{
		Name:    "wumpus",
		Usage:   AppName,
		Version: Version,
		Flags:   serveFlags(),
		Action:  runServe,
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "Run HTTP server with API, WebSocket, and MCP endpoint",
				Flags:  serveFlags(),
				Action: runServe,
			},
			{
				Name:  "mcp",
				Usage: "Run MCP stdio server backed by an HTTP server",
				Flags: append(serveFlags(), &cli.StringFlag{
					Name:    "api-url",
					Usage:   "HTTP server to proxy to; an internal one is started when it is unreachable",
					Value:   "http://127.0.0.1:8080",
					Sources: cli.EnvVars("WUMPUS_API_URL"),
				}),
				Action: runMCP,
			},
			{
				Name:      "validate",
				Usage:     "Check configuration files",
				ArgsUsage: "FILE...",
				Action:    runValidate,
			},
		},
	}
}

func serveFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "host",
			Usage:   "HTTP server host",
			Value:   "127.0.0.1",
			Sources: cli.EnvVars("HOST"),
		},
		&cli.IntFlag{
			Name:    "port",
			Usage:   "HTTP server port",
			Value:   8080,
			Sources: cli.EnvVars("PORT"),
		},
		&cli.StringFlag{
			Name:    "config-dir",
			Usage:   "Directory containing game configurations",
			Value:   "configs",
			Sources: cli.EnvVars("CONFIG_DIR"),
		},
		&cli.StringFlag{
			Name:  "config",
			Usage: "Configuration used when a game names none",
		},
		&cli.BoolFlag{
			Name:    "verbose",
			Aliases: []string{"debug"},
			Usage:   "Enable debug logging",
		},
	}
}

// setupLogger installs the process logger. --verbose wins over
// WUMPUS_LOG_LEVEL.
func setupLogger(verbose bool) *zap.Logger {
	level := os.Getenv(boundary.LogLevelEnv)
	if verbose {
		level = "debug"
	}
	log := boundary.NewLogger(level)
	boundary.SetLogger(log)
	return log
}

// app holds everything a host command runs on
type app struct {
	log     *zap.Logger
	service boundary.Service
	configs *config.Manager
}

// newHost builds the boundary and the configuration manager. A missing
// config directory only costs the named configurations.
func newHost(cmd *cli.Command) (*app, error) {
	log := setupLogger(cmd.Bool("verbose"))

	service := boundary.New[wumpus.Config, wumpus.Action, wumpus.Response](
		wumpus.Factory{Logger: log}, engine.PC, boundary.WithLogger(log))

	a := &app{log: log, service: service}

	configs, err := config.NewManager(cmd.String("config-dir"))
	if err != nil {
		log.Warn("configurations unavailable", zap.Error(err))
	} else {
		a.configs = configs
	}

	if name := cmd.String("config"); name != "" {
		if a.configs == nil {
			return nil, fmt.Errorf("--config %s needs a config directory", name)
		}
		if err := a.configs.SetDefault(name); err != nil {
			return nil, fmt.Errorf("failed to select config %s: %w", name, err)
		}
	}

	return a, nil
}

// handler mounts the API server and the /mcp endpoint
func (a *app) handler(hub *websocket.Hub, baseURL string) http.Handler {
	apiServer := api.NewServer(a.service, a.configs, hub, a.log)
	mcpClient := mcp.NewClient(baseURL)

	mainRouter := http.NewServeMux()
	mainRouter.Handle("/", apiServer)
	mainRouter.HandleFunc("/mcp", func(w http.ResponseWriter, r *http.Request) {
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

		response := mcpClient.GetMCPServer().HandleMessage(r.Context(), body)

		w.Header().Set("Content-Type", "application/json")
		responseData, err := json.Marshal(response)
		if err != nil {
			http.Error(w, "Failed to marshal response", http.StatusInternalServerError)
			return
		}
		w.Write(responseData)
	})
	return mainRouter
}

// serve runs an HTTP server on listener until ctx is done
func (a *app) serve(ctx context.Context, listener net.Listener) error {
	baseURL := "http://" + listener.Addr().String()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	hub := websocket.NewHub(a.service, a.log)

	httpServer := &http.Server{
		Handler:      a.handler(hub, baseURL),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		hub.Run(ctx)
	}()
	go func() {
		defer wg.Done()
		sweepRoutine(ctx, a.service, sweepInterval, sweepMaxAge)
	}()

	a.log.Info("HTTP server listening",
		zap.String("play", baseURL+"/"),
		zap.String("api", baseURL+"/api"),
		zap.String("websocket", "ws://"+listener.Addr().String()+"/ws?session=<session_id>"),
		zap.String("mcp", baseURL+"/mcp"))

	errCh := make(chan error, 1)
	go func() {
		errCh <- httpServer.Serve(listener)
	}()

	var err error
	select {
	case err = <-errCh:
	case <-ctx.Done():
		a.log.Info("shutting down")
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		if shutdownErr := httpServer.Shutdown(shutdownCtx); shutdownErr != nil {
			a.log.Error("HTTP server shutdown error", zap.Error(shutdownErr))
		}
		err = <-errCh
	}

	cancel()
	wg.Wait()
	a.log.Info("server stopped", zap.Int("live_games", a.service.Count()))

	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

func runServe(ctx context.Context, cmd *cli.Command) error {
	a, err := newHost(cmd)
	if err != nil {
		return err
	}
	defer a.log.Sync()

	addr := fmt.Sprintf("%s:%d", cmd.String("host"), cmd.Int("port"))
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}

	a.log.Info("starting", zap.String("app", AppName), zap.String("version", Version))
	return a.serve(ctx, listener)
}

// runMCP serves MCP over stdio. When no HTTP server answers at --api-url an
// internal one is started on a free loopback port.
func runMCP(ctx context.Context, cmd *cli.Command) error {
	a, err := newHost(cmd)
	if err != nil {
		return err
	}
	defer a.log.Sync()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	baseURL := cmd.String("api-url")
	if !reachable(ctx, baseURL) {
		a.log.Info("no external API server found, starting internal HTTP server", zap.String("api_url", baseURL))

		listener, err := net.Listen("tcp", "127.0.0.1:0")
		if err != nil {
			return fmt.Errorf("failed to get available port: %w", err)
		}
		baseURL = "http://" + listener.Addr().String()

		done := make(chan struct{})
		go func() {
			defer close(done)
			if err := a.serve(ctx, listener); err != nil {
				a.log.Error("internal HTTP server failed", zap.Error(err))
			}
		}()
		defer func() {
			cancel()
			<-done
		}()
	}

	a.log.Info("starting MCP stdio server", zap.String("api_url", baseURL))
	return mcp.NewClient(baseURL).Run()
}

// reachable reports whether an HTTP server answers health checks at baseURL
func reachable(ctx context.Context, baseURL string) bool {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, baseURL+"/health", nil)
	if err != nil {
		return false
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return false
	}
	resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}

func runValidate(ctx context.Context, cmd *cli.Command) error {
	files := cmd.Args().Slice()
	if len(files) == 0 {
		return errors.New("validate: no files given")
	}

	failed := 0
	for _, file := range files {
		cfg, err := config.DecodeFile(file)
		if err != nil {
			failed++
			fmt.Fprintf(cmd.Root().Writer, "FAIL %s: %v\n", file, err)
			continue
		}
		fmt.Fprintf(cmd.Root().Writer, "ok   %s (%s, %d arrows)\n", file, cfg.Name, cfg.Arrows)
	}

	if failed > 0 {
		return fmt.Errorf("validate: %d of %d files invalid", failed, len(files))
	}
	return nil
}

// sweepRoutine destroys games idle for longer than maxAge
func sweepRoutine(ctx context.Context, service boundary.Service, interval, maxAge time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			service.Sweep(maxAge)
		}
	}
}
