package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/wricardo/mcp-training/warehouse/api"
	"github.com/wricardo/mcp-training/warehouse/game/engine"
	"github.com/wricardo/mcp-training/warehouse/game/render"
	"github.com/wricardo/mcp-training/warehouse/transport/mcp"
)

const smallExample = `########
#..O.O.#
##@.O..#
#...O..#
#.#.O..#
#...O..#
#......#
########

<^^>>>vv<v>>v<<
`

func testOptions(t *testing.T) options {
	t.Helper()
	configDir := t.TempDir()
	cfg := engine.DefaultConfig()
	cfg.Name = "Classic"
	data, _ := json.Marshal(cfg)
	if err := os.WriteFile(filepath.Join(configDir, "classic.json"), data, 0644); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}
	return options{
		host:        "localhost",
		port:        8080,
		configDir:   configDir,
		sessionsDir: filepath.Join(t.TempDir(), "sessions"),
	}
}

func TestConstants(t *testing.T) {
	if Version == "" {
		t.Error("Version should not be empty")
	}
	if AppName != "Warehouse Robot Server" {
		t.Errorf("Unexpected app name %s", AppName)
	}
}

func TestNewAppCommands(t *testing.T) {
	app := newApp()

	for _, name := range []string{"server", "http", "stdio-mcp", "mcp", "solve"} {
		if app.Command(name) == nil {
			t.Errorf("Expected command %q", name)
		}
	}

	flags := map[string]bool{}
	for _, f := range app.Flags {
		for _, name := range f.Names() {
			flags[name] = true
		}
	}
	for _, name := range []string{"port", "host", "config-dir", "sessions-dir", "debug", "ngrok", "ngrok-auth", "ngrok-domain"} {
		if !flags[name] {
			t.Errorf("Expected flag --%s", name)
		}
	}
}

func TestSolve(t *testing.T) {
	var out bytes.Buffer
	if err := solve(&out, smallExample, nil); err != nil {
		t.Fatalf("solve failed: %v", err)
	}

	if !strings.Contains(out.String(), "Part 1: 2028") {
		t.Errorf("Expected part one 2028, got:\n%s", out.String())
	}
	if !strings.Contains(out.String(), "Boxes: 6  Moves: 15") {
		t.Errorf("Expected box and move counts, got:\n%s", out.String())
	}
}

func TestSolveRender(t *testing.T) {
	theme := render.PlainTheme()
	var out bytes.Buffer
	if err := solve(&out, smallExample, &theme); err != nil {
		t.Fatalf("solve failed: %v", err)
	}
	// Final narrow grid of the small example
	if !strings.Contains(out.String(), "#.#O@..#") {
		t.Errorf("Expected rendered grid, got:\n%s", out.String())
	}
}

func TestSolveMalformed(t *testing.T) {
	var out bytes.Buffer
	if err := solve(&out, "#@#\n", nil); err == nil {
		t.Error("Expected error for input without a move section")
	}
}

func TestSolveCommandWithConfig(t *testing.T) {
	opts := testOptions(t)
	err := newApp().Run(context.Background(), []string{
		"warehouse", "--config-dir", opts.configDir, "solve", "--config", "classic",
	})
	if err != nil {
		t.Fatalf("solve command failed: %v", err)
	}
}

func TestInitializeServices(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	opts := testOptions(t)

	svcs, err := initializeServices(ctx, opts)
	if err != nil {
		t.Fatalf("Failed to initialize services: %v", err)
	}

	info, err := svcs.game.CreateSession(ctx, "classic")
	if err != nil {
		t.Fatalf("Failed to create session: %v", err)
	}
	if _, err := svcs.game.Move(ctx, info.ID, "down", false); err != nil {
		t.Fatalf("Failed to move: %v", err)
	}
	svcs.shutdown()

	if _, err := os.Stat(filepath.Join(opts.sessionsDir, info.ID+".json")); err != nil {
		t.Errorf("Expected session file after shutdown: %v", err)
	}

	// A second start replays the saved session
	again, err := initializeServices(ctx, opts)
	if err != nil {
		t.Fatalf("Failed to reinitialize services: %v", err)
	}
	state, err := again.game.GetGameState(ctx, info.ID)
	if err != nil {
		t.Fatalf("Expected persisted session to load: %v", err)
	}
	if state.RobotPos.Row != 3 || state.RobotPos.Col != 2 {
		t.Errorf("Expected robot at (3,2) after replay, got %s", state.RobotPos)
	}
}

func TestInitializeServices_InvalidConfigDir(t *testing.T) {
	opts := testOptions(t)
	opts.configDir = filepath.Join(t.TempDir(), "missing")

	if _, err := initializeServices(context.Background(), opts); err == nil {
		t.Error("Expected error for a missing config directory")
	}
}

func TestPruneDeletedSessions(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	opts := testOptions(t)

	svcs, err := initializeServices(ctx, opts)
	if err != nil {
		t.Fatalf("Failed to initialize services: %v", err)
	}
	keep, _ := svcs.game.CreateSession(ctx, "classic")
	gone, _ := svcs.game.CreateSession(ctx, "classic")

	if err := os.Remove(filepath.Join(opts.sessionsDir, gone.ID+".json")); err != nil {
		t.Fatalf("Failed to remove session file: %v", err)
	}

	if pruned := pruneDeletedSessions(svcs.sessions, svcs.persistence); pruned != 1 {
		t.Errorf("Expected 1 pruned session, got %d", pruned)
	}
	if svcs.sessions.Count() != 1 {
		t.Errorf("Expected 1 session left, got %d", svcs.sessions.Count())
	}
	if _, err := svcs.sessions.Get(keep.ID); err != nil {
		t.Errorf("Expected %s to survive: %v", keep.ID, err)
	}
}

func TestNewRouter(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	svcs, err := initializeServices(ctx, testOptions(t))
	if err != nil {
		t.Fatalf("Failed to initialize services: %v", err)
	}
	router := newRouter(api.NewServer(svcs.game, nil), mcp.NewClient("http://unused"))

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/health", nil))
	if w.Code != http.StatusOK {
		t.Errorf("Expected /health 200, got %d", w.Code)
	}

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/mcp", nil))
	if w.Code != http.StatusMethodNotAllowed {
		t.Errorf("Expected GET /mcp 405, got %d", w.Code)
	}

	body := strings.NewReader(`{"jsonrpc":"2.0","id":1,"method":"tools/list"}`)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("POST", "/mcp", body))
	if w.Code != http.StatusOK {
		t.Fatalf("Expected POST /mcp 200, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "solve_config") {
		t.Errorf("Expected tool list in response, got %s", w.Body.String())
	}
}
