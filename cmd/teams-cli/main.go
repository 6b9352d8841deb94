package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"slices"
	"time"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"

	"github.com/BenJLiuu/microsoftteamsbackend-sub000/internal/auth"
	"github.com/BenJLiuu/microsoftteamsbackend-sub000/internal/backend"
	"github.com/BenJLiuu/microsoftteamsbackend-sub000/internal/config"
	"github.com/BenJLiuu/microsoftteamsbackend-sub000/internal/gateway"
	"github.com/BenJLiuu/microsoftteamsbackend-sub000/internal/models"
	"github.com/BenJLiuu/microsoftteamsbackend-sub000/internal/service"
	"github.com/BenJLiuu/microsoftteamsbackend-sub000/internal/store"
)

// Set via -ldflags at build time.
var version = "dev"

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "migrate":
		if hasFlag("--help", os.Args[2:]) {
			fmt.Println("Usage: teams-cli migrate")
			fmt.Println()
			fmt.Println("Create the snapshot table from the migrations/ directory.")
			fmt.Println()
			fmt.Println("Environment:")
			fmt.Println("  DATABASE_URL  PostgreSQL connection string (required)")
			return
		}
		os.Exit(runMigrate())
	case "seed":
		if hasFlag("--help", os.Args[2:]) {
			fmt.Println("Usage: teams-cli seed")
			fmt.Println()
			fmt.Println("Seed the configured backend with demo data: 3 users, 2 channels, a DM, and messages.")
			fmt.Println("The backend must be empty.")
			fmt.Println()
			fmt.Println("Environment:")
			fmt.Println("  STORE_BACKEND  file, memory, redis, postgres, or minio (default: file)")
			fmt.Println("  JWT_SECRET     token signing secret (required)")
			return
		}
		os.Exit(runSeed())
	case "reset":
		if hasFlag("--help", os.Args[2:]) {
			fmt.Println("Usage: teams-cli reset")
			fmt.Println()
			fmt.Println("Replace the stored state with an empty snapshot.")
			fmt.Println()
			fmt.Println("Environment:")
			fmt.Println("  STORE_BACKEND  file, memory, redis, postgres, or minio (default: file)")
			return
		}
		os.Exit(runReset())
	case "health":
		if hasFlag("--help", os.Args[2:]) {
			fmt.Println("Usage: teams-cli health")
			fmt.Println()
			fmt.Println("Check if the server is running.")
			fmt.Println()
			fmt.Println("Environment:")
			fmt.Println("  SERVER_URL  Server base URL (default: http://localhost:8080)")
			return
		}
		os.Exit(runHealth())
	case "version":
		fmt.Printf("teams-cli %s\n", version)
	case "--help", "-h", "help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println("Usage: teams-cli <command> [flags]")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("  migrate  Run database migrations")
	fmt.Println("  seed     Seed demo data (users, channels, a DM, messages)")
	fmt.Println("  reset    Clear all stored state")
	fmt.Println("  health   Check if the server is running")
	fmt.Println("  version  Print version info")
	fmt.Println()
	fmt.Println("Run 'teams-cli <command> --help' for details on a command.")
}

func hasFlag(flag string, args []string) bool {
	return slices.Contains(args, flag)
}

func requireEnv(key string) string {
	v := os.Getenv(key)
	if v == "" {
		fmt.Fprintf(os.Stderr, "error: %s environment variable is required\n", key)
		os.Exit(1)
	}
	return v
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// openStore loads the configured backend. config.Load panics on bad
// configuration, which is reported like any other error here.
func openStore(ctx context.Context) (st *store.Store, cfg *config.Config, closeFn func(), err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%v", r)
		}
	}()
	cfg = config.Load()

	be, closeFn, err := backend.Open(ctx, cfg)
	if err != nil {
		return nil, nil, nil, err
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	st, err = store.Open(ctx, be, logger)
	if err != nil {
		closeFn()
		return nil, nil, nil, err
	}
	return st, cfg, closeFn, nil
}

// --- migrate ---

func runMigrate() int {
	dbURL := requireEnv("DATABASE_URL")

	fmt.Println("connecting to database...")
	m, err := migrate.New("file://migrations", dbURL)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: migration init failed: %v\n", err)
		return 1
	}
	defer m.Close()

	fmt.Println("running migrations...")
	err = m.Up()
	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		fmt.Fprintf(os.Stderr, "error: migration failed: %v\n", err)
		return 1
	}

	v, dirty, _ := m.Version()
	if errors.Is(err, migrate.ErrNoChange) {
		fmt.Printf("no new migrations (current version: %d)\n", v)
	} else {
		fmt.Printf("migrations applied (version: %d, dirty: %v)\n", v, dirty)
	}
	return 0
}

// --- seed ---

type seedUser struct {
	email, password, first, last string
}

func runSeed() int {
	ctx := context.Background()

	fmt.Println("opening backend...")
	st, cfg, closeFn, err := openStore(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}
	defer closeFn()

	empty := true
	_ = st.View(func(snap *models.Snapshot) error {
		empty = len(snap.Users) == 0
		return nil
	})
	if !empty {
		fmt.Fprintln(os.Stderr, "error: backend already holds data; run 'teams-cli reset' first")
		return 1
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	gw := gateway.Nop{}
	sessions := service.NewSessionRegistry(st, auth.NewTokenService(cfg.JWTSecret, cfg.TokenTTL), gw, logger)
	authSvc := service.NewAuthService(st, auth.NewHasher(auth.DefaultParams), sessions, logger)
	channels := service.NewChannelService(st, gw, logger)
	dms := service.NewDMService(st, gw, logger)
	messages := service.NewMessageService(st, gw, logger)

	fmt.Println("creating users...")
	users := []seedUser{
		{"alice@example.com", "password123", "Alice", "Anderson"},
		{"bob@example.com", "password456", "Bob", "Brown"},
		{"carol@example.com", "password789", "Carol", "Clark"},
	}
	ids := make([]int64, len(users))
	for i, u := range users {
		res, err := authSvc.Register(ctx, u.email, u.password, u.first, u.last)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: registering %s: %v\n", u.email, err)
			return 1
		}
		ids[i] = res.UserID
	}
	alice, bob, carol := ids[0], ids[1], ids[2]

	fmt.Println("creating channels...")
	general, err := channels.CreateChannel(ctx, alice, "general", true)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: creating channel: %v\n", err)
		return 1
	}
	private, err := channels.CreateChannel(ctx, alice, "staff", false)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: creating channel: %v\n", err)
		return 1
	}
	steps := []func() error{
		func() error { return channels.JoinChannel(ctx, bob, general.ID) },
		func() error { return channels.JoinChannel(ctx, carol, general.ID) },
		func() error { return channels.InviteToChannel(ctx, alice, private.ID, bob) },
		func() error { return channels.AddChannelOwner(ctx, alice, private.ID, bob) },
	}
	for _, step := range steps {
		if err := step(); err != nil {
			fmt.Fprintf(os.Stderr, "error: setting up channels: %v\n", err)
			return 1
		}
	}

	fmt.Println("creating DM...")
	dm, err := dms.CreateDM(ctx, bob, []int64{carol})
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: creating DM: %v\n", err)
		return 1
	}

	fmt.Println("creating messages...")
	sends := []struct {
		inDM   bool
		author int64
		convID int64
		text   string
	}{
		{false, alice, general.ID, "Welcome to #general!"},
		{false, bob, general.ID, "Hey Alice, glad to be here!"},
		{false, alice, private.ID, "Staff only in here."},
		{true, carol, dm.ID, "Hi Bob!"},
	}
	for _, m := range sends {
		send := messages.SendChannelMessage
		if m.inDM {
			send = messages.SendDMMessage
		}
		if _, err := send(ctx, m.author, m.convID, m.text); err != nil {
			fmt.Fprintf(os.Stderr, "error: sending message: %v\n", err)
			return 1
		}
	}

	fmt.Println()
	fmt.Println("seed complete:")
	fmt.Printf("  users:    alice (global owner), bob, carol; passwords password123/456/789\n")
	fmt.Printf("  channels: #general (public), #staff (private, owners alice and bob)\n")
	fmt.Printf("  dm:       %s\n", dm.Name)
	fmt.Printf("  messages: %d\n", len(sends))
	return 0
}

// --- reset ---

func runReset() int {
	ctx := context.Background()

	st, cfg, closeFn, err := openStore(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}
	defer closeFn()

	if err := st.Reset(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "error: reset failed: %v\n", err)
		return 1
	}
	fmt.Printf("%s backend reset\n", cfg.StoreBackend)
	return 0
}

// --- health ---

func runHealth() int {
	serverURL := envOr("SERVER_URL", "http://localhost:8080")
	url := serverURL + "/health"

	fmt.Printf("checking %s ...\n", url)

	client := &http.Client{Timeout: 5 * time.Second}
	resp, err := client.Get(url)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	fmt.Printf("status: %d\n", resp.StatusCode)
	if len(body) > 0 {
		fmt.Printf("body:   %s\n", string(body))
	}

	if resp.StatusCode == http.StatusOK {
		fmt.Println("server is healthy")
		return 0
	}
	fmt.Fprintln(os.Stderr, "server returned non-200 status")
	return 1
}
