package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/justinas/alice"
	"github.com/redis/go-redis/v9"
	"github.com/rs/cors"

	"github.com/cbitosc/HTF25-Team-374/internal/api"
	"github.com/cbitosc/HTF25-Team-374/internal/config"
	"github.com/cbitosc/HTF25-Team-374/internal/db"
	"github.com/cbitosc/HTF25-Team-374/internal/lock"
	"github.com/cbitosc/HTF25-Team-374/internal/moderation"
	"github.com/cbitosc/HTF25-Team-374/internal/store"
)

type flags struct {
	configPath string
	dsn        string
	addr       string
	adminEmail string
	logPath    string
}

func parseFlags(args []string) (flags, error) {
	fs := flag.NewFlagSet("foundit", flag.ContinueOnError)

	var f flags
	fs.StringVar(&f.configPath, "config", "", "")
	fs.StringVar(&f.configPath, "c", "", "")
	fs.StringVar(&f.dsn, "db", "", "")
	fs.StringVar(&f.dsn, "d", "", "")
	fs.StringVar(&f.addr, "addr", "", "")
	fs.StringVar(&f.addr, "a", "", "")
	fs.StringVar(&f.adminEmail, "user", "", "")
	fs.StringVar(&f.adminEmail, "u", "", "")
	fs.StringVar(&f.logPath, "log", "", "")
	fs.StringVar(&f.logPath, "l", "", "")

	fs.Usage = func() {
		fmt.Fprint(os.Stdout, `Usage: foundit [flags]

Flags:
  -c, -config <path>      YAML config file (default: none)
  -d, -db <dsn>           database path or URL (default: foundit.sqlite3)
  -a, -addr <host:port>   listen address (default: :8080)
  -u, -user <email>       admin email on first run (default: admin@foundit.local)
  -l, -log <path>         log file path (default: no file, stdout/stderr only)
  -h, -help               show this help and exit

Environment variables FOUNDIT_* and a .env file override the config file;
flags override both.
`)
	}

	if err := fs.Parse(args); err != nil {
		return flags{}, err
	}
	if fs.NArg() > 0 {
		fs.Usage()
		return flags{}, fmt.Errorf("unexpected argument: %s", fs.Arg(0))
	}
	return f, nil
}

// apply overlays the flags that were set on cfg.
func (f flags) apply(cfg *config.Config) {
	if f.dsn != "" {
		cfg.Database.DSN = f.dsn
	}
	if f.addr != "" {
		cfg.Server.Address = f.addr
	}
	if f.adminEmail != "" {
		cfg.Admin.Email = f.adminEmail
	}
	if f.logPath != "" {
		cfg.Log.File = f.logPath
	}
}

func main() {
	f, err := parseFlags(os.Args[1:])
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(0)
		}
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	cfg, err := config.Load(f.configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	f.apply(&cfg)
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "error: invalid config: %v\n", err)
		os.Exit(1)
	}

	closeLog, err := setupLogger(cfg.Log.File)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	defer closeLog()

	if err := run(cfg); err != nil {
		slog.Error("fatal", "error", err)
		closeLog()
		os.Exit(1)
	}
}

func run(cfg config.Config) error {
	ctx := context.Background()

	database, err := db.Open(cfg.Database.Driver, cfg.Database.DSN)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer database.Close()

	if err := db.EnsureSchema(database); err != nil {
		return fmt.Errorf("ensuring database schema: %w", err)
	}
	slog.Info("database ready", "driver", cfg.Database.Driver)

	password, err := ensureAdmin(ctx, database, cfg.Admin.Name, cfg.Admin.Email)
	if err != nil {
		return err
	}
	if password != "" {
		printAdminCreated(cfg.Admin.Email, password)
	}

	// Load JWT secret from database (auto-generated on first run).
	jwtSecret, err := store.GetJWTSecret(ctx, database)
	if err != nil {
		return fmt.Errorf("getting JWT secret: %w", err)
	}

	locker, closeLocker, err := newLocker(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeLocker()

	items := &store.Items{DB: database}
	svc := moderation.NewService(items, locker, items, slog.Default())

	c := cors.New(cors.Options{
		AllowedOrigins:   cfg.CORS.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
	})
	handler := alice.New(api.LoggingMiddleware, c.Handler).Then(api.NewRouter(database, jwtSecret, svc))

	server := &http.Server{
		Addr:              cfg.Server.Address,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       cfg.Server.IdleTimeout,
	}

	// Graceful shutdown on SIGINT/SIGTERM.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-quit
		slog.Info("shutdown signal received", "signal", sig.String())

		ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		if err := server.Shutdown(ctx); err != nil {
			slog.Error("server forced to shutdown", "error", err)
		}
	}()

	slog.Info("server started", "addr", cfg.Server.Address)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server error: %w", err)
	}

	slog.Info("server stopped, closing database")
	return nil
}

// newLocker returns the Redis item lock when Redis is configured and the
// in-process one otherwise.
func newLocker(ctx context.Context, cfg config.Config) (lock.Locker, func(), error) {
	if cfg.Redis.Addr == "" {
		return lock.NewLocal(), func() {}, nil
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		rdb.Close()
		return nil, nil, fmt.Errorf("connecting to redis: %w", err)
	}

	slog.Info("using redis item locks", "addr", cfg.Redis.Addr)
	return lock.NewRedis(rdb, "", cfg.Redis.LockTTL), func() { rdb.Close() }, nil
}
