// Package main implements the SSH server that serves the storefront and admin TUIs.
package main

import (
	"context"
	"crypto/ed25519"
	"crypto/rand"
	"encoding/pem"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/charmbracelet/ssh"
	"github.com/charmbracelet/wish"
	"github.com/charmbracelet/wish/activeterm"
	"github.com/charmbracelet/wish/bubbletea"
	"github.com/charmbracelet/wish/logging"
	"github.com/joho/godotenv"
	gossh "golang.org/x/crypto/ssh"

	"github.com/thomas/lookbook-terminal/internal/api"
	"github.com/thomas/lookbook-terminal/internal/auth"
	"github.com/thomas/lookbook-terminal/internal/cache"
	"github.com/thomas/lookbook-terminal/internal/cart"
	"github.com/thomas/lookbook-terminal/internal/config"
	"github.com/thomas/lookbook-terminal/internal/money"
	"github.com/thomas/lookbook-terminal/internal/session"
	"github.com/thomas/lookbook-terminal/internal/storage"
	"github.com/thomas/lookbook-terminal/internal/telemetry"
	"github.com/thomas/lookbook-terminal/internal/tui"
	"github.com/thomas/lookbook-terminal/internal/wishlist"
)

const adminCommand = "admin"

// app holds what every SSH session shares.
type app struct {
	cfg       *config.Config
	logger    *log.Logger
	kv        storage.KV
	catalog   *cache.Catalog
	money     *money.Formatter
	customers *auth.Allowlist
	admins    *auth.Allowlist
	http      *http.Client
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	logger := log.NewWithOptions(os.Stderr, log.Options{ReportTimestamp: true})

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load config", "err", err)
	}
	if level, err := log.ParseLevel(cfg.LogLevel); err == nil {
		logger.SetLevel(level)
	}

	if err := ensureHostKey(cfg.SSHHostKeyPath, logger); err != nil {
		logger.Fatal("Failed to ensure host key", "err", err)
	}

	a := &app{cfg: cfg, logger: logger}

	// Customer allowlist, only consulted in allowlist mode
	if cfg.SSHAuthMode == config.AuthModeAllowlist {
		a.customers, err = auth.LoadAllowlist(cfg.AllowlistPath)
		if err != nil {
			if errors.Is(err, auth.ErrAllowlistNotFound) {
				logger.Info("Creating empty allowlist", "path", cfg.AllowlistPath)
				if err := auth.CreateEmptyAllowlist(cfg.AllowlistPath, "Storefront SSH allowlist"); err != nil {
					logger.Fatal("Failed to create allowlist", "err", err)
				}
				logger.Info("Please add your SSH public key to the allowlist and restart")
				os.Exit(1)
			}
			logger.Fatal("Failed to load allowlist", "err", err)
		}
		if a.customers.Len() == 0 {
			logger.Warn("Allowlist is empty. Only admin keys will be accepted.", "path", cfg.AllowlistPath)
		}
		logger.Info("Loaded allowlist", "keys", a.customers.Len())
	} else {
		logger.Warn("Running in PUBLIC mode - anyone can connect!")
		logger.Warn("This is NOT safe for internet-facing servers.")
	}

	// Admin allowlist, always required for the admin console
	var created bool
	a.admins, created, err = auth.LoadOrCreate(cfg.AdminAllowlistPath, "Storefront admin console allowlist")
	if err != nil {
		logger.Fatal("Failed to load admin allowlist", "err", err)
	}
	if created {
		logger.Info("Created empty admin allowlist", "path", cfg.AdminAllowlistPath)
	}
	logger.Info("Loaded admin allowlist", "keys", a.admins.Len())

	a.kv, err = openStorage(cfg)
	if err != nil {
		logger.Fatal("Failed to open state storage", "backend", cfg.StateBackend, "err", err)
	}
	if closer, ok := a.kv.(interface{ Close() error }); ok {
		defer closer.Close()
	}

	a.money, err = money.New(cfg.Currency, cfg.Locale)
	if err != nil {
		logger.Fatal("Invalid currency settings", "err", err)
	}

	if err := os.MkdirAll(cfg.ExportDir, 0o755); err != nil {
		logger.Fatal("Failed to create export directory", "err", err)
	}

	a.http = &http.Client{
		Timeout:   cfg.APITimeout,
		Transport: http.DefaultTransport,
	}

	// The catalog is public data, so one guest client feeds the shared cache.
	guest := a.newClient(api.RoleCustomer, &api.MemoryTokens{})
	a.catalog = cache.NewCatalog(guest, cfg.CacheTTL)

	ctx, stop := context.WithCancel(context.Background())
	defer stop()
	go a.sweepCatalog(ctx)

	var metricsServer *http.Server
	if cfg.MetricsAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", telemetry.Handler())
		metricsServer = &http.Server{Addr: cfg.MetricsAddr, Handler: mux, ReadHeaderTimeout: 10 * time.Second}
		go func() {
			logger.Info("Serving metrics", "addr", cfg.MetricsAddr)
			if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("Metrics server error", "err", err)
			}
		}()
	}

	server, err := wish.NewServer(
		wish.WithAddress(cfg.SSHAddr),
		wish.WithHostKeyPath(cfg.SSHHostKeyPath),
		wish.WithPublicKeyAuth(a.allowKey),
		// Always disable password auth
		wish.WithPasswordAuth(func(ctx ssh.Context, password string) bool {
			return false
		}),
		wish.WithMiddleware(
			bubbletea.Middleware(a.teaHandler),
			activeterm.Middleware(),
			logging.MiddlewareWithLogger(logger),
		),
	)
	if err != nil {
		logger.Fatal("Failed to create SSH server", "err", err)
	}

	// Handle shutdown
	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGTERM)

	logger.Info("Starting SSH server", "addr", cfg.SSHAddr, "api", cfg.APIBaseURL, "auth", cfg.SSHAuthMode, "state", cfg.StateBackend)
	logger.Info("Connect with: ssh -p <port> localhost, add 'admin' for the admin console")

	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, ssh.ErrServerClosed) {
			logger.Fatal("Server error", "err", err)
		}
	}()

	<-done
	logger.Info("Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if metricsServer != nil {
		_ = metricsServer.Shutdown(shutdownCtx)
	}
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Fatal("Shutdown error", "err", err)
	}
}

// allowKey admits admin keys always and customer keys per the auth mode.
func (a *app) allowKey(_ ssh.Context, key ssh.PublicKey) bool {
	if a.admins.Allows(key) {
		return true
	}
	if a.cfg.SSHAuthMode == config.AuthModePublic {
		return true
	}
	return a.customers.Allows(key)
}

func (a *app) newClient(role api.Role, tokens api.TokenStore) *api.Client {
	hc := *a.http
	hc.Transport = telemetry.RoundTripper(a.http.Transport, role.String())
	return api.NewClient(a.cfg.APIBaseURL, role,
		api.WithHTTPClient(&hc),
		api.WithTokenStore(tokens),
		api.WithLogger(a.logger),
	)
}

func (a *app) sweepCatalog(ctx context.Context) {
	if a.cfg.CacheTTL <= 0 {
		return
	}
	ticker := time.NewTicker(a.cfg.CacheTTL)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := a.catalog.Sweep(); n > 0 {
				a.logger.Debug("Swept catalog cache", "expired", n)
			}
		}
	}
}

// teaHandler builds the model for one SSH session. Cart, wishlist and tokens are
// namespaced by the visitor's key.
func (a *app) teaHandler(s ssh.Session) (tea.Model, []tea.ProgramOption) {
	ns := auth.Namespace(s.PublicKey())
	kv := storage.WithNamespace(a.kv, ns)
	logger := a.logger.With("session", ns)
	opts := []tea.ProgramOption{tea.WithAltScreen()}

	cmd := s.Command()
	if len(cmd) > 0 && cmd[0] == adminCommand && a.admins.Allows(s.PublicKey()) {
		closed := telemetry.SessionOpened("admin")
		go func() {
			<-s.Context().Done()
			closed()
		}()

		tokens := session.NewTokens(kv, api.RoleAdmin, logger)
		client := a.newClient(api.RoleAdmin, tokens)
		return tui.NewAdminModel(tui.AdminDeps{
			Ctx:       s.Context(),
			Client:    client,
			Session:   session.NewStore(client, tokens, logger),
			Catalog:   a.catalog,
			Money:     a.money,
			Logger:    logger,
			ExportDir: a.cfg.ExportDir,
		}), opts
	}
	if len(cmd) > 0 && cmd[0] == adminCommand {
		logger.Warn("Admin console refused, key is not on the admin allowlist")
	}

	closed := telemetry.SessionOpened("storefront")
	go func() {
		<-s.Context().Done()
		closed()
	}()

	tokens := session.NewTokens(kv, api.RoleCustomer, logger)
	client := a.newClient(api.RoleCustomer, tokens)
	return tui.NewModel(tui.Deps{
		Ctx:      s.Context(),
		Client:   client,
		Catalog:  a.catalog,
		Session:  session.NewStore(client, tokens, logger),
		Cart:     cart.New(kv, logger),
		Wishlist: wishlist.New(kv, logger),
		Money:    a.money,
		Logger:   logger,
	}), opts
}

// openStorage opens the configured backend for client state.
func openStorage(cfg *config.Config) (storage.KV, error) {
	switch cfg.StateBackend {
	case config.StateBackendFile:
		return storage.NewFile(cfg.StateDir)
	case config.StateBackendRedis:
		return storage.DialRedis(context.Background(), cfg.RedisURL)
	default:
		return storage.NewMemory(), nil
	}
}

// ensureHostKey generates an ED25519 host key if it doesn't exist.
func ensureHostKey(path string, logger *log.Logger) error {
	if _, err := os.Stat(path); err == nil {
		return nil
	}

	logger.Info("Generating new ED25519 host key", "path", path)

	pubKey, privKey, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return fmt.Errorf("generating key: %w", err)
	}

	// Convert to OpenSSH format
	sshPrivKey, err := gossh.MarshalPrivateKey(privKey, "")
	if err != nil {
		return fmt.Errorf("marshaling private key: %w", err)
	}
	if err := os.WriteFile(path, pem.EncodeToMemory(sshPrivKey), 0600); err != nil {
		return fmt.Errorf("writing private key: %w", err)
	}

	sshPubKey, err := gossh.NewPublicKey(pubKey)
	if err != nil {
		return fmt.Errorf("creating public key: %w", err)
	}
	if err := os.WriteFile(path+".pub", gossh.MarshalAuthorizedKey(sshPubKey), 0644); err != nil {
		return fmt.Errorf("writing public key: %w", err)
	}

	return nil
}
