package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"levitt_bridge/internal/gateway"
	"levitt_bridge/internal/handlers"
	"levitt_bridge/internal/logger"
	"levitt_bridge/internal/models"
	"levitt_bridge/internal/repository"
	"levitt_bridge/internal/server"
	"levitt_bridge/internal/service"

	"github.com/spf13/viper"
)

const defaultSupervisorTick = 30 * time.Second

func main() {
	// load config.yml, then init the logger at the configured level
	cfgErr := loadConfig()
	log := logger.Get(logLevel())
	if cfgErr != nil {
		log.Fatalw("error reading config", "err", cfgErr)
	}

	// open DB
	db, err := openDB(log)
	if err != nil {
		log.Fatalw("failed to init sqlite", "err", err)
	}
	defer func() {
		if cerr := db.Close(); cerr != nil {
			log.Fatalw("failed to close sqlite", "err", cerr)
		}
	}()

	// gateway client over the static house wiring
	gw := gateway.NewClient(viper.GetString("gateway.address"), models.DefaultRoomTable(), log)

	// wire dependencies
	repos := repository.NewRepository(db)
	services := service.NewService(repos, service.Deps{
		Gateway:         gw,
		Table:           gw.Table(),
		GatewayUsername: viper.GetString("gateway.username"),
		GatewayPassword: viper.GetString("gateway.password"),
		JWTSigningKey:   viper.GetString("jwt.signing_key"),
		Log:             log,
	})
	apiHandler := handlers.NewHandler(services, log)

	// context for background goroutines
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// establish the gateway session up front, best effort; the supervisor
	// retries if the house network is down right now
	if gw.Login(ctx, viper.GetString("gateway.username"), viper.GetString("gateway.password")) {
		log.Infow("gateway session established", "address", viper.GetString("gateway.address"))
	} else {
		log.Warnw("gateway login failed on startup; supervisor will retry")
	}

	// start session supervisor (via composed service)
	go services.Supervisor.Run(ctx, supervisorTick())

	// start HTTP server
	srv := &server.Server{}
	runHTTPServer(srv, viper.GetString("port"), apiHandler, log)

	// graceful shutdown
	waitForShutdown(cancel, srv, gw, log)
}

func loadConfig() error {
	viper.AddConfigPath("configs") // configs/config.yml
	viper.SetConfigName("config")
	return viper.ReadInConfig()
}

func logLevel() string {
	if lvl := viper.GetString("log.level"); lvl != "" {
		return lvl
	}
	return logger.InfoLevel
}

func supervisorTick() time.Duration {
	if d := viper.GetDuration("gateway.supervisor_tick"); d > 0 {
		return d
	}
	return defaultSupervisorTick
}

// openDB initializes the SQLite database using configuration.
func openDB(log *logger.Logger) (*sql.DB, error) {
	dbPath := viper.GetString("db.path")
	if dbPath == "" {
		log.Infow("db.path not set in config; using default file", "default", "bridge.db")
		dbPath = "bridge.db"
	}
	return repository.InitDB(dbPath)
}

// runHTTPServer runs the HTTP server in a separate goroutine.
func runHTTPServer(srv *server.Server, port string, handler *handlers.Handler, log *logger.Logger) {
	go func() {
		if port == "" {
			port = "8080"
		}
		if err := srv.Run(port, handler.InitRoutes()); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalw("error starting server", "err", err)
		}
	}()
}

// waitForShutdown listens for termination signals and performs graceful shutdown.
func waitForShutdown(cancel context.CancelFunc, srv *server.Server, gw *gateway.Client, log *logger.Logger) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Infow("shutting down server...")

	// stop background goroutines
	cancel()

	// allow in-flight requests to complete
	ctx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalw("server forced to shutdown", "err", err)
	}

	// drop the gateway session so the next start gets a clean login
	gw.Logout(ctx)
}
