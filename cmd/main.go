package main

import (
	"context"
	"database/sql"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"car_market/internal/handlers"
	"car_market/internal/logger"
	"car_market/internal/media"
	"car_market/internal/repository"
	"car_market/internal/repository/db"
	"car_market/internal/server"
	"car_market/internal/service"

	"github.com/spf13/viper"
)

const defaultTokenTTL = 720 * time.Hour // 30 days

func main() {
	// load config.yml before the logger so log.level applies
	if err := loadConfig(); err != nil {
		logger.Get(logger.InfoLevel).Fatalw("error reading config", "err", err)
	}
	log := logger.Get(viper.GetString("log.level"))

	// open DB
	dbConn, err := openDB(log)
	if err != nil {
		log.Fatalw("failed to init sqlite", "err", err)
	}
	defer func() {
		if cerr := dbConn.Close(); cerr != nil {
			log.Fatalw("failed to close sqlite", "err", cerr)
		}
	}()

	uploadDir, err := ensureUploadDir()
	if err != nil {
		log.Fatalw("failed to prepare upload dir", "err", err)
	}

	store, err := openMediaStore()
	if err != nil {
		log.Fatalw("failed to init media store", "err", err)
	}

	// wire dependencies
	repos := repository.NewRepository(dbConn)
	services := service.NewService(repos, store, log, authConfig(log))
	apiHandler := handlers.NewHandler(services, log, uploadDir)

	// start HTTP server
	srv := &server.Server{}
	runHTTPServer(srv, viper.GetString("port"), apiHandler, log)

	// graceful shutdown
	waitForShutdown(srv, log)
}

func loadConfig() error {
	viper.AddConfigPath("configs") // configs/config.yml
	viper.SetConfigName("config")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()
	return viper.ReadInConfig()
}

// openDB initializes the SQLite database using configuration.
func openDB(log *logger.Logger) (*sql.DB, error) {
	dbPath := viper.GetString("db.path")
	if dbPath == "" {
		log.Infow("db.path not set in config; using default file", "default", "car_market.db")
		dbPath = "car_market.db"
	}
	return db.InitDB(dbPath)
}

// ensureUploadDir creates the local staging directory for multipart files.
func ensureUploadDir() (string, error) {
	dir := viper.GetString("upload.dir")
	if dir == "" {
		dir = "tmp/uploads"
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	return dir, nil
}

func openMediaStore() (media.Store, error) {
	return media.NewS3Store(context.Background(), media.Config{
		Endpoint:  viper.GetString("s3.endpoint"),
		Region:    viper.GetString("s3.region"),
		Bucket:    viper.GetString("s3.bucket"),
		AccessKey: viper.GetString("s3.access_key"),
		SecretKey: viper.GetString("s3.secret_key"),
	})
}

func authConfig(log *logger.Logger) service.AuthConfig {
	secret := viper.GetString("jwt.secret")
	if secret == "" {
		log.Fatalw("jwt.secret is not set; refusing to start")
	}
	ttl := time.Duration(viper.GetInt("jwt.ttl_hours")) * time.Hour
	if ttl <= 0 {
		ttl = defaultTokenTTL
	}
	return service.AuthConfig{
		SigningKey: []byte(secret),
		TokenTTL:   ttl,
	}
}

// runHTTPServer runs the HTTP server in a separate goroutine.
func runHTTPServer(srv *server.Server, port string, handler *handlers.Handler, log *logger.Logger) {
	go func() {
		if port == "" {
			port = "8080"
		}
		if err := srv.Run(port, handler.InitRoutes()); err != nil {
			log.Fatalw("error starting server", "err", err)
		}
	}()
}

// waitForShutdown listens for termination signals and performs graceful shutdown.
func waitForShutdown(srv *server.Server, log *logger.Logger) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Infow("shutting down server...")

	// allow in-flight requests to complete
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalw("server forced to shutdown", "err", err)
	}
}
