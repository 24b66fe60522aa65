package cli

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"quiz-platform/internal/config"
	"quiz-platform/pkg/discovery"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
)

// NewServeCmd builds the subcommand that runs the HTTP API.
func NewServeCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the quiz API server",
		Long: `Start the quiz API server.

With storage.driver=memory nothing is persisted and no users exist until
they are listed under storage.seed_users (or as comma-separated ids in
SEED_USERS). Terminating a quiz for a user that is not seeded returns 404.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), *configPath, *port)
		},
	}
}

func loadConfig(configPath, portFlag string) (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	if portFlag != "" {
		cfg.Server.Port = portFlag
	}
	return cfg, nil
}

func runServer(ctx context.Context, configPath, portFlag string) error {
	if ctx == nil {
		ctx = context.Background()
	}
	cfg, err := loadConfig(configPath, portFlag)
	if err != nil {
		return err
	}

	logFile, err := setupLogging(cfg.Log.File)
	if err != nil {
		return err
	}
	defer logFile.Close()

	gin.SetMode(cfg.Server.GinMode)

	a, err := wire(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.close()

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      a.router.Engine(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	var registry *discovery.ServiceRegistry
	if cfg.Consul.Address != "" {
		registry, err = discovery.NewServiceRegistry(cfg)
		if err != nil {
			log.Printf("Warning: service discovery disabled: %v", err)
		} else if err := registry.Register(); err != nil {
			log.Printf("Warning: %v", err)
			registry = nil
		}
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Printf("Starting %s on :%s (%s)", cfg.Server.ServiceName, cfg.Server.Port, cfg.Server.Environment)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(stop)

	select {
	case <-stop:
		log.Println("Shutting down server...")
	case <-ctx.Done():
		log.Println("Context canceled, shutting down server...")
	case err, ok := <-serveErr:
		if ok {
			return err
		}
	}

	if registry != nil {
		if err := registry.Deregister(); err != nil {
			log.Printf("Warning: %v", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
