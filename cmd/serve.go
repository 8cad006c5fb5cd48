package cmd

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/calyx/image-service/api/core"
	"github.com/calyx/image-service/config"
	"github.com/calyx/image-service/internal/app"
	"github.com/spf13/cobra"
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start API server",
	Run: func(cmd *cobra.Command, args []string) {
		RunServer()
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func RunServer() {
	config.InitConfig()
	cfg := config.Get()

	container := app.NewContainer(cfg)
	if err := container.Init(); err != nil {
		log.Fatalf("Failed to initialize application: %v", err)
	}

	initDatabase(container)

	deps := &core.ServerDependencies{
		Router: &core.RouterDependencies{
			DBFactory:       container.GetDatabaseFactory(),
			CacheProvider:   container.GetCacheProvider(),
			AccountsService: container.AccountsService,
			ImagesService:   container.ImagesService,
			JWTService:      container.JWTService,
			LoginService:    container.LoginService,
		},
	}

	server, cleanup := core.StartServer(deps)
	go func() {
		log.Printf("Server started on %s", cfg.Addr())
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	// 定期清理过期的登录设备
	deviceCleanupStop := startDeviceCleanup(container)

	// 处理退出 signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if cleanup != nil {
		cleanup()
	}
	close(deviceCleanupStop)

	if err := container.Close(); err != nil {
		log.Printf("Error closing container: %v", err)
	}

	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exited successfully")
}

// initDatabase 自动迁移并确保默认角色和管理员存在
func initDatabase(container *app.Container) {
	factory := container.GetDatabaseFactory()
	log.Printf("Initializing database, database type: %s", factory.GetProvider().Name())

	if err := factory.AutoMigrate(); err != nil {
		log.Fatalf("Failed to auto migrate database: %v", err)
	}

	if err := container.AccountsRepo.EnsureDefaultRoles(); err != nil {
		log.Fatalf("Failed to ensure default roles: %v", err)
	}

	password, err := container.AccountsRepo.CreateDefaultAdminAccount()
	if err != nil {
		log.Fatalf("Failed to create default admin account: %v", err)
	}
	if password != "" {
		log.Printf("Created default admin account, initial password: %s", password)
	}

	log.Println("Database initialized successfully")
}

// startDeviceCleanup 启动过期设备清理任务
func startDeviceCleanup(container *app.Container) chan struct{} {
	stop := make(chan struct{})
	go func() {
		ticker := time.NewTicker(1 * time.Hour)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				deleted, err := container.DevicesRepo.DeleteExpired()
				if err != nil {
					log.Printf("Failed to clean up expired devices: %v", err)
				} else if deleted > 0 {
					log.Printf("Cleaned up %d expired login devices", deleted)
				}
			case <-stop:
				return
			}
		}
	}()
	return stop
}
