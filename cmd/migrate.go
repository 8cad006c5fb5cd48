package cmd

import (
	"log"

	"github.com/calyx/image-service/config"
	"github.com/calyx/image-service/internal/app"
	"github.com/spf13/cobra"
)

// migrateCmd represents the migrate command
var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run database migrations and seed default roles",
	Run: func(cmd *cobra.Command, args []string) {
		config.InitConfig()
		cfg := config.Get()

		container := app.NewContainer(cfg)
		if err := container.InitDatabase(); err != nil {
			log.Fatalf("Failed to initialize database: %v", err)
		}
		defer container.Close()

		factory := container.GetDatabaseFactory()
		if err := factory.AutoMigrate(); err != nil {
			log.Fatalf("Failed to migrate database: %v", err)
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

		log.Println("Migration completed")
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}
