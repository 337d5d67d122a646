package cmd

import (
	"context"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	config "github.com/shahpalash10/chore-Mate/internal/configs"
	"github.com/shahpalash10/chore-Mate/internal/constants"
	"github.com/shahpalash10/chore-Mate/internal/identity"
	model "github.com/shahpalash10/chore-Mate/internal/models"
	repository "github.com/shahpalash10/chore-Mate/internal/repositories"
)

var (
	seedName     string
	seedEmail    string
	seedPassword string
)

// Signup only ever creates employees, so the first admin is provisioned here.
var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Provision the admin account",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := godotenv.Load(); err != nil {
			log.Println(".env file not found, using environment variables")
		}

		cfg := config.Load()
		database := config.New(cfg.DatabaseDSN)

		ids := identity.NewService(
			database,
			cfg.JWTSecret,
			time.Duration(cfg.SessionTTLHours)*time.Hour,
			cfg.SessionFile,
		)
		userRepo := repository.NewUserRepository(database, nil)

		ctx := context.Background()
		userID, err := ids.Register(ctx, seedEmail, seedPassword)
		if err != nil {
			return err
		}

		admin := &model.User{
			ID:    userID,
			Name:  seedName,
			Email: seedEmail,
			Role:  constants.RoleAdmin,
		}
		if err := userRepo.InsertUser(ctx, admin); err != nil {
			return err
		}

		log.Printf("admin %s created", seedEmail)
		return nil
	},
}

func init() {
	seedCmd.Flags().StringVar(&seedName, "name", "Admin", "admin display name")
	seedCmd.Flags().StringVar(&seedEmail, "email", "", "admin email")
	seedCmd.Flags().StringVar(&seedPassword, "password", "", "admin password")
	_ = seedCmd.MarkFlagRequired("email")
	_ = seedCmd.MarkFlagRequired("password")
	rootCmd.AddCommand(seedCmd)
}
