package cmd

import (
	"fmt"
	"log"

	"github.com/frahmantamala/attendance-tracking/internal/settings"
	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed the database with initial accounts and settings",
	Long:  `Seed the database with the developer and master accounts plus default settings for development and first deployments.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig(".")
		if err != nil {
			log.Fatalf("failed to load config: %v", err)
		}

		db, err := initDB(cfg.Database)
		if err != nil {
			log.Fatalf("failed to init db: %v", err)
		}
		defer db.Close()

		password := "password"
		hash, _ := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)

		accounts := []struct {
			Username string
			Role     string
			JobTitle string
		}{
			{"developer", "developer", "System Developer"},
			{"master", "master", "Administrator"},
		}

		for _, a := range accounts {
			var exists int
			row := db.QueryRow("SELECT 1 FROM users WHERE username = $1", a.Username)
			if err := row.Scan(&exists); err == nil {
				fmt.Printf("%s account already exists; skipping\n", a.Username)
				continue
			}

			_, err := db.Exec(
				"INSERT INTO users (username, password_hash, role, job_title, location_enabled, device_locked, created_at, updated_at) VALUES ($1, $2, $3, $4, false, false, now(), now())",
				a.Username, string(hash), a.Role, a.JobTitle,
			)
			if err != nil {
				log.Fatalf("failed to insert %s account: %v", a.Username, err)
			}
			fmt.Printf("Seeded %s account\n", a.Username)
		}

		for name, value := range settings.Defaults {
			var exists int
			row := db.QueryRow("SELECT 1 FROM settings WHERE name = $1", name)
			if err := row.Scan(&exists); err == nil {
				continue
			}

			if _, err := db.Exec("INSERT INTO settings (name, value, updated_at) VALUES ($1, $2, now())", name, value); err != nil {
				log.Fatalf("failed to insert setting %s: %v", name, err)
			}
			fmt.Printf("Seeded setting: %s = %s\n", name, value)
		}

		fmt.Println("Seeding complete")
	},
}
