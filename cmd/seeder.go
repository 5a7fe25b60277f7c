package cmd

import (
	"fmt"
	"log"

	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed the database with sample data",
	Long:  `Seed the database with sample data for development and testing purposes.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig(".")
		if err != nil {
			log.Fatalf("failed to load config: %v", err)
		}

		db, err := initDB(cfg.Database)
		if err != nil {
			log.Fatalf("failed to init db: %v", err)
		}

		if clearData {
			for _, table := range []string{"expense_attachments", "expenses", "operational_ledger", "payout_batches", "users", "expense_categories"} {
				if err := db.Exec("DELETE FROM " + table).Error; err != nil {
					log.Fatalf("failed to clear table %s: %v", table, err)
				}
			}
			fmt.Println("Cleared existing data")
		}

		password := "password"
		hash, _ := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)

		users := []struct {
			Email string
			Name  string
			Role  string
		}{
			{"ops@mail.com", "Ops Admin", "ADMIN"},
			{"budi@mail.com", "Budi", "TECHNICIAN"},
			{"sari@mail.com", "Sari", "TECHNICIAN"},
		}

		for _, u := range users {
			var exists int
			row := db.Raw("SELECT 1 FROM users WHERE email = ?", u.Email).Row()
			if err := row.Scan(&exists); err == nil {
				fmt.Printf("user %s already exists; skipping\n", u.Email)
				continue
			}

			if err := db.Exec(
				"INSERT INTO users (email, name, password_hash, role, is_active, created_at, updated_at) VALUES (?, ?, ?, ?, true, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)",
				u.Email, u.Name, string(hash), u.Role,
			).Error; err != nil {
				log.Fatalf("failed to insert user %s: %v", u.Email, err)
			}
			fmt.Printf("Seeded %s user: %s\n", u.Role, u.Email)
		}

		categories := []struct {
			Name string
			Desc string
		}{
			{"perjalanan", "perjalanan dinas dan transportasi"},
			{"suku_cadang", "suku cadang dan material perbaikan"},
			{"makan", "makan selama penugasan lapangan"},
			{"peralatan", "peralatan dan perkakas kerja"},
			{"lain_lain", "biaya lain-lain"},
		}

		for _, c := range categories {
			var exists int
			row := db.Raw("SELECT 1 FROM expense_categories WHERE name = ?", c.Name).Row()
			if err := row.Scan(&exists); err != nil {
				if err := db.Exec(
					"INSERT INTO expense_categories (name, description, is_active, created_at) VALUES (?, ?, true, CURRENT_TIMESTAMP)",
					c.Name, c.Desc,
				).Error; err != nil {
					log.Fatalf("failed to insert expense category %s: %v", c.Name, err)
				}
				fmt.Printf("Seeded expense category: %s\n", c.Name)
			}
		}

		fmt.Println("Seed completed")
	},
}
