package cmd

import (
	"fmt"
	"log"

	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/fintech-enterprise/expense-tracker/internal/auth"
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

		_, db, err := initDB(cfg.Database)
		if err != nil {
			log.Fatalf("failed to init db: %v", err)
		}

		if clearData {
			for _, table := range []string{"expenses", "users", "departments"} {
				if err := db.Exec("DELETE FROM " + table).Error; err != nil {
					log.Fatalf("failed to clear %s: %v", table, err)
				}
			}
			fmt.Println("Cleared existing data")
		}

		departments := []struct {
			Name   string
			Budget string
		}{
			{"Engineering", "500000.00"},
			{"Sales", "250000.00"},
			{"Operations", "120000.00"},
		}

		for _, d := range departments {
			var exists int
			row := db.Raw("SELECT 1 FROM departments WHERE name = ?", d.Name).Row()
			if err := row.Scan(&exists); err == nil {
				continue
			}

			if err := db.Exec(
				"INSERT INTO departments (name, yearly_budget, spent_amount, created_at, updated_at) VALUES (?, ?, 0, now(), now())",
				d.Name, d.Budget,
			).Error; err != nil {
				log.Fatalf("failed to insert department %s: %v", d.Name, err)
			}
			fmt.Println("Seeded department:", d.Name)
		}

		var engineeringID int64
		if err := db.Raw("SELECT id FROM departments WHERE name = ?", "Engineering").Row().Scan(&engineeringID); err != nil {
			log.Fatalf("failed to lookup engineering department id: %v", err)
		}

		password := "password"
		hash, err := bcrypt.GenerateFromPassword([]byte(password), cfg.Security.BCryptCost)
		if err != nil {
			log.Fatalf("failed to hash seed password: %v", err)
		}

		users := []struct {
			Username string
			Role     string
		}{
			{"admin", auth.RoleAdmin},
			{"manager", auth.RoleManager},
			{"employee", auth.RoleEmployee},
		}

		for _, u := range users {
			if seedUser(db, u.Username, string(hash), u.Role, engineeringID) {
				fmt.Println("Seeded user:", u.Username, "role:", u.Role)
			}
		}

		fmt.Println("Seed data loaded successfully")
	},
}

func seedUser(db *gorm.DB, username, passwordHash, role string, departmentID int64) bool {
	var exists int
	row := db.Raw("SELECT 1 FROM users WHERE username = ?", username).Row()
	if err := row.Scan(&exists); err == nil {
		fmt.Printf("user %s already exists; skipping\n", username)
		return false
	}

	if err := db.Exec(
		"INSERT INTO users (username, password_hash, role, department_id, created_at, updated_at) VALUES (?, ?, ?, ?, now(), now())",
		username, passwordHash, role, departmentID,
	).Error; err != nil {
		log.Fatalf("failed to insert user %s: %v", username, err)
	}
	return true
}
