package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"webapp/internal/db"
	"webapp/internal/model"
	"webapp/internal/repository"
)

// SeedAccount is one entry of the seed file.
type SeedAccount struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

func main() {
	_ = godotenv.Load()

	file := flag.String("file", "cmd/seed/accounts.json", "JSON array of accounts to create")
	dsn := flag.String("dsn", os.Getenv("MYSQL_DSN"), "MySQL DSN (defaults to MYSQL_DSN)")
	flag.Parse()

	if *dsn == "" {
		log.Fatal("no DSN: set MYSQL_DSN or pass -dsn")
	}

	log.Println("Starting seed script...")

	raw, err := os.ReadFile(*file)
	if err != nil {
		log.Fatalf("Failed to read %s: %v", *file, err)
	}
	var accounts []SeedAccount
	if err := json.Unmarshal(raw, &accounts); err != nil {
		log.Fatalf("Failed to parse %s: %v", *file, err)
	}
	log.Printf("Loaded %d accounts", len(accounts))

	gormDB, err := db.NewMySQL(*dsn)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	if err := db.Migrate(gormDB, false); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	created, skipped, err := seedAccounts(context.Background(), repository.NewAccountRepository(gormDB), accounts, bcrypt.DefaultCost)
	if err != nil {
		log.Fatalf("Failed to seed accounts: %v", err)
	}

	log.Printf("Seed completed successfully!")
	log.Printf("  - New verified accounts created: %d", created)
	log.Printf("  - Existing or invalid entries skipped: %d", skipped)
}

// seedAccounts creates verified accounts, leaving existing emails untouched.
func seedAccounts(ctx context.Context, repo repository.AccountRepository, accounts []SeedAccount, cost int) (created int, skipped int, err error) {
	for _, item := range accounts {
		email := strings.ToLower(strings.TrimSpace(item.Email))
		if email == "" || item.Password == "" {
			log.Printf("Skipping entry without email or password")
			skipped++
			continue
		}

		_, err := repo.FindByEmail(ctx, email)
		if err == nil {
			skipped++
			continue
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return created, skipped, fmt.Errorf("error checking account %s: %w", email, err)
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(item.Password), cost)
		if err != nil {
			return created, skipped, fmt.Errorf("error hashing password for %s: %w", email, err)
		}

		account := &model.Account{
			Email:        email,
			PasswordHash: string(hash),
			FirstName:    item.FirstName,
			LastName:     item.LastName,
			Verified:     true,
		}
		if err := repo.Create(ctx, account); err != nil {
			return created, skipped, fmt.Errorf("error creating account %s: %w", email, err)
		}
		created++
	}

	return created, skipped, nil
}
