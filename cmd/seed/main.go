package main

import (
	"database/sql"
	"fmt"
	"log"
	"os"
	"time"

	_ "github.com/lib/pq"
	"golang.org/x/crypto/bcrypt"
)

// Seeds the page config guarding user management plus an admin account that
// holds read-write access on it, so a fresh install has someone who can log
// in and manage users.
func main() {
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		log.Fatal("DATABASE_URL environment variable is required")
	}

	name := getenvDefault("SEED_USER_NAME", "Admin")
	email := getenvDefault("SEED_USER_EMAIL", "admin@example.com")
	phone := getenvDefault("SEED_USER_PHONE", "+10000000000")
	password := getenvDefault("SEED_USER_PASSWORD", "Admin1234!")
	guardPage := getenvDefault("GUARD_PAGE", "user profile")

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		log.Fatalf("failed to connect db: %v", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		log.Fatalf("failed to ping db: %v", err)
	}

	now := time.Now()

	// upsert the guard page config by name
	var pageConfigID int64
	err = db.QueryRow(`
		INSERT INTO page_configs (page_type, name, description, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (name) DO UPDATE SET updated_at = EXCLUDED.updated_at
		RETURNING id
	`, "page", guardPage, "User management", now, now).Scan(&pageConfigID)
	if err != nil {
		log.Fatalf("failed to seed page config: %v", err)
	}

	// hash password with bcrypt cost 10
	hash, err := bcrypt.GenerateFromPassword([]byte(password), 10)
	if err != nil {
		log.Fatalf("failed to hash password: %v", err)
	}

	// upsert admin user by email
	var userID int64
	err = db.QueryRow(`
		INSERT INTO users (name, email, phone_number, password, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (email) DO UPDATE SET
		  name = EXCLUDED.name,
		  phone_number = EXCLUDED.phone_number,
		  password = EXCLUDED.password,
		  updated_at = EXCLUDED.updated_at
		RETURNING id
	`, name, email, phone, string(hash), now, now).Scan(&userID)
	if err != nil {
		log.Fatalf("failed to seed user: %v", err)
	}

	// grant read-write on the guard page
	_, err = db.Exec(`
		INSERT INTO permissions (user_id, page_config_id, access_level, created_at, updated_at)
		VALUES ($1, $2, 'RW', $3, $4)
		ON CONFLICT (user_id, page_config_id) DO UPDATE SET
		  access_level = EXCLUDED.access_level,
		  updated_at = EXCLUDED.updated_at
	`, userID, pageConfigID, now, now)
	if err != nil {
		log.Fatalf("failed to seed permission: %v", err)
	}

	fmt.Printf("Seeded admin: email=%s password=%s page=%q id=%d\n", email, password, guardPage, userID)
}

func getenvDefault(k, d string) string {
	v := os.Getenv(k)
	if v == "" {
		return d
	}
	return v
}
