package main

import (
	"flag"
	"log"
	"os"

	"github.com/admiralorbiter/skien/internal/database"
	"github.com/admiralorbiter/skien/internal/services"

	"github.com/joho/godotenv"
)

// Bootstraps an admin account so a fresh install can log in
func main() {
	username := flag.String("username", "", "admin username")
	email := flag.String("email", "", "admin email")
	password := flag.String("password", "", "admin password (falls back to ADMIN_PASSWORD)")
	firstName := flag.String("first-name", "", "first name")
	lastName := flag.String("last-name", "", "last name")
	flag.Parse()

	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	if *password == "" {
		*password = os.Getenv("ADMIN_PASSWORD")
	}
	if *username == "" || *email == "" || *password == "" {
		log.Fatal("username, email and a password (flag or ADMIN_PASSWORD) are required")
	}

	dbConfig := database.LoadConfig()
	if err := database.Connect(dbConfig); err != nil {
		log.Fatal("Failed to connect to database:", err)
	}
	defer database.Close()

	if err := database.Migrate(); err != nil {
		log.Fatal("Failed to run migrations:", err)
	}

	users := services.NewUsersService(database.DB)

	existing, err := users.FindByUsername(*username)
	if err != nil {
		log.Fatal("Failed to check for existing user:", err)
	}
	if existing != nil {
		log.Fatalf("User %s already exists", *username)
	}

	user, err := users.Create(*username, *email, *password, *firstName, *lastName, true, true)
	if err != nil {
		if violations := services.Violations(err); violations != nil {
			for _, v := range violations {
				log.Println(" -", v)
			}
			log.Fatal("Admin user is invalid")
		}
		log.Fatal("Failed to create admin user:", err)
	}

	log.Printf("Created admin user %s (id %d)", user.Username, user.ID)
}
