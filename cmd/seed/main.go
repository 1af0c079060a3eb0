// Standalone seeder for development environments. Idempotent: running it
// against a populated database changes nothing.
package main

import (
	"log"

	"github.com/joho/godotenv"

	"hackmate/database"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found, using system environment variables")
	}

	database.InitDB()
	defer database.CloseDB()

	database.Seed(database.GetDB())
	log.Println("Seed complete")
}
