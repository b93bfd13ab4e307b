package main

import (
	"log"
	"os"

	"voice-shopping-be/internal/model"
	"voice-shopping-be/pkg/database"

	"github.com/joho/godotenv"
)

func main() {
	// 1. Load Environment Variables
	if err := godotenv.Load(); err != nil {
		log.Println("Info: No .env file found, using system env")
	}

	dsn := os.Getenv("DB_CONNECTION_STRING")
	if dsn == "" {
		log.Fatal("Error: DB_CONNECTION_STRING is not set")
	}

	// 2. Connect to Database using existing GORM helpers
	db, err := database.NewGormDBFromDSN(dsn, true)
	if err != nil {
		log.Fatal("Error: Failed to connect to database:", err)
	}

	// 3. Extensions and tables
	log.Println("Starting catalog migration...")
	if err := database.Migrate(db, &model.Product{}); err != nil {
		log.Fatalf("Error: Migration failed: %v", err)
	}

	// 4. ANN index for cosine distance search
	indexSQL := `CREATE INDEX IF NOT EXISTS products_embedding_hnsw_idx
		ON products USING hnsw (embedding_value vector_cosine_ops);`
	if err := db.Exec(indexSQL).Error; err != nil {
		log.Printf("Warn: Failed to create vector index: %v", err)
	}

	log.Println("Success: Database migration completed")
}
