package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"clipit_tycoon/internal/db"
	"clipit_tycoon/internal/logger"

	"github.com/joho/godotenv"
)

func main() {
	apply := flag.Bool("apply", false, "apply pending migrations")
	flag.Parse()

	_ = godotenv.Load()

	migrations, err := db.Migrations()
	if err != nil {
		logger.Fatal("read migrations", "error", err)
	}
	if !*apply {
		for _, m := range migrations {
			fmt.Println(m.Name)
		}
		return
	}

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		logger.Fatal("DATABASE_URL not set")
	}

	pool := db.Connect(dsn, 2)
	defer pool.Close()

	if err := db.Migrate(context.Background(), pool); err != nil {
		logger.Fatal("migrate", "error", err)
	}
	if len(migrations) > 0 {
		fmt.Printf("schema at version %d\n", migrations[len(migrations)-1].Version)
	}
}
