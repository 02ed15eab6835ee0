package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"clipit_tycoon/internal/db"
	"clipit_tycoon/internal/game"
	"clipit_tycoon/internal/logger"
	"clipit_tycoon/internal/repository"
	"clipit_tycoon/internal/service"
	"clipit_tycoon/internal/store"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
)

// Prints a JWT for a test player. With DATABASE_URL set the player's
// initial state is written too, so the token works against a fresh database.
func main() {
	playerID := flag.String("player", "", "player id (default: new guest id)")
	ttl := flag.Duration("ttl", 24*time.Hour, "token lifetime")
	flag.Parse()

	_ = godotenv.Load()

	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		logger.Fatal("JWT_SECRET not set")
	}
	service.InitJWT(secret, *ttl)

	id := *playerID
	if id == "" {
		id = "guest-" + uuid.NewString()
	}

	if dsn := os.Getenv("DATABASE_URL"); dsn != "" {
		ctx := context.Background()
		pool := db.Connect(dsn, 2)
		defer pool.Close()
		if err := db.Migrate(ctx, pool); err != nil {
			logger.Fatal("migrate", "error", err)
		}

		st, err := store.Open(ctx, repository.NewPgStateRepository(pool), id, game.SystemClock{})
		if err != nil {
			logger.Fatal("open player state", "player_id", id, "error", err)
		}
		state := st.State()
		logger.ForPlayer(id).Info("player state ready",
			"money", state.Player.Money.String(), "followers", state.Player.Followers)
	}

	token, err := service.GenerateJWT(id)
	if err != nil {
		logger.Fatal("token generation failed", "error", err)
	}
	fmt.Printf("player_id=%s\ntoken=%s\n", id, token)
}
