// Command devtoken prints a signed bearer token for local testing.
//
//	JWT_SECRET=... go run ./cmd/devtoken -role Organizer -ttl 2h
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"github.com/kirinyoku/tix-events/internal/auth"
)

func main() {
	var (
		subject = flag.String("sub", "", "subject uuid (random when empty)")
		role    = flag.String("role", "Organizer", "role claim")
		ttl     = flag.Duration("ttl", time.Hour, "token lifetime")
	)
	flag.Parse()

	_ = godotenv.Load()

	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		slog.Error("JWT_SECRET is not set")
		os.Exit(1)
	}

	id := uuid.New()
	if *subject != "" {
		parsed, err := uuid.Parse(*subject)
		if err != nil {
			slog.Error("invalid -sub", "error", err)
			os.Exit(1)
		}
		id = parsed
	}

	issuer := auth.NewIssuer(auth.Config{
		Secret: []byte(secret),
		Issuer: os.Getenv("JWT_ISSUER"),
	})

	token, err := issuer.Issue(id, *role, *ttl)
	if err != nil {
		slog.Error("failed to sign token", "error", err)
		os.Exit(1)
	}

	fmt.Println(token)
}
