// Command devtoken prints a signed access token for local testing of the API.
//
// It reads the same configuration as the server, so the token is accepted by
// a server started with the same COURSEGEN_AUTH_JWT_SECRET.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"

	"github.com/google/uuid"
	"github.com/phrazzld/coursegen-api/internal/config"
	"github.com/phrazzld/coursegen-api/internal/service/auth"
)

func main() {
	user := flag.String("user", "", "user ID to issue the token for (random when empty)")
	flag.Parse()

	userID := uuid.New()
	if *user != "" {
		parsed, err := uuid.Parse(*user)
		if err != nil {
			log.Fatalf("invalid -user: %v", err)
		}
		userID = parsed
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}
	svc, err := auth.NewJWTService(cfg.Auth)
	if err != nil {
		log.Fatalf("failed to initialize JWT service: %v", err)
	}
	token, err := svc.GenerateToken(context.Background(), userID)
	if err != nil {
		log.Fatalf("failed to issue token: %v", err)
	}

	fmt.Printf("user_id: %s\ntoken: %s\n", userID, token)
}
