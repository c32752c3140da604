// Command token-issuer prints a signed access token for a user id, signed with
// the same secret the server reads from its configuration.
//
// Usage:
//
//	token-issuer -user alice [-lifetime 30m]
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/phrazzld/deckmind/internal/config"
	"github.com/phrazzld/deckmind/internal/service/auth"
)

func main() {
	userID := flag.String("user", "", "user id to place in the token subject")
	lifetime := flag.Duration("lifetime", 0, "token lifetime, defaults to auth.token_lifetime_minutes")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	token, err := issue(context.Background(), *userID, *lifetime)
	if err != nil {
		logger.Error("failed to issue token", slog.String("error", err.Error()))
		os.Exit(1)
	}
	fmt.Println(token)
}

func issue(ctx context.Context, userID string, lifetime time.Duration) (string, error) {
	if strings.TrimSpace(userID) == "" {
		return "", fmt.Errorf("-user is required")
	}

	cfg, err := config.Load()
	if err != nil {
		return "", fmt.Errorf("failed to load configuration: %w", err)
	}

	authCfg := cfg.Auth
	if lifetime > 0 {
		authCfg.TokenLifetimeMinutes = max(1, int(lifetime/time.Minute))
	}

	jwtService, err := auth.NewJWTService(authCfg)
	if err != nil {
		return "", fmt.Errorf("failed to create token service: %w", err)
	}
	return jwtService.GenerateToken(ctx, userID)
}
