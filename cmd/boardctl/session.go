package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"collab-board/internal/client"
	"collab-board/internal/store"
)

const defaultTimeout = 10 * time.Second

// session is the store and client built from the persistent flags
type session struct {
	store  *store.Store
	client *client.BoardClient
	actor  uuid.UUID
	logger *zap.Logger
}

func newSession(cmd *cobra.Command) (*session, error) {
	flags := cmd.Flags()
	apiURL, _ := flags.GetString("api-url")
	token, _ := flags.GetString("token")
	timeout, _ := flags.GetDuration("timeout")
	verbose, _ := flags.GetBool("verbose")

	if token == "" {
		return nil, errors.New("no token: set --token or BOARD_API_TOKEN")
	}
	actor, err := actorFromToken(token)
	if err != nil {
		return nil, err
	}

	logger, err := consoleLogger(verbose)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	c := client.NewBoardClient(apiURL, token, timeout, logger, nil)
	return &session{
		store:  store.New(c, actor, logger),
		client: c,
		actor:  actor,
		logger: logger,
	}, nil
}

// actorFromToken reads the user id from the token claims. The server verifies
// the signature; the CLI only needs to know who it acts as.
func actorFromToken(token string) (uuid.UUID, error) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return uuid.Nil, fmt.Errorf("invalid token: %w", err)
	}
	for _, key := range []string{"user_id", "sub", "uid"} {
		raw, ok := claims[key].(string)
		if !ok || raw == "" {
			continue
		}
		id, err := uuid.Parse(raw)
		if err != nil {
			return uuid.Nil, fmt.Errorf("invalid %s claim: %w", key, err)
		}
		return id, nil
	}
	return uuid.Nil, errors.New("token carries no user id")
}

func consoleLogger(verbose bool) (*zap.Logger, error) {
	level := zapcore.WarnLevel
	if verbose {
		level = zapcore.DebugLevel
	}
	config := zap.NewDevelopmentConfig()
	config.Level = zap.NewAtomicLevelAt(level)
	config.OutputPaths = []string{"stderr"}
	config.DisableStacktrace = true
	return config.Build()
}

// settle waits for the remote outcome of a mutation and returns the confirmed
// value. A nil Pending means nothing changed.
func settle[T any](ctx context.Context, p *store.Pending[T], err error) (T, error) {
	var zero T
	if err != nil {
		return zero, err
	}
	if p == nil {
		return zero, nil
	}
	if err := p.Wait(ctx); err != nil {
		return zero, err
	}
	confirmed, _ := p.Confirmed()
	return confirmed, nil
}

func parseID(label, raw string) (uuid.UUID, error) {
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid %s %q", label, raw)
	}
	return id, nil
}
