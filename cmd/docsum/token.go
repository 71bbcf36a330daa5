package main

import (
	"context"
	"fmt"
	"time"

	"github.com/a-h/docsum/auth"
)

type TokenCommand struct {
	UserID        string        `help:"The ID of the user the token is for." required:""`
	Name          string        `help:"The name of the user." default:""`
	Email         string        `help:"The email address of the user." default:""`
	SessionSecret string        `help:"The secret used to sign session tokens." env:"SESSION_SECRET" required:""`
	SessionMaxAge time.Duration `help:"How long the token lasts." env:"SESSION_MAX_AGE" default:"720h"`
}

func (c TokenCommand) Run(ctx context.Context) (err error) {
	sessions, err := auth.NewSessions([]byte(c.SessionSecret), c.SessionMaxAge)
	if err != nil {
		return fmt.Errorf("failed to configure sessions: %w", err)
	}
	token, _, err := sessions.Issue(auth.Token{UserID: c.UserID, Name: c.Name, Email: c.Email})
	if err != nil {
		return fmt.Errorf("failed to issue token: %w", err)
	}
	fmt.Println(token)
	return nil
}
