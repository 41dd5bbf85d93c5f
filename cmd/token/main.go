// Command token mints tenant bearer tokens for operators and integrations.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"shopdesk-be/internal/auth"

	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()

	if err := run(os.Args[1:], os.Getenv("JWT_SECRET"), os.Stdout); err != nil {
		log.Fatal(err)
	}
}

func run(args []string, secret string, out io.Writer) error {
	fs := flag.NewFlagSet("token", flag.ContinueOnError)
	tenantID := fs.Int64("tenant", 0, "tenant id")
	actor := fs.String("actor", "", "subject recorded as the actor of status changes")
	ttl := fs.Duration("ttl", 24*time.Hour, "token lifetime, 0 for no expiry")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if secret == "" {
		return errors.New("JWT_SECRET not set in environment")
	}

	token, err := auth.IssueTenantToken([]byte(secret), *tenantID, *actor, *ttl)
	if err != nil {
		return err
	}

	_, err = fmt.Fprintln(out, token)
	return err
}
