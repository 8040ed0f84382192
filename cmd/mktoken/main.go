// Command mktoken mints a supervisor JWT for the live-view endpoint,
// signed with the same secret the server verifies against.  Intended
// for the liveview CLI and for manual testing.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/FelixHertweck/seatReservation-sub000/internal/utils"
)

func main() {
	_ = godotenv.Load()

	secretVar := flag.String("secret", os.Getenv("JWT_SECRET"), "signing secret shared with the server")
	subVar := flag.String("sub", "supervisor", "token subject")
	roleVar := flag.String("role", "SUPERVISOR", "role claim (SUPERVISOR or ADMIN)")
	ttlVar := flag.Duration("ttl", 12*time.Hour, "token lifetime")
	flag.Parse()

	if *secretVar == "" {
		slog.Error("missing signing secret: set -secret or JWT_SECRET")
		os.Exit(1)
	}

	token, err := utils.NewSupervisorToken(*secretVar, *subVar, *roleVar, *ttlVar)
	if err != nil {
		slog.Error("failed to sign token", "err", err)
		os.Exit(1)
	}
	fmt.Println(token)
}
