// Command sessionwatch inspects and drives the locally stored session:
// report its state, refresh its activity timestamp, or log out.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"runtime/debug"
	"time"

	"github.com/common-nighthawk/go-figure"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/leadpilot/go-session-client/api"
	"github.com/leadpilot/go-session-client/internal/config"
	"github.com/leadpilot/go-session-client/session"
	"github.com/leadpilot/go-session-client/storage/boltstore"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("Error: %s\n", err)
	}
}

func run() (returnError error) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("Recovered from panic: %v\n", r)
			debug.PrintStack()
			returnError = errors.New("panic recovered")
		}
	}()

	status := flag.Bool("status", false, "print session state and time until expiry")
	touch := flag.Bool("touch", false, "record user activity")
	logout := flag.Bool("logout", false, "run the voluntary logout sequence")
	reason := flag.String("reason", "Signed out", "reason attached to logout")
	flag.Parse()

	// .env is optional; real deployments set the environment directly
	_ = godotenv.Load()
	c := config.New()
	displayAppname(c.GetAppName())

	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).
		With().Timestamp().Logger()

	store, err := boltstore.Open(c.GetStoragePath())
	if err != nil {
		return fmt.Errorf("opening session store: %w", err)
	}
	defer store.Close()

	backend, err := api.New(c.GetAPIBaseURL(), api.WithLogger(logger))
	if err != nil {
		return fmt.Errorf("creating API client: %w", err)
	}

	manager, err := session.New(
		session.Settings{
			InactivityTimeout: c.GetInactivityTimeout(),
			CheckInterval:     c.GetCheckInterval(),
			LandingURL:        c.GetLandingURL(),
		},
		session.Collaborators{
			Store:    store,
			Backend:  backend,
			Redirect: session.RedirectorFunc(func(url string) { fmt.Printf("redirect: %s\n", url) }),
		},
		session.WithLogger(logger),
	)
	if err != nil {
		return fmt.Errorf("creating session manager: %w", err)
	}
	defer manager.Close()

	switch {
	case *touch:
		manager.MarkActivity()
		fmt.Println("activity recorded")
	case *logout:
		if err := manager.Logout(context.Background(), *reason); err != nil {
			return fmt.Errorf("logout: %w", err)
		}
	case *status:
		fallthrough
	default:
		printStatus(manager)
	}
	return nil
}

func printStatus(manager *session.Manager) {
	fmt.Printf("state:    %s\n", manager.State())
	snap, err := manager.Current()
	if err != nil {
		fmt.Println("no session stored")
		return
	}
	if snap.User != nil {
		fmt.Printf("user:     %s\n", snap.User.Email)
	}
	if snap.IdentityProvider != session.ProviderNone {
		fmt.Printf("provider: %s\n", snap.IdentityProvider)
	}
	fmt.Printf("expires:  in %s\n", manager.TimeUntilExpiry().Round(time.Second))
}

func displayAppname(appname string) {
	myFigure := figure.NewFigure(appname, "cybermedium", true)
	myFigure.Print()
	fmt.Println()
}
