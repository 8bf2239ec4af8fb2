// bookctl drives the booking workflow from a terminal: the same client stack
// the dashboards use, pointed at whatever API_BASE_URL says.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/shopspring/decimal"

	"cleanbook/internal/booking"
	"cleanbook/internal/dashboard"
	"cleanbook/internal/realtime"
	"cleanbook/internal/session"
	"cleanbook/internal/workflow"
	"cleanbook/pkg/bookingapi"
	"cleanbook/pkg/config"
	"cleanbook/pkg/logger"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	cfg := config.Load()
	log, err := logger.New(cfg.AppEnv)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	gw := bookingapi.New(cfg.APIBaseURL, log)
	gw.HTTPClient.Timeout = cfg.HTTPTimeout

	var store session.Store
	if cfg.RedisAddr != "" {
		rc := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		store = session.NewRedisStore(rc, "bookctl")
	} else {
		store = fileStore{path: sessionFile()}
	}
	sessions := session.NewManager(gw, store, log)
	client := dashboard.New(gw, sessions, log)

	ctx := context.Background()
	if err := run(ctx, os.Args[1], os.Args[2:], cfg, gw, sessions, client); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cmd string, args []string, cfg config.Config, gw *bookingapi.Client, sessions *session.Manager, client *dashboard.Client) error {
	switch cmd {
	case "login":
		fs := flag.NewFlagSet("login", flag.ExitOnError)
		email := fs.String("email", "", "staff email")
		password := fs.String("password", "", "staff password")
		_ = fs.Parse(args)
		sess, err := sessions.Login(ctx, *email, *password)
		if err != nil {
			return err
		}
		fmt.Printf("signed in as %s (%s)\n", sess.UserID, sess.Role)
		return nil

	case "logout":
		return sessions.Logout(ctx)

	case "list":
		if err := client.FetchAll(ctx); err != nil {
			return err
		}
		return printJSON(client.Cache().Bookings.Items())

	case "pending":
		if err := client.FetchPending(ctx); err != nil {
			return err
		}
		return printJSON(client.Cache().Bookings.Items())

	case "mine":
		if err := client.FetchMine(ctx); err != nil {
			return err
		}
		return printJSON(client.Cache().Bookings.Items())

	case "get":
		fs := flag.NewFlagSet("get", flag.ExitOnError)
		id := fs.String("id", "", "booking id")
		_ = fs.Parse(args)
		b, err := client.FetchOne(ctx, *id)
		if err != nil {
			return err
		}
		return printJSON(b)

	case "transition":
		fs := flag.NewFlagSet("transition", flag.ExitOnError)
		id := fs.String("id", "", "booking id")
		to := fs.String("to", "", "target status")
		preVisit := fs.String("pre-visit", "", "pre-visit date, RFC3339")
		budget := fs.String("budget", "", "budget amount")
		assessment := fs.String("assessment", "", "assessment details")
		notes := fs.String("notes", "", "notes")
		cleaner := fs.String("cleaner", "", "cleaner id to assign")
		reason := fs.String("reason", "", "cancellation reason")
		_ = fs.Parse(args)

		st, err := booking.ParseStatus(*to)
		if err != nil {
			return err
		}
		req := workflow.TransitionRequest{
			To:                st,
			AssessmentDetails: *assessment,
			Notes:             *notes,
			AssignedCleanerID: *cleaner,
			Reason:            *reason,
		}
		if *preVisit != "" {
			t, err := time.Parse(time.RFC3339, *preVisit)
			if err != nil {
				return fmt.Errorf("parse -pre-visit: %w", err)
			}
			req.PreVisitDate = &t
		}
		if *budget != "" {
			d, err := decimal.NewFromString(*budget)
			if err != nil {
				return fmt.Errorf("parse -budget: %w", err)
			}
			req.Budget = d
		}
		b, err := client.Transition(ctx, *id, req)
		if err != nil {
			return err
		}
		return printJSON(b)

	case "stats":
		st, err := client.FetchStats(ctx)
		if err != nil {
			return err
		}
		return printJSON(st)

	case "create":
		fs := flag.NewFlagSet("create", flag.ExitOnError)
		name := fs.String("name", "", "client name")
		email := fs.String("email", "", "client email")
		phone := fs.String("phone", "", "client phone")
		address := fs.String("address", "", "street address")
		city := fs.String("city", "", "city")
		service := fs.String("service", "standard_clean", "service type")
		when := fs.String("when", "", "preferred date/time, RFC3339")
		_ = fs.Parse(args)

		req := workflow.CreateRequest{
			Client:      booking.ClientInfo{Name: *name, Email: *email, Phone: *phone},
			Location:    booking.Location{Address: *address, City: *city},
			ServiceType: *service,
		}
		if *when != "" {
			t, err := time.Parse(time.RFC3339, *when)
			if err != nil {
				return fmt.Errorf("parse -when: %w", err)
			}
			req.PreferredDateTime = t
		}
		if err := workflow.ValidateCreate(req); err != nil {
			return err
		}
		created, err := gw.CreateBooking(ctx, req)
		if err != nil {
			return err
		}
		return printJSON(created)

	case "watch":
		sess, err := sessions.Current(ctx)
		if err != nil {
			return err
		}
		l := &realtime.Listener{
			URL:   cfg.WSURL,
			Token: sess.Token,
			OnEvent: func(ev realtime.Event) {
				_ = printJSON(ev)
			},
		}
		return l.Run(ctx)

	default:
		usage()
		return fmt.Errorf("unknown command %q", cmd)
	}
}

func printJSON(v any) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}

func usage() {
	fmt.Fprintln(os.Stderr, `usage: bookctl <command> [flags]

commands:
  login -email -password     open a staff session
  logout                     close the staff session
  list                       all bookings
  pending                    bookings waiting for a pre-visit
  mine                       bookings assigned to the signed-in cleaner
  get -id                    one booking
  transition -id -to [...]   move a booking along the pipeline
  stats                      aggregate counts
  create -name -email ...    create a booking (public funnel)
  watch                      stream status notifications`)
}

// fileStore keeps the session token in the user's home directory, the CLI
// analog of a browser session, so commands work across invocations without
// redis.
type fileStore struct {
	path string
}

func sessionFile() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".bookctl-session.json"
	}
	return home + "/.bookctl-session.json"
}

func (f fileStore) Save(_ context.Context, s *session.Session) error {
	data, err := json.Marshal(s)
	if err != nil {
		return err
	}
	return os.WriteFile(f.path, data, 0o600)
}

func (f fileStore) Load(_ context.Context) (*session.Session, error) {
	data, err := os.ReadFile(f.path)
	if err != nil {
		return nil, session.ErrNotAuthenticated
	}
	var s session.Session
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, session.ErrNotAuthenticated
	}
	return &s, nil
}

func (f fileStore) Clear(_ context.Context) error {
	if err := os.Remove(f.path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
