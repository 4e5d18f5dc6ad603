// Package main is a small CLI front-end for the travel journal client core.
// It wires the config, session store, API client, and controllers together
// the same way a mobile shell would, and doubles as a manual test harness
// against either the production API or the local dev server.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/pkordes/travel-journal/internal/api"
	"github.com/pkordes/travel-journal/internal/config"
	"github.com/pkordes/travel-journal/internal/controller"
	"github.com/pkordes/travel-journal/internal/domain"
	"github.com/pkordes/travel-journal/internal/session"
)

// compile-time checks: the API client must satisfy every controller
// dependency it is wired into below.
var (
	_ controller.TripAPI       = (*api.Client)(nil)
	_ controller.ExperienceAPI = (*api.Client)(nil)
	_ controller.PhotoAPI      = (*api.Client)(nil)
)

const usage = `usage: journal <command> [flags]

commands:
  register   -user -email -pass        create an account and log in
  login      -user -pass               log in and store the session token
  logout                               clear the stored session token
  trips                                list your trips
  trip       <id>                      show one trip with experiences and photos
  add-trip   -title -location -from -to [-desc]
  edit-trip  <id> [-title -location -from -to -desc]
  del-trip   <id>
  experience <id>                      show one experience
  add-exp    -trip <id> -title -date [-desc]
  del-exp    <id>
  upload     (-trip <id> | -exp <id>) <file>...
  del-photo  <id>
`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}

	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		level = slog.LevelInfo
	}
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	sess := session.New(session.NewFileStore(cfg.TokenFile))
	client, err := api.New(cfg.APIBaseURL, sess,
		api.WithHTTPClient(&http.Client{Timeout: cfg.HTTPTimeout}),
		api.WithLogger(logger),
	)
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}

	app := &app{client: client}
	ctx := context.Background()

	if err := app.run(ctx, os.Args[1], os.Args[2:]); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

type app struct {
	client *api.Client
}

func (a *app) run(ctx context.Context, command string, args []string) error {
	switch command {
	case "register":
		return a.register(ctx, args)
	case "login":
		return a.login(ctx, args)
	case "logout":
		return a.client.Logout(ctx)
	case "trips":
		return a.listTrips(ctx)
	case "trip":
		return a.showTrip(ctx, args)
	case "add-trip":
		return a.addTrip(ctx, args)
	case "edit-trip":
		return a.editTrip(ctx, args)
	case "del-trip":
		return a.deleteTrip(ctx, args)
	case "experience":
		return a.showExperience(ctx, args)
	case "add-exp":
		return a.addExperience(ctx, args)
	case "del-exp":
		return a.deleteExperience(ctx, args)
	case "upload":
		return a.upload(ctx, args)
	case "del-photo":
		return a.deletePhoto(ctx, args)
	}
	fmt.Fprint(os.Stderr, usage)
	return fmt.Errorf("unknown command %q", command)
}

func (a *app) register(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("register", flag.ExitOnError)
	user := fs.String("user", "", "username")
	email := fs.String("email", "", "email address")
	pass := fs.String("pass", "", "password")
	fs.Parse(args)

	if _, err := a.client.Register(ctx, *user, *email, *pass); err != nil {
		return err
	}
	fmt.Println("account created, logged in")
	return nil
}

func (a *app) login(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("login", flag.ExitOnError)
	user := fs.String("user", "", "username")
	pass := fs.String("pass", "", "password")
	fs.Parse(args)

	if _, err := a.client.Login(ctx, *user, *pass); err != nil {
		return err
	}
	fmt.Println("logged in")
	return nil
}

func (a *app) listTrips(ctx context.Context) error {
	trips, err := a.client.ListTrips(ctx)
	if err != nil {
		return err
	}
	if len(trips) == 0 {
		fmt.Println("no trips yet")
		return nil
	}
	for _, t := range trips {
		fmt.Printf("%s  %s — %s  %s (%s)\n",
			t.ID, t.DateFrom.Format(time.DateOnly), t.DateTo.Format(time.DateOnly), t.Title, t.Location)
	}
	return nil
}

func (a *app) showTrip(ctx context.Context, args []string) error {
	id, err := idArg(args)
	if err != nil {
		return err
	}
	trip, err := a.client.GetTrip(ctx, id)
	if err != nil {
		return err
	}
	fmt.Printf("%s (%s)\n%s — %s\n", trip.Title, trip.Location,
		trip.DateFrom.Format(time.DateOnly), trip.DateTo.Format(time.DateOnly))
	if trip.Description != "" {
		fmt.Println(trip.Description)
	}
	if len(trip.Experiences) > 0 {
		fmt.Println("\nexperiences:")
		for _, e := range trip.Experiences {
			fmt.Printf("  %s  %s  %s\n", e.ID, e.Date.Format(time.DateOnly), e.Title)
		}
	}
	if len(trip.Photos) > 0 {
		fmt.Println("\nphotos:")
		for _, p := range trip.Photos {
			fmt.Printf("  %s  %s\n", p.ID, a.client.PhotoURL(p.ImageURL))
		}
	}
	return nil
}

func (a *app) addTrip(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("add-trip", flag.ExitOnError)
	title := fs.String("title", "", "trip title")
	desc := fs.String("desc", "", "description")
	location := fs.String("location", "", "location")
	from := fs.String("from", "", "start date (YYYY-MM-DD)")
	to := fs.String("to", "", "end date (YYYY-MM-DD)")
	fs.Parse(args)

	form := controller.NewTripForm(a.client)
	form.Title = *title
	form.Description = *desc
	form.Location = *location
	if err := setTripDates(form, *from, *to); err != nil {
		return err
	}

	trip, err := form.Submit(ctx)
	if err != nil {
		return err
	}
	fmt.Println("created trip", trip.ID)
	return nil
}

func (a *app) editTrip(ctx context.Context, args []string) error {
	id, err := idArg(args)
	if err != nil {
		return err
	}
	fs := flag.NewFlagSet("edit-trip", flag.ExitOnError)
	title := fs.String("title", "", "trip title")
	desc := fs.String("desc", "", "description")
	location := fs.String("location", "", "location")
	from := fs.String("from", "", "start date (YYYY-MM-DD)")
	to := fs.String("to", "", "end date (YYYY-MM-DD)")
	fs.Parse(args[1:])

	form := controller.NewTripEditForm(a.client, id)
	if err := form.Load(ctx); err != nil {
		return err
	}
	if *title != "" {
		form.Title = *title
	}
	if *desc != "" {
		form.Description = *desc
	}
	if *location != "" {
		form.Location = *location
	}
	if err := setTripDates(form, *from, *to); err != nil {
		return err
	}

	trip, err := form.Submit(ctx)
	if err != nil {
		return err
	}
	fmt.Println("updated trip", trip.ID)
	return nil
}

// setTripDates commits the requested dates through the form's pickers.
// Commit order matters the same way it does on the phone: each pick is
// validated against the other committed date, so the pick that widens the
// range must land first.
func setTripDates(form *controller.TripForm, from, to string) error {
	var fromDate, toDate domain.Date
	var err error
	if from != "" {
		if fromDate, err = domain.ParseDate(from); err != nil {
			return err
		}
	}
	if to != "" {
		if toDate, err = domain.ParseDate(to); err != nil {
			return err
		}
	}

	setFrom := func() error {
		if from == "" {
			return nil
		}
		return form.SetDateFrom(fromDate)
	}
	setTo := func() error {
		if to == "" {
			return nil
		}
		return form.SetDateTo(toDate)
	}

	if from != "" && fromDate.After(form.DateTo.Value().Time) {
		if err := setTo(); err != nil {
			return err
		}
		return setFrom()
	}
	if err := setFrom(); err != nil {
		return err
	}
	return setTo()
}

func (a *app) deleteTrip(ctx context.Context, args []string) error {
	id, err := idArg(args)
	if err != nil {
		return err
	}
	if err := a.client.DeleteTrip(ctx, id); err != nil {
		return err
	}
	fmt.Println("deleted trip", id)
	return nil
}

func (a *app) showExperience(ctx context.Context, args []string) error {
	id, err := idArg(args)
	if err != nil {
		return err
	}
	exp, err := a.client.GetExperience(ctx, id)
	if err != nil {
		return err
	}
	fmt.Printf("%s  %s\n", exp.Title, exp.Date.Format(time.DateOnly))
	if exp.Description != "" {
		fmt.Println(exp.Description)
	}
	for _, p := range exp.Photos {
		fmt.Printf("  %s  %s\n", p.ID, a.client.PhotoURL(p.ImageURL))
	}
	return nil
}

func (a *app) addExperience(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("add-exp", flag.ExitOnError)
	tripID := fs.String("trip", "", "parent trip id")
	title := fs.String("title", "", "experience title")
	desc := fs.String("desc", "", "description")
	date := fs.String("date", "", "date (YYYY-MM-DD)")
	fs.Parse(args)

	parentID, err := uuid.Parse(*tripID)
	if err != nil {
		return fmt.Errorf("invalid -trip id: %w", err)
	}
	trip, err := a.client.GetTrip(ctx, parentID)
	if err != nil {
		return err
	}

	form := controller.NewExperienceForm(a.client, trip.ID, trip.DateFrom, trip.DateTo)
	form.Title = *title
	form.Description = *desc
	if *date != "" {
		d, err := domain.ParseDate(*date)
		if err != nil {
			return err
		}
		if err := form.SetDate(d); err != nil {
			return err
		}
	}

	exp, err := form.Submit(ctx)
	if err != nil {
		return err
	}
	fmt.Println("created experience", exp.ID)
	return nil
}

func (a *app) deleteExperience(ctx context.Context, args []string) error {
	id, err := idArg(args)
	if err != nil {
		return err
	}
	if err := a.client.DeleteExperience(ctx, id); err != nil {
		return err
	}
	fmt.Println("deleted experience", id)
	return nil
}

func (a *app) upload(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("upload", flag.ExitOnError)
	tripID := fs.String("trip", "", "owning trip id")
	expID := fs.String("exp", "", "owning experience id")
	fs.Parse(args)
	files := fs.Args()

	if len(files) == 0 {
		return fmt.Errorf("no files given")
	}
	owner, err := parseOwner(*tripID, *expID)
	if err != nil {
		return err
	}

	workflow := controller.NewPhotoWorkflow(a.client, filePicker(files), owner, nil)
	if err := workflow.PickFrom(ctx, controller.SourceLibrary); err != nil {
		return err
	}
	uploaded, err := workflow.Upload(ctx)
	fmt.Printf("uploaded %d of %d photos\n", uploaded, len(files))
	return err
}

func (a *app) deletePhoto(ctx context.Context, args []string) error {
	id, err := idArg(args)
	if err != nil {
		return err
	}
	if err := a.client.DeletePhoto(ctx, id); err != nil {
		return err
	}
	fmt.Println("deleted photo", id)
	return nil
}

func parseOwner(tripID, expID string) (domain.PhotoOwner, error) {
	switch {
	case tripID != "" && expID != "":
		return domain.PhotoOwner{}, fmt.Errorf("give either -trip or -exp, not both")
	case tripID != "":
		id, err := uuid.Parse(tripID)
		if err != nil {
			return domain.PhotoOwner{}, fmt.Errorf("invalid -trip id: %w", err)
		}
		return domain.PhotoOwner{Kind: domain.OwnerTrip, ID: id}, nil
	case expID != "":
		id, err := uuid.Parse(expID)
		if err != nil {
			return domain.PhotoOwner{}, fmt.Errorf("invalid -exp id: %w", err)
		}
		return domain.PhotoOwner{Kind: domain.OwnerExperience, ID: id}, nil
	}
	return domain.PhotoOwner{}, fmt.Errorf("one of -trip or -exp is required")
}

func idArg(args []string) (uuid.UUID, error) {
	if len(args) < 1 {
		return uuid.Nil, fmt.Errorf("an id argument is required")
	}
	id, err := uuid.Parse(args[0])
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid id %q: %w", args[0], err)
	}
	return id, nil
}

// filePicker satisfies controller.Picker over files named on the command
// line. Permissions are local filesystem access, so always granted.
type filePicker []string

func (p filePicker) RequestPermission(ctx context.Context, src controller.Source) (bool, error) {
	return true, nil
}

func (p filePicker) Pick(ctx context.Context, src controller.Source) ([]controller.ImageRef, error) {
	refs := make([]controller.ImageRef, 0, len(p))
	for _, path := range p {
		refs = append(refs, controller.ImageRef{
			Name: filepath.Base(path),
			MIME: mime.TypeByExtension(filepath.Ext(path)),
			Open: func() (io.ReadCloser, error) { return os.Open(path) },
		})
	}
	return refs, nil
}

var _ controller.Picker = filePicker(nil)
