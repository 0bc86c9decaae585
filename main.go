package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"strconv"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/dustin/go-humanize"
	"golang.org/x/oauth2"

	"runlog/internal/auth"
	"runlog/internal/config"
	"runlog/internal/plain"
	"runlog/internal/service"
	"runlog/internal/store"
	"runlog/internal/strava"
	"runlog/internal/trackfile"
	"runlog/internal/tui"
)

const usage = `runlog - summarize runs and split heart rate time into zones

Usage:
  runlog analyze [-threshold N] [-user N] [-save] [-plain] <file.gpx|file.fit>
  runlog strava  [-threshold N] [-user N] [-save] [-plain] <activity-id>
  runlog show    [-user N] <YYYY-MM-DD>
  runlog history [-user N] [-plain]
  runlog login
  runlog status
  runlog logout

Global flags:
  -verbose   debug logging
`

func main() {
	if err := run(os.Args[1:]); err != nil {
		log.Fatal(err)
	}
}

// env carries what every subcommand needs
type env struct {
	ctx    context.Context
	cfg    *config.Config
	logger *slog.Logger
}

func run(args []string) error {
	global := flag.NewFlagSet("runlog", flag.ContinueOnError)
	verbose := global.Bool("verbose", false, "Enable verbose logging")
	global.Usage = func() { fmt.Fprint(os.Stderr, usage) }
	if err := global.Parse(args); err != nil {
		return err
	}
	if global.NArg() == 0 {
		global.Usage()
		return nil
	}

	cfg, err := config.LoadOrDefault()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		dir, _ := config.GetConfigDir()
		return fmt.Errorf("invalid config in %s/config.json: %w", dir, err)
	}

	level, _ := cfg.LogLevel()
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	e := &env{ctx: ctx, cfg: cfg, logger: logger}

	cmd, rest := global.Arg(0), global.Args()[1:]
	switch cmd {
	case "analyze":
		return e.analyze(rest)
	case "strava":
		return e.stravaImport(rest)
	case "show":
		return e.show(rest)
	case "history":
		return e.history(rest)
	case "login":
		return e.login()
	case "status":
		return e.status()
	case "logout":
		return e.logout()
	default:
		global.Usage()
		return fmt.Errorf("unknown command %q", cmd)
	}
}

// reportFlags are shared by analyze and strava
type reportFlags struct {
	threshold float64
	user      int64
	save      bool
	plain     bool
}

func (e *env) parseReportFlags(name string, args []string) (*reportFlags, *flag.FlagSet, error) {
	f := &reportFlags{}
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.Float64Var(&f.threshold, "threshold", e.cfg.Athlete.ThresholdHR, "Threshold heart rate in bpm")
	fs.Int64Var(&f.user, "user", e.cfg.Athlete.UserID, "User ID to save under")
	fs.BoolVar(&f.save, "save", false, "Save the run to the database")
	fs.BoolVar(&f.plain, "plain", false, "Print text instead of opening the terminal UI")
	if err := fs.Parse(args); err != nil {
		return nil, nil, err
	}
	if fs.NArg() != 1 {
		return nil, nil, fmt.Errorf("%s takes exactly one argument", name)
	}
	return f, fs, nil
}

func (e *env) analyze(args []string) error {
	f, fs, err := e.parseReportFlags("analyze", args)
	if err != nil {
		return err
	}

	analyzer, db, err := e.openAnalyzer()
	if err != nil {
		return err
	}
	defer db.Close()

	report, err := analyzer.AnalyzeFile(fs.Arg(0), f.threshold)
	if errors.Is(err, trackfile.ErrUnsupportedFormat) {
		return fmt.Errorf("%w (expected .gpx or .fit)", err)
	}
	if err != nil {
		return err
	}

	return e.present(analyzer, db, report, f)
}

func (e *env) stravaImport(args []string) error {
	f, fs, err := e.parseReportFlags("strava", args)
	if err != nil {
		return err
	}
	activityID, err := strconv.ParseInt(fs.Arg(0), 10, 64)
	if err != nil {
		return fmt.Errorf("invalid activity id %q", fs.Arg(0))
	}
	if err := e.cfg.ValidateStrava(); err != nil {
		return err
	}

	analyzer, db, err := e.openAnalyzer()
	if err != nil {
		return err
	}
	defer db.Close()

	ts, err := auth.Resume(e.oauthConfig(), db)
	if errors.Is(err, store.ErrNoAuth) {
		return errors.New("not connected to Strava, run: runlog login")
	}
	if err != nil {
		return fmt.Errorf("loading Strava tokens: %w", err)
	}

	client := strava.NewClient(ts, strava.WithLogger(e.logger))
	report, err := analyzer.ImportStrava(e.ctx, client, activityID, f.threshold)
	if err != nil {
		return err
	}
	short, daily := client.RateLimitStatus()
	e.logger.Debug("strava rate limit", "short_remaining", short, "daily_remaining", daily)

	return e.present(analyzer, db, report, f)
}

// present saves the report if asked and shows it
func (e *env) present(analyzer *service.Analyzer, db *store.DB, report *service.Report, f *reportFlags) error {
	if f.save {
		res, err := analyzer.Save(f.user, report)
		switch {
		case errors.Is(err, store.ErrNoRunDate):
			e.logger.Warn("run not saved: recording has no date and no timestamps")
		case err != nil:
			return err
		case f.plain:
			defer plain.Saved(os.Stdout, res)
		}
	}

	if f.plain {
		plain.Report(os.Stdout, report)
		return nil
	}
	return runTUI(tui.NewApp(analyzer, service.NewQueryService(db), report, f.user))
}

func (e *env) show(args []string) error {
	fs := flag.NewFlagSet("show", flag.ContinueOnError)
	user := fs.Int64("user", e.cfg.Athlete.UserID, "User ID")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return errors.New("show takes a date: YYYY-MM-DD")
	}

	db, err := store.Open(e.cfg.Storage.DBPath)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer db.Close()

	detail, err := service.NewQueryService(db).RunOn(*user, fs.Arg(0))
	if errors.Is(err, store.ErrRunNotFound) {
		return fmt.Errorf("no run saved for user %d on %s", *user, fs.Arg(0))
	}
	if err != nil {
		return err
	}

	plain.Run(os.Stdout, detail)
	return nil
}

func (e *env) history(args []string) error {
	fs := flag.NewFlagSet("history", flag.ContinueOnError)
	user := fs.Int64("user", e.cfg.Athlete.UserID, "User ID")
	asText := fs.Bool("plain", false, "Print text instead of opening the terminal UI")
	if err := fs.Parse(args); err != nil {
		return err
	}

	analyzer, db, err := e.openAnalyzer()
	if err != nil {
		return err
	}
	defer db.Close()

	qs := service.NewQueryService(db)
	if *asText {
		data, err := qs.History(*user)
		if err != nil {
			return err
		}
		plain.History(os.Stdout, data)
		return nil
	}
	return runTUI(tui.NewApp(analyzer, qs, nil, *user))
}

func (e *env) login() error {
	if err := e.cfg.ValidateStrava(); err != nil {
		dir, _ := config.GetConfigDir()
		return fmt.Errorf("%w\nedit %s/config.json", err, dir)
	}

	db, err := store.Open(e.cfg.Storage.DBPath)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer db.Close()

	result, err := auth.Login(e.ctx, e.oauthConfig(), db, os.Stdout)
	if err != nil {
		return fmt.Errorf("authentication: %w", err)
	}

	fmt.Println()
	fmt.Printf("Connected as athlete %d.\n", result.AthleteID)
	return nil
}

func (e *env) status() error {
	db, err := store.Open(e.cfg.Storage.DBPath)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer db.Close()

	st, err := auth.CurrentStatus(e.oauthConfig(), db)
	if errors.Is(err, store.ErrNoAuth) {
		fmt.Println("Not connected to Strava. Run: runlog login")
		return nil
	}
	if err != nil {
		return err
	}

	fmt.Printf("Connected as athlete %d, tokens updated %s.\n", st.AthleteID, humanize.Time(st.UpdatedAt))
	if st.NeedsRefresh {
		fmt.Println("Access token expired; it is refreshed on the next import.")
	}
	return nil
}

func (e *env) logout() error {
	db, err := store.Open(e.cfg.Storage.DBPath)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer db.Close()

	if err := db.DeleteAuth(); errors.Is(err, store.ErrNoAuth) {
		fmt.Println("Not connected to Strava.")
		return nil
	} else if err != nil {
		return err
	}
	fmt.Println("Strava tokens removed.")
	return nil
}

func (e *env) openAnalyzer() (*service.Analyzer, *store.DB, error) {
	denominator, err := e.cfg.Denominator()
	if err != nil {
		return nil, nil, err
	}
	db, err := store.Open(e.cfg.Storage.DBPath)
	if err != nil {
		return nil, nil, fmt.Errorf("opening database: %w", err)
	}
	return service.NewAnalyzer(db, denominator, e.logger), db, nil
}

func (e *env) oauthConfig() *oauth2.Config {
	return auth.NewOAuthConfig(auth.Config{
		ClientID:     e.cfg.Strava.ClientID,
		ClientSecret: e.cfg.Strava.ClientSecret,
	})
}

func runTUI(app *tui.App) error {
	p := tea.NewProgram(app, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("running TUI: %w", err)
	}
	return nil
}
