package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/jakechorley/shiftbook/internal/config"
	"github.com/jakechorley/shiftbook/pkg/clients/calendarclient"
	"github.com/jakechorley/shiftbook/pkg/core/clock"
	"github.com/jakechorley/shiftbook/pkg/core/history"
	"github.com/jakechorley/shiftbook/pkg/core/model"
	"github.com/jakechorley/shiftbook/pkg/core/services"
	"github.com/jakechorley/shiftbook/pkg/core/state"
	"github.com/jakechorley/shiftbook/pkg/core/store"
	"github.com/jakechorley/shiftbook/pkg/postgres"
	"github.com/jakechorley/shiftbook/pkg/utils/logging"
)

// App holds the application dependencies
type App struct {
	cfg      *config.Config
	oauthCfg *config.OAuthClientConfig
	database *postgres.DB
	calendar store.CalendarService
	store    *store.Store
	logger   *zap.Logger
	ctx      context.Context
}

var (
	env string
	app *App
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "shiftbook",
		Short: "Shiftbook - Manage your personal work shift schedule",
		Long:  `A CLI tool for tracking work shifts, shift types and locations, with undo/redo history and Google Calendar mirroring.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return initApp()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if app != nil {
				if app.store != nil {
					app.store.Wait()
				}
				if app.database != nil {
					app.database.Close()
				}
				if app.logger != nil {
					app.logger.Sync()
				}
			}
		},
	}

	rootCmd.PersistentFlags().StringVarP(&env, "env", "e", "", "Environment suffix for config, token and log files (e.g. test)")

	rootCmd.AddCommand(addCmd())
	rootCmd.AddCommand(bulkAddCmd())
	rootCmd.AddCommand(listCmd())
	rootCmd.AddCommand(todayCmd())
	rootCmd.AddCommand(switchCmd())
	rootCmd.AddCommand(deleteCmd())
	rootCmd.AddCommand(notesCmd())
	rootCmd.AddCommand(resolveCmd())
	rootCmd.AddCommand(undoCmd())
	rootCmd.AddCommand(redoCmd())
	rootCmd.AddCommand(historyCmd())
	rootCmd.AddCommand(purgeCmd())
	rootCmd.AddCommand(typeCmd())
	rootCmd.AddCommand(locationCmd())
	rootCmd.AddCommand(interactiveCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// initApp sets up logger, config, database, calendar client and the store
func initApp() error {
	var err error
	app = &App{
		ctx: context.Background(),
	}

	// Initialize logger
	app.logger, err = logging.InitLogger(env)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	app.logger.Debug("Starting application", zap.String("environment", env))

	// Load configuration
	app.cfg, err = config.LoadWithEnv(env)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	app.logger.Debug("Configuration loaded successfully")

	// Connect to the database and apply migrations
	app.database, err = postgres.NewDB(app.ctx, app.cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := app.database.RunMigrations(app.ctx); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	app.logger.Debug("Database initialized successfully")

	// Initialize the calendar client unless mirroring is disabled
	if app.cfg.SyncEnabled() {
		app.oauthCfg, err = config.LoadOAuthClientWithEnv(env)
		if err != nil {
			return fmt.Errorf("failed to load OAuth client config: %w", err)
		}
		calClient, err := calendarclient.NewClient(app.ctx, app.oauthCfg, env, app.cfg.CalendarID)
		if err != nil {
			return fmt.Errorf("failed to create calendar client: %w", err)
		}
		app.calendar = calClient
		app.logger.Debug("Calendar client initialized successfully")
	}

	clk := clock.System{}
	app.store = store.New(state.New(), app.logger,
		store.NewLoggingMiddleware(app.logger),
		store.NewHistoryMiddleware(clk, app.logger),
		store.NewConflictGuardMiddleware(app.logger),
		store.NewEffectsMiddleware(app.database, app.calendar, clk, app.logger),
	)

	return hydrate()
}

// hydrate seeds the store from persistence and applies configured settings
func hydrate() error {
	shifts, err := app.database.FetchAllShifts(app.ctx)
	if err != nil {
		return fmt.Errorf("failed to fetch shifts: %w", err)
	}
	types, err := app.database.FetchAllShiftTypes(app.ctx)
	if err != nil {
		return fmt.Errorf("failed to fetch shift types: %w", err)
	}
	locations, err := app.database.FetchAllLocations(app.ctx)
	if err != nil {
		return fmt.Errorf("failed to fetch locations: %w", err)
	}
	entries, err := app.database.FetchAllChangeLogEntries(app.ctx)
	if err != nil {
		return fmt.Errorf("failed to fetch change log: %w", err)
	}

	app.store.Dispatch(app.ctx, state.HydrateState{
		Shifts:     shifts,
		ShiftTypes: types,
		Locations:  locations,
		Entries:    entries,
		Today:      model.DateOf(time.Now()),
	})

	app.store.Dispatch(app.ctx, state.SetActorName{Name: app.cfg.ActorName})
	app.store.Dispatch(app.ctx, state.SetCalendarSync{Enabled: app.cfg.SyncEnabled()})
	if retention, ok := configuredRetention(app.cfg); ok {
		app.store.Dispatch(app.ctx, state.SetRetention{Retention: retention})
	}

	app.logger.Debug("Store hydrated",
		zap.Int("shifts", len(shifts)),
		zap.Int("shift_types", len(types)),
		zap.Int("locations", len(locations)),
		zap.Int("change_log_entries", len(entries)))

	return nil
}

func configuredRetention(cfg *config.Config) (history.Retention, bool) {
	switch cfg.Retention.Policy {
	case "days":
		return history.Retention{Policy: history.RetainDays, N: cfg.Retention.N}, true
	case "weeks":
		return history.Retention{Policy: history.RetainWeeks, N: cfg.Retention.N}, true
	case "forever":
		return history.Retention{Policy: history.RetainForever}, true
	default:
		return history.Retention{}, false
	}
}

// Command definitions

func addCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add <date> <symbol>",
		Short: "Add a shift of the given type on a date",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			date, err := model.ParseDate(args[0])
			if err != nil {
				return err
			}
			st, err := typeBySymbol(args[1])
			if err != nil {
				return err
			}
			notes, _ := cmd.Flags().GetString("notes")

			app.store.Dispatch(app.ctx, state.AddShiftRequested{
				ShiftTypeID: st.ID,
				Date:        date,
				Notes:       notes,
			})
			app.store.Wait()

			if err := scheduleError(); err != nil {
				return err
			}

			fmt.Printf("\nAdded %s shift on %s\n", st.Title, date)
			printConflictsOn(date)
			return nil
		},
	}

	cmd.Flags().String("notes", "", "Free-text notes for the shift")
	return cmd
}

func bulkAddCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "bulk-add [symbol]",
		Short: "Add shifts on every date produced by a recurrence rule",
		Long: `Add shifts in bulk. Dates come from an RFC 5545 recurrence rule
(--rrule with --count or --until), or from a named template in the config
file (--template). With --assign date=symbol pairs, each date gets its own
shift type instead of one shared symbol.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			assigns, _ := cmd.Flags().GetStringSlice("assign")
			if len(assigns) > 0 {
				return bulkAddPerDate(assigns)
			}

			var symbol string
			if len(args) > 0 {
				symbol = args[0]
			}

			ruleStr, _ := cmd.Flags().GetString("rrule")
			templateName, _ := cmd.Flags().GetString("template")
			if templateName != "" {
				tmpl, ok := app.cfg.Template(templateName)
				if !ok {
					return fmt.Errorf("template %q not found in config", templateName)
				}
				ruleStr = tmpl.RRule
				if symbol == "" {
					symbol = tmpl.ShiftSymbol
				}
			}
			if ruleStr == "" {
				return errors.New("either --rrule or --template is required")
			}
			if symbol == "" {
				return errors.New("a shift symbol is required unless --assign or --template provides one")
			}

			st, err := typeBySymbol(symbol)
			if err != nil {
				return err
			}

			dates, err := bulkDates(cmd, ruleStr)
			if err != nil {
				return err
			}
			if len(dates) == 0 {
				return errors.New("the rule produced no dates")
			}

			app.store.Dispatch(app.ctx, state.StartBulkAdd{})
			app.store.Dispatch(app.ctx, state.SelectBulkMode{Mode: state.BulkModeSameShift})
			for _, d := range dates {
				app.store.Dispatch(app.ctx, state.ToggleBulkDate{Date: d})
			}
			app.store.Dispatch(app.ctx, state.SetBulkShiftType{ShiftTypeID: st.ID})
			app.store.Dispatch(app.ctx, state.CommitBulkAddRequested{})
			app.store.Wait()

			if err := scheduleError(); err != nil {
				app.store.Dispatch(app.ctx, state.CancelBulkAdd{})
				return err
			}

			fmt.Printf("\nAdded %d %s shifts:\n", len(dates), st.Title)
			for _, d := range dates {
				fmt.Printf("  %s\n", d)
				printConflictsOn(d)
			}
			return nil
		},
	}

	cmd.Flags().String("rrule", "", "Recurrence rule, e.g. FREQ=WEEKLY;BYDAY=MO,WE")
	cmd.Flags().String("template", "", "Shift template name from the config file")
	cmd.Flags().Int("count", 0, "Number of occurrences to generate")
	cmd.Flags().String("until", "", "Last date to generate (inclusive)")
	cmd.Flags().String("from", "", "First date to generate from (defaults to today)")
	cmd.Flags().StringSlice("assign", nil, "Per-date assignments as date=symbol pairs")
	return cmd
}

// bulkDates expands the rule according to the --count/--until/--from flags
func bulkDates(cmd *cobra.Command, ruleStr string) ([]model.Date, error) {
	from := model.DateOf(time.Now())
	if fromStr, _ := cmd.Flags().GetString("from"); fromStr != "" {
		parsed, err := model.ParseDate(fromStr)
		if err != nil {
			return nil, err
		}
		from = parsed
	}

	if untilStr, _ := cmd.Flags().GetString("until"); untilStr != "" {
		until, err := model.ParseDate(untilStr)
		if err != nil {
			return nil, err
		}
		return services.ExpandRuleBetween(app.logger, ruleStr, from, until)
	}

	count, _ := cmd.Flags().GetInt("count")
	if count == 0 {
		return nil, errors.New("either --count or --until is required")
	}
	return services.ExpandRule(app.logger, ruleStr, from, count)
}

// bulkAddPerDate drives the per-date branch of the bulk flow
func bulkAddPerDate(assigns []string) error {
	type assignment struct {
		date model.Date
		st   *model.ShiftType
	}
	var parsed []assignment
	for _, a := range assigns {
		dateStr, symbol, ok := strings.Cut(a, "=")
		if !ok {
			return fmt.Errorf("invalid assignment %q, expected date=symbol", a)
		}
		date, err := model.ParseDate(dateStr)
		if err != nil {
			return err
		}
		st, err := typeBySymbol(symbol)
		if err != nil {
			return err
		}
		parsed = append(parsed, assignment{date: date, st: st})
	}

	app.store.Dispatch(app.ctx, state.StartBulkAdd{})
	app.store.Dispatch(app.ctx, state.SelectBulkMode{Mode: state.BulkModePerDateShift})
	for _, a := range parsed {
		app.store.Dispatch(app.ctx, state.ToggleBulkDate{Date: a.date})
	}
	for _, a := range parsed {
		app.store.Dispatch(app.ctx, state.AssignBulkDate{Date: a.date, ShiftTypeID: a.st.ID})
	}
	app.store.Dispatch(app.ctx, state.CommitBulkAddRequested{})
	app.store.Wait()

	if err := scheduleError(); err != nil {
		app.store.Dispatch(app.ctx, state.CancelBulkAdd{})
		return err
	}

	fmt.Printf("\nAdded %d shifts:\n", len(parsed))
	for _, a := range parsed {
		fmt.Printf("  %s  %s\n", a.date, a.st.Title)
		printConflictsOn(a.date)
	}
	return nil
}

func listCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List scheduled shifts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if fromStr, _ := cmd.Flags().GetString("from"); fromStr != "" {
				from, err := model.ParseDate(fromStr)
				if err != nil {
					return err
				}
				var to *model.Date
				if toStr, _ := cmd.Flags().GetString("to"); toStr != "" {
					parsed, err := model.ParseDate(toStr)
					if err != nil {
						return err
					}
					to = &parsed
				}
				app.store.Dispatch(app.ctx, state.SetDateFilter{From: &from, To: to})
			} else if toStr, _ := cmd.Flags().GetString("to"); toStr != "" {
				to, err := model.ParseDate(toStr)
				if err != nil {
					return err
				}
				app.store.Dispatch(app.ctx, state.SetDateFilter{To: &to})
			}

			if location, _ := cmd.Flags().GetString("location"); location != "" {
				app.store.Dispatch(app.ctx, state.SetLocationFilter{LocationName: location})
			}
			if symbol, _ := cmd.Flags().GetString("symbol"); symbol != "" {
				st, err := typeBySymbol(symbol)
				if err != nil {
					return err
				}
				app.store.Dispatch(app.ctx, state.SetTypeFilter{ShiftTypeID: &st.ID})
			}

			snap := app.store.State()
			shifts := snap.Schedule.Filtered()
			if len(shifts) == 0 {
				fmt.Println("No shifts found.")
				return nil
			}

			fmt.Printf("\nFound %d shifts:\n\n", len(shifts))
			for _, s := range shifts {
				printShift(s, snap)
			}
			if len(snap.Schedule.Conflicts) > 0 {
				fmt.Printf("\n%d unresolved overlaps. Run 'shiftbook resolve <date> <shift-id>' to resolve.\n", len(snap.Schedule.Conflicts))
			}
			return nil
		},
	}

	cmd.Flags().String("from", "", "Only shifts on or after this date")
	cmd.Flags().String("to", "", "Only shifts on or before this date")
	cmd.Flags().String("location", "", "Only shifts at this location")
	cmd.Flags().String("symbol", "", "Only shifts of this type")
	return cmd
}

func todayCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "today",
		Short: "Show today's shifts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			snap := app.store.State()
			shifts := snap.Today.Shifts()

			fmt.Printf("\n%s\n\n", snap.Today.Date)
			if len(shifts) == 0 {
				fmt.Println("No shifts today.")
				return nil
			}
			for _, s := range shifts {
				printShift(s, snap)
			}
			printConflictsOn(snap.Today.Date)
			return nil
		},
	}
}

func switchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "switch <shift-id> <symbol>",
		Short: "Switch a shift to a different shift type",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			shift, err := shiftByPrefix(args[0])
			if err != nil {
				return err
			}
			st, err := typeBySymbol(args[1])
			if err != nil {
				return err
			}

			app.store.Dispatch(app.ctx, state.SwitchShiftRequested{ShiftID: shift.ID, NewTypeID: st.ID})
			app.store.Wait()

			if err := scheduleError(); err != nil {
				return err
			}
			fmt.Printf("\nSwitched shift on %s to %s\n", shift.Date, st.Title)
			printConflictsOn(shift.Date)
			return nil
		},
	}
}

func deleteCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "delete <shift-id>",
		Short: "Delete a scheduled shift",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			shift, err := shiftByPrefix(args[0])
			if err != nil {
				return err
			}
			reason, _ := cmd.Flags().GetString("reason")

			app.store.Dispatch(app.ctx, state.DeleteShiftRequested{ShiftID: shift.ID, Reason: reason})
			app.store.Wait()

			if err := scheduleError(); err != nil {
				return err
			}
			fmt.Printf("\nDeleted %s shift on %s\n", shift.SnapshotTitle, shift.Date)
			return nil
		},
	}

	cmd.Flags().String("reason", "", "Reason recorded in the change log")
	return cmd
}

func notesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "notes <shift-id> <text>",
		Short: "Set the notes on a shift",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			shift, err := shiftByPrefix(args[0])
			if err != nil {
				return err
			}
			notes := strings.Join(args[1:], " ")

			app.store.Dispatch(app.ctx, state.UpdateShiftNotes{ShiftID: shift.ID, Notes: notes})
			app.store.Wait()

			if err := scheduleError(); err != nil {
				return err
			}
			fmt.Printf("\nUpdated notes on %s shift (%s)\n", shift.SnapshotTitle, shift.Date)
			return nil
		},
	}
}

func resolveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "resolve <date> <keep-shift-id>",
		Short: "Resolve an overlap by keeping one shift and deleting the rest",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			date, err := model.ParseDate(args[0])
			if err != nil {
				return err
			}

			dismiss, _ := cmd.Flags().GetBool("dismiss")
			if dismiss {
				app.store.Dispatch(app.ctx, state.DismissOverlap{Date: date})
				app.store.Wait()
				fmt.Printf("\nDismissed overlap on %s\n", date)
				return nil
			}

			keep, err := shiftByPrefix(args[1])
			if err != nil {
				return err
			}

			app.store.Dispatch(app.ctx, state.ResolveOverlapRequested{Date: date, KeepID: keep.ID})
			app.store.Wait()

			if err := scheduleError(); err != nil {
				return err
			}
			fmt.Printf("\nResolved overlap on %s, kept %s\n", date, keep.SnapshotTitle)
			return nil
		},
	}

	cmd.Flags().Bool("dismiss", false, "Hide the overlap without deleting anything")
	return cmd
}

func undoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "undo",
		Short: "Undo the latest reversible schedule change",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app.store.Dispatch(app.ctx, state.UndoRequested{})
			app.store.Wait()

			if msg := app.store.State().ChangeLog.ErrorMessage; msg != "" {
				return errors.New(msg)
			}
			fmt.Println("\nUndone.")
			return nil
		},
	}
}

func redoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "redo",
		Short: "Re-apply the latest undone schedule change",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app.store.Dispatch(app.ctx, state.RedoRequested{})
			app.store.Wait()

			if msg := app.store.State().ChangeLog.ErrorMessage; msg != "" {
				return errors.New(msg)
			}
			fmt.Println("\nRedone.")
			return nil
		},
	}
}

func historyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show the schedule change log",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			limit, _ := cmd.Flags().GetInt("limit")

			entries := app.store.State().ChangeLog.Entries
			if len(entries) == 0 {
				fmt.Println("No history.")
				return nil
			}

			start := 0
			if limit > 0 && len(entries) > limit {
				start = len(entries) - limit
			}

			fmt.Println()
			for _, e := range entries[start:] {
				printEntry(e)
			}
			return nil
		},
	}

	cmd.Flags().Int("limit", 20, "Number of entries to show (0 for all)")
	return cmd
}

func purgeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "purge",
		Short: "Purge change log entries older than the configured retention",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			before := len(app.store.State().ChangeLog.Entries)

			app.store.Dispatch(app.ctx, state.PurgeChangeLogRequested{})
			app.store.Wait()

			snap := app.store.State()
			if msg := snap.ChangeLog.ErrorMessage; msg != "" {
				return errors.New(msg)
			}
			removed := before - len(snap.ChangeLog.Entries)
			if removed == 0 {
				fmt.Println("\nNothing to purge.")
			} else {
				fmt.Printf("\nPurged %d change log entries.\n", removed)
			}
			return nil
		},
	}
}

func typeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "type",
		Short: "Manage shift types",
	}
	cmd.AddCommand(typeAddCmd(), typeListCmd(), typeDeleteCmd())
	return cmd
}

func typeAddCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add <symbol> <title>",
		Short: "Create a shift type",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			symbol, title := args[0], args[1]
			description, _ := cmd.Flags().GetString("description")

			duration, err := durationFromFlags(cmd)
			if err != nil {
				return err
			}

			var locationID uuid.UUID
			if locationName, _ := cmd.Flags().GetString("location"); locationName != "" {
				loc, err := locationByName(locationName)
				if err != nil {
					return err
				}
				locationID = loc.ID
			}

			st, err := model.NewShiftType(symbol, title, description, duration, locationID)
			if err != nil {
				return err
			}

			app.store.Dispatch(app.ctx, state.CreateShiftTypeRequested{ShiftType: *st})
			app.store.Wait()

			if msg := app.store.State().ShiftTypes.ErrorMessage; msg != "" {
				return errors.New(msg)
			}
			fmt.Printf("\nCreated shift type %s (%s), %s\n", st.Symbol, st.Title, st.Duration)
			return nil
		},
	}

	cmd.Flags().String("description", "", "Longer description")
	cmd.Flags().String("from", "", "Start time, e.g. 22:00")
	cmd.Flags().String("to", "", "End time, e.g. 06:00 (on or before start means overnight)")
	cmd.Flags().Bool("all-day", false, "All-day shift instead of a timed one")
	cmd.Flags().String("location", "", "Location name")
	return cmd
}

func durationFromFlags(cmd *cobra.Command) (model.Duration, error) {
	allDay, _ := cmd.Flags().GetBool("all-day")
	fromStr, _ := cmd.Flags().GetString("from")
	toStr, _ := cmd.Flags().GetString("to")

	if allDay {
		if fromStr != "" || toStr != "" {
			return model.Duration{}, errors.New("--all-day cannot be combined with --from/--to")
		}
		return model.AllDay(), nil
	}
	if fromStr == "" || toStr == "" {
		return model.Duration{}, errors.New("either --all-day or both --from and --to are required")
	}

	from, err := model.ParseTimeOfDay(fromStr)
	if err != nil {
		return model.Duration{}, err
	}
	to, err := model.ParseTimeOfDay(toStr)
	if err != nil {
		return model.Duration{}, err
	}
	return model.Scheduled(from, to)
}

func typeListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List shift types",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			snap := app.store.State()
			types := snap.ShiftTypes.Sorted()
			if len(types) == 0 {
				fmt.Println("No shift types defined.")
				return nil
			}

			fmt.Printf("\n%d shift types:\n\n", len(types))
			for _, st := range types {
				location := ""
				if loc, ok := snap.Locations.Locations[st.LocationID]; ok {
					location = " @ " + loc.Name
				}
				fmt.Printf("  %-4s %-20s %s%s\n", st.Symbol, st.Title, st.Duration, location)
			}
			return nil
		},
	}
}

func typeDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <symbol>",
		Short: "Delete a shift type (blocked while shifts reference it)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := typeBySymbol(args[0])
			if err != nil {
				return err
			}

			app.store.Dispatch(app.ctx, state.DeleteShiftTypeRequested{ShiftTypeID: st.ID})
			app.store.Wait()

			if msg := app.store.State().ShiftTypes.ErrorMessage; msg != "" {
				return errors.New(msg)
			}
			fmt.Printf("\nDeleted shift type %s (%s)\n", st.Symbol, st.Title)
			return nil
		},
	}
}

func locationCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "location",
		Short: "Manage locations",
	}
	cmd.AddCommand(locationAddCmd(), locationListCmd(), locationDeleteCmd())
	return cmd
}

func locationAddCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Create a location",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			address, _ := cmd.Flags().GetString("address")
			loc, err := model.NewLocation(args[0], address)
			if err != nil {
				return err
			}

			app.store.Dispatch(app.ctx, state.CreateLocationRequested{Location: *loc})
			app.store.Wait()

			if msg := app.store.State().Locations.ErrorMessage; msg != "" {
				return errors.New(msg)
			}
			fmt.Printf("\nCreated location %s\n", loc.Name)
			return nil
		},
	}

	cmd.Flags().String("address", "", "Street address")
	return cmd
}

func locationListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List locations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			locations := app.store.State().Locations.Locations
			if len(locations) == 0 {
				fmt.Println("No locations defined.")
				return nil
			}

			sorted := make([]*model.Location, 0, len(locations))
			for _, loc := range locations {
				sorted = append(sorted, loc)
			}
			sort.Slice(sorted, func(i, j int) bool { return sorted[i].Name < sorted[j].Name })

			fmt.Printf("\n%d locations:\n\n", len(sorted))
			for _, loc := range sorted {
				if loc.Address != "" {
					fmt.Printf("  %-20s %s\n", loc.Name, loc.Address)
				} else {
					fmt.Printf("  %s\n", loc.Name)
				}
			}
			return nil
		},
	}
}

func locationDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <name>",
		Short: "Delete a location (blocked while shift types reference it)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			loc, err := locationByName(args[0])
			if err != nil {
				return err
			}

			app.store.Dispatch(app.ctx, state.DeleteLocationRequested{LocationID: loc.ID})
			app.store.Wait()

			if msg := app.store.State().Locations.ErrorMessage; msg != "" {
				return errors.New(msg)
			}
			fmt.Printf("\nDeleted location %s\n", loc.Name)
			return nil
		},
	}
}

// Lookup helpers

func typeBySymbol(symbol string) (*model.ShiftType, error) {
	for _, st := range app.store.State().ShiftTypes.Types {
		if st.Symbol == symbol {
			return st, nil
		}
	}
	return nil, fmt.Errorf("no shift type with symbol %q, see 'shiftbook type list'", symbol)
}

func locationByName(name string) (*model.Location, error) {
	for _, loc := range app.store.State().Locations.Locations {
		if loc.Name == name {
			return loc, nil
		}
	}
	return nil, fmt.Errorf("no location named %q, see 'shiftbook location list'", name)
}

// shiftByPrefix resolves a shift by a unique prefix of its id, the way
// shifts are displayed in list output
func shiftByPrefix(prefix string) (*model.ScheduledShift, error) {
	var match *model.ScheduledShift
	for _, s := range app.store.State().Schedule.Shifts {
		if strings.HasPrefix(s.ID.String(), strings.ToLower(prefix)) {
			if match != nil {
				return nil, fmt.Errorf("shift id prefix %q is ambiguous", prefix)
			}
			match = s
		}
	}
	if match == nil {
		return nil, fmt.Errorf("no shift with id %q, see 'shiftbook list'", prefix)
	}
	return match, nil
}

// Output helpers

func scheduleError() error {
	if msg := app.store.State().Schedule.ErrorMessage; msg != "" {
		app.store.Dispatch(app.ctx, state.ErrorDismissed{Slice: state.SliceSchedule})
		return errors.New(msg)
	}
	return nil
}

func printShift(s *model.ScheduledShift, snap state.State) {
	marker := ""
	if s.Orphaned(snap.ShiftTypes.Types) {
		marker = "  (type deleted)"
	}
	location := ""
	if s.SnapshotLocationName != "" {
		location = " @ " + s.SnapshotLocationName
	}
	notes := ""
	if s.Notes != "" {
		notes = "  - " + s.Notes
	}
	fmt.Printf("  %s  %s  [%s] %-20s %s%s%s%s\n",
		shortID(s.ID), s.Date, s.SnapshotSymbol, s.SnapshotTitle,
		s.SnapshotDuration, location, notes, marker)
}

func printConflictsOn(date model.Date) {
	snap := app.store.State()
	for _, d := range []model.Date{date, date.AddDays(1)} {
		if conflict, ok := snap.Schedule.ConflictOn(d); ok {
			fmt.Printf("\n  Overlap on %s:\n", d)
			for _, s := range conflict.Group.Shifts {
				printShift(s, snap)
			}
			fmt.Printf("  Run 'shiftbook resolve %s <shift-id>' to keep one of them.\n", d)
		}
	}
}

func printEntry(e *model.ChangeLogEntry) {
	what := ""
	switch {
	case e.After != nil:
		what = fmt.Sprintf("[%s] %s", e.After.Symbol, e.After.Title)
	case e.Before != nil:
		what = fmt.Sprintf("[%s] %s", e.Before.Symbol, e.Before.Title)
	}
	reason := ""
	if e.Reason != "" {
		reason = "  (" + e.Reason + ")"
	}
	actor := ""
	if e.Actor != "" {
		actor = "  by " + e.Actor
	}
	fmt.Printf("  %s  %-8s %s on %s%s%s\n",
		e.Timestamp.Local().Format("2006-01-02 15:04"),
		e.Kind, what, e.ShiftDate, reason, actor)
}

func shortID(id uuid.UUID) string {
	return id.String()[:8]
}

func interactiveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "interactive",
		Short: "Start an interactive session (hydrate once, run multiple commands)",
		Long: `Start an interactive session where you can run multiple commands without
reconnecting and re-authenticating. The session keeps running until you
type 'exit' or 'quit'.

Type 'help' to see available commands.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Println("\nStarting interactive session...")
			fmt.Println("Type 'help' for available commands, 'exit' or 'quit' to leave")

			// Get all sibling commands (excluding interactive itself)
			rootCmd := cmd.Parent()
			commands := make(map[string]*cobra.Command)
			for _, subCmd := range rootCmd.Commands() {
				if subCmd.Name() != "interactive" && subCmd.Name() != "completion" && subCmd.Name() != "help" {
					commands[subCmd.Name()] = subCmd
				}
			}

			scanner := bufio.NewScanner(os.Stdin)

			for {
				fmt.Print("> ")

				if !scanner.Scan() {
					break
				}

				line := strings.TrimSpace(scanner.Text())
				if line == "" {
					continue
				}

				parts := strings.Fields(line)
				cmdName := parts[0]
				cmdArgs := parts[1:]

				if cmdName == "exit" || cmdName == "quit" {
					fmt.Println("Goodbye!")
					return nil
				}

				if cmdName == "help" {
					printInteractiveHelp(commands)
					continue
				}

				targetCmd, exists := commands[cmdName]
				if !exists {
					fmt.Printf("Unknown command: %s (type 'help' for available commands)\n\n", cmdName)
					continue
				}

				// Subcommand groups (type, location) dispatch one level deeper
				if targetCmd.HasSubCommands() {
					if len(cmdArgs) == 0 {
						fmt.Printf("Usage: %s <subcommand>\n\n", cmdName)
						continue
					}
					sub, rest, err := targetCmd.Find(cmdArgs)
					if err != nil || sub == targetCmd {
						fmt.Printf("Unknown subcommand: %s %s\n\n", cmdName, cmdArgs[0])
						continue
					}
					targetCmd, cmdArgs = sub, rest
				}

				// Reset command flags and args
				targetCmd.Flags().VisitAll(func(flag *pflag.Flag) {
					flag.Changed = false
					flag.Value.Set(flag.DefValue)
				})

				// Execute the command's RunE directly, bypassing the full
				// Execute() flow so PersistentPreRunE does not re-init the app
				if err := targetCmd.ParseFlags(cmdArgs); err != nil {
					fmt.Printf("Error parsing flags: %v\n\n", err)
					continue
				}

				cmdArgs = targetCmd.Flags().Args()

				if err := targetCmd.Args(targetCmd, cmdArgs); err != nil {
					fmt.Printf("Error: %v\n\n", err)
					continue
				}

				if targetCmd.RunE != nil {
					if err := targetCmd.RunE(targetCmd, cmdArgs); err != nil {
						fmt.Printf("Error: %v\n\n", err)
					}
				} else if targetCmd.Run != nil {
					targetCmd.Run(targetCmd, cmdArgs)
				}
			}

			if err := scanner.Err(); err != nil {
				return fmt.Errorf("error reading input: %w", err)
			}

			return nil
		},
	}

	return cmd
}

func printInteractiveHelp(commands map[string]*cobra.Command) {
	fmt.Println("\nAvailable commands:")

	names := make([]string, 0, len(commands))
	for name := range commands {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		cmd := commands[name]
		fmt.Printf("  %-30s %s\n", cmd.Use, cmd.Short)
	}

	fmt.Println("\n  help                           Show this help message")
	fmt.Println("  exit, quit                     Exit the interactive session")
}
