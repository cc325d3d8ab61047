package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sort"
	"text/tabwriter"
	"time"

	"github.com/interpretek/booking-core/config"
	"github.com/interpretek/booking-core/internal/bootstrap"
)

type commandFn func(ctx *commandContext, args []string) error

type command struct {
	name        string
	description string
	run         commandFn
}

type commandContext struct {
	Ctx    context.Context
	Logger *slog.Logger
	Config config.AppConfig
}

const defaultMigrationTimeout = 5 * time.Minute

func main() {
	logger := bootstrap.InitLogger(false)

	if len(os.Args) < 2 {
		if err := printUsage(); err != nil {
			logger.Error("print usage failed", "error", err)
		}
		os.Exit(2) //nolint:forbidigo // CLI must exit with failure status when no command is provided
	}

	cmdName := os.Args[1]
	cmd, ok := commands()[cmdName]
	if !ok {
		if err := writef(os.Stderr, "unknown command %q\n\n", cmdName); err != nil {
			logger.Error("print unknown command message failed", "error", err)
		}
		if err := printUsage(); err != nil {
			logger.Error("print usage failed", "error", err)
		}
		os.Exit(2) //nolint:forbidigo // CLI must exit with failure status when command is unknown
	}

	cfg, err := bootstrap.LoadConfig()
	if err != nil {
		logger.ErrorContext(context.Background(), "load config", "error", err)
		os.Exit(1) //nolint:forbidigo // CLI must signal configuration load failure to shell scripts
	}

	cmdCtx := &commandContext{
		Ctx:    context.Background(),
		Logger: logger,
		Config: cfg,
	}
	if runErr := cmd.run(cmdCtx, os.Args[2:]); runErr != nil {
		logger.ErrorContext(cmdCtx.Ctx, "command failed", "command", cmdName, "error", runErr)
		os.Exit(1) //nolint:forbidigo // CLI must propagate command execution failure to callers
	}
}

func commands() map[string]command {
	return map[string]command{
		"migrate": {
			name:        "migrate",
			description: "Run database migrations",
			run:         runMigrate,
		},
		"resend-push": {
			name:        "resend-push",
			description: "Re-announce a pending job to all eligible translators",
			run:         runResendPush,
		},
		"resend-sms": {
			name:        "resend-sms",
			description: "Re-send the booking SMS for a job",
			run:         runResendSMS,
		},
		"expire-pending": {
			name:        "expire-pending",
			description: "Run one stale-pending expiry sweep",
			run:         runExpirePending,
		},
	}
}

func runMigrate(cmdCtx *commandContext, args []string) error {
	fs := flag.NewFlagSet("migrate", flag.ContinueOnError)
	timeout := fs.Duration("timeout", defaultMigrationTimeout, "migration timeout")
	if err := fs.Parse(args); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(cmdCtx.Ctx, *timeout)
	defer cancel()

	db, err := connectDB(cmdCtx)
	if err != nil {
		return err
	}
	defer closeQuietly(db, cmdCtx.Logger)

	return bootstrap.RunMigrations(ctx, db, cmdCtx.Logger)
}

func runResendPush(cmdCtx *commandContext, args []string) error {
	fs := flag.NewFlagSet("resend-push", flag.ContinueOnError)
	jobID := fs.String("job", "", "job id (required)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *jobID == "" {
		return errors.New("-job is required")
	}

	services, cleanup, err := connectServices(cmdCtx)
	if err != nil {
		return err
	}
	defer cleanup()

	job, err := services.Bookings.GetJob(cmdCtx.Ctx, *jobID)
	if err != nil {
		return err
	}

	attempted, err := services.Dispatcher.ResendPush(cmdCtx.Ctx, job.Job)
	if err != nil {
		return err
	}
	return writef(os.Stdout, "push re-sent to %d translator(s)\n", attempted)
}

func runResendSMS(cmdCtx *commandContext, args []string) error {
	fs := flag.NewFlagSet("resend-sms", flag.ContinueOnError)
	jobID := fs.String("job", "", "job id (required)")
	message := fs.String("message", "", "override message text")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *jobID == "" {
		return errors.New("-job is required")
	}

	services, cleanup, err := connectServices(cmdCtx)
	if err != nil {
		return err
	}
	defer cleanup()

	job, err := services.Bookings.GetJob(cmdCtx.Ctx, *jobID)
	if err != nil {
		return err
	}

	result, err := services.Dispatcher.ResendSMS(cmdCtx.Ctx, job.Job, *message)
	if err != nil {
		return err
	}
	if result.Delivered {
		return writef(os.Stdout, "sms delivered\n")
	}
	return writef(os.Stdout, "sms not delivered: %s\n", result.Reason)
}

func runExpirePending(cmdCtx *commandContext, args []string) error {
	fs := flag.NewFlagSet("expire-pending", flag.ContinueOnError)
	if err := fs.Parse(args); err != nil {
		return err
	}

	services, cleanup, err := connectServices(cmdCtx)
	if err != nil {
		return err
	}
	defer cleanup()

	if services.Maintenance == nil {
		return errors.New("maintenance is disabled via config")
	}

	n, err := services.Maintenance.ExpireStalePending(cmdCtx.Ctx)
	if err != nil {
		return err
	}
	return writef(os.Stdout, "expired %d stale pending job(s)\n", n)
}

func connectDB(cmdCtx *commandContext) (*sql.DB, error) {
	return bootstrap.ConnectDB(bootstrap.DatabaseConfig{
		DBConfig:    cmdCtx.Config.Postgres,
		RedisConfig: cmdCtx.Config.Redis,
		Logger:      cmdCtx.Logger,
	})
}

// connectServices wires the full container for commands that need services.
func connectServices(cmdCtx *commandContext) (*bootstrap.ServiceContainer, func(), error) {
	db, err := connectDB(cmdCtx)
	if err != nil {
		return nil, nil, err
	}

	redisClient, err := bootstrap.ConnectRedis(bootstrap.DatabaseConfig{
		DBConfig:    cmdCtx.Config.Postgres,
		RedisConfig: cmdCtx.Config.Redis,
		Logger:      cmdCtx.Logger,
	})
	if err != nil {
		closeQuietly(db, cmdCtx.Logger)
		return nil, nil, fmt.Errorf("connect redis: %w", err)
	}

	services, err := bootstrap.BuildServices(bootstrap.ServiceDeps{
		Config:      &cmdCtx.Config,
		DB:          db,
		RedisClient: redisClient,
		Logger:      cmdCtx.Logger,
	})
	if err != nil {
		closeQuietly(db, cmdCtx.Logger)
		if cerr := redisClient.Close(); cerr != nil {
			cmdCtx.Logger.Error("close redis failed", "error", cerr)
		}
		return nil, nil, err
	}

	cleanup := func() {
		closeQuietly(db, cmdCtx.Logger)
		if cerr := redisClient.Close(); cerr != nil {
			cmdCtx.Logger.Error("close redis failed", "error", cerr)
		}
	}
	return services, cleanup, nil
}

func closeQuietly(db *sql.DB, logger *slog.Logger) {
	if err := db.Close(); err != nil {
		logger.Error("close database failed", "error", err)
	}
}

func printUsage() error {
	if err := writef(os.Stderr, "usage: bookingd-admin <command> [flags]\n\ncommands:\n"); err != nil {
		return err
	}

	cmds := commands()
	names := make([]string, 0, len(cmds))
	for name := range cmds {
		names = append(names, name)
	}
	sort.Strings(names)

	tw := tabwriter.NewWriter(os.Stderr, 0, 4, 2, ' ', 0)
	for _, name := range names {
		cmd := cmds[name]
		if err := writef(tw, "  %s\t%s\n", cmd.name, cmd.description); err != nil {
			return err
		}
	}
	return tw.Flush()
}

func writef(w io.Writer, format string, args ...any) error {
	_, err := fmt.Fprintf(w, format, args...)
	return err
}
