package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"schedule-backend/lib/configutil"
	"schedule-backend/lib/restyutil"
	"schedule-backend/lib/scrapers/skola24"
	"schedule-backend/lib/serviceutil"
	"schedule-backend/lib/telemetry"
	"schedule-backend/services/schedule"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

// Config is read from the closest `cli.json5`, username and password are
// usually `${S24_USERNAME}` and `${S24_PASSWORD}`.
type Config struct {
	Username         string            `json:"username"`
	Password         string            `json:"password"`
	Timetable        string            `json:"timetable"`
	BrowserTransport bool              `json:"browser_transport"`
	Endpoints        skola24.Endpoints `json:"endpoints"`
}

var (
	verbose        bool
	encodedSession string
	timetableFlag  string
	config         Config
	client         *skola24.Client
	tel            telemetry.Telemetry
)

var rootCmd = &cobra.Command{
	Use:   "schedule-cli",
	Short: "schedule-cli fetches timetables from the Stockholm Skola24 portal.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		telemetry.InitSlog(verbose)

		var err error
		config, err = configutil.ReadRecursively[Config]("cli.json5")
		if err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("read cli.json5: %w", err)
		}
		if timetableFlag != "" {
			config.Timetable = timetableFlag
		}

		tel, err = telemetry.SetupFromEnv(cmd.Context(), "schedule-cli")
		if err != nil {
			return err
		}

		if verbose {
			output, err := restyutil.NewFilesystemOutput(".dev/resty/skola24")
			if err != nil {
				return err
			}
			skola24.SetRestyInstrumentOutput(output)
		}

		client, err = skola24.NewClient(skola24.Options{
			Endpoints:        config.Endpoints,
			BrowserTransport: config.BrowserTransport,
		})
		return err
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		return tel.Shutdown(context.Background())
	},
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging and dump http exchanges to .dev/resty.")
	rootCmd.PersistentFlags().StringVarP(&encodedSession, "session", "s", os.Getenv("SCHEDULE_SESSION"), "Reuse a session printed by `login` instead of logging in again.")
	rootCmd.PersistentFlags().StringVarP(&timetableFlag, "timetable", "t", "", "Person guid or student name of the timetable to use.")
}

func Execute() {
	if err := rootCmd.ExecuteContext(serviceutil.SignalContext()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newTable() table.Writer {
	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	t.SetOutputMirror(os.Stdout)
	return t
}

// login returns credentials from --session if given, otherwise it logs in
// with the configured username and password.
func login(ctx context.Context) (skola24.Credentials, error) {
	if encodedSession != "" {
		session, err := schedule.DecodeSession(encodedSession)
		if err != nil {
			return skola24.Credentials{}, err
		}
		return session.Credentials, nil
	}
	if config.Username == "" || config.Password == "" {
		return skola24.Credentials{}, errors.New("username and password must be set in cli.json5 (or pass --session)")
	}
	return client.AcquireCredentials(ctx, config.Username, config.Password)
}

// session logs in and selects the configured timetable.
func session(ctx context.Context) (schedule.Session, error) {
	if encodedSession != "" && timetableFlag == "" {
		return schedule.DecodeSession(encodedSession)
	}

	creds, err := login(ctx)
	if err != nil {
		return schedule.Session{}, err
	}
	timetables, err := client.ListTimetables(ctx, creds)
	if err != nil {
		return schedule.Session{}, err
	}
	timetable, err := schedule.SelectTimetable(timetables, config.Timetable)
	if err != nil {
		return schedule.Session{}, err
	}
	return schedule.Session{Credentials: creds, Timetable: timetable}, nil
}
