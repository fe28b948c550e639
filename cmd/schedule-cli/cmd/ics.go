package cmd

import (
	"io"
	"os"
	"schedule-backend/services/schedule"
	"time"

	"github.com/spf13/cobra"
)

var outputFlag string

func init() {
	icsCmd.Flags().StringVarP(&outputFlag, "output", "o", "-", "File to write the calendar to, - is stdout.")
	rootCmd.AddCommand(icsCmd)
}

var icsCmd = &cobra.Command{
	Use:   "ics",
	Short: "Export the lessons of a range of weeks as an ics calendar.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		from, to, err := weekRange()
		if err != nil {
			return err
		}
		s, err := session(cmd.Context())
		if err != nil {
			return err
		}
		lessons, err := client.GetLessonsBetween(cmd.Context(), s.Credentials, s.Timetable, from, to)
		if err != nil {
			return err
		}

		var out io.Writer = os.Stdout
		if outputFlag != "-" {
			f, err := os.Create(outputFlag)
			if err != nil {
				return err
			}
			defer f.Close()
			out = f
		}
		return schedule.NewCalendar(lessons, time.Now()).SerializeTo(out)
	},
}
