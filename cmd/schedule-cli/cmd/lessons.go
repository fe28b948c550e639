package cmd

import (
	"fmt"
	"schedule-backend/lib/timezone"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

var (
	fromFlag string
	toFlag   string
)

func init() {
	for _, c := range []*cobra.Command{lessonsCmd, icsCmd} {
		c.Flags().StringVar(&fromFlag, "from", "", "First iso week to fetch, ex. 2024-W05 (defaults to the current week).")
		c.Flags().StringVar(&toFlag, "to", "", "Last iso week to fetch (defaults to --from).")
	}
	rootCmd.AddCommand(lessonsCmd)
}

func weekRange() (timezone.IsoWeek, timezone.IsoWeek, error) {
	from := timezone.IsoWeekOf(timezone.Now())
	var err error
	if fromFlag != "" {
		from, err = timezone.ParseIsoWeek(fromFlag)
		if err != nil {
			return from, from, err
		}
	}
	to := from
	if toFlag != "" {
		to, err = timezone.ParseIsoWeek(toFlag)
		if err != nil {
			return from, to, err
		}
	}
	return from, to, nil
}

func optional(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

var lessonsCmd = &cobra.Command{
	Use:   "lessons",
	Short: "Print the lessons of a range of weeks.",
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

		t := newTable()
		t.AppendHeader(table.Row{"Week", "Day", "Start", "End", "Course", "Teacher", "Location"})
		for _, lesson := range lessons {
			start := lesson.Start.In(timezone.Location)
			end := lesson.End.In(timezone.Location)
			t.AppendRow(table.Row{
				timezone.IsoWeekOf(start).String(),
				start.Format("Mon 2006-01-02"),
				start.Format("15:04"),
				end.Format("15:04"),
				lesson.Course,
				optional(lesson.Teacher),
				optional(lesson.Location),
			})
		}
		t.AppendFooter(table.Row{"", "", "", "", fmt.Sprintf("%d lessons", len(lessons))})
		t.Render()
		return nil
	},
}
