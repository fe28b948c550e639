package cmd

import (
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(timetablesCmd)
}

var timetablesCmd = &cobra.Command{
	Use:   "timetables",
	Short: "List the timetables the account has access to.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		creds, err := login(cmd.Context())
		if err != nil {
			return err
		}
		timetables, err := client.ListTimetables(cmd.Context(), creds)
		if err != nil {
			return err
		}

		t := newTable()
		t.AppendHeader(table.Row{"Name", "Person guid", "Unit guid", "School"})
		for _, timetable := range timetables {
			t.AppendRow(table.Row{timetable.Name(), timetable.PersonGuid, timetable.UnitGuid, timetable.SchoolID})
		}
		t.Render()
		return nil
	},
}
