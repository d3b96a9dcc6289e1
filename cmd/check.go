package main

import (
	"fmt"
	"io"

	"trv_schedule/internal/schedule"

	"github.com/fatih/color"
	"github.com/gosuri/uitable"
	"github.com/spf13/cobra"
)

var checkCmd = &cobra.Command{
	Use:     "check <schedule>",
	Short:   "Validate a day schedule and print its timeline",
	Example: `  trv-schedule check "00:00/18 06:00/21 22:00/16"`,
	Args:    cobra.ExactArgs(1),
	RunE:    runCheck,
}

func init() {
	rootCmd.AddCommand(checkCmd)
}

func runCheck(_ *cobra.Command, args []string) error {
	return renderCheck(color.Output, args[0])
}

// renderCheck parses text, prints its canonical form and one row per segment.
func renderCheck(w io.Writer, text string) error {
	day, err := schedule.Parse(text)
	if err != nil {
		return err
	}
	canonical, err := schedule.Format(day)
	if err != nil {
		return err
	}

	bold := color.New(color.Bold)
	_, _ = fmt.Fprintln(w, bold.Sprint("Schedule: ")+canonical)

	tbl := uitable.New()
	tbl.Separator = "  "
	tbl.AddRow("START", "END", "TEMP", "COLOR", "SHARE")
	for _, seg := range schedule.Project(day) {
		tbl.AddRow(
			schedule.ToText(seg.StartMinute),
			schedule.ToText(seg.EndMinute),
			tempColor(seg.Color).Sprint(schedule.FormatTemperature(seg.Temperature)),
			seg.Color.String(),
			fmt.Sprintf("%.1f%%", seg.Share()*100),
		)
	}
	_, err = fmt.Fprintln(w, tbl)
	return err
}

func tempColor(c schedule.Color) *color.Color {
	if c.R > c.B {
		return color.New(color.FgRed)
	}
	return color.New(color.FgBlue)
}
