package cli

import (
	"errors"
	"fmt"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"rescue-console/internal/model"
)

func urgenciesCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "urgencies",
		Aliases: []string{"urgency"},
		Short:   "List, report and update rescue urgencies",
	}

	var status string
	list := &cobra.Command{
		Use:     "list",
		Short:   "List urgencies",
		Args:    cobra.NoArgs,
		PreRunE: requireSession(opts),
		RunE: func(cmd *cobra.Command, _ []string) error {
			items, err := opts.console.API.Urgencies.List(cmd.Context(), model.UrgencyFilter{Status: model.UrgencyStatus(status)})
			if err != nil {
				return err
			}
			if opts.jsonOutput {
				return opts.printJSON(cmd.OutOrStdout(), items)
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tSEVERITY\tSTATUS\tTITLE\tREPORTED")
			for _, u := range items {
				fmt.Fprintf(tw, "%s\t%d\t%s\t%s\t%s\n", u.ID, u.Severity, u.Status, u.Title, formatTime(u.ReportedAt))
			}
			return tw.Flush()
		},
	}
	list.Flags().StringVar(&status, "status", "", "filter by status (open, in_progress, resolved)")

	var report model.UrgencyReport
	reportCmd := &cobra.Command{
		Use:     "report TITLE",
		Short:   "Report a new urgency",
		Args:    cobra.MinimumNArgs(1),
		PreRunE: requireSession(opts),
		RunE: func(cmd *cobra.Command, args []string) error {
			report.Title = strings.Join(args, " ")
			created, err := opts.console.API.Urgencies.Report(cmd.Context(), report)
			if err != nil {
				return err
			}
			if opts.jsonOutput {
				return opts.printJSON(cmd.OutOrStdout(), created)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "reported urgency %s\n", created.ID)
			return nil
		},
	}
	reportCmd.Flags().IntVar(&report.Severity, "severity", 3, "severity from 1 to 5")
	reportCmd.Flags().StringVar(&report.Description, "description", "", "free text description")
	reportCmd.Flags().Float64Var(&report.Latitude, "lat", 0, "latitude")
	reportCmd.Flags().Float64Var(&report.Longitude, "lon", 0, "longitude")

	statusCmd := &cobra.Command{
		Use:     "status ID STATUS",
		Short:   "Move an urgency to open, in_progress or resolved",
		Args:    cobra.ExactArgs(2),
		PreRunE: requireSession(opts),
		RunE: func(cmd *cobra.Command, args []string) error {
			updated, err := opts.console.API.Urgencies.UpdateStatus(cmd.Context(), args[0], model.UrgencyStatus(args[1]))
			if err != nil {
				return err
			}
			if opts.jsonOutput {
				return opts.printJSON(cmd.OutOrStdout(), updated)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "urgency %s is now %s\n", updated.ID, updated.Status)
			return nil
		},
	}

	cmd.AddCommand(list, reportCmd, statusCmd)
	return cmd
}

func shiftsCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "shifts",
		Short: "Inspect shifts",
	}

	var days int
	list := &cobra.Command{
		Use:     "list",
		Short:   "List shifts starting today",
		Args:    cobra.NoArgs,
		PreRunE: requireSession(opts),
		RunE: func(cmd *cobra.Command, _ []string) error {
			from := time.Now().Truncate(24 * time.Hour)
			items, err := opts.console.API.Shifts.List(cmd.Context(), model.ShiftFilter{From: from, To: from.AddDate(0, 0, days)})
			if err != nil {
				return err
			}
			if opts.jsonOutput {
				return opts.printJSON(cmd.OutOrStdout(), items)
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tSTATION\tSTART\tEND\tCREW")
			for _, s := range items {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\n", s.ID, s.Station, formatTime(s.Start), formatTime(s.End), len(s.EmployeeIDs))
			}
			return tw.Flush()
		},
	}
	list.Flags().IntVar(&days, "days", 7, "number of days to list")

	cmd.AddCommand(list)
	return cmd
}

func employeesCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "employees",
		Short: "Inspect rescue staff",
	}

	list := &cobra.Command{
		Use:     "list",
		Short:   "List employees",
		Args:    cobra.NoArgs,
		PreRunE: requireSession(opts),
		RunE: func(cmd *cobra.Command, _ []string) error {
			items, err := opts.console.API.Employees.List(cmd.Context())
			if err != nil {
				return err
			}
			if opts.jsonOutput {
				return opts.printJSON(cmd.OutOrStdout(), items)
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tNAME\tROLE\tACTIVE")
			for _, e := range items {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%t\n", e.ID, e.FullName(), e.Role, e.Active)
			}
			return tw.Flush()
		},
	}

	cmd.AddCommand(list)
	return cmd
}

func activitiesCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "activities",
		Short: "Read the activity feed",
	}

	var limit, maxEntries int
	tail := &cobra.Command{
		Use:     "tail",
		Short:   "Print recent activity, newest first",
		Args:    cobra.NoArgs,
		PreRunE: requireSession(opts),
		RunE: func(cmd *cobra.Command, _ []string) error {
			out := cmd.OutOrStdout()
			printed := 0
			err := opts.console.API.Activities.Each(cmd.Context(), limit, func(a model.Activity) error {
				if maxEntries > 0 && printed >= maxEntries {
					return errStopWalk
				}
				printed++
				if opts.jsonOutput {
					return opts.printJSON(out, a)
				}
				_, err := fmt.Fprintf(out, "%s  %-8s %s %s\n", formatTime(a.OccurredAt), a.EmployeeID, a.Action, a.Target)
				return err
			})
			if errors.Is(err, errStopWalk) {
				return nil
			}
			return err
		},
	}
	tail.Flags().IntVar(&limit, "page-size", 50, "entries fetched per request")
	tail.Flags().IntVarP(&maxEntries, "max", "n", 100, "stop after this many entries (0 for all)")

	cmd.AddCommand(tail)
	return cmd
}

func adminCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "admin",
		Short: "Administrator maintenance actions",
	}

	var confirm bool
	reset := &cobra.Command{
		Use:     "reset",
		Short:   "Wipe the backend data set",
		Args:    cobra.NoArgs,
		PreRunE: requireSession(opts),
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !confirm {
				return fmt.Errorf("%w: reset needs --yes", model.ErrInvalidInput)
			}
			if err := opts.console.API.Admin.Reset(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "backend reset requested")
			return nil
		},
	}
	reset.Flags().BoolVar(&confirm, "yes", false, "confirm the reset")

	restart := &cobra.Command{
		Use:     "restart",
		Short:   "Restart the backend cluster",
		Args:    cobra.NoArgs,
		PreRunE: requireSession(opts),
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := opts.console.API.Admin.RestartCluster(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "cluster restart requested")
			return nil
		},
	}

	cmd.AddCommand(reset, restart)
	return cmd
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format("2006-01-02 15:04")
}
