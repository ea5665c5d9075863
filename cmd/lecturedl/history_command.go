package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"lecturedl/internal/history"
)

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var courseID string
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List previous download runs",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			store, err := history.Open(cfg)
			if err != nil {
				return fmt.Errorf("open history: %w", err)
			}
			defer store.Close()

			runs, err := store.ListRuns(cmd.Context(), courseID, limit)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(runs) == 0 {
				fmt.Fprintln(out, "No runs recorded")
				return nil
			}
			fmt.Fprintln(out, renderRunsTable(runs, time.Now()))
			return nil
		},
	}
	cmd.Flags().StringVar(&courseID, "course", "", "Only show runs for this course id")
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum number of runs to show")

	cmd.AddCommand(newHistoryShowCommand(ctx))
	cmd.AddCommand(newHistoryPruneCommand(ctx))
	return cmd
}

func newHistoryShowCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show <run-id>",
		Short: "Show the downloads of one run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			store, err := history.Open(cfg)
			if err != nil {
				return fmt.Errorf("open history: %w", err)
			}
			defer store.Close()

			runID := strings.TrimSpace(args[0])
			run, err := store.GetRun(cmd.Context(), runID)
			if err != nil {
				return err
			}
			if run == nil {
				return fmt.Errorf("run %s not found", runID)
			}
			downloads, err := store.Downloads(cmd.Context(), runID)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)
			fmt.Fprintln(out, renderStatusLine("Run", statusInfo, run.ID, colorize))
			fmt.Fprintln(out, renderStatusLine("Course", statusInfo, courseLabel(*run), colorize))
			fmt.Fprintln(out, renderStatusLine("Range", statusInfo, run.DateRange, colorize))
			fmt.Fprintln(out, renderStatusLine("Status", runStatusKind(run.Status), string(run.Status), colorize))
			if run.ErrorMessage != "" {
				fmt.Fprintln(out, renderStatusLine("Error", statusError, run.ErrorMessage, colorize))
			}
			if len(downloads) > 0 {
				fmt.Fprintln(out, renderDownloadsTable(downloads))
			}
			return nil
		},
	}
}

func newHistoryPruneCommand(ctx *commandContext) *cobra.Command {
	var olderThan time.Duration

	cmd := &cobra.Command{
		Use:   "prune",
		Short: "Delete runs older than a given age",
		RunE: func(cmd *cobra.Command, args []string) error {
			if olderThan <= 0 {
				return fmt.Errorf("--older-than must be positive")
			}
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			store, err := history.Open(cfg)
			if err != nil {
				return fmt.Errorf("open history: %w", err)
			}
			defer store.Close()

			removed, err := store.Prune(cmd.Context(), time.Now().Add(-olderThan))
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed %d runs\n", removed)
			return nil
		},
	}
	cmd.Flags().DurationVar(&olderThan, "older-than", 90*24*time.Hour, "Minimum age of runs to delete")
	return cmd
}

func renderRunsTable(runs []history.Run, now time.Time) string {
	rows := make([][]string, 0, len(runs))
	for _, run := range runs {
		rows = append(rows, []string{
			shortID(run.ID),
			courseLabel(run),
			humanize.RelTime(run.StartedAt, now, "ago", "from now"),
			string(run.Status),
			fmt.Sprintf("%d/%d", run.Succeeded, run.Total),
			formatElapsed(run.Duration()),
		})
	}
	return renderTable(
		[]string{"Run", "Course", "Started", "Status", "Done", "Time"},
		rows,
		[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft, alignRight, alignRight},
	)
}

func renderDownloadsTable(downloads []history.Download) string {
	rows := make([][]string, 0, len(downloads))
	for _, d := range downloads {
		size := ""
		if d.SizeBytes > 0 {
			size = humanize.IBytes(uint64(d.SizeBytes))
		}
		rows = append(rows, []string{
			fmt.Sprintf("%d", d.LectureNumber),
			d.RecordingDate,
			d.Filename,
			d.Outcome,
			size,
			d.ErrorMessage,
		})
	}
	return renderTable(
		[]string{"#", "Date", "File", "Result", "Size", "Error"},
		rows,
		[]columnAlignment{alignRight, alignLeft, alignLeft, alignLeft, alignRight, alignLeft},
	)
}

func courseLabel(run history.Run) string {
	if run.CourseName == "" {
		return run.CourseID
	}
	return run.CourseID + " - " + run.CourseName
}

func runStatusKind(status history.Status) statusKind {
	switch status {
	case history.StatusSucceeded:
		return statusOK
	case history.StatusPartial:
		return statusWarn
	case history.StatusFailed:
		return statusError
	default:
		return statusInfo
	}
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
