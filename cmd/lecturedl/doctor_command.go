package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"lecturedl/internal/config"
	"lecturedl/internal/deps"
)

func newDoctorCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Check that the downloader and a Chrome browser are available",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)

			statuses := doctorStatuses(cfg)
			for _, line := range renderSectionHeader("Dependencies", colorize) {
				fmt.Fprintln(out, line)
			}
			lines, missing := dependencyLines(statuses, colorize)
			for _, line := range lines {
				fmt.Fprintln(out, line)
			}
			fmt.Fprintln(out)
			for _, line := range renderSectionHeader("Paths", colorize) {
				fmt.Fprintln(out, line)
			}
			fmt.Fprintln(out, renderStatusLine("Output", statusInfo, cfg.Paths.OutputDir, colorize))
			fmt.Fprintln(out, renderStatusLine("History", statusInfo, cfg.HistoryPath(), colorize))
			fmt.Fprintln(out, renderStatusLine("Log file", statusInfo, cfg.LogPath(), colorize))
			fmt.Fprintln(out, renderStatusLine("Headless", statusInfo, yesNo(cfg.Browser.Headless), colorize))
			if missing > 0 {
				return errors.New("required dependencies are missing")
			}
			return nil
		},
	}
}

func doctorStatuses(cfg *config.Config) []deps.Status {
	statuses := deps.CheckBinaries([]deps.Requirement{deps.Downloader(cfg.Download.Binary)})
	return append(statuses, deps.CheckBrowser(cfg.Browser.Binary))
}

// dependencyLines renders one status line per dependency and counts the
// required ones that are missing.
func dependencyLines(statuses []deps.Status, colorize bool) ([]string, int) {
	lines := make([]string, 0, len(statuses)+1)
	missing := deps.Missing(statuses)
	for _, dep := range statuses {
		if dep.Available {
			message := "Ready"
			if dep.Command != "" {
				message = fmt.Sprintf("Ready (command: %s)", dep.Command)
			}
			lines = append(lines, renderStatusLine(dep.Name, statusOK, message, colorize))
			continue
		}
		detail := strings.TrimSpace(dep.Detail)
		if detail == "" {
			detail = "not available"
		}
		kind := statusError
		if dep.Optional {
			kind = statusWarn
		}
		lines = append(lines, renderStatusLine(dep.Name, kind, detail, colorize))
	}
	if len(missing) > 0 {
		lines = append(lines, renderStatusLine("Missing dependencies", statusWarn, strings.Join(missing, ", "), colorize))
	}
	return lines, len(missing)
}
