package main

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/rpggio/efxcreator/internal/artifact"
	"github.com/rpggio/efxcreator/internal/domain/activity"
	"github.com/rpggio/efxcreator/internal/domain/project"
)

func newAudioCommand(ctx *commandContext) *cobra.Command {
	var rename bool
	cmd := &cobra.Command{
		Use:   "audio <id> [audio-ref]",
		Short: "Attach audio to a project, or clear it when no reference is given",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			var ref *string
			if len(args) == 2 {
				ref = &args[1]
			}
			return ctx.withApp(cmd, func(a *app) error {
				res, err := a.projects.SetAudio(cmd.Context(), args[0], ref)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				if res.Record.AudioRef == nil {
					fmt.Fprintf(out, "Cleared audio for %s\n", res.Record.ID)
					return nil
				}
				fmt.Fprintf(out, "Attached %s [%08X]\n", *res.Record.AudioRef, res.Fingerprint)
				if rename && res.SuggestedName != "" && res.SuggestedName != res.Record.Name {
					rec, err := a.projects.Rename(cmd.Context(), res.Record.ID, res.SuggestedName)
					if err != nil {
						return err
					}
					fmt.Fprintf(out, "Renamed to %s\n", rec.Name)
				}
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&rename, "rename", false, "Rename the project after the audio file")
	return cmd
}

func newStorageCommand(ctx *commandContext) *cobra.Command {
	storageCmd := &cobra.Command{
		Use:   "storage",
		Short: "Show the artifact storage location",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withApp(cmd, func(a *app) error {
				current, previous := a.projects.StorageLocation()
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Location: %s\n", current.Describe())
				for _, prev := range previous {
					fmt.Fprintf(out, "Pending migration from: %s\n", prev.Describe())
				}
				return nil
			})
		},
	}
	storageCmd.AddCommand(newStorageSetCommand(ctx))
	return storageCmd
}

func newStorageSetCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "set <location>",
		Short: "Move all artifacts to a new location",
		Long: "Move all artifacts to a new location. Use \"" + artifact.DefaultSetting +
			"\" for the internal directory, a path, or a configured external reference. " +
			"Running it again with the same location retries artifacts that failed to move.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			loc := artifact.ParseLocation(args[0])
			return ctx.withApp(cmd, func(a *app) error {
				result, err := a.projects.ChangeStorageLocation(cmd.Context(), loc)
				out := cmd.OutOrStdout()
				var partial *project.PartialMigrationError
				if err != nil && !errors.As(err, &partial) {
					return err
				}
				fmt.Fprintf(out, "Location: %s\n", loc.Describe())
				fmt.Fprintf(out, "Moved: %d, already present: %d, missing: %d, failed: %d\n",
					len(result.Moved), len(result.AlreadyPresent), len(result.Missing), len(result.Failed))
				if partial != nil {
					rows := make([][]string, 0, len(partial.IDs)+len(partial.Unavailable))
					for _, id := range partial.IDs {
						rows = append(rows, []string{id, result.Failed[id].Error()})
					}
					for _, l := range partial.Unavailable {
						rows = append(rows, []string{l, "location unavailable"})
					}
					fmt.Fprintln(out, renderTable([]string{"ID", "Error"}, rows, nil))
					return err
				}
				return nil
			})
		},
	}
}

func newCheckCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "check",
		Short: "Compare the catalog with the stored artifacts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withApp(cmd, func(a *app) error {
				report, err := a.projects.Check(cmd.Context())
				if err != nil {
					return err
				}
				if asJSON {
					return writeJSON(cmd, report)
				}
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Directory: %s\n", report.Dir)
				if report.Consistent() {
					fmt.Fprintln(out, "Catalog and artifacts are consistent")
					return nil
				}
				var rows [][]string
				for _, id := range report.MissingArtifacts {
					rows = append(rows, []string{id, "artifact missing"})
				}
				for _, id := range report.Orphans {
					rows = append(rows, []string{id, "no catalog record"})
				}
				for _, id := range report.PendingMigration {
					rows = append(rows, []string{id, "pending migration"})
				}
				for _, l := range report.UnavailableLocations {
					rows = append(rows, []string{l, "pending location unavailable"})
				}
				fmt.Fprintln(out, renderTable([]string{"ID", "Problem"}, rows, nil))
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output JSON")
	return cmd
}

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var limit int
	var typeFlag string
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "history [id]",
		Short: "Show recent project activity",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := activity.ListActivityOptions{Limit: limit}
			if len(args) == 1 {
				opts.ProjectID = args[0]
			}
			if t := strings.TrimSpace(typeFlag); t != "" {
				activityType := activity.ActivityType(t)
				opts.ActivityType = &activityType
			}
			return ctx.withApp(cmd, func(a *app) error {
				entries, err := a.activity.GetRecentActivity(cmd.Context(), opts)
				if err != nil {
					return err
				}
				if asJSON {
					return writeJSON(cmd, entries)
				}
				if len(entries) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No activity")
					return nil
				}
				rows := make([][]string, 0, len(entries))
				for _, e := range entries {
					rows = append(rows, []string{
						strconv.FormatInt(e.ID, 10),
						e.CreatedAt.Local().Format(time.DateTime),
						string(e.ActivityType),
						e.ProjectID,
						e.Summary,
					})
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderTable(
					[]string{"#", "When", "Type", "Project", "Summary"},
					rows,
					[]columnAlignment{alignRight},
				))
				return nil
			})
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 50, "Maximum entries to show")
	cmd.Flags().StringVar(&typeFlag, "type", "", "Only show one activity type")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output JSON")
	return cmd
}
