package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/rpggio/efxcreator/internal/domain/timeline"
	"github.com/rpggio/efxcreator/internal/efx"
	"github.com/rpggio/efxcreator/internal/fileutil"
)

func newListCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List projects",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withApp(cmd, func(a *app) error {
				summaries, err := a.projects.List(cmd.Context())
				if err != nil {
					return err
				}
				if asJSON {
					return writeJSON(cmd, summaries)
				}
				if len(summaries) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No projects")
					return nil
				}
				rows := make([][]string, 0, len(summaries))
				for _, s := range summaries {
					entries := strconv.Itoa(s.EntryCount)
					if s.Missing {
						entries = "missing"
					}
					rows = append(rows, []string{
						s.ID,
						s.Name,
						entries,
						yesNo(s.AudioRef != nil),
						s.UpdatedAt.Local().Format(time.DateTime),
					})
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderTable(
					[]string{"ID", "Name", "Entries", "Audio", "Updated"},
					rows,
					[]columnAlignment{alignLeft, alignLeft, alignRight, alignLeft, alignLeft},
				))
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output JSON")
	return cmd
}

func newCreateCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "create [name]",
		Short: "Create a project with a single default entry",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var name string
			if len(args) == 1 {
				name = args[0]
			}
			return ctx.withApp(cmd, func(a *app) error {
				rec, err := a.projects.Create(cmd.Context(), name)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Created %s (%s)\n", rec.Name, rec.ID)
				return nil
			})
		},
	}
}

func newShowCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Show a project timeline",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withApp(cmd, func(a *app) error {
				rec, art, err := a.projects.Open(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				if asJSON {
					return writeJSON(cmd, newTimelineView(rec.ID, rec.Name, rec.AudioRef, art))
				}
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "%s (%s)\n", rec.Name, rec.ID)
				if rec.AudioRef != nil {
					fmt.Fprintf(out, "Audio: %s [%08X]\n", *rec.AudioRef, art.Header.AudioFingerprint)
				}
				fmt.Fprintf(out, "Entries: %d\n", art.EntryCount())
				if art.EntryCount() == 0 {
					return nil
				}
				rows := make([][]string, 0, len(art.Entries))
				for _, e := range art.Entries {
					rows = append(rows, []string{
						strconv.Itoa(e.EffectIndex),
						timeline.FormatTimestamp(e.TimestampMs),
						efx.Describe(e.Payload),
					})
				}
				fmt.Fprintln(out, renderTable(
					[]string{"#", "Time", "Effect"},
					rows,
					[]columnAlignment{alignRight, alignRight, alignLeft},
				))
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output JSON")
	return cmd
}

type entryView struct {
	Index       int    `json:"index"`
	TimestampMs int64  `json:"timestamp_ms"`
	Time        string `json:"time"`
	Effect      string `json:"effect"`
}

type timelineView struct {
	ID               string      `json:"id"`
	Name             string      `json:"name"`
	AudioRef         *string     `json:"audio_ref,omitempty"`
	AudioFingerprint uint32      `json:"audio_fingerprint"`
	EntryCount       int         `json:"entry_count"`
	Entries          []entryView `json:"entries"`
}

func newTimelineView(id, name string, audioRef *string, art timeline.Artifact) timelineView {
	view := timelineView{
		ID:               id,
		Name:             name,
		AudioRef:         audioRef,
		AudioFingerprint: art.Header.AudioFingerprint,
		EntryCount:       art.EntryCount(),
		Entries:          make([]entryView, 0, len(art.Entries)),
	}
	for _, e := range art.Entries {
		view.Entries = append(view.Entries, entryView{
			Index:       e.EffectIndex,
			TimestampMs: e.TimestampMs,
			Time:        timeline.FormatTimestamp(e.TimestampMs),
			Effect:      efx.Describe(e.Payload),
		})
	}
	return view
}

func newRenameCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "rename <id> <name>",
		Short: "Rename a project",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withApp(cmd, func(a *app) error {
				rec, err := a.projects.Rename(cmd.Context(), args[0], args[1])
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Renamed %s to %s\n", rec.ID, rec.Name)
				return nil
			})
		},
	}
}

func newDeleteCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a project and its artifact",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withApp(cmd, func(a *app) error {
				if err := a.projects.Delete(cmd.Context(), args[0]); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", args[0])
				return nil
			})
		},
	}
}

func newExportCommand(ctx *commandContext) *cobra.Command {
	var outDir string
	cmd := &cobra.Command{
		Use:   "export <id> [name]",
		Short: "Copy a project artifact out of the store",
		Long:  "Copy a project artifact out of the store. The file is named after [name], or the project name when omitted.",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withApp(cmd, func(a *app) error {
				name := ""
				if len(args) == 2 {
					name = args[1]
				} else {
					rec, _, err := a.projects.Open(cmd.Context(), args[0])
					if err != nil {
						return err
					}
					name = rec.Name
				}
				exp, err := a.projects.Export(cmd.Context(), args[0], name)
				if err != nil {
					return err
				}

				dir := strings.TrimSpace(outDir)
				if dir == "" {
					dir = a.cfg.Export.Dir
				}
				if err := os.MkdirAll(dir, 0o755); err != nil {
					return fmt.Errorf("create export dir: %w", err)
				}
				target := filepath.Join(dir, exp.FileName)
				if err := fileutil.WriteFileAtomic(target, exp.Data, 0o644); err != nil {
					return fmt.Errorf("write export: %w", err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Exported %s to %s (%d bytes)\n", args[0], target, len(exp.Data))
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&outDir, "out", "o", "", "Directory to write the export into")
	return cmd
}
