package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/rpggio/efxcreator/internal/domain/project"
	"github.com/rpggio/efxcreator/internal/domain/timeline"
	"github.com/rpggio/efxcreator/internal/efx"
)

type effectFlags struct {
	at         string
	effect     string
	color      string
	background string
	period     int
	spf        int
	fade       int
	broadcast  bool
}

func (f *effectFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.at, "at", "", "Entry time as milliseconds or m:ss.mmm")
	cmd.Flags().StringVar(&f.effect, "effect", "on", "Effect type (on, off, strobe, blink, breath)")
	cmd.Flags().StringVar(&f.color, "color", "", "Effect color as rrggbb")
	cmd.Flags().StringVar(&f.background, "bg", "", "Background color as rrggbb")
	cmd.Flags().IntVar(&f.period, "period", -1, "Effect period; defaults per effect type")
	cmd.Flags().IntVar(&f.spf, "spf", -1, "Effect speed factor (0-255)")
	cmd.Flags().IntVar(&f.fade, "fade", -1, "Fade amount (0-255)")
	cmd.Flags().BoolVar(&f.broadcast, "broadcast", true, "Broadcast the effect to all devices")
}

func (f *effectFlags) entry() (timeline.Entry, error) {
	if f.at == "" {
		return timeline.Entry{}, fmt.Errorf("--at is required")
	}
	ms, err := timeline.ParseTimestamp(f.at)
	if err != nil {
		return timeline.Entry{}, err
	}
	effectType, err := efx.ParseEffectType(f.effect)
	if err != nil {
		return timeline.Entry{}, err
	}

	effect := efx.DefaultEffect(effectType)
	if f.color != "" {
		if effect.Color, err = efx.ParseColor(f.color); err != nil {
			return timeline.Entry{}, err
		}
	}
	if f.background != "" {
		if effect.Background, err = efx.ParseColor(f.background); err != nil {
			return timeline.Entry{}, err
		}
	}
	if effect.Period, err = byteFlag("period", f.period, effect.Period); err != nil {
		return timeline.Entry{}, err
	}
	if effect.SPF, err = byteFlag("spf", f.spf, effect.SPF); err != nil {
		return timeline.Entry{}, err
	}
	if effect.Fade, err = byteFlag("fade", f.fade, effect.Fade); err != nil {
		return timeline.Entry{}, err
	}
	effect.Broadcasting = 0
	if f.broadcast {
		effect.Broadcasting = 1
	}

	return timeline.Entry{TimestampMs: ms, Payload: efx.EncodeEffect(effect)}, nil
}

// byteFlag returns fallback for the -1 "unset" sentinel.
func byteFlag(name string, value int, fallback uint8) (uint8, error) {
	if value == -1 {
		return fallback, nil
	}
	if value < 0 || value > 255 {
		return 0, fmt.Errorf("--%s must be between 0 and 255, got %d", name, value)
	}
	return uint8(value), nil
}

// parseIndex converts the 1-based entry number shown by "show" into a
// timeline position.
func parseIndex(value string) (int, error) {
	n, err := strconv.Atoi(value)
	if err != nil || n < 1 {
		return 0, fmt.Errorf("invalid entry number %q", value)
	}
	return n - 1, nil
}

func newEntryCommand(ctx *commandContext) *cobra.Command {
	entryCmd := &cobra.Command{
		Use:   "entry",
		Short: "Edit timeline entries",
	}
	entryCmd.AddCommand(newEntryAddCommand(ctx))
	entryCmd.AddCommand(newEntryUpdateCommand(ctx))
	entryCmd.AddCommand(newEntryDeleteCommand(ctx))
	return entryCmd
}

func newEntryAddCommand(ctx *commandContext) *cobra.Command {
	var flags effectFlags
	cmd := &cobra.Command{
		Use:   "add <id>",
		Short: "Add an entry",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			entry, err := flags.entry()
			if err != nil {
				return err
			}
			return applyEdit(cmd, ctx, args[0], project.AddEntry(entry))
		},
	}
	flags.register(cmd)
	return cmd
}

func newEntryUpdateCommand(ctx *commandContext) *cobra.Command {
	var flags effectFlags
	cmd := &cobra.Command{
		Use:   "update <id> <number>",
		Short: "Replace an entry",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			position, err := parseIndex(args[1])
			if err != nil {
				return err
			}
			entry, err := flags.entry()
			if err != nil {
				return err
			}
			return applyEdit(cmd, ctx, args[0], project.UpdateEntry(position, entry))
		},
	}
	flags.register(cmd)
	return cmd
}

func newEntryDeleteCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id> <number>",
		Short: "Delete an entry",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			position, err := parseIndex(args[1])
			if err != nil {
				return err
			}
			return applyEdit(cmd, ctx, args[0], project.DeleteEntry(position))
		},
	}
}

func applyEdit(cmd *cobra.Command, ctx *commandContext, id string, edit project.Edit) error {
	return ctx.withApp(cmd, func(a *app) error {
		_, art, err := a.projects.ApplyEdit(cmd.Context(), id, edit)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Timeline %s: %d entries\n", edit.Kind, art.EntryCount())
		return nil
	})
}
