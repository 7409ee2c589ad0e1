package main

import (
	"context"
	"strings"

	"github.com/franz/track-notes/internal/annotation"
	"github.com/franz/track-notes/internal/util"
	"github.com/spf13/cobra"
)

var layerCmd = &cobra.Command{
	Use:   "layer",
	Short: "Manage annotation layers",
	Long: `Manage the layers of the selected project.

Layers are referenced by id, unique id prefix or name. Exactly one layer is
active; new annotations go to it. A layer that still holds annotations, or
the last remaining layer, cannot be deleted.`,
}

var layerAddCmd = &cobra.Command{
	Use:   "add <name>",
	Short: "Create a layer",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runLayerAdd,
}

var layerRenameCmd = &cobra.Command{
	Use:   "rename <layer> <name>",
	Short: "Rename a layer",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := strings.Join(args[1:], " ")
		return layerAction(args[0], "Renamed", func(ws *workspace, l annotation.Layer) error {
			return ws.session.RenameLayer(l.ID, name)
		})
	},
}

var layerColorCmd = &cobra.Command{
	Use:   "color <layer> <#RRGGBB>",
	Short: "Change a layer's colour",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := annotation.ParseColor(args[1])
		if err != nil {
			return err
		}
		return layerAction(args[0], "Recoloured", func(ws *workspace, l annotation.Layer) error {
			return ws.session.SetLayerColor(l.ID, c)
		})
	},
}

var layerRmCmd = &cobra.Command{
	Use:     "rm <layer>",
	Aliases: []string{"delete"},
	Short:   "Delete an empty layer",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return layerAction(args[0], "Deleted", func(ws *workspace, l annotation.Layer) error {
			return ws.session.DeleteLayer(l.ID)
		})
	},
}

var layerActivateCmd = &cobra.Command{
	Use:   "activate <layer>",
	Short: "Make a layer the target for new annotations",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return layerAction(args[0], "Activated", func(ws *workspace, l annotation.Layer) error {
			return ws.session.SetActiveLayer(l.ID)
		})
	},
}

var layerToggleCmd = &cobra.Command{
	Use:   "toggle <layer>",
	Short: "Show or hide a layer",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return layerAction(args[0], "Toggled", func(ws *workspace, l annotation.Layer) error {
			return ws.session.ToggleLayer(l.ID)
		})
	},
}

var layerToggleAllCmd = &cobra.Command{
	Use:   "toggle-all",
	Short: "Hide every layer if all are visible, otherwise show every layer",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withProject(context.Background(), func(ws *workspace) (bool, error) {
			ws.session.ToggleAllLayers()
			visible := 0
			for _, l := range ws.session.Layers() {
				if l.IsVisible {
					visible++
				}
			}
			util.SuccessLog("%d of %d layers visible", visible, len(ws.session.Layers()))
			return true, nil
		})
	},
}

func init() {
	rootCmd.AddCommand(layerCmd)
	layerCmd.AddCommand(layerAddCmd, layerRenameCmd, layerColorCmd, layerRmCmd,
		layerActivateCmd, layerToggleCmd, layerToggleAllCmd)

	layerAddCmd.Flags().StringP("color", "c", "", "colour as #RRGGBB (default: next palette colour)")
	layerAddCmd.Flags().Bool("activate", false, "make the new layer active")
}

func runLayerAdd(cmd *cobra.Command, args []string) error {
	name := strings.Join(args, " ")
	colorFlag, _ := cmd.Flags().GetString("color")
	activate, _ := cmd.Flags().GetBool("activate")

	return withProject(context.Background(), func(ws *workspace) (bool, error) {
		s := ws.session

		c := annotation.NextColor(len(s.Layers()))
		if colorFlag != "" {
			parsed, err := annotation.ParseColor(colorFlag)
			if err != nil {
				return false, err
			}
			c = parsed
		}

		l, err := s.CreateLayer(name, c)
		if err != nil {
			return false, err
		}
		if activate {
			if err := s.SetActiveLayer(l.ID); err != nil {
				return false, err
			}
		}

		util.SuccessLog("Created layer %s (%s, %s)", l.Name, shortID(l.ID), l.Color)
		return true, nil
	})
}

// layerAction resolves one layer reference and applies op to it
func layerAction(ref, verb string, op func(ws *workspace, l annotation.Layer) error) error {
	return withProject(context.Background(), func(ws *workspace) (bool, error) {
		l, err := resolveLayer(ws.session.Layers(), ref)
		if err != nil {
			return false, err
		}
		if err := op(ws, l); err != nil {
			return false, err
		}
		util.SuccessLog("%s layer %s", verb, l.Name)
		return true, nil
	})
}
