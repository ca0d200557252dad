package main

import (
	"errors"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/alfredjeanlab/rolodex/internal/browse"
	"github.com/alfredjeanlab/rolodex/internal/export"
	"github.com/alfredjeanlab/rolodex/internal/model"
	rolosync "github.com/alfredjeanlab/rolodex/internal/sync"
	"github.com/alfredjeanlab/rolodex/internal/ui"
)

var browseCmd = &cobra.Command{
	Use:     "browse <entity>",
	Short:   "Interactively search and export a list",
	GroupID: "records",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		entity, err := model.ParseEntity(args[0])
		if err != nil {
			return err
		}
		if !ui.IsInteractive() {
			return errors.New("browse needs an interactive terminal; use rx list instead")
		}

		settings := loadSettingsOnce().Export
		outDir, _ := cmd.Flags().GetString("output-dir")
		if outDir == "" {
			outDir = settings.OutputDir
		}
		if outDir == "" {
			outDir = "."
		}

		m, err := browse.New(cmd.Context(), entity, recordsClient, browse.Options{
			Envelope: export.Options{
				Company:    settings.Company,
				ExportedBy: settings.Author,
				Version:    settings.Version,
			},
			Deliverer: rolosync.NewFileDestination(outDir),
			Plain:     !ui.ShouldUseColor(),
		})
		if err != nil {
			return err
		}

		_, err = tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(cmd.Context())).Run()
		if errors.Is(err, tea.ErrProgramKilled) {
			return nil
		}
		return err
	},
}

func init() {
	browseCmd.Flags().String("output-dir", "", "directory exports are written to (default: config export.output_dir or .)")
}
