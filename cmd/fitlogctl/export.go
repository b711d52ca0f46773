package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/mansoorceksport/fitlog/internal/server"
	"github.com/mansoorceksport/fitlog/internal/service"
	"github.com/spf13/cobra"
)

var (
	exportFormat  string
	exportOut     string
	exportPublish bool
	exportIDs     []string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export a user's workouts (all or --ids) as JSON or CSV",
	RunE: func(cmd *cobra.Command, args []string) error {
		format, err := service.ParseExportFormat(strings.ToLower(exportFormat))
		if err != nil {
			return err
		}

		e, err := openEnv(cmd.Context())
		if err != nil {
			return err
		}
		defer e.close()

		repo, err := e.repository(cmd.Context())
		if err != nil {
			return err
		}

		var exports *service.ExportService
		if exportPublish {
			exports = service.NewExportService(server.OpenFiles(cmd.Context(), e.cfg))
		} else {
			exports = service.NewExportService(nil)
		}

		selected, err := service.SelectWorkouts(repo.Workouts(), exportIDs)
		if err != nil {
			return fmt.Errorf("no workouts match --ids: %w", err)
		}

		file, err := exports.Export(cmd.Context(), selected, format)
		if err != nil {
			return err
		}

		green := color.New(color.FgGreen).SprintFunc()
		if exportPublish {
			url, err := exports.Publish(cmd.Context(), e.userID, file)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", green("published"), url)
			return nil
		}

		out := exportOut
		if out == "" {
			out = file.Filename
		}
		if out == "-" {
			_, err = cmd.OutOrStdout().Write(file.Data)
			return err
		}
		if err := os.WriteFile(out, file.Data, 0o644); err != nil {
			return fmt.Errorf("failed to write %s: %w", out, err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s %s (%d workouts)\n", green("wrote"), out, len(selected))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(exportCmd)
	exportCmd.Flags().StringVarP(&exportFormat, "format", "f", "json", "json or csv")
	exportCmd.Flags().StringVarP(&exportOut, "out", "o", "", "output file, - for stdout (default workouts-export-<date>.<format>)")
	exportCmd.Flags().StringSliceVar(&exportIDs, "ids", nil, "comma-separated workout ids to export (default all)")
	exportCmd.Flags().BoolVar(&exportPublish, "publish", false, "upload to the export bucket instead of writing a file")
}
