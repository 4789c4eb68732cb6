package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/jtrac-dev/jtrac/internal"
	"github.com/jtrac-dev/jtrac/internal/export"
	"github.com/jtrac-dev/jtrac/internal/views"
	"github.com/spf13/cobra"
)

var (
	format    string
	outputDir string
)

// exportCmd represents the export command
var exportCmd = &cobra.Command{
	Use:   "export <pdn-id>...",
	Short: "Export PDNs to file",
	Long: `Export PDNs with their components and tracking history to various
formats (jsonl, md, yaml, json).

Without --out the export is written to standard output. With --out each PDN
is written to pdn_<id>.<ext> in that directory. The jsonl format holds the
tracking history, one event per line.`,
	Args:        cobra.MinimumNArgs(1),
	Annotations: map[string]string{routeAnnotation: "/app/pdn/:id"},
	RunE: func(cmd *cobra.Command, args []string) error {
		// Create exporter
		exporter, err := export.NewExporter(format)
		if err != nil {
			return err
		}

		ctx := cmd.Context()
		reports := make([]*internal.PDNReport, 0, len(args))
		err = internal.ShowProgress(ctx, fmt.Sprintf("Loading %d PDN(s)", len(args)), func() error {
			for _, id := range args {
				report, err := loadReport(ctx, id)
				if err != nil {
					return err
				}
				reports = append(reports, report)
			}
			return nil
		})
		if err != nil {
			return commandError(ctx, err)
		}

		if outputDir == "" {
			for _, report := range reports {
				if err := exporter.Export(report, cmd.OutOrStdout()); err != nil {
					return &internal.ExportError{Format: format, Path: "stdout", Err: err}
				}
			}
			return nil
		}

		// Ensure output directory exists
		if err := os.MkdirAll(outputDir, 0755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
		for _, report := range reports {
			path := filepath.Join(outputDir, fmt.Sprintf("pdn_%s.%s", report.PDN.PDNID, exporter.Extension()))
			if err := writeReport(exporter, report, path); err != nil {
				return err
			}
			internal.LogDebug("Wrote %s", path)
		}

		internal.PrintSuccess(cmd.OutOrStdout(), fmt.Sprintf("Export complete: %d PDN(s) exported to %s", len(reports), outputDir))
		return nil
	},
}

// loadReport fetches one PDN with its components and tracking history.
// Unlike the detail view, an export needs every part.
func loadReport(ctx context.Context, id string) (*internal.PDNReport, error) {
	detail := views.NewDetail(current.client, id)
	if err := detail.Load(ctx); err != nil {
		return nil, err
	}
	for _, err := range []error{detail.RecordErr, detail.ComponentsErr, detail.TrackingErr} {
		if err != nil {
			return nil, fmt.Errorf("failed to load PDN %s: %w", id, err)
		}
	}
	if detail.Record == nil {
		return nil, fmt.Errorf("PDN not found: %s", id)
	}
	return &internal.PDNReport{
		PDN:        detail.Record,
		Components: detail.Components,
		Tracking:   detail.Tracking,
		ExportedAt: time.Now().UTC().Format(time.RFC3339),
	}, nil
}

func writeReport(exporter export.Exporter, report *internal.PDNReport, path string) error {
	file, err := os.Create(path)
	if err != nil {
		return &internal.ExportError{Format: format, Path: path, Err: err}
	}
	if err := exporter.Export(report, file); err != nil {
		_ = file.Close()
		return &internal.ExportError{Format: format, Path: path, Err: err}
	}
	if err := file.Close(); err != nil {
		return &internal.ExportError{Format: format, Path: path, Err: err}
	}
	return nil
}

func init() {
	rootCmd.AddCommand(exportCmd)
	exportCmd.Flags().StringVarP(&format, "format", "f", "md", "Export format (jsonl, md, yaml, json)")
	exportCmd.Flags().StringVarP(&outputDir, "out", "o", "", "Output directory (default standard output)")
}
