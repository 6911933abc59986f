package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/MeKo-Tech/mapboxutil/internal/archive"
	"github.com/MeKo-Tech/mapboxutil/internal/imagery"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export archived images to a folder",
	Long:  `Write every image stored in an archive created by "fetch --format=archive" to a folder.`,
	RunE:  runExport,
}

func init() {
	rootCmd.AddCommand(exportCmd)

	exportCmd.Flags().StringP("input", "i", "", "Archive file path (required)")
	exportCmd.Flags().String("output-dir", "./maps", "Output directory")

	bindFlags(exportCmd, []flagBinding{
		{"export.input", "input"},
		{"export.output_dir", "output-dir"},
	})
}

func runExport(cmd *cobra.Command, args []string) error {
	input := viper.GetString("export.input")
	outputDir := viper.GetString("export.output_dir")

	if logger == nil {
		initLogging()
	}

	if input == "" {
		return fmt.Errorf("--input is required")
	}

	n, err := exportArchive(input, outputDir)
	if err != nil {
		return err
	}
	logger.Info("Export complete", "output_dir", outputDir, "images", n)
	return nil
}

// exportArchive writes the images of the archive at path into dir and
// returns how many were written.
func exportArchive(path, dir string) (int, error) {
	r, err := archive.OpenReader(path)
	if err != nil {
		return 0, fmt.Errorf("failed to open archive: %w", err)
	}
	defer r.Close()

	meta, err := r.Metadata()
	if err != nil {
		return 0, err
	}
	names, err := r.Names()
	if err != nil {
		return 0, err
	}
	logger.Info("Exporting archive", "name", meta.Name, "images", len(names))

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return 0, fmt.Errorf("failed to create output directory: %w", err)
	}

	for i, name := range names {
		e, err := r.ReadImage(name)
		if err != nil {
			return i, err
		}
		ext := imagery.Info{Format: e.Format}.Extension()
		out := filepath.Join(dir, name+ext)
		if err := os.WriteFile(out, e.Data, 0o644); err != nil {
			return i, fmt.Errorf("failed to write image %s: %w", out, err)
		}
		logger.Debug("Exported image", "entry", e.String(), "path", out)
	}
	return len(names), nil
}
