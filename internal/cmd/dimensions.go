package cmd

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/paulmach/orb/maptile"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/MeKo-Tech/mapboxutil/internal/staticmap"
	"github.com/MeKo-Tech/mapboxutil/internal/viewport"
)

var dimensionsCmd = &cobra.Command{
	Use:   "dimensions",
	Short: "Fit a bounding box into a static image",
	Long: `Compute center, zoom and pixel size of a static image showing a bounding box
on a canvas of at most --width x --height pixels, and print the matching
static image url.

The area is given with --bbox south,north,west,east or read from a GeoJSON
file (--geojson), optionally limited to features whose --key matches --values.`,
	RunE: runDimensions,
}

func init() {
	rootCmd.AddCommand(dimensionsCmd)

	dimensionsCmd.Flags().String("bbox", "", "Bounding box: south,north,west,east (e.g. \"49.49,51.51,2.54,6.41\")")
	dimensionsCmd.Flags().String("geojson", "", "GeoJSON file whose features define the area")
	dimensionsCmd.Flags().String("key", "id", "Feature property used with --values (\"id\" matches the feature id)")
	dimensionsCmd.Flags().StringSlice("values", nil, "Only use features whose --key is one of these values")
	dimensionsCmd.Flags().Int("width", staticmap.DefaultSize, "Maximum image width in pixels")
	dimensionsCmd.Flags().Int("height", staticmap.DefaultSize, "Maximum image height in pixels")
	dimensionsCmd.Flags().Float64("padding", 0, "Grow the area by this fraction of its span on every side")
	dimensionsCmd.Flags().String("style", staticmap.DefaultStyle, "Style id used in the printed url")
	dimensionsCmd.Flags().Int("tiles-zoom", -1, "Also count the 256px tiles covered at this zoom (negative to skip)")

	bindFlags(dimensionsCmd, []flagBinding{
		{"dimensions.bbox", "bbox"},
		{"dimensions.geojson", "geojson"},
		{"dimensions.key", "key"},
		{"dimensions.values", "values"},
		{"dimensions.width", "width"},
		{"dimensions.height", "height"},
		{"dimensions.padding", "padding"},
		{"dimensions.style", "style"},
		{"dimensions.tiles_zoom", "tiles-zoom"},
	})
}

type dimensionsOutput struct {
	Viewport viewport.Result `json:"viewport"`
	URL      string          `json:"url"`
	Tiles    *int            `json:"tiles,omitempty"`
}

func runDimensions(cmd *cobra.Command, args []string) error {
	m := MapConfig{
		Name:     "dimensions",
		BBox:     viper.GetString("dimensions.bbox"),
		GeoJSON:  viper.GetString("dimensions.geojson"),
		Key:      viper.GetString("dimensions.key"),
		Values:   viper.GetStringSlice("dimensions.values"),
		Width:    viper.GetInt("dimensions.width"),
		Height:   viper.GetInt("dimensions.height"),
		Padding:  viper.GetFloat64("dimensions.padding"),
		Style:    viper.GetString("dimensions.style"),
		Username: viper.GetString("username"),
	}
	tilesZoom := viper.GetInt("dimensions.tiles_zoom")

	result, opts, err := m.plan()
	if err != nil {
		return err
	}

	out := dimensionsOutput{
		Viewport: result,
		URL:      newClient().StaticURL(opts),
	}
	if tilesZoom >= 0 {
		if tilesZoom > 22 {
			return fmt.Errorf("--tiles-zoom %d out of range 0-22", tilesZoom)
		}
		n := result.TileCount(maptile.Zoom(tilesZoom))
		out.Tiles = &n
	}

	return printJSON(cmd, out)
}

func printJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}

// parseMarkers parses repeated --marker values.
func parseMarkers(raw []string) ([]staticmap.Marker, error) {
	markers := make([]staticmap.Marker, 0, len(raw))
	for _, s := range raw {
		if strings.TrimSpace(s) == "" {
			continue
		}
		m, err := staticmap.ParseMarker(s)
		if err != nil {
			return nil, err
		}
		markers = append(markers, m)
	}
	return markers, nil
}
