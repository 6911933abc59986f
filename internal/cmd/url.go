package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/MeKo-Tech/mapboxutil/internal/staticmap"
)

var urlCmd = &cobra.Command{
	Use:   "url",
	Short: "Print a static image url for a center and zoom",
	RunE:  runURL,
}

func init() {
	rootCmd.AddCommand(urlCmd)

	urlCmd.Flags().Float64("lat", 0, "Center latitude")
	urlCmd.Flags().Float64("lon", 0, "Center longitude")
	urlCmd.Flags().Float64("zoom", 0, "Zoom level")
	urlCmd.Flags().Int("width", staticmap.DefaultSize, "Image width in pixels")
	urlCmd.Flags().Int("height", staticmap.DefaultSize, "Image height in pixels")
	urlCmd.Flags().String("style", staticmap.DefaultStyle, "Style id")
	urlCmd.Flags().StringArray("marker", nil, "Overlay marker lat,lon[,color[,label[,size]]] (repeatable)")
	urlCmd.Flags().Bool("cachebust", false, "Jitter the center slightly so the API does not return a cached image")

	bindFlags(urlCmd, []flagBinding{
		{"url.lat", "lat"},
		{"url.lon", "lon"},
		{"url.zoom", "zoom"},
		{"url.width", "width"},
		{"url.height", "height"},
		{"url.style", "style"},
		{"url.cachebust", "cachebust"},
	})
}

func runURL(cmd *cobra.Command, args []string) error {
	raw, err := cmd.Flags().GetStringArray("marker")
	if err != nil {
		return err
	}
	markers, err := parseMarkers(raw)
	if err != nil {
		return err
	}

	opts := staticmap.URLOptions{
		Username:  viper.GetString("username"),
		Style:     viper.GetString("url.style"),
		Latitude:  viper.GetFloat64("url.lat"),
		Longitude: viper.GetFloat64("url.lon"),
		Zoom:      viper.GetFloat64("url.zoom"),
		Width:     viper.GetInt("url.width"),
		Height:    viper.GetInt("url.height"),
		Overlays:  markers,
		CacheBust: viper.GetBool("url.cachebust"),
	}
	if opts.Width <= 0 || opts.Height <= 0 {
		return fmt.Errorf("width and height must be positive, got %dx%d", opts.Width, opts.Height)
	}

	_, err = fmt.Fprintln(cmd.OutOrStdout(), newClient().StaticURL(opts))
	return err
}
