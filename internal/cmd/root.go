package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/MeKo-Tech/mapboxutil/internal/logging"
	"github.com/MeKo-Tech/mapboxutil/internal/mapbox"
)

// version is set at build time with -ldflags "-X .../internal/cmd.version=...".
var version = "dev"

var (
	cfgFile string
	logger  *slog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "mapboxutil",
	Short: "Static map images and style documents for Mapbox",
	Long: `mapboxutil computes the center and zoom that fit a bounding box into a static
map image, fetches those images from the Mapbox Static Images API and builds
style documents for the Mapbox Styles API.

Tokens are read from --public-token/--secret-token, the MAPBOXUTIL_PUBLIC_TOKEN
and MAPBOXUTIL_SECRET_TOKEN environment variables or the config file.`,
	SilenceUsage: true,
	Version:      version,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

type flagBinding struct {
	key  string
	flag string
}

// bindFlags binds local flags of cmd to viper keys.
func bindFlags(cmd *cobra.Command, bindings []flagBinding) {
	for _, bf := range bindings {
		if err := viper.BindPFlag(bf.key, cmd.Flags().Lookup(bf.flag)); err != nil {
			panic(fmt.Sprintf("failed to bind flag %s: %v", bf.flag, err))
		}
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&cfgFile, "config", "", "config file (default is ./config.yaml)")
	pf.String("public-token", "", "Mapbox public access token (pk.*) for static images")
	pf.String("secret-token", "", "Mapbox secret access token (sk.*) for the Styles API")
	pf.String("username", mapbox.DefaultUsername, "Mapbox account owning the styles")
	pf.String("base-url", mapbox.DefaultBaseURL, "Mapbox API base url")
	pf.Duration("timeout", 30*time.Second, "HTTP timeout per request")
	pf.String("log-level", "info", "Log level (debug, info, warn, error)")
	pf.Bool("log-console", true, "Human-readable log output instead of JSON")
	pf.Bool("verbose", false, "Enable verbose logging (same as --log-level=debug)")

	for _, bf := range []flagBinding{
		{"public_token", "public-token"},
		{"secret_token", "secret-token"},
		{"username", "username"},
		{"base_url", "base-url"},
		{"timeout", "timeout"},
		{"log.level", "log-level"},
		{"log.console", "log-console"},
		{"verbose", "verbose"},
	} {
		if err := viper.BindPFlag(bf.key, pf.Lookup(bf.flag)); err != nil {
			panic(fmt.Sprintf("failed to bind flag %s: %v", bf.flag, err))
		}
	}
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName("config")
	}

	viper.SetEnvPrefix("MAPBOXUTIL")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()

	err := viper.ReadInConfig()
	initLogging()
	if err == nil {
		logger.Debug("using config file", "path", viper.ConfigFileUsed())
	} else if cfgFile != "" {
		logger.Warn("failed to read config file", "path", cfgFile, "error", err)
	}
}

func initLogging() {
	level := viper.GetString("log.level")
	if viper.GetBool("verbose") {
		level = "debug"
	}
	logger = logging.New(logging.Config{
		Level:   level,
		Console: viper.GetBool("log.console"),
	}, os.Stderr)
}

// credentials returns the configured tokens, falling back to placeholders.
func credentials() mapbox.Credentials {
	return mapbox.DefaultCredentials().With(
		viper.GetString("public_token"),
		viper.GetString("secret_token"),
	)
}

// clientConfig returns the Mapbox client settings from flags, env and config.
func clientConfig() mapbox.Config {
	if logger == nil {
		initLogging()
	}

	creds := credentials()
	if !creds.Configured() {
		logger.Warn("mapbox tokens not configured, requests will be rejected",
			"hint", "set MAPBOXUTIL_PUBLIC_TOKEN and MAPBOXUTIL_SECRET_TOKEN")
	}

	return mapbox.Config{
		BaseURL:     viper.GetString("base_url"),
		Credentials: creds,
		HTTPClient:  mapbox.NewHTTPClient(viper.GetDuration("timeout")),
		Logger:      logger,
	}
}

func newClient() *mapbox.Client {
	return mapbox.NewClient(clientConfig())
}
