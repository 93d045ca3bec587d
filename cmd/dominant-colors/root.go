package main

import (
	"github.com/mitchellh/go-homedir"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/ironsheep/dominant-colors/internal/config"
	"github.com/ironsheep/dominant-colors/internal/histogram"
	"github.com/ironsheep/dominant-colors/internal/logging"
)

// app carries the state shared by every subcommand.
type app struct {
	v       *viper.Viper
	cfgFile string
}

func newRootCmd() *cobra.Command {
	a := &app{v: viper.New()}

	rootCmd := &cobra.Command{
		Use:   "dominant-colors",
		Short: "Find the dominant colors of images",
		Long: `dominant-colors resamples an image to 100x100, quantizes every channel
to a multiple of the step and reports the ten most common colors as hex
codes with their share of pixels.

It runs as a one-shot CLI (analyze), an HTTP upload service (serve) or an
MCP server over stdio (mcp).`,
		SilenceUsage: true,
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&a.cfgFile, "config", "", "config file (default is $HOME/.dominant-colors.yaml)")
	flags.Int("step", histogram.DefaultStep, "quantization step per channel, 1-256")
	flags.Int("top", histogram.DefaultTopN, "number of colors to report")
	flags.Int("width", histogram.DefaultWidth, "resample width before counting, 0 keeps the image width")
	flags.Int("height", histogram.DefaultHeight, "resample height before counting, 0 keeps the image height")
	flags.String("filter", histogram.DefaultFilter, "resample filter: nearest, box, linear, catmullrom or lanczos")
	flags.Bool("parallel", false, "count pixels on all CPUs")
	flags.String("log-level", "info", "log level: debug, info, warn or error")

	a.bind(flags.Lookup("step"), config.KeyStep)
	a.bind(flags.Lookup("top"), config.KeyTop)
	a.bind(flags.Lookup("width"), config.KeyWidth)
	a.bind(flags.Lookup("height"), config.KeyHeight)
	a.bind(flags.Lookup("filter"), config.KeyFilter)
	a.bind(flags.Lookup("parallel"), config.KeyParallel)
	a.bind(flags.Lookup("log-level"), config.KeyLogLevel)

	rootCmd.AddCommand(
		newAnalyzeCmd(a),
		newServeCmd(a),
		newMCPCmd(a),
		newVersionCmd(),
	)
	return rootCmd
}

func (a *app) bind(flag *pflag.Flag, key string) {
	// BindPFlag only fails for a nil flag.
	_ = a.v.BindPFlag(key, flag)
}

// load reads the config file, if any, and returns the validated
// configuration together with a logger at the configured level.
func (a *app) load() (config.Config, *zap.Logger, error) {
	config.SetDefaults(a.v)

	if a.cfgFile != "" {
		a.v.SetConfigFile(a.cfgFile)
	} else {
		home, err := homedir.Dir()
		if err != nil {
			return config.Config{}, nil, errors.Wrap(err, "find home directory")
		}
		a.v.AddConfigPath(home)
		a.v.SetConfigName(".dominant-colors")
		a.v.SetConfigType("yaml")
	}

	if err := a.v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if a.cfgFile != "" || !errors.As(err, &notFound) {
			return config.Config{}, nil, errors.Wrap(err, "read config")
		}
	}

	cfg, err := config.Load(a.v)
	if err != nil {
		return cfg, nil, err
	}

	logger, err := logging.New(cfg.LogLevel)
	if err != nil {
		return cfg, nil, err
	}
	if used := a.v.ConfigFileUsed(); used != "" {
		logger.Debug("using config file", zap.String("path", used))
	}
	return cfg, logger, nil
}
