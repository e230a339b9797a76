package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/toejough/callmatch/internal/config"
	"github.com/toejough/callmatch/internal/logging"
)

// options are the persistent flags shared by every subcommand. Empty values defer to
// callmatch.toml, then to the defaults.
type options struct {
	configPath string
	logLevel   string
	logFormat  string
	color      string
	format     string
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:          "callmatch",
		Short:        "Verify recorded calls against expected call patterns",
		Version:      Version,
		SilenceUsage: true,
	}
	root.SetOut(stdout)
	root.SetErr(stderr)

	flags := root.PersistentFlags()
	flags.StringVar(&opts.configPath, "config", "", "path to "+config.FileName+" (default: search upward from the working directory)")
	flags.StringVar(&opts.logLevel, "log-level", "", "log level (debug|info|warn|error)")
	flags.StringVar(&opts.logFormat, "log-format", "", "log format (text|json)")
	flags.StringVar(&opts.color, "color", "", "colorize output (auto|on|off)")
	flags.StringVar(&opts.format, "format", "", "input document format (auto|yaml|json|msgpack)")

	root.AddCommand(
		newVerifyCmd(opts, false),
		newVerifyCmd(opts, true),
		newConvertCmd(opts),
		newKindsCmd(),
	)

	return root
}

// settings loads the configuration file and applies flag overrides.
func (o *options) settings() (config.Config, error) {
	path := o.configPath
	if path == "" {
		wd, err := os.Getwd()
		if err != nil {
			return config.Config{}, fmt.Errorf("resolving working directory: %w", err)
		}

		path, err = config.Find(wd)
		if err != nil {
			return config.Config{}, err
		}
	}

	cfg := config.DefaultConfig()

	if path != "" {
		loaded, err := config.Load(path)
		if err != nil {
			return config.Config{}, err
		}

		cfg = loaded
	}

	overrides := []struct {
		flag  string
		field *string
	}{
		{o.logLevel, &cfg.Log.Level},
		{o.logFormat, &cfg.Log.Format},
		{o.color, &cfg.Output.Color},
		{o.format, &cfg.Input.Format},
	}

	for _, override := range overrides {
		if override.flag != "" {
			*override.field = override.flag
		}
	}

	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}

	return cfg, nil
}

func loggerFor(cfg config.Config, stderr io.Writer) logging.Config {
	logCfg := cfg.Logging()
	logCfg.Output = stderr

	return logCfg
}
