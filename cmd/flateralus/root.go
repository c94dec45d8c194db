package main

import (
	"fmt"
	"os"

	"github.com/bracketbear/flateralus"
	"github.com/bracketbear/flateralus/animations"
	"github.com/bracketbear/flateralus/internal/config"
	"github.com/bracketbear/flateralus/internal/logging"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// options is the state shared by all subcommands.
type options struct {
	configPath string
	logLevel   string
	logJSON    bool
	debug      bool

	cfg    *config.Config
	logger *zap.Logger
}

func newRootCmd() *cobra.Command { return newRootCmdFor(&options{}) }

func newRootCmdFor(o *options) *cobra.Command {
	root := &cobra.Command{
		Use:   "flateralus",
		Short: "Interactive 2D sprite animations",
		Long: `flateralus hosts sprite-based animations driven by control manifests.

Animations can be rendered headlessly to PNG files or run in a window.
Settings come from a YAML config file, environment variables
(FLATERALUS_DEBUG, FLATERALUS_LOG_LEVEL, FLATERALUS_FPS) and flags, in
increasing order of precedence.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return o.init(cmd)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if o.logger != nil {
				_ = o.logger.Sync()
			}
		},
	}

	pf := root.PersistentFlags()
	pf.StringVarP(&o.configPath, "config", "c", "flateralus.yaml", "config file (missing file means defaults)")
	pf.StringVar(&o.logLevel, "log-level", "", "log level: debug, info, warn, error")
	pf.BoolVar(&o.logJSON, "log-json", false, "log as JSON")
	pf.BoolVar(&o.debug, "debug", false, "enable frame stats and scene-graph checks")

	root.AddCommand(newListCmd(o), newManifestCmd(o), newRenderCmd(o), newRunCmd(o))
	return root
}

// init loads the config, applies flag overrides and builds the logger.
func (o *options) init(cmd *cobra.Command) error {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return err
	}
	flags := cmd.Flags()
	if flags.Changed("log-level") {
		cfg.Log.Level = o.logLevel
	}
	if flags.Changed("log-json") {
		cfg.Log.JSON = o.logJSON
	}
	if flags.Changed("debug") {
		cfg.Debug = o.debug
	}
	if cfg.Debug && !flags.Changed("log-level") && os.Getenv(config.EnvLogLevel) == "" {
		cfg.Log.Level = "debug"
	}
	o.cfg = cfg

	logger, _, err := logging.New(cfg.Log.Level, cfg.Log.JSON)
	if err != nil {
		return err
	}
	o.logger = logger
	return nil
}

// animationID picks the positional id or the configured default.
func (o *options) animationID(args []string) string {
	if len(args) > 0 {
		return args[0]
	}
	return o.cfg.Animation
}

// newAnimation creates the animation id with configured control overrides
// and, if controlsFile is set, the overrides from that file on top.
func (o *options) newAnimation(id, controlsFile string) (flateralus.Animation, error) {
	anim, err := animations.New(id)
	if err != nil {
		return nil, err
	}
	t, ok := anim.(flateralus.Tunable)
	if !ok {
		return anim, nil
	}
	v, err := o.controlValues(anim.Manifest(), controlsFile)
	if err != nil {
		return nil, err
	}
	if err := t.SetControls(v); err != nil {
		return nil, err
	}
	return anim, nil
}

func (o *options) controlValues(m *flateralus.Manifest, controlsFile string) (flateralus.ControlValues, error) {
	v, err := o.cfg.ControlValues(m)
	if err != nil {
		return v, err
	}
	if controlsFile == "" {
		return v, nil
	}
	data, err := os.ReadFile(controlsFile)
	if err != nil {
		return v, fmt.Errorf("read controls: %w", err)
	}
	if err := v.ApplyYAML(data); err != nil {
		return v, fmt.Errorf("controls %s: %w", controlsFile, err)
	}
	return v, nil
}
