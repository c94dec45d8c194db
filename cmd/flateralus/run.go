package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"time"

	"github.com/bracketbear/flateralus"
	"github.com/bracketbear/flateralus/backend/ebitenbackend"
	"github.com/bracketbear/flateralus/backend/raster"
	"github.com/bracketbear/flateralus/internal/watch"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

type runOptions struct {
	fps          int
	width        int
	height       int
	headless     bool
	duration     time.Duration
	title        string
	showFPS      bool
	resizable    bool
	controlsPath string
	watch        bool
}

func newRunCmd(o *options) *cobra.Command {
	ro := &runOptions{}
	cmd := &cobra.Command{
		Use:   "run [id]",
		Short: "Run an animation in a window",
		Long: `Runs an animation interactively in an ebiten window. The mouse and touch
input drive the pointer, and losing window focus pauses the animation.

With --headless the animation runs on the software backend without a window
until interrupted or --duration elapses, which is useful with --debug to
profile frame times. With --watch, the controls file is reloaded on every
save and applied to the running animation.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f := cmd.Flags()
			if f.Changed("fps") {
				o.cfg.FPS = ro.fps
			}
			if f.Changed("width") {
				o.cfg.Width = ro.width
			}
			if f.Changed("height") {
				o.cfg.Height = ro.height
			}
			if ro.controlsPath == "" {
				ro.controlsPath = o.cfg.ControlsFile
			}
			if err := o.cfg.Validate(); err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()
			return o.run(ctx, o.animationID(args), ro)
		},
	}
	f := cmd.Flags()
	f.IntVar(&ro.fps, "fps", 60, "target frame rate")
	f.IntVar(&ro.width, "width", 0, "canvas width")
	f.IntVar(&ro.height, "height", 0, "canvas height")
	f.BoolVar(&ro.headless, "headless", false, "run without a window on the software backend")
	f.DurationVar(&ro.duration, "duration", 0, "stop after this long (0 runs until interrupted)")
	f.StringVar(&ro.title, "title", "", "window title (defaults to the animation name)")
	f.BoolVar(&ro.showFPS, "show-fps", false, "draw an FPS counter")
	f.BoolVar(&ro.resizable, "resizable", true, "allow resizing the window")
	f.StringVar(&ro.controlsPath, "controls", "", "YAML control overrides (defaults to controlsFile from the config)")
	f.BoolVar(&ro.watch, "watch", false, "reload the controls file when it changes")
	return cmd
}

func (o *options) run(ctx context.Context, id string, ro *runOptions) error {
	anim, err := o.newAnimation(id, ro.controlsPath)
	if err != nil {
		return err
	}
	appCfg, err := o.cfg.AppConfig(o.logger)
	if err != nil {
		return err
	}
	var backend flateralus.Backend = ebitenbackend.Backend{}
	if ro.headless {
		backend = raster.Backend{}
	}
	app, err := flateralus.NewApplication(backend, appCfg)
	if err != nil {
		return err
	}
	defer app.Destroy()
	if err := app.SetAnimation(anim); err != nil {
		return err
	}

	if ro.duration > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, ro.duration)
		defer cancel()
	}
	if ro.watch && ro.controlsPath != "" {
		w, err := o.watchControls(app, anim.Manifest(), ro.controlsPath)
		if err != nil {
			return err
		}
		wctx, cancel := context.WithCancel(ctx)
		defer cancel()
		go func() {
			if err := w.Run(wctx); err != nil && !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded) {
				o.logger.Warn("controls watcher stopped", zap.Error(err))
			}
		}()
	}

	o.logger.Info("running", zap.String("animation", id), zap.Bool("headless", ro.headless), zap.Int("fps", o.cfg.FPS))
	if ro.headless {
		err := app.Run(ctx, o.cfg.FPS)
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil
		}
		return err
	}

	// Closing the window returns from Run; an interrupt destroys the
	// application, which ends the game loop.
	go func() {
		<-ctx.Done()
		app.Post(func(a *flateralus.Application) { a.Destroy() })
	}()
	title := ro.title
	if title == "" {
		title = anim.Manifest().Name()
	}
	return ebitenbackend.Run(app, ebitenbackend.RunConfig{
		Title:     title,
		ShowFPS:   ro.showFPS,
		Resizable: ro.resizable,
		TPS:       o.cfg.FPS,
	})
}

// watchControls reloads path into the running animation. Reloads are
// posted to the frame goroutine.
func (o *options) watchControls(app *flateralus.Application, m *flateralus.Manifest, path string) (*watch.Watcher, error) {
	return watch.New(path, o.logger, func(data []byte) {
		app.Post(func(a *flateralus.Application) {
			v, err := o.cfg.ControlValues(m)
			if err == nil {
				err = v.ApplyYAML(data)
			}
			if err == nil {
				err = a.SetControls(v)
			}
			if err != nil {
				o.logger.Warn("controls not applied", zap.Error(err))
				return
			}
			o.logger.Info("controls applied", zap.Any("overrides", v.Overrides()))
		})
	})
}
