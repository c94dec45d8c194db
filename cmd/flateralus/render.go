package main

import (
	"fmt"
	"os"
	"time"

	"github.com/bracketbear/flateralus"
	"github.com/bracketbear/flateralus/backend/raster"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

type renderOptions struct {
	out          string
	frames       int
	fps          int
	width        int
	height       int
	scriptPath   string
	controlsPath string
	label        string
}

func newRenderCmd(o *options) *cobra.Command {
	ro := &renderOptions{}
	cmd := &cobra.Command{
		Use:   "render [id]",
		Short: "Render an animation headlessly to PNG",
		Long: `Renders frames with the software backend and writes PNG snapshots.

Without --script, the animation runs for --frames frames and the last frame
is saved. With --script, the YAML script drives the pointer, visibility and
canvas size, and every snapshot step writes a file; the last frame is saved
as well.`,
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
			if err := o.cfg.Validate(); err != nil {
				return err
			}
			paths, err := o.render(o.animationID(args), ro)
			for _, p := range paths {
				fmt.Fprintln(cmd.OutOrStdout(), p)
			}
			return err
		},
	}
	f := cmd.Flags()
	f.StringVarP(&ro.out, "out", "o", ".", "output directory")
	f.IntVarP(&ro.frames, "frames", "n", 1, "frames to render without a script")
	f.IntVar(&ro.fps, "fps", 60, "frame rate used to advance the clock")
	f.IntVar(&ro.width, "width", 0, "canvas width")
	f.IntVar(&ro.height, "height", 0, "canvas height")
	f.StringVar(&ro.scriptPath, "script", "", "YAML input script")
	f.StringVar(&ro.controlsPath, "controls", "", "YAML control overrides")
	f.StringVar(&ro.label, "label", "final", "label of the last-frame snapshot")
	return cmd
}

// render runs the animation and returns the snapshot paths written.
func (o *options) render(id string, ro *renderOptions) ([]string, error) {
	anim, err := o.newAnimation(id, ro.controlsPath)
	if err != nil {
		return nil, err
	}
	appCfg, err := o.cfg.AppConfig(o.logger)
	if err != nil {
		return nil, err
	}
	app, err := flateralus.NewApplication(raster.Backend{}, appCfg)
	if err != nil {
		return nil, err
	}
	defer app.Destroy()
	if err := app.SetAnimation(anim); err != nil {
		return nil, err
	}

	var paths []string
	snapshot := func(label string) error {
		r, ok := app.Renderer().(*raster.Renderer)
		if !ok {
			return fmt.Errorf("snapshot %q: application has no raster renderer", label)
		}
		p, err := r.SaveSnapshot(ro.out, label)
		if err != nil {
			return err
		}
		paths = append(paths, p)
		return nil
	}

	frameTime := time.Second / time.Duration(o.cfg.FPS)
	start := time.Now()
	var frames int
	if ro.scriptPath != "" {
		data, err := os.ReadFile(ro.scriptPath)
		if err != nil {
			return nil, fmt.Errorf("read script: %w", err)
		}
		runner, err := flateralus.LoadScript(data)
		if err != nil {
			return nil, fmt.Errorf("script %s: %w", ro.scriptPath, err)
		}
		runner.OnSnapshot = snapshot
		if frames, err = runner.Play(app, frameTime, 0); err != nil {
			return paths, err
		}
	} else {
		for ; frames < max(ro.frames, 1); frames++ {
			if err := app.Frame(time.Duration(frames) * frameTime); err != nil {
				return paths, err
			}
		}
	}
	if err := snapshot(ro.label); err != nil {
		return paths, err
	}
	o.logger.Info("render finished",
		zap.String("animation", id),
		zap.Int("frames", frames),
		zap.Duration("elapsed", time.Since(start)),
		zap.Strings("files", paths))
	return paths, nil
}
