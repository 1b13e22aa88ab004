// cmd/canvas/main.go
//
// The renderer that rayforge builds into bin/canvas. It traces the demo
// scene and writes the image (canvas.ppm by default).

package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/kingrea/rayforge/internal/canvas"
	"github.com/kingrea/rayforge/internal/config"
	"github.com/kingrea/rayforge/internal/logging"
	"github.com/kingrea/rayforge/internal/scene"
)

type options struct {
	output   string
	logLevel string
	scene    scene.Options
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := newCommand(os.Stderr).ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "canvas: %v\n", err)
		os.Exit(1)
	}
}

func newCommand(stderr io.Writer) *cobra.Command {
	opts := &options{scene: scene.DefaultOptions()}
	cmd := &cobra.Command{
		Use:           "canvas",
		Short:         "Render the demo scene to an image",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			logger := log.New()
			logger.SetOutput(stderr)
			logging.Configure(logger, config.LogSettings{Level: opts.logLevel, Format: "text"})
			return render(cmd.Context(), logger, opts)
		},
	}
	f := cmd.Flags()
	f.StringVarP(&opts.output, "output", "o", "canvas.ppm", "output image (.ppm, .png or .bmp)")
	f.IntVar(&opts.scene.Width, "width", opts.scene.Width, "image width in pixels")
	f.IntVar(&opts.scene.Height, "height", opts.scene.Height, "image height in pixels")
	f.Float64Var(&opts.scene.FieldOfView, "fov", opts.scene.FieldOfView, "field of view in degrees")
	f.StringVar(&opts.scene.Model, "obj", "", "OBJ model to add to the scene")
	f.IntVar(&opts.scene.Workers, "workers", 0, "rows rendered in parallel (0 = all CPUs)")
	f.StringVar(&opts.logLevel, "log-level", "info", "log level")
	return cmd
}

func render(ctx context.Context, logger *log.Logger, opts *options) error {
	if _, err := canvas.FormatFor(opts.output); err != nil {
		return err
	}
	world, cam, err := scene.Build(opts.scene)
	if err != nil {
		return err
	}
	entry := logger.WithFields(log.Fields{
		"width":   cam.HSize,
		"height":  cam.VSize,
		"objects": len(world.Objects),
	})
	entry.Debug("rendering")

	start := time.Now()
	image, err := cam.Render(ctx, world)
	if err != nil {
		return fmt.Errorf("render: %w", err)
	}
	if err := image.Save(opts.output); err != nil {
		return err
	}
	entry.WithFields(log.Fields{
		"output":  opts.output,
		"elapsed": time.Since(start).Round(time.Millisecond),
	}).Info("image written")
	return nil
}
