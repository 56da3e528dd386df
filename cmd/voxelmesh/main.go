// Command voxelmesh meshes a world without a window and writes the result
// as Wavefront OBJ, a PNG snapshot image, or both.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"voxel-render/internal/config"
	"voxel-render/internal/graphics"
	"voxel-render/internal/graphics/objexport"
	"voxel-render/internal/graphics/software"
	"voxel-render/internal/logging"
	"voxel-render/internal/meshing"
	"voxel-render/internal/metrics"
	"voxel-render/internal/render"
	"voxel-render/internal/storage"
	"voxel-render/internal/world"

	"github.com/prometheus/client_golang/prometheus"
)

func main() {
	if err := run(context.Background(), os.Args[1:]); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		logging.Default().Errorf("voxelmesh: %v", err)
		os.Exit(1)
	}
}

type options struct {
	configPath string
	worldPath  string
	demo       bool
	terrain    int64
	objPath    string
	pngPath    string
	savePath   string
	noCaption  bool
}

func parseFlags(args []string) (options, error) {
	var o options
	fs := flag.NewFlagSet("voxelmesh", flag.ContinueOnError)
	fs.StringVar(&o.configPath, "config", "", "YAML config file (default $"+config.EnvConfigPath+")")
	fs.StringVar(&o.worldPath, "world", "", "world snapshot to load (overrides world_file)")
	fs.BoolVar(&o.demo, "demo", false, "mesh the built-in demo scene")
	fs.Int64Var(&o.terrain, "terrain", 0, "generate noise terrain from this seed instead of loading a world")
	fs.StringVar(&o.objPath, "obj", "", "write meshes as OBJ to this path")
	fs.StringVar(&o.pngPath, "png", "", "render a PNG image to this path")
	fs.StringVar(&o.savePath, "save", "", "write the world as a snapshot to this path")
	fs.BoolVar(&o.noCaption, "no-caption", false, "omit the stats caption from the PNG")
	if err := fs.Parse(args); err != nil {
		return o, err
	}
	if fs.NArg() > 0 {
		return o, fmt.Errorf("unexpected arguments: %s", strings.Join(fs.Args(), " "))
	}
	return o, nil
}

func run(ctx context.Context, args []string) error {
	opts, err := parseFlags(args)
	if err != nil {
		return err
	}
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return err
	}
	level, err := logging.ParseLevel(cfg.LogLevel)
	if err != nil {
		return err
	}
	log := logging.New(os.Stderr, level)
	logging.SetDefault(log)

	w, err := loadWorld(cfg, opts)
	if err != nil {
		return err
	}
	palette, err := graphics.DefaultPalette().WithOverrides(cfg.Palette)
	if err != nil {
		return err
	}

	if opts.objPath == "" && opts.pngPath == "" && opts.savePath == "" {
		out := cfg.Output
		if out == "" {
			out = "world.obj"
		}
		if strings.EqualFold(filepath.Ext(out), ".png") {
			opts.pngPath = out
		} else {
			opts.objPath = out
		}
	}

	var backends []graphics.Backend
	var obj *objexport.Writer
	if opts.objPath != "" {
		obj, err = objexport.Create(opts.objPath, palette)
		if err != nil {
			return err
		}
		defer obj.Close()
		backends = append(backends, obj)
	}
	var soft *software.Backend
	if opts.pngPath != "" {
		var so []software.Option
		if opts.noCaption {
			so = append(so, software.WithoutCaption())
		}
		soft = software.New(cfg.Window.Width, cfg.Window.Height, palette, so...)
		cam := graphics.NewCamera(cfg.Window.Width, cfg.Window.Height)
		cam.Yaw, cam.Pitch = 0.7, 0.45
		if lo, hi, ok := w.Bounds(); ok {
			cam.Frame(lo, hi)
		}
		soft.SetViewProjection(cam.ViewProjection())
		backends = append(backends, soft)
	}

	ropts := []render.Option{
		render.WithLogger(log),
		render.WithMetrics(metrics.New(prometheus.NewRegistry())),
		render.WithSlowPass(cfg.SlowPass()),
	}
	if cfg.Workers > 0 {
		pool := meshing.NewWorkerPool(cfg.Workers, 2*cfg.Workers)
		defer pool.Shutdown()
		ropts = append(ropts, render.WithPool(pool))
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()

	r := render.New(w, graphics.Multi(backends...), ropts...)
	if err := r.Update(ctx); err != nil {
		return err
	}
	st := r.Stats()
	log.Infof("meshed %d chunks: %d drawn, %d vertices in %v", st.Chunks, st.Drawn, st.Vertices, st.Duration)

	if obj != nil {
		if err := obj.Close(); err != nil {
			return fmt.Errorf("write obj: %w", err)
		}
		log.Infof("wrote %s (%d objects, %d triangles)", opts.objPath, obj.Objects(), obj.Triangles())
	}
	if soft != nil {
		if err := soft.SavePNG(opts.pngPath); err != nil {
			return err
		}
		log.Infof("wrote %s", opts.pngPath)
	}
	if opts.savePath != "" {
		if err := storage.SaveFile(opts.savePath, w); err != nil {
			return fmt.Errorf("save world: %w", err)
		}
		log.Infof("wrote %s", opts.savePath)
	}
	return nil
}

func loadWorld(cfg *config.Config, opts options) (*world.World, error) {
	if opts.terrain != 0 {
		return world.NewTerrain(cfg.ChunkSize, world.DefaultTerrain(opts.terrain)), nil
	}
	path := opts.worldPath
	if path == "" && !opts.demo {
		path = cfg.WorldFile
	}
	if path == "" {
		return world.NewDemo(cfg.ChunkSize), nil
	}
	w, err := storage.LoadFile(path)
	if err != nil {
		return nil, err
	}
	if w.ChunkSize() != cfg.ChunkSize {
		logging.Default().Warnf("%s uses chunk size %d, config says %d; keeping the snapshot's", path, w.ChunkSize(), cfg.ChunkSize)
	}
	return w, nil
}
