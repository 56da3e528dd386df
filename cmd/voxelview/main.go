// Command voxelview opens a window and draws a world with the OpenGL
// backend. The camera orbits the scene; blocks under the cursor can be
// removed and placed.
package main

import (
	"context"
	"flag"
	"os"
	"runtime"

	"voxel-render/internal/config"
	"voxel-render/internal/logging"
	"voxel-render/internal/metrics"
	"voxel-render/internal/storage"
	"voxel-render/internal/world"

	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/prometheus/client_golang/prometheus"
)

func init() {
	// glfw and GL calls must stay on the main thread
	runtime.LockOSThread()
}

func main() {
	configPath := flag.String("config", "", "YAML config file (default $"+config.EnvConfigPath+")")
	worldPath := flag.String("world", "", "world snapshot to load (overrides world_file)")
	flag.Parse()

	log := logging.Default()
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Errorf("%v", err)
		os.Exit(1)
	}
	if level, err := logging.ParseLevel(cfg.LogLevel); err == nil {
		log.SetLevel(level)
	} else {
		log.Warnf("%v, using info", err)
	}
	config.SetSlowPassThreshold(cfg.SlowPass())

	if err := run(cfg, *worldPath, log); err != nil {
		log.Errorf("voxelview: %v", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, worldPath string, log *logging.Logger) error {
	w, err := loadWorld(cfg, worldPath)
	if err != nil {
		return err
	}

	reg := prometheus.NewRegistry()
	collector := metrics.New(reg)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if cfg.MetricsAddr != "" {
		go func() {
			log.Infof("metrics on http://%s/metrics", cfg.MetricsAddr)
			if err := metrics.Serve(ctx, cfg.MetricsAddr, reg); err != nil {
				log.Errorf("metrics server: %v", err)
			}
		}()
	}

	if err := glfw.Init(); err != nil {
		return err
	}
	defer glfw.Terminate()

	window, err := setupWindow(cfg.Window)
	if err != nil {
		return err
	}
	defer window.Destroy()

	v, err := newViewer(ctx, window, w, cfg, collector, log)
	if err != nil {
		return err
	}
	defer v.Close()
	return v.Loop()
}

func loadWorld(cfg *config.Config, override string) (*world.World, error) {
	path := override
	if path == "" {
		path = cfg.WorldFile
	}
	if path == "" {
		return world.NewDemo(cfg.ChunkSize), nil
	}
	return storage.LoadFile(path)
}
