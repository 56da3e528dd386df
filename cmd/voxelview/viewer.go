package main

import (
	"context"
	"fmt"
	"math"
	"time"

	"voxel-render/internal/config"
	"voxel-render/internal/graphics"
	"voxel-render/internal/graphics/glbackend"
	"voxel-render/internal/input"
	"voxel-render/internal/logging"
	"voxel-render/internal/meshing"
	"voxel-render/internal/metrics"
	"voxel-render/internal/physics"
	"voxel-render/internal/render"
	"voxel-render/internal/world"

	"github.com/go-gl/glfw/v3.3/glfw"
)

const (
	orbitSpeed = 1.5  // radians per second
	zoomSpeed  = 1.8  // distance factor per second
	dragScale  = 0.01 // radians per pixel
)

// viewer owns the window-side state of one session.
type viewer struct {
	ctx     context.Context
	window  *glfw.Window
	world   *world.World
	backend *glbackend.Backend
	render  *render.Renderer
	pool    *meshing.WorkerPool
	camera  *graphics.Camera
	input   *input.Manager
	limiter *render.FrameLimiter
	log     *logging.Logger

	culling    bool
	placeType  world.BlockType
	lastX      float64
	lastY      float64
	dragging   bool
	lastTitle  time.Time
	baseTitle  string
	frameCount int
}

func newViewer(ctx context.Context, window *glfw.Window, w *world.World, cfg *config.Config, mc *metrics.Collector, log *logging.Logger) (*viewer, error) {
	palette, err := graphics.DefaultPalette().WithOverrides(cfg.Palette)
	if err != nil {
		return nil, err
	}
	backend, err := glbackend.New(palette, log)
	if err != nil {
		return nil, err
	}

	opts := []render.Option{render.WithLogger(log), render.WithMetrics(mc)}
	var pool *meshing.WorkerPool
	if cfg.Workers > 0 {
		pool = meshing.NewWorkerPool(cfg.Workers, 2*cfg.Workers)
		opts = append(opts, render.WithPool(pool))
	}

	fbw, fbh := window.GetFramebufferSize()
	ww, wh := window.GetSize()
	v := &viewer{
		ctx:       ctx,
		window:    window,
		world:     w,
		backend:   backend,
		render:    render.New(w, backend, opts...),
		pool:      pool,
		camera:    graphics.NewCamera(ww, wh),
		input:     input.NewManager(),
		limiter:   render.NewFrameLimiter(cfg.Window.FPSLimit),
		log:       log,
		culling:   true,
		placeType: world.BlockTypeBrick,
		baseTitle: cfg.Window.Title,
	}
	backend.SetViewport(fbw, fbh)
	v.camera.Yaw, v.camera.Pitch = 0.7, 0.45
	v.reframe()
	v.attach()
	return v, nil
}

func (v *viewer) attach() {
	v.input.Attach(v.window)
	v.window.SetCursorPosCallback(func(w *glfw.Window, x, y float64) {
		if v.dragging {
			v.camera.Orbit(float32(v.lastX-x)*dragScale, float32(y-v.lastY)*dragScale)
		}
		v.lastX, v.lastY = x, y
	})
	v.window.SetScrollCallback(func(w *glfw.Window, xoff, yoff float64) {
		if yoff > 0 {
			v.camera.Zoom(0.9)
		} else if yoff < 0 {
			v.camera.Zoom(1.1)
		}
	})
	v.window.SetFramebufferSizeCallback(func(w *glfw.Window, width, height int) {
		v.backend.SetViewport(width, height)
	})
	v.window.SetSizeCallback(func(w *glfw.Window, width, height int) {
		v.camera.SetViewport(width, height)
	})
}

func (v *viewer) reframe() {
	if lo, hi, ok := v.world.Bounds(); ok {
		v.camera.Frame(lo, hi)
	}
}

// Loop renders until the window closes or a pass fails.
func (v *viewer) Loop() error {
	last := time.Now()
	v.lastTitle = last
	for !v.window.ShouldClose() {
		now := time.Now()
		dt := float32(now.Sub(last).Seconds())
		last = now

		v.handleInput(dt)

		if v.culling {
			v.render.SetViewProjection(v.camera.ViewProjection())
		} else {
			v.render.DisableCulling()
		}
		v.backend.SetViewProjection(v.camera.ViewProjection())
		if err := v.render.Update(v.ctx); err != nil {
			return err
		}

		v.window.SwapBuffers()
		v.input.PostUpdate()
		glfw.PollEvents()
		v.updateTitle(now)
		v.limiter.Wait()
	}
	return nil
}

func (v *viewer) handleInput(dt float32) {
	in := v.input
	if in.JustPressed(input.ActionQuit) {
		v.window.SetShouldClose(true)
	}
	v.dragging = in.IsActive(input.ActionDrag)

	var dYaw, dPitch float32
	if in.IsActive(input.ActionOrbitLeft) {
		dYaw -= orbitSpeed * dt
	}
	if in.IsActive(input.ActionOrbitRight) {
		dYaw += orbitSpeed * dt
	}
	if in.IsActive(input.ActionOrbitUp) {
		dPitch += orbitSpeed * dt
	}
	if in.IsActive(input.ActionOrbitDown) {
		dPitch -= orbitSpeed * dt
	}
	if dYaw != 0 || dPitch != 0 {
		v.camera.Orbit(dYaw, dPitch)
	}
	if in.IsActive(input.ActionZoomIn) {
		v.camera.Zoom(1 - min(zoomSpeed*dt, 0.5))
	}
	if in.IsActive(input.ActionZoomOut) {
		v.camera.Zoom(1 + zoomSpeed*dt)
	}

	if in.JustPressed(input.ActionRemoveBlock) {
		v.edit(false)
	}
	if in.JustPressed(input.ActionPlaceBlock) {
		v.edit(true)
	}
	if in.JustPressed(input.ActionNextBlock) {
		v.placeType = v.placeType%(world.NumBlockTypes-1) + 1
		v.log.Infof("placing %v", v.placeType)
	}
	if in.JustPressed(input.ActionRemesh) {
		config.RequestRemesh()
	}
	if in.JustPressed(input.ActionToggleCulling) {
		v.culling = !v.culling
		v.log.Infof("frustum culling %v", v.culling)
	}
	if in.JustPressed(input.ActionReframe) {
		v.reframe()
	}
}

// edit removes the block under the cursor, or places one against the face
// the cursor points at. When the cursor hits nothing the column under the
// camera target is used instead.
func (v *viewer) edit(place bool) {
	ww, wh := v.window.GetSize()
	origin, dir, err := v.camera.Ray(v.lastX, v.lastY, ww, wh)
	if err == nil {
		hit := physics.Raycast(origin, dir, physics.MinReachDistance, physics.MaxReachDistance+v.camera.Distance, v.world)
		if hit.Hit {
			if place {
				p := hit.AdjacentPosition
				v.world.Set(p[0], p[1], p[2], v.placeType)
				v.log.Debugf("placed %v at %v", v.placeType, p)
			} else {
				p := hit.HitPosition
				v.world.Remove(p[0], p[1], p[2])
				v.log.Debugf("removed block at %v", p)
			}
			return
		}
	}

	t := v.camera.Target
	x, z := int(math.Floor(float64(t[0]))), int(math.Floor(float64(t[2])))
	y, ok := v.world.Highest(x, z)
	switch {
	case place && ok:
		v.world.Set(x, y+1, z, v.placeType)
	case place:
		v.world.Set(x, 0, z, v.placeType)
	case ok:
		v.world.Remove(x, y, z)
	}
}

func (v *viewer) updateTitle(now time.Time) {
	v.frameCount++
	if now.Sub(v.lastTitle) < time.Second {
		return
	}
	st := v.render.Stats()
	v.window.SetTitle(fmt.Sprintf("%s | %d fps | %d/%d chunks | %d verts",
		v.baseTitle, v.frameCount, st.Drawn, st.Chunks, st.Vertices))
	v.frameCount = 0
	v.lastTitle = now
}

func (v *viewer) Close() {
	if v.pool != nil {
		v.pool.Shutdown()
	}
	if err := v.backend.Close(); err != nil {
		v.log.Warnf("close backend: %v", err)
	}
}
