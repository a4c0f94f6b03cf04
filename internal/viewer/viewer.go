// Package viewer implements the main application loop.
package viewer

import (
	"fmt"
	"time"

	"github.com/go-gl/gl/v2.1/gl"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/veandco/go-sdl2/sdl"
	"go.uber.org/zap"

	"github.com/Faultbox/meshview/internal/config"
	"github.com/Faultbox/meshview/internal/engine/camera"
	"github.com/Faultbox/meshview/internal/engine/input"
	"github.com/Faultbox/meshview/internal/engine/model"
	"github.com/Faultbox/meshview/internal/engine/renderer"
	"github.com/Faultbox/meshview/internal/engine/shader"
	"github.com/Faultbox/meshview/internal/engine/window"
	"github.com/Faultbox/meshview/internal/logger"
	"github.com/Faultbox/meshview/internal/viewer/shaders"
)

// Viewer is the main application instance.
type Viewer struct {
	config  *config.Config
	running bool

	window   *window.Window
	renderer *renderer.Renderer
	input    *input.Input
	camera   *camera.OrbitCamera
	program  *shader.Program
	model    *model.Model

	spinAngle float64 // degrees
	dragging  bool
	lastMX    int
	lastMY    int
}

// New creates a new viewer instance.
func New(cfg *config.Config) (*Viewer, error) {
	logger.Info("initializing viewer",
		zap.String("model", cfg.Model.Path),
		zap.Int("width", cfg.Graphics.Width),
		zap.Int("height", cfg.Graphics.Height),
	)

	v := &Viewer{
		config: cfg,
		camera: camera.NewOrbitCamera(),
	}

	// Create window (this also creates OpenGL context)
	var err error
	v.window, err = window.New(window.Config{
		Title:      "meshview",
		Width:      cfg.Graphics.Width,
		Height:     cfg.Graphics.Height,
		Fullscreen: cfg.Graphics.Fullscreen,
		VSync:      cfg.Graphics.VSync,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create window: %w", err)
	}

	// Create renderer (AFTER window, since OpenGL context must exist)
	v.renderer, err = renderer.New(renderer.Config{
		Width:  cfg.Graphics.Width,
		Height: cfg.Graphics.Height,
	})
	if err != nil {
		v.window.Close()
		return nil, fmt.Errorf("failed to create renderer: %w", err)
	}

	v.program, err = shader.NewProgram(shaders.ModelVertexShader, shaders.ModelFragmentShader)
	if err != nil {
		v.window.Close()
		return nil, fmt.Errorf("failed to build model shader: %w", err)
	}

	v.model = model.New(v.program)
	v.model.Load(cfg.Model.Path)
	if min, max, ok := v.model.Bounds(); ok {
		v.camera.FitToBounds(min, max)
	}

	v.input = input.New()

	logger.Info("viewer initialized", zap.Int("meshes", v.model.MeshCount()))
	return v, nil
}

// Run starts the main loop.
func (v *Viewer) Run() error {
	v.running = true

	lastTime := time.Now()
	frameCount := 0
	fpsTimer := time.Now()

	logger.Info("starting main loop")

	for v.running {
		now := time.Now()
		dt := now.Sub(lastTime).Seconds()
		lastTime = now

		// 1. Process input
		if v.input.Update() {
			v.running = false
			break
		}
		v.handleEvents()

		// 2. Update
		v.update(dt)

		// 3. Render
		v.render()

		// 4. Present (swap buffers)
		v.window.SwapBuffers()

		frameCount++
		if time.Since(fpsTimer) >= time.Second {
			logger.Debug("fps",
				zap.Int("count", frameCount),
				zap.Float64("dt_ms", dt*1000),
			)
			frameCount = 0
			fpsTimer = time.Now()
		}
	}

	return nil
}

// Close cleans up viewer resources.
func (v *Viewer) Close() {
	logger.Info("closing viewer")

	if v.program != nil {
		v.program.Delete()
	}
	if v.window != nil {
		v.window.Close()
	}
}

func (v *Viewer) handleEvents() {
	for _, event := range v.input.Events() {
		switch event.Type {
		case input.EventWindowResize:
			v.renderer.Resize(event.Width, event.Height)
		case input.EventKeyDown:
			if event.Key == sdl.SCANCODE_ESCAPE {
				v.running = false
			}
		case input.EventMouseDown:
			if event.Button == sdl.BUTTON_LEFT {
				v.dragging = true
				v.lastMX, v.lastMY = event.MouseX, event.MouseY
			}
		case input.EventMouseUp:
			if event.Button == sdl.BUTTON_LEFT {
				v.dragging = false
			}
		case input.EventMouseMove:
			if v.dragging {
				v.camera.HandleDrag(
					float32(event.MouseX-v.lastMX),
					float32(event.MouseY-v.lastMY),
				)
				v.lastMX, v.lastMY = event.MouseX, event.MouseY
			}
		case input.EventMouseWheel:
			v.camera.HandleZoom(float32(event.WheelY))
		}
	}
}

func (v *Viewer) update(dt float64) {
	v.spinAngle += v.config.Model.SpinDegPerSec * dt
	for v.spinAngle >= 360 {
		v.spinAngle -= 360
	}
}

func (v *Viewer) render() {
	v.renderer.Begin()
	v.program.Use()

	proj := mgl32.Perspective(mgl32.DegToRad(45), v.renderer.Aspect(), 0.01, 1000)
	view := v.camera.ViewMatrix()
	gl.UniformMatrix4fv(v.program.U("P"), 1, false, &proj[0])
	gl.UniformMatrix4fv(v.program.U("V"), 1, false, &view[0])

	m := mgl32.HomogRotate3DY(mgl32.DegToRad(float32(v.spinAngle)))
	v.model.Draw(m)
}
