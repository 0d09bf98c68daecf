//go:build gui

package viewer

import (
	"image"
	"log"
	"sync"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"golang.org/x/image/draw"
)

// FramebufferViewer is a live window showing the most recently decoded
// color-channel frame from a render bridge session, for local debugging of
// cmd/renderbridge-monitor.
type FramebufferViewer struct {
	app         fyne.App
	window      fyne.Window
	image       *canvas.Image
	mutex       sync.RWMutex
	updateChan  chan image.Image
	closeChan   chan bool
	initialized bool
	running     bool
}

func NewFramebufferViewer(title string, width, height int) (*FramebufferViewer, error) {
	viewer := &FramebufferViewer{
		updateChan: make(chan image.Image, 10),
		closeChan:  make(chan bool, 1),
	}

	viewer.app = app.New()
	viewer.window = viewer.app.NewWindow(title)
	viewer.window.Resize(fyne.NewSize(float32(width), float32(height)))

	blankImg := image.NewRGBA(image.Rect(0, 0, width, height))
	viewer.image = canvas.NewImageFromImage(blankImg)
	viewer.image.FillMode = canvas.ImageFillOriginal

	content := container.NewVBox(viewer.image)
	viewer.window.SetContent(content)

	viewer.initialized = true
	return viewer, nil
}

func (v *FramebufferViewer) Start() {
	if !v.initialized {
		log.Println("Warning: FramebufferViewer not initialized")
		return
	}

	v.mutex.Lock()
	if v.running {
		v.mutex.Unlock()
		return
	}
	v.running = true
	v.mutex.Unlock()

	go v.updateLoop()

	go func() {
		v.window.ShowAndRun()
		v.closeChan <- true
	}()
}

// UpdateFramebuffer queues img for display, first scaling it to the bounds
// of the image currently shown if those differ (a rendered frame's
// dimensions are whatever the client last set and can change between
// RENDER_FRAME calls). The scaling target is the displayed image, not the
// window: resizing the window does not change it, and while no image is
// shown yet (as after RunWithFrameSource) the frame is queued at its own
// size.
func (v *FramebufferViewer) UpdateFramebuffer(img image.Image) {
	if !v.initialized || !v.running {
		return
	}

	v.mutex.RLock()
	target := v.image.Image
	v.mutex.RUnlock()
	if target != nil && img.Bounds() != target.Bounds() && !target.Bounds().Empty() {
		img = scaleTo(img, target.Bounds())
	}

	select {
	case v.updateChan <- img:
	default:
		// Channel full, skip this frame rather than block the decoder.
	}
}

// scaleTo resizes src to fit bounds using golang.org/x/image/draw's
// high-quality scaler, since the window's canvas.Image does its own
// pixel-exact blit and won't stretch a mismatched frame on its own.
func scaleTo(src image.Image, bounds image.Rectangle) image.Image {
	dst := image.NewRGBA(bounds)
	draw.CatmullRom.Scale(dst, bounds, src, src.Bounds(), draw.Over, nil)
	return dst
}

func (v *FramebufferViewer) updateLoop() {
	ticker := time.NewTicker(16 * time.Millisecond) // ~60 FPS
	defer ticker.Stop()

	for {
		select {
		case img := <-v.updateChan:
			v.mutex.Lock()
			v.image.Image = img
			v.mutex.Unlock()
			canvas.Refresh(v.image)

		case <-ticker.C:
			// Periodic refresh even if no new frames.

		case <-v.closeChan:
			v.mutex.Lock()
			v.running = false
			v.mutex.Unlock()
			return
		}
	}
}

func (v *FramebufferViewer) IsRunning() bool {
	v.mutex.RLock()
	defer v.mutex.RUnlock()
	return v.running
}

func (v *FramebufferViewer) Initialize(title string, width, height int) {
	if v.window != nil {
		v.window.SetTitle(title)
		v.window.Resize(fyne.NewSize(float32(width), float32(height)))
	}
}

func (v *FramebufferViewer) Show() {
	if !v.initialized {
		return
	}
	v.running = true
	if v.window != nil {
		v.window.Show()
	}
}

func (v *FramebufferViewer) ShowAndRun() {
	if !v.initialized {
		return
	}
	v.running = true
	if v.window != nil {
		v.window.ShowAndRun()
	}
}

func (v *FramebufferViewer) Close() {
	if !v.initialized {
		return
	}

	v.mutex.Lock()
	if !v.running {
		v.mutex.Unlock()
		return
	}
	v.mutex.Unlock()

	select {
	case v.closeChan <- true:
	default:
	}

	if v.window != nil {
		v.window.Close()
	}
}

// RunWithFrameSource creates the Fyne window on the calling (main) thread
// and runs source in a background goroutine, feeding it the viewer to push
// decoded frames into — the GUI build's entry point for
// cmd/renderbridge-monitor.
func RunWithFrameSource(title string, width, height int, source func(*FramebufferViewer)) {
	a := app.New()
	w := a.NewWindow(title)
	w.Resize(fyne.NewSize(float32(width), float32(height)))

	img := canvas.NewImageFromResource(nil)
	img.FillMode = canvas.ImageFillOriginal
	img.ScaleMode = canvas.ImageScalePixels

	content := container.NewBorder(nil, nil, nil, nil, img)
	w.SetContent(content)

	viewer := &FramebufferViewer{
		app:         a,
		window:      w,
		image:       img,
		updateChan:  make(chan image.Image, 10),
		closeChan:   make(chan bool, 1),
		initialized: true,
		running:     true,
	}

	go func() {
		defer func() {
			if r := recover(); r != nil {
				log.Printf("frame source panic: %v", r)
			}
		}()
		source(viewer)
	}()

	go viewer.updateLoop()

	w.ShowAndRun()
}
