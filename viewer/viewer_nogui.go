//go:build !gui

package viewer

import (
	"image"
	"log"
)

// FramebufferViewer is a no-op implementation for builds without the 'gui'
// tag, letting cmd/renderbridge-monitor run headless (e.g. over SSH, or in
// CI) without pulling in Fyne.
type FramebufferViewer struct {
	initialized bool
	running     bool
}

func NewFramebufferViewer(title string, width, height int) (*FramebufferViewer, error) {
	log.Printf("viewer: GUI disabled (built without 'gui' tag), title=%q size=%dx%d", title, width, height)
	return &FramebufferViewer{initialized: true}, nil
}

func (v *FramebufferViewer) Start() {
	if !v.initialized {
		log.Println("viewer: warning, FramebufferViewer not initialized")
		return
	}
	v.running = true
}

func (v *FramebufferViewer) UpdateFramebuffer(img image.Image) {
	// No-op: nothing to display without a GUI build.
}

func (v *FramebufferViewer) IsRunning() bool {
	return v.running
}

func (v *FramebufferViewer) Initialize(title string, width, height int) {
	log.Printf("viewer: initialize (no-op), title=%q size=%dx%d", title, width, height)
}

func (v *FramebufferViewer) Show() {
	v.running = true
}

func (v *FramebufferViewer) ShowAndRun() {
	v.running = true
}

func (v *FramebufferViewer) Close() {
	v.running = false
}

// RunWithFrameSource runs source directly, with no window — the headless
// counterpart to the gui build's RunWithFrameSource, for builds without the
// 'gui' tag.
func RunWithFrameSource(title string, width, height int, source func(*FramebufferViewer)) {
	log.Printf("viewer: GUI disabled (built without 'gui' tag), running frame source headless. title=%q size=%dx%d", title, width, height)
	v := &FramebufferViewer{initialized: true, running: true}
	source(v)
}
