package pipeline

import (
	"gocv.io/x/gocv"
)

// Display presents annotated frames and reports key presses.
type Display interface {
	// Show presents img.
	Show(img gocv.Mat)
	// WaitKey waits up to delay milliseconds for a key and returns its code, or -1.
	WaitKey(delay int) int
	// Close destroys the display surface.
	Close() error
}

// Window is a Display backed by an OpenCV window.
type Window struct {
	window *gocv.Window
}

// NewWindow opens a named display window.
func NewWindow(title string) *Window {
	return &Window{window: gocv.NewWindow(title)}
}

func (w *Window) Show(img gocv.Mat) {
	w.window.IMShow(img)
}

func (w *Window) WaitKey(delay int) int {
	return w.window.WaitKey(delay)
}

func (w *Window) Close() error {
	return w.window.Close()
}

type headless struct{}

// Headless returns a Display that shows nothing and never reports a key.
func Headless() Display {
	return headless{}
}

func (headless) Show(gocv.Mat)   {}
func (headless) WaitKey(int) int { return -1 }
func (headless) Close() error    { return nil }
