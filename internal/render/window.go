package render

import (
	"errors"
	"fmt"
	"image/png"
	"io"
)

// Window is the presentation collaborator. buf holds w*h packed
// 0xAARRGGBB pixels and is only valid for the duration of the call.
type Window interface {
	Size() (w, h int)
	Present(buf []uint32, w, h int) error
}

// HeadlessWindow accepts frames without displaying them.
type HeadlessWindow struct {
	Width, Height int

	frames int
	last   []uint32
}

// NewHeadlessWindow creates a w*h window that keeps a copy of the last frame.
func NewHeadlessWindow(w, h int) *HeadlessWindow {
	return &HeadlessWindow{Width: w, Height: h}
}

func (hw *HeadlessWindow) Size() (int, int) {
	return hw.Width, hw.Height
}

func (hw *HeadlessWindow) Present(buf []uint32, w, h int) error {
	if len(buf) != w*h {
		return fmt.Errorf("buffer has %d pixels, want %dx%d", len(buf), w, h)
	}
	if cap(hw.last) < len(buf) {
		hw.last = make([]uint32, len(buf))
	}
	hw.last = hw.last[:len(buf)]
	copy(hw.last, buf)
	hw.frames++
	return nil
}

// Frames returns the number of presented frames.
func (hw *HeadlessWindow) Frames() int {
	return hw.frames
}

// Last returns the most recently presented frame, or nil.
func (hw *HeadlessWindow) Last() []uint32 {
	return hw.last
}

// At returns the packed pixel at (x, y) of the last frame.
func (hw *HeadlessWindow) At(x, y int) uint32 {
	return hw.last[y*hw.Width+x]
}

// ImageWindow is a HeadlessWindow that can encode its last frame as PNG.
type ImageWindow struct {
	HeadlessWindow
}

func NewImageWindow(w, h int) *ImageWindow {
	return &ImageWindow{HeadlessWindow: HeadlessWindow{Width: w, Height: h}}
}

// WritePNG encodes the last presented frame.
func (iw *ImageWindow) WritePNG(w io.Writer) error {
	if iw.last == nil {
		return errors.New("no frame presented")
	}
	return png.Encode(w, Unpack(iw.last, iw.Width, iw.Height))
}
