// Package video wraps OpenCV video capture as a sequential frame
// source for analysis jobs.
package video

import (
	"fmt"

	"gocv.io/x/gocv"
)

// Source reads frames from a clip on local storage. It is owned by one
// job and read sequentially; it is not safe for concurrent use.
type Source struct {
	capture *gocv.VideoCapture
	path    string
}

// Open opens a clip for reading.
func Open(path string) (*Source, error) {
	capture, err := gocv.VideoCaptureFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w %q: %w", ErrOpenVideo, path, err)
	}
	if !capture.IsOpened() {
		_ = capture.Close()
		return nil, fmt.Errorf("%w %q", ErrOpenVideo, path)
	}
	return &Source{capture: capture, path: path}, nil
}

// Read fills mat with the next frame. It returns false at end of clip.
func (s *Source) Read(mat *gocv.Mat) bool {
	return s.capture.Read(mat)
}

// FPS returns the container frame rate, zero when unreported.
func (s *Source) FPS() float64 {
	return s.capture.Get(gocv.VideoCaptureFPS)
}

// FrameCount returns the container frame count, zero when unreported.
func (s *Source) FrameCount() int {
	return int(s.capture.Get(gocv.VideoCaptureFrameCount))
}

// Width returns the frame width in pixels.
func (s *Source) Width() int {
	return int(s.capture.Get(gocv.VideoCaptureFrameWidth))
}

// Height returns the frame height in pixels.
func (s *Source) Height() int {
	return int(s.capture.Get(gocv.VideoCaptureFrameHeight))
}

// Path returns the clip path.
func (s *Source) Path() string {
	return s.path
}

// Close releases the capture.
func (s *Source) Close() error {
	return s.capture.Close()
}
