// Package pipeline - The capture, analyze and render loop.
package pipeline

import (
	"time"
)

// State is the loop state carried from one iteration to the next.
type State struct {
	// Label is the emotion text drawn on every frame. It only changes on analysed iterations.
	Label string
	// FrameCount is the number of frames processed so far. It is never reset.
	FrameCount int
	// Start is the wall-clock time the loop was entered.
	Start time.Time
	// FPS is FrameCount divided by the seconds elapsed since Start.
	FPS float64
}

// NewState returns the state at loop entry: no frames, an empty label and the given start time.
//
// The label is replaced on the first iteration, which is always an analysed one.
func NewState(start time.Time) *State {
	return &State{
		Label:      "",
		FrameCount: 0,
		Start:      start,
	}
}

// Due reports whether the current frame is due for classification.
func (s *State) Due(every int) bool {
	return s.FrameCount%every == 0
}

// Tick counts the current frame and recomputes the frame rate at now.
//
// When no time has elapsed since Start the frame rate is reported as 0.
//
// Returns:
//   - float64: The updated frame rate.
func (s *State) Tick(now time.Time) float64 {
	s.FrameCount++
	elapsed := now.Sub(s.Start).Seconds()
	if elapsed > 0 {
		s.FPS = float64(s.FrameCount) / elapsed
	} else {
		s.FPS = 0
	}
	return s.FPS
}
