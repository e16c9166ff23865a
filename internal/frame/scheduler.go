// Package frame sequences one rendered frame: wait for the slot, acquire an
// image, record, submit, present, and react to the swapchain going stale.
package frame

import (
	"github.com/cockroachdb/errors"
)

// DefaultFramesInFlight is how many frames the CPU may record ahead of the
// GPU.
const DefaultFramesInFlight = 2

// Status is the non-error outcome of acquiring or presenting an image.
type Status int

const (
	StatusOK Status = iota
	// StatusSuboptimal means the image was usable but the chain no longer
	// matches the surface exactly.
	StatusSuboptimal
	// StatusOutOfDate means the chain can no longer be used at all.
	StatusOutOfDate
)

func (s Status) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusSuboptimal:
		return "suboptimal"
	case StatusOutOfDate:
		return "out of date"
	}
	return "unknown"
}

//go:generate mockgen -source=scheduler.go -destination=mock_frame.go -package=frame

// Target performs the GPU work for each step of a frame. Every method takes
// the frame slot it operates on.
type Target interface {
	// WaitSlot blocks until the GPU has finished the slot's previous frame.
	WaitSlot(slot int) error
	Acquire(slot int) (image int, status Status, err error)
	UpdateUniforms(slot int) error
	// ResetSlot re-arms the slot's fence and clears its command buffer.
	ResetSlot(slot int) error
	Record(slot, image int) error
	Submit(slot int) error
	Present(slot, image int) (Status, error)
}

// Swapchain is the part of the swapchain manager the scheduler drives.
type Swapchain interface {
	Stale() bool
	MarkStale()
	Recreate() error
}

type Stats struct {
	Rendered uint64
	Dropped  uint64
}

type Scheduler struct {
	target  Target
	chain   Swapchain
	frames  int
	current int
	stats   Stats
}

func NewScheduler(target Target, chain Swapchain, frames int) *Scheduler {
	if frames < 1 {
		frames = DefaultFramesInFlight
	}
	return &Scheduler{target: target, chain: chain, frames: frames}
}

// Current is the slot the next frame will use.
func (s *Scheduler) Current() int { return s.current }

func (s *Scheduler) Stats() Stats { return s.stats }

// Render draws one frame. A stale swapchain is rebuilt first. An
// out-of-date acquire rebuilds and drops the frame without advancing the
// slot. A suboptimal present marks the chain stale so the rebuild happens at
// the start of the next frame.
func (s *Scheduler) Render() error {
	if s.chain.Stale() {
		if err := s.chain.Recreate(); err != nil {
			return errors.Wrap(err, "frame: rebuild stale swapchain")
		}
		if s.chain.Stale() {
			// nothing to draw into yet
			s.stats.Dropped++
			return nil
		}
	}

	slot := s.current

	if err := s.target.WaitSlot(slot); err != nil {
		return errors.Wrapf(err, "frame: wait slot %d", slot)
	}

	image, status, err := s.target.Acquire(slot)
	if err != nil {
		return errors.Wrapf(err, "frame: acquire on slot %d", slot)
	}
	switch status {
	case StatusOutOfDate:
		s.stats.Dropped++
		return errors.Wrap(s.chain.Recreate(), "frame: rebuild after acquire")
	case StatusSuboptimal:
		s.chain.MarkStale()
	}

	if err = s.target.UpdateUniforms(slot); err != nil {
		return errors.Wrapf(err, "frame: uniforms for slot %d", slot)
	}
	if err = s.target.ResetSlot(slot); err != nil {
		return errors.Wrapf(err, "frame: reset slot %d", slot)
	}
	if err = s.target.Record(slot, image); err != nil {
		return errors.Wrapf(err, "frame: record slot %d image %d", slot, image)
	}
	if err = s.target.Submit(slot); err != nil {
		return errors.Wrapf(err, "frame: submit slot %d", slot)
	}

	status, err = s.target.Present(slot, image)
	if err != nil {
		return errors.Wrapf(err, "frame: present image %d", image)
	}

	s.current = (s.current + 1) % s.frames
	s.stats.Rendered++

	switch status {
	case StatusSuboptimal:
		s.chain.MarkStale()
	case StatusOutOfDate:
		return errors.Wrap(s.chain.Recreate(), "frame: rebuild after present")
	}
	return nil
}
