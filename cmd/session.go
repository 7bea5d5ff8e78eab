// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/Thermoquad/velocio/pkg/velocio"
)

// ErrSessionClosed is returned by run after the session was closed
var ErrSessionClosed = errors.New("session closed")

// session ties one channel to the engine, the renderer and the optional
// capture file. It does not own the channel. Runs are serialized; Close
// waits for the run in progress.
type session struct {
	mu     sync.Mutex
	ch     velocio.Channel
	closed bool

	engine      *velocio.Engine
	renderer    *velocio.Renderer
	stats       *velocio.Statistics
	capture     *velocio.CaptureWriter
	captureFile *os.File
}

// newSession prepares a session without a channel. The capture file is
// opened here so a bad path fails before the device is touched.
func newSession(mode velocio.DisplayMode, capture string) (*session, error) {
	s := &session{
		engine:   velocio.NewEngine(cfg.Settle).WithLogger(logger),
		renderer: velocio.NewRenderer(mode, nil),
		stats:    velocio.NewStatistics(),
	}

	if capture != "" {
		f, err := os.OpenFile(capture, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, fmt.Errorf("failed to open capture file: %w", err)
		}
		w, err := velocio.NewCaptureWriter(f)
		if err != nil {
			f.Close()
			return nil, err
		}
		s.capture = w
		s.captureFile = f
		logger.Debug().Str("file", capture).Msg("capturing transactions")
	}
	return s, nil
}

// attach sets the channel used by later runs
func (s *session) attach(ch velocio.Channel) {
	s.mu.Lock()
	s.ch = ch
	s.mu.Unlock()
}

// run sends frames and hands each transaction, already rendered, to emit
func (s *session) run(frames velocio.FrameSet, emit func(velocio.Transaction, string) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || s.ch == nil {
		return ErrSessionClosed
	}

	err := s.engine.Run(s.ch, frames, func(t velocio.Transaction) error {
		s.stats.Update(t)
		if s.capture != nil {
			if err := s.capture.Write(t); err != nil {
				return err
			}
		}
		return emit(t, s.renderer.RenderTransaction(t))
	})
	if errors.Is(err, velocio.ErrChannel) {
		s.stats.RecordError()
		logger.Error().Err(err).Msg("transaction aborted")
	}
	return err
}

// Close waits for a run in progress, stops further runs and closes the
// capture file. The statistics are stable once Close returns.
func (s *session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	if s.captureFile == nil {
		return nil
	}
	err := s.captureFile.Close()
	s.captureFile = nil
	return err
}
