// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package velocio

import (
	"io"
	"time"

	"github.com/rs/zerolog"
)

// Channel is the byte link to the device.
//
// Buffered must not block. ReadByte is only called after Buffered reported
// at least one byte. Discard drops everything received but not yet read.
type Channel interface {
	io.Writer
	Buffered() (int, error)
	ReadByte() (byte, error)
	Discard() error
}

// Engine sends frames one at a time and collects the response to each.
// It is not safe for concurrent use; a channel belongs to one run.
type Engine struct {
	settle time.Duration
	sleep  func(time.Duration)
	log    zerolog.Logger
}

// NewEngine creates an engine with the given settle delay.
// A negative delay selects DefaultSettle.
func NewEngine(settle time.Duration) *Engine {
	if settle < 0 {
		settle = DefaultSettle
	}
	return &Engine{
		settle: settle,
		sleep:  time.Sleep,
		log:    zerolog.Nop(),
	}
}

// WithLogger sets the logger used for per-frame debug events.
func (e *Engine) WithLogger(l zerolog.Logger) *Engine {
	e.log = l
	return e
}

// WithSleep replaces time.Sleep, mainly for tests.
func (e *Engine) WithSleep(fn func(time.Duration)) *Engine {
	e.sleep = fn
	return e
}

// Settle returns the configured settle delay.
func (e *Engine) Settle() time.Duration {
	return e.settle
}

// Run sends every frame in order and calls emit with each completed
// transaction before moving to the next frame.
//
// A channel failure stops the run and is returned as *ChannelError. Frames
// sent before the failure are not undone. An error from emit also stops the
// run and is returned unchanged.
func (e *Engine) Run(ch Channel, frames FrameSet, emit func(Transaction) error) error {
	for i, frame := range frames {
		tx, err := e.exchange(ch, i, frame)
		if err != nil {
			return err
		}
		if emit == nil {
			continue
		}
		if err := emit(tx); err != nil {
			return err
		}
	}
	return nil
}

// RunAll is Run collecting every transaction. On error the transactions
// completed so far are returned with it.
func (e *Engine) RunAll(ch Channel, frames FrameSet) ([]Transaction, error) {
	out := make([]Transaction, 0, len(frames))
	err := e.Run(ch, frames, func(t Transaction) error {
		out = append(out, t)
		return nil
	})
	return out, err
}

// exchange performs the drain, write, settle, receive, settle sequence for
// one frame.
func (e *Engine) exchange(ch Channel, index int, frame Frame) (Transaction, error) {
	// Stale bytes from an earlier exchange would be attributed to this frame
	pending, err := ch.Buffered()
	if err != nil {
		return Transaction{}, &ChannelError{Op: "poll", Frame: index, Err: err}
	}
	if pending > 0 {
		e.log.Debug().Int("frame", index).Int("stale", pending).Msg("discarding stale input")
		if err := ch.Discard(); err != nil {
			return Transaction{}, &ChannelError{Op: "discard", Frame: index, Err: err}
		}
	}

	n, err := ch.Write(frame)
	if err != nil {
		return Transaction{}, &ChannelError{Op: "write", Frame: index, Err: err}
	}
	if n != len(frame) {
		return Transaction{}, &ChannelError{Op: "write", Frame: index, Err: io.ErrShortWrite}
	}
	sentAt := time.Now()
	e.log.Debug().Int("frame", index).Str("tx", frame.Hex()).Msg("frame sent")

	e.sleep(e.settle)

	rx, err := e.receive(ch, index)
	if err != nil {
		return Transaction{}, err
	}
	e.log.Debug().Int("frame", index).Int("rx_len", len(rx)).Msg("response drained")

	e.sleep(e.settle)

	return Transaction{
		Index:     index,
		Tx:        frame,
		Rx:        rx,
		Timestamp: sentAt,
	}, nil
}

// receive reads bytes for as long as the channel reports them buffered.
func (e *Engine) receive(ch Channel, index int) ([]byte, error) {
	var rx []byte
	for {
		n, err := ch.Buffered()
		if err != nil {
			return nil, &ChannelError{Op: "poll", Frame: index, Err: err}
		}
		if n == 0 {
			return rx, nil
		}
		for i := 0; i < n; i++ {
			b, err := ch.ReadByte()
			if err != nil {
				return nil, &ChannelError{Op: "read", Frame: index, Err: err}
			}
			rx = append(rx, b)
		}
	}
}
