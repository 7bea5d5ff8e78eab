// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package velocio

import (
	"fmt"
	"time"
)

// Statistics tracks transaction counts for one run
type Statistics struct {
	StartTime      time.Time
	LastUpdateTime time.Time

	// Counters
	FramesSent    uint64
	Answered      uint64
	Silent        uint64
	BytesSent     uint64
	BytesReceived uint64
	LongestReply  int
	ChannelErrors uint64
}

// NewStatistics creates a new statistics tracker
func NewStatistics() *Statistics {
	now := time.Now()
	return &Statistics{
		StartTime:      now,
		LastUpdateTime: now,
	}
}

// Update records one completed transaction
func (s *Statistics) Update(t Transaction) {
	s.FramesSent++
	s.BytesSent += uint64(len(t.Tx))
	s.BytesReceived += uint64(len(t.Rx))

	if t.Silent() {
		s.Silent++
	} else {
		s.Answered++
	}
	if len(t.Rx) > s.LongestReply {
		s.LongestReply = len(t.Rx)
	}

	s.LastUpdateTime = time.Now()
}

// RecordError counts a run that stopped on a channel error
func (s *Statistics) RecordError() {
	s.ChannelErrors++
	s.LastUpdateTime = time.Now()
}

// Elapsed returns the time between the tracker's start and its last update
func (s *Statistics) Elapsed() time.Duration {
	return s.LastUpdateTime.Sub(s.StartTime)
}

// String returns a formatted statistics summary
func (s *Statistics) String() string {
	var answeredPercent float64
	if s.FramesSent > 0 {
		answeredPercent = float64(s.Answered) * 100.0 / float64(s.FramesSent)
	}

	result := fmt.Sprintf("=== Statistics (%v) ===\n", s.Elapsed().Round(time.Millisecond))
	result += fmt.Sprintf("Frames Sent:     %8d\n", s.FramesSent)
	result += fmt.Sprintf("Answered:        %8d (%.1f%%)\n", s.Answered, answeredPercent)
	if s.Silent > 0 {
		result += fmt.Sprintf("Silent:          %8d\n", s.Silent)
	}
	result += fmt.Sprintf("Bytes Sent:      %8d\n", s.BytesSent)
	result += fmt.Sprintf("Bytes Received:  %8d\n", s.BytesReceived)
	if s.LongestReply > 0 {
		result += fmt.Sprintf("Longest Reply:   %8d bytes\n", s.LongestReply)
	}
	if s.ChannelErrors > 0 {
		result += fmt.Sprintf("Channel Errors:  %8d\n", s.ChannelErrors)
	}
	result += "================================\n"

	return result
}

// Reset resets all statistics counters
func (s *Statistics) Reset() {
	*s = *NewStatistics()
}
