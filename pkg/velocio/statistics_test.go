// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package velocio

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatistics_Update(t *testing.T) {
	s := NewStatistics()

	s.Update(Transaction{Tx: Frame{0x01, 0x02}, Rx: []byte("OK")})
	s.Update(Transaction{Tx: Frame{0x03}})
	s.Update(Transaction{Tx: Frame{0x04}, Rx: []byte("HELLO")})

	assert.Equal(t, uint64(3), s.FramesSent)
	assert.Equal(t, uint64(2), s.Answered)
	assert.Equal(t, uint64(1), s.Silent)
	assert.Equal(t, uint64(4), s.BytesSent)
	assert.Equal(t, uint64(7), s.BytesReceived)
	assert.Equal(t, 5, s.LongestReply)

	out := s.String()
	assert.Contains(t, out, "Frames Sent:            3")
	assert.Contains(t, out, "(66.7%)")
	assert.Contains(t, out, "Silent:")
	assert.NotContains(t, out, "Channel Errors")

	s.RecordError()
	assert.Equal(t, uint64(1), s.ChannelErrors)
	assert.Contains(t, s.String(), "Channel Errors:         1")

	s.Reset()
	assert.Zero(t, s.FramesSent)
	assert.Zero(t, s.ChannelErrors)
}
