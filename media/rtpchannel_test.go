// Copyright (c) 2019,CAOHONGJU All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package media

import (
	"testing"

	"github.com/pion/rtp"
	"github.com/stretchr/testify/assert"
)

func newTestPacket(seq uint16, ts uint32, marker bool, payload ...byte) *rtp.Packet {
	return &rtp.Packet{
		Header: rtp.Header{
			SequenceNumber: seq,
			Timestamp:      ts,
			Marker:         marker,
		},
		Payload: payload,
	}
}

func TestPacketSorterReorder(t *testing.T) {
	s := packetSorter{max: 4}

	var out []uint16
	for _, seq := range []uint16{3, 1, 2, 5, 4, 6, 7, 8} {
		for _, p := range s.push(newTestPacket(seq, 0, false)) {
			out = append(out, p.SequenceNumber)
		}
	}

	assert.Equal(t, []uint16{1, 2, 3, 4}, out)
}

func TestPacketSorterDuplicate(t *testing.T) {
	s := packetSorter{max: 2}

	s.push(newTestPacket(1, 0, false))
	s.push(newTestPacket(1, 0, false))
	ready := s.push(newTestPacket(2, 0, false))
	assert.Empty(t, ready)

	ready = s.push(newTestPacket(3, 0, false))
	assert.Len(t, ready, 1)
	assert.Equal(t, uint16(1), ready[0].SequenceNumber)
}

func TestPacketSorterWraparound(t *testing.T) {
	s := packetSorter{max: 2}

	var out []uint16
	for _, seq := range []uint16{65535, 0, 1, 2} {
		for _, p := range s.push(newTestPacket(seq, 0, false)) {
			out = append(out, p.SequenceNumber)
		}
	}

	assert.Equal(t, []uint16{65535, 0}, out)
}

func TestPacketSorterPassthrough(t *testing.T) {
	s := packetSorter{} // 不容忍乱序时直接透传

	ready := s.push(newTestPacket(9, 0, false))
	assert.Len(t, ready, 1)
}

func TestFrameAssemblerMarker(t *testing.T) {
	var frames []*Frame
	a := frameAssembler{emit: func(f *Frame) { frames = append(frames, f) }}

	a.push(newTestPacket(1, 100, false, 0x01))
	a.push(newTestPacket(2, 100, false, 0x02))
	a.push(newTestPacket(3, 100, true, 0x03))

	assert.Len(t, frames, 1)
	assert.Equal(t, uint32(100), frames[0].Timestamp)
	assert.Equal(t, []byte{0x01, 0x02, 0x03}, frames[0].Payload)
	assert.Len(t, frames[0].Packets, 3)
}

func TestFrameAssemblerTimestampChange(t *testing.T) {
	var frames []*Frame
	a := frameAssembler{emit: func(f *Frame) { frames = append(frames, f) }}

	// 设备不置标记位时，时间戳变化触发交付
	a.push(newTestPacket(1, 100, false, 0x01))
	a.push(newTestPacket(2, 200, false, 0x02))

	assert.Len(t, frames, 1)
	assert.Equal(t, uint32(100), frames[0].Timestamp)
	assert.Equal(t, 1, frames[0].Size())
}
