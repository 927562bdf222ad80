// Copyright (c) 2019,CAOHONGJU All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package ptz

import (
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEncode(t *testing.T) {
	tests := []struct {
		name  string
		cmd   Command
		speed int
		want  string
	}{
		{"stop", Stop, 129, "A50F0100000000B5"},
		{"up", Up, 129, "A50F0108818100BF"},
		{"down", Down, 129, "A50F0104818100BB"},
		{"left", Left, 129, "A50F0102818100B9"},
		{"right", Right, 129, "A50F0101818100B8"},
		{"zoomIn", ZoomIn, 1, "A50F0110000010D5"},
		{"zoomOut", ZoomOut, 1, "A50F0120000010E5"},
		{"focusNear", FocusNear, 129, "A50F014281000078"},
		{"irisOpen", IrisOpen, 129, "A50F01440081007A"},
		{"setPreset", SetPreset, 1, "A50F018100010037"},
		{"gotoPreset", GotoPreset, 1, "A50F018200010038"},
		{"removePreset", RemovePreset, 1, "A50F018300010039"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Encode(tt.cmd, tt.speed)
			assert.NoError(t, err)
			assert.Len(t, got, 16)
			assert.Equal(t, tt.want, got)
			assertChecksum(t, got)
		})
	}
}

func assertChecksum(t *testing.T, cmd string) {
	frame, err := hex.DecodeString(cmd)
	assert.NoError(t, err)

	var sum int
	for _, b := range frame[:7] {
		sum += int(b)
	}
	assert.Equal(t, byte(sum%256), frame[7])
}

func TestEncodeSpeedClamp(t *testing.T) {
	low, err := Encode(Up, -1)
	assert.NoError(t, err)
	zero, err := Encode(Up, 0)
	assert.NoError(t, err)
	assert.Equal(t, zero, low)

	high, err := Encode(Up, 1000)
	assert.NoError(t, err)
	max, err := Encode(Up, 255)
	assert.NoError(t, err)
	assert.Equal(t, max, high)
}

func TestEncodeUnknownCommand(t *testing.T) {
	_, err := Encode(Command(99), 1)
	assert.Equal(t, ErrUnknownCommand, err)
}
