// Copyright (c) 2019,CAOHONGJU All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package mansrtsp

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBodyString(t *testing.T) {
	tests := []struct {
		name string
		body *Body
		want string
	}{
		{
			"play",
			Play(2, "2.0"),
			"PLAY MANSRTSP/1.0\r\nCSeq: 2\r\nScale: 2.0\r\n",
		},
		{
			"resume",
			Resume(3),
			"PLAY MANSRTSP/1.0\r\nCSeq: 3\r\nRange: npt=now-\r\n",
		},
		{
			"seek",
			Seek(4, 75),
			"PLAY MANSRTSP/1.0\r\nCSeq: 4\r\nRange: npt=75-\r\n",
		},
		{
			"pause",
			Pause(5),
			"PAUSE MANSRTSP/1.0\r\nCSeq: 5\r\nPauseTime: now\r\n",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.body.String())
		})
	}
}

func TestParse(t *testing.T) {
	body, err := Parse("PLAY MANSRTSP/1.0\r\nCSeq: 7\r\nScale: 0.5\r\n")
	assert.NoError(t, err)
	assert.Equal(t, MethodPlay, body.Method)
	assert.Equal(t, 7, body.CSeq)
	assert.Equal(t, "0.5", body.Scale)

	body, err = Parse("PAUSE MANSRTSP/1.0\r\nCSeq: 8\r\nPauseTime: now\r\n")
	assert.NoError(t, err)
	assert.Equal(t, MethodPause, body.Method)
	assert.Equal(t, "now", body.PauseTime)

	_, err = Parse("PLAY RTSP/1.0\r\nCSeq: 1\r\n")
	assert.Equal(t, ErrBadBody, err)
}
