// Copyright (c) 2019,CAOHONGJU All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package gbsdp

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOfferMarshalPlay(t *testing.T) {
	offer := &Offer{
		Kind:     Play,
		Username: "34020000002000000001",
		DeviceID: "34020000001320000001",
		LocalIP:  "192.168.1.10",
		Port:     10000,
	}
	body := offer.Marshal()

	assert.True(t, strings.HasPrefix(body, "v=0\r\n"))
	assert.Contains(t, body, "o=34020000002000000001 0 0 IN IP4 192.168.1.10\r\n")
	assert.Contains(t, body, "s=Play\r\n")
	assert.NotContains(t, body, "u=")
	assert.Contains(t, body, "t=0 0\r\n")
	assert.Contains(t, body, "m=video 10000 RTP/AVP 96 98\r\n")
	assert.Contains(t, body, "a=recvonly\r\n")
	assert.Contains(t, body, "a=fmtp:96 PS\r\n")
	assert.Contains(t, body, "a=fmtp:98 H264\r\n")
	assert.NotContains(t, body, "a=setup:")
	assert.NotContains(t, body, "downloadspeed")
}

func TestOfferMarshalPlaybackTCP(t *testing.T) {
	offer := &Offer{
		Kind:     Playback,
		Username: "34020000002000000001",
		DeviceID: "34020000001320000001",
		LocalIP:  "192.168.1.10",
		Port:     10002,
		Start:    1588291200,
		Stop:     1588377600,
		TCP:      true,
		Setup:    SetupPassive,
	}
	body := offer.Marshal()

	assert.Contains(t, body, "s=Playback\r\n")
	assert.Contains(t, body, "u=34020000001320000001:1\r\n")
	assert.Contains(t, body, "t=1588291200 1588377600\r\n")
	assert.Contains(t, body, "m=video 10002 TCP/RTP/AVP 96 98\r\n")
	assert.Contains(t, body, "a=setup:passive\r\n")
	assert.Contains(t, body, "a=connection:new\r\n")
}

func TestOfferMarshalDownload(t *testing.T) {
	offer := &Offer{
		Kind:          Download,
		Username:      "34020000002000000001",
		DeviceID:      "34020000001320000001",
		LocalIP:       "192.168.1.10",
		Port:          10004,
		Start:         1588291200,
		Stop:          1588377600,
		DownloadSpeed: 4,
	}
	body := offer.Marshal()

	assert.Contains(t, body, "s=Download\r\n")
	assert.Contains(t, body, "a=downloadspeed:4\r\n")
}

func TestParseAnswer(t *testing.T) {
	answer := "v=0\r\n" +
		"o=34020000001320000001 0 0 IN IP4 192.168.1.64\r\n" +
		"s=Play\r\n" +
		"c=IN IP4 192.168.1.64\r\n" +
		"t=0 0\r\n" +
		"m=video 15060 RTP/AVP 96\r\n" +
		"a=sendonly\r\n" +
		"a=rtpmap:96 PS/90000\r\n"

	endpoint, err := ParseAnswer(answer)
	assert.NoError(t, err)
	assert.Equal(t, "192.168.1.64", endpoint.IP)
	assert.Equal(t, 15060, endpoint.Port)
}

func TestParseAnswerNoVideo(t *testing.T) {
	answer := "v=0\r\n" +
		"o=34020000001320000001 0 0 IN IP4 192.168.1.64\r\n" +
		"s=Play\r\n" +
		"c=IN IP4 192.168.1.64\r\n" +
		"t=0 0\r\n" +
		"m=audio 15060 RTP/AVP 8\r\n"

	_, err := ParseAnswer(answer)
	assert.Equal(t, ErrNoVideoMedia, err)
}
