// Copyright (c) 2019,CAOHONGJU All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package gbsdp 实现 GB/T 28181 媒体协商的 SDP 编解码。
// 国标在标准 SDP 之外附加了 s= 会话用途、u= 资源 URI、
// t= 绝对起止时间及 a=downloadspeed 等约定，Offer 按约定手工拼装；
// 设备应答仍是标准 SDP，解析复用 go-sdp。
package gbsdp

import (
	"errors"
	"strconv"
	"strings"

	"github.com/pixelbender/go-sdp/sdp"
)

// Kind 会话用途
type Kind int

// 会话用途枚举
const (
	Play     Kind = iota // 实时点播
	Playback             // 历史回放
	Download             // 文件下载
)

var kindNames = []string{"Play", "Playback", "Download"}

func (k Kind) String() string {
	if k < Play || k > Download {
		return "Play"
	}
	return kindNames[k]
}

// TCP 连接建立角色
const (
	SetupActive  = "active"
	SetupPassive = "passive"
)

// 媒体格式：PS 封装与裸 H264
const (
	payloadPS   = 96
	payloadH264 = 98
)

// Offer 媒体协商请求参数
type Offer struct {
	Kind          Kind   // 会话用途
	Username      string // o= 行的用户名，取本级国标编码
	DeviceID      string // 目标通道国标编码
	LocalIP       string // 接收媒体的本机地址
	Port          int    // 接收媒体的 RTP 端口
	Start         int64  // 回放/下载的起始时间(UTC 秒)
	Stop          int64  // 回放/下载的结束时间(UTC 秒)
	TCP           bool   // 流传输是否走 TCP
	Setup         string // TCP 连接角色，active/passive
	DownloadSpeed int    // 下载倍速，仅 Download 有效
}

// Marshal 编码媒体协商请求
func (o *Offer) Marshal() string {
	var buf strings.Builder

	buf.WriteString("v=0\r\n")
	buf.WriteString("o=" + o.Username + " 0 0 IN IP4 " + o.LocalIP + "\r\n")
	buf.WriteString("s=" + o.Kind.String() + "\r\n")
	if o.Kind != Play {
		buf.WriteString("u=" + o.DeviceID + ":1\r\n")
	}
	buf.WriteString("c=IN IP4 " + o.LocalIP + "\r\n")
	if o.Kind == Play {
		buf.WriteString("t=0 0\r\n")
	} else {
		buf.WriteString("t=" + strconv.FormatInt(o.Start, 10) +
			" " + strconv.FormatInt(o.Stop, 10) + "\r\n")
	}

	proto := "RTP/AVP"
	if o.TCP {
		proto = "TCP/RTP/AVP"
	}
	buf.WriteString("m=video " + strconv.Itoa(o.Port) + " " + proto +
		" " + strconv.Itoa(payloadPS) + " " + strconv.Itoa(payloadH264) + "\r\n")

	buf.WriteString("a=recvonly\r\n")
	if o.TCP {
		setup := o.Setup
		if setup == "" {
			setup = SetupPassive
		}
		buf.WriteString("a=setup:" + setup + "\r\n")
		buf.WriteString("a=connection:new\r\n")
	}
	if o.Kind == Download && o.DownloadSpeed > 0 {
		buf.WriteString("a=downloadspeed:" + strconv.Itoa(o.DownloadSpeed) + "\r\n")
	}
	buf.WriteString("a=fmtp:" + strconv.Itoa(payloadPS) + " PS\r\n")
	buf.WriteString("a=fmtp:" + strconv.Itoa(payloadH264) + " H264\r\n")

	return buf.String()
}

// 解析错误
var (
	ErrNoVideoMedia = errors.New("gbsdp: answer has no video media")
	ErrNoConnection = errors.New("gbsdp: answer has no connection address")
)

// MediaEndpoint 应答中协商出的媒体收发地址
type MediaEndpoint struct {
	IP   string
	Port int
}

// ParseAnswer 解析设备应答，提取设备侧媒体地址。
func ParseAnswer(answer string) (*MediaEndpoint, error) {
	sess, err := sdp.ParseString(answer)
	if err != nil {
		return nil, err
	}

	for _, media := range sess.Media {
		if media.Type != "video" {
			continue
		}

		endpoint := &MediaEndpoint{Port: media.Port}
		if len(media.Connection) > 0 {
			endpoint.IP = media.Connection[0].Address
		} else if sess.Connection != nil {
			endpoint.IP = sess.Connection.Address
		}
		if endpoint.IP == "" {
			return nil, ErrNoConnection
		}
		return endpoint, nil
	}
	return nil, ErrNoVideoMedia
}
