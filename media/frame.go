// Copyright (c) 2019,CAOHONGJU All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package media 定义媒体通道与帧转发适配器。
// 信令会话协商出的媒体地址交由通道实现收流、按时间戳重组为帧，
// 适配器把帧从通道解耦地转发给消费者。
package media

import "github.com/pion/rtp"

// 帧类型
const (
	FrameVideo = byte(iota)
	FrameAudio
)

// Frame 重组后的媒体帧
type Frame struct {
	FrameType byte          // 帧类型
	Timestamp uint32        // RTP 时间戳
	Payload   []byte        // 按时间戳重组后的载荷
	Packets   []*rtp.Packet // 组成该帧的原始 RTP 包，可选
}

// Size 帧的载荷大小
func (f *Frame) Size() int {
	return len(f.Payload)
}
