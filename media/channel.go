// Copyright (c) 2019,CAOHONGJU All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package media

// 流传输方式
const (
	ChannelUDP = iota
	ChannelTCP
)

// ChannelConfig 媒体通道参数，由信令协商结果填充
type ChannelConfig struct {
	Kind          int    // 传输方式 ChannelUDP/ChannelTCP
	RemoteIP      string // 设备侧媒体地址
	RemotePort    int    // 设备侧媒体端口
	LocalRTPPort  int    // 本机 RTP 收流端口
	LocalRTCPPort int    // 本机 RTCP 端口
	TCPRole       string // TCP 连接角色 active/passive
	OutOfOrderMax int    // RTP 乱序容忍包数
}

// Channel 媒体通道。实现负责建立传输、接收 RTP 并重组为帧
type Channel interface {
	// OnFrame 注册帧回调，须在 Start 之前调用
	OnFrame(fn func(*Frame))
	// Start 启动收流
	Start() error
	// Stop 停止收流并释放传输资源
	Stop() error
}

// Factory 按协商参数创建媒体通道
type Factory func(config ChannelConfig) (Channel, error)
