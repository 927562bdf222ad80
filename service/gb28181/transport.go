// Copyright (c) 2019,CAOHONGJU All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package gb28181 实现 GB/T 28181 设备会话的信令核心。
// 会话面向单个前端设备，驱动点播/回放/下载呼叫、云台控制、
// 录像检索、目录与位置订阅及设备管理命令。
package gb28181

import (
	"github.com/emiago/sipgo/sip"
)

// Requester SIP 请求发送器，由外部信令传输层实现。
// Send 尽力而为；SendReliable 要求传输层按事务重发直至应答。
type Requester interface {
	Send(dest string, req *sip.Request) error
	SendReliable(dest string, req *sip.Request) error
}

// PortReserver 媒体收流端口分配器
type PortReserver interface {
	Reserve() (rtp, rtcp int)
}
