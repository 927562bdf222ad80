// Copyright (c) 2019,CAOHONGJU All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package config

import "strings"

// 流传输方式
const (
	StreamUDP = "udp"
	StreamTCP = "tcp"
)

// AccountConfig 设备接入账户，决定与单个设备的媒体传输参数
type AccountConfig struct {
	DeviceID       string `json:"device_id"`                  // 设备国标编码
	StreamProtocol string `json:"stream_protocol,omitempty"`  // udp 或 tcp
	TCPRole        string `json:"tcp_role,omitempty"`         // TCP 连接角色 active/passive
	OutOfOrderMax  int    `json:"out_of_order_max,omitempty"` // RTP 乱序容忍包数
}

// TCP 流传输是否走 TCP
func (a *AccountConfig) TCP() bool {
	return strings.EqualFold(a.StreamProtocol, StreamTCP)
}

// FindAccount 查找设备接入账户，没有配置时返回缺省账户
func FindAccount(deviceID string) AccountConfig {
	if globalC != nil {
		for _, account := range globalC.Accounts {
			if account.DeviceID == deviceID {
				return account
			}
		}
	}
	return AccountConfig{
		DeviceID:       deviceID,
		StreamProtocol: StreamUDP,
		OutOfOrderMax:  16,
	}
}
