// Copyright (c) 2019,CAOHONGJU All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package config

import (
	"net"
	"time"

	"github.com/cnotch/gbhub/network"
)

// Addr Listen addr
func Addr() string {
	if globalC == nil {
		return ":5060"
	}
	return globalC.ListenAddr
}

// SIPID 本级平台的国标编码
func SIPID() string {
	if globalC == nil {
		return "34020000002000000001"
	}
	return globalC.SIPID
}

// Realm 本级域
func Realm() string {
	if globalC == nil {
		return "3402000000"
	}
	return globalC.Realm
}

// MediaIP 收流地址
func MediaIP() string {
	if globalC != nil && globalC.MediaIP != "" {
		return globalC.MediaIP
	}
	return network.FirstLocalIP()
}

// LocalSIPAddr 本级 SIP 地址 host:port
func LocalSIPAddr() string {
	addr := Addr()
	host, port, err := net.SplitHostPort(addr)
	if err != nil {
		return addr
	}
	if host == "" || host == "0.0.0.0" || host == "::" {
		host = MediaIP()
	}
	return net.JoinHostPort(host, port)
}

// PortRange 收流端口范围
func PortRange() (min, max int) {
	if globalC == nil {
		return 10000, 10500
	}
	return globalC.PortMin, globalC.PortMax
}

// CatalogExpires 目录订阅有效期
func CatalogExpires() int {
	if globalC == nil || globalC.CatalogExpires <= 0 {
		return 3600
	}
	return globalC.CatalogExpires
}

// PositionExpires 位置订阅有效期
func PositionExpires() int {
	if globalC == nil || globalC.PositionExpires <= 0 {
		return 600
	}
	return globalC.PositionExpires
}

// PositionInterval 位置上报周期
func PositionInterval() int {
	if globalC == nil || globalC.PositionInterval <= 0 {
		return 5
	}
	return globalC.PositionInterval
}

// SubscribeRefresh 是否在到期前自动续订
func SubscribeRefresh() bool {
	if globalC == nil {
		return true
	}
	return globalC.SubscribeRefresh
}

// RecordQueryTimeout 录像检索的应答等待时间
func RecordQueryTimeout() time.Duration {
	return 2 * time.Second
}

// NetTimeout 返回网络超时设置
func NetTimeout() time.Duration {
	return time.Second * 45
}

// NetBufferSize 网络通讯时的BufferSize
func NetBufferSize() int {
	return 128 * 1024
}
