// Copyright (c) 2019,CAOHONGJU All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package network

import (
	"net"
	"strings"

	"github.com/emitter-io/address"
)

// GetIP 获取IP信息
func GetIP(addr net.Addr) string {
	s := addr.String()
	i := strings.LastIndex(s, ":")
	return s[:i]
}

// GetLocalIP 获取本地IP
func GetLocalIP() []string {
	addrs, _ := net.InterfaceAddrs()
	ips := []string{}
	for _, address := range addrs {
		// 检查ip地址判断是否回环地址
		if ipnet, ok := address.(*net.IPNet); ok && !ipnet.IP.IsLoopback() {
			if ipnet.IP.To4() != nil {
				ips = append(ips, ipnet.IP.String())
			}
		}
	}
	return ips
}

// FirstLocalIP 获取首个可用的本机 IPv4 地址，作为媒体收流的缺省地址
func FirstLocalIP() string {
	privs, err := address.GetPrivate()
	if err == nil {
		for _, priv := range privs {
			if priv.IP.To4() != nil {
				return priv.IP.String()
			}
		}
	}
	if ips := GetLocalIP(); len(ips) > 0 {
		return ips[0]
	}
	return "127.0.0.1"
}

