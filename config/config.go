// Copyright (c) 2019,CAOHONGJU All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package config

import (
	"flag"
	"os"
	"path/filepath"
	"strings"

	cfg "github.com/cnotch/loader"
	"github.com/cnotch/xlog"
)

// 服务名
const (
	Vendor  = "CAOHONGJU"
	Name    = "gbhub"
	Version = "V1.0.0"
)

// UserAgent SIP 请求的 User-Agent 头
const UserAgent = Name + "/" + Version

var globalC *config

// config 服务配置
type config struct {
	ListenAddr       string          `json:"listen"`             // SIP 信令侦听地址和端口
	SIPID            string          `json:"sipid"`              // 本级平台的国标编码
	Realm            string          `json:"realm"`              // 本级域
	MediaIP          string          `json:"mediaip,omitempty"`  // 收流地址，空则自动探测
	PortMin          int             `json:"portmin"`            // 收流端口范围下限
	PortMax          int             `json:"portmax"`            // 收流端口范围上限
	CatalogExpires   int             `json:"catalog_expires"`    // 目录订阅有效期(秒)
	PositionExpires  int             `json:"position_expires"`   // 位置订阅有效期(秒)
	PositionInterval int             `json:"position_interval"`  // 位置上报周期(秒)
	SubscribeRefresh bool            `json:"subscribe_refresh"`  // 是否在到期前自动续订
	Accounts         []AccountConfig `json:"accounts,omitempty"` // 设备接入账户
	Log              LogConfig       `json:"log"`                // 日志配置
}

func (c *config) initFlags() {
	// 服务的端口
	flag.StringVar(&c.ListenAddr, "listen", ":5060", "Set SIP listen address")
	flag.StringVar(&c.SIPID, "sipid", "34020000002000000001", "Set the GB28181 ID of this server")
	flag.StringVar(&c.Realm, "realm", "3402000000", "Set the GB28181 realm of this server")
	flag.StringVar(&c.MediaIP, "mediaip", "", "Set the IP used to receive media streams")
	flag.IntVar(&c.PortMin, "portmin", 10000, "Set the minimum media receive port")
	flag.IntVar(&c.PortMax, "portmax", 10500, "Set the maximum media receive port")
	flag.IntVar(&c.CatalogExpires, "catalog-expires", 3600,
		"Set the expiration in seconds of catalog subscriptions")
	flag.IntVar(&c.PositionExpires, "position-expires", 600,
		"Set the expiration in seconds of mobile position subscriptions")
	flag.IntVar(&c.PositionInterval, "position-interval", 5,
		"Set the interval in seconds of mobile position reporting")
	flag.BoolVar(&c.SubscribeRefresh, "subscribe-refresh", true,
		"Determines if subscriptions are refreshed before they expire")

	// 初始化日志配置
	c.Log.initFlags()
}

// InitConfig 初始化 Config
func InitConfig() {
	exe, err := os.Executable()
	if err != nil {
		xlog.Panic(err.Error())
	}

	configPath := filepath.Join(filepath.Dir(exe), Name+".conf")

	globalC = new(config)
	globalC.initFlags()

	// 创建或加载配置文件
	if err := cfg.Load(globalC,
		&cfg.JSONLoader{Path: configPath, CreatedIfNonExsit: true},
		&cfg.EnvLoader{Prefix: strings.ToUpper(Name)},
		&cfg.FlagLoader{}); err != nil {
		// 异常，直接退出
		xlog.Panic(err.Error())
	}

	// 初始化日志
	globalC.Log.initLogger()
}
