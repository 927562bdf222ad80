// Copyright (c) 2019,CAOHONGJU All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package manscdp 实现 GB/T 28181 监控报警联网系统控制描述协议的消息体编解码。
// 消息体为 XML 文本，随 SIP MESSAGE/SUBSCRIBE/NOTIFY 请求传输。
package manscdp

import (
	"bytes"
	"encoding/xml"

	"golang.org/x/net/html/charset"
)

// ContentType 消息体的 SIP Content-Type
const ContentType = "Application/MANSCDP+xml"

// TimeLayout 国标时间格式
const TimeLayout = "2006-01-02T15:04:05"

// 命令类型
const (
	CmdDeviceControl  = "DeviceControl"
	CmdDeviceConfig   = "DeviceConfig"
	CmdCatalog        = "Catalog"
	CmdDeviceInfo     = "DeviceInfo"
	CmdDeviceStatus   = "DeviceStatus"
	CmdConfigDownload = "ConfigDownload"
	CmdPresetQuery    = "PresetQuery"
	CmdRecordInfo     = "RecordInfo"
	CmdAlarm          = "Alarm"
	CmdMobilePosition = "MobilePosition"
	CmdBroadcast      = "Broadcast"
	CmdMediaStatus    = "MediaStatus"
	CmdKeepalive      = "Keepalive"
)

const xmlDecl = "<?xml version=\"1.0\"?>\r\n"

// Encode 编码命令消息体
func Encode(v interface{}) (string, error) {
	body, err := xml.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", err
	}
	return xmlDecl + string(body) + "\r\n", nil
}

// Decode 解码设备上报的消息体。
// 设备侧常用 GB2312/GBK 编码，依据 XML 声明自动转换字符集。
func Decode(data []byte, v interface{}) error {
	decoder := xml.NewDecoder(bytes.NewReader(data))
	decoder.CharsetReader = charset.NewReaderLabel
	return decoder.Decode(v)
}

// DecodeHeader 仅解码消息体的公共头，用于识别命令类型后再做完整解码
func DecodeHeader(data []byte) (*Header, error) {
	header := &Header{}
	if err := Decode(data, header); err != nil {
		return nil, err
	}
	return header, nil
}
