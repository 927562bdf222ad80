// Copyright (c) 2019,CAOHONGJU All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package manscdp

import "encoding/xml"

// Header 消息体公共头
type Header struct {
	XMLName  xml.Name
	CmdType  string `xml:"CmdType"`
	SN       int    `xml:"SN"`
	DeviceID string `xml:"DeviceID"`
}

// Query 通用查询命令
type Query struct {
	XMLName    xml.Name `xml:"Query"`
	CmdType    string   `xml:"CmdType"`
	SN         int      `xml:"SN"`
	DeviceID   string   `xml:"DeviceID"`
	ConfigType string   `xml:"ConfigType,omitempty"` // ConfigDownload 专用
	Interval   int      `xml:"Interval,omitempty"`   // MobilePosition 专用，上报周期(秒)
}

// RecordQuery 录像文件检索命令
type RecordQuery struct {
	XMLName   xml.Name `xml:"Query"`
	CmdType   string   `xml:"CmdType"`
	SN        int      `xml:"SN"`
	DeviceID  string   `xml:"DeviceID"`
	StartTime string   `xml:"StartTime"`
	EndTime   string   `xml:"EndTime"`
	Secrecy   int      `xml:"Secrecy"`
	Type      string   `xml:"Type"` // time/alarm/manual/all
}

// Control 设备控制命令
type Control struct {
	XMLName      xml.Name      `xml:"Control"`
	CmdType      string        `xml:"CmdType"`
	SN           int           `xml:"SN"`
	DeviceID     string        `xml:"DeviceID"`
	PTZCmd       string        `xml:"PTZCmd,omitempty"`
	TeleBoot     string        `xml:"TeleBoot,omitempty"`
	GuardCmd     string        `xml:"GuardCmd,omitempty"`
	AlarmCmd     string        `xml:"AlarmCmd,omitempty"`
	RecordCmd    string        `xml:"RecordCmd,omitempty"`
	IFameCmd     string        `xml:"IFameCmd,omitempty"` // 关键帧请求，字段名遵循国标附录拼写
	DragZoomIn   *DragZoom     `xml:"DragZoomIn,omitempty"`
	DragZoomOut  *DragZoom     `xml:"DragZoomOut,omitempty"`
	HomePosition *HomePosition `xml:"HomePosition,omitempty"`
}

// DragZoom 拖动放大/缩小的选框
type DragZoom struct {
	Length    int `xml:"Length"`
	Width     int `xml:"Width"`
	MidPointX int `xml:"MidPointX"`
	MidPointY int `xml:"MidPointY"`
	LengthX   int `xml:"LengthX"`
	LengthY   int `xml:"LengthY"`
}

// HomePosition 看守位设置
type HomePosition struct {
	Enabled     int `xml:"Enabled"`
	ResetTime   int `xml:"ResetTime"`
	PresetIndex int `xml:"PresetIndex"`
}

// DeviceConfig 设备参数配置命令
type DeviceConfig struct {
	XMLName    xml.Name    `xml:"Control"`
	CmdType    string      `xml:"CmdType"`
	SN         int         `xml:"SN"`
	DeviceID   string      `xml:"DeviceID"`
	BasicParam *BasicParam `xml:"BasicParam,omitempty"`
}

// BasicParam 设备基本参数
type BasicParam struct {
	Name              string `xml:"Name"`
	Expiration        int    `xml:"Expiration"`
	HeartBeatInterval int    `xml:"HeartBeatInterval"`
	HeartBeatCount    int    `xml:"HeartBeatCount"`
}

// Response 应答消息体，用于向设备回复报警等通知
type Response struct {
	XMLName  xml.Name `xml:"Response"`
	CmdType  string   `xml:"CmdType"`
	SN       int      `xml:"SN"`
	DeviceID string   `xml:"DeviceID"`
	Result   string   `xml:"Result"`
}

// BroadcastNotify 语音广播通知
type BroadcastNotify struct {
	XMLName  xml.Name `xml:"Notify"`
	CmdType  string   `xml:"CmdType"`
	SN       int      `xml:"SN"`
	SourceID string   `xml:"SourceID"`
	TargetID string   `xml:"TargetID"`
}

// RecordInfoResponse 录像文件检索应答
type RecordInfoResponse struct {
	XMLName    xml.Name   `xml:"Response"`
	CmdType    string     `xml:"CmdType"`
	SN         int        `xml:"SN"`
	DeviceID   string     `xml:"DeviceID"`
	Name       string     `xml:"Name"`
	SumNum     int        `xml:"SumNum"`
	RecordList RecordList `xml:"RecordList"`
}

// RecordList 录像文件列表
type RecordList struct {
	Num   int          `xml:"Num,attr"`
	Items []RecordItem `xml:"Item"`
}

// RecordItem 录像文件项
type RecordItem struct {
	DeviceID  string `xml:"DeviceID"`
	Name      string `xml:"Name"`
	FilePath  string `xml:"FilePath"`
	Address   string `xml:"Address"`
	StartTime string `xml:"StartTime"`
	EndTime   string `xml:"EndTime"`
	Secrecy   int    `xml:"Secrecy"`
	Type      string `xml:"Type"`
}

// CatalogNotify 目录通知/应答。订阅产生的 NOTIFY 与查询应答共用该结构
type CatalogNotify struct {
	XMLName    xml.Name   `xml:"Notify"`
	CmdType    string     `xml:"CmdType"`
	SN         int        `xml:"SN"`
	DeviceID   string     `xml:"DeviceID"`
	SumNum     int        `xml:"SumNum"`
	DeviceList DeviceList `xml:"DeviceList"`
}

// DeviceList 目录项列表
type DeviceList struct {
	Num   int           `xml:"Num,attr"`
	Items []CatalogItem `xml:"Item"`
}

// CatalogItem 目录项
type CatalogItem struct {
	DeviceID     string `xml:"DeviceID"`
	Name         string `xml:"Name"`
	Manufacturer string `xml:"Manufacturer"`
	Model        string `xml:"Model"`
	Owner        string `xml:"Owner"`
	CivilCode    string `xml:"CivilCode"`
	Address      string `xml:"Address"`
	Parental     int    `xml:"Parental"`
	ParentID     string `xml:"ParentID"`
	RegisterWay  int    `xml:"RegisterWay"`
	Secrecy      int    `xml:"Secrecy"`
	Status       string `xml:"Status"`
}

// MobilePositionNotify 移动设备位置通知
type MobilePositionNotify struct {
	XMLName   xml.Name `xml:"Notify"`
	CmdType   string   `xml:"CmdType"`
	SN        int      `xml:"SN"`
	DeviceID  string   `xml:"DeviceID"`
	Time      string   `xml:"Time"`
	Longitude float64  `xml:"Longitude"`
	Latitude  float64  `xml:"Latitude"`
	Speed     float64  `xml:"Speed"`
	Direction float64  `xml:"Direction"`
	Altitude  float64  `xml:"Altitude"`
}

// AlarmNotify 报警通知
type AlarmNotify struct {
	XMLName       xml.Name `xml:"Notify"`
	CmdType       string   `xml:"CmdType"`
	SN            int      `xml:"SN"`
	DeviceID      string   `xml:"DeviceID"`
	AlarmPriority string   `xml:"AlarmPriority"`
	AlarmMethod   string   `xml:"AlarmMethod"`
	AlarmTime     string   `xml:"AlarmTime"`
	Longitude     float64  `xml:"Longitude"`
	Latitude      float64  `xml:"Latitude"`
}

// DeviceInfoResponse 设备信息查询应答
type DeviceInfoResponse struct {
	XMLName      xml.Name `xml:"Response"`
	CmdType      string   `xml:"CmdType"`
	SN           int      `xml:"SN"`
	DeviceID     string   `xml:"DeviceID"`
	DeviceName   string   `xml:"DeviceName"`
	Manufacturer string   `xml:"Manufacturer"`
	Model        string   `xml:"Model"`
	Firmware     string   `xml:"Firmware"`
	Result       string   `xml:"Result"`
}

// DeviceStatusResponse 设备状态查询应答
type DeviceStatusResponse struct {
	XMLName    xml.Name `xml:"Response"`
	CmdType    string   `xml:"CmdType"`
	SN         int      `xml:"SN"`
	DeviceID   string   `xml:"DeviceID"`
	Result     string   `xml:"Result"`
	Online     string   `xml:"Online"`
	Status     string   `xml:"Status"`
	DeviceTime string   `xml:"DeviceTime"`
	Record     string   `xml:"Record"`
}

// PresetQueryResponse 预置位查询应答
type PresetQueryResponse struct {
	XMLName    xml.Name   `xml:"Response"`
	CmdType    string     `xml:"CmdType"`
	SN         int        `xml:"SN"`
	DeviceID   string     `xml:"DeviceID"`
	PresetList PresetList `xml:"PresetList"`
}

// PresetList 预置位列表
type PresetList struct {
	Num   int          `xml:"Num,attr"`
	Items []PresetItem `xml:"Item"`
}

// PresetItem 预置位项
type PresetItem struct {
	PresetID   string `xml:"PresetID"`
	PresetName string `xml:"PresetName"`
}
