// Copyright (c) 2019,CAOHONGJU All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package gb28181

import (
	"github.com/cnotch/gbhub/protos/manscdp"
	"github.com/cnotch/gbhub/protos/ptz"
	"github.com/emiago/sipgo/sip"
)

// sendCommand 以一次性对话发送 MANSCDP 命令
func (s *Session) sendCommand(body interface{}) error {
	xmlBody, err := manscdp.Encode(body)
	if err != nil {
		return err
	}

	s.l.Lock()
	defer s.l.Unlock()

	d := newDialog(s.localHost())
	req := s.newRequest(sip.MESSAGE, d, manscdp.ContentType)
	req.SetBody([]byte(xmlBody))

	if err := s.sender.Send(s.remote, req); err != nil {
		s.logger.Errorf("send command %T: %v", body, err)
		return err
	}
	return nil
}

func (s *Session) control(fill func(c *manscdp.Control)) error {
	c := &manscdp.Control{
		CmdType:  manscdp.CmdDeviceControl,
		SN:       s.nextSN(),
		DeviceID: s.deviceID,
	}
	fill(c)
	return s.sendCommand(c)
}

// ControlPTZ 云台控制。speed 含义随命令而变：速度、倍率或预置位编号
func (s *Session) ControlPTZ(cmd ptz.Command, speed int) error {
	frame, err := ptz.Encode(cmd, speed)
	if err != nil {
		s.logger.Errorf("encode ptz %v: %v", cmd, err)
		return err
	}
	return s.control(func(c *manscdp.Control) { c.PTZCmd = frame })
}

// Reboot 远程启动设备
func (s *Session) Reboot() error {
	return s.control(func(c *manscdp.Control) { c.TeleBoot = "Boot" })
}

// SetGuard 布防
func (s *Session) SetGuard() error {
	return s.control(func(c *manscdp.Control) { c.GuardCmd = "SetGuard" })
}

// ResetGuard 撤防
func (s *Session) ResetGuard() error {
	return s.control(func(c *manscdp.Control) { c.GuardCmd = "ResetGuard" })
}

// ResetAlarm 报警复位
func (s *Session) ResetAlarm() error {
	return s.control(func(c *manscdp.Control) { c.AlarmCmd = "ResetAlarm" })
}

// RecordControl 设备录像的开起与停止
func (s *Session) RecordControl(start bool) error {
	cmd := "Record"
	if !start {
		cmd = "StopRecord"
	}
	return s.control(func(c *manscdp.Control) { c.RecordCmd = cmd })
}

// RequestKeyFrame 强制设备下发关键帧
func (s *Session) RequestKeyFrame() error {
	return s.control(func(c *manscdp.Control) { c.IFameCmd = "Send" })
}

// SetHomePosition 设置看守位。resetTime 为自动归位时间(秒)
func (s *Session) SetHomePosition(enable bool, resetTime, presetIndex int) error {
	enabled := 0
	if enable {
		enabled = 1
	}
	return s.control(func(c *manscdp.Control) {
		c.HomePosition = &manscdp.HomePosition{
			Enabled:     enabled,
			ResetTime:   resetTime,
			PresetIndex: presetIndex,
		}
	})
}

// DragZoomIn 拖动放大
func (s *Session) DragZoomIn(zoom *manscdp.DragZoom) error {
	return s.control(func(c *manscdp.Control) { c.DragZoomIn = zoom })
}

// DragZoomOut 拖动缩小
func (s *Session) DragZoomOut(zoom *manscdp.DragZoom) error {
	return s.control(func(c *manscdp.Control) { c.DragZoomOut = zoom })
}

// SetBasicParam 配置设备基本参数
func (s *Session) SetBasicParam(name string, expiration, heartBeatInterval, heartBeatCount int) error {
	return s.sendCommand(&manscdp.DeviceConfig{
		CmdType:  manscdp.CmdDeviceConfig,
		SN:       s.nextSN(),
		DeviceID: s.deviceID,
		BasicParam: &manscdp.BasicParam{
			Name:              name,
			Expiration:        expiration,
			HeartBeatInterval: heartBeatInterval,
			HeartBeatCount:    heartBeatCount,
		},
	})
}

func (s *Session) query(cmdType string, fill func(q *manscdp.Query)) error {
	q := &manscdp.Query{
		CmdType:  cmdType,
		SN:       s.nextSN(),
		DeviceID: s.deviceID,
	}
	if fill != nil {
		fill(q)
	}
	return s.sendCommand(q)
}

// QueryDeviceInfo 查询设备信息
func (s *Session) QueryDeviceInfo() error {
	return s.query(manscdp.CmdDeviceInfo, nil)
}

// QueryDeviceStatus 查询设备状态
func (s *Session) QueryDeviceStatus() error {
	return s.query(manscdp.CmdDeviceStatus, nil)
}

// QueryCatalog 查询设备目录
func (s *Session) QueryCatalog() error {
	return s.query(manscdp.CmdCatalog, nil)
}

// QueryConfig 查询设备配置，configType 如 BasicParam
func (s *Session) QueryConfig(configType string) error {
	return s.query(manscdp.CmdConfigDownload, func(q *manscdp.Query) {
		q.ConfigType = configType
	})
}

// QueryPresets 查询预置位列表
func (s *Session) QueryPresets() error {
	return s.query(manscdp.CmdPresetQuery, nil)
}

// AckAlarm 应答设备报警通知
func (s *Session) AckAlarm(sn int) error {
	return s.sendCommand(&manscdp.Response{
		CmdType:  manscdp.CmdAlarm,
		SN:       sn,
		DeviceID: s.deviceID,
		Result:   "OK",
	})
}

// Broadcast 通知设备发起语音广播
func (s *Session) Broadcast(sourceID string) error {
	return s.sendCommand(&manscdp.BroadcastNotify{
		CmdType:  manscdp.CmdBroadcast,
		SN:       s.nextSN(),
		SourceID: sourceID,
		TargetID: s.deviceID,
	})
}
