// Copyright (c) 2019,CAOHONGJU All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package ptz 实现 GB/T 28181 前端设备云台控制指令的编码。
package ptz

import (
	"encoding/hex"
	"errors"
	"strings"
)

// Command 云台控制命令
type Command int

// 云台控制命令枚举
const (
	Stop         Command = iota // 停止
	Up                          // 上
	Down                        // 下
	Left                        // 左
	Right                       // 右
	UpRight                     // 右上
	DownRight                   // 右下
	UpLeft                      // 左上
	DownLeft                    // 左下
	ZoomIn                      // 焦距变大
	ZoomOut                     // 焦距变小
	FocusNear                   // 聚焦+
	FocusFar                    // 聚焦-
	IrisOpen                    // 光圈开
	IrisClose                   // 光圈关
	SetPreset                   // 设置预置位
	GotoPreset                  // 调用预置位
	RemovePreset                // 删除预置位
	commandCount
)

var commandNames = []string{
	"Stop", "Up", "Down", "Left", "Right",
	"UpRight", "DownRight", "UpLeft", "DownLeft",
	"ZoomIn", "ZoomOut", "FocusNear", "FocusFar",
	"IrisOpen", "IrisClose",
	"SetPreset", "GotoPreset", "RemovePreset",
}

func (c Command) String() string {
	if c < Stop || c >= commandCount {
		return "Unknown"
	}
	return commandNames[c]
}

// ErrUnknownCommand 未知的云台控制命令
var ErrUnknownCommand = errors.New("ptz: unknown command")

// 指令帧首部：首字节 + 版本/校验组合字节 + 地址
var header = [3]byte{0xA5, 0x0F, 0x01}

// Encode 编码云台控制指令，返回 16 个大写十六进制字符组成的指令串。
// speed 同时用作移动速度、变倍倍率或预置位编号，超出 [0,255] 被截断。
func Encode(cmd Command, speed int) (string, error) {
	frame, err := encode(cmd, clampSpeed(speed))
	if err != nil {
		return "", err
	}
	return strings.ToUpper(hex.EncodeToString(frame[:])), nil
}

func clampSpeed(speed int) byte {
	if speed < 0 {
		return 0
	}
	if speed > 0xFF {
		return 0xFF
	}
	return byte(speed)
}

func encode(cmd Command, s byte) (frame [8]byte, err error) {
	copy(frame[:], header[:])

	switch cmd {
	case Stop:
		// 指令与数据区全 0
	case Up:
		frame[3], frame[4], frame[5] = 0x08, s, s
	case Down:
		frame[3], frame[4], frame[5] = 0x04, s, s
	case Left:
		frame[3], frame[4], frame[5] = 0x02, s, s
	case Right:
		frame[3], frame[4], frame[5] = 0x01, s, s
	case UpRight:
		frame[3], frame[4], frame[5] = 0x09, s, s
	case DownRight:
		frame[3], frame[4], frame[5] = 0x05, s, s
	case UpLeft:
		frame[3], frame[4], frame[5] = 0x0A, s, s
	case DownLeft:
		frame[3], frame[4], frame[5] = 0x06, s, s
	case ZoomIn:
		frame[3], frame[6] = 0x10, s<<4
	case ZoomOut:
		frame[3], frame[6] = 0x20, s<<4
	case FocusNear:
		frame[3], frame[4] = 0x42, s
	case FocusFar:
		frame[3], frame[4] = 0x41, s
	case IrisOpen:
		frame[3], frame[5] = 0x44, s
	case IrisClose:
		frame[3], frame[5] = 0x48, s
	case SetPreset:
		frame[3], frame[5] = 0x81, s
	case GotoPreset:
		frame[3], frame[5] = 0x82, s
	case RemovePreset:
		frame[3], frame[5] = 0x83, s
	default:
		err = ErrUnknownCommand
		return
	}

	frame[7] = checksum(frame[:7])
	return
}

// checksum 前 7 字节求和取模 256
func checksum(data []byte) byte {
	var sum int
	for _, b := range data {
		sum += int(b)
	}
	return byte(sum % 256)
}
