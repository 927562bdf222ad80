// Copyright (c) 2019,CAOHONGJU All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package mansrtsp 实现 GB/T 28181 回放控制的 MANSRTSP 消息体编解码。
// 消息体随 SIP INFO 请求发送，内嵌的 CSeq 独立于 SIP 事务序号。
package mansrtsp

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/cnotch/gbhub/utils/scan"
)

// 版本标识
const Version = "MANSRTSP/1.0"

// 方法
const (
	MethodPlay  = "PLAY"
	MethodPause = "PAUSE"
)

// ErrBadBody 消息体格式错误
var ErrBadBody = errors.New("mansrtsp: malformed body")

// Body MANSRTSP 消息体
type Body struct {
	Method    string // PLAY 或 PAUSE
	CSeq      int    // 消息体内嵌序号
	Scale     string // 播放倍速
	Range     string // 播放定位，如 npt=now- 或 npt=75-
	PauseTime string // 暂停时刻
}

// Play 倍速播放消息体
func Play(cseq int, scale string) *Body {
	return &Body{Method: MethodPlay, CSeq: cseq, Scale: scale}
}

// Resume 恢复播放消息体
func Resume(cseq int) *Body {
	return &Body{Method: MethodPlay, CSeq: cseq, Range: "npt=now-"}
}

// Seek 拖动播放消息体，offset 为相对起点的秒数
func Seek(cseq, offset int) *Body {
	return &Body{Method: MethodPlay, CSeq: cseq, Range: fmt.Sprintf("npt=%d-", offset)}
}

// Pause 暂停播放消息体
func Pause(cseq int) *Body {
	return &Body{Method: MethodPause, CSeq: cseq, PauseTime: "now"}
}

// String 编码为随 INFO 请求发送的文本
func (b *Body) String() string {
	var buf strings.Builder
	buf.WriteString(b.Method)
	buf.WriteString(" " + Version + "\r\n")
	buf.WriteString("CSeq: ")
	buf.WriteString(strconv.Itoa(b.CSeq))
	buf.WriteString("\r\n")
	if b.Scale != "" {
		buf.WriteString("Scale: " + b.Scale + "\r\n")
	}
	if b.Range != "" {
		buf.WriteString("Range: " + b.Range + "\r\n")
	}
	if b.PauseTime != "" {
		buf.WriteString("PauseTime: " + b.PauseTime + "\r\n")
	}
	return buf.String()
}

// Parse 解析 MANSRTSP 消息体
func Parse(s string) (*Body, error) {
	advance, token, _ := scan.Line.Scan(s)
	version, method, _ := scan.Space.Scan(token)
	if strings.TrimSpace(version) != Version {
		return nil, ErrBadBody
	}

	body := &Body{Method: method}
	continueScan := true
	for continueScan && len(advance) > 0 {
		advance, token, continueScan = scan.Line.Scan(advance)
		if token == "" {
			continue
		}
		k, v, ok := scan.ColonPair.Scan(token)
		if !ok {
			return nil, ErrBadBody
		}
		switch k {
		case "CSeq":
			n, err := strconv.Atoi(v)
			if err != nil {
				return nil, ErrBadBody
			}
			body.CSeq = n
		case "Scale":
			body.Scale = v
		case "Range":
			body.Range = v
		case "PauseTime":
			body.PauseTime = v
		}
	}
	return body, nil
}
