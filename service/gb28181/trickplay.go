// Copyright (c) 2019,CAOHONGJU All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package gb28181

import (
	"sync/atomic"

	"github.com/cnotch/gbhub/protos/mansrtsp"
	"github.com/emiago/sipgo/sip"
)

const mansrtspContentType = "Application/MANSRTSP"

// SetRate 调整回放倍速，scale 如 "0.25"、"1.0"、"4.0"
func (s *Session) SetRate(scale string) error {
	return s.playControl(func(cseq int) *mansrtsp.Body {
		return mansrtsp.Play(cseq, scale)
	}, PlayStatePlaying)
}

// Pause 暂停回放
func (s *Session) Pause() error {
	return s.playControl(mansrtsp.Pause, PlayStatePaused)
}

// Resume 恢复回放
func (s *Session) Resume() error {
	return s.playControl(mansrtsp.Resume, PlayStatePlaying)
}

// Seek 回放定位到相对起点 offset 秒处，播放状态不变
func (s *Session) Seek(offset int) error {
	return s.playControl(func(cseq int) *mansrtsp.Body {
		return mansrtsp.Seek(cseq, offset)
	}, -1)
}

// playControl 在呼叫对话上发送 MANSRTSP 控制请求。
// SIP CSeq 顺延对话序号，消息体序号独立自增。
func (s *Session) playControl(build func(cseq int) *mansrtsp.Body, playState int32) error {
	s.l.Lock()
	defer s.l.Unlock()

	d := s.call
	if d == nil || d.lastReq == nil {
		s.logger.Warn("play control without call dialog")
		return ErrNoDialog
	}

	s.bodySeq++
	body := build(s.bodySeq)

	req := s.newRequest(sip.INFO, d, mansrtspContentType)
	req.SetBody([]byte(body.String()))

	if err := s.sender.Send(s.remote, req); err != nil {
		s.logger.Errorf("send %s info: %v", body.Method, err)
		return err
	}

	d.lastReq = req
	if playState >= 0 {
		atomic.StoreInt32(&s.playState, playState)
	}
	return nil
}
