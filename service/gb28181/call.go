// Copyright (c) 2019,CAOHONGJU All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package gb28181

import (
	"sync/atomic"
	"time"

	"github.com/cnotch/gbhub/media"
	"github.com/cnotch/gbhub/protos/gbsdp"
	"github.com/emiago/sipgo/sip"
)

const sdpContentType = "application/sdp"

// StartLive 发起实时点播呼叫
func (s *Session) StartLive() error {
	s.l.Lock()
	defer s.l.Unlock()
	return s.invite(gbsdp.Play, 0, 0, 0)
}

// StartPlayback 发起历史回放呼叫
func (s *Session) StartPlayback(start, end time.Time) error {
	s.l.Lock()
	defer s.l.Unlock()
	return s.invite(gbsdp.Playback, start.Unix(), end.Unix(), 0)
}

// StartDownload 发起录像下载呼叫，speed 为下载倍速
func (s *Session) StartDownload(start, end time.Time, speed int) error {
	s.l.Lock()
	defer s.l.Unlock()
	return s.invite(gbsdp.Download, start.Unix(), end.Unix(), speed)
}

func (s *Session) invite(kind gbsdp.Kind, start, stop int64, speed int) error {
	// 重新呼叫前分离旧媒体通道
	s.adapter.Detach()

	rtp, rtcp := s.ports.Reserve()
	s.rtpPort, s.rtcpPort = rtp, rtcp

	d := newDialog(s.localHost())
	offer := &gbsdp.Offer{
		Kind:          kind,
		Username:      s.localID,
		DeviceID:      s.deviceID,
		LocalIP:       s.mediaIP,
		Port:          rtp,
		Start:         start,
		Stop:          stop,
		TCP:           s.account.TCP(),
		Setup:         s.account.TCPRole,
		DownloadSpeed: speed,
	}

	req := s.newRequest(sip.INVITE, d, sdpContentType)
	req.AppendHeader(sip.NewHeader("Subject", s.subject()))
	req.SetBody([]byte(offer.Marshal()))

	var err error
	if kind == gbsdp.Play {
		err = s.sender.SendReliable(s.remote, req)
	} else {
		err = s.sender.Send(s.remote, req)
	}
	if err != nil {
		s.logger.Errorf("send %s invite: %v", kind, err)
		return err
	}

	d.lastReq = req
	s.call = d
	s.bodySeq = 0
	s.setState(StateInviting)
	atomic.StoreInt32(&s.playState, PlayStatePlaying)
	s.logger.Infof("%s call started, media port = %d", kind, rtp)
	return nil
}

// AcknowledgeSDP 用设备的 SDP 应答体确认呼叫
func (s *Session) AcknowledgeSDP(toTag, answer string) error {
	endpoint, err := gbsdp.ParseAnswer(answer)
	if err != nil {
		s.logger.Errorf("parse sdp answer: %v", err)
		return err
	}
	return s.Acknowledge(toTag, endpoint.IP, endpoint.Port)
}

// Acknowledge 确认呼叫并挂接媒体通道。
// toTag 取自设备成功应答，ip/port 为协商出的设备媒体地址。
func (s *Session) Acknowledge(toTag, ip string, port int) error {
	s.l.Lock()
	defer s.l.Unlock()

	d := s.call
	if d == nil || d.lastReq == nil {
		s.logger.Warn("acknowledge without call dialog")
		return ErrNoDialog
	}
	if ip == "" || port <= 0 {
		s.logger.Warn("acknowledge without remote media endpoint")
		return ErrNoMediaEndpoint
	}

	d.toTag = toTag

	var attachErr error
	if s.factory != nil {
		kind := media.ChannelUDP
		if s.account.TCP() {
			kind = media.ChannelTCP
		}
		attachErr = s.adapter.Attach(s.factory, media.ChannelConfig{
			Kind:          kind,
			RemoteIP:      ip,
			RemotePort:    port,
			LocalRTPPort:  s.rtpPort,
			LocalRTCPPort: s.rtcpPort,
			TCPRole:       s.account.TCPRole,
			OutOfOrderMax: s.account.OutOfOrderMax,
		})
		if attachErr != nil {
			s.logger.Errorf("attach media channel: %v", attachErr)
		}
	}

	// ACK 沿用被确认请求的 CSeq 序号
	ack := s.newDialogRequest(sip.ACK, d, d.cseq, "")
	sip.CopyHeaders("Via", d.lastReq, ack)
	if err := s.sender.Send(s.remote, ack); err != nil {
		s.logger.Errorf("send ack: %v", err)
		return err
	}

	s.setState(StateActive)
	s.logger.Infof("call confirmed, remote media = %s:%d", ip, port)
	return attachErr
}

// Stop 终止呼叫。没有呼叫时为无操作
func (s *Session) Stop() error {
	s.l.Lock()
	defer s.l.Unlock()

	d := s.call
	if d == nil || d.lastReq == nil {
		return nil
	}

	s.adapter.Detach()

	bye := s.newRequest(sip.BYE, d, "")
	sip.CopyHeaders("Via", d.lastReq, bye)
	err := s.sender.SendReliable(s.remote, bye)

	s.call = nil
	s.setState(StateClosed)
	if err != nil {
		s.logger.Errorf("send bye: %v", err)
		return err
	}
	s.logger.Info("call stopped")
	return nil
}
