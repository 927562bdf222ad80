// Copyright (c) 2019,CAOHONGJU All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package gb28181

import (
	"fmt"
	"strconv"
	"time"

	"github.com/cnotch/gbhub/config"
	"github.com/cnotch/gbhub/protos/manscdp"
	"github.com/cnotch/scheduler"
	"github.com/emiago/sipgo/sip"
)

// 订阅事件名
const (
	catalogEvent  = "Catalog"
	positionEvent = "presence"
)

// subscription 一路订阅的对话与刷新状态，由会话锁保护
type subscription struct {
	event   string
	dialog  *dialog
	eventID int // Event 头 id 参数，与 NOTIFY 关联
	expires int
	active  bool
	refresh *refreshSchedule
}

func (sub *subscription) cancelRefresh() {
	if sub.refresh != nil {
		sub.refresh.closed = true
		sub.refresh = nil
	}
}

// refreshSchedule 到期前续订的执行计划
type refreshSchedule struct {
	interval time.Duration
	closed   bool
}

func (r *refreshSchedule) Next(t time.Time) time.Time {
	if r.closed {
		return time.Time{}
	}
	return t.Add(r.interval)
}

// EnableCatalog 订阅设备目录变更。
// 重复开启会以新对话重新订阅。
func (s *Session) EnableCatalog() error {
	s.l.Lock()
	defer s.l.Unlock()
	return s.subscribe(&s.catalog, config.CatalogExpires(), func(sn int) interface{} {
		return &manscdp.Query{
			CmdType:  manscdp.CmdCatalog,
			SN:       sn,
			DeviceID: s.deviceID,
		}
	})
}

// DisableCatalog 退订设备目录变更
func (s *Session) DisableCatalog() error {
	s.l.Lock()
	defer s.l.Unlock()
	return s.unsubscribe(&s.catalog, func(sn int) interface{} {
		return &manscdp.Query{
			CmdType:  manscdp.CmdCatalog,
			SN:       sn,
			DeviceID: s.deviceID,
		}
	})
}

// EnableMobilePosition 订阅设备移动位置上报
func (s *Session) EnableMobilePosition() error {
	s.l.Lock()
	defer s.l.Unlock()
	return s.subscribe(&s.position, config.PositionExpires(), func(sn int) interface{} {
		return &manscdp.Query{
			CmdType:  manscdp.CmdMobilePosition,
			SN:       sn,
			DeviceID: s.deviceID,
			Interval: config.PositionInterval(),
		}
	})
}

// DisableMobilePosition 退订设备移动位置上报
func (s *Session) DisableMobilePosition() error {
	s.l.Lock()
	defer s.l.Unlock()
	return s.unsubscribe(&s.position, func(sn int) interface{} {
		return &manscdp.Query{
			CmdType:  manscdp.CmdMobilePosition,
			SN:       sn,
			DeviceID: s.deviceID,
		}
	})
}

func (s *Session) subscribe(sub *subscription, expires int, buildBody func(sn int) interface{}) error {
	sn := s.nextSN()
	body, err := manscdp.Encode(buildBody(sn))
	if err != nil {
		return err
	}

	d := newDialog(s.localHost())
	req := s.newRequest(sip.SUBSCRIBE, d, manscdp.ContentType)
	req.AppendHeader(sip.NewHeader("Event", sub.event+";id="+strconv.Itoa(sn)))
	expiresHeader := sip.ExpiresHeader(expires)
	req.AppendHeader(&expiresHeader)
	req.SetBody([]byte(body))

	if err := s.sender.Send(s.remote, req); err != nil {
		s.logger.Errorf("send %s subscribe: %v", sub.event, err)
		return err
	}

	d.lastReq = req
	sub.dialog = d
	sub.eventID = sn
	sub.expires = expires
	sub.active = true
	s.logger.Infof("%s subscription enabled, expires = %ds", sub.event, expires)

	if config.SubscribeRefresh() {
		s.scheduleRefresh(sub)
	}
	return nil
}

// unsubscribe 在订阅对话上发送 Expires: 0 退订；非活动订阅为无操作
func (s *Session) unsubscribe(sub *subscription, buildBody func(sn int) interface{}) error {
	if !sub.active || sub.dialog == nil {
		return nil
	}
	sub.cancelRefresh()

	body, err := manscdp.Encode(buildBody(sub.eventID))
	if err != nil {
		return err
	}

	d := sub.dialog
	req := s.newRequest(sip.SUBSCRIBE, d, manscdp.ContentType)
	req.AppendHeader(sip.NewHeader("Event", sub.event+";id="+strconv.Itoa(sub.eventID)))
	expiresHeader := sip.ExpiresHeader(0)
	req.AppendHeader(&expiresHeader)
	req.SetBody([]byte(body))

	sub.active = false
	sub.dialog = nil

	if err := s.sender.Send(s.remote, req); err != nil {
		s.logger.Errorf("send %s unsubscribe: %v", sub.event, err)
		return err
	}
	s.logger.Infof("%s subscription disabled", sub.event)
	return nil
}

// scheduleRefresh 在有效期的四分之三处重新订阅
func (s *Session) scheduleRefresh(sub *subscription) {
	sub.cancelRefresh()

	schedule := &refreshSchedule{
		interval: time.Duration(sub.expires) * time.Second * 3 / 4,
	}
	sub.refresh = schedule

	enable := s.EnableCatalog
	if sub == &s.position {
		enable = s.EnableMobilePosition
	}
	scheduler.PostFunc(schedule, func() {
		if schedule.closed {
			return
		}
		if err := enable(); err != nil {
			s.logger.Errorf("refresh %s subscription: %v", sub.event, err)
		}
	}, fmt.Sprintf("%s: refresh %s subscription", s.deviceID, sub.event))
}
