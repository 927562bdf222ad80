// Copyright (c) 2019,CAOHONGJU All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package gb28181

import (
	"errors"
	"strconv"

	"github.com/cnotch/gbhub/protos/manscdp"
	"github.com/cnotch/gbhub/utils/scan"
)

// ErrUnknownEvent NOTIFY 与任何活动订阅都不关联
var ErrUnknownEvent = errors.New("gb28181: notify for unknown subscription")

// HandleNotify 处理设备 NOTIFY 请求。
// eventHeader 为请求 Event 头的值，如 Catalog;id=5。
func (s *Session) HandleNotify(eventHeader string, data []byte) error {
	event, id := parseEvent(eventHeader)
	if !s.matchSubscription(event, id) {
		s.logger.Warnf("notify with unmatched event: %s", eventHeader)
		return ErrUnknownEvent
	}
	return s.HandleMessage(data)
}

// HandleMessage 处理设备上报的 MANSCDP 消息体，
// 按命令类型更新目录、位置与报警状态
func (s *Session) HandleMessage(data []byte) error {
	header, err := manscdp.DecodeHeader(data)
	if err != nil {
		s.logger.Errorf("decode notify: %v", err)
		return err
	}

	switch header.CmdType {
	case manscdp.CmdCatalog:
		notify := &manscdp.CatalogNotify{}
		if err := manscdp.Decode(data, notify); err != nil {
			return err
		}
		s.updateCatalog(notify)
	case manscdp.CmdMobilePosition:
		notify := &manscdp.MobilePositionNotify{}
		if err := manscdp.Decode(data, notify); err != nil {
			return err
		}
		s.l.Lock()
		s.lastPosition = notify
		s.l.Unlock()
	case manscdp.CmdAlarm:
		notify := &manscdp.AlarmNotify{}
		if err := manscdp.Decode(data, notify); err != nil {
			return err
		}
		s.l.Lock()
		s.lastAlarm = notify
		s.l.Unlock()
		// 报警通知须回执
		return s.AckAlarm(notify.SN)
	case manscdp.CmdRecordInfo:
		return s.HandleRecordInfo(data)
	default:
		s.logger.Debugf("ignore notify cmd: %s", header.CmdType)
	}
	return nil
}

func (s *Session) updateCatalog(notify *manscdp.CatalogNotify) {
	s.l.Lock()
	defer s.l.Unlock()
	if s.catalogItems == nil {
		s.catalogItems = make(map[string]manscdp.CatalogItem)
	}
	for _, item := range notify.DeviceList.Items {
		s.catalogItems[item.DeviceID] = item
	}
}

// matchSubscription 判断事件是否关联某路活动订阅
func (s *Session) matchSubscription(event string, id int) bool {
	s.l.Lock()
	defer s.l.Unlock()
	for _, sub := range []*subscription{&s.catalog, &s.position} {
		if sub.active && sub.event == event && sub.eventID == id {
			return true
		}
	}
	return false
}

// CatalogItems 订阅或查询积累的目录项
func (s *Session) CatalogItems() []manscdp.CatalogItem {
	s.l.Lock()
	defer s.l.Unlock()
	items := make([]manscdp.CatalogItem, 0, len(s.catalogItems))
	for _, item := range s.catalogItems {
		items = append(items, item)
	}
	return items
}

// LastPosition 最近一次上报的移动位置
func (s *Session) LastPosition() *manscdp.MobilePositionNotify {
	s.l.Lock()
	defer s.l.Unlock()
	return s.lastPosition
}

// LastAlarm 最近一次上报的报警
func (s *Session) LastAlarm() *manscdp.AlarmNotify {
	s.l.Lock()
	defer s.l.Unlock()
	return s.lastAlarm
}

// parseEvent 拆分 Event 头：事件名与 id 参数
func parseEvent(header string) (event string, id int) {
	advance, token, continueScan := scan.Semicolon.Scan(header)
	event = token
	for continueScan {
		advance, token, continueScan = scan.Semicolon.Scan(advance)
		if k, v, ok := scan.EqualPair.Scan(token); ok && k == "id" {
			id, _ = strconv.Atoi(v)
		}
	}
	return
}
