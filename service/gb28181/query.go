// Copyright (c) 2019,CAOHONGJU All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package gb28181

import (
	"time"

	"github.com/cnotch/gbhub/config"
	"github.com/cnotch/gbhub/protos/manscdp"
)

// QueryRecordings 检索设备录像，返回检索到的文件总数。
// 设备应答经 HandleRecordInfo 回送；等待超时返回 0。
func (s *Session) QueryRecordings(start, end time.Time, recordType string) int {
	if recordType == "" {
		recordType = "all"
	}

	s.recordL.Lock()
	ch := make(chan int, 1)
	s.recordCh = ch
	s.recordItems = nil
	s.recordL.Unlock()

	body := &manscdp.RecordQuery{
		CmdType:   manscdp.CmdRecordInfo,
		SN:        s.nextSN(),
		DeviceID:  s.deviceID,
		StartTime: start.Format(manscdp.TimeLayout),
		EndTime:   end.Format(manscdp.TimeLayout),
		Type:      recordType,
	}
	if err := s.sendCommand(body); err != nil {
		return 0
	}

	select {
	case total := <-ch:
		if total < 0 {
			total = 0
		}
		return total
	case <-time.After(config.RecordQueryTimeout()):
		s.logger.Warn("record query timeout")
		return 0
	}
}

// HandleRecordInfo 处理录像检索应答消息体，累积文件项并回送总数
func (s *Session) HandleRecordInfo(data []byte) error {
	resp := &manscdp.RecordInfoResponse{}
	if err := manscdp.Decode(data, resp); err != nil {
		s.logger.Errorf("decode record info: %v", err)
		return err
	}

	s.recordL.Lock()
	s.recordItems = append(s.recordItems, resp.RecordList.Items...)
	s.recordL.Unlock()

	s.DeliverRecordTotal(resp.SumNum)
	return nil
}

// DeliverRecordTotal 投递录像检索总数，结束 QueryRecordings 的等待
func (s *Session) DeliverRecordTotal(total int) {
	s.recordL.Lock()
	defer s.recordL.Unlock()
	if s.recordCh == nil {
		return
	}
	select {
	case s.recordCh <- total:
	default: // 已投递过，丢弃后续总数
	}
}

// Records 最近一次检索累积的录像文件项
func (s *Session) Records() []manscdp.RecordItem {
	s.recordL.Lock()
	defer s.recordL.Unlock()
	items := make([]manscdp.RecordItem, len(s.recordItems))
	copy(items, s.recordItems)
	return items
}
