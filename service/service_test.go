// Copyright (c) 2019,CAOHONGJU All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package service

import (
	"context"
	"testing"

	"github.com/cnotch/xlog"
	"github.com/emiago/sipgo/sip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeServerTx struct {
	res *sip.Response
}

func (t *fakeServerTx) Respond(res *sip.Response) error { t.res = res; return nil }
func (t *fakeServerTx) Acks() <-chan *sip.Request       { return nil }
func (t *fakeServerTx) Terminate()                      {}
func (t *fakeServerTx) Done() <-chan struct{}           { return nil }
func (t *fakeServerTx) Err() error                      { return nil }

func newTestService(t *testing.T) *Service {
	s, err := NewService(context.Background(), xlog.L(), nil)
	require.NoError(t, err)
	return s
}

func newDeviceRequest(method sip.RequestMethod, deviceID string, body []byte) *sip.Request {
	req := sip.NewRequest(method, sip.Uri{
		User: "34020000002000000001", Host: "192.168.1.10", Port: 5060})
	req.AppendHeader(&sip.FromHeader{
		Address: sip.Uri{User: deviceID, Host: "192.168.1.64", Port: 5060},
		Params:  sip.NewParams().Add("tag", "t1"),
	})
	req.AppendHeader(&sip.ToHeader{
		Address: sip.Uri{User: "34020000002000000001", Host: "192.168.1.10", Port: 5060},
		Params:  sip.NewParams(),
	})
	if body != nil {
		req.SetBody(body)
	}
	return req
}

func TestOpenSessionReuse(t *testing.T) {
	s := newTestService(t)
	defer s.Close()

	first, err := s.OpenSession("34020000001320000001", "192.168.1.64:5060")
	require.NoError(t, err)
	second, err := s.OpenSession("34020000001320000001", "192.168.1.64:5060")
	require.NoError(t, err)
	assert.Same(t, first, second)

	got, ok := s.GetSession("34020000001320000001")
	assert.True(t, ok)
	assert.Same(t, first, got)

	s.CloseSession("34020000001320000001")
	_, ok = s.GetSession("34020000001320000001")
	assert.False(t, ok)
}

func TestOnMessageRouting(t *testing.T) {
	s := newTestService(t)
	defer s.Close()

	keepalive := []byte(`<?xml version="1.0"?>
<Notify>
  <CmdType>Keepalive</CmdType>
  <SN>1</SN>
  <DeviceID>34020000001320000001</DeviceID>
</Notify>`)

	// 未知设备
	tx := &fakeServerTx{}
	s.onMessage(newDeviceRequest(sip.MESSAGE, "34020000001320000001", keepalive), tx)
	require.NotNil(t, tx.res)
	assert.EqualValues(t, 404, tx.res.StatusCode)

	_, err := s.OpenSession("34020000001320000001", "192.168.1.64:5060")
	require.NoError(t, err)

	tx = &fakeServerTx{}
	s.onMessage(newDeviceRequest(sip.MESSAGE, "34020000001320000001", keepalive), tx)
	require.NotNil(t, tx.res)
	assert.EqualValues(t, 200, tx.res.StatusCode)

	// 非法消息体
	tx = &fakeServerTx{}
	s.onMessage(newDeviceRequest(sip.MESSAGE, "34020000001320000001", []byte("not xml")), tx)
	require.NotNil(t, tx.res)
	assert.EqualValues(t, 400, tx.res.StatusCode)
}

func TestOnNotifyWithoutSubscription(t *testing.T) {
	s := newTestService(t)
	defer s.Close()

	_, err := s.OpenSession("34020000001320000001", "192.168.1.64:5060")
	require.NoError(t, err)

	catalog := []byte(`<?xml version="1.0"?>
<Notify>
  <CmdType>Catalog</CmdType>
  <SN>5</SN>
  <DeviceID>34020000001320000001</DeviceID>
  <DeviceList Num="0"></DeviceList>
</Notify>`)

	req := newDeviceRequest(sip.NOTIFY, "34020000001320000001", catalog)
	req.AppendHeader(sip.NewHeader("Event", "Catalog;id=7"))

	tx := &fakeServerTx{}
	s.onNotify(req, tx)
	require.NotNil(t, tx.res)
	assert.EqualValues(t, 481, tx.res.StatusCode)
}
