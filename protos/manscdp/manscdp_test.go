// Copyright (c) 2019,CAOHONGJU All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package manscdp

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEncodeQuery(t *testing.T) {
	body, err := Encode(&RecordQuery{
		CmdType:   CmdRecordInfo,
		SN:        17430,
		DeviceID:  "34020000001320000001",
		StartTime: "2020-05-01T00:00:00",
		EndTime:   "2020-05-02T00:00:00",
		Secrecy:   0,
		Type:      "all",
	})
	assert.NoError(t, err)
	assert.Contains(t, body, "<?xml version=\"1.0\"?>")
	assert.Contains(t, body, "<Query>")
	assert.Contains(t, body, "<CmdType>RecordInfo</CmdType>")
	assert.Contains(t, body, "<SN>17430</SN>")
	assert.Contains(t, body, "<DeviceID>34020000001320000001</DeviceID>")
	assert.Contains(t, body, "<StartTime>2020-05-01T00:00:00</StartTime>")
	assert.Contains(t, body, "<Secrecy>0</Secrecy>")
	assert.Contains(t, body, "<Type>all</Type>")
}

func TestEncodeControl(t *testing.T) {
	body, err := Encode(&Control{
		CmdType:  CmdDeviceControl,
		SN:       11,
		DeviceID: "34020000001320000001",
		PTZCmd:   "A50F0108818100BF",
	})
	assert.NoError(t, err)
	assert.Contains(t, body, "<Control>")
	assert.Contains(t, body, "<PTZCmd>A50F0108818100BF</PTZCmd>")
	assert.NotContains(t, body, "TeleBoot")
	assert.NotContains(t, body, "HomePosition")
}

func TestDecodeRecordInfo(t *testing.T) {
	data := []byte(`<?xml version="1.0"?>
<Response>
  <CmdType>RecordInfo</CmdType>
  <SN>17430</SN>
  <DeviceID>34020000001320000001</DeviceID>
  <SumNum>2</SumNum>
  <RecordList Num="2">
    <Item>
      <DeviceID>34020000001320000001</DeviceID>
      <Name>camera01</Name>
      <StartTime>2020-05-01T10:00:00</StartTime>
      <EndTime>2020-05-01T11:00:00</EndTime>
      <Secrecy>0</Secrecy>
      <Type>time</Type>
    </Item>
    <Item>
      <DeviceID>34020000001320000001</DeviceID>
      <Name>camera01</Name>
      <StartTime>2020-05-01T11:00:00</StartTime>
      <EndTime>2020-05-01T12:00:00</EndTime>
      <Secrecy>0</Secrecy>
      <Type>time</Type>
    </Item>
  </RecordList>
</Response>`)

	header, err := DecodeHeader(data)
	assert.NoError(t, err)
	assert.Equal(t, CmdRecordInfo, header.CmdType)
	assert.Equal(t, 17430, header.SN)

	resp := &RecordInfoResponse{}
	assert.NoError(t, Decode(data, resp))
	assert.Equal(t, 2, resp.SumNum)
	assert.Equal(t, 2, resp.RecordList.Num)
	assert.Len(t, resp.RecordList.Items, 2)
	assert.Equal(t, "2020-05-01T10:00:00", resp.RecordList.Items[0].StartTime)
}

func TestDecodeCatalogGB2312(t *testing.T) {
	// 设备侧常见：声明 GB2312 但内容为 ASCII 子集
	data := []byte(`<?xml version="1.0" encoding="GB2312"?>
<Notify>
  <CmdType>Catalog</CmdType>
  <SN>5</SN>
  <DeviceID>34020000001320000001</DeviceID>
  <SumNum>1</SumNum>
  <DeviceList Num="1">
    <Item>
      <DeviceID>34020000001320000002</DeviceID>
      <Name>IPC-01</Name>
      <Status>ON</Status>
    </Item>
  </DeviceList>
</Notify>`)

	notify := &CatalogNotify{}
	assert.NoError(t, Decode(data, notify))
	assert.Equal(t, CmdCatalog, notify.CmdType)
	assert.Len(t, notify.DeviceList.Items, 1)
	assert.Equal(t, "IPC-01", notify.DeviceList.Items[0].Name)
}

func TestDecodeMobilePosition(t *testing.T) {
	data := []byte(`<?xml version="1.0"?>
<Notify>
  <CmdType>MobilePosition</CmdType>
  <SN>6</SN>
  <DeviceID>34020000001320000001</DeviceID>
  <Time>2020-05-01T10:00:00</Time>
  <Longitude>116.397128</Longitude>
  <Latitude>39.916527</Latitude>
  <Speed>10.5</Speed>
</Notify>`)

	pos := &MobilePositionNotify{}
	assert.NoError(t, Decode(data, pos))
	assert.InDelta(t, 116.397128, pos.Longitude, 1e-9)
	assert.InDelta(t, 39.916527, pos.Latitude, 1e-9)
}
