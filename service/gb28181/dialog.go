// Copyright (c) 2019,CAOHONGJU All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package gb28181

import (
	"github.com/cnotch/gbhub/utils/sid"
	"github.com/emiago/sipgo/sip"
)

// dialog 一次 SIP 对话的标识与事务序号。
// cseq 从 1 起在对话内单调递增，ACK 沿用被确认请求的序号。
type dialog struct {
	callID  string
	fromTag string
	toTag   string
	cseq    uint32
	lastReq *sip.Request // 对话内最近发出的请求
}

func newDialog(host string) *dialog {
	return &dialog{
		callID:  sid.CallID(host),
		fromTag: sid.Tag(),
	}
}

func (d *dialog) nextCSeq() uint32 {
	d.cseq++
	return d.cseq
}
