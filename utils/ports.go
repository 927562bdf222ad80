// Copyright (c) 2019,CAOHONGJU All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package utils

import "sync"

// PortPool 媒体收流端口池。
// 每次保留相邻的一对端口：偶数口收 RTP，奇数口收 RTCP。
type PortPool struct {
	min  int
	max  int
	seed int
	l    sync.Mutex
}

// NewPortPool 创建端口池，范围为 [min,max]；min 调整为偶数
func NewPortPool(min, max int) *PortPool {
	if min&1 == 1 {
		min++
	}
	if max <= min {
		max = min + 1
	}
	return &PortPool{
		min:  min,
		max:  max,
		seed: min,
	}
}

// Reserve 保留一对端口
func (p *PortPool) Reserve() (rtp, rtcp int) {
	p.l.Lock()
	defer p.l.Unlock()

	rtp = p.seed
	rtcp = rtp + 1
	p.seed += 2
	if p.seed+1 > p.max {
		p.seed = p.min
	}
	return
}
