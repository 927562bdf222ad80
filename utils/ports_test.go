// Copyright (c) 2019,CAOHONGJU All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPortPoolReserve(t *testing.T) {
	pool := NewPortPool(10000, 10007)

	rtp, rtcp := pool.Reserve()
	assert.Equal(t, 10000, rtp)
	assert.Equal(t, 10001, rtcp)
	assert.Zero(t, rtp&1)

	rtp, rtcp = pool.Reserve()
	assert.Equal(t, 10002, rtp)
	assert.Equal(t, 10003, rtcp)
}

func TestPortPoolWrap(t *testing.T) {
	pool := NewPortPool(10000, 10003)

	pool.Reserve()
	pool.Reserve()
	rtp, _ := pool.Reserve() // 范围用尽，回绕
	assert.Equal(t, 10000, rtp)
}

func TestPortPoolOddMin(t *testing.T) {
	pool := NewPortPool(10001, 10007)
	rtp, _ := pool.Reserve()
	assert.Equal(t, 10002, rtp)
}
