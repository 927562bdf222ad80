// Copyright (c) 2019,CAOHONGJU All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package media

import (
	"sync"
	"testing"
	"time"

	"github.com/cnotch/xlog"
	"github.com/stretchr/testify/assert"
)

type testChannel struct {
	fn      func(*Frame)
	started bool
	stopped bool
}

func (c *testChannel) OnFrame(fn func(*Frame)) { c.fn = fn }
func (c *testChannel) Start() error            { c.started = true; return nil }
func (c *testChannel) Stop() error             { c.stopped = true; return nil }

type testConsumer struct {
	l      sync.Mutex
	frames []*Frame
	closed bool
}

func (c *testConsumer) Consume(frame *Frame) {
	c.l.Lock()
	c.frames = append(c.frames, frame)
	c.l.Unlock()
}

func (c *testConsumer) Close() error {
	c.l.Lock()
	c.closed = true
	c.l.Unlock()
	return nil
}

func (c *testConsumer) count() int {
	c.l.Lock()
	defer c.l.Unlock()
	return len(c.frames)
}

func TestAdapterForward(t *testing.T) {
	consumer := &testConsumer{}
	adapter := NewAdapter(consumer, xlog.L())

	channel := &testChannel{}
	factory := func(config ChannelConfig) (Channel, error) { return channel, nil }

	err := adapter.Attach(factory, ChannelConfig{Kind: ChannelUDP})
	assert.NoError(t, err)
	assert.True(t, channel.started)
	assert.True(t, adapter.Attached())

	channel.fn(&Frame{FrameType: FrameVideo, Payload: []byte{0, 1, 2, 3}})
	channel.fn(&Frame{FrameType: FrameVideo, Payload: []byte{4, 5}})

	assert.Eventually(t, func() bool { return consumer.count() == 2 },
		time.Second, 10*time.Millisecond)
	assert.EqualValues(t, 6, adapter.Flow.GetSample().InBytes)

	adapter.Detach()
	assert.True(t, channel.stopped)
	assert.False(t, adapter.Attached())
	assert.Eventually(t, func() bool {
		consumer.l.Lock()
		defer consumer.l.Unlock()
		return consumer.closed
	}, time.Second, 10*time.Millisecond)
}

func TestAdapterReattach(t *testing.T) {
	consumer := &testConsumer{}
	adapter := NewAdapter(consumer, xlog.L())

	first := &testChannel{}
	second := &testChannel{}
	channels := []*testChannel{first, second}
	i := 0
	factory := func(config ChannelConfig) (Channel, error) {
		c := channels[i]
		i++
		return c, nil
	}

	assert.NoError(t, adapter.Attach(factory, ChannelConfig{}))
	assert.NoError(t, adapter.Attach(factory, ChannelConfig{}))

	// 再次挂接会先分离旧通道
	assert.True(t, first.stopped)
	assert.True(t, second.started)
	assert.False(t, second.stopped)

	adapter.Detach()
	adapter.Detach() // 重复分离无副作用
	assert.True(t, second.stopped)
}

func TestAdapterDetachDuringPost(t *testing.T) {
	consumer := &testConsumer{}
	adapter := NewAdapter(consumer, xlog.L())

	channel := &testChannel{}
	factory := func(config ChannelConfig) (Channel, error) { return channel, nil }
	assert.NoError(t, adapter.Attach(factory, ChannelConfig{Kind: ChannelUDP}))

	// 收流回调与分离并发进行
	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 100; i++ {
			channel.fn(&Frame{FrameType: FrameVideo, Payload: []byte{byte(i)}})
		}
	}()

	time.Sleep(time.Millisecond)
	adapter.Detach()
	<-done

	assert.True(t, channel.stopped)
	assert.Eventually(t, func() bool {
		consumer.l.Lock()
		defer consumer.l.Unlock()
		return consumer.closed
	}, time.Second, 10*time.Millisecond)
}
