// Copyright (c) 2019,CAOHONGJU All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package media

import (
	"io"
	"runtime/debug"
	"sync"
	"sync/atomic"

	"github.com/cnotch/gbhub/stats"
	"github.com/cnotch/queue"
	"github.com/cnotch/xlog"
)

// Consumer 媒体帧消费者
type Consumer interface {
	io.Closer
	Consume(frame *Frame)
}

// Adapter 帧转发适配器。
// 同一时刻至多挂接一个媒体通道，帧经队列异步转发给消费者，
// 通道回调不会被消费端阻塞。
type Adapter struct {
	l        sync.Mutex
	consumer Consumer
	current  *forwarding
	Flow     stats.Flow   // 流量统计
	logger   *xlog.Logger // 日志对象
}

// NewAdapter 创建帧转发适配器
func NewAdapter(consumer Consumer, logger *xlog.Logger) *Adapter {
	return &Adapter{
		consumer: consumer,
		Flow:     stats.NewFlow(),
		logger:   logger,
	}
}

// Attach 按协商参数创建通道并开始转发；已有通道被先行分离。
func (a *Adapter) Attach(factory Factory, config ChannelConfig) error {
	a.l.Lock()
	defer a.l.Unlock()

	a.detach()

	channel, err := factory(config)
	if err != nil {
		return err
	}

	fw := &forwarding{
		channel:   channel,
		consumer:  a.consumer,
		recvQueue: queue.NewSyncQueue(),
		flow:      a.Flow,
		logger:    a.logger,
	}
	channel.OnFrame(fw.post)

	if err := channel.Start(); err != nil {
		return err
	}

	a.current = fw
	go fw.forward()
	return nil
}

// Detach 分离当前媒体通道，重复调用无副作用
func (a *Adapter) Detach() {
	a.l.Lock()
	defer a.l.Unlock()
	a.detach()
}

func (a *Adapter) detach() {
	if a.current == nil {
		return
	}
	fw := a.current
	a.current = nil
	fw.close()
}

// Attached 是否已挂接媒体通道
func (a *Adapter) Attached() bool {
	a.l.Lock()
	defer a.l.Unlock()
	return a.current != nil
}

// forwarding 一次通道挂接期间的转发状态
type forwarding struct {
	channel   Channel
	consumer  Consumer
	recvQueue *queue.SyncQueue
	closed    atomic.Bool
	flow      stats.Flow
	logger    *xlog.Logger
}

// 接收通道重组出的帧
func (fw *forwarding) post(frame *Frame) {
	if fw.closed.Load() {
		return
	}
	fw.recvQueue.Push(frame)
	fw.flow.AddIn(int64(frame.Size()))
}

func (fw *forwarding) close() {
	if !fw.closed.CompareAndSwap(false, true) {
		return
	}

	if err := fw.channel.Stop(); err != nil {
		fw.logger.Errorf("stop media channel: %v", err)
	}
	fw.recvQueue.Signal()
}

func (fw *forwarding) forward() {
	defer func() {
		defer func() { // 避免 handler 再 panic
			recover()
		}()

		if r := recover(); r != nil {
			fw.logger.Errorf("forward routine panic；r = %v \n %s", r, debug.Stack())
		}

		fw.consumer.Close()

		// 尽早通知GC，回收内存
		fw.recvQueue.Reset()
	}()

	for !fw.closed.Load() {
		f := fw.recvQueue.Pop()
		if f == nil {
			if !fw.closed.Load() {
				fw.logger.Warn("receive nil frame")
			}
			continue
		}

		frame := f.(*Frame)
		fw.consumer.Consume(frame)
		fw.flow.AddOut(int64(frame.Size()))
	}
}
