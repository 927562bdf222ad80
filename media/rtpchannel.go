// Copyright (c) 2019,CAOHONGJU All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package media

import (
	"encoding/binary"
	"fmt"
	"io"
	"net"
	"runtime/debug"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/cnotch/gbhub/config"
	"github.com/cnotch/gbhub/network"
	"github.com/cnotch/gbhub/network/socket/buffered"
	"github.com/cnotch/xlog"
	"github.com/pion/rtp"
)

const maxUDPPacketSize = 4 * 1024

// rtpChannel 按协商参数收取 RTP 流并重组为帧。
// UDP 方式绑定本地端口等流；TCP 方式按角色主动连接或等待设备连入，
// 流内采用 2 字节长度前缀分包。
type rtpChannel struct {
	cfg     ChannelConfig
	logger  *xlog.Logger
	onFrame func(*Frame)

	udpConn  *net.UDPConn
	rtcpConn *net.UDPConn
	listener net.Listener
	tcpConn  *buffered.Conn

	sorter    packetSorter
	assembler frameAssembler

	closed atomic.Bool
}

// OpenChannel 创建 RTP 媒体通道
func OpenChannel(cfg ChannelConfig) (Channel, error) {
	c := &rtpChannel{
		cfg: cfg,
		logger: xlog.L().With(xlog.Fields(
			xlog.F("remote", net.JoinHostPort(cfg.RemoteIP, strconv.Itoa(cfg.RemotePort))))),
	}
	c.sorter.max = cfg.OutOfOrderMax
	return c, nil
}

// OnFrame 注册帧回调
func (c *rtpChannel) OnFrame(fn func(*Frame)) {
	c.onFrame = fn
}

// Start 建立传输并开始收流
func (c *rtpChannel) Start() error {
	if c.onFrame == nil {
		return fmt.Errorf("rtp channel: frame callback not set")
	}
	c.assembler.emit = c.emitFrame

	if c.cfg.Kind == ChannelTCP {
		return c.startTCP()
	}
	return c.startUDP()
}

func (c *rtpChannel) startUDP() error {
	conn, err := net.ListenUDP("udp", &net.UDPAddr{Port: c.cfg.LocalRTPPort})
	if err != nil {
		return err
	}
	c.udpConn = conn

	// RTCP 端口同时占住，报告内容不做处理
	if c.cfg.LocalRTCPPort > 0 {
		c.rtcpConn, err = net.ListenUDP("udp", &net.UDPAddr{Port: c.cfg.LocalRTCPPort})
		if err != nil {
			_ = conn.Close()
			return err
		}
		go c.drainRTCP()
	}

	go c.loopUDP()
	return nil
}

func (c *rtpChannel) startTCP() error {
	if c.cfg.TCPRole == "active" {
		conn, err := net.DialTimeout("tcp",
			net.JoinHostPort(c.cfg.RemoteIP, strconv.Itoa(c.cfg.RemotePort)),
			config.NetTimeout())
		if err != nil {
			return err
		}
		c.tcpConn = buffered.NewConn(conn, buffered.BufferSize(config.NetBufferSize()))
		go c.loopTCP(c.tcpConn)
		return nil
	}

	l, err := net.Listen("tcp", ":"+strconv.Itoa(c.cfg.LocalRTPPort))
	if err != nil {
		return err
	}
	c.listener = l
	go c.accept()
	return nil
}

// Stop 停止收流并释放传输资源
func (c *rtpChannel) Stop() error {
	c.closed.Store(true)
	if c.udpConn != nil {
		_ = c.udpConn.Close()
	}
	if c.rtcpConn != nil {
		_ = c.rtcpConn.Close()
	}
	if c.listener != nil {
		_ = c.listener.Close()
	}
	if c.tcpConn != nil {
		_ = c.tcpConn.Close()
	}
	return nil
}

// accept 等待设备以被动协商方式连入，只接受首个连接
func (c *rtpChannel) accept() {
	if tl, ok := c.listener.(*net.TCPListener); ok {
		_ = tl.SetDeadline(time.Now().Add(config.NetTimeout()))
	}

	conn, err := c.listener.Accept()
	if err != nil {
		if !c.closed.Load() {
			c.logger.Errorf("rtp channel accept failed: %v", err)
		}
		return
	}
	_ = c.listener.Close()

	// NAT 后设备的源地址可能与协商地址不同，只提示不拒绝
	if ip := network.GetIP(conn.RemoteAddr()); ip != c.cfg.RemoteIP {
		c.logger.Warnf("rtp connection from unexpected address: %s", ip)
	}

	c.tcpConn = buffered.NewConn(conn, buffered.BufferSize(config.NetBufferSize()))
	c.loopTCP(c.tcpConn)
}

func (c *rtpChannel) loopUDP() {
	defer func() {
		if r := recover(); r != nil {
			c.logger.Errorf("rtp channel panic; %v \n %s", r, debug.Stack())
		}
	}()

	buf := make([]byte, maxUDPPacketSize)
	for !c.closed.Load() {
		n, _, err := c.udpConn.ReadFromUDP(buf)
		if err != nil {
			if !c.closed.Load() {
				c.logger.Errorf("rtp channel read failed: %v", err)
			}
			return
		}

		data := make([]byte, n)
		copy(data, buf[:n])
		c.push(data)
	}
}

func (c *rtpChannel) loopTCP(conn *buffered.Conn) {
	defer func() {
		if r := recover(); r != nil {
			c.logger.Errorf("rtp channel panic; %v \n %s", r, debug.Stack())
		}
	}()

	reader := conn.Reader()
	var prefix [2]byte
	for !c.closed.Load() {
		if _, err := io.ReadFull(reader, prefix[:]); err != nil {
			if !c.closed.Load() {
				c.logger.Errorf("rtp channel read failed: %v", err)
			}
			return
		}

		size := int(binary.BigEndian.Uint16(prefix[:]))
		data := make([]byte, size)
		if _, err := io.ReadFull(reader, data); err != nil {
			if !c.closed.Load() {
				c.logger.Errorf("rtp channel read failed: %v", err)
			}
			return
		}
		c.push(data)
	}
}

func (c *rtpChannel) drainRTCP() {
	buf := make([]byte, maxUDPPacketSize)
	for !c.closed.Load() {
		if _, _, err := c.rtcpConn.ReadFromUDP(buf); err != nil {
			return
		}
	}
}

func (c *rtpChannel) push(data []byte) {
	var pkt rtp.Packet
	if err := pkt.Unmarshal(data); err != nil {
		c.logger.Warnf("drop malformed rtp packet: %v", err)
		return
	}

	for _, p := range c.sorter.push(&pkt) {
		c.assembler.push(p)
	}
}

func (c *rtpChannel) emitFrame(frame *Frame) {
	c.onFrame(frame)
}

// packetSorter 用一个小窗口容忍 RTP 乱序。
// 包按序号插入窗口，窗口满时弹出最小序号的包，保证交付顺序。
type packetSorter struct {
	max    int
	window []*rtp.Packet
}

func (s *packetSorter) push(pkt *rtp.Packet) (ready []*rtp.Packet) {
	if s.max <= 0 {
		return []*rtp.Packet{pkt}
	}

	// 按序号插入，序号比较须处理回绕
	i := len(s.window)
	for ; i > 0; i-- {
		diff := int16(pkt.SequenceNumber - s.window[i-1].SequenceNumber)
		if diff > 0 {
			break
		}
		if diff == 0 { // 重复包
			return nil
		}
	}
	s.window = append(s.window, nil)
	copy(s.window[i+1:], s.window[i:])
	s.window[i] = pkt

	for len(s.window) > s.max {
		ready = append(ready, s.window[0])
		copy(s.window, s.window[1:])
		s.window = s.window[:len(s.window)-1]
	}
	return
}

// frameAssembler 按时间戳把 RTP 包重组为帧。
// 时间戳变化时交付累积的帧；标记位仅作为帧尾的提示。
type frameAssembler struct {
	emit    func(*Frame)
	pending []*rtp.Packet
}

func (a *frameAssembler) push(pkt *rtp.Packet) {
	if len(a.pending) > 0 && a.pending[0].Timestamp != pkt.Timestamp {
		a.flush()
	}

	a.pending = append(a.pending, pkt)
	if pkt.Marker {
		a.flush()
	}
}

func (a *frameAssembler) flush() {
	if len(a.pending) == 0 {
		return
	}

	size := 0
	for _, p := range a.pending {
		size += len(p.Payload)
	}
	payload := make([]byte, 0, size)
	for _, p := range a.pending {
		payload = append(payload, p.Payload...)
	}

	a.emit(&Frame{
		FrameType: FrameVideo,
		Timestamp: a.pending[0].Timestamp,
		Payload:   payload,
		Packets:   a.pending,
	})
	a.pending = nil
}
