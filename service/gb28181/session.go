// Copyright (c) 2019,CAOHONGJU All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package gb28181

import (
	"errors"
	"net"
	"strconv"
	"sync"
	"sync/atomic"

	"github.com/cnotch/gbhub/config"
	"github.com/cnotch/gbhub/media"
	"github.com/cnotch/gbhub/protos/manscdp"
	"github.com/cnotch/gbhub/utils"
	"github.com/cnotch/gbhub/utils/sid"
	"github.com/cnotch/xlog"
	"github.com/emiago/sipgo/sip"
)

// 会话状态
const (
	StateIdle     = int32(iota) // 初始
	StateInviting               // 呼叫建立中
	StateActive                 // 呼叫已确认，媒体通道工作中
	StateClosed                 // 呼叫已结束
)

// 回放播放状态
const (
	PlayStatePlaying = int32(iota)
	PlayStatePaused
)

// 会话操作错误
var (
	ErrNoDialog        = errors.New("gb28181: no active call dialog")
	ErrNoMediaEndpoint = errors.New("gb28181: no remote media endpoint")
)

// Option 会话可选参数
type Option func(*Session)

// WithSIPIdentity 指定本级编码与信令地址，缺省取全局配置
func WithSIPIdentity(localID, localAddr string) Option {
	return func(s *Session) {
		s.localID = localID
		s.localAddr = localAddr
	}
}

// WithMediaIP 指定收流地址
func WithMediaIP(ip string) Option {
	return func(s *Session) { s.mediaIP = ip }
}

// WithPortReserver 指定收流端口分配器
func WithPortReserver(p PortReserver) Option {
	return func(s *Session) { s.ports = p }
}

// WithChannelFactory 指定媒体通道工厂
func WithChannelFactory(f media.Factory) Option {
	return func(s *Session) { s.factory = f }
}

// WithConsumer 指定媒体帧消费者
func WithConsumer(c media.Consumer) Option {
	return func(s *Session) { s.consumer = c }
}

// Session 单个前端设备的信令会话。
// 所有操作都可以并发调用，同一会话内按调用顺序串行执行。
type Session struct {
	// 创建时设置
	deviceID   string
	remote     string // 设备信令地址 host:port
	remoteHost string
	remotePort int
	account    config.AccountConfig
	localID    string
	localAddr  string
	mediaIP    string
	sender     Requester
	ports      PortReserver
	factory    media.Factory
	consumer   media.Consumer
	adapter    *media.Adapter
	logger     *xlog.Logger

	l         sync.Mutex
	state     int32 // 原子读取
	playState int32
	call      *dialog
	rtpPort   int
	rtcpPort  int
	bodySeq   int // MANSRTSP 消息体内嵌序号

	catalog  subscription
	position subscription

	catalogItems map[string]manscdp.CatalogItem
	lastPosition *manscdp.MobilePositionNotify
	lastAlarm    *manscdp.AlarmNotify

	sn uint32 // 命令 SN，进程内单调

	recordL     sync.Mutex
	recordCh    chan int
	recordItems []manscdp.RecordItem
}

// NewSession 创建设备会话
func NewSession(deviceID, remoteAddr string, sender Requester, opts ...Option) (*Session, error) {
	host, portstr, err := net.SplitHostPort(remoteAddr)
	if err != nil {
		return nil, err
	}
	port, err := strconv.Atoi(portstr)
	if err != nil {
		return nil, err
	}

	s := &Session{
		deviceID:   deviceID,
		remote:     remoteAddr,
		remoteHost: host,
		remotePort: port,
		account:    config.FindAccount(deviceID),
		localID:    config.SIPID(),
		localAddr:  config.LocalSIPAddr(),
		mediaIP:    config.MediaIP(),
		sender:     sender,
		state:      StateIdle,
	}
	for _, opt := range opts {
		opt(s)
	}

	if s.ports == nil {
		min, max := config.PortRange()
		s.ports = utils.NewPortPool(min, max)
	}
	if s.consumer == nil {
		s.consumer = discardConsumer{}
	}

	s.logger = xlog.L().With(xlog.Fields(
		xlog.F("device", deviceID),
		xlog.F("raddr", remoteAddr)))
	s.adapter = media.NewAdapter(s.consumer, s.logger)
	s.catalog.event = catalogEvent
	s.position.event = positionEvent
	return s, nil
}

// DeviceID 设备国标编码
func (s *Session) DeviceID() string {
	return s.deviceID
}

// State 呼叫状态
func (s *Session) State() int32 {
	return atomic.LoadInt32(&s.state)
}

// PlayState 回放播放状态
func (s *Session) PlayState() int32 {
	return atomic.LoadInt32(&s.playState)
}

// Media 媒体帧适配器，承载通道挂接状态和流量统计
func (s *Session) Media() *media.Adapter {
	return s.adapter
}

// Close 结束会话：终止呼叫并退订全部订阅
func (s *Session) Close() error {
	s.DisableCatalog()
	s.DisableMobilePosition()
	return s.Stop()
}

// nextSN 下一个命令 SN
func (s *Session) nextSN() int {
	return int(atomic.AddUint32(&s.sn, 1))
}

func (s *Session) setState(state int32) {
	atomic.StoreInt32(&s.state, state)
}

func (s *Session) remoteURI() sip.Uri {
	return sip.Uri{
		User: s.deviceID,
		Host: s.remoteHost,
		Port: s.remotePort,
	}
}

func (s *Session) localURI() sip.Uri {
	host, portstr, err := net.SplitHostPort(s.localAddr)
	if err != nil {
		return sip.Uri{User: s.localID, Host: s.localAddr}
	}
	port, _ := strconv.Atoi(portstr)
	return sip.Uri{User: s.localID, Host: host, Port: port}
}

// localHost 本级信令 host 部分
func (s *Session) localHost() string {
	host, _, err := net.SplitHostPort(s.localAddr)
	if err != nil {
		return s.localAddr
	}
	return host
}

// newRequest 在指定对话上构造请求，消耗一个 CSeq
func (s *Session) newRequest(method sip.RequestMethod, d *dialog, contentType string) *sip.Request {
	return s.newDialogRequest(method, d, d.nextCSeq(), contentType)
}

// newDialogRequest 在指定对话上按给定的 CSeq 序号构造请求
func (s *Session) newDialogRequest(method sip.RequestMethod, d *dialog, seq uint32, contentType string) *sip.Request {
	req := sip.NewRequest(method, s.remoteURI())

	from := &sip.FromHeader{
		Address: s.localURI(),
		Params:  sip.NewParams().Add("tag", d.fromTag),
	}
	req.AppendHeader(from)

	to := &sip.ToHeader{Address: s.remoteURI(), Params: sip.NewParams()}
	if d.toTag != "" {
		to.Params.Add("tag", d.toTag)
	}
	req.AppendHeader(to)

	callID := sip.CallIDHeader(d.callID)
	req.AppendHeader(&callID)
	req.AppendHeader(&sip.CSeqHeader{SeqNo: seq, MethodName: method})
	req.AppendHeader(&sip.ContactHeader{Address: s.localURI()})

	maxForwards := sip.MaxForwardsHeader(70)
	req.AppendHeader(&maxForwards)
	req.AppendHeader(sip.NewHeader("User-Agent", config.UserAgent))

	if contentType != "" {
		ct := sip.ContentTypeHeader(contentType)
		req.AppendHeader(&ct)
	}
	return req
}

// subject Subject 头：设备编码:0,本级编码:序号
func (s *Session) subject() string {
	return s.deviceID + ":0," + s.localID + ":" + sid.NewID().String()
}

// discardConsumer 没有配置消费者时的空实现
type discardConsumer struct{}

func (discardConsumer) Consume(*media.Frame) {}
func (discardConsumer) Close() error         { return nil }
