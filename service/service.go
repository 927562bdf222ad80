// Copyright (c) 2019,CAOHONGJU All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package service

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/cnotch/gbhub/config"
	"github.com/cnotch/gbhub/media"
	"github.com/cnotch/gbhub/service/gb28181"
	"github.com/cnotch/gbhub/stats"
	"github.com/cnotch/gbhub/utils"
	"github.com/cnotch/scheduler"
	"github.com/cnotch/xlog"
	"github.com/emiago/sipgo"
	"github.com/emiago/sipgo/sip"
	"github.com/emitter-io/address"
)

// Service 网络服务对象(服务的入口)
type Service struct {
	context context.Context
	cancel  context.CancelFunc
	logger  *xlog.Logger
	ua      *sipgo.UserAgent
	server  *sipgo.Server
	client  *sipgo.Client

	factory  media.Factory
	ports    *utils.PortPool
	sessions sync.Map // 设备编码 -> *gb28181.Session
	conns    stats.Conns
}

// NewService 创建服务
func NewService(ctx context.Context, l *xlog.Logger, factory media.Factory) (s *Service, err error) {
	ctx, cancel := context.WithCancel(ctx)

	ua, err := sipgo.NewUA()
	if err != nil {
		cancel()
		return nil, err
	}
	server, err := sipgo.NewServer(ua)
	if err != nil {
		cancel()
		return nil, err
	}
	client, err := sipgo.NewClient(ua)
	if err != nil {
		cancel()
		return nil, err
	}

	min, max := config.PortRange()
	s = &Service{
		context: ctx,
		cancel:  cancel,
		logger:  l,
		ua:      ua,
		server:  server,
		client:  client,
		factory: factory,
		ports:   utils.NewPortPool(min, max),
		conns:   stats.NewConns(),
	}

	server.OnMessage(s.onMessage)
	server.OnNotify(s.onNotify)

	// 定时输出各会话的流量统计
	scheduler.PeriodFunc(time.Minute*5, time.Minute*5, s.logFlow,
		"The task of scheduled output of session flow statistics(5minutes)")

	s.logger.Info("service configured")
	return s, nil
}

// OpenSession 打开设备会话；同一设备共用一个会话
func (s *Service) OpenSession(deviceID, remoteAddr string) (*gb28181.Session, error) {
	if v, ok := s.sessions.Load(deviceID); ok {
		return v.(*gb28181.Session), nil
	}

	session, err := gb28181.NewSession(deviceID, remoteAddr, s,
		gb28181.WithPortReserver(s.ports),
		gb28181.WithChannelFactory(s.factory))
	if err != nil {
		return nil, err
	}

	actual, loaded := s.sessions.LoadOrStore(deviceID, session)
	if loaded {
		_ = session.Close()
	} else {
		s.conns.Add()
	}
	return actual.(*gb28181.Session), nil
}

// GetSession 获取设备会话
func (s *Service) GetSession(deviceID string) (*gb28181.Session, bool) {
	v, ok := s.sessions.Load(deviceID)
	if !ok {
		return nil, false
	}
	return v.(*gb28181.Session), true
}

// CloseSession 结束并移除设备会话
func (s *Service) CloseSession(deviceID string) {
	if v, loaded := s.sessions.LoadAndDelete(deviceID); loaded {
		s.conns.Release()
		if err := v.(*gb28181.Session).Close(); err != nil {
			s.logger.Errorf("close session %s: %v", deviceID, err)
		}
	}
}

// Send 实现 gb28181.Requester，尽力送出请求
func (s *Service) Send(dest string, req *sip.Request) error {
	req.SetDestination(dest)
	return s.client.WriteRequest(req)
}

// SendReliable 以客户端事务发送，由事务层按计时器重发；
// 最终应答回送给对应的设备会话
func (s *Service) SendReliable(dest string, req *sip.Request) error {
	req.SetDestination(dest)
	tx, err := s.client.TransactionRequest(s.context, req)
	if err != nil {
		return err
	}
	go s.waitResponse(req, tx)
	return nil
}

func (s *Service) waitResponse(req *sip.Request, tx sip.ClientTransaction) {
	defer tx.Terminate()
	for {
		select {
		case res, ok := <-tx.Responses():
			if !ok {
				return
			}
			if res.StatusCode < 200 {
				continue // 临时应答
			}
			if res.StatusCode >= 300 {
				s.logger.Warnf("%s rejected: %d %s", req.Method, res.StatusCode, res.Reason)
				return
			}
			if req.Method == sip.INVITE {
				s.confirmCall(req, res)
			}
			return
		case <-tx.Done():
			return
		case <-s.context.Done():
			return
		}
	}
}

// confirmCall 用成功应答确认呼叫
func (s *Service) confirmCall(req *sip.Request, res *sip.Response) {
	deviceID := req.Recipient.User
	session, ok := s.GetSession(deviceID)
	if !ok {
		s.logger.Warnf("invite response for unknown device: %s", deviceID)
		return
	}

	toTag, _ := res.To().Params.Get("tag")
	if err := session.AcknowledgeSDP(toTag, string(res.Body())); err != nil {
		s.logger.Errorf("confirm call %s: %v", deviceID, err)
	}
}

// onMessage 处理设备上报的 MESSAGE 请求
func (s *Service) onMessage(req *sip.Request, tx sip.ServerTransaction) {
	deviceID := req.From().Address.User
	session, ok := s.GetSession(deviceID)
	if !ok {
		s.respond(req, tx, 404, "Not Found")
		return
	}

	if err := session.HandleMessage(req.Body()); err != nil {
		s.respond(req, tx, 400, "Bad Request")
		return
	}
	s.respond(req, tx, 200, "OK")
}

// onNotify 处理订阅产生的 NOTIFY 请求
func (s *Service) onNotify(req *sip.Request, tx sip.ServerTransaction) {
	deviceID := req.From().Address.User
	session, ok := s.GetSession(deviceID)
	if !ok {
		s.respond(req, tx, 404, "Not Found")
		return
	}

	event := ""
	if headers := req.GetHeaders("Event"); len(headers) > 0 {
		event = headers[0].Value()
	}

	switch err := session.HandleNotify(event, req.Body()); err {
	case nil:
		s.respond(req, tx, 200, "OK")
	case gb28181.ErrUnknownEvent:
		s.respond(req, tx, 481, "Subscription Does Not Exist")
	default:
		s.respond(req, tx, 400, "Bad Request")
	}
}

func (s *Service) respond(req *sip.Request, tx sip.ServerTransaction, code sip.StatusCode, reason string) {
	res := sip.NewResponseFromRequest(req, code, reason, nil)
	if err := tx.Respond(res); err != nil {
		s.logger.Errorf("respond %d to %s: %v", code, req.Method, err)
	}
}

// Listen starts the service.
func (s *Service) Listen() (err error) {
	defer s.Close()
	s.hookSignals()

	addr, err := address.Parse(config.Addr(), 5060)
	if err != nil {
		s.logger.Panic(err.Error())
	}

	s.logger.Infof("starting the sip listener, addr = %s.", addr.String())
	go func() {
		if err := s.server.ListenAndServe(s.context, "tcp", addr.String()); err != nil {
			s.logger.Warnf("sip tcp listener exited: %v", err)
		}
	}()

	s.logger.Infof("service started(%s).", config.Version)
	return s.server.ListenAndServe(s.context, "udp", addr.String())
}

// logFlow 输出进程和各会话的采样统计
func (s *Service) logFlow() {
	proc := stats.MeasureRuntime()
	sample := s.conns.GetSample()
	s.logger.Infof("proc: cpu = %.1f%%, priv = %dKB, sessions = %d/%d",
		proc.CPU, proc.Priv, sample.Active, sample.Total)

	s.sessions.Range(func(key, value interface{}) bool {
		session := value.(*gb28181.Session)
		sample := session.Media().Flow.GetSample()
		s.logger.Infof("session %s flow: in = %dKB, out = %dKB",
			key, sample.InBytes/1024, sample.OutBytes/1024)
		return true
	})
}

// Close closes gracefully the service.,
func (s *Service) Close() {
	if s.cancel != nil {
		s.cancel()
	}

	// 停止计划任务
	jobs := scheduler.Jobs()
	for _, job := range jobs {
		job.Cancel()
	}

	// 结束全部会话
	s.sessions.Range(func(key, value interface{}) bool {
		_ = value.(*gb28181.Session).Close()
		s.sessions.Delete(key)
		return true
	})

	if s.ua != nil {
		_ = s.ua.Close()
	}
}

// OnSignal starts the signal processing and makes su
func (s *Service) hookSignals() {
	c := make(chan os.Signal, 1)
	signal.Notify(c, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		for sig := range c {
			s.onSignal(sig)
		}
	}()
}

// OnSignal will be called when a OS-level signal is received.
func (s *Service) onSignal(sig os.Signal) {
	switch sig {
	case syscall.SIGTERM:
		fallthrough
	case syscall.SIGINT:
		s.logger.Warn(fmt.Sprintf("received signal %s, exiting...", sig.String()))
		s.Close()
		os.Exit(0)
	}
}
