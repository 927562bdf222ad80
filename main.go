// Copyright (c) 2019,CAOHONGJU All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package main

import (
	"context"

	"github.com/cnotch/gbhub/config"
	"github.com/cnotch/gbhub/media"
	"github.com/cnotch/gbhub/service"
	"github.com/cnotch/scheduler"
	"github.com/cnotch/xlog"
)

func main() {
	// 初始化配置
	config.InitConfig()
	// 初始化全局计划任务
	scheduler.SetPanicHandler(func(job *scheduler.ManagedJob, r interface{}) {
		xlog.Errorf("scheduler task panic. tag: %v, recover: %v", job.Tag, r)
	})

	// Start new service
	svc, err := service.NewService(context.Background(), xlog.L(), media.OpenChannel)
	if err != nil {
		xlog.L().Panic(err.Error())
	}

	// Listen and serve
	if err := svc.Listen(); err != nil {
		xlog.L().Errorf("service exited: %v", err)
	}
}
