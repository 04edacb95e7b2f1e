package cronrunner

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"k8s.io/klog/v2"
)

// klogLogger 把 cron 内部日志转到 klog
type klogLogger struct{}

func (klogLogger) Info(msg string, keysAndValues ...interface{}) {
	klog.V(6).InfoS(msg, keysAndValues...)
}

func (klogLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	klog.ErrorS(err, msg, keysAndValues...)
}

// Runner 定时任务调度，同一任务上一次未结束时跳过本次
type Runner struct {
	cron    *cron.Cron
	baseCtx context.Context
}

func New(baseCtx context.Context) *Runner {
	if baseCtx == nil {
		baseCtx = context.Background()
	}
	logger := klogLogger{}
	return &Runner{
		cron: cron.New(
			cron.WithLogger(logger),
			cron.WithChain(cron.Recover(logger), cron.SkipIfStillRunning(logger)),
		),
		baseCtx: baseCtx,
	}
}

// Add 注册任务，spec 支持标准五段式和 @every 等描述符
func (r *Runner) Add(name, spec string, job func(context.Context) error) (cron.EntryID, error) {
	return r.cron.AddFunc(spec, func() {
		start := time.Now()
		if err := job(r.baseCtx); err != nil {
			klog.Errorf("定时任务失败: name=%s, err=%v", name, err)
			return
		}
		klog.V(6).Infof("定时任务完成: name=%s, cost=%s", name, time.Since(start))
	})
}

func (r *Runner) Start() {
	klog.V(6).Infof("cron started, entries=%d", len(r.cron.Entries()))
	r.cron.Start()
}

// Stop 等待正在执行的任务结束
func (r *Runner) Stop() {
	ctx := r.cron.Stop()
	<-ctx.Done()
	klog.V(6).Infof("cron stopped")
}
