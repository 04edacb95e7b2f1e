package cronrunner

import (
	"context"
	"time"

	"k8s.io/klog/v2"
)

type orphanSweeper interface {
	SweepOrphans(ctx context.Context, grace time.Duration) (int, error)
}

// OrphanSweepJob 清理没有被任何封面或 Logo 引用的上传文件
func OrphanSweepJob(files orphanSweeper, grace time.Duration) func(context.Context) error {
	return func(ctx context.Context) error {
		removed, err := files.SweepOrphans(ctx, grace)
		if err != nil {
			return err
		}
		if removed > 0 {
			klog.Infof("已清理孤立文件 %d 个", removed)
		}
		return nil
	}
}

type expirySweeper interface {
	Sweep(ctx context.Context) (int, error)
}

// CacheSweepJob 回收内存缓存里已过期但没人再读的条目
func CacheSweepJob(store expirySweeper) func(context.Context) error {
	return func(ctx context.Context) error {
		removed, err := store.Sweep(ctx)
		if err != nil {
			return err
		}
		klog.V(6).Infof("已回收过期缓存 %d 条", removed)
		return nil
	}
}

// RegisterCacheSweep 只有内存缓存需要，redis 自行过期
func RegisterCacheSweep(r *Runner, store expirySweeper, spec string) error {
	if spec == "" {
		return nil
	}
	_, err := r.Add("cache-sweep", spec, CacheSweepJob(store))
	return err
}

// RegisterJobs 注册全部定时任务
func RegisterJobs(r *Runner, files orphanSweeper, sweepSpec string, grace time.Duration) error {
	if sweepSpec == "" {
		klog.V(6).Infof("未配置孤立文件清理，跳过")
		return nil
	}
	_, err := r.Add("orphan-sweep", sweepSpec, OrphanSweepJob(files, grace))
	return err
}
