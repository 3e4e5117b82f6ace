package poller

import (
	"context"
	"time"
)

// 一定間隔で再取得を回す小さな部品。ライダー／店舗の画面は購読ではなく
// このポーリングで更新する（数十秒の遅れは許容、という設計判断）。
// ctxが落ちたら止まるので、画面を閉じたら取り残しはない。
type Poller struct {
	interval time.Duration
}

func New(interval time.Duration) *Poller {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	return &Poller{interval: interval}
}

func (p *Poller) Interval() time.Duration { return p.interval }

// Runはまず1回fnを実行し、以後intervalごとに繰り返す。
// fnのエラーは呼び出しを止めない（次の周期でリトライ）。
func (p *Poller) Run(ctx context.Context, fn func(ctx context.Context) error) {
	if err := fn(ctx); err != nil && ctx.Err() != nil {
		return
	}

	t := time.NewTicker(p.interval)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			_ = fn(ctx)
		}
	}
}
