// Package cleanup は期限切れクッキーレコードの自動削除ジョブを提供する。
// 期限切れのレコードは読み出し時点で不可視だが、永続ストアの容量を消費し続けるため、
// 定期バッチで物理的に回収する。
package cleanup

import (
	"context"
	"log/slog"
	"time"
)

// Purger は期限切れレコードの回収インターフェース。
// storage.CookieJarの部分集合として定義する。
type Purger interface {
	PurgeExpired() int
}

// CleanupJob は期限切れクッキーレコードの自動削除ジョブ。
// 定期実行のバッチジョブとして設計されており、冪等な削除処理を保証する。
type CleanupJob struct {
	purger Purger
	logger *slog.Logger
}

// NewCleanupJob は新しいCleanupJobを生成する。
func NewCleanupJob(purger Purger, logger *slog.Logger) *CleanupJob {
	return &CleanupJob{
		purger: purger,
		logger: logger,
	}
}

// Run は期限切れレコードを1回回収する。
// 冪等: 削除対象がない場合でもエラーにならない。
func (j *CleanupJob) Run() {
	start := time.Now()
	purged := j.purger.PurgeExpired()

	if purged > 0 {
		j.logger.Info("期限切れレコードを回収しました",
			slog.Int("purged_count", purged),
			slog.Float64("duration_ms", float64(time.Since(start).Milliseconds())),
		)
	}
}

// Loop は指定間隔でRunを繰り返す。コンテキストのキャンセルで停止する。
func (j *CleanupJob) Loop(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			j.Run()
		case <-ctx.Done():
			return
		}
	}
}
