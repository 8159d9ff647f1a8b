// Package tabsync は共有ストアの変更に追従して「現在のユーザー」ビューを
// 再導出し、購読者へ再配信する。
//
// 複数の独立したコンポーネントが同じ永続ストアを共有する構成で、
// 他方の書き込み後に各コンポーネントの見え方を揃えるための仕組み。
// 保証は弱い: 書き込み完了後いずれ通知が届き、最後の書き込みが勝つ。
// 競合の解決はコレクション全体の上書き以外に行わない。
package tabsync

import (
	"strings"
	"sync"

	"github.com/piercelens/storefront/internal/model"
	"github.com/piercelens/storefront/internal/repository"
)

// CurrentUserResolver は現在のユーザーを解決するインターフェース。
// account.Serviceの部分集合として定義する。
type CurrentUserResolver interface {
	CurrentUser() *model.ResolvedUser
}

// ChangeSource は変更通知を購読できるストアのインターフェース。
// storage.FileStoreの部分集合として定義する。
type ChangeSource interface {
	Watch(fn func(key string))
}

// Watcher はセッション・ユーザー関連キーの変更を監視する。
type Watcher struct {
	resolver CurrentUserResolver

	mu        sync.Mutex
	observers []func(*model.ResolvedUser)
}

// New はWatcherを生成してストアの変更通知に接続する。
func New(source ChangeSource, resolver CurrentUserResolver) *Watcher {
	w := &Watcher{resolver: resolver}
	source.Watch(w.onStoreChange)
	return w
}

// Subscribe は「現在のユーザー」が再導出されるたびに呼ばれる購読者を登録する。
// 未認証になった場合はnilが配信される。登録解除はできない。
func (w *Watcher) Subscribe(fn func(current *model.ResolvedUser)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.observers = append(w.observers, fn)
}

// onStoreChange はストアの変更キーを検査し、セッション・ユーザー関連の
// 変更であれば現在のユーザーを解決し直して購読者へ配信する。
func (w *Watcher) onStoreChange(key string) {
	if !isAccountKey(key) {
		return
	}

	current := w.resolver.CurrentUser()

	w.mu.Lock()
	observers := make([]func(*model.ResolvedUser), len(w.observers))
	copy(observers, w.observers)
	w.mu.Unlock()

	for _, fn := range observers {
		fn(current)
	}
}

// isAccountKey は「現在のユーザー」の見え方に影響するキーかどうかを判定する。
func isAccountKey(key string) bool {
	if key == repository.KeySession || key == repository.KeyUsers {
		return true
	}
	return strings.HasPrefix(key, repository.KeyProfilePrefix)
}
