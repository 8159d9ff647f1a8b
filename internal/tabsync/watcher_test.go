package tabsync

import (
	"testing"

	"github.com/piercelens/storefront/internal/model"
	"github.com/piercelens/storefront/internal/repository"
)

// --- モック ---

type mockChangeSource struct {
	watchers []func(key string)
}

func (m *mockChangeSource) Watch(fn func(key string)) {
	m.watchers = append(m.watchers, fn)
}

func (m *mockChangeSource) emit(key string) {
	for _, fn := range m.watchers {
		fn(key)
	}
}

type mockResolver struct {
	currentUserFn func() *model.ResolvedUser
}

func (m *mockResolver) CurrentUser() *model.ResolvedUser {
	if m.currentUserFn != nil {
		return m.currentUserFn()
	}
	return nil
}

// --- テスト ---

// TestWatcher_RederivesOnSessionChange はセッションキーの変更で現在のユーザーが
// 解決し直され、購読者へ配信されることを検証する。
func TestWatcher_RederivesOnSessionChange(t *testing.T) {
	source := &mockChangeSource{}
	resolver := &mockResolver{
		currentUserFn: func() *model.ResolvedUser {
			return &model.ResolvedUser{Email: "a@example.com", Name: "Alpha"}
		},
	}

	w := New(source, resolver)

	var delivered []*model.ResolvedUser
	w.Subscribe(func(current *model.ResolvedUser) {
		delivered = append(delivered, current)
	})

	source.emit(repository.KeySession)

	if len(delivered) != 1 {
		t.Fatalf("deliveries = %d, want 1", len(delivered))
	}
	if delivered[0] == nil || delivered[0].Email != "a@example.com" {
		t.Errorf("delivered = %+v", delivered[0])
	}
}

// TestWatcher_DeliversNilWhenSignedOut はサインアウト状態への変更でnilが
// 配信されることを検証する。
func TestWatcher_DeliversNilWhenSignedOut(t *testing.T) {
	source := &mockChangeSource{}
	w := New(source, &mockResolver{})

	delivered := false
	var got *model.ResolvedUser
	w.Subscribe(func(current *model.ResolvedUser) {
		delivered = true
		got = current
	})

	source.emit(repository.KeySession)

	if !delivered {
		t.Fatal("no delivery for session change")
	}
	if got != nil {
		t.Errorf("delivered = %+v, want nil", got)
	}
}

// TestWatcher_IgnoresUnrelatedKeys はアカウントと無関係なキーの変更では
// 何も配信されないことを検証する。
func TestWatcher_IgnoresUnrelatedKeys(t *testing.T) {
	source := &mockChangeSource{}
	resolveCalls := 0
	resolver := &mockResolver{
		currentUserFn: func() *model.ResolvedUser {
			resolveCalls++
			return nil
		},
	}

	w := New(source, resolver)
	w.Subscribe(func(*model.ResolvedUser) {
		t.Error("unexpected delivery for unrelated key")
	})

	source.emit(repository.KeyPayments)
	source.emit("cookie:piercelens_cart")

	if resolveCalls != 0 {
		t.Errorf("resolver called %d times for unrelated keys", resolveCalls)
	}
}

// TestWatcher_ProfileKeyTriggersRederive はプロフィールキーの変更でも
// 再導出が走ることを検証する。
func TestWatcher_ProfileKeyTriggersRederive(t *testing.T) {
	source := &mockChangeSource{}
	w := New(source, &mockResolver{})

	deliveries := 0
	w.Subscribe(func(*model.ResolvedUser) { deliveries++ })

	source.emit(repository.KeyProfilePrefix + "a@example.com")
	source.emit(repository.KeyUsers)

	if deliveries != 2 {
		t.Errorf("deliveries = %d, want 2", deliveries)
	}
}

// TestWatcher_MultipleSubscribers は全購読者に同じ値が配信されることを検証する。
func TestWatcher_MultipleSubscribers(t *testing.T) {
	source := &mockChangeSource{}
	w := New(source, &mockResolver{})

	first, second := 0, 0
	w.Subscribe(func(*model.ResolvedUser) { first++ })
	w.Subscribe(func(*model.ResolvedUser) { second++ })

	source.emit(repository.KeySession)

	if first != 1 || second != 1 {
		t.Errorf("first = %d, second = %d, want 1, 1", first, second)
	}
}
