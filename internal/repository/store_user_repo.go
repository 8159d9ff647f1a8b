package repository

import (
	"strings"

	"github.com/piercelens/storefront/internal/model"
	"github.com/piercelens/storefront/internal/storage"
)

// StoreUserRepo は永続ストア上のJSON配列にユーザーコレクションを保存するUserRepository実装。
type StoreUserRepo struct {
	store storage.Store
}

// NewStoreUserRepo はStoreUserRepoを生成する。
func NewStoreUserRepo(store storage.Store) *StoreUserRepo {
	return &StoreUserRepo{store: store}
}

// NormalizeEmail はメールアドレスを比較・キー用に正規化する。
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// List は登録順のユーザー一覧を返す。破損データは空リストとして扱う。
func (r *StoreUserRepo) List() []model.User {
	var users []model.User
	storage.ReadJSON(r.store, KeyUsers, &users)
	return users
}

// FindByEmail は大文字小文字を区別せずにユーザーを検索する。見つからない場合はnil。
func (r *StoreUserRepo) FindByEmail(email string) *model.User {
	target := NormalizeEmail(email)
	for _, u := range r.List() {
		if NormalizeEmail(u.Email) == target {
			found := u
			return &found
		}
	}
	return nil
}

// Append はユーザーをコレクション末尾に追加して全体を書き戻す。
func (r *StoreUserRepo) Append(u model.User) {
	users := append(r.List(), u)
	storage.WriteJSON(r.store, KeyUsers, users)
}

// Update は該当ユーザーへpatchを部分マージして全体を書き戻す。
func (r *StoreUserRepo) Update(email string, patch model.UserPatch) bool {
	users := r.List()
	target := NormalizeEmail(email)
	for i := range users {
		if NormalizeEmail(users[i].Email) != target {
			continue
		}
		if patch.Name != nil {
			users[i].Name = *patch.Name
		}
		if patch.Password != nil {
			users[i].Password = *patch.Password
		}
		storage.WriteJSON(r.store, KeyUsers, users)
		return true
	}
	return false
}

// DeleteByEmail は該当ユーザーを取り除いて全体を書き戻す。
func (r *StoreUserRepo) DeleteByEmail(email string) bool {
	users := r.List()
	target := NormalizeEmail(email)
	kept := users[:0]
	deleted := false
	for _, u := range users {
		if NormalizeEmail(u.Email) == target {
			deleted = true
			continue
		}
		kept = append(kept, u)
	}
	if deleted {
		storage.WriteJSON(r.store, KeyUsers, kept)
	}
	return deleted
}
