package repository

import (
	"github.com/piercelens/storefront/internal/model"
	"github.com/piercelens/storefront/internal/storage"
)

// StoreProfileRepo はユーザーごとのプロフィールブロブをメール別キーに保存する
// ProfileRepository実装。
type StoreProfileRepo struct {
	store storage.Store
}

// NewStoreProfileRepo はStoreProfileRepoを生成する。
func NewStoreProfileRepo(store storage.Store) *StoreProfileRepo {
	return &StoreProfileRepo{store: store}
}

// Get は該当ユーザーのプロフィールを返す。未保存または破損時は空のプロフィール。
func (r *StoreProfileRepo) Get(email string) model.Profile {
	var profile model.Profile
	storage.ReadJSON(r.store, KeyProfilePrefix+NormalizeEmail(email), &profile)
	return profile
}

// Put は該当ユーザーのプロフィールを全置換する。
func (r *StoreProfileRepo) Put(email string, p model.Profile) {
	storage.WriteJSON(r.store, KeyProfilePrefix+NormalizeEmail(email), p)
}

// Delete は該当ユーザーのプロフィールを削除する。
func (r *StoreProfileRepo) Delete(email string) {
	r.store.Remove(KeyProfilePrefix + NormalizeEmail(email))
}
