package repository

import (
	"github.com/piercelens/storefront/internal/model"
	"github.com/piercelens/storefront/internal/storage"
)

// StoreSettingsRepo はユーザーごとの設定をメール別キーに保存するSettingsRepository実装。
type StoreSettingsRepo struct {
	store storage.Store
}

// NewStoreSettingsRepo はStoreSettingsRepoを生成する。
func NewStoreSettingsRepo(store storage.Store) *StoreSettingsRepo {
	return &StoreSettingsRepo{store: store}
}

// Get は該当ユーザーの設定を返す。未保存または破損時は既定値
// {emailNotif: true, marketing: false, twofa: false} を返す。
func (r *StoreSettingsRepo) Get(email string) model.Settings {
	settings := model.DefaultSettings()
	if !storage.ReadJSON(r.store, KeySettingsPrefix+NormalizeEmail(email), &settings) {
		return model.DefaultSettings()
	}
	return settings
}

// Put は該当ユーザーの設定を全置換する。
func (r *StoreSettingsRepo) Put(email string, s model.Settings) {
	storage.WriteJSON(r.store, KeySettingsPrefix+NormalizeEmail(email), s)
}
