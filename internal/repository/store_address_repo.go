package repository

import (
	"github.com/piercelens/storefront/internal/model"
	"github.com/piercelens/storefront/internal/storage"
)

// StoreAddressRepo は「正規化済みメール→住所リスト」のマッピング全体を
// 1つのキーに保存するAddressRepository実装。構造はStorePaymentRepoと対称。
type StoreAddressRepo struct {
	store storage.Store
}

// NewStoreAddressRepo はStoreAddressRepoを生成する。
func NewStoreAddressRepo(store storage.Store) *StoreAddressRepo {
	return &StoreAddressRepo{store: store}
}

func (r *StoreAddressRepo) load() map[string][]model.Address {
	byEmail := make(map[string][]model.Address)
	storage.ReadJSON(r.store, KeyAddresses, &byEmail)
	return byEmail
}

// ListByEmail は該当ユーザーのリストを返す。未保存ならば空リスト。
func (r *StoreAddressRepo) ListByEmail(email string) []model.Address {
	return r.load()[NormalizeEmail(email)]
}

// ReplaceByEmail は該当ユーザーのリストを全置換してマッピング全体を書き戻す。
func (r *StoreAddressRepo) ReplaceByEmail(email string, list []model.Address) {
	byEmail := r.load()
	byEmail[NormalizeEmail(email)] = list
	storage.WriteJSON(r.store, KeyAddresses, byEmail)
}
