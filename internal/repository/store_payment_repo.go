package repository

import (
	"github.com/piercelens/storefront/internal/model"
	"github.com/piercelens/storefront/internal/storage"
)

// StorePaymentRepo は「正規化済みメール→支払い方法リスト」のマッピング全体を
// 1つのキーに保存するPaymentRepository実装。
// 更新は該当ユーザーのリストだけでなくマッピング全体の読み直し・書き戻しで行う。
type StorePaymentRepo struct {
	store storage.Store
}

// NewStorePaymentRepo はStorePaymentRepoを生成する。
func NewStorePaymentRepo(store storage.Store) *StorePaymentRepo {
	return &StorePaymentRepo{store: store}
}

func (r *StorePaymentRepo) load() map[string][]model.PaymentMethod {
	byEmail := make(map[string][]model.PaymentMethod)
	storage.ReadJSON(r.store, KeyPayments, &byEmail)
	return byEmail
}

// ListByEmail は該当ユーザーのリストを返す。未保存ならば空リスト。
func (r *StorePaymentRepo) ListByEmail(email string) []model.PaymentMethod {
	return r.load()[NormalizeEmail(email)]
}

// ReplaceByEmail は該当ユーザーのリストを全置換してマッピング全体を書き戻す。
func (r *StorePaymentRepo) ReplaceByEmail(email string, list []model.PaymentMethod) {
	byEmail := r.load()
	byEmail[NormalizeEmail(email)] = list
	storage.WriteJSON(r.store, KeyPayments, byEmail)
}
