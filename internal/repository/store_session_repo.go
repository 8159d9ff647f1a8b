package repository

import (
	"github.com/piercelens/storefront/internal/model"
	"github.com/piercelens/storefront/internal/storage"
)

// StoreSessionRepo は永続ストアとタブ局所ストアの2つを使い分けるSessionRepository実装。
// 「このタブの状態が記憶済みの状態を上書きする」意図を保つため、読み出しは常に
// タブ局所ストアを優先する。
type StoreSessionRepo struct {
	durable   storage.Store
	ephemeral storage.Store
}

// NewStoreSessionRepo はStoreSessionRepoを生成する。
func NewStoreSessionRepo(durable, ephemeral storage.Store) *StoreSessionRepo {
	return &StoreSessionRepo{
		durable:   durable,
		ephemeral: ephemeral,
	}
}

// Issue はセッションポインタを一方のストアへ書き込み、もう一方からは削除する。
// 呼び出し後、ポインタを保持するストアは必ず1つになる。
func (r *StoreSessionRepo) Issue(email string, remember bool) {
	session := model.Session{Email: email}
	if remember {
		storage.WriteJSON(r.durable, KeySession, session)
		r.ephemeral.Remove(KeySession)
	} else {
		storage.WriteJSON(r.ephemeral, KeySession, session)
		r.durable.Remove(KeySession)
	}
}

// Current は現在のセッションを返す。タブ局所ストア優先、なければ永続ストア。
func (r *StoreSessionRepo) Current() *model.Session {
	var session model.Session
	if storage.ReadJSON(r.ephemeral, KeySession, &session) && session.Email != "" {
		return &session
	}
	session = model.Session{}
	if storage.ReadJSON(r.durable, KeySession, &session) && session.Email != "" {
		return &session
	}
	return nil
}

// Clear は両方のストアからポインタを削除する。
func (r *StoreSessionRepo) Clear() {
	r.durable.Remove(KeySession)
	r.ephemeral.Remove(KeySession)
}
