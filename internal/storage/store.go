// Package storage はキーバリュー永続化の抽象とそのバックエンドを提供する。
//
// ブラウザ由来のデータモデルを踏襲し、2種類のストアを区別する:
// 永続ストア（再起動をまたいで共有される）とタブ局所ストア（プロセス終了で消える）。
// どちらも値はJSONドキュメントであり、破損したデータは「存在しない」ものとして扱う。
package storage

import (
	"encoding/json"
	"log/slog"
)

// Store はキーバリューストアの最小インターフェース。
type Store interface {
	// Get は指定キーの生の値を返す。存在しない場合はfalseを返す。
	Get(key string) ([]byte, bool)
	// Set は指定キーに値を書き込む。
	Set(key string, value []byte) error
	// Remove は指定キーを削除する。存在しないキーの削除は何もしない。
	Remove(key string)
}

// ReadJSON はストアからJSON値を読み出してvにデコードする。
// キーが存在しない場合、またはJSONが破損している場合はfalseを返す。
// 破損データは警告ログを残した上で「存在しない」ものとして扱い、呼び出し側には伝播しない。
func ReadJSON(s Store, key string, v any) bool {
	raw, ok := s.Get(key)
	if !ok {
		return false
	}
	if err := json.Unmarshal(raw, v); err != nil {
		slog.Warn("破損した保存データを無視します",
			slog.String("key", key),
			slog.String("error", err.Error()),
		)
		return false
	}
	return true
}

// WriteJSON はvをJSONにシリアライズしてストアに書き込む。
// 書き込み失敗はログに記録した上で握りつぶす。失敗した書き込みは静かに失われる
// （容量超過やストア無効化をユーザー操作を止めずに吸収するための既知の制限）。
func WriteJSON(s Store, key string, v any) {
	raw, err := json.Marshal(v)
	if err != nil {
		slog.Error("保存データのシリアライズに失敗しました",
			slog.String("key", key),
			slog.String("error", err.Error()),
		)
		return
	}
	if err := s.Set(key, raw); err != nil {
		slog.Error("ストアへの書き込みに失敗しました",
			slog.String("key", key),
			slog.String("error", err.Error()),
		)
	}
}
