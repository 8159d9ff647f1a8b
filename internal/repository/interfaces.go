// Package repository はストレージバックエンドへの永続化インターフェースを定義する。
//
// すべての実装は「読み出しは常にストアから取り直し、書き込みはコレクション全体を
// 置き換える」規律に従う。同じコレクションを共有する別プロセスの書き込みとは
// last-write-winsで競合し、後勝ちの上書きで先行する変更が失われうる（既知の性質）。
// ストレージ層の失敗はアダプタ契約に従って握りつぶされるため、各操作はエラーを返さない。
package repository

import "github.com/piercelens/storefront/internal/model"

// 共有ストア上の論理キー。1実装内で安定であること。
const (
	KeyUsers     = "pl_users"
	KeySession   = "pl_session"
	KeyPayments  = "pl_payments"
	KeyAddresses = "pl_addresses"

	// KeySettingsPrefix と KeyProfilePrefix には正規化済みメールアドレスが続く。
	KeySettingsPrefix = "pl_settings_"
	KeyProfilePrefix  = "pl_profile_"
)

// UserRepository はユーザーコレクションの永続化インターフェース。
type UserRepository interface {
	// FindByEmail は正規化済みメールアドレスでユーザーを検索する。見つからない場合はnilを返す。
	FindByEmail(email string) *model.User
	// List は登録順のユーザー一覧を返す。
	List() []model.User
	// Append はユーザーをコレクション末尾に追加する。重複チェックは呼び出し側の責務。
	Append(u model.User)
	// Update は該当ユーザーへpatchを部分マージする。該当がなければ何もせずfalseを返す。
	Update(email string, patch model.UserPatch) bool
	// DeleteByEmail は該当ユーザーを削除する。削除した場合にtrueを返す。
	DeleteByEmail(email string) bool
}

// SessionRepository はセッションポインタの永続化インターフェース。
// ポインタは永続ストアとタブ局所ストアのどちらか一方にのみ存在する。
type SessionRepository interface {
	// Issue はセッションポインタを書き込む。rememberがtrueなら永続ストア、
	// falseならタブ局所ストアへ書き込み、もう一方からは必ず削除する。
	Issue(email string, remember bool)
	// Current は現在のセッションを返す。タブ局所ストアを優先し、
	// なければ永続ストアを参照する。どちらにもなければnilを返す。
	Current() *model.Session
	// Clear は両方のストアからポインタを削除する。
	Clear()
}

// PaymentRepository はユーザーごとの支払い方法リストの永続化インターフェース。
type PaymentRepository interface {
	// ListByEmail は該当ユーザーのリストを返す。未保存ならば空リストを返す。
	ListByEmail(email string) []model.PaymentMethod
	// ReplaceByEmail は該当ユーザーのリストを全置換する。
	ReplaceByEmail(email string, list []model.PaymentMethod)
}

// AddressRepository はユーザーごとの住所リストの永続化インターフェース。
type AddressRepository interface {
	ListByEmail(email string) []model.Address
	ReplaceByEmail(email string, list []model.Address)
}

// SettingsRepository はユーザーごとの設定の永続化インターフェース。
type SettingsRepository interface {
	// Get は該当ユーザーの設定を返す。未保存または破損時は既定値を返す。
	Get(email string) model.Settings
	// Put は該当ユーザーの設定を全置換する。
	Put(email string, s model.Settings)
}

// ProfileRepository はユーザーごとのプロフィールブロブの永続化インターフェース。
type ProfileRepository interface {
	// Get は該当ユーザーのプロフィールを返す。未保存または破損時は空のプロフィールを返す。
	Get(email string) model.Profile
	// Put は該当ユーザーのプロフィールを全置換する。
	Put(email string, p model.Profile)
	// Delete は該当ユーザーのプロフィールを削除する。
	Delete(email string)
}
