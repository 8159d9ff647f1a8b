// Package model はドメインモデルを定義する。
package model

import "fmt"

// StoreError は統一エラーフォーマットを表す。
// UIに表示する原因カテゴリと対処方法を含む。
type StoreError struct {
	Code     string // エラーコード
	Message  string // エラーメッセージ
	Category string // カテゴリ: auth, validation, cart, system
	Action   string // ユーザー向け対処方法
}

// Error はerrorインターフェースを実装する。
func (e *StoreError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// 定義済みエラーコード
const (
	ErrCodeDuplicateEmail    = "DUPLICATE_EMAIL"
	ErrCodeUserNotFound      = "USER_NOT_FOUND"
	ErrCodeBadCredential     = "BAD_CREDENTIAL"
	ErrCodePasswordTooShort  = "PASSWORD_TOO_SHORT"
	ErrCodePasswordMismatch  = "PASSWORD_MISMATCH"
	ErrCodeEntryNotFound     = "ENTRY_NOT_FOUND"
	ErrCodeInvalidTwoFACode  = "INVALID_2FA_CODE"
	ErrCodeEmptyCart         = "EMPTY_CART"
	ErrCodeInvalidCardNumber = "INVALID_CARD_NUMBER"
)

// NewDuplicateEmailError は登録済みメールアドレスの重複登録エラーを生成する。
func NewDuplicateEmailError(email string) *StoreError {
	return &StoreError{
		Code:     ErrCodeDuplicateEmail,
		Message:  fmt.Sprintf("このメールアドレスは既に登録されています: %s", email),
		Category: "auth",
		Action:   "サインインするか、別のメールアドレスで登録してください。",
	}
}

// NewUserNotFoundError はユーザーが見つからない場合のエラーを生成する。
func NewUserNotFoundError() *StoreError {
	return &StoreError{
		Code:     ErrCodeUserNotFound,
		Message:  "アカウントが見つかりません。",
		Category: "auth",
		Action:   "メールアドレスを確認するか、新規登録してください。",
	}
}

// NewBadCredentialError は認証情報の不一致エラーを生成する。
func NewBadCredentialError() *StoreError {
	return &StoreError{
		Code:     ErrCodeBadCredential,
		Message:  "認証情報が正しくありません。",
		Category: "auth",
		Action:   "パスワードを確認して再度お試しください。",
	}
}

// NewPasswordTooShortError はパスワード長不足のエラーを生成する。
func NewPasswordTooShortError(min int) *StoreError {
	return &StoreError{
		Code:     ErrCodePasswordTooShort,
		Message:  fmt.Sprintf("パスワードは%d文字以上で入力してください。", min),
		Category: "validation",
		Action:   "より長いパスワードを設定してください。",
	}
}

// NewPasswordMismatchError は新パスワードと確認入力の不一致エラーを生成する。
func NewPasswordMismatchError() *StoreError {
	return &StoreError{
		Code:     ErrCodePasswordMismatch,
		Message:  "新しいパスワードと確認入力が一致しません。",
		Category: "validation",
		Action:   "同じパスワードを2回入力してください。",
	}
}

// NewEntryNotFoundError はリスト内の指定位置に項目が存在しない場合のエラーを生成する。
func NewEntryNotFoundError(idx int) *StoreError {
	return &StoreError{
		Code:     ErrCodeEntryNotFound,
		Message:  fmt.Sprintf("指定された項目が見つかりません: %d", idx),
		Category: "validation",
		Action:   "一覧を再読み込みしてから操作してください。",
	}
}

// NewInvalidTwoFACodeError は2要素認証コードの検証失敗エラーを生成する。
func NewInvalidTwoFACodeError() *StoreError {
	return &StoreError{
		Code:     ErrCodeInvalidTwoFACode,
		Message:  "確認コードが正しくありません。",
		Category: "validation",
		Action:   "6桁の確認コードを入力してください。",
	}
}

// NewEmptyCartError は空のカートに対する注文確定エラーを生成する。
func NewEmptyCartError() *StoreError {
	return &StoreError{
		Code:     ErrCodeEmptyCart,
		Message:  "カートに商品がありません。",
		Category: "cart",
		Action:   "商品を追加してから注文してください。",
	}
}

// NewInvalidCardNumberError は口座番号の形式不正エラーを生成する。
func NewInvalidCardNumberError() *StoreError {
	return &StoreError{
		Code:     ErrCodeInvalidCardNumber,
		Message:  "口座番号の形式が正しくありません。",
		Category: "validation",
		Action:   "9桁の口座番号を入力してください。",
	}
}
