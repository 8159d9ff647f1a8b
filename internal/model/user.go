// Package model はドメインモデルを定義する。
package model

// User は登録ユーザーを表す。
// Emailは大文字小文字を区別しない一意キーとして扱う（比較時に両辺を小文字化する）。
// Passwordは可逆なBase64エンコード済みの値で、暗号学的ハッシュではない。
type User struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// UserPatch はユーザーレコードへの部分更新を表す。
// nilのフィールドは変更しない。
type UserPatch struct {
	Name     *string
	Password *string
}

// Profile はユーザーごとの自由形式プロフィール。
// ユーザー本体とは別キーに保存され、読み出し時にマージされる。
type Profile struct {
	Name    string `json:"name,omitempty"`
	Phone   string `json:"phone,omitempty"`
	Country string `json:"country,omitempty"`
	Avatar  string `json:"avatar,omitempty"`
}

// ResolvedUser はユーザー本体にプロフィールをマージした読み出し専用ビュー。
type ResolvedUser struct {
	Email   string `json:"email"`
	Name    string `json:"name"`
	Phone   string `json:"phone,omitempty"`
	Country string `json:"country,omitempty"`
	Avatar  string `json:"avatar,omitempty"`
}

// Session はログイン中ユーザーを指すポインタレコード。
// 永続ストアとタブ局所ストアのどちらか一方にのみ保存される。
type Session struct {
	Email string `json:"email"`
}

// PaymentMethod はユーザーごとの支払い方法を表す。
// 1ユーザーのリスト内でIsDefault=trueは高々1件。
type PaymentMethod struct {
	Name      string `json:"name"`
	Type      string `json:"type"`
	LastFour  string `json:"lastFour"`
	IsDefault bool   `json:"isDefault"`
}

// Address はユーザーごとの配送先住所を表す。
// デフォルト排他の不変条件はPaymentMethodと同じ。
type Address struct {
	Name      string `json:"name"`
	Street    string `json:"street"`
	City      string `json:"city"`
	State     string `json:"state"`
	Zip       string `json:"zip"`
	Country   string `json:"country"`
	IsDefault bool   `json:"isDefault"`
}

// Settings はユーザーごとの通知・セキュリティ設定。
type Settings struct {
	EmailNotif bool `json:"emailNotif"`
	Marketing  bool `json:"marketing"`
	TwoFA      bool `json:"twofa"`
}

// DefaultSettings は設定が未保存または破損している場合の既定値を返す。
func DefaultSettings() Settings {
	return Settings{
		EmailNotif: true,
		Marketing:  false,
		TwoFA:      false,
	}
}
