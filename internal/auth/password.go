package auth

import "encoding/base64"

// EncodePassword はパスワードを保存・比較用の表現にエンコードする。
//
// これはUTF-8バイト列の可逆なBase64エンコードであり、暗号学的ハッシュではない。
// 本システムは実際の認証保証を提供しない（データはローカル専用で、
// セキュリティはスコープ外）という前提に基づく既知の制限。
func EncodePassword(pw string) string {
	return base64.StdEncoding.EncodeToString([]byte(pw))
}
