package storage

import (
	"net/url"
	"time"
)

// cookiePrefix はクッキーレコードを内側のストアに保存する際のキー接頭辞。
const cookiePrefix = "cookie:"

// cookieRecord は有効期限付きのクッキー1件を表す。
// Valueは常にURLエンコード済みのペイロード。
type cookieRecord struct {
	Value   string    `json:"value"`
	Expires time.Time `json:"expires"`
}

// CookieJar はクッキー互換の第3のバッキング。
// 内側のStoreに有効期限付きレコードを保存し、ペイロードはURLエンコードして保持する。
// 期限切れまたは破損したレコードは読み出し時に「存在しない」ものとして扱う。
type CookieJar struct {
	inner Store
	now   func() time.Time
}

// NewCookieJar は指定のストアを裏に持つCookieJarを生成する。
func NewCookieJar(inner Store) *CookieJar {
	return &CookieJar{
		inner: inner,
		now:   time.Now,
	}
}

// SetCookie は名前付きクッキーをdays日の有効期限で書き込む。
// 値はURLエンコードされて保存される。書き込み失敗は内側のストアの契約に従い握りつぶされる。
func (j *CookieJar) SetCookie(name, value string, days int) {
	rec := cookieRecord{
		Value:   url.QueryEscape(value),
		Expires: j.now().AddDate(0, 0, days),
	}
	WriteJSON(j.inner, cookiePrefix+name, rec)
}

// GetCookie は名前付きクッキーのデコード済みの値を返す。
// 期限切れ・破損・デコード不能のレコードはfalseを返す。
func (j *CookieJar) GetCookie(name string) (string, bool) {
	var rec cookieRecord
	if !ReadJSON(j.inner, cookiePrefix+name, &rec) {
		return "", false
	}
	if !rec.Expires.After(j.now()) {
		return "", false
	}
	decoded, err := url.QueryUnescape(rec.Value)
	if err != nil {
		return "", false
	}
	return decoded, true
}

// RemoveCookie は名前付きクッキーを削除する。
func (j *CookieJar) RemoveCookie(name string) {
	j.inner.Remove(cookiePrefix + name)
}

// PurgeExpired は期限切れのクッキーレコードを内側のストアから削除し、削除件数を返す。
// 期限切れレコードは読み出し時点で既に不可視のため、これは容量回収のための掃除処理。
func (j *CookieJar) PurgeExpired() int {
	lister, ok := j.inner.(interface{ Keys() []string })
	if !ok {
		return 0
	}

	purged := 0
	for _, key := range lister.Keys() {
		if len(key) < len(cookiePrefix) || key[:len(cookiePrefix)] != cookiePrefix {
			continue
		}
		var rec cookieRecord
		if !ReadJSON(j.inner, key, &rec) {
			// 破損レコードも回収対象
			j.inner.Remove(key)
			purged++
			continue
		}
		if !rec.Expires.After(j.now()) {
			j.inner.Remove(key)
			purged++
		}
	}
	return purged
}
