// Package cart はショッピングカートの状態管理を提供する。
//
// バッキングは7日有効のクッキー1本に統一する。読み出しは毎回クッキーから取り直し、
// 書き込みはカート全体の置換で行う。破損したカートデータは空のカートとして扱う。
package cart

import (
	"encoding/json"
	"sync"

	"github.com/google/uuid"

	"github.com/piercelens/storefront/internal/model"
	"github.com/piercelens/storefront/internal/security"
	"github.com/piercelens/storefront/internal/storage"
)

// CookieName はカートを保存するクッキー名。
const CookieName = "piercelens_cart"

// DefaultCookieDays はカートクッキーの既定の有効日数。
const DefaultCookieDays = 7

// Service はカートの読み書きを提供する。
// すべての変更操作は永続化後に件数変更の通知を発火する。
// ビジネスルール起因のエラーは存在せず、不正な数量は拒否ではなく正規化する。
type Service struct {
	jar        *storage.CookieJar
	cookieDays int
	sanitizer  security.InputSanitizerService

	mu        sync.Mutex
	listeners []func(count int)
}

// NewService はカートサービスを生成する。daysが0以下の場合は既定の7日を使う。
func NewService(jar *storage.CookieJar, days int, sanitizer security.InputSanitizerService) *Service {
	if days <= 0 {
		days = DefaultCookieDays
	}
	return &Service{
		jar:        jar,
		cookieDays: days,
		sanitizer:  sanitizer,
	}
}

// OnCountChanged は件数変更の通知を受けるリスナーを登録する。
// 通知は変更操作の永続化後に同期的に呼び出される。
func (s *Service) OnCountChanged(fn func(count int)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, fn)
}

// GetCart は現在のカートを返す。クッキーが存在しない・期限切れ・破損の場合は空のカート。
func (s *Service) GetCart() model.Cart {
	raw, ok := s.jar.GetCookie(CookieName)
	if !ok {
		return model.Cart{}
	}
	var c model.Cart
	if err := json.Unmarshal([]byte(raw), &c); err != nil {
		return model.Cart{}
	}
	return c
}

// AddItem は明細をカート末尾に追加し、採番したIDを返す。
// IDが空の場合は新しいIDを割り当てる。数量は1以上に正規化する。
// 表示用文字列（商品名とカスタマイズの選択値）は保存前にサニタイズする。
func (s *Service) AddItem(item model.CartItem) string {
	if item.ID == "" {
		item.ID = uuid.New().String()
	}
	item.Quantity = item.NormalizedQuantity()
	item.Name = s.sanitizer.SanitizeText(item.Name)
	for k, v := range item.Customizations {
		item.Customizations[k] = s.sanitizer.SanitizeText(v)
	}

	c := s.GetCart()
	c.Items = append(c.Items, item)
	s.save(c)
	return item.ID
}

// RemoveItem は指定IDの明細を取り除く。該当がなければ変更なしで永続化だけが走る。
func (s *Service) RemoveItem(id string) {
	c := s.GetCart()
	kept := c.Items[:0]
	for _, item := range c.Items {
		if item.ID != id {
			kept = append(kept, item)
		}
	}
	c.Items = kept
	s.save(c)
}

// UpdateQuantity は指定IDの明細の数量を変更する。
// quantityが0以下の場合はRemoveItemと等価に振る舞う。該当IDがなければ何もしない。
func (s *Service) UpdateQuantity(id string, quantity int) {
	if quantity <= 0 {
		s.RemoveItem(id)
		return
	}
	c := s.GetCart()
	for i := range c.Items {
		if c.Items[i].ID == id {
			c.Items[i].Quantity = quantity
			s.save(c)
			return
		}
	}
}

// Clear はカートを空にする。
func (s *Service) Clear() {
	s.save(model.Cart{Items: []model.CartItem{}})
}

// ItemCount は総数量を返す。毎回カートから再計算する（増分カウンタは持たない）。
func (s *Service) ItemCount() int {
	return s.GetCart().Count()
}

// Total は合計金額を返す。毎回カートから再計算する。
func (s *Service) Total() float64 {
	return s.GetCart().Total()
}

// save はカート全体をクッキーへ書き戻し、件数変更を通知する。
func (s *Service) save(c model.Cart) {
	raw, err := json.Marshal(c)
	if err != nil {
		// CartはJSON表現可能な型のみで構成されるためここには来ない
		return
	}
	s.jar.SetCookie(CookieName, string(raw), s.cookieDays)

	s.mu.Lock()
	listeners := make([]func(int), len(s.listeners))
	copy(listeners, s.listeners)
	s.mu.Unlock()

	count := c.Count()
	for _, fn := range listeners {
		fn(count)
	}
}
