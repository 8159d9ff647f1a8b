package model

// CartItem はカートの明細1件を表す。
// IDは追加時に採番される不透明な識別子で、1つのカート内で一意。
// Customizationsは表示専用のオプション名→選択値のマッピング。
type CartItem struct {
	ID             string            `json:"id"`
	Name           string            `json:"name"`
	Price          float64           `json:"price"`
	Quantity       int               `json:"quantity"`
	Image          string            `json:"image,omitempty"`
	Customizations map[string]string `json:"customizations,omitempty"`
}

// NormalizedQuantity は数量を1以上に正規化して返す。
// 0以下の不正な数量は拒否ではなく1として扱う。
func (i CartItem) NormalizedQuantity() int {
	if i.Quantity <= 0 {
		return 1
	}
	return i.Quantity
}

// Cart は明細の順序付きリスト。順序は追加順で、永続化は常に全体置換で行う。
type Cart struct {
	Items []CartItem `json:"items"`
}

// Count は総数量を返す。増分カウンタは持たず、毎回明細から再計算する。
// 破損した数量は1として数える。
func (c Cart) Count() int {
	total := 0
	for _, item := range c.Items {
		total += item.NormalizedQuantity()
	}
	return total
}

// Total は合計金額（単価×数量の総和）を返す。通貨換算や丸めは行わない。
func (c Cart) Total() float64 {
	var total float64
	for _, item := range c.Items {
		total += item.Price * float64(item.NormalizedQuantity())
	}
	return total
}
