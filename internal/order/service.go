// Package order は注文の組み立てとデモ決済を提供する。
//
// 決済は外部ゲートウェイの代わりに遅延付きのシミュレーションで応答する。
// 実際の注文処理・決済は行わない。
package order

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/piercelens/storefront/internal/model"
)

// DefaultPaymentDelay はデモ決済の既定の応答遅延。
const DefaultPaymentDelay = 2 * time.Second

// Customer は注文者情報を表す。
type Customer struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Street    string `json:"street,omitempty"`
	City      string `json:"city,omitempty"`
	State     string `json:"state,omitempty"`
	Zip       string `json:"zip,omitempty"`
	Country   string `json:"country,omitempty"`
}

// Draft は確定前の注文を表す。カートの現在の内容から組み立てる。
type Draft struct {
	Customer Customer         `json:"customer"`
	Items    []model.CartItem `json:"items"`
	Total    float64          `json:"total"`
}

// Result はデモ決済の応答を表す。
type Result struct {
	Success       bool      `json:"success"`
	TransactionID string    `json:"transaction_id"`
	Status        string    `json:"status"`
	Timestamp     time.Time `json:"timestamp"`
}

// CartSource は注文組み立てに必要なカート操作のインターフェース。
// cart.Serviceの部分集合として定義する。
type CartSource interface {
	GetCart() model.Cart
	Clear()
}

// Service は注文確定のサービス層。
type Service struct {
	cart  CartSource
	delay time.Duration
	now   func() time.Time
}

// NewService はServiceを生成する。delayが0以下の場合は既定の遅延を使う。
func NewService(cart CartSource, delay time.Duration) *Service {
	if delay <= 0 {
		delay = DefaultPaymentDelay
	}
	return &Service{
		cart:  cart,
		delay: delay,
		now:   time.Now,
	}
}

// BuildDraft は現在のカート内容と注文者情報から注文ドラフトを組み立てる。
// カートが空の場合はEMPTY_CARTで失敗する。
func (s *Service) BuildDraft(c Customer) (*Draft, error) {
	current := s.cart.GetCart()
	if len(current.Items) == 0 {
		return nil, model.NewEmptyCartError()
	}
	return &Draft{
		Customer: c,
		Items:    current.Items,
		Total:    current.Total(),
	}, nil
}

// Submit は注文ドラフトをデモ決済に送信する。
// 設定された遅延の後に成功応答を返し、成功時にカートを空にする。
// コンテキストのキャンセルで中断でき、その場合カートは変更されない。
func (s *Service) Submit(ctx context.Context, d *Draft) (*Result, error) {
	timer := time.NewTimer(s.delay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-timer.C:
	}

	now := s.now()
	result := &Result{
		Success:       true,
		TransactionID: fmt.Sprintf("VE-%d", now.UnixMilli()),
		Status:        "completed",
		Timestamp:     now,
	}

	s.cart.Clear()

	slog.Info("注文を確定しました",
		slog.String("transaction_id", result.TransactionID),
		slog.Int("items", len(d.Items)),
		slog.Float64("total", d.Total),
	)
	return result, nil
}
