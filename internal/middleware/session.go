// Package middleware はHTTPミドルウェアを提供する。
package middleware

import (
	"context"
	"fmt"
	"net/http"

	"github.com/piercelens/storefront/internal/model"
)

// contextKey はコンテキストに値を格納するための型安全なキー。
type contextKey string

// emailContextKey はリクエストコンテキストにユーザーのメールアドレスを格納するためのキー。
var emailContextKey = contextKey("email")

// SessionSource は現在のセッションの取得に必要なインターフェース。
// repository.SessionRepositoryの部分集合として定義する。
type SessionSource interface {
	Current() *model.Session
}

// NewSessionMiddleware は共有ストアからセッションポインタを読み取り、
// 認証済みユーザーのメールアドレスをリクエストコンテキストに注入するミドルウェアを返す。
// どちらのストアにもポインタがない未認証リクエストには401 Unauthorizedを返す。
func NewSessionMiddleware(sessions SessionSource) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			session := sessions.Current()
			if session == nil || session.Email == "" {
				WriteErrorResponse(w, http.StatusUnauthorized, &model.StoreError{
					Code:     "UNAUTHORIZED",
					Message:  "認証が必要です。",
					Category: "auth",
					Action:   "サインインしてください。",
				})
				return
			}

			ctx := context.WithValue(r.Context(), emailContextKey, session.Email)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// EmailFromContext はリクエストコンテキストからユーザーのメールアドレスを取得する。
// セッションミドルウェアを通過したリクエストでのみ有効。
func EmailFromContext(ctx context.Context) (string, error) {
	email, ok := ctx.Value(emailContextKey).(string)
	if !ok || email == "" {
		return "", fmt.Errorf("email not found in context")
	}
	return email, nil
}

// ContextWithEmail はコンテキストにメールアドレスを注入する。
// テストやミドルウェア以外のコンテキスト生成で使用する。
func ContextWithEmail(ctx context.Context, email string) context.Context {
	return context.WithValue(ctx, emailContextKey, email)
}
