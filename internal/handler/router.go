package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/piercelens/storefront/internal/metrics"
	"github.com/piercelens/storefront/internal/middleware"
)

// RouterDeps はNewRouterに必要な依存関係をまとめた構造体。
type RouterDeps struct {
	// ミドルウェア依存
	SessionSource     middleware.SessionSource
	CORSAllowedOrigin string
	// Secure はHTTPS配信かどうか。trueの場合セキュリティヘッダーにHSTSを含める。
	Secure      bool
	RateLimiter *middleware.RateLimiter
	Logger      *slog.Logger

	// メトリクス
	Collector metrics.MetricsCollector
	Gatherer  prometheus.Gatherer

	// サービス
	CartService    CartServiceInterface
	AuthService    AuthServiceInterface
	AccountService AccountServiceInterface
	OrderService   OrderServiceInterface
}

// NewRouter は全APIエンドポイントのルーティングとミドルウェアチェーンを構成したchi.Routerを返す。
//
// ミドルウェアスタックの実行順序:
//
//	CORSMiddleware → SecurityHeadersMiddleware → LoggingMiddleware → RecoveryMiddleware
//	→ (グループ内) SessionMiddleware → RateLimitMiddleware(GeneralMiddleware)
//
// カートと認証のルートはセッション不要なのでミドルウェアチェーンの外に配置する。
func NewRouter(deps *RouterDeps) http.Handler {
	r := chi.NewRouter()

	// 全ルートに効くミドルウェア
	r.Use(middleware.NewCORSMiddleware(deps.CORSAllowedOrigin))
	r.Use(middleware.NewSecurityHeadersMiddleware(deps.Secure))
	r.Use(middleware.NewLoggingMiddleware(deps.Logger, deps.Collector))
	r.Use(middleware.NewRecoveryMiddleware())

	cartHandler := NewCartHandler(deps.CartService, deps.Collector)
	authHandler := NewAuthHandler(deps.AuthService, deps.AccountService, deps.Collector)
	accountHandler := NewAccountHandler(deps.AccountService)
	orderHandler := NewOrderHandler(deps.OrderService, deps.Collector)

	// --- 認証不要のルート ---

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSONResponse(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Method(http.MethodGet, "/metrics", metrics.Handler(deps.Gatherer))

	// 認証ルート
	r.Route("/auth", func(r chi.Router) {
		r.Post("/register", authHandler.Register)
		r.Post("/login", authHandler.Login)
		r.Post("/logout", authHandler.Logout)
		r.Get("/me", authHandler.Me)
	})

	// カートはサインイン前でも操作できる
	r.Route("/api/cart", func(r chi.Router) {
		r.Use(deps.RateLimiter.GeneralMiddleware())

		r.Get("/", cartHandler.GetCart)
		r.Delete("/", cartHandler.Clear)
		r.Post("/items", cartHandler.AddItem)

		r.Route("/items/{id}", func(r chi.Router) {
			r.Put("/", cartHandler.UpdateQuantity)
			r.Delete("/", cartHandler.RemoveItem)
		})
	})

	// チェックアウトもサインイン不要。専用のレート制限を追加する。
	r.With(
		deps.RateLimiter.GeneralMiddleware(),
		deps.RateLimiter.CheckoutMiddleware(),
	).Post("/api/checkout", orderHandler.Checkout)

	// --- 認証が必要なルート ---
	// ミドルウェアスタック: Session → RateLimit(General)
	r.Group(func(r chi.Router) {
		r.Use(middleware.NewSessionMiddleware(deps.SessionSource))
		r.Use(deps.RateLimiter.GeneralMiddleware())

		r.Route("/api/account", func(r chi.Router) {
			r.Delete("/", accountHandler.DeleteAccount)

			r.Put("/profile", accountHandler.UpdateProfile)
			r.Post("/password", authHandler.ChangePassword)
			r.Post("/2fa", accountHandler.EnableTwoFA)

			r.Route("/payments", func(r chi.Router) {
				r.Get("/", accountHandler.ListPayments)
				r.Post("/", accountHandler.AddPayment)

				r.Route("/{idx}", func(r chi.Router) {
					r.Delete("/", accountHandler.RemovePayment)
					r.Put("/default", accountHandler.SetDefaultPayment)
				})
			})

			r.Route("/addresses", func(r chi.Router) {
				r.Get("/", accountHandler.ListAddresses)
				r.Post("/", accountHandler.AddAddress)

				r.Route("/{idx}", func(r chi.Router) {
					r.Delete("/", accountHandler.RemoveAddress)
					r.Put("/default", accountHandler.SetDefaultAddress)
				})
			})

			r.Route("/settings", func(r chi.Router) {
				r.Get("/", accountHandler.GetSettings)
				r.Put("/", accountHandler.UpdateSettings)
			})
		})
	})

	return r
}
