package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/time/rate"

	"github.com/piercelens/storefront/internal/account"
	"github.com/piercelens/storefront/internal/auth"
	"github.com/piercelens/storefront/internal/cart"
	"github.com/piercelens/storefront/internal/config"
	"github.com/piercelens/storefront/internal/handler"
	"github.com/piercelens/storefront/internal/logger"
	"github.com/piercelens/storefront/internal/metrics"
	"github.com/piercelens/storefront/internal/middleware"
	"github.com/piercelens/storefront/internal/model"
	"github.com/piercelens/storefront/internal/order"
	"github.com/piercelens/storefront/internal/repository"
	"github.com/piercelens/storefront/internal/security"
	"github.com/piercelens/storefront/internal/storage"
	"github.com/piercelens/storefront/internal/tabsync"
	"github.com/piercelens/storefront/internal/worker/cleanup"
)

// Init はアプリケーションの初期化を行う。
// 環境変数からConfigを読み込み、JSON構造化ログをセットアップする。
// writerが指定された場合はログ出力先としてそのwriterを使用する。
func Init(w io.Writer) *config.Config {
	// ログの初期化（設定読み込み前にログを使えるようにする）
	logger.SetupDefault(w)

	return config.Load()
}

// Run はアプリケーションのメインエントリーポイント。
// コマンドライン引数からサブコマンドを解析し、対応するモードで起動する。
// argsにはos.Args[1:]を渡す。
func Run(w io.Writer, args []string) error {
	cmd := ParseCommand(args)

	// healthcheck は軽量サブコマンドのため、フル初期化をスキップする
	if cmd == CommandHealthcheck {
		port := os.Getenv("SERVER_PORT")
		if port == "" {
			port = "8080"
		}
		return runHealthcheck(port)
	}

	cfg := Init(w)

	slog.Info("starting application",
		slog.String("command", string(cmd)),
		slog.String("port", cfg.ServerPort),
		slog.String("base_url", cfg.BaseURL),
	)

	return runServe(cfg)
}

// runServe はAPIサーバーモードで起動する。
// ストアを開き、全依存関係をワイヤリングし、HTTPサーバーを起動する。
// SIGINTまたはSIGTERMシグナルを受信するとグレースフルシャットダウンを行う。
func runServe(cfg *config.Config) error {
	// 1. ストアを開く
	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		return fmt.Errorf("failed to create data dir: %w", err)
	}

	durable, err := storage.OpenFileStore(filepath.Join(cfg.DataDir, "store.json"))
	if err != nil {
		return fmt.Errorf("failed to open store: %w", err)
	}
	ephemeral := storage.NewMemoryStore()
	jar := storage.NewCookieJar(durable)

	slog.Info("store opened", slog.String("data_dir", cfg.DataDir))

	// 2. リポジトリの初期化
	userRepo := repository.NewStoreUserRepo(durable)
	sessionRepo := repository.NewStoreSessionRepo(durable, ephemeral)
	paymentRepo := repository.NewStorePaymentRepo(durable)
	addressRepo := repository.NewStoreAddressRepo(durable)
	settingsRepo := repository.NewStoreSettingsRepo(durable)
	profileRepo := repository.NewStoreProfileRepo(durable)

	// 3. セキュリティサービスの初期化
	sanitizer := security.NewInputSanitizer()

	// 4. ドメインサービスの初期化
	cartService := cart.NewService(jar, cfg.CartCookieDays, sanitizer)
	authService := auth.NewService(userRepo, sessionRepo)
	accountService := account.NewService(
		userRepo, sessionRepo, profileRepo,
		paymentRepo, addressRepo, settingsRepo,
		sanitizer,
	)
	orderService := order.NewService(cartService, cfg.PaymentDelay)

	// 5. ストア変更の監視
	watcher := tabsync.New(durable, accountService)
	watcher.Subscribe(func(current *model.ResolvedUser) {
		if current == nil {
			slog.Info("current user changed", slog.Bool("signed_in", false))
			return
		}
		slog.Info("current user changed",
			slog.Bool("signed_in", true),
			slog.String("email", current.Email),
		)
	})

	// 6. メトリクスの初期化
	registry := prometheus.NewRegistry()
	collector := metrics.NewCollector(registry)

	// 7. ルーターの構築
	rateLimiterCfg := middleware.RateLimiterConfig{
		GeneralRate:     rate.Limit(float64(cfg.RateLimitGeneral) / 60.0),
		GeneralBurst:    cfg.RateLimitGeneral,
		CheckoutRate:    rate.Limit(float64(cfg.RateLimitCheckout) / 60.0),
		CheckoutBurst:   cfg.RateLimitCheckout,
		CleanupInterval: 5 * time.Minute,
	}
	rateLimiter := middleware.NewRateLimiter(rateLimiterCfg)
	defer rateLimiter.Stop()

	deps := &handler.RouterDeps{
		SessionSource:     sessionRepo,
		CORSAllowedOrigin: cfg.CORSAllowedOrigin,
		Secure:            cfg.CookieSecure(),
		RateLimiter:       rateLimiter,
		Logger:            slog.Default(),

		Collector: collector,
		Gatherer:  registry,

		CartService:    cartService,
		AuthService:    authService,
		AccountService: accountService,
		OrderService:   orderService,
	}

	router := handler.NewRouter(deps)

	// 8. クリーンアップワーカーの起動
	workerCtx, workerCancel := context.WithCancel(context.Background())
	defer workerCancel()

	cleanupJob := cleanup.NewCleanupJob(jar, slog.Default())
	go cleanupJob.Loop(workerCtx, cfg.CleanupInterval)

	// 9. HTTPサーバーの起動
	server := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// グレースフルシャットダウンのためのシグナルハンドリング
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		slog.Info("API server starting",
			slog.String("addr", server.Addr),
		)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server listen error", slog.String("error", err.Error()))
		}
	}()

	<-stop
	slog.Info("shutting down API server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	slog.Info("API server stopped gracefully")
	return nil
}

// runHealthcheck はヘルスチェックを実行する。
// distroless環境でのDockerヘルスチェック用サブコマンド。
// /health エンドポイントにHTTPリクエストを送り、結果を返す。
func runHealthcheck(port string) error {
	url := fmt.Sprintf("http://localhost:%s/health", port)
	client := &http.Client{Timeout: 5 * time.Second}

	resp, err := client.Get(url)
	if err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("health check returned status %d", resp.StatusCode)
	}

	return nil
}
