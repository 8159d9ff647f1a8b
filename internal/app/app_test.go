package app

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"testing"
)

func TestInit_WithDefaults_Succeeds(t *testing.T) {
	t.Setenv("SERVER_PORT", "")
	t.Setenv("DATA_DIR", "")

	var buf bytes.Buffer
	cfg := Init(&buf)

	if cfg == nil {
		t.Fatal("expected non-nil config")
	}
	if cfg.ServerPort != "8080" {
		t.Errorf("ServerPort = %q, want %q", cfg.ServerPort, "8080")
	}
	if cfg.DataDir != "./data" {
		t.Errorf("DataDir = %q, want %q", cfg.DataDir, "./data")
	}

	// slogのグローバルロガーがJSON出力に設定されることを確認する
	slog.Default().Info("init test")
	var entry map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("expected JSON log output, got error: %v\nraw: %s", err, buf.String())
	}
	if entry["msg"] != "init test" {
		t.Errorf("msg = %q, want %q", entry["msg"], "init test")
	}
}

func TestInit_AppliesEnvOverrides(t *testing.T) {
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("CART_COOKIE_DAYS", "14")

	var buf bytes.Buffer
	cfg := Init(&buf)

	if cfg.ServerPort != "9090" {
		t.Errorf("ServerPort = %q, want %q", cfg.ServerPort, "9090")
	}
	if cfg.CartCookieDays != 14 {
		t.Errorf("CartCookieDays = %d, want 14", cfg.CartCookieDays)
	}
}

// TestRun_HealthcheckWithoutServer_ReturnsError はサーバーが起動していない状態での
// healthcheckコマンドがエラーを返すことを検証する。
func TestRun_HealthcheckWithoutServer_ReturnsError(t *testing.T) {
	// どのサービスも待ち受けていないポートを使う
	t.Setenv("SERVER_PORT", "1")

	var buf bytes.Buffer
	err := Run(&buf, []string{"healthcheck"})
	if err == nil {
		t.Fatal("Run(healthcheck) without server should return error")
	}
}

// TestRun_HealthcheckAgainstRunningServer_Succeeds は待ち受け中のサーバーに対する
// healthcheckコマンドが成功することを検証する。
func TestRun_HealthcheckAgainstRunningServer_Succeeds(t *testing.T) {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	defer listener.Close()

	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	go http.Serve(listener, mux)

	port := listener.Addr().(*net.TCPAddr).Port
	t.Setenv("SERVER_PORT", fmt.Sprintf("%d", port))

	var buf bytes.Buffer
	if err := Run(&buf, []string{"healthcheck"}); err != nil {
		t.Errorf("Run(healthcheck) = %v, want nil", err)
	}
}
