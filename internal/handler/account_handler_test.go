package handler

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/piercelens/storefront/internal/middleware"
	"github.com/piercelens/storefront/internal/model"
)

// --- モック ---

type mockAccountService struct {
	currentUserFn       func() *model.ResolvedUser
	updateProfileFn     func(email string, patch model.Profile)
	paymentsFn          func(email string) []model.PaymentMethod
	addPaymentFn        func(email string, m model.PaymentMethod)
	removePaymentFn     func(email string, idx int) error
	setDefaultPaymentFn func(email string, idx int) error
	addressesFn         func(email string) []model.Address
	addAddressFn        func(email string, a model.Address)
	removeAddressFn     func(email string, idx int) error
	setDefaultAddressFn func(email string, idx int) error
	settingsFn          func(email string) model.Settings
	updateSettingsFn    func(email string, settings model.Settings)
	enableTwoFactorFn   func(email, code string) error
	deleteAccountFn     func(email string) error
}

func (m *mockAccountService) CurrentUser() *model.ResolvedUser {
	if m.currentUserFn != nil {
		return m.currentUserFn()
	}
	return &model.ResolvedUser{Email: "a@example.com"}
}
func (m *mockAccountService) UpdateProfile(email string, patch model.Profile) {
	if m.updateProfileFn != nil {
		m.updateProfileFn(email, patch)
	}
}
func (m *mockAccountService) Payments(email string) []model.PaymentMethod {
	if m.paymentsFn != nil {
		return m.paymentsFn(email)
	}
	return nil
}
func (m *mockAccountService) AddPaymentMethod(email string, pm model.PaymentMethod) {
	if m.addPaymentFn != nil {
		m.addPaymentFn(email, pm)
	}
}
func (m *mockAccountService) RemovePaymentMethod(email string, idx int) error {
	if m.removePaymentFn != nil {
		return m.removePaymentFn(email, idx)
	}
	return nil
}
func (m *mockAccountService) SetDefaultPaymentMethod(email string, idx int) error {
	if m.setDefaultPaymentFn != nil {
		return m.setDefaultPaymentFn(email, idx)
	}
	return nil
}
func (m *mockAccountService) Addresses(email string) []model.Address {
	if m.addressesFn != nil {
		return m.addressesFn(email)
	}
	return nil
}
func (m *mockAccountService) AddAddress(email string, a model.Address) {
	if m.addAddressFn != nil {
		m.addAddressFn(email, a)
	}
}
func (m *mockAccountService) RemoveAddress(email string, idx int) error {
	if m.removeAddressFn != nil {
		return m.removeAddressFn(email, idx)
	}
	return nil
}
func (m *mockAccountService) SetDefaultAddress(email string, idx int) error {
	if m.setDefaultAddressFn != nil {
		return m.setDefaultAddressFn(email, idx)
	}
	return nil
}
func (m *mockAccountService) Settings(email string) model.Settings {
	if m.settingsFn != nil {
		return m.settingsFn(email)
	}
	return model.DefaultSettings()
}
func (m *mockAccountService) UpdateSettings(email string, settings model.Settings) {
	if m.updateSettingsFn != nil {
		m.updateSettingsFn(email, settings)
	}
}
func (m *mockAccountService) EnableTwoFactor(email, code string) error {
	if m.enableTwoFactorFn != nil {
		return m.enableTwoFactorFn(email, code)
	}
	return nil
}
func (m *mockAccountService) DeleteAccount(email string) error {
	if m.deleteAccountFn != nil {
		return m.deleteAccountFn(email)
	}
	return nil
}

// accountTestRouter はアカウントハンドラーのルートを構成し、全リクエストに
// 認証済みメールアドレスを注入するルーターを返す。
func accountTestRouter(service AccountServiceInterface) http.Handler {
	h := NewAccountHandler(service)
	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			next.ServeHTTP(w, req.WithContext(middleware.ContextWithEmail(req.Context(), "a@example.com")))
		})
	})
	r.Delete("/api/account", h.DeleteAccount)
	r.Put("/api/account/profile", h.UpdateProfile)
	r.Post("/api/account/2fa", h.EnableTwoFA)
	r.Get("/api/account/payments", h.ListPayments)
	r.Post("/api/account/payments", h.AddPayment)
	r.Delete("/api/account/payments/{idx}", h.RemovePayment)
	r.Put("/api/account/payments/{idx}/default", h.SetDefaultPayment)
	r.Get("/api/account/addresses", h.ListAddresses)
	r.Post("/api/account/addresses", h.AddAddress)
	r.Delete("/api/account/addresses/{idx}", h.RemoveAddress)
	r.Put("/api/account/addresses/{idx}/default", h.SetDefaultAddress)
	r.Get("/api/account/settings", h.GetSettings)
	r.Put("/api/account/settings", h.UpdateSettings)
	return r
}

// --- テスト ---

// TestAccountHandler_UpdateProfile はプロフィール更新が委譲され、更新後の
// ユーザービューが返ることを検証する。
func TestAccountHandler_UpdateProfile(t *testing.T) {
	var gotPatch model.Profile
	service := &mockAccountService{
		updateProfileFn: func(email string, patch model.Profile) { gotPatch = patch },
	}

	body := `{"name":"表示名","phone":"090-0000-0000"}`
	rec := httptest.NewRecorder()
	req := httptest.NewRequest("PUT", "/api/account/profile", strings.NewReader(body))
	accountTestRouter(service).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}
	if gotPatch.Name != "表示名" || gotPatch.Phone != "090-0000-0000" {
		t.Errorf("patch = %+v", gotPatch)
	}
}

// TestAccountHandler_AddPayment は口座番号から下4桁が導出され、番号自体は
// 保存されないことを検証する。
func TestAccountHandler_AddPayment(t *testing.T) {
	var added model.PaymentMethod
	service := &mockAccountService{
		addPaymentFn: func(email string, m model.PaymentMethod) { added = m },
	}

	body := `{"name":"メイン口座","accountNumber":"123456789","isDefault":true}`
	rec := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/api/account/payments", strings.NewReader(body))
	accountTestRouter(service).ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201: %s", rec.Code, rec.Body.String())
	}
	if added.LastFour != "6789" {
		t.Errorf("LastFour = %q, want 6789", added.LastFour)
	}
	if added.Type != "US Bank" {
		t.Errorf("Type = %q, want US Bank", added.Type)
	}
	if !added.IsDefault {
		t.Error("IsDefault not carried")
	}
}

// TestAccountHandler_AddPaymentShortNumber は9桁未満の口座番号が422で
// 拒否されることを検証する。
func TestAccountHandler_AddPaymentShortNumber(t *testing.T) {
	service := &mockAccountService{
		addPaymentFn: func(email string, m model.PaymentMethod) {
			t.Error("AddPaymentMethod called for invalid account number")
		},
	}

	body := `{"name":"口座","accountNumber":"12345"}`
	rec := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/api/account/payments", strings.NewReader(body))
	accountTestRouter(service).ServeHTTP(rec, req)

	if rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("status = %d, want 422", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), model.ErrCodeInvalidCardNumber) {
		t.Errorf("body = %s", rec.Body.String())
	}
}

// TestAccountHandler_ListPaymentsEmpty は未登録ユーザーでnullではなく空配列が
// 返ることを検証する。
func TestAccountHandler_ListPaymentsEmpty(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/api/account/payments", nil)
	accountTestRouter(&mockAccountService{}).ServeHTTP(rec, req)

	if strings.TrimSpace(rec.Body.String()) != "[]" {
		t.Errorf("body = %s, want []", rec.Body.String())
	}
}

// TestAccountHandler_SetDefaultPayment はURLの位置がサービスへ渡ることを検証する。
func TestAccountHandler_SetDefaultPayment(t *testing.T) {
	var gotIdx int
	service := &mockAccountService{
		setDefaultPaymentFn: func(email string, idx int) error {
			gotIdx = idx
			return nil
		},
	}

	rec := httptest.NewRecorder()
	req := httptest.NewRequest("PUT", "/api/account/payments/2/default", nil)
	accountTestRouter(service).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if gotIdx != 2 {
		t.Errorf("idx = %d, want 2", gotIdx)
	}
}

// TestAccountHandler_RemovePaymentOutOfRange は範囲外の位置が404で返ることを検証する。
func TestAccountHandler_RemovePaymentOutOfRange(t *testing.T) {
	service := &mockAccountService{
		removePaymentFn: func(email string, idx int) error {
			return model.NewEntryNotFoundError(idx)
		},
	}

	rec := httptest.NewRecorder()
	req := httptest.NewRequest("DELETE", "/api/account/payments/9", nil)
	accountTestRouter(service).ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

// TestAccountHandler_AddAddress は住所追加が委譲されることを検証する。
func TestAccountHandler_AddAddress(t *testing.T) {
	var added model.Address
	service := &mockAccountService{
		addAddressFn: func(email string, a model.Address) { added = a },
	}

	body := `{"name":"自宅","street":"1 Main St","city":"Portland","isDefault":true}`
	rec := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/api/account/addresses", strings.NewReader(body))
	accountTestRouter(service).ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201", rec.Code)
	}
	if added.City != "Portland" || !added.IsDefault {
		t.Errorf("added = %+v", added)
	}
}

// TestAccountHandler_GetSettings は設定が返ることを検証する。
func TestAccountHandler_GetSettings(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/api/account/settings", nil)
	accountTestRouter(&mockAccountService{}).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"emailNotif":true`) {
		t.Errorf("body = %s", rec.Body.String())
	}
}

// TestAccountHandler_UpdateSettingsPartialBody は一部の項目だけを送った場合に
// 残りが現在値のまま保存されることを検証する。
func TestAccountHandler_UpdateSettingsPartialBody(t *testing.T) {
	var saved model.Settings
	service := &mockAccountService{
		settingsFn: func(email string) model.Settings {
			return model.Settings{EmailNotif: true, Marketing: false, TwoFA: true}
		},
		updateSettingsFn: func(email string, settings model.Settings) { saved = settings },
	}

	rec := httptest.NewRecorder()
	req := httptest.NewRequest("PUT", "/api/account/settings", strings.NewReader(`{"marketing":true}`))
	accountTestRouter(service).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	want := model.Settings{EmailNotif: true, Marketing: true, TwoFA: true}
	if saved != want {
		t.Errorf("saved = %+v, want %+v", saved, want)
	}
}

// TestAccountHandler_EnableTwoFA は確認コードがサービスへ渡ることを検証する。
func TestAccountHandler_EnableTwoFA(t *testing.T) {
	var gotCode string
	service := &mockAccountService{
		enableTwoFactorFn: func(email, code string) error {
			gotCode = code
			return nil
		},
	}

	rec := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/api/account/2fa", strings.NewReader(`{"code":"123456"}`))
	accountTestRouter(service).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if gotCode != "123456" {
		t.Errorf("code = %q", gotCode)
	}
}

// TestAccountHandler_EnableTwoFAInvalidCode は不正なコードが422で返ることを検証する。
func TestAccountHandler_EnableTwoFAInvalidCode(t *testing.T) {
	service := &mockAccountService{
		enableTwoFactorFn: func(email, code string) error {
			return model.NewInvalidTwoFACodeError()
		},
	}

	rec := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/api/account/2fa", strings.NewReader(`{"code":"12"}`))
	accountTestRouter(service).ServeHTTP(rec, req)

	if rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("status = %d, want 422", rec.Code)
	}
}

// TestAccountHandler_DeleteAccount は削除成功で204が返ることを検証する。
func TestAccountHandler_DeleteAccount(t *testing.T) {
	var gotEmail string
	service := &mockAccountService{
		deleteAccountFn: func(email string) error {
			gotEmail = email
			return nil
		},
	}

	rec := httptest.NewRecorder()
	req := httptest.NewRequest("DELETE", "/api/account", nil)
	accountTestRouter(service).ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want 204", rec.Code)
	}
	if gotEmail != "a@example.com" {
		t.Errorf("email = %q", gotEmail)
	}
}

// TestAccountHandler_Unauthenticated はセッションなしのリクエストが401で
// 拒否されることを検証する。
func TestAccountHandler_Unauthenticated(t *testing.T) {
	h := NewAccountHandler(&mockAccountService{})

	rec := httptest.NewRecorder()
	h.GetSettings(rec, httptest.NewRequest("GET", "/api/account/settings", nil))

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
}
