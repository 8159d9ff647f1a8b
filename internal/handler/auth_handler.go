package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/piercelens/storefront/internal/metrics"
	"github.com/piercelens/storefront/internal/middleware"
	"github.com/piercelens/storefront/internal/model"
)

// AuthServiceInterface は認証ハンドラーが必要とするサービスインターフェース。
type AuthServiceInterface interface {
	Register(email, password, name string, remember bool) (*model.User, error)
	Authenticate(email, password string, remember bool) (*model.Session, error)
	ClearSession()
	CurrentSession() *model.Session
	ChangePassword(email, oldPw, newPw string) error
}

// CurrentUserResolver は現在のユーザービューの解決インターフェース。
// account.Serviceの部分集合として定義する。
type CurrentUserResolver interface {
	CurrentUser() *model.ResolvedUser
}

// AuthHandler は登録・認証関連のHTTPハンドラー。
type AuthHandler struct {
	service   AuthServiceInterface
	resolver  CurrentUserResolver
	collector metrics.MetricsCollector
}

// NewAuthHandler はAuthHandlerを生成する。
func NewAuthHandler(service AuthServiceInterface, resolver CurrentUserResolver, collector metrics.MetricsCollector) *AuthHandler {
	return &AuthHandler{
		service:   service,
		resolver:  resolver,
		collector: collector,
	}
}

// credentialRequest は登録・サインインの共通リクエストボディ。
type credentialRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Remember bool   `json:"remember"`
}

func decodeCredential(w http.ResponseWriter, r *http.Request) (*credentialRequest, bool) {
	var req credentialRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		middleware.WriteErrorResponse(w, http.StatusBadRequest, &model.StoreError{
			Code:     "INVALID_BODY",
			Message:  "リクエストボディを解釈できません。",
			Category: "validation",
			Action:   "email、passwordをJSONで送信してください。",
		})
		return nil, false
	}
	if req.Email == "" || req.Password == "" {
		middleware.WriteErrorResponse(w, http.StatusBadRequest, &model.StoreError{
			Code:     "MISSING_FIELD",
			Message:  "メールアドレスとパスワードは必須です。",
			Category: "validation",
			Action:   "両方の項目を入力してください。",
		})
		return nil, false
	}
	return &req, true
}

// Register は新規ユーザーを登録してセッションを発行する。
// POST /auth/register
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeCredential(w, r)
	if !ok {
		return
	}

	u, err := h.service.Register(req.Email, req.Password, req.Name, req.Remember)
	if err != nil {
		h.recordFailure(err)
		handleServiceError(w, err)
		return
	}

	h.collector.RecordAuthSuccess()
	writeJSONResponse(w, http.StatusCreated, map[string]string{
		"name":  u.Name,
		"email": u.Email,
	})
}

// Login は認証情報を検証してセッションを発行する。
// POST /auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeCredential(w, r)
	if !ok {
		return
	}

	session, err := h.service.Authenticate(req.Email, req.Password, req.Remember)
	if err != nil {
		h.recordFailure(err)
		handleServiceError(w, err)
		return
	}

	h.collector.RecordAuthSuccess()
	writeJSONResponse(w, http.StatusOK, session)
}

// Logout はセッションを破棄する。
// POST /auth/logout
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	h.service.ClearSession()
	w.WriteHeader(http.StatusNoContent)
}

// Me は現在のユーザー（プロフィールマージ済み）を返す。
// GET /auth/me
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	current := h.resolver.CurrentUser()
	if current == nil {
		middleware.WriteErrorResponse(w, http.StatusUnauthorized, &model.StoreError{
			Code:     "UNAUTHORIZED",
			Message:  "サインインしていません。",
			Category: "auth",
			Action:   "サインインしてください。",
		})
		return
	}
	writeJSONResponse(w, http.StatusOK, current)
}

// changePasswordRequest はパスワード変更のリクエストボディ。
type changePasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
	ConfirmPassword string `json:"confirmPassword"`
}

// ChangePassword はパスワードを変更する。
// 新パスワードと確認入力の不一致はサービス層に渡す前に拒否する。
// POST /api/account/password
func (h *AuthHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	email, ok := requireEmail(w, r)
	if !ok {
		return
	}

	var req changePasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		middleware.WriteErrorResponse(w, http.StatusBadRequest, &model.StoreError{
			Code:     "INVALID_BODY",
			Message:  "リクエストボディを解釈できません。",
			Category: "validation",
			Action:   "パスワード項目をJSONで送信してください。",
		})
		return
	}

	if req.NewPassword != req.ConfirmPassword {
		handleServiceError(w, model.NewPasswordMismatchError())
		return
	}

	if err := h.service.ChangePassword(email, req.CurrentPassword, req.NewPassword); err != nil {
		handleServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// recordFailure は認証失敗をエラーコード別にメトリクスへ記録する。
func (h *AuthHandler) recordFailure(err error) {
	var storeErr *model.StoreError
	if errors.As(err, &storeErr) {
		h.collector.RecordAuthFailure(storeErr.Code)
	}
}
