package handler

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/piercelens/storefront/internal/middleware"
	"github.com/piercelens/storefront/internal/model"
)

// AccountServiceInterface はアカウントハンドラーが必要とするサービスインターフェース。
type AccountServiceInterface interface {
	CurrentUser() *model.ResolvedUser
	UpdateProfile(email string, patch model.Profile)
	Payments(email string) []model.PaymentMethod
	AddPaymentMethod(email string, m model.PaymentMethod)
	RemovePaymentMethod(email string, idx int) error
	SetDefaultPaymentMethod(email string, idx int) error
	Addresses(email string) []model.Address
	AddAddress(email string, a model.Address)
	RemoveAddress(email string, idx int) error
	SetDefaultAddress(email string, idx int) error
	Settings(email string) model.Settings
	UpdateSettings(email string, settings model.Settings)
	EnableTwoFactor(email, code string) error
	DeleteAccount(email string) error
}

// AccountHandler はアカウント領域のHTTPハンドラー。
type AccountHandler struct {
	service AccountServiceInterface
}

// NewAccountHandler はAccountHandlerを生成する。
func NewAccountHandler(service AccountServiceInterface) *AccountHandler {
	return &AccountHandler{service: service}
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		middleware.WriteErrorResponse(w, http.StatusBadRequest, &model.StoreError{
			Code:     "INVALID_BODY",
			Message:  "リクエストボディを解釈できません。",
			Category: "validation",
			Action:   "JSONで送信してください。",
		})
		return false
	}
	return true
}

// idxParam はURLパラメータからリスト位置を取り出す。数値でなければ-1を返す。
func idxParam(r *http.Request) int {
	idx, err := strconv.Atoi(chi.URLParam(r, "idx"))
	if err != nil {
		return -1
	}
	return idx
}

// UpdateProfile はプロフィールを部分更新する。
// PUT /api/account/profile
func (h *AccountHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	email, ok := requireEmail(w, r)
	if !ok {
		return
	}

	var patch model.Profile
	if !decodeBody(w, r, &patch) {
		return
	}

	h.service.UpdateProfile(email, patch)
	writeJSONResponse(w, http.StatusOK, h.service.CurrentUser())
}

// ListPayments は支払い方法の一覧を返す。
// GET /api/account/payments
func (h *AccountHandler) ListPayments(w http.ResponseWriter, r *http.Request) {
	email, ok := requireEmail(w, r)
	if !ok {
		return
	}
	list := h.service.Payments(email)
	if list == nil {
		list = []model.PaymentMethod{}
	}
	writeJSONResponse(w, http.StatusOK, list)
}

// addPaymentRequest は支払い方法追加のリクエストボディ。
// 口座番号は保存せず、下4桁だけを導出して保持する。
type addPaymentRequest struct {
	Name          string `json:"name"`
	AccountNumber string `json:"accountNumber"`
	IsDefault     bool   `json:"isDefault"`
}

// AddPayment は支払い方法を追加する。
// POST /api/account/payments
func (h *AccountHandler) AddPayment(w http.ResponseWriter, r *http.Request) {
	email, ok := requireEmail(w, r)
	if !ok {
		return
	}

	var req addPaymentRequest
	if !decodeBody(w, r, &req) {
		return
	}

	digits := strings.ReplaceAll(req.AccountNumber, " ", "")
	if len(digits) < 9 {
		handleServiceError(w, model.NewInvalidCardNumberError())
		return
	}

	h.service.AddPaymentMethod(email, model.PaymentMethod{
		Name:      req.Name,
		Type:      "US Bank",
		LastFour:  digits[len(digits)-4:],
		IsDefault: req.IsDefault,
	})
	writeJSONResponse(w, http.StatusCreated, h.service.Payments(email))
}

// RemovePayment は指定位置の支払い方法を削除する。
// DELETE /api/account/payments/{idx}
func (h *AccountHandler) RemovePayment(w http.ResponseWriter, r *http.Request) {
	email, ok := requireEmail(w, r)
	if !ok {
		return
	}
	if err := h.service.RemovePaymentMethod(email, idxParam(r)); err != nil {
		handleServiceError(w, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, h.service.Payments(email))
}

// SetDefaultPayment は指定位置の支払い方法を唯一のデフォルトにする。
// PUT /api/account/payments/{idx}/default
func (h *AccountHandler) SetDefaultPayment(w http.ResponseWriter, r *http.Request) {
	email, ok := requireEmail(w, r)
	if !ok {
		return
	}
	if err := h.service.SetDefaultPaymentMethod(email, idxParam(r)); err != nil {
		handleServiceError(w, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, h.service.Payments(email))
}

// ListAddresses は住所録の一覧を返す。
// GET /api/account/addresses
func (h *AccountHandler) ListAddresses(w http.ResponseWriter, r *http.Request) {
	email, ok := requireEmail(w, r)
	if !ok {
		return
	}
	list := h.service.Addresses(email)
	if list == nil {
		list = []model.Address{}
	}
	writeJSONResponse(w, http.StatusOK, list)
}

// AddAddress は住所を追加する。
// POST /api/account/addresses
func (h *AccountHandler) AddAddress(w http.ResponseWriter, r *http.Request) {
	email, ok := requireEmail(w, r)
	if !ok {
		return
	}

	var a model.Address
	if !decodeBody(w, r, &a) {
		return
	}

	h.service.AddAddress(email, a)
	writeJSONResponse(w, http.StatusCreated, h.service.Addresses(email))
}

// RemoveAddress は指定位置の住所を削除する。
// DELETE /api/account/addresses/{idx}
func (h *AccountHandler) RemoveAddress(w http.ResponseWriter, r *http.Request) {
	email, ok := requireEmail(w, r)
	if !ok {
		return
	}
	if err := h.service.RemoveAddress(email, idxParam(r)); err != nil {
		handleServiceError(w, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, h.service.Addresses(email))
}

// SetDefaultAddress は指定位置の住所を唯一のデフォルトにする。
// PUT /api/account/addresses/{idx}/default
func (h *AccountHandler) SetDefaultAddress(w http.ResponseWriter, r *http.Request) {
	email, ok := requireEmail(w, r)
	if !ok {
		return
	}
	if err := h.service.SetDefaultAddress(email, idxParam(r)); err != nil {
		handleServiceError(w, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, h.service.Addresses(email))
}

// GetSettings は設定を返す。未保存または破損時は既定値。
// GET /api/account/settings
func (h *AccountHandler) GetSettings(w http.ResponseWriter, r *http.Request) {
	email, ok := requireEmail(w, r)
	if !ok {
		return
	}
	writeJSONResponse(w, http.StatusOK, h.service.Settings(email))
}

// UpdateSettings は設定を全置換する。
// PUT /api/account/settings
func (h *AccountHandler) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	email, ok := requireEmail(w, r)
	if !ok {
		return
	}

	settings := h.service.Settings(email)
	if !decodeBody(w, r, &settings) {
		return
	}

	h.service.UpdateSettings(email, settings)
	writeJSONResponse(w, http.StatusOK, settings)
}

// enableTwoFARequest は2要素認証有効化のリクエストボディ。
type enableTwoFARequest struct {
	Code string `json:"code"`
}

// EnableTwoFA は確認コードを検証して2要素認証を有効化する。
// POST /api/account/2fa
func (h *AccountHandler) EnableTwoFA(w http.ResponseWriter, r *http.Request) {
	email, ok := requireEmail(w, r)
	if !ok {
		return
	}

	var req enableTwoFARequest
	if !decodeBody(w, r, &req) {
		return
	}

	if err := h.service.EnableTwoFactor(email, req.Code); err != nil {
		handleServiceError(w, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, h.service.Settings(email))
}

// DeleteAccount はアカウントを削除する。取り消しはできない。
// DELETE /api/account
func (h *AccountHandler) DeleteAccount(w http.ResponseWriter, r *http.Request) {
	email, ok := requireEmail(w, r)
	if !ok {
		return
	}
	if err := h.service.DeleteAccount(email); err != nil {
		handleServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
