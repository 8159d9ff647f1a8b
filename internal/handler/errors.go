// Package handler はHTTPハンドラーを提供する。
//
// ハンドラーは各ストアの読み書き契約を消費する薄い層であり、
// 検証失敗の文言選択とHTTPステータスへの変換だけを担う。
package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/piercelens/storefront/internal/middleware"
	"github.com/piercelens/storefront/internal/model"
)

// writeJSONResponse はJSONレスポンスを書き込む。
func writeJSONResponse(w http.ResponseWriter, statusCode int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(v)
}

// handleServiceError はサービス層から返されたエラーを適切なHTTPステータスコードに変換する。
func handleServiceError(w http.ResponseWriter, err error) {
	var storeErr *model.StoreError
	if errors.As(err, &storeErr) {
		middleware.WriteErrorResponse(w, mapStoreErrorToHTTPStatus(storeErr), storeErr)
		return
	}

	// StoreError以外のエラーは内部サーバーエラーとして扱う
	slog.Error("internal server error", slog.String("error", err.Error()))
	middleware.WriteInternalServerError(w)
}

// mapStoreErrorToHTTPStatus はStoreErrorコードからHTTPステータスコードにマッピングする。
func mapStoreErrorToHTTPStatus(storeErr *model.StoreError) int {
	switch storeErr.Code {
	case model.ErrCodeDuplicateEmail:
		return http.StatusConflict
	case model.ErrCodeUserNotFound:
		return http.StatusNotFound
	case model.ErrCodeBadCredential:
		return http.StatusUnauthorized
	case model.ErrCodePasswordTooShort, model.ErrCodePasswordMismatch,
		model.ErrCodeInvalidTwoFACode, model.ErrCodeInvalidCardNumber:
		return http.StatusUnprocessableEntity
	case model.ErrCodeEntryNotFound:
		return http.StatusNotFound
	case model.ErrCodeEmptyCart:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// requireEmail はコンテキストから認証済みメールアドレスを取り出す。
// 取り出せない場合は401を書き込んでfalseを返す。
func requireEmail(w http.ResponseWriter, r *http.Request) (string, bool) {
	email, err := middleware.EmailFromContext(r.Context())
	if err != nil {
		middleware.WriteErrorResponse(w, http.StatusUnauthorized, &model.StoreError{
			Code:     "UNAUTHORIZED",
			Message:  "認証が必要です。",
			Category: "auth",
			Action:   "サインインしてください。",
		})
		return "", false
	}
	return email, true
}
