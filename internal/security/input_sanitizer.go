// Package security はアプリケーションのセキュリティ機能を提供する。
//
// InputSanitizerService はユーザー入力の表示用文字列（氏名、プロフィール項目、
// カスタマイズの選択値など）からマークアップを除去する。
// これらの値はUI層でそのまま描画されるため、保存前にプレーンテキストへ
// 正規化しておく。bluemondayの許可リストベースのポリシーを使用する。
package security

import (
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// InputSanitizerService は表示用文字列のサニタイズ機能のインターフェースを定義する。
type InputSanitizerService interface {
	// SanitizeText は文字列から全てのHTMLタグを除去したプレーンテキストを返す。
	// 前後の空白もトリムする。空文字列の入力には空文字列を返す。
	// 同一入力に対して常に同一出力を返す（冪等）。
	SanitizeText(raw string) string
}

// inputSanitizer はInputSanitizerServiceの実装。
// bluemondayのStrictPolicyを保持し、スレッドセーフにサニタイズ処理を行う。
type inputSanitizer struct {
	policy *bluemonday.Policy
}

// NewInputSanitizer はInputSanitizerServiceの新しいインスタンスを生成する。
// StrictPolicyは一切のタグ・属性を許可しない。
func NewInputSanitizer() *inputSanitizer {
	return &inputSanitizer{
		policy: bluemonday.StrictPolicy(),
	}
}

// SanitizeText は文字列から全てのHTMLタグを除去したプレーンテキストを返す。
func (s *inputSanitizer) SanitizeText(raw string) string {
	return strings.TrimSpace(s.policy.Sanitize(raw))
}
