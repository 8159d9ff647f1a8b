// Package account はアカウント領域のドメインロジックを提供する。
//
// プロフィール、支払い方法、住所録、設定の各コレクションを扱う。
// 支払い方法と住所はユーザーごとのリストで、IsDefault=trueは高々1件という
// デフォルト排他の不変条件を全ての変更操作で維持する。
package account

import (
	"log/slog"

	"github.com/piercelens/storefront/internal/model"
	"github.com/piercelens/storefront/internal/repository"
	"github.com/piercelens/storefront/internal/security"
)

// twoFACodeLen は2要素認証の確認コードの桁数。
const twoFACodeLen = 6

// Service はアカウント管理のサービス層。
type Service struct {
	users     repository.UserRepository
	sessions  repository.SessionRepository
	profiles  repository.ProfileRepository
	payments  repository.PaymentRepository
	addresses repository.AddressRepository
	settings  repository.SettingsRepository
	sanitizer security.InputSanitizerService
}

// NewService はServiceを生成する。
func NewService(
	users repository.UserRepository,
	sessions repository.SessionRepository,
	profiles repository.ProfileRepository,
	payments repository.PaymentRepository,
	addresses repository.AddressRepository,
	settings repository.SettingsRepository,
	sanitizer security.InputSanitizerService,
) *Service {
	return &Service{
		users:     users,
		sessions:  sessions,
		profiles:  profiles,
		payments:  payments,
		addresses: addresses,
		settings:  settings,
		sanitizer: sanitizer,
	}
}

// CurrentUser はセッションから現在のユーザーを解決して返す。
// 未認証、またはセッションが指すユーザーが存在しない場合はnilを返す。
func (s *Service) CurrentUser() *model.ResolvedUser {
	session := s.sessions.Current()
	if session == nil {
		return nil
	}
	return s.ResolveUser(session.Email)
}

// ResolveUser はユーザー本体にプロフィールブロブを読み出し時マージしたビューを返す。
// プロフィールの空でないフィールドがユーザー本体の値を上書きする。
func (s *Service) ResolveUser(email string) *model.ResolvedUser {
	u := s.users.FindByEmail(email)
	if u == nil {
		return nil
	}

	resolved := &model.ResolvedUser{
		Email: u.Email,
		Name:  u.Name,
	}
	p := s.profiles.Get(email)
	if p.Name != "" {
		resolved.Name = p.Name
	}
	resolved.Phone = p.Phone
	resolved.Country = p.Country
	resolved.Avatar = p.Avatar
	return resolved
}

// UpdateProfile はプロフィールブロブへpatchをマージして書き戻す。
// 表示用文字列はマークアップを除去してから保存する。
// 空のフィールドは既存の値を保持する。
func (s *Service) UpdateProfile(email string, patch model.Profile) {
	current := s.profiles.Get(email)
	if patch.Name != "" {
		current.Name = s.sanitizer.SanitizeText(patch.Name)
	}
	if patch.Phone != "" {
		current.Phone = s.sanitizer.SanitizeText(patch.Phone)
	}
	if patch.Country != "" {
		current.Country = s.sanitizer.SanitizeText(patch.Country)
	}
	if patch.Avatar != "" {
		current.Avatar = patch.Avatar
	}
	s.profiles.Put(email, current)
}

// UpdateUser はユーザー本体のレコードへpatchを部分マージする。該当がなければ何もしない。
func (s *Service) UpdateUser(email string, patch model.UserPatch) {
	if patch.Name != nil {
		clean := s.sanitizer.SanitizeText(*patch.Name)
		patch.Name = &clean
	}
	s.users.Update(email, patch)
}

// Payments は該当ユーザーの支払い方法リストを返す。
func (s *Service) Payments(email string) []model.PaymentMethod {
	return s.payments.ListByEmail(email)
}

// AddPaymentMethod は支払い方法をリスト末尾に追加する。
// IsDefault=trueで追加する場合は先に既存のデフォルトフラグを全て落とす。
// 空のリストへの最初の1件は無条件にデフォルトになる。
func (s *Service) AddPaymentMethod(email string, m model.PaymentMethod) {
	list := s.payments.ListByEmail(email)
	if m.IsDefault {
		for i := range list {
			list[i].IsDefault = false
		}
	}
	m.IsDefault = m.IsDefault || len(list) == 0
	m.Name = s.sanitizer.SanitizeText(m.Name)
	list = append(list, m)
	s.payments.ReplaceByEmail(email, list)
}

// RemovePaymentMethod は指定位置の支払い方法を削除する。
// 位置が範囲外の場合はENTRY_NOT_FOUNDで失敗する。
// デフォルトの1件を削除してもリストの他の項目は昇格しない。
func (s *Service) RemovePaymentMethod(email string, idx int) error {
	list := s.payments.ListByEmail(email)
	if idx < 0 || idx >= len(list) {
		return model.NewEntryNotFoundError(idx)
	}
	list = append(list[:idx], list[idx+1:]...)
	s.payments.ReplaceByEmail(email, list)
	return nil
}

// SetDefaultPaymentMethod は指定位置の支払い方法を唯一のデフォルトにする。
// 呼び出し後、リスト内のIsDefault=trueは必ず1件になる。
func (s *Service) SetDefaultPaymentMethod(email string, idx int) error {
	list := s.payments.ListByEmail(email)
	if idx < 0 || idx >= len(list) {
		return model.NewEntryNotFoundError(idx)
	}
	for i := range list {
		list[i].IsDefault = i == idx
	}
	s.payments.ReplaceByEmail(email, list)
	return nil
}

// Addresses は該当ユーザーの住所リストを返す。
func (s *Service) Addresses(email string) []model.Address {
	return s.addresses.ListByEmail(email)
}

// AddAddress は住所をリスト末尾に追加する。デフォルト排他の扱いは支払い方法と同じ。
func (s *Service) AddAddress(email string, a model.Address) {
	list := s.addresses.ListByEmail(email)
	if a.IsDefault {
		for i := range list {
			list[i].IsDefault = false
		}
	}
	a.IsDefault = a.IsDefault || len(list) == 0
	a.Name = s.sanitizer.SanitizeText(a.Name)
	a.Street = s.sanitizer.SanitizeText(a.Street)
	a.City = s.sanitizer.SanitizeText(a.City)
	a.State = s.sanitizer.SanitizeText(a.State)
	a.Zip = s.sanitizer.SanitizeText(a.Zip)
	a.Country = s.sanitizer.SanitizeText(a.Country)
	list = append(list, a)
	s.addresses.ReplaceByEmail(email, list)
}

// RemoveAddress は指定位置の住所を削除する。位置が範囲外の場合はENTRY_NOT_FOUND。
func (s *Service) RemoveAddress(email string, idx int) error {
	list := s.addresses.ListByEmail(email)
	if idx < 0 || idx >= len(list) {
		return model.NewEntryNotFoundError(idx)
	}
	list = append(list[:idx], list[idx+1:]...)
	s.addresses.ReplaceByEmail(email, list)
	return nil
}

// SetDefaultAddress は指定位置の住所を唯一のデフォルトにする。
func (s *Service) SetDefaultAddress(email string, idx int) error {
	list := s.addresses.ListByEmail(email)
	if idx < 0 || idx >= len(list) {
		return model.NewEntryNotFoundError(idx)
	}
	for i := range list {
		list[i].IsDefault = i == idx
	}
	s.addresses.ReplaceByEmail(email, list)
	return nil
}

// Settings は該当ユーザーの設定を返す。未保存または破損時は既定値。
func (s *Service) Settings(email string) model.Settings {
	return s.settings.Get(email)
}

// UpdateSettings は該当ユーザーの設定を全置換する。
func (s *Service) UpdateSettings(email string, settings model.Settings) {
	s.settings.Put(email, settings)
}

// EnableTwoFactor は確認コードを検証して2要素認証を有効化する。
// コードが6桁でない場合はINVALID_2FA_CODEで失敗し、設定は変更されない。
func (s *Service) EnableTwoFactor(email, code string) error {
	if len(code) != twoFACodeLen {
		return model.NewInvalidTwoFACodeError()
	}
	settings := s.settings.Get(email)
	settings.TwoFA = true
	s.settings.Put(email, settings)
	return nil
}

// DeleteAccount はアカウントを削除する。取り消しはできない。
// ユーザー本体の削除、セッションの破棄、プロフィールブロブの削除を連鎖して行う。
// 該当ユーザーが存在しない場合はUSER_NOT_FOUNDで失敗する。
func (s *Service) DeleteAccount(email string) error {
	if !s.users.DeleteByEmail(email) {
		return model.NewUserNotFoundError()
	}
	s.sessions.Clear()
	s.profiles.Delete(email)

	slog.Info("アカウントを削除しました",
		slog.String("email", repository.NormalizeEmail(email)),
	)
	return nil
}
