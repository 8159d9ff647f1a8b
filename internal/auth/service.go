// Package auth はユーザー登録、認証、セッション管理を提供する。
package auth

import (
	"log/slog"

	"github.com/piercelens/storefront/internal/model"
	"github.com/piercelens/storefront/internal/repository"
)

// 登録時と変更時でパスワードの最小長が異なる。
// 登録は6文字以上、変更は8文字以上を要求する。
const (
	MinPasswordLenSignup = 6
	MinPasswordLenChange = 8
)

// Service は認証に関するビジネスロジックを提供する。
// 検証失敗は*model.StoreErrorとして返し、呼び出し側が文言を選べるようにする。
type Service struct {
	users    repository.UserRepository
	sessions repository.SessionRepository
}

// NewService はServiceを生成する。
func NewService(users repository.UserRepository, sessions repository.SessionRepository) *Service {
	return &Service{
		users:    users,
		sessions: sessions,
	}
}

// Register は新規ユーザーを登録し、セッションを発行する。
// 正規化済みメールアドレスが既に存在する場合はDUPLICATE_EMAILで失敗する。
func (s *Service) Register(email, password, name string, remember bool) (*model.User, error) {
	if len(password) < MinPasswordLenSignup {
		return nil, model.NewPasswordTooShortError(MinPasswordLenSignup)
	}
	if s.users.FindByEmail(email) != nil {
		return nil, model.NewDuplicateEmailError(email)
	}

	u := model.User{
		Name:     name,
		Email:    email,
		Password: EncodePassword(password),
	}
	s.users.Append(u)
	s.sessions.Issue(email, remember)

	slog.Info("新規ユーザーを登録しました",
		slog.String("email", repository.NormalizeEmail(email)),
	)
	return &u, nil
}

// Authenticate は認証情報を検証し、成功すればセッションを発行する。
// 未登録メールはUSER_NOT_FOUND、パスワード不一致はBAD_CREDENTIALで失敗する。
func (s *Service) Authenticate(email, password string, remember bool) (*model.Session, error) {
	u := s.users.FindByEmail(email)
	if u == nil {
		return nil, model.NewUserNotFoundError()
	}
	if u.Password != EncodePassword(password) {
		return nil, model.NewBadCredentialError()
	}

	s.sessions.Issue(email, remember)
	slog.Info("サインインしました",
		slog.String("email", repository.NormalizeEmail(email)),
	)
	return &model.Session{Email: email}, nil
}

// IssueSession はセッションポインタを発行する。
// remember=trueなら永続ストア、falseならタブ局所ストアに保存し、もう一方は必ず消す。
func (s *Service) IssueSession(email string, remember bool) {
	s.sessions.Issue(email, remember)
}

// ClearSession はサインアウトする。両方のストアからポインタを削除する。
func (s *Service) ClearSession() {
	s.sessions.Clear()
}

// CurrentSession は現在のセッションを返す。未認証の場合はnil。
func (s *Service) CurrentSession() *model.Session {
	return s.sessions.Current()
}

// ChangePassword はパスワードを変更する。
// 旧パスワードが一致しなければBAD_CREDENTIAL、新パスワードが8文字未満なら
// PASSWORD_TOO_SHORTで失敗し、保存済みパスワードは変更されない。
func (s *Service) ChangePassword(email, oldPw, newPw string) error {
	u := s.users.FindByEmail(email)
	if u == nil {
		return model.NewUserNotFoundError()
	}
	if u.Password != EncodePassword(oldPw) {
		return model.NewBadCredentialError()
	}
	if len(newPw) < MinPasswordLenChange {
		return model.NewPasswordTooShortError(MinPasswordLenChange)
	}

	encoded := EncodePassword(newPw)
	s.users.Update(email, model.UserPatch{Password: &encoded})
	slog.Info("パスワードを変更しました",
		slog.String("email", repository.NormalizeEmail(email)),
	)
	return nil
}
