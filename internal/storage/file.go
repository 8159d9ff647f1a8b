package storage

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
)

// FileStore はディスク上の1つのJSONドキュメントに全キーを保存する永続ストア。
// 書き込みのたびにドキュメント全体を置き換える（全置換・last-write-wins）。
//
// 変更通知: SetまたはRemoveが完了するたびに、登録済みのウォッチャーへ
// 変更されたキーを通知する。複数の独立したコンポーネントが同じストアを
// 共有して変更に追従するための仕組みで、自分自身の書き込みにも通知される。
type FileStore struct {
	mu       sync.Mutex
	path     string
	data     map[string]json.RawMessage
	watchers []func(key string)
}

// OpenFileStore は指定パスのファイルを読み込んでFileStoreを生成する。
// ファイルが存在しない場合は空のストアとして開始する。
// ファイル内容が破損している場合は警告ログを残して空として扱う。
func OpenFileStore(path string) (*FileStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("ストアディレクトリの作成に失敗: %w", err)
	}

	fs := &FileStore{
		path: path,
		data: make(map[string]json.RawMessage),
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return fs, nil
		}
		return nil, fmt.Errorf("ストアファイルの読み込みに失敗: %w", err)
	}

	if err := json.Unmarshal(raw, &fs.data); err != nil {
		slog.Warn("破損したストアファイルを無視して空から開始します",
			slog.String("path", path),
			slog.String("error", err.Error()),
		)
		fs.data = make(map[string]json.RawMessage)
	}

	return fs, nil
}

// Get は指定キーの値のコピーを返す。
func (f *FileStore) Get(key string) ([]byte, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	raw, ok := f.data[key]
	if !ok {
		return nil, false
	}
	out := make([]byte, len(raw))
	copy(out, raw)
	return out, true
}

// Set は指定キーに値を書き込み、ドキュメント全体をディスクへ反映する。
// 書き込み完了後にウォッチャーへ通知する。
func (f *FileStore) Set(key string, value []byte) error {
	f.mu.Lock()
	stored := make(json.RawMessage, len(value))
	copy(stored, value)
	f.data[key] = stored
	err := f.persistLocked()
	f.mu.Unlock()

	if err != nil {
		return err
	}
	f.notify(key)
	return nil
}

// Remove は指定キーを削除し、ドキュメント全体をディスクへ反映する。
// 削除完了後にウォッチャーへ通知する。ディスク反映の失敗はログのみ。
func (f *FileStore) Remove(key string) {
	f.mu.Lock()
	_, existed := f.data[key]
	delete(f.data, key)
	var err error
	if existed {
		err = f.persistLocked()
	}
	f.mu.Unlock()

	if err != nil {
		slog.Error("ストアファイルの書き込みに失敗しました",
			slog.String("path", f.path),
			slog.String("error", err.Error()),
		)
	}
	if existed {
		f.notify(key)
	}
}

// Keys は現在保存されている全キーを返す。掃除ジョブ用。
func (f *FileStore) Keys() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	keys := make([]string, 0, len(f.data))
	for k := range f.data {
		keys = append(keys, k)
	}
	return keys
}

// Watch は変更通知を受け取るウォッチャーを登録する。
// 通知はSet/Removeの完了後に同期的に呼び出される。登録解除はできない。
func (f *FileStore) Watch(fn func(key string)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.watchers = append(f.watchers, fn)
}

// persistLocked はドキュメント全体をディスクへ書き出す。
// 一時ファイルへ書いてからrenameすることで、途中失敗による破損を避ける。
// インデントなしで書き出す。整形すると再読み込み時に各値へインデントが
// 混入し、Setした値とGetで返る値がバイト単位で一致しなくなる。
// 呼び出し側がmuを保持していること。
func (f *FileStore) persistLocked() error {
	raw, err := json.Marshal(f.data)
	if err != nil {
		return fmt.Errorf("ストアのシリアライズに失敗: %w", err)
	}

	tmp := f.path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o600); err != nil {
		return fmt.Errorf("ストアファイルの書き込みに失敗: %w", err)
	}
	if err := os.Rename(tmp, f.path); err != nil {
		return fmt.Errorf("ストアファイルの差し替えに失敗: %w", err)
	}
	return nil
}

// notify は登録済みウォッチャーへ変更キーを通知する。
func (f *FileStore) notify(key string) {
	f.mu.Lock()
	watchers := make([]func(string), len(f.watchers))
	copy(watchers, f.watchers)
	f.mu.Unlock()

	for _, fn := range watchers {
		fn(key)
	}
}
