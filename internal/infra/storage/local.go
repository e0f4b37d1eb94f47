package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// 保存したファイルはこのパスで配信する
const URLPrefix = "/uploads"

// アップロード画像をローカルディレクトリに保存する
type LocalStore struct {
	dir   string
	newID func() string
}

// DI
func NewLocalStore(dir string) (*LocalStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &LocalStore{dir: dir, newID: uuid.NewString}, nil
}

func (s *LocalStore) Dir() string {
	return s.dir
}

// 保存して "/uploads/<name>" を返す。名前はuuidを前置して衝突させない
func (s *LocalStore) Save(ctx context.Context, originalName string, r io.Reader) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	name := s.newID() + "_" + SanitizeFilename(originalName)
	full := filepath.Join(s.dir, name)

	f, err := os.OpenFile(full, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(f, r); err != nil {
		_ = f.Close()
		_ = os.Remove(full)
		return "", err
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(full)
		return "", err
	}

	return path.Join(URLPrefix, name), nil
}

// パス区切りや記号を落としたファイル名
func SanitizeFilename(name string) string {
	name = strings.ReplaceAll(name, "\\", "/")
	name = path.Base(name)

	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '-', r == '_':
			b.WriteRune(r)
		case r == ' ':
			b.WriteRune('_')
		}
	}

	out := strings.TrimLeft(b.String(), "._")
	if out == "" {
		return "file"
	}
	return out
}

// Save したファイルを消す。DB登録に失敗したときの後始末用
func (s *LocalStore) Remove(ctx context.Context, storedURL string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	name := strings.TrimPrefix(storedURL, URLPrefix+"/")
	if name == storedURL || name == "" || strings.ContainsAny(name, "/\\") {
		return fmt.Errorf("not a stored upload: %q", storedURL)
	}
	err := os.Remove(filepath.Join(s.dir, name))
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}
