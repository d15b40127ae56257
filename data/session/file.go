package session

import (
	"context"
	"encoding/json"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/KotFed0t/stock_risk_client/utils"
)

// FileStorage is the local equivalent of browser storage: one JSON object on disk.
type FileStorage struct {
	path string
	mu   sync.Mutex
}

func NewFileStorage(path string) *FileStorage {
	return &FileStorage{path: path}
}

func (f *FileStorage) Get(ctx context.Context, k string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	values, err := f.read(ctx)
	if err != nil {
		return "", err
	}

	v, ok := values[k]
	if !ok {
		return "", ErrNotFound
	}
	return v, nil
}

func (f *FileStorage) Set(ctx context.Context, k, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	values, err := f.read(ctx)
	if err != nil {
		return err
	}
	values[k] = value

	return f.write(ctx, values)
}

func (f *FileStorage) Clear(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	err := os.Remove(f.path)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		slog.Error("can't remove session file", slog.String("rqID", utils.GetRequestIDFromCtx(ctx)), slog.String("err", err.Error()))
		return err
	}
	return nil
}

func (f *FileStorage) read(ctx context.Context) (map[string]string, error) {
	values := map[string]string{}

	data, err := os.ReadFile(f.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return values, nil
		}
		slog.Error("can't read session file", slog.String("rqID", utils.GetRequestIDFromCtx(ctx)), slog.String("err", err.Error()))
		return nil, err
	}

	if err = json.Unmarshal(data, &values); err != nil {
		// a corrupted file is an absent session
		slog.Warn("can't unmarshall session file", slog.String("rqID", utils.GetRequestIDFromCtx(ctx)), slog.String("err", err.Error()))
		return map[string]string{}, nil
	}
	if values == nil {
		// "null" decodes into a nil map
		values = map[string]string{}
	}
	return values, nil
}

func (f *FileStorage) write(ctx context.Context, values map[string]string) error {
	data, err := json.Marshal(values)
	if err != nil {
		return err
	}

	if dir := filepath.Dir(f.path); dir != "." {
		if err = os.MkdirAll(dir, 0o700); err != nil {
			return err
		}
	}

	tmp := f.path + ".tmp"
	if err = os.WriteFile(tmp, data, 0o600); err != nil {
		slog.Error("can't write session file", slog.String("rqID", utils.GetRequestIDFromCtx(ctx)), slog.String("err", err.Error()))
		return err
	}
	return os.Rename(tmp, f.path)
}
