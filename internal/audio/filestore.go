package audio

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// FileResolver stores one file per handle under <dataDir>/audio. The handle
// is the file name stem; the extension records the content type so assets
// survive restarts without a side index and can be pruned with plain rm.
type FileResolver struct {
	dir string
}

func NewFileResolver(dataDir string) (*FileResolver, error) {
	dir := filepath.Join(dataDir, "audio")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("%w: create audio dir: %v", ErrPersistence, err)
	}
	return &FileResolver{dir: dir}, nil
}

var extByType = map[string]string{
	"audio/mpeg": ".mp3",
	"audio/wav":  ".wav",
	"audio/ogg":  ".ogg",
}

var typeByExt = map[string]string{
	".mp3": "audio/mpeg",
	".wav": "audio/wav",
	".ogg": "audio/ogg",
	".bin": "application/octet-stream",
}

func (r *FileResolver) Store(_ context.Context, data []byte, contentType string) (string, error) {
	handle := uuid.NewString()
	ext, ok := extByType[contentType]
	if !ok {
		ext = ".bin"
	}
	path := filepath.Join(r.dir, handle+ext)

	tmp, err := os.CreateTemp(r.dir, ".audio-*")
	if err != nil {
		return "", fmt.Errorf("%w: create temp file: %v", ErrPersistence, err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return "", fmt.Errorf("%w: write asset: %v", ErrPersistence, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return "", fmt.Errorf("%w: close asset: %v", ErrPersistence, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return "", fmt.Errorf("%w: place asset: %v", ErrPersistence, err)
	}
	return handle, nil
}

func (r *FileResolver) Resolve(_ context.Context, handle string) ([]byte, string, error) {
	// Handles are uuids we minted; reject anything that could escape the dir.
	if handle == "" || handle != filepath.Base(handle) {
		return nil, "", ErrNotFound
	}
	for ext, contentType := range typeByExt {
		data, err := os.ReadFile(filepath.Join(r.dir, handle+ext))
		if err == nil {
			return data, contentType, nil
		}
		if !os.IsNotExist(err) {
			return nil, "", fmt.Errorf("%w: read asset: %v", ErrPersistence, err)
		}
	}
	return nil, "", ErrNotFound
}

func (r *FileResolver) Close() error { return nil }
