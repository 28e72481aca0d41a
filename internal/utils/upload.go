package utils

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// ErrExtensaoInvalida is returned for files that are not png/jpg/jpeg/webp.
var ErrExtensaoInvalida = errors.New("apenas imagens (png, jpg, jpeg, webp) são permitidas")

var allowedExts = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".webp": true,
}

// SaveAvatar stores an uploaded avatar under dir with a
// timestamp-based name and returns the relative path to serve it from.
// Only the filename extension is checked, matching the public upload
// contract of the API.
func SaveAvatar(fh *multipart.FileHeader, dir string) (string, error) {
	ext := strings.ToLower(filepath.Ext(fh.Filename))
	if !allowedExts[ext] {
		return "", ErrExtensaoInvalida
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}

	name := fmt.Sprintf("%d%s", time.Now().UnixNano(), ext)
	dst := filepath.Join(dir, name)

	src, err := fh.Open()
	if err != nil {
		return "", err
	}
	defer src.Close()

	out, err := os.Create(dst)
	if err != nil {
		return "", err
	}
	defer out.Close()

	if _, err := io.Copy(out, src); err != nil {
		os.Remove(dst)
		return "", err
	}
	return filepath.ToSlash(dst), nil
}
