// Package store writes run artifacts to a local directory and publishes
// them to S3-compatible object storage.
package store

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/ogulcanaydogan/gqlrecover/internal/hash"
)

// File is one artifact to write.
type File struct {
	Name    string
	Content []byte
}

// Written describes an artifact on disk.
type Written struct {
	Name   string
	Path   string
	Digest string
	Size   int64
}

// WriteAll writes every file into dir or none of them: each file is first
// written to a temporary name and renamed into place once all writes
// succeeded.
func WriteAll(dir string, files []File) ([]Written, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}
	temps := make([]string, 0, len(files))
	cleanup := func() {
		for _, t := range temps {
			os.Remove(t)
		}
	}
	for _, f := range files {
		if f.Name == "" || filepath.Base(f.Name) != f.Name {
			cleanup()
			return nil, fmt.Errorf("invalid artifact name %q", f.Name)
		}
		tmp, err := writeTemp(dir, f)
		if err != nil {
			cleanup()
			return nil, err
		}
		temps = append(temps, tmp)
	}

	out := make([]Written, 0, len(files))
	for i, f := range files {
		dst := filepath.Join(dir, f.Name)
		if err := os.Rename(temps[i], dst); err != nil {
			cleanup()
			return nil, fmt.Errorf("install %s: %w", dst, err)
		}
		out = append(out, Describe(dir, f))
	}
	return out, nil
}

// Describe returns what WriteAll will record for f without writing it.
func Describe(dir string, f File) Written {
	return Written{Name: f.Name, Path: filepath.Join(dir, f.Name), Digest: hash.Bytes(f.Content), Size: int64(len(f.Content))}
}

func writeTemp(dir string, f File) (string, error) {
	tmp, err := os.CreateTemp(dir, "."+f.Name+".*")
	if err != nil {
		return "", fmt.Errorf("create %s: %w", f.Name, err)
	}
	if _, err := tmp.Write(f.Content); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return "", fmt.Errorf("write %s: %w", f.Name, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return "", fmt.Errorf("close %s: %w", f.Name, err)
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		os.Remove(tmp.Name())
		return "", fmt.Errorf("chmod %s: %w", f.Name, err)
	}
	return tmp.Name(), nil
}

// WriteFile writes a single file, e.g. a downloaded chunk.
func WriteFile(path string, content []byte) (Written, error) {
	w, err := WriteAll(filepath.Dir(path), []File{{Name: filepath.Base(path), Content: content}})
	if err != nil {
		return Written{}, err
	}
	return w[0], nil
}
