package filesystem

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

const audioExt = ".mp3"

var (
	ErrAudioNotFound  = errors.New("audio file not found")
	ErrInvalidAudioID = errors.New("invalid audio id format")
)

// AudioStore keeps synthesized clips as <uuid>.mp3 in one directory
type AudioStore struct {
	dir string
	now func() time.Time
}

func NewAudioStore(dir string) (*AudioStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create audio dir: %w", err)
	}
	return &AudioStore{dir: dir, now: time.Now}, nil
}

func (s *AudioStore) Dir() string {
	return s.dir
}

// Save writes the clip under a fresh id
func (s *AudioStore) Save(audio []byte) (string, error) {
	id := uuid.NewString()
	if err := os.WriteFile(s.path(id), audio, 0o644); err != nil {
		return "", fmt.Errorf("write audio: %w", err)
	}
	return id, nil
}

// Path validates id and returns the clip location. The id must parse as a
// uuid so it can never escape the directory.
func (s *AudioStore) Path(id string) (string, error) {
	if _, err := uuid.Parse(id); err != nil {
		return "", ErrInvalidAudioID
	}
	p := s.path(id)
	if _, err := os.Stat(p); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", ErrAudioNotFound
		}
		return "", err
	}
	return p, nil
}

func (s *AudioStore) Delete(id string) error {
	p, err := s.Path(id)
	if err != nil {
		return err
	}
	return os.Remove(p)
}

// Cleanup removes clips last modified more than maxAge ago
func (s *AudioStore) Cleanup(maxAge time.Duration) (int, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return 0, err
	}

	cutoff := s.now().Add(-maxAge)
	deleted := 0
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), audioExt) {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if info.ModTime().Before(cutoff) {
			if err := os.Remove(filepath.Join(s.dir, entry.Name())); err == nil {
				deleted++
			}
		}
	}
	return deleted, nil
}

func (s *AudioStore) path(id string) string {
	return filepath.Join(s.dir, id+audioExt)
}
