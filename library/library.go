// Package library finds the audio files the player can offer.
package library

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"
	"github.com/samber/lo"
)

// The formats the music list picks up unless configured otherwise.
var DefaultExtensions = []string{"mp3", "ogg"}

var ErrNoMusicDir = errors.New("audio directory not found")

type Track struct {
	// Position of the track in the scanned list. Filtering keeps it.
	ID   int
	Name string
	Path string
}

type List struct {
	Folder string
	Tracks []Track
}

// Paths returns the file paths in list order, ready for the player.
func (l List) Paths() []string {
	return lo.Map(l.Tracks, func(t Track, _ int) string { return t.Path })
}

// MusicDir resolves the user's audio directory.
func MusicDir() (string, error) {
	dir := strings.TrimSpace(xdg.UserDirs.Music)
	if dir == "" {
		return "", ErrNoMusicDir
	}
	return dir, nil
}

// Scan lists the files directly inside dir whose extension is one of
// exts. Subdirectories are not descended into.
func Scan(dir string, exts []string) (List, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return List{Folder: dir}, fmt.Errorf("read music dir %s: %w", dir, err)
	}

	normalized := NormalizeExtensions(exts)
	if len(normalized) == 0 {
		normalized = DefaultExtensions
	}
	allowed := lo.Keyify(normalized)
	list := List{Folder: dir, Tracks: []Track{}}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(name), "."))
		if _, ok := allowed[ext]; !ok {
			continue
		}

		list.Tracks = append(list.Tracks, Track{
			ID:   len(list.Tracks),
			Name: strings.TrimSuffix(name, filepath.Ext(name)),
			Path: filepath.Join(dir, name),
		})
	}

	return list, nil
}

// Filter keeps the tracks whose path contains query, ignoring case.
func Filter(tracks []Track, query string) []Track {
	query = strings.ToLower(query)
	if query == "" {
		return tracks
	}
	return lo.Filter(tracks, func(t Track, _ int) bool {
		return strings.Contains(strings.ToLower(t.Path), query)
	})
}

// NormalizeExtensions lowercases exts, strips leading dots and drops
// blanks and duplicates.
func NormalizeExtensions(exts []string) []string {
	out := make([]string, 0, len(exts))
	for _, ext := range exts {
		ext = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(ext), "."))
		if ext != "" {
			out = append(out, ext)
		}
	}
	return lo.Uniq(out)
}
