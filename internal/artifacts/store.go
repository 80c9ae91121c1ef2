// Package artifacts stores diagnostic screenshots captured when a session
// fails.
package artifacts

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/peterbourgon/diskv/v3"
)

var unsafeChars = regexp.MustCompile(`(?i)[^a-z0-9_\-.]+`)

// Sanitize makes s safe for use inside a file name.
func Sanitize(s string) string {
	return unsafeChars.ReplaceAllString(s, "_")
}

// ScreenshotName is fail-<unix ms>-<identifier>-<step>.png.
func ScreenshotName(at time.Time, identifier, step string) string {
	return fmt.Sprintf("fail-%d-%s-%s.png", at.UnixMilli(), Sanitize(identifier), Sanitize(step))
}

type Store struct {
	dir string
	kv  *diskv.Diskv
}

func New(dir string) *Store {
	return &Store{
		dir: dir,
		kv: diskv.New(diskv.Options{
			BasePath:     dir,
			Transform:    func(string) []string { return []string{} },
			CacheSizeMax: 0,
		}),
	}
}

func (s *Store) Dir() string { return s.dir }

// SaveScreenshot writes png under a generated name and returns the name.
func (s *Store) SaveScreenshot(at time.Time, identifier, step string, png []byte) (string, error) {
	name := ScreenshotName(at, identifier, step)
	if err := s.kv.Write(name, png); err != nil {
		return "", fmt.Errorf("write screenshot %s: %w", name, err)
	}
	return name, nil
}

func (s *Store) Read(name string) ([]byte, error) {
	data, err := s.kv.Read(name)
	if err != nil {
		return nil, fmt.Errorf("read screenshot %s: %w", name, err)
	}
	return data, nil
}

// Screenshots lists stored screenshot names, oldest first.
func (s *Store) Screenshots() []string {
	out := []string{}
	for key := range s.kv.Keys(nil) {
		if strings.HasPrefix(key, "fail-") && strings.HasSuffix(key, ".png") {
			out = append(out, key)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return stampOf(out[i]) < stampOf(out[j]) })
	return out
}

// Prune erases all but the newest keep screenshots.
func (s *Store) Prune(keep int) (int, error) {
	names := s.Screenshots()
	if keep < 0 || len(names) <= keep {
		return 0, nil
	}
	removed := 0
	for _, name := range names[:len(names)-keep] {
		if err := s.kv.Erase(name); err != nil {
			return removed, fmt.Errorf("erase screenshot %s: %w", name, err)
		}
		removed++
	}
	return removed, nil
}

func stampOf(name string) int64 {
	rest := strings.TrimPrefix(name, "fail-")
	if i := strings.IndexByte(rest, '-'); i > 0 {
		if ms, err := strconv.ParseInt(rest[:i], 10, 64); err == nil {
			return ms
		}
	}
	return 0
}
