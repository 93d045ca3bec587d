// Package upload validates, names and stores uploaded image files.
//
// The upload directory and the allowed extensions are injected through
// Config; nothing here is process-global.
package upload

import (
	"io"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"unicode"

	"github.com/pkg/errors"
	"golang.org/x/text/unicode/norm"
)

var (
	// ErrNoFile is returned when a request carries no file part.
	ErrNoFile = errors.New("no file uploaded")

	// ErrEmptyFilename is returned for a missing name, or one that
	// sanitizes to nothing.
	ErrEmptyFilename = errors.New("empty filename")

	// ErrExtensionNotAllowed is returned for names outside the allow-list.
	ErrExtensionNotAllowed = errors.New("file extension not allowed")

	// ErrTooLarge is returned when an upload exceeds Config.MaxBytes.
	ErrTooLarge = errors.New("file too large")
)

// DefaultExtensions is the allow-list used when none is configured.
var DefaultExtensions = []string{"png", "jpg", "jpeg", "gif"}

// Config describes where uploads go and which ones are accepted.
type Config struct {
	// Dir receives stored uploads. It is created on first use.
	Dir string

	// AllowedExtensions lists accepted extensions without the dot,
	// compared case-insensitively.
	AllowedExtensions []string

	// MaxBytes caps the stored size. Zero means unlimited.
	MaxBytes int64
}

// Store writes validated uploads into Config.Dir.
type Store struct {
	dir      string
	allowed  map[string]struct{}
	maxBytes int64
}

// NewStore creates a Store and ensures the upload directory exists.
func NewStore(cfg Config) (*Store, error) {
	if cfg.Dir == "" {
		return nil, errors.New("upload directory not configured")
	}
	exts := cfg.AllowedExtensions
	if len(exts) == 0 {
		exts = DefaultExtensions
	}

	s := &Store{
		dir:      cfg.Dir,
		allowed:  make(map[string]struct{}, len(exts)),
		maxBytes: cfg.MaxBytes,
	}
	for _, ext := range exts {
		s.allowed[strings.ToLower(strings.TrimPrefix(strings.TrimSpace(ext), "."))] = struct{}{}
	}

	if err := os.MkdirAll(cfg.Dir, 0o755); err != nil {
		return nil, errors.Wrapf(err, "create upload directory %s", cfg.Dir)
	}
	return s, nil
}

// Dir returns the upload directory.
func (s *Store) Dir() string { return s.dir }

// Extensions returns the allow-list in sorted order.
func (s *Store) Extensions() []string {
	exts := make([]string, 0, len(s.allowed))
	for ext := range s.allowed {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return exts
}

// Allowed reports whether filename has an extension on the allow-list.
// A name without a dot is never allowed.
func (s *Store) Allowed(filename string) bool {
	i := strings.LastIndexByte(filename, '.')
	if i < 0 {
		return false
	}
	_, ok := s.allowed[strings.ToLower(filename[i+1:])]
	return ok
}

// Save validates filename, sanitizes it and copies src into the upload
// directory. It returns the sanitized name and the full path written.
// An existing file with the same name is replaced.
func (s *Store) Save(filename string, src io.Reader) (name, path string, err error) {
	if filename == "" {
		return "", "", ErrEmptyFilename
	}
	if !s.Allowed(filename) {
		return "", "", errors.Wrapf(ErrExtensionNotAllowed, "%q", filename)
	}
	name = SanitizeFilename(filename)
	if name == "" || !s.Allowed(name) {
		return "", "", errors.Wrapf(ErrEmptyFilename, "%q sanitizes to %q", filename, name)
	}

	path = filepath.Join(s.dir, name)
	f, err := os.Create(path)
	if err != nil {
		return "", "", errors.Wrap(err, "create upload file")
	}

	if s.maxBytes > 0 {
		src = io.LimitReader(src, s.maxBytes+1)
	}
	n, err := io.Copy(f, src)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err == nil && s.maxBytes > 0 && n > s.maxBytes {
		err = errors.Wrapf(ErrTooLarge, "limit is %d bytes", s.maxBytes)
	}
	if err != nil {
		os.Remove(path)
		return "", "", errors.Wrap(err, "write upload file")
	}
	return name, path, nil
}

// Open opens a stored upload by its sanitized name.
func (s *Store) Open(name string) (*os.File, error) {
	if name != SanitizeFilename(name) || name == "" {
		return nil, errors.Wrapf(os.ErrNotExist, "%q", name)
	}
	return os.Open(filepath.Join(s.dir, name))
}

var (
	unsafeChars = regexp.MustCompile(`[^A-Za-z0-9_.-]`)

	windowsDeviceNames = map[string]struct{}{
		"CON": {}, "PRN": {}, "AUX": {}, "NUL": {},
		"COM1": {}, "COM2": {}, "COM3": {}, "COM4": {}, "COM5": {}, "COM6": {}, "COM7": {}, "COM8": {}, "COM9": {},
		"LPT1": {}, "LPT2": {}, "LPT3": {}, "LPT4": {}, "LPT5": {}, "LPT6": {}, "LPT7": {}, "LPT8": {}, "LPT9": {},
	}
)

// SanitizeFilename returns a flat ASCII file name safe to join to a
// directory.
//
// Accents are stripped, path separators become spaces, whitespace runs
// become single underscores, anything outside [A-Za-z0-9_.-] is dropped and
// leading or trailing dots and underscores are trimmed. Windows device
// names get a leading underscore. The result may be empty.
//
//	SanitizeFilename("My cool movie.mov")     // "My_cool_movie.mov"
//	SanitizeFilename("../../../etc/passwd")   // "etc_passwd"
//	SanitizeFilename("i contain cool ümläuts.txt") // "i_contain_cool_umlauts.txt"
func SanitizeFilename(name string) string {
	var b strings.Builder
	for _, r := range norm.NFKD.String(name) {
		if r > unicode.MaxASCII {
			continue
		}
		if r == '/' || r == '\\' {
			r = ' '
		}
		b.WriteRune(r)
	}

	name = strings.Join(strings.Fields(b.String()), "_")
	name = unsafeChars.ReplaceAllString(name, "")
	name = strings.Trim(name, "._")

	if name != "" {
		base := strings.ToUpper(strings.SplitN(name, ".", 2)[0])
		if _, ok := windowsDeviceNames[base]; ok {
			name = "_" + name
		}
	}
	return name
}
