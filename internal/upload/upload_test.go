package upload

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T, cfg Config) *Store {
	t.Helper()
	if cfg.Dir == "" {
		cfg.Dir = filepath.Join(t.TempDir(), "static", "uploads")
	}
	s, err := NewStore(cfg)
	require.NoError(t, err)
	return s
}

func TestNewStore_CreatesDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "a", "b", "uploads")

	s, err := NewStore(Config{Dir: dir})
	require.NoError(t, err)
	assert.Equal(t, dir, s.Dir())

	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())

	// Existing directory is fine
	_, err = NewStore(Config{Dir: dir})
	assert.NoError(t, err)
}

func TestNewStore_RequiresDir(t *testing.T) {
	_, err := NewStore(Config{})
	assert.Error(t, err)
}

func TestStore_Allowed(t *testing.T) {
	s := newTestStore(t, Config{})

	tests := []struct {
		name string
		want bool
	}{
		{"photo.png", true},
		{"photo.PNG", true},
		{"photo.jpg", true},
		{"photo.jpeg", true},
		{"anim.gif", true},
		{"archive.tar.gif", true},
		{"photo.bmp", false},
		{"script.png.exe", false},
		{"png", false},
		{"", false},
		{"trailing.", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, s.Allowed(tt.name))
		})
	}
}

func TestStore_Allowed_CustomList(t *testing.T) {
	s := newTestStore(t, Config{AllowedExtensions: []string{".WebP", " bmp "}})

	assert.True(t, s.Allowed("a.webp"))
	assert.True(t, s.Allowed("a.BMP"))
	assert.False(t, s.Allowed("a.png"))
	assert.Equal(t, []string{"bmp", "webp"}, s.Extensions())
}

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"My cool movie.mov", "My_cool_movie.mov"},
		{"../../../etc/passwd", "etc_passwd"},
		{"i contain cool \u00fcml\u00e4uts.txt", "i_contain_cool_umlauts.txt"},
		{`C:\Users\me\photo.png`, "C_Users_me_photo.png"},
		{"  spaced   out .jpg", "spaced_out_.jpg"},
		{"semi;colon&amp.gif", "semicolonamp.gif"},
		{"..", ""},
		{"\u65e5\u672c.png", "png"},
		{"con.png", "_con.png"},
		{"LPT1", "_LPT1"},
		{"normal-name_1.jpeg", "normal-name_1.jpeg"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, SanitizeFilename(tt.in))
		})
	}
}

func TestStore_Save(t *testing.T) {
	s := newTestStore(t, Config{})

	name, path, err := s.Save("../My Photo.png", strings.NewReader("pixels"))
	require.NoError(t, err)

	assert.Equal(t, "My_Photo.png", name)
	assert.Equal(t, filepath.Join(s.Dir(), "My_Photo.png"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "pixels", string(data))

	f, err := s.Open(name)
	require.NoError(t, err)
	defer f.Close()
	got, err := io.ReadAll(f)
	require.NoError(t, err)
	assert.Equal(t, "pixels", string(got))
}

func TestStore_Save_Rejects(t *testing.T) {
	s := newTestStore(t, Config{MaxBytes: 4})

	tests := []struct {
		name     string
		filename string
		body     string
		wantErr  error
	}{
		{"empty name", "", "x", ErrEmptyFilename},
		{"bad extension", "notes.txt", "x", ErrExtensionNotAllowed},
		{"no extension", "README", "x", ErrExtensionNotAllowed},
		{"sanitizes away", "\u65e5.png", "x", ErrEmptyFilename},
		{"too large", "big.png", "12345", ErrTooLarge},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := s.Save(tt.filename, bytes.NewBufferString(tt.body))
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.wantErr), "got %v, want %v", err, tt.wantErr)
		})
	}

	entries, err := os.ReadDir(s.Dir())
	require.NoError(t, err)
	assert.Empty(t, entries, "rejected uploads must not leave files behind")
}

func TestStore_Save_AtLimit(t *testing.T) {
	s := newTestStore(t, Config{MaxBytes: 4})

	_, path, err := s.Save("ok.gif", strings.NewReader("1234"))
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Len(t, data, 4)
}

func TestStore_Open_RejectsTraversal(t *testing.T) {
	s := newTestStore(t, Config{})

	_, err := s.Open("../secret.png")
	assert.True(t, errors.Is(err, os.ErrNotExist))

	_, err = s.Open("")
	assert.True(t, errors.Is(err, os.ErrNotExist))
}
