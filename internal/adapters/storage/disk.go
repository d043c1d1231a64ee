package storage

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/rafaelleal24/catalog/internal/adapters/config"
	"github.com/rafaelleal24/catalog/internal/core/dto"
	"github.com/rafaelleal24/catalog/internal/core/port"
	"github.com/spf13/afero"
)

const (
	maxNameAttempts = 100
	sniffLen        = 3072
)

var ErrNoContent = errors.New("upload has no content")

// DiskImageStore keeps uploaded images in a single directory and serves
// them under a public path prefix.
type DiskImageStore struct {
	fs           afero.Fs
	dir          string
	publicPrefix string
	now          func() time.Time
}

func NewDiskImageStore(fs afero.Fs, cfg config.UploadConfig) (*DiskImageStore, error) {
	if err := fs.MkdirAll(cfg.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload dir %q: %w", cfg.Dir, err)
	}
	return &DiskImageStore{
		fs:           fs,
		dir:          cfg.Dir,
		publicPrefix: strings.TrimSuffix(cfg.PublicPath, "/"),
		now:          time.Now,
	}, nil
}

var _ port.ImageStore = (*DiskImageStore)(nil)

func (s *DiskImageStore) Stage(ctx context.Context, upload *dto.ImageUpload) (*port.StagedImage, error) {
	if upload == nil || upload.Open == nil {
		return nil, ErrNoContent
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	src, err := upload.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open upload: %w", err)
	}
	defer src.Close()

	// the header is sniffed from the buffer; the body streams straight to disk
	body := bufio.NewReaderSize(src, sniffLen)
	head, err := body.Peek(sniffLen)
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to read upload: %w", err)
	}
	detected := mimetype.Detect(head)

	base, ext := splitName(upload.Filename)
	if ext == "" {
		ext = detected.Extension()
	}

	name, dst, err := s.create(base, ext)
	if err != nil {
		return nil, err
	}
	target := filepath.Join(s.dir, name)

	if _, err := io.Copy(dst, body); err != nil {
		_ = dst.Close()
		_ = s.fs.Remove(target)
		return nil, fmt.Errorf("failed to write %q: %w", name, err)
	}
	if err := dst.Close(); err != nil {
		_ = s.fs.Remove(target)
		return nil, fmt.Errorf("failed to write %q: %w", name, err)
	}

	return &port.StagedImage{
		Filename:     name,
		PublicURL:    s.publicPrefix + "/" + name,
		DetectedType: detected.String(),
	}, nil
}

// Discard removes a staged file. A file that is already gone is not an error.
func (s *DiskImageStore) Discard(_ context.Context, filename string) error {
	name := filepath.Base(filename)
	err := s.fs.Remove(filepath.Join(s.dir, name))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to remove %q: %w", name, err)
	}
	return nil
}

// FileSystem exposes the upload directory for static file serving.
// Directory listings come back empty.
func (s *DiskImageStore) FileSystem() http.FileSystem {
	return filesOnly{afero.NewHttpFs(afero.NewBasePathFs(s.fs, s.dir)).Dir("/")}
}

type filesOnly struct {
	http.FileSystem
}

func (f filesOnly) Open(name string) (http.File, error) {
	file, err := f.FileSystem.Open(name)
	if err != nil {
		return nil, err
	}
	return noReaddir{file}, nil
}

type noReaddir struct {
	http.File
}

func (noReaddir) Readdir(int) ([]fs.FileInfo, error) {
	return nil, nil
}

// PublicPrefix is the URL path the files in FileSystem are served under.
func (s *DiskImageStore) PublicPrefix() string {
	return s.publicPrefix
}

func (s *DiskImageStore) HealthCheck(_ context.Context) error {
	info, err := s.fs.Stat(s.dir)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", s.dir)
	}
	return nil
}

// create opens a new file named <base>_<unix-millis><ext>, bumping the
// timestamp while the name is taken.
func (s *DiskImageStore) create(base, ext string) (string, afero.File, error) {
	stamp := s.now().UnixMilli()
	for i := 0; i < maxNameAttempts; i++ {
		name := base + "_" + strconv.FormatInt(stamp+int64(i), 10) + ext
		f, err := s.fs.OpenFile(filepath.Join(s.dir, name), os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
		if errors.Is(err, fs.ErrExist) {
			continue
		}
		if err != nil {
			return "", nil, fmt.Errorf("failed to create %q: %w", name, err)
		}
		return name, f, nil
	}
	return "", nil, fmt.Errorf("no free file name for %q", base+ext)
}

// splitName strips any directory components from a client supplied name.
func splitName(filename string) (string, string) {
	name := path.Base(strings.ReplaceAll(filename, "\\", "/"))
	if name == "." || name == "/" || name == ".." {
		name = ""
	}
	ext := strings.ToLower(path.Ext(name))
	base := strings.TrimSuffix(name, path.Ext(name))
	if base == "" {
		base = "upload"
	}
	return base, ext
}
