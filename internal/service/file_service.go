package service

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/coaching-api/internal/dto"
	"github.com/noah-isme/coaching-api/internal/models"
	appErrors "github.com/noah-isme/coaching-api/pkg/errors"
	"github.com/noah-isme/coaching-api/pkg/storage"
)

type blobStore interface {
	SaveStream(relPath string, r io.Reader) (int64, error)
	Open(relPath string) (*os.File, error)
	Delete(relPath string) error
}

type urlSigner interface {
	Generate(objectID, relPath string) (string, time.Time, error)
	Parse(token string) (*storage.SignedObject, error)
}

// FileConfig governs upload limits and download links.
type FileConfig struct {
	MaxFileSize int64
	APIPrefix   string
}

// FileDownload bundles an opened blob for streaming.
type FileDownload struct {
	File     *os.File
	Filename string
	MimeType string
	Size     int64
}

// mimeRule accepts exact types or a "type/*" family.
type mimeRule []string

func (r mimeRule) allows(mime string) bool {
	mime = strings.ToLower(strings.TrimSpace(strings.SplitN(mime, ";", 2)[0]))
	for _, rule := range r {
		if strings.HasSuffix(rule, "/*") && strings.HasPrefix(mime, strings.TrimSuffix(rule, "*")) {
			return true
		}
		if mime == rule {
			return true
		}
	}
	return false
}

var (
	assignmentMimes = mimeRule{"image/*", "application/pdf"}
	projectMimes    = mimeRule{"image/*", "application/pdf", "application/zip", "application/x-zip-compressed"}
	resumeMimes     = mimeRule{"application/pdf", "application/msword", "application/vnd.openxmlformats-officedocument.wordprocessingml.document"}
)

// FileService stores uploads in the blob store and issues signed download links.
type FileService struct {
	storage blobStore
	signer  urlSigner
	logger  *zap.Logger
	cfg     FileConfig
}

// NewFileService constructs a FileService.
func NewFileService(storage blobStore, signer urlSigner, logger *zap.Logger, cfg FileConfig) *FileService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.MaxFileSize <= 0 {
		cfg.MaxFileSize = 20 << 20
	}
	return &FileService{storage: storage, signer: signer, logger: logger, cfg: cfg}
}

// storedBlob is the outcome of a successful store.
type storedBlob struct {
	Path     string
	MimeType string
	Size     int64
}

// store validates type and size and writes the upload under dir with a unique name.
func (s *FileService) store(dir string, upload dto.UploadFile, allowed mimeRule) (*storedBlob, error) {
	if upload.Content == nil {
		return nil, invalid("file is required")
	}
	if upload.Size > s.cfg.MaxFileSize {
		return nil, invalid(fmt.Sprintf("file exceeds %d bytes", s.cfg.MaxFileSize))
	}
	mime, err := detectMime(upload)
	if err != nil {
		return nil, err
	}
	if !allowed.allows(mime) {
		return nil, invalid(fmt.Sprintf("file type %s not allowed", mime))
	}

	relPath := path.Join(dir, uniqueFilename(upload.Name))
	written, err := s.storage.SaveStream(relPath, io.LimitReader(upload.Content, s.cfg.MaxFileSize+1))
	if err != nil {
		return nil, appErrors.Internal(err, "failed to store file")
	}
	if written > s.cfg.MaxFileSize {
		s.Discard(relPath)
		return nil, invalid(fmt.Sprintf("file exceeds %d bytes", s.cfg.MaxFileSize))
	}
	return &storedBlob{Path: relPath, MimeType: mime, Size: written}, nil
}

// Discard removes a stored blob whose metadata could not be persisted.
func (s *FileService) Discard(relPath string) {
	if err := s.storage.Delete(relPath); err != nil {
		s.logger.Warn("failed to discard blob", zap.String("path", relPath), zap.Error(err))
	}
}

// Link issues a signed download link for a stored blob.
func (s *FileService) Link(objectID, relPath string) (*models.StoredFile, error) {
	token, expiresAt, err := s.signer.Generate(objectID, relPath)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to sign download link")
	}
	return &models.StoredFile{
		ID:          objectID,
		Path:        relPath,
		DownloadURL: fmt.Sprintf("%s/files/download?token=%s", strings.TrimRight(s.cfg.APIPrefix, "/"), url.QueryEscape(token)),
		ExpiresAt:   expiresAt,
	}, nil
}

// Open validates a download token and opens the referenced blob.
func (s *FileService) Open(token string) (*FileDownload, error) {
	if strings.TrimSpace(token) == "" {
		return nil, invalid("token is required")
	}
	obj, err := s.signer.Parse(token)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrForbidden.Code, appErrors.ErrForbidden.Status, "invalid or expired download token")
	}
	file, err := s.storage.Open(obj.Path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) || errors.Is(err, storage.ErrInvalidPath) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "file not found")
		}
		return nil, appErrors.Internal(err, "failed to open file")
	}
	info, err := file.Stat()
	if err != nil {
		file.Close() //nolint:errcheck
		return nil, appErrors.Internal(err, "failed to stat file")
	}
	name := filepath.Base(obj.Path)
	mime := http.DetectContentType(sniff(file))
	return &FileDownload{File: file, Filename: name, MimeType: mime, Size: info.Size()}, nil
}

func detectMime(upload dto.UploadFile) (string, error) {
	if upload.MimeType != "" && upload.MimeType != "application/octet-stream" {
		return upload.MimeType, nil
	}
	header := make([]byte, 512)
	n, err := upload.Content.Read(header)
	if err != nil && err != io.EOF {
		return "", appErrors.Internal(err, "failed to inspect file")
	}
	if _, err := upload.Content.Seek(0, io.SeekStart); err != nil {
		return "", appErrors.Internal(err, "failed to reset upload stream")
	}
	if n == 0 {
		return "", invalid("empty file")
	}
	return http.DetectContentType(header[:n]), nil
}

func sniff(file *os.File) []byte {
	header := make([]byte, 512)
	n, _ := file.Read(header)
	_, _ = file.Seek(0, io.SeekStart)
	return header[:n]
}

func uniqueFilename(original string) string {
	base := filepath.Base(strings.ReplaceAll(original, "\\", "/"))
	ext := strings.ToLower(filepath.Ext(base))
	stem := sanitizeName(strings.TrimSuffix(base, filepath.Ext(base)))
	if stem == "" {
		stem = "file"
	}
	return fmt.Sprintf("%d-%s-%s%s", time.Now().UTC().Unix(), uuid.NewString()[:8], stem, sanitizeName(ext))
}

func sanitizeName(raw string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(raw) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '.', r == '-':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	return b.String()
}
