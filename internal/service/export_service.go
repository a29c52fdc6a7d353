package service

import (
	"context"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	appErrors "github.com/noah-isme/sma-schedule-sim/pkg/errors"
	"github.com/noah-isme/sma-schedule-sim/pkg/export"
	"github.com/noah-isme/sma-schedule-sim/pkg/storage"
)

type fileStorage interface {
	Save(filename string, data []byte) (string, error)
	Read(filename string) ([]byte, error)
	CleanupOlderThan(ttl time.Duration) ([]string, error)
}

// ExportConfig tunes export behaviour.
type ExportConfig struct {
	APIPrefix string
	ResultTTL time.Duration
}

// ExportResult captures successful generation metadata.
type ExportResult struct {
	RelativePath string    `json:"-"`
	Filename     string    `json:"filename"`
	Token        string    `json:"token"`
	URL          string    `json:"url"`
	Format       string    `json:"format"`
	ExpiresAt    time.Time `json:"expires_at"`
}

// ExportFile is a stored export ready to be streamed.
type ExportFile struct {
	Owner       string
	Filename    string
	ContentType string
	Body        []byte
}

// ExportService renders timetable grids and hands out signed download links.
type ExportService struct {
	storage   fileStorage
	signer    *storage.SignedURLSigner
	exporters map[string]export.Exporter
	logger    *zap.Logger
	cfg       ExportConfig
	now       func() time.Time
}

// NewExportService constructs an ExportService. Without exporters CSV and PDF are registered.
func NewExportService(store fileStorage, signer *storage.SignedURLSigner, cfg ExportConfig, logger *zap.Logger, exporters ...export.Exporter) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.ResultTTL <= 0 {
		cfg.ResultTTL = 24 * time.Hour
	}
	if len(exporters) == 0 {
		exporters = []export.Exporter{export.NewCSVExporter(), export.NewPDFExporter()}
	}
	byExt := make(map[string]export.Exporter, len(exporters))
	for _, e := range exporters {
		byExt[e.Extension()] = e
	}
	return &ExportService{
		storage:   store,
		signer:    signer,
		exporters: byExt,
		logger:    logger,
		cfg:       cfg,
		now:       time.Now,
	}
}

// ExportGrid renders grid in format, stores it under owner and returns a signed link.
func (s *ExportService) ExportGrid(ctx context.Context, owner string, grid Grid, format string) (*ExportResult, error) {
	exporter, ok := s.exporters[strings.ToLower(format)]
	if !ok {
		return nil, appErrors.Newf(appErrors.ErrValidation, "unsupported export format %q", format)
	}

	payload, err := exporter.Render(grid.Dataset())
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render export")
	}

	filename := s.buildFilename(grid, exporter.Extension())
	relPath, err := s.storage.Save(path.Join(sanitizeFilename(owner), filename), payload)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store export")
	}

	token, expiresAt, err := s.signer.Generate(owner, relPath)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to sign export")
	}
	prefix := strings.TrimRight(s.cfg.APIPrefix, "/")
	if prefix == "" {
		prefix = "/api/v1"
	}

	s.logger.Info("timetable exported",
		zap.String("owner", owner),
		zap.String("kind", grid.Kind),
		zap.String("format", exporter.Extension()),
		zap.Int("bytes", len(payload)),
	)
	return &ExportResult{
		RelativePath: relPath,
		Filename:     filename,
		Token:        token,
		URL:          fmt.Sprintf("%s/exports/%s", prefix, token),
		Format:       exporter.Extension(),
		ExpiresAt:    expiresAt,
	}, nil
}

// Download validates token and reads the referenced file.
func (s *ExportService) Download(token string) (*ExportFile, error) {
	signed, err := s.signer.Parse(token)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrForbidden.Code, appErrors.ErrForbidden.Status, "invalid or expired download link")
	}
	body, err := s.storage.Read(signed.Path)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrNotFound.Code, appErrors.ErrNotFound.Status, "export file not found")
	}
	filename := path.Base(signed.Path)
	contentType := "application/octet-stream"
	if e, ok := s.exporters[strings.TrimPrefix(path.Ext(filename), ".")]; ok {
		contentType = e.ContentType()
	}
	return &ExportFile{Owner: signed.Owner, Filename: filename, ContentType: contentType, Body: body}, nil
}

// Cleanup removes files older than ttl (defaults to configured ResultTTL when ttl <= 0).
func (s *ExportService) Cleanup(ttl time.Duration) ([]string, error) {
	if ttl <= 0 {
		ttl = s.cfg.ResultTTL
	}
	return s.storage.CleanupOlderThan(ttl)
}

func (s *ExportService) buildFilename(grid Grid, ext string) string {
	timestamp := s.now().UTC().Format("20060102_150405")
	return fmt.Sprintf("%s_%s_%s_%s.%s", grid.Kind, sanitizeFilename(grid.Name), timestamp, uuid.NewString()[:8], ext)
}

func sanitizeFilename(raw string) string {
	if raw == "" {
		return "na"
	}
	replacer := strings.NewReplacer(" ", "_", "/", "-", "\\", "-", ":", "-", "..", ".", "__", "_")
	result := replacer.Replace(raw)
	if len(result) > 100 {
		return result[:100]
	}
	return result
}
