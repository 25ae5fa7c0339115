package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"path/filepath"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/openedu/school-api/internal/dto"
	"github.com/openedu/school-api/internal/models"
	"github.com/openedu/school-api/internal/observability"
	"github.com/openedu/school-api/internal/repository"
)

var (
	// ErrAssetNotFound indicates the requested content asset does not exist.
	ErrAssetNotFound = errors.New("content asset not found")
	// ErrInvalidAssetReference indicates the parent lesson does not exist.
	ErrInvalidAssetReference = errors.New("invalid lesson reference")
	// ErrInvalidAssetType indicates the asset type is not one of PDF, VIDEO, LINK.
	ErrInvalidAssetType = errors.New("asset type must be PDF, VIDEO or LINK")
	// ErrMissingAssetSource indicates neither a URL nor an uploaded file was provided.
	ErrMissingAssetSource = errors.New("either url_or_key or a file must be provided")
	// ErrAssetFileTooLarge indicates the uploaded file exceeded the configured limit.
	ErrAssetFileTooLarge = errors.New("file exceeds maximum allowed size")
	// ErrAssetFileTypeMismatch indicates the uploaded file content does not match the declared type.
	ErrAssetFileTypeMismatch = errors.New("file content does not match declared asset type")
)

// FileStorage abstracts upload destinations for content assets.
type FileStorage interface {
	Upload(ctx context.Context, name string, reader io.Reader) (string, error)
}

// AssetService exposes content asset use cases, including file uploads.
type AssetService interface {
	Create(ctx context.Context, payload dto.AssetCreateRequest, file *multipart.FileHeader) (dto.AssetResponse, error)
	ListByLesson(ctx context.Context, lessonID uint) ([]dto.AssetResponse, error)
	Update(ctx context.Context, id uint, payload dto.AssetUpdateRequest) (dto.AssetResponse, error)
	Delete(ctx context.Context, id uint) error
}

type assetService struct {
	assets    repository.AssetRepository
	storage   FileStorage
	validator *validator.Validate
	logger    zerolog.Logger
	maxSize   int64
}

// NewAssetService builds a new asset service. The storage backend may be nil,
// in which case only URL-based assets can be created.
func NewAssetService(assets repository.AssetRepository, storage FileStorage, validate *validator.Validate, logger zerolog.Logger) AssetService {
	return &assetService{
		assets:    assets,
		storage:   storage,
		validator: validate,
		logger:    logger.With().Str("component", "asset_service").Logger(),
		maxSize:   50 * 1024 * 1024,
	}
}

func (s *assetService) Create(ctx context.Context, payload dto.AssetCreateRequest, file *multipart.FileHeader) (dto.AssetResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.AssetResponse{}, err
	}
	if !models.IsValidAssetType(payload.Type) {
		return dto.AssetResponse{}, ErrInvalidAssetType
	}

	urlOrKey := strings.TrimSpace(payload.URLOrKey)
	if file != nil {
		uploaded, err := s.storeFile(ctx, payload.Type, file)
		if err != nil {
			return dto.AssetResponse{}, err
		}
		urlOrKey = uploaded
	}
	if urlOrKey == "" {
		return dto.AssetResponse{}, ErrMissingAssetSource
	}

	version := payload.Version
	if version <= 0 {
		version = 1
	}

	asset := models.ContentAsset{
		LessonID: payload.LessonID,
		Type:     payload.Type,
		URLOrKey: urlOrKey,
		Title:    payload.Title,
		Language: payload.Language,
		Metadata: datatypes.JSON(payload.Metadata),
		Version:  version,
	}

	if err := s.assets.Create(ctx, &asset); err != nil {
		if errors.Is(err, gorm.ErrForeignKeyViolated) {
			return dto.AssetResponse{}, ErrInvalidAssetReference
		}
		return dto.AssetResponse{}, err
	}

	s.logger.Info().
		Uint("asset_id", asset.ID).
		Uint("lesson_id", asset.LessonID).
		Str("type", asset.Type).
		Msg("content asset created")

	return dto.NewAssetResponse(asset), nil
}

func (s *assetService) ListByLesson(ctx context.Context, lessonID uint) ([]dto.AssetResponse, error) {
	assets, err := s.assets.ListByLesson(ctx, lessonID)
	if err != nil {
		return nil, err
	}

	return dto.NewAssetResponseSlice(assets), nil
}

func (s *assetService) Update(ctx context.Context, id uint, payload dto.AssetUpdateRequest) (dto.AssetResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.AssetResponse{}, err
	}

	asset, err := s.assets.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.AssetResponse{}, ErrAssetNotFound
		}
		return dto.AssetResponse{}, err
	}

	if payload.Title != nil {
		asset.Title = *payload.Title
	}
	if payload.Language != nil {
		asset.Language = *payload.Language
	}
	if payload.Metadata != nil {
		asset.Metadata = datatypes.JSON(payload.Metadata)
	}
	if payload.Version != nil {
		asset.Version = *payload.Version
	}

	if err := s.assets.Update(ctx, &asset); err != nil {
		return dto.AssetResponse{}, err
	}

	return dto.NewAssetResponse(asset), nil
}

func (s *assetService) Delete(ctx context.Context, id uint) error {
	if err := s.assets.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrAssetNotFound
		}
		return err
	}

	s.logger.Info().Uint("asset_id", id).Msg("content asset deleted")
	return nil
}

// storeFile validates the uploaded file against the declared asset type and
// pushes it to the storage backend, returning the resulting URL.
func (s *assetService) storeFile(ctx context.Context, assetType string, file *multipart.FileHeader) (string, error) {
	if s.storage == nil {
		return "", errors.New("file storage is not configured")
	}
	if assetType == models.AssetTypeLink {
		return "", ErrAssetFileTypeMismatch
	}
	if file.Size > s.maxSize {
		observability.AssetUploadRejected().WithLabelValues("size").Inc()
		return "", ErrAssetFileTooLarge
	}

	handle, err := file.Open()
	if err != nil {
		return "", err
	}
	defer handle.Close()

	buf := bytes.NewBuffer(nil)
	if _, err := io.Copy(buf, io.LimitReader(handle, s.maxSize+1)); err != nil {
		return "", err
	}
	if int64(buf.Len()) > s.maxSize {
		observability.AssetUploadRejected().WithLabelValues("size").Inc()
		return "", ErrAssetFileTooLarge
	}

	detected := mimetype.Detect(buf.Bytes())
	if !mimeMatchesAssetType(assetType, detected.String()) {
		observability.AssetUploadRejected().WithLabelValues("type").Inc()
		return "", ErrAssetFileTypeMismatch
	}

	url, err := s.storage.Upload(ctx, sanitizeFileName(file.Filename), bytes.NewReader(buf.Bytes()))
	if err != nil {
		observability.AssetUploadRejected().WithLabelValues("storage").Inc()
		return "", err
	}

	observability.AssetUploads().WithLabelValues(assetType).Inc()
	return url, nil
}

func mimeMatchesAssetType(assetType, mime string) bool {
	lower := strings.ToLower(strings.TrimSpace(mime))
	switch assetType {
	case models.AssetTypePDF:
		return lower == "application/pdf"
	case models.AssetTypeVideo:
		return strings.HasPrefix(lower, "video/")
	default:
		return false
	}
}

func sanitizeFileName(name string) string {
	base := strings.TrimSuffix(name, filepath.Ext(name))
	base = strings.ToLower(base)
	base = strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '-' || r == '_' {
			return r
		}
		return '-'
	}, base)
	base = strings.Trim(base, "-")
	if base == "" {
		base = fmt.Sprintf("asset-%d", time.Now().Unix())
	}
	ext := strings.ToLower(filepath.Ext(name))
	if ext == "" {
		ext = ".bin"
	}
	return base + ext
}
