package service

import (
	"bytes"
	"context"
	"io"
	"mime/multipart"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/openedu/school-api/internal/dto"
	"github.com/openedu/school-api/internal/models"
)

type fakeAssetRepo struct {
	assets map[uint]models.ContentAsset
	nextID uint
}

func newFakeAssetRepo() *fakeAssetRepo {
	return &fakeAssetRepo{assets: map[uint]models.ContentAsset{}, nextID: 1}
}

func (f *fakeAssetRepo) Create(_ context.Context, asset *models.ContentAsset) error {
	asset.ID = f.nextID
	f.nextID++
	f.assets[asset.ID] = *asset
	return nil
}

func (f *fakeAssetRepo) GetByID(_ context.Context, id uint) (models.ContentAsset, error) {
	asset, ok := f.assets[id]
	if !ok {
		return models.ContentAsset{}, gorm.ErrRecordNotFound
	}
	return asset, nil
}

func (f *fakeAssetRepo) ListByLesson(_ context.Context, lessonID uint) ([]models.ContentAsset, error) {
	var out []models.ContentAsset
	for _, asset := range f.assets {
		if asset.LessonID == lessonID {
			out = append(out, asset)
		}
	}
	return out, nil
}

func (f *fakeAssetRepo) Update(_ context.Context, asset *models.ContentAsset) error {
	f.assets[asset.ID] = *asset
	return nil
}

func (f *fakeAssetRepo) Delete(_ context.Context, id uint) error {
	if _, ok := f.assets[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(f.assets, id)
	return nil
}

type fakeStorage struct {
	names []string
}

func (f *fakeStorage) Upload(_ context.Context, name string, reader io.Reader) (string, error) {
	if _, err := io.Copy(io.Discard, reader); err != nil {
		return "", err
	}
	f.names = append(f.names, name)
	return "https://cdn.example/" + name, nil
}

func fileHeader(t *testing.T, name string, content []byte) *multipart.FileHeader {
	t.Helper()

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("file", name)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	form, err := multipart.NewReader(&buf, writer.Boundary()).ReadForm(int64(len(content)) + 1024)
	require.NoError(t, err)
	t.Cleanup(func() { _ = form.RemoveAll() })

	headers := form.File["file"]
	require.Len(t, headers, 1)
	return headers[0]
}

func newAssetFixture(storage FileStorage) AssetService {
	validate := validator.New(validator.WithRequiredStructEnabled())
	return NewAssetService(newFakeAssetRepo(), storage, validate, zerolog.Nop())
}

func TestAssetServiceCreateLink(t *testing.T) {
	svc := newAssetFixture(nil)

	asset, err := svc.Create(context.Background(), dto.AssetCreateRequest{
		LessonID: 1,
		Type:     models.AssetTypeLink,
		URLOrKey: "https://example.com/reading",
		Title:    "Further reading",
	}, nil)
	require.NoError(t, err)
	require.Equal(t, "https://example.com/reading", asset.URLOrKey)
	require.Equal(t, 1, asset.Version)
}

func TestAssetServiceCreateWithoutSource(t *testing.T) {
	svc := newAssetFixture(nil)

	_, err := svc.Create(context.Background(), dto.AssetCreateRequest{
		LessonID: 1,
		Type:     models.AssetTypePDF,
		Title:    "Worksheet",
	}, nil)
	require.ErrorIs(t, err, ErrMissingAssetSource)
}

func TestAssetServiceUploadPDF(t *testing.T) {
	storage := &fakeStorage{}
	svc := newAssetFixture(storage)

	file := fileHeader(t, "Algebra Worksheet (v2).pdf", []byte("%PDF-1.4\n%test content\n"))

	asset, err := svc.Create(context.Background(), dto.AssetCreateRequest{
		LessonID: 1,
		Type:     models.AssetTypePDF,
		Title:    "Worksheet",
	}, file)
	require.NoError(t, err)
	require.Equal(t, "https://cdn.example/algebra-worksheet--v2.pdf", asset.URLOrKey)
	require.Equal(t, []string{"algebra-worksheet--v2.pdf"}, storage.names)
}

func TestAssetServiceUploadTypeMismatch(t *testing.T) {
	svc := newAssetFixture(&fakeStorage{})

	// Plain text declared as a PDF.
	file := fileHeader(t, "notes.pdf", []byte("just some text"))

	_, err := svc.Create(context.Background(), dto.AssetCreateRequest{
		LessonID: 1,
		Type:     models.AssetTypePDF,
		Title:    "Worksheet",
	}, file)
	require.ErrorIs(t, err, ErrAssetFileTypeMismatch)
}

func TestAssetServiceUploadRejectedForLink(t *testing.T) {
	svc := newAssetFixture(&fakeStorage{})

	file := fileHeader(t, "notes.pdf", []byte("%PDF-1.4\n"))

	_, err := svc.Create(context.Background(), dto.AssetCreateRequest{
		LessonID: 1,
		Type:     models.AssetTypeLink,
		Title:    "Reference",
	}, file)
	require.ErrorIs(t, err, ErrAssetFileTypeMismatch)
}

func TestSanitizeFileName(t *testing.T) {
	require.Equal(t, "algebra-worksheet.pdf", sanitizeFileName("Algebra Worksheet.PDF"))
	require.Equal(t, "intro_video.mp4", sanitizeFileName("intro_video.mp4"))
	require.NotEmpty(t, sanitizeFileName("???.pdf"))
}
