package compare

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"io"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/whalechillz/image-assets/internal/entity"
	"github.com/whalechillz/image-assets/internal/infrastructure/fingerprint"
	"github.com/whalechillz/image-assets/pkg/types/errs"
)

type fakeAssetRepo struct {
	content map[string][]byte
	err     error
}

func (f *fakeAssetRepo) Upload(_ context.Context, _ string, _ io.Reader, _ string, _ int64) error {
	return errors.New("not implemented")
}

func (f *fakeAssetRepo) Download(_ context.Context, _ string) (io.ReadCloser, error) {
	return nil, errors.New("not implemented")
}

func (f *fakeAssetRepo) DownloadBytes(_ context.Context, key string) ([]byte, error) {
	if f.err != nil {
		return nil, f.err
	}
	data, ok := f.content[key]
	if !ok {
		return nil, errs.ErrRecordNotFound
	}
	return data, nil
}

func (f *fakeAssetRepo) Delete(_ context.Context, _ string) error {
	return errors.New("not implemented")
}

type fakeMetadataRepo struct {
	assets map[uuid.UUID]*entity.Asset
	err    error
}

func (f *fakeMetadataRepo) Create(_ context.Context, _ *entity.Asset) error {
	return errors.New("not implemented")
}

func (f *fakeMetadataRepo) GetByID(_ context.Context, _ uuid.UUID) (*entity.Asset, error) {
	return nil, errors.New("not implemented")
}

func (f *fakeMetadataRepo) GetByIDs(_ context.Context, ids uuid.UUIDs) ([]*entity.Asset, error) {
	if f.err != nil {
		return nil, f.err
	}
	var found []*entity.Asset
	for _, id := range ids {
		if a, ok := f.assets[id]; ok {
			found = append(found, a)
		}
	}
	return found, nil
}

func (f *fakeMetadataRepo) UpdateIngestResult(_ context.Context, _ *entity.Asset) error {
	return errors.New("not implemented")
}

func (f *fakeMetadataRepo) Delete(_ context.Context, _ uuid.UUID) error {
	return errors.New("not implemented")
}

type fakeUsageRepo struct {
	refs map[uuid.UUID][]entity.UsageRef
	err  error
}

func (f *fakeUsageRepo) ListByAssetID(_ context.Context, id uuid.UUID) ([]entity.UsageRef, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.refs[id], nil
}

type nopLogger struct{}

func (nopLogger) Debug(_ interface{}, _ ...interface{}) {}
func (nopLogger) Info(_ string, _ ...interface{})       {}
func (nopLogger) Warn(_ string, _ ...interface{})       {}
func (nopLogger) Error(_ interface{}, _ ...interface{}) {}
func (nopLogger) Fatal(_ interface{}, _ ...interface{}) {}

func solidPNG(t *testing.T, c color.Color) []byte {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, 40, 40))
	for y := 0; y < 40; y++ {
		for x := 0; x < 40; x++ {
			img.Set(x, y, c)
		}
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("png.Encode: %v", err)
	}
	return buf.Bytes()
}

func storedAsset(id uuid.UUID, filename string, size int64) *entity.Asset {
	return &entity.Asset{
		ID:         id,
		StorageKey: "originals/" + id.String(),
		Filename:   filename,
		Format:     "png",
		Size:       size,
		Status:     entity.Processed,
		CreatedAt:  time.Now(),
	}
}

func newTestUseCase(assets *fakeAssetRepo, meta *fakeMetadataRepo, usage *fakeUsageRepo) *CompareUseCase {
	return New(assets, meta, usage, fingerprint.New(), time.Second, nopLogger{})
}

func TestCompareCardinality(t *testing.T) {
	t.Parallel()

	uc := newTestUseCase(&fakeAssetRepo{}, &fakeMetadataRepo{}, &fakeUsageRepo{})

	for _, count := range []int{0, 5} {
		ids := make(uuid.UUIDs, count)
		for i := range ids {
			ids[i] = uuid.New()
		}

		_, err := uc.Compare(context.Background(), ids)
		if !errors.Is(err, errs.ErrInvalidImageCount) {
			t.Errorf("Compare with %d ids: err = %v, want ErrInvalidImageCount", count, err)
		}
	}
}

func TestCompareMissingAssets(t *testing.T) {
	t.Parallel()

	known := uuid.New()
	meta := &fakeMetadataRepo{assets: map[uuid.UUID]*entity.Asset{
		known: storedAsset(known, "a.png", 100),
	}}
	uc := newTestUseCase(&fakeAssetRepo{}, meta, &fakeUsageRepo{})

	_, err := uc.Compare(context.Background(), uuid.UUIDs{known, uuid.New()})

	var notFound *errs.AssetsNotFoundError
	if !errors.As(err, &notFound) {
		t.Fatalf("err = %v, want *errs.AssetsNotFoundError", err)
	}
	if notFound.Requested != 2 || notFound.Found != 1 {
		t.Errorf("requested/found = %d/%d, want 2/1", notFound.Requested, notFound.Found)
	}
}

func TestCompareSingleImage(t *testing.T) {
	t.Parallel()

	id := uuid.New()
	asset := storedAsset(id, "solo.png", 100)
	meta := &fakeMetadataRepo{assets: map[uuid.UUID]*entity.Asset{id: asset}}
	assets := &fakeAssetRepo{content: map[string][]byte{
		asset.StorageKey: solidPNG(t, color.White),
	}}
	uc := newTestUseCase(assets, meta, &fakeUsageRepo{})

	got, err := uc.Compare(context.Background(), uuid.UUIDs{id})
	if err != nil {
		t.Fatalf("Compare: %v", err)
	}

	if len(got.Images) != 1 {
		t.Fatalf("len(Images) = %d, want 1", len(got.Images))
	}
	if got.Images[0].Fingerprint == "" {
		t.Error("single image should still be fingerprinted")
	}
	if got.Analysis.IsDuplicate {
		t.Error("single image can not be a duplicate")
	}
	if got.Analysis.Recommendation != "Image details are available for review." {
		t.Errorf("unexpected recommendation: %q", got.Analysis.Recommendation)
	}
}

func TestCompareIdenticalContent(t *testing.T) {
	t.Parallel()

	id1, id2 := uuid.New(), uuid.New()
	a1 := storedAsset(id1, "photo.png", 100)
	a2 := storedAsset(id2, "photo.png", 100)
	data := solidPNG(t, color.Gray{Y: 200})

	meta := &fakeMetadataRepo{assets: map[uuid.UUID]*entity.Asset{id1: a1, id2: a2}}
	assets := &fakeAssetRepo{content: map[string][]byte{
		a1.StorageKey: data,
		a2.StorageKey: data,
	}}
	uc := newTestUseCase(assets, meta, &fakeUsageRepo{})

	got, err := uc.Compare(context.Background(), uuid.UUIDs{id1, id2})
	if err != nil {
		t.Fatalf("Compare: %v", err)
	}

	if got.Analysis.PHashSimilarity != 100 {
		t.Errorf("PHashSimilarity = %d, want 100", got.Analysis.PHashSimilarity)
	}
	if !got.Analysis.IsDuplicate {
		t.Error("identical content should be flagged as duplicate")
	}
}

func TestCompareDegradesOnFetchFailure(t *testing.T) {
	t.Parallel()

	id1, id2 := uuid.New(), uuid.New()
	meta := &fakeMetadataRepo{assets: map[uuid.UUID]*entity.Asset{
		id1: storedAsset(id1, "a.png", 100),
		id2: storedAsset(id2, "b.png", 100),
	}}
	assets := &fakeAssetRepo{err: errors.New("s3 is down")}
	uc := newTestUseCase(assets, meta, &fakeUsageRepo{})

	got, err := uc.Compare(context.Background(), uuid.UUIDs{id1, id2})
	if err != nil {
		t.Fatalf("Compare should degrade, got error: %v", err)
	}

	for i, img := range got.Images {
		if img.Fingerprint != "" {
			t.Errorf("Images[%d].Fingerprint = %q, want empty on fetch failure", i, img.Fingerprint)
		}
	}
	if got.Analysis.PHashSimilarity != 0 {
		t.Errorf("PHashSimilarity = %d, want 0 without fingerprints", got.Analysis.PHashSimilarity)
	}
	// metadata signals alone: equal size (20) and equal format (10)
	if got.Analysis.SimilarityScore != 30 {
		t.Errorf("SimilarityScore = %d, want 30", got.Analysis.SimilarityScore)
	}
}

func TestCompareDegradesOnUsageFailure(t *testing.T) {
	t.Parallel()

	id1, id2 := uuid.New(), uuid.New()
	a1 := storedAsset(id1, "a.png", 100)
	a2 := storedAsset(id2, "b.png", 100)
	data := solidPNG(t, color.White)

	meta := &fakeMetadataRepo{assets: map[uuid.UUID]*entity.Asset{id1: a1, id2: a2}}
	assets := &fakeAssetRepo{content: map[string][]byte{
		a1.StorageKey: data,
		a2.StorageKey: data,
	}}
	usage := &fakeUsageRepo{err: errors.New("usage index unavailable")}
	uc := newTestUseCase(assets, meta, usage)

	got, err := uc.Compare(context.Background(), uuid.UUIDs{id1, id2})
	if err != nil {
		t.Fatalf("Compare should degrade, got error: %v", err)
	}

	for i, img := range got.Images {
		if img.Usage.Used || img.Usage.Count != 0 {
			t.Errorf("Images[%d].Usage = %+v, want zero value on lookup failure", i, img.Usage)
		}
	}
}

func TestCompareFillsDimensionsFromDecode(t *testing.T) {
	t.Parallel()

	id1, id2 := uuid.New(), uuid.New()
	a1 := storedAsset(id1, "a.png", 100)
	a2 := storedAsset(id2, "b.png", 100)
	data := solidPNG(t, color.White)

	meta := &fakeMetadataRepo{assets: map[uuid.UUID]*entity.Asset{id1: a1, id2: a2}}
	assets := &fakeAssetRepo{content: map[string][]byte{
		a1.StorageKey: data,
		a2.StorageKey: data,
	}}
	uc := newTestUseCase(assets, meta, &fakeUsageRepo{})

	got, err := uc.Compare(context.Background(), uuid.UUIDs{id1, id2})
	if err != nil {
		t.Fatalf("Compare: %v", err)
	}

	for i, img := range got.Images {
		if img.Width == nil || img.Height == nil {
			t.Fatalf("Images[%d] dimensions missing", i)
		}
		if *img.Width != 40 || *img.Height != 40 {
			t.Errorf("Images[%d] dims = %dx%d, want 40x40", i, *img.Width, *img.Height)
		}
	}
}

func TestCompareUsageLookup(t *testing.T) {
	t.Parallel()

	id1, id2 := uuid.New(), uuid.New()
	a1 := storedAsset(id1, "a.png", 100)
	a2 := storedAsset(id2, "b.png", 5000)

	meta := &fakeMetadataRepo{assets: map[uuid.UUID]*entity.Asset{id1: a1, id2: a2}}
	usage := &fakeUsageRepo{refs: map[uuid.UUID][]entity.UsageRef{
		id1: {
			{Type: "blog", Title: "launch post", URL: "/blog/launch"},
			{Type: "homepage", Title: "hero", URL: "/"},
		},
	}}
	uc := newTestUseCase(&fakeAssetRepo{err: errors.New("no content")}, meta, usage)

	got, err := uc.Compare(context.Background(), uuid.UUIDs{id1, id2})
	if err != nil {
		t.Fatalf("Compare: %v", err)
	}

	byID := map[uuid.UUID]entity.ComparedImage{}
	for _, img := range got.Images {
		byID[img.ID] = img
	}

	if u := byID[id1].Usage; !u.Used || u.Count != 2 {
		t.Errorf("usage for first asset = %+v, want used with 2 refs", u)
	}
	if u := byID[id2].Usage; u.Used || u.Count != 0 {
		t.Errorf("usage for second asset = %+v, want unused", u)
	}
}
