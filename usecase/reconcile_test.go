package usecase

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/clipstack/video-hosting-service/domain"
)

type fakeVideoRepo struct {
	videos map[string]*domain.Video // keyed by record id

	fallbackDeletes []string
}

func newFakeVideoRepo(videos ...*domain.Video) *fakeVideoRepo {
	repo := &fakeVideoRepo{videos: map[string]*domain.Video{}}
	for _, v := range videos {
		copied := *v
		repo.videos[v.ID] = &copied
	}
	return repo
}

func (r *fakeVideoRepo) Save(_ context.Context, video *domain.Video) error {
	copied := *video
	r.videos[video.ID] = &copied
	return nil
}

func (r *fakeVideoRepo) FindByID(_ context.Context, id string) (*domain.Video, error) {
	if v, ok := r.videos[id]; ok {
		copied := *v
		return &copied, nil
	}
	return nil, domain.ErrNotFound
}

func (r *fakeVideoRepo) FindByUploadID(_ context.Context, uploadID string) (*domain.Video, error) {
	for _, v := range r.videos {
		if v.MuxUploadID == uploadID {
			copied := *v
			return &copied, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *fakeVideoRepo) FindByAssetID(_ context.Context, assetID string) (*domain.Video, error) {
	for _, v := range r.videos {
		if v.MuxAssetID == assetID {
			copied := *v
			return &copied, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *fakeVideoRepo) FindByUserID(_ context.Context, userID int) ([]domain.Video, error) {
	var out []domain.Video
	for _, v := range r.videos {
		if v.UserID == userID {
			out = append(out, *v)
		}
	}
	return out, nil
}

func (r *fakeVideoRepo) UpdateAssetCreated(_ context.Context, uploadID, assetID string, status domain.MuxStatus) error {
	for _, v := range r.videos {
		if v.MuxUploadID == uploadID {
			v.MuxAssetID = assetID
			v.MuxStatus = status
		}
	}
	return nil
}

func (r *fakeVideoRepo) UpdateAssetReady(_ context.Context, uploadID string, update domain.ReadyUpdate) error {
	for _, v := range r.videos {
		if v.MuxUploadID == uploadID {
			v.MuxAssetID = update.AssetID
			v.MuxStatus = update.Status
			v.MuxPlaybackID = update.PlaybackID
			v.Duration = update.Duration
			if update.Thumbnail != nil {
				v.ThumbnailKey = update.Thumbnail.Key
				v.ThumbnailURL = update.Thumbnail.URL
			}
			if update.Preview != nil {
				v.PreviewKey = update.Preview.Key
				v.PreviewURL = update.Preview.URL
			}
		}
	}
	return nil
}

func (r *fakeVideoRepo) UpdateStatusByUploadID(_ context.Context, uploadID string, status domain.MuxStatus) error {
	for _, v := range r.videos {
		if v.MuxUploadID == uploadID {
			v.MuxStatus = status
		}
	}
	return nil
}

func (r *fakeVideoRepo) UpdateTrack(_ context.Context, assetID, trackID, trackStatus string) error {
	for _, v := range r.videos {
		if v.MuxAssetID == assetID {
			v.MuxTrackID = trackID
			v.MuxTrackStatus = trackStatus
		}
	}
	return nil
}

func (r *fakeVideoRepo) DeleteByID(_ context.Context, id string) error {
	delete(r.videos, id)
	return nil
}

func (r *fakeVideoRepo) DeleteByUploadID(_ context.Context, uploadID string) error {
	r.fallbackDeletes = append(r.fallbackDeletes, uploadID)
	for id, v := range r.videos {
		if v.MuxUploadID == uploadID {
			delete(r.videos, id)
		}
	}
	return nil
}

type fakeAssetStore struct {
	failURLs map[string]bool
	copies   int
	deleted  []string
}

func (s *fakeAssetStore) CopyFromURL(_ context.Context, sourceURL string) (domain.StoredAsset, error) {
	if s.failURLs[sourceURL] {
		return domain.StoredAsset{}, errors.New("storage unavailable")
	}
	s.copies++
	key := fmt.Sprintf("key-%d", s.copies)
	return domain.StoredAsset{Key: key, URL: "https://assets.example.com/" + key}, nil
}

func (s *fakeAssetStore) DeleteByKey(_ context.Context, key string) error {
	s.deleted = append(s.deleted, key)
	return nil
}

func readyEvent() *domain.AssetReadyEvent {
	return &domain.AssetReadyEvent{
		UploadID:    "up_1",
		AssetID:     "asset_1",
		Status:      "ready",
		PlaybackIDs: []domain.PlaybackID{{ID: "pb_1", Policy: "public"}},
		Duration:    12.5,
	}
}

func TestAssetReadyUpdatesRecord(t *testing.T) {
	repo := newFakeVideoRepo(&domain.Video{ID: "v1", UserID: 7, MuxUploadID: "up_1", MuxStatus: domain.MuxStatusWaiting})
	uc := &ReconcileUseCase{Videos: repo, Assets: &fakeAssetStore{}}

	if err := uc.AssetReady(context.Background(), readyEvent()); err != nil {
		t.Fatalf("AssetReady returned error: %v", err)
	}

	v := repo.videos["v1"]
	if v.MuxStatus != domain.MuxStatusReady {
		t.Fatalf("expected status ready, got %q", v.MuxStatus)
	}
	if v.MuxAssetID != "asset_1" || v.MuxPlaybackID != "pb_1" {
		t.Fatalf("unexpected asset/playback ids: %q / %q", v.MuxAssetID, v.MuxPlaybackID)
	}
	if v.Duration != 12500 {
		t.Fatalf("expected duration 12500, got %d", v.Duration)
	}
	if v.ThumbnailKey == "" || v.PreviewKey == "" {
		t.Fatalf("expected both mirrored assets recorded, got %q / %q", v.ThumbnailKey, v.PreviewKey)
	}
}

func TestAssetReadyMissingDuration(t *testing.T) {
	repo := newFakeVideoRepo(&domain.Video{ID: "v1", MuxUploadID: "up_1"})
	uc := &ReconcileUseCase{Videos: repo}

	ev := readyEvent()
	ev.Duration = 0
	if err := uc.AssetReady(context.Background(), ev); err != nil {
		t.Fatalf("AssetReady returned error: %v", err)
	}
	if got := repo.videos["v1"].Duration; got != 0 {
		t.Fatalf("expected duration 0, got %d", got)
	}
}

func TestAssetReadyIdempotent(t *testing.T) {
	repo := newFakeVideoRepo(&domain.Video{ID: "v1", MuxUploadID: "up_1"})
	store := &fakeAssetStore{}
	uc := &ReconcileUseCase{Videos: repo, Assets: store}

	if err := uc.AssetReady(context.Background(), readyEvent()); err != nil {
		t.Fatalf("first AssetReady returned error: %v", err)
	}
	first := *repo.videos["v1"]
	if err := uc.AssetReady(context.Background(), readyEvent()); err != nil {
		t.Fatalf("second AssetReady returned error: %v", err)
	}
	second := *repo.videos["v1"]

	if first != second {
		t.Fatalf("replay changed record state:\nfirst:  %+v\nsecond: %+v", first, second)
	}
	if store.copies != 2 {
		t.Fatalf("expected replay to reuse mirrored copies, got %d mirror calls", store.copies)
	}
	if len(store.deleted) != 0 {
		t.Fatalf("expected no stored objects deleted on replay, got %v", store.deleted)
	}
}

func TestAssetReadyReplayMirrorsOnlyMissingAsset(t *testing.T) {
	repo := newFakeVideoRepo(&domain.Video{
		ID: "v1", MuxUploadID: "up_1", MuxPlaybackID: "pb_1",
		PreviewKey: "prev-key", PreviewURL: "https://assets.example.com/prev-key",
	})
	store := &fakeAssetStore{}
	uc := &ReconcileUseCase{Videos: repo, Assets: store}

	if err := uc.AssetReady(context.Background(), readyEvent()); err != nil {
		t.Fatalf("AssetReady returned error: %v", err)
	}

	v := repo.videos["v1"]
	if store.copies != 1 {
		t.Fatalf("expected only the missing thumbnail mirrored, got %d mirror calls", store.copies)
	}
	if v.ThumbnailKey == "" {
		t.Fatalf("expected thumbnail mirrored on replay")
	}
	if v.PreviewKey != "prev-key" {
		t.Fatalf("expected existing preview kept, got %q", v.PreviewKey)
	}
}

func TestAssetReadyNewPlaybackReplacesStaleMirrors(t *testing.T) {
	repo := newFakeVideoRepo(&domain.Video{
		ID: "v1", MuxUploadID: "up_1", MuxPlaybackID: "pb_old",
		ThumbnailKey: "old-thumb", PreviewKey: "old-prev",
	})
	store := &fakeAssetStore{}
	uc := &ReconcileUseCase{Videos: repo, Assets: store}

	if err := uc.AssetReady(context.Background(), readyEvent()); err != nil {
		t.Fatalf("AssetReady returned error: %v", err)
	}

	if store.copies != 2 {
		t.Fatalf("expected both assets re-mirrored for the new playback id, got %d", store.copies)
	}
	if len(store.deleted) != 2 {
		t.Fatalf("expected stale objects deleted, got %v", store.deleted)
	}
	v := repo.videos["v1"]
	if v.ThumbnailKey == "old-thumb" || v.PreviewKey == "old-prev" {
		t.Fatalf("expected locations replaced, got %q / %q", v.ThumbnailKey, v.PreviewKey)
	}
}

func TestAssetReadyPartialMirrorFailure(t *testing.T) {
	repo := newFakeVideoRepo(&domain.Video{ID: "v1", MuxUploadID: "up_1"})
	failures := 0
	uc := &ReconcileUseCase{
		Videos: repo,
		Assets: &fakeAssetStore{failURLs: map[string]bool{
			"https://image.mux.com/pb_1/thumbnail.jpg": true,
		}},
		MirrorFailures: func() { failures++ },
	}

	if err := uc.AssetReady(context.Background(), readyEvent()); err != nil {
		t.Fatalf("AssetReady returned error: %v", err)
	}

	v := repo.videos["v1"]
	if v.ThumbnailKey != "" {
		t.Fatalf("expected thumbnail location unset after mirror failure, got %q", v.ThumbnailKey)
	}
	if v.PreviewKey == "" {
		t.Fatalf("expected preview location set despite thumbnail failure")
	}
	if v.MuxStatus != domain.MuxStatusReady || v.MuxPlaybackID != "pb_1" {
		t.Fatalf("primary status fields not applied: %+v", v)
	}
	if failures != 1 {
		t.Fatalf("expected 1 recorded mirror failure, got %d", failures)
	}
}

func TestAssetCreatedNotFound(t *testing.T) {
	uc := &ReconcileUseCase{Videos: newFakeVideoRepo()}
	err := uc.AssetCreated(context.Background(), &domain.AssetCreatedEvent{
		UploadID: "up_missing", AssetID: "asset_1", Status: "preparing",
	})
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestAssetCreatedAssignsAsset(t *testing.T) {
	repo := newFakeVideoRepo(&domain.Video{ID: "v1", MuxUploadID: "up_1", MuxStatus: domain.MuxStatusWaiting})
	uc := &ReconcileUseCase{Videos: repo}

	err := uc.AssetCreated(context.Background(), &domain.AssetCreatedEvent{
		UploadID: "up_1", AssetID: "asset_1", Status: "preparing",
	})
	if err != nil {
		t.Fatalf("AssetCreated returned error: %v", err)
	}
	v := repo.videos["v1"]
	if v.MuxAssetID != "asset_1" || v.MuxStatus != domain.MuxStatusPreparing {
		t.Fatalf("unexpected record after asset created: %+v", v)
	}
}

func TestAssetErroredSetsStatus(t *testing.T) {
	repo := newFakeVideoRepo(&domain.Video{ID: "v1", MuxUploadID: "up_1", MuxStatus: domain.MuxStatusPreparing})
	uc := &ReconcileUseCase{Videos: repo}

	err := uc.AssetErrored(context.Background(), &domain.AssetErroredEvent{UploadID: "up_1", Status: "errored"})
	if err != nil {
		t.Fatalf("AssetErrored returned error: %v", err)
	}
	if got := repo.videos["v1"].MuxStatus; got != domain.MuxStatusErrored {
		t.Fatalf("expected status errored, got %q", got)
	}
}

func TestAssetDeletedRemovesRecordAndMirroredAssets(t *testing.T) {
	repo := newFakeVideoRepo(&domain.Video{
		ID: "v1", MuxUploadID: "up_1", MuxAssetID: "asset_1",
		ThumbnailKey: "thumb-key", PreviewKey: "prev-key",
	})
	store := &fakeAssetStore{}
	uc := &ReconcileUseCase{Videos: repo, Assets: store}

	err := uc.AssetDeleted(context.Background(), &domain.AssetDeletedEvent{UploadID: "up_1"})
	if err != nil {
		t.Fatalf("AssetDeleted returned error: %v", err)
	}
	if _, ok := repo.videos["v1"]; ok {
		t.Fatalf("expected record deleted")
	}
	if len(store.deleted) != 2 {
		t.Fatalf("expected 2 mirrored assets deleted, got %v", store.deleted)
	}
}

func TestAssetDeletedMissingRecordStillSucceeds(t *testing.T) {
	repo := newFakeVideoRepo()
	uc := &ReconcileUseCase{Videos: repo}

	err := uc.AssetDeleted(context.Background(), &domain.AssetDeletedEvent{UploadID: "up_missing"})
	if err != nil {
		t.Fatalf("expected replayed delete to succeed, got %v", err)
	}
	if len(repo.fallbackDeletes) != 1 || repo.fallbackDeletes[0] != "up_missing" {
		t.Fatalf("expected fallback delete by upload id, got %v", repo.fallbackDeletes)
	}
}

func TestTrackReadyCorrelatesByAsset(t *testing.T) {
	repo := newFakeVideoRepo(&domain.Video{ID: "v1", MuxUploadID: "up_1", MuxAssetID: "asset_1"})
	uc := &ReconcileUseCase{Videos: repo}

	err := uc.TrackReady(context.Background(), &domain.TrackReadyEvent{
		AssetID: "asset_1", TrackID: "track_1", Status: "ready",
	})
	if err != nil {
		t.Fatalf("TrackReady returned error: %v", err)
	}
	v := repo.videos["v1"]
	if v.MuxTrackID != "track_1" || v.MuxTrackStatus != "ready" {
		t.Fatalf("unexpected track fields: %q / %q", v.MuxTrackID, v.MuxTrackStatus)
	}
}

func TestTrackReadyNotFound(t *testing.T) {
	uc := &ReconcileUseCase{Videos: newFakeVideoRepo()}
	err := uc.TrackReady(context.Background(), &domain.TrackReadyEvent{
		AssetID: "asset_missing", TrackID: "track_1", Status: "ready",
	})
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
