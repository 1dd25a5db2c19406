// infrastructure/postgres_video_repository.go
package infrastructure

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/clipstack/video-hosting-service/domain"
)

type PostgresVideoRepository struct {
	DB *sql.DB
}

func NewPostgresVideoRepository(db *sql.DB) *PostgresVideoRepository {
	return &PostgresVideoRepository{DB: db}
}

const videoColumns = `id, user_id, title, mux_upload_id, mux_asset_id, mux_status, mux_playback_id,
	duration, thumbnail_key, thumbnail_url, preview_key, preview_url,
	mux_track_id, mux_track_status, created_at, updated_at`

func (r *PostgresVideoRepository) Save(ctx context.Context, video *domain.Video) error {
	query := `INSERT INTO videos (id, user_id, title, mux_upload_id, mux_status) VALUES ($1, $2, $3, $4, $5)`
	_, err := r.DB.ExecContext(ctx, query, video.ID, video.UserID, video.Title, video.MuxUploadID, video.MuxStatus)
	return err
}

func (r *PostgresVideoRepository) FindByID(ctx context.Context, id string) (*domain.Video, error) {
	return r.findBy(ctx, "id", id)
}

func (r *PostgresVideoRepository) FindByUploadID(ctx context.Context, uploadID string) (*domain.Video, error) {
	return r.findBy(ctx, "mux_upload_id", uploadID)
}

func (r *PostgresVideoRepository) FindByAssetID(ctx context.Context, assetID string) (*domain.Video, error) {
	return r.findBy(ctx, "mux_asset_id", assetID)
}

func (r *PostgresVideoRepository) findBy(ctx context.Context, column, value string) (*domain.Video, error) {
	query := fmt.Sprintf(`SELECT %s FROM videos WHERE %s = $1`, videoColumns, column)
	row := r.DB.QueryRowContext(ctx, query, value)
	video, err := scanVideo(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return video, nil
}

func (r *PostgresVideoRepository) FindByUserID(ctx context.Context, userID int) ([]domain.Video, error) {
	query := fmt.Sprintf(`SELECT %s FROM videos WHERE user_id = $1 ORDER BY created_at DESC`, videoColumns)
	rows, err := r.DB.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query videos: %w", err)
	}
	defer rows.Close()

	var videos []domain.Video
	for rows.Next() {
		video, err := scanVideo(rows.Scan)
		if err != nil {
			return nil, err
		}
		videos = append(videos, *video)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating over videos: %w", err)
	}
	return videos, nil
}

func (r *PostgresVideoRepository) UpdateAssetCreated(ctx context.Context, uploadID, assetID string, status domain.MuxStatus) error {
	query := `UPDATE videos SET mux_asset_id = $1, mux_status = $2, updated_at = NOW() WHERE mux_upload_id = $3`
	_, err := r.DB.ExecContext(ctx, query, assetID, status, uploadID)
	return err
}

func (r *PostgresVideoRepository) UpdateAssetReady(ctx context.Context, uploadID string, update domain.ReadyUpdate) error {
	// COALESCE keeps prior locations when a mirror attempt failed and its
	// pair is absent from this update.
	query := `UPDATE videos SET
		mux_asset_id = $1, mux_status = $2, mux_playback_id = $3, duration = $4,
		thumbnail_key = COALESCE($5, thumbnail_key), thumbnail_url = COALESCE($6, thumbnail_url),
		preview_key = COALESCE($7, preview_key), preview_url = COALESCE($8, preview_url),
		updated_at = NOW()
		WHERE mux_upload_id = $9`
	var thumbKey, thumbURL, prevKey, prevURL sql.NullString
	if update.Thumbnail != nil {
		thumbKey = sql.NullString{String: update.Thumbnail.Key, Valid: true}
		thumbURL = sql.NullString{String: update.Thumbnail.URL, Valid: true}
	}
	if update.Preview != nil {
		prevKey = sql.NullString{String: update.Preview.Key, Valid: true}
		prevURL = sql.NullString{String: update.Preview.URL, Valid: true}
	}
	_, err := r.DB.ExecContext(ctx, query,
		update.AssetID, update.Status, update.PlaybackID, update.Duration,
		thumbKey, thumbURL, prevKey, prevURL, uploadID)
	return err
}

func (r *PostgresVideoRepository) UpdateStatusByUploadID(ctx context.Context, uploadID string, status domain.MuxStatus) error {
	query := `UPDATE videos SET mux_status = $1, updated_at = NOW() WHERE mux_upload_id = $2`
	_, err := r.DB.ExecContext(ctx, query, status, uploadID)
	return err
}

func (r *PostgresVideoRepository) UpdateTrack(ctx context.Context, assetID, trackID, trackStatus string) error {
	query := `UPDATE videos SET mux_track_id = $1, mux_track_status = $2, updated_at = NOW() WHERE mux_asset_id = $3`
	_, err := r.DB.ExecContext(ctx, query, trackID, trackStatus, assetID)
	return err
}

func (r *PostgresVideoRepository) DeleteByID(ctx context.Context, id string) error {
	_, err := r.DB.ExecContext(ctx, `DELETE FROM videos WHERE id = $1`, id)
	return err
}

func (r *PostgresVideoRepository) DeleteByUploadID(ctx context.Context, uploadID string) error {
	_, err := r.DB.ExecContext(ctx, `DELETE FROM videos WHERE mux_upload_id = $1`, uploadID)
	return err
}

func scanVideo(scan func(dest ...any) error) (*domain.Video, error) {
	var v domain.Video
	var assetID, playbackID, thumbKey, thumbURL, prevKey, prevURL, trackID, trackStatus sql.NullString
	err := scan(
		&v.ID, &v.UserID, &v.Title, &v.MuxUploadID, &assetID, &v.MuxStatus, &playbackID,
		&v.Duration, &thumbKey, &thumbURL, &prevKey, &prevURL,
		&trackID, &trackStatus, &v.CreatedAt, &v.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	v.MuxAssetID = assetID.String
	v.MuxPlaybackID = playbackID.String
	v.ThumbnailKey = thumbKey.String
	v.ThumbnailURL = thumbURL.String
	v.PreviewKey = prevKey.String
	v.PreviewURL = prevURL.String
	v.MuxTrackID = trackID.String
	v.MuxTrackStatus = trackStatus.String
	return &v, nil
}
