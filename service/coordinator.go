package service

import (
	"context"
	"io"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"vidgate/constant"
	"vidgate/dto"
	"vidgate/entities"
	"vidgate/pkg/keylock"
	"vidgate/pkg/rabbitmq"
	"vidgate/repository"
	"vidgate/storage"
)

// Coordinator enforces ownership and visibility over video objects and keeps
// metadata consistent with the storage backend: a record exists iff the
// backend confirmed holding the bytes.
type Coordinator interface {
	Upload(ctx context.Context, identity entities.Identity, name string, data io.Reader, size int64) (uuid.UUID, error)
	Fetch(ctx context.Context, identity entities.Identity, id uuid.UUID) (io.ReadCloser, error)
	List(ctx context.Context, identity entities.Identity) ([]dto.VideoItem, error)
	Publish(ctx context.Context, identity entities.Identity, id uuid.UUID) error
	Delete(ctx context.Context, identity entities.Identity, id uuid.UUID) error
}

type coordinator struct {
	repo    repository.VideoRepository
	store   storage.Client
	events  rabbitmq.Publisher
	locks   *keylock.KeyLock
	baseURL string
}

func NewCoordinator(repo repository.VideoRepository, store storage.Client, events rabbitmq.Publisher, baseURL string) Coordinator {
	return &coordinator{
		repo:    repo,
		store:   store,
		events:  events,
		locks:   keylock.New(),
		baseURL: baseURL,
	}
}

// Upload stores the bytes first and inserts metadata only on confirmed
// success, so a backend failure never leaves an orphan record.
func (c *coordinator) Upload(ctx context.Context, identity entities.Identity, name string, data io.Reader, size int64) (uuid.UUID, error) {
	if identity.Anonymous() {
		return uuid.Nil, ErrUnauthenticated
	}

	video := &entities.Video{
		ID:       uuid.New(),
		Name:     name,
		Uploader: identity.Uploader,
		Public:   false,
	}

	if err := c.store.Store(ctx, video.ObjectKey(), data, size); err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Str("video_id", video.ID.String()).Msg("failed to store video bytes")
		return uuid.Nil, upstream("store", err)
	}

	err := c.repo.Transaction(ctx, func(ctx context.Context) error {
		return c.repo.CreateVideo(ctx, video)
	})
	if err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Str("video_id", video.ID.String()).Msg("failed to insert video record")
		return uuid.Nil, err
	}

	c.events.PublishVideoEvent(ctx, constant.VideoEventUploaded, dto.VideoEventMessage{
		Event:    constant.VideoEventUploaded,
		VideoId:  video.ID,
		Uploader: video.Uploader,
		Name:     video.Name,
	})

	zerolog.Ctx(ctx).Info().Str("video_id", video.ID.String()).Str("uploader", video.Uploader).Msg("video uploaded")
	return video.ID, nil
}

// Fetch streams the bytes when the caller owns the video or it is public.
// Absent and private are reported identically.
func (c *coordinator) Fetch(ctx context.Context, identity entities.Identity, id uuid.UUID) (io.ReadCloser, error) {
	video, err := c.authorize(ctx, identity, id)
	if err != nil {
		return nil, err
	}

	body, err := c.store.Retrieve(ctx, video.ObjectKey())
	if err != nil {
		// Metadata says the object exists; surface the gap, don't mask it
		// as not-found.
		zerolog.Ctx(ctx).Error().Err(err).Str("video_id", id.String()).Msg("backend missing bytes for known video")
		return nil, upstream("retrieve", err)
	}

	return body, nil
}

func (c *coordinator) List(ctx context.Context, identity entities.Identity) ([]dto.VideoItem, error) {
	if identity.Anonymous() {
		return nil, ErrUnauthenticated
	}

	videos, err := c.repo.ListByUploader(ctx, identity.Uploader)
	if err != nil {
		return nil, err
	}

	items := make([]dto.VideoItem, 0, len(videos))
	for _, video := range videos {
		item := dto.VideoItem{
			VideoId:  video.ID,
			Name:     video.Name,
			Public:   video.Public,
			FetchURL: c.baseURL + "/videos/" + video.ID.String(),
		}

		// One broken thumbnail must not abort the listing; the item is
		// degraded instead.
		thumb, err := c.store.Thumbnail(ctx, video.ObjectKey())
		if err != nil {
			zerolog.Ctx(ctx).Debug().Err(err).Str("video_id", video.ID.String()).Msg("thumbnail unavailable")
		} else {
			item.Thumbnail = thumb
		}

		items = append(items, item)
	}

	return items, nil
}

// Publish flips visibility to public. Owner-only, metadata-only, idempotent.
func (c *coordinator) Publish(ctx context.Context, identity entities.Identity, id uuid.UUID) error {
	if identity.Anonymous() {
		return ErrUnauthenticated
	}

	c.locks.Lock(id.String())
	defer c.locks.Unlock(id.String())

	video, err := c.findOwned(ctx, identity, id)
	if err != nil {
		return err
	}

	if video.Public {
		return nil
	}

	err = c.repo.Transaction(ctx, func(ctx context.Context) error {
		return c.repo.SetPublic(ctx, id)
	})
	if err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Str("video_id", id.String()).Msg("failed to publish video")
		return err
	}

	c.events.PublishVideoEvent(ctx, constant.VideoEventPublished, dto.VideoEventMessage{
		Event:    constant.VideoEventPublished,
		VideoId:  id,
		Uploader: identity.Uploader,
	})

	zerolog.Ctx(ctx).Info().Str("video_id", id.String()).Msg("video published")
	return nil
}

// Delete erases the backend bytes first and removes metadata only on
// confirmed success, the inverse ordering of Upload. Either way metadata
// never claims bytes the backend does not hold.
func (c *coordinator) Delete(ctx context.Context, identity entities.Identity, id uuid.UUID) error {
	if identity.Anonymous() {
		return ErrUnauthenticated
	}

	c.locks.Lock(id.String())
	defer c.locks.Unlock(id.String())

	video, err := c.findOwned(ctx, identity, id)
	if err != nil {
		return err
	}

	if err := c.store.Erase(ctx, video.ObjectKey()); err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Str("video_id", id.String()).Msg("backend erase failed, record retained")
		return upstream("erase", err)
	}

	err = c.repo.Transaction(ctx, func(ctx context.Context) error {
		return c.repo.DeleteVideo(ctx, id)
	})
	if err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Str("video_id", id.String()).Msg("failed to delete video record")
		return err
	}

	c.events.PublishVideoEvent(ctx, constant.VideoEventDeleted, dto.VideoEventMessage{
		Event:    constant.VideoEventDeleted,
		VideoId:  id,
		Uploader: identity.Uploader,
	})

	zerolog.Ctx(ctx).Info().Str("video_id", id.String()).Msg("video deleted")
	return nil
}

// authorize loads the record and applies the fetch visibility rule. The
// metadata read serializes with concurrent publish/delete on the same id so
// it never observes a half-applied mutation.
func (c *coordinator) authorize(ctx context.Context, identity entities.Identity, id uuid.UUID) (*entities.Video, error) {
	c.locks.Lock(id.String())
	defer c.locks.Unlock(id.String())

	video, err := c.repo.FindVideoById(ctx, id)
	if err != nil {
		return nil, err
	}
	if video == nil {
		return nil, ErrNotFoundOrDenied
	}
	if video.Uploader == identity.Uploader && !identity.Anonymous() {
		return video, nil
	}
	if video.Public {
		return video, nil
	}
	return nil, ErrNotFoundOrDenied
}

// findOwned is authorize for owner-only mutations; the caller holds the
// per-id lock.
func (c *coordinator) findOwned(ctx context.Context, identity entities.Identity, id uuid.UUID) (*entities.Video, error) {
	video, err := c.repo.FindVideoById(ctx, id)
	if err != nil {
		return nil, err
	}
	if video == nil || video.Uploader != identity.Uploader {
		return nil, ErrNotFoundOrDenied
	}
	return video, nil
}
