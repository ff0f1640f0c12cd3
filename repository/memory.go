package repository

import (
	"context"
	"database/sql"
	"sort"
	"sync"

	"github.com/google/uuid"
	"vidgate/entities"
)

// MemoryRepo is a mutex-guarded in-memory VideoRepository. It backs the
// behavioural tests and local demos; production wiring uses the gorm repo.
type MemoryRepo struct {
	mu     sync.RWMutex
	videos map[uuid.UUID]*entities.Video
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{
		videos: make(map[uuid.UUID]*entities.Video),
	}
}

func (r *MemoryRepo) Migrate(ctx context.Context) error {
	return nil
}

func (r *MemoryRepo) Transaction(ctx context.Context, callback func(ctx context.Context) error, opts ...*sql.TxOptions) error {
	return callback(ctx)
}

func (r *MemoryRepo) CreateVideo(ctx context.Context, video *entities.Video) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	copied := *video
	r.videos[video.ID] = &copied
	return nil
}

func (r *MemoryRepo) FindVideoById(ctx context.Context, id uuid.UUID) (*entities.Video, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	video, exists := r.videos[id]
	if !exists {
		return nil, nil
	}

	copied := *video
	return &copied, nil
}

func (r *MemoryRepo) ListByUploader(ctx context.Context, uploader string) ([]*entities.Video, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var videos []*entities.Video
	for _, video := range r.videos {
		if video.Uploader == uploader {
			copied := *video
			videos = append(videos, &copied)
		}
	}
	sort.Slice(videos, func(i, j int) bool {
		return videos[i].Name < videos[j].Name
	})
	return videos, nil
}

func (r *MemoryRepo) SetPublic(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if video, exists := r.videos[id]; exists {
		video.Public = true
	}
	return nil
}

func (r *MemoryRepo) DeleteVideo(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.videos, id)
	return nil
}
