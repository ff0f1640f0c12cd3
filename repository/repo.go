package repository

import (
	"context"
	"database/sql"
	"errors"
	"github.com/google/uuid"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"vidgate/entities"
)

type VideoRepository interface {
	Migrate(ctx context.Context) error
	Transaction(ctx context.Context, callback func(ctx context.Context) error, opts ...*sql.TxOptions) error
	CreateVideo(ctx context.Context, video *entities.Video) error
	FindVideoById(ctx context.Context, id uuid.UUID) (*entities.Video, error)
	ListByUploader(ctx context.Context, uploader string) ([]*entities.Video, error)
	SetPublic(ctx context.Context, id uuid.UUID) error
	DeleteVideo(ctx context.Context, id uuid.UUID) error
}

type repo struct {
	db *gorm.DB
}

func NewRepo(db *sql.DB) VideoRepository {
	gormDB, _ := gorm.Open(postgres.New(postgres.Config{
		Conn: db}),
		&gorm.Config{
			Logger: logger.Default.LogMode(logger.Warn),
		},
	)
	return &repo{
		db: gormDB,
	}
}

func (r *repo) getDB() *gorm.DB {
	return r.db
}

func (r *repo) Migrate(ctx context.Context) error {
	return r.getDB().WithContext(ctx).AutoMigrate(&entities.Video{})
}

func (r *repo) Transaction(ctx context.Context, callback func(ctx context.Context) error, opts ...*sql.TxOptions) error {
	return r.getDB().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return callback(ctx)
	}, opts...)
}

func (r *repo) CreateVideo(ctx context.Context, video *entities.Video) error {
	return r.getDB().WithContext(ctx).Create(video).Error
}

// FindVideoById returns (nil, nil) when no record exists; the caller decides
// how absence is reported.
func (r *repo) FindVideoById(ctx context.Context, id uuid.UUID) (*entities.Video, error) {
	video := &entities.Video{}
	err := r.getDB().WithContext(ctx).First(video, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	return video, nil
}

func (r *repo) ListByUploader(ctx context.Context, uploader string) ([]*entities.Video, error) {
	var videos []*entities.Video
	err := r.getDB().WithContext(ctx).Where("uploader = ?", uploader).Order("name ASC").Find(&videos).Error
	if err != nil {
		return nil, err
	}
	return videos, nil
}

func (r *repo) SetPublic(ctx context.Context, id uuid.UUID) error {
	return r.getDB().WithContext(ctx).Model(&entities.Video{}).Where("id = ?", id).Update("public", true).Error
}

func (r *repo) DeleteVideo(ctx context.Context, id uuid.UUID) error {
	return r.getDB().WithContext(ctx).Delete(&entities.Video{}, "id = ?", id).Error
}
