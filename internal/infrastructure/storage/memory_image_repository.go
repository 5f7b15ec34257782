package storage

import (
	"context"
	"sync"

	"edge-lab-bot/internal/domain/entity"
	"edge-lab-bot/internal/domain/port"
)

// MemoryImageRepository держит по одному текущему изображению на пользователя.
// Растр заменяется целиком при новой загрузке и никогда не меняется на месте.
type MemoryImageRepository struct {
	mu     sync.RWMutex
	images map[int64]*entity.Raster
}

// NewMemoryImageRepository создаёт пустое хранилище изображений
func NewMemoryImageRepository() *MemoryImageRepository {
	return &MemoryImageRepository{
		images: make(map[int64]*entity.Raster),
	}
}

// Put заменяет текущее изображение пользователя
func (r *MemoryImageRepository) Put(ctx context.Context, userID int64, img *entity.Raster) error {
	r.mu.Lock()
	r.images[userID] = img
	r.mu.Unlock()
	return nil
}

// Get возвращает текущее изображение пользователя
func (r *MemoryImageRepository) Get(ctx context.Context, userID int64) (*entity.Raster, bool, error) {
	r.mu.RLock()
	img, ok := r.images[userID]
	r.mu.RUnlock()
	return img, ok, nil
}

// Delete забывает изображение пользователя
func (r *MemoryImageRepository) Delete(ctx context.Context, userID int64) error {
	r.mu.Lock()
	delete(r.images, userID)
	r.mu.Unlock()
	return nil
}

var _ port.ImageRepository = (*MemoryImageRepository)(nil)
