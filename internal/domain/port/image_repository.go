package port

import (
	"context"

	"edge-lab-bot/internal/domain/entity"
)

// ImageRepository хранит текущее загруженное изображение каждого пользователя
type ImageRepository interface {
	// Put заменяет текущее изображение пользователя
	Put(ctx context.Context, userID int64, img *entity.Raster) error

	// Get возвращает текущее изображение, ok=false если загрузок ещё не было
	Get(ctx context.Context, userID int64) (img *entity.Raster, ok bool, err error)

	// Delete забывает изображение пользователя
	Delete(ctx context.Context, userID int64) error
}
