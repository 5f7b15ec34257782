package port

import "edge-lab-bot/internal/domain/entity"

// ImageCodec декодирует загрузки и кодирует результаты для отображения
type ImageCodec interface {
	// Decode превращает байты файла в цветной растр, готовый для конвейера
	Decode(data []byte) (*entity.Raster, error)

	// Encode кодирует один растр
	Encode(r *entity.Raster) ([]byte, error)

	// EncodeComparison собирает оригинал и результат рядом на одном холсте
	EncodeComparison(original, processed *entity.Raster) ([]byte, error)
}
