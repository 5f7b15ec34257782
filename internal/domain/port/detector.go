package port

import (
	"context"

	"edge-lab-bot/internal/domain/entity"
)

// EdgeDetector интерфейс конвейера обнаружения границ и углов
type EdgeDetector interface {
	// Detect применяет оператор к изображению и возвращает новый растр того же размера.
	// Входной растр не изменяется.
	Detect(ctx context.Context, img *entity.Raster, op entity.Operator, params entity.ParameterSet) (*entity.DetectionResult, error)
}
