//go:build !gocv
// +build !gocv

package vision

import (
	"context"

	"edge-lab-bot/internal/domain/entity"
	"edge-lab-bot/internal/domain/port"
)

type GoCVDetector struct{}

// NewGoCVDetector создаёт детектор-заглушку (без OpenCV).
func NewGoCVDetector() *GoCVDetector {
	return &GoCVDetector{}
}

// Detect проверяет вход и возвращает ошибку, если сборка без тега gocv.
func (d *GoCVDetector) Detect(ctx context.Context, img *entity.Raster, op entity.Operator, params entity.ParameterSet) (*entity.DetectionResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := checkInput(img, op, params); err != nil {
		return nil, err
	}
	return nil, ErrDetectorUnavailable
}

var _ port.EdgeDetector = (*GoCVDetector)(nil)
