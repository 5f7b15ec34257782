package vision

import (
	"errors"
	"fmt"

	"edge-lab-bot/internal/domain/entity"
)

// ErrDetectorUnavailable возвращается сборкой без OpenCV.
var ErrDetectorUnavailable = errors.New("gocv build tag is not enabled")

// Фиксированные параметры операторов, не выводимые в интерфейс.
const (
	harrisBlockSize     = 2
	harrisApertureSize  = 3
	harrisMarkThreshold = 0.01 // доля максимума отклика
	cornerMarkerRadius  = 3
	cornerMarkerValue   = 255 // яркость маркера, одинаковая во всех каналах
)

// checkInput выполняет проверки, общие для всех сборок детектора.
func checkInput(img *entity.Raster, op entity.Operator, params entity.ParameterSet) error {
	if !op.Valid() {
		return fmt.Errorf("%w: %q", entity.ErrUnsupportedOperator, op)
	}
	if err := img.Validate(); err != nil {
		return err
	}
	if params == nil || params.Operator() != op {
		return &entity.InvalidParameterError{
			Operator: op,
			Reason:   fmt.Sprintf("parameter set %T does not belong to this operator", params),
		}
	}
	return nil
}
