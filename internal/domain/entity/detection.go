package entity

import "image"

// DetectionResult результат одного прогона оператора.
type DetectionResult struct {
	Operator     Operator      // применённый оператор
	Output       *Raster       // карта границ (1 канал) или копия входа с маркерами (3 канала)
	Corners      []image.Point // найденные углы, только для good_features
	MarkedPixels int           // число закрашенных пикселей, только для harris
}
