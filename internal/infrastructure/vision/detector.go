//go:build gocv
// +build gocv

package vision

import (
	"context"
	"fmt"
	"image"
	"image/color"

	"gocv.io/x/gocv"

	"edge-lab-bot/internal/domain/entity"
	"edge-lab-bot/internal/domain/port"
)

// GoCVDetector применяет операторы OpenCV к растрам.
// Не хранит состояния между вызовами; все промежуточные Mat освобождаются до возврата.
type GoCVDetector struct{}

// NewGoCVDetector создаёт детектор на OpenCV.
func NewGoCVDetector() *GoCVDetector {
	return &GoCVDetector{}
}

// Detect запускает оператор op с параметрами params и возвращает растр того же размера.
func (d *GoCVDetector) Detect(ctx context.Context, img *entity.Raster, op entity.Operator, params entity.ParameterSet) (*entity.DetectionResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := checkInput(img, op, params); err != nil {
		return nil, err
	}

	src, err := rasterToMat(img)
	if err != nil {
		return nil, err
	}
	defer src.Close()

	result := &entity.DetectionResult{Operator: op}
	switch p := params.(type) {
	case entity.CannyParams:
		result.Output = d.canny(src, p)
	case entity.SobelParams:
		result.Output = d.sobel(src, p)
	case entity.PrewittParams:
		result.Output = d.prewitt(src, p)
	case entity.HarrisParams:
		result.Output, result.MarkedPixels = d.harris(src, p)
	case entity.GoodFeaturesParams:
		result.Output, result.Corners = d.goodFeatures(src, p)
	default:
		return nil, &entity.InvalidParameterError{Operator: op, Reason: fmt.Sprintf("unexpected parameter set %T", params)}
	}

	return result, nil
}

// canny строит границы с гистерезисом, без постобработки.
func (d *GoCVDetector) canny(src gocv.Mat, p entity.CannyParams) *entity.Raster {
	gray := toGray(src)
	defer gray.Close()

	edges := gocv.NewMat()
	defer edges.Close()
	gocv.Canny(gray, &edges, float32(p.Low), float32(p.High))

	return matToRaster(edges)
}

// sobel считает |dI/dx| с нормализацией min-max в [0, 255].
func (d *GoCVDetector) sobel(src gocv.Mat, p entity.SobelParams) *entity.Raster {
	gray := toGray(src)
	defer gray.Close()

	grad := gocv.NewMat()
	defer grad.Close()
	gocv.Sobel(gray, &grad, gocv.MatTypeCV64F, 1, 0, p.KernelSize, 1, 0, gocv.BorderDefault)

	zeros := gocv.NewMatWithSizeFromScalar(gocv.NewScalar(0, 0, 0, 0), grad.Rows(), grad.Cols(), gocv.MatTypeCV64F)
	defer zeros.Close()

	abs := gocv.NewMat()
	defer abs.Close()
	gocv.AbsDiff(grad, zeros, &abs)

	// Сырые значения производной не ограничены, растягиваем их в отображаемый диапазон.
	norm := gocv.NewMat()
	defer norm.Close()
	gocv.Normalize(abs, &norm, 0, 255, gocv.NormMinMax)

	out := gocv.NewMat()
	defer out.Close()
	norm.ConvertTo(&out, gocv.MatTypeCV8U)

	return matToRaster(out)
}

// prewitt использует фиксированное ядро 3×3. KernelSize намеренно не используется.
func (d *GoCVDetector) prewitt(src gocv.Mat, _ entity.PrewittParams) *entity.Raster {
	gray := toGray(src)
	defer gray.Close()

	kernel := gocv.NewMatWithSize(3, 3, gocv.MatTypeCV32F)
	defer kernel.Close()
	for row := 0; row < 3; row++ {
		kernel.SetFloatAt(row, 0, -1)
		kernel.SetFloatAt(row, 1, 0)
		kernel.SetFloatAt(row, 2, 1)
	}

	out := gocv.NewMat()
	defer out.Close()
	gocv.Filter2D(gray, &out, gocv.MatTypeCV8U, kernel, image.Pt(-1, -1), 0, gocv.BorderDefault)

	return matToRaster(out)
}

// harris закрашивает красным пиксели, где расширенный отклик больше 1% максимума.
func (d *GoCVDetector) harris(src gocv.Mat, p entity.HarrisParams) (*entity.Raster, int) {
	gray := toGray(src)
	defer gray.Close()

	response := harrisResponse(gray, harrisBlockSize, harrisApertureSize, p.Quality)
	defer response.Close()

	kernel := gocv.GetStructuringElement(gocv.MorphRect, image.Pt(3, 3))
	defer kernel.Close()

	dilated := gocv.NewMat()
	defer dilated.Close()
	gocv.Dilate(response, &dilated, kernel)

	_, maxVal, _, _ := gocv.MinMaxLoc(dilated)

	// Строго больше порога: при нулевом максимуме ничего не отмечается.
	mask32 := gocv.NewMat()
	defer mask32.Close()
	gocv.Threshold(dilated, &mask32, harrisMarkThreshold*maxVal, 255, gocv.ThresholdBinary)

	mask := gocv.NewMat()
	defer mask.Close()
	mask32.ConvertTo(&mask, gocv.MatTypeCV8U)

	out := toColor(src)
	defer out.Close()

	red := gocv.NewMatWithSizeFromScalar(gocv.NewScalar(0, 0, 255, 0), out.Rows(), out.Cols(), gocv.MatTypeCV8UC3)
	defer red.Close()
	red.CopyToWithMask(&out, mask)

	return matToRaster(out), gocv.CountNonZero(mask)
}

// goodFeatures рисует закрашенный круг на каждом найденном углу.
func (d *GoCVDetector) goodFeatures(src gocv.Mat, p entity.GoodFeaturesParams) (*entity.Raster, []image.Point) {
	gray := toGray(src)
	defer gray.Close()

	corners := gocv.NewMat()
	defer corners.Close()
	gocv.GoodFeaturesToTrack(gray, &corners, p.MaxCorners, p.Quality, p.MinDistance)

	points := make([]image.Point, 0, corners.Rows())
	for i := 0; i < corners.Rows(); i++ {
		v := corners.GetVecfAt(i, 0)
		points = append(points, image.Pt(int(v[0]), int(v[1])))
	}

	out := toColor(src)
	defer out.Close()

	marker := color.RGBA{R: cornerMarkerValue, G: cornerMarkerValue, B: cornerMarkerValue}
	for _, pt := range points {
		gocv.Circle(&out, pt, cornerMarkerRadius, marker, -1)
	}

	return matToRaster(out), points
}

// harrisResponse считает det(M) - k·trace(M)² по окну blockSize×blockSize.
// В gocv нет привязки cornerHarris, поэтому отклик собирается из примитивов OpenCV.
// Окно усредняется, а не суммируется: это умножает весь отклик на константу
// и не меняет пиксели, превышающие долю максимума.
func harrisResponse(gray gocv.Mat, blockSize, apertureSize int, k float64) gocv.Mat {
	src := gocv.NewMat()
	defer src.Close()
	gray.ConvertTo(&src, gocv.MatTypeCV32F)

	scale := 1.0 / float64(blockSize<<(apertureSize-1))

	dx := gocv.NewMat()
	defer dx.Close()
	gocv.Sobel(src, &dx, gocv.MatTypeCV32F, 1, 0, apertureSize, scale, 0, gocv.BorderDefault)

	dy := gocv.NewMat()
	defer dy.Close()
	gocv.Sobel(src, &dy, gocv.MatTypeCV32F, 0, 1, apertureSize, scale, 0, gocv.BorderDefault)

	dxx := gocv.NewMat()
	defer dxx.Close()
	gocv.Multiply(dx, dx, &dxx)

	dyy := gocv.NewMat()
	defer dyy.Close()
	gocv.Multiply(dy, dy, &dyy)

	dxy := gocv.NewMat()
	defer dxy.Close()
	gocv.Multiply(dx, dy, &dxy)

	window := image.Pt(blockSize, blockSize)

	a := gocv.NewMat()
	defer a.Close()
	gocv.Blur(dxx, &a, window)

	b := gocv.NewMat()
	defer b.Close()
	gocv.Blur(dxy, &b, window)

	c := gocv.NewMat()
	defer c.Close()
	gocv.Blur(dyy, &c, window)

	ac := gocv.NewMat()
	defer ac.Close()
	gocv.Multiply(a, c, &ac)

	bb := gocv.NewMat()
	defer bb.Close()
	gocv.Multiply(b, b, &bb)

	det := gocv.NewMat()
	defer det.Close()
	gocv.Subtract(ac, bb, &det)

	trace := gocv.NewMat()
	defer trace.Close()
	gocv.Add(a, c, &trace)

	trace2 := gocv.NewMat()
	defer trace2.Close()
	gocv.Multiply(trace, trace, &trace2)

	response := gocv.NewMat()
	gocv.AddWeighted(det, 1, trace2, -k, 0, &response)
	return response
}

// rasterToMat копирует растр в новый Mat, вызывающий должен его закрыть.
func rasterToMat(r *entity.Raster) (gocv.Mat, error) {
	mt := gocv.MatTypeCV8UC3
	if r.Channels == 1 {
		mt = gocv.MatTypeCV8UC1
	}

	view, err := gocv.NewMatFromBytes(r.Height, r.Width, mt, r.Pix)
	if err != nil {
		return gocv.NewMat(), fmt.Errorf("%w: %v", entity.ErrDecode, err)
	}
	defer view.Close()

	// view может ссылаться на память растра, отдаём независимую копию.
	return view.Clone(), nil
}

func matToRaster(m gocv.Mat) *entity.Raster {
	return &entity.Raster{
		Width:    m.Cols(),
		Height:   m.Rows(),
		Channels: m.Channels(),
		Pix:      m.ToBytes(),
	}
}

func toGray(src gocv.Mat) gocv.Mat {
	if src.Channels() == 1 {
		return src.Clone()
	}
	gray := gocv.NewMat()
	gocv.CvtColor(src, &gray, gocv.ColorBGRToGray)
	return gray
}

func toColor(src gocv.Mat) gocv.Mat {
	if src.Channels() == 3 {
		return src.Clone()
	}
	bgr := gocv.NewMat()
	gocv.CvtColor(src, &bgr, gocv.ColorGrayToBGR)
	return bgr
}

var _ port.EdgeDetector = (*GoCVDetector)(nil)
