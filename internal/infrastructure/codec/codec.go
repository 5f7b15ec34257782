package codec

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	_ "image/jpeg"
	_ "image/png"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/webp"

	"edge-lab-bot/internal/domain/entity"
	"edge-lab-bot/internal/domain/port"
)

// DefaultMaxSide ограничение длинной стороны после уменьшения вдвое.
const DefaultMaxSide = 2048

// DefaultMaxPixels предел площади исходного изображения до декодирования.
const DefaultMaxPixels = 64 << 20

// comparisonGap ширина белой полосы между оригиналом и результатом.
const comparisonGap = 8

var allowedFormats = map[string]bool{
	"jpeg": true,
	"png":  true,
	"webp": true,
}

// ImagingCodec декодирует загрузки и собирает картинки для ответа через imaging.
type ImagingCodec struct {
	MaxSide int
	// MaxPixels ограничивает ширину×высоту из заголовка, проверяется до выделения памяти
	MaxPixels int64
}

// NewImagingCodec создаёт кодек. maxSide <= 0 означает DefaultMaxSide.
func NewImagingCodec(maxSide int) *ImagingCodec {
	if maxSide <= 0 {
		maxSide = DefaultMaxSide
	}
	return &ImagingCodec{MaxSide: maxSide, MaxPixels: DefaultMaxPixels}
}

// WithMaxPixels меняет предел площади. n <= 0 означает DefaultMaxPixels.
func (c *ImagingCodec) WithMaxPixels(n int64) *ImagingCodec {
	if n <= 0 {
		n = DefaultMaxPixels
	}
	c.MaxPixels = n
	return c
}

// Decode превращает JPEG/PNG/WebP в BGR-растр, уменьшенный вдвое по каждой стороне.
func (c *ImagingCodec) Decode(data []byte) (*entity.Raster, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty upload", entity.ErrDecode)
	}

	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", entity.ErrDecode, err)
	}
	if !allowedFormats[format] {
		return nil, fmt.Errorf("%w: unsupported format %q", entity.ErrDecode, format)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return nil, fmt.Errorf("%w: image has zero width or height", entity.ErrDecode)
	}
	// Размеры из заголовка не доверенные: маленький файл может заявить гигантскую картинку.
	if c.MaxPixels > 0 && int64(cfg.Width)*int64(cfg.Height) > c.MaxPixels {
		return nil, fmt.Errorf("%w: image %dx%d exceeds %d pixels", entity.ErrDecode, cfg.Width, cfg.Height, c.MaxPixels)
	}

	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", entity.ErrDecode, err)
	}

	b := img.Bounds()
	if b.Dx() == 0 || b.Dy() == 0 {
		return nil, fmt.Errorf("%w: image has zero width or height", entity.ErrDecode)
	}

	// Интерфейс показывает изображение в половину исходного размера.
	half := imaging.Resize(img, maxInt(1, b.Dx()/2), maxInt(1, b.Dy()/2), imaging.Linear)

	// Ограничиваем размер, чтобы время обработки не росло бесконечно.
	if c.MaxSide > 0 && (half.Bounds().Dx() > c.MaxSide || half.Bounds().Dy() > c.MaxSide) {
		half = imaging.Fit(half, c.MaxSide, c.MaxSide, imaging.Linear)
	}

	return entity.RasterFromImage(half), nil
}

// Encode кодирует растр в PNG.
func (c *ImagingCodec) Encode(r *entity.Raster) ([]byte, error) {
	if err := r.Validate(); err != nil {
		return nil, err
	}
	return encodePNG(r.ToImage())
}

// EncodeComparison кладёт оригинал слева, результат справа, и кодирует в PNG.
func (c *ImagingCodec) EncodeComparison(original, processed *entity.Raster) ([]byte, error) {
	if err := original.Validate(); err != nil {
		return nil, err
	}
	if err := processed.Validate(); err != nil {
		return nil, err
	}

	w := original.Width + comparisonGap + processed.Width
	h := maxInt(original.Height, processed.Height)

	canvas := imaging.New(w, h, color.White)
	canvas = imaging.Paste(canvas, original.ToImage(), image.Pt(0, 0))
	canvas = imaging.Paste(canvas, processed.ToImage(), image.Pt(original.Width+comparisonGap, 0))

	return encodePNG(canvas)
}

func encodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.PNG); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

var _ port.ImageCodec = (*ImagingCodec)(nil)
