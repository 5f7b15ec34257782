package entity

import (
	"fmt"
	"image"
	"image/color"
)

// Raster 8-битное изображение с чередующимися каналами.
// Цветные растры хранятся в порядке BGR, одноканальные хранят яркость.
type Raster struct {
	Width    int
	Height   int
	Channels int
	Pix      []byte
}

// NewRaster создаёт растр, заполненный нулями.
func NewRaster(width, height, channels int) *Raster {
	return &Raster{
		Width:    width,
		Height:   height,
		Channels: channels,
		Pix:      make([]byte, width*height*channels),
	}
}

// Empty сообщает, что у растра нет пикселей.
func (r *Raster) Empty() bool {
	return r == nil || r.Width <= 0 || r.Height <= 0
}

// Stride длина строки в байтах.
func (r *Raster) Stride() int {
	return r.Width * r.Channels
}

// Offset возвращает индекс первого канала пикселя (x, y).
func (r *Raster) Offset(x, y int) int {
	return y*r.Stride() + x*r.Channels
}

// PixelAt возвращает срез каналов пикселя (x, y) без копирования.
func (r *Raster) PixelAt(x, y int) []byte {
	i := r.Offset(x, y)
	return r.Pix[i : i+r.Channels]
}

// Validate проверяет, что растр можно передать в конвейер.
func (r *Raster) Validate() error {
	if r.Empty() {
		return fmt.Errorf("%w: raster has zero width or height", ErrDecode)
	}
	if r.Channels != 1 && r.Channels != 3 {
		return fmt.Errorf("%w: unsupported channel count %d", ErrDecode, r.Channels)
	}
	if want := r.Width * r.Height * r.Channels; len(r.Pix) != want {
		return fmt.Errorf("%w: expected %d samples, got %d", ErrDecode, want, len(r.Pix))
	}
	return nil
}

// Clone возвращает глубокую копию.
func (r *Raster) Clone() *Raster {
	pix := make([]byte, len(r.Pix))
	copy(pix, r.Pix)
	return &Raster{Width: r.Width, Height: r.Height, Channels: r.Channels, Pix: pix}
}

// RasterFromImage переводит image.Image в BGR-растр. Альфа-канал отбрасывается.
func RasterFromImage(img image.Image) *Raster {
	b := img.Bounds()
	r := NewRaster(b.Dx(), b.Dy(), 3)

	if nrgba, ok := img.(*image.NRGBA); ok {
		for y := 0; y < r.Height; y++ {
			src := nrgba.Pix[(y+b.Min.Y-nrgba.Rect.Min.Y)*nrgba.Stride+(b.Min.X-nrgba.Rect.Min.X)*4:]
			dst := r.Pix[y*r.Stride():]
			for x := 0; x < r.Width; x++ {
				dst[x*3+0] = src[x*4+2]
				dst[x*3+1] = src[x*4+1]
				dst[x*3+2] = src[x*4+0]
			}
		}
		return r
	}

	for y := 0; y < r.Height; y++ {
		for x := 0; x < r.Width; x++ {
			c := color.NRGBAModel.Convert(img.At(b.Min.X+x, b.Min.Y+y)).(color.NRGBA)
			px := r.PixelAt(x, y)
			px[0], px[1], px[2] = c.B, c.G, c.R
		}
	}
	return r
}

// ToImage возвращает *image.Gray для одноканального растра и *image.NRGBA для цветного.
func (r *Raster) ToImage() image.Image {
	rect := image.Rect(0, 0, r.Width, r.Height)
	if r.Channels == 1 {
		g := image.NewGray(rect)
		copy(g.Pix, r.Pix)
		return g
	}

	out := image.NewNRGBA(rect)
	for y := 0; y < r.Height; y++ {
		for x := 0; x < r.Width; x++ {
			px := r.PixelAt(x, y)
			i := out.PixOffset(x, y)
			out.Pix[i+0] = px[2]
			out.Pix[i+1] = px[1]
			out.Pix[i+2] = px[0]
			out.Pix[i+3] = 0xff
		}
	}
	return out
}
