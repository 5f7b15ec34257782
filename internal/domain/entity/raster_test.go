package entity

import (
	"errors"
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRaster_Validate(t *testing.T) {
	require.NoError(t, NewRaster(4, 3, 3).Validate())
	require.NoError(t, NewRaster(4, 3, 1).Validate())

	cases := []*Raster{
		nil,
		NewRaster(0, 3, 3),
		NewRaster(3, 0, 3),
		NewRaster(2, 2, 4),
		{Width: 2, Height: 2, Channels: 3, Pix: make([]byte, 5)},
	}
	for _, r := range cases {
		err := r.Validate()
		require.Error(t, err)
		require.True(t, errors.Is(err, ErrDecode))
	}
}

func TestRasterFromImage_BGROrder(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 2, 1))
	img.SetNRGBA(0, 0, color.NRGBA{R: 10, G: 20, B: 30, A: 255})
	img.SetNRGBA(1, 0, color.NRGBA{R: 200, G: 100, B: 50, A: 255})

	r := RasterFromImage(img)
	require.Equal(t, 2, r.Width)
	require.Equal(t, 1, r.Height)
	require.Equal(t, 3, r.Channels)
	require.Equal(t, []byte{30, 20, 10, 50, 100, 200}, r.Pix)
}

func TestRasterFromImage_GenericPath(t *testing.T) {
	img := image.NewRGBA(image.Rect(5, 5, 7, 6))
	img.Set(5, 5, color.RGBA{R: 1, G: 2, B: 3, A: 255})
	img.Set(6, 5, color.RGBA{R: 4, G: 5, B: 6, A: 255})

	r := RasterFromImage(img)
	require.Equal(t, []byte{3, 2, 1, 6, 5, 4}, r.Pix)
}

func TestRaster_ToImageRoundTrip(t *testing.T) {
	r := NewRaster(3, 2, 3)
	for i := range r.Pix {
		r.Pix[i] = byte(i * 7)
	}
	back := RasterFromImage(r.ToImage())
	require.Equal(t, r.Pix, back.Pix)

	gray := NewRaster(3, 2, 1)
	gray.Pix[4] = 99
	g, ok := gray.ToImage().(*image.Gray)
	require.True(t, ok)
	require.Equal(t, uint8(99), g.GrayAt(1, 1).Y)
}

func TestRaster_CloneIsIndependent(t *testing.T) {
	r := NewRaster(2, 2, 1)
	c := r.Clone()
	c.Pix[0] = 1
	require.Equal(t, byte(0), r.Pix[0])
	require.Equal(t, byte(1), c.PixelAt(0, 0)[0])
}
