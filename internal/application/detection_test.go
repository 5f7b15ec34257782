package app

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"edge-lab-bot/internal/domain/entity"
	"edge-lab-bot/internal/infrastructure/codec"
	"edge-lab-bot/internal/infrastructure/storage"
)

// recordingDetector возвращает одноканальную копию яркости и запоминает вызовы.
type recordingDetector struct {
	calls  []entity.ParameterSet
	failOn error
}

func (d *recordingDetector) Detect(ctx context.Context, img *entity.Raster, op entity.Operator, params entity.ParameterSet) (*entity.DetectionResult, error) {
	d.calls = append(d.calls, params)
	if d.failOn != nil {
		return nil, d.failOn
	}
	out := entity.NewRaster(img.Width, img.Height, 1)
	return &entity.DetectionResult{Operator: op, Output: out}, nil
}

func newTestService(det *recordingDetector) (*DetectionService, *UserService) {
	users := NewUserService(storage.NewMemoryUserRepository())
	svc := NewDetectionService(users, storage.NewMemoryImageRepository(), det, codec.NewImagingCodec(0), zerolog.Nop())
	return svc, users
}

func testPNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, color.NRGBA{R: uint8(x), G: uint8(y), B: 10, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestDetectionService_LoadImage(t *testing.T) {
	svc, _ := newTestService(&recordingDetector{})
	ctx := context.Background()

	user, img, err := svc.LoadImage(ctx, 1, 10, testPNG(t, 40, 20))
	require.NoError(t, err)
	require.Equal(t, entity.StateImageLoaded, user.State)
	require.Equal(t, 20, img.Width)
	require.Equal(t, 10, img.Height)

	_, _, err = svc.LoadImage(ctx, 1, 10, []byte("nope"))
	require.True(t, errors.Is(err, entity.ErrDecode))
}

func TestDetectionService_SelectAndRun(t *testing.T) {
	det := &recordingDetector{}
	svc, _ := newTestService(det)
	ctx := context.Background()

	_, _, err := svc.LoadImage(ctx, 1, 10, testPNG(t, 40, 20))
	require.NoError(t, err)

	user, params, err := svc.Select(ctx, 1, 10, "canny", entity.Controls{entity.ControlLowThreshold: 50})
	require.NoError(t, err)
	require.Equal(t, entity.OperatorCanny, user.Operator)
	require.Equal(t, entity.CannyParams{Low: 50, High: 200}, params)

	out, err := svc.Run(ctx, 1, 10)
	require.NoError(t, err)
	require.Equal(t, entity.CannyParams{Low: 50, High: 200}, out.Params)
	require.Equal(t, 20, out.Result.Output.Width)
	require.NotEmpty(t, out.Comparison)

	cmp, err := png.Decode(bytes.NewReader(out.Comparison))
	require.NoError(t, err)
	require.Greater(t, cmp.Bounds().Dx(), 40)
	require.Equal(t, 10, cmp.Bounds().Dy())

	require.Len(t, det.calls, 1)

	after, err := svc.users.Get(ctx, 1, 10)
	require.NoError(t, err)
	require.Equal(t, entity.StateImageLoaded, after.State)
}

func TestDetectionService_SetControl(t *testing.T) {
	svc, _ := newTestService(&recordingDetector{})
	ctx := context.Background()

	_, _, err := svc.SetControl(ctx, 1, 10, entity.ControlKernelSize, 5)
	require.ErrorIs(t, err, ErrNoOperator)

	_, _, err = svc.Select(ctx, 1, 10, "sobel", nil)
	require.NoError(t, err)

	_, params, err := svc.SetControl(ctx, 1, 10, entity.ControlKernelSize, 5)
	require.NoError(t, err)
	require.Equal(t, entity.SobelParams{KernelSize: 5}, params)

	// недопустимое значение не портит сохранённые параметры
	_, _, err = svc.SetControl(ctx, 1, 10, entity.ControlKernelSize, 4)
	require.ErrorIs(t, err, entity.ErrInvalidParameter)

	user, err := svc.users.Get(ctx, 1, 10)
	require.NoError(t, err)
	require.Equal(t, 5.0, user.Controls[entity.ControlKernelSize])
}

func TestDetectionService_RunErrors(t *testing.T) {
	ctx := context.Background()

	svc, _ := newTestService(&recordingDetector{})
	_, err := svc.Run(ctx, 1, 10)
	require.ErrorIs(t, err, ErrNoOperator)

	_, _, err = svc.Select(ctx, 1, 10, "harris", nil)
	require.NoError(t, err)
	_, err = svc.Run(ctx, 1, 10)
	require.ErrorIs(t, err, ErrNoImage)

	failing := &recordingDetector{failOn: entity.ErrDecode}
	svc, _ = newTestService(failing)
	_, _, err = svc.LoadImage(ctx, 1, 10, testPNG(t, 8, 8))
	require.NoError(t, err)
	_, _, err = svc.Select(ctx, 1, 10, "prewitt", nil)
	require.NoError(t, err)
	_, err = svc.Run(ctx, 1, 10)
	require.ErrorIs(t, err, entity.ErrDecode)
}

func TestDetectionService_SelectRejects(t *testing.T) {
	svc, _ := newTestService(&recordingDetector{})
	ctx := context.Background()

	_, _, err := svc.Select(ctx, 1, 10, "blur", nil)
	require.ErrorIs(t, err, entity.ErrUnsupportedOperator)

	_, _, err = svc.Select(ctx, 1, 10, "harris", entity.Controls{entity.ControlQuality: 0.6})
	require.ErrorIs(t, err, entity.ErrInvalidParameter)

	user, err := svc.users.Get(ctx, 1, 10)
	require.NoError(t, err)
	require.False(t, user.HasOperator())
}

func TestDetectionService_Process(t *testing.T) {
	det := &recordingDetector{}
	svc, _ := newTestService(det)

	res, err := svc.Process(context.Background(), entity.NewRaster(6, 4, 3), "corners", nil)
	require.NoError(t, err)
	require.Equal(t, entity.OperatorGoodFeatures, res.Operator)
	require.Equal(t, entity.DefaultGoodFeaturesParams, det.calls[0])

	_, err = svc.Process(context.Background(), entity.NewRaster(6, 4, 3), "nope", nil)
	require.ErrorIs(t, err, entity.ErrUnsupportedOperator)
}

func TestDetectionService_NoDetector(t *testing.T) {
	users := NewUserService(storage.NewMemoryUserRepository())
	svc := NewDetectionService(users, storage.NewMemoryImageRepository(), nil, codec.NewImagingCodec(0), zerolog.Nop())

	_, err := svc.Process(context.Background(), entity.NewRaster(2, 2, 3), "canny", nil)
	require.ErrorIs(t, err, ErrDetectorNotConfigured)
}

func TestDetectionService_Reset(t *testing.T) {
	svc, _ := newTestService(&recordingDetector{})
	ctx := context.Background()

	_, _, err := svc.LoadImage(ctx, 1, 10, testPNG(t, 8, 8))
	require.NoError(t, err)
	_, _, err = svc.Select(ctx, 1, 10, "canny", nil)
	require.NoError(t, err)

	user, err := svc.Reset(ctx, 1, 10)
	require.NoError(t, err)
	require.Equal(t, entity.StateMainMenu, user.State)

	_, _, err = svc.Select(ctx, 1, 10, "canny", nil)
	require.NoError(t, err)
	_, err = svc.Run(ctx, 1, 10)
	require.ErrorIs(t, err, ErrNoImage)
}
