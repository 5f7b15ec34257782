package telegram

import (
	"fmt"
	"image"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	app "edge-lab-bot/internal/application"
	"edge-lab-bot/internal/domain/entity"
)

func TestParseOperatorArgs(t *testing.T) {
	tests := []struct {
		name    string
		op      entity.Operator
		args    string
		want    entity.Controls
		wantErr bool
	}{
		{name: "no args", op: entity.OperatorCanny, args: "  ", want: nil},
		{
			name: "positional canny",
			op:   entity.OperatorCanny,
			args: "50 150",
			want: entity.Controls{entity.ControlLowThreshold: 50, entity.ControlHighThreshold: 150},
		},
		{
			name: "named",
			op:   entity.OperatorCanny,
			args: "high_threshold=120",
			want: entity.Controls{entity.ControlHighThreshold: 120},
		},
		{
			name: "corners mixed",
			op:   entity.OperatorGoodFeatures,
			args: "25 min_distance=4",
			want: entity.Controls{entity.ControlMaxCorners: 25, entity.ControlMinDistance: 4},
		},
		{
			name: "decimal comma",
			op:   entity.OperatorHarris,
			args: "0,05",
			want: entity.Controls{entity.ControlQuality: 0.05},
		},
		{name: "too many", op: entity.OperatorSobel, args: "3 5", wantErr: true},
		{name: "not a number", op: entity.OperatorSobel, args: "big", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseOperatorArgs(tt.op, tt.args)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
		})
	}
}

func TestParseSetArgs(t *testing.T) {
	name, v, err := parseSetArgs("kernel_size 5")
	require.NoError(t, err)
	require.Equal(t, entity.ControlKernelSize, name)
	require.Equal(t, 5.0, v)

	name, v, err = parseSetArgs("quality=0.1")
	require.NoError(t, err)
	require.Equal(t, entity.ControlQuality, name)
	require.Equal(t, 0.1, v)

	_, _, err = parseSetArgs("")
	require.Error(t, err)
	_, _, err = parseSetArgs("quality")
	require.Error(t, err)
	_, _, err = parseSetArgs("quality high")
	require.Error(t, err)
}

func TestUserMessage(t *testing.T) {
	ipe := &entity.InvalidParameterError{Operator: entity.OperatorSobel, Control: entity.ControlKernelSize, Value: 4, Reason: "must be odd"}
	msg := userMessage(fmt.Errorf("select: %w", ipe))
	require.Contains(t, msg, "kernel_size=4")
	require.Contains(t, msg, "Параметры sobel: kernel_size")

	unknown := &entity.InvalidParameterError{Operator: entity.OperatorGoodFeatures, Control: "sigma", Value: 1, Reason: "control is not defined for this operator"}
	require.Contains(t, userMessage(unknown), "max_corners, min_distance, quality")

	require.Equal(t, msgDecodeError, userMessage(fmt.Errorf("%w: empty", entity.ErrDecode)))
	require.Equal(t, msgUnknownCommand, userMessage(entity.ErrUnsupportedOperator))
	require.Equal(t, msgNoImage, userMessage(app.ErrNoImage))
	require.Equal(t, msgNoOperator, userMessage(app.ErrNoOperator))
	require.Equal(t, msgProcessingError, userMessage(app.ErrDetectorNotConfigured))
}

func TestCaption(t *testing.T) {
	out := &app.DetectionOutput{
		Params: entity.GoodFeaturesParams{MaxCorners: 10, Quality: 0.01, MinDistance: 10},
		Result: &entity.DetectionResult{
			Operator: entity.OperatorGoodFeatures,
			Corners:  []image.Point{{X: 1, Y: 2}, {X: 3, Y: 4}},
		},
	}
	got := caption(out)
	require.True(t, strings.HasPrefix(got, "Corners (goodFeaturesToTrack): max_corners=10 quality=0.01 min_distance=10"))
	require.Contains(t, got, "Найдено углов: 2")

	prewitt := caption(&app.DetectionOutput{
		Params: entity.PrewittParams{KernelSize: 7},
		Result: &entity.DetectionResult{Operator: entity.OperatorPrewitt},
	})
	require.Contains(t, prewitt, "kernel_size=7")
	require.Contains(t, prewitt, "3×3")
	require.Contains(t, prewitt, "от тёмного к светлому")
}

func TestOperatorsHelp(t *testing.T) {
	help := operatorsHelp(app.NewParameterResolver())
	for cmd := range operatorCommands {
		require.Contains(t, help, "/"+cmd)
	}
	require.Contains(t, help, "low_threshold=100 high_threshold=200")
	require.Contains(t, help, "параметры: high_threshold, low_threshold")
	require.Contains(t, help, "параметры: max_corners, min_distance, quality")
}

func TestControlsHint(t *testing.T) {
	require.Equal(t, "\nПараметры harris: quality", controlsHint(entity.OperatorHarris))
	require.Empty(t, controlsHint(entity.Operator("blur")))
}

func TestTextPrompt(t *testing.T) {
	require.Equal(t, msgAwaitingPhoto, textPrompt(entity.StateAwaitingPhoto))
	require.Equal(t, msgSendPhoto, textPrompt(entity.StateMainMenu))
	require.Equal(t, msgSendPhoto, textPrompt(entity.StateImageLoaded))
}

func TestIsImageMime(t *testing.T) {
	require.True(t, isImageMime("image/PNG"))
	require.True(t, isImageMime("image/webp"))
	require.False(t, isImageMime("application/pdf"))
	require.False(t, isImageMime("image/gif"))
}
