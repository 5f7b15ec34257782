package container

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"edge-lab-bot/internal/infrastructure/codec"
	"edge-lab-bot/internal/infrastructure/storage"
	"edge-lab-bot/internal/infrastructure/vision"
)

func TestNew_WiresServices(t *testing.T) {
	c := New(
		storage.NewMemoryUserRepository(),
		storage.NewMemoryImageRepository(),
		vision.NewGoCVDetector(),
		codec.NewImagingCodec(0),
		zerolog.Nop(),
	)

	require.NotNil(t, c.UserService)
	require.NotNil(t, c.DetectionService)
	require.NotNil(t, c.Resolver)
	require.NotNil(t, c.Codec)
}
