package container

import (
	"github.com/rs/zerolog"

	app "edge-lab-bot/internal/application"
	"edge-lab-bot/internal/domain/port"
)

type Container struct {
	UserService      *app.UserService
	DetectionService *app.DetectionService
	Resolver         *app.ParameterResolver
	Codec            port.ImageCodec
}

func New(userRepo port.UserRepository, images port.ImageRepository, detector port.EdgeDetector, codec port.ImageCodec, log zerolog.Logger) *Container {
	userService := app.NewUserService(userRepo)
	detectionService := app.NewDetectionService(userService, images, detector, codec, log)

	return &Container{
		UserService:      userService,
		DetectionService: detectionService,
		Resolver:         app.NewParameterResolver(),
		Codec:            codec,
	}
}
