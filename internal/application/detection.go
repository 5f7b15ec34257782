package app

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"edge-lab-bot/internal/domain/entity"
	"edge-lab-bot/internal/domain/port"
)

var (
	ErrDetectorNotConfigured = errors.New("detector is not configured")
	ErrNoImage               = errors.New("no image uploaded")
	ErrNoOperator            = errors.New("operator is not selected")
)

// DetectionOutput содержит результат оператора и картинку «оригинал | результат».
type DetectionOutput struct {
	Params     entity.ParameterSet
	Result     *entity.DetectionResult
	Comparison []byte
}

// DetectionService связывает загрузки пользователя, резолвер параметров и конвейер.
type DetectionService struct {
	users    *UserService
	images   port.ImageRepository
	resolver *ParameterResolver
	detector port.EdgeDetector
	codec    port.ImageCodec
	log      zerolog.Logger

	mu    sync.Mutex
	locks map[int64]*sync.Mutex
}

// NewDetectionService создаёт сервис обработки изображений.
func NewDetectionService(users *UserService, images port.ImageRepository, detector port.EdgeDetector, codec port.ImageCodec, log zerolog.Logger) *DetectionService {
	return &DetectionService{
		users:    users,
		images:   images,
		resolver: NewParameterResolver(),
		detector: detector,
		codec:    codec,
		log:      log.With().Str("component", "detection").Logger(),
		locks:    make(map[int64]*sync.Mutex),
	}
}

// LoadImage декодирует загрузку и делает её текущим изображением пользователя.
// Предыдущее изображение заменяется целиком.
func (s *DetectionService) LoadImage(ctx context.Context, userID, chatID int64, data []byte) (*entity.User, *entity.Raster, error) {
	if s.codec == nil {
		return nil, nil, errors.New("codec is not configured")
	}

	img, err := s.codec.Decode(data)
	if err != nil {
		return nil, nil, err
	}

	if err := s.images.Put(ctx, userID, img); err != nil {
		return nil, nil, fmt.Errorf("store image: %w", err)
	}

	user, err := s.users.SetState(ctx, userID, chatID, entity.StateImageLoaded)
	if err != nil {
		return nil, nil, err
	}

	s.log.Debug().
		Int64("user_id", userID).
		Int("bytes", len(data)).
		Int("width", img.Width).
		Int("height", img.Height).
		Msg("image loaded")

	return user, img, nil
}

// Select проверяет параметры и запоминает выбранный оператор.
func (s *DetectionService) Select(ctx context.Context, userID, chatID int64, name string, controls entity.Controls) (*entity.User, entity.ParameterSet, error) {
	params, err := s.resolver.ResolveNamed(name, controls)
	if err != nil {
		return nil, nil, err
	}

	user, err := s.users.Get(ctx, userID, chatID)
	if err != nil {
		return nil, nil, err
	}

	user.Select(params.Operator(), controls)
	if err := s.users.Save(ctx, user); err != nil {
		return nil, nil, err
	}

	return user, params, nil
}

// SetControl меняет один параметр текущего оператора.
func (s *DetectionService) SetControl(ctx context.Context, userID, chatID int64, control string, value float64) (*entity.User, entity.ParameterSet, error) {
	user, err := s.users.Get(ctx, userID, chatID)
	if err != nil {
		return nil, nil, err
	}
	if !user.HasOperator() {
		return nil, nil, ErrNoOperator
	}

	controls := user.Controls.Clone()
	controls[control] = value

	params, err := s.resolver.Resolve(user.Operator, controls)
	if err != nil {
		return nil, nil, err
	}

	user.Select(user.Operator, controls)
	if err := s.users.Save(ctx, user); err != nil {
		return nil, nil, err
	}

	return user, params, nil
}

// Run применяет выбранный оператор к текущему изображению пользователя.
// Запуски одного пользователя не перекрываются.
func (s *DetectionService) Run(ctx context.Context, userID, chatID int64) (*DetectionOutput, error) {
	lock := s.userLock(userID)
	lock.Lock()
	defer lock.Unlock()

	user, err := s.users.Get(ctx, userID, chatID)
	if err != nil {
		return nil, err
	}
	if !user.HasOperator() {
		return nil, ErrNoOperator
	}

	img, ok, err := s.images.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrNoImage
	}

	if _, err := s.users.SetState(ctx, userID, chatID, entity.StateProcessing); err != nil {
		return nil, err
	}
	defer func() {
		if _, err := s.users.SetState(ctx, userID, chatID, entity.StateImageLoaded); err != nil {
			s.log.Error().Err(err).Int64("user_id", userID).Msg("restore user state")
		}
	}()

	params, result, err := s.process(ctx, img, user.Operator, user.Controls)
	if err != nil {
		return nil, err
	}

	comparison, err := s.codec.EncodeComparison(img, result.Output)
	if err != nil {
		return nil, fmt.Errorf("encode comparison: %w", err)
	}

	return &DetectionOutput{Params: params, Result: result, Comparison: comparison}, nil
}

// Reset забывает изображение и оператор пользователя.
func (s *DetectionService) Reset(ctx context.Context, userID, chatID int64) (*entity.User, error) {
	if err := s.images.Delete(ctx, userID); err != nil {
		return nil, err
	}
	return s.users.Cancel(ctx, userID, chatID)
}

// Process применяет оператор name к растру без обращения к состоянию пользователей.
func (s *DetectionService) Process(ctx context.Context, img *entity.Raster, name string, controls entity.Controls) (*entity.DetectionResult, error) {
	op, err := entity.ParseOperator(name)
	if err != nil {
		return nil, err
	}
	_, result, err := s.process(ctx, img, op, controls)
	return result, err
}

func (s *DetectionService) process(ctx context.Context, img *entity.Raster, op entity.Operator, controls entity.Controls) (entity.ParameterSet, *entity.DetectionResult, error) {
	if s.detector == nil {
		return nil, nil, ErrDetectorNotConfigured
	}

	params, err := s.resolver.Resolve(op, controls)
	if err != nil {
		return nil, nil, err
	}

	start := time.Now()
	result, err := s.detector.Detect(ctx, img, op, params)
	if err != nil {
		s.log.Warn().Err(err).Str("operator", string(op)).Msg("detection failed")
		return nil, nil, err
	}

	s.log.Info().
		Str("operator", string(op)).
		Interface("params", params).
		Int("width", img.Width).
		Int("height", img.Height).
		Int("corners", len(result.Corners)).
		Dur("took", time.Since(start)).
		Msg("detection finished")

	return params, result, nil
}

func (s *DetectionService) userLock(userID int64) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()

	lock, ok := s.locks[userID]
	if !ok {
		lock = &sync.Mutex{}
		s.locks[userID] = lock
	}
	return lock
}
