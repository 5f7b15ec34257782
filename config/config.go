package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

const (
	defaultLogLevel     = "info"
	defaultLogFormat    = "json"
	defaultMaxImageSide = 2048
	// defaultMaxImagePixels площадь исходного изображения, 64 мегапикселя
	defaultMaxImagePixels = 64 << 20
)

type Config struct {
	TelegramToken string
	LogLevel      string
	LogFormat     string
	// MaxImageSide ограничивает длинную сторону изображения после уменьшения вдвое
	MaxImageSide int
	// MaxImagePixels ограничивает ширину×высоту загрузки до декодирования
	MaxImagePixels int64
	// MetricsAddr адрес HTTP-эндпоинта /metrics, пустая строка выключает эндпоинт
	MetricsAddr string
}

func Load() (*Config, error) {
	// Загружаем .env файл (игнорируем ошибку если файла нет)
	_ = godotenv.Load()

	cfg := &Config{
		TelegramToken:  os.Getenv("TELEGRAM_TOKEN"),
		LogLevel:       getEnv("LOG_LEVEL", defaultLogLevel),
		LogFormat:      getEnv("LOG_FORMAT", defaultLogFormat),
		MaxImageSide:   defaultMaxImageSide,
		MaxImagePixels: defaultMaxImagePixels,
		MetricsAddr:    os.Getenv("METRICS_ADDR"),
	}

	if raw := os.Getenv("MAX_IMAGE_SIDE"); raw != "" {
		side, err := strconv.Atoi(raw)
		if err != nil || side <= 0 {
			return nil, fmt.Errorf("MAX_IMAGE_SIDE must be a positive integer, got %q", raw)
		}
		cfg.MaxImageSide = side
	}

	if raw := os.Getenv("MAX_IMAGE_PIXELS"); raw != "" {
		pixels, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || pixels <= 0 {
			return nil, fmt.Errorf("MAX_IMAGE_PIXELS must be a positive integer, got %q", raw)
		}
		cfg.MaxImagePixels = pixels
	}

	return cfg, nil
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
