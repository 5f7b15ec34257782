package telegram

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	app "edge-lab-bot/internal/application"
	"edge-lab-bot/internal/domain/entity"
)

// positionalControls порядок позиционных аргументов команды оператора
var positionalControls = map[entity.Operator][]string{
	entity.OperatorCanny:        {entity.ControlLowThreshold, entity.ControlHighThreshold},
	entity.OperatorSobel:        {entity.ControlKernelSize},
	entity.OperatorPrewitt:      {entity.ControlKernelSize},
	entity.OperatorHarris:       {entity.ControlQuality},
	entity.OperatorGoodFeatures: {entity.ControlMaxCorners, entity.ControlQuality, entity.ControlMinDistance},
}

// parseOperatorArgs разбирает аргументы вида "/canny 50 150" или "/canny high_threshold=150".
// Проверку диапазонов выполняет ParameterResolver.
func parseOperatorArgs(op entity.Operator, args string) (entity.Controls, error) {
	fields := strings.Fields(args)
	if len(fields) == 0 {
		return nil, nil
	}

	order := positionalControls[op]
	controls := entity.Controls{}
	pos := 0
	for _, field := range fields {
		name, raw, named := strings.Cut(field, "=")
		if !named {
			if pos >= len(order) {
				return nil, fmt.Errorf("слишком много аргументов, ожидается не больше %d", len(order))
			}
			name, raw = order[pos], field
			pos++
		}

		v, err := parseNumber(raw)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		controls[name] = v
	}

	return controls, nil
}

// parseSetArgs разбирает "/set <параметр> <значение>".
func parseSetArgs(args string) (string, float64, error) {
	fields := strings.Fields(args)
	if len(fields) == 1 {
		if name, raw, ok := strings.Cut(fields[0], "="); ok {
			fields = []string{name, raw}
		}
	}
	if len(fields) != 2 {
		return "", 0, errors.New("использование: /set <параметр> <значение>")
	}

	v, err := parseNumber(fields[1])
	if err != nil {
		return "", 0, fmt.Errorf("%s: %w", fields[0], err)
	}
	return fields[0], v, nil
}

func parseNumber(raw string) (float64, error) {
	v, err := strconv.ParseFloat(strings.ReplaceAll(raw, ",", "."), 64)
	if err != nil {
		return 0, fmt.Errorf("%q не число", raw)
	}
	return v, nil
}

// describeParams печатает параметры в виде "name=value".
func describeParams(p entity.ParameterSet) string {
	switch v := p.(type) {
	case entity.CannyParams:
		return fmt.Sprintf("%s=%d %s=%d", entity.ControlLowThreshold, v.Low, entity.ControlHighThreshold, v.High)
	case entity.SobelParams:
		return fmt.Sprintf("%s=%d", entity.ControlKernelSize, v.KernelSize)
	case entity.PrewittParams:
		return fmt.Sprintf("%s=%d", entity.ControlKernelSize, v.KernelSize)
	case entity.HarrisParams:
		return fmt.Sprintf("%s=%g", entity.ControlQuality, v.Quality)
	case entity.GoodFeaturesParams:
		return fmt.Sprintf("%s=%d %s=%g %s=%g",
			entity.ControlMaxCorners, v.MaxCorners,
			entity.ControlQuality, v.Quality,
			entity.ControlMinDistance, v.MinDistance)
	}
	return ""
}

// caption подпись к сравнению
func caption(out *app.DetectionOutput) string {
	var sb strings.Builder
	sb.WriteString(out.Result.Operator.Title())
	if params := describeParams(out.Params); params != "" {
		sb.WriteString(": ")
		sb.WriteString(params)
	}

	switch out.Result.Operator {
	case entity.OperatorPrewitt:
		sb.WriteString("\nℹ️ Ядро Прюитт всегда 3×3, kernel_size не влияет на результат.")
		sb.WriteString("\nВидны только перепады от тёмного к светлому слева направо, обратные обрезаются до нуля.")
	case entity.OperatorHarris:
		fmt.Fprintf(&sb, "\nОтмечено пикселей: %d", out.Result.MarkedPixels)
	case entity.OperatorGoodFeatures:
		fmt.Fprintf(&sb, "\nНайдено углов: %d", len(out.Result.Corners))
	}
	return sb.String()
}

// operatorsHelp список операторов с параметрами и значениями по умолчанию
func operatorsHelp(resolver *app.ParameterResolver) string {
	var sb strings.Builder
	sb.WriteString("🔧 Операторы и параметры по умолчанию:\n")
	for _, op := range entity.Operators() {
		defaults, err := resolver.Resolve(op, nil)
		if err != nil {
			continue
		}
		fmt.Fprintf(&sb, "\n/%s — %s\n  параметры: %s\n  по умолчанию: %s",
			commandFor(op), op.Title(), strings.Join(app.ControlNames(op), ", "), describeParams(defaults))
	}
	return sb.String()
}

// controlsHint перечисляет допустимые параметры оператора для сообщения об ошибке
func controlsHint(op entity.Operator) string {
	names := app.ControlNames(op)
	if len(names) == 0 {
		return ""
	}
	return fmt.Sprintf("\nПараметры %s: %s", op, strings.Join(names, ", "))
}

func commandFor(op entity.Operator) string {
	for cmd, o := range operatorCommands {
		if o == op {
			return cmd
		}
	}
	return string(op)
}
