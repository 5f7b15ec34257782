package entity

import (
	"fmt"
	"strings"
)

// Operator идентификатор оператора обработки изображения
type Operator string

const (
	OperatorCanny        Operator = "canny"         // Границы по Canny
	OperatorSobel        Operator = "sobel"         // Горизонтальная производная Собеля
	OperatorPrewitt      Operator = "prewitt"       // Горизонтальный фильтр Прюитт
	OperatorHarris       Operator = "harris"        // Углы по Харрису
	OperatorGoodFeatures Operator = "good_features" // Углы goodFeaturesToTrack
)

// Operators возвращает все поддерживаемые операторы в порядке отображения.
func Operators() []Operator {
	return []Operator{
		OperatorCanny,
		OperatorSobel,
		OperatorPrewitt,
		OperatorHarris,
		OperatorGoodFeatures,
	}
}

var operatorAliases = map[string]Operator{
	"corners":       OperatorGoodFeatures,
	"goodfeatures":  OperatorGoodFeatures,
	"good-features": OperatorGoodFeatures,
}

// ParseOperator разбирает имя оператора. Регистр и пробелы по краям не важны.
func ParseOperator(name string) (Operator, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	op := Operator(key)
	if op.Valid() {
		return op, nil
	}
	if alias, ok := operatorAliases[key]; ok {
		return alias, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedOperator, name)
}

// Valid сообщает, входит ли оператор в поддерживаемый набор.
func (o Operator) Valid() bool {
	switch o {
	case OperatorCanny, OperatorSobel, OperatorPrewitt, OperatorHarris, OperatorGoodFeatures:
		return true
	}
	return false
}

// IsCornerDetector сообщает, что результат является копией входа с маркерами углов.
func (o Operator) IsCornerDetector() bool {
	return o == OperatorHarris || o == OperatorGoodFeatures
}

// Title возвращает человекочитаемое название оператора.
func (o Operator) Title() string {
	switch o {
	case OperatorCanny:
		return "Edges (Canny)"
	case OperatorSobel:
		return "Edges (Sobel)"
	case OperatorPrewitt:
		return "Edges (Prewitt)"
	case OperatorHarris:
		return "Corners (Harris)"
	case OperatorGoodFeatures:
		return "Corners (goodFeaturesToTrack)"
	}
	return string(o)
}
