package app

import (
	"fmt"
	"math"
	"sort"

	"edge-lab-bot/internal/domain/entity"
)

// controlSpec описывает область допустимых значений одного параметра.
type controlSpec struct {
	min, max float64
	integer  bool
	odd      bool
	// exclusiveMin исключает левую границу из области
	exclusiveMin bool
}

var operatorControls = map[entity.Operator]map[string]controlSpec{
	entity.OperatorCanny: {
		entity.ControlLowThreshold:  {min: 0, max: 255, integer: true},
		entity.ControlHighThreshold: {min: 0, max: 255, integer: true},
	},
	entity.OperatorSobel: {
		entity.ControlKernelSize: {min: 3, max: 7, integer: true, odd: true},
	},
	entity.OperatorPrewitt: {
		entity.ControlKernelSize: {min: 3, max: 7, integer: true, odd: true},
	},
	entity.OperatorHarris: {
		entity.ControlQuality: {min: 0.01, max: 0.5},
	},
	entity.OperatorGoodFeatures: {
		entity.ControlMaxCorners:  {min: 1, max: 1000, integer: true},
		entity.ControlQuality:     {min: 0, max: 1, exclusiveMin: true},
		entity.ControlMinDistance: {min: 0, max: 1000},
	},
}

// ControlNames возвращает имена параметров оператора в алфавитном порядке.
func ControlNames(op entity.Operator) []string {
	specs := operatorControls[op]
	names := make([]string, 0, len(specs))
	for name := range specs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ParameterResolver проверяет сырые значения и строит набор параметров оператора.
// Не хранит состояния: одинаковый вход даёт одинаковый результат.
type ParameterResolver struct{}

func NewParameterResolver() *ParameterResolver {
	return &ParameterResolver{}
}

// ResolveNamed разбирает имя оператора и вызывает Resolve.
func (r *ParameterResolver) ResolveNamed(name string, raw entity.Controls) (entity.ParameterSet, error) {
	op, err := entity.ParseOperator(name)
	if err != nil {
		return nil, err
	}
	return r.Resolve(op, raw)
}

// Resolve возвращает набор параметров для op. Отсутствующие значения берутся по умолчанию.
func (r *ParameterResolver) Resolve(op entity.Operator, raw entity.Controls) (entity.ParameterSet, error) {
	specs, ok := operatorControls[op]
	if !ok {
		return nil, fmt.Errorf("%w: %q", entity.ErrUnsupportedOperator, op)
	}

	// Проверяем ключи в стабильном порядке, чтобы ошибка была детерминированной.
	names := make([]string, 0, len(raw))
	for name := range raw {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		spec, known := specs[name]
		if !known {
			return nil, &entity.InvalidParameterError{Operator: op, Control: name, Value: raw[name], Reason: "control is not defined for this operator"}
		}
		if err := spec.check(op, name, raw[name]); err != nil {
			return nil, err
		}
	}

	switch op {
	case entity.OperatorCanny:
		p := entity.DefaultCannyParams
		p.Low = intOr(raw, entity.ControlLowThreshold, p.Low)
		p.High = intOr(raw, entity.ControlHighThreshold, p.High)
		return p, nil

	case entity.OperatorSobel:
		p := entity.DefaultSobelParams
		p.KernelSize = intOr(raw, entity.ControlKernelSize, p.KernelSize)
		return p, nil

	case entity.OperatorPrewitt:
		p := entity.DefaultPrewittParams
		p.KernelSize = intOr(raw, entity.ControlKernelSize, p.KernelSize)
		return p, nil

	case entity.OperatorHarris:
		p := entity.DefaultHarrisParams
		p.Quality = floatOr(raw, entity.ControlQuality, p.Quality)
		return p, nil

	case entity.OperatorGoodFeatures:
		p := entity.DefaultGoodFeaturesParams
		p.MaxCorners = intOr(raw, entity.ControlMaxCorners, p.MaxCorners)
		p.Quality = floatOr(raw, entity.ControlQuality, p.Quality)
		p.MinDistance = floatOr(raw, entity.ControlMinDistance, p.MinDistance)
		return p, nil
	}

	return nil, fmt.Errorf("%w: %q", entity.ErrUnsupportedOperator, op)
}

func (s controlSpec) check(op entity.Operator, name string, v float64) error {
	fail := func(reason string) error {
		return &entity.InvalidParameterError{Operator: op, Control: name, Value: v, Reason: reason}
	}

	if math.IsNaN(v) || math.IsInf(v, 0) {
		return fail("value is not a finite number")
	}
	if v < s.min || v > s.max || (s.exclusiveMin && v == s.min) {
		return fail(fmt.Sprintf("value is out of range [%g, %g]", s.min, s.max))
	}
	if s.integer && v != math.Trunc(v) {
		return fail("value must be an integer")
	}
	if s.odd && int(v)%2 == 0 {
		return fail("value must be odd")
	}
	return nil
}

func intOr(raw entity.Controls, name string, def int) int {
	if v, ok := raw[name]; ok {
		return int(v)
	}
	return def
}

func floatOr(raw entity.Controls, name string, def float64) float64 {
	if v, ok := raw[name]; ok {
		return v
	}
	return def
}
