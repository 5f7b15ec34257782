package entity

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidParameter значение управляющего параметра вне допустимой области
	ErrInvalidParameter = errors.New("invalid parameter")
	// ErrUnsupportedOperator неизвестный оператор
	ErrUnsupportedOperator = errors.New("unsupported operator")
	// ErrDecode некорректное или пустое изображение
	ErrDecode = errors.New("decode error")
)

// InvalidParameterError описывает отклонённый управляющий параметр.
type InvalidParameterError struct {
	Operator Operator
	Control  string
	Value    float64
	Reason   string
}

func (e *InvalidParameterError) Error() string {
	if e.Control == "" {
		return fmt.Sprintf("%s: %s: %s", ErrInvalidParameter, e.Operator, e.Reason)
	}
	return fmt.Sprintf("%s: %s.%s=%g: %s", ErrInvalidParameter, e.Operator, e.Control, e.Value, e.Reason)
}

func (e *InvalidParameterError) Unwrap() error {
	return ErrInvalidParameter
}
