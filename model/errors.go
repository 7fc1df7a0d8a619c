package model

import (
	"errors"
	"fmt"
)

var (
	ErrUnknownCrop       = errors.New("unknown crop")
	ErrInvalidParameter  = errors.New("invalid parameter")
	ErrNumericDivergence = errors.New("numeric divergence")
)

// 作物不在注册表中
type UnknownCropError struct {
	Name string
}

func (e *UnknownCropError) Error() string {
	return fmt.Sprintf("unknown crop %q", e.Name)
}

func (e *UnknownCropError) Is(target error) bool {
	return target == ErrUnknownCrop
}

// 输入参数非法（非有限值或超出定义域）
type InvalidParameterError struct {
	Param  string
	Value  float64
	Reason string
}

func (e *InvalidParameterError) Error() string {
	return fmt.Sprintf("invalid parameter %s=%v: %s", e.Param, e.Value, e.Reason)
}

func (e *InvalidParameterError) Is(target error) bool {
	return target == ErrInvalidParameter
}

// 显式格式发散，场中出现非有限值或负水分
type NumericDivergenceError struct {
	Step  int
	Node  int
	Field string
	Value float64
}

func (e *NumericDivergenceError) Error() string {
	return fmt.Sprintf("numeric divergence at step %d node %d: %s=%v", e.Step, e.Node, e.Field, e.Value)
}

func (e *NumericDivergenceError) Is(target error) bool {
	return target == ErrNumericDivergence
}
