// internal/models/errors.go
package models

import "errors"

// 契约级错误：输入的契约本身有问题，而不是生成文本有问题
var (
	ErrEmptyEndCondition = errors.New("契约缺少结束条件（end_condition 为空）")
	ErrInvalidWordCount  = errors.New("契约的目标字数必须大于 0")
)
