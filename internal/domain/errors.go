package domain

import "errors"

var (
	// 名称查找未命中
	ErrNotFound = errors.New("not found")
	// 名称唯一约束冲突
	ErrConflict = errors.New("already exists")
	// 非 owner 的修改
	ErrForbidden = errors.New("forbidden")
	// state 不匹配、换 token 失败、token 校验失败
	ErrUnauthorized = errors.New("unauthorized")
	// 未登录状态下退出
	ErrNotConnected = errors.New("current user not connected")
	ErrInvalidInput = errors.New("invalid input")
)
