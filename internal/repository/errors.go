package repository

import "errors"

var (
	ErrNotFound = errors.New("not found")
	// 条件付きUPDATEの前提が成立しなかった（先に他のアクターが動かした）
	ErrConflict = errors.New("conflict")
)
