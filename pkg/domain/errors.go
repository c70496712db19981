package domain

import "errors"

// エラー種別の番兵値。呼び出し側は errors.Is で判定するのだ。
var (
	ErrNetwork        = errors.New("network error")
	ErrParse          = errors.New("parse error")
	ErrDecode         = errors.New("decode error")
	ErrIO             = errors.New("io error")
	ErrValidation     = errors.New("validation error")
	ErrAlreadyRunning = errors.New("generation already in progress")
)
