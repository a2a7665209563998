package constants

const (
	MaxURLLength       = 2048
	MaxRequestBodySize = 256 << 10 // 256 KiB
	MaxTitleBodySize   = 1 << 20   // 1 MiB
)
