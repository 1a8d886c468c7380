package utils

// Version 构建时通过 -ldflags "-X github.com/user/moviebot/internal/utils.Version=..." 注入
var Version = "dev"
