// Package config 进程级配置：日志初始化和环境变量读取
package config

import (
	"os"

	"github.com/sirupsen/logrus"
)

// InitLogger 初始化logrus全局配置。日志级别由LOG_LEVEL控制，
// APP_LOG_FILE设置时同时写入文件。
func InitLogger() {
	logrus.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
	})

	level, err := logrus.ParseLevel(os.Getenv("LOG_LEVEL"))
	if err != nil {
		level = logrus.InfoLevel
	}
	logrus.SetLevel(level)

	if path := os.Getenv("APP_LOG_FILE"); path != "" {
		file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			logrus.WithError(err).Warn("failed to open log file, using stderr only")
			return
		}
		logrus.SetOutput(file)
	}
}

// DBPath 故事数据库路径
func DBPath() string {
	if path := os.Getenv("STORY_DB_PATH"); path != "" {
		return path
	}
	return "stories.db"
}

// ListenAddr HTTP服务监听地址
func ListenAddr() string {
	if port := os.Getenv("PORT"); port != "" {
		return ":" + port
	}
	return ":8080"
}
