// Package logger 基于logrus的结构化日志
package logger

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"

	"github.com/xiebiao/scrapledger/internal/infrastructure/config"
	"github.com/xiebiao/scrapledger/pkg/tracing"
)

// New 按配置创建Logger
// format: text | json;output: stdout | stderr | 文件路径(追加写)
func New(cfg config.LogConfig) (*logrus.Logger, error) {
	log := logrus.New()

	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	log.SetLevel(level)

	if cfg.Format == "json" {
		log.SetFormatter(&logrus.JSONFormatter{})
	} else {
		log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	log.SetReportCaller(cfg.EnableCaller)

	out, err := openOutput(cfg.Output)
	if err != nil {
		return nil, err
	}
	log.SetOutput(out)
	return log, nil
}

func openOutput(output string) (io.Writer, error) {
	switch output {
	case "", "stderr":
		return os.Stderr, nil
	case "stdout":
		return os.Stdout, nil
	default:
		f, err := os.OpenFile(output, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o666)
		if err != nil {
			return nil, fmt.Errorf("打开日志文件失败: %w", err)
		}
		return f, nil
	}
}

// Discard 丢弃全部输出的Logger,测试使用
func Discard() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

// LogError 统一的错误日志格式,ctx带有span时附加trace_id
func LogError(ctx context.Context, log logrus.FieldLogger, module, funcName, desc string, data any, err error) {
	fields := logrus.Fields{
		"module":   module,
		"funcName": funcName,
		"context":  desc,
	}
	if data != nil {
		fields["data"] = data
	}
	if traceID := tracing.ExtractTraceID(ctx); traceID != "" {
		fields["trace_id"] = traceID
	}
	log.WithFields(fields).Error(err.Error())
}
