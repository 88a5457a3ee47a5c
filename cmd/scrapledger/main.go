// scrapledger 废料回收库存分配台账
//
// 用法:
//
//	scrapledger [-config path] <命令> [子命令] [参数]
//
// 配置默认读取./config/config.yaml,可用SCRAPLEDGER_*环境变量覆盖
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/xiebiao/scrapledger/internal/infrastructure/config"
	"github.com/xiebiao/scrapledger/pkg/metrics"
	"github.com/xiebiao/scrapledger/pkg/tracing"
)

func main() {
	os.Exit(run())
}

func run() int {
	configPath := flag.String("config", "", "配置文件路径")
	flag.Usage = func() {
		fmt.Fprintln(os.Stderr, "用法: scrapledger [-config path] <命令> [子命令] [参数]")
		flag.PrintDefaults()
	}
	flag.Parse()

	cfg, err := config.LoadFrom(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "加载配置失败: %v\n", err)
		return 2
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.Metrics.Enabled {
		metrics.InitMetrics()
		defer func() {
			if err := metrics.WriteTextfile(cfg.Metrics.Textfile); err != nil {
				fmt.Fprintf(os.Stderr, "写入指标失败: %v\n", err)
			}
		}()
	}

	if cfg.Tracing.Enabled {
		shutdown, err := tracing.InitTracer(cfg.Tracing.ServiceName, cfg.Tracing.Endpoint)
		if err != nil {
			fmt.Fprintf(os.Stderr, "初始化链路追踪失败: %v\n", err)
			return 2
		}
		defer func() {
			sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = shutdown(sctx)
		}()
	}

	app, cleanup, err := InitializeApp(ctx, cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "初始化失败: %v\n", err)
		return 2
	}
	defer cleanup()

	// 结果已以JSON输出,这里只决定退出码
	if err := app.Run(ctx, flag.Args()); err != nil {
		return 1
	}
	return 0
}
