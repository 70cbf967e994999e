package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"clanstat/internal/config"
	"clanstat/internal/console"
	"clanstat/internal/crapi"
	"clanstat/internal/filler"
	"clanstat/internal/grid"
	"clanstat/internal/logging"
	"clanstat/internal/report"
	"clanstat/internal/sheet"
)

var (
	configPath string
	verbose    bool

	cfg    *config.AppConfig
	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "clanstat [command...]",
	Short: "部落統計表管理工具",
	Long: `把皇室戰爭部落資料同步到 xlsx 統計表。

不帶參數時進入互動模式；帶參數時執行單一指令後結束，例如：
  clanstat update racelog
  clanstat show warlog 5`,
	Args:          cobra.ArbitraryArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// 加载配置
		loaded, info, loadErr := config.LoadConfigWithInfo(configPath)
		if loadErr != nil {
			fmt.Fprintf(os.Stderr, "載入設定失敗，使用預設設定: %v\n", loadErr)
			loaded = config.DefaultConfig()
		}
		cfg = loaded

		var err error
		logger, err = logging.New(cfg.Log.Level, verbose)
		if err != nil {
			return err
		}
		logger.Debug("config loaded",
			zap.String("path", info.Path),
			zap.Bool("found", info.Found),
			zap.Bool("legacy", info.Legacy))

		// 首次运行写出默认配置，方便用户修改
		if loadErr == nil && !info.Found && configPath == "" {
			if serr := config.SaveConfig(cfg, info.Path); serr != nil {
				logger.Warn("write default config failed", zap.String("path", info.Path), zap.Error(serr))
			} else {
				fmt.Fprintf(cmd.ErrOrStderr(), "已建立預設設定檔: %s\n", info.Path)
			}
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
	RunE: run,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "設定檔 (預設為程式目錄下的 config.toml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "輸出 debug 日誌")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	creds, err := config.LoadCredentials(cfg.Resolve(cfg.Env.Path))
	if err != nil {
		return err
	}
	client, err := crapi.NewFromConfig(cfg, creds, logger)
	if err != nil {
		return err
	}
	defer client.Close()

	sheetPath := cfg.Resolve(cfg.Sheet.Path)
	wb, err := grid.OpenWorkbook(sheetPath, cfg.Sheet.Index)
	if err != nil {
		logger.Error("open workbook failed", zap.String("path", sheetPath), zap.Error(err))
		return fmt.Errorf("無法開啟統計表 %s，請確認檔案存在且未被其他程式佔用，或於 config.toml 的 [sheet] 修改 path 與 index: %w", sheetPath, err)
	}
	defer wb.Close()

	loc, err := cfg.Location()
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	svc := sheet.NewService(wb, client, sheet.Options{
		Secondary: filler.ParseSecondary(cfg.Race.Secondary),
		Location:  loc,
		Out:       out,
		Logger:    logger,
	})
	printer := report.NewPrinter(client, report.Options{
		Out:      out,
		Location: loc,
		Logger:   logger,
	})
	c := console.New(svc, printer, out, logger)

	if len(args) == 0 {
		return c.Run(cmd.Context(), cmd.InOrStdin())
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	if status := c.Handle(ctx, args); status == console.StatusFail {
		return fmt.Errorf("指令失敗: %v", args)
	}
	return nil
}
