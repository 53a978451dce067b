package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/getcharzp/go-saliency"
	"github.com/getcharzp/go-saliency/condition"
	"github.com/getcharzp/go-saliency/internal/config"
	"github.com/getcharzp/go-saliency/internal/logger"
	"github.com/getcharzp/go-saliency/pipeline"
	"github.com/getcharzp/go-saliency/sum"
)

var _ pipeline.Model = (*sum.Engine)(nil)

func main() {
	configPath := flag.String("config", "saliency.yaml", "YAML 配置文件")
	imagePath := flag.String("image", "", "输入图片路径")
	cond := flag.String("condition", "", "模式: 0-3 或 mouse/eye/ecommerce/ui (默认取配置)")
	outputDir := flag.String("out", "", "输出目录 (默认取配置)")
	unique := flag.Bool("unique", false, "输出文件名加随机前缀")
	fontPath := flag.String("font", "", "(可选) 字体文件, 在叠加图上标注模式")
	logLevel := flag.String("log-level", "", "日志级别 debug/info/warn/error")
	writeConfig := flag.Bool("write-config", false, "将默认配置写入 -config 指定的路径后退出")
	flag.Parse()

	if *writeConfig {
		if err := config.SaveConfig(config.DefaultConfig(), *configPath); err != nil {
			fmt.Fprintf(os.Stderr, "写入配置失败: %v\n", err)
			os.Exit(1)
		}
		fmt.Println(*configPath)
		return
	}

	if *imagePath == "" {
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "加载配置失败: %v\n", err)
		os.Exit(1)
	}
	if *cond != "" {
		cfg.Condition = *cond
	}
	if *outputDir != "" {
		cfg.Output.Dir = *outputDir
	}
	if *unique {
		cfg.Output.UniqueNames = true
	}
	if *fontPath != "" {
		cfg.Output.FontPath = *fontPath
	}
	if *logLevel != "" {
		cfg.Log.Level = *logLevel
	}

	log := logger.NewConsoleLogger(logger.ParseLevel(cfg.Log.Level))
	if err := run(cfg, *imagePath, log); err != nil {
		log.Error("Main", err, map[string]interface{}{"image": *imagePath})
		os.Exit(1)
	}
}

func run(cfg *config.Config, imagePath string, log logger.Logger) error {
	c, err := condition.Parse(cfg.Condition)
	if err != nil {
		return err
	}

	engine, err := sum.NewEngine(cfg.EngineConfig())
	if err != nil {
		return fmt.Errorf("初始化引擎失败: %w", err)
	}
	defer engine.Destroy()
	log.Info("Main", "model loaded", map[string]interface{}{"model": cfg.Model.Path})

	opts := pipeline.Options{
		OutputDir:   cfg.Output.Dir,
		UniqueNames: cfg.Output.UniqueNames,
		Logger:      log,
	}
	if cfg.Output.FontPath != "" {
		drawer, err := saliency.NewTextDrawer(cfg.Output.FontPath)
		if err != nil {
			return err
		}
		defer drawer.Close()
		if err := drawer.SetSize(cfg.Output.FontSize); err != nil {
			return err
		}
		opts.Caption = drawer
	}

	res, err := pipeline.New(engine, opts).Predict(imagePath, c)
	if err != nil {
		return err
	}

	fmt.Println(res.OverlayPath)
	fmt.Println(res.HeatmapPath)
	return nil
}
