// Package pipeline 串联预处理、模型推理、热力图渲染与叠加合成
package pipeline

import (
	"fmt"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/getcharzp/go-saliency"
	"github.com/getcharzp/go-saliency/condition"
	"github.com/getcharzp/go-saliency/heatmap"
	"github.com/getcharzp/go-saliency/internal/imgio"
	"github.com/getcharzp/go-saliency/internal/logger"
	"github.com/getcharzp/go-saliency/overlay"
	"github.com/getcharzp/go-saliency/preprocess"
	"github.com/google/uuid"
)

const (
	heatmapSuffix = "_saliencymap.png"
	overlaySuffix = "_overlay.png"
)

// Model 外部显著性模型
type Model interface {
	Predict(input *preprocess.Input, cond condition.Vector) (*heatmap.SaliencyMap, error)
}

// ModelFunc 函数形式的 Model, 便于测试替身
type ModelFunc func(input *preprocess.Input, cond condition.Vector) (*heatmap.SaliencyMap, error)

func (f ModelFunc) Predict(input *preprocess.Input, cond condition.Vector) (*heatmap.SaliencyMap, error) {
	return f(input, cond)
}

// Options 流水线参数
type Options struct {
	OutputDir   string               // 输出目录, 默认当前目录
	UniqueNames bool                 // 文件名前加随机前缀, 并发请求互不覆盖
	Caption     *saliency.TextDrawer // (可选) 在叠加图上标注模式
	Logger      logger.Logger
}

// Result 一次推理的输出
type Result struct {
	HeatmapPath string
	OverlayPath string
	OrigSize    image.Point
}

// Pipeline 显著性流水线
type Pipeline struct {
	model Model
	opts  Options

	// 模型与字体都不可重入
	mu sync.Mutex
}

// New 创建流水线
//
// # Params:
//
//	model: 模型句柄
//	opts: 参数
func New(model Model, opts Options) *Pipeline {
	if opts.Logger == nil {
		opts.Logger = logger.NewNop()
	}
	return &Pipeline{model: model, opts: opts}
}

// OutputPaths 由输入文件名推导输出路径: {stem}_saliencymap.png, {stem}_overlay.png
//
// # Params:
//
//	imagePath: 输入图片路径
//	outputDir: 输出目录
//	prefix: (可选) 文件名前缀
func OutputPaths(imagePath, outputDir, prefix string) (heatmapPath, overlayPath string) {
	base := filepath.Base(imagePath)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	if prefix != "" {
		stem = prefix + "_" + stem
	}
	return filepath.Join(outputDir, stem+heatmapSuffix), filepath.Join(outputDir, stem+overlaySuffix)
}

// NewPrefix 生成 32 位十六进制随机前缀
func NewPrefix() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}

// Predict 生成热力图与叠加图
//
// # Params:
//
//	imagePath: 输入图片路径
//	cond: 模式
func (p *Pipeline) Predict(imagePath string, cond condition.Condition) (*Result, error) {
	log := p.opts.Logger
	start := time.Now()

	vec, err := cond.OneHot()
	if err != nil {
		return nil, err
	}

	input, err := preprocess.Load(imagePath)
	if err != nil {
		log.Error("Preprocessor", err, map[string]interface{}{"image": imagePath})
		return nil, err
	}
	log.Debug("Preprocessor", "image loaded", map[string]interface{}{
		"image":  imagePath,
		"width":  input.OrigSize.X,
		"height": input.OrigSize.Y,
	})

	sal, err := p.predict(input, vec)
	if err != nil {
		log.Error("Model", err, map[string]interface{}{"condition": int(cond)})
		return nil, err
	}

	prefix := ""
	if p.opts.UniqueNames {
		prefix = NewPrefix()
	}
	heatPath, overlayPath := OutputPaths(imagePath, p.opts.OutputDir, prefix)
	for _, path := range []string{heatPath, overlayPath} {
		if _, err := os.Stat(path); err == nil {
			log.Warning("Pipeline", "output exists and will be overwritten", map[string]interface{}{"output": path})
		}
	}

	if err := heatmap.WriteFile(sal, input.OrigSize, heatPath); err != nil {
		log.Error("Renderer", err, map[string]interface{}{"output": heatPath})
		return nil, err
	}

	if err := p.composite(imagePath, heatPath, overlayPath, cond); err != nil {
		log.Error("Compositor", err, map[string]interface{}{"output": overlayPath})
		// 失败时不返回 Result, 热力图由这里删除
		if rmErr := os.Remove(heatPath); rmErr != nil && !os.IsNotExist(rmErr) {
			log.Warning("Compositor", "failed to remove heatmap", map[string]interface{}{
				"output": heatPath,
				"error":  rmErr.Error(),
			})
		}
		return nil, err
	}

	log.Info("Pipeline", "saliency generated", map[string]interface{}{
		"image":      imagePath,
		"condition":  int(cond),
		"heatmap":    heatPath,
		"overlay":    overlayPath,
		"elapsed_ms": time.Since(start).Milliseconds(),
	})

	return &Result{
		HeatmapPath: heatPath,
		OverlayPath: overlayPath,
		OrigSize:    input.OrigSize,
	}, nil
}

func (p *Pipeline) predict(input *preprocess.Input, vec condition.Vector) (*heatmap.SaliencyMap, error) {
	if p.model == nil {
		return nil, fmt.Errorf("模型未初始化")
	}
	p.mu.Lock()
	defer p.mu.Unlock()

	sal, err := p.model.Predict(input, vec)
	if err != nil {
		return nil, fmt.Errorf("模型推理失败: %w", err)
	}
	if sal == nil {
		return nil, fmt.Errorf("%w: 模型未返回显著性数据", saliency.ErrRender)
	}
	return sal, nil
}

func (p *Pipeline) composite(imagePath, heatPath, overlayPath string, cond condition.Condition) error {
	if p.opts.Caption == nil {
		return overlay.CompositeFile(imagePath, heatPath, overlayPath)
	}

	img, err := overlay.CompositePaths(imagePath, heatPath)
	if err != nil {
		return err
	}
	p.mu.Lock()
	p.opts.Caption.Caption(img, cond.String(), color.White)
	p.mu.Unlock()

	if err := imgio.SavePNG(overlayPath, img); err != nil {
		return fmt.Errorf("%w: %w", saliency.ErrComposite, err)
	}
	return nil
}

// Cleanup 删除结果文件
func (r *Result) Cleanup() error {
	for _, path := range []string{r.HeatmapPath, r.OverlayPath} {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			return err
		}
	}
	return nil
}
