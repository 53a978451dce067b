package sum

import (
	"fmt"

	"github.com/getcharzp/go-saliency"
	"github.com/getcharzp/go-saliency/condition"
	"github.com/getcharzp/go-saliency/heatmap"
	"github.com/getcharzp/go-saliency/preprocess"
	"github.com/up-zero/gotool/convertutil"
	ort "github.com/yalue/onnxruntime_go"
)

// Engine SUM 显著性模型推理引擎
//
// 会话持有设备状态, 并发调用需由调用方串行化
type Engine struct {
	session *ort.DynamicAdvancedSession
	config  Config
}

// NewEngine 初始化显著性引擎
func NewEngine(cfg Config) (*Engine, error) {
	if cfg.ModelPath == "" {
		return nil, fmt.Errorf("ModelPath 不能为空")
	}

	oc := new(saliency.OnnxConfig)
	if err := convertutil.CopyProperties(cfg, oc); err != nil {
		return nil, fmt.Errorf("复制参数失败: %w", err)
	}
	// 初始化 ONNX
	if err := oc.New(); err != nil {
		return nil, err
	}
	defer oc.Release()

	inputs := []string{cfg.ImageInputName, cfg.ConditionInputName}
	outputs := []string{cfg.OutputName}
	session, err := ort.NewDynamicAdvancedSession(cfg.ModelPath, inputs, outputs, oc.SessionOptions)
	if err != nil {
		return nil, fmt.Errorf("创建 ONNX 会话失败: %w", err)
	}

	return &Engine{
		session: session,
		config:  cfg,
	}, nil
}

// Destroy 释放相关资源
func (e *Engine) Destroy() error {
	if e.session != nil {
		if err := e.session.Destroy(); err != nil {
			return fmt.Errorf("销毁 ONNX 会话失败: %w", err)
		}
		e.session = nil
	}
	return nil
}

// Predict 执行显著性推理
//
// # Params:
//
//	input: 预处理后的图片
//	cond: one-hot 条件向量
func (e *Engine) Predict(input *preprocess.Input, cond condition.Vector) (*heatmap.SaliencyMap, error) {
	if e.session == nil {
		return nil, fmt.Errorf("引擎已销毁")
	}
	shape, err := imageShape(input)
	if err != nil {
		return nil, err
	}

	imageTensor, err := ort.NewTensor(shape, input.Data)
	if err != nil {
		return nil, fmt.Errorf("创建图片 Input Tensor 失败: %w", err)
	}
	defer imageTensor.Destroy()

	condTensor, err := ort.NewTensor(conditionShape.Clone(), cond[:])
	if err != nil {
		return nil, fmt.Errorf("创建条件 Input Tensor 失败: %w", err)
	}
	defer condTensor.Destroy()

	// 输出由 ONNX Runtime 分配
	outputs := []ort.ArbitraryTensor{nil}
	if err := e.session.Run([]ort.ArbitraryTensor{imageTensor, condTensor}, outputs); err != nil {
		return nil, fmt.Errorf("推理失败: %w", err)
	}
	defer outputs[0].Destroy()

	out, ok := outputs[0].(*ort.Tensor[float32])
	if !ok {
		return nil, fmt.Errorf("模型输出类型不是 float32 张量")
	}
	return toSaliencyMap(out.GetData(), out.GetShape())
}

// 条件输入 [1,4]
var conditionShape = ort.NewShape(1, condition.Count)

// imageShape 图片输入 [1,3,256,256], 数据长度必须与形状一致
func imageShape(input *preprocess.Input) (ort.Shape, error) {
	if input == nil {
		return nil, fmt.Errorf("输入为空")
	}
	shape := ort.NewShape(input.Shape()...)
	if int64(len(input.Data)) != shape.FlattenedSize() {
		return nil, fmt.Errorf("输入数据长度 %d 与形状 %v 不符", len(input.Data), shape)
	}
	return shape, nil
}

// toSaliencyMap 模型输出 [1,H,W] 等形状去掉单例维度后转为二维显著性数据
func toSaliencyMap(data []float32, shape ort.Shape) (*heatmap.SaliencyMap, error) {
	return heatmap.NewSaliencyMap(data, shape...)
}
