package sum

import "github.com/getcharzp/go-saliency"

// Config 引擎的初始化参数
type Config struct {
	ModelPath          string // ONNX 模型路径
	OnnxRuntimeLibPath string // ONNX Runtime 动态库路径

	// 模型输入输出名称
	ImageInputName     string // 默认 "image", 形状 [1,3,256,256]
	ConditionInputName string // 默认 "condition", 形状 [1,4]
	OutputName         string // 默认 "saliency", 形状 [1,H,W] 或 [H,W]

	// 可选参数
	UseCuda    bool // (可选) 是否启用 CUDA
	NumThreads int  // (可选) ONNX 线程数, 默认由CPU核心数决定
}

// DefaultConfig 默认配置
func DefaultConfig() Config {
	return Config{
		ModelPath:          "./sum_weights/sum.onnx",
		OnnxRuntimeLibPath: saliency.DefaultLibraryPath(),
		ImageInputName:     "image",
		ConditionInputName: "condition",
		OutputName:         "saliency",
	}
}
