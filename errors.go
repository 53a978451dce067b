package saliency

import "errors"

// 流水线各阶段的错误类型，使用 errors.Is 判断
var (
	// ErrLoad 输入图片无法读取或解码
	ErrLoad = errors.New("图片加载失败")
	// ErrValidation 条件选择超出范围
	ErrValidation = errors.New("参数校验失败")
	// ErrRender 显著性数据含非有限值，或目标尺寸非法
	ErrRender = errors.New("热力图渲染失败")
	// ErrComposite 原图或热力图缺失、无法读取
	ErrComposite = errors.New("叠加图合成失败")
)
