package heatmap

import (
	"fmt"
	"math"

	"github.com/getcharzp/go-saliency"
	"gonum.org/v1/gonum/mat"
)

// SaliencyMap 模型输出的二维显著性数据, 分辨率为模型原生输出尺寸
type SaliencyMap struct {
	m *mat.Dense
}

// NewSaliencyMap 由模型输出创建显著性数据
//
// 前导的单例维度会被去掉, 支持 [H,W], [1,H,W], [1,1,H,W]
//
// # Params:
//
//	data: 行优先数据
//	shape: 张量形状
func NewSaliencyMap(data []float32, shape ...int64) (*SaliencyMap, error) {
	for len(shape) > 2 && shape[0] == 1 {
		shape = shape[1:]
	}
	if len(shape) != 2 {
		return nil, fmt.Errorf("%w: 显著性数据形状 %v 无法压缩为二维", saliency.ErrRender, shape)
	}
	h, w := shape[0], shape[1]
	if h <= 0 || w <= 0 {
		return nil, fmt.Errorf("%w: 显著性数据尺寸非法 %dx%d", saliency.ErrRender, w, h)
	}
	if int64(len(data)) != h*w {
		return nil, fmt.Errorf("%w: 数据长度 %d 与形状 %dx%d 不符", saliency.ErrRender, len(data), h, w)
	}

	values := make([]float64, len(data))
	for i, v := range data {
		values[i] = float64(v)
	}
	return &SaliencyMap{m: mat.NewDense(int(h), int(w), values)}, nil
}

// FromDense 直接使用 gonum 矩阵, 不复制
func FromDense(m *mat.Dense) *SaliencyMap {
	return &SaliencyMap{m: m}
}

// Dims 返回行数 (高) 和列数 (宽)
func (s *SaliencyMap) Dims() (h, w int) {
	return s.m.Dims()
}

// At 返回 (row, col) 处的值
func (s *SaliencyMap) At(row, col int) float64 {
	return s.m.At(row, col)
}

// Range 返回数据的最小值和最大值
func (s *SaliencyMap) Range() (lo, hi float64) {
	return mat.Min(s.m), mat.Max(s.m)
}

// Validate 检查数据中是否含 NaN 或 Inf
func (s *SaliencyMap) Validate() error {
	h, w := s.m.Dims()
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			v := s.m.At(y, x)
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return fmt.Errorf("%w: (%d,%d) 处为非有限值 %v", saliency.ErrRender, x, y, v)
			}
		}
	}
	return nil
}
