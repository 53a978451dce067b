package heatmap

import (
	"fmt"
	"image"

	"github.com/disintegration/imaging"
	"github.com/getcharzp/go-saliency"
	"github.com/getcharzp/go-saliency/colormap"
	"github.com/getcharzp/go-saliency/internal/imgio"
)

// Encoding 热力图文件的编码, 合成器读回时使用同一个值
const Encoding = colormap.DefaultEncoding

// Render 将显著性数据渲染为原图尺寸的热力图
//
// 按数据自身的最小/最大值归一化后查 hot 表, 得到原生分辨率的图像 (无边框),
// 再用区域平均插值缩放到 origSize
//
// # Params:
//
//	s: 显著性数据
//	origSize: 原图宽高
func Render(s *SaliencyMap, origSize image.Point) (*image.NRGBA, error) {
	if s == nil {
		return nil, fmt.Errorf("%w: 显著性数据为空", saliency.ErrRender)
	}
	if origSize.X <= 0 || origSize.Y <= 0 {
		return nil, fmt.Errorf("%w: 目标尺寸非法 %dx%d", saliency.ErrRender, origSize.X, origSize.Y)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}

	native := colorize(s, Encoding.Colormap())
	return imaging.Resize(native, origSize.X, origSize.Y, imaging.Box), nil
}

// colorize 原生分辨率着色
func colorize(s *SaliencyMap, cm *colormap.Colormap) *image.NRGBA {
	h, w := s.Dims()
	lo, hi := s.Range()
	span := hi - lo

	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			// 常量数据归一化为 0
			t := 0.0
			if span > 0 {
				t = (s.At(y, x) - lo) / span
			}
			c := cm.At(t)
			i := img.PixOffset(x, y)
			img.Pix[i+0] = c.R
			img.Pix[i+1] = c.G
			img.Pix[i+2] = c.B
			img.Pix[i+3] = 0xff
		}
	}
	return img
}

// WriteFile 渲染热力图并保存为 PNG
//
// # Params:
//
//	s: 显著性数据
//	origSize: 原图宽高
//	outputPath: 输出路径
func WriteFile(s *SaliencyMap, origSize image.Point, outputPath string) error {
	img, err := Render(s, origSize)
	if err != nil {
		return err
	}
	if err := imgio.SavePNG(outputPath, img); err != nil {
		return fmt.Errorf("%w: %w", saliency.ErrRender, err)
	}
	return nil
}
