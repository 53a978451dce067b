package colormap

import (
	"image"
	"image/color"

	"github.com/up-zero/gotool/imageutil"
)

// HeatmapEncoding 热力图文件的编码方式
//
// 渲染器写出与合成器读回共用同一个编码, 两个阶段不能各自假设通道顺序或灰度权重
type HeatmapEncoding int

const (
	// HotRGB8PNG hot 颜色映射, 8 位 RGB 三通道, PNG 存储;
	// 读回时按 ITU-R 601 亮度 (0.299R + 0.587G + 0.114B) 还原为灰度
	HotRGB8PNG HeatmapEncoding = iota
)

// DefaultEncoding 默认编码
const DefaultEncoding = HotRGB8PNG

func (e HeatmapEncoding) String() string {
	switch e {
	case HotRGB8PNG:
		return "hot-rgb8-png"
	default:
		return "unknown"
	}
}

// Colormap 写出热力图时使用的颜色映射
func (e HeatmapEncoding) Colormap() *Colormap {
	return Hot
}

// Intensity 读回时单个像素的灰度值, 与 Gray 使用同一亮度公式
func (e HeatmapEncoding) Intensity(c color.Color) uint8 {
	return color.GrayModel.Convert(c).(color.Gray).Y
}

// Gray 将热力图转换为灰度图, 坐标从 (0,0) 开始
func (e HeatmapEncoding) Gray(img image.Image) *image.Gray {
	gray := imageutil.Grayscale(img)
	if gray.Rect.Min != (image.Point{}) {
		gray.Rect = gray.Rect.Sub(gray.Rect.Min)
	}
	return gray
}
