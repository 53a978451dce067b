package preprocess

import (
	"fmt"
	"image"

	"github.com/getcharzp/go-saliency"
	"github.com/getcharzp/go-saliency/internal/imgio"
	"github.com/up-zero/gotool/imageutil"
)

// InputSize 模型输入的边长
const InputSize = 256

// Channels 输入通道数 (RGB)
const Channels = 3

// 均值和方差常量 (ImageNet), 必须与模型训练时一致
const (
	MeanR = 0.485
	MeanG = 0.456
	MeanB = 0.406

	StdR = 0.229
	StdG = 0.224
	StdB = 0.225
)

var (
	mean = [Channels]float32{MeanR, MeanG, MeanB}
	std  = [Channels]float32{StdR, StdG, StdB}
)

// Input 模型输入
type Input struct {
	// Data CHW 排列, 长度 3*256*256, 已按通道归一化
	Data []float32
	// OrigSize 原图宽高, 后续所有输出的目标尺寸
	OrigSize image.Point
}

// Shape 返回张量形状 [1, 3, 256, 256]
func (in *Input) Shape() []int64 {
	return []int64{1, Channels, InputSize, InputSize}
}

// Load 读取图片并生成模型输入
//
// # Params:
//
//	path: 图片路径
func Load(path string) (*Input, error) {
	img, err := imgio.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", saliency.ErrLoad, err)
	}
	return FromImage(img), nil
}

// FromImage 由内存中的图片生成模型输入
func FromImage(img image.Image) *Input {
	rgb := imgio.ToRGB(img)
	// 尺寸在缩放前记录
	origSize := image.Pt(rgb.Bounds().Dx(), rgb.Bounds().Dy())

	var resized image.Image = imageutil.Resize(rgb, InputSize, InputSize)
	return &Input{
		Data:     normalize(resized),
		OrigSize: origSize,
	}
}

// normalize 转换为 CHW 并归一化
func normalize(src image.Image) []float32 {
	bounds := src.Bounds()
	plane := InputSize * InputSize
	data := make([]float32, Channels*plane)

	for y := 0; y < InputSize; y++ {
		for x := 0; x < InputSize; x++ {
			r, g, b, _ := src.At(bounds.Min.X+x, bounds.Min.Y+y).RGBA()
			// RGBA returns 0-65535
			idx := y*InputSize + x
			data[idx] = (float32(r)/65535.0 - MeanR) / StdR
			data[plane+idx] = (float32(g)/65535.0 - MeanG) / StdG
			data[2*plane+idx] = (float32(b)/65535.0 - MeanB) / StdB
		}
	}
	return data
}

// Denormalize 将归一化后的值还原到 [0,1]
//
// # Params:
//
//	v: 归一化后的值
//	channel: 通道 0=R 1=G 2=B
func Denormalize(v float32, channel int) float32 {
	return v*std[channel] + mean[channel]
}
