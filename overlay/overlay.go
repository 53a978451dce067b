package overlay

import (
	"fmt"
	"image"
	"math"

	"github.com/getcharzp/go-saliency"
	"github.com/getcharzp/go-saliency/colormap"
	"github.com/getcharzp/go-saliency/internal/imgio"
	"golang.org/x/image/draw"
)

// 叠加权重: out = OriginalWeight*原图 + HeatmapWeight*jet热力图 + Gamma
const (
	OriginalWeight = 1.0
	HeatmapWeight  = 0.8
	Gamma          = 0.0
)

// Encoding 热力图文件的编码, 必须与渲染器写出时一致
const Encoding = colormap.DefaultEncoding

// Composite 将热力图以 jet 颜色叠加到原图上
//
// 热力图先按 Encoding 还原为灰度, 再用双线性插值缩放到原图尺寸 (即使尺寸已一致),
// 之后着色并按固定权重混合, 结果按 8 位饱和截断
//
// # Params:
//
//	original: 原图
//	heat: 渲染器输出的热力图
func Composite(original, heat image.Image) (*image.RGBA, error) {
	if original == nil || original.Bounds().Empty() {
		return nil, fmt.Errorf("%w: 原图为空", saliency.ErrComposite)
	}
	if heat == nil || heat.Bounds().Empty() {
		return nil, fmt.Errorf("%w: 热力图为空", saliency.ErrComposite)
	}

	orig := imgio.ToRGB(original)
	w, h := orig.Bounds().Dx(), orig.Bounds().Dy()

	gray := Encoding.Gray(heat)
	resized := image.NewGray(image.Rect(0, 0, w, h))
	draw.BiLinear.Scale(resized, resized.Bounds(), gray, gray.Bounds(), draw.Src, nil)

	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			j := colormap.Jet.Index(resized.GrayAt(x, y).Y)
			i := orig.PixOffset(x, y)
			dst.Pix[i+0] = Blend(orig.Pix[i+0], j.R)
			dst.Pix[i+1] = Blend(orig.Pix[i+1], j.G)
			dst.Pix[i+2] = Blend(orig.Pix[i+2], j.B)
			dst.Pix[i+3] = 0xff
		}
	}
	return dst, nil
}

// Blend 单通道加权混合, 四舍五入后饱和到 [0,255], 不回绕
func Blend(orig, heat uint8) uint8 {
	v := math.Round(OriginalWeight*float64(orig) + HeatmapWeight*float64(heat) + Gamma)
	switch {
	case v >= 255:
		return 255
	case v <= 0:
		return 0
	default:
		return uint8(v)
	}
}

// CompositePaths 读取原图与热力图文件并合成
func CompositePaths(originalPath, heatmapPath string) (*image.RGBA, error) {
	original, err := imgio.Open(originalPath)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", saliency.ErrComposite, err)
	}
	heat, err := imgio.Open(heatmapPath)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", saliency.ErrComposite, err)
	}
	return Composite(original, heat)
}

// CompositeFile 合成叠加图并保存为 PNG
//
// # Params:
//
//	originalPath: 原图路径
//	heatmapPath: 热力图路径
//	outputPath: 输出路径
func CompositeFile(originalPath, heatmapPath, outputPath string) error {
	img, err := CompositePaths(originalPath, heatmapPath)
	if err != nil {
		return err
	}
	if err := imgio.SavePNG(outputPath, img); err != nil {
		return fmt.Errorf("%w: %w", saliency.ErrComposite, err)
	}
	return nil
}
