// Package imgio 图片读写的公共工具
package imgio

import (
	"fmt"
	"image"
	"image/color"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"path/filepath"
	"strings"

	"github.com/up-zero/gotool/imageutil"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// Open 读取并解码图片
func Open(path string) (image.Image, error) {
	img, err := imageutil.Open(path)
	if err != nil {
		return nil, fmt.Errorf("读取图片 %s 失败: %w", path, err)
	}
	if img == nil || img.Bounds().Empty() {
		return nil, fmt.Errorf("图片 %s 为空", path)
	}
	return img, nil
}

// OpenRGB 读取图片并转换为不含透明通道的三通道彩色图
func OpenRGB(path string) (*image.RGBA, error) {
	img, err := Open(path)
	if err != nil {
		return nil, err
	}
	return ToRGB(img), nil
}

// ToRGB 丢弃透明通道, 转换为三通道彩色图
//
// 与常见图像库的 "convert RGB" 行为一致: 直接取非预乘颜色, 不与背景混合
func ToRGB(img image.Image) *image.RGBA {
	b := img.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	for y := 0; y < b.Dy(); y++ {
		for x := 0; x < b.Dx(); x++ {
			c := color.NRGBAModel.Convert(img.At(b.Min.X+x, b.Min.Y+y)).(color.NRGBA)
			i := dst.PixOffset(x, y)
			dst.Pix[i+0] = c.R
			dst.Pix[i+1] = c.G
			dst.Pix[i+2] = c.B
			dst.Pix[i+3] = 0xff
		}
	}
	return dst
}

// SavePNG 以 PNG 格式保存图片, 自动创建父目录
func SavePNG(path string, img image.Image) error {
	if ext := strings.ToLower(filepath.Ext(path)); ext != ".png" {
		return fmt.Errorf("保存 %s 失败: 仅支持 .png, 得到 %q", path, ext)
	}
	if err := imageutil.Save(path, img, 100); err != nil {
		return fmt.Errorf("保存图片 %s 失败: %w", path, err)
	}
	return nil
}
