package saliency

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"os"

	"golang.org/x/image/font"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

// TextDrawer 文本绘制工具, 用于在叠加图上标注模式
type TextDrawer struct {
	font     *opentype.Font
	face     font.Face
	fontSize float64
}

// NewTextDrawer 创建文本绘制工具
//
// # Params:
//
//	fontPath: 字体路径
func NewTextDrawer(fontPath string) (*TextDrawer, error) {
	fontBytes, err := os.ReadFile(fontPath)
	if err != nil {
		return nil, fmt.Errorf("打开字体文件失败：%w", err)
	}

	ttFont, err := opentype.Parse(fontBytes)
	if err != nil {
		return nil, fmt.Errorf("解析字体文件失败：%w", err)
	}

	d := &TextDrawer{font: ttFont}
	if err := d.SetSize(16); err != nil {
		return nil, err
	}
	return d, nil
}

// SetSize 动态调整字体大小
//
// # Params:
//
//	fontSize: 字体大小
func (d *TextDrawer) SetSize(fontSize float64) error {
	if fontSize <= 0 {
		return fmt.Errorf("字体大小必须大于 0: %v", fontSize)
	}
	if d.face != nil && d.fontSize == fontSize {
		return nil
	}

	nf, err := opentype.NewFace(d.font, &opentype.FaceOptions{
		Size:    fontSize,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return err
	}

	// 释放旧 Face 内存
	if d.face != nil {
		d.face.Close()
	}
	d.face = nf
	d.fontSize = fontSize
	return nil
}

// DrawText 绘制文本
//
// # Params:
//
//	img: 被绘制的图像
//	text: 绘制的文本
//	x, y: 基线起点坐标
//	c: 绘制的颜色
func (d *TextDrawer) DrawText(img draw.Image, text string, x, y int, c color.Color) {
	fd := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(c),
		Face: d.face,
		Dot:  fixed.Point26_6{X: fixed.I(x), Y: fixed.I(y)},
	}
	fd.DrawString(text)
}

// Caption 在图像左上角绘制带内边距的标注
func (d *TextDrawer) Caption(img draw.Image, text string, c color.Color) {
	pad := int(d.fontSize / 2)
	ascent := d.face.Metrics().Ascent.Ceil()
	b := img.Bounds()
	d.DrawText(img, text, b.Min.X+pad, b.Min.Y+pad+ascent, c)
}

// Close 释放资源
func (d *TextDrawer) Close() {
	if d.face != nil {
		d.face.Close()
		d.face = nil
	}
}
