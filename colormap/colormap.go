// Package colormap 标量到颜色的映射 (hot / jet)
package colormap

import (
	"image/color"
	"math"
	"sort"

	"github.com/lucasb-eyer/go-colorful"
)

// Size 查找表长度
const Size = 256

// Segment 单通道分段线性锚点, X 为输入位置, Y 为通道值, 均在 [0,1]
type Segment struct {
	X, Y float64
}

type stop struct {
	x float64
	c colorful.Color
}

// Colormap 256 级查找表形式的颜色映射
type Colormap struct {
	name string
	lut  [Size]color.RGBA
}

// NewSegmented 由三个通道的分段线性数据创建颜色映射
//
// # Params:
//
//	name: 名称
//	red, green, blue: 各通道锚点, 需按 X 升序, 首尾分别为 0 和 1
func NewSegmented(name string, red, green, blue []Segment) *Colormap {
	stops := buildStops(red, green, blue)
	cm := &Colormap{name: name}

	k := 0
	for i := 0; i < Size; i++ {
		x := float64(i) / (Size - 1)
		for k < len(stops)-2 && x > stops[k+1].x {
			k++
		}
		s0, s1 := stops[k], stops[k+1]
		t := 0.0
		if s1.x > s0.x {
			t = (x - s0.x) / (s1.x - s0.x)
		}
		c := s0.c.BlendRgb(s1.c, t).Clamped()
		// 按字节截断, 与绘图库的 bytes 输出一致
		cm.lut[i] = color.RGBA{R: toByte(c.R), G: toByte(c.G), B: toByte(c.B), A: 0xff}
	}
	return cm
}

// buildStops 合并三个通道的锚点位置, 任意相邻两个 stop 之间每个通道都是线性的
func buildStops(red, green, blue []Segment) []stop {
	seen := make(map[float64]bool)
	var xs []float64
	for _, ch := range [][]Segment{red, green, blue} {
		for _, s := range ch {
			if !seen[s.X] {
				seen[s.X] = true
				xs = append(xs, s.X)
			}
		}
	}
	sort.Float64s(xs)

	stops := make([]stop, len(xs))
	for i, x := range xs {
		stops[i] = stop{
			x: x,
			c: colorful.Color{R: interp(red, x), G: interp(green, x), B: interp(blue, x)},
		}
	}
	return stops
}

// interp 在单通道锚点间线性插值
func interp(segs []Segment, x float64) float64 {
	if x <= segs[0].X {
		return segs[0].Y
	}
	for i := 1; i < len(segs); i++ {
		if x <= segs[i].X {
			a, b := segs[i-1], segs[i]
			if b.X == a.X {
				return b.Y
			}
			return a.Y + (b.Y-a.Y)*(x-a.X)/(b.X-a.X)
		}
	}
	return segs[len(segs)-1].Y
}

func toByte(v float64) uint8 {
	return uint8(math.Min(v*255, 255))
}

// Name 颜色映射名称
func (cm *Colormap) Name() string {
	return cm.name
}

// Index 按 8 位灰度值查表
func (cm *Colormap) Index(v uint8) color.RGBA {
	return cm.lut[v]
}

// At 将 [0,1] 内的值映射为颜色, 超出范围的值截断到两端
func (cm *Colormap) At(t float64) color.RGBA {
	i := int(t * Size)
	if t < 0 || i < 0 {
		i = 0
	}
	if i >= Size {
		i = Size - 1
	}
	return cm.lut[i]
}

// Hot 黑 → 红 → 黄 → 白
var Hot = NewSegmented("hot",
	[]Segment{{0, 0.0416}, {0.365079, 1}, {1, 1}},
	[]Segment{{0, 0}, {0.365079, 0}, {0.746032, 1}, {1, 1}},
	[]Segment{{0, 0}, {0.746032, 0}, {1, 1}},
)

// Jet 蓝 → 青 → 黄 → 红
//
// 采用分段线性 jet, 与 OpenCV COLORMAP_JET 的查找表并非逐字节相同:
// 两端为 (0,0,127) 与 (127,0,0), OpenCV 为 128, 中间断点也略有差异
var Jet = NewSegmented("jet",
	[]Segment{{0, 0}, {0.35, 0}, {0.66, 1}, {0.89, 1}, {1, 0.5}},
	[]Segment{{0, 0}, {0.125, 0}, {0.375, 1}, {0.64, 1}, {0.91, 0}, {1, 0}},
	[]Segment{{0, 0.5}, {0.11, 1}, {0.34, 1}, {0.65, 0}, {1, 0}},
)
