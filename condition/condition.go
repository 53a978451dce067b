package condition

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/getcharzp/go-saliency"
)

// Condition 模型的语义模式
type Condition int

const (
	NaturalMouse Condition = 0 // 自然场景 (SALICON 鼠标轨迹数据)
	NaturalEye   Condition = 1 // 自然场景 (眼动数据)
	ECommerce    Condition = 2 // 电商图片
	UI           Condition = 3 // 用户界面截图
)

// Count 模式数量, 即 one-hot 向量长度
const Count = 4

// Default 默认模式
const Default = ECommerce

// Vector one-hot 条件向量
type Vector [Count]float32

var labels = [Count]string{
	"Natural scenes based on the Salicon dataset (Mouse data)",
	"Natural scenes (Eye-tracking data)",
	"E-Commercial images",
	"User Interface (UI) images",
}

var names = map[string]Condition{
	"mouse":     NaturalMouse,
	"salicon":   NaturalMouse,
	"eye":       NaturalEye,
	"ecommerce": ECommerce,
	"ui":        UI,
}

// Valid 是否为合法模式
func (c Condition) Valid() bool {
	return c >= 0 && c < Count
}

func (c Condition) String() string {
	if !c.Valid() {
		return fmt.Sprintf("Condition(%d)", int(c))
	}
	return labels[c]
}

// OneHot 编码为 one-hot 向量
func (c Condition) OneHot() (Vector, error) {
	var v Vector
	if !c.Valid() {
		return v, fmt.Errorf("%w: condition %d 超出范围 [0,%d]", saliency.ErrValidation, int(c), Count-1)
	}
	v[c] = 1
	return v, nil
}

// Encode 将整数模式编码为 one-hot 向量
func Encode(c int) (Vector, error) {
	return Condition(c).OneHot()
}

// Parse 解析模式, 支持序号 ("2") 或名称 ("ecommerce")
func Parse(s string) (Condition, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if c, ok := names[s]; ok {
		return c, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("%w: 无法解析 condition %q", saliency.ErrValidation, s)
	}
	c := Condition(n)
	if !c.Valid() {
		return 0, fmt.Errorf("%w: condition %d 超出范围 [0,%d]", saliency.ErrValidation, n, Count-1)
	}
	return c, nil
}
