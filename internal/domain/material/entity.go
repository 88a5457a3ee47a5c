package material

import (
	"strings"
	"time"
)

// Unit 计量单位
type Unit string

const (
	UnitKilogram Unit = "kg"
	UnitTon      Unit = "ton"
	UnitPiece    Unit = "pcs"
)

// Valid 是否为支持的计量单位
func (u Unit) Valid() bool {
	switch u {
	case UnitKilogram, UnitTon, UnitPiece:
		return true
	}
	return false
}

// Material 物料(废料品类)实体
type Material struct {
	ID        uint
	Name      string // 物料名称,唯一
	Unit      Unit   // 计量单位
	Class     string // 分类(可选),如"有色金属"
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewMaterial 创建物料(工厂方法),名称去除首尾空格,单位缺省为kg
func NewMaterial(name string, unit Unit, class string) (*Material, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrInvalidName
	}
	if unit == "" {
		unit = UnitKilogram
	}
	if !unit.Valid() {
		return nil, ErrInvalidUnit
	}

	now := time.Now()
	return &Material{
		Name:      name,
		Unit:      unit,
		Class:     strings.TrimSpace(class),
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}
