package model

import "math"

// InfiniteDistance — сентинел "цель не воспринимается" для DistanceTo.
var InfiniteDistance = math.Inf(1)

// Vec2 представляет точку или вектор на плоскости симуляции.
// Value type, передаётся по значению (immutable).
type Vec2 struct {
	X float64
	Y float64
}

// Add возвращает сумму векторов.
func (v Vec2) Add(other Vec2) Vec2 {
	return Vec2{X: v.X + other.X, Y: v.Y + other.Y}
}

// Sub возвращает разность векторов.
func (v Vec2) Sub(other Vec2) Vec2 {
	return Vec2{X: v.X - other.X, Y: v.Y - other.Y}
}

// Scale возвращает вектор, умноженный на скаляр.
func (v Vec2) Scale(s float64) Vec2 {
	return Vec2{X: v.X * s, Y: v.Y * s}
}

// Dot возвращает скалярное произведение.
func (v Vec2) Dot(other Vec2) float64 {
	return v.X*other.X + v.Y*other.Y
}

// Len возвращает длину вектора.
func (v Vec2) Len() float64 {
	return math.Sqrt(v.X*v.X + v.Y*v.Y)
}

// LenSquared возвращает квадрат длины (без sqrt для производительности).
func (v Vec2) LenSquared() float64 {
	return v.X*v.X + v.Y*v.Y
}

// Distance возвращает расстояние до другой точки.
func (v Vec2) Distance(other Vec2) float64 {
	return other.Sub(v).Len()
}

// DistanceSquared возвращает квадрат расстояния до другой точки (без sqrt для производительности).
func (v Vec2) DistanceSquared(other Vec2) float64 {
	return other.Sub(v).LenSquared()
}

// Normalized returns the unit vector pointing the same way.
// The zero vector normalizes to itself.
func (v Vec2) Normalized() Vec2 {
	l := v.Len()
	if l == 0 {
		return Vec2{}
	}
	return Vec2{X: v.X / l, Y: v.Y / l}
}

// Angle returns the vector's direction in radians, in (-π, π].
func (v Vec2) Angle() float64 {
	return math.Atan2(v.Y, v.X)
}

// FromAngle returns the unit vector pointing at the given heading in radians.
func FromAngle(rad float64) Vec2 {
	return Vec2{X: math.Cos(rad), Y: math.Sin(rad)}
}

// AngleDiff returns the signed shortest rotation from heading b to heading a,
// normalized to [-π, π].
func AngleDiff(a, b float64) float64 {
	d := math.Mod(a-b, 2*math.Pi)
	switch {
	case d > math.Pi:
		d -= 2 * math.Pi
	case d < -math.Pi:
		d += 2 * math.Pi
	}
	return d
}
