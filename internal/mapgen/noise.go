package mapgen

import (
	"github.com/aquilax/go-perlin"
)

const (
	noiseAlpha   = 2.0 // сглаживание шума
	noiseBeta    = 2.0 // частота шума
	noiseOctaves = int32(3)
)

// noiseField поле шума Перлина со значениями от 0 до 1
type noiseField struct {
	p     *perlin.Perlin
	scale float64
}

func newNoiseField(seed int64, scale float64) noiseField {
	return noiseField{
		p:     perlin.NewPerlin(noiseAlpha, noiseBeta, noiseOctaves, seed),
		scale: scale,
	}
}

// at значение шума в точке карты
func (f noiseField) at(x, y int64) float64 {
	v := f.p.Noise2D(float64(x)*f.scale, float64(y)*f.scale)
	v = (v + 1.0) / 2.0
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	}
	return v
}
