// SPDX-License-Identifier: EPL-2.0

package utils

// FullScale returns the magnitude that maps to 1.0 for signed PCM of the
// given bit depth. Unknown depths fall back to 16 bit.
func FullScale(bitDepth int) float32 {
	switch bitDepth {
	case 8:
		return 128.0
	case 24:
		return 8388608.0
	case 32:
		return 2147483648.0
	default:
		return 32768.0
	}
}

// PCMToFloat normalises a signed PCM sample into [-1, 1).
func PCMToFloat(v int, bitDepth int) float32 {
	return float32(v) / FullScale(bitDepth)
}

// FloatToPCM clamps x to [-1, 1] and scales it to a signed PCM sample of the
// given bit depth. The positive ceiling is full scale minus one so that 1.0
// never overflows.
func FloatToPCM(x float32, bitDepth int) int {
	if x > 1 {
		x = 1
	} else if x < -1 {
		x = -1
	}

	scale := float64(FullScale(bitDepth))
	if x < 0 {
		return int(float64(x) * scale)
	}

	return int(float64(x) * (scale - 1))
}
