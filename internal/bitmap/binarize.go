package bitmap

// DefaultThreshold is the luminance cutoff used when none is configured.
const DefaultThreshold uint8 = 128

// Binarize classifies every sample of g: cells whose luminance is at least
// threshold become 1, all others 0. It never fails and does not modify g.
func Binarize(g *Gray, threshold uint8) *Binary {
	b := NewBinary(g.Width, g.Height)
	for i, v := range g.Pix[:len(b.Pix)] {
		if v >= threshold {
			b.Pix[i] = 1
		}
	}
	return b
}
