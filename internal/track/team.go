package track

// TeamLabel is the tracker's per-track team guess, derived from jersey
// color. The normalizer maps labels to home/away across the whole set; the
// tracker only distinguishes light from dark.
type TeamLabel string

const (
	TeamUnknown TeamLabel = "unknown"
	TeamLight   TeamLabel = "light"
	TeamDark    TeamLabel = "dark"
)

// brightnessSplit separates dark jerseys from light ones on the mean
// channel value. Empirically tuned, same split the reference detector crops
// settle on.
const brightnessSplit = 100.0

func brightness(rgb []float64) float64 {
	var sum float64
	for _, c := range rgb {
		sum += c
	}
	return sum / float64(len(rgb))
}

func (tr *Track) pushColorSample(rgb []float64, window int) {
	tr.colorSamples = append(tr.colorSamples, brightness(rgb))
	if window > 0 && len(tr.colorSamples) > window {
		tr.colorSamples = tr.colorSamples[len(tr.colorSamples)-window:]
	}
	tr.teamDirty = true
}

// TeamLabel returns the majority vote over the track's bounded color-sample
// window. Recomputed lazily; never part of the association cost.
func (tr *Track) TeamLabel() TeamLabel {
	if !tr.teamDirty {
		return tr.teamLabel
	}
	tr.teamDirty = false
	if len(tr.colorSamples) == 0 {
		tr.teamLabel = TeamUnknown
		return tr.teamLabel
	}
	dark := 0
	for _, b := range tr.colorSamples {
		if b < brightnessSplit {
			dark++
		}
	}
	if dark*2 > len(tr.colorSamples) {
		tr.teamLabel = TeamDark
	} else {
		tr.teamLabel = TeamLight
	}
	return tr.teamLabel
}
