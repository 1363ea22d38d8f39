package indicators

// VolumeRatioWindow is the trailing window used for the average-volume
// baseline.
const VolumeRatioWindow = 20

// VolumeRatio compares the latest volume against its trailing average.
// It returns 1.0 when the series is shorter than the window or the
// average is zero, treating missing history as neutral participation.
func VolumeRatio(volumes []float64) float64 {
	if len(volumes) < VolumeRatioWindow {
		return 1.0
	}

	avg := mean(volumes[len(volumes)-VolumeRatioWindow:])
	if avg <= 0 {
		return 1.0
	}
	return volumes[len(volumes)-1] / avg
}
