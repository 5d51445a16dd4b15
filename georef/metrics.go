package georef

import "math"

// ReprojectionRMSE computes the root-mean-square pixel residual across
// every track state that has both a camera and a landmark. Observability
// diagnostic only; states without a camera or landmark are skipped.
func ReprojectionRMSE(cameras CameraMap, landmarks LandmarkMap, tracks TrackSet) float64 {
	sum := 0.0
	count := 0
	for _, track := range tracks {
		lm, ok := landmarks[track.ID]
		if !ok {
			continue
		}
		for _, state := range track.States {
			cam, ok := cameras[state.Frame]
			if !ok {
				continue
			}
			u, v, ok := cam.Project(lm.Position)
			if !ok {
				continue
			}
			du := u - state.U
			dv := v - state.V
			sum += du*du + dv*dv
			count++
		}
	}
	if count == 0 {
		return 0
	}
	return math.Sqrt(sum / float64(count))
}
