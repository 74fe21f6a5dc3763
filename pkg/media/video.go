package media

// VideoClip describes a generated video artifact on disk. Decoding is left
// to the playback layer; the pipeline only materializes the file.
type VideoClip struct {
	Path string
	FPS  float64
}

// DefaultFPS is assumed when a container reports no frame rate.
const DefaultFPS = 25.0
