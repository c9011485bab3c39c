// Package frames decodes every frame of a trajectory video into RGB images.
//
// Decoding happens in an external ffmpeg process writing raw rgb24 to a
// pipe; this package slices the byte stream into fixed-size frames using
// the geometry reported by ffprobe. Frames come back in decode order with
// nothing dropped or reordered, and each Frame implements image.Image so it
// can be handed straight to an encoder.
package frames
