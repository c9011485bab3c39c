// Package episode turns one trajectory folder into an ordered sequence of
// step records plus episode metadata.
//
// The assembler invokes the frame decoder and array loaders, enforces that
// frame, state, and action counts agree, and emits one step per timestep
// with first/last flags and the trajectory's language instruction. A count
// mismatch fails the whole trajectory; nothing partial is ever produced.
package episode
