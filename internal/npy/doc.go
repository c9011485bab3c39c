// Package npy loads NumPy .npy array files into row-major float32 matrices.
//
// Trajectories carry their end-effector poses and action vectors in this
// format. Both <f4 and <f8 payloads are accepted; values are cast to
// float32 on load to match the declared dataset schema. Row width is taken
// from the file header and is not validated against the schema here.
package npy
