// Package interp provides the interpolation primitives shared by the delay
// lines, the drive curve lookup and the automation ramps.
//
//   - [Linear]:   2-point linear interpolation between two values
//   - [Between]:  linear interpolation of a value across a time span
//   - [Hermite4]: 4-point cubic Hermite used by fractional delay reads
package interp
