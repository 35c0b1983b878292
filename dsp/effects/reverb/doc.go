// Package reverb provides the master reverb processors that voice reverb
// sends feed into.
//
// Included processors:
//   - Echo: a single delay line with feedback, the light "room" of the
//     default engine.
//   - Hall: a modulated eight-line feedback delay network.
//
// Both return only the wet signal; the engine mixes it onto the bus.
package reverb
