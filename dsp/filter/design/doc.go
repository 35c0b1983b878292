// Package design provides RBJ-style biquad coefficient designers for the
// voice filters: lowpass, highpass, bandpass, notch and the four-stage
// lowpass cascade used as the "ladder" filter.
//
// Lowpass and highpass resonance follows the browser convention where Q is
// given in dB; [QFromDB] converts it to the linear quality factor.
package design
