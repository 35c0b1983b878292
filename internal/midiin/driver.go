//go:build !headless

package midiin

import (
	// Registers the RtMidi driver with gomidi.
	_ "gitlab.com/gomidi/midi/v2/drivers/rtmididrv"
)
