package skola24

import (
	"schedule-backend/lib/restyutil"
	"schedule-backend/lib/telemetry"
)

var tracer = telemetry.Tracer("schedule.lib.scrapers.skola24")
var restyInstrumentOutput restyutil.InstrumentOutput

// SetRestyInstrumentOutput dumps every http exchange of clients created
// afterwards to `out`.
func SetRestyInstrumentOutput(out restyutil.InstrumentOutput) {
	restyInstrumentOutput = out
}
