package models

import "time"

// HawaiiTime is Hawaii-Aleutian Standard Time. Hawaii does not observe
// daylight saving, so a fixed zone avoids depending on tzdata.
var HawaiiTime = time.FixedZone("HST", -10*60*60)
