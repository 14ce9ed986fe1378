// Package scoring turns one site's environmental snapshot into a dive
// suitability score.
//
// Scoring is a pure function of its Input. Two safety gates are checked
// first: an active water-quality advisory, and a measured wave height above
// the site's safe threshold. Either one forces a total of 0, grade F.
//
// When the gates pass, five component scores in [0,100] are combined with
// fixed weights:
//
//	wave power   0.35  from the Wave Power Index, height² × period
//	wind         0.25  speed, adjusted for offshore/onshore direction
//	visibility   0.20  worst of rainfall and stream discharge
//	tide         0.10  site tide preference vs current phase
//	time of day  0.10  early morning favoured
//
// The total maps to a letter grade (A ≥ 85, B ≥ 70, C ≥ 55, D ≥ 40, else F),
// and a site is diveable at 40 or above. High surf warnings and advisories
// are reported as warnings only.
package scoring
