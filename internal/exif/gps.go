package exif

import (
	"math"
)

// GPS IFD tag identifiers
const (
	TagGPSLatitudeRef  uint16 = 0x0001
	TagGPSLatitude     uint16 = 0x0002
	TagGPSLongitudeRef uint16 = 0x0003
	TagGPSLongitude    uint16 = 0x0004
)

// GPSTagSet is the GPS IFD encoding of a coordinate pair
type GPSTagSet struct {
	LatitudeRef  string
	Latitude     [3]Rational
	LongitudeRef string
	Longitude    [3]Rational
}

// EncodeGPS converts decimal degrees into hemisphere references and
// degree/minute/second rationals. Zero latitude or longitude counts as the
// northern or eastern hemisphere.
func EncodeGPS(lat, lng float64) GPSTagSet {
	latRef := "N"
	if lat < 0 {
		latRef = "S"
	}
	lngRef := "E"
	if lng < 0 {
		lngRef = "W"
	}

	return GPSTagSet{
		LatitudeRef:  latRef,
		Latitude:     sexagesimal(lat),
		LongitudeRef: lngRef,
		Longitude:    sexagesimal(lng),
	}
}

func sexagesimal(d float64) [3]Rational {
	d = math.Abs(d)
	return [3]Rational{
		FloorRational(d),
		FloorRational(math.Mod(d*60, 60)),
		FloorRational(math.Mod(d*3600, 60)),
	}
}

// IFD returns the tag set as GPS IFD entries
func (g GPSTagSet) IFD() IFD {
	return IFD{
		TagGPSLatitudeRef:  Text(g.LatitudeRef),
		TagGPSLatitude:     Rationals(g.Latitude[:]),
		TagGPSLongitudeRef: Text(g.LongitudeRef),
		TagGPSLongitude:    Rationals(g.Longitude[:]),
	}
}
