package models

import (
	"sort"
	"strconv"
)

// AttributeBag holds the geolocation attributes resolved for a single IP.
//
// String fields are absent when empty. Scalars that have a meaningful zero
// value (coordinates, flags, ASN, offsets) are pointers so that "missing"
// and "zero" stay distinguishable.
type AttributeBag struct {
	Country       string
	CountryCode   string
	City          string
	Continent     string
	ContinentCode string
	Region        string
	RegionCode    string
	Latitude      *float64
	Longitude     *float64
	IsEU          *bool
	Postal        string
	CallingCode   string
	Capital       string
	Borders       string
	CountryFlag   string

	// Connection
	ASN    *uint
	Org    string
	ISP    string
	Domain string

	// Timezone
	TimezoneID     string
	TimezoneAbbr   string
	TimezoneIsDST  *bool
	TimezoneOffset *int
	TimezoneUTC    string
	CurrentTime    string
}

type accessor func(b *AttributeBag) (string, bool)

func stringField(get func(b *AttributeBag) string) accessor {
	return func(b *AttributeBag) (string, bool) {
		v := get(b)
		return v, v != ""
	}
}

func floatField(get func(b *AttributeBag) *float64) accessor {
	return func(b *AttributeBag) (string, bool) {
		v := get(b)
		if v == nil {
			return "", false
		}
		return strconv.FormatFloat(*v, 'f', -1, 64), true
	}
}

func boolField(get func(b *AttributeBag) *bool) accessor {
	return func(b *AttributeBag) (string, bool) {
		v := get(b)
		if v == nil {
			return "", false
		}
		return strconv.FormatBool(*v), true
	}
}

// accessors is the attribute allow-list. Every recognized attribute name maps
// to a pure read of the bag; names absent from this map are unknown.
var accessors = map[string]accessor{
	"country":        stringField(func(b *AttributeBag) string { return b.Country }),
	"country_code":   stringField(func(b *AttributeBag) string { return b.CountryCode }),
	"city":           stringField(func(b *AttributeBag) string { return b.City }),
	"continent":      stringField(func(b *AttributeBag) string { return b.Continent }),
	"continent_code": stringField(func(b *AttributeBag) string { return b.ContinentCode }),
	"region":         stringField(func(b *AttributeBag) string { return b.Region }),
	"region_code":    stringField(func(b *AttributeBag) string { return b.RegionCode }),
	"latitude":       floatField(func(b *AttributeBag) *float64 { return b.Latitude }),
	"longitude":      floatField(func(b *AttributeBag) *float64 { return b.Longitude }),
	"is_eu":          boolField(func(b *AttributeBag) *bool { return b.IsEU }),
	"postal":         stringField(func(b *AttributeBag) string { return b.Postal }),
	"calling_code":   stringField(func(b *AttributeBag) string { return b.CallingCode }),
	"capital":        stringField(func(b *AttributeBag) string { return b.Capital }),
	"borders":        stringField(func(b *AttributeBag) string { return b.Borders }),
	"country_flag":   stringField(func(b *AttributeBag) string { return b.CountryFlag }),
	"asn": func(b *AttributeBag) (string, bool) {
		if b.ASN == nil {
			return "", false
		}
		return strconv.FormatUint(uint64(*b.ASN), 10), true
	},
	"org":             stringField(func(b *AttributeBag) string { return b.Org }),
	"isp":             stringField(func(b *AttributeBag) string { return b.ISP }),
	"domain":          stringField(func(b *AttributeBag) string { return b.Domain }),
	"timezone_id":     stringField(func(b *AttributeBag) string { return b.TimezoneID }),
	"timezone_abbr":   stringField(func(b *AttributeBag) string { return b.TimezoneAbbr }),
	"timezone_is_dst": boolField(func(b *AttributeBag) *bool { return b.TimezoneIsDST }),
	"timezone_offset": func(b *AttributeBag) (string, bool) {
		if b.TimezoneOffset == nil {
			return "", false
		}
		return strconv.Itoa(*b.TimezoneOffset), true
	},
	"timezone_utc": stringField(func(b *AttributeBag) string { return b.TimezoneUTC }),
	"current_time": stringField(func(b *AttributeBag) string { return b.CurrentTime }),
}

// IsValidAttribute reports whether name is a recognized attribute.
func IsValidAttribute(name string) bool {
	_, ok := accessors[name]
	return ok
}

// ValidAttributes returns the recognized attribute names in sorted order.
func ValidAttributes() []string {
	names := make([]string, 0, len(accessors))
	for name := range accessors {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Get returns the textual value of attribute and whether it is present.
// Unknown attributes are reported as absent.
func (b *AttributeBag) Get(attribute string) (string, bool) {
	if b == nil {
		return "", false
	}
	get, ok := accessors[attribute]
	if !ok {
		return "", false
	}
	return get(b)
}
