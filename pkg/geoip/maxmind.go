package geoip

import (
	"context"
	"fmt"
	"net"

	"github.com/oschwald/geoip2-golang"

	"github.com/gokaycavdar/go-ipreputation/pkg/models"
)

// MaxMindProvider resolves attributes from local GeoLite2/GeoIP2 databases.
//
// The City database fills location, continent, region, postal and timezone
// attributes. The optional ASN database fills asn and org. Attributes the
// databases do not carry (calling_code, capital, borders, isp, ...) are left
// absent and therefore never match a rule.
type MaxMindProvider struct {
	cityReader *geoip2.Reader
	asnReader  *geoip2.Reader
}

// NewMaxMindProvider opens the .mmdb files. asnDBPath may be empty.
func NewMaxMindProvider(cityDBPath, asnDBPath string) (*MaxMindProvider, error) {
	cityReader, err := geoip2.Open(cityDBPath)
	if err != nil {
		return nil, fmt.Errorf("open city database: %w", err)
	}

	p := &MaxMindProvider{cityReader: cityReader}
	if asnDBPath == "" {
		return p, nil
	}

	asnReader, err := geoip2.Open(asnDBPath)
	if err != nil {
		cityReader.Close()
		return nil, fmt.Errorf("open asn database: %w", err)
	}
	p.asnReader = asnReader
	return p, nil
}

// Close releases the database readers.
func (p *MaxMindProvider) Close() {
	if p.cityReader != nil {
		p.cityReader.Close()
	}
	if p.asnReader != nil {
		p.asnReader.Close()
	}
}

// Resolve looks the IP up in the City database and, when configured, the ASN
// database.
func (p *MaxMindProvider) Resolve(ctx context.Context, ipAddress string) (*models.AttributeBag, error) {
	if err := ctx.Err(); err != nil {
		return nil, newLookupError(ipAddress, err)
	}

	ip := net.ParseIP(ipAddress)
	if ip == nil {
		return nil, newLookupError(ipAddress, fmt.Errorf("invalid ip address"))
	}

	record, err := p.cityReader.City(ip)
	if err != nil {
		return nil, newLookupError(ipAddress, err)
	}

	bag := &models.AttributeBag{
		Country:       record.Country.Names["en"],
		CountryCode:   record.Country.IsoCode,
		City:          record.City.Names["en"],
		Continent:     record.Continent.Names["en"],
		ContinentCode: record.Continent.Code,
		Postal:        record.Postal.Code,
		TimezoneID:    record.Location.TimeZone,
	}
	if len(record.Subdivisions) > 0 {
		bag.Region = record.Subdivisions[0].Names["en"]
		bag.RegionCode = record.Subdivisions[0].IsoCode
	}
	// A record without a country carries no meaningful EU flag or location.
	if record.Country.IsoCode != "" {
		isEU := record.Country.IsInEuropeanUnion
		bag.IsEU = &isEU
	}
	if record.Location.Latitude != 0 || record.Location.Longitude != 0 {
		lat, lon := record.Location.Latitude, record.Location.Longitude
		bag.Latitude = &lat
		bag.Longitude = &lon
	}

	if p.asnReader != nil {
		asnRecord, err := p.asnReader.ASN(ip)
		if err != nil {
			return nil, newLookupError(ipAddress, err)
		}
		if asnRecord.AutonomousSystemNumber != 0 {
			asn := uint(asnRecord.AutonomousSystemNumber)
			bag.ASN = &asn
		}
		bag.Org = asnRecord.AutonomousSystemOrganization
	}

	return bag, nil
}
