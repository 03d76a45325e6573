package geo

import (
	"errors"
	"net/netip"

	"github.com/oschwald/geoip2-golang"
)

// Location is what the address enrichment needs from a GeoIP lookup.
type Location struct {
	CountryCode string
	ASN         uint
	ASOrg       string
}

// Reader resolves addresses against MaxMind databases. The country database
// is required (a GeoLite2 Country or City file); the ASN database is optional.
type Reader struct {
	country *geoip2.Reader
	asn     *geoip2.Reader
}

// Open opens the country database at countryPath and, when asnPath is not
// empty, the ASN database.
func Open(countryPath, asnPath string) (*Reader, error) {
	country, err := geoip2.Open(countryPath)
	if err != nil {
		return nil, errors.Join(ErrOpenDatabase, err)
	}
	r := &Reader{country: country}

	if asnPath != "" {
		asn, err := geoip2.Open(asnPath)
		if err != nil {
			_ = country.Close()
			return nil, errors.Join(ErrOpenDatabase, err)
		}
		r.asn = asn
	}
	return r, nil
}

// FromBytes builds a Reader over an in-memory country database.
func FromBytes(country []byte) (*Reader, error) {
	db, err := geoip2.FromBytes(country)
	if err != nil {
		return nil, errors.Join(ErrOpenDatabase, err)
	}
	return &Reader{country: db}, nil
}

// Lookup returns what is known about ip. Missing records yield zero fields,
// not errors.
func (r *Reader) Lookup(ip string) (Location, error) {
	addr, err := netip.ParseAddr(ip)
	if err != nil {
		return Location{}, errors.Join(ErrInvalidAddress, err)
	}
	netIP := addr.WithZone("").Unmap().AsSlice()

	var loc Location
	rec, err := r.country.Country(netIP)
	if err != nil {
		return Location{}, errors.Join(ErrLookup, err)
	}
	loc.CountryCode = rec.Country.IsoCode

	if r.asn != nil {
		asn, err := r.asn.ASN(netIP)
		if err != nil {
			return loc, errors.Join(ErrLookup, err)
		}
		loc.ASN = asn.AutonomousSystemNumber
		loc.ASOrg = asn.AutonomousSystemOrganization
	}
	return loc, nil
}

// CountryCode returns the ISO country code for ip, or "" when unknown.
func (r *Reader) CountryCode(ip string) (string, error) {
	loc, err := r.Lookup(ip)
	return loc.CountryCode, err
}

func (r *Reader) Close() error {
	var errs []error
	if r.country != nil {
		errs = append(errs, r.country.Close())
	}
	if r.asn != nil {
		errs = append(errs, r.asn.Close())
	}
	return errors.Join(errs...)
}
