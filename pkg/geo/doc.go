// Package geo enriches visitor addresses with country and network data from
// MaxMind GeoIP2/GeoLite2 databases.
//
//	r, err := geo.Open("/var/lib/GeoLite2-Country.mmdb", "")
//	if err != nil {
//		return err
//	}
//	defer r.Close()
//
//	code, err := r.CountryCode("203.0.113.5")
package geo
