// Package robots classifies visitors as known automated agents using a locally
// loaded reference database.
//
// A Database is built once from a document listing robot records and heuristic
// patterns. It is immutable afterwards and safe for concurrent use by any number
// of goroutines without locking. Each call to Detect evaluates one visitor (IP
// address plus User-Agent) and returns a Result; nothing is cached between calls
// and no network I/O is performed.
//
// # Matching
//
// Detection combines four lookups, evaluated in a fixed order:
//
//  1. Heuristic: a missing User-Agent, or one matching any pattern, marks the
//     visitor as a robot.
//  2. Exact IP: records declaring the visitor address.
//  3. CIDR: records whose declared ranges contain the address. This lookup only
//     runs when the heuristic already flagged the visitor.
//  4. Exact User-Agent: records declaring the MD5 hash of the User-Agent.
//
// The IP and CIDR candidates are united and intersected with the User-Agent
// candidates. The first surviving record in database file order is the match.
// When nothing survives but the heuristic fired, the result is an anonymous
// robot.
//
// # Usage
//
//	db, err := robots.Load("robots.json", robots.WithLogger(log))
//	if err != nil {
//		// ErrDatabaseLoad or ErrInvalidPattern: abort startup
//	}
//
//	res, err := db.Detect(ip, userAgent)
//	if err != nil {
//		// ErrInvalidAddress: res still carries the User-Agent heuristic
//	}
//	for k, v := range res.Fields() {
//		event[k] = v
//	}
//
// # Reloading
//
// Store holds the current snapshot behind an atomic pointer. Reload builds a new
// Database and swaps it in; readers always see one complete snapshot.
//
//	store := robots.NewStore(db)
//	go store.Watch(ctx, time.Hour, func(ctx context.Context) (*robots.Database, error) {
//		return robots.Load("robots.json")
//	})
//
// # Error Handling
//
// Invalid IP or range entries in the database are dropped with a warning. An
// invalid pattern fails the whole load with ErrInvalidPattern. Missing files and
// malformed documents fail with ErrDatabaseLoad.
package robots
