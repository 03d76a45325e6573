// Package filter enriches structured log events with robot intelligence, the
// way a log pipeline filter would.
//
// A Filter reads the visitor IP and User-Agent from configured event fields,
// asks a Source (the local database or the remote API) and writes projected
// answers back to destination fields:
//
//	f, err := filter.New(filter.Config{
//		IPSource:              "[request][ip]",
//		UserAgentSource:       "[request][user_agent]",
//		RobotDestination:      "robot",
//		ReputationDestination: "reputation",
//	}, filter.NewLocalSource(store))
//
//	stats, err := f.Run(ctx, os.Stdin, os.Stdout)
//
// Address data is limited to value, hostname, country_code and flags; robot
// data to id, name and url. Empty values are never written. Lookup failures
// are logged and the event still passes through.
package filter
