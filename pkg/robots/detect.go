package robots

// Detect classifies one visitor. An empty ip or userAgent means the value is
// absent. When both are absent the result is empty.
//
// A malformed ip does not abort detection: the returned Result still carries
// the User-Agent heuristic and the error wraps ErrInvalidAddress.
func (db *Database) Detect(ip, userAgent string) (Result, error) {
	// Nothing to classify.
	if ip == "" && userAgent == "" {
		return Result{}, nil
	}
	// A request without a User-Agent is suspicious on its own.
	isRobot := userAgent == "" || db.patterns.Match(userAgent)

	var (
		candidates []int
		ipErr      error
	)
	if ip != "" {
		addr, err := ParseAddress(ip)
		if err != nil {
			ipErr = err
		} else {
			candidates = db.ips[addr]
			// Range lookup only once the heuristic suggests automation, so
			// human traffic sharing a robot's network is not attributed to it.
			if isRobot {
				candidates = db.rangeCandidates(candidates, addr)
			}
		}
	}

	var uaCandidates []int
	if userAgent != "" {
		uaCandidates = db.userAgents[HashUserAgent(userAgent)]
	}

	if i, ok := firstCommon(candidates, uaCandidates); ok {
		r := &db.robots[i]
		return Result{
			IsRobot:    true,
			Robot:      r,
			Reputation: r.Reputation,
			URL:        r.URL(db.urlBase),
		}, ipErr
	}
	if isRobot {
		return Result{IsRobot: true}, ipErr
	}
	return Result{}, ipErr
}

// rangeCandidates unites exact with the robots of every range containing addr.
func (db *Database) rangeCandidates(exact []int, addr Address) []int {
	var buf [8]int
	hits := db.tree.query(buf[:0], addr)
	if len(hits) == 0 {
		return exact
	}
	lists := make([][]int, len(hits))
	for i, ri := range hits {
		lists[i] = db.rangeRobots[ri]
	}
	return mergeSorted(exact, lists...)
}
