package robots

// Output field names a host may project from a Result.
const (
	FieldIdentityType     = "identity.type"
	FieldRobotID          = "robot.id"
	FieldRobotName        = "robot.name"
	FieldRobotURL         = "robot.url"
	FieldReputationStatus = "reputation.status"

	// IdentityRobot is the identity.type value of detected robots.
	IdentityRobot = "robot"
)

// Result is the outcome of a single Detect call.
//
// The zero value means no robot was detected. IsRobot without Robot means the
// heuristic fired but no cataloged record matched.
type Result struct {
	IsRobot    bool
	Robot      *Robot
	Reputation Reputation
	URL        string
}

// Matched reports whether a cataloged robot was identified.
func (r Result) Matched() bool {
	return r.Robot != nil
}

// Fields projects the result onto the flat output field allow-list.
// Unset values are omitted, so a negative result yields an empty map.
func (r Result) Fields() map[string]any {
	out := make(map[string]any, 5)
	if !r.IsRobot {
		return out
	}
	out[FieldIdentityType] = IdentityRobot
	if r.Robot != nil {
		out[FieldRobotID] = r.Robot.ID
		if r.Robot.Name != "" {
			out[FieldRobotName] = r.Robot.Name
		}
		if r.URL != "" {
			out[FieldRobotURL] = r.URL
		}
	}
	if r.Reputation != "" {
		out[FieldReputationStatus] = string(r.Reputation)
	}
	return out
}
