package settings

// Known setting names. Values are stored as text; typed accessors on the
// service parse them.
const (
	KeyAppName                = "app_name"
	KeyAutoCheckoutEnabled    = "auto_checkout_enabled"
	KeyAutoCheckoutHours      = "auto_checkout_hours"
	KeyAutoCheckoutTime       = "auto_checkout_time"
	KeyMasterCheckinRequired  = "master_checkin_required"
	KeyLocationUpdateInterval = "location_update_interval"
)

// Defaults are seeded once at startup for any key that is absent.
var Defaults = map[string]string{
	KeyAppName:                "Attendance Tracking",
	KeyAutoCheckoutEnabled:    "true",
	KeyAutoCheckoutHours:      "10",
	KeyAutoCheckoutTime:       "20:00",
	KeyMasterCheckinRequired:  "false",
	KeyLocationUpdateInterval: "30",
}

type Setting struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// AttendancePolicy is the operator-tunable auto-checkout configuration as
// read by the sweeper on every tick.
type AttendancePolicy struct {
	AutoCheckoutEnabled   bool
	AutoCheckoutHours     int
	AutoCheckoutTime      string
	MasterCheckinRequired bool
}
