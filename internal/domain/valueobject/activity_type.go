package valueobject

// ActivityType is the sport type reported by Strava for an activity
type ActivityType string

const (
	Ride        ActivityType = "Ride"
	Run         ActivityType = "Run"
	Walk        ActivityType = "Walk"
	Hike        ActivityType = "Hike"
	Swim        ActivityType = "Swim"
	VirtualRide ActivityType = "VirtualRide"
	VirtualRun  ActivityType = "VirtualRun"
)

const defaultIcon = "fa-map-marker"

var activityIcons = map[ActivityType]string{
	Ride:        "fa-bicycle",
	VirtualRide: "fa-bicycle",
	Run:         "fa-smile-o",
	VirtualRun:  "fa-smile-o",
	Walk:        "fa-blind",
	Hike:        "fa-blind",
	Swim:        "fa-tint",
}

// Icon возвращает Font Awesome класс для списка активностей
func (t ActivityType) Icon() string {
	if icon, ok := activityIcons[t]; ok {
		return icon
	}
	return defaultIcon
}

// String возвращает строковое представление типа
func (t ActivityType) String() string {
	return string(t)
}
