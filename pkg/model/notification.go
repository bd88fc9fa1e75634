package model

import "time"

// Kind is the closed set of notification kinds the platform emits.
type Kind string

const (
	KindMessage           Kind = "message"
	KindEventCreated      Kind = "event_created"
	KindListingCreated    Kind = "listing_created"
	KindHousingCreated    Kind = "housing_created"
	KindInterest          Kind = "interest"
	KindJoin              Kind = "join"
	KindAdminAnnouncement Kind = "admin_announcement"
	KindAdminWarning      Kind = "admin_warning"
	KindAdminInfo         Kind = "admin_info"
	KindSystemAlert       Kind = "system_alert"
)

// Kinds lists every known kind, in a stable order.
var Kinds = []Kind{
	KindMessage,
	KindEventCreated,
	KindListingCreated,
	KindHousingCreated,
	KindInterest,
	KindJoin,
	KindAdminAnnouncement,
	KindAdminWarning,
	KindAdminInfo,
	KindSystemAlert,
}

type Notification struct {
	ID        string    `json:"id" bson:"_id,omitempty"`
	UserID    string    `json:"user_id" bson:"user_id"`
	SenderID  string    `json:"sender_id,omitempty" bson:"sender_id,omitempty"`
	Kind      Kind      `json:"type" bson:"type"`
	Title     string    `json:"title" bson:"title"`
	Message   string    `json:"message" bson:"message"`
	Link      string    `json:"link,omitempty" bson:"link,omitempty"`
	Read      bool      `json:"read" bson:"read"`
	CreatedAt time.Time `json:"created_at" bson:"created_at"`
}

// Style carries the display attributes for a notification kind.
type Style struct {
	Icon  string `json:"icon"`
	Color string `json:"color"`
}

// DefaultStyle is returned for any kind missing from the table.
var DefaultStyle = Style{Icon: "bell", Color: "gray"}

var styles = map[Kind]Style{
	KindMessage:           {Icon: "chat", Color: "blue"},
	KindEventCreated:      {Icon: "calendar", Color: "purple"},
	KindListingCreated:    {Icon: "tag", Color: "green"},
	KindHousingCreated:    {Icon: "home", Color: "teal"},
	KindInterest:          {Icon: "heart", Color: "red"},
	KindJoin:              {Icon: "user-plus", Color: "green"},
	KindAdminAnnouncement: {Icon: "megaphone", Color: "orange"},
	KindAdminWarning:      {Icon: "alert-triangle", Color: "yellow"},
	KindAdminInfo:         {Icon: "info", Color: "blue"},
	KindSystemAlert:       {Icon: "alert-octagon", Color: "red"},
}

// StyleFor resolves the display style for a kind, falling back to DefaultStyle.
func StyleFor(k Kind) Style {
	if s, ok := styles[k]; ok {
		return s
	}
	return DefaultStyle
}
