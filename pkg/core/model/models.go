package model

import "time"

// Skill is one of the tracked volunteer competencies
type Skill string

const (
	SkillCommunication  Skill = "communication"
	SkillTeamwork       Skill = "teamwork"
	SkillAdaptability   Skill = "adaptability"
	SkillOrganizational Skill = "organizationalSkills"
	SkillTimeManagement Skill = "timeManagement"
)

// AllSkills is the fixed skill taxonomy in display order
var AllSkills = []Skill{
	SkillCommunication,
	SkillTeamwork,
	SkillAdaptability,
	SkillOrganizational,
	SkillTimeManagement,
}

// IsValid reports whether s belongs to the fixed skill taxonomy
func (s Skill) IsValid() bool {
	for _, known := range AllSkills {
		if s == known {
			return true
		}
	}
	return false
}

// Role distinguishes volunteers from organizations
type Role int

const (
	RoleVolunteer    Role = 0
	RoleOrganization Role = 1
)

func (r Role) String() string {
	if r == RoleOrganization {
		return "organization"
	}
	return "volunteer"
}

// Event is an opportunity published by an organization
type Event struct {
	ID             string    `bson:"_id" validate:"required"`
	OrganizerEmail string    `bson:"organizerEmail" validate:"required,email"`
	Category       string    `bson:"category" validate:"required"`
	Description    string    `bson:"description"`
	Date           string    `bson:"date" validate:"required,datetime=2006-01-02"`
	Time           string    `bson:"time" validate:"omitempty,datetime=15:04"`
	Location       string    `bson:"location"`
	VolunteerHours float64   `bson:"volunteerHours" validate:"gte=0"`
	Images         []string  `bson:"images" validate:"max=4,dive,uri"`
	CreatedAt      time.Time `bson:"createdAt"`
	UpdatedAt      time.Time `bson:"updatedAt"`
}

// JoinEvent is one volunteer's request to take part in one event.
// Category, Date and Hours are copied from the event at join time and are not re-synced.
type JoinEvent struct {
	ID           string     `bson:"_id"`
	EmailAddress string     `bson:"emailAddress"`
	Category     string     `bson:"category"`
	Date         string     `bson:"date"`
	Hours        float64    `bson:"hours"`
	Status       Status     `bson:"status"`
	EventID      string     `bson:"eventId,omitempty"` // empty on legacy records
	JoinedAt     time.Time  `bson:"joinedAt"`
	DecidedAt    *time.Time `bson:"decidedAt,omitempty"`
	Revision     int        `bson:"revision"`
}

// UserProfile represents a volunteer or an organization
type UserProfile struct {
	EmailAddress string   `bson:"_id" validate:"required,email"`
	FirstName    string   `bson:"firstName"`
	Address      string   `bson:"address"`
	Contact      string   `bson:"contact"`
	Role         Role     `bson:"role" validate:"oneof=0 1"`
	Categories   []string `bson:"categories"`
}

// DisplayName returns the first name, falling back to the email address
func (p *UserProfile) DisplayName() string {
	if p == nil {
		return ""
	}
	if p.FirstName != "" {
		return p.FirstName
	}
	return p.EmailAddress
}

// Goal is a volunteer's monthly target of hours in one category
type Goal struct {
	ID               string     `bson:"_id"`
	EmailAddress     string     `bson:"emailAddress" validate:"required,email"`
	Category         string     `bson:"category" validate:"required"`
	Month            string     `bson:"month" validate:"required,datetime=2006-01"`
	TargetHours      float64    `bson:"targetHours" validate:"gt=0"`
	RemindersEnabled bool       `bson:"remindersEnabled"`
	NextReminderAt   *time.Time `bson:"nextReminderAt,omitempty"`
	CreatedAt        time.Time  `bson:"createdAt"`
}

// AcceptanceNotice is handed to the notifier when a join request is accepted
type AcceptanceNotice struct {
	JoinEventID      string
	VolunteerEmail   string
	Category         Category
	EventDate        string
	NextEligibleDate *time.Time // only set for blood donation
}

// GoalReminderNotice is handed to the notifier when a goal reminder falls due
type GoalReminderNotice struct {
	GoalID         string
	VolunteerEmail string
	Category       Category
	Month          string
	TargetHours    float64
	AchievedHours  float64
}
