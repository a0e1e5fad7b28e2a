// Package announcements publishes notices to audiences of the practicum.
package announcements

import (
	"time"

	"github.com/ppl-hub/practicum/internal/shared"
)

// Audience selects who may read an announcement.
type Audience string

const (
	AudiencePublic     Audience = "public"
	AudienceAll        Audience = "all"
	AudienceStudent    Audience = "student"
	AudienceMentor     Audience = "mentor"
	AudienceSupervisor Audience = "supervisor"
)

// VisibleTo lists the audiences readable by id. Anonymous callers only see public notices.
func VisibleTo(id shared.Identity) []Audience {
	if id.IsZero() {
		return []Audience{AudiencePublic}
	}
	if id.Is(shared.RoleAdmin) {
		return []Audience{AudiencePublic, AudienceAll, AudienceStudent, AudienceMentor, AudienceSupervisor}
	}
	return []Audience{AudiencePublic, AudienceAll, Audience(id.Role)}
}

// Announcement is a published notice.
type Announcement struct {
	ID             int64      `json:"id"`
	AuthorID       int64      `json:"author_id"`
	Title          string     `json:"title"`
	Body           string     `json:"body"`
	Audience       Audience   `json:"audience"`
	AttachmentPath string     `json:"attachment_path"`
	PublishedAt    *time.Time `json:"published_at"`
	ExpiresAt      *time.Time `json:"expires_at"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// Visible reports whether a non-admin reader sees a at now.
func (a Announcement) Visible(audiences []Audience, now time.Time) bool {
	if a.PublishedAt == nil || a.PublishedAt.After(now) {
		return false
	}
	if a.ExpiresAt != nil && !a.ExpiresAt.After(now) {
		return false
	}
	for _, aud := range audiences {
		if aud == a.Audience {
			return true
		}
	}
	return false
}

// Input is the writable part of an announcement. A nil PublishedAt publishes immediately.
type Input struct {
	Title          string     `json:"title" validate:"required,max=200"`
	Body           string     `json:"body" validate:"required,max=20000"`
	Audience       string     `json:"audience" validate:"required,oneof=public all student mentor supervisor"`
	AttachmentPath string     `json:"attachment_path" validate:"max=500"`
	PublishedAt    *time.Time `json:"published_at"`
	ExpiresAt      *time.Time `json:"expires_at"`
}

func (in Input) normalize(now time.Time) Input {
	in.Title = shared.CleanString(in.Title)
	in.Audience = shared.NormalizeUsername(in.Audience)
	if in.PublishedAt == nil {
		published := now
		in.PublishedAt = &published
	}
	return in
}

func (in Input) validateWindow() error {
	if in.ExpiresAt != nil && in.PublishedAt != nil && !in.ExpiresAt.After(*in.PublishedAt) {
		return shared.FieldError("expires_at", "must be after published_at")
	}
	return nil
}

// ListFilter narrows list results.
type ListFilter struct {
	// Audiences is set by the service from the caller identity.
	Audiences []Audience
	// All disables the publication window and audience checks.
	All      bool
	AuthorID int64
	Now      time.Time
	Page     shared.PageRequest
}
