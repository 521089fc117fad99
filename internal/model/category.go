package model

import (
	"strings"
	"time"
)

// Category is a life area tracked by the flame dashboard.
type Category struct {
	ID              string     `gorm:"primaryKey" json:"id"`
	Name            string     `json:"name"`
	Icon            string     `json:"icon"`
	Color           string     `json:"color"`
	BackgroundImage string     `json:"backgroundImage,omitempty"`
	LastActiveAt    *time.Time `json:"lastActiveISO,omitempty"`
	CreatedAt       time.Time  `json:"-"`
	UpdatedAt       time.Time  `json:"-"`
}

// CategoryIDs is the closed category enum. Anything else normalizes to "other".
var CategoryIDs = []string{
	"fitness", "finances", "learning", "personal", "work",
	"creativity", "social", "mind", "org", "impact", "other",
}

// DefaultCategories is the capability lookup table keyed by category id:
// display name, icon and gradient color per category.
var DefaultCategories = []Category{
	{ID: "fitness", Name: "Fitness", Icon: "Dumbbell", Color: "from-orange-500 to-red-500", BackgroundImage: "/posters/fitness.jpeg"},
	{ID: "finances", Name: "Finances", Icon: "DollarSign", Color: "from-green-500 to-emerald-500", BackgroundImage: "/posters/finanzen.jpeg"},
	{ID: "learning", Name: "Learning", Icon: "BookOpen", Color: "from-blue-500 to-cyan-500", BackgroundImage: "/posters/wisdom.jpeg"},
	{ID: "personal", Name: "Personal", Icon: "Heart", Color: "from-rose-500 to-pink-500"},
	{ID: "work", Name: "Work", Icon: "Briefcase", Color: "from-slate-500 to-zinc-500"},
	{ID: "creativity", Name: "Creativity", Icon: "Sparkles", Color: "from-amber-500 to-yellow-500"},
	{ID: "social", Name: "Social", Icon: "Users", Color: "from-teal-500 to-cyan-500"},
	{ID: "mind", Name: "Mind", Icon: "Brain", Color: "from-purple-500 to-pink-500", BackgroundImage: "/posters/mindset.png"},
	{ID: "org", Name: "Organization", Icon: "ClipboardList", Color: "from-indigo-500 to-blue-500"},
	{ID: "impact", Name: "Impact", Icon: "Globe", Color: "from-lime-500 to-green-500"},
	{ID: "other", Name: "Other", Icon: "Circle", Color: "from-gray-500 to-slate-500"},
}

// KnownCategory reports whether id is part of the closed enum.
func KnownCategory(id string) bool {
	for _, c := range CategoryIDs {
		if c == id {
			return true
		}
	}
	return false
}

// NormalizeCategory lower-cases raw and coerces anything outside the closed
// enum to "other".
func NormalizeCategory(raw string) string {
	id := strings.ToLower(strings.TrimSpace(raw))
	if KnownCategory(id) {
		return id
	}
	return "other"
}
