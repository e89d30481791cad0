package skill

import (
	"strings"
	"time"
)

// Skill rows are shared between profiles and never deleted.
type Skill struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

type SkillCount struct {
	Name  string `json:"skill"`
	Count int64  `json:"count"`
}

// NormalizeNames trims the names and drops duplicates, keeping the first
// occurrence order. Matching stays case-sensitive.
func NormalizeNames(names []string) []string {
	seen := make(map[string]struct{}, len(names))
	out := make([]string, 0, len(names))
	for _, n := range names {
		n = strings.TrimSpace(n)
		if _, ok := seen[n]; ok {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}
	return out
}

func Names(skills []Skill) []string {
	names := make([]string, len(skills))
	for i, s := range skills {
		names[i] = s.Name
	}
	return names
}
