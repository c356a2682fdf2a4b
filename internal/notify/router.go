package notify

import "strings"

type Router struct{}

func (r Router) MatchTargets(targets []Target, a Alert) []Target {
	if len(targets) == 0 {
		return nil
	}
	out := make([]Target, 0, len(targets))
	for _, target := range targets {
		if !target.Enabled {
			continue
		}
		if !scopeMatches(target, a) {
			continue
		}
		if !eventAllowed(target.EventAllowlist, a.Kind) {
			continue
		}
		out = append(out, target)
	}
	return out
}

func scopeMatches(target Target, a Alert) bool {
	switch target.ScopeType {
	case "all":
		return true
	case "player":
		return target.ScopeValue != "" && strings.EqualFold(target.ScopeValue, a.Player)
	default:
		return false
	}
}

func eventAllowed(allowlist []string, kind string) bool {
	if len(allowlist) == 0 {
		return true
	}
	kind = strings.ToLower(strings.TrimSpace(kind))
	for _, v := range allowlist {
		if v != "" && strings.ToLower(strings.TrimSpace(v)) == kind {
			return true
		}
	}
	return false
}
