package discordmcp

import "strings"

// EntityKind identifies the namespace a resolution operates in. Snowflake
// IDs are unique within a kind but not across kinds, so the cache and the
// error taxonomy are always kind-qualified.
type EntityKind string

const (
	KindServer  EntityKind = "server"
	KindChannel EntityKind = "channel"
	KindUser    EntityKind = "user"
	KindMessage EntityKind = "message"
)

// Snowflake length bounds. Discord IDs are decimal digit strings of
// 17-20 characters.
const (
	MinSnowflakeLen = 17
	MaxSnowflakeLen = 20
)

// MaxSuggestions caps the number of near-miss channel names appended to a
// not-found report.
const MaxSuggestions = 3

// IsSnowflake reports whether s looks like a Discord snowflake ID:
// decimal digits only, MinSnowflakeLen to MaxSnowflakeLen characters.
func IsSnowflake(s string) bool {
	if len(s) < MinSnowflakeLen || len(s) > MaxSnowflakeLen {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// TargetSpec is the parsed form of a raw target string: an optional server
// scope and the channel/user reference it qualifies.
type TargetSpec struct {
	// Scope is the server name or ID disambiguating Ref, empty when the
	// target was unscoped.
	Scope string

	// Ref is the channel/user name or ID.
	Ref string
}

// Scoped reports whether the target carried a server qualifier.
func (t TargetSpec) Scoped() bool {
	return t.Scope != ""
}

// ParseTarget splits a raw target string into scope and reference.
//
//	"general"          -> {Scope: "", Ref: "general"}
//	"MyServer/general" -> {Scope: "MyServer", Ref: "general"}
//	"1234...78" (ID)   -> {Scope: "", Ref: "1234...78"}
//
// A string that is itself a snowflake is never split, so IDs pass through
// scope parsing untouched. Whitespace around both parts is trimmed.
func ParseTarget(raw string) TargetSpec {
	if strings.Contains(raw, "/") && !IsSnowflake(raw) {
		scope, ref, _ := strings.Cut(raw, "/")
		return TargetSpec{
			Scope: strings.TrimSpace(scope),
			Ref:   strings.TrimSpace(ref),
		}
	}
	return TargetSpec{Ref: strings.TrimSpace(raw)}
}
