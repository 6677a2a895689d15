package strx

// Coalesce returns s if non-empty, otherwise d.
func Coalesce(s, d string) string {
	if s == "" {
		return d
	}
	return s
}

// Keep returns s with every byte rejected by ok removed.
func Keep(s string, ok func(c byte) bool) string {
	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		if ok(s[i]) {
			out = append(out, s[i])
		}
	}
	return string(out)
}

// IsHostnameByte reports [0-9A-Za-z_-].
func IsHostnameByte(c byte) bool {
	return (c >= '0' && c <= '9') || (c >= 'A' && c <= 'Z') || (c >= 'a' && c <= 'z') || c == '_' || c == '-'
}
