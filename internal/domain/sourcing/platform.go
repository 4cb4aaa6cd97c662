package sourcing

// PlatformCode identifies an external vendor platform
type PlatformCode string

const (
	// PlatformCodeSitex is the bearer-token-authenticated JSON REST vendor
	PlatformCodeSitex PlatformCode = "SITEX"
	// PlatformCodeWebra is the query-string-authenticated XML feed vendor
	PlatformCodeWebra PlatformCode = "WEBRA"
	// PlatformCodeUnitek is the paginated JSON REST vendor
	PlatformCodeUnitek PlatformCode = "UNITEK"
)

// AllPlatformCodes returns all known platform codes
func AllPlatformCodes() []PlatformCode {
	return []PlatformCode{PlatformCodeSitex, PlatformCodeWebra, PlatformCodeUnitek}
}

// IsValid returns true if the platform code is known
func (c PlatformCode) IsValid() bool {
	switch c {
	case PlatformCodeSitex, PlatformCodeWebra, PlatformCodeUnitek:
		return true
	default:
		return false
	}
}

// String returns the string representation of PlatformCode
func (c PlatformCode) String() string {
	return string(c)
}
