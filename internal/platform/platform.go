// Package platform classifies the hosting provider from environment signals
// and rewrites the environment into one canonical shape.
//
// Both entry points are pure.  Detect only reads its input; Normalize returns
// a fresh map and leaves the input untouched, so the caller decides what (if
// anything) reaches the real process environment.
package platform

// Platform is one of Railway, Render, or Local.
type Platform string

const (
	Railway Platform = "railway"
	Render  Platform = "render"
	Local   Platform = "local"
)

// Detect checks the Railway signal first, then Render, else Local.
func Detect(env map[string]string) Platform {
	switch {
	case env["RAILWAY_ENVIRONMENT"] != "":
		return Railway
	case env["RENDER"] != "":
		return Render
	default:
		return Local
	}
}

// Hosted reports whether p is a managed platform rather than a developer box.
func (p Platform) Hosted() bool { return p != Local }

// Hint tells an operator where missing variables should be set.
func (p Platform) Hint() string {
	switch p {
	case Railway:
		return "Please set these in your Railway dashboard"
	case Render:
		return "Please set these in your Render dashboard"
	default:
		return "Please set these in your .env file"
	}
}

func (p Platform) String() string { return string(p) }
