package version

import (
	"fmt"
	"runtime"
)

// Overridden at build time with -ldflags "-X ...".
var (
	Version   = "0.4.2"
	AppName   = "DisasterGate"
	Commit    = "unknown"
	BuildDate = "unknown"
)

type Info struct {
	AppName   string `json:"app_name"`
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	BuildDate string `json:"build_date"`
	GoVersion string `json:"go_version"`
	Platform  string `json:"platform"`
}

func GetInfo() Info {
	return Info{
		AppName:   AppName,
		Version:   Version,
		Commit:    Commit,
		BuildDate: BuildDate,
		GoVersion: runtime.Version(),
		Platform:  fmt.Sprintf("%s/%s", runtime.GOOS, runtime.GOARCH),
	}
}

// UserAgent is sent by the command line client.
func UserAgent(component string) string {
	return fmt.Sprintf("%s-%s/%s", AppName, component, Version)
}
