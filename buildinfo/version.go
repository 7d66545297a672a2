package buildinfo

import (
	"encoding/json"
	"fmt"
	"io"
	"runtime"
	"text/tabwriter"
)

const Unknown = "unknown"

// set with -ldflags "-X github.com/comcast/smartarray/buildinfo.gitVersion=..."
var (
	gitVersion  = Unknown
	gitRevision = Unknown
	date        = Unknown

	Info info
)

type info struct {
	Arch        string `json:"arch"`
	Date        string `json:"build_date"`
	GitRevision string `json:"revision"`
	GitVersion  string `json:"version"`
	GoVersion   string `json:"go_version"`
	OS          string `json:"os"`
}

func init() {
	Info = info{
		Arch:        runtime.GOARCH,
		Date:        date,
		GitRevision: gitRevision,
		GitVersion:  gitVersion,
		GoVersion:   runtime.Version(),
		OS:          runtime.GOOS,
	}
}

// String is the one line form used in the startup log.
func (i info) String() string {
	return fmt.Sprintf("%s (%s, built %s with %s)", i.GitVersion, i.GitRevision, i.Date, i.GoVersion)
}

func Print(dest io.Writer) error {
	w := tabwriter.NewWriter(dest, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "Version:\t%s\n", Info.GitVersion)
	fmt.Fprintf(w, "Revision:\t%s\n", Info.GitRevision)
	fmt.Fprintf(w, "Build Date:\t%s\n", Info.Date)
	fmt.Fprintf(w, "Go Version:\t%s\n", Info.GoVersion)
	fmt.Fprintf(w, "Platform:\t%s/%s\n", Info.OS, Info.Arch)
	return w.Flush()
}

func JSON(w io.Writer) error {
	return json.NewEncoder(w).Encode(Info)
}
