package restyutil

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"
)

type FilesystemOutput struct {
	directory string
}

func NewFilesystemOutput(dir string) FilesystemOutput {
	err := os.MkdirAll(dir, 0777)
	if err != nil {
		panic(err)
	}
	return FilesystemOutput{directory: dir}
}

func (o FilesystemOutput) Write(id string, contents string) {
	err := os.WriteFile(filepath.Join(o.directory, id), []byte(contents), 0600)
	if err != nil {
		slog.Warn("failed to write message info file", "id", id, "err", err)
	}
}

// WriteFailureArtifact persists the html retrieved (if any) from a
// failed fetch under "<context>_<utc timestamp>.html" with the url and
// failure reason as a comment header. Returns the artifact filename.
func (o FilesystemOutput) WriteFailureArtifact(context, url, reason, body string) string {
	name := fmt.Sprintf(
		"%s_%s.html",
		context,
		time.Now().UTC().Format("20060102_150405"),
	)
	contents := fmt.Sprintf("<!-- URL: %s -->\n<!-- Reason: %s -->\n%s", url, reason, body)
	o.Write(name, contents)
	return name
}
