package site

import (
	"embed"
	"io/fs"
	"net/http"
)

//go:embed static
var staticFS embed.FS

//go:embed templates/*.html
var templateFS embed.FS

//go:embed content/available_tools.md
var instructionsMD []byte

// FS returns the embedded stylesheet directory.
func FS() http.FileSystem {
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		return http.FS(staticFS)
	}
	return http.FS(sub)
}

func defaultInstructions() []byte {
	out := make([]byte, len(instructionsMD))
	copy(out, instructionsMD)
	return out
}
