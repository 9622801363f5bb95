package attachment

import (
	"encoding/base64"
	"log"
	"os"
)

// FallbackCV is the fixed payload substituted when the CV file cannot be
// read ("This is a test CV file", base64). A missing CV must not abort a
// run the way an auth failure does; the rest of the pipeline still runs
// against this dummy attachment.
const FallbackCV = "VGhpcyBpcyBhIHRlc3QgQ1YgZmlsZQ=="

// EncodeFile reads path and returns its contents base64-encoded. Read
// failures are tolerated and yield FallbackCV.
func EncodeFile(path string) string {
	b, err := os.ReadFile(path)
	if err != nil {
		log.Printf("warning: could not read %s, using fallback attachment: %v", path, err)
		return FallbackCV
	}
	return base64.StdEncoding.EncodeToString(b)
}
